package echoapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/alama/core/user"
	emailsvc "github.com/trezcool/alama/services/email"
	testutil "github.com/trezcool/alama/tests"
)

func TestUserAPI_login(t *testing.T) {
	deps := setup(t)
	testutil.CreateUser(t, deps.usrRepo, "Awa Student", "cs20-0042", "awa@test.cd", "pwd", []string{"student:"}, true)
	testutil.CreateUser(t, deps.usrRepo, "Gone Student", "cs19-0001", "gone@test.cd", "pwd", []string{"student:"}, false)

	tests := []httpTest{
		{
			name:     "Empty body",
			body:     []byte("{}"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name:     "Unknown username",
			body:     marchallObj(t, LoginRequest{Username: "nobody", Password: "pwd"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "Wrong password",
			body:     marchallObj(t, LoginRequest{Username: "cs20-0042", Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "Deactivated account",
			body:     marchallObj(t, LoginRequest{Username: "cs19-0001", Password: "pwd"}),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name:     "Login by username",
			body:     marchallObj(t, LoginRequest{Username: "cs20-0042", Password: "pwd"}),
			wantCode: http.StatusOK,
		},
		{
			name:     "Login by email",
			body:     marchallObj(t, LoginRequest{Username: "awa@test.cd", Password: "pwd"}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			deps.server.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			var res LoginResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.NotEmpty(t, res.Token)
		})
	}
}

func TestUserAPI_passwordReset(t *testing.T) {
	deps := setup(t)
	usr := testutil.CreateUser(t, deps.usrRepo, "Awa Student", "cs20-0042", "awa@test.cd", "pwd", []string{"student:"}, true)
	emailsvc.ClearSentMessages()

	// request a reset; same response whether the account exists or not
	for _, email := range []string{"awa@test.cd", "unknown@test.cd"} {
		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", marchallObj(t, PasswordResetRequest{Email: email}))
		deps.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	// only the existing account got an email
	require.Len(t, emailsvc.SentMessages, 1)
	msg := emailsvc.SentMessages[0]
	assert.Equal(t, "awa@test.cd", msg.To[0].Address)
	assert.Contains(t, msg.TextContent, "/password-reset/")

	// pull uid & token out of the reset link
	parts := strings.Split(msg.TextContent, "/password-reset/")
	require.Len(t, parts, 2)
	linkParts := strings.SplitN(strings.Fields(parts[1])[0], "/", 2)
	require.Len(t, linkParts, 2)
	uid, token := linkParts[0], linkParts[1]

	// confirm with a bad token
	body := marchallObj(t, user.ResetUserPassword{
		UID: uid, Token: "bad-token", Password: "n3w-Secret!", PasswordConfirm: "n3w-Secret!",
	})
	req, rec := newRequest(http.MethodPost, "/v1/users/password-reset-confirm", body)
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code) // invalid token surfaces as a generic error

	// confirm with the real token
	body = marchallObj(t, user.ResetUserPassword{
		UID: uid, Token: token, Password: "n3w-Secret!", PasswordConfirm: "n3w-Secret!",
	})
	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset-confirm", body)
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// old password no longer works, new one does
	req, rec = newRequest(http.MethodPost, "/v1/users/login", marchallObj(t, LoginRequest{Username: usr.Username, Password: "pwd"}))
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	req, rec = newRequest(http.MethodPost, "/v1/users/login", marchallObj(t, LoginRequest{Username: usr.Username, Password: "n3w-Secret!"}))
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestUserAPI_register(t *testing.T) {
	deps := setup(t)
	admin := testutil.CreateUser(t, deps.usrRepo, "Admin", "admin1", "admin@test.cd", "pwd", []string{"admin:"}, true)
	student := testutil.CreateUser(t, deps.usrRepo, "Awa Student", "cs20-0042", "awa@test.cd", "pwd", []string{"student:"}, true)
	adminToken := getToken(t, admin)

	newUsr := user.NewUser{
		Name:            "Ben Student",
		Username:        "cs20-0043",
		Email:           "ben@test.cd",
		Department:      "Computer Science",
		Password:        "Tr3s-Secret!",
		PasswordConfirm: "Tr3s-Secret!",
		Roles:           []string{"student:"},
	}

	tests := []httpTest{
		{
			name:     "Auth required",
			token:    "",
			body:     marchallObj(t, newUsr),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "Admin only",
			token:    getToken(t, student),
			body:     marchallObj(t, newUsr),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "Weak password rejected",
			token:    adminToken,
			body:     marchallObj(t, user.NewUser{Name: "X", Username: "cs20-0044", Email: "x@test.cd", Password: "password", PasswordConfirm: "password", Roles: []string{"student:"}}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "Duplicate username rejected",
			token:    adminToken,
			body:     marchallObj(t, user.NewUser{Name: "X", Username: "cs20-0042", Email: "x@test.cd", Password: "Tr3s-Secret!", PasswordConfirm: "Tr3s-Secret!", Roles: []string{"student:"}}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "Invalid username rejected",
			token:    adminToken,
			body:     marchallObj(t, user.NewUser{Name: "X", Username: "cs20 0046", Email: "x3@test.cd", Password: "Tr3s-Secret!", PasswordConfirm: "Tr3s-Secret!", Roles: []string{"student:"}}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "only alphanumeric characters, underscores and hyphens are allowed"}),
		},
		{
			name:     "Cannot grant a higher role",
			token:    adminToken,
			body:     marchallObj(t, user.NewUser{Name: "X", Username: "cs20-0045", Email: "x2@test.cd", Password: "Tr3s-Secret!", PasswordConfirm: "Tr3s-Secret!", Roles: []string{"admin:owner"}}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"roles": "not enough rights to set these roles"}),
		},
		{
			name:     "Created",
			token:    adminToken,
			body:     marchallObj(t, newUsr),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", tt.token, tt.body)
			deps.server.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode == http.StatusCreated {
				var usr user.User
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
				assert.Equal(t, "cs20-0043", usr.Username)
				assert.Equal(t, "Computer Science", usr.Department)
				assert.True(t, usr.Active())
			}
		})
	}
}

func TestUserAPI_retrieveUpdate(t *testing.T) {
	deps := setup(t)
	admin := testutil.CreateUser(t, deps.usrRepo, "Admin", "admin1", "admin@test.cd", "pwd", []string{"admin:"}, true)
	student := testutil.CreateUser(t, deps.usrRepo, "Awa Student", "cs20-0042", "awa@test.cd", "pwd", []string{"student:"}, true)
	other := testutil.CreateUser(t, deps.usrRepo, "Ben Student", "cs20-0043", "ben@test.cd", "pwd", []string{"student:"}, true)
	studentToken := getToken(t, student)

	// a student can fetch themselves but not another student
	req, rec := newAuthRequest(http.MethodGet, "/v1/users/"+student.ID, studentToken)
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req, rec = newAuthRequest(http.MethodGet, "/v1/users/"+other.ID, studentToken)
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// an admin can fetch anyone
	req, rec = newAuthRequest(http.MethodGet, "/v1/users/"+other.ID, getToken(t, admin))
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// a student cannot change their own roles or active flag
	active := false
	body := marchallObj(t, user.UpdateUser{IsActive: &active})
	req, rec = newAuthRequest(http.MethodPut, "/v1/users/"+student.ID, studentToken, body)
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// but they can change their own name
	body = marchallObj(t, user.UpdateUser{Name: "Awa M. Student"})
	req, rec = newAuthRequest(http.MethodPut, "/v1/users/"+student.ID, studentToken, body)
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Awa M. Student", updated.Name)
}

func TestUserAPI_changePassword(t *testing.T) {
	deps := setup(t)
	student := testutil.CreateUser(t, deps.usrRepo, "Awa Student", "cs20-0042", "awa@test.cd", "0ld-Secret!", []string{"student:"}, true)
	token := getToken(t, student)

	// wrong current password
	body := marchallObj(t, user.ChangePassword{OldPassword: "nope", NewPassword: "n3w-Secret!", PasswordConfirm: "n3w-Secret!"})
	req, rec := newAuthRequest(http.MethodPut, "/v1/users/password", token, body)
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body = marchallObj(t, user.ChangePassword{OldPassword: "0ld-Secret!", NewPassword: "n3w-Secret!", PasswordConfirm: "n3w-Secret!"})
	req, rec = newAuthRequest(http.MethodPut, "/v1/users/password", token, body)
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req, rec = newRequest(http.MethodPost, "/v1/users/login", marchallObj(t, LoginRequest{Username: student.Username, Password: "n3w-Secret!"}))
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestUserAPI_queryAndDestroy(t *testing.T) {
	deps := setup(t)
	admin := testutil.CreateUser(t, deps.usrRepo, "Admin", "admin1", "admin@test.cd", "pwd", []string{"admin:"}, true)
	student := testutil.CreateUser(t, deps.usrRepo, "Awa Student", "cs20-0042", "awa@test.cd", "pwd", []string{"student:"}, true)
	adminToken := getToken(t, admin)

	// query all
	req, rec := newAuthRequest(http.MethodGet, "/v1/users", adminToken)
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 2)

	// filter by role
	req, rec = newAuthRequest(http.MethodGet, "/v1/users?role=student:", adminToken)
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 1)

	// roles listing
	req, rec = newAuthRequest(http.MethodGet, "/v1/users/roles", adminToken)
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// admin cannot delete themselves
	req, rec = newAuthRequest(http.MethodDelete, "/v1/users/"+admin.ID, adminToken)
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// but can delete a student
	req, rec = newAuthRequest(http.MethodDelete, "/v1/users/"+student.ID, adminToken)
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestUserAPI_tokenRefresh(t *testing.T) {
	deps := setup(t)
	student := testutil.CreateUser(t, deps.usrRepo, "Awa Student", "cs20-0042", "awa@test.cd", "pwd", []string{"student:"}, true)

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", getToken(t, student))
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.Token)
}
