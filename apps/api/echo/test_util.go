package echoapi

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/feedback"
	"github.com/trezcool/alama/core/record"
	"github.com/trezcool/alama/core/user"
	emailsvc "github.com/trezcool/alama/services/email"
	dummydb "github.com/trezcool/alama/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testDeps struct {
	conf      *core.Config
	usrRepo   user.Repository
	recRepo   record.Repository
	fbRepo    feedback.Repository
	usrSvc    user.Service
	recSvc    record.Service
	fbSvc     feedback.Service
	mailSvc   core.EmailService
	stdLogger core.Logger
	server    Server
}

func setup(t *testing.T) *testDeps {
	t.Helper()

	conf := core.NewConfig()
	conf.TestMode = true
	conf.Debug = false

	logger := testLogger{log.New(os.Stdout, "TEST : ", log.LstdFlags)}

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)
	recRepo := dummydb.NewRecordRepository(db)
	fbRepo := dummydb.NewFeedbackRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewServiceMock(usrRepo, mailSvc, conf)
	recSvc := record.NewService(recRepo, logger)
	fbSvc := feedback.NewService(fbRepo, usrSvc, mailSvc, conf)

	validate := validator.New()
	translator := newTestTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up server
	server := NewServer(ServerDeps{
		Conf:        conf,
		Logger:      logger,
		UserSvc:     usrSvc,
		RecordSvc:   recSvc,
		FeedbackSvc: fbSvc,
		Validate:    validate,
		Translator:  translator,
	})

	return &testDeps{
		conf:      conf,
		usrRepo:   usrRepo,
		recRepo:   recRepo,
		fbRepo:    fbRepo,
		usrSvc:    usrSvc,
		recSvc:    recSvc,
		fbSvc:     fbSvc,
		mailSvc:   mailSvc,
		stdLogger: logger,
		server:    server,
	}
}

func newTestTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type testLogger struct {
	std *log.Logger
}

func (l testLogger) Enable(bool)                        {}
func (l testLogger) Debug(msg string, _ ...interface{}) { l.std.Println(msg) }
func (l testLogger) Info(msg string, _ ...interface{})  { l.std.Println(msg) }
func (l testLogger) Warn(msg string, _ ...interface{})  { l.std.Println(msg) }
func (l testLogger) Error(msg string, _ ...interface{}) { l.std.Println(msg) }
func (l testLogger) Fatal(msg string, _ ...interface{}) { l.std.Fatal(msg) }

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()

	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
