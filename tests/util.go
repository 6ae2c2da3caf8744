package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/alama/core/grading"
	"github.com/trezcool/alama/core/record"
	"github.com/trezcool/alama/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateRecord(
	t *testing.T,
	svc record.Service,
	userID, title string,
	modules []grading.ModuleEntry,
) record.Record {
	t.Helper()

	rec, err := svc.Save(context.Background(), userID, record.NewRecord{
		Title:   title,
		Modules: modules,
	})
	if err != nil {
		t.Fatalf("CreateRecord() failed: %v", err)
	}
	return rec
}
