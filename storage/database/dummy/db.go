package dummydb

import (
	"sync"

	"github.com/trezcool/alama/core/feedback"
	"github.com/trezcool/alama/core/record"
	"github.com/trezcool/alama/core/user"
)

type (
	DB struct {
		user     *userTable
		record   *recordTable
		feedback *feedbackTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	recordTable struct {
		sync.RWMutex
		records map[string]*record.Record
		finals  map[string]*record.FinalRecord
		audit   []record.AuditEntry
	}

	feedbackTable struct {
		sync.RWMutex
		table []feedback.Feedback
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		record: &recordTable{
			records: make(map[string]*record.Record),
			finals:  make(map[string]*record.FinalRecord),
		},
		feedback: &feedbackTable{},
	}
	return db, nil
}
