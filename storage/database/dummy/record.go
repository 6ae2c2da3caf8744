package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/record"
)

type recordRepository struct {
	db *recordTable
}

var _ record.Repository = (*recordRepository)(nil) // interface compliance check

func NewRecordRepository(db *DB) record.Repository {
	return &recordRepository{db: db.record}
}

func (repo *recordRepository) CreateRecord(_ context.Context, rec record.Record) (record.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec.ID = uuid.New().String()
	repo.db.records[rec.ID] = &rec
	return rec, nil
}

func (repo *recordRepository) GetRecord(_ context.Context, userID, id string) (record.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.records[id]; ok && rec.UserID == userID {
		return *rec, nil
	}
	return record.Record{}, record.ErrNotFound
}

func (repo *recordRepository) QueryRecords(_ context.Context, userID string, _ []core.DBOrdering) ([]record.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	recs := make([]record.Record, 0)
	for _, rec := range repo.db.records {
		if rec.UserID == userID {
			recs = append(recs, *rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
	return recs, nil
}

func (repo *recordRepository) DeleteRecordsByID(_ context.Context, userID string, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if rec, ok := repo.db.records[id]; ok && rec.UserID == userID {
			delete(repo.db.records, id)
		}
	}
	return nil
}

func (repo *recordRepository) CreateFinalRecord(_ context.Context, rec record.FinalRecord) (record.FinalRecord, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec.ID = uuid.New().String()
	repo.db.finals[rec.ID] = &rec
	return rec, nil
}

func (repo *recordRepository) GetFinalRecord(_ context.Context, userID, id string) (record.FinalRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.finals[id]; ok && rec.UserID == userID {
		return *rec, nil
	}
	return record.FinalRecord{}, record.ErrNotFound
}

func (repo *recordRepository) QueryFinalRecords(_ context.Context, userID string, _ []core.DBOrdering) ([]record.FinalRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	recs := make([]record.FinalRecord, 0)
	for _, rec := range repo.db.finals {
		if rec.UserID == userID {
			recs = append(recs, *rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
	return recs, nil
}

func (repo *recordRepository) DeleteFinalRecordsByID(_ context.Context, userID string, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if rec, ok := repo.db.finals[id]; ok && rec.UserID == userID {
			delete(repo.db.finals, id)
		}
	}
	return nil
}

func (repo *recordRepository) CreateAuditEntry(_ context.Context, entry record.AuditEntry) (record.AuditEntry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	entry.ID = uuid.New().String()
	repo.db.audit = append(repo.db.audit, entry)
	return entry, nil
}

func (repo *recordRepository) QueryAuditEntries(_ context.Context, userID string, _ []core.DBOrdering) ([]record.AuditEntry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := make([]record.AuditEntry, 0)
	for _, entry := range repo.db.audit {
		if entry.UserID == userID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}
