package record

import (
	"context"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/grading"
)

type fakeRepo struct {
	seq     int
	records map[string]Record
	finals  map[string]FinalRecord
	audit   []AuditEntry
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		records: make(map[string]Record),
		finals:  make(map[string]FinalRecord),
	}
}

func (r *fakeRepo) nextID() string {
	r.seq++
	return strconv.Itoa(r.seq)
}

func (r *fakeRepo) CreateRecord(_ context.Context, rec Record) (Record, error) {
	rec.ID = r.nextID()
	r.records[rec.ID] = rec
	return rec, nil
}

func (r *fakeRepo) GetRecord(_ context.Context, userID, id string) (Record, error) {
	if rec, ok := r.records[id]; ok && rec.UserID == userID {
		return rec, nil
	}
	return Record{}, ErrNotFound
}

func (r *fakeRepo) QueryRecords(_ context.Context, userID string, _ []core.DBOrdering) ([]Record, error) {
	var recs []Record
	for _, rec := range r.records {
		if rec.UserID == userID {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (r *fakeRepo) DeleteRecordsByID(_ context.Context, userID string, ids ...string) error {
	for _, id := range ids {
		if rec, ok := r.records[id]; ok && rec.UserID == userID {
			delete(r.records, id)
		}
	}
	return nil
}

func (r *fakeRepo) CreateFinalRecord(_ context.Context, rec FinalRecord) (FinalRecord, error) {
	rec.ID = r.nextID()
	r.finals[rec.ID] = rec
	return rec, nil
}

func (r *fakeRepo) GetFinalRecord(_ context.Context, userID, id string) (FinalRecord, error) {
	if rec, ok := r.finals[id]; ok && rec.UserID == userID {
		return rec, nil
	}
	return FinalRecord{}, ErrNotFound
}

func (r *fakeRepo) QueryFinalRecords(_ context.Context, userID string, _ []core.DBOrdering) ([]FinalRecord, error) {
	var recs []FinalRecord
	for _, rec := range r.finals {
		if rec.UserID == userID {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (r *fakeRepo) DeleteFinalRecordsByID(_ context.Context, userID string, ids ...string) error {
	for _, id := range ids {
		if rec, ok := r.finals[id]; ok && rec.UserID == userID {
			delete(r.finals, id)
		}
	}
	return nil
}

func (r *fakeRepo) CreateAuditEntry(_ context.Context, entry AuditEntry) (AuditEntry, error) {
	entry.ID = r.nextID()
	r.audit = append(r.audit, entry)
	return entry, nil
}

func (r *fakeRepo) QueryAuditEntries(_ context.Context, userID string, _ []core.DBOrdering) ([]AuditEntry, error) {
	var entries []AuditEntry
	for _, entry := range r.audit {
		if entry.UserID == userID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestService_Save(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, nopLogger{})

	rec, err := svc.Save(ctx, "usr1", NewRecord{
		Title:    "Semester 1",
		Semester: "2025/2026 - S1",
		Modules: []grading.ModuleEntry{
			{Label: "Networks", Code: "NET301", Grade: grading.GradeA},
			{Label: "Databases", Code: "DB302", Grade: grading.GradeB},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, 4.5, rec.GPA)
	assert.Equal(t, grading.StatusExcellentPass, rec.Status)
	assert.Len(t, rec.Details, 2)

	// server-side evaluation, persisted record matches
	got, err := svc.GetByID(ctx, "usr1", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.GPA, got.GPA)

	// audit trail
	entries, err := svc.QueryAudit(ctx, "usr1", nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ActionSaveRecord, entries[0].Action)
	assert.Equal(t, "Semester 1", entries[0].RecordTitle)
	assert.Equal(t, 4.5, entries[0].GPA)
}

func TestService_Save_blocked(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, nopLogger{})

	_, err := svc.Save(ctx, "usr1", NewRecord{
		Title: "Semester 1",
		Modules: []grading.ModuleEntry{
			{Label: "Networks", Grade: grading.GradeE},
		},
	})
	var blocked *grading.Blocked
	require.True(t, errors.As(err, &blocked))

	// nothing saved, nothing audited
	recs, err := svc.Query(ctx, "usr1", nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
	entries, err := svc.QueryAudit(ctx, "usr1", nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, nopLogger{})

	rec, err := svc.Save(ctx, "usr1", NewRecord{
		Title:   "Semester 1",
		Modules: []grading.ModuleEntry{{Label: "Networks", Grade: grading.GradeC}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "usr1", rec.ID))
	_, err = svc.GetByID(ctx, "usr1", rec.ID)
	assert.Equal(t, ErrNotFound, errors.Cause(err))

	// deleting a missing record is a no-op
	require.NoError(t, svc.Delete(ctx, "usr1", "nope"))

	entries, err := svc.QueryAudit(ctx, "usr1", nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionDeleteRecord, entries[1].Action)
	assert.Equal(t, 3.0, entries[1].GPA)
}

func TestService_AggregateFinal(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, nopLogger{})

	first, err := svc.Save(ctx, "usr1", NewRecord{
		Title: "Semester 1",
		Modules: []grading.ModuleEntry{
			{Label: "Networks", Grade: grading.GradeA},
			{Label: "Databases", Grade: grading.GradeB, Reference: true}, // B -> C
		},
	})
	require.NoError(t, err)
	second, err := svc.Save(ctx, "usr1", NewRecord{
		Title:   "Semester 2",
		Modules: []grading.ModuleEntry{{Label: "Security", Grade: grading.GradeB}},
	})
	require.NoError(t, err)

	res, err := svc.AggregateFinal(ctx, "usr1", first.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, res.FirstGPA)
	assert.Equal(t, 4.0, res.SecondGPA)
	assert.Equal(t, 4.0, res.FinalGPA)
	assert.Equal(t, grading.StatusExcellentPass, res.Status)

	// missing record
	_, err = svc.AggregateFinal(ctx, "usr1", first.ID, "nope")
	assert.Equal(t, ErrNotFound, errors.Cause(err))

	// records belong to users; another user cannot aggregate them
	_, err = svc.AggregateFinal(ctx, "usr2", first.ID, second.ID)
	assert.Equal(t, ErrNotFound, errors.Cause(err))
}

func TestService_SaveFinal(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, nopLogger{})

	first, err := svc.Save(ctx, "usr1", NewRecord{
		Title:   "Semester 1",
		Modules: []grading.ModuleEntry{{Label: "Networks", Grade: grading.GradeA}},
	})
	require.NoError(t, err)
	second, err := svc.Save(ctx, "usr1", NewRecord{
		Title:   "Semester 2",
		Modules: []grading.ModuleEntry{{Label: "Security", Grade: grading.GradeC}},
	})
	require.NoError(t, err)

	final, err := svc.SaveFinal(ctx, "usr1", NewFinalRecord{
		Title:          "Year 3",
		FirstRecordID:  first.ID,
		SecondRecordID: second.ID,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, final.ID)
	assert.Equal(t, 4.0, final.FinalGPA)
	assert.Equal(t, grading.StatusExcellentPass, final.Status)

	finals, err := svc.QueryFinal(ctx, "usr1", nil)
	require.NoError(t, err)
	require.Len(t, finals, 1)

	require.NoError(t, svc.DeleteFinal(ctx, "usr1", final.ID))
	finals, err = svc.QueryFinal(ctx, "usr1", nil)
	require.NoError(t, err)
	assert.Empty(t, finals)

	entries, err := svc.QueryAudit(ctx, "usr1", nil)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, ActionSaveFinalGPA, entries[2].Action)
	assert.Equal(t, ActionDeleteFinalRecord, entries[3].Action)
}
