package record

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/grading"
)

// audit actions
const (
	ActionSaveRecord        = "save_record"
	ActionDeleteRecord      = "delete_record"
	ActionSaveFinalGPA      = "save_final_gpa"
	ActionDeleteFinalRecord = "delete_final_record"
)

var (
	// errors
	ErrNotFound = errors.New("record not found")
)

type (
	// Record is a saved semester evaluation. The GPA, Status and Details
	// fields are always recomputed server-side on save; clients never
	// submit them.
	Record struct {
		ID        string                 `json:"id"`
		UserID    string                 `json:"-"`
		Title     string                 `json:"title"`
		Semester  string                 `json:"semester,omitempty"`
		Notes     string                 `json:"notes,omitempty"`
		Modules   []grading.ModuleEntry  `json:"modules"`
		GPA       float64                `json:"gpa"`
		Status    string                 `json:"status"`
		Details   []grading.ModuleResult `json:"details"`
		CreatedAt time.Time              `json:"created_at"`
		UpdatedAt time.Time              `json:"updated_at"`
	}

	// FinalRecord is a saved final GPA aggregated from two semester Records.
	FinalRecord struct {
		ID             string    `json:"id"`
		UserID         string    `json:"-"`
		Title          string    `json:"title"`
		FirstRecordID  string    `json:"first_record_id"`
		SecondRecordID string    `json:"second_record_id"`
		FirstGPA       float64   `json:"first_gpa"`
		SecondGPA      float64   `json:"second_gpa"`
		FinalGPA       float64   `json:"final_gpa"`
		Status         string    `json:"status"`
		CreatedAt      time.Time `json:"created_at"`
	}

	// AuditEntry tracks a save or delete action on a user's records.
	AuditEntry struct {
		ID          string    `json:"id"`
		UserID      string    `json:"-"`
		Action      string    `json:"action"`
		RecordTitle string    `json:"record_title"`
		GPA         float64   `json:"gpa"`
		CreatedAt   time.Time `json:"created_at"`
	}

	NewRecord struct {
		Title    string                `json:"title" validate:"required"`
		Semester string                `json:"semester"`
		Notes    string                `json:"notes"`
		Modules  []grading.ModuleEntry `json:"modules" validate:"required,min=1,dive"`
	}

	NewFinalRecord struct {
		Title          string `json:"title" validate:"required"`
		FirstRecordID  string `json:"first_record_id" validate:"required"`
		SecondRecordID string `json:"second_record_id" validate:"required"`
	}

	Repository interface {
		CreateRecord(ctx context.Context, rec Record) (Record, error)
		GetRecord(ctx context.Context, userID, id string) (Record, error)
		QueryRecords(ctx context.Context, userID string, ordering []core.DBOrdering) ([]Record, error)
		DeleteRecordsByID(ctx context.Context, userID string, ids ...string) error

		CreateFinalRecord(ctx context.Context, rec FinalRecord) (FinalRecord, error)
		GetFinalRecord(ctx context.Context, userID, id string) (FinalRecord, error)
		QueryFinalRecords(ctx context.Context, userID string, ordering []core.DBOrdering) ([]FinalRecord, error)
		DeleteFinalRecordsByID(ctx context.Context, userID string, ids ...string) error

		CreateAuditEntry(ctx context.Context, entry AuditEntry) (AuditEntry, error)
		QueryAuditEntries(ctx context.Context, userID string, ordering []core.DBOrdering) ([]AuditEntry, error)
	}
)
