package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/grading"
	"github.com/trezcool/alama/core/record"
)

type recordRow struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	Title     string         `db:"title"`
	Semester  null.String    `db:"semester"`
	Notes     null.String    `db:"notes"`
	Modules   types.JSONText `db:"modules"`
	GPA       float64        `db:"gpa"`
	Status    string         `db:"status"`
	Details   types.JSONText `db:"details"`
	CreatedAt null.Time      `db:"created_at"`
	UpdatedAt null.Time      `db:"updated_at"`
}

type finalRecordRow struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	Title          string    `db:"title"`
	FirstRecordID  string    `db:"first_record_id"`
	SecondRecordID string    `db:"second_record_id"`
	FirstGPA       float64   `db:"first_gpa"`
	SecondGPA      float64   `db:"second_gpa"`
	FinalGPA       float64   `db:"final_gpa"`
	Status         string    `db:"status"`
	CreatedAt      null.Time `db:"created_at"`
}

type auditRow struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	Action      string    `db:"action"`
	RecordTitle string    `db:"record_title"`
	GPA         float64   `db:"gpa"`
	CreatedAt   null.Time `db:"created_at"`
}

type recordRepository struct {
	db *sqlx.DB
}

var _ record.Repository = (*recordRepository)(nil) // interface compliance check

func NewRecordRepository(db *sqlx.DB) *recordRepository {
	return &recordRepository{db: db}
}

func (repo recordRepository) toRow(rec record.Record) (recordRow, error) {
	modules, err := json.Marshal(rec.Modules)
	if err != nil {
		return recordRow{}, errors.Wrap(err, "marshalling modules")
	}
	details, err := json.Marshal(rec.Details)
	if err != nil {
		return recordRow{}, errors.Wrap(err, "marshalling details")
	}
	return recordRow{
		ID:        rec.ID,
		UserID:    rec.UserID,
		Title:     rec.Title,
		Semester:  null.NewString(rec.Semester, rec.Semester != ""),
		Notes:     null.NewString(rec.Notes, rec.Notes != ""),
		Modules:   modules,
		GPA:       rec.GPA,
		Status:    rec.Status,
		Details:   details,
		CreatedAt: null.NewTime(rec.CreatedAt.UTC(), !rec.CreatedAt.IsZero()),
		UpdatedAt: null.NewTime(rec.UpdatedAt.UTC(), !rec.UpdatedAt.IsZero()),
	}, nil
}

func (repo recordRepository) fromRow(row recordRow) (record.Record, error) {
	var modules []grading.ModuleEntry
	if err := json.Unmarshal(row.Modules, &modules); err != nil {
		return record.Record{}, errors.Wrap(err, "unmarshalling modules")
	}
	var details []grading.ModuleResult
	if err := json.Unmarshal(row.Details, &details); err != nil {
		return record.Record{}, errors.Wrap(err, "unmarshalling details")
	}
	return record.Record{
		ID:        row.ID,
		UserID:    row.UserID,
		Title:     row.Title,
		Semester:  row.Semester.String,
		Notes:     row.Notes.String,
		Modules:   modules,
		GPA:       row.GPA,
		Status:    row.Status,
		Details:   details,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}, nil
}

// trapNoRowsErr maps psql "no rows" err to record.ErrNotFound
func trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return record.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func orderBy(ordering []core.DBOrdering) string {
	if len(ordering) == 0 {
		return " ORDER BY created_at DESC"
	}
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, ord.String())
	}
	return " ORDER BY " + strings.Join(orderList, ", ")
}

func (repo recordRepository) CreateRecord(ctx context.Context, rec record.Record) (record.Record, error) {
	rec.ID = uuid.New().String()
	row, err := repo.toRow(rec)
	if err != nil {
		return record.Record{}, err
	}
	query := `
		INSERT INTO saved_record (id, user_id, title, semester, notes, modules, gpa, status, details, created_at, updated_at)
		VALUES (:id, :user_id, :title, :semester, :notes, :modules, :gpa, :status, :details, :created_at, :updated_at)`
	if _, err = repo.db.NamedExecContext(ctx, query, row); err != nil {
		return record.Record{}, errors.Wrap(err, "inserting record")
	}
	return rec, nil
}

func (repo recordRepository) GetRecord(ctx context.Context, userID, id string) (record.Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return record.Record{}, record.ErrNotFound
	}
	var row recordRow
	query := `SELECT * FROM saved_record WHERE user_id = $1 AND id = $2`
	if err := repo.db.GetContext(ctx, &row, query, userID, id); err != nil {
		return record.Record{}, trapNoRowsErr(err, "finding record")
	}
	return repo.fromRow(row)
}

func (repo recordRepository) QueryRecords(ctx context.Context, userID string, ordering []core.DBOrdering) ([]record.Record, error) {
	var rows []recordRow
	query := `SELECT * FROM saved_record WHERE user_id = $1` + orderBy(ordering)
	if err := repo.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, errors.Wrap(err, "querying records")
	}
	recs := make([]record.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := repo.fromRow(row)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (repo recordRepository) DeleteRecordsByID(ctx context.Context, userID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM saved_record WHERE user_id = $1 AND id = ANY($2)`
	if _, err := repo.db.ExecContext(ctx, query, userID, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting records")
	}
	return nil
}

func (repo recordRepository) CreateFinalRecord(ctx context.Context, rec record.FinalRecord) (record.FinalRecord, error) {
	rec.ID = uuid.New().String()
	row := finalRecordRow{
		ID:             rec.ID,
		UserID:         rec.UserID,
		Title:          rec.Title,
		FirstRecordID:  rec.FirstRecordID,
		SecondRecordID: rec.SecondRecordID,
		FirstGPA:       rec.FirstGPA,
		SecondGPA:      rec.SecondGPA,
		FinalGPA:       rec.FinalGPA,
		Status:         rec.Status,
		CreatedAt:      null.NewTime(rec.CreatedAt.UTC(), !rec.CreatedAt.IsZero()),
	}
	query := `
		INSERT INTO final_gpa_record (id, user_id, title, first_record_id, second_record_id, first_gpa, second_gpa, final_gpa, status, created_at)
		VALUES (:id, :user_id, :title, :first_record_id, :second_record_id, :first_gpa, :second_gpa, :final_gpa, :status, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return record.FinalRecord{}, errors.Wrap(err, "inserting final record")
	}
	return rec, nil
}

func (repo recordRepository) fromFinalRow(row finalRecordRow) record.FinalRecord {
	return record.FinalRecord{
		ID:             row.ID,
		UserID:         row.UserID,
		Title:          row.Title,
		FirstRecordID:  row.FirstRecordID,
		SecondRecordID: row.SecondRecordID,
		FirstGPA:       row.FirstGPA,
		SecondGPA:      row.SecondGPA,
		FinalGPA:       row.FinalGPA,
		Status:         row.Status,
		CreatedAt:      row.CreatedAt.Time,
	}
}

func (repo recordRepository) GetFinalRecord(ctx context.Context, userID, id string) (record.FinalRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return record.FinalRecord{}, record.ErrNotFound
	}
	var row finalRecordRow
	query := `SELECT * FROM final_gpa_record WHERE user_id = $1 AND id = $2`
	if err := repo.db.GetContext(ctx, &row, query, userID, id); err != nil {
		return record.FinalRecord{}, trapNoRowsErr(err, "finding final record")
	}
	return repo.fromFinalRow(row), nil
}

func (repo recordRepository) QueryFinalRecords(ctx context.Context, userID string, ordering []core.DBOrdering) ([]record.FinalRecord, error) {
	var rows []finalRecordRow
	query := `SELECT * FROM final_gpa_record WHERE user_id = $1` + orderBy(ordering)
	if err := repo.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, errors.Wrap(err, "querying final records")
	}
	recs := make([]record.FinalRecord, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, repo.fromFinalRow(row))
	}
	return recs, nil
}

func (repo recordRepository) DeleteFinalRecordsByID(ctx context.Context, userID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM final_gpa_record WHERE user_id = $1 AND id = ANY($2)`
	if _, err := repo.db.ExecContext(ctx, query, userID, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting final records")
	}
	return nil
}

func (repo recordRepository) CreateAuditEntry(ctx context.Context, entry record.AuditEntry) (record.AuditEntry, error) {
	entry.ID = uuid.New().String()
	row := auditRow{
		ID:          entry.ID,
		UserID:      entry.UserID,
		Action:      entry.Action,
		RecordTitle: entry.RecordTitle,
		GPA:         entry.GPA,
		CreatedAt:   null.NewTime(entry.CreatedAt.UTC(), !entry.CreatedAt.IsZero()),
	}
	query := `
		INSERT INTO save_action (id, user_id, action, record_title, gpa, created_at)
		VALUES (:id, :user_id, :action, :record_title, :gpa, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return record.AuditEntry{}, errors.Wrap(err, "inserting audit entry")
	}
	return entry, nil
}

func (repo recordRepository) QueryAuditEntries(ctx context.Context, userID string, ordering []core.DBOrdering) ([]record.AuditEntry, error) {
	var rows []auditRow
	query := `SELECT * FROM save_action WHERE user_id = $1` + orderBy(ordering)
	if err := repo.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, errors.Wrap(err, "querying audit entries")
	}
	entries := make([]record.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, record.AuditEntry{
			ID:          row.ID,
			UserID:      row.UserID,
			Action:      row.Action,
			RecordTitle: row.RecordTitle,
			GPA:         row.GPA,
			CreatedAt:   row.CreatedAt.Time,
		})
	}
	return entries, nil
}
