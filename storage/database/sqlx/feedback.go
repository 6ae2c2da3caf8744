package sqlxrepos

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/feedback"
)

type feedbackRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Username  string    `db:"username"`
	Message   string    `db:"message"`
	CreatedAt null.Time `db:"created_at"`
}

type feedbackRepository struct {
	db *sqlx.DB
}

var _ feedback.Repository = (*feedbackRepository)(nil) // interface compliance check

func NewFeedbackRepository(db *sqlx.DB) *feedbackRepository {
	return &feedbackRepository{db: db}
}

func (repo feedbackRepository) CreateFeedback(ctx context.Context, fb feedback.Feedback) (feedback.Feedback, error) {
	fb.ID = uuid.New().String()
	row := feedbackRow{
		ID:        fb.ID,
		UserID:    fb.UserID,
		Username:  fb.Username,
		Message:   fb.Message,
		CreatedAt: null.NewTime(fb.CreatedAt.UTC(), !fb.CreatedAt.IsZero()),
	}
	query := `
		INSERT INTO feedback (id, user_id, username, message, created_at)
		VALUES (:id, :user_id, :username, :message, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return feedback.Feedback{}, errors.Wrap(err, "inserting feedback")
	}
	return fb, nil
}

func (repo feedbackRepository) QueryFeedback(ctx context.Context, filter *feedback.QueryFilter, ordering []core.DBOrdering) ([]feedback.Feedback, error) {
	query := `SELECT * FROM feedback`
	var (
		conds []string
		args  []interface{}
	)
	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.UserID != "" {
			conds = append(conds, fmt.Sprintf("user_id = %s", arg(filter.UserID)))
		}
		if !filter.CreatedFrom.IsZero() {
			conds = append(conds, fmt.Sprintf("created_at >= %s", arg(filter.CreatedFrom.UTC())))
		}
		if !filter.CreatedBefore.IsZero() {
			conds = append(conds, fmt.Sprintf("created_at < %s", arg(filter.CreatedBefore.UTC())))
		}
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderBy(ordering)

	var rows []feedbackRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying feedback")
	}
	fbs := make([]feedback.Feedback, 0, len(rows))
	for _, row := range rows {
		fbs = append(fbs, feedback.Feedback{
			ID:        row.ID,
			UserID:    row.UserID,
			Username:  row.Username,
			Message:   row.Message,
			CreatedAt: row.CreatedAt.Time,
		})
	}
	return fbs, nil
}

func (repo feedbackRepository) DeleteFeedbackByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM feedback WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting feedback")
	}
	return nil
}
