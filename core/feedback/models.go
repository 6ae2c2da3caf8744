package feedback

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
)

var (
	// errors
	ErrNotFound = errors.New("feedback not found")
)

type (
	// Feedback is a message submitted by a student to the faculty.
	Feedback struct {
		ID        string    `json:"id"`
		UserID    string    `json:"-"`
		Username  string    `json:"username"`
		Message   string    `json:"message"`
		CreatedAt time.Time `json:"created_at"`
	}

	NewFeedback struct {
		Message string `json:"message" validate:"required"`
	}

	// BroadcastRequest is an announcement emailed to all active students.
	BroadcastRequest struct {
		Subject string `json:"subject" validate:"required"`
		Message string `json:"message" validate:"required"`
	}

	Repository interface {
		CreateFeedback(ctx context.Context, fb Feedback) (Feedback, error)
		QueryFeedback(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Feedback, error)
		DeleteFeedbackByID(ctx context.Context, ids ...string) error
	}

	// QueryFilter fields are AND'ed; zero-value fields are skipped.
	QueryFilter struct {
		UserID        string
		CreatedFrom   time.Time
		CreatedBefore time.Time
	}
)

func (f *QueryFilter) IsEmpty() bool {
	if f == nil {
		return true
	}
	return f.UserID == "" && f.CreatedFrom.IsZero() && f.CreatedBefore.IsZero()
}
