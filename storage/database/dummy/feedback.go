package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/feedback"
)

type feedbackRepository struct {
	db *feedbackTable
}

var _ feedback.Repository = (*feedbackRepository)(nil) // interface compliance check

func NewFeedbackRepository(db *DB) feedback.Repository {
	return &feedbackRepository{db: db.feedback}
}

func (repo *feedbackRepository) CreateFeedback(_ context.Context, fb feedback.Feedback) (feedback.Feedback, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	fb.ID = uuid.New().String()
	repo.db.table = append(repo.db.table, fb)
	return fb, nil
}

func (repo *feedbackRepository) QueryFeedback(_ context.Context, filter *feedback.QueryFilter, _ []core.DBOrdering) ([]feedback.Feedback, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	fbs := make([]feedback.Feedback, 0, len(repo.db.table))
	for _, fb := range repo.db.table {
		if filter != nil {
			if filter.UserID != "" && fb.UserID != filter.UserID {
				continue
			}
			if !filter.CreatedFrom.IsZero() && fb.CreatedAt.Before(filter.CreatedFrom) {
				continue
			}
			if !filter.CreatedBefore.IsZero() && !fb.CreatedAt.Before(filter.CreatedBefore) {
				continue
			}
		}
		fbs = append(fbs, fb)
	}
	return fbs, nil
}

func (repo *feedbackRepository) DeleteFeedbackByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	kept := repo.db.table[:0]
	for _, fb := range repo.db.table {
		var hit bool
		for _, id := range ids {
			if fb.ID == id {
				hit = true
				break
			}
		}
		if !hit {
			kept = append(kept, fb)
		}
	}
	repo.db.table = kept
	return nil
}
