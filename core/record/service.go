package record

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/grading"
)

type (
	Service interface {
		// Save evaluates the submitted modules and persists the result.
		// A *grading.Blocked error is returned unwrapped when an E or F
		// grade disables the calculation; nothing is saved in that case.
		Save(ctx context.Context, userID string, nr NewRecord) (Record, error)
		Query(ctx context.Context, userID string, ordering []core.DBOrdering) ([]Record, error)
		GetByID(ctx context.Context, userID, id string) (Record, error)
		Delete(ctx context.Context, userID string, ids ...string) error

		// AggregateFinal averages the GPAs of two saved semester records.
		// ErrNotFound is returned when either record does not exist or
		// belongs to another user.
		AggregateFinal(ctx context.Context, userID, firstID, secondID string) (grading.FinalResult, error)
		SaveFinal(ctx context.Context, userID string, nfr NewFinalRecord) (FinalRecord, error)
		QueryFinal(ctx context.Context, userID string, ordering []core.DBOrdering) ([]FinalRecord, error)
		DeleteFinal(ctx context.Context, userID string, ids ...string) error

		QueryAudit(ctx context.Context, userID string, ordering []core.DBOrdering) ([]AuditEntry, error)
	}

	service struct {
		repo   Repository
		logger core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, logger core.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger,
	}
}

func (svc *service) Save(ctx context.Context, userID string, nr NewRecord) (Record, error) {
	res, err := grading.EvaluateSemester(nr.Modules)
	if err != nil {
		return Record{}, err
	}

	now := time.Now().UTC()
	rec := Record{
		UserID:    userID,
		Title:     nr.Title,
		Semester:  nr.Semester,
		Notes:     nr.Notes,
		Modules:   nr.Modules,
		GPA:       res.GPA,
		Status:    res.Status,
		Details:   res.Details,
		CreatedAt: now,
		UpdatedAt: now,
	}
	rec, err = svc.repo.CreateRecord(ctx, rec)
	if err != nil {
		return Record{}, errors.Wrap(err, "creating record")
	}
	svc.audit(ctx, userID, ActionSaveRecord, rec.Title, rec.GPA)
	return rec, nil
}

func (svc *service) Query(ctx context.Context, userID string, ordering []core.DBOrdering) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, userID, ordering)
}

func (svc *service) GetByID(ctx context.Context, userID, id string) (Record, error) {
	return svc.repo.GetRecord(ctx, userID, id)
}

func (svc *service) Delete(ctx context.Context, userID string, ids ...string) error {
	for _, id := range ids {
		rec, err := svc.repo.GetRecord(ctx, userID, id)
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				continue
			}
			return err
		}
		if err = svc.repo.DeleteRecordsByID(ctx, userID, id); err != nil {
			return err
		}
		svc.audit(ctx, userID, ActionDeleteRecord, rec.Title, rec.GPA)
	}
	return nil
}

func (svc *service) AggregateFinal(ctx context.Context, userID, firstID, secondID string) (grading.FinalResult, error) {
	first, err := svc.repo.GetRecord(ctx, userID, firstID)
	if err != nil {
		return grading.FinalResult{}, err
	}
	second, err := svc.repo.GetRecord(ctx, userID, secondID)
	if err != nil {
		return grading.FinalResult{}, err
	}
	return grading.AggregateFinal(first.GPA, second.GPA), nil
}

func (svc *service) SaveFinal(ctx context.Context, userID string, nfr NewFinalRecord) (FinalRecord, error) {
	res, err := svc.AggregateFinal(ctx, userID, nfr.FirstRecordID, nfr.SecondRecordID)
	if err != nil {
		return FinalRecord{}, err
	}

	rec := FinalRecord{
		UserID:         userID,
		Title:          nfr.Title,
		FirstRecordID:  nfr.FirstRecordID,
		SecondRecordID: nfr.SecondRecordID,
		FirstGPA:       res.FirstGPA,
		SecondGPA:      res.SecondGPA,
		FinalGPA:       res.FinalGPA,
		Status:         res.Status,
		CreatedAt:      time.Now().UTC(),
	}
	rec, err = svc.repo.CreateFinalRecord(ctx, rec)
	if err != nil {
		return FinalRecord{}, errors.Wrap(err, "creating final record")
	}
	svc.audit(ctx, userID, ActionSaveFinalGPA, rec.Title, rec.FinalGPA)
	return rec, nil
}

func (svc *service) QueryFinal(ctx context.Context, userID string, ordering []core.DBOrdering) ([]FinalRecord, error) {
	return svc.repo.QueryFinalRecords(ctx, userID, ordering)
}

func (svc *service) DeleteFinal(ctx context.Context, userID string, ids ...string) error {
	for _, id := range ids {
		rec, err := svc.repo.GetFinalRecord(ctx, userID, id)
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				continue
			}
			return err
		}
		if err = svc.repo.DeleteFinalRecordsByID(ctx, userID, id); err != nil {
			return err
		}
		svc.audit(ctx, userID, ActionDeleteFinalRecord, rec.Title, rec.FinalGPA)
	}
	return nil
}

func (svc *service) QueryAudit(ctx context.Context, userID string, ordering []core.DBOrdering) ([]AuditEntry, error) {
	return svc.repo.QueryAuditEntries(ctx, userID, ordering)
}

// audit records an action on the trail; failures are logged, never fatal.
func (svc *service) audit(ctx context.Context, userID, action, title string, gpa float64) {
	entry := AuditEntry{
		UserID:      userID,
		Action:      action,
		RecordTitle: title,
		GPA:         gpa,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := svc.repo.CreateAuditEntry(ctx, entry); err != nil {
		svc.logger.Error("creating audit entry", err)
	}
}
