package feedback

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/user"
)

type (
	Service interface {
		Submit(ctx context.Context, usr user.User, nf NewFeedback) (Feedback, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Feedback, error)
		Delete(ctx context.Context, ids ...string) error
		// Broadcast emails the announcement to every active student.
		// It returns the number of recipients.
		Broadcast(ctx context.Context, br BroadcastRequest) (int, error)
	}

	service struct {
		repo    Repository
		userSvc user.Service
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, userSvc user.Service, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:    repo,
		userSvc: userSvc,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *service) Submit(ctx context.Context, usr user.User, nf NewFeedback) (Feedback, error) {
	fb := Feedback{
		UserID:    usr.ID,
		Username:  usr.Username,
		Message:   core.CleanString(nf.Message),
		CreatedAt: time.Now().UTC(),
	}
	fb, err := svc.repo.CreateFeedback(ctx, fb)
	if err != nil {
		return Feedback{}, errors.Wrap(err, "creating feedback")
	}
	return fb, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Feedback, error) {
	return svc.repo.QueryFeedback(ctx, filter, ordering)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteFeedbackByID(ctx, ids...)
}

func (svc *service) Broadcast(ctx context.Context, br BroadcastRequest) (int, error) {
	active := true
	students, err := svc.userSvc.Query(ctx, &user.QueryFilter{Roles: user.StudentRoles, IsActive: &active}, nil)
	if err != nil {
		return 0, errors.Wrap(err, "querying students")
	}
	if len(students) == 0 {
		return 0, nil
	}

	msgs := make([]*core.EmailMessage, 0, len(students))
	for _, std := range students {
		msgs = append(msgs, &core.EmailMessage{
			To:      []mail.Address{{Name: std.Name, Address: std.Email}},
			Subject: br.Subject,
			BodyStr: br.Message,
		})
	}
	svc.mailSvc.SendMessages(msgs...)
	return len(msgs), nil
}
