// Package user implements account administration: listing staff and
// switching their status.
package user

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/repository"
	"github.com/homecare/visit-api/internal/service/event"
	apperrors "github.com/homecare/visit-api/pkg/errors"
	"github.com/homecare/visit-api/pkg/pagination"
)

type ListQuery struct {
	Role   string
	Status string
	Search string
}

type Service struct {
	tx     repository.Transactor
	users  repository.UserRepository
	events event.Emitter
	now    func() time.Time
}

func NewService(tx repository.Transactor, users repository.UserRepository, events event.Emitter) *Service {
	return &Service{tx: tx, users: users, events: events, now: time.Now}
}

func (s *Service) List(ctx context.Context, page pagination.Params, q ListQuery) (*model.UserPage, error) {
	role := model.Role(q.Role)
	if role != "" && !role.Valid() {
		return nil, apperrors.NewValidation("role must be recorder, doctor or admin", nil)
	}

	users, total, err := s.users.List(ctx, model.UserFilter{
		Role:   role,
		Status: q.Status,
		Search: strings.TrimSpace(q.Search),
		Limit:  page.Limit,
		Offset: page.Offset(),
	})
	if err != nil {
		return nil, apperrors.Wrap("list users", err)
	}
	return &model.UserPage{
		Users:      users,
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages(total),
	}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap("get user", err)
	}
	return user, nil
}

type statusEvent struct {
	UserID    uuid.UUID `json:"user_id"`
	Status    string    `json:"status"`
	ChangedBy uuid.UUID `json:"changed_by"`
}

// UpdateStatus activates, deactivates or suspends an account. Admins
// cannot change their own status.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string, actor uuid.UUID) (*model.User, error) {
	if id == actor {
		return nil, apperrors.NewBusinessRule("cannot change your own status")
	}

	var user *model.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		now := s.now()
		if err := s.users.UpdateStatus(ctx, id, status, now); err != nil {
			return err
		}
		var err error
		if user, err = s.users.GetByID(ctx, id); err != nil {
			return err
		}
		return s.events.Emit(ctx, model.EventUserStatusChanged, statusEvent{
			UserID: id, Status: status, ChangedBy: actor,
		})
	})
	if err != nil {
		return nil, apperrors.Wrap("update user status", err)
	}
	return user, nil
}
