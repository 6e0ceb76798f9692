package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"eventhub/internal/domain"
	"eventhub/internal/storage"
)

type participationService struct {
	store          domain.Store
	contextTimeout time.Duration
}

func NewParticipationService(store domain.Store, timeout time.Duration) domain.ParticipationService {
	return &participationService{store: store, contextTimeout: timeout}
}

// Invite creates an invited participation. A user holds at most one participation per event.
func (s *participationService) Invite(ctx context.Context, in domain.InviteInput) (*domain.Participation, error) {
	if in.Role == "" {
		in.Role = domain.ParticipationRoleAttendee
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown participation role %q", domain.ErrInvalidInput, in.Role)
	}

	var created *domain.Participation
	err := storage.RunInTransaction(ctx, s.store, s.contextTimeout, func(ctx context.Context, scope *domain.Scope) error {
		if _, ok, err := scope.Users.GetByID(ctx, in.UserID); err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		} else if !ok {
			return fmt.Errorf("user %s: %w", in.UserID, domain.ErrNotFound)
		}
		if _, ok, err := scope.Events.GetByID(ctx, in.EventID); err != nil {
			return fmt.Errorf("failed to get event: %w", err)
		} else if !ok {
			return fmt.Errorf("event %s: %w", in.EventID, domain.ErrNotFound)
		}
		if _, ok, err := scope.Participations.GetByUserAndEvent(ctx, in.UserID, in.EventID); err != nil {
			return fmt.Errorf("failed to check participation: %w", err)
		} else if ok {
			return domain.ErrAlreadyParticipating
		}

		p := domain.NewParticipation(uuid.New(), in.UserID, in.EventID, in.Role, domain.ParticipationInvited)
		var err error
		if created, err = scope.Participations.Add(ctx, p); err != nil {
			return fmt.Errorf("failed to create participation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *participationService) Respond(ctx context.Context, id uuid.UUID, status domain.ParticipationStatus) (*domain.Participation, error) {
	if !status.Valid() || status == domain.ParticipationInvited {
		return nil, fmt.Errorf("%w: cannot respond with status %q", domain.ErrInvalidInput, status)
	}
	var updated *domain.Participation
	err := storage.RunInTransaction(ctx, s.store, s.contextTimeout, func(ctx context.Context, scope *domain.Scope) error {
		p, ok, err := scope.Participations.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get participation: %w", err)
		}
		if !ok {
			return fmt.Errorf("participation %s: %w", id, domain.ErrNotFound)
		}
		p.Status = status
		if updated, err = scope.Participations.Update(ctx, p); err != nil {
			return fmt.Errorf("failed to update participation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Withdraw removes the participation and its notifications. Withdrawing twice is not an error.
func (s *participationService) Withdraw(ctx context.Context, id uuid.UUID) error {
	return storage.RunInTransaction(ctx, s.store, s.contextTimeout, func(ctx context.Context, scope *domain.Scope) error {
		if err := scope.Participations.Remove(ctx, id); err != nil {
			return fmt.Errorf("failed to remove participation: %w", err)
		}
		return nil
	})
}
