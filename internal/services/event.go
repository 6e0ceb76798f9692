package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventhub/internal/domain"
	"eventhub/internal/storage"
)

type eventService struct {
	store          domain.Store
	now            func() time.Time
	contextTimeout time.Duration
}

// NewEventService creates an EventService. now is the clock used to reject events starting
// in the past; nil means time.Now.
func NewEventService(store domain.Store, now func() time.Time, timeout time.Duration) domain.EventService {
	if now == nil {
		now = time.Now
	}
	return &eventService{store: store, now: now, contextTimeout: timeout}
}

// Create stores the event and enrolls its organizer as an accepted organizer participant
// in the same unit of work.
func (s *eventService) Create(ctx context.Context, in domain.CreateEventInput) (*domain.Event, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if !in.StartTime.After(s.now()) {
		return nil, domain.ErrEventStartNotInFuture
	}

	var created *domain.Event
	err := storage.RunInTransaction(ctx, s.store, s.contextTimeout, func(ctx context.Context, scope *domain.Scope) error {
		_, ok, err := scope.Users.GetByID(ctx, in.OrganizerID)
		if err != nil {
			return fmt.Errorf("failed to get organizer: %w", err)
		}
		if !ok {
			return fmt.Errorf("organizer %s: %w", in.OrganizerID, domain.ErrInvalidReference)
		}

		event := domain.NewEvent(uuid.New(), in.Title, in.Description, in.Address, in.StartTime, in.OrganizerID)
		if created, err = scope.Events.Add(ctx, event); err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}
		organizer := domain.NewParticipation(uuid.New(), in.OrganizerID, event.ID, domain.ParticipationRoleOrganizer, domain.ParticipationAccepted)
		if _, err := scope.Participations.Add(ctx, organizer); err != nil {
			return fmt.Errorf("failed to enroll organizer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *eventService) Reschedule(ctx context.Context, id uuid.UUID, startTime time.Time) (*domain.Event, error) {
	if !startTime.After(s.now()) {
		return nil, domain.ErrEventStartNotInFuture
	}
	var updated *domain.Event
	err := storage.RunInTransaction(ctx, s.store, s.contextTimeout, func(ctx context.Context, scope *domain.Scope) error {
		event, ok, err := scope.Events.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get event: %w", err)
		}
		if !ok {
			return fmt.Errorf("event %s: %w", id, domain.ErrNotFound)
		}
		event.StartTime = startTime
		if updated, err = scope.Events.Update(ctx, event); err != nil {
			return fmt.Errorf("failed to update event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *eventService) Cancel(ctx context.Context, id uuid.UUID) error {
	return storage.RunInTransaction(ctx, s.store, s.contextTimeout, func(ctx context.Context, scope *domain.Scope) error {
		_, ok, err := scope.Events.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get event: %w", err)
		}
		if !ok {
			return fmt.Errorf("event %s: %w", id, domain.ErrNotFound)
		}
		participations, err := scope.Participations.ListByEvent(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to list participations: %w", err)
		}
		for _, p := range participations {
			if err := scope.Participations.Remove(ctx, p.ID); err != nil {
				return fmt.Errorf("failed to remove participation %s: %w", p.ID, err)
			}
		}
		if err := scope.Events.Remove(ctx, id); err != nil {
			return fmt.Errorf("failed to remove event: %w", err)
		}
		return nil
	})
}

// Search matches title case-insensitively; an empty title lists every event.
func (s *eventService) Search(ctx context.Context, title string) ([]*domain.Event, error) {
	title = strings.TrimSpace(title)
	var events []*domain.Event
	err := storage.RunInScope(ctx, s.store, s.contextTimeout, func(ctx context.Context, scope *domain.Scope) error {
		var err error
		if title == "" {
			events, err = scope.Events.GetAll(ctx)
		} else {
			events, err = scope.Events.FindByTitle(ctx, title)
		}
		if err != nil {
			return fmt.Errorf("failed to search events: %w", err)
		}
		return nil
	})
	return events, err
}
