package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event represents a scheduled event organized by a user.
type Event struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	Address     string    `json:"address"`
	OrganizerID uuid.UUID `json:"organizer_id"`
}

// NewEvent returns a new Event with the given fields. The caller assigns the ID.
func NewEvent(id uuid.UUID, title, description, address string, startTime time.Time, organizerID uuid.UUID) *Event {
	return &Event{
		ID:          id,
		Title:       title,
		Description: description,
		StartTime:   startTime,
		Address:     address,
		OrganizerID: organizerID,
	}
}

// EventRepository defines the interface for event storage.
// Returned start times are in UTC at the backend's precision (microseconds in PostgreSQL,
// milliseconds in MongoDB); compare them with time.Time.Equal.
type EventRepository interface {
	Add(ctx context.Context, event *Event) (*Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Event, bool, error)
	// FindByTitle returns events whose title contains the given text, ignoring case.
	FindByTitle(ctx context.Context, title string) ([]*Event, error)
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]*Event, error)
	GetAll(ctx context.Context) ([]*Event, error)
	Update(ctx context.Context, event *Event) (*Event, error)
	// Remove fails with ErrRestrictedDeletion while a participation references the event.
	Remove(ctx context.Context, id uuid.UUID) error
}

// CreateEventInput carries the fields needed to create an event.
type CreateEventInput struct {
	Title       string
	Description string
	StartTime   time.Time
	Address     string
	OrganizerID uuid.UUID
}

// EventService defines the business logic for events.
type EventService interface {
	Create(ctx context.Context, in CreateEventInput) (*Event, error)
	Reschedule(ctx context.Context, id uuid.UUID, startTime time.Time) (*Event, error)
	// Cancel removes the event together with its participations and their notifications.
	Cancel(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, title string) ([]*Event, error)
}
