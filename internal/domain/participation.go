package domain

import (
	"context"

	"github.com/google/uuid"
)

// ParticipationRole is the role a user holds at an event.
type ParticipationRole string

const (
	ParticipationRoleOrganizer ParticipationRole = "organizer"
	ParticipationRoleSpeaker   ParticipationRole = "speaker"
	ParticipationRoleAttendee  ParticipationRole = "attendee"
)

func (r ParticipationRole) Valid() bool {
	return r == ParticipationRoleOrganizer || r == ParticipationRoleSpeaker || r == ParticipationRoleAttendee
}

// ParticipationStatus tracks a user's answer to an invitation.
type ParticipationStatus string

const (
	ParticipationInvited   ParticipationStatus = "invited"
	ParticipationAccepted  ParticipationStatus = "accepted"
	ParticipationDeclined  ParticipationStatus = "declined"
	ParticipationCancelled ParticipationStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s ParticipationStatus) Valid() bool {
	switch s {
	case ParticipationInvited, ParticipationAccepted, ParticipationDeclined, ParticipationCancelled:
		return true
	}
	return false
}

// Participation links a user to an event. At most one participation exists per (user, event) pair.
type Participation struct {
	ID      uuid.UUID           `json:"id"`
	UserID  uuid.UUID           `json:"user_id"`
	EventID uuid.UUID           `json:"event_id"`
	Role    ParticipationRole   `json:"role"`
	Status  ParticipationStatus `json:"status"`
}

// NewParticipation returns a new Participation. The caller assigns the ID.
func NewParticipation(id, userID, eventID uuid.UUID, role ParticipationRole, status ParticipationStatus) *Participation {
	return &Participation{
		ID:      id,
		UserID:  userID,
		EventID: eventID,
		Role:    role,
		Status:  status,
	}
}

// ParticipationRepository defines storage operations for participations.
type ParticipationRepository interface {
	// Add fails with ErrInvalidReference when the user or event does not exist
	// and with ErrDuplicate when the (user, event) pair is already taken.
	Add(ctx context.Context, p *Participation) (*Participation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Participation, bool, error)
	GetByUserAndEvent(ctx context.Context, userID, eventID uuid.UUID) (*Participation, bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Participation, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*Participation, error)
	GetAll(ctx context.Context) ([]*Participation, error)
	Update(ctx context.Context, p *Participation) (*Participation, error)
	// Remove also removes every notification of the participation.
	Remove(ctx context.Context, id uuid.UUID) error
}

// InviteInput carries the fields needed to invite a user to an event.
type InviteInput struct {
	UserID  uuid.UUID
	EventID uuid.UUID
	Role    ParticipationRole
}

// ParticipationService defines invitation and attendance operations.
type ParticipationService interface {
	Invite(ctx context.Context, in InviteInput) (*Participation, error)
	Respond(ctx context.Context, id uuid.UUID, status ParticipationStatus) (*Participation, error)
	Withdraw(ctx context.Context, id uuid.UUID) error
}
