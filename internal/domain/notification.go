package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationInvitation   NotificationType = "invitation"
	NotificationReminder     NotificationType = "reminder"
	NotificationUpdate       NotificationType = "update"
	NotificationCancellation NotificationType = "cancellation"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInvitation, NotificationReminder, NotificationUpdate, NotificationCancellation:
		return true
	}
	return false
}

// Notification is a message sent to the user behind a participation.
type Notification struct {
	ID              uuid.UUID        `json:"id"`
	ParticipationID uuid.UUID        `json:"participation_id"`
	Text            string           `json:"text"`
	SentAt          time.Time        `json:"sent_at"`
	Type            NotificationType `json:"type"`
}

// NewNotification returns a new Notification. The caller assigns the ID.
func NewNotification(id, participationID uuid.UUID, text string, sentAt time.Time, typ NotificationType) *Notification {
	return &Notification{
		ID:              id,
		ParticipationID: participationID,
		Text:            text,
		SentAt:          sentAt,
		Type:            typ,
	}
}

// NotificationRepository defines storage operations for notifications.
// SentAt is normalized the same way as EventRepository start times.
type NotificationRepository interface {
	// Add fails with ErrInvalidReference when the participation does not exist.
	Add(ctx context.Context, n *Notification) (*Notification, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, bool, error)
	ListByParticipation(ctx context.Context, participationID uuid.UUID) ([]*Notification, error)
	GetAll(ctx context.Context) ([]*Notification, error)
	Update(ctx context.Context, n *Notification) (*Notification, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

// NotificationService records notifications and delivers them by e-mail.
type NotificationService interface {
	Notify(ctx context.Context, participationID uuid.UUID, typ NotificationType, text string) (*Notification, error)
	History(ctx context.Context, participationID uuid.UUID) ([]*Notification, error)
}
