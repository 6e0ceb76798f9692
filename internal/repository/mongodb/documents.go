package mongodb

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"eventhub/internal/domain"
)

// Document shapes of the four collections. Ids and parent references are stored as the
// textual form of the uuid so that both backends share one id type.

type userDocument struct {
	ID       string `bson:"_id"`
	Name     string `bson:"name"`
	Email    string `bson:"email"`
	Login    string `bson:"login"`
	Password string `bson:"password"`
	Role     string `bson:"role"`
}

type eventDocument struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	StartTime   time.Time `bson:"startTime"`
	Address     string    `bson:"address"`
	OrganizerID string    `bson:"organizerId"`
}

type participationDocument struct {
	ID      string `bson:"_id"`
	UserID  string `bson:"userId"`
	EventID string `bson:"eventId"`
	Role    string `bson:"role"`
	Status  string `bson:"status"`
}

type notificationDocument struct {
	ID              string    `bson:"_id"`
	ParticipationID string    `bson:"participationId"`
	Text            string    `bson:"text"`
	SentAt          time.Time `bson:"sentAt"`
	Type            string    `bson:"type"`
}

// mongoTime matches the BSON date precision.
func mongoTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("decode %s %q: %w", field, raw, err)
	}
	return id, nil
}

func toUserDocument(u *domain.User) userDocument {
	return userDocument{
		ID:       u.ID.String(),
		Name:     u.Name,
		Email:    u.Email,
		Login:    u.Login,
		Password: u.Password,
		Role:     string(u.Role),
	}
}

func userFromDocument(d userDocument) (*domain.User, error) {
	id, err := parseID("_id", d.ID)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:       id,
		Name:     d.Name,
		Email:    d.Email,
		Login:    d.Login,
		Password: d.Password,
		Role:     domain.UserRole(d.Role),
	}, nil
}

func toEventDocument(e *domain.Event) eventDocument {
	return eventDocument{
		ID:          e.ID.String(),
		Title:       e.Title,
		Description: e.Description,
		StartTime:   mongoTime(e.StartTime),
		Address:     e.Address,
		OrganizerID: e.OrganizerID.String(),
	}
}

func eventFromDocument(d eventDocument) (*domain.Event, error) {
	id, err := parseID("_id", d.ID)
	if err != nil {
		return nil, err
	}
	organizerID, err := parseID("organizerId", d.OrganizerID)
	if err != nil {
		return nil, err
	}
	return &domain.Event{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		StartTime:   mongoTime(d.StartTime),
		Address:     d.Address,
		OrganizerID: organizerID,
	}, nil
}

func toParticipationDocument(p *domain.Participation) participationDocument {
	return participationDocument{
		ID:      p.ID.String(),
		UserID:  p.UserID.String(),
		EventID: p.EventID.String(),
		Role:    string(p.Role),
		Status:  string(p.Status),
	}
}

func participationFromDocument(d participationDocument) (*domain.Participation, error) {
	id, err := parseID("_id", d.ID)
	if err != nil {
		return nil, err
	}
	userID, err := parseID("userId", d.UserID)
	if err != nil {
		return nil, err
	}
	eventID, err := parseID("eventId", d.EventID)
	if err != nil {
		return nil, err
	}
	return &domain.Participation{
		ID:      id,
		UserID:  userID,
		EventID: eventID,
		Role:    domain.ParticipationRole(d.Role),
		Status:  domain.ParticipationStatus(d.Status),
	}, nil
}

func toNotificationDocument(n *domain.Notification) notificationDocument {
	return notificationDocument{
		ID:              n.ID.String(),
		ParticipationID: n.ParticipationID.String(),
		Text:            n.Text,
		SentAt:          mongoTime(n.SentAt),
		Type:            string(n.Type),
	}
}

func notificationFromDocument(d notificationDocument) (*domain.Notification, error) {
	id, err := parseID("_id", d.ID)
	if err != nil {
		return nil, err
	}
	participationID, err := parseID("participationId", d.ParticipationID)
	if err != nil {
		return nil, err
	}
	return &domain.Notification{
		ID:              id,
		ParticipationID: participationID,
		Text:            d.Text,
		SentAt:          mongoTime(d.SentAt),
		Type:            domain.NotificationType(d.Type),
	}, nil
}
