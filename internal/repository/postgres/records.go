package postgres

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"eventhub/internal/domain"
)

// Row shapes of the four tables and their conversions from and to domain records.
// Timestamps are stored as timestamptz, which keeps microseconds.

type userRow struct {
	ID       uuid.UUID
	Name     string
	Email    string
	Login    string
	Password string
	Role     string
}

type eventRow struct {
	ID          uuid.UUID
	Title       string
	Description string
	StartTime   time.Time
	Address     string
	OrganizerID uuid.UUID
}

type participationRow struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	EventID uuid.UUID
	Role    string
	Status  string
}

type notificationRow struct {
	ID              uuid.UUID
	ParticipationID uuid.UUID
	Text            string
	SentAt          time.Time
	Type            string
}

func pgTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func toUserRow(u *domain.User) userRow {
	return userRow{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Login:    u.Login,
		Password: u.Password,
		Role:     string(u.Role),
	}
}

func userFromRow(r userRow) *domain.User {
	return &domain.User{
		ID:       r.ID,
		Name:     r.Name,
		Email:    r.Email,
		Login:    r.Login,
		Password: r.Password,
		Role:     domain.UserRole(r.Role),
	}
}

func toEventRow(e *domain.Event) eventRow {
	return eventRow{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		StartTime:   pgTime(e.StartTime),
		Address:     e.Address,
		OrganizerID: e.OrganizerID,
	}
}

func eventFromRow(r eventRow) *domain.Event {
	return &domain.Event{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		StartTime:   pgTime(r.StartTime),
		Address:     r.Address,
		OrganizerID: r.OrganizerID,
	}
}

func toParticipationRow(p *domain.Participation) participationRow {
	return participationRow{
		ID:      p.ID,
		UserID:  p.UserID,
		EventID: p.EventID,
		Role:    string(p.Role),
		Status:  string(p.Status),
	}
}

func participationFromRow(r participationRow) *domain.Participation {
	return &domain.Participation{
		ID:      r.ID,
		UserID:  r.UserID,
		EventID: r.EventID,
		Role:    domain.ParticipationRole(r.Role),
		Status:  domain.ParticipationStatus(r.Status),
	}
}

func toNotificationRow(n *domain.Notification) notificationRow {
	return notificationRow{
		ID:              n.ID,
		ParticipationID: n.ParticipationID,
		Text:            n.Text,
		SentAt:          pgTime(n.SentAt),
		Type:            string(n.Type),
	}
}

func notificationFromRow(r notificationRow) *domain.Notification {
	return &domain.Notification{
		ID:              r.ID,
		ParticipationID: r.ParticipationID,
		Text:            r.Text,
		SentAt:          pgTime(r.SentAt),
		Type:            domain.NotificationType(r.Type),
	}
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*domain.User, error) {
	var r userRow
	if err := s.Scan(&r.ID, &r.Name, &r.Email, &r.Login, &r.Password, &r.Role); err != nil {
		return nil, err
	}
	return userFromRow(r), nil
}

func scanEvent(s scanner) (*domain.Event, error) {
	var r eventRow
	if err := s.Scan(&r.ID, &r.Title, &r.Description, &r.StartTime, &r.Address, &r.OrganizerID); err != nil {
		return nil, err
	}
	return eventFromRow(r), nil
}

func scanParticipation(s scanner) (*domain.Participation, error) {
	var r participationRow
	if err := s.Scan(&r.ID, &r.UserID, &r.EventID, &r.Role, &r.Status); err != nil {
		return nil, err
	}
	return participationFromRow(r), nil
}

func scanNotification(s scanner) (*domain.Notification, error) {
	var r notificationRow
	if err := s.Scan(&r.ID, &r.ParticipationID, &r.Text, &r.SentAt, &r.Type); err != nil {
		return nil, err
	}
	return notificationFromRow(r), nil
}

func scanUserRows(rows *sql.Rows) (*domain.User, error)                   { return scanUser(rows) }
func scanEventRows(rows *sql.Rows) (*domain.Event, error)                 { return scanEvent(rows) }
func scanParticipationRows(rows *sql.Rows) (*domain.Participation, error) { return scanParticipation(rows) }
func scanNotificationRows(rows *sql.Rows) (*domain.Notification, error)   { return scanNotification(rows) }
