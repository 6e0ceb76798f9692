package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventhub/internal/domain"
	"eventhub/internal/storage"
)

type notificationService struct {
	store          domain.Store
	email          *notificationEmailer
	now            func() time.Time
	contextTimeout time.Duration
	log            *slog.Logger
}

// NewNotificationService creates a NotificationService that records notifications and
// e-mails them to the participant.
func NewNotificationService(store domain.Store, mailer domain.Mailer, renderer domain.EmailTemplateRenderer, now func() time.Time, timeout time.Duration, logger *slog.Logger) domain.NotificationService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &notificationService{
		store:          store,
		email:          newNotificationEmailer(mailer, renderer),
		now:            now,
		contextTimeout: timeout,
		log:            logger.With("service", "notification"),
	}
}

// Notify records the notification and sends it by e-mail inside one unit of work. When the
// e-mail cannot be sent the unit is rolled back and nothing is recorded.
func (s *notificationService) Notify(ctx context.Context, participationID uuid.UUID, typ domain.NotificationType, text string) (*domain.Notification, error) {
	text = strings.TrimSpace(text)
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: unknown notification type %q", domain.ErrInvalidInput, typ)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrInvalidInput)
	}

	var created *domain.Notification
	err := storage.RunInTransaction(ctx, s.store, s.contextTimeout, func(ctx context.Context, scope *domain.Scope) error {
		p, ok, err := scope.Participations.GetByID(ctx, participationID)
		if err != nil {
			return fmt.Errorf("failed to get participation: %w", err)
		}
		if !ok {
			return fmt.Errorf("participation %s: %w", participationID, domain.ErrNotFound)
		}
		user, ok, err := scope.Users.GetByID(ctx, p.UserID)
		if err != nil || !ok {
			return fmt.Errorf("failed to get recipient %s: %w", p.UserID, orNotFound(err))
		}
		event, ok, err := scope.Events.GetByID(ctx, p.EventID)
		if err != nil || !ok {
			return fmt.Errorf("failed to get event %s: %w", p.EventID, orNotFound(err))
		}

		n := domain.NewNotification(uuid.New(), p.ID, text, s.now(), typ)
		if created, err = scope.Notifications.Add(ctx, n); err != nil {
			return fmt.Errorf("failed to record notification: %w", err)
		}
		if err := scope.UnitOfWork.SaveChanges(ctx); err != nil {
			return err
		}
		return s.email.send(ctx, &domain.NotificationEmailData{
			Email:      user.Email,
			Name:       user.Name,
			EventTitle: event.Title,
			Type:       typ,
			Text:       text,
		})
	})
	if err != nil {
		s.log.Warn("notification not delivered", "participation_id", participationID, "type", typ, "error", err)
		return nil, err
	}
	return created, nil
}

// History lists the participation's notifications, newest first.
func (s *notificationService) History(ctx context.Context, participationID uuid.UUID) ([]*domain.Notification, error) {
	var history []*domain.Notification
	err := storage.RunInScope(ctx, s.store, s.contextTimeout, func(ctx context.Context, scope *domain.Scope) error {
		var err error
		if history, err = scope.Notifications.ListByParticipation(ctx, participationID); err != nil {
			return fmt.Errorf("failed to list notifications: %w", err)
		}
		return nil
	})
	return history, err
}

func orNotFound(err error) error {
	if err != nil {
		return err
	}
	return domain.ErrNotFound
}
