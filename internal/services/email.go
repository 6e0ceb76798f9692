package services

import (
	"context"
	"fmt"

	"eventhub/internal/domain"
)

const notificationTemplate = "notification"

// notificationEmailer renders and sends notification e-mails.
type notificationEmailer struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

func newNotificationEmailer(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) *notificationEmailer {
	return &notificationEmailer{mailer: mailer, renderer: renderer}
}

func (e *notificationEmailer) send(ctx context.Context, data *domain.NotificationEmailData) error {
	if data == nil {
		return fmt.Errorf("notification email data is nil")
	}
	subject, htmlBody, textBody, err := e.renderer.Render(notificationTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render notification template: %w", err)
	}
	if err := e.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send notification email: %w", err)
	}
	return nil
}
