package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type notificationFixture struct {
	store  *memoryStore
	mailer *fakeMailer
	svc    domain.NotificationService
	user   *domain.User
	p      *domain.Participation
}

func newNotificationFixture(renderer *fakeRenderer) *notificationFixture {
	store := newMemoryStore()
	user := store.seedUser("Grace", "grace")
	event := store.seedEvent("GopherCon", user.ID)
	p := store.seedParticipation(user.ID, event.ID, domain.ParticipationInvited)
	mailer := &fakeMailer{}
	if renderer == nil {
		renderer = &fakeRenderer{}
	}
	return &notificationFixture{
		store:  store,
		mailer: mailer,
		svc:    NewNotificationService(store, mailer, renderer, clock, time.Second, discardLogger()),
		user:   user,
		p:      p,
	}
}

func TestNotificationService_Notify(t *testing.T) {
	f := newNotificationFixture(nil)

	n, err := f.svc.Notify(context.Background(), f.p.ID, domain.NotificationInvitation, " You are invited ")
	require.NoError(t, err)
	assert.Equal(t, "You are invited", n.Text)
	assert.Equal(t, fixedNow, n.SentAt)
	assert.Contains(t, f.store.data.notifications, n.ID)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, f.user.Email, f.mailer.sent[0].to)
	assert.Equal(t, "notification: GopherCon", f.mailer.sent[0].subject)
	assert.True(t, f.store.allReleased())
}

func TestNotificationService_Notify_Invalid(t *testing.T) {
	f := newNotificationFixture(nil)
	ctx := context.Background()

	_, err := f.svc.Notify(ctx, f.p.ID, "sms", "hi")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.svc.Notify(ctx, f.p.ID, domain.NotificationReminder, "   ")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.svc.Notify(ctx, uuid.New(), domain.NotificationReminder, "hi")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.mailer.sent)
}

func TestNotificationService_SendFailureRollsBack(t *testing.T) {
	f := newNotificationFixture(nil)
	boom := errors.New("mailbox unavailable")
	f.mailer.err = boom

	_, err := f.svc.Notify(context.Background(), f.p.ID, domain.NotificationReminder, "tomorrow")
	require.ErrorIs(t, err, boom)
	assert.Empty(t, f.store.data.notifications)
	assert.True(t, f.store.allReleased())
}

func TestNotificationService_RenderFailureRollsBack(t *testing.T) {
	f := newNotificationFixture(&fakeRenderer{err: errors.New("template missing")})

	_, err := f.svc.Notify(context.Background(), f.p.ID, domain.NotificationUpdate, "moved")
	require.Error(t, err)
	assert.Empty(t, f.store.data.notifications)
	assert.Empty(t, f.mailer.sent)
}

func TestNotificationService_StorageFailureSendsNothing(t *testing.T) {
	f := newNotificationFixture(nil)
	f.store.failNotificationAdd = errors.New("disk full")

	_, err := f.svc.Notify(context.Background(), f.p.ID, domain.NotificationUpdate, "moved")
	require.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.Empty(t, f.mailer.sent)
}

// On a backend without transactions the recorded notification survives a failed send.
func TestNotificationService_DegradedKeepsRecord(t *testing.T) {
	f := newNotificationFixture(nil)
	f.store.degraded = true
	f.mailer.err = errors.New("mailbox unavailable")

	_, err := f.svc.Notify(context.Background(), f.p.ID, domain.NotificationReminder, "tomorrow")
	require.Error(t, err)
	assert.Len(t, f.store.data.notifications, 1)
}

func TestNotificationService_History(t *testing.T) {
	f := newNotificationFixture(nil)
	older := domain.NewNotification(uuid.New(), f.p.ID, "first", fixedNow.Add(-time.Hour), domain.NotificationInvitation)
	newer := domain.NewNotification(uuid.New(), f.p.ID, "second", fixedNow, domain.NotificationReminder)
	f.store.data.notifications[older.ID] = *older
	f.store.data.notifications[newer.ID] = *newer

	history, err := f.svc.History(context.Background(), f.p.ID)
	require.NoError(t, err)
	assert.Equal(t, []*domain.Notification{newer, older}, history)

	history, err = f.svc.History(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, history)
}
