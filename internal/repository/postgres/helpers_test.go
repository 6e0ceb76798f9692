package postgres

import (
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"eventhub/internal/domain"
)

var (
	userColumns          = []string{"id", "name", "email", "login", "password", "role"}
	eventColumns         = []string{"id", "title", "description", "start_time", "address", "organizer_id"}
	participationColumns = []string{"id", "user_id", "event_id", "role", "status"}
	notificationColumns  = []string{"id", "participation_id", "text", "sent_at", "type"}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newMockScope returns a scope over a sqlmock database.
func newMockScope(t *testing.T) (*domain.Scope, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewScope(db, discardLogger()), mock
}
