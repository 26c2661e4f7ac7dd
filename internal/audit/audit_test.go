package audit_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ayush/social-feed/backend/internal/audit"
	"github.com/ayush/social-feed/backend/internal/models"
)

type memSink struct {
	events []models.AuditEvent
	err    error
}

func (m *memSink) InsertEvent(_ context.Context, e *models.AuditEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, *e)
	return nil
}

func TestAuth_WritesToSinkAndLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := &memSink{}
	l := audit.New(sink, zap.New(core))

	req := httptest.NewRequest("POST", "/api/user/login", nil)
	req.RemoteAddr = "203.0.113.9:4242"
	req.Header.Set("User-Agent", "feed-test")

	l.Auth(req, audit.EventLoginFailedWrongPassword, "abc", "a@b.co", false, "wrong password")

	require.Len(t, sink.events, 1)
	e := sink.events[0]
	assert.Equal(t, audit.CategoryAuth, e.Category)
	assert.Equal(t, audit.EventLoginFailedWrongPassword, e.EventType)
	assert.Equal(t, "203.0.113.9:4242", e.IP)
	assert.Equal(t, "feed-test", e.UserAgent)
	assert.False(t, e.Success)
	assert.False(t, e.Timestamp.IsZero())

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "audit event", logs.All()[0].Message)
}

func TestAdmin_SinkFailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := audit.New(&memSink{err: errors.New("db down")}, zap.New(core))

	l.Admin(httptest.NewRequest("DELETE", "/api/post/1", nil), audit.EventPostDeleted, "u1", map[string]string{"post_id": "1"})

	assert.Equal(t, 1, logs.FilterMessage("audit insert failed").Len())
}

func TestNilLogger_IsNoop(t *testing.T) {
	var l *audit.Logger
	assert.NotPanics(t, func() {
		l.Auth(httptest.NewRequest("POST", "/", nil), audit.EventLoginSuccess, "u", "e", true, "")
	})
}

func TestNoSink_LogsOnly(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := audit.New(nil, zap.New(core))

	l.Admin(httptest.NewRequest("PUT", "/api/user/1", nil), audit.EventUserUpdated, "u1", nil)

	assert.Equal(t, 1, logs.Len())
}
