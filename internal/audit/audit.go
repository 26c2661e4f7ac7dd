// Package audit records authentication and account events. Every event goes
// to zap; events are also persisted when a Sink is configured.
package audit

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ayush/social-feed/backend/internal/models"
)

// Event categories
const (
	CategoryAuth  = "auth"
	CategoryAdmin = "admin"
)

// Event types
const (
	EventUserRegistered           = "user_registered"
	EventLoginSuccess             = "login_success"
	EventLoginFailedUserNotFound  = "login_failed_user_not_found"
	EventLoginFailedWrongPassword = "login_failed_wrong_password"
	EventUserUpdated              = "user_updated"
	EventUserDeleted              = "user_deleted"
	EventPictureChanged           = "profile_picture_changed"
	EventPostDeleted              = "post_deleted"
)

const sinkTimeout = 3 * time.Second

// Sink persists audit events.
type Sink interface {
	InsertEvent(ctx context.Context, e *models.AuditEvent) error
}

// Logger writes audit events. A nil *Logger is valid and records nothing.
type Logger struct {
	sink Sink
	log  *zap.Logger
}

// New creates a Logger. sink may be nil.
func New(sink Sink, log *zap.Logger) *Logger {
	return &Logger{sink: sink, log: log}
}

// Auth records an authentication outcome.
func (l *Logger) Auth(r *http.Request, eventType, userID, email string, success bool, reason string) {
	l.record(r, models.AuditEvent{
		Category:      CategoryAuth,
		EventType:     eventType,
		UserID:        userID,
		Email:         email,
		Success:       success,
		FailureReason: reason,
	})
}

// Admin records a successful change to an account or a post.
func (l *Logger) Admin(r *http.Request, eventType, userID string, details map[string]string) {
	l.record(r, models.AuditEvent{
		Category:  CategoryAdmin,
		EventType: eventType,
		UserID:    userID,
		Success:   true,
		Details:   details,
	})
}

func (l *Logger) record(r *http.Request, e models.AuditEvent) {
	if l == nil {
		return
	}
	e.Timestamp = time.Now().UTC()
	e.IP = clientIP(r)
	e.UserAgent = r.UserAgent()

	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", e.Category),
		zap.String("event_type", e.EventType),
		zap.Bool("success", e.Success),
		zap.String("ip", e.IP),
	}
	if e.UserID != "" {
		fields = append(fields, zap.String("user_id", e.UserID))
	}
	if e.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", e.FailureReason))
	}
	for k, v := range e.Details {
		fields = append(fields, zap.String(k, v))
	}
	l.log.Info("audit event", fields...)

	if l.sink == nil {
		return
	}
	// The request may finish before the insert; keep its values, drop its cancellation.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), sinkTimeout)
	defer cancel()
	if err := l.sink.InsertEvent(ctx, &e); err != nil {
		l.log.Error("audit insert failed", zap.String("event_type", e.EventType), zap.Error(err))
	}
}

// clientIP is RemoteAddr. Behind a trusted proxy chi's RealIP middleware has
// already rewritten it from X-Forwarded-For / X-Real-IP.
func clientIP(r *http.Request) string {
	return r.RemoteAddr
}
