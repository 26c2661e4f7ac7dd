package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayush/social-feed/backend/internal/models"
)

// PostgresStore keeps the audit trail in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the audit_events table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS audit_events (
			id             BIGSERIAL PRIMARY KEY,
			ts             TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			category       VARCHAR(32)  NOT NULL,
			event_type     VARCHAR(64)  NOT NULL,
			user_id        VARCHAR(24),
			email          VARCHAR(255),
			ip             VARCHAR(64)  NOT NULL DEFAULT '',
			user_agent     TEXT,
			success        BOOLEAN      NOT NULL,
			failure_reason TEXT,
			details        JSONB
		);
		CREATE INDEX IF NOT EXISTS audit_events_ts_idx ON audit_events (ts DESC);
		CREATE INDEX IF NOT EXISTS audit_events_user_idx ON audit_events (user_id, ts DESC);
	`)
	return err
}

// InsertEvent appends e and fills in its ID.
func (s *PostgresStore) InsertEvent(ctx context.Context, e *models.AuditEvent) error {
	var details []byte
	if len(e.Details) > 0 {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("audit details: %w", err)
		}
		details = b
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO audit_events (ts, category, event_type, user_id, email, ip, user_agent, success, failure_reason, details)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, NULLIF($7, ''), $8, NULLIF($9, ''), $10)
		 RETURNING id`,
		e.Timestamp, e.Category, e.EventType, e.UserID, e.Email, e.IP, e.UserAgent, e.Success, e.FailureReason, details,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
