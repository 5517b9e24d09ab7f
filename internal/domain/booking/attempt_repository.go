package booking

import (
	"context"

	"github.com/jmoiron/sqlx"
)

const attemptsSchema = `
CREATE TABLE IF NOT EXISTS reservation_attempts (
	id             UUID PRIMARY KEY,
	session_id     TEXT NOT NULL,
	channel        TEXT NOT NULL,
	room_type_id   TEXT NOT NULL,
	guest_email    TEXT NOT NULL,
	check_in       TEXT NOT NULL,
	check_out      TEXT NOT NULL,
	amount         DOUBLE PRECISION NOT NULL,
	reserved       BOOLEAN NOT NULL,
	notified       BOOLEAN NOT NULL,
	reservation_id BIGINT,
	created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reservation_attempts_guest ON reservation_attempts (guest_email, created_at DESC);
`

// AttemptRepository stores submission attempts
type AttemptRepository interface {
	Create(ctx context.Context, a *Attempt) error
	ListByGuestEmail(ctx context.Context, email string, limit int) ([]*Attempt, error)
}

type attemptRepository struct {
	db *sqlx.DB
}

// NewAttemptRepository creates the Postgres attempt repository
func NewAttemptRepository(db *sqlx.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

// EnsureAttemptsSchema creates the attempts table if missing
func EnsureAttemptsSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, attemptsSchema)
	return err
}

func (r *attemptRepository) Create(ctx context.Context, a *Attempt) error {
	query := `
		INSERT INTO reservation_attempts (
			id, session_id, channel, room_type_id, guest_email,
			check_in, check_out, amount, reserved, notified,
			reservation_id, created_at
		) VALUES (
			:id, :session_id, :channel, :room_type_id, :guest_email,
			:check_in, :check_out, :amount, :reserved, :notified,
			:reservation_id, :created_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, a)
	return err
}

func (r *attemptRepository) ListByGuestEmail(ctx context.Context, email string, limit int) ([]*Attempt, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := `
		SELECT id, session_id, channel, room_type_id, guest_email,
			check_in, check_out, amount, reserved, notified,
			reservation_id, created_at
		FROM reservation_attempts
		WHERE guest_email = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	var attempts []*Attempt
	if err := r.db.SelectContext(ctx, &attempts, query, email, limit); err != nil {
		return nil, err
	}
	return attempts, nil
}
