package booking

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Attempt is one submission of a booking, kept for operator follow-up.
type Attempt struct {
	ID            uuid.UUID     `db:"id"`
	SessionID     string        `db:"session_id"`
	Channel       string        `db:"channel"`
	RoomTypeID    string        `db:"room_type_id"`
	GuestEmail    string        `db:"guest_email"`
	CheckIn       string        `db:"check_in"`
	CheckOut      string        `db:"check_out"`
	Amount        float64       `db:"amount"`
	Reserved      bool          `db:"reserved"`
	Notified      bool          `db:"notified"`
	ReservationID sql.NullInt64 `db:"reservation_id"`
	CreatedAt     time.Time     `db:"created_at"`
}

// NewAttempt records the outcome of submitting s.
func NewAttempt(s *Session, guest GuestIdentity, channel PaymentChannel, out Outcome, now time.Time) *Attempt {
	a := &Attempt{
		ID:         uuid.New(),
		SessionID:  s.ID,
		Channel:    string(channel),
		RoomTypeID: s.Record.RoomType.ID,
		GuestEmail: guest.Email,
		CheckIn:    s.Record.DateOne,
		CheckOut:   s.Record.CheckOut,
		Amount:     Total(s.Record.Prices, true, DefaultTotalDigits),
		Reserved:   out.Reserved,
		Notified:   out.Notified,
		CreatedAt:  now,
	}
	if out.Reserved {
		a.ReservationID = sql.NullInt64{Int64: out.ReservationID, Valid: true}
	}
	return a
}
