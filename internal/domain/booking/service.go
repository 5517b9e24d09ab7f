package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saya/booking-api/internal/pkg/logger"
	"github.com/saya/booking-api/internal/pkg/resortapi"
)

// PricingService returns nightly rates for a room type.
type PricingService interface {
	Prices(ctx context.Context, req resortapi.PricesRequest) ([]resortapi.Price, error)
}

// Service handles booking sessions
type Service struct {
	store        SessionStore
	pricing      PricingService
	orchestrator *Orchestrator
	attempts     AttemptRepository
	now          func() time.Time
}

// NewService creates booking service. attempts may be nil when no database
// is configured.
func NewService(store SessionStore, pricing PricingService, orchestrator *Orchestrator, attempts AttemptRepository) *Service {
	return &Service{
		store:        store,
		pricing:      pricing,
		orchestrator: orchestrator,
		attempts:     attempts,
		now:          time.Now,
	}
}

// Start opens a new session and starts the booking in it.
func (s *Service) Start(ctx context.Context, subject json.RawMessage, returnURL string) (*Session, error) {
	sess := NewSession(uuid.New().String())
	if err := sess.StartBooking(subject, returnURL); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Restart starts the booking again in an existing session.
func (s *Service) Restart(ctx context.Context, id string, subject json.RawMessage, returnURL string) (*Session, error) {
	return s.Update(ctx, id, func(sess *Session) error {
		return sess.StartBooking(subject, returnURL)
	})
}

// Get returns session by ID
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.Load(ctx, id)
}

// Number of tries for storing a submission outcome.
const outcomeSaveAttempts = 3

var outcomeSaveBackoff = 100 * time.Millisecond

// load returns the session, releasing a loading flag left behind by a
// submission that never stored its outcome.
func (s *Service) load(ctx context.Context, id string) (*Session, error) {
	sess, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.staleSubmission(s.now(), submitLockTTL) {
		logger.LogWarn(ctx, "Releasing stale booking submission", "booking_session", id)
		sess.clearSubmitting()
	}
	return sess, nil
}

// Update loads the session, applies fn and saves it. Nothing is saved when fn fails.
func (s *Service) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) SetStep(ctx context.Context, id string, step Step) (*Session, error) {
	return s.Update(ctx, id, func(sess *Session) error {
		return sess.GoToStep(step)
	})
}

func (s *Service) SetDialog(ctx context.Context, id string, open bool) (*Session, error) {
	return s.Update(ctx, id, func(sess *Session) error {
		return sess.SetDialog(open)
	})
}

func (s *Service) ClearPrices(ctx context.Context, id string) (*Session, error) {
	return s.Update(ctx, id, (*Session).ClearPrices)
}

func (s *Service) ClearDateTwo(ctx context.Context, id string) (*Session, error) {
	return s.Update(ctx, id, (*Session).ClearDateTwo)
}

func (s *Service) Cancel(ctx context.Context, id string) (*Session, error) {
	return s.Update(ctx, id, (*Session).CancelBooking)
}

func (s *Service) End(ctx context.Context, id string) (*Session, error) {
	return s.Update(ctx, id, (*Session).EndBooking)
}

// FetchPrices loads nightly rates for the selected room type and stay into
// the record.
func (s *Service) FetchPrices(ctx context.Context, id string) (*Session, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.IsNextStepLoading {
		return nil, ErrSubmissionPending
	}

	rec := sess.Record
	if rec.RoomType.ID == "" {
		return nil, ErrRoomTypeRequired
	}
	if rec.DateOne == "" || rec.DateTwo == "" {
		return nil, ErrDatesRequired
	}
	if s.pricing == nil {
		return nil, ErrPricingUnavailable
	}

	rates, err := s.pricing.Prices(ctx, resortapi.PricesRequest{
		RoomTypeID: rec.RoomType.ID,
		StartDate:  rec.DateOne,
		EndDate:    rec.DateTwo,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPricingUnavailable, err)
	}

	prices := make([]NightlyPrice, len(rates))
	for i, r := range rates {
		prices[i] = NightlyPrice{Date: r.Date, Amount: r.Amount}
	}
	if err := sess.SetPrices(prices); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPricingUnavailable, err)
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Validate runs the pre-submission checks without changing the session.
func (s *Service) Validate(ctx context.Context, id string) error {
	sess, err := s.store.Load(ctx, id)
	if err != nil {
		return err
	}
	return Evaluate(sess.Record, s.now())
}

// Submit validates the booking and hands it to the orchestrator. An empty
// channel falls back to the payment method stored in the record.
//
// The session is marked loading for the duration of the call, so every
// other mutation is refused until the outcome is stored.
func (s *Service) Submit(ctx context.Context, id string, guest GuestIdentity, channel PaymentChannel) (*Session, Outcome, error) {
	release, err := s.store.LockSubmission(ctx, id)
	if err != nil {
		return nil, Outcome{}, err
	}
	defer release()

	sess, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, Outcome{}, err
	}
	// Holding the lock means no submission is running for this session.
	if sess.IsNextStepLoading {
		logger.LogWarn(ctx, "Releasing unfinished booking submission", "booking_session", id)
		sess.clearSubmitting()
	}
	if sess.CurrentStep != StepPaymentInfo {
		return nil, Outcome{}, ErrNotAtPaymentStep
	}
	if channel == "" {
		channel = sess.Record.PayWith
	}
	if !channel.Valid() {
		return nil, Outcome{}, fmt.Errorf("%w: %q", ErrInvalidPaymentChannel, channel)
	}
	if err := Evaluate(sess.Record, s.now()); err != nil {
		return nil, Outcome{}, err
	}

	sess.markSubmitting(s.now())
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, Outcome{}, err
	}

	// The guest leaving must not abandon a reservation half way.
	runCtx := context.WithoutCancel(ctx)

	out, err := s.orchestrator.Submit(runCtx, sess, guest, channel)
	sess.clearSubmitting()
	if err != nil {
		if saveErr := s.store.Save(runCtx, sess); saveErr != nil {
			logger.LogError(runCtx, saveErr, "Failed to release booking session", "booking_session", id)
		}
		return nil, Outcome{}, err
	}

	sess.PaymentError = out.Message
	s.recordAttempt(runCtx, sess, guest, channel, out)

	// The reservation already happened, so a store failure must not hide
	// the outcome. A flag left behind goes stale after submitLockTTL.
	if err := s.saveOutcome(runCtx, sess); err != nil {
		logger.LogError(runCtx, err, "Failed to store booking outcome",
			"booking_session", id,
			"reserved", out.Reserved,
			"reservation_id", out.ReservationID,
		)
	}
	return sess, out, nil
}

func (s *Service) saveOutcome(ctx context.Context, sess *Session) error {
	var err error
	for i := 0; i < outcomeSaveAttempts; i++ {
		if i > 0 {
			time.Sleep(time.Duration(i) * outcomeSaveBackoff)
		}
		if err = s.store.Save(ctx, sess); err == nil {
			return nil
		}
	}
	return err
}

func (s *Service) recordAttempt(ctx context.Context, sess *Session, guest GuestIdentity, channel PaymentChannel, out Outcome) {
	if s.attempts == nil {
		return
	}
	attempt := NewAttempt(sess, guest, channel, out, s.now())
	if err := s.attempts.Create(ctx, attempt); err != nil {
		logger.LogWarn(ctx, "Failed to record reservation attempt", "booking_session", sess.ID, "error", err.Error())
	}
}

// Attempts lists the guest's latest submissions. Without a ledger the list is empty.
func (s *Service) Attempts(ctx context.Context, email string, limit int) ([]*Attempt, error) {
	if s.attempts == nil {
		return []*Attempt{}, nil
	}
	return s.attempts.ListByGuestEmail(ctx, email, limit)
}
