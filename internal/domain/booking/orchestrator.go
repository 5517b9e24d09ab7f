package booking

import (
	"context"
	"fmt"
	"sync"

	"github.com/saya/booking-api/internal/pkg/errorhandler"
	"github.com/saya/booking-api/internal/pkg/logger"
	"github.com/saya/booking-api/internal/pkg/mailer"
	"github.com/saya/booking-api/internal/pkg/resortapi"
)

// Guest-facing messages for a failed reservation. Service errors are never shown.
const (
	MessageWillContactByEmail = "There was an error with your booking, we will be in contact via email soon to complete your booking."
	messageContactUsFormat    = `There was an error with your booking, please <a href="%s">contact us</a>`
)

// ReservationService submits reservations to the resort.
type ReservationService interface {
	Reserve(ctx context.Context, req resortapi.ReserveRequest) (*resortapi.ReserveResponse, error)
}

// NotificationService dispatches reservation mails.
type NotificationService interface {
	Send(ctx context.Context, msg *mailer.Message) error
}

// Outcome is the result of a submission. Reserved reflects only the
// reservation call; Notified only the mail that followed it.
type Outcome struct {
	Reserved      bool   `json:"reserved"`
	Notified      bool   `json:"notified"`
	ReservationID int64  `json:"reservationId,omitempty"`
	Message       string `json:"message,omitempty"`
	NextStep      Step   `json:"nextStep"`
}

// Orchestrator reserves a room and then notifies about the result:
//
//	reserve ok   -> success mail to guest -> ThankYou whether or not it was sent
//	reserve fail -> failure mail to ops   -> "we will contact you" if sent, "contact us" if not
type Orchestrator struct {
	reservations  ReservationService
	notifications NotificationService
	settings      NotificationSettings

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewOrchestrator creates a reservation orchestrator.
func NewOrchestrator(reservations ReservationService, notifications NotificationService, settings NotificationSettings) *Orchestrator {
	if settings.Subject == "" {
		settings.Subject = "automated"
	}
	if settings.SupportContactURL == "" {
		settings.SupportContactURL = "/contact"
	}
	return &Orchestrator{
		reservations:  reservations,
		notifications: notifications,
		settings:      settings,
		inFlight:      make(map[string]struct{}),
	}
}

// Submit runs both stages for a session sitting on the payment step. The
// only errors returned are preconditions checked before any call is made;
// reservation and notification failures are reported through the Outcome.
func (o *Orchestrator) Submit(ctx context.Context, s *Session, guest GuestIdentity, channel PaymentChannel) (Outcome, error) {
	if s.CurrentStep != StepPaymentInfo {
		return Outcome{}, ErrNotAtPaymentStep
	}
	if !channel.Valid() {
		return Outcome{}, fmt.Errorf("%w: %q", ErrInvalidPaymentChannel, channel)
	}
	if !o.begin(s.ID) {
		return Outcome{}, ErrSubmissionInProgress
	}
	defer o.finish(s.ID)

	log := logger.FromContext(ctx).With().
		Str("booking_session", s.ID).
		Str("notification_type", channel.NotificationType()).
		Logger()
	ctx = logger.WithContext(ctx, &log)

	res, err := o.reserve(ctx, BuildReservationRequest(s.Record, guest))
	if err == nil {
		s.completeReservation(res.ReservationID, res.Raw)

		notified := true
		if err := o.notify(ctx, BuildSuccessNotification(s.Record, guest, channel, o.settings)); err != nil {
			notified = false
			log.Warn().Err(err).Int64("reservation_id", res.ReservationID).Msg("Sending reservation email failed")
		}

		log.Info().Int64("reservation_id", res.ReservationID).Bool("notified", notified).Msg("Room reserved")
		return Outcome{
			Reserved:      true,
			Notified:      notified,
			ReservationID: res.ReservationID,
			NextStep:      StepThankYou,
		}, nil
	}

	errorhandler.LogExternalServiceError(ctx, "resort api", err)
	log.Error().Str("room_type_id", s.Record.RoomType.ID).Msg("Reservation failed")

	if err := o.notify(ctx, BuildFailureNotification(s.Record, guest, channel, o.settings)); err != nil {
		errorhandler.LogExternalServiceError(ctx, "mail api", err)
		return Outcome{
			Message:  fmt.Sprintf(messageContactUsFormat, o.settings.SupportContactURL),
			NextStep: s.CurrentStep,
		}, nil
	}

	return Outcome{
		Notified: true,
		Message:  MessageWillContactByEmail,
		NextStep: s.CurrentStep,
	}, nil
}

func (o *Orchestrator) begin(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.inFlight[id]; busy {
		return false
	}
	o.inFlight[id] = struct{}{}
	return true
}

func (o *Orchestrator) finish(id string) {
	o.mu.Lock()
	delete(o.inFlight, id)
	o.mu.Unlock()
}

func (o *Orchestrator) reserve(ctx context.Context, req resortapi.ReserveRequest) (res *resortapi.ReserveResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("reservation service panic: %v", r)
		}
	}()
	res, err = o.reservations.Reserve(ctx, req)
	if err == nil && res == nil {
		err = fmt.Errorf("reservation service returned no result")
	}
	return res, err
}

func (o *Orchestrator) notify(ctx context.Context, msg *mailer.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notification service panic: %v", r)
		}
	}()
	return o.notifications.Send(ctx, msg)
}
