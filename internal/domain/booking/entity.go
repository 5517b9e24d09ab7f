package booking

import (
	"encoding/json"
	"fmt"
	"time"
)

// PaymentChannel is the payment method selector of a booking.
type PaymentChannel string

const (
	PayWithCard PaymentChannel = "card"
	PayWithCash PaymentChannel = "cash"
)

func (p PaymentChannel) Valid() bool {
	return p == PayWithCard || p == PayWithCash
}

// NotificationType labels the payment flow in operator mails.
func (p PaymentChannel) NotificationType() string {
	if p == PayWithCash {
		return "CASH PAYMENT"
	}
	return "CARD PAYMENT"
}

// ParsePaymentChannel converts a string to a PaymentChannel, returning an error if invalid.
func ParsePaymentChannel(s string) (PaymentChannel, error) {
	p := PaymentChannel(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentChannel, s)
	}
	return p, nil
}

// GuestCount holds guest counters. Total is always derived.
type GuestCount struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Total    int `json:"total"`
}

func NewGuestCount(adults, children int) (GuestCount, error) {
	if adults < 1 || children < 0 {
		return GuestCount{}, ErrInvalidGuests
	}
	return GuestCount{Adults: adults, Children: children, Total: adults + children}, nil
}

// NightlyPrice is the rate of one night, dated YYYY-MM-DD.
type NightlyPrice struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// PhoneCountry is the dialing country picked next to the phone number.
type PhoneCountry struct {
	Name         string   `json:"name"`
	CallingCodes []string `json:"callingCodes"`
}

// CallingCode returns the primary calling code, or "" when unknown.
func (p PhoneCountry) CallingCode() string {
	if len(p.CallingCodes) == 0 {
		return ""
	}
	return p.CallingCodes[0]
}

// RoomType identifies the bookable room type at the resort.
type RoomType struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Address is the guest billing address.
type Address struct {
	Line  string `json:"addressLine"`
	City  string `json:"addressCity"`
	State string `json:"addressState"`
	Zip   string `json:"addressZip"`
}

// Record is the in-progress reservation.
type Record struct {
	ReturnURL           string          `json:"returnUrl"`
	Subject             json.RawMessage `json:"subjectItem"`
	RoomType            RoomType        `json:"roomType"`
	RoomDescriptionHTML string          `json:"roomDescriptionHTML"`
	Guests              GuestCount      `json:"guests"`
	Message             string          `json:"message"`
	Name                string          `json:"name"`
	FullName            string          `json:"fullName"`
	Email               string          `json:"email"`
	PhoneNumber         string          `json:"phoneNumber"`
	PhoneCountry        PhoneCountry    `json:"phoneCountry"`
	PayWith             PaymentChannel  `json:"payWith"`
	DateOne             string          `json:"dateOne"`
	DateTwo             string          `json:"dateTwo"`
	CheckOut            string          `json:"checkOut"`
	Prices              []NightlyPrice  `json:"prices"`
	Address             Address         `json:"address"`
}

// DefaultRecord returns the record of a booking that has not started.
func DefaultRecord() Record {
	return Record{
		ReturnURL: "/",
		Subject:   json.RawMessage(`{}`),
		Guests:    GuestCount{Adults: 1, Children: 0, Total: 1},
		PayWith:   PayWithCard,
		Prices:    []NightlyPrice{},
	}
}

// Dialog is the booking dialog visibility.
type Dialog struct {
	IsOpen bool `json:"isOpen"`
}

// Session is the booking state owned by one guest session. It is persisted
// between requests through Snapshot and RestoreSession.
type Session struct {
	ID                 string          `json:"id"`
	Record             Record          `json:"bookingInfo"`
	CurrentStep        Step            `json:"currentStep"`
	Dialog             Dialog          `json:"dialog"`
	ReservationID      int64           `json:"reservationId"`
	ReservationDetails json.RawMessage `json:"reservationDetails"`
	IsNextStepLoading  bool            `json:"isNextStepLoading"`
	SubmittingSince    *time.Time      `json:"submittingSince,omitempty"`
	ContactInfoError   string          `json:"contactInfoError"`
	PaymentError       string          `json:"paymentError"`
}

// NewSession creates a session holding the default state.
func NewSession(id string) *Session {
	s := &Session{ID: id}
	s.Reset()
	return s
}

// Reset restores every field except the id to its default.
func (s *Session) Reset() {
	*s = Session{
		ID:                 s.ID,
		Record:             DefaultRecord(),
		CurrentStep:        StepNotStarted,
		ReservationDetails: json.RawMessage(`{}`),
	}
}

// markSubmitting flags the session as loading from now on.
func (s *Session) markSubmitting(now time.Time) {
	s.IsNextStepLoading = true
	s.SubmittingSince = &now
}

func (s *Session) clearSubmitting() {
	s.IsNextStepLoading = false
	s.SubmittingSince = nil
}

// staleSubmission reports whether the loading flag outlived maxAge. A flag
// without a start time is always stale.
func (s *Session) staleSubmission(now time.Time, maxAge time.Duration) bool {
	if !s.IsNextStepLoading {
		return false
	}
	return s.SubmittingSince == nil || now.Sub(*s.SubmittingSince) >= maxAge
}

// Snapshot serializes the session for storage.
func (s *Session) Snapshot() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("snapshot booking session: %w", err)
	}
	return data, nil
}

// RestoreSession rebuilds a session from a Snapshot.
func RestoreSession(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("restore booking session: %w", err)
	}
	if s.ID == "" {
		return nil, fmt.Errorf("restore booking session: missing id")
	}
	if !s.CurrentStep.Valid() {
		return nil, fmt.Errorf("restore booking session: invalid step %d", s.CurrentStep)
	}
	if s.Record.Prices == nil {
		s.Record.Prices = []NightlyPrice{}
	}
	return &s, nil
}
