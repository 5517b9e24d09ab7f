package booking

import (
	"encoding/json"
	"time"
)

// StartRequest opens or restarts a booking
type StartRequest struct {
	SubjectItem json.RawMessage `json:"subjectItem"`
	ReturnURL   string          `json:"returnUrl" validate:"omitempty,max=2048"`
}

// StepRequest moves the booking to another step
type StepRequest struct {
	Step *int `json:"step" validate:"required,gte=0,lte=7"`
}

// DialogRequest opens or closes the booking dialog
type DialogRequest struct {
	IsOpen *bool `json:"isOpen" validate:"required"`
}

// PriceInput is one nightly rate set by the client
type PriceInput struct {
	Date   string  `json:"date" validate:"required,iso_date"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

// SetPricesRequest replaces the nightly rates of the stay
type SetPricesRequest struct {
	Prices []PriceInput `json:"prices" validate:"dive"`
}

type RoomTypeInput struct {
	ID   string `json:"id" validate:"required,max=100"`
	Name string `json:"name" validate:"max=200"`
}

type PhoneCountryInput struct {
	Name         string   `json:"name" validate:"max=100"`
	CallingCodes []string `json:"callingCodes" validate:"dive,max=8"`
}

// UpdateBookingRequest carries per-field updates. Absent fields are left unchanged.
type UpdateBookingRequest struct {
	Adults              *int               `json:"adults" validate:"omitempty,gte=1,lte=50"`
	Children            *int               `json:"children" validate:"omitempty,gte=0,lte=50"`
	DateOne             *string            `json:"dateOne" validate:"omitempty,iso_date"`
	DateTwo             *string            `json:"dateTwo" validate:"omitempty,iso_date"`
	Message             *string            `json:"message" validate:"omitempty,max=2000"`
	Name                *string            `json:"name" validate:"omitempty,max=200"`
	FullName            *string            `json:"fullName" validate:"omitempty,max=200"`
	Email               *string            `json:"email" validate:"omitempty,email"`
	PhoneNumber         *string            `json:"phoneNumber" validate:"omitempty,max=40"`
	PhoneCountry        *PhoneCountryInput `json:"phoneCountry"`
	PayWith             *string            `json:"payWith" validate:"omitempty,pay_with"`
	AddressLine         *string            `json:"addressLine" validate:"omitempty,max=300"`
	AddressCity         *string            `json:"addressCity" validate:"omitempty,max=100"`
	AddressState        *string            `json:"addressState" validate:"omitempty,max=100"`
	AddressZip          *string            `json:"addressZip" validate:"omitempty,max=20"`
	RoomType            *RoomTypeInput     `json:"roomType"`
	RoomDescriptionHTML *string            `json:"roomDescriptionHTML"`
	ContactInfoError    *string            `json:"contactInfoError" validate:"omitempty,max=500"`
}

// Apply runs the setter of every present field, stopping at the first error.
func (req *UpdateBookingRequest) Apply(s *Session) error {
	var steps []func() error

	if req.Adults != nil || req.Children != nil {
		adults, children := s.Record.Guests.Adults, s.Record.Guests.Children
		if req.Adults != nil {
			adults = *req.Adults
		}
		if req.Children != nil {
			children = *req.Children
		}
		steps = append(steps, func() error { return s.SetGuests(adults, children) })
	}
	if req.DateOne != nil {
		steps = append(steps, func() error { return s.SetDateOne(*req.DateOne) })
	}
	if req.DateTwo != nil {
		steps = append(steps, func() error { return s.SetDateTwo(*req.DateTwo) })
	}
	if req.Message != nil {
		steps = append(steps, func() error { return s.SetMessage(*req.Message) })
	}
	if req.Name != nil {
		steps = append(steps, func() error { return s.SetName(*req.Name) })
	}
	if req.FullName != nil {
		steps = append(steps, func() error { return s.SetFullName(*req.FullName) })
	}
	if req.Email != nil {
		steps = append(steps, func() error { return s.SetEmail(*req.Email) })
	}
	if req.PhoneNumber != nil {
		steps = append(steps, func() error { return s.SetPhoneNumber(*req.PhoneNumber) })
	}
	if req.PhoneCountry != nil {
		country := PhoneCountry{Name: req.PhoneCountry.Name, CallingCodes: req.PhoneCountry.CallingCodes}
		steps = append(steps, func() error { return s.SetPhoneCountry(country) })
	}
	if req.PayWith != nil {
		steps = append(steps, func() error { return s.SetPayWith(PaymentChannel(*req.PayWith)) })
	}
	if req.AddressLine != nil {
		steps = append(steps, func() error { return s.SetAddressLine(*req.AddressLine) })
	}
	if req.AddressCity != nil {
		steps = append(steps, func() error { return s.SetAddressCity(*req.AddressCity) })
	}
	if req.AddressState != nil {
		steps = append(steps, func() error { return s.SetAddressState(*req.AddressState) })
	}
	if req.AddressZip != nil {
		steps = append(steps, func() error { return s.SetAddressZip(*req.AddressZip) })
	}
	if req.RoomType != nil {
		roomType := RoomType{ID: req.RoomType.ID, Name: req.RoomType.Name}
		steps = append(steps, func() error { return s.SetRoomType(roomType) })
	}
	if req.RoomDescriptionHTML != nil {
		steps = append(steps, func() error { return s.SetRoomDescriptionHTML(*req.RoomDescriptionHTML) })
	}
	if req.ContactInfoError != nil {
		steps = append(steps, func() error { return s.SetContactInfoError(*req.ContactInfoError) })
	}

	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// SubmitRequest overrides the stored payment method when set
type SubmitRequest struct {
	PayWith string `json:"payWith" validate:"omitempty,pay_with"`
}

// SessionResponse is the booking as the UI reads it
type SessionResponse struct {
	ID                 string          `json:"id"`
	CurrentStep        Step            `json:"currentStep"`
	Step               StepInfo        `json:"step"`
	Dialog             Dialog          `json:"dialog"`
	BookingInfo        Record          `json:"bookingInfo"`
	Summary            PriceSummary    `json:"summary"`
	ReservationID      int64           `json:"reservationId"`
	ReservationDetails json.RawMessage `json:"reservationDetails"`
	IsNextStepLoading  bool            `json:"isNextStepLoading"`
	ContactInfoError   string          `json:"contactInfoError"`
	PaymentError       string          `json:"paymentError"`
}

// SessionResponseFromEntity converts a session to its response view
func SessionResponseFromEntity(s *Session) *SessionResponse {
	return &SessionResponse{
		ID:                 s.ID,
		CurrentStep:        s.CurrentStep,
		Step:               s.CurrentStep.Info(),
		Dialog:             s.Dialog,
		BookingInfo:        s.Record,
		Summary:            s.Prices(),
		ReservationID:      s.ReservationID,
		ReservationDetails: s.ReservationDetails,
		IsNextStepLoading:  s.IsNextStepLoading,
		ContactInfoError:   s.ContactInfoError,
		PaymentError:       s.PaymentError,
	}
}

// SubmitResponse is the result of a submission
type SubmitResponse struct {
	Outcome Outcome          `json:"outcome"`
	Booking *SessionResponse `json:"booking"`
}

// ValidateResponse reports a passing validation gate
type ValidateResponse struct {
	Valid bool `json:"valid"`
}

// AttemptResponse is one ledger entry
type AttemptResponse struct {
	ID            string  `json:"id"`
	SessionID     string  `json:"sessionId"`
	Channel       string  `json:"channel"`
	RoomTypeID    string  `json:"roomTypeId"`
	CheckIn       string  `json:"checkIn"`
	CheckOut      string  `json:"checkOut"`
	Amount        float64 `json:"amount"`
	Reserved      bool    `json:"reserved"`
	Notified      bool    `json:"notified"`
	ReservationID *int64  `json:"reservationId,omitempty"`
	CreatedAt     string  `json:"createdAt"`
}

// AttemptResponseFromEntity converts an attempt to its response view
func AttemptResponseFromEntity(a *Attempt) *AttemptResponse {
	resp := &AttemptResponse{
		ID:         a.ID.String(),
		SessionID:  a.SessionID,
		Channel:    a.Channel,
		RoomTypeID: a.RoomTypeID,
		CheckIn:    a.CheckIn,
		CheckOut:   a.CheckOut,
		Amount:     a.Amount,
		Reserved:   a.Reserved,
		Notified:   a.Notified,
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
	}
	if a.ReservationID.Valid {
		id := a.ReservationID.Int64
		resp.ReservationID = &id
	}
	return resp
}
