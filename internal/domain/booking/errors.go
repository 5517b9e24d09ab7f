package booking

import "errors"

var (
	ErrSessionNotFound       = errors.New("booking session not found or expired")
	ErrInvalidTransition     = errors.New("step transition not allowed")
	ErrSubmissionPending     = errors.New("a submission is pending for this booking")
	ErrSubmissionInProgress  = errors.New("submission already in progress")
	ErrNotAtPaymentStep      = errors.New("booking can only be submitted from the payment step")
	ErrInvalidGuests         = errors.New("at least one adult is required and children cannot be negative")
	ErrInvalidDate           = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidPrices         = errors.New("prices must have valid dates, non-negative amounts and one entry per date")
	ErrInvalidPaymentChannel = errors.New("payment method must be card or cash")
	ErrRoomTypeRequired      = errors.New("room type is required")
	ErrDatesRequired         = errors.New("check-in and check-out dates are required")
	ErrPricingUnavailable    = errors.New("room prices are unavailable")
	ErrInvalidSubject        = errors.New("subject item must be valid JSON")
)

// ValidationReason names the pre-submission check that failed.
type ValidationReason string

const (
	InvalidDateRange ValidationReason = "InvalidDateRange"
	InvalidPrice     ValidationReason = "InvalidPrice"
)

// ValidationError is returned by the validation gate. It never reaches the
// reservation service.
type ValidationError struct {
	Reason ValidationReason
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case InvalidDateRange:
		return "Check in and check out dates are not valid. Please start your booking again."
	case InvalidPrice:
		return "Total price is not valid. Please start your booking again."
	}
	return "booking is not valid"
}
