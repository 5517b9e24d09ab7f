package booking

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/saya/booking-api/internal/pkg/htmllang"
)

// descriptionLanguage is the only language kept in room descriptions sent to guests.
const descriptionLanguage = "en"

// mutate runs fn unless a submission is pending.
func (s *Session) mutate(fn func() error) error {
	if s.IsNextStepLoading {
		return ErrSubmissionPending
	}
	return fn()
}

// StartBooking sets the subject and return URL and moves to ConfirmDates,
// whatever the current step.
func (s *Session) StartBooking(subject json.RawMessage, returnURL string) error {
	return s.mutate(func() error {
		if len(subject) == 0 {
			subject = json.RawMessage(`{}`)
		}
		if !json.Valid(subject) {
			return ErrInvalidSubject
		}
		if returnURL == "" {
			returnURL = "/"
		}
		s.Record.Subject = append(json.RawMessage(nil), subject...)
		s.Record.ReturnURL = returnURL
		s.CurrentStep = StepConfirmDates
		return nil
	})
}

// CancelBooking discards the booking.
func (s *Session) CancelBooking() error {
	return s.mutate(func() error {
		s.Reset()
		return nil
	})
}

// EndBooking discards the booking once the guest leaves the thank-you step.
func (s *Session) EndBooking() error {
	return s.CancelBooking()
}

// GoToStep moves to target if the transition table allows it.
func (s *Session) GoToStep(target Step) error {
	return s.mutate(func() error {
		if !s.CurrentStep.CanTransitionTo(target) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.CurrentStep, target)
		}
		s.CurrentStep = target
		return nil
	})
}

// completeReservation records the reservation and enters ThankYou.
func (s *Session) completeReservation(id int64, details json.RawMessage) {
	s.ReservationID = id
	if len(details) > 0 {
		s.ReservationDetails = append(json.RawMessage(nil), details...)
	}
	s.CurrentStep = StepThankYou
}

func (s *Session) SetDialog(open bool) error {
	return s.mutate(func() error {
		s.Dialog.IsOpen = open
		return nil
	})
}

func (s *Session) SetGuests(adults, children int) error {
	return s.mutate(func() error {
		g, err := NewGuestCount(adults, children)
		if err != nil {
			return err
		}
		s.Record.Guests = g
		return nil
	})
}

func (s *Session) SetDateOne(date string) error {
	return s.mutate(func() error {
		if _, err := parseDate(date); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDate, date)
		}
		s.Record.DateOne = date
		return nil
	})
}

// SetDateTwo sets the last night of the stay and derives CheckOut as the day after.
func (s *Session) SetDateTwo(date string) error {
	return s.mutate(func() error {
		checkOut, err := CheckOutFor(date)
		if err != nil {
			return err
		}
		s.Record.DateTwo = date
		s.Record.CheckOut = checkOut
		return nil
	})
}

// ClearDateTwo forgets the last night and the derived check-out.
func (s *Session) ClearDateTwo() error {
	return s.mutate(func() error {
		s.Record.DateTwo = ""
		s.Record.CheckOut = ""
		return nil
	})
}

// CheckOutFor returns dateTwo + 1 calendar day as YYYY-MM-DD.
func CheckOutFor(dateTwo string) (string, error) {
	t, err := parseDate(dateTwo)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, dateTwo)
	}
	return t.AddDate(0, 0, 1).Format(isoDateLayout), nil
}

// SetPrices stores the nightly prices ordered by date. Dates must be unique
// and amounts non-negative.
func (s *Session) SetPrices(prices []NightlyPrice) error {
	return s.mutate(func() error {
		sorted := make([]NightlyPrice, len(prices))
		copy(sorted, prices)
		for _, p := range sorted {
			if _, err := parseDate(p.Date); err != nil {
				return fmt.Errorf("%w: bad date %q", ErrInvalidPrices, p.Date)
			}
			if math.IsNaN(p.Amount) || math.IsInf(p.Amount, 0) || p.Amount < 0 {
				return fmt.Errorf("%w: bad amount for %s", ErrInvalidPrices, p.Date)
			}
		}
		// ISO dates sort lexically
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })
		for i := 1; i < len(sorted); i++ {
			if sorted[i].Date == sorted[i-1].Date {
				return fmt.Errorf("%w: duplicate date %s", ErrInvalidPrices, sorted[i].Date)
			}
		}
		s.Record.Prices = sorted
		return nil
	})
}

func (s *Session) ClearPrices() error {
	return s.mutate(func() error {
		s.Record.Prices = []NightlyPrice{}
		return nil
	})
}

func (s *Session) SetMessage(message string) error {
	return s.mutate(func() error {
		s.Record.Message = message
		return nil
	})
}

func (s *Session) SetName(name string) error {
	return s.mutate(func() error {
		s.Record.Name = name
		return nil
	})
}

func (s *Session) SetFullName(fullName string) error {
	return s.mutate(func() error {
		s.Record.FullName = fullName
		return nil
	})
}

func (s *Session) SetEmail(email string) error {
	return s.mutate(func() error {
		s.Record.Email = email
		return nil
	})
}

func (s *Session) SetPhoneNumber(phone string) error {
	return s.mutate(func() error {
		s.Record.PhoneNumber = phone
		return nil
	})
}

func (s *Session) SetPhoneCountry(country PhoneCountry) error {
	return s.mutate(func() error {
		country.CallingCodes = append([]string(nil), country.CallingCodes...)
		s.Record.PhoneCountry = country
		return nil
	})
}

func (s *Session) SetPayWith(channel PaymentChannel) error {
	return s.mutate(func() error {
		if !channel.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidPaymentChannel, channel)
		}
		s.Record.PayWith = channel
		return nil
	})
}

func (s *Session) SetAddressLine(line string) error {
	return s.mutate(func() error {
		s.Record.Address.Line = line
		return nil
	})
}

func (s *Session) SetAddressCity(city string) error {
	return s.mutate(func() error {
		s.Record.Address.City = city
		return nil
	})
}

func (s *Session) SetAddressState(state string) error {
	return s.mutate(func() error {
		s.Record.Address.State = state
		return nil
	})
}

func (s *Session) SetAddressZip(zip string) error {
	return s.mutate(func() error {
		s.Record.Address.Zip = zip
		return nil
	})
}

func (s *Session) SetRoomType(roomType RoomType) error {
	return s.mutate(func() error {
		s.Record.RoomType = roomType
		return nil
	})
}

// SetRoomDescriptionHTML keeps only the English blocks of the description.
func (s *Session) SetRoomDescriptionHTML(fragment string) error {
	return s.mutate(func() error {
		filtered, err := htmllang.KeepOnly(descriptionLanguage, fragment)
		if err != nil {
			return err
		}
		s.Record.RoomDescriptionHTML = filtered
		return nil
	})
}

func (s *Session) SetContactInfoError(message string) error {
	return s.mutate(func() error {
		s.ContactInfoError = message
		return nil
	})
}

// Prices returns the computed figures of the current stay.
func (s *Session) Prices() PriceSummary {
	return Summarize(s.Record.Prices)
}
