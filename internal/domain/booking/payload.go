package booking

import (
	"encoding/json"

	"github.com/saya/booking-api/internal/pkg/mailer"
	"github.com/saya/booking-api/internal/pkg/resortapi"
)

// mailPriceDigits is the precision of nightly amounts in mails.
const mailPriceDigits = 2

// GuestIdentity is the authenticated guest submitting the booking.
type GuestIdentity struct {
	Email string
	Name  string
}

// NotificationSettings configures the reservation mails.
type NotificationSettings struct {
	BCC               []string
	SuccessTemplateID string
	FailTemplateID    string
	Subject           string
	SupportContactURL string
}

// BuildReservationRequest maps a record to the reservation service payload.
func BuildReservationRequest(r Record, guest GuestIdentity) resortapi.ReserveRequest {
	return resortapi.ReserveRequest{
		RoomTypeID: r.RoomType.ID,
		Body: resortapi.ReservationBody{
			Name:           r.FullName,
			Message:        r.Message,
			NumberOfGuests: r.Guests.Total,
			Start:          r.DateOne,
			End:            r.CheckOut,
			Payment:        resortapi.Payment{Amount: Total(r.Prices, true, DefaultTotalDigits)},
			Email:          guest.Email,
			Phone:          reservationPhone(r.PhoneCountry, r.PhoneNumber),
		},
	}
}

// BuildSuccessNotification addresses the guest, with operators in BCC.
func BuildSuccessNotification(r Record, guest GuestIdentity, channel PaymentChannel, cfg NotificationSettings) *mailer.Message {
	name := r.FullName
	if name == "" {
		name = guest.Name
	}
	data := templateData(r, guest, channel)
	description := r.RoomDescriptionHTML
	data.RoomDescriptionHTML = &description

	return &mailer.Message{
		EmailSubject:        cfg.Subject,
		EmailBCC:            addresses(cfg.BCC),
		EmailTo:             []mailer.Address{{Email: guest.Email, Name: name}},
		TemplateID:          cfg.SuccessTemplateID,
		DynamicTemplateData: data,
	}
}

// BuildFailureNotification addresses the operators so they can finish the
// booking by hand. It carries no room description.
func BuildFailureNotification(r Record, guest GuestIdentity, channel PaymentChannel, cfg NotificationSettings) *mailer.Message {
	return &mailer.Message{
		EmailTo:             addresses(cfg.BCC),
		TemplateID:          cfg.FailTemplateID,
		DynamicTemplateData: templateData(r, guest, channel),
	}
}

func templateData(r Record, guest GuestIdentity, channel PaymentChannel) mailer.TemplateData {
	lines := PriceLines(r.Prices, mailPriceDigits, true)
	prices := make([]mailer.PriceLine, len(lines))
	for i, l := range lines {
		prices[i] = mailer.PriceLine{Date: l.Date, Amount: l.Amount}
	}

	resort := r.Subject
	if len(resort) == 0 {
		resort = json.RawMessage(`{}`)
	}

	return mailer.TemplateData{
		NotificationType: channel.NotificationType(),
		Name:             r.FullName,
		Message:          r.Message,
		NumberOfGuests:   r.Guests.Total,
		CheckIn:          FormatDisplayDate(r.DateOne),
		CheckOut:         FormatDisplayDate(r.CheckOut),
		Email:            guest.Email,
		PhoneCountry:     r.PhoneCountry.Name,
		Phone:            mailPhone(r.PhoneCountry, r.PhoneNumber),
		Guests: mailer.Guests{
			Adults:   r.Guests.Adults,
			Children: r.Guests.Children,
			Total:    r.Guests.Total,
		},
		Resort:      resort,
		NightsCount: len(prices),
		Prices:      prices,
		VAT:         VAT(r.Prices, DefaultVATDigits),
		Amount:      Total(r.Prices, true, DefaultTotalDigits),
	}
}

func reservationPhone(country PhoneCountry, number string) string {
	if code := country.CallingCode(); code != "" {
		return "+" + code + number
	}
	return number
}

func mailPhone(country PhoneCountry, number string) string {
	if code := country.CallingCode(); code != "" {
		return "+ (" + code + ") " + number
	}
	return number
}

func addresses(emails []string) []mailer.Address {
	out := make([]mailer.Address, 0, len(emails))
	for _, e := range emails {
		out = append(out, mailer.Address{Email: e})
	}
	return out
}
