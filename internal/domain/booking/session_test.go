package booking

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestNewSessionDefaults(t *testing.T) {
	s := NewSession("s1")

	if s.CurrentStep != StepNotStarted || s.ReservationID != 0 || s.IsNextStepLoading {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	r := s.Record
	if r.Guests != (GuestCount{Adults: 1, Children: 0, Total: 1}) {
		t.Fatalf("unexpected guests: %+v", r.Guests)
	}
	if r.PayWith != PayWithCard || r.ReturnURL != "/" || string(r.Subject) != "{}" {
		t.Fatalf("unexpected record defaults: %+v", r)
	}
	if r.Prices == nil || len(r.Prices) != 0 {
		t.Fatalf("expected empty price list")
	}
}

func TestResetRestoresEveryField(t *testing.T) {
	s := NewSession("s1")
	if err := s.StartBooking(json.RawMessage(`{"resort":"Koh Rong"}`), "/rooms/1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	mustNoErr(t, s.SetGuests(2, 3))
	mustNoErr(t, s.SetDateOne("2030-01-10"))
	mustNoErr(t, s.SetDateTwo("2030-01-11"))
	mustNoErr(t, s.SetPrices([]NightlyPrice{{Date: "2030-01-10", Amount: 80}}))
	mustNoErr(t, s.SetFullName("Jane Doe"))
	mustNoErr(t, s.SetEmail("jane@example.com"))
	mustNoErr(t, s.SetPhoneCountry(PhoneCountry{Name: "Cambodia", CallingCodes: []string{"855"}}))
	mustNoErr(t, s.SetPayWith(PayWithCash))
	mustNoErr(t, s.SetAddressZip("12000"))
	mustNoErr(t, s.SetDialog(true))
	mustNoErr(t, s.SetContactInfoError("bad phone"))
	s.completeReservation(77, json.RawMessage(`{"reservationId":77}`))

	mustNoErr(t, s.EndBooking())

	if !reflect.DeepEqual(s, NewSession("s1")) {
		t.Fatalf("reset left state behind: %+v", s)
	}
}

func TestStartBookingFromAnyStep(t *testing.T) {
	for _, from := range []Step{StepNotStarted, StepCustomerInfo, StepThankYou} {
		s := NewSession("s1")
		s.CurrentStep = from
		if err := s.StartBooking(nil, ""); err != nil {
			t.Fatalf("start from %s: %v", from, err)
		}
		if s.CurrentStep != StepConfirmDates || s.Record.ReturnURL != "/" {
			t.Fatalf("start from %s: unexpected state %+v", from, s)
		}
	}

	s := NewSession("s1")
	if err := s.StartBooking(json.RawMessage(`{oops`), "/"); !errors.Is(err, ErrInvalidSubject) {
		t.Fatalf("expected ErrInvalidSubject, got %v", err)
	}
}

func TestSetDateTwoDerivesCheckOut(t *testing.T) {
	cases := map[string]string{
		"2024-01-31": "2024-02-01",
		"2024-02-28": "2024-02-29",
		"2024-12-31": "2025-01-01",
	}
	for dateTwo, want := range cases {
		s := NewSession("s1")
		mustNoErr(t, s.SetDateTwo(dateTwo))
		if s.Record.CheckOut != want {
			t.Fatalf("dateTwo %s: checkOut %s, want %s", dateTwo, s.Record.CheckOut, want)
		}
	}

	s := NewSession("s1")
	if err := s.SetDateTwo("31/01/2024"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}

	mustNoErr(t, s.SetDateTwo("2024-01-31"))
	mustNoErr(t, s.ClearDateTwo())
	if s.Record.DateTwo != "" || s.Record.CheckOut != "" {
		t.Fatalf("expected dates cleared")
	}
}

func TestSetPricesSortsAndRejectsBadEntries(t *testing.T) {
	s := NewSession("s1")
	mustNoErr(t, s.SetPrices([]NightlyPrice{
		{Date: "2030-01-11", Amount: 90},
		{Date: "2030-01-10", Amount: 80},
	}))
	if s.Record.Prices[0].Date != "2030-01-10" {
		t.Fatalf("expected ascending prices, got %+v", s.Record.Prices)
	}

	bad := [][]NightlyPrice{
		{{Date: "2030-01-10", Amount: -1}},
		{{Date: "tomorrow", Amount: 10}},
		{{Date: "2030-01-10", Amount: 1}, {Date: "2030-01-10", Amount: 2}},
	}
	for _, prices := range bad {
		if err := s.SetPrices(prices); !errors.Is(err, ErrInvalidPrices) {
			t.Fatalf("expected ErrInvalidPrices for %+v, got %v", prices, err)
		}
	}
	if len(s.Record.Prices) != 2 {
		t.Fatalf("rejected update changed prices: %+v", s.Record.Prices)
	}

	mustNoErr(t, s.ClearPrices())
	if s.Prices().Total != 0 {
		t.Fatalf("expected zero total after clear")
	}
}

func TestSetGuestsKeepsTotalDerived(t *testing.T) {
	s := NewSession("s1")
	mustNoErr(t, s.SetGuests(2, 1))
	if s.Record.Guests.Total != 3 {
		t.Fatalf("expected total 3, got %d", s.Record.Guests.Total)
	}
	if err := s.SetGuests(0, 1); !errors.Is(err, ErrInvalidGuests) {
		t.Fatalf("expected ErrInvalidGuests, got %v", err)
	}
	if err := s.SetGuests(1, -1); !errors.Is(err, ErrInvalidGuests) {
		t.Fatalf("expected ErrInvalidGuests, got %v", err)
	}
}

func TestGoToStep(t *testing.T) {
	s := NewSession("s1")
	if err := s.GoToStep(StepConfirmDates); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected NotStarted to be left only through start, got %v", err)
	}

	mustNoErr(t, s.StartBooking(nil, "/"))
	mustNoErr(t, s.GoToStep(StepConfirmGuests))
	if err := s.GoToStep(StepReviewPolicies); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected skipped step rejected, got %v", err)
	}
	mustNoErr(t, s.GoToStep(StepConfirmDates))
	if s.CurrentStep != StepConfirmDates {
		t.Fatalf("expected jump back, got %s", s.CurrentStep)
	}
}

func TestMutationsRejectedWhileSubmitting(t *testing.T) {
	s := NewSession("s1")
	mustNoErr(t, s.SetName("before"))
	s.IsNextStepLoading = true

	if err := s.SetName("after"); !errors.Is(err, ErrSubmissionPending) {
		t.Fatalf("expected ErrSubmissionPending, got %v", err)
	}
	if err := s.CancelBooking(); !errors.Is(err, ErrSubmissionPending) {
		t.Fatalf("expected cancel refused, got %v", err)
	}
	if s.Record.Name != "before" {
		t.Fatalf("record changed during submission")
	}
}

func TestSetRoomDescriptionKeepsEnglish(t *testing.T) {
	s := NewSession("s1")
	mustNoErr(t, s.SetRoomDescriptionHTML(`<p lang="en">Garden view</p><p lang="fr">Vue jardin</p>`))

	if !strings.Contains(s.Record.RoomDescriptionHTML, "Garden view") || strings.Contains(s.Record.RoomDescriptionHTML, "Vue jardin") {
		t.Fatalf("unexpected description: %s", s.Record.RoomDescriptionHTML)
	}
}

func TestSnapshotRestore(t *testing.T) {
	s := NewSession("s1")
	mustNoErr(t, s.StartBooking(json.RawMessage(`{"id":3}`), "/back"))
	mustNoErr(t, s.SetPrices([]NightlyPrice{{Date: "2030-01-10", Amount: 80}}))

	data, err := s.Snapshot()
	mustNoErr(t, err)
	restored, err := RestoreSession(data)
	mustNoErr(t, err)
	if !reflect.DeepEqual(s, restored) {
		t.Fatalf("restored session differs:\n%+v\n%+v", s, restored)
	}

	if _, err := RestoreSession([]byte(`{"id":"x","currentStep":12}`)); err == nil {
		t.Fatal("expected invalid step rejected")
	}
	if _, err := RestoreSession([]byte(`{"currentStep":1}`)); err == nil {
		t.Fatal("expected missing id rejected")
	}
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
