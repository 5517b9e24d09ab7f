package booking

import "testing"

func TestStepCatalogue(t *testing.T) {
	steps := Steps()
	if len(steps) != 8 {
		t.Fatalf("expected 8 steps, got %d", len(steps))
	}
	for i, s := range steps {
		if int(s.ID) != i {
			t.Fatalf("step %d has id %d", i, s.ID)
		}
	}
	if StepReviewPolicies.Info().Title != "Review Rules" || StepThankYou.Info().Title != "Thank You!" {
		t.Fatalf("unexpected titles")
	}
	if Step(42).Valid() || Step(42).String() != "unknown" {
		t.Fatalf("expected step 42 invalid")
	}
}

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to Step
		want     bool
	}{
		{StepConfirmDates, StepConfirmGuests, true},
		{StepConfirmDates, StepConfirmBooking, false},
		{StepCustomerInfo, StepPaymentInfo, true},
		{StepPaymentInfo, StepThankYou, false},
		{StepPaymentInfo, StepConfirmDates, true},
		{StepCustomerInfo, StepCustomerInfo, true},
		{StepConfirmGuests, StepNotStarted, false},
		{StepNotStarted, StepConfirmDates, false},
		{StepThankYou, StepConfirmDates, false},
		{StepConfirmDates, Step(9), false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Fatalf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
