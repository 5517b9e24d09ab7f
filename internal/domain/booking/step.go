package booking

// Step is a stage of the guest-facing reservation flow. The numeric order is
// the forward-progress order.
type Step int

const (
	StepNotStarted Step = iota
	StepConfirmDates
	StepConfirmGuests
	StepConfirmBooking
	StepReviewPolicies
	StepCustomerInfo
	StepPaymentInfo
	StepThankYou
)

// StepInfo is the UI-facing description of a step.
type StepInfo struct {
	ID    Step   `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
}

var stepCatalogue = []StepInfo{
	{ID: StepNotStarted, Name: "notStarted"},
	{ID: StepConfirmDates, Name: "confirmDates"},
	{ID: StepConfirmGuests, Name: "confirmGuests"},
	{ID: StepConfirmBooking, Name: "confirmBooking"},
	{ID: StepReviewPolicies, Name: "reviewPolicies", Title: "Review Rules"},
	{ID: StepCustomerInfo, Name: "customerInfo", Title: "Contact Info"},
	{ID: StepPaymentInfo, Name: "paymentInfo", Title: "Payment"},
	{ID: StepThankYou, Name: "thankYou", Title: "Thank You!"},
}

// Steps returns the ordered step catalogue.
func Steps() []StepInfo {
	out := make([]StepInfo, len(stepCatalogue))
	copy(out, stepCatalogue)
	return out
}

func (s Step) Valid() bool {
	return s >= StepNotStarted && s <= StepThankYou
}

func (s Step) Info() StepInfo {
	if !s.Valid() {
		return StepInfo{ID: s, Name: "unknown"}
	}
	return stepCatalogue[s]
}

func (s Step) String() string {
	return s.Info().Name
}

// CanTransitionTo reports whether the UI may move the booking from s to
// target. The UI may advance one step at a time up to the payment step, and
// may jump back to any earlier editable step to change an answer.
//
// NotStarted is only left through StartBooking, ThankYou is only reached by
// a successful submission, and both are only left through a reset.
func (s Step) CanTransitionTo(target Step) bool {
	if !s.Valid() || !target.Valid() {
		return false
	}
	if s == StepNotStarted || s == StepThankYou {
		return false
	}
	if target == StepNotStarted || target == StepThankYou {
		return false
	}
	if target == s {
		return true
	}
	if target == s+1 {
		return true
	}
	return target < s
}
