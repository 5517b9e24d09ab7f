package booking

import (
	"math"
	"math/big"
	"strconv"
	"time"
)

// VATRate is the surcharge applied to the room subtotal.
const VATRate = 0.10

const (
	DefaultLineDigits  = 0
	DefaultVATDigits   = 2
	DefaultTotalDigits = 2
)

const (
	isoDateLayout     = "2006-01-02"
	displayDateLayout = "Mon, 2 Jan"
)

// PriceSummary is what the UI shows next to a stay.
type PriceSummary struct {
	Lines    []NightlyPrice `json:"prices"`
	Subtotal float64        `json:"roomPrice"`
	VAT      float64        `json:"vat"`
	Total    float64        `json:"totalPrice"`
	Nights   int            `json:"nightsCount"`
}

// RoundHalfUp rounds x to digits decimals, ties toward +inf. It rounds the
// shortest decimal rendering of x, so 1.005 becomes 1.01.
func RoundHalfUp(x float64, digits int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	if digits < 0 {
		digits = 0
	}

	r, ok := new(big.Rat).SetString(strconv.FormatFloat(x, 'f', -1, 64))
	if !ok {
		return x
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	r.Mul(r, new(big.Rat).SetInt(scale))
	r.Add(r, big.NewRat(1, 2))

	// Rat denominators are positive, so Euclidean division is floor.
	floor := new(big.Int).Div(r.Num(), r.Denom())
	f, _ := new(big.Rat).SetFrac(floor, scale).Float64()
	return f
}

// RoomSubtotal is the exact sum of the raw nightly amounts.
func RoomSubtotal(prices []NightlyPrice) float64 {
	var sum float64
	for _, p := range prices {
		sum += p.Amount
	}
	return sum
}

// VAT returns the subtotal surcharge rounded to digits.
func VAT(prices []NightlyPrice, digits int) float64 {
	return RoundHalfUp(RoomSubtotal(prices)*VATRate, digits)
}

// Total returns the subtotal, plus VAT when withVAT is set, rounded to digits.
// The VAT added is the displayed VAT (two decimals).
func Total(prices []NightlyPrice, withVAT bool, digits int) float64 {
	total := RoomSubtotal(prices)
	if withVAT {
		total += VAT(prices, DefaultVATDigits)
	}
	return RoundHalfUp(total, digits)
}

// PriceLines re-renders the nightly prices with rounded amounts and,
// optionally, display-formatted dates. The input is not modified.
func PriceLines(prices []NightlyPrice, digits int, formattedDate bool) []NightlyPrice {
	lines := make([]NightlyPrice, len(prices))
	for i, p := range prices {
		lines[i] = NightlyPrice{Date: p.Date, Amount: RoundHalfUp(p.Amount, digits)}
		if formattedDate {
			lines[i].Date = FormatDisplayDate(p.Date)
		}
	}
	return lines
}

// Summarize computes the default figures of a price list.
func Summarize(prices []NightlyPrice) PriceSummary {
	return PriceSummary{
		Lines:    PriceLines(prices, DefaultLineDigits, false),
		Subtotal: RoomSubtotal(prices),
		VAT:      VAT(prices, DefaultVATDigits),
		Total:    Total(prices, true, DefaultTotalDigits),
		Nights:   len(prices),
	}
}

// FormatDisplayDate renders YYYY-MM-DD as "Sat, 1 Jun". Unparseable input is
// returned unchanged.
func FormatDisplayDate(iso string) string {
	t, err := parseDate(iso)
	if err != nil {
		return iso
	}
	return t.Format(displayDateLayout)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(isoDateLayout, s)
}
