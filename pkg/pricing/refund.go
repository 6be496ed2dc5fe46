package pricing

import "time"

const (
	FullRefundDays = 7
	HalfRefundDays = 3
)

type RefundQuote struct {
	DaysToStart int     `json:"days_to_start"`
	Percent     int     `json:"refund_percent"`
	Amount      float64 `json:"refund_amount"`
	Eligible    bool    `json:"eligible"`
}

// DaysUntil counts whole calendar days from now's date to start's date.
// Each date is read in its own zone, so now should carry the library's
// zone while start is a plain calendar date.
func DaysUntil(start, now time.Time) int {
	s := dateOf(start)
	n := dateOf(now)
	return int(s.Sub(n).Hours() / 24)
}

// RefundPercent maps days-to-start to the refund tier
func RefundPercent(days int) int {
	switch {
	case days >= FullRefundDays:
		return 100
	case days >= HalfRefundDays:
		return 50
	default:
		return 0
	}
}

// CalculateRefund quotes the refund for cancelling a booking worth amount
func CalculateRefund(amount float64, start, now time.Time) RefundQuote {
	days := DaysUntil(start, now)
	percent := RefundPercent(days)

	return RefundQuote{
		DaysToStart: days,
		Percent:     percent,
		Amount:      Round(amount * float64(percent) / 100),
		Eligible:    percent > 0,
	}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
