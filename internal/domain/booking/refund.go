package booking

import "math"

// RefundPolicy maps days-until-check-in at cancellation time to the fraction
// of the total returned. The default schedule: 90% a week or more out, 50%
// between three days and a week, nothing inside three days.
type RefundPolicy struct {
	FullWindowDays    int
	PartialWindowDays int
	FullRate          float64
	PartialRate       float64
}

func DefaultRefundPolicy() RefundPolicy {
	return RefundPolicy{
		FullWindowDays:    7,
		PartialWindowDays: 3,
		FullRate:          0.90,
		PartialRate:       0.50,
	}
}

// Refund quotes the amount owed back for a cancellation. The result is
// rounded to cents so repeated quoting is deterministic.
func (p RefundPolicy) Refund(total int64, daysUntilCheckIn int) float64 {
	var rate float64
	switch {
	case daysUntilCheckIn >= p.FullWindowDays:
		rate = p.FullRate
	case daysUntilCheckIn >= p.PartialWindowDays:
		rate = p.PartialRate
	default:
		return 0
	}
	cents := math.Round(float64(total) * rate * 100)
	return cents / 100
}
