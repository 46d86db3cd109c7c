package booking

import (
	"math"

	"stayfinder/internal/domain/shared/daterange"
	"stayfinder/internal/domain/shared/fault"
)

// Fee and tax rates applied to every quote.
const (
	cleaningFeeRate = 0.10
	serviceFeeRate  = 0.12
	taxRate         = 0.08
)

// Pricing is the stage-wise rounded breakdown stored with every booking.
// Amounts are whole currency units. Total must equal the exact sum of the
// components at all times.
type Pricing struct {
	BasePrice   int64
	CleaningFee int64
	ServiceFee  int64
	Taxes       int64
	Total       int64
}

func (p Pricing) Validate() error {
	if p.BasePrice < 0 || p.CleaningFee < 0 || p.ServiceFee < 0 || p.Taxes < 0 {
		return fault.New(fault.KindValidation, "pricing components cannot be negative")
	}
	if p.Total != p.BasePrice+p.CleaningFee+p.ServiceFee+p.Taxes {
		return fault.New(fault.KindValidation, "pricing total does not match its components")
	}
	return nil
}

// Quote prices a stay. Each intermediate is rounded independently, in order:
// base, then the two fees from the base, then taxes on the post-fee subtotal.
// Computing taxes before fees would produce different totals, so the order is
// load-bearing.
func Quote(nightlyPrice int64, dates daterange.DateRange) Pricing {
	nights := int64(dates.Nights())
	base := nightlyPrice * nights
	cleaning := roundHalfAway(float64(base) * cleaningFeeRate)
	service := roundHalfAway(float64(base) * serviceFeeRate)
	taxes := roundHalfAway(float64(base+cleaning+service) * taxRate)
	return Pricing{
		BasePrice:   base,
		CleaningFee: cleaning,
		ServiceFee:  service,
		Taxes:       taxes,
		Total:       base + cleaning + service + taxes,
	}
}

// roundHalfAway rounds half away from zero, matching math.Round semantics.
func roundHalfAway(v float64) int64 {
	return int64(math.Round(v))
}
