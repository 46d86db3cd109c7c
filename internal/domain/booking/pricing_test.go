package booking

import (
	"testing"
	"time"

	"stayfinder/internal/domain/shared/daterange"
)

func stay(checkInDay, checkOutDay int) daterange.DateRange {
	return daterange.DateRange{
		CheckIn:  time.Date(2024, time.July, checkInDay, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2024, time.July, checkOutDay, 0, 0, 0, 0, time.UTC),
	}
}

func TestQuote(t *testing.T) {
	cases := []struct {
		name         string
		nightlyPrice int64
		dates        daterange.DateRange
		want         Pricing
	}{
		{
			name:         "five nights at 100",
			nightlyPrice: 100,
			dates:        stay(15, 20),
			want: Pricing{
				BasePrice:   500,
				CleaningFee: 50,
				ServiceFee:  60,
				Taxes:       49,
				Total:       659,
			},
		},
		{
			name:         "single night",
			nightlyPrice: 80,
			dates:        stay(15, 16),
			want: Pricing{
				BasePrice:   80,
				CleaningFee: 8,
				ServiceFee:  10,
				Taxes:       8,
				Total:       106,
			},
		},
		{
			name:         "rounding per stage",
			nightlyPrice: 33,
			dates:        stay(15, 18),
			want: Pricing{
				BasePrice:   99,
				CleaningFee: 10,
				ServiceFee:  12,
				Taxes:       10,
				Total:       131,
			},
		},
		{
			name:         "free stay",
			nightlyPrice: 0,
			dates:        stay(15, 20),
			want:         Pricing{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Quote(tc.nightlyPrice, tc.dates)
			if got != tc.want {
				t.Fatalf("Quote() = %+v, want %+v", got, tc.want)
			}
			if err := got.Validate(); err != nil {
				t.Fatalf("quote failed its own invariant: %v", err)
			}
		})
	}
}

func TestPricingValidate(t *testing.T) {
	valid := Pricing{BasePrice: 500, CleaningFee: 50, ServiceFee: 60, Taxes: 49, Total: 659}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid pricing rejected: %v", err)
	}

	broken := valid
	broken.Total = 660
	if err := broken.Validate(); err == nil {
		t.Fatal("mismatched total accepted")
	}

	negative := Pricing{BasePrice: -1, Total: -1}
	if err := negative.Validate(); err == nil {
		t.Fatal("negative component accepted")
	}
}
