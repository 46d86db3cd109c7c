package booking

import "testing"

func TestRefundSchedule(t *testing.T) {
	policy := DefaultRefundPolicy()
	cases := []struct {
		name  string
		total int64
		days  int
		want  float64
	}{
		{"ten days out", 2941, 10, 2646.90},
		{"five days out", 2941, 5, 1470.50},
		{"one day out", 2941, 1, 0},
		{"exactly seven days", 2941, 7, 2646.90},
		{"exactly three days", 2941, 3, 1470.50},
		{"two days out", 2941, 2, 0},
		{"day of check-in", 2941, 0, 0},
		{"after check-in", 2941, -1, 0},
		{"round total full refund", 1000, 14, 900},
		{"cent rounding", 659, 5, 329.50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := policy.Refund(tc.total, tc.days); got != tc.want {
				t.Fatalf("Refund(%d, %d) = %v, want %v", tc.total, tc.days, got, tc.want)
			}
		})
	}
}
