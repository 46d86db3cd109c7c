package booking

import (
	"strings"
	"testing"
	"time"

	"stayfinder/internal/domain/shared/fault"
)

func validCreateParams() CreateParams {
	dates := stay(15, 20)
	return CreateParams{
		ID:        "bk-1",
		ListingID: "ls-1",
		GuestID:   "guest-1",
		HostID:    "host-1",
		Dates:     dates,
		Guests:    GuestCount{Adults: 2},
		Pricing:   Quote(100, dates),
		Now:       time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewBooking(t *testing.T) {
	b, err := New(validCreateParams())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if b.Status != StatusPending {
		t.Fatalf("new booking status = %s, want pending", b.Status)
	}
	if b.PaymentStatus != PaymentPending {
		t.Fatalf("payment status = %s, want pending", b.PaymentStatus)
	}
	if b.Nights != 5 {
		t.Fatalf("nights = %d, want 5", b.Nights)
	}
}

func TestNewBookingValidation(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*CreateParams)
		wantKind fault.Kind
	}{
		{
			name:     "missing guest",
			mutate:   func(p *CreateParams) { p.GuestID = "" },
			wantKind: fault.KindValidation,
		},
		{
			name:     "missing host",
			mutate:   func(p *CreateParams) { p.HostID = "" },
			wantKind: fault.KindValidation,
		},
		{
			name:     "no adults",
			mutate:   func(p *CreateParams) { p.Guests = GuestCount{Children: 2} },
			wantKind: fault.KindValidation,
		},
		{
			name: "inverted dates",
			mutate: func(p *CreateParams) {
				p.Dates.CheckIn, p.Dates.CheckOut = p.Dates.CheckOut, p.Dates.CheckIn
			},
			wantKind: fault.KindInvalidDateRange,
		},
		{
			name:     "oversized special requests",
			mutate:   func(p *CreateParams) { p.SpecialRequests = strings.Repeat("x", 501) },
			wantKind: fault.KindValidation,
		},
		{
			name:     "broken pricing",
			mutate:   func(p *CreateParams) { p.Pricing.Total++ },
			wantKind: fault.KindValidation,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := validCreateParams()
			tc.mutate(&params)
			_, err := New(params)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := fault.KindOf(err); got != tc.wantKind {
				t.Fatalf("kind = %v, want %v", got, tc.wantKind)
			}
		})
	}
}

func TestConfirmTransitions(t *testing.T) {
	b, _ := New(validCreateParams())
	now := time.Date(2024, time.July, 2, 0, 0, 0, 0, time.UTC)

	if err := b.Confirm(now); err != nil {
		t.Fatalf("confirm pending failed: %v", err)
	}
	if b.Status != StatusConfirmed {
		t.Fatalf("status = %s, want confirmed", b.Status)
	}

	// Confirm is not idempotent.
	err := b.Confirm(now)
	if fault.KindOf(err) != fault.KindInvalidState {
		t.Fatalf("second confirm: kind = %v, want InvalidState", fault.KindOf(err))
	}
}

func TestCancelTransitions(t *testing.T) {
	policy := DefaultRefundPolicy()
	now := time.Date(2024, time.July, 10, 0, 0, 0, 0, time.UTC)

	t.Run("cancel pending quotes refund", func(t *testing.T) {
		b, _ := New(validCreateParams())
		refund, err := b.Cancel("guest-1", "plans changed", policy, now)
		if err != nil {
			t.Fatalf("cancel failed: %v", err)
		}
		// 5 days before check-in: 50% of 659.
		if refund != 329.50 {
			t.Fatalf("refund = %v, want 329.50", refund)
		}
		if b.Status != StatusCancelled {
			t.Fatalf("status = %s, want cancelled", b.Status)
		}
		if b.Cancellation == nil || b.Cancellation.RefundAmount != refund {
			t.Fatalf("cancellation record = %+v", b.Cancellation)
		}
	})

	t.Run("cancel confirmed", func(t *testing.T) {
		b, _ := New(validCreateParams())
		if err := b.Confirm(now); err != nil {
			t.Fatal(err)
		}
		if _, err := b.Cancel("host-1", "", policy, now); err != nil {
			t.Fatalf("cancel confirmed failed: %v", err)
		}
		if b.Cancellation.Reason != "No reason provided" {
			t.Fatalf("default reason = %q", b.Cancellation.Reason)
		}
	})

	t.Run("cancel after cancel fails", func(t *testing.T) {
		b, _ := New(validCreateParams())
		if _, err := b.Cancel("guest-1", "", policy, now); err != nil {
			t.Fatal(err)
		}
		_, err := b.Cancel("guest-1", "", policy, now)
		if fault.KindOf(err) != fault.KindInvalidState {
			t.Fatalf("kind = %v, want InvalidState", fault.KindOf(err))
		}
	})

	t.Run("cancel completed fails", func(t *testing.T) {
		b, _ := New(validCreateParams())
		if err := b.Confirm(now); err != nil {
			t.Fatal(err)
		}
		if err := b.Complete(now); err != nil {
			t.Fatal(err)
		}
		_, err := b.Cancel("guest-1", "", policy, now)
		if fault.KindOf(err) != fault.KindInvalidState {
			t.Fatalf("kind = %v, want InvalidState", fault.KindOf(err))
		}
	})
}

func TestCompleteTransitions(t *testing.T) {
	now := time.Date(2024, time.July, 21, 0, 0, 0, 0, time.UTC)

	b, _ := New(validCreateParams())
	if err := b.Complete(now); fault.KindOf(err) != fault.KindInvalidState {
		t.Fatalf("complete pending: kind = %v, want InvalidState", fault.KindOf(err))
	}

	if err := b.Confirm(now); err != nil {
		t.Fatal(err)
	}
	if err := b.Complete(now); err != nil {
		t.Fatalf("complete confirmed failed: %v", err)
	}
	if b.Status != StatusCompleted {
		t.Fatalf("status = %s, want completed", b.Status)
	}
}

func TestMarkRefunded(t *testing.T) {
	now := time.Date(2024, time.July, 21, 0, 0, 0, 0, time.UTC)
	policy := DefaultRefundPolicy()

	t.Run("from cancelled", func(t *testing.T) {
		b, _ := New(validCreateParams())
		if _, err := b.Cancel("guest-1", "", policy, now); err != nil {
			t.Fatal(err)
		}
		if err := b.MarkRefunded(now); err != nil {
			t.Fatalf("refund cancelled failed: %v", err)
		}
		if b.Status != StatusRefunded || b.PaymentStatus != PaymentRefunded {
			t.Fatalf("status = %s/%s, want refunded/refunded", b.Status, b.PaymentStatus)
		}
	})

	t.Run("from completed", func(t *testing.T) {
		b, _ := New(validCreateParams())
		if err := b.Confirm(now); err != nil {
			t.Fatal(err)
		}
		if err := b.Complete(now); err != nil {
			t.Fatal(err)
		}
		if err := b.MarkRefunded(now); err != nil {
			t.Fatalf("refund completed failed: %v", err)
		}
	})

	t.Run("from pending fails", func(t *testing.T) {
		b, _ := New(validCreateParams())
		if err := b.MarkRefunded(now); fault.KindOf(err) != fault.KindInvalidState {
			t.Fatalf("kind = %v, want InvalidState", fault.KindOf(err))
		}
	})
}

func TestStatusActive(t *testing.T) {
	active := []Status{StatusPending, StatusConfirmed}
	inactive := []Status{StatusCancelled, StatusCompleted, StatusRefunded}
	for _, s := range active {
		if !s.Active() {
			t.Fatalf("%s should be active", s)
		}
	}
	for _, s := range inactive {
		if s.Active() {
			t.Fatalf("%s should not be active", s)
		}
	}
}
