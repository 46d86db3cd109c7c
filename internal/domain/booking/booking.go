package booking

import (
	"context"
	"strings"
	"time"

	"stayfinder/internal/domain/listings"
	"stayfinder/internal/domain/shared/daterange"
	"stayfinder/internal/domain/shared/fault"
	"stayfinder/internal/domain/user"
)

const maxSpecialRequestsLen = 500

type BookingID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusRefunded  Status = "refunded"
)

// Active reports whether the status blocks other bookings from taking the
// same dates.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type GuestCount struct {
	Adults   int
	Children int
	Infants  int
}

func (g GuestCount) Total() int {
	return g.Adults + g.Children + g.Infants
}

func (g GuestCount) Validate() error {
	if g.Adults < 1 {
		return fault.New(fault.KindValidation, "at least 1 adult is required")
	}
	if g.Children < 0 || g.Infants < 0 {
		return fault.New(fault.KindValidation, "guest counts cannot be negative")
	}
	return nil
}

// Cancellation records who cancelled, when, why and the quoted refund. No
// money movement happens here; the refund amount is an entitlement.
type Cancellation struct {
	By           user.ID
	At           time.Time
	Reason       string
	RefundAmount float64
}

type Booking struct {
	ID              BookingID
	ListingID       listings.ListingID
	GuestID         user.ID
	HostID          user.ID
	Dates           daterange.DateRange
	Nights          int
	Guests          GuestCount
	Pricing         Pricing
	Status          Status
	PaymentStatus   PaymentStatus
	SpecialRequests string
	Cancellation    *Cancellation
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type ListFilter struct {
	Status   Status
	Page     int
	PageSize int
}

func (f ListFilter) Normalized() ListFilter {
	out := f
	if out.Page < 1 {
		out.Page = 1
	}
	if out.PageSize < 1 {
		out.PageSize = 10
	}
	if out.PageSize > 100 {
		out.PageSize = 100
	}
	return out
}

type Page struct {
	Items []*Booking
	Total int
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	// HasActiveOverlap reports whether any pending or confirmed booking on
	// the listing overlaps the half-open range.
	HasActiveOverlap(ctx context.Context, listingID listings.ListingID, dr daterange.DateRange) (bool, error)
	ByGuest(ctx context.Context, guestID user.ID, filter ListFilter) (Page, error)
	ByHost(ctx context.Context, hostID user.ID, filter ListFilter) (Page, error)
	// ActiveRanges returns the date ranges of pending/confirmed bookings on
	// the listing that end on or after the given instant.
	ActiveRanges(ctx context.Context, listingID listings.ListingID, endsAfter time.Time) ([]daterange.DateRange, error)
}

type CreateParams struct {
	ID              BookingID
	ListingID       listings.ListingID
	GuestID         user.ID
	HostID          user.ID
	Dates           daterange.DateRange
	Guests          GuestCount
	Pricing         Pricing
	SpecialRequests string
	Now             time.Time
}

func New(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(string(params.GuestID)) == "" {
		return nil, fault.New(fault.KindValidation, "guest is required")
	}
	if strings.TrimSpace(string(params.HostID)) == "" {
		return nil, fault.New(fault.KindValidation, "host is required")
	}
	if err := params.Guests.Validate(); err != nil {
		return nil, err
	}
	if err := params.Dates.Validate(); err != nil {
		return nil, fault.Wrap(fault.KindInvalidDateRange, "check-out date must be after check-in date", err)
	}
	requests := strings.TrimSpace(params.SpecialRequests)
	if len(requests) > maxSpecialRequestsLen {
		return nil, fault.Newf(fault.KindValidation, "special requests cannot exceed %d characters", maxSpecialRequestsLen)
	}
	if err := params.Pricing.Validate(); err != nil {
		return nil, err
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	return &Booking{
		ID:              params.ID,
		ListingID:       params.ListingID,
		GuestID:         params.GuestID,
		HostID:          params.HostID,
		Dates:           params.Dates,
		Nights:          params.Dates.Nights(),
		Guests:          params.Guests,
		Pricing:         params.Pricing,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		SpecialRequests: requests,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Confirm moves a pending booking to confirmed. A second confirm fails; the
// transition is deliberately not idempotent.
func (b *Booking) Confirm(now time.Time) error {
	if b.Status != StatusPending {
		return fault.New(fault.KindInvalidState, "only pending bookings can be confirmed")
	}
	b.Status = StatusConfirmed
	b.touch(now)
	return nil
}

// Cancel transitions the booking to cancelled and records the refund quoted
// by the policy, evaluated against the cancellation instant.
func (b *Booking) Cancel(by user.ID, reason string, policy RefundPolicy, now time.Time) (float64, error) {
	if b.Status == StatusCancelled || b.Status == StatusCompleted {
		return 0, fault.New(fault.KindInvalidState, "booking cannot be cancelled")
	}
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "No reason provided"
	}
	refund := policy.Refund(b.Pricing.Total, b.Dates.DaysUntil(now))
	b.Status = StatusCancelled
	b.Cancellation = &Cancellation{
		By:           by,
		At:           now,
		Reason:       reason,
		RefundAmount: refund,
	}
	b.touch(now)
	return refund, nil
}

// Complete marks a confirmed stay as finished. Triggered externally; the
// transition only has to be representable here.
func (b *Booking) Complete(now time.Time) error {
	if b.Status != StatusConfirmed {
		return fault.New(fault.KindInvalidState, "only confirmed bookings can be completed")
	}
	b.Status = StatusCompleted
	b.touch(now)
	return nil
}

// MarkRefunded records that the quoted refund was paid out.
func (b *Booking) MarkRefunded(now time.Time) error {
	if b.Status != StatusCancelled && b.Status != StatusCompleted {
		return fault.New(fault.KindInvalidState, "only cancelled or completed bookings can be refunded")
	}
	b.Status = StatusRefunded
	b.PaymentStatus = PaymentRefunded
	b.touch(now)
	return nil
}

func (b *Booking) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	b.UpdatedAt = now.UTC()
}
