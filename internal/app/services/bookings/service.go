package bookings

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"stayfinder/internal/app/events"
	"stayfinder/internal/app/policies"
	"stayfinder/internal/domain/booking"
	"stayfinder/internal/domain/listings"
	"stayfinder/internal/domain/shared/daterange"
	"stayfinder/internal/domain/shared/fault"
	"stayfinder/internal/domain/user"
)

// Service implements the booking engine: availability and pricing on
// creation, the status state machine, and the cancellation refund quote.
type Service struct {
	Bookings booking.Repository
	Listings listings.Repository
	Users    user.Repository
	Events   events.Publisher
	Policy   booking.RefundPolicy
	Logger   *slog.Logger
	Now      func() time.Time

	locks *listingLocks
}

func NewService(bookings booking.Repository, listingRepo listings.Repository, users user.Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		Bookings: bookings,
		Listings: listingRepo,
		Users:    users,
		Events:   publisher,
		Policy:   booking.DefaultRefundPolicy(),
		Logger:   logger,
		Now:      time.Now,
		locks:    newListingLocks(),
	}
}

type CreateParams struct {
	ListingID       string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          booking.GuestCount
	SpecialRequests string
}

// UserSummary is the slice of a user attached to booking responses.
type UserSummary struct {
	ID        user.ID
	FirstName string
	LastName  string
	Email     string
}

type ListingSummary struct {
	ID       listings.ListingID
	Title    string
	City     string
	Country  string
	ImageURL string
}

type Detail struct {
	Booking *booking.Booking
	Listing *ListingSummary
	Guest   *UserSummary
	Host    *UserSummary
}

// Create runs the availability checks in their fixed order, quotes the
// price and persists a pending booking. The overlap check and the insert run
// under the listing's lock so two concurrent requests for overlapping dates
// cannot both succeed.
func (s *Service) Create(ctx context.Context, caller policies.Principal, params CreateParams) (*Detail, error) {
	listing, err := s.Listings.ByID(ctx, listings.ListingID(params.ListingID))
	if err != nil {
		if errors.Is(err, listings.ErrNotFound) {
			return nil, fault.NotFound("listing")
		}
		return nil, err
	}
	if !listing.Bookable() {
		return nil, fault.InvalidState("listing is not available for booking")
	}
	if params.Guests.Total() > listing.Capacity.Guests {
		return nil, fault.Newf(fault.KindCapacityExceeded, "property can accommodate maximum %d guests", listing.Capacity.Guests)
	}

	dates := daterange.DateRange{CheckIn: params.CheckIn.UTC(), CheckOut: params.CheckOut.UTC()}
	now := s.now()
	// Re-checked here because the binding-tag rule only covers the HTTP path.
	if dates.CheckIn.Before(now) {
		return nil, fault.New(fault.KindValidation, "check-in date cannot be in the past")
	}

	release := s.locks.acquire(listing.ID)
	created, err := s.createLocked(ctx, caller, listing, dates, params, now)
	release()
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:       events.BookingRequested,
		Key:        string(created.ListingID),
		OccurredAt: now,
		Payload:    eventPayload(created),
	})
	if s.Logger != nil {
		s.Logger.Info("booking created", "booking_id", created.ID, "listing_id", created.ListingID, "guest_id", created.GuestID, "total", created.Pricing.Total)
	}
	return s.detail(ctx, created)
}

func (s *Service) createLocked(ctx context.Context, caller policies.Principal, listing *listings.Listing, dates daterange.DateRange, params CreateParams, now time.Time) (*booking.Booking, error) {
	conflict, err := s.Bookings.HasActiveOverlap(ctx, listing.ID, dates)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, fault.New(fault.KindDateConflict, "selected dates are not available")
	}

	created, err := booking.New(booking.CreateParams{
		ID:              booking.BookingID(uuid.NewString()),
		ListingID:       listing.ID,
		GuestID:         caller.UserID,
		HostID:          listing.Host,
		Dates:           dates,
		Guests:          params.Guests,
		Pricing:         booking.Quote(listing.NightlyPrice, dates),
		SpecialRequests: params.SpecialRequests,
		Now:             now,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Bookings.Save(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

// Confirm is the host accepting a pending booking. Not idempotent: a second
// confirm reports the invalid transition instead of silently succeeding.
func (s *Service) Confirm(ctx context.Context, caller policies.Principal, id booking.BookingID) (*Detail, error) {
	b, err := s.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policies.CanConfirmBooking(caller, b); err != nil {
		return nil, err
	}
	now := s.now()
	if err := b.Confirm(now); err != nil {
		return nil, err
	}
	if err := s.Bookings.Save(ctx, b); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:       events.BookingConfirmed,
		Key:        string(b.ListingID),
		OccurredAt: now,
		Payload:    eventPayload(b),
	})
	if s.Logger != nil {
		s.Logger.Info("booking confirmed", "booking_id", b.ID, "host_id", b.HostID)
	}
	return s.detail(ctx, b)
}

type CancelResult struct {
	Detail       *Detail
	RefundAmount float64
}

// Cancel transitions to cancelled and quotes the refund entitlement. No
// money moves here.
func (s *Service) Cancel(ctx context.Context, caller policies.Principal, id booking.BookingID, reason string) (*CancelResult, error) {
	b, err := s.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policies.CanCancelBooking(caller, b); err != nil {
		return nil, err
	}
	now := s.now()
	refund, err := b.Cancel(caller.UserID, reason, s.Policy, now)
	if err != nil {
		return nil, err
	}
	if err := s.Bookings.Save(ctx, b); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:       events.BookingCancelled,
		Key:        string(b.ListingID),
		OccurredAt: now,
		Payload:    eventPayload(b),
	})
	if s.Logger != nil {
		s.Logger.Info("booking cancelled", "booking_id", b.ID, "cancelled_by", caller.UserID, "refund", refund)
	}
	detail, err := s.detail(ctx, b)
	if err != nil {
		return nil, err
	}
	return &CancelResult{Detail: detail, RefundAmount: refund}, nil
}

// Complete marks a confirmed stay finished. The transition is normally
// time-driven; the endpoint exists for operators.
func (s *Service) Complete(ctx context.Context, caller policies.Principal, id booking.BookingID) (*Detail, error) {
	if caller.Role != user.RoleAdmin {
		return nil, fault.Forbidden("admin privileges required")
	}
	b, err := s.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := b.Complete(s.now()); err != nil {
		return nil, err
	}
	if err := s.Bookings.Save(ctx, b); err != nil {
		return nil, err
	}
	return s.detail(ctx, b)
}

func (s *Service) Get(ctx context.Context, caller policies.Principal, id booking.BookingID) (*Detail, error) {
	b, err := s.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policies.CanViewBooking(caller, b); err != nil {
		return nil, err
	}
	return s.detail(ctx, b)
}

type ListResult struct {
	Items []*Detail
	Total int
}

// ListForGuest returns the caller's own bookings, newest first.
func (s *Service) ListForGuest(ctx context.Context, caller policies.Principal, filter booking.ListFilter) (*ListResult, error) {
	page, err := s.Bookings.ByGuest(ctx, caller.UserID, filter)
	if err != nil {
		return nil, err
	}
	return s.listResult(ctx, page)
}

// ListForHost returns bookings received on the caller's listings.
func (s *Service) ListForHost(ctx context.Context, caller policies.Principal, filter booking.ListFilter) (*ListResult, error) {
	page, err := s.Bookings.ByHost(ctx, caller.UserID, filter)
	if err != nil {
		return nil, err
	}
	return s.listResult(ctx, page)
}

func (s *Service) byID(ctx context.Context, id booking.BookingID) (*booking.Booking, error) {
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return nil, fault.NotFound("booking")
	}
	return b, nil
}

func (s *Service) listResult(ctx context.Context, page booking.Page) (*ListResult, error) {
	items := make([]*Detail, 0, len(page.Items))
	for _, b := range page.Items {
		detail, err := s.detail(ctx, b)
		if err != nil {
			return nil, err
		}
		items = append(items, detail)
	}
	return &ListResult{Items: items, Total: page.Total}, nil
}

// detail resolves listing and party summaries for display. Missing
// references degrade to nil summaries rather than failing the read.
func (s *Service) detail(ctx context.Context, b *booking.Booking) (*Detail, error) {
	d := &Detail{Booking: b}
	if listing, err := s.Listings.ByID(ctx, b.ListingID); err == nil {
		summary := &ListingSummary{
			ID:      listing.ID,
			Title:   listing.Title,
			City:    listing.Location.City,
			Country: listing.Location.Country,
		}
		if len(listing.Images) > 0 {
			summary.ImageURL = listing.Images[0].URL
		}
		d.Listing = summary
	}
	d.Guest = s.userSummary(ctx, b.GuestID)
	d.Host = s.userSummary(ctx, b.HostID)
	return d, nil
}

func (s *Service) userSummary(ctx context.Context, id user.ID) *UserSummary {
	u, err := s.Users.ByID(ctx, id)
	if err != nil {
		return nil
	}
	return &UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.Events.Publish(ctx, event); err != nil && s.Logger != nil {
		s.Logger.Warn("event publish failed", "type", event.Type, "error", err)
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

type bookingEventPayload struct {
	BookingID    string  `json:"booking_id"`
	ListingID    string  `json:"listing_id"`
	GuestID      string  `json:"guest_id"`
	HostID       string  `json:"host_id"`
	Status       string  `json:"status"`
	CheckIn      string  `json:"check_in"`
	CheckOut     string  `json:"check_out"`
	Total        int64   `json:"total"`
	RefundAmount float64 `json:"refund_amount,omitempty"`
}

func eventPayload(b *booking.Booking) bookingEventPayload {
	payload := bookingEventPayload{
		BookingID: string(b.ID),
		ListingID: string(b.ListingID),
		GuestID:   string(b.GuestID),
		HostID:    string(b.HostID),
		Status:    string(b.Status),
		CheckIn:   b.Dates.CheckIn.Format(time.RFC3339),
		CheckOut:  b.Dates.CheckOut.Format(time.RFC3339),
		Total:     b.Pricing.Total,
	}
	if b.Cancellation != nil {
		payload.RefundAmount = b.Cancellation.RefundAmount
	}
	return payload
}
