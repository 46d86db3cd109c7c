package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainbooking "stayfinder/internal/domain/booking"
	domainlistings "stayfinder/internal/domain/listings"
	"stayfinder/internal/domain/shared/daterange"
	"stayfinder/internal/domain/shared/fault"
	domainuser "stayfinder/internal/domain/user"
)

// BookingRepository stores bookings in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.items[id]
	if !ok {
		return nil, fault.NotFound("booking")
	}
	return cloneBooking(booking), nil
}

func (r *BookingRepository) Save(ctx context.Context, booking *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[booking.ID] = cloneBooking(booking)
	return nil
}

func (r *BookingRepository) HasActiveOverlap(ctx context.Context, listingID domainlistings.ListingID, dr daterange.DateRange) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, booking := range r.items {
		if booking.ListingID != listingID || !booking.Status.Active() {
			continue
		}
		if booking.Dates.Overlaps(dr) {
			return true, nil
		}
	}
	return false, nil
}

func (r *BookingRepository) ByGuest(ctx context.Context, guestID domainuser.ID, filter domainbooking.ListFilter) (domainbooking.Page, error) {
	return r.list(filter, func(b *domainbooking.Booking) bool { return b.GuestID == guestID })
}

func (r *BookingRepository) ByHost(ctx context.Context, hostID domainuser.ID, filter domainbooking.ListFilter) (domainbooking.Page, error) {
	return r.list(filter, func(b *domainbooking.Booking) bool { return b.HostID == hostID })
}

func (r *BookingRepository) ActiveRanges(ctx context.Context, listingID domainlistings.ListingID, endsAfter time.Time) ([]daterange.DateRange, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ranges := make([]daterange.DateRange, 0)
	for _, booking := range r.items {
		if booking.ListingID != listingID || !booking.Status.Active() {
			continue
		}
		if booking.Dates.CheckOut.Before(endsAfter) {
			continue
		}
		ranges = append(ranges, booking.Dates)
	}
	sort.Slice(ranges, func(i, j int) bool {
		return ranges[i].CheckIn.Before(ranges[j].CheckIn)
	})
	return ranges, nil
}

func (r *BookingRepository) list(filter domainbooking.ListFilter, match func(*domainbooking.Booking) bool) (domainbooking.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := filter.Normalized()
	matches := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if !match(booking) {
			continue
		}
		if opts.Status != "" && booking.Status != opts.Status {
			continue
		}
		matches = append(matches, booking)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := len(matches)
	start, end := pageBounds(total, opts.Page, opts.PageSize)
	items := make([]*domainbooking.Booking, 0, end-start)
	for _, booking := range matches[start:end] {
		items = append(items, cloneBooking(booking))
	}
	return domainbooking.Page{Items: items, Total: total}, nil
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	if b == nil {
		return nil
	}
	out := *b
	if b.Cancellation != nil {
		cancellation := *b.Cancellation
		out.Cancellation = &cancellation
	}
	return &out
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
