// Package policies centralizes the per-operation authorization rules so the
// relationship checks (guest of, host of, admin) are testable in one place
// instead of being scattered through route handlers.
package policies

import (
	"stayfinder/internal/domain/booking"
	"stayfinder/internal/domain/listings"
	"stayfinder/internal/domain/reviews"
	"stayfinder/internal/domain/shared/fault"
	"stayfinder/internal/domain/user"
)

// Principal is the authenticated caller as resolved by the HTTP layer.
type Principal struct {
	UserID user.ID
	Role   user.Role
}

func (p Principal) isAdmin() bool {
	return p.Role == user.RoleAdmin
}

func (p Principal) isHostRole() bool {
	return p.Role == user.RoleHost || p.Role == user.RoleAdmin
}

func CanViewBooking(p Principal, b *booking.Booking) error {
	if p.UserID == b.GuestID || p.UserID == b.HostID || p.isAdmin() {
		return nil
	}
	return fault.Forbidden("not authorized to view this booking")
}

func CanConfirmBooking(p Principal, b *booking.Booking) error {
	if p.UserID == b.HostID {
		return nil
	}
	return fault.Forbidden("only the host can confirm bookings")
}

func CanCancelBooking(p Principal, b *booking.Booking) error {
	if p.UserID == b.GuestID || p.UserID == b.HostID || p.isAdmin() {
		return nil
	}
	return fault.Forbidden("not authorized to cancel this booking")
}

func CanCreateListing(p Principal) error {
	if p.isHostRole() {
		return nil
	}
	return fault.Forbidden("host privileges required")
}

func CanManageListing(p Principal, l *listings.Listing) error {
	if p.UserID == l.Host || p.isAdmin() {
		return nil
	}
	return fault.Forbidden("not authorized to manage this listing")
}

func CanReviewBooking(p Principal, b *booking.Booking) error {
	if p.UserID == b.GuestID {
		return nil
	}
	return fault.Forbidden("you can only review your own bookings")
}

func CanRespondToReview(p Principal, r *reviews.Review) error {
	if p.UserID == r.HostID {
		return nil
	}
	return fault.Forbidden("only the host can respond to this review")
}
