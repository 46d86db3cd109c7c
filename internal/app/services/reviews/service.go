package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"stayfinder/internal/app/events"
	"stayfinder/internal/app/policies"
	"stayfinder/internal/domain/booking"
	domainlistings "stayfinder/internal/domain/listings"
	domainreviews "stayfinder/internal/domain/reviews"
	"stayfinder/internal/domain/shared/fault"
)

type Service struct {
	Reviews  domainreviews.Repository
	Bookings booking.Repository
	Listings domainlistings.Repository
	Events   events.Publisher
	Logger   *slog.Logger
	Now      func() time.Time
}

type SubmitParams struct {
	BookingID booking.BookingID
	Ratings   domainreviews.Ratings
	Comment   string
}

// Submit creates a review for a completed booking and recomputes the
// listing's displayed rating from all reviews in the same operation, so the
// stored average is never stale relative to the review set.
func (s *Service) Submit(ctx context.Context, caller policies.Principal, params SubmitParams) (*domainreviews.Review, error) {
	b, err := s.Bookings.ByID(ctx, params.BookingID)
	if err != nil {
		return nil, fault.NotFound("booking")
	}
	if err := policies.CanReviewBooking(caller, b); err != nil {
		return nil, err
	}
	if b.Status != booking.StatusCompleted {
		return nil, fault.InvalidState("you can only review completed bookings")
	}
	if existing, err := s.Reviews.ByBooking(ctx, b.ID); err == nil && existing != nil {
		return nil, fault.Conflict("review already exists for this booking")
	}

	now := s.now()
	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:         domainreviews.ReviewID(uuid.NewString()),
		ListingID:  b.ListingID,
		BookingID:  b.ID,
		ReviewerID: caller.UserID,
		HostID:     b.HostID,
		Ratings:    params.Ratings,
		Comment:    params.Comment,
		Now:        now,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Reviews.Save(ctx, review); err != nil {
		return nil, err
	}
	if err := s.recomputeRating(ctx, b.ListingID, now); err != nil {
		return nil, err
	}

	if s.Events != nil {
		event := events.Event{
			Type:       events.ReviewSubmitted,
			Key:        string(b.ListingID),
			OccurredAt: now,
			Payload: map[string]any{
				"review_id":  string(review.ID),
				"listing_id": string(b.ListingID),
				"booking_id": string(b.ID),
				"overall":    review.Ratings.Overall,
			},
		}
		if err := s.Events.Publish(ctx, event); err != nil && s.Logger != nil {
			s.Logger.Warn("event publish failed", "type", event.Type, "error", err)
		}
	}
	if s.Logger != nil {
		s.Logger.Info("review submitted", "review_id", review.ID, "listing_id", review.ListingID, "overall", review.Ratings.Overall)
	}
	return review, nil
}

func (s *Service) ListForListing(ctx context.Context, listingID domainlistings.ListingID, page, pageSize int) (domainreviews.Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return s.Reviews.ListByListing(ctx, listingID, page, pageSize)
}

// Respond attaches the host's response to a review.
func (s *Service) Respond(ctx context.Context, caller policies.Principal, id domainreviews.ReviewID, comment string) (*domainreviews.Review, error) {
	review, err := s.Reviews.ByID(ctx, id)
	if err != nil {
		return nil, fault.NotFound("review")
	}
	if err := policies.CanRespondToReview(caller, review); err != nil {
		return nil, err
	}
	if err := review.Respond(comment, s.now()); err != nil {
		return nil, err
	}
	if err := s.Reviews.Save(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *Service) recomputeRating(ctx context.Context, listingID domainlistings.ListingID, now time.Time) error {
	overalls, err := s.Reviews.OverallRatings(ctx, listingID)
	if err != nil {
		return err
	}
	listing, err := s.Listings.ByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, domainlistings.ErrNotFound) {
			return nil
		}
		return err
	}
	listing.ApplyRating(domainreviews.Recompute(overalls), now)
	return s.Listings.Save(ctx, listing)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
