package memory

import (
	"context"
	"sort"
	"sync"

	domainbooking "stayfinder/internal/domain/booking"
	domainlistings "stayfinder/internal/domain/listings"
	domainreviews "stayfinder/internal/domain/reviews"
	"stayfinder/internal/domain/shared/fault"
)

// ReviewRepository stores reviews in memory, enforcing one review per
// booking like the mongo unique index does.
type ReviewRepository struct {
	mu        sync.RWMutex
	items     map[domainreviews.ReviewID]*domainreviews.Review
	byBooking map[domainbooking.BookingID]domainreviews.ReviewID
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{
		items:     make(map[domainreviews.ReviewID]*domainreviews.Review),
		byBooking: make(map[domainbooking.BookingID]domainreviews.ReviewID),
	}
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreviews.ReviewID) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	review, ok := r.items[id]
	if !ok {
		return nil, fault.NotFound("review")
	}
	return cloneReview(review), nil
}

func (r *ReviewRepository) ByBooking(ctx context.Context, bookingID domainbooking.BookingID) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byBooking[bookingID]
	if !ok {
		return nil, fault.NotFound("review")
	}
	return cloneReview(r.items[id]), nil
}

func (r *ReviewRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID, page, pageSize int) (domainreviews.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]*domainreviews.Review, 0)
	for _, review := range r.items {
		if review.ListingID == listingID && review.Public {
			matches = append(matches, review)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := len(matches)
	start, end := pageBounds(total, page, pageSize)
	items := make([]*domainreviews.Review, 0, end-start)
	for _, review := range matches[start:end] {
		items = append(items, cloneReview(review))
	}
	return domainreviews.Page{Items: items, Total: total}, nil
}

func (r *ReviewRepository) OverallRatings(ctx context.Context, listingID domainlistings.ListingID) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	overalls := make([]int, 0)
	for _, review := range r.items {
		if review.ListingID == listingID {
			overalls = append(overalls, review.Ratings.Overall)
		}
	}
	return overalls, nil
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byBooking[review.BookingID]; ok && existing != review.ID {
		return fault.Conflict("review already exists for this booking")
	}
	r.items[review.ID] = cloneReview(review)
	r.byBooking[review.BookingID] = review.ID
	return nil
}

func cloneReview(rv *domainreviews.Review) *domainreviews.Review {
	if rv == nil {
		return nil
	}
	out := *rv
	if rv.HostResponse != nil {
		response := *rv.HostResponse
		out.HostResponse = &response
	}
	return &out
}

var _ domainreviews.Repository = (*ReviewRepository)(nil)
