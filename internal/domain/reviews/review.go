package reviews

import (
	"context"
	"math"
	"strings"
	"time"

	"stayfinder/internal/domain/booking"
	"stayfinder/internal/domain/listings"
	"stayfinder/internal/domain/shared/fault"
	"stayfinder/internal/domain/user"
)

const (
	maxCommentLen      = 1000
	maxHostResponseLen = 500
)

type ReviewID string

// Ratings carries the guest's scores. Overall is required; the category
// scores are optional and zero means unset.
type Ratings struct {
	Overall       int
	Cleanliness   int
	Communication int
	CheckIn       int
	Accuracy      int
	Location      int
	Value         int
}

func (r Ratings) Validate() error {
	if r.Overall < 1 || r.Overall > 5 {
		return fault.New(fault.KindValidation, "overall rating must be between 1 and 5")
	}
	for _, score := range []int{r.Cleanliness, r.Communication, r.CheckIn, r.Accuracy, r.Location, r.Value} {
		if score != 0 && (score < 1 || score > 5) {
			return fault.New(fault.KindValidation, "category ratings must be between 1 and 5")
		}
	}
	return nil
}

type HostResponse struct {
	Comment     string
	RespondedAt time.Time
}

type Review struct {
	ID           ReviewID
	ListingID    listings.ListingID
	BookingID    booking.BookingID
	ReviewerID   user.ID
	HostID       user.ID
	Ratings      Ratings
	Comment      string
	HostResponse *HostResponse
	Public       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Page struct {
	Items []*Review
	Total int
}

type Repository interface {
	ByID(ctx context.Context, id ReviewID) (*Review, error)
	// ByBooking returns the review for a booking, if any. At most one review
	// exists per booking; repositories enforce this with a unique index.
	ByBooking(ctx context.Context, bookingID booking.BookingID) (*Review, error)
	ListByListing(ctx context.Context, listingID listings.ListingID, page, pageSize int) (Page, error)
	// OverallRatings returns every overall score for the listing, for the
	// rating recompute.
	OverallRatings(ctx context.Context, listingID listings.ListingID) ([]int, error)
	Save(ctx context.Context, review *Review) error
}

type SubmitParams struct {
	ID         ReviewID
	ListingID  listings.ListingID
	BookingID  booking.BookingID
	ReviewerID user.ID
	HostID     user.ID
	Ratings    Ratings
	Comment    string
	Now        time.Time
}

func Submit(params SubmitParams) (*Review, error) {
	if err := params.Ratings.Validate(); err != nil {
		return nil, err
	}
	comment := strings.TrimSpace(params.Comment)
	if comment == "" {
		return nil, fault.New(fault.KindValidation, "review comment is required")
	}
	if len(comment) > maxCommentLen {
		return nil, fault.Newf(fault.KindValidation, "comment cannot exceed %d characters", maxCommentLen)
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Review{
		ID:         params.ID,
		ListingID:  params.ListingID,
		BookingID:  params.BookingID,
		ReviewerID: params.ReviewerID,
		HostID:     params.HostID,
		Ratings:    params.Ratings,
		Comment:    comment,
		Public:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (r *Review) Respond(comment string, now time.Time) error {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return fault.New(fault.KindValidation, "response comment is required")
	}
	if len(comment) > maxHostResponseLen {
		return fault.Newf(fault.KindValidation, "host response cannot exceed %d characters", maxHostResponseLen)
	}
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	r.HostResponse = &HostResponse{Comment: comment, RespondedAt: now}
	r.UpdatedAt = now
	return nil
}

// Recompute derives a listing's displayed rating from every overall score:
// the arithmetic mean rounded to one decimal place, plus the count. It is a
// pure function so the invariant is testable without a store.
func Recompute(overalls []int) listings.Rating {
	if len(overalls) == 0 {
		return listings.Rating{}
	}
	sum := 0
	for _, score := range overalls {
		sum += score
	}
	mean := float64(sum) / float64(len(overalls))
	return listings.Rating{
		Average: math.Round(mean*10) / 10,
		Count:   len(overalls),
	}
}
