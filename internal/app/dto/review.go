package dto

import (
	"time"

	domainreviews "stayfinder/internal/domain/reviews"
)

type RatingsDTO struct {
	Overall       int `json:"overall"`
	Cleanliness   int `json:"cleanliness,omitempty"`
	Communication int `json:"communication,omitempty"`
	CheckIn       int `json:"checkIn,omitempty"`
	Accuracy      int `json:"accuracy,omitempty"`
	Location      int `json:"location,omitempty"`
	Value         int `json:"value,omitempty"`
}

type HostResponseDTO struct {
	Comment     string    `json:"comment"`
	RespondedAt time.Time `json:"respondedAt"`
}

type ReviewView struct {
	ID           string           `json:"id"`
	ListingID    string           `json:"listingId"`
	BookingID    string           `json:"bookingId"`
	ReviewerID   string           `json:"reviewerId"`
	Ratings      RatingsDTO       `json:"ratings"`
	Comment      string           `json:"comment"`
	HostResponse *HostResponseDTO `json:"hostResponse,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
}

type ReviewCollection struct {
	Items []ReviewView `json:"items"`
	Total int          `json:"total"`
}

func MapReviewView(review *domainreviews.Review) ReviewView {
	if review == nil {
		return ReviewView{}
	}
	view := ReviewView{
		ID:         string(review.ID),
		ListingID:  string(review.ListingID),
		BookingID:  string(review.BookingID),
		ReviewerID: string(review.ReviewerID),
		Ratings: RatingsDTO{
			Overall:       review.Ratings.Overall,
			Cleanliness:   review.Ratings.Cleanliness,
			Communication: review.Ratings.Communication,
			CheckIn:       review.Ratings.CheckIn,
			Accuracy:      review.Ratings.Accuracy,
			Location:      review.Ratings.Location,
			Value:         review.Ratings.Value,
		},
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
	if review.HostResponse != nil {
		view.HostResponse = &HostResponseDTO{
			Comment:     review.HostResponse.Comment,
			RespondedAt: review.HostResponse.RespondedAt,
		}
	}
	return view
}

func MapReviewCollection(page domainreviews.Page) ReviewCollection {
	items := make([]ReviewView, 0, len(page.Items))
	for _, review := range page.Items {
		items = append(items, MapReviewView(review))
	}
	return ReviewCollection{Items: items, Total: page.Total}
}
