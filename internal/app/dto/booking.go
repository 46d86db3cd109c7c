package dto

import (
	"time"

	"stayfinder/internal/app/services/bookings"
	domainbooking "stayfinder/internal/domain/booking"
)

type PricingDTO struct {
	BasePrice   int64 `json:"basePrice"`
	CleaningFee int64 `json:"cleaningFee"`
	ServiceFee  int64 `json:"serviceFee"`
	Taxes       int64 `json:"taxes"`
	Total       int64 `json:"total"`
}

type GuestCountDTO struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

type BookingListingSnapshot struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	City     string `json:"city"`
	Country  string `json:"country"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type BookingParty struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type CancellationDTO struct {
	By           string    `json:"by"`
	At           time.Time `json:"at"`
	Reason       string    `json:"reason"`
	RefundAmount float64   `json:"refundAmount"`
}

type BookingView struct {
	ID              string                  `json:"id"`
	Listing         *BookingListingSnapshot `json:"listing,omitempty"`
	Guest           *BookingParty           `json:"guest,omitempty"`
	Host            *BookingParty           `json:"host,omitempty"`
	Dates           DateRangeDTO            `json:"dates"`
	Nights          int                     `json:"nights"`
	Guests          GuestCountDTO           `json:"guests"`
	Pricing         PricingDTO              `json:"pricing"`
	Status          string                  `json:"status"`
	PaymentStatus   string                  `json:"paymentStatus"`
	SpecialRequests string                  `json:"specialRequests,omitempty"`
	Cancellation    *CancellationDTO        `json:"cancellation,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
}

type BookingCollection struct {
	Items []BookingView `json:"items"`
	Total int           `json:"total"`
}

type CancelBookingResponse struct {
	Booking      BookingView `json:"booking"`
	RefundAmount float64     `json:"refundAmount"`
}

func MapBookingView(detail *bookings.Detail) BookingView {
	if detail == nil || detail.Booking == nil {
		return BookingView{}
	}
	b := detail.Booking
	view := BookingView{
		ID:     string(b.ID),
		Dates:  DateRangeDTO{CheckIn: b.Dates.CheckIn, CheckOut: b.Dates.CheckOut},
		Nights: b.Nights,
		Guests: GuestCountDTO{
			Adults:   b.Guests.Adults,
			Children: b.Guests.Children,
			Infants:  b.Guests.Infants,
		},
		Pricing:         MapPricing(b.Pricing),
		Status:          string(b.Status),
		PaymentStatus:   string(b.PaymentStatus),
		SpecialRequests: b.SpecialRequests,
		CreatedAt:       b.CreatedAt,
	}
	if detail.Listing != nil {
		view.Listing = &BookingListingSnapshot{
			ID:       string(detail.Listing.ID),
			Title:    detail.Listing.Title,
			City:     detail.Listing.City,
			Country:  detail.Listing.Country,
			ImageURL: detail.Listing.ImageURL,
		}
	}
	view.Guest = mapParty(detail.Guest)
	view.Host = mapParty(detail.Host)
	if b.Cancellation != nil {
		view.Cancellation = &CancellationDTO{
			By:           string(b.Cancellation.By),
			At:           b.Cancellation.At,
			Reason:       b.Cancellation.Reason,
			RefundAmount: b.Cancellation.RefundAmount,
		}
	}
	return view
}

func MapBookingCollection(result *bookings.ListResult) BookingCollection {
	if result == nil {
		return BookingCollection{Items: []BookingView{}}
	}
	items := make([]BookingView, 0, len(result.Items))
	for _, detail := range result.Items {
		items = append(items, MapBookingView(detail))
	}
	return BookingCollection{Items: items, Total: result.Total}
}

func MapPricing(p domainbooking.Pricing) PricingDTO {
	return PricingDTO{
		BasePrice:   p.BasePrice,
		CleaningFee: p.CleaningFee,
		ServiceFee:  p.ServiceFee,
		Taxes:       p.Taxes,
		Total:       p.Total,
	}
}

func mapParty(summary *bookings.UserSummary) *BookingParty {
	if summary == nil {
		return nil
	}
	return &BookingParty{
		ID:        string(summary.ID),
		FirstName: summary.FirstName,
		LastName:  summary.LastName,
		Email:     summary.Email,
	}
}
