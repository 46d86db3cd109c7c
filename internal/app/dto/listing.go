package dto

import (
	"time"

	domainlistings "stayfinder/internal/domain/listings"
	"stayfinder/internal/domain/shared/daterange"
)

type LocationDTO struct {
	Address string  `json:"address"`
	City    string  `json:"city"`
	State   string  `json:"state,omitempty"`
	Country string  `json:"country"`
	ZipCode string  `json:"zipCode,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
}

type CapacityDTO struct {
	Guests    int `json:"guests"`
	Bedrooms  int `json:"bedrooms"`
	Bathrooms int `json:"bathrooms"`
	Beds      int `json:"beds"`
}

type ImageDTO struct {
	URL       string `json:"url"`
	Caption   string `json:"caption,omitempty"`
	IsPrimary bool   `json:"isPrimary"`
}

type RatingDTO struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type ListingSummary struct {
	ID           string      `json:"id"`
	HostID       string      `json:"hostId"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	PropertyType string      `json:"propertyType"`
	Location     LocationDTO `json:"location"`
	NightlyPrice int64       `json:"nightlyPrice"`
	Currency     string      `json:"currency"`
	Capacity     CapacityDTO `json:"capacity"`
	Amenities    []string    `json:"amenities"`
	Images       []ImageDTO  `json:"images"`
	Rating       RatingDTO   `json:"rating"`
	Status       string      `json:"status"`
	Featured     bool        `json:"featured"`
	Views        int64       `json:"views"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

type DateRangeDTO struct {
	CheckIn  time.Time `json:"checkIn"`
	CheckOut time.Time `json:"checkOut"`
}

type ListingDetail struct {
	ListingSummary
	UnavailableDates []DateRangeDTO `json:"unavailableDates"`
}

type ListingCollection struct {
	Items    []ListingSummary `json:"items"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

func MapListingSummary(listing *domainlistings.Listing) ListingSummary {
	if listing == nil {
		return ListingSummary{}
	}
	images := make([]ImageDTO, 0, len(listing.Images))
	for _, img := range listing.Images {
		images = append(images, ImageDTO{URL: img.URL, Caption: img.Caption, IsPrimary: img.IsPrimary})
	}
	return ListingSummary{
		ID:           string(listing.ID),
		HostID:       string(listing.Host),
		Title:        listing.Title,
		Description:  listing.Description,
		PropertyType: string(listing.PropertyType),
		Location: LocationDTO{
			Address: listing.Location.Address,
			City:    listing.Location.City,
			State:   listing.Location.State,
			Country: listing.Location.Country,
			ZipCode: listing.Location.ZipCode,
			Lat:     listing.Location.Lat,
			Lon:     listing.Location.Lon,
		},
		NightlyPrice: listing.NightlyPrice,
		Currency:     listing.Currency,
		Capacity: CapacityDTO{
			Guests:    listing.Capacity.Guests,
			Bedrooms:  listing.Capacity.Bedrooms,
			Bathrooms: listing.Capacity.Bathrooms,
			Beds:      listing.Capacity.Beds,
		},
		Amenities: append([]string(nil), listing.Amenities...),
		Images:    images,
		Rating:    RatingDTO{Average: listing.Rating.Average, Count: listing.Rating.Count},
		Status:    string(listing.Status),
		Featured:  listing.Featured,
		Views:     listing.Views,
		CreatedAt: listing.CreatedAt,
		UpdatedAt: listing.UpdatedAt,
	}
}

func MapListingDetail(listing *domainlistings.Listing, unavailable []daterange.DateRange) ListingDetail {
	ranges := make([]DateRangeDTO, 0, len(unavailable))
	for _, dr := range unavailable {
		ranges = append(ranges, DateRangeDTO{CheckIn: dr.CheckIn, CheckOut: dr.CheckOut})
	}
	return ListingDetail{
		ListingSummary:   MapListingSummary(listing),
		UnavailableDates: ranges,
	}
}

func MapListingCollection(result domainlistings.SearchResult, page, pageSize int) ListingCollection {
	items := make([]ListingSummary, 0, len(result.Items))
	for _, listing := range result.Items {
		items = append(items, MapListingSummary(listing))
	}
	return ListingCollection{Items: items, Total: result.Total, Page: page, PageSize: pageSize}
}
