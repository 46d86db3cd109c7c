package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayfinder/internal/domain/user"
)

var (
	ErrTitleRequired     = errors.New("listings: title is required")
	ErrHostRequired      = errors.New("listings: host is required")
	ErrGuestCapacity     = errors.New("listings: guest capacity must be at least 1")
	ErrNegativePrice     = errors.New("listings: nightly price cannot be negative")
	ErrInvalidState      = errors.New("listings: invalid state transition")
	ErrNotFound          = errors.New("listings: not found")
	ErrAddressIncomplete = errors.New("listings: address, city and country are required")
)

type ListingID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

type PropertyType string

const (
	PropertyApartment PropertyType = "apartment"
	PropertyHouse     PropertyType = "house"
	PropertyVilla     PropertyType = "villa"
	PropertyCabin     PropertyType = "cabin"
	PropertyCondo     PropertyType = "condo"
	PropertyHotel     PropertyType = "hotel"
	PropertyOther     PropertyType = "other"
)

type Location struct {
	Address string
	City    string
	State   string
	Country string
	ZipCode string
	Lat     float64
	Lon     float64
}

func (l Location) Valid() bool {
	return strings.TrimSpace(l.Address) != "" &&
		strings.TrimSpace(l.City) != "" &&
		strings.TrimSpace(l.Country) != ""
}

type Capacity struct {
	Guests    int
	Bedrooms  int
	Bathrooms int
	Beds      int
}

type Image struct {
	URL       string
	Caption   string
	IsPrimary bool
}

// Rating holds derived data recomputed from reviews on every review write.
type Rating struct {
	Average float64
	Count   int
}

type Listing struct {
	ID           ListingID
	Host         user.ID
	Title        string
	Description  string
	PropertyType PropertyType
	Location     Location
	NightlyPrice int64
	Currency     string
	Capacity     Capacity
	Amenities    []string
	Images       []Image
	Rating       Rating
	Status       Status
	Featured     bool
	Views        int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id ListingID) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
	ByHost(ctx context.Context, host user.ID, filter HostFilter) (SearchResult, error)
}

type CreateParams struct {
	ID           ListingID
	Host         user.ID
	Title        string
	Description  string
	PropertyType PropertyType
	Location     Location
	NightlyPrice int64
	Currency     string
	Capacity     Capacity
	Amenities    []string
	Images       []Image
	Now          time.Time
}

func New(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("listings: id is required")
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, ErrHostRequired
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if params.Capacity.Guests < 1 {
		return nil, ErrGuestCapacity
	}
	if params.NightlyPrice < 0 {
		return nil, ErrNegativePrice
	}
	if !params.Location.Valid() {
		return nil, ErrAddressIncomplete
	}
	currency := strings.ToUpper(strings.TrimSpace(params.Currency))
	if currency == "" {
		currency = "USD"
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	return &Listing{
		ID:           params.ID,
		Host:         params.Host,
		Title:        strings.TrimSpace(params.Title),
		Description:  strings.TrimSpace(params.Description),
		PropertyType: params.PropertyType,
		Location:     params.Location,
		NightlyPrice: params.NightlyPrice,
		Currency:     currency,
		Capacity:     params.Capacity,
		Amenities:    append([]string(nil), params.Amenities...),
		Images:       append([]Image(nil), params.Images...),
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Bookable reports whether the listing currently accepts new bookings.
func (l *Listing) Bookable() bool {
	return l.Status == StatusActive
}

func (l *Listing) Activate(now time.Time) error {
	if l.Status == StatusSuspended {
		return ErrInvalidState
	}
	l.Status = StatusActive
	l.touch(now)
	return nil
}

func (l *Listing) Deactivate(now time.Time) {
	l.Status = StatusInactive
	l.touch(now)
}

func (l *Listing) Suspend(now time.Time) error {
	if l.Status != StatusActive {
		return ErrInvalidState
	}
	l.Status = StatusSuspended
	l.touch(now)
	return nil
}

type UpdateParams struct {
	Title        string
	Description  string
	PropertyType PropertyType
	Location     Location
	NightlyPrice int64
	Capacity     Capacity
	Amenities    []string
	Now          time.Time
}

func (l *Listing) Update(params UpdateParams) error {
	if strings.TrimSpace(params.Title) == "" {
		return ErrTitleRequired
	}
	if params.Capacity.Guests < 1 {
		return ErrGuestCapacity
	}
	if params.NightlyPrice < 0 {
		return ErrNegativePrice
	}
	if !params.Location.Valid() {
		return ErrAddressIncomplete
	}
	l.Title = strings.TrimSpace(params.Title)
	l.Description = strings.TrimSpace(params.Description)
	l.PropertyType = params.PropertyType
	l.Location = params.Location
	l.NightlyPrice = params.NightlyPrice
	l.Capacity = params.Capacity
	l.Amenities = append([]string(nil), params.Amenities...)
	l.touch(params.Now)
	return nil
}

// ApplyRating replaces the derived rating snapshot after a review write.
func (l *Listing) ApplyRating(rating Rating, now time.Time) {
	l.Rating = rating
	l.touch(now)
}

func (l *Listing) AddImage(img Image, now time.Time) {
	if len(l.Images) == 0 {
		img.IsPrimary = true
	}
	l.Images = append(l.Images, img)
	l.touch(now)
}

func (l *Listing) RecordView() {
	l.Views++
}

func (l *Listing) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	l.UpdatedAt = now.UTC()
}
