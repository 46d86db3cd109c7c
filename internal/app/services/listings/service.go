package listings

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"stayfinder/internal/app/policies"
	"stayfinder/internal/domain/booking"
	domainlistings "stayfinder/internal/domain/listings"
	"stayfinder/internal/domain/shared/daterange"
	"stayfinder/internal/domain/shared/fault"
)

// Uploader stores listing photos and returns a public URL. Implemented by
// the S3 client; a noop implementation rejects uploads when object storage
// is not configured.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}

type Service struct {
	Listings domainlistings.Repository
	Bookings booking.Repository
	Photos   Uploader
	Logger   *slog.Logger
	Now      func() time.Time
}

type CreateParams struct {
	Title        string
	Description  string
	PropertyType domainlistings.PropertyType
	Location     domainlistings.Location
	NightlyPrice int64
	Currency     string
	Capacity     domainlistings.Capacity
	Amenities    []string
	Images       []domainlistings.Image
}

func (s *Service) Create(ctx context.Context, caller policies.Principal, params CreateParams) (*domainlistings.Listing, error) {
	if err := policies.CanCreateListing(caller); err != nil {
		return nil, err
	}
	now := s.now()
	listing, err := domainlistings.New(domainlistings.CreateParams{
		ID:           domainlistings.ListingID(uuid.NewString()),
		Host:         caller.UserID,
		Title:        params.Title,
		Description:  params.Description,
		PropertyType: params.PropertyType,
		Location:     params.Location,
		NightlyPrice: params.NightlyPrice,
		Currency:     params.Currency,
		Capacity:     params.Capacity,
		Amenities:    params.Amenities,
		Images:       params.Images,
		Now:          now,
	})
	if err != nil {
		return nil, err
	}
	// New listings go live immediately; suspension is a moderation action.
	if err := listing.Activate(now); err != nil {
		return nil, err
	}
	if err := s.Listings.Save(ctx, listing); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("listing created", "listing_id", listing.ID, "host_id", listing.Host)
	}
	return listing, nil
}

// Detail is a listing plus the date ranges already taken by active bookings.
type Detail struct {
	Listing          *domainlistings.Listing
	UnavailableDates []daterange.DateRange
}

// Get loads a listing for display, counts the view and collects unavailable
// ranges from pending/confirmed bookings that have not ended yet.
func (s *Service) Get(ctx context.Context, id domainlistings.ListingID) (*Detail, error) {
	listing, err := s.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	listing.RecordView()
	if err := s.Listings.Save(ctx, listing); err != nil {
		return nil, err
	}
	unavailable, err := s.Bookings.ActiveRanges(ctx, listing.ID, s.now())
	if err != nil {
		return nil, err
	}
	return &Detail{Listing: listing, UnavailableDates: unavailable}, nil
}

func (s *Service) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	return s.Listings.Search(ctx, params)
}

// Featured returns the highest-rated featured listings.
func (s *Service) Featured(ctx context.Context, limit int) ([]*domainlistings.Listing, error) {
	if limit < 1 {
		limit = 8
	}
	result, err := s.Listings.Search(ctx, domainlistings.SearchParams{
		FeaturedOnly: true,
		Sort:         domainlistings.SortByRating,
		Descending:   true,
		Page:         1,
		PageSize:     limit,
	})
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (s *Service) MyListings(ctx context.Context, caller policies.Principal, filter domainlistings.HostFilter) (domainlistings.SearchResult, error) {
	if err := policies.CanCreateListing(caller); err != nil {
		return domainlistings.SearchResult{}, err
	}
	return s.Listings.ByHost(ctx, caller.UserID, filter)
}

type UpdateParams struct {
	Title        string
	Description  string
	PropertyType domainlistings.PropertyType
	Location     domainlistings.Location
	NightlyPrice int64
	Capacity     domainlistings.Capacity
	Amenities    []string
	Status       domainlistings.Status
}

func (s *Service) Update(ctx context.Context, caller policies.Principal, id domainlistings.ListingID, params UpdateParams) (*domainlistings.Listing, error) {
	listing, err := s.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policies.CanManageListing(caller, listing); err != nil {
		return nil, err
	}
	now := s.now()
	if err := listing.Update(domainlistings.UpdateParams{
		Title:        params.Title,
		Description:  params.Description,
		PropertyType: params.PropertyType,
		Location:     params.Location,
		NightlyPrice: params.NightlyPrice,
		Capacity:     params.Capacity,
		Amenities:    params.Amenities,
		Now:          now,
	}); err != nil {
		return nil, err
	}
	if err := s.applyStatus(listing, params.Status, now); err != nil {
		return nil, err
	}
	if err := s.Listings.Save(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Delete removes a listing unless active bookings still reference it.
func (s *Service) Delete(ctx context.Context, caller policies.Principal, id domainlistings.ListingID) error {
	listing, err := s.byID(ctx, id)
	if err != nil {
		return err
	}
	if err := policies.CanManageListing(caller, listing); err != nil {
		return err
	}
	active, err := s.Bookings.ActiveRanges(ctx, listing.ID, s.now())
	if err != nil {
		return err
	}
	if len(active) > 0 {
		return fault.InvalidState("cannot delete listing with active bookings")
	}
	if err := s.Listings.Delete(ctx, listing.ID); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("listing deleted", "listing_id", listing.ID, "by", caller.UserID)
	}
	return nil
}

// AddPhoto uploads an image to object storage and attaches it.
func (s *Service) AddPhoto(ctx context.Context, caller policies.Principal, id domainlistings.ListingID, filename string, reader io.Reader, contentType string) (*domainlistings.Listing, error) {
	listing, err := s.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policies.CanManageListing(caller, listing); err != nil {
		return nil, err
	}
	if s.Photos == nil {
		return nil, errors.New("listings: photo storage is not configured")
	}
	key := "listings/" + string(listing.ID) + "/" + uuid.NewString() + path.Ext(filename)
	url, err := s.Photos.Upload(ctx, key, reader, contentType)
	if err != nil {
		return nil, err
	}
	listing.AddImage(domainlistings.Image{URL: url}, s.now())
	if err := s.Listings.Save(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *Service) applyStatus(listing *domainlistings.Listing, status domainlistings.Status, now time.Time) error {
	switch status {
	case "", listing.Status:
		return nil
	case domainlistings.StatusActive:
		return listing.Activate(now)
	case domainlistings.StatusInactive:
		listing.Deactivate(now)
		return nil
	case domainlistings.StatusSuspended:
		return listing.Suspend(now)
	default:
		return fault.New(fault.KindValidation, "unknown listing status")
	}
}

func (s *Service) byID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	listing, err := s.Listings.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainlistings.ErrNotFound) {
			return nil, fault.NotFound("listing")
		}
		return nil, err
	}
	return listing, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
