package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainlistings "stayfinder/internal/domain/listings"
	domainuser "stayfinder/internal/domain/user"
)

// ListingRepository stores listings in memory. Used for local development
// and tests; the mongo repository is the production implementation.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlistings.ListingID]*domainlistings.Listing),
	}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrNotFound
	}
	return cloneListing(listing), nil
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[listing.ID] = cloneListing(listing)
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainlistings.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// Search filters active listings. Matching rules mirror the mongo query so
// the two implementations are interchangeable.
func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainlistings.Listing, 0, len(r.items))
	for _, listing := range r.items {
		select {
		case <-ctx.Done():
			return domainlistings.SearchResult{}, ctx.Err()
		default:
		}

		if listing.Status != domainlistings.StatusActive {
			continue
		}
		if opts.FeaturedOnly && !listing.Featured {
			continue
		}
		if opts.City != "" && !strings.EqualFold(listing.Location.City, opts.City) {
			continue
		}
		if opts.Country != "" && !strings.EqualFold(listing.Location.Country, opts.Country) {
			continue
		}
		if opts.PropertyType != "" && listing.PropertyType != opts.PropertyType {
			continue
		}
		if opts.MinPrice > 0 && listing.NightlyPrice < opts.MinPrice {
			continue
		}
		if opts.MaxPrice > 0 && listing.NightlyPrice > opts.MaxPrice {
			continue
		}
		if opts.MinGuests > 0 && listing.Capacity.Guests < opts.MinGuests {
			continue
		}
		if !amenitiesMatch(listing.Amenities, opts.Amenities) {
			continue
		}
		matches = append(matches, listing)
	}

	sortListings(matches, opts.Sort, opts.Descending)

	total := len(matches)
	start, end := pageBounds(total, opts.Page, opts.PageSize)
	items := make([]*domainlistings.Listing, 0, end-start)
	for _, listing := range matches[start:end] {
		items = append(items, cloneListing(listing))
	}
	return domainlistings.SearchResult{Items: items, Total: total}, nil
}

func (r *ListingRepository) ByHost(ctx context.Context, host domainuser.ID, filter domainlistings.HostFilter) (domainlistings.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := filter.Normalized()
	matches := make([]*domainlistings.Listing, 0)
	for _, listing := range r.items {
		if listing.Host != host {
			continue
		}
		if opts.Status != "" && listing.Status != opts.Status {
			continue
		}
		matches = append(matches, listing)
	}
	sortListings(matches, domainlistings.SortByCreated, true)

	total := len(matches)
	start, end := pageBounds(total, opts.Page, opts.PageSize)
	items := make([]*domainlistings.Listing, 0, end-start)
	for _, listing := range matches[start:end] {
		items = append(items, cloneListing(listing))
	}
	return domainlistings.SearchResult{Items: items, Total: total}, nil
}

func sortListings(items []*domainlistings.Listing, field domainlistings.SortField, desc bool) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if desc {
			a, b = b, a
		}
		switch field {
		case domainlistings.SortByPrice:
			return a.NightlyPrice < b.NightlyPrice
		case domainlistings.SortByRating:
			if a.Rating.Average != b.Rating.Average {
				return a.Rating.Average < b.Rating.Average
			}
			return a.Rating.Count < b.Rating.Count
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})
}

func amenitiesMatch(values, required []string) bool {
	if len(required) == 0 {
		return true
	}
	index := make(map[string]struct{}, len(values))
	for _, value := range values {
		index[strings.ToLower(strings.TrimSpace(value))] = struct{}{}
	}
	for _, token := range required {
		if _, ok := index[token]; !ok {
			return false
		}
	}
	return true
}

func pageBounds(total, page, pageSize int) (int, int) {
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return start, end
}

func cloneListing(l *domainlistings.Listing) *domainlistings.Listing {
	if l == nil {
		return nil
	}
	out := *l
	out.Amenities = append([]string(nil), l.Amenities...)
	out.Images = append([]domainlistings.Image(nil), l.Images...)
	return &out
}

var _ domainlistings.Repository = (*ListingRepository)(nil)
