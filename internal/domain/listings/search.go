package listings

import "strings"

type SortField string

const (
	SortByCreated SortField = "createdAt"
	SortByPrice   SortField = "price"
	SortByRating  SortField = "rating"
)

type SearchParams struct {
	City         string
	Country      string
	PropertyType PropertyType
	MinPrice     int64
	MaxPrice     int64
	MinGuests    int
	Amenities    []string
	FeaturedOnly bool
	Sort         SortField
	Descending   bool
	Page         int
	PageSize     int
}

type HostFilter struct {
	Status   Status
	Page     int
	PageSize int
}

type SearchResult struct {
	Items []*Listing
	Total int
}

// Normalized clamps pagination and lower-cases textual filters so every
// repository implementation applies identical matching rules.
func (p SearchParams) Normalized() SearchParams {
	out := p
	out.City = strings.ToLower(strings.TrimSpace(p.City))
	out.Country = strings.ToLower(strings.TrimSpace(p.Country))
	amenities := make([]string, 0, len(p.Amenities))
	for _, a := range p.Amenities {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			amenities = append(amenities, a)
		}
	}
	out.Amenities = amenities
	if out.Sort == "" {
		out.Sort = SortByCreated
		out.Descending = true
	}
	if out.Page < 1 {
		out.Page = 1
	}
	if out.PageSize < 1 {
		out.PageSize = 12
	}
	if out.PageSize > 100 {
		out.PageSize = 100
	}
	return out
}

func (f HostFilter) Normalized() HostFilter {
	out := f
	if out.Page < 1 {
		out.Page = 1
	}
	if out.PageSize < 1 {
		out.PageSize = 10
	}
	if out.PageSize > 100 {
		out.PageSize = 100
	}
	return out
}
