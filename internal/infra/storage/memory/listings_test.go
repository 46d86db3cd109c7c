package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	domainlistings "stayfinder/internal/domain/listings"
)

func seedListing(t *testing.T, repo *ListingRepository, mutate func(*domainlistings.Listing)) *domainlistings.Listing {
	t.Helper()
	listing, err := domainlistings.New(domainlistings.CreateParams{
		ID:           domainlistings.ListingID(fmt.Sprintf("ls-%d", len(repo.items)+1)),
		Host:         "host-1",
		Title:        "Listing",
		PropertyType: domainlistings.PropertyApartment,
		Location:     domainlistings.Location{Address: "1 Main St", City: "Lisbon", Country: "Portugal"},
		NightlyPrice: 100,
		Capacity:     domainlistings.Capacity{Guests: 2},
		Now:          time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := listing.Activate(listing.CreatedAt); err != nil {
		t.Fatal(err)
	}
	if mutate != nil {
		mutate(listing)
	}
	if err := repo.Save(context.Background(), listing); err != nil {
		t.Fatal(err)
	}
	return listing
}

func TestSearchFilters(t *testing.T) {
	repo := NewListingRepository()
	seedListing(t, repo, nil)
	seedListing(t, repo, func(l *domainlistings.Listing) {
		l.Location.City = "Porto"
		l.NightlyPrice = 250
		l.Capacity.Guests = 6
		l.Amenities = []string{"WiFi", "Pool"}
		l.Featured = true
	})
	seedListing(t, repo, func(l *domainlistings.Listing) {
		l.Status = domainlistings.StatusInactive
	})

	cases := []struct {
		name   string
		params domainlistings.SearchParams
		want   int
	}{
		{"no filters hides inactive", domainlistings.SearchParams{}, 2},
		{"city case insensitive", domainlistings.SearchParams{City: "PORTO"}, 1},
		{"unknown city", domainlistings.SearchParams{City: "Madrid"}, 0},
		{"min price", domainlistings.SearchParams{MinPrice: 200}, 1},
		{"max price", domainlistings.SearchParams{MaxPrice: 150}, 1},
		{"min guests", domainlistings.SearchParams{MinGuests: 4}, 1},
		{"amenities all required", domainlistings.SearchParams{Amenities: []string{"wifi", "pool"}}, 1},
		{"missing amenity", domainlistings.SearchParams{Amenities: []string{"wifi", "sauna"}}, 0},
		{"featured only", domainlistings.SearchParams{FeaturedOnly: true}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := repo.Search(context.Background(), tc.params)
			if err != nil {
				t.Fatal(err)
			}
			if result.Total != tc.want {
				t.Fatalf("total = %d, want %d", result.Total, tc.want)
			}
		})
	}
}

func TestSearchSortAndPaging(t *testing.T) {
	repo := NewListingRepository()
	prices := []int64{300, 100, 200}
	for i, price := range prices {
		p := price
		offset := time.Duration(i) * time.Hour
		seedListing(t, repo, func(l *domainlistings.Listing) {
			l.NightlyPrice = p
			l.CreatedAt = l.CreatedAt.Add(offset)
		})
	}

	t.Run("price ascending", func(t *testing.T) {
		result, err := repo.Search(context.Background(), domainlistings.SearchParams{Sort: domainlistings.SortByPrice})
		if err != nil {
			t.Fatal(err)
		}
		got := make([]int64, 0, len(result.Items))
		for _, l := range result.Items {
			got = append(got, l.NightlyPrice)
		}
		want := []int64{100, 200, 300}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("order = %v, want %v", got, want)
			}
		}
	})

	t.Run("price descending with ties", func(t *testing.T) {
		tied := NewListingRepository()
		for _, price := range []int64{100, 300, 100} {
			p := price
			seedListing(t, tied, func(l *domainlistings.Listing) { l.NightlyPrice = p })
		}
		result, err := tied.Search(context.Background(), domainlistings.SearchParams{Sort: domainlistings.SortByPrice, Descending: true})
		if err != nil {
			t.Fatal(err)
		}
		if len(result.Items) != 3 || result.Items[0].NightlyPrice != 300 {
			t.Fatalf("items = %d, first price = %d", len(result.Items), result.Items[0].NightlyPrice)
		}
		seen := map[domainlistings.ListingID]bool{}
		for _, l := range result.Items {
			if seen[l.ID] {
				t.Fatalf("listing %s duplicated in sorted output", l.ID)
			}
			seen[l.ID] = true
		}
	})

	t.Run("default newest first", func(t *testing.T) {
		result, err := repo.Search(context.Background(), domainlistings.SearchParams{})
		if err != nil {
			t.Fatal(err)
		}
		for i := 1; i < len(result.Items); i++ {
			if result.Items[i].CreatedAt.After(result.Items[i-1].CreatedAt) {
				t.Fatal("listings not sorted newest first")
			}
		}
	})

	t.Run("page past the end", func(t *testing.T) {
		result, err := repo.Search(context.Background(), domainlistings.SearchParams{Page: 5, PageSize: 2})
		if err != nil {
			t.Fatal(err)
		}
		if result.Total != 3 || len(result.Items) != 0 {
			t.Fatalf("total = %d, items = %d, want 3/0", result.Total, len(result.Items))
		}
	})

	t.Run("second page", func(t *testing.T) {
		result, err := repo.Search(context.Background(), domainlistings.SearchParams{Page: 2, PageSize: 2})
		if err != nil {
			t.Fatal(err)
		}
		if len(result.Items) != 1 {
			t.Fatalf("items = %d, want 1", len(result.Items))
		}
	})
}

func TestByHost(t *testing.T) {
	repo := NewListingRepository()
	seedListing(t, repo, nil)
	seedListing(t, repo, func(l *domainlistings.Listing) {
		l.Host = "host-2"
	})
	seedListing(t, repo, func(l *domainlistings.Listing) {
		l.Status = domainlistings.StatusInactive
	})

	result, err := repo.ByHost(context.Background(), "host-1", domainlistings.HostFilter{})
	if err != nil {
		t.Fatal(err)
	}
	// Unlike Search, the host dashboard shows inactive listings too.
	if result.Total != 2 {
		t.Fatalf("total = %d, want 2", result.Total)
	}

	filtered, err := repo.ByHost(context.Background(), "host-1", domainlistings.HostFilter{Status: domainlistings.StatusInactive})
	if err != nil {
		t.Fatal(err)
	}
	if filtered.Total != 1 {
		t.Fatalf("filtered total = %d, want 1", filtered.Total)
	}
}

func TestSaveClonesInput(t *testing.T) {
	repo := NewListingRepository()
	listing := seedListing(t, repo, func(l *domainlistings.Listing) {
		l.Amenities = []string{"wifi"}
	})

	listing.Amenities[0] = "mutated"
	stored, err := repo.ByID(context.Background(), listing.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Amenities[0] != "wifi" {
		t.Fatal("repository shares state with caller")
	}
}
