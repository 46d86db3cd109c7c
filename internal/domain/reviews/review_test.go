package reviews

import (
	"strings"
	"testing"
	"time"

	"stayfinder/internal/domain/listings"
	"stayfinder/internal/domain/shared/fault"
)

func validSubmitParams() SubmitParams {
	return SubmitParams{
		ID:         "rv-1",
		ListingID:  "ls-1",
		BookingID:  "bk-1",
		ReviewerID: "guest-1",
		HostID:     "host-1",
		Ratings:    Ratings{Overall: 4},
		Comment:    "Great stay, would come back.",
		Now:        time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSubmitValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SubmitParams)
	}{
		{"overall too low", func(p *SubmitParams) { p.Ratings.Overall = 0 }},
		{"overall too high", func(p *SubmitParams) { p.Ratings.Overall = 6 }},
		{"category out of range", func(p *SubmitParams) { p.Ratings.Cleanliness = 7 }},
		{"empty comment", func(p *SubmitParams) { p.Comment = "  " }},
		{"oversized comment", func(p *SubmitParams) { p.Comment = strings.Repeat("a", 1001) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := validSubmitParams()
			tc.mutate(&params)
			if _, err := Submit(params); fault.KindOf(err) != fault.KindValidation {
				t.Fatalf("kind = %v, want Validation", fault.KindOf(err))
			}
		})
	}

	t.Run("unset categories allowed", func(t *testing.T) {
		review, err := Submit(validSubmitParams())
		if err != nil {
			t.Fatalf("Submit() failed: %v", err)
		}
		if !review.Public {
			t.Fatal("new review should be public")
		}
	})
}

func TestRespond(t *testing.T) {
	review, _ := Submit(validSubmitParams())
	now := time.Date(2024, time.August, 2, 0, 0, 0, 0, time.UTC)

	if err := review.Respond("", now); fault.KindOf(err) != fault.KindValidation {
		t.Fatal("empty response accepted")
	}
	if err := review.Respond(strings.Repeat("a", 501), now); fault.KindOf(err) != fault.KindValidation {
		t.Fatal("oversized response accepted")
	}
	if err := review.Respond("Thanks for staying!", now); err != nil {
		t.Fatalf("Respond() failed: %v", err)
	}
	if review.HostResponse == nil || review.HostResponse.Comment != "Thanks for staying!" {
		t.Fatalf("host response = %+v", review.HostResponse)
	}
}

func TestRecompute(t *testing.T) {
	cases := []struct {
		name     string
		overalls []int
		want     listings.Rating
	}{
		{"no reviews", nil, listings.Rating{}},
		{"single review", []int{4}, listings.Rating{Average: 4, Count: 1}},
		{"mean rounds to one decimal", []int{5, 4, 4}, listings.Rating{Average: 4.3, Count: 3}},
		{"half rounds up", []int{4, 5}, listings.Rating{Average: 4.5, Count: 2}},
		{"repeating third", []int{3, 3, 4}, listings.Rating{Average: 3.3, Count: 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Recompute(tc.overalls); got != tc.want {
				t.Fatalf("Recompute(%v) = %+v, want %+v", tc.overalls, got, tc.want)
			}
		})
	}
}
