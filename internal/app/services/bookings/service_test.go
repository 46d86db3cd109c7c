package bookings

import (
	"context"
	"sync"
	"testing"
	"time"

	"stayfinder/internal/app/policies"
	"stayfinder/internal/domain/booking"
	"stayfinder/internal/domain/listings"
	"stayfinder/internal/domain/shared/fault"
	"stayfinder/internal/domain/user"
	"stayfinder/internal/infra/storage/memory"
)

var testNow = time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	service  *Service
	listings *memory.ListingRepository
	bookings *memory.BookingRepository
	users    *memory.UserRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	listingRepo := memory.NewListingRepository()
	bookingRepo := memory.NewBookingRepository()
	userRepo := memory.NewUserRepository()

	svc := NewService(bookingRepo, listingRepo, userRepo, nil, nil)
	svc.Now = func() time.Time { return testNow }

	return &fixture{service: svc, listings: listingRepo, bookings: bookingRepo, users: userRepo}
}

func (f *fixture) addListing(t *testing.T, id listings.ListingID, guests int, active bool) *listings.Listing {
	t.Helper()
	listing, err := listings.New(listings.CreateParams{
		ID:           id,
		Host:         "host-1",
		Title:        "Sea View Apartment",
		PropertyType: listings.PropertyApartment,
		Location:     listings.Location{Address: "1 Harbour St", City: "Lisbon", Country: "Portugal"},
		NightlyPrice: 100,
		Capacity:     listings.Capacity{Guests: guests},
		Now:          testNow,
	})
	if err != nil {
		t.Fatal(err)
	}
	if active {
		if err := listing.Activate(testNow); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.listings.Save(context.Background(), listing); err != nil {
		t.Fatal(err)
	}
	return listing
}

func createParams(listingID string, checkInDay, checkOutDay, adults int) CreateParams {
	return CreateParams{
		ListingID: listingID,
		CheckIn:   time.Date(2024, time.July, checkInDay, 0, 0, 0, 0, time.UTC),
		CheckOut:  time.Date(2024, time.July, checkOutDay, 0, 0, 0, 0, time.UTC),
		Guests:    booking.GuestCount{Adults: adults},
	}
}

var guestCaller = policies.Principal{UserID: "guest-1", Role: user.RoleGuest}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)
	f.addListing(t, "ls-1", 4, true)

	detail, err := f.service.Create(context.Background(), guestCaller, createParams("ls-1", 15, 20, 2))
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	b := detail.Booking
	if b.Status != booking.StatusPending {
		t.Fatalf("status = %s, want pending", b.Status)
	}
	if b.Pricing.Total != 659 {
		t.Fatalf("total = %d, want 659", b.Pricing.Total)
	}
	if b.HostID != "host-1" {
		t.Fatalf("host = %s, want host-1", b.HostID)
	}
}

func TestCreateValidationOrder(t *testing.T) {
	t.Run("unknown listing", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Create(context.Background(), guestCaller, createParams("nope", 15, 20, 2))
		if fault.KindOf(err) != fault.KindNotFound {
			t.Fatalf("kind = %v, want NotFound", fault.KindOf(err))
		}
	})

	t.Run("inactive listing", func(t *testing.T) {
		f := newFixture(t)
		f.addListing(t, "ls-1", 4, false)
		_, err := f.service.Create(context.Background(), guestCaller, createParams("ls-1", 15, 20, 2))
		if fault.KindOf(err) != fault.KindInvalidState {
			t.Fatalf("kind = %v, want InvalidState", fault.KindOf(err))
		}
	})

	t.Run("capacity reported before availability", func(t *testing.T) {
		f := newFixture(t)
		f.addListing(t, "ls-1", 4, true)
		// Occupy the dates first, then exceed capacity on the same dates:
		// the capacity failure must win.
		if _, err := f.service.Create(context.Background(), guestCaller, createParams("ls-1", 15, 20, 2)); err != nil {
			t.Fatal(err)
		}
		_, err := f.service.Create(context.Background(), guestCaller, createParams("ls-1", 15, 20, 5))
		if fault.KindOf(err) != fault.KindCapacityExceeded {
			t.Fatalf("kind = %v, want CapacityExceeded", fault.KindOf(err))
		}
	})

	t.Run("overlapping dates", func(t *testing.T) {
		f := newFixture(t)
		f.addListing(t, "ls-1", 4, true)
		if _, err := f.service.Create(context.Background(), guestCaller, createParams("ls-1", 15, 20, 2)); err != nil {
			t.Fatal(err)
		}
		_, err := f.service.Create(context.Background(), guestCaller, createParams("ls-1", 18, 22, 2))
		if fault.KindOf(err) != fault.KindDateConflict {
			t.Fatalf("kind = %v, want DateConflict", fault.KindOf(err))
		}
	})

	t.Run("back to back allowed", func(t *testing.T) {
		f := newFixture(t)
		f.addListing(t, "ls-1", 4, true)
		if _, err := f.service.Create(context.Background(), guestCaller, createParams("ls-1", 15, 20, 2)); err != nil {
			t.Fatal(err)
		}
		if _, err := f.service.Create(context.Background(), guestCaller, createParams("ls-1", 20, 25, 2)); err != nil {
			t.Fatalf("back-to-back booking rejected: %v", err)
		}
	})

	t.Run("past check-in", func(t *testing.T) {
		f := newFixture(t)
		f.addListing(t, "ls-1", 4, true)
		params := createParams("ls-1", 15, 20, 2)
		params.CheckIn = params.CheckIn.AddDate(-1, 0, 0)
		params.CheckOut = params.CheckOut.AddDate(-1, 0, 0)
		_, err := f.service.Create(context.Background(), guestCaller, params)
		if fault.KindOf(err) != fault.KindValidation {
			t.Fatalf("kind = %v, want Validation", fault.KindOf(err))
		}
	})

	t.Run("invalid range checked after availability", func(t *testing.T) {
		f := newFixture(t)
		f.addListing(t, "ls-1", 4, true)
		_, err := f.service.Create(context.Background(), guestCaller, createParams("ls-1", 20, 15, 2))
		if fault.KindOf(err) != fault.KindInvalidDateRange {
			t.Fatalf("kind = %v, want InvalidDateRange", fault.KindOf(err))
		}
	})

	t.Run("cancelled booking frees the dates", func(t *testing.T) {
		f := newFixture(t)
		f.addListing(t, "ls-1", 4, true)
		detail, err := f.service.Create(context.Background(), guestCaller, createParams("ls-1", 15, 20, 2))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.service.Cancel(context.Background(), guestCaller, detail.Booking.ID, "plans changed"); err != nil {
			t.Fatal(err)
		}
		if _, err := f.service.Create(context.Background(), guestCaller, createParams("ls-1", 15, 20, 2)); err != nil {
			t.Fatalf("dates not freed after cancellation: %v", err)
		}
	})
}

func TestConcurrentOverlappingCreates(t *testing.T) {
	f := newFixture(t)
	f.addListing(t, "ls-1", 4, true)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.Create(context.Background(), guestCaller, createParams("ls-1", 15, 20, 2))
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		if fault.KindOf(err) != fault.KindDateConflict {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("successes = %d, want exactly 1", successes)
	}
}

func TestConfirmFlow(t *testing.T) {
	f := newFixture(t)
	f.addListing(t, "ls-1", 4, true)
	detail, err := f.service.Create(context.Background(), guestCaller, createParams("ls-1", 15, 20, 2))
	if err != nil {
		t.Fatal(err)
	}
	id := detail.Booking.ID
	hostCaller := policies.Principal{UserID: "host-1", Role: user.RoleHost}

	if _, err := f.service.Confirm(context.Background(), guestCaller, id); fault.KindOf(err) != fault.KindForbidden {
		t.Fatalf("guest confirm: kind = %v, want Forbidden", fault.KindOf(err))
	}

	confirmed, err := f.service.Confirm(context.Background(), hostCaller, id)
	if err != nil {
		t.Fatalf("host confirm failed: %v", err)
	}
	if confirmed.Booking.Status != booking.StatusConfirmed {
		t.Fatalf("status = %s, want confirmed", confirmed.Booking.Status)
	}

	if _, err := f.service.Confirm(context.Background(), hostCaller, id); fault.KindOf(err) != fault.KindInvalidState {
		t.Fatalf("double confirm: kind = %v, want InvalidState", fault.KindOf(err))
	}
}

func TestCancelQuotesRefund(t *testing.T) {
	f := newFixture(t)
	f.addListing(t, "ls-1", 4, true)
	detail, err := f.service.Create(context.Background(), guestCaller, createParams("ls-1", 15, 20, 2))
	if err != nil {
		t.Fatal(err)
	}

	// testNow is 14 days before check-in: 90% of 659.
	result, err := f.service.Cancel(context.Background(), guestCaller, detail.Booking.ID, "plans changed")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if result.RefundAmount != 593.10 {
		t.Fatalf("refund = %v, want 593.10", result.RefundAmount)
	}
	if result.Detail.Booking.Status != booking.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", result.Detail.Booking.Status)
	}
}

func TestCompleteRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	f.addListing(t, "ls-1", 4, true)
	detail, err := f.service.Create(context.Background(), guestCaller, createParams("ls-1", 15, 20, 2))
	if err != nil {
		t.Fatal(err)
	}
	id := detail.Booking.ID
	hostCaller := policies.Principal{UserID: "host-1", Role: user.RoleHost}
	adminCaller := policies.Principal{UserID: "admin-1", Role: user.RoleAdmin}

	if _, err := f.service.Confirm(context.Background(), hostCaller, id); err != nil {
		t.Fatal(err)
	}
	if _, err := f.service.Complete(context.Background(), hostCaller, id); fault.KindOf(err) != fault.KindForbidden {
		t.Fatalf("host complete: kind = %v, want Forbidden", fault.KindOf(err))
	}
	completed, err := f.service.Complete(context.Background(), adminCaller, id)
	if err != nil {
		t.Fatalf("admin complete failed: %v", err)
	}
	if completed.Booking.Status != booking.StatusCompleted {
		t.Fatalf("status = %s, want completed", completed.Booking.Status)
	}
}

func TestGetEnforcesVisibility(t *testing.T) {
	f := newFixture(t)
	f.addListing(t, "ls-1", 4, true)
	detail, err := f.service.Create(context.Background(), guestCaller, createParams("ls-1", 15, 20, 2))
	if err != nil {
		t.Fatal(err)
	}
	stranger := policies.Principal{UserID: "other-1", Role: user.RoleGuest}
	if _, err := f.service.Get(context.Background(), stranger, detail.Booking.ID); fault.KindOf(err) != fault.KindForbidden {
		t.Fatalf("kind = %v, want Forbidden", fault.KindOf(err))
	}
}

func TestListForGuestNewestFirst(t *testing.T) {
	f := newFixture(t)
	f.addListing(t, "ls-1", 4, true)

	days := [][2]int{{10, 12}, {15, 20}, {22, 25}}
	for i, d := range days {
		f.service.Now = func() time.Time { return testNow.Add(time.Duration(i) * time.Hour) }
		if _, err := f.service.Create(context.Background(), guestCaller, createParams("ls-1", d[0], d[1], 2)); err != nil {
			t.Fatal(err)
		}
	}

	result, err := f.service.ListForGuest(context.Background(), guestCaller, booking.ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Total != 3 || len(result.Items) != 3 {
		t.Fatalf("total = %d, items = %d, want 3/3", result.Total, len(result.Items))
	}
	for i := 1; i < len(result.Items); i++ {
		prev := result.Items[i-1].Booking.CreatedAt
		cur := result.Items[i].Booking.CreatedAt
		if cur.After(prev) {
			t.Fatal("bookings not sorted newest first")
		}
	}
}
