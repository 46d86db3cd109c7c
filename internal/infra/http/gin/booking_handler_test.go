package ginserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"

	bookingsvc "stayfinder/internal/app/services/bookings"
	domainlistings "stayfinder/internal/domain/listings"
	domainuser "stayfinder/internal/domain/user"
	"stayfinder/internal/infra/storage/memory"
)

func newBookingHandler(t *testing.T) BookingHandler {
	t.Helper()
	listingRepo := memory.NewListingRepository()
	listing, err := domainlistings.New(domainlistings.CreateParams{
		ID:           "ls-1",
		Host:         "host-1",
		Title:        "Riverside Loft",
		PropertyType: domainlistings.PropertyApartment,
		Location:     domainlistings.Location{Address: "9 Pier Ln", City: "Faro", Country: "Portugal"},
		NightlyPrice: 100,
		Capacity:     domainlistings.Capacity{Guests: 4},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := listing.Activate(time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := listingRepo.Save(t.Context(), listing); err != nil {
		t.Fatal(err)
	}
	svc := bookingsvc.NewService(memory.NewBookingRepository(), listingRepo, memory.NewUserRepository(), nil, nil)
	return BookingHandler{Service: svc}
}

func postBooking(t *testing.T, h BookingHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	registerValidators()
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	setPrincipal(c, principal{ID: "guest-1", Role: domainuser.RoleGuest})
	h.Create(c)
	return recorder
}

func TestCreateBookingBody(t *testing.T) {
	h := newBookingHandler(t)
	checkIn := time.Now().AddDate(0, 1, 0).UTC().Truncate(24 * time.Hour)
	checkOut := checkIn.AddDate(0, 0, 5)
	body := fmt.Sprintf(
		`{"listingId":"ls-1","dates":{"checkIn":%q,"checkOut":%q},"guests":{"adults":2,"children":1},"specialRequests":"late arrival"}`,
		checkIn.Format(time.RFC3339), checkOut.Format(time.RFC3339),
	)

	recorder := postBooking(t, h, body)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("code = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Dates struct {
				CheckIn  time.Time `json:"checkIn"`
				CheckOut time.Time `json:"checkOut"`
			} `json:"dates"`
			Guests struct {
				Adults   int `json:"adults"`
				Children int `json:"children"`
			} `json:"guests"`
			Pricing struct {
				BasePrice int64 `json:"basePrice"`
				Total     int64 `json:"total"`
			} `json:"pricing"`
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "success" {
		t.Fatalf("status = %q", resp.Status)
	}
	if !resp.Data.Dates.CheckIn.Equal(checkIn) || !resp.Data.Dates.CheckOut.Equal(checkOut) {
		t.Fatalf("dates = %+v", resp.Data.Dates)
	}
	if resp.Data.Guests.Adults != 2 || resp.Data.Guests.Children != 1 {
		t.Fatalf("guests = %+v", resp.Data.Guests)
	}
	if resp.Data.Pricing.BasePrice != 500 || resp.Data.Pricing.Total != 659 {
		t.Fatalf("pricing = %+v", resp.Data.Pricing)
	}
	if resp.Data.Status != "pending" {
		t.Fatalf("booking status = %q", resp.Data.Status)
	}
}

func TestCreateBookingRejectsPastCheckIn(t *testing.T) {
	h := newBookingHandler(t)
	past := time.Now().AddDate(-1, 0, 0).UTC()
	body := fmt.Sprintf(
		`{"listingId":"ls-1","dates":{"checkIn":%q,"checkOut":%q},"guests":{"adults":2}}`,
		past.Format(time.RFC3339), past.AddDate(0, 0, 5).Format(time.RFC3339),
	)

	recorder := postBooking(t, h, body)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400; body = %s", recorder.Code, recorder.Body.String())
	}
}
