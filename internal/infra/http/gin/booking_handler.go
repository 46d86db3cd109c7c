package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"stayfinder/internal/app/dto"
	bookingsvc "stayfinder/internal/app/services/bookings"
	domainbooking "stayfinder/internal/domain/booking"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	ListMine(c *gin.Context)
	ListHost(c *gin.Context)
	Get(c *gin.Context)
	Confirm(c *gin.Context)
	Cancel(c *gin.Context)
	Complete(c *gin.Context)
}

type BookingHandler struct {
	Service *bookingsvc.Service
	Logger  *slog.Logger
}

type bookingDatesRequest struct {
	CheckIn  time.Time `json:"checkIn" binding:"required,futuredate"`
	CheckOut time.Time `json:"checkOut" binding:"required"`
}

type bookingGuestsRequest struct {
	Adults   int `json:"adults" binding:"required,min=1"`
	Children int `json:"children" binding:"min=0"`
	Infants  int `json:"infants" binding:"min=0"`
}

type createBookingRequest struct {
	ListingID       string               `json:"listingId" binding:"required"`
	Dates           bookingDatesRequest  `json:"dates" binding:"required"`
	Guests          bookingGuestsRequest `json:"guests" binding:"required"`
	SpecialRequests string               `json:"specialRequests" binding:"max=500"`
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "invalid request")
		return
	}
	detail, err := h.Service.Create(c.Request.Context(), p.policy(), bookingsvc.CreateParams{
		ListingID: req.ListingID,
		CheckIn:   req.Dates.CheckIn,
		CheckOut:  req.Dates.CheckOut,
		Guests: domainbooking.GuestCount{
			Adults:   req.Guests.Adults,
			Children: req.Guests.Children,
			Infants:  req.Guests.Infants,
		},
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusCreated, dto.MapBookingView(detail))
}

func (h BookingHandler) ListMine(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	result, err := h.Service.ListForGuest(c.Request.Context(), p.policy(), listFilter(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, dto.MapBookingCollection(result))
}

func (h BookingHandler) ListHost(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	result, err := h.Service.ListForHost(c.Request.Context(), p.policy(), listFilter(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, dto.MapBookingCollection(result))
}

func (h BookingHandler) Get(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	detail, err := h.Service.Get(c.Request.Context(), p.policy(), domainbooking.BookingID(c.Param("id")))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, dto.MapBookingView(detail))
}

func (h BookingHandler) Confirm(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	detail, err := h.Service.Confirm(c.Request.Context(), p.policy(), domainbooking.BookingID(c.Param("id")))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, dto.MapBookingView(detail))
}

func (h BookingHandler) Cancel(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	// The body is optional; cancelling without a reason is allowed.
	var req cancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErrorMessage(c, http.StatusBadRequest, "invalid request")
			return
		}
	}
	result, err := h.Service.Cancel(c.Request.Context(), p.policy(), domainbooking.BookingID(c.Param("id")), req.Reason)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, dto.CancelBookingResponse{
		Booking:      dto.MapBookingView(result.Detail),
		RefundAmount: result.RefundAmount,
	})
}

func (h BookingHandler) Complete(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	detail, err := h.Service.Complete(c.Request.Context(), p.policy(), domainbooking.BookingID(c.Param("id")))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, dto.MapBookingView(detail))
}

func listFilter(c *gin.Context) domainbooking.ListFilter {
	return domainbooking.ListFilter{
		Status:   domainbooking.Status(c.Query("status")),
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "pageSize"),
	}.Normalized()
}

var _ BookingHTTP = (*BookingHandler)(nil)
