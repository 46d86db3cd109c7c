package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayfinder/internal/app/dto"
	reviewsvc "stayfinder/internal/app/services/reviews"
	domainbooking "stayfinder/internal/domain/booking"
	domainlistings "stayfinder/internal/domain/listings"
	domainreviews "stayfinder/internal/domain/reviews"
)

type ReviewHTTP interface {
	Submit(c *gin.Context)
	ListForListing(c *gin.Context)
	Respond(c *gin.Context)
}

type ReviewHandler struct {
	Service *reviewsvc.Service
	Logger  *slog.Logger
}

type submitReviewRequest struct {
	BookingID     string `json:"bookingId" binding:"required"`
	Overall       int    `json:"overall" binding:"required,min=1,max=5"`
	Cleanliness   int    `json:"cleanliness" binding:"omitempty,min=1,max=5"`
	Communication int    `json:"communication" binding:"omitempty,min=1,max=5"`
	CheckIn       int    `json:"checkIn" binding:"omitempty,min=1,max=5"`
	Accuracy      int    `json:"accuracy" binding:"omitempty,min=1,max=5"`
	Location      int    `json:"location" binding:"omitempty,min=1,max=5"`
	Value         int    `json:"value" binding:"omitempty,min=1,max=5"`
	Comment       string `json:"comment" binding:"required,max=1000"`
}

type respondReviewRequest struct {
	Comment string `json:"comment" binding:"required,max=500"`
}

func (h ReviewHandler) Submit(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "invalid request")
		return
	}
	review, err := h.Service.Submit(c.Request.Context(), p.policy(), reviewsvc.SubmitParams{
		BookingID: domainbooking.BookingID(req.BookingID),
		Ratings: domainreviews.Ratings{
			Overall:       req.Overall,
			Cleanliness:   req.Cleanliness,
			Communication: req.Communication,
			CheckIn:       req.CheckIn,
			Accuracy:      req.Accuracy,
			Location:      req.Location,
			Value:         req.Value,
		},
		Comment: req.Comment,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusCreated, dto.MapReviewView(review))
}

func (h ReviewHandler) ListForListing(c *gin.Context) {
	page, err := h.Service.ListForListing(
		c.Request.Context(),
		domainlistings.ListingID(c.Param("listingId")),
		queryInt(c, "page"),
		queryInt(c, "pageSize"),
	)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, dto.MapReviewCollection(page))
}

func (h ReviewHandler) Respond(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req respondReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "invalid request")
		return
	}
	review, err := h.Service.Respond(c.Request.Context(), p.policy(), domainreviews.ReviewID(c.Param("id")), req.Comment)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, dto.MapReviewView(review))
}

var _ ReviewHTTP = (*ReviewHandler)(nil)
