package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"stayfinder/internal/app/dto"
	listingsvc "stayfinder/internal/app/services/listings"
	domainlistings "stayfinder/internal/domain/listings"
)

type ListingHTTP interface {
	Search(c *gin.Context)
	Featured(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	MyListings(c *gin.Context)
	UploadImage(c *gin.Context)
}

type ListingHandler struct {
	Service *listingsvc.Service
	Logger  *slog.Logger
}

type locationRequest struct {
	Address string  `json:"address" binding:"required"`
	City    string  `json:"city" binding:"required"`
	State   string  `json:"state"`
	Country string  `json:"country" binding:"required"`
	ZipCode string  `json:"zipCode"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type capacityRequest struct {
	Guests    int `json:"guests" binding:"required,min=1"`
	Bedrooms  int `json:"bedrooms" binding:"min=0"`
	Bathrooms int `json:"bathrooms" binding:"min=0"`
	Beds      int `json:"beds" binding:"min=0"`
}

type createListingRequest struct {
	Title        string          `json:"title" binding:"required"`
	Description  string          `json:"description"`
	PropertyType string          `json:"propertyType" binding:"required,propertytype"`
	Location     locationRequest `json:"location" binding:"required"`
	NightlyPrice int64           `json:"nightlyPrice" binding:"required,min=0"`
	Currency     string          `json:"currency"`
	Amenities    []string        `json:"amenities"`
	Capacity     capacityRequest `json:"capacity" binding:"required"`
}

type updateListingRequest struct {
	Title        string          `json:"title" binding:"required"`
	Description  string          `json:"description"`
	PropertyType string          `json:"propertyType" binding:"required,propertytype"`
	Location     locationRequest `json:"location" binding:"required"`
	NightlyPrice int64           `json:"nightlyPrice" binding:"required,min=0"`
	Amenities    []string        `json:"amenities"`
	Capacity     capacityRequest `json:"capacity" binding:"required"`
	Status       string          `json:"status" binding:"omitempty,listingstatus"`
}

func (h ListingHandler) Search(c *gin.Context) {
	params := domainlistings.SearchParams{
		City:         c.Query("city"),
		Country:      c.Query("country"),
		PropertyType: domainlistings.PropertyType(c.Query("propertyType")),
		MinPrice:     queryInt64(c, "minPrice"),
		MaxPrice:     queryInt64(c, "maxPrice"),
		MinGuests:    queryInt(c, "guests"),
		Sort:         domainlistings.SortField(c.Query("sort")),
		Descending:   c.Query("order") != "asc",
		Page:         queryInt(c, "page"),
		PageSize:     queryInt(c, "pageSize"),
	}
	if raw := c.Query("amenities"); raw != "" {
		params.Amenities = strings.Split(raw, ",")
	}
	params = params.Normalized()
	result, err := h.Service.Search(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, dto.MapListingCollection(result, params.Page, params.PageSize))
}

func (h ListingHandler) Featured(c *gin.Context) {
	items, err := h.Service.Featured(c.Request.Context(), queryInt(c, "limit"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	summaries := make([]dto.ListingSummary, 0, len(items))
	for _, listing := range items {
		summaries = append(summaries, dto.MapListingSummary(listing))
	}
	respondData(c, http.StatusOK, summaries)
}

func (h ListingHandler) Get(c *gin.Context) {
	detail, err := h.Service.Get(c.Request.Context(), domainlistings.ListingID(c.Param("id")))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, dto.MapListingDetail(detail.Listing, detail.UnavailableDates))
}

func (h ListingHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "invalid request")
		return
	}
	listing, err := h.Service.Create(c.Request.Context(), p.policy(), listingsvc.CreateParams{
		Title:        req.Title,
		Description:  req.Description,
		PropertyType: domainlistings.PropertyType(req.PropertyType),
		Location:     mapLocation(req.Location),
		NightlyPrice: req.NightlyPrice,
		Currency:     req.Currency,
		Capacity:     mapCapacity(req.Capacity),
		Amenities:    req.Amenities,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusCreated, dto.MapListingSummary(listing))
}

func (h ListingHandler) Update(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req updateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "invalid request")
		return
	}
	listing, err := h.Service.Update(c.Request.Context(), p.policy(), domainlistings.ListingID(c.Param("id")), listingsvc.UpdateParams{
		Title:        req.Title,
		Description:  req.Description,
		PropertyType: domainlistings.PropertyType(req.PropertyType),
		Location:     mapLocation(req.Location),
		NightlyPrice: req.NightlyPrice,
		Capacity:     mapCapacity(req.Capacity),
		Amenities:    req.Amenities,
		Status:       domainlistings.Status(req.Status),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, dto.MapListingSummary(listing))
}

func (h ListingHandler) Delete(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), p.policy(), domainlistings.ListingID(c.Param("id"))); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "listing deleted")
}

func (h ListingHandler) MyListings(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	filter := domainlistings.HostFilter{
		Status:   domainlistings.Status(c.Query("status")),
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "pageSize"),
	}.Normalized()
	result, err := h.Service.MyListings(c.Request.Context(), p.policy(), filter)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, dto.MapListingCollection(result, filter.Page, filter.PageSize))
}

func (h ListingHandler) UploadImage(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "image file is required")
		return
	}
	src, err := file.Open()
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	defer src.Close()
	contentType := file.Header.Get("Content-Type")
	listing, err := h.Service.AddPhoto(c.Request.Context(), p.policy(), domainlistings.ListingID(c.Param("id")), file.Filename, src, contentType)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusCreated, dto.MapListingSummary(listing))
}

func mapLocation(req locationRequest) domainlistings.Location {
	return domainlistings.Location{
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Country: req.Country,
		ZipCode: req.ZipCode,
		Lat:     req.Lat,
		Lon:     req.Lon,
	}
}

func mapCapacity(req capacityRequest) domainlistings.Capacity {
	return domainlistings.Capacity{
		Guests:    req.Guests,
		Bedrooms:  req.Bedrooms,
		Bathrooms: req.Bathrooms,
		Beds:      req.Beds,
	}
}

func queryInt(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}

func queryInt64(c *gin.Context, key string) int64 {
	v, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

var _ ListingHTTP = (*ListingHandler)(nil)
