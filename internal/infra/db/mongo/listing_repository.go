package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "stayfinder/internal/domain/listings"
	domainuser "stayfinder/internal/domain/user"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection(listingsCollection)}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	doc := newListingDocument(listing)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainlistings.ErrNotFound
	}
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	opts := params.Normalized()
	filter := bson.M{"status": string(domainlistings.StatusActive)}
	if opts.FeaturedOnly {
		filter["featured"] = true
	}
	if opts.City != "" {
		filter["location.city"] = caseInsensitive(opts.City)
	}
	if opts.Country != "" {
		filter["location.country"] = caseInsensitive(opts.Country)
	}
	if opts.PropertyType != "" {
		filter["property_type"] = string(opts.PropertyType)
	}
	if price := priceFilter(opts.MinPrice, opts.MaxPrice); price != nil {
		filter["nightly_price"] = price
	}
	if opts.MinGuests > 0 {
		filter["capacity.guests"] = bson.M{"$gte": opts.MinGuests}
	}
	if len(opts.Amenities) > 0 {
		filter["amenities"] = bson.M{"$all": opts.Amenities}
	}
	return r.find(ctx, filter, sortSpec(opts.Sort, opts.Descending), opts.Page, opts.PageSize)
}

func (r *ListingRepository) ByHost(ctx context.Context, host domainuser.ID, filter domainlistings.HostFilter) (domainlistings.SearchResult, error) {
	opts := filter.Normalized()
	query := bson.M{"host_id": string(host)}
	if opts.Status != "" {
		query["status"] = string(opts.Status)
	}
	return r.find(ctx, query, bson.D{{Key: "created_at", Value: -1}}, opts.Page, opts.PageSize)
}

func (r *ListingRepository) find(ctx context.Context, filter bson.M, sort bson.D, page, pageSize int) (domainlistings.SearchResult, error) {
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}
	findOpts := options.Find().
		SetSort(sort).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))
	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}
	defer cursor.Close(ctx)

	items := make([]*domainlistings.Listing, 0, pageSize)
	for cursor.Next(ctx) {
		var doc listingDocument
		if err := cursor.Decode(&doc); err != nil {
			return domainlistings.SearchResult{}, err
		}
		items = append(items, doc.toAggregate())
	}
	if err := cursor.Err(); err != nil {
		return domainlistings.SearchResult{}, err
	}
	return domainlistings.SearchResult{Items: items, Total: int(total)}, nil
}

func sortSpec(field domainlistings.SortField, desc bool) bson.D {
	dir := 1
	if desc {
		dir = -1
	}
	switch field {
	case domainlistings.SortByPrice:
		return bson.D{{Key: "nightly_price", Value: dir}}
	case domainlistings.SortByRating:
		return bson.D{{Key: "rating.average", Value: dir}, {Key: "rating.count", Value: dir}}
	default:
		return bson.D{{Key: "created_at", Value: dir}}
	}
}

func priceFilter(min, max int64) bson.M {
	spec := bson.M{}
	if min > 0 {
		spec["$gte"] = min
	}
	if max > 0 {
		spec["$lte"] = max
	}
	if len(spec) == 0 {
		return nil
	}
	return spec
}

func caseInsensitive(value string) bson.M {
	return bson.M{"$regex": "^" + escapeRegex(value) + "$", "$options": "i"}
}

func escapeRegex(value string) string {
	const special = `\.+*?()|[]{}^$`
	out := make([]byte, 0, len(value))
	for i := 0; i < len(value); i++ {
		ch := value[i]
		for j := 0; j < len(special); j++ {
			if ch == special[j] {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, ch)
	}
	return string(out)
}

type listingDocument struct {
	ID           string           `bson:"_id"`
	HostID       string           `bson:"host_id"`
	Title        string           `bson:"title"`
	Description  string           `bson:"description,omitempty"`
	PropertyType string           `bson:"property_type"`
	Location     locationDocument `bson:"location"`
	NightlyPrice int64            `bson:"nightly_price"`
	Currency     string           `bson:"currency"`
	Capacity     capacityDocument `bson:"capacity"`
	Amenities    []string         `bson:"amenities"`
	Images       []imageDocument  `bson:"images"`
	Rating       ratingDocument   `bson:"rating"`
	Status       string           `bson:"status"`
	Featured     bool             `bson:"featured"`
	Views        int64            `bson:"views"`
	CreatedAt    time.Time        `bson:"created_at"`
	UpdatedAt    time.Time        `bson:"updated_at"`
}

type locationDocument struct {
	Address string  `bson:"address"`
	City    string  `bson:"city"`
	State   string  `bson:"state,omitempty"`
	Country string  `bson:"country"`
	ZipCode string  `bson:"zip_code,omitempty"`
	Lat     float64 `bson:"lat,omitempty"`
	Lon     float64 `bson:"lon,omitempty"`
}

type capacityDocument struct {
	Guests    int `bson:"guests"`
	Bedrooms  int `bson:"bedrooms"`
	Bathrooms int `bson:"bathrooms"`
	Beds      int `bson:"beds"`
}

type imageDocument struct {
	URL       string `bson:"url"`
	Caption   string `bson:"caption,omitempty"`
	IsPrimary bool   `bson:"is_primary"`
}

type ratingDocument struct {
	Average float64 `bson:"average"`
	Count   int     `bson:"count"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	images := make([]imageDocument, 0, len(l.Images))
	for _, img := range l.Images {
		images = append(images, imageDocument{URL: img.URL, Caption: img.Caption, IsPrimary: img.IsPrimary})
	}
	return listingDocument{
		ID:           string(l.ID),
		HostID:       string(l.Host),
		Title:        l.Title,
		Description:  l.Description,
		PropertyType: string(l.PropertyType),
		Location: locationDocument{
			Address: l.Location.Address,
			City:    l.Location.City,
			State:   l.Location.State,
			Country: l.Location.Country,
			ZipCode: l.Location.ZipCode,
			Lat:     l.Location.Lat,
			Lon:     l.Location.Lon,
		},
		NightlyPrice: l.NightlyPrice,
		Currency:     l.Currency,
		Capacity: capacityDocument{
			Guests:    l.Capacity.Guests,
			Bedrooms:  l.Capacity.Bedrooms,
			Bathrooms: l.Capacity.Bathrooms,
			Beds:      l.Capacity.Beds,
		},
		Amenities: append([]string(nil), l.Amenities...),
		Images:    images,
		Rating:    ratingDocument{Average: l.Rating.Average, Count: l.Rating.Count},
		Status:    string(l.Status),
		Featured:  l.Featured,
		Views:     l.Views,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	images := make([]domainlistings.Image, 0, len(d.Images))
	for _, img := range d.Images {
		images = append(images, domainlistings.Image{URL: img.URL, Caption: img.Caption, IsPrimary: img.IsPrimary})
	}
	return &domainlistings.Listing{
		ID:           domainlistings.ListingID(d.ID),
		Host:         domainuser.ID(d.HostID),
		Title:        d.Title,
		Description:  d.Description,
		PropertyType: domainlistings.PropertyType(d.PropertyType),
		Location: domainlistings.Location{
			Address: d.Location.Address,
			City:    d.Location.City,
			State:   d.Location.State,
			Country: d.Location.Country,
			ZipCode: d.Location.ZipCode,
			Lat:     d.Location.Lat,
			Lon:     d.Location.Lon,
		},
		NightlyPrice: d.NightlyPrice,
		Currency:     d.Currency,
		Capacity: domainlistings.Capacity{
			Guests:    d.Capacity.Guests,
			Bedrooms:  d.Capacity.Bedrooms,
			Bathrooms: d.Capacity.Bathrooms,
			Beds:      d.Capacity.Beds,
		},
		Amenities: d.Amenities,
		Images:    images,
		Rating:    domainlistings.Rating{Average: d.Rating.Average, Count: d.Rating.Count},
		Status:    domainlistings.Status(d.Status),
		Featured:  d.Featured,
		Views:     d.Views,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

var _ domainlistings.Repository = (*ListingRepository)(nil)
