package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "stayfinder/internal/domain/booking"
	domainlistings "stayfinder/internal/domain/listings"
	domainreviews "stayfinder/internal/domain/reviews"
	"stayfinder/internal/domain/shared/fault"
	domainuser "stayfinder/internal/domain/user"
)

// ReviewRepository persists reviews; the unique booking_id index backs the
// one-review-per-booking rule.
type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection(reviewsCollection)}
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreviews.ReviewID) (*domainreviews.Review, error) {
	var doc reviewDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fault.NotFound("review")
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReviewRepository) ByBooking(ctx context.Context, bookingID domainbooking.BookingID) (*domainreviews.Review, error) {
	var doc reviewDocument
	if err := r.col.FindOne(ctx, bson.M{"booking_id": string(bookingID)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fault.NotFound("review")
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReviewRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID, page, pageSize int) (domainreviews.Page, error) {
	filter := bson.M{"listing_id": string(listingID), "public": true}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainreviews.Page{}, err
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))
	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return domainreviews.Page{}, err
	}
	defer cursor.Close(ctx)

	items := make([]*domainreviews.Review, 0, pageSize)
	for cursor.Next(ctx) {
		var doc reviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return domainreviews.Page{}, err
		}
		items = append(items, doc.toAggregate())
	}
	if err := cursor.Err(); err != nil {
		return domainreviews.Page{}, err
	}
	return domainreviews.Page{Items: items, Total: int(total)}, nil
}

func (r *ReviewRepository) OverallRatings(ctx context.Context, listingID domainlistings.ListingID) ([]int, error) {
	opts := options.Find().SetProjection(bson.M{"ratings.overall": 1})
	cursor, err := r.col.Find(ctx, bson.M{"listing_id": string(listingID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	overalls := make([]int, 0)
	for cursor.Next(ctx) {
		var doc struct {
			Ratings struct {
				Overall int `bson:"overall"`
			} `bson:"ratings"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		overalls = append(overalls, doc.Ratings.Overall)
	}
	return overalls, cursor.Err()
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	doc := newReviewDocument(review)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	if mongo.IsDuplicateKeyError(err) {
		return fault.Conflict("review already exists for this booking")
	}
	return err
}

type reviewDocument struct {
	ID           string                `bson:"_id"`
	ListingID    string                `bson:"listing_id"`
	BookingID    string                `bson:"booking_id"`
	ReviewerID   string                `bson:"reviewer_id"`
	HostID       string                `bson:"host_id"`
	Ratings      ratingsDocument       `bson:"ratings"`
	Comment      string                `bson:"comment"`
	HostResponse *hostResponseDocument `bson:"host_response,omitempty"`
	Public       bool                  `bson:"public"`
	CreatedAt    time.Time             `bson:"created_at"`
	UpdatedAt    time.Time             `bson:"updated_at"`
}

type ratingsDocument struct {
	Overall       int `bson:"overall"`
	Cleanliness   int `bson:"cleanliness,omitempty"`
	Communication int `bson:"communication,omitempty"`
	CheckIn       int `bson:"check_in,omitempty"`
	Accuracy      int `bson:"accuracy,omitempty"`
	Location      int `bson:"location,omitempty"`
	Value         int `bson:"value,omitempty"`
}

type hostResponseDocument struct {
	Comment     string    `bson:"comment"`
	RespondedAt time.Time `bson:"responded_at"`
}

func newReviewDocument(rv *domainreviews.Review) reviewDocument {
	doc := reviewDocument{
		ID:         string(rv.ID),
		ListingID:  string(rv.ListingID),
		BookingID:  string(rv.BookingID),
		ReviewerID: string(rv.ReviewerID),
		HostID:     string(rv.HostID),
		Ratings: ratingsDocument{
			Overall:       rv.Ratings.Overall,
			Cleanliness:   rv.Ratings.Cleanliness,
			Communication: rv.Ratings.Communication,
			CheckIn:       rv.Ratings.CheckIn,
			Accuracy:      rv.Ratings.Accuracy,
			Location:      rv.Ratings.Location,
			Value:         rv.Ratings.Value,
		},
		Comment:   rv.Comment,
		Public:    rv.Public,
		CreatedAt: rv.CreatedAt,
		UpdatedAt: rv.UpdatedAt,
	}
	if rv.HostResponse != nil {
		doc.HostResponse = &hostResponseDocument{
			Comment:     rv.HostResponse.Comment,
			RespondedAt: rv.HostResponse.RespondedAt,
		}
	}
	return doc
}

func (d reviewDocument) toAggregate() *domainreviews.Review {
	rv := &domainreviews.Review{
		ID:         domainreviews.ReviewID(d.ID),
		ListingID:  domainlistings.ListingID(d.ListingID),
		BookingID:  domainbooking.BookingID(d.BookingID),
		ReviewerID: domainuser.ID(d.ReviewerID),
		HostID:     domainuser.ID(d.HostID),
		Ratings: domainreviews.Ratings{
			Overall:       d.Ratings.Overall,
			Cleanliness:   d.Ratings.Cleanliness,
			Communication: d.Ratings.Communication,
			CheckIn:       d.Ratings.CheckIn,
			Accuracy:      d.Ratings.Accuracy,
			Location:      d.Ratings.Location,
			Value:         d.Ratings.Value,
		},
		Comment:   d.Comment,
		Public:    d.Public,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.HostResponse != nil {
		rv.HostResponse = &domainreviews.HostResponse{
			Comment:     d.HostResponse.Comment,
			RespondedAt: d.HostResponse.RespondedAt,
		}
	}
	return rv
}

var _ domainreviews.Repository = (*ReviewRepository)(nil)
