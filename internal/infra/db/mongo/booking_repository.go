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
	"stayfinder/internal/domain/shared/daterange"
	"stayfinder/internal/domain/shared/fault"
	domainuser "stayfinder/internal/domain/user"
)

var activeStatuses = bson.A{
	string(domainbooking.StatusPending),
	string(domainbooking.StatusConfirmed),
}

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(bookingsCollection)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fault.NotFound("booking")
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, booking *domainbooking.Booking) error {
	doc := newBookingDocument(booking)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

// HasActiveOverlap runs the half-open interval query: an existing booking
// conflicts when it starts before the candidate ends and ends after the
// candidate starts.
func (r *BookingRepository) HasActiveOverlap(ctx context.Context, listingID domainlistings.ListingID, dr daterange.DateRange) (bool, error) {
	filter := bson.M{
		"listing_id":      string(listingID),
		"status":          bson.M{"$in": activeStatuses},
		"dates.check_in":  bson.M{"$lt": dr.CheckOut},
		"dates.check_out": bson.M{"$gt": dr.CheckIn},
	}
	count, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *BookingRepository) ByGuest(ctx context.Context, guestID domainuser.ID, filter domainbooking.ListFilter) (domainbooking.Page, error) {
	return r.list(ctx, bson.M{"guest_id": string(guestID)}, filter)
}

func (r *BookingRepository) ByHost(ctx context.Context, hostID domainuser.ID, filter domainbooking.ListFilter) (domainbooking.Page, error) {
	return r.list(ctx, bson.M{"host_id": string(hostID)}, filter)
}

func (r *BookingRepository) ActiveRanges(ctx context.Context, listingID domainlistings.ListingID, endsAfter time.Time) ([]daterange.DateRange, error) {
	filter := bson.M{
		"listing_id":      string(listingID),
		"status":          bson.M{"$in": activeStatuses},
		"dates.check_out": bson.M{"$gte": endsAfter},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "dates.check_in", Value: 1}}).
		SetProjection(bson.M{"dates": 1})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ranges := make([]daterange.DateRange, 0)
	for cursor.Next(ctx) {
		var doc struct {
			Dates rangeDocument `bson:"dates"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ranges = append(ranges, daterange.DateRange{
			CheckIn:  doc.Dates.CheckIn.UTC(),
			CheckOut: doc.Dates.CheckOut.UTC(),
		})
	}
	return ranges, cursor.Err()
}

func (r *BookingRepository) list(ctx context.Context, filter bson.M, listFilter domainbooking.ListFilter) (domainbooking.Page, error) {
	opts := listFilter.Normalized()
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainbooking.Page{}, err
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((opts.Page - 1) * opts.PageSize)).
		SetLimit(int64(opts.PageSize))
	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return domainbooking.Page{}, err
	}
	defer cursor.Close(ctx)

	items := make([]*domainbooking.Booking, 0, opts.PageSize)
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return domainbooking.Page{}, err
		}
		items = append(items, doc.toAggregate())
	}
	if err := cursor.Err(); err != nil {
		return domainbooking.Page{}, err
	}
	return domainbooking.Page{Items: items, Total: int(total)}, nil
}

type bookingDocument struct {
	ID              string                `bson:"_id"`
	ListingID       string                `bson:"listing_id"`
	GuestID         string                `bson:"guest_id"`
	HostID          string                `bson:"host_id"`
	Dates           rangeDocument         `bson:"dates"`
	Nights          int                   `bson:"nights"`
	Guests          guestCountDocument    `bson:"guests"`
	Pricing         pricingDocument       `bson:"pricing"`
	Status          string                `bson:"status"`
	PaymentStatus   string                `bson:"payment_status"`
	SpecialRequests string                `bson:"special_requests,omitempty"`
	Cancellation    *cancellationDocument `bson:"cancellation,omitempty"`
	CreatedAt       time.Time             `bson:"created_at"`
	UpdatedAt       time.Time             `bson:"updated_at"`
}

type rangeDocument struct {
	CheckIn  time.Time `bson:"check_in"`
	CheckOut time.Time `bson:"check_out"`
}

type guestCountDocument struct {
	Adults   int `bson:"adults"`
	Children int `bson:"children"`
	Infants  int `bson:"infants"`
}

type pricingDocument struct {
	BasePrice   int64 `bson:"base_price"`
	CleaningFee int64 `bson:"cleaning_fee"`
	ServiceFee  int64 `bson:"service_fee"`
	Taxes       int64 `bson:"taxes"`
	Total       int64 `bson:"total"`
}

type cancellationDocument struct {
	By           string    `bson:"by"`
	At           time.Time `bson:"at"`
	Reason       string    `bson:"reason"`
	RefundAmount float64   `bson:"refund_amount"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	doc := bookingDocument{
		ID:        string(b.ID),
		ListingID: string(b.ListingID),
		GuestID:   string(b.GuestID),
		HostID:    string(b.HostID),
		Dates:     rangeDocument{CheckIn: b.Dates.CheckIn, CheckOut: b.Dates.CheckOut},
		Nights:    b.Nights,
		Guests: guestCountDocument{
			Adults:   b.Guests.Adults,
			Children: b.Guests.Children,
			Infants:  b.Guests.Infants,
		},
		Pricing: pricingDocument{
			BasePrice:   b.Pricing.BasePrice,
			CleaningFee: b.Pricing.CleaningFee,
			ServiceFee:  b.Pricing.ServiceFee,
			Taxes:       b.Pricing.Taxes,
			Total:       b.Pricing.Total,
		},
		Status:          string(b.Status),
		PaymentStatus:   string(b.PaymentStatus),
		SpecialRequests: b.SpecialRequests,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if b.Cancellation != nil {
		doc.Cancellation = &cancellationDocument{
			By:           string(b.Cancellation.By),
			At:           b.Cancellation.At,
			Reason:       b.Cancellation.Reason,
			RefundAmount: b.Cancellation.RefundAmount,
		}
	}
	return doc
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	b := &domainbooking.Booking{
		ID:        domainbooking.BookingID(d.ID),
		ListingID: domainlistings.ListingID(d.ListingID),
		GuestID:   domainuser.ID(d.GuestID),
		HostID:    domainuser.ID(d.HostID),
		Dates: daterange.DateRange{
			CheckIn:  d.Dates.CheckIn.UTC(),
			CheckOut: d.Dates.CheckOut.UTC(),
		},
		Nights: d.Nights,
		Guests: domainbooking.GuestCount{
			Adults:   d.Guests.Adults,
			Children: d.Guests.Children,
			Infants:  d.Guests.Infants,
		},
		Pricing: domainbooking.Pricing{
			BasePrice:   d.Pricing.BasePrice,
			CleaningFee: d.Pricing.CleaningFee,
			ServiceFee:  d.Pricing.ServiceFee,
			Taxes:       d.Pricing.Taxes,
			Total:       d.Pricing.Total,
		},
		Status:          domainbooking.Status(d.Status),
		PaymentStatus:   domainbooking.PaymentStatus(d.PaymentStatus),
		SpecialRequests: d.SpecialRequests,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if d.Cancellation != nil {
		b.Cancellation = &domainbooking.Cancellation{
			By:           domainuser.ID(d.Cancellation.By),
			At:           d.Cancellation.At,
			Reason:       d.Cancellation.Reason,
			RefundAmount: d.Cancellation.RefundAmount,
		}
	}
	return b
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
