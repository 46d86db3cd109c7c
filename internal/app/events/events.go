package events

import (
	"context"
	"time"
)

// Event types emitted by the application services.
const (
	BookingRequested = "booking.requested"
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
	ReviewSubmitted  = "review.submitted"
)

type Event struct {
	Type       string
	Key        string
	OccurredAt time.Time
	Payload    any
}

// Publisher delivers application events to a broker. Publication is
// best-effort: services log failures but do not roll back the write.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops events; used when no brokers are configured and in
// tests.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

var _ Publisher = NopPublisher{}
