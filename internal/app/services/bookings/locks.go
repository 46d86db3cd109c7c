package bookings

import (
	"sync"

	"stayfinder/internal/domain/listings"
)

// listingLocks serializes check-overlap-then-insert per listing. A bare
// check-then-insert is a race: two concurrent requests for overlapping dates
// could both pass the overlap query and both persist. Every booking creation
// for a listing runs under that listing's mutex.
//
// Entries are never evicted; the map is bounded by the number of listings
// that ever received a booking request on this instance.
type listingLocks struct {
	mu    sync.Mutex
	locks map[listings.ListingID]*sync.Mutex
}

func newListingLocks() *listingLocks {
	return &listingLocks{locks: make(map[listings.ListingID]*sync.Mutex)}
}

// acquire locks the per-listing mutex and returns the release function.
func (l *listingLocks) acquire(id listings.ListingID) func() {
	l.mu.Lock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[id] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
