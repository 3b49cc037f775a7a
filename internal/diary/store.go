// Package diary holds the authoritative ordered collection of engagement
// records and its persistence behavior.
package diary

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	appLog "photodiary/internal/log"
	"photodiary/internal/model"
	"photodiary/internal/storage"
)

// Store is the event store: an insertion-ordered collection of EventBlocks,
// the single source of truth for everything else in the application.
//
// Mutations never block on I/O: each one queues a snapshot for a single
// background writer that serializes the collection through the persistence
// port. Only the latest snapshot matters, so a queued write still waiting
// when the next mutation lands is simply replaced.
type Store struct {
	mu     sync.Mutex
	events []model.EventBlock

	persist storage.Store
	writeCh chan []model.EventBlock
	done    chan struct{}
	stopped chan struct{}

	subsMu sync.Mutex
	subs   []chan struct{}

	closeOnce sync.Once
}

// Options controls Store construction.
type Options struct {
	// SeedSamples seeds a few illustrative engagements when the persisted
	// state is absent or empty.
	SeedSamples bool

	// Location is the calendar-day zone used for seeding. Nil means local.
	Location *time.Location

	// Now overrides the clock, for tests. Nil means time.Now.
	Now func() time.Time
}

// Open loads the persisted collection (or seeds/initializes it) and starts
// the background writer.
//
// Malformed persisted JSON is logged and discarded; the store falls back to
// the empty/default state rather than propagating the parse failure.
func Open(persist storage.Store, opts Options) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	s := &Store{
		persist: persist,
		writeCh: make(chan []model.EventBlock, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	data, ok, err := persist.Load(storage.KeyEvents)
	if err != nil {
		appLog.Error("diary load failed; starting empty", err)
	} else if ok {
		var events []model.EventBlock
		if uerr := json.Unmarshal(data, &events); uerr != nil {
			appLog.Error("diary state is corrupt; starting empty", uerr)
		} else {
			s.events = events
		}
	}

	if len(s.events) == 0 && opts.SeedSamples {
		s.events = SampleEvents(now(), loc)
		appLog.Info("diary seeded with sample engagements", "count", len(s.events))
		s.scheduleWrite(s.snapshotLocked())
	}

	go s.writer()
	return s
}

// NewID returns a fresh opaque event identifier.
func NewID() string {
	return uuid.NewString()
}

// Save replaces the record with the same id in place, preserving collection
// order, or appends when the id is new. Callers supply a well-formed record;
// field validation belongs to the entry-form boundary.
func (s *Store) Save(b model.EventBlock) {
	s.mu.Lock()
	replaced := false
	for i := range s.events {
		if s.events[i].ID == b.ID {
			s.events[i] = b
			replaced = true
			break
		}
	}
	if !replaced {
		s.events = append(s.events, b)
	}
	snap := s.snapshotLocked()
	s.scheduleWrite(snap)
	s.mu.Unlock()

	s.notify()
}

// Delete removes the matching record. Deleting an absent id is a no-op,
// not an error.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	removed := false
	for i := range s.events {
		if s.events[i].ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			removed = true
			break
		}
	}
	var snap []model.EventBlock
	if removed {
		snap = s.snapshotLocked()
		s.scheduleWrite(snap)
	}
	s.mu.Unlock()

	if removed {
		s.notify()
	}
}

// All returns a copy of the full collection in insertion order.
func (s *Store) All() []model.EventBlock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// Subscribe returns a channel that receives a signal after every mutation.
// The channel has capacity one and signals are collapsed, so a slow consumer
// sees at least one signal for any burst of changes.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.subsMu.Lock()
	s.subs = append(s.subs, ch)
	s.subsMu.Unlock()
	return ch
}

// Close flushes any queued write and stops the background writer.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		<-s.stopped
	})
}

func (s *Store) snapshotLocked() []model.EventBlock {
	cp := make([]model.EventBlock, len(s.events))
	copy(cp, s.events)
	return cp
}

// scheduleWrite queues snap for the background writer, replacing any
// not-yet-written snapshot. Callers hold s.mu, so queue access is serialized
// on the producer side.
func (s *Store) scheduleWrite(snap []model.EventBlock) {
	select {
	case s.writeCh <- snap:
		return
	default:
	}
	// Queue full: drop the stale snapshot, then queue the new one.
	select {
	case <-s.writeCh:
	default:
	}
	select {
	case s.writeCh <- snap:
	default:
	}
}

func (s *Store) notify() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *Store) writer() {
	defer close(s.stopped)
	for {
		select {
		case snap := <-s.writeCh:
			s.write(snap)
		case <-s.done:
			// Flush whatever is still queued before exiting.
			select {
			case snap := <-s.writeCh:
				s.write(snap)
			default:
			}
			return
		}
	}
}

func (s *Store) write(snap []model.EventBlock) {
	data, err := json.Marshal(snap)
	if err != nil {
		appLog.Error("diary serialize failed", err, "count", len(snap))
		return
	}
	if err := s.persist.Save(storage.KeyEvents, data); err != nil {
		appLog.Error("diary persist failed", err, "count", len(snap))
	}
}
