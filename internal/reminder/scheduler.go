package reminder

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"photodiary/internal/diary"
	appLog "photodiary/internal/log"
	"photodiary/internal/model"
)

// Scheduler keeps the active reminder set current. It re-evaluates on a
// cron schedule and immediately after every diary mutation, and holds the
// latest result behind an RWMutex for cheap concurrent reads.
//
// The cron runner and the subscription goroutine are both released by Stop;
// a Scheduler must not outlive its host's shutdown.
type Scheduler struct {
	store *diary.Store
	loc   *time.Location
	now   func() time.Time

	mu     sync.RWMutex
	active []model.ActiveReminder

	cron     *cron.Cron
	stop     chan struct{}
	stopOnce sync.Once
}

// New constructs a Scheduler over store, computing calendar days in loc.
func New(store *diary.Store, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		store: store,
		loc:   loc,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
}

// Start performs an initial evaluation, then begins periodic re-evaluation
// on the given cron spec (e.g. "*/15 * * * *") plus immediate re-evaluation
// on every store change.
func (s *Scheduler) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, s.Refresh); err != nil {
		return err
	}
	s.cron = c

	s.Refresh()
	c.Start()
	go s.watch(s.store.Subscribe())

	appLog.Info("reminder scheduler started", "refresh", spec)
	return nil
}

// Stop cancels the periodic timer and the store watcher. Safe to call more
// than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		if s.cron != nil {
			s.cron.Stop()
		}
		close(s.stop)
		appLog.Info("reminder scheduler stopped")
	})
}

// Refresh recomputes the active set from the current diary snapshot.
func (s *Scheduler) Refresh() {
	active := Evaluate(s.store.All(), s.now(), s.loc)

	s.mu.Lock()
	s.active = active
	s.mu.Unlock()

	appLog.Debug("reminder evaluation complete", "active", len(active))
}

// Active returns a copy of the complete active reminder set as of the last
// evaluation.
func (s *Scheduler) Active() []model.ActiveReminder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := make([]model.ActiveReminder, len(s.active))
	copy(cp, s.active)
	return cp
}

func (s *Scheduler) watch(changes <-chan struct{}) {
	for {
		select {
		case <-s.stop:
			return
		case <-changes:
			s.Refresh()
		}
	}
}
