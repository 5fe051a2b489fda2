package status

import (
	"errors"
	"sync"
	"time"

	"github.com/gitfold/gitfold/internal/logging"
)

// ErrBusy is returned when a refresh is requested while one is already
// in flight. The request is dropped, not queued; callers that still
// need a refresh must re-issue it.
var ErrBusy = errors.New("refresh already in flight")

// DefaultWatchdog is how long a rebuild may hold the permit before it
// is force-released.
const DefaultWatchdog = 10 * time.Second

// Coordinator serializes tree rebuilds behind a single-slot permit.
// At most one rebuild is in flight; concurrent requests are dropped.
//
// Every acquired permit carries a watchdog: if the rebuild still holds
// it when the watchdog fires, the permit is force-released and a
// warning logged, so a stuck rebuild cannot wedge the UI permanently.
// The force-released rebuild may still be running and can race the
// next one; Repository discards stale results by generation, which
// makes the race harmless but not impossible.
type Coordinator struct {
	permit  chan struct{}
	timeout time.Duration
	log     logging.Logger
}

// NewCoordinator creates a coordinator with the given watchdog timeout.
func NewCoordinator(timeout time.Duration, log logging.Logger) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultWatchdog
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Coordinator{
		permit:  make(chan struct{}, 1),
		timeout: timeout,
		log:     log,
	}
}

// Do runs fn while holding the permit. Returns ErrBusy without running
// fn when the permit is already held. The permit is released exactly
// once: on completion or by the watchdog, whichever comes first.
func (c *Coordinator) Do(op string, fn func() error) error {
	select {
	case c.permit <- struct{}{}:
	default:
		c.log.Debug("request dropped, permit held", "op", op)
		return ErrBusy
	}

	release := sync.OnceFunc(func() { <-c.permit })
	watchdog := time.AfterFunc(c.timeout, func() {
		c.log.Warn("watchdog fired, force-releasing permit", "op", op, "timeout", c.timeout)
		release()
	})
	defer func() {
		watchdog.Stop()
		release()
	}()

	return fn()
}

// Busy reports whether the permit is currently held.
func (c *Coordinator) Busy() bool { return len(c.permit) > 0 }
