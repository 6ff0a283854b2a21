// game/countdown/driver.go
package countdown

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/ctfarena/arena-services/game/store"
	"github.com/ctfarena/arena-services/shared/models"
)

// RoundClock is the slice of the round store the driver needs.
type RoundClock interface {
	ActiveRound(ctx context.Context) (*models.Round, error)
	DecrementActiveRound(ctx context.Context) (*models.Round, error)
}

// ExpireFunc archives the active round when its clock runs out. It must be
// idempotent: the driver may retry it if a previous attempt failed.
type ExpireFunc func(ctx context.Context) error

// Driver is the single recurring countdown task. Each tick it takes one
// second off the active round's persisted clock; when the clock hits zero it
// triggers auto-expiry, and when no round is active it stops itself. Only
// one instance runs at a time: Start cancels any previous loop first.
//
// The driver talks to request handlers purely through the persisted round
// record; there is no in-memory clock shared across requests, which is what
// lets an already-active round resume after a process restart.
type Driver struct {
	rounds   RoundClock
	interval time.Duration
	expire   ExpireFunc

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewDriver creates a countdown driver ticking at the given interval.
func NewDriver(rounds RoundClock, interval time.Duration, expire ExpireFunc) *Driver {
	return &Driver{
		rounds:   rounds,
		interval: interval,
		expire:   expire,
	}
}

// Start launches the tick loop, cancelling any previously running instance.
func (d *Driver) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	log.Printf("Countdown driver starting with tick interval: %v", d.interval)
	go d.run(ctx)
}

// Stop cancels the running tick loop, if any.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// Running reports whether a tick loop is currently active.
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel != nil
}

func (d *Driver) run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Countdown driver shutting down.")
			return
		case <-ticker.C:
			if done := d.tick(ctx); done {
				log.Println("Countdown driver stopping: no active round left to tick.")
				return
			}
		}
	}
}

// tick performs one countdown step. The returned bool is true when the loop
// should stop. Transient persistence errors are logged and skipped; the next
// tick retries.
func (d *Driver) tick(ctx context.Context) bool {
	tickCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	round, err := d.rounds.DecrementActiveRound(tickCtx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return d.handleNoDecrement(tickCtx)
		}
		log.Printf("ERROR: Countdown tick failed, skipping: %v", err)
		return false
	}

	if round.RemainingTime == 0 {
		return d.expireRound(tickCtx)
	}
	return false
}

// handleNoDecrement covers the two reasons a decrement matched nothing: no
// round is active (stop), or an active round is already sitting at zero and
// must still be archived so it cannot stay active indefinitely.
func (d *Driver) handleNoDecrement(ctx context.Context) bool {
	active, err := d.rounds.ActiveRound(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return true
		}
		log.Printf("ERROR: Countdown could not check for an active round, skipping tick: %v", err)
		return false
	}
	if active.RemainingTime <= 0 {
		return d.expireRound(ctx)
	}
	return false
}

// expireRound invokes the archival path. On failure the driver keeps
// running so the next tick retries until the round is archived.
func (d *Driver) expireRound(ctx context.Context) bool {
	log.Println("Round clock reached zero, auto-ending the current round.")
	if err := d.expire(ctx); err != nil {
		log.Printf("ERROR: Auto-expiry failed, will retry next tick: %v", err)
		return false
	}
	return true
}
