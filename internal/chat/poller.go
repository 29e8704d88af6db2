package chat

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/mozhi-it/LAN-Transfer/internal/errors"
	"github.com/mozhi-it/LAN-Transfer/internal/types"
)

// DefaultInterval is the pause between two fetches.
const DefaultInterval = 300 * time.Millisecond

// MessageSource fetches the server's current message window.
type MessageSource interface {
	Messages(ctx context.Context) ([]types.Message, error)
}

// State is the poller lifecycle: Idle -> Running -> Stopped.
type State int32

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// PollerOptions configures a Poller.
type PollerOptions struct {
	Interval time.Duration
	Logger   zerolog.Logger
}

// Poller periodically fetches messages into a Store and raises a Signal
// when messages newer than the last seen one arrive.
//
// A message counts as new when the highest id of the window differs from
// the one remembered from the previous successful fetch; the new ones are
// those with a larger id. A server that restarts and reuses ids is
// therefore only noticed once its ids pass the remembered value.
type Poller struct {
	source   MessageSource
	store    *Store
	notify   *Signal
	interval time.Duration
	log      zerolog.Logger

	state  atomic.Int32
	wg     conc.WaitGroup
	cancel context.CancelFunc

	// mu orders Stop against publishing so nothing is written after Stop returns.
	mu      sync.Mutex
	stopped bool

	// owned by the loop goroutine
	lastID      int64
	hasBaseline bool
	failures    int
}

// NewPoller creates an idle poller.
func NewPoller(source MessageSource, store *Store, notify *Signal, opts PollerOptions) *Poller {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		source:   source,
		store:    store,
		notify:   notify,
		interval: interval,
		log:      opts.Logger,
	}
}

// Start launches the polling goroutine. It fails unless the poller is idle.
// Cancelling ctx has the same effect as Stop.
func (p *Poller) Start(ctx context.Context) error {
	if !p.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return fmt.Errorf("poller is %s", p.State())
	}

	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	p.wg.Go(func() {
		defer p.Stop()
		p.run(ctx)
	})
	return nil
}

// Stop signals the loop to exit. It is safe to call more than once and from
// any goroutine; it does not wait for the loop.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	p.state.Store(int32(Stopped))
	if p.cancel != nil {
		p.cancel()
	}
}

// Wait blocks until the loop goroutine has returned.
func (p *Poller) Wait() {
	p.wg.Wait()
}

// Close stops the poller and joins its goroutine.
func (p *Poller) Close() {
	p.Stop()
	p.Wait()
}

// State reports the lifecycle state.
func (p *Poller) State() State {
	return State(p.state.Load())
}

func (p *Poller) run(ctx context.Context) {
	p.log.Debug().Dur("interval", p.interval).Msg("poller started")
	defer p.log.Debug().Msg("poller stopped")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		p.poll(ctx)
		timer.Reset(p.interval)
	}
}

// poll performs one fetch and publishes the result.
func (p *Poller) poll(ctx context.Context) {
	msgs, err := p.source.Messages(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.failures++
		p.log.Debug().Err(err).
			Int("consecutive", p.failures).
			Bool("retryable", errors.IsRetryable(err)).
			Msg("message poll failed")
		return
	}
	p.failures = 0

	highest := highestID(msgs)
	var fresh []types.Message
	if p.hasBaseline && highest != p.lastID {
		for _, m := range msgs {
			if m.ID > p.lastID {
				fresh = append(fresh, m)
			}
		}
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.store.Publish(msgs, fresh)
	if len(fresh) > 0 {
		p.notify.Raise()
	}
	p.mu.Unlock()

	if len(fresh) > 0 {
		p.log.Debug().Int("count", len(fresh)).Int64("last_id", highest).Msg("new messages")
	}
	p.lastID = highest
	p.hasBaseline = true
}

func highestID(msgs []types.Message) int64 {
	var highest int64
	for _, m := range msgs {
		if m.ID > highest {
			highest = m.ID
		}
	}
	return highest
}
