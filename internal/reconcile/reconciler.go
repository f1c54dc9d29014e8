// Package reconcile keeps an observer's copy of one game in step with the
// server. Push messages over the channel are only hints: every hint triggers
// a full pull, and the pulled snapshot replaces the cached one wholesale.
package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taivu9x/bowling-score/internal/domain"
	"github.com/taivu9x/bowling-score/internal/logger"
	"github.com/taivu9x/bowling-score/internal/ws"
)

const (
	DefaultAttempts  = 3
	DefaultBaseDelay = time.Second
)

// State of the push channel as seen by the observer.
type State string

const (
	StateIdle         State = "idle"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateDisconnected State = "disconnected"
	StateCompleted    State = "completed"
	StateClosed       State = "closed"
)

// Fetcher pulls the authoritative snapshot.
type Fetcher interface {
	GetGame(ctx context.Context, id string) (domain.Game, error)
}

// Dialer opens a push channel.
type Dialer interface {
	Dial(ctx context.Context) (Channel, error)
}

// Channel is one open push connection. Next blocks until a message arrives
// or the connection ends.
type Channel interface {
	Join(gameID string) error
	Next() (Event, error)
	Close() error
}

// Event is a decoded push message.
type Event struct {
	Type    string
	GameID  string
	Status  domain.GameStatus
	Version int64
}

type stopper interface {
	Stop() bool
}

type Option func(*Reconciler)

func WithAttempts(n int) Option {
	return func(r *Reconciler) { r.maxAttempts = n }
}

func WithBaseDelay(d time.Duration) Option {
	return func(r *Reconciler) { r.base = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) { r.log = l }
}

type Reconciler struct {
	gameID  string
	fetcher Fetcher
	dialer  Dialer
	log     *slog.Logger

	maxAttempts int
	base        time.Duration
	afterFunc   func(time.Duration, func()) stopper

	mu        sync.Mutex
	state     State
	session   int
	attempts  int
	ch        Channel
	timer     stopper
	stopCtx   func() bool
	snapshot  domain.Game
	hasSnap   bool
	err       error
	listeners []func(domain.Game)
}

func New(gameID string, fetcher Fetcher, dialer Dialer, opts ...Option) *Reconciler {
	r := &Reconciler{
		gameID:      gameID,
		fetcher:     fetcher,
		dialer:      dialer,
		log:         logger.Component("reconcile"),
		maxAttempts: DefaultAttempts,
		base:        DefaultBaseDelay,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
		state: StateIdle,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With("game_id", gameID)
	return r
}

// Start opens a fresh channel, replacing any previous one, and pulls the
// current snapshot. Cancelling ctx closes the reconciler.
func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	r.teardownLocked()
	r.session++
	session := r.session
	r.attempts = 0
	r.state = StateConnecting
	r.stopCtx = context.AfterFunc(ctx, r.Close)
	r.mu.Unlock()

	r.connect(ctx, session)
}

// Close drops the channel and any pending reconnect. Safe to call repeatedly.
func (r *Reconciler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateClosed {
		return
	}
	r.teardownLocked()
	r.session++
	r.state = StateClosed
}

// Snapshot returns the cached game and whether one has been pulled yet.
func (r *Reconciler) Snapshot() (domain.Game, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot.Clone(), r.hasSnap
}

func (r *Reconciler) Connected() bool {
	return r.State() == StateConnected
}

func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Err is the last pull failure, cleared by the next successful pull.
func (r *Reconciler) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// OnChange registers fn to run after every accepted snapshot.
func (r *Reconciler) OnChange(fn func(domain.Game)) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

func (r *Reconciler) connect(ctx context.Context, session int) {
	ch, err := r.dialer.Dial(ctx)
	if err == nil {
		if err = ch.Join(r.gameID); err != nil {
			ch.Close()
		}
	}
	if err != nil {
		r.log.Warn("push channel unavailable", "error", err)
		r.dropped(ctx, session)
		return
	}

	r.mu.Lock()
	if session != r.session || r.state == StateClosed {
		r.mu.Unlock()
		ch.Close()
		return
	}
	r.ch = ch
	r.attempts = 0
	r.state = StateConnected
	r.mu.Unlock()

	r.log.Debug("push channel connected")
	r.refresh(ctx, session)
	go r.read(ctx, ch, session)
}

func (r *Reconciler) read(ctx context.Context, ch Channel, session int) {
	for {
		ev, err := ch.Next()
		if err != nil {
			r.dropped(ctx, session)
			return
		}
		switch ev.Type {
		case ws.MsgGameUpdate:
			if ev.GameID != "" && ev.GameID != r.gameID {
				continue
			}
			r.refresh(ctx, session)
		case ws.MsgError:
			r.log.Warn("server refused join")
		}
	}
}

// refresh pulls the snapshot and swaps it in unless it is older than the
// cached one.
func (r *Reconciler) refresh(ctx context.Context, session int) {
	g, err := r.fetcher.GetGame(ctx, r.gameID)

	r.mu.Lock()
	if session != r.session {
		r.mu.Unlock()
		return
	}
	if err != nil {
		r.err = err
		r.mu.Unlock()
		r.log.Warn("snapshot pull failed", "error", err)
		return
	}
	r.err = nil
	if r.hasSnap && g.Version < r.snapshot.Version {
		r.mu.Unlock()
		r.log.Debug("stale snapshot dropped", "version", g.Version, "cached", r.snapshot.Version)
		return
	}
	r.snapshot = g.Clone()
	r.hasSnap = true
	if g.Status == domain.StatusCompleted && r.state != StateClosed {
		r.state = StateCompleted
		r.closeChannelLocked()
	}
	listeners := append([]func(domain.Game){}, r.listeners...)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(g.Clone())
	}
}

// dropped schedules the next reconnect attempt or gives up.
func (r *Reconciler) dropped(ctx context.Context, session int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session != r.session {
		return
	}
	switch r.state {
	case StateClosed, StateCompleted, StateDisconnected:
		return
	}
	r.closeChannelLocked()

	if r.attempts >= r.maxAttempts {
		r.state = StateDisconnected
		r.log.Warn("giving up on push channel", "attempts", r.attempts)
		return
	}
	r.attempts++
	delay := time.Duration(r.attempts) * r.base
	r.state = StateReconnecting
	r.log.Info("reconnecting", "attempt", r.attempts, "max", r.maxAttempts, "delay", delay)
	r.timer = r.afterFunc(delay, func() {
		r.mu.Lock()
		current := session == r.session && r.state == StateReconnecting
		r.timer = nil
		r.mu.Unlock()
		if current {
			r.connect(ctx, session)
		}
	})
}

func (r *Reconciler) teardownLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	if r.stopCtx != nil {
		r.stopCtx()
		r.stopCtx = nil
	}
	r.closeChannelLocked()
}

func (r *Reconciler) closeChannelLocked() {
	if r.ch != nil {
		r.ch.Close()
		r.ch = nil
	}
}
