package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/taivu9x/bowling-score/internal/domain"
	"github.com/taivu9x/bowling-score/internal/logger"
	"github.com/taivu9x/bowling-score/internal/ws"
)

type fakeFetcher struct {
	mu    sync.Mutex
	game  domain.Game
	err   error
	pulls int
}

func (f *fakeFetcher) GetGame(_ context.Context, id string) (domain.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pulls++
	if f.err != nil {
		return domain.Game{}, f.err
	}
	return f.game.Clone(), nil
}

func (f *fakeFetcher) set(g domain.Game, err error) {
	f.mu.Lock()
	f.game, f.err = g, err
	f.mu.Unlock()
}

func (f *fakeFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pulls
}

type fakeChannel struct {
	events chan Event
	joined chan string
	once   sync.Once
	closed chan struct{}
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		events: make(chan Event, 8),
		joined: make(chan string, 1),
		closed: make(chan struct{}),
	}
}

func (c *fakeChannel) Join(gameID string) error {
	c.joined <- gameID
	return nil
}

func (c *fakeChannel) Next() (Event, error) {
	select {
	case ev := <-c.events:
		return ev, nil
	case <-c.closed:
		return Event{}, errors.New("closed")
	}
}

func (c *fakeChannel) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeChannel) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// fakeDialer hands out queued channels and fails once the queue is empty.
type fakeDialer struct {
	mu       sync.Mutex
	channels []*fakeChannel
	dials    int
}

func (d *fakeDialer) Dial(context.Context) (Channel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if len(d.channels) == 0 {
		return nil, errors.New("connection refused")
	}
	ch := d.channels[0]
	d.channels = d.channels[1:]
	return ch, nil
}

func (d *fakeDialer) push(ch *fakeChannel) {
	d.mu.Lock()
	d.channels = append(d.channels, ch)
	d.mu.Unlock()
}

func (d *fakeDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return true
}

// clock collects scheduled reconnects so tests fire them by hand.
type clock struct {
	scheduled chan *fakeTimer
}

func newClock() *clock {
	return &clock{scheduled: make(chan *fakeTimer, 8)}
}

func (c *clock) afterFunc(d time.Duration, fn func()) stopper {
	t := &fakeTimer{delay: d, fn: fn}
	c.scheduled <- t
	return t
}

func (c *clock) next(t *testing.T) *fakeTimer {
	t.Helper()
	select {
	case timer := <-c.scheduled:
		return timer
	case <-time.After(2 * time.Second):
		t.Fatalf("no reconnect scheduled")
		return nil
	}
}

func (c *clock) none(t *testing.T) {
	t.Helper()
	select {
	case timer := <-c.scheduled:
		t.Fatalf("unexpected reconnect after %v", timer.delay)
	case <-time.After(50 * time.Millisecond):
	}
}

func snapshot(version int64, status domain.GameStatus) domain.Game {
	return domain.Game{GameID: "g1", Status: status, Version: version}
}

func newTestReconciler(f Fetcher, d Dialer) (*Reconciler, *clock) {
	c := newClock()
	r := New("g1", f, d, WithLogger(logger.Discard()), WithBaseDelay(time.Second))
	r.afterFunc = c.afterFunc
	return r, c
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestStartJoinsAndPulls(t *testing.T) {
	f := &fakeFetcher{game: snapshot(3, domain.StatusInProgress)}
	ch := newFakeChannel()
	d := &fakeDialer{channels: []*fakeChannel{ch}}
	r, _ := newTestReconciler(f, d)
	defer r.Close()

	r.Start(context.Background())

	if got := <-ch.joined; got != "g1" {
		t.Fatalf("joined %q", got)
	}
	if !r.Connected() {
		t.Fatalf("state = %s", r.State())
	}
	g, ok := r.Snapshot()
	if !ok || g.Version != 3 {
		t.Fatalf("snapshot = %+v %v", g, ok)
	}
}

func TestUpdateReplacesWholeSnapshot(t *testing.T) {
	before := snapshot(1, domain.StatusInProgress)
	before.PlayerStates = []domain.PlayerState{domain.NewPlayerState("p1", "Ann"), domain.NewPlayerState("p2", "Bob")}
	f := &fakeFetcher{game: before}
	ch := newFakeChannel()
	r, _ := newTestReconciler(f, &fakeDialer{channels: []*fakeChannel{ch}})
	defer r.Close()

	changes := make(chan domain.Game, 4)
	r.OnChange(func(g domain.Game) { changes <- g })
	r.Start(context.Background())
	<-changes

	after := snapshot(2, domain.StatusInProgress)
	after.PlayerStates = []domain.PlayerState{domain.NewPlayerState("p1", "Ann")}
	f.set(after, nil)
	// the push payload is only a hint; its content is never applied
	ch.events <- Event{Type: ws.MsgGameUpdate, GameID: "g1", Version: 99}

	select {
	case g := <-changes:
		if g.Version != 2 || len(g.PlayerStates) != 1 {
			t.Fatalf("got %+v", g)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no refresh after update")
	}
	g, _ := r.Snapshot()
	if len(g.PlayerStates) != 1 {
		t.Fatalf("snapshot merged instead of replaced: %+v", g.PlayerStates)
	}
}

func TestStaleSnapshotDropped(t *testing.T) {
	f := &fakeFetcher{game: snapshot(5, domain.StatusInProgress)}
	ch := newFakeChannel()
	r, _ := newTestReconciler(f, &fakeDialer{channels: []*fakeChannel{ch}})
	defer r.Close()
	r.Start(context.Background())

	f.set(snapshot(4, domain.StatusInProgress), nil)
	ch.events <- Event{Type: ws.MsgGameUpdate, GameID: "g1"}
	waitFor(t, "second pull", func() bool { return f.count() == 2 })

	if g, _ := r.Snapshot(); g.Version != 5 {
		t.Fatalf("version = %d, want 5", g.Version)
	}
}

func TestFetchErrorKeepsSnapshot(t *testing.T) {
	f := &fakeFetcher{game: snapshot(1, domain.StatusInProgress)}
	ch := newFakeChannel()
	r, _ := newTestReconciler(f, &fakeDialer{channels: []*fakeChannel{ch}})
	defer r.Close()
	r.Start(context.Background())

	f.set(domain.Game{}, errors.New("503"))
	ch.events <- Event{Type: ws.MsgGameUpdate, GameID: "g1"}
	waitFor(t, "pull error", func() bool { return r.Err() != nil })

	if g, ok := r.Snapshot(); !ok || g.Version != 1 {
		t.Fatalf("snapshot lost: %+v", g)
	}

	f.set(snapshot(2, domain.StatusInProgress), nil)
	ch.events <- Event{Type: ws.MsgGameUpdate, GameID: "g1"}
	waitFor(t, "recovery", func() bool { return r.Err() == nil })
}

func TestUpdatesForOtherGamesIgnored(t *testing.T) {
	f := &fakeFetcher{game: snapshot(1, domain.StatusInProgress)}
	ch := newFakeChannel()
	r, _ := newTestReconciler(f, &fakeDialer{channels: []*fakeChannel{ch}})
	defer r.Close()
	r.Start(context.Background())

	ch.events <- Event{Type: ws.MsgGameUpdate, GameID: "other"}
	ch.events <- Event{Type: ws.MsgGameUpdate, GameID: "g1"}
	waitFor(t, "pull", func() bool { return f.count() == 2 })
	time.Sleep(20 * time.Millisecond)
	if n := f.count(); n != 2 {
		t.Fatalf("pulls = %d, want 2", n)
	}
}

func TestReconnectExhaustion(t *testing.T) {
	f := &fakeFetcher{game: snapshot(1, domain.StatusInProgress)}
	ch := newFakeChannel()
	d := &fakeDialer{channels: []*fakeChannel{ch}}
	r, c := newTestReconciler(f, d)
	defer r.Close()
	r.Start(context.Background())

	ch.Close()
	for k := 1; k <= DefaultAttempts; k++ {
		timer := c.next(t)
		if want := time.Duration(k) * time.Second; timer.delay != want {
			t.Fatalf("attempt %d delay = %v, want %v", k, timer.delay, want)
		}
		if r.State() != StateReconnecting {
			t.Fatalf("attempt %d state = %s", k, r.State())
		}
		timer.fn()
	}

	c.none(t)
	if r.State() != StateDisconnected || r.Connected() {
		t.Fatalf("state = %s", r.State())
	}
	if n := d.count(); n != 1+DefaultAttempts {
		t.Fatalf("dials = %d", n)
	}
	if g, ok := r.Snapshot(); !ok || g.Version != 1 {
		t.Fatalf("snapshot lost after disconnect")
	}

	// Start brings it back
	again := newFakeChannel()
	d.push(again)
	r.Start(context.Background())
	if !r.Connected() {
		t.Fatalf("restart state = %s", r.State())
	}
}

func TestReconnectResetsCounterAndRepulls(t *testing.T) {
	f := &fakeFetcher{game: snapshot(1, domain.StatusInProgress)}
	first, second := newFakeChannel(), newFakeChannel()
	d := &fakeDialer{channels: []*fakeChannel{first}}
	r, c := newTestReconciler(f, d)
	defer r.Close()
	r.Start(context.Background())

	first.Close()
	c.next(t).fn() // dial fails
	timer := c.next(t)
	if timer.delay != 2*time.Second {
		t.Fatalf("second delay = %v", timer.delay)
	}

	f.set(snapshot(2, domain.StatusInProgress), nil)
	d.push(second)
	timer.fn()
	if !r.Connected() {
		t.Fatalf("state = %s", r.State())
	}
	if g, _ := r.Snapshot(); g.Version != 2 {
		t.Fatalf("no re-pull on reconnect: version %d", g.Version)
	}

	second.Close()
	if timer := c.next(t); timer.delay != time.Second {
		t.Fatalf("counter not reset: delay %v", timer.delay)
	}
}

func TestCompletedClosesChannel(t *testing.T) {
	f := &fakeFetcher{game: snapshot(1, domain.StatusInProgress)}
	ch := newFakeChannel()
	r, c := newTestReconciler(f, &fakeDialer{channels: []*fakeChannel{ch}})
	defer r.Close()
	r.Start(context.Background())

	f.set(snapshot(2, domain.StatusCompleted), nil)
	ch.events <- Event{Type: ws.MsgGameUpdate, GameID: "g1", Status: domain.StatusCompleted}

	waitFor(t, "completed", func() bool { return r.State() == StateCompleted })
	if !ch.isClosed() {
		t.Fatalf("channel left open")
	}
	c.none(t)
}

func TestCloseIsIdempotent(t *testing.T) {
	f := &fakeFetcher{game: snapshot(1, domain.StatusInProgress)}
	ch := newFakeChannel()
	r, c := newTestReconciler(f, &fakeDialer{channels: []*fakeChannel{ch}})
	r.Start(context.Background())

	ch.Close()
	timer := c.next(t)

	r.Close()
	r.Close()
	if !timer.stopped {
		t.Fatalf("pending reconnect not cancelled")
	}
	if r.State() != StateClosed {
		t.Fatalf("state = %s", r.State())
	}
	timer.fn()
	if r.State() != StateClosed {
		t.Fatalf("late timer revived reconciler: %s", r.State())
	}
}

func TestContextCancelCloses(t *testing.T) {
	f := &fakeFetcher{game: snapshot(1, domain.StatusInProgress)}
	ch := newFakeChannel()
	r, c := newTestReconciler(f, &fakeDialer{channels: []*fakeChannel{ch}})

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	cancel()

	waitFor(t, "close", func() bool { return r.State() == StateClosed })
	if !ch.isClosed() {
		t.Fatalf("channel left open")
	}
	c.none(t)
}
