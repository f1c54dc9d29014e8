package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/taivu9x/bowling-score/internal/domain"
	"github.com/taivu9x/bowling-score/internal/game"
	"github.com/taivu9x/bowling-score/internal/logger"
	"github.com/taivu9x/bowling-score/internal/repository"

	"github.com/google/uuid"
)

// Notifier is told about every accepted mutation.
type Notifier interface {
	Notify(ctx context.Context, g domain.Game)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, domain.Game) {}

// GameService is the single writer of game state. It runs lifecycle
// transitions against the store and announces the results.
type GameService struct {
	store    repository.GameStore
	rules    game.Rules
	notifier Notifier
	log      *slog.Logger

	now   func() time.Time
	newID func() string

	locksMu sync.Mutex
	locks   map[string]*gameLock
}

type gameLock struct {
	mu   sync.Mutex
	refs int
}

// NewGameService creates a new game service. A nil notifier drops announcements.
func NewGameService(store repository.GameStore, rules game.Rules, notifier Notifier) *GameService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &GameService{
		store:    store,
		rules:    rules,
		notifier: notifier,
		log:      logger.Component("game_service"),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.New().String() },
		locks:    make(map[string]*gameLock),
	}
}

// Create stores a fresh WAITING game.
func (s *GameService) Create(ctx context.Context) (domain.Game, error) {
	g := game.New(s.newID(), s.now())
	if err := s.store.Create(ctx, g); err != nil {
		GameOps.WithLabelValues("create", resultError).Inc()
		return domain.Game{}, err
	}
	GameOps.WithLabelValues("create", resultOK).Inc()
	s.log.Info("game created", "game_id", g.GameID)
	return g, nil
}

func (s *GameService) Get(ctx context.Context, id string) (domain.Game, error) {
	return s.store.Get(ctx, id)
}

// List returns games newest first, optionally filtered by status.
func (s *GameService) List(ctx context.Context, status domain.GameStatus) ([]domain.Game, error) {
	return s.store.List(ctx, status)
}

// playerKey is the stored form of a player id. Every operation goes through
// it so the id given to Join finds the same player later.
func playerKey(playerID string) string {
	return SanitizeName(playerID)
}

func (s *GameService) Join(ctx context.Context, id, playerID, name string) (domain.Game, error) {
	name = SanitizeName(name)
	playerID = playerKey(playerID)
	return s.apply(ctx, id, "join", func(g domain.Game) (domain.Game, error) {
		return game.AddPlayer(g, playerID, name)
	})
}

func (s *GameService) Leave(ctx context.Context, id, playerID string) (domain.Game, error) {
	playerID = playerKey(playerID)
	return s.apply(ctx, id, "leave", func(g domain.Game) (domain.Game, error) {
		return game.RemovePlayer(g, playerID)
	})
}

func (s *GameService) Start(ctx context.Context, id string) (domain.Game, error) {
	return s.apply(ctx, id, "start", game.Start)
}

func (s *GameService) Complete(ctx context.Context, id string) (domain.Game, error) {
	return s.apply(ctx, id, "complete", game.Complete)
}

// RecordRoll writes a single ball.
func (s *GameService) RecordRoll(ctx context.Context, id, playerID string, frame, roll int, pins domain.Roll) (domain.Game, error) {
	playerID = playerKey(playerID)
	return s.apply(ctx, id, "roll", func(g domain.Game) (domain.Game, error) {
		return s.rules.RecordRoll(g, playerID, frame, roll, pins)
	})
}

// SetRolls replaces a player's whole roll grid.
func (s *GameService) SetRolls(ctx context.Context, id, playerID string, grid [][]domain.Roll) (domain.Game, error) {
	playerID = playerKey(playerID)
	return s.apply(ctx, id, "roll", func(g domain.Game) (domain.Game, error) {
		return s.rules.SetRolls(g, playerID, grid)
	})
}

// apply runs one transition under the game's lock. On refusal the stored game
// comes back unchanged together with the reason.
func (s *GameService) apply(ctx context.Context, id, op string, fn func(domain.Game) (domain.Game, error)) (domain.Game, error) {
	unlock := s.lock(id)
	defer unlock()

	next, err := s.store.Update(ctx, id, func(g domain.Game) (domain.Game, error) {
		out, err := fn(g)
		if err != nil {
			return g, err
		}
		out.UpdatedAt = s.now()
		return out, nil
	})
	switch {
	case err == nil:
		GameOps.WithLabelValues(op, resultOK).Inc()
	case game.IsRejection(err):
		GameOps.WithLabelValues(op, resultRejected).Inc()
		s.log.Debug("transition refused", "game_id", id, "op", op, "error", err)
		return next, err
	case errors.Is(err, repository.ErrNotFound):
		GameOps.WithLabelValues(op, resultRejected).Inc()
		return next, err
	default:
		GameOps.WithLabelValues(op, resultError).Inc()
		s.log.Error("transition failed", "game_id", id, "op", op, "error", err)
		return next, err
	}

	s.log.Info("game updated", "game_id", id, "op", op, "status", next.Status, "version", next.Version)
	s.notifier.Notify(ctx, next)
	return next, nil
}

// lock serialises writers of one game inside this process.
func (s *GameService) lock(id string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &gameLock{}
		s.locks[id] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.locksMu.Unlock()
	}
}
