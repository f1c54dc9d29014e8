package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/taivu9x/bowling-score/internal/domain"
)

// MemoryStore keeps snapshots in process. Used for tests and single-node runs.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]domain.Game
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[string]domain.Game)}
}

func (s *MemoryStore) Create(ctx context.Context, g domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[g.GameID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, g.GameID)
	}
	s.games[g.GameID] = g.Clone()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[id]
	if !ok {
		return domain.Game{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return g.Clone(), nil
}

func (s *MemoryStore) List(ctx context.Context, status domain.GameStatus) ([]domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]domain.Game, 0, len(s.games))
	for _, g := range s.games {
		if status != "" && g.Status != status {
			continue
		}
		res = append(res, g.Clone())
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].GameID < res[j].GameID
		}
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn UpdateFunc) (domain.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.games[id]
	if !ok {
		return domain.Game{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next, err := fn(cur.Clone())
	if err != nil {
		return cur.Clone(), err
	}
	s.games[id] = next.Clone()
	return next, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
