package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/taivu9x/bowling-score/internal/domain"
)

var (
	ErrNotFound      = errors.New("game not found")
	ErrAlreadyExists = errors.New("game already exists")
)

// UpdateFunc derives the next snapshot from the stored one. Returning an error
// aborts the write; the stored snapshot is handed back to the caller as is.
type UpdateFunc func(domain.Game) (domain.Game, error)

// GameStore persists whole game snapshots. Implementations serialise Update
// calls for the same game.
type GameStore interface {
	Create(ctx context.Context, g domain.Game) error
	Get(ctx context.Context, id string) (domain.Game, error)
	// List returns games newest first; an empty status matches all.
	List(ctx context.Context, status domain.GameStatus) ([]domain.Game, error)
	Update(ctx context.Context, id string, fn UpdateFunc) (domain.Game, error)
	Ping(ctx context.Context) error
	Close() error
}

func encodeSnapshot(g domain.Game) ([]byte, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encode game %s: %w", g.GameID, err)
	}
	return b, nil
}

func decodeSnapshot(b []byte) (domain.Game, error) {
	var g domain.Game
	if err := json.Unmarshal(b, &g); err != nil {
		return domain.Game{}, fmt.Errorf("decode game: %w", err)
	}
	if g.PlayerStates == nil {
		g.PlayerStates = []domain.PlayerState{}
	}
	return g, nil
}
