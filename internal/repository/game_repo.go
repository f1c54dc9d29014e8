package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/taivu9x/bowling-score/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GameRepository stores snapshots in Postgres, one JSONB row per game.
type GameRepository struct {
	db *pgxpool.Pool
}

func NewGameRepository(db *pgxpool.Pool) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) Create(ctx context.Context, g domain.Game) error {
	snapshot, err := encodeSnapshot(g)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO bowling_games (id, status, version, snapshot, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		g.GameID,
		string(g.Status),
		g.Version,
		snapshot,
		g.CreatedAt,
		g.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, g.GameID)
	}
	return err
}

func (r *GameRepository) Get(ctx context.Context, id string) (domain.Game, error) {
	var snapshot []byte
	err := r.db.QueryRow(ctx, `SELECT snapshot FROM bowling_games WHERE id=$1`, id).Scan(&snapshot)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Game{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return domain.Game{}, err
	}
	return decodeSnapshot(snapshot)
}

func (r *GameRepository) List(ctx context.Context, status domain.GameStatus) ([]domain.Game, error) {
	rows, err := r.db.Query(ctx,
		`SELECT snapshot
		 FROM bowling_games
		 WHERE $1 = '' OR status = $1
		 ORDER BY created_at DESC, id
		 LIMIT 200`,
		string(status),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []domain.Game{}
	for rows.Next() {
		var snapshot []byte
		if err := rows.Scan(&snapshot); err != nil {
			return nil, err
		}
		g, err := decodeSnapshot(snapshot)
		if err != nil {
			return nil, err
		}
		res = append(res, g)
	}
	return res, rows.Err()
}

// Update locks the row for the length of the transaction, so concurrent
// writers on other instances queue behind it.
func (r *GameRepository) Update(ctx context.Context, id string, fn UpdateFunc) (domain.Game, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Game{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var snapshot []byte
	err = tx.QueryRow(ctx, `SELECT snapshot FROM bowling_games WHERE id=$1 FOR UPDATE`, id).Scan(&snapshot)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Game{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return domain.Game{}, err
	}
	cur, err := decodeSnapshot(snapshot)
	if err != nil {
		return domain.Game{}, err
	}

	next, err := fn(cur.Clone())
	if err != nil {
		return cur, err
	}

	encoded, err := encodeSnapshot(next)
	if err != nil {
		return cur, err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE bowling_games SET status=$2, version=$3, snapshot=$4, updated_at=$5 WHERE id=$1`,
		id, string(next.Status), next.Version, encoded, next.UpdatedAt,
	); err != nil {
		return cur, err
	}

	if err := tx.Commit(ctx); err != nil {
		return cur, err
	}
	return next, nil
}

func (r *GameRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *GameRepository) Close() error {
	r.db.Close()
	return nil
}
