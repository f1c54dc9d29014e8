package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/taivu9x/bowling-score/internal/domain"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS bowling_games (
    id         TEXT PRIMARY KEY,
    status     TEXT NOT NULL,
    version    INTEGER NOT NULL DEFAULT 0,
    snapshot   TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bowling_games_status ON bowling_games(status);
`

// SQLiteStore keeps snapshots in a single database file.
type SQLiteStore struct {
	db *sql.DB
	// sqlite has one writer; this keeps read-modify-write cycles from
	// tripping over SQLITE_BUSY
	writeMu sync.Mutex
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, g domain.Game) error {
	snapshot, err := encodeSnapshot(g)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO bowling_games (id, status, version, snapshot, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		g.GameID, string(g.Status), g.Version, string(snapshot), formatTime(g.CreatedAt), formatTime(g.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, g.GameID)
		}
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (domain.Game, error) {
	return s.get(ctx, s.db, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) get(ctx context.Context, q queryRower, id string) (domain.Game, error) {
	var snapshot string
	err := q.QueryRowContext(ctx, "SELECT snapshot FROM bowling_games WHERE id = ?", id).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Game{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return domain.Game{}, fmt.Errorf("failed to get game: %w", err)
	}
	return decodeSnapshot([]byte(snapshot))
}

func (s *SQLiteStore) List(ctx context.Context, status domain.GameStatus) ([]domain.Game, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT snapshot FROM bowling_games WHERE ? = '' OR status = ? ORDER BY created_at DESC, id LIMIT 200",
		string(status), string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	res := []domain.Game{}
	for rows.Next() {
		var snapshot string
		if err := rows.Scan(&snapshot); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		g, err := decodeSnapshot([]byte(snapshot))
		if err != nil {
			return nil, err
		}
		res = append(res, g)
	}
	return res, rows.Err()
}

func (s *SQLiteStore) Update(ctx context.Context, id string, fn UpdateFunc) (domain.Game, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Game{}, fmt.Errorf("failed to begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cur, err := s.get(ctx, tx, id)
	if err != nil {
		return domain.Game{}, err
	}

	next, err := fn(cur.Clone())
	if err != nil {
		return cur, err
	}

	snapshot, err := encodeSnapshot(next)
	if err != nil {
		return cur, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE bowling_games SET status = ?, version = ?, snapshot = ?, updated_at = ? WHERE id = ?",
		string(next.Status), next.Version, string(snapshot), formatTime(next.UpdatedAt), id,
	); err != nil {
		return cur, fmt.Errorf("failed to update game: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return cur, fmt.Errorf("failed to commit: %w", err)
	}
	return next, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// formatTime keeps lexical order equal to time order.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
}
