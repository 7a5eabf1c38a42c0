package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/park285/cheese-match/internal/domain"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS match_results (
	match_id        TEXT PRIMARY KEY,
	mode            TEXT NOT NULL,
	budget_ms       BIGINT NOT NULL,
	outcome         TEXT NOT NULL,
	winner          TEXT NOT NULL DEFAULT '',
	final_fen       TEXT NOT NULL,
	move_count      INTEGER NOT NULL,
	captured_white  TEXT[] NOT NULL DEFAULT '{}',
	captured_black  TEXT[] NOT NULL DEFAULT '{}',
	white_left_ms   BIGINT NOT NULL,
	black_left_ms   BIGINT NOT NULL,
	started_at      TIMESTAMPTZ NOT NULL,
	ended_at        TIMESTAMPTZ NOT NULL,
	duration_ms     BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS match_results_ended_at_idx ON match_results (ended_at DESC);`

const selectColumns = `
	match_id, mode, budget_ms, outcome, winner, final_fen, move_count,
	captured_white, captured_black, white_left_ms, black_left_ms, started_at, ended_at`

// PostgresStore writes records to the match_results table.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres opens and pings a lib/pq connection pool.
func OpenPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("DATABASE_URL is required for postgres archive")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, errors.New("nil database handle")
	}
	return &PostgresStore{db: db}, nil
}

// EnsureSchema creates the table and index when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure match_results schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresStore) Record(ctx context.Context, rec *domain.MatchRecord) error {
	if err := validate(rec); err != nil {
		return err
	}
	const query = `
		INSERT INTO match_results (
			match_id, mode, budget_ms, outcome, winner, final_fen, move_count,
			captured_white, captured_black, white_left_ms, black_left_ms,
			started_at, ended_at, duration_ms
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (match_id) DO NOTHING
		RETURNING match_id`

	var id string
	err := s.db.QueryRowContext(ctx, query, insertArgs(rec)...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrDuplicateMatch
	}
	if err != nil {
		return fmt.Errorf("insert match result: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, matchID string) (*domain.MatchRecord, error) {
	query := `SELECT` + selectColumns + ` FROM match_results WHERE match_id = $1`
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, matchID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select match result: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]*domain.MatchRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT` + selectColumns + ` FROM match_results ORDER BY ended_at DESC LIMIT $1`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select match results: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.MatchRecord, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match result: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match results: %w", err)
	}
	return out, nil
}

func insertArgs(rec *domain.MatchRecord) []any {
	return []any{
		rec.MatchID,
		rec.Mode,
		rec.Budget.Milliseconds(),
		rec.Outcome,
		rec.Winner,
		rec.FinalFEN,
		rec.MoveCount,
		pq.Array(nonNil(rec.CapturedWhite)),
		pq.Array(nonNil(rec.CapturedBlack)),
		rec.WhiteLeft.Milliseconds(),
		rec.BlackLeft.Milliseconds(),
		rec.StartedAt.UTC(),
		rec.EndedAt.UTC(),
		rec.Duration().Milliseconds(),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.MatchRecord, error) {
	var (
		rec                  domain.MatchRecord
		budgetMS             int64
		whiteMS, blackMS     int64
		capturedW, capturedB []string
	)
	if err := row.Scan(
		&rec.MatchID,
		&rec.Mode,
		&budgetMS,
		&rec.Outcome,
		&rec.Winner,
		&rec.FinalFEN,
		&rec.MoveCount,
		pq.Array(&capturedW),
		pq.Array(&capturedB),
		&whiteMS,
		&blackMS,
		&rec.StartedAt,
		&rec.EndedAt,
	); err != nil {
		return nil, err
	}
	rec.Budget = time.Duration(budgetMS) * time.Millisecond
	rec.WhiteLeft = time.Duration(whiteMS) * time.Millisecond
	rec.BlackLeft = time.Duration(blackMS) * time.Millisecond
	rec.CapturedWhite = capturedW
	rec.CapturedBlack = capturedB
	return &rec, nil
}
