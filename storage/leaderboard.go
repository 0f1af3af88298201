// Package storage persists retirement records to PostgreSQL and serves the
// leaderboard queries behind /game/records.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// EnvDatabaseURL names the environment variable holding the PostgreSQL URL.
// The server refuses to start without it.
const EnvDatabaseURL = "GAME_DB_URL"

const (
	defaultRecordsOffset = 0
	defaultRecordsLimit  = 100
)

// Record is one leaderboard row. PlayTime is in seconds.
type Record struct {
	Name     string
	PlayTime float64
	Score    int
}

// Leaderboard stores retirement records in PostgreSQL.
type Leaderboard struct {
	db *sql.DB
}

// OpenLeaderboard connects to dbURL, caps the pool at maxConns and creates
// the schema if it is missing.
func OpenLeaderboard(ctx context.Context, dbURL string, maxConns int) (*Leaderboard, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(maxConns)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS retired_players (
			id SERIAL PRIMARY KEY,
			name varchar(100) NOT NULL,
			total_time double precision NOT NULL,
			score int NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_retired_players_score_time_name
			ON retired_players (score DESC, total_time ASC, name ASC)`,
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &Leaderboard{db: db}, nil
}

// SaveRetired inserts one retirement record. playTimeMs is converted to
// seconds for storage.
func (l *Leaderboard) SaveRetired(ctx context.Context, name string, playTimeMs float64, score int) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO retired_players (name, total_time, score) VALUES ($1, $2, $3)`,
		name, playTimeMs/1000, score)
	if err != nil {
		return fmt.Errorf("save retired player: %w", err)
	}
	return nil
}

// Records returns leaderboard rows ordered by score (best first), ties broken
// by shorter play time, then name. Negative start or maxItems fall back to
// the defaults (0 and 100).
func (l *Leaderboard) Records(ctx context.Context, start, maxItems int) ([]Record, error) {
	offset := defaultRecordsOffset
	if start >= 0 {
		offset = start
	}
	limit := defaultRecordsLimit
	if maxItems >= 0 {
		limit = maxItems
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT name, total_time, score
		 FROM retired_players
		 ORDER BY score DESC, total_time ASC, name ASC
		 OFFSET $1 LIMIT $2`,
		offset, limit)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Name, &r.PlayTime, &r.Score); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return records, nil
}

// Close releases the connection pool.
func (l *Leaderboard) Close() error {
	return l.db.Close()
}
