// Package journal persists resolved hands to a local sqlite database so a
// match can be inspected after the harness has gone away.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Hand is one resolved hand as seen by the agent.
type Hand struct {
	MatchID    string
	HandNumber int
	Reward     float64
	Won        bool
	Strategy   string
	RecordedAt time.Time
}

// Summary aggregates the hands of one match.
type Summary struct {
	MatchID     string    `json:"match_id"`
	Hands       int       `json:"hands"`
	Won         int       `json:"won"`
	TotalReward float64   `json:"total_reward"`
	FirstHand   time.Time `json:"first_hand"`
	LastHand    time.Time `json:"last_hand"`
}

// WinRate is hands won over hands recorded.
func (s Summary) WinRate() float64 {
	if s.Hands == 0 {
		return 0
	}
	return float64(s.Won) / float64(s.Hands)
}

// Journal is a sqlite-backed hand log. It is safe for concurrent use.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the journal at path. ":memory:" is accepted.
func Open(path string) (*Journal, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("empty journal path")
	}
	if path != ":memory:" {
		if parent := filepath.Dir(path); parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create journal directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to configure journal: %w", err)
		}
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Journal{db: db, now: time.Now}, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range []string{`
CREATE TABLE IF NOT EXISTS hands (
    match_id       TEXT    NOT NULL,
    hand_number    INTEGER NOT NULL,
    reward         REAL    NOT NULL,
    won            INTEGER NOT NULL,
    strategy       TEXT    NOT NULL DEFAULT '',
    recorded_at_ms INTEGER NOT NULL,
    PRIMARY KEY (match_id, hand_number)
)`,
		`CREATE INDEX IF NOT EXISTS hands_recorded_at ON hands (recorded_at_ms)`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create journal schema: %w", err)
		}
	}
	return nil
}

// Close releases the database.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record stores h. A hand already recorded for the same match is left as is.
func (j *Journal) Record(ctx context.Context, h Hand) error {
	if h.MatchID == "" {
		return fmt.Errorf("hand %d has no match id", h.HandNumber)
	}
	at := h.RecordedAt
	if at.IsZero() {
		at = j.now()
	}
	_, err := j.db.ExecContext(ctx, `
INSERT INTO hands (match_id, hand_number, reward, won, strategy, recorded_at_ms)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (match_id, hand_number) DO NOTHING
`, h.MatchID, h.HandNumber, h.Reward, h.Won, h.Strategy, at.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record hand %d: %w", h.HandNumber, err)
	}
	return nil
}

// Hands returns the hands of a match in hand order. A limit of zero or less
// returns every hand.
func (j *Journal) Hands(ctx context.Context, matchID string, limit int) ([]Hand, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT match_id, hand_number, reward, won, strategy, recorded_at_ms
FROM hands
WHERE match_id = ?
ORDER BY hand_number
LIMIT ?
`, matchID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query hands: %w", err)
	}
	defer rows.Close()

	var hands []Hand
	for rows.Next() {
		var h Hand
		var atMs int64
		if err := rows.Scan(&h.MatchID, &h.HandNumber, &h.Reward, &h.Won, &h.Strategy, &atMs); err != nil {
			return nil, fmt.Errorf("failed to scan hand: %w", err)
		}
		h.RecordedAt = time.UnixMilli(atMs).UTC()
		hands = append(hands, h)
	}
	return hands, rows.Err()
}

// Summaries aggregates every match, most recent first.
func (j *Journal) Summaries(ctx context.Context) ([]Summary, error) {
	rows, err := j.db.QueryContext(ctx, `
SELECT match_id, COUNT(*), COALESCE(SUM(won), 0), COALESCE(SUM(reward), 0),
       MIN(recorded_at_ms), MAX(recorded_at_ms)
FROM hands
GROUP BY match_id
ORDER BY MAX(recorded_at_ms) DESC, match_id
`)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		var firstMs, lastMs int64
		if err := rows.Scan(&s.MatchID, &s.Hands, &s.Won, &s.TotalReward, &firstMs, &lastMs); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		s.FirstHand = time.UnixMilli(firstMs).UTC()
		s.LastHand = time.UnixMilli(lastMs).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

// Summary aggregates one match. An unknown match yields a zero summary.
func (j *Journal) Summary(ctx context.Context, matchID string) (Summary, error) {
	all, err := j.Summaries(ctx)
	if err != nil {
		return Summary{}, err
	}
	for _, s := range all {
		if s.MatchID == matchID {
			return s, nil
		}
	}
	return Summary{MatchID: matchID}, nil
}
