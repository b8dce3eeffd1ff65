// Package storage provides SQLite-based persistence for match history.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/hockey-pong/internal/core"
	"github.com/vovakirdan/hockey-pong/internal/multiplayer"
)

// Store manages the SQLite database connection for match history.
type Store struct {
	db *sql.DB
}

// MatchRecord is one finished local match.
type MatchRecord struct {
	ID        int64
	Mode      string // "1-player" or "2-player"
	Player1   string
	Player2   string
	Score1    int
	Score2    int
	Winner    core.PlayerID
	Ticks     uint64
	CreatedAt time.Time
}

// WinnerName returns the name of the winning player, or "" if the match
// was abandoned.
func (m MatchRecord) WinnerName() string {
	switch m.Winner {
	case core.Player1:
		return m.Player1
	case core.Player2:
		return m.Player2
	default:
		return ""
	}
}

// OnlineMatchResult represents the outcome of an online match.
type OnlineMatchResult struct {
	ID             int64
	MatchID        string
	Code           string
	Player1Session string
	Player2Session string
	Player1Name    string
	Player2Name    string
	Score1         int
	Score2         int
	WinnerSession  string // Empty if nobody won
	EndReason      string
	Duration       int // Duration in seconds
	CreatedAt      time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			mode TEXT NOT NULL,
			player1 TEXT NOT NULL,
			player2 TEXT NOT NULL,
			score1 INTEGER NOT NULL DEFAULT 0,
			score2 INTEGER NOT NULL DEFAULT 0,
			winner INTEGER NOT NULL DEFAULT 0,
			ticks INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matches_mode ON matches(mode);

		CREATE TABLE IF NOT EXISTS online_matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			code TEXT NOT NULL DEFAULT '',
			player1_session TEXT NOT NULL,
			player2_session TEXT NOT NULL,
			player1_name TEXT NOT NULL DEFAULT '',
			player2_name TEXT NOT NULL DEFAULT '',
			score1 INTEGER NOT NULL DEFAULT 0,
			score2 INTEGER NOT NULL DEFAULT 0,
			winner_session TEXT,
			end_reason TEXT NOT NULL,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_online_matches_player1 ON online_matches(player1_session);
		CREATE INDEX IF NOT EXISTS idx_online_matches_player2 ON online_matches(player2_session);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// parseTime handles both time.Time and the SQLite text form of created_at.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// SaveMatch records a finished local match.
// Returns the ID of the inserted record.
func (s *Store) SaveMatch(m MatchRecord) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO matches (mode, player1, player2, score1, score2, winner, ticks)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.Mode, m.Player1, m.Player2, m.Score1, m.Score2, int(m.Winner), int64(m.Ticks), //nolint:gosec // tick counts fit
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save match: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// RecentMatches retrieves the newest local matches first.
func (s *Store) RecentMatches(limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, mode, player1, player2, score1, score2, winner, ticks, created_at
		 FROM matches
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	defer rows.Close()

	var records []MatchRecord
	for rows.Next() {
		var m MatchRecord
		var winner int
		var ticks int64
		var createdAt any
		if err := rows.Scan(&m.ID, &m.Mode, &m.Player1, &m.Player2, &m.Score1, &m.Score2, &winner, &ticks, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		m.Winner = core.PlayerID(winner)
		m.Ticks = uint64(ticks) //nolint:gosec // stored from a uint64
		m.CreatedAt = parseTime(createdAt)
		records = append(records, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return records, nil
}

// MatchStats contains aggregated results for one mode.
type MatchStats struct {
	Mode        string
	Matches     int
	Player1Wins int
	Player2Wins int
	Goals       int
	LastPlayed  time.Time
}

// Stats aggregates local matches of a mode.
func (s *Store) Stats(mode string) (*MatchStats, error) {
	stats := &MatchStats{Mode: mode}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN winner = 1 THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN winner = 2 THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(score1 + score2), 0),
		        MAX(created_at)
		 FROM matches WHERE mode = ?`,
		mode,
	).Scan(&stats.Matches, &stats.Player1Wins, &stats.Player2Wins, &stats.Goals, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get match stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)
	return stats, nil
}

// PlayerStanding is one row of the leaderboard.
type PlayerStanding struct {
	Name   string
	Wins   int
	Losses int
}

// Leaderboard ranks players of decided local and online matches by wins.
func (s *Store) Leaderboard(limit int) ([]PlayerStanding, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`WITH results AS (
			SELECT CASE winner WHEN 1 THEN player1 ELSE player2 END AS name, 1 AS win
			FROM matches WHERE winner IN (1, 2)
			UNION ALL
			SELECT CASE winner WHEN 1 THEN player2 ELSE player1 END, 0
			FROM matches WHERE winner IN (1, 2)
			UNION ALL
			SELECT CASE WHEN winner_session = player1_session THEN player1_name ELSE player2_name END, 1
			FROM online_matches WHERE winner_session IS NOT NULL AND winner_session != ''
			UNION ALL
			SELECT CASE WHEN winner_session = player1_session THEN player2_name ELSE player1_name END, 0
			FROM online_matches WHERE winner_session IS NOT NULL AND winner_session != ''
		)
		SELECT name, SUM(win), COUNT(*) - SUM(win)
		FROM results
		WHERE name != ''
		GROUP BY name
		ORDER BY SUM(win) DESC, COUNT(*) - SUM(win) ASC, name ASC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query leaderboard: %w", err)
	}
	defer rows.Close()

	var standings []PlayerStanding
	for rows.Next() {
		var p PlayerStanding
		if err := rows.Scan(&p.Name, &p.Wins, &p.Losses); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		standings = append(standings, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return standings, nil
}

// ClearMatches deletes the local match history.
func (s *Store) ClearMatches() error {
	if _, err := s.db.Exec("DELETE FROM matches"); err != nil {
		return fmt.Errorf("storage: cannot clear matches: %w", err)
	}
	return nil
}

// SaveOnlineMatch records the result of an online match.
// Returns the ID of the inserted record.
func (s *Store) SaveOnlineMatch(result OnlineMatchResult) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO online_matches
		 (match_id, code, player1_session, player2_session, player1_name, player2_name,
		  score1, score2, winner_session, end_reason, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.MatchID,
		result.Code,
		result.Player1Session,
		result.Player2Session,
		result.Player1Name,
		result.Player2Name,
		result.Score1,
		result.Score2,
		result.WinnerSession,
		result.EndReason,
		result.Duration,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save online match: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

const onlineColumns = `id, match_id, code, player1_session, player2_session, player1_name, player2_name,
	score1, score2, winner_session, end_reason, duration_secs, created_at`

func scanOnlineMatch(row rowScanner) (OnlineMatchResult, error) {
	var result OnlineMatchResult
	var createdAt any
	var winnerSession sql.NullString

	err := row.Scan(
		&result.ID,
		&result.MatchID,
		&result.Code,
		&result.Player1Session,
		&result.Player2Session,
		&result.Player1Name,
		&result.Player2Name,
		&result.Score1,
		&result.Score2,
		&winnerSession,
		&result.EndReason,
		&result.Duration,
		&createdAt,
	)
	if err != nil {
		return OnlineMatchResult{}, err
	}

	if winnerSession.Valid {
		result.WinnerSession = winnerSession.String
	}
	result.CreatedAt = parseTime(createdAt)
	return result, nil
}

// OnlineMatchByID retrieves an online match by its match ID.
// Returns nil without error when there is no such match.
func (s *Store) OnlineMatchByID(matchID string) (*OnlineMatchResult, error) {
	result, err := scanOnlineMatch(s.db.QueryRow(
		`SELECT `+onlineColumns+` FROM online_matches WHERE match_id = ?`,
		matchID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query online match: %w", err)
	}
	return &result, nil
}

// RecentOnlineMatches retrieves the most recent online matches.
func (s *Store) RecentOnlineMatches(limit int) ([]OnlineMatchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryOnline(
		`SELECT `+onlineColumns+`
		 FROM online_matches
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
}

// PlayerMatchHistory retrieves online matches a session or player name took part in.
func (s *Store) PlayerMatchHistory(player string, limit int) ([]OnlineMatchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryOnline(
		`SELECT `+onlineColumns+`
		 FROM online_matches
		 WHERE player1_session = ? OR player2_session = ? OR player1_name = ? OR player2_name = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		player, player, player, player, limit,
	)
}

func (s *Store) queryOnline(query string, args ...any) ([]OnlineMatchResult, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query online matches: %w", err)
	}
	defer rows.Close()

	var results []OnlineMatchResult
	for rows.Next() {
		result, err := scanOnlineMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return results, nil
}

// SaveMatchResult implements multiplayer.MatchResultSaver.
// This adapter allows the relay to save match results without direct storage dependency.
func (s *Store) SaveMatchResult(data multiplayer.MatchResultData) error {
	_, err := s.SaveOnlineMatch(OnlineMatchResult{
		MatchID:        data.MatchID,
		Code:           data.Code,
		Player1Session: data.Player1Session,
		Player2Session: data.Player2Session,
		Player1Name:    data.Player1Name,
		Player2Name:    data.Player2Name,
		Score1:         data.Score1,
		Score2:         data.Score2,
		WinnerSession:  data.WinnerSession,
		EndReason:      data.EndReason,
		Duration:       data.DurationSecs,
	})
	return err
}

// Ensure Store implements MatchResultSaver
var _ multiplayer.MatchResultSaver = (*Store)(nil)
