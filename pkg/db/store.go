package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrPlayerNotFound is returned for a user that never started a session.
var ErrPlayerNotFound = errors.New("player not found")

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

const playerColumns = `user_id, username, score, questions_asked, mode, current_question, current_source, diagnosis_json, pitch_json, updated_at`

// UpsertPlayer creates the player and its stats row if missing, refreshes the
// username otherwise, and returns the stored session.
func UpsertPlayer(db DBExecutor, userID int64, username string) (Player, error) {
	name := strings.TrimSpace(username)

	p, err := scanPlayer(db.QueryRow(`INSERT INTO players (user_id, username) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
		  username = COALESCE(NULLIF(excluded.username, ''), players.username),
		  updated_at = unixepoch()
		RETURNING `+playerColumns, userID, name))
	if err != nil {
		return Player{}, fmt.Errorf("upsert player %d: %w", userID, err)
	}

	_, err = db.Exec(`INSERT INTO player_stats (user_id, username) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET username = excluded.username`, userID, p.UserName)
	if err != nil {
		return Player{}, fmt.Errorf("upsert stats %d: %w", userID, err)
	}
	return p, nil
}

// GetPlayer returns the session of userID or ErrPlayerNotFound.
func GetPlayer(db DBExecutor, userID int64) (Player, error) {
	p, err := scanPlayer(db.QueryRow(`SELECT `+playerColumns+` FROM players WHERE user_id = ?`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return Player{}, ErrPlayerNotFound
	}
	if err != nil {
		return Player{}, fmt.Errorf("get player %d: %w", userID, err)
	}
	return p, nil
}

// SavePlayer overwrites the session fields of an existing player.
func SavePlayer(db DBExecutor, p Player) error {
	res, err := db.Exec(`UPDATE players SET
		  username = ?, score = ?, questions_asked = ?, mode = ?,
		  current_question = ?, current_source = ?, diagnosis_json = ?, pitch_json = ?,
		  updated_at = unixepoch()
		WHERE user_id = ?`,
		p.UserName, p.Score, p.QuestionsAsked, p.Mode,
		p.CurrentQuestion, p.CurrentSource, p.DiagnosisJSON, p.PitchJSON,
		p.UserID)
	if err != nil {
		return fmt.Errorf("save player %d: %w", p.UserID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// AddScore adds points to the current game and counts answered questions. It
// returns the new score.
func AddScore(db DBExecutor, userID int64, points, questions int) (int, error) {
	if points < 0 {
		return 0, fmt.Errorf("points must not be negative, got %d", points)
	}
	var score int
	err := db.QueryRow(`UPDATE players SET
		  score = score + ?, questions_asked = questions_asked + ?, updated_at = unixepoch()
		WHERE user_id = ? RETURNING score`, points, questions, userID).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrPlayerNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("add score %d: %w", userID, err)
	}
	return score, nil
}

// EndGame rolls the current score into the player's stats, resets the session
// to the menu and returns the updated stats.
func EndGame(db DBExecutor, userID int64) (Stats, error) {
	p, err := GetPlayer(db, userID)
	if err != nil {
		return Stats{}, err
	}

	var s Stats
	err = db.QueryRow(`UPDATE player_stats SET
		  total_score = total_score + ?,
		  games_played = games_played + 1,
		  best_score = MAX(best_score, ?)
		WHERE user_id = ?
		RETURNING user_id, username, total_score, games_played, best_score`,
		p.Score, p.Score, userID).Scan(&s.UserID, &s.UserName, &s.TotalScore, &s.GamesPlayed, &s.BestScore)
	if err != nil {
		return Stats{}, fmt.Errorf("end game %d: %w", userID, err)
	}

	p.Score = 0
	p.QuestionsAsked = 0
	p.Mode = ModeMenu
	p.CurrentQuestion, p.CurrentSource = "", ""
	p.DiagnosisJSON, p.PitchJSON = "", ""
	if err := SavePlayer(db, p); err != nil {
		return Stats{}, err
	}
	return s, nil
}

// GetStats returns the accumulated stats of userID.
func GetStats(db DBExecutor, userID int64) (Stats, error) {
	var s Stats
	err := db.QueryRow(`SELECT user_id, username, total_score, games_played, best_score
		FROM player_stats WHERE user_id = ?`, userID).
		Scan(&s.UserID, &s.UserName, &s.TotalScore, &s.GamesPlayed, &s.BestScore)
	if errors.Is(err, sql.ErrNoRows) {
		return Stats{}, ErrPlayerNotFound
	}
	if err != nil {
		return Stats{}, fmt.Errorf("get stats %d: %w", userID, err)
	}
	return s, nil
}

// Leaderboard returns up to limit players ordered by best score, then total
// score. Players that never finished a game are left out.
func Leaderboard(db DBExecutor, limit int) ([]Stats, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.Query(`SELECT user_id, username, total_score, games_played, best_score
		FROM player_stats
		WHERE games_played > 0
		ORDER BY best_score DESC, total_score DESC, user_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var out []Stats
	for rows.Next() {
		var s Stats
		if err := rows.Scan(&s.UserID, &s.UserName, &s.TotalScore, &s.GamesPlayed, &s.BestScore); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// RecordAnalysis appends a to the history and returns its id.
func RecordAnalysis(db DBExecutor, a Analysis) (int64, error) {
	if strings.TrimSpace(a.Question) == "" {
		return 0, fmt.Errorf("question must be non-empty")
	}
	res, err := db.Exec(`INSERT INTO analyses
		  (run_id, question, source, kind, categories, confidence, startup_name, hype_level, viability)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.RunID, a.Question, a.Source, a.Kind, strings.Join(a.Categories, ","),
		a.Confidence, a.StartupName, a.HypeLevel, a.Viability)
	if err != nil {
		return 0, fmt.Errorf("record analysis: %w", err)
	}
	return res.LastInsertId()
}

// CountAnalyses counts the recorded analyses of a run, or all of them when
// runID is empty.
func CountAnalyses(db DBExecutor, runID string) (int, error) {
	var n int
	var err error
	if runID == "" {
		err = db.QueryRow(`SELECT COUNT(*) FROM analyses`).Scan(&n)
	} else {
		err = db.QueryRow(`SELECT COUNT(*) FROM analyses WHERE run_id = ?`, runID).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("count analyses: %w", err)
	}
	return n, nil
}

// GetAnalyses returns the analyses of a run in insertion order.
func GetAnalyses(db DBExecutor, runID string) ([]Analysis, error) {
	rows, err := db.Query(`SELECT id, run_id, question, source, kind, categories, confidence,
		  startup_name, hype_level, viability, created_at
		FROM analyses WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("get analyses: %w", err)
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		var a Analysis
		var cats string
		var created int64
		if err := rows.Scan(&a.ID, &a.RunID, &a.Question, &a.Source, &a.Kind, &cats, &a.Confidence,
			&a.StartupName, &a.HypeLevel, &a.Viability, &created); err != nil {
			return nil, err
		}
		a.CreatedAt = time.Unix(created, 0)
		if cats != "" {
			a.Categories = strings.Split(cats, ",")
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Achievement names the rank earned by a best score.
func Achievement(best int) string {
	switch {
	case best >= 100:
		return "🥇 Мастер боли"
	case best >= 50:
		return "🥈 Знаток"
	default:
		return "🥉 Новичок"
	}
}

func scanPlayer(row *sql.Row) (Player, error) {
	var p Player
	var updated int64
	err := row.Scan(&p.UserID, &p.UserName, &p.Score, &p.QuestionsAsked, &p.Mode,
		&p.CurrentQuestion, &p.CurrentSource, &p.DiagnosisJSON, &p.PitchJSON, &updated)
	p.UpdatedAt = time.Unix(updated, 0)
	return p, err
}
