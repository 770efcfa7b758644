package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/session"
)

// SessionRecord is a finished session stored in the database.
type SessionRecord struct {
	ID                  string    `json:"id"`
	Mode                string    `json:"mode"`
	StartedAt           time.Time `json:"started_at"`
	EndedAt             time.Time `json:"ended_at"`
	Score               int       `json:"score"`
	MaxStreak           int       `json:"max_streak"`
	CombosCompleted     int       `json:"combos_completed"`
	CombosFailed        int       `json:"combos_failed"`
	Gestures            int       `json:"gestures"`
	Accuracy            float64   `json:"accuracy"`
	MeanConfidence      float64   `json:"mean_confidence"`
	ObjectivesCompleted int       `json:"objectives_completed"`
}

// RewardRecord is one scored combo completion of a stored session.
type RewardRecord struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"`
	ComboID     string    `json:"combo_id"`
	BasePoints  int       `json:"base_points"`
	BonusPoints int       `json:"bonus_points"`
	TotalPoints int       `json:"total_points"`
	Confidence  float64   `json:"confidence"`
	StreakCount int       `json:"streak_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// SessionRepository stores finished sessions and their rewards.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// RecordSession stores a session summary and its rewards in one transaction.
// It satisfies session.Recorder.
func (r *SessionRepository) RecordSession(ctx context.Context, sum session.Summary) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, mode, started_at, ended_at, score, max_streak, combos_completed,
		   combos_failed, gestures, accuracy, mean_confidence, objectives_completed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.ID, sum.Mode, sum.StartedAt, sum.EndedAt, sum.Score, sum.MaxStreak, sum.CombosCompleted,
		sum.CombosFailed, sum.Gestures, sum.Accuracy, sum.MeanConfidence, sum.ObjectivesCompleted,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO rewards (session_id, combo_id, base_points, bonus_points, total_points,
		   confidence, streak_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rw := range sum.Rewards {
		if _, err := stmt.ExecContext(ctx,
			sum.ID, rw.ComboID, rw.BasePoints, rw.BonusPoints, rw.TotalPoints,
			rw.ConfidenceAtCompletion, rw.StreakCountAtCompletion, rw.Timestamp,
		); err != nil {
			return fmt.Errorf("insert reward: %w", err)
		}
	}

	return tx.Commit()
}

const sessionColumns = `id, mode, started_at, ended_at, score, max_streak, combos_completed,
	combos_failed, gestures, accuracy, mean_confidence, objectives_completed`

func scanSession(row scanner) (*SessionRecord, error) {
	s := &SessionRecord{}
	err := row.Scan(&s.ID, &s.Mode, &s.StartedAt, &s.EndedAt, &s.Score, &s.MaxStreak, &s.CombosCompleted,
		&s.CombosFailed, &s.Gestures, &s.Accuracy, &s.MeanConfidence, &s.ObjectivesCompleted)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a stored session.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*SessionRecord, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// List retrieves the most recent sessions, newest first. A limit of zero or
// less returns every session.
func (r *SessionRepository) List(ctx context.Context, limit int) ([]*SessionRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY ended_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*SessionRecord
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Rewards retrieves the rewards of a session in completion order.
func (r *SessionRepository) Rewards(ctx context.Context, sessionID string) ([]RewardRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, combo_id, base_points, bonus_points, total_points, confidence,
		   streak_count, created_at
		 FROM rewards WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rewards []RewardRecord
	for rows.Next() {
		var rw RewardRecord
		if err := rows.Scan(&rw.ID, &rw.SessionID, &rw.ComboID, &rw.BasePoints, &rw.BonusPoints,
			&rw.TotalPoints, &rw.Confidence, &rw.StreakCount, &rw.CreatedAt); err != nil {
			return nil, err
		}
		rewards = append(rewards, rw)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rewards, nil
}

// Delete removes a stored session and its rewards.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(result)
}

var _ session.Recorder = (*SessionRepository)(nil)
