package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// Sample represents a recorded landmark sample for a symbol.
type Sample struct {
	ID          int64           `json:"id"`
	Symbol      gesture.Symbol  `json:"symbol"`
	SampleIndex int             `json:"sample_index"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SampleRepository provides operations on recorded template samples.
type SampleRepository struct {
	db *sql.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

// Append adds samples for a symbol after any already recorded, in a single
// transaction.
func (r *SampleRepository) Append(symbol gesture.Symbol, samples []json.RawMessage) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRow(
		`SELECT COALESCE(MAX(sample_index) + 1, 0) FROM template_samples WHERE symbol = ?`,
		string(symbol),
	).Scan(&next); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO template_samples (symbol, sample_index, data, created_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for i, data := range samples {
		if _, err := stmt.Exec(string(symbol), next+i, string(data), now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// List retrieves all samples for a symbol in recording order.
func (r *SampleRepository) List(symbol gesture.Symbol) ([]Sample, error) {
	rows, err := r.db.Query(
		`SELECT id, symbol, sample_index, data, created_at
		 FROM template_samples
		 WHERE symbol = ?
		 ORDER BY sample_index`,
		string(symbol),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		var sym, data string
		if err := rows.Scan(&s.ID, &sym, &s.SampleIndex, &data, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Symbol = gesture.Symbol(sym)
		s.Data = json.RawMessage(data)
		samples = append(samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// Delete removes all samples for a symbol.
func (r *SampleRepository) Delete(symbol gesture.Symbol) error {
	_, err := r.db.Exec(`DELETE FROM template_samples WHERE symbol = ?`, string(symbol))
	return err
}
