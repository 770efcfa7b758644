package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// Template is a trained landmark template stored in the database.
type Template struct {
	Symbol    gesture.Symbol
	Tolerance float64
	Samples   int
	Landmarks []detector.Point3D
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Gesture converts the record into a matcher template.
func (t *Template) Gesture() *gesture.Template {
	return &gesture.Template{
		Symbol:    t.Symbol,
		Landmarks: append([]detector.Point3D(nil), t.Landmarks...),
		Tolerance: t.Tolerance,
		Samples:   t.Samples,
	}
}

// TemplateRepository provides CRUD operations for symbol templates.
type TemplateRepository struct {
	db *sql.DB
}

// Templates returns the template repository for this store.
func (s *Store) Templates() *TemplateRepository {
	return &TemplateRepository{db: s.db}
}

// Save inserts or replaces the template for t.Symbol together with its
// landmarks.
func (r *TemplateRepository) Save(t *Template) error {
	now := time.Now()
	t.UpdatedAt = now

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var created time.Time
	err = tx.QueryRow(`SELECT created_at FROM templates WHERE symbol = ?`, string(t.Symbol)).Scan(&created)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		t.CreatedAt = now
		_, err = tx.Exec(
			`INSERT INTO templates (symbol, tolerance, samples, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?)`,
			string(t.Symbol), t.Tolerance, t.Samples, t.CreatedAt, t.UpdatedAt,
		)
	case err == nil:
		t.CreatedAt = created
		_, err = tx.Exec(
			`UPDATE templates SET tolerance = ?, samples = ?, updated_at = ? WHERE symbol = ?`,
			t.Tolerance, t.Samples, t.UpdatedAt, string(t.Symbol),
		)
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM template_landmarks WHERE symbol = ?`, string(t.Symbol)); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO template_landmarks (symbol, landmark_index, x, y, z) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range t.Landmarks {
		if _, err := stmt.Exec(string(t.Symbol), i, p.X, p.Y, p.Z); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Get retrieves the template for a symbol.
func (r *TemplateRepository) Get(symbol gesture.Symbol) (*Template, error) {
	t := &Template{}
	var sym string

	err := r.db.QueryRow(
		`SELECT symbol, tolerance, samples, created_at, updated_at
		 FROM templates WHERE symbol = ?`,
		string(symbol),
	).Scan(&sym, &t.Tolerance, &t.Samples, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t.Symbol = gesture.Symbol(sym)

	if t.Landmarks, err = r.landmarks(t.Symbol); err != nil {
		return nil, err
	}
	return t, nil
}

// List retrieves all templates ordered by symbol.
func (r *TemplateRepository) List() ([]*Template, error) {
	rows, err := r.db.Query(
		`SELECT symbol, tolerance, samples, created_at, updated_at
		 FROM templates ORDER BY symbol`,
	)
	if err != nil {
		return nil, err
	}

	var templates []*Template
	for rows.Next() {
		t := &Template{}
		var sym string
		if err := rows.Scan(&sym, &t.Tolerance, &t.Samples, &t.CreatedAt, &t.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		t.Symbol = gesture.Symbol(sym)
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Landmarks are loaded after the outer rows are released.
	for _, t := range templates {
		if t.Landmarks, err = r.landmarks(t.Symbol); err != nil {
			return nil, err
		}
	}

	return templates, nil
}

func (r *TemplateRepository) landmarks(symbol gesture.Symbol) ([]detector.Point3D, error) {
	rows, err := r.db.Query(
		`SELECT x, y, z FROM template_landmarks WHERE symbol = ? ORDER BY landmark_index`,
		string(symbol),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []detector.Point3D
	for rows.Next() {
		var p detector.Point3D
		if err := rows.Scan(&p.X, &p.Y, &p.Z); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Delete removes the template for a symbol.
func (r *TemplateRepository) Delete(symbol gesture.Symbol) error {
	result, err := r.db.Exec(`DELETE FROM templates WHERE symbol = ?`, string(symbol))
	if err != nil {
		return err
	}
	return affected(result)
}
