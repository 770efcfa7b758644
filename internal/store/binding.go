package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Binding maps an effect tag to the plugin action that renders it.
type Binding struct {
	ID         string
	EffectTag  string
	PluginName string
	ActionName string
	Config     json.RawMessage
	Enabled    bool
	CreatedAt  time.Time
}

// BindingRepository provides CRUD operations for effect bindings.
type BindingRepository struct {
	db *sql.DB
}

// Bindings returns the binding repository for this store.
func (s *Store) Bindings() *BindingRepository {
	return &BindingRepository{db: s.db}
}

const bindingColumns = `id, effect_tag, plugin_name, action_name, config, enabled, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanBinding(row scanner) (*Binding, error) {
	b := &Binding{}
	var config string
	var enabled int

	if err := row.Scan(&b.ID, &b.EffectTag, &b.PluginName, &b.ActionName, &config, &enabled, &b.CreatedAt); err != nil {
		return nil, err
	}

	b.Config = json.RawMessage(config)
	b.Enabled = enabled != 0
	return b, nil
}

func bindingConfig(b *Binding) string {
	if len(b.Config) == 0 {
		return "{}"
	}
	return string(b.Config)
}

// Create inserts a new binding into the database.
func (r *BindingRepository) Create(b *Binding) error {
	b.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO effect_bindings (`+bindingColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.EffectTag, b.PluginName, b.ActionName, bindingConfig(b), b.Enabled, b.CreatedAt,
	)
	return err
}

// GetByID retrieves a binding by its ID.
func (r *BindingRepository) GetByID(id string) (*Binding, error) {
	b, err := scanBinding(r.db.QueryRow(`SELECT `+bindingColumns+` FROM effect_bindings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// GetByEffectTag retrieves the binding for an effect tag.
// Returns nil, nil if no plugin renders the tag.
func (r *BindingRepository) GetByEffectTag(tag string) (*Binding, error) {
	b, err := scanBinding(r.db.QueryRow(`SELECT `+bindingColumns+` FROM effect_bindings WHERE effect_tag = ?`, tag))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

// List retrieves all bindings from the database.
func (r *BindingRepository) List() ([]*Binding, error) {
	rows, err := r.db.Query(`SELECT ` + bindingColumns + ` FROM effect_bindings ORDER BY effect_tag`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bindings []*Binding
	for rows.Next() {
		b, err := scanBinding(rows)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bindings, nil
}

// Update updates an existing binding in the database.
func (r *BindingRepository) Update(b *Binding) error {
	result, err := r.db.Exec(
		`UPDATE effect_bindings SET effect_tag = ?, plugin_name = ?, action_name = ?, config = ?, enabled = ?
		 WHERE id = ?`,
		b.EffectTag, b.PluginName, b.ActionName, bindingConfig(b), b.Enabled, b.ID,
	)
	if err != nil {
		return err
	}
	return affected(result)
}

// Delete removes a binding from the database by its ID.
func (r *BindingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM effect_bindings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(result)
}
