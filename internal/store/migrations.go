package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Finished game sessions
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			ended_at DATETIME NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			max_streak INTEGER NOT NULL DEFAULT 0,
			combos_completed INTEGER NOT NULL DEFAULT 0,
			combos_failed INTEGER NOT NULL DEFAULT 0,
			gestures INTEGER NOT NULL DEFAULT 0,
			accuracy REAL NOT NULL DEFAULT 0,
			mean_confidence REAL NOT NULL DEFAULT 0,
			objectives_completed INTEGER NOT NULL DEFAULT 0
		)`,

		// One row per scored combo completion
		`CREATE TABLE IF NOT EXISTS rewards (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			combo_id TEXT NOT NULL,
			base_points INTEGER NOT NULL,
			bonus_points INTEGER NOT NULL,
			total_points INTEGER NOT NULL,
			confidence REAL NOT NULL,
			streak_count INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		// Trained landmark templates, one per symbol
		`CREATE TABLE IF NOT EXISTS templates (
			symbol TEXT PRIMARY KEY,
			tolerance REAL NOT NULL,
			samples INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS template_landmarks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL REFERENCES templates(symbol) ON DELETE CASCADE,
			landmark_index INTEGER NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			z REAL NOT NULL
		)`,

		// Raw recorded samples a template is trained from
		`CREATE TABLE IF NOT EXISTS template_samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL,
			sample_index INTEGER NOT NULL,
			data TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Effect tag to plugin action bindings
		`CREATE TABLE IF NOT EXISTS effect_bindings (
			id TEXT PRIMARY KEY,
			effect_tag TEXT NOT NULL UNIQUE,
			plugin_name TEXT NOT NULL,
			action_name TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Key-value application settings
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_rewards_session_id ON rewards(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at)`,
		`CREATE INDEX IF NOT EXISTS idx_template_landmarks_symbol ON template_landmarks(symbol)`,
		`CREATE INDEX IF NOT EXISTS idx_template_samples_symbol ON template_samples(symbol)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
