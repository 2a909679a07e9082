package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Touch events table - stores individual alert events
		`CREATE TABLE IF NOT EXISTS touch_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id TEXT NOT NULL UNIQUE,
			timestamp TEXT NOT NULL,
			duration REAL NOT NULL,
			closest_distance REAL NOT NULL,
			date TEXT NOT NULL,
			hour INTEGER NOT NULL
		)`,

		// Daily summaries table - cached per-day statistics
		`CREATE TABLE IF NOT EXISTS daily_summaries (
			date TEXT PRIMARY KEY,
			total_touches INTEGER NOT NULL,
			total_duration REAL NOT NULL,
			first_touch TEXT,
			last_touch TEXT
		)`,

		// Indexes for faster queries
		`CREATE INDEX IF NOT EXISTS idx_events_date ON touch_events(date)`,
		`CREATE INDEX IF NOT EXISTS idx_events_timestamp ON touch_events(timestamp)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
