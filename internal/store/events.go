package store

import (
	"database/sql"
	"time"
)

// DateLayout is the calendar date format used as a bucket key.
const DateLayout = "2006-01-02"

// TouchEvent represents a persisted alert event.
type TouchEvent struct {
	ID              int64     `json:"id"`
	EventID         string    `json:"event_id"`
	Timestamp       time.Time `json:"timestamp"`
	Duration        float64   `json:"duration"` // seconds near head before the alert
	ClosestDistance float64   `json:"closest_distance"`
	Date            string    `json:"date"`
	Hour            int       `json:"hour"`
}

// EventRepository provides access to touch events and their daily summaries.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Insert stores an event and refreshes its day's summary in one transaction.
// Date and hour buckets are derived from the event timestamp.
func (r *EventRepository) Insert(eventID string, ts time.Time, duration, closestDistance float64) error {
	date := ts.Format(DateLayout)
	hour := ts.Hour()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO touch_events (event_id, timestamp, duration, closest_distance, date, hour)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		eventID, ts.Format(time.RFC3339Nano), duration, closestDistance, date, hour,
	)
	if err != nil {
		return err
	}

	clock := ts.Format("15:04")
	_, err = tx.Exec(
		`INSERT INTO daily_summaries (date, total_touches, total_duration, first_touch, last_touch)
		 VALUES (?, 1, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
			total_touches = total_touches + 1,
			total_duration = total_duration + excluded.total_duration,
			first_touch = MIN(first_touch, excluded.first_touch),
			last_touch = MAX(last_touch, excluded.last_touch)`,
		date, duration, clock, clock,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// DailyCounts returns touch counts per date over the whole history.
func (r *EventRepository) DailyCounts() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT date, total_touches FROM daily_summaries`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var date string
		var count int
		if err := rows.Scan(&date, &count); err != nil {
			return nil, err
		}
		counts[date] = count
	}

	return counts, rows.Err()
}

// CountsBetween returns touch counts per date within [from, to] inclusive.
func (r *EventRepository) CountsBetween(from, to string) (map[string]int, error) {
	rows, err := r.db.Query(
		`SELECT date, total_touches FROM daily_summaries WHERE date >= ? AND date <= ?`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var date string
		var count int
		if err := rows.Scan(&date, &count); err != nil {
			return nil, err
		}
		counts[date] = count
	}

	return counts, rows.Err()
}

// Recent returns the most recent events, newest first.
func (r *EventRepository) Recent(limit int) ([]TouchEvent, error) {
	rows, err := r.db.Query(
		`SELECT id, event_id, timestamp, duration, closest_distance, date, hour
		 FROM touch_events
		 ORDER BY timestamp DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []TouchEvent
	for rows.Next() {
		var e TouchEvent
		var ts string
		if err := rows.Scan(&e.ID, &e.EventID, &ts, &e.Duration, &e.ClosestDistance, &e.Date, &e.Hour); err != nil {
			return nil, err
		}
		e.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// HourlyPattern returns touch counts per hour of day for events on or
// after the given date.
func (r *EventRepository) HourlyPattern(since string) (map[int]int, error) {
	rows, err := r.db.Query(
		`SELECT hour, COUNT(*) FROM touch_events WHERE date >= ? GROUP BY hour`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hourly := make(map[int]int, 24)
	for h := 0; h < 24; h++ {
		hourly[h] = 0
	}
	for rows.Next() {
		var hour, count int
		if err := rows.Scan(&hour, &count); err != nil {
			return nil, err
		}
		hourly[hour] = count
	}

	return hourly, rows.Err()
}

// Prune removes events and summaries older than the cutoff date.
// It returns the number of events deleted.
func (r *EventRepository) Prune(cutoff string) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM touch_events WHERE date < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(`DELETE FROM daily_summaries WHERE date < ?`, cutoff); err != nil {
		return 0, err
	}

	return deleted, tx.Commit()
}
