// Package stats accumulates alert events into daily buckets and touch-free
// streak counters.
package stats

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/writingdeveloper/dont-touch/internal/proximity"
	"github.com/writingdeveloper/dont-touch/internal/store"
)

// recentLimit caps the in-memory recent event list.
const recentLimit = 100

// StreakInfo is a consistent snapshot of the streak counters.
type StreakInfo struct {
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
	LastTouchDate string `json:"last_touch_date,omitempty"`
}

// WeeklyStats aggregates one seven-day window.
type WeeklyStats struct {
	StartDate    string         `json:"start_date"`
	EndDate      string         `json:"end_date"`
	TotalTouches int            `json:"total_touches"`
	DailyAverage float64        `json:"daily_average"`
	BestDay      string         `json:"best_day,omitempty"`
	WorstDay     string         `json:"worst_day,omitempty"`
	DailyCounts  map[string]int `json:"daily_counts"`
}

// Recorder accumulates alert events into per-day counts and derives
// touch-free streaks. All mutation happens on the capture side (Record and
// Rollover); queries take the same lock so multi-field reads are never torn.
// An optional store persists events across restarts.
type Recorder struct {
	mu      sync.Mutex
	store   *store.Store
	daily   map[string]int
	recent  []proximity.Event
	current int
	longest int

	lastTouchDate string
	// accounted is the most recent date whose preceding days have all been
	// credited to the streak. Rollover advances it.
	accounted string
}

// NewRecorder creates a recorder starting from an empty history.
// The store may be nil for purely in-memory use.
func NewRecorder(st *store.Store, now time.Time) (*Recorder, error) {
	r := &Recorder{
		store:     st,
		daily:     make(map[string]int),
		accounted: now.Format(store.DateLayout),
	}

	if st == nil {
		return r, nil
	}

	counts, err := st.Events().DailyCounts()
	if err != nil {
		return nil, err
	}
	for date, count := range counts {
		r.daily[date] = count
	}

	events, err := st.Events().Recent(recentLimit)
	if err != nil {
		return nil, err
	}
	// Recent() is newest-first; the in-memory list appends chronologically.
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		r.recent = append(r.recent, proximity.Event{
			ID:              e.EventID,
			Timestamp:       e.Timestamp,
			Duration:        time.Duration(e.Duration * float64(time.Second)),
			ClosestDistance: e.ClosestDistance,
		})
	}

	r.rebuildStreaks(now)
	return r, nil
}

// rebuildStreaks derives the streak counters from loaded daily counts.
// Days without a summary row count as touch-free.
func (r *Recorder) rebuildStreaks(now time.Time) {
	var touchDates []string
	for date, count := range r.daily {
		if count > 0 {
			touchDates = append(touchDates, date)
		}
	}
	if len(touchDates) == 0 {
		return
	}

	sort.Strings(touchDates)
	last := touchDates[len(touchDates)-1]
	r.lastTouchDate = last

	// Longest streak is the widest gap between consecutive touch days.
	for i := 1; i < len(touchDates); i++ {
		if gap := daysBetween(touchDates[i-1], touchDates[i]) - 1; gap > r.longest {
			r.longest = gap
		}
	}

	// Completed touch-free days since the last touch.
	today := now.Format(store.DateLayout)
	if elapsed := daysBetween(last, today) - 1; elapsed > 0 {
		r.current = elapsed
	}
	if r.current > r.longest {
		r.longest = r.current
	}
}

// Record counts one alert event. An alert on a fresh day breaks the running
// touch-free streak.
func (r *Recorder) Record(ev proximity.Event) {
	date := ev.Timestamp.Format(store.DateLayout)

	r.mu.Lock()
	r.advanceTo(date)

	r.daily[date]++
	if r.lastTouchDate != date {
		r.current = 0
		r.lastTouchDate = date
	}

	r.recent = append(r.recent, ev)
	if len(r.recent) > recentLimit {
		r.recent = r.recent[len(r.recent)-recentLimit:]
	}
	st := r.store
	r.mu.Unlock()

	if st != nil {
		err := st.Events().Insert(ev.ID, ev.Timestamp, ev.Duration.Seconds(), ev.ClosestDistance)
		if err != nil {
			log.Printf("Failed to persist touch event %s: %v", ev.ID, err)
		}
	}
}

// Rollover accounts for completed days. It must be driven by a periodic
// tick so streaks grow on days without any alert, not only when alerts
// arrive.
func (r *Recorder) Rollover(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advanceTo(now.Format(store.DateLayout))
}

// advanceTo credits every day completed before target to the streak.
// Called with the lock held.
func (r *Recorder) advanceTo(target string) {
	for r.accounted < target {
		if r.daily[r.accounted] == 0 {
			r.current++
			if r.current > r.longest {
				r.longest = r.current
			}
		}
		r.accounted = nextDay(r.accounted)
	}
}

// DailyCounts returns alert counts for every date in [from, to] inclusive.
// Dates without alerts map to zero.
func (r *Recorder) DailyCounts(from, to time.Time) map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[string]int)
	end := to.Format(store.DateLayout)
	for d := from.Format(store.DateLayout); d <= end; d = nextDay(d) {
		counts[d] = r.daily[d]
	}
	return counts
}

// WeeklyCounts aggregates the seven days starting at the given date.
func (r *Recorder) WeeklyCounts(start time.Time) WeeklyStats {
	startDate := start.Format(store.DateLayout)
	endDate := start.AddDate(0, 0, 6).Format(store.DateLayout)

	r.mu.Lock()
	defer r.mu.Unlock()

	stats := WeeklyStats{
		StartDate:   startDate,
		EndDate:     endDate,
		DailyCounts: make(map[string]int, 7),
	}

	best, worst := -1, 0
	for d := startDate; d <= endDate; d = nextDay(d) {
		count := r.daily[d]
		stats.DailyCounts[d] = count
		stats.TotalTouches += count

		if best == -1 || count < best {
			best = count
			stats.BestDay = d
		}
		if count > worst {
			worst = count
			stats.WorstDay = d
		}
	}
	stats.DailyAverage = float64(stats.TotalTouches) / 7

	return stats
}

// CurrentStreak returns the count of consecutive completed touch-free days.
func (r *Recorder) CurrentStreak() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// LongestStreak returns the longest touch-free streak ever observed.
func (r *Recorder) LongestStreak() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.longest
}

// Streak returns all streak fields read under one lock.
func (r *Recorder) Streak() StreakInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return StreakInfo{
		CurrentStreak: r.current,
		LongestStreak: r.longest,
		LastTouchDate: r.lastTouchDate,
	}
}

// Recent returns up to limit most recent events, newest first.
func (r *Recorder) Recent(limit int) []proximity.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 || limit > len(r.recent) {
		limit = len(r.recent)
	}

	out := make([]proximity.Event, limit)
	for i := 0; i < limit; i++ {
		out[i] = r.recent[len(r.recent)-1-i]
	}
	return out
}

// nextDay returns the calendar date following d.
func nextDay(d string) string {
	t, err := time.Parse(store.DateLayout, d)
	if err != nil {
		return d
	}
	return t.AddDate(0, 0, 1).Format(store.DateLayout)
}

// daysBetween returns the number of days from a to b (b after a).
func daysBetween(a, b string) int {
	ta, errA := time.Parse(store.DateLayout, a)
	tb, errB := time.Parse(store.DateLayout, b)
	if errA != nil || errB != nil {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}
