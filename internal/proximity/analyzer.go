package proximity

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the current phase of the alert cycle.
type State int

const (
	// StateIdle means no hand is near the head.
	StateIdle State = iota
	// StateDetecting means a hand is near the head and near-time is accumulating.
	StateDetecting
	// StateAlerting means an alert fired on this evaluation.
	StateAlerting
	// StateCooldown means an alert fired recently and new detection is suppressed.
	StateCooldown
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDetecting:
		return "detecting"
	case StateAlerting:
		return "alerting"
	case StateCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// ErrConfigInvalid is returned when a Config fails validation.
// The previously applied config stays in effect.
var ErrConfigInvalid = errors.New("invalid analyzer config")

// Config holds the analyzer tunables.
type Config struct {
	// Sensitivity in [0,1]. Higher values trigger on looser proximity.
	Sensitivity float64 `json:"sensitivity"`
	// TriggerTime is how long a hand must stay near the head before an alert.
	TriggerTime time.Duration `json:"trigger_time"`
	// CooldownTime is the minimum interval after an alert before a new
	// detection cycle may begin.
	CooldownTime time.Duration `json:"cooldown_time"`
	// GraceWindow absorbs transient far or no-sample frames during detection
	// without discarding accumulated near-time.
	GraceWindow time.Duration `json:"grace_window"`
	// FrameSkip processes every Nth captured frame. It affects how often the
	// analyzer is invoked, never its decisions.
	FrameSkip int `json:"frame_skip"`
}

// DefaultConfig returns the analyzer defaults.
func DefaultConfig() Config {
	return Config{
		Sensitivity:  0.5,
		TriggerTime:  3 * time.Second,
		CooldownTime: 10 * time.Second,
		GraceWindow:  500 * time.Millisecond,
		FrameSkip:    2,
	}
}

// Validate checks all config values and reports the first violation.
func (c Config) Validate() error {
	if c.Sensitivity < 0 || c.Sensitivity > 1 {
		return fmt.Errorf("%w: sensitivity %v out of range [0,1]", ErrConfigInvalid, c.Sensitivity)
	}
	if c.TriggerTime <= 0 {
		return fmt.Errorf("%w: trigger time %v must be positive", ErrConfigInvalid, c.TriggerTime)
	}
	if c.CooldownTime <= 0 {
		return fmt.Errorf("%w: cooldown time %v must be positive", ErrConfigInvalid, c.CooldownTime)
	}
	if c.GraceWindow <= 0 || c.GraceWindow > 5*time.Second {
		return fmt.Errorf("%w: grace window %v out of range (0, 5s]", ErrConfigInvalid, c.GraceWindow)
	}
	if c.FrameSkip < 1 {
		return fmt.Errorf("%w: frame skip %d must be at least 1", ErrConfigInvalid, c.FrameSkip)
	}
	return nil
}

// Event is a single debounced alert. Exactly one is emitted per detection
// episode, after near-time reaches the trigger time.
type Event struct {
	ID              string        `json:"id"`
	Timestamp       time.Time     `json:"timestamp"`
	Duration        time.Duration `json:"duration"`
	ClosestDistance float64       `json:"closest_distance"`
}

// Result describes the analyzer after one evaluation.
type Result struct {
	State          State         `json:"state"`
	HandNearHead   bool          `json:"hand_near_head"`
	Distance       float64       `json:"distance"`
	NearDuration   time.Duration `json:"near_duration"`
	TimeUntilAlert time.Duration `json:"time_until_alert"`

	// Alert is non-nil only on the evaluation that fired it.
	Alert *Event `json:"alert,omitempty"`
}

// Analyzer is the proximity state machine. It is driven by sample
// timestamps, so decisions are independent of how often it is invoked.
// All state is mutated under a single lock; config swaps through SetConfig
// apply between evaluations, never mid-transition.
type Analyzer struct {
	mu  sync.Mutex
	cfg Config

	state       State
	nearTime    time.Duration
	farTime     time.Duration
	cooldown    time.Duration
	minDistance float64

	lastSample time.Time
	hasSample  bool
}

// NewAnalyzer creates an analyzer with the given config.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{
		cfg:         cfg,
		state:       StateIdle,
		minDistance: NoSampleDistance,
	}, nil
}

// SetConfig swaps the analyzer config. Invalid configs are rejected and the
// previous config remains in effect.
func (a *Analyzer) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cfg = cfg
	return nil
}

// Config returns the currently applied config.
func (a *Analyzer) Config() Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// State returns the current state.
func (a *Analyzer) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Reset returns the analyzer to Idle and discards all accumulated time.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = StateIdle
	a.nearTime = 0
	a.farTime = 0
	a.cooldown = 0
	a.minDistance = NoSampleDistance
	a.hasSample = false
}

// Advance feeds one sample into the state machine and returns the outcome.
// Elapsed time is derived from consecutive sample timestamps; the first
// sample after construction or Reset contributes no elapsed time.
//
// Transitions:
//
//	Idle      --near-->                         Detecting (accumulator at 0)
//	Detecting --near, accumulated >= trigger--> Alerting  (emits Event), then Cooldown
//	Detecting --far/no-sample past grace-->     Idle      (accumulator discarded)
//	Cooldown  --timer >= cooldown-->            Idle
func (a *Analyzer) Advance(s Sample) Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	var elapsed time.Duration
	if a.hasSample && s.Timestamp.After(a.lastSample) {
		elapsed = s.Timestamp.Sub(a.lastSample)
	}
	a.lastSample = s.Timestamp
	a.hasSample = true

	threshold := Threshold(a.cfg.Sensitivity)
	near := s.Valid && s.Distance <= threshold

	distance := s.Distance
	if !s.Valid {
		distance = NoSampleDistance
	}

	switch a.state {
	case StateCooldown:
		a.cooldown += elapsed
		if a.cooldown >= a.cfg.CooldownTime {
			a.state = StateIdle
			a.cooldown = 0
			return Result{
				State:          StateIdle,
				HandNearHead:   near,
				Distance:       distance,
				TimeUntilAlert: a.cfg.TriggerTime,
			}
		}
		// Proximity is still reported during cooldown so the UI can keep
		// showing the hand position, but no near-time accumulates.
		return Result{
			State:        StateCooldown,
			HandNearHead: near,
			Distance:     distance,
		}

	case StateIdle:
		if near {
			a.state = StateDetecting
			a.nearTime = 0
			a.farTime = 0
			a.minDistance = s.Distance
			return Result{
				State:          StateDetecting,
				HandNearHead:   true,
				Distance:       distance,
				TimeUntilAlert: a.cfg.TriggerTime,
			}
		}
		return Result{
			State:          StateIdle,
			HandNearHead:   false,
			Distance:       distance,
			TimeUntilAlert: a.cfg.TriggerTime,
		}

	case StateDetecting:
		if near {
			a.nearTime += elapsed
			a.farTime = 0
			if s.Distance < a.minDistance {
				a.minDistance = s.Distance
			}

			if a.nearTime >= a.cfg.TriggerTime {
				return a.fireAlert(s, distance)
			}

			return Result{
				State:          StateDetecting,
				HandNearHead:   true,
				Distance:       distance,
				NearDuration:   a.nearTime,
				TimeUntilAlert: a.cfg.TriggerTime - a.nearTime,
			}
		}

		// Far or no-sample: accumulated near-time survives until the grace
		// window is exhausted, absorbing jitter and transient tracking loss.
		a.farTime += elapsed
		if a.farTime >= a.cfg.GraceWindow {
			a.state = StateIdle
			a.nearTime = 0
			a.farTime = 0
			a.minDistance = NoSampleDistance
			return Result{
				State:          StateIdle,
				HandNearHead:   false,
				Distance:       distance,
				TimeUntilAlert: a.cfg.TriggerTime,
			}
		}
		return Result{
			State:          StateDetecting,
			HandNearHead:   false,
			Distance:       distance,
			NearDuration:   a.nearTime,
			TimeUntilAlert: a.cfg.TriggerTime - a.nearTime,
		}

	default:
		// StateAlerting is never stored; it only appears in results.
		a.state = StateIdle
		return Result{
			State:          StateIdle,
			HandNearHead:   near,
			Distance:       distance,
			TimeUntilAlert: a.cfg.TriggerTime,
		}
	}
}

// fireAlert emits the episode's single alert and enters cooldown.
// Called with the lock held.
func (a *Analyzer) fireAlert(s Sample, distance float64) Result {
	event := &Event{
		ID:              uuid.NewString(),
		Timestamp:       s.Timestamp,
		Duration:        a.nearTime,
		ClosestDistance: a.minDistance,
	}

	a.state = StateCooldown
	a.cooldown = 0
	duration := a.nearTime
	a.nearTime = 0
	a.farTime = 0
	a.minDistance = NoSampleDistance

	return Result{
		State:        StateAlerting,
		HandNearHead: true,
		Distance:     distance,
		NearDuration: duration,
		Alert:        event,
	}
}
