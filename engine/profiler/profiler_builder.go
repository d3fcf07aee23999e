package profiler

import (
	"time"

	"github.com/charmbracelet/log"
)

// ProfilerBuilderOption is a functional option applied to a Profiler during construction.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often a Report is produced. Non-positive values are ignored.
//
// Parameters:
//   - d: the report interval
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the option
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithLogging enables the periodic stats log line.
//
// Parameters:
//   - enabled: whether reports are logged
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the option
func WithLogging(enabled bool) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.logging = enabled
	}
}

// WithLogger sets the logger used for the stats line.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the option
func WithLogger(logger *log.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithStore persists every report to store under the profiler's session.
//
// Parameters:
//   - store: an open Store
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the option
func WithStore(store *Store) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.store = store
	}
}

// WithSession sets the session name. Defaults to the start time in UTC.
//
// Parameters:
//   - session: the session name
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the option
func WithSession(session string) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.session = session
	}
}

// WithClock replaces time.Now.
//
// Parameters:
//   - now: the clock
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the option
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}
