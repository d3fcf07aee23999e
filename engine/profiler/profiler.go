package profiler

import (
	"runtime"
	"time"

	"github.com/charmbracelet/log"
)

// Counts are the scene sizes sampled alongside each report.
type Counts struct {
	Bodies  int
	Objects int
}

// Report is one interval's worth of frame and memory statistics.
type Report struct {
	Timestamp   time.Time
	FPS         float64
	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	Counts
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// It produces a Report once per interval, logs it when logging is enabled, and persists it
// when a Store is attached.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	fps            float64

	now     func() time.Time
	logger  *log.Logger
	logging bool
	store   *Store
	session string
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second and logging is off.
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
		logger:         log.WithPrefix("profiler"),
	}
	for _, opt := range options {
		opt(p)
	}
	if p.session == "" {
		p.session = p.now().UTC().Format("20060102T150405Z")
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per presented frame.
// When the update interval has elapsed it computes a Report covering FPS, heap usage,
// allocation rate, and GC count and pause times.
//
// Parameters:
//   - counts: the current body and object counts
//
// Returns:
//   - Report: the report, valid only when the bool is true
//   - bool: true if a report was produced this tick
func (p *Profiler) Tick(counts Counts) (Report, bool) {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Report{}, false
	}

	r := Report{
		Timestamp: currentTime,
		FPS:       float64(p.frameCount) / elapsed.Seconds(),
		Counts:    counts,
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc is live heap, TotalAlloc only grows and tracks churn, Sys is the process footprint.
	r.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	r.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	r.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	r.GCCount = p.memStats.NumGC
	if r.GCCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		r.LastPauseUs = p.memStats.PauseNs[(r.GCCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if r.GCCount-startIdx > 256 {
			startIdx = r.GCCount - 256
		}
		for i := startIdx; i < r.GCCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > r.MaxPauseUs {
				r.MaxPauseUs = pause
			}
		}
	}

	if p.logging {
		p.logger.Info("frame stats",
			"fps", round2(r.FPS),
			"heapMB", round2(r.HeapMB),
			"allocMBs", round2(r.AllocRateMB),
			"gc", r.GCCount,
			"lastPauseUs", r.LastPauseUs,
			"maxPauseUs", r.MaxPauseUs,
			"sysMB", round2(r.SysMB),
			"bodies", r.Bodies,
			"objects", r.Objects,
		)
	}
	if p.store != nil {
		if err := p.store.Save(p.session, r); err != nil {
			p.logger.Warn("stats not saved", "err", err)
		}
	}

	p.fps = r.FPS
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = r.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return r, true
}

// FPS returns the frame rate computed at the last report, 0 before the first one.
func (p *Profiler) FPS() float64 {
	return p.fps
}

// Session returns the session name reports are stored under.
func (p *Profiler) Session() string {
	return p.session
}

func round2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}
