package profiler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when told to.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func TestTickReportsOncePerInterval(t *testing.T) {
	clock := newClock()
	p := NewProfiler(WithClock(clock.now))
	assert.Equal(t, 0.0, p.FPS())
	assert.Equal(t, "20260102T030405Z", p.Session())

	frame := time.Second/60 + time.Nanosecond
	for i := 0; i < 59; i++ {
		clock.advance(frame)
		_, ok := p.Tick(Counts{})
		require.False(t, ok, "tick %d", i)
	}
	clock.advance(frame)
	r, ok := p.Tick(Counts{Bodies: 3, Objects: 4})
	require.True(t, ok)

	assert.InDelta(t, 60.0, r.FPS, 0.5)
	assert.InDelta(t, 60.0, p.FPS(), 0.5)
	assert.Equal(t, 3, r.Bodies)
	assert.Equal(t, 4, r.Objects)
	assert.Equal(t, clock.t, r.Timestamp)
	assert.Greater(t, r.HeapMB, 0.0)

	clock.advance(frame)
	_, ok = p.Tick(Counts{})
	assert.False(t, ok, "counter restarts after a report")
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	clock := newClock()
	p := NewProfiler(WithClock(clock.now), WithInterval(0))

	clock.advance(500 * time.Millisecond)
	_, ok := p.Tick(Counts{})
	assert.False(t, ok)

	p = NewProfiler(WithClock(clock.now), WithInterval(100*time.Millisecond), WithLogging(true))
	clock.advance(100 * time.Millisecond)
	r, ok := p.Tick(Counts{})
	assert.True(t, ok)
	assert.InDelta(t, 10.0, r.FPS, 0.01)
}

func TestStorePersistsReports(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "stats", "frames.db")
	store, err := OpenStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(dbPath)
	require.NoError(t, err)

	clock := newClock()
	p := NewProfiler(WithClock(clock.now), WithStore(store), WithSession("run-1"))
	frame := time.Second/30 + time.Nanosecond
	for i := 0; i < 3; i++ {
		for f := 0; f < 30; f++ {
			clock.advance(frame)
			p.Tick(Counts{Bodies: 10 * (i + 1), Objects: 11 * (i + 1)})
		}
	}

	samples, err := store.Samples("run-1")
	require.NoError(t, err)
	require.Len(t, samples, 3)
	for i, s := range samples {
		assert.Equal(t, "run-1", s.Session)
		assert.InDelta(t, 30.0, s.FPS, 0.5)
		assert.Equal(t, 10*(i+1), s.Bodies)
		assert.Equal(t, 11*(i+1), s.Objects)
	}
	assert.True(t, samples[0].Timestamp.Before(samples[2].Timestamp))

	sum, err := store.Summary("run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Samples)
	assert.InDelta(t, 30.0, sum.AvgFPS, 0.5)
	assert.Equal(t, 30, sum.MaxBody)

	empty, err := store.Summary("missing")
	require.NoError(t, err)
	assert.Zero(t, empty.Samples)

	none, err := store.Samples("missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStoreReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "frames.db")
	store, err := OpenStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Save("a", Report{Timestamp: time.UnixMilli(1000), FPS: 144}))
	require.NoError(t, store.Close())

	store, err = OpenStore(dbPath)
	require.NoError(t, err)
	defer store.Close()
	samples, err := store.Samples("a")
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 144.0, samples[0].FPS)
	assert.Equal(t, int64(1000), samples[0].Timestamp.UnixMilli())
}
