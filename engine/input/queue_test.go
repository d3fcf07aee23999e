package input

import (
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrainIsFIFOAndClears(t *testing.T) {
	q := NewQueue()
	q.Push(KeyEvent{Key: common.KeyW, Down: true}, MouseMoveEvent{X: 1, Y: 2})
	q.Push(nil)
	q.Push(ScrollEvent{Delta: -1})

	assert.Equal(t, 3, q.Len())
	events := q.Drain()
	require.Len(t, events, 3)
	assert.Equal(t, KeyEvent{Key: common.KeyW, Down: true}, events[0])
	assert.Equal(t, MouseMoveEvent{X: 1, Y: 2}, events[1])
	assert.Equal(t, ScrollEvent{Delta: -1}, events[2])

	assert.Nil(t, q.Drain())
	assert.Equal(t, 0, q.Len())
}

func TestConcurrentPush(t *testing.T) {
	q := NewQueue()
	var wg sync.WaitGroup
	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.Push(TuningEvent{Tuning: common.DefaultTuning()})
			}
		}()
	}
	wg.Wait()
	assert.Len(t, q.Drain(), 800)
}
