package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeClocker(t *testing.T) {
	before := time.Now()
	got := New().Now()

	assert.False(t, got.Before(before))
}

func TestManual(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	m := NewManual(start)

	assert.Equal(t, start, m.Now())

	m.Advance(30 * time.Second)
	assert.Equal(t, start.Add(30*time.Second), m.Now())

	m.Set(start)
	assert.Equal(t, start, m.Now())
}

func TestManual_Concurrent(t *testing.T) {
	m := NewManual(time.Unix(0, 0))

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			m.Advance(time.Second)
			_ = m.Now()
		})
	}
	wg.Wait()

	assert.Equal(t, time.Unix(10, 0), m.Now())
}
