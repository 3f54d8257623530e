package timers

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestArmFiresAfterDuration(t *testing.T) {
	ts := New()
	defer ts.ClearAll()

	done := make(chan struct{})
	ts.Arm("chunk-1", 10*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timer never fired")
	}
}

func TestArmReplacesExistingHandle(t *testing.T) {
	ts := New()
	defer ts.ClearAll()

	var mu sync.Mutex
	fired := 0

	ts.Arm("msg-1", 10*time.Millisecond, func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})
	ts.Arm("msg-1", 10*time.Millisecond, func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, fired)
}

func TestCancelPreventsFiring(t *testing.T) {
	ts := New()
	defer ts.ClearAll()

	fired := false
	ts.Arm("chunk-2", 20*time.Millisecond, func() { fired = true })
	require.True(t, ts.Cancel("chunk-2"))

	time.Sleep(60 * time.Millisecond)
	require.False(t, fired)
}

func TestCancelUnknownHandleReturnsFalse(t *testing.T) {
	ts := New()
	require.False(t, ts.Cancel("never-armed"))
}

func TestClearAllStopsEveryTimer(t *testing.T) {
	ts := New()

	var mu sync.Mutex
	fired := 0
	for i := 0; i < 5; i++ {
		ts.Arm(string(rune('a'+i)), 20*time.Millisecond, func() {
			mu.Lock()
			fired++
			mu.Unlock()
		})
	}
	ts.ClearAll()

	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 0, fired)
}
