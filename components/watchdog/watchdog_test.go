package watchdog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adammck/locomotion"
)

type fakeErrors map[string]float64

func (f fakeErrors) Errors() map[string]float64 {
	return f
}

func TestCheck(t *testing.T) {
	type eg struct {
		errs     fakeErrors
		worst    string
		shutdown bool
	}

	data := []eg{
		eg{fakeErrors{}, "", false},
		eg{fakeErrors{"a": 0.01, "b": 0.02}, "b", false},
		eg{fakeErrors{"a": 0.5, "b": 0.02}, "a", true},
		eg{fakeErrors{"a": 0.05, "b": 0.05}, "a", false},
	}

	for i, eg := range data {
		wd := New(eg.errs)
		state := &locomotion.State{}

		worst, _ := wd.Check(time.Now(), state)
		assert.Equal(t, eg.worst, worst, "example #%d", i+1)
		assert.Equal(t, eg.shutdown, state.Shutdown, "example #%d", i+1)
	}
}

func TestInterval(t *testing.T) {
	errs := fakeErrors{"a": 0.01}
	wd := New(errs)
	wd.Interval = time.Second

	now := time.Now()
	state := &locomotion.State{}

	assert.True(t, wd.NeedsCheck(now))
	require.NoError(t, wd.Tick(now, state))
	assert.False(t, wd.NeedsCheck(now.Add(500*time.Millisecond)))

	// Errors which show up between checks go unnoticed until the next one.
	errs["a"] = 1
	require.NoError(t, wd.Tick(now.Add(500*time.Millisecond), state))
	assert.False(t, state.Shutdown)

	require.NoError(t, wd.Tick(now.Add(1500*time.Millisecond), state))
	assert.True(t, state.Shutdown)
}
