// Package watchdog shuts the character down when the IK stops keeping up with
// the planned trajectories.
package watchdog

import (
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/adammck/locomotion"
)

const (

	// How often (in wall time) to check. It's cheap, but the log line isn't.
	DefaultInterval = 5 * time.Second

	// The distance (m) between an end effector and its trajectory beyond
	// which the motion is considered lost.
	DefaultMaximum = 0.1
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "watchdog",
})

type HasErrors interface {
	Errors() map[string]float64
}

type Watchdog struct {
	t        time.Time
	Interval time.Duration
	Maximum  float64
	HasErrors
}

func New(src HasErrors) *Watchdog {
	return &Watchdog{
		Interval:  DefaultInterval,
		Maximum:   DefaultMaximum,
		HasErrors: src,
	}
}

func (wd *Watchdog) Boot() error {
	return nil
}

func (wd *Watchdog) Tick(now time.Time, state *locomotion.State) error {
	if wd.NeedsCheck(now) {
		wd.Check(now, state)
	}

	return nil
}

// NeedsCheck returns true if it's been a while since the last check.
func (wd *Watchdog) NeedsCheck(now time.Time) bool {
	return now.Sub(wd.t) > wd.Interval
}

// Check looks at the tracking error of every limb, and requests a shutdown if
// any of them is over the maximum. Returns the name of the worst limb and its
// error.
func (wd *Watchdog) Check(now time.Time, state *locomotion.State) (string, float64) {
	wd.t = now

	errs := wd.Errors()
	if len(errs) == 0 {
		return "", 0
	}

	// Sorted, so ties are broken the same way every time.
	names := lo.Keys(errs)
	sort.Strings(names)
	worst := lo.MaxBy(names, func(a, b string) bool {
		return errs[a] > errs[b]
	})

	log.Infof("t=%.3f worst tracking error: %s=%.4fm", state.Time, worst, errs[worst])

	if errs[worst] > wd.Maximum {
		log.Errorf("lost track of %s (%.4fm > %.4fm), shutting down", worst, errs[worst], wd.Maximum)
		state.Shutdown = true
	}

	return worst, errs[worst]
}
