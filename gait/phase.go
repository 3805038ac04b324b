package gait

import (
	"fmt"
	"math"

	"github.com/adammck/locomotion/utils"
)

// PhaseInfo describes where a limb is within its current contact phase at a
// moment in time. Elapsed and Remaining are seconds, and always sum to
// Duration.
type PhaseInfo struct {
	Stance    bool
	Elapsed   float64
	Remaining float64
	Duration  float64
}

func (pi PhaseInfo) Swing() bool {
	return !pi.Stance
}

// PercentElapsed returns how far through the phase the limb is, in [0, 1].
func (pi PhaseInfo) PercentElapsed() float64 {
	if pi.Duration <= 0 {
		return 0
	}

	return utils.Clamp(pi.Elapsed/pi.Duration, 0, 1)
}

func (pi PhaseInfo) String() string {
	s := "stance"
	if !pi.Stance {
		s = "swing"
	}

	return fmt.Sprintf("%s{%.3f+%.3f=%.3f}", s, pi.Elapsed, pi.Remaining, pi.Duration)
}

// Phases answers phase queries for limbs at absolute times.
type Phases interface {
	PhaseInfo(limb string, t float64) PhaseInfo
}

// locate returns whether the limb is in swing at cycle phase p (any real
// number; only the fractional part matters), and how far (in cycles) it is
// from the start and end of the interval it's in. The stance interval is the
// complement of the swing interval: [End, Start+1).
func locate(si SwingInterval, p float64) (swing bool, elapsed, remaining float64) {
	n := si.Length()

	// Cycles since the most recent swing start, in [0, 1).
	d := p - si.Start
	d -= math.Floor(d)
	if d >= 1 {
		d = 0
	}

	if d < n {
		return true, d, n - d
	}

	return false, d - n, 1 - d
}

// Periodic is a single schedule repeating forever from time zero, with a
// constant stride duration. It's mostly useful for tests and tools; walking
// characters use a Timeline so that the stride can change.
type Periodic struct {
	Schedule       *Schedule
	StrideDuration float64
}

func (p Periodic) PhaseInfo(limb string, t float64) PhaseInfo {
	si, ok := p.Schedule.Swing[limb]
	if !ok {
		return PhaseInfo{Stance: true}
	}

	swing, el, rem := locate(si, t/p.StrideDuration)
	return PhaseInfo{
		Stance:    !swing,
		Elapsed:   el * p.StrideDuration,
		Remaining: rem * p.StrideDuration,
		Duration:  (el + rem) * p.StrideDuration,
	}
}
