package gait

import (
	"fmt"
	"math"
)

// How many strides each appended segment covers, at least.
const minSegmentStrides = 2

// segment is a stretch of absolute time during which one schedule is followed
// at one stride duration. The cycle phase at time t within the segment is
// phase0 + (t-start)/stride.
type segment struct {
	schedule *Schedule
	stride   float64
	start    float64
	end      float64
	phase0   float64
}

func (s *segment) phaseAt(t float64) float64 {
	return s.phase0 + (t-s.start)/s.stride
}

// local returns the phase of the limb at time t, as if the segment went on
// forever in both directions. Times are in seconds.
func (s *segment) local(limb string, t float64) (stance, known bool, elapsed, remaining float64) {
	si, ok := s.schedule.Swing[limb]
	if !ok {
		return true, false, 0, 0
	}

	swing, el, rem := locate(si, s.phaseAt(t))
	return !swing, true, el * s.stride, rem * s.stride
}

func (s *segment) String() string {
	return fmt.Sprintf("seg{%s T=%.3f [%.3f, %.3f) φ0=%.3f}", s.schedule.Name, s.stride, s.start, s.end, s.phase0)
}

// Timeline is the sequence of periodic gaits which the character has followed
// and will follow, in absolute time. When the stride duration changes, the new
// segment starts at the cycle phase where the old one stopped, so no limb ever
// jumps between stance and swing.
type Timeline struct {
	segments []*segment
}

func NewTimeline() *Timeline {
	return &Timeline{}
}

// Empty returns true if nothing has been appended yet.
func (tl *Timeline) Empty() bool {
	return len(tl.segments) == 0
}

// Limbs returns the limbs of the most recent schedule.
func (tl *Timeline) Limbs() []string {
	if tl.Empty() {
		return nil
	}

	return tl.last().schedule.Limbs()
}

// Schedule returns the most recently appended schedule, or nil.
func (tl *Timeline) Schedule() *Schedule {
	if tl.Empty() {
		return nil
	}

	return tl.last().schedule
}

func (tl *Timeline) last() *segment {
	return tl.segments[len(tl.segments)-1]
}

// AppendIfNeeded makes sure that the timeline covers [now, now+horizon] with
// the given schedule at the stride duration for the given speed. A new segment
// is appended when the timeline is empty, when the schedule or stride
// duration differ from the current segment, or when the current segment is
// about to run out. Returns true if anything was appended.
func (tl *Timeline) AppendIfNeeded(s *Schedule, speed, now, horizon float64) (bool, error) {
	stride, err := s.StrideDuration(speed)
	if err != nil {
		return false, err
	}

	length := math.Max(minSegmentStrides*stride, 2*horizon)

	if tl.Empty() {
		tl.segments = append(tl.segments, &segment{
			schedule: s,
			stride:   stride,
			start:    now,
			end:      now + length,
		})

		log.Infof("started gait %s at t=%.3f (stride=%.3fs)", s.Name, now, stride)
		return true, nil
	}

	cur := tl.last()

	if !cur.schedule.Equal(s) || math.Abs(cur.stride-stride) > 1e-9 {

		// Cut the current segment short, unless it hasn't started yet, in
		// which case it's replaced outright.
		at := math.Max(now, cur.start)
		phase := cur.phaseAt(at)
		if at <= cur.start {
			tl.segments = tl.segments[:len(tl.segments)-1]
		} else {
			cur.end = at
		}

		tl.segments = append(tl.segments, &segment{
			schedule: s,
			stride:   stride,
			start:    at,
			end:      at + length,
			phase0:   phase - math.Floor(phase),
		})

		log.Infof("changed gait to %s at t=%.3f (stride=%.3fs)", s.Name, at, stride)
		tl.prune(now, horizon)
		return true, nil
	}

	if cur.end < now+horizon {
		phase := cur.phaseAt(cur.end)
		tl.segments = append(tl.segments, &segment{
			schedule: s,
			stride:   stride,
			start:    cur.end,
			end:      cur.end + length,
			phase0:   phase - math.Floor(phase),
		})

		log.Debugf("extended gait %s to t=%.3f", s.Name, cur.end+length)
		tl.prune(now, horizon)
		return true, nil
	}

	return false, nil
}

// prune drops segments which ended long enough ago that nothing will query
// them again. The first remaining segment is extrapolated backwards.
func (tl *Timeline) prune(now, horizon float64) {
	i := 0
	for i < len(tl.segments)-1 && tl.segments[i].end < now-2*horizon {
		i++
	}

	if i > 0 {
		tl.segments = tl.segments[i:]
	}
}

// segmentAt returns the index of the segment covering t. Times before the
// first segment or after the last belong to those.
func (tl *Timeline) segmentAt(t float64) int {
	for i := len(tl.segments) - 1; i > 0; i-- {
		if t >= tl.segments[i].start {
			return i
		}
	}

	return 0
}

// PhaseInfo returns the phase of the limb at time t. A phase which spans a
// segment boundary is measured across it, as long as the limb is in the same
// state on both sides. Limbs which aren't scheduled are always in stance.
func (tl *Timeline) PhaseInfo(limb string, t float64) PhaseInfo {
	if tl.Empty() {
		return PhaseInfo{Stance: true}
	}

	k := tl.segmentAt(t)
	stance, known, el, rem := tl.segments[k].local(limb, t)
	if !known {
		return PhaseInfo{Stance: true}
	}

	// Forwards, over later segments. Both el and rem are relative to t.
	for j := k; j+1 < len(tl.segments) && t+rem > tl.segments[j+1].start; j++ {
		b := tl.segments[j+1].start
		s2, ok, _, rem2 := tl.segments[j+1].local(limb, b)
		if !ok || s2 != stance {
			rem = b - t
			break
		}

		rem = (b - t) + rem2
	}

	// Backwards, over earlier segments.
	for j := k; j > 0 && t-el < tl.segments[j].start; j-- {
		b := tl.segments[j].start
		s2, ok, el2, _ := tl.segments[j-1].local(limb, b)
		if !ok || s2 != stance {
			el = t - b
			break
		}

		el = (t - b) + el2
	}

	return PhaseInfo{
		Stance:    stance,
		Elapsed:   el,
		Remaining: rem,
		Duration:  el + rem,
	}
}
