package gait

const (
	// No reliable measurements exist below this speed (m/s), so it's the
	// slowest speed that the stride functions will consider.
	InitSpeed = 0.6

	// The speed (m/s) at which people switch from walking to running, per
	// Hansen et al. (2017).
	WalkToRunSpeed = 2.1

	// The fastest commandable forward speed (m/s).
	MaxSpeed = 10.0
)

// Nilsson et al. (1985), piecewise linear in speed.
const (
	strideSlopeWalk     = -0.419
	strideInterceptWalk = 1.927
	strideSlopeRun      = -0.041
	strideInterceptRun  = 0.901
)

// StrideFunc returns the duration in seconds of one stride at the given speed.
type StrideFunc func(speed float64) float64

// FixedStride returns a stride function which ignores the speed.
func FixedStride(d float64) StrideFunc {
	return func(float64) float64 {
		return d
	}
}

// EmpiricalStride is the human stride duration at the given speed.
func EmpiricalStride(speed float64) float64 {
	if speed < WalkToRunSpeed {
		return strideSlopeWalk*speed + strideInterceptWalk
	}

	return strideSlopeRun*speed + strideInterceptRun
}

// SwingFraction returns the fraction of the stride which a foot spends in
// swing at the given speed, per Hansen et al. Above the walk to run transition
// it's fixed at 60%.
func SwingFraction(speed float64) float64 {
	switch {
	case speed < InitSpeed:
		return (3.4*InitSpeed + 37.1) / 100
	case speed > WalkToRunSpeed:
		return 0.6
	default:
		return (3.4*speed + 37.1) / 100
	}
}
