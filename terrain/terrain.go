// Package terrain describes the ground which the character walks on. The
// planners only ever ask it for the height at a point.
package terrain

import (
	"fmt"
	"math"
)

type Ground interface {
	Height(x, z float64) float64
}

// Flat is a level plane at height Y.
type Flat struct {
	Y float64
}

func (f Flat) Height(x, z float64) float64 {
	return f.Y
}

func (f Flat) String() string {
	return fmt.Sprintf("Flat{y=%.3f}", f.Y)
}

// Rolling is gently uneven ground: the sum of two sine waves along X and Z.
// It's not meant to be realistic, only to keep the foot placement honest.
type Rolling struct {
	Amplitude  float64
	Wavelength float64
}

func (r Rolling) Height(x, z float64) float64 {
	if r.Wavelength <= 0 {
		return 0
	}

	k := 2 * math.Pi / r.Wavelength
	return r.Amplitude * 0.5 * (math.Sin(k*x) + math.Sin(k*z*0.7))
}

func (r Rolling) String() string {
	return fmt.Sprintf("Rolling{a=%.3f w=%.3f}", r.Amplitude, r.Wavelength)
}
