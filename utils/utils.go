package utils

import (
	"math"

	"github.com/samber/lo"
)

func Deg(rads float64) float64 {
	return rads / (math.Pi / 180)
}

func Rad(degrees float64) float64 {
	return (math.Pi / 180) * degrees
}

// Clamp returns v limited to [min, max].
func Clamp(v, min, max float64) float64 {
	return lo.Clamp(v, min, max)
}

// Frac returns the fractional part of v in [0, 1), also for negative v.
func Frac(v float64) float64 {
	f := v - math.Floor(v)
	if f >= 1 {
		return 0
	}

	return f
}
