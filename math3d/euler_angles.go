package math3d

import (
	"fmt"

	"github.com/adammck/locomotion/utils"
)

// EulerAngles are in radians. Y is up, so heading is the yaw of the body frame.
type EulerAngles struct {
	Heading float64 // y
	Pitch   float64 // x
	Bank    float64 // z
}

type Rotation int

const (
	RotationHeading Rotation = iota
	RotationPitch
	RotationBank
)

var (
	IdentityOrientation = EulerAngles{}
)

// ParseRotation returns the rotation named by s, as written in robot
// description files.
func ParseRotation(s string) (Rotation, error) {
	switch s {
	case "heading", "y":
		return RotationHeading, nil
	case "pitch", "x":
		return RotationPitch, nil
	case "bank", "z":
		return RotationBank, nil
	}

	return 0, fmt.Errorf("invalid rotation: %q", s)
}

func (r Rotation) String() string {
	switch r {
	case RotationHeading:
		return "heading"
	case RotationPitch:
		return "pitch"
	case RotationBank:
		return "bank"
	}

	return fmt.Sprintf("Rotation(%d)", int(r))
}

// MakeSingularEulerAngle returns angles with only one (the given) rotation set.
// The angle is in radians.
func MakeSingularEulerAngle(rot Rotation, angle float64) EulerAngles {
	ea := EulerAngles{}

	switch rot {
	case RotationHeading:
		ea.Heading = angle

	case RotationPitch:
		ea.Pitch = angle

	case RotationBank:
		ea.Bank = angle

	default:
		panic("invalid rotation")
	}

	return ea
}

func (ea EulerAngles) String() string {
	return fmt.Sprintf("&Euler{h=%+.2f° p=%+.2f° b=%+.2f°}", utils.Deg(ea.Heading), utils.Deg(ea.Pitch), utils.Deg(ea.Bank))
}
