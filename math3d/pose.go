package math3d

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Pose is a position plus a heading (about the world Y axis, in radians). This
// is all the orientation that the body frame carries; roll and pitch of the
// trunk are not part of the reference motion.
type Pose struct {
	Position r3.Vector
	Heading  float64
}

func (p Pose) String() string {
	return fmt.Sprintf("Pose{x=%+07.3f y=%+07.3f z=%+07.3f, h=%+07.3f}", p.Position.X, p.Position.Y, p.Position.Z, p.Heading)
}

// Add returns the pose pp, which is relative to p, in the parent space of p.
func (p Pose) Add(pp Pose) Pose {
	return Pose{
		Position: p.Position.Add(RotateHeading(pp.Position, p.Heading)),
		Heading:  p.Heading + pp.Heading,
	}
}

// ToWorld returns a matrix to transform a vector in the pose's space into the
// parent space.
func (p Pose) ToWorld() Matrix44 {
	return MakeMatrix44(p.Position, MakeSingularEulerAngle(RotationHeading, p.Heading))
}

// ToLocal returns a matrix to transform a vector in the parent space into the
// pose's space.
func (p Pose) ToLocal() Matrix44 {
	return p.ToWorld().RigidInverse()
}

// RotateHeading rotates v about the Y axis by heading radians. With a heading
// of zero, forwards is +Z and sideways is +X.
func RotateHeading(v r3.Vector, heading float64) r3.Vector {
	m := Matrix44{}
	m.SetRotation(MakeSingularEulerAngle(RotationHeading, heading))
	return m.Rotate(v)
}
