package robot

import (
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/adammck/locomotion/math3d"
)

// Body is a rigid link of the robot. Its frame origin is the pivot of the
// joint which connects it to its parent (or the base, for the trunk).
type Body struct {
	Name   string
	Parent *Joint
	index  int
}

func (b *Body) String() string {
	return fmt.Sprintf("&Body{%s}", b.Name)
}

// Joint is a single revolute degree of freedom, rotating the child body about
// one of the axes of its own frame. Angles are radians.
type Joint struct {
	Name     string
	Index    int
	Parent   *Body
	Child    *Body
	Axis     math3d.Rotation
	Offset   r3.Vector
	MinAngle float64
	MaxAngle float64
	Angle    float64
}

func (j *Joint) String() string {
	return fmt.Sprintf("&Joint{%s #%d %s [%.2f, %.2f]}", j.Name, j.Index, j.Axis, j.MinAngle, j.MaxAngle)
}

// Matrix returns the transform from the child's space into the parent's space
// when the joint is at angle q: rotate about the pivot, then move the pivot to
// its place on the parent.
func (j *Joint) Matrix(q float64) math3d.Matrix44 {
	rot := math3d.MakeMatrix44(r3.Vector{}, math3d.MakeSingularEulerAngle(j.Axis, q))
	return math3d.MultiplyMatrices(rot, math3d.MakeTranslation(j.Offset))
}

// EndEffector is the point of a limb which touches (or reaches for) things,
// expressed in the space of the body it's attached to.
type EndEffector struct {
	Offset r3.Vector
	Radius float64
}
