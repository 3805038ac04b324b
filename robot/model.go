// Package robot is a minimal articulated model: a floating trunk, a tree of
// revolute joints, and named limbs ending in end effectors. It provides what
// the planners and the IK solver need (forward kinematics, joint limits,
// generalized coordinates) and nothing else; there's no mass or dynamics.
package robot

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/sirupsen/logrus"

	"github.com/adammck/locomotion/math3d"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "robot",
})

// Number of entries at the start of q which describe the base: position, then
// heading, pitch and bank.
const BaseDOF = 6

type Model struct {
	Name string

	// The height at which the trunk should be carried, and the scale of the
	// swing foot arc. These are properties of the character rather than the
	// planner, so they live with the description.
	BaseHeight      float64
	SwingFootHeight float64

	// Explicit gait name from the description, if any.
	Gait string

	trunk  *Body
	bodies []*Body
	joints []*Joint
	limbs  []*Limb

	bodyIndex  map[string]*Body
	jointIndex map[string]*Joint
	limbIndex  map[string]*Limb

	position    r3.Vector
	orientation math3d.EulerAngles

	// World transform of each body (by index) for the current state.
	frames []math3d.Matrix44
}

func (m *Model) String() string {
	return fmt.Sprintf("&Model{%s bodies=%d joints=%d limbs=%d}", m.Name, len(m.bodies), len(m.joints), len(m.limbs))
}

func (m *Model) Trunk() *Body {
	return m.trunk
}

// Joints returns the joints in the order of their coordinates in q (after the
// base).
func (m *Model) Joints() []*Joint {
	return m.joints
}

func (m *Model) JointByName(name string) (*Joint, bool) {
	j, ok := m.jointIndex[name]
	return j, ok
}

func (m *Model) JointLimits(i int) (float64, float64) {
	return m.joints[i].MinAngle, m.joints[i].MaxAngle
}

func (m *Model) Bodies() []*Body {
	return m.bodies
}

func (m *Model) BodyByName(name string) (*Body, bool) {
	b, ok := m.bodyIndex[name]
	return b, ok
}

func (m *Model) Limbs() []*Limb {
	return m.limbs
}

func (m *Model) LimbByName(name string) (*Limb, bool) {
	l, ok := m.limbIndex[name]
	return l, ok
}

// FootLimbs returns only the limbs which touch the ground.
func (m *Model) FootLimbs() []*Limb {
	feet := []*Limb{}
	for _, l := range m.limbs {
		if l.IsFoot() {
			feet = append(feet, l)
		}
	}

	return feet
}

// SetRootPose moves and rotates the trunk, leaving the joints alone.
func (m *Model) SetRootPose(pos r3.Vector, ea math3d.EulerAngles) {
	m.position = pos
	m.orientation = ea
	m.updateFrames()
}

// RootPose returns the position and orientation of the trunk.
func (m *Model) RootPose() (r3.Vector, math3d.EulerAngles) {
	return m.position, m.orientation
}

// Pose returns the trunk position and heading, which is all that the body
// frame cares about.
func (m *Model) Pose() math3d.Pose {
	return math3d.Pose{Position: m.position, Heading: m.orientation.Heading}
}

// WorldCoordinates returns the point p (in the space of body b) in the world,
// according to the current state of the model.
func (m *Model) WorldCoordinates(p r3.Vector, b *Body) r3.Vector {
	return m.frames[b.index].Transform(p)
}

// Coordinates returns a generalized coordinates view of the current state.
func (m *Model) Coordinates() *Coordinates {
	return newCoordinates(m)
}

func (m *Model) q() []float64 {
	q := make([]float64, BaseDOF+len(m.joints))
	q[0], q[1], q[2] = m.position.X, m.position.Y, m.position.Z
	q[3], q[4], q[5] = m.orientation.Heading, m.orientation.Pitch, m.orientation.Bank
	for i, j := range m.joints {
		q[BaseDOF+i] = j.Angle
	}

	return q
}

// setQ overwrites the whole state of the model from q.
func (m *Model) setQ(q []float64) {
	m.position = r3.Vector{X: q[0], Y: q[1], Z: q[2]}
	m.orientation = math3d.EulerAngles{Heading: q[3], Pitch: q[4], Bank: q[5]}
	for i, j := range m.joints {
		j.Angle = q[BaseDOF+i]
	}

	m.updateFrames()
}

func (m *Model) updateFrames() {
	m.frames = m.framesFor(m.q(), m.frames)
}

// framesFor computes the world transform of every body for the given q. The
// joints are ordered parent-first, so a single pass is enough. The buf slice is
// reused if it's big enough.
func (m *Model) framesFor(q []float64, buf []math3d.Matrix44) []math3d.Matrix44 {
	if len(buf) != len(m.bodies) {
		buf = make([]math3d.Matrix44, len(m.bodies))
	}

	base := math3d.EulerAngles{Heading: q[3], Pitch: q[4], Bank: q[5]}
	buf[m.trunk.index] = math3d.MakeMatrix44(r3.Vector{X: q[0], Y: q[1], Z: q[2]}, base)

	for i, j := range m.joints {
		buf[j.Child.index] = math3d.MultiplyMatrices(j.Matrix(q[BaseDOF+i]), buf[j.Parent.index])
	}

	return buf
}
