package robot

import (
	"fmt"

	"github.com/golang/geo/r3"
)

type Kind int

const (
	KindFoot Kind = iota
	KindHand
	KindHead
	KindPelvis
)

func ParseKind(s string) (Kind, error) {
	switch s {
	case "foot", "leg":
		return KindFoot, nil
	case "hand":
		return KindHand, nil
	case "head":
		return KindHead, nil
	case "pelvis":
		return KindPelvis, nil
	}

	return 0, fmt.Errorf("unknown limb kind: %q", s)
}

func (k Kind) String() string {
	switch k {
	case KindFoot:
		return "foot"
	case KindHand:
		return "hand"
	case KindHead:
		return "head"
	case KindPelvis:
		return "pelvis"
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

type Side int

const (
	SideCenter Side = iota
	SideLeft
	SideRight
)

func ParseSide(s string) (Side, error) {
	switch s {
	case "", "center":
		return SideCenter, nil
	case "left", "l":
		return SideLeft, nil
	case "right", "r":
		return SideRight, nil
	}

	return 0, fmt.Errorf("unknown limb side: %q", s)
}

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	}

	return "center"
}

// Limb is a chain of joints from the trunk out to an end effector: a leg, an
// arm, the neck. The pelvis limb has no joints at all; its end effector is on
// the trunk, and it only exists so that it can have a motion profile.
type Limb struct {
	Name  string
	Kind  Kind
	Side  Side
	EE    *Body
	Point EndEffector

	// Joints between the trunk and EE, trunk first.
	Joints []*Joint

	// The vector from the trunk origin to the end effector in the standing
	// pose, in the trunk's space. This is where the limb sits by default, and
	// the nominal step offset for feet.
	DefaultOffset r3.Vector

	model *Model
}

func (l *Limb) String() string {
	return fmt.Sprintf("&Limb{%s %s %s}", l.Name, l.Kind, l.Side)
}

// IsFoot returns true if the limb makes contact with the ground.
func (l *Limb) IsFoot() bool {
	return l.Kind == KindFoot
}

// EEWorldPos returns the current position of the end effector in the world.
func (l *Limb) EEWorldPos() r3.Vector {
	return l.model.WorldCoordinates(l.Point.Offset, l.EE)
}

// Model returns the robot which the limb belongs to.
func (l *Limb) Model() *Model {
	return l.model
}
