package locomotion

import (
	"github.com/pkg/errors"
)

var (
	// ErrConfiguration is the cause of every error resulting from a bad setup:
	// an unknown IK update rule, a gait referencing a limb which the robot
	// doesn't have, and so on. These are fatal, and are reported as early as
	// possible (at construction rather than at query time).
	ErrConfiguration = errors.New("configuration error")

	// ErrConsistency is the cause of errors raised when the contact schedule
	// and the footstep planner disagree about whether a limb is in stance. This
	// means that the two have drifted out of sync, which can't be recovered.
	ErrConsistency = errors.New("consistency violation")
)

// ConfigurationErrorf returns an error wrapping ErrConfiguration.
func ConfigurationErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrConfiguration, format, args...)
}

// ConsistencyErrorf returns an error wrapping ErrConsistency.
func ConsistencyErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrConsistency, format, args...)
}
