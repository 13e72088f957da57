package calibration

import (
	"strings"

	"github.com/pkg/errors"
)

// SensorMountType states where the sensor is rigidly attached, which in turn
// decides which frame role is the calibration's reference ("from") frame.
type SensorMountType int

const (
	// EyeToHand is a sensor fixed in the workspace observing the moving
	// end-effector; the calibration is published from the robot base.
	EyeToHand SensorMountType = iota
	// EyeInHand is a sensor riding on the end-effector observing the
	// workspace; the calibration is published from the end-effector.
	EyeInHand
)

func (m SensorMountType) String() string {
	if m == EyeInHand {
		return "EYE-IN-HAND"
	}
	return "EYE-TO-HAND"
}

// ParseSensorMountType parses the textual mount type, accepting either the
// canonical form or underscores, case-insensitively.
func ParseSensorMountType(s string) (SensorMountType, error) {
	switch strings.ToUpper(strings.ReplaceAll(s, "_", "-")) {
	case "EYE-TO-HAND":
		return EyeToHand, nil
	case "EYE-IN-HAND":
		return EyeInHand, nil
	}
	return 0, errors.Errorf("unknown sensor mount type %q", s)
}

// FrameNames are the four frames a transform pair is sampled between.
type FrameNames struct {
	Sensor      string
	Object      string
	Base        string
	EndEffector string
}

// Validate checks that all four frame names are configured, since all four
// are needed to look up the pair of transforms.
func (f FrameNames) Validate() error {
	for _, n := range []struct{ role, name string }{
		{"sensor", f.Sensor},
		{"object", f.Object},
		{"base", f.Base},
		{"end-effector", f.EndEffector},
	} {
		if n.name == "" {
			return errors.Wrap(ErrEmptyFrameName, n.role)
		}
	}
	return nil
}

// From returns the calibration's reference frame for the given mount type:
// the base for eye-to-hand, the end-effector for eye-in-hand.
func (f FrameNames) From(mount SensorMountType) string {
	if mount == EyeInHand {
		return f.EndEffector
	}
	return f.Base
}

// To returns the frame the solved calibration positions, always the sensor.
func (f FrameNames) To() string {
	return f.Sensor
}
