// Package calibration holds the data model for hand-eye calibration: the
// paired pose samples, the recorded joint states, and the store that owns
// both.
package calibration

import (
	"go.viam.com/rdk/spatialmath"
	"gonum.org/v1/gonum/num/quat"
)

// TransformPair is one calibration observation: the end-effector pose in the
// world frame and the calibration-object pose in the sensor frame, captured at
// the same instant. Pairs are created together and stored together; a pair is
// never mutated after construction.
type TransformPair struct {
	EffectorWrtWorld spatialmath.Pose
	ObjectWrtSensor  spatialmath.Pose
}

// Renormalized returns the pair with each rotation scaled back to a unit
// quaternion, removing drift accumulated from intermediate arithmetic.
func (p TransformPair) Renormalized() TransformPair {
	return TransformPair{
		EffectorWrtWorld: renormalized(p.EffectorWrtWorld),
		ObjectWrtSensor:  renormalized(p.ObjectWrtSensor),
	}
}

func renormalized(pose spatialmath.Pose) spatialmath.Pose {
	q := pose.Orientation().Quaternion()
	if abs := quat.Abs(q); abs != 0 {
		q = quat.Scale(1/abs, q)
	}
	o := spatialmath.Quaternion(q)
	return spatialmath.NewPose(pose.Point(), &o)
}
