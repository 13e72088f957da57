package calibration

import "go.viam.com/rdk/spatialmath"

// Result is one complete calibration outcome. It is recomputed in full on
// every successful solve and replaced wholesale, never partially updated.
type Result struct {
	// CameraRobotPose is the sensor pose in the mount type's reference frame.
	CameraRobotPose spatialmath.Pose
	// TranslationError is the RMS translation residual in meters.
	TranslationError float64
	// RotationError is the RMS rotation residual in radians.
	RotationError float64
}
