package calibration

import "github.com/pkg/errors"

var (
	// ErrEmptyStore is returned when deleting from a store with nothing in it.
	ErrEmptyStore = errors.New("sample store is empty")

	// ErrInsufficientRotation is returned when a candidate sample's rotation is
	// within MinRotationDelta of a previously stored sample.
	ErrInsufficientRotation = errors.New("orientation is too similar to a prior sample")

	// ErrNoJointStates is returned when an operation needs recorded joint
	// states and there are none.
	ErrNoJointStates = errors.New("no joint states recorded")

	// ErrJointStateShape is returned when a joint state's value count does not
	// match the joint name count.
	ErrJointStateShape = errors.New("joint state does not match joint names")

	// ErrEmptyFrameName is returned when one of the four frame names needed to
	// look up a transform pair is not configured.
	ErrEmptyFrameName = errors.New("frame name is empty")
)

// NewInsufficientRotationError flags which half of a candidate pair was too
// close to an existing sample.
func NewInsufficientRotationError(half string) error {
	return errors.Wrapf(ErrInsufficientRotation, "%s sample rejected", half)
}

// NewJointStateShapeError reports a mismatched name/value count.
func NewJointStateShapeError(names, values int) error {
	return errors.Wrapf(ErrJointStateShape, "%d values for %d joint names", values, names)
}
