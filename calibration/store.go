package calibration

import (
	"math"
	"slices"

	"go.viam.com/rdk/spatialmath"
	"gonum.org/v1/gonum/num/quat"
)

// MinRotationDelta is the smallest allowed rotation between any two stored
// samples, 5 degrees. Samples closer than this add too little information to
// the AX=XB system relative to their noise.
const MinRotationDelta = math.Pi / 36.

// RotationBetween returns the angle in radians of the relative rotation
// between the orientations of two poses.
func RotationBetween(a, b spatialmath.Pose) float64 {
	rel := quat.Mul(quat.Conj(a.Orientation().Quaternion()), b.Orientation().Quaternion())
	w := math.Abs(rel.Real)
	if w > 1 {
		w = 1
	}
	return 2 * math.Acos(w)
}

// SampleStore owns the ordered calibration observations: the two parallel
// pose sequences, which are always equal in length, and the recorded joint
// states. It is not safe for concurrent use; all mutations are funneled
// through the goroutine that owns the store (see the autocal package).
type SampleStore struct {
	effectorWrtWorld []spatialmath.Pose
	objectWrtSensor  []spatialmath.Pose

	jointNames  []string
	jointValues [][]float64
}

// NewSampleStore returns an empty store.
func NewSampleStore() *SampleStore {
	return &SampleStore{}
}

// Append adds a pair after checking each of its halves against the
// corresponding half of every stored pair for rotation diversity. A rejected
// pair leaves the store unchanged. Rotations are renormalized before storage.
func (s *SampleStore) Append(pair TransformPair) error {
	for _, prior := range s.effectorWrtWorld {
		if RotationBetween(pair.EffectorWrtWorld, prior) < MinRotationDelta {
			return NewInsufficientRotationError("end-effector")
		}
	}
	for _, prior := range s.objectWrtSensor {
		if RotationBetween(pair.ObjectWrtSensor, prior) < MinRotationDelta {
			return NewInsufficientRotationError("camera")
		}
	}
	pair = pair.Renormalized()
	s.effectorWrtWorld = append(s.effectorWrtWorld, pair.EffectorWrtWorld)
	s.objectWrtSensor = append(s.objectWrtSensor, pair.ObjectWrtSensor)
	return nil
}

// DeleteLatest removes the most recently appended pair and the joint state
// recorded with it. Only the tail may ever be removed. The pair and
// joint-state sequences are loaded independently from files, so either may be
// empty; DeleteLatest fails only when there is nothing at all to delete.
func (s *SampleStore) DeleteLatest() error {
	if len(s.effectorWrtWorld) == 0 && len(s.jointValues) == 0 {
		return ErrEmptyStore
	}
	if n := len(s.effectorWrtWorld); n > 0 {
		s.effectorWrtWorld = s.effectorWrtWorld[:n-1]
		s.objectWrtSensor = s.objectWrtSensor[:n-1]
	}
	if n := len(s.jointValues); n > 0 {
		s.jointValues = s.jointValues[:n-1]
	}
	return nil
}

// Clear empties the pose sequences and the recorded joint states. The joint
// name definition is kept.
func (s *SampleStore) Clear() {
	s.effectorWrtWorld = nil
	s.objectWrtSensor = nil
	s.jointValues = nil
}

// Size returns the common length of the two pose sequences.
func (s *SampleStore) Size() int {
	return len(s.effectorWrtWorld)
}

// EffectorPoses returns a snapshot of the end-effector pose sequence.
func (s *SampleStore) EffectorPoses() []spatialmath.Pose {
	return slices.Clone(s.effectorWrtWorld)
}

// ObjectPoses returns a snapshot of the object pose sequence.
func (s *SampleStore) ObjectPoses() []spatialmath.Pose {
	return slices.Clone(s.objectWrtSensor)
}

// Pairs returns a snapshot of the stored observations in insertion order.
func (s *SampleStore) Pairs() []TransformPair {
	pairs := make([]TransformPair, len(s.effectorWrtWorld))
	for i := range pairs {
		pairs[i] = TransformPair{s.effectorWrtWorld[i], s.objectWrtSensor[i]}
	}
	return pairs
}

// ReplacePairs swaps in a loaded pose sequence wholesale, bypassing the
// diversity rule; a saved file is trusted to already be diverse.
func (s *SampleStore) ReplacePairs(pairs []TransformPair) {
	s.effectorWrtWorld = make([]spatialmath.Pose, len(pairs))
	s.objectWrtSensor = make([]spatialmath.Pose, len(pairs))
	for i, p := range pairs {
		s.effectorWrtWorld[i] = p.EffectorWrtWorld
		s.objectWrtSensor[i] = p.ObjectWrtSensor
	}
}

// RecordJointState appends one joint-position snapshot. All records share one
// joint name definition; recording under a different definition (for example
// after switching planning groups) invalidates and clears every prior record.
func (s *SampleStore) RecordJointState(names []string, values []float64) error {
	if len(names) != len(values) {
		return NewJointStateShapeError(len(names), len(values))
	}
	if !slices.Equal(s.jointNames, names) {
		s.jointNames = slices.Clone(names)
		s.jointValues = nil
	}
	s.jointValues = append(s.jointValues, slices.Clone(values))
	return nil
}

// SetJointStates replaces the recorded joint states wholesale, e.g. from a
// loaded file.
func (s *SampleStore) SetJointStates(names []string, values [][]float64) {
	s.jointNames = slices.Clone(names)
	s.jointValues = make([][]float64, len(values))
	for i, v := range values {
		s.jointValues[i] = slices.Clone(v)
	}
}

// ClearJointStates drops the recorded joint states and their name definition.
func (s *SampleStore) ClearJointStates() {
	s.jointNames = nil
	s.jointValues = nil
}

// JointNames returns the shared joint name definition.
func (s *SampleStore) JointNames() []string {
	return slices.Clone(s.jointNames)
}

// JointValues returns a snapshot of the recorded joint-position sequences.
func (s *SampleStore) JointValues() [][]float64 {
	out := make([][]float64, len(s.jointValues))
	for i, v := range s.jointValues {
		out[i] = slices.Clone(v)
	}
	return out
}

// JointStateCount returns the number of recorded joint states.
func (s *SampleStore) JointStateCount() int {
	return len(s.jointValues)
}

// CheckJointStates verifies that joint states have been recorded and that
// every record's value count matches the joint name count.
func (s *SampleStore) CheckJointStates() error {
	if len(s.jointNames) == 0 || len(s.jointValues) == 0 {
		return ErrNoJointStates
	}
	for _, values := range s.jointValues {
		if len(values) != len(s.jointNames) {
			return NewJointStateShapeError(len(s.jointNames), len(values))
		}
	}
	return nil
}
