package calibration

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/rdk/spatialmath"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

func testPose(x, y, z, roll, pitch, yaw float64) spatialmath.Pose {
	return spatialmath.NewPose(r3.Vector{X: x, Y: y, Z: z}, &spatialmath.EulerAngles{Roll: roll, Pitch: pitch, Yaw: yaw})
}

func testPair(effRoll, objPitch float64) TransformPair {
	return TransformPair{
		EffectorWrtWorld: testPose(0.1, 0.2, 0.3, effRoll, 0, 0),
		ObjectWrtSensor:  testPose(0, 0, 0.5, 0, objPitch, 0),
	}
}

func TestRotationBetween(t *testing.T) {
	a := testPose(0, 0, 0, 0.3, 0, 0)
	b := testPose(1, 2, 3, 0.5, 0, 0)
	test.That(t, RotationBetween(a, b), test.ShouldAlmostEqual, 0.2, 1e-9)
	test.That(t, RotationBetween(a, a), test.ShouldAlmostEqual, 0, 1e-9)
}

func TestAppendDiversity(t *testing.T) {
	const eps = 1e-6

	store := NewSampleStore()
	test.That(t, store.Append(testPair(0, 1.0)), test.ShouldBeNil)
	test.That(t, store.Size(), test.ShouldEqual, 1)

	// effector half within the threshold of the first sample
	err := store.Append(testPair(MinRotationDelta-eps, 2.0))
	test.That(t, errors.Is(err, ErrInsufficientRotation), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "end-effector")
	test.That(t, store.Size(), test.ShouldEqual, 1)

	// camera half within the threshold, effector half fine
	err = store.Append(testPair(1.0, 1.0+MinRotationDelta-eps))
	test.That(t, errors.Is(err, ErrInsufficientRotation), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "camera")
	test.That(t, store.Size(), test.ShouldEqual, 1)

	// both halves past the threshold
	test.That(t, store.Append(testPair(MinRotationDelta+eps, 1.0+MinRotationDelta+eps)), test.ShouldBeNil)
	test.That(t, store.Size(), test.ShouldEqual, 2)
}

func TestStoreSequencesStayPaired(t *testing.T) {
	store := NewSampleStore()
	check := func() {
		test.That(t, len(store.EffectorPoses()), test.ShouldEqual, len(store.ObjectPoses()))
	}
	check()
	test.That(t, store.Append(testPair(0, 0)), test.ShouldBeNil)
	check()
	test.That(t, store.Append(testPair(0.5, 0.5)), test.ShouldBeNil)
	check()
	test.That(t, store.Append(testPair(1.0, 1.0)), test.ShouldBeNil)
	check()
	test.That(t, store.DeleteLatest(), test.ShouldBeNil)
	check()
	store.Clear()
	check()
	test.That(t, store.Size(), test.ShouldEqual, 0)
}

func TestDeleteLatest(t *testing.T) {
	store := NewSampleStore()
	test.That(t, errors.Is(store.DeleteLatest(), ErrEmptyStore), test.ShouldBeTrue)

	test.That(t, store.Append(testPair(0, 0)), test.ShouldBeNil)
	test.That(t, store.Append(testPair(0.5, 0.5)), test.ShouldBeNil)
	names := []string{"j1", "j2"}
	test.That(t, store.RecordJointState(names, []float64{0, 0}), test.ShouldBeNil)
	test.That(t, store.RecordJointState(names, []float64{0.5, -0.5}), test.ShouldBeNil)

	latest := store.Pairs()[1]
	test.That(t, store.DeleteLatest(), test.ShouldBeNil)
	test.That(t, store.Size(), test.ShouldEqual, 1)
	test.That(t, store.JointStateCount(), test.ShouldEqual, 1)
	remaining := store.Pairs()[0]
	test.That(t, spatialmath.PoseAlmostEqual(remaining.EffectorWrtWorld, latest.EffectorWrtWorld), test.ShouldBeFalse)

	test.That(t, store.DeleteLatest(), test.ShouldBeNil)
	test.That(t, errors.Is(store.DeleteLatest(), ErrEmptyStore), test.ShouldBeTrue)
	test.That(t, store.Size(), test.ShouldEqual, 0)
}

func TestAppendRenormalizes(t *testing.T) {
	store := NewSampleStore()
	test.That(t, store.Append(testPair(0.3, 0.7)), test.ShouldBeNil)
	pair := store.Pairs()[0]
	test.That(t, quat.Abs(pair.EffectorWrtWorld.Orientation().Quaternion()), test.ShouldAlmostEqual, 1, 1e-12)
	test.That(t, quat.Abs(pair.ObjectWrtSensor.Orientation().Quaternion()), test.ShouldAlmostEqual, 1, 1e-12)
}

func TestRecordJointState(t *testing.T) {
	store := NewSampleStore()

	err := store.RecordJointState([]string{"j1", "j2"}, []float64{1})
	test.That(t, errors.Is(err, ErrJointStateShape), test.ShouldBeTrue)
	test.That(t, store.JointStateCount(), test.ShouldEqual, 0)

	test.That(t, store.RecordJointState([]string{"j1", "j2"}, []float64{0.1, 0.2}), test.ShouldBeNil)
	test.That(t, store.RecordJointState([]string{"j1", "j2"}, []float64{0.3, 0.4}), test.ShouldBeNil)
	test.That(t, store.JointStateCount(), test.ShouldEqual, 2)
	test.That(t, store.JointNames(), test.ShouldResemble, []string{"j1", "j2"})

	// a different name definition invalidates everything recorded before it
	test.That(t, store.RecordJointState([]string{"a", "b", "c"}, []float64{1, 2, 3}), test.ShouldBeNil)
	test.That(t, store.JointStateCount(), test.ShouldEqual, 1)
	test.That(t, store.JointNames(), test.ShouldResemble, []string{"a", "b", "c"})
}

func TestCheckJointStates(t *testing.T) {
	store := NewSampleStore()
	test.That(t, errors.Is(store.CheckJointStates(), ErrNoJointStates), test.ShouldBeTrue)

	store.SetJointStates([]string{"j1", "j2"}, [][]float64{{1, 2}, {3}})
	test.That(t, errors.Is(store.CheckJointStates(), ErrJointStateShape), test.ShouldBeTrue)

	store.SetJointStates([]string{"j1", "j2"}, [][]float64{{1, 2}, {3, 4}})
	test.That(t, store.CheckJointStates(), test.ShouldBeNil)
}

func TestClearKeepsJointNames(t *testing.T) {
	store := NewSampleStore()
	test.That(t, store.Append(testPair(0, 0)), test.ShouldBeNil)
	test.That(t, store.RecordJointState([]string{"j1"}, []float64{1}), test.ShouldBeNil)
	store.Clear()
	test.That(t, store.Size(), test.ShouldEqual, 0)
	test.That(t, store.JointStateCount(), test.ShouldEqual, 0)
	test.That(t, store.JointNames(), test.ShouldResemble, []string{"j1"})
}

func TestMinRotationDelta(t *testing.T) {
	test.That(t, MinRotationDelta, test.ShouldAlmostEqual, 5*math.Pi/180, 1e-12)
}
