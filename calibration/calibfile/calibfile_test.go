package calibfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/spatialmath"
	"go.viam.com/test"

	"github.com/viam-labs/handeye/calibration"
)

func testPairs() []calibration.TransformPair {
	return []calibration.TransformPair{
		{
			EffectorWrtWorld: spatialmath.NewPose(
				r3.Vector{X: 0.4, Y: 0.1, Z: 0.5},
				&spatialmath.EulerAngles{Roll: 0.3, Pitch: -0.2, Yaw: 0.7},
			),
			ObjectWrtSensor: spatialmath.NewPose(
				r3.Vector{X: -0.1, Y: 0.05, Z: 0.8},
				&spatialmath.EulerAngles{Roll: -0.4, Pitch: 0.15, Yaw: -0.6},
			),
		},
		{
			EffectorWrtWorld: spatialmath.NewPose(
				r3.Vector{X: 0.2, Y: -0.3, Z: 0.6},
				&spatialmath.EulerAngles{Roll: 0.1, Pitch: 0.5, Yaw: -0.2},
			),
			ObjectWrtSensor: spatialmath.NewPose(
				r3.Vector{X: 0.02, Y: 0.12, Z: 0.75},
				&spatialmath.EulerAngles{Roll: 0.25, Pitch: -0.35, Yaw: 0.45},
			),
		},
	}
}

func TestSamplesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.yaml")
	pairs := testPairs()
	test.That(t, SaveSamples(path, pairs), test.ShouldBeNil)

	loaded, err := LoadSamples(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(loaded), test.ShouldEqual, len(pairs))
	for i := range pairs {
		test.That(t, spatialmath.PoseAlmostEqualEps(
			loaded[i].EffectorWrtWorld, pairs[i].EffectorWrtWorld, 1e-9), test.ShouldBeTrue)
		test.That(t, spatialmath.PoseAlmostEqualEps(
			loaded[i].ObjectWrtSensor, pairs[i].ObjectWrtSensor, 1e-9), test.ShouldBeTrue)
	}
}

func TestLoadSamplesMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	content := `- effector_wrt_world: [1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1]
  object_wrt_sensor: [1, 0, 0]
`
	test.That(t, os.WriteFile(path, []byte(content), 0o644), test.ShouldBeNil)

	_, err := LoadSamples(path)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "sample 0 object_wrt_sensor")
}

func TestLoadSamplesMissingFile(t *testing.T) {
	_, err := LoadSamples(filepath.Join(t.TempDir(), "nope.yaml"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestJointStatesRoundTrip(t *testing.T) {
	logger := logging.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "states.yaml")
	names := []string{"shoulder", "elbow", "wrist"}
	values := [][]float64{{0.1, -0.4, 1.2}, {0.3, 0.2, -0.8}}
	test.That(t, SaveJointStates(path, names, values), test.ShouldBeNil)

	gotNames, gotValues, err := LoadJointStates(path, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, gotNames, test.ShouldResemble, names)
	test.That(t, gotValues, test.ShouldResemble, values)
}

func TestLoadJointStatesDropsBadRows(t *testing.T) {
	logger := logging.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "states.yaml")
	content := `joint_names: [a, b]
joint_values:
  - [0.1, 0.2]
  - [0.3]
  - [0.4, 0.5]
`
	test.That(t, os.WriteFile(path, []byte(content), 0o644), test.ShouldBeNil)

	names, values, err := LoadJointStates(path, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, names, test.ShouldResemble, []string{"a", "b"})
	test.That(t, values, test.ShouldResemble, [][]float64{{0.1, 0.2}, {0.4, 0.5}})
}

func TestLoadJointStatesMissingKeys(t *testing.T) {
	logger := logging.NewTestLogger(t)
	dir := t.TempDir()

	noNames := filepath.Join(dir, "nonames.yaml")
	test.That(t, os.WriteFile(noNames, []byte("joint_values: [[0.1]]\n"), 0o644), test.ShouldBeNil)
	_, _, err := LoadJointStates(noNames, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "joint_names")

	noValues := filepath.Join(dir, "novalues.yaml")
	test.That(t, os.WriteFile(noValues, []byte("joint_names: [a]\n"), 0o644), test.ShouldBeNil)
	_, _, err = LoadJointStates(noValues, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "joint_values")
}

func launchParams() LaunchParams {
	pose := spatialmath.NewPose(
		r3.Vector{X: 0.25, Y: -0.5, Z: 1.5},
		&spatialmath.EulerAngles{Roll: 0.1, Pitch: 0.2, Yaw: 0.3},
	)
	return NewLaunchParams(pose, calibration.EyeInHand, "tool0", "camera_link")
}

func TestRenderers(t *testing.T) {
	p := launchParams()

	py := RenderPython(p)
	test.That(t, py, test.ShouldContainSubstring, "generate_launch_description")
	test.That(t, py, test.ShouldContainSubstring, `"tool0"`)
	test.That(t, py, test.ShouldContainSubstring, `"--child-frame-id"`)
	test.That(t, py, test.ShouldContainSubstring, "EYE-IN-HAND: tool0 -> camera_link")
	test.That(t, py, test.ShouldContainSubstring, `"--x",
                "0.25"`)

	xml := RenderXML(p)
	test.That(t, xml, test.ShouldContainSubstring, "<launch>")
	test.That(t, xml, test.ShouldContainSubstring, `exec="static_transform_publisher"`)
	test.That(t, xml, test.ShouldContainSubstring, "--frame-id tool0")
	test.That(t, xml, test.ShouldContainSubstring, "--z 1.5")

	yml := RenderYAML(p)
	test.That(t, yml, test.ShouldContainSubstring, "launch:")
	test.That(t, yml, test.ShouldContainSubstring, "exec: static_transform_publisher")
	test.That(t, yml, test.ShouldContainSubstring, "--child-frame-id camera_link")
}

func TestWriteLaunchFileExtensions(t *testing.T) {
	p := launchParams()
	dir := t.TempDir()

	final, err := WriteLaunchFile(filepath.Join(dir, "calib"), p)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, final, test.ShouldEqual, filepath.Join(dir, "calib.launch.py"))

	final, err = WriteLaunchFile(filepath.Join(dir, "calib.launch"), p)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, final, test.ShouldEqual, filepath.Join(dir, "calib.launch.py"))

	final, err = WriteLaunchFile(filepath.Join(dir, "calib.xml"), p)
	test.That(t, err, test.ShouldBeNil)
	data, err := os.ReadFile(final)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldContainSubstring, "<launch>")

	final, err = WriteLaunchFile(filepath.Join(dir, "calib.yml"), p)
	test.That(t, err, test.ShouldBeNil)
	data, err = os.ReadFile(final)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldContainSubstring, "launch:")

	_, err = WriteLaunchFile(filepath.Join(dir, "calib.json"), p)
	test.That(t, errors.Is(err, ErrUnknownLaunchType), test.ShouldBeTrue)
}
