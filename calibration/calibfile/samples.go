// Package calibfile reads and writes the calibration's on-disk artifacts:
// pose-sample files, prerecorded joint-state files, and the launch scripts
// that publish a solved camera pose as a static transform.
package calibfile

import (
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/rdk/spatialmath"
	"gopkg.in/yaml.v3"

	"github.com/viam-labs/handeye/calibration"
)

// sampleRecord is one pose sample on disk. Each transform is the 16 entries
// of its 4x4 homogeneous matrix in row-major order.
type sampleRecord struct {
	EffectorWrtWorld []float64 `yaml:"effector_wrt_world,flow"`
	ObjectWrtSensor  []float64 `yaml:"object_wrt_sensor,flow"`
}

// SaveSamples writes the pose samples to a YAML file at path. Loading the
// file back yields bit-exact copies of the serialized matrices.
func SaveSamples(path string, pairs []calibration.TransformPair) error {
	records := make([]sampleRecord, 0, len(pairs))
	for _, pair := range pairs {
		records = append(records, sampleRecord{
			EffectorWrtWorld: poseToRowMajor(pair.EffectorWrtWorld),
			ObjectWrtSensor:  poseToRowMajor(pair.ObjectWrtSensor),
		})
	}
	data, err := yaml.Marshal(records)
	if err != nil {
		return errors.Wrap(err, "could not serialize pose samples")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "could not write sample file %q", path)
	}
	return nil
}

// LoadSamples reads a pose-sample YAML file. A malformed record aborts the
// whole load; nothing is returned from a file that does not parse cleanly.
func LoadSamples(path string) ([]calibration.TransformPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read sample file %q", path)
	}
	var records []sampleRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrapf(err, "could not parse sample file %q", path)
	}
	pairs := make([]calibration.TransformPair, 0, len(records))
	for i, record := range records {
		effector, err := poseFromRowMajor(record.EffectorWrtWorld)
		if err != nil {
			return nil, errors.Wrapf(err, "sample %d effector_wrt_world", i)
		}
		object, err := poseFromRowMajor(record.ObjectWrtSensor)
		if err != nil {
			return nil, errors.Wrapf(err, "sample %d object_wrt_sensor", i)
		}
		pairs = append(pairs, calibration.TransformPair{EffectorWrtWorld: effector, ObjectWrtSensor: object})
	}
	return pairs, nil
}

// poseToRowMajor flattens a pose into its 4x4 homogeneous matrix, row major.
func poseToRowMajor(p spatialmath.Pose) []float64 {
	rm := p.Orientation().RotationMatrix()
	pt := p.Point()
	return []float64{
		rm.At(0, 0), rm.At(0, 1), rm.At(0, 2), pt.X,
		rm.At(1, 0), rm.At(1, 1), rm.At(1, 2), pt.Y,
		rm.At(2, 0), rm.At(2, 1), rm.At(2, 2), pt.Z,
		0, 0, 0, 1,
	}
}

func poseFromRowMajor(m []float64) (spatialmath.Pose, error) {
	if len(m) != 16 {
		return nil, errors.Errorf("transform has %d entries, want 16", len(m))
	}
	rm, err := spatialmath.NewRotationMatrix([]float64{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	})
	if err != nil {
		return nil, err
	}
	return spatialmath.NewPose(r3.Vector{X: m[3], Y: m[7], Z: m[11]}, rm), nil
}
