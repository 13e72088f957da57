package calibfile

import (
	"os"

	"github.com/pkg/errors"
	"go.viam.com/rdk/logging"
	"gopkg.in/yaml.v3"
)

type jointStateFile struct {
	JointNames  []string    `yaml:"joint_names"`
	JointValues [][]float64 `yaml:"joint_values"`
}

// SaveJointStates writes joint names and one row of values per recorded state
// to a YAML file at path. Every row must already match the names in length.
func SaveJointStates(path string, names []string, values [][]float64) error {
	data, err := yaml.Marshal(jointStateFile{JointNames: names, JointValues: values})
	if err != nil {
		return errors.Wrap(err, "could not serialize joint states")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "could not write joint-state file %q", path)
	}
	return nil
}

// LoadJointStates reads a joint-state YAML file. Rows whose length does not
// match the joint names are dropped with a warning rather than failing the
// load; a file missing either key is an error.
func LoadJointStates(path string, logger logging.Logger) ([]string, [][]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "could not read joint-state file %q", path)
	}
	var doc jointStateFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, errors.Wrapf(err, "could not parse joint-state file %q", path)
	}
	if len(doc.JointNames) == 0 {
		return nil, nil, errors.Errorf("no joint_names in %q", path)
	}
	if doc.JointValues == nil {
		return nil, nil, errors.Errorf("no joint_values in %q", path)
	}
	values := make([][]float64, 0, len(doc.JointValues))
	for i, row := range doc.JointValues {
		if len(row) != len(doc.JointNames) {
			logger.Warnw("dropping joint-state row not matching joint names",
				"row", i, "values", len(row), "names", len(doc.JointNames))
			continue
		}
		values = append(values, row)
	}
	return doc.JointNames, values, nil
}
