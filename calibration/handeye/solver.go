// Package handeye implements AX=XB hand-eye calibration solvers and the
// registry through which a hosting application selects one by descriptor.
package handeye

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/spatialmath"

	"github.com/viam-labs/handeye/calibration"
)

// Solver computes a camera↔robot transform from paired pose samples. One
// Solver may answer to several named variants; the variant selector is the
// last token of a registry descriptor ("plugin/variant").
type Solver interface {
	// Initialize performs one-time setup and is idempotent. A Solver whose
	// Initialize fails is discarded, not retried.
	Initialize() error

	// SolverNames lists the variant names this solver answers to.
	SolverNames() []string

	// Solve computes the camera pose in the reference frame implied by the
	// mount type. Deterministic for identical inputs; must not mutate them.
	// Degenerate sample sets are the solver's own failure mode, reported via
	// the returned error.
	Solve(effector, object []spatialmath.Pose, mount calibration.SensorMountType, variant string) (spatialmath.Pose, error)

	// ReprojectionError summarizes how well cameraRobot explains the observed
	// pairs, as RMS translation (meters) and rotation (radians) residuals. It
	// is computable whenever a pose exists, independent of Solve succeeding
	// again.
	ReprojectionError(effector, object []spatialmath.Pose, cameraRobot spatialmath.Pose, mount calibration.SensorMountType) (float64, float64)
}

// ErrNoSolverAvailable is returned when a descriptor cannot be resolved to an
// initialized solver instance.
var ErrNoSolverAvailable = errors.New("no hand-eye calibration solver available")

var (
	registryMu sync.Mutex
	registry   = map[string]func() Solver{}
)

// Register makes a solver constructor selectable under the given plugin name.
// Discovery is an explicit registration step owned by the hosting application;
// registering the same name twice panics.
func Register(plugin string, ctor func() Solver) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[plugin]; ok {
		panic(errors.Errorf("hand-eye solver plugin %q already registered", plugin))
	}
	registry[plugin] = ctor
}

// Descriptors instantiates and initializes every registered plugin and
// returns the selectable "plugin/variant" descriptors, sorted. A plugin whose
// Initialize fails is skipped; the rest of the system stays usable.
func Descriptors(logger logging.Logger) []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	var descriptors []string
	for plugin, ctor := range registry {
		solver := ctor()
		if err := solver.Initialize(); err != nil {
			logger.Errorw("could not initialize hand-eye solver plugin", "plugin", plugin, "error", err)
			continue
		}
		for _, variant := range solver.SolverNames() {
			descriptors = append(descriptors, plugin+"/"+variant)
		}
	}
	sort.Strings(descriptors)
	return descriptors
}

// Select resolves a "plugin/variant" descriptor to an initialized solver
// instance and the variant name to pass to its Solve.
func Select(descriptor string) (Solver, string, error) {
	idx := strings.LastIndex(descriptor, "/")
	if idx <= 0 || idx == len(descriptor)-1 {
		return nil, "", errors.Wrapf(ErrNoSolverAvailable, "malformed descriptor %q", descriptor)
	}
	plugin, variant := descriptor[:idx], descriptor[idx+1:]

	registryMu.Lock()
	ctor, ok := registry[plugin]
	registryMu.Unlock()
	if !ok {
		return nil, "", errors.Wrapf(ErrNoSolverAvailable, "unknown plugin %q", plugin)
	}

	solver := ctor()
	if err := solver.Initialize(); err != nil {
		return nil, "", errors.Wrapf(ErrNoSolverAvailable, "plugin %q failed to initialize: %v", plugin, err)
	}
	return solver, variant, nil
}
