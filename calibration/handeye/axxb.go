package handeye

import (
	"math"

	"github.com/pkg/errors"
	"go.viam.com/rdk/spatialmath"
	"gonum.org/v1/gonum/mat"

	"github.com/viam-labs/handeye/calibration"
)

// PluginName is the registry name of the built-in AX=XB solver collection.
const PluginName = "axxb"

// Variant names of the classic AX=XB solvers the built-in plugin exposes.
const (
	TsaiLenz1989       = "TsaiLenz1989"
	ParkMartin1994     = "ParkMartin1994"
	HoraudDornaika1995 = "HoraudDornaika1995"
	Andreff1999        = "Andreff1999"
	Daniilidis1999     = "Daniilidis1999"
)

func init() {
	Register(PluginName, func() Solver { return &axxbSolver{} })
}

// axxbSolver implements the five classic closed-form AX=XB methods over one
// shared motion-pair construction.
type axxbSolver struct {
	initialized bool
}

func (s *axxbSolver) Initialize() error {
	s.initialized = true
	return nil
}

func (s *axxbSolver) SolverNames() []string {
	return []string{TsaiLenz1989, ParkMartin1994, HoraudDornaika1995, Andreff1999, Daniilidis1999}
}

func (s *axxbSolver) Solve(
	effector, object []spatialmath.Pose,
	mount calibration.SensorMountType,
	variant string,
) (spatialmath.Pose, error) {
	if !s.initialized {
		return nil, errors.New("solver instance is not initialized")
	}
	if len(effector) != len(object) {
		return nil, errors.Errorf("sample count mismatch: %d effector, %d object", len(effector), len(object))
	}
	if len(effector) < 3 {
		return nil, NewInsufficientSamplesError(len(effector))
	}
	motions := motionPairs(effector, object, mount)
	if err := checkMotionDiversity(motions); err != nil {
		return nil, err
	}

	var (
		rot   *mat.Dense
		trans *mat.VecDense
		err   error
	)
	switch variant {
	case TsaiLenz1989:
		rot, trans, err = solveTsaiLenz(motions)
	case ParkMartin1994:
		rot, trans, err = solveParkMartin(motions)
	case HoraudDornaika1995:
		rot, trans, err = solveHoraudDornaika(motions)
	case Andreff1999:
		rot, trans, err = solveAndreff(motions)
	case Daniilidis1999:
		rot, trans, err = solveDaniilidis(motions)
	default:
		return nil, errors.Errorf("unknown solver variant %q", variant)
	}
	if err != nil {
		return nil, err
	}
	return poseFromRotTrans(rot, trans)
}

// ReprojectionError reports the RMS residual of (AᵢX)⁻¹(XBᵢ) over all motion
// pairs: how far the candidate calibration is from closing each loop.
func (s *axxbSolver) ReprojectionError(
	effector, object []spatialmath.Pose,
	cameraRobot spatialmath.Pose,
	mount calibration.SensorMountType,
) (float64, float64) {
	motions := motionPairs(effector, object, mount)
	if len(motions) == 0 {
		return 0, 0
	}
	var transSq, rotSq float64
	for _, m := range motions {
		residual := spatialmath.PoseBetween(
			spatialmath.Compose(m.a, cameraRobot),
			spatialmath.Compose(cameraRobot, m.b),
		)
		transSq += residual.Point().Norm2()
		_, theta := rotationAxisAngle(residual)
		rotSq += theta * theta
	}
	n := float64(len(motions))
	return math.Sqrt(transSq / n), math.Sqrt(rotSq / n)
}
