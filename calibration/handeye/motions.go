package handeye

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/rdk/spatialmath"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"github.com/viam-labs/handeye/calibration"
)

// ErrDegenerateMotions is returned when the sample set cannot constrain the
// calibration, e.g. when all relative rotations share one axis.
var ErrDegenerateMotions = errors.New("sample motions are degenerate")

// NewInsufficientSamplesError reports too few samples to form a solvable
// AX=XB system.
func NewInsufficientSamplesError(n int) error {
	return errors.Errorf("hand-eye calibration needs at least 3 samples, have %d", n)
}

// motion is one AX=XB equation: A is the relative end-effector motion between
// two consecutive samples, B the corresponding relative sensor motion.
type motion struct {
	a spatialmath.Pose
	b spatialmath.Pose
}

// motionPairs builds the motion set from consecutive samples. An eye-to-hand
// mount inverts the effector poses first, which reduces both mounts to the
// same system; the solved X is then the camera pose in the end-effector frame
// (eye-in-hand) or in the robot base frame (eye-to-hand).
func motionPairs(effector, object []spatialmath.Pose, mount calibration.SensorMountType) []motion {
	eff := effector
	if mount == calibration.EyeToHand {
		eff = make([]spatialmath.Pose, len(effector))
		for i, e := range effector {
			eff[i] = spatialmath.PoseInverse(e)
		}
	}
	var motions []motion
	for i := 0; i+1 < len(eff); i++ {
		motions = append(motions, motion{
			a: spatialmath.PoseBetween(eff[i], eff[i+1]),
			b: spatialmath.Compose(object[i], spatialmath.PoseInverse(object[i+1])),
		})
	}
	return motions
}

const minAxisSpread = 1e-6

// checkMotionDiversity rejects motion sets whose rotation axes are all
// parallel (or whose rotations are all trivial); these cannot determine the
// calibration's rotation.
func checkMotionDiversity(motions []motion) error {
	var axes []r3.Vector
	for _, m := range motions {
		axis, theta := rotationAxisAngle(m.a)
		if math.Abs(theta) < 1e-9 {
			continue
		}
		axes = append(axes, axis)
	}
	if len(axes) < 2 {
		return errors.Wrap(ErrDegenerateMotions, "fewer than two rotating motions")
	}
	spread := 0.
	for i := 0; i < len(axes); i++ {
		for j := i + 1; j < len(axes); j++ {
			if c := axes[i].Cross(axes[j]).Norm(); c > spread {
				spread = c
			}
		}
	}
	if spread < minAxisSpread {
		return errors.Wrap(ErrDegenerateMotions, "rotation axes are parallel")
	}
	return nil
}

// rotationAxisAngle returns the unit rotation axis and the minimal rotation
// angle of a pose, canonicalizing the quaternion's double cover so that the
// angle is in [0, π].
func rotationAxisAngle(p spatialmath.Pose) (r3.Vector, float64) {
	q := canonicalQuat(p.Orientation().Quaternion())
	v := r3.Vector{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
	s := v.Norm()
	theta := 2 * math.Atan2(s, q.Real)
	if s < 1e-12 {
		return r3.Vector{Z: 1}, theta
	}
	return v.Mul(1 / s), theta
}

func canonicalQuat(q quat.Number) quat.Number {
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	return q
}

func rotationOf(p spatialmath.Pose) *mat.Dense {
	return rotMatToDense(p.Orientation().RotationMatrix())
}

func rotMatToDense(rm *spatialmath.RotationMatrix) *mat.Dense {
	out := mat.NewDense(3, 3, nil)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out.Set(r, c, rm.At(r, c))
		}
	}
	return out
}

func translationOf(p spatialmath.Pose) *mat.VecDense {
	pt := p.Point()
	return mat.NewVecDense(3, []float64{pt.X, pt.Y, pt.Z})
}

func quatToDense(q quat.Number) *mat.Dense {
	o := spatialmath.Quaternion(q)
	return rotMatToDense(o.RotationMatrix())
}

func eye(n int) *mat.Dense {
	out := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		out.Set(i, i, 1)
	}
	return out
}

func skew(v r3.Vector) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0, -v.Z, v.Y,
		v.Z, 0, -v.X,
		-v.Y, v.X, 0,
	})
}

// kron returns the Kronecker product a ⊗ b.
func kron(a, b mat.Matrix) *mat.Dense {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	out := mat.NewDense(ar*br, ac*bc, nil)
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			for k := 0; k < br; k++ {
				for l := 0; l < bc; l++ {
					out.Set(i*br+k, j*bc+l, a.At(i, j)*b.At(k, l))
				}
			}
		}
	}
	return out
}

func poseFromRotTrans(rot *mat.Dense, trans *mat.VecDense) (spatialmath.Pose, error) {
	rm, err := spatialmath.NewRotationMatrix([]float64{
		rot.At(0, 0), rot.At(0, 1), rot.At(0, 2),
		rot.At(1, 0), rot.At(1, 1), rot.At(1, 2),
		rot.At(2, 0), rot.At(2, 1), rot.At(2, 2),
	})
	if err != nil {
		return nil, err
	}
	return spatialmath.NewPose(r3.Vector{X: trans.AtVec(0), Y: trans.AtVec(1), Z: trans.AtVec(2)}, rm), nil
}

// nearestRotation projects an arbitrary 3x3 matrix onto SO(3).
func nearestRotation(m *mat.Dense) (*mat.Dense, error) {
	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDFull) {
		return nil, errors.Wrap(ErrDegenerateMotions, "rotation projection failed")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	var r mat.Dense
	r.Mul(&u, v.T())
	if mat.Det(&r) < 0 {
		d := eye(3)
		d.Set(2, 2, -1)
		var tmp mat.Dense
		tmp.Mul(&u, d)
		r.Mul(&tmp, v.T())
	}
	out := mat.NewDense(3, 3, nil)
	out.Copy(&r)
	return out, nil
}

// solveTranslation recovers the calibration's translation once its rotation
// is known, from the stacked linear system (Rₐ−I)t = R·t_b − tₐ.
func solveTranslation(motions []motion, rot *mat.Dense) (*mat.VecDense, error) {
	n := len(motions)
	lhs := mat.NewDense(3*n, 3, nil)
	rhs := mat.NewVecDense(3*n, nil)
	for i, m := range motions {
		ra := rotationOf(m.a)
		ta := translationOf(m.a)
		tb := translationOf(m.b)

		var block mat.Dense
		block.Sub(ra, eye(3))
		var rtb mat.VecDense
		rtb.MulVec(rot, tb)
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				lhs.Set(3*i+r, c, block.At(r, c))
			}
			rhs.SetVec(3*i+r, rtb.AtVec(r)-ta.AtVec(r))
		}
	}
	trans := mat.NewVecDense(3, nil)
	if err := trans.SolveVec(lhs, rhs); err != nil {
		return nil, errors.Wrap(ErrDegenerateMotions, "translation system is singular")
	}
	return trans, nil
}
