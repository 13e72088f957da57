package handeye

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/rdk/spatialmath"
	"gonum.org/v1/gonum/mat"
)

// solveTsaiLenz is the two-step method of Tsai and Lenz (1989): solve for the
// rotation from the modified Rodrigues vectors of the motion pair rotations,
// then for the translation from the resulting linear system.
func solveTsaiLenz(motions []motion) (*mat.Dense, *mat.VecDense, error) {
	n := len(motions)
	lhs := mat.NewDense(3*n, 3, nil)
	rhs := mat.NewVecDense(3*n, nil)
	for i, m := range motions {
		pa := modifiedRodrigues(m.a)
		pb := modifiedRodrigues(m.b)
		sum := skew(pa.Add(pb))
		diff := pb.Sub(pa)
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				lhs.Set(3*i+r, c, sum.At(r, c))
			}
		}
		rhs.SetVec(3*i+0, diff.X)
		rhs.SetVec(3*i+1, diff.Y)
		rhs.SetVec(3*i+2, diff.Z)
	}

	sol := mat.NewVecDense(3, nil)
	if err := sol.SolveVec(lhs, rhs); err != nil {
		return nil, nil, errors.Wrap(ErrDegenerateMotions, "rotation system is singular")
	}
	u := r3.Vector{X: sol.AtVec(0), Y: sol.AtVec(1), Z: sol.AtVec(2)}
	pcg := u.Mul(2 / math.Sqrt(1+u.Norm2()))
	rot := rotFromModifiedRodrigues(pcg)

	trans, err := solveTranslation(motions, rot)
	if err != nil {
		return nil, nil, err
	}
	return rot, trans, nil
}

// modifiedRodrigues returns 2·sin(θ/2)·axis, the rotation parameterization
// Tsai's linear system is posed in.
func modifiedRodrigues(p spatialmath.Pose) r3.Vector {
	axis, theta := rotationAxisAngle(p)
	return axis.Mul(2 * math.Sin(theta/2))
}

// rotFromModifiedRodrigues inverts the parameterization:
// R = (1−|p|²/2)I + ½(p·pᵀ + √(4−|p|²)·[p]ₓ).
func rotFromModifiedRodrigues(p r3.Vector) *mat.Dense {
	norm2 := p.Norm2()
	pv := mat.NewVecDense(3, []float64{p.X, p.Y, p.Z})

	var outer mat.Dense
	outer.Outer(1, pv, pv)
	sk := skew(p)
	alpha := math.Sqrt(4 - norm2)

	out := mat.NewDense(3, 3, nil)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			v := 0.5 * (outer.At(r, c) + alpha*sk.At(r, c))
			if r == c {
				v += 1 - norm2/2
			}
			out.Set(r, c, v)
		}
	}
	return out
}
