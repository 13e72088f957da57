package handeye

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/rdk/spatialmath"
)

// solveDaniilidis is the dual-quaternion method of Daniilidis (1999): rotation
// and translation are estimated simultaneously from the null space of a 6n x 8
// system, with the scale fixed by the unit and orthogonality constraints of a
// unit dual quaternion.
func solveDaniilidis(motions []motion) (*mat.Dense, *mat.VecDense, error) {
	n := len(motions)
	t := mat.NewDense(6*n, 8, nil)

	for i, m := range motions {
		qa := motionDualQuat(m.a)
		qb := motionDualQuat(m.b)

		av := r3.Vector{X: qa.Real.Imag, Y: qa.Real.Jmag, Z: qa.Real.Kmag}
		bv := r3.Vector{X: qb.Real.Imag, Y: qb.Real.Jmag, Z: qb.Real.Kmag}
		adv := r3.Vector{X: qa.Dual.Imag, Y: qa.Dual.Jmag, Z: qa.Dual.Kmag}
		bdv := r3.Vector{X: qb.Dual.Imag, Y: qb.Dual.Jmag, Z: qb.Dual.Kmag}

		setDaniilidisBlock(t, 6*i, 0, av.Sub(bv), skew(av.Add(bv)))
		setDaniilidisBlock(t, 6*i+3, 0, adv.Sub(bdv), skew(adv.Add(bdv)))
		setDaniilidisBlock(t, 6*i+3, 4, av.Sub(bv), skew(av.Add(bv)))
	}

	var svd mat.SVD
	if !svd.Factorize(t, mat.SVDThin) {
		return nil, nil, errors.Wrap(ErrDegenerateMotions, "singular value decomposition failed")
	}
	var v mat.Dense
	svd.VTo(&v)

	// the solution lives in the span of the two right singular vectors for
	// the smallest singular values
	u1, w1 := splitNullVector(&v, 6)
	u2, w2 := splitNullVector(&v, 7)

	// qT q' = 0 as a quadratic in s = lambda1/lambda2
	qa := quatDot(u1, w1)
	qb := quatDot(u1, w2) + quatDot(u2, w1)
	qc := quatDot(u2, w2)

	var s float64
	switch {
	case math.Abs(qa) > 1e-12:
		disc := qb*qb - 4*qa*qc
		if disc < 0 {
			disc = 0
		}
		s1 := (-qb + math.Sqrt(disc)) / (2 * qa)
		s2 := (-qb - math.Sqrt(disc)) / (2 * qa)
		if daniilidisNorm(s1, u1, u2) >= daniilidisNorm(s2, u1, u2) {
			s = s1
		} else {
			s = s2
		}
	case math.Abs(qb) > 1e-12:
		s = -qc / qb
	default:
		return nil, nil, errors.Wrap(ErrDegenerateMotions, "dual quaternion constraint vanished")
	}

	val := daniilidisNorm(s, u1, u2)
	if val <= 0 {
		return nil, nil, errors.Wrap(ErrDegenerateMotions, "dual quaternion solution has no scale")
	}
	l2 := 1 / math.Sqrt(val)
	l1 := s * l2

	dq := dualquat.Number{
		Real: quat.Add(quat.Scale(l1, u1), quat.Scale(l2, u2)),
		Dual: quat.Add(quat.Scale(l1, w1), quat.Scale(l2, w2)),
	}

	rot := quatToDense(dq.Real)
	tq := quat.Scale(2, quat.Mul(dq.Dual, quat.Conj(dq.Real)))
	trans := mat.NewVecDense(3, []float64{tq.Imag, tq.Jmag, tq.Kmag})
	return rot, trans, nil
}

// motionDualQuat returns the unit dual quaternion of a rigid transform.
func motionDualQuat(p spatialmath.Pose) dualquat.Number {
	q := canonicalQuat(p.Orientation().Quaternion())
	pt := p.Point()
	tp := quat.Number{Imag: pt.X, Jmag: pt.Y, Kmag: pt.Z}
	return dualquat.Number{Real: q, Dual: quat.Scale(0.5, quat.Mul(tp, q))}
}

func setDaniilidisBlock(t *mat.Dense, row, col int, d r3.Vector, s *mat.Dense) {
	t.Set(row, col, d.X)
	t.Set(row+1, col, d.Y)
	t.Set(row+2, col, d.Z)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			t.Set(row+r, col+1+c, s.At(r, c))
		}
	}
}

// splitNullVector reads column i of V as a (real, dual) quaternion pair, each
// stored scalar first.
func splitNullVector(v *mat.Dense, i int) (quat.Number, quat.Number) {
	return quat.Number{Real: v.At(0, i), Imag: v.At(1, i), Jmag: v.At(2, i), Kmag: v.At(3, i)},
		quat.Number{Real: v.At(4, i), Imag: v.At(5, i), Jmag: v.At(6, i), Kmag: v.At(7, i)}
}

func quatDot(a, b quat.Number) float64 {
	return a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
}

func daniilidisNorm(s float64, u1, u2 quat.Number) float64 {
	return s*s*quatDot(u1, u1) + 2*s*quatDot(u1, u2) + quatDot(u2, u2)
}
