package handeye

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// solveHoraudDornaika is the quaternion method of Horaud and Dornaika (1995):
// the rotation quaternion minimizes Σ‖L(qₐ)q − R(q_b)q‖², i.e. it is the
// eigenvector for the smallest eigenvalue of Σ(L−R)ᵀ(L−R).
func solveHoraudDornaika(motions []motion) (*mat.Dense, *mat.VecDense, error) {
	acc := mat.NewDense(4, 4, nil)
	for _, m := range motions {
		qa := canonicalQuat(m.a.Orientation().Quaternion())
		qb := canonicalQuat(m.b.Orientation().Quaternion())

		var d mat.Dense
		d.Sub(leftQuatMatrix(qa), rightQuatMatrix(qb))
		var dtd mat.Dense
		dtd.Mul(d.T(), &d)
		acc.Add(acc, &dtd)
	}

	sym := mat.NewSymDense(4, nil)
	for r := 0; r < 4; r++ {
		for c := r; c < 4; c++ {
			sym.SetSym(r, c, 0.5*(acc.At(r, c)+acc.At(c, r)))
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return nil, nil, errors.Wrap(ErrDegenerateMotions, "eigendecomposition failed")
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// eigenvalues come back ascending; column 0 is the minimizer
	q := quat.Number{
		Real: vecs.At(0, 0),
		Imag: vecs.At(1, 0),
		Jmag: vecs.At(2, 0),
		Kmag: vecs.At(3, 0),
	}
	rot := quatToDense(q)
	trans, err := solveTranslation(motions, rot)
	if err != nil {
		return nil, nil, err
	}
	return rot, trans, nil
}

// leftQuatMatrix is the 4x4 matrix of left multiplication by q, acting on
// (w, x, y, z) column vectors.
func leftQuatMatrix(q quat.Number) *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		q.Real, -q.Imag, -q.Jmag, -q.Kmag,
		q.Imag, q.Real, -q.Kmag, q.Jmag,
		q.Jmag, q.Kmag, q.Real, -q.Imag,
		q.Kmag, -q.Jmag, q.Imag, q.Real,
	})
}

// rightQuatMatrix is the 4x4 matrix of right multiplication by q.
func rightQuatMatrix(q quat.Number) *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		q.Real, -q.Imag, -q.Jmag, -q.Kmag,
		q.Imag, q.Real, q.Kmag, -q.Jmag,
		q.Jmag, -q.Kmag, q.Real, q.Imag,
		q.Kmag, q.Jmag, -q.Imag, q.Real,
	})
}
