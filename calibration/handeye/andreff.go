package handeye

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// solveAndreff is the linear formulation of Andreff, Horaud and Espiau (1999):
// the nine rotation entries and three translation entries are recovered jointly
// from a single least-squares system, then the rotation block is projected back
// onto SO(3).
func solveAndreff(motions []motion) (*mat.Dense, *mat.VecDense, error) {
	n := len(motions)
	a := mat.NewDense(12*n, 12, nil)
	b := mat.NewVecDense(12*n, nil)

	for i, m := range motions {
		ra := rotationOf(m.a)
		rb := rotationOf(m.b)
		ta := translationOf(m.a)
		tb := translationOf(m.b)

		// rows for Ra·R = R·Rb, in terms of the column-major vec of R
		var rows mat.Dense
		rows.Sub(kron(eye(3), ra), kron(rb.T(), eye(3)))
		for r := 0; r < 9; r++ {
			for c := 0; c < 9; c++ {
				a.Set(12*i+r, c, rows.At(r, c))
			}
		}

		// rows for R·tb + (I − Ra)·t = ta
		tbRow := mat.NewDense(1, 3, []float64{tb.AtVec(0), tb.AtVec(1), tb.AtVec(2)})
		tKron := kron(tbRow, eye(3))
		for r := 0; r < 3; r++ {
			for c := 0; c < 9; c++ {
				a.Set(12*i+9+r, c, tKron.At(r, c))
			}
			for c := 0; c < 3; c++ {
				v := -ra.At(r, c)
				if r == c {
					v++
				}
				a.Set(12*i+9+r, 9+c, v)
			}
			b.SetVec(12*i+9+r, ta.AtVec(r))
		}
	}

	x := mat.NewVecDense(12, nil)
	if err := x.SolveVec(a, b); err != nil {
		return nil, nil, errors.Wrap(ErrDegenerateMotions, err.Error())
	}

	// x[0:9] is vec(R) column-major and may not be orthonormal yet
	raw := mat.NewDense(3, 3, nil)
	for c := 0; c < 3; c++ {
		for r := 0; r < 3; r++ {
			raw.Set(r, c, x.AtVec(3*c+r))
		}
	}
	rot, err := nearestRotation(raw)
	if err != nil {
		return nil, nil, err
	}
	trans := mat.NewVecDense(3, []float64{x.AtVec(9), x.AtVec(10), x.AtVec(11)})
	return rot, trans, nil
}
