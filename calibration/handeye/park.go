package handeye

import (
	"github.com/golang/geo/r3"
	"go.viam.com/rdk/spatialmath"
	"gonum.org/v1/gonum/mat"
)

// solveParkMartin is the Lie-group method of Park and Martin (1994): the
// rotation is the orthogonal matrix best mapping the sensor motions' log
// vectors onto the effector motions', recovered from the SVD of their
// cross-covariance.
func solveParkMartin(motions []motion) (*mat.Dense, *mat.VecDense, error) {
	m := mat.NewDense(3, 3, nil)
	for _, mo := range motions {
		alpha := logRotation(mo.a)
		beta := logRotation(mo.b)
		var outer mat.Dense
		outer.Outer(1,
			mat.NewVecDense(3, []float64{beta.X, beta.Y, beta.Z}),
			mat.NewVecDense(3, []float64{alpha.X, alpha.Y, alpha.Z}),
		)
		m.Add(m, &outer)
	}

	// best R with α ≈ R·β maximizes tr(R·M), i.e. the nearest rotation to Mᵀ
	var mt mat.Dense
	mt.CloneFrom(m.T())
	rot, err := nearestRotation(&mt)
	if err != nil {
		return nil, nil, err
	}
	trans, err := solveTranslation(motions, rot)
	if err != nil {
		return nil, nil, err
	}
	return rot, trans, nil
}

// logRotation returns θ·axis, the so(3) logarithm of a pose's rotation.
func logRotation(p spatialmath.Pose) r3.Vector {
	axis, theta := rotationAxisAngle(p)
	return axis.Mul(theta)
}
