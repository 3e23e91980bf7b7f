package linear

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/polyreg/pkg/errors"
)

// machineEpsilon is the float64 spacing at 1.0.
var machineEpsilon = math.Nextafter(1, 2) - 1

// fitResult holds the output of polyfit.
type fitResult struct {
	coef  []float64 // highest degree first
	rank  int
	rcond float64
}

// vandermonde builds the len(x)×(degree+1) matrix whose column j holds
// x^(degree-j), so that column order matches the returned coefficients.
func vandermonde(x []float64, degree int) *mat.Dense {
	v := mat.NewDense(len(x), degree+1, nil)
	for i, xi := range x {
		for j, p := degree, 1.0; j >= 0; j, p = j-1, p*xi {
			v.Set(i, j, p)
		}
	}
	return v
}

// polyfit solves min ||V·c - y||₂ for the coefficients c of a polynomial of
// the given degree. Columns of V are scaled to unit norm before solving.
// Full-rank systems are solved with QR; rank-deficient ones fall back to the
// minimum-norm SVD solution.
func polyfit(x, y []float64, degree int, rcond float64) (fitResult, error) {
	const op = "polyfit"

	if rcond <= 0 {
		rcond = float64(len(x)) * machineEpsilon
	}

	a := vandermonde(x, degree)
	cols := degree + 1
	// 有限な x でも x^degree がオーバーフローしうる
	if err := errors.CheckMatrix(op+".vandermonde", a, len(x), cols, 0); err != nil {
		return fitResult{}, err
	}

	scale := make([]float64, cols)
	for j := 0; j < cols; j++ {
		col := mat.Col(nil, j, a)
		scale[j] = floats.Norm(col, 2)
		if scale[j] == 0 {
			scale[j] = 1
		}
		floats.Scale(1/scale[j], col)
		a.SetCol(j, col)
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return fitResult{}, errors.NewModelError(op, "svd factorization failed", errors.ErrSingularMatrix)
	}
	rank := svd.Rank(rcond)
	if rank == 0 {
		return fitResult{}, errors.NewModelError(op, "zero-rank design matrix", errors.ErrSingularMatrix)
	}

	b := mat.NewVecDense(len(y), y)
	c := mat.NewVecDense(cols, nil)

	solved := false
	if rank == cols {
		qr := new(mat.QR)
		qr.Factorize(a)
		// A Condition error still leaves a full-rank answer in c, but it is
		// not trusted; the SVD path below recomputes it.
		solved = qr.SolveVecTo(c, false, b) == nil
	}
	if !solved {
		c.Zero()
		minNormSolve(&svd, b, rank, c)
	}

	coef := make([]float64, cols)
	for j := range coef {
		coef[j] = c.AtVec(j) / scale[j]
	}

	return fitResult{coef: coef, rank: rank, rcond: rcond}, nil
}

// minNormSolve writes V_r·Σ_r⁻¹·U_rᵀ·b into dst (assumed zeroed), using only
// the leading rank singular triplets.
func minNormSolve(svd *mat.SVD, b *mat.VecDense, rank int, dst *mat.VecDense) {
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	var utb mat.VecDense
	utb.MulVec(u.T(), b)
	for i := 0; i < rank; i++ {
		dst.AddScaledVec(dst, utb.AtVec(i)/s[i], v.ColView(i))
	}
}

// EvaluatePolynomial evaluates the polynomial with coefficients coef
// (highest degree first) at x using Horner's method. An empty coef yields 0.
func EvaluatePolynomial(coef []float64, x float64) float64 {
	var y float64
	for _, c := range coef {
		y = y*x + c
	}
	return y
}
