package model

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	// jitter is added to the diagonal when an unpenalized fit is singular.
	jitter = 1e-8
	// maxCond rejects a Gram matrix too ill-conditioned to solve directly.
	maxCond = 1e12
)

// Linear is y = Intercept + Coef·x. Lambda is the L2 penalty it was fit with.
type Linear struct {
	Intercept float64   `json:"intercept"`
	Coef      []float64 `json:"coef"`
	Lambda    float64   `json:"lambda"`
}

// FitLinear fits ordinary least squares.
func FitLinear(X [][]float64, y []float64) (*Linear, error) {
	return fitLinear(X, y, 0)
}

// FitRidge fits least squares with an L2 penalty on the coefficients. The
// intercept is not penalized.
func FitRidge(X [][]float64, y []float64, lambda float64) (*Linear, error) {
	if lambda < 0 {
		return nil, fmt.Errorf("ridge lambda must be >= 0, got %v", lambda)
	}
	return fitLinear(X, y, lambda)
}

func fitLinear(X [][]float64, y []float64, lambda float64) (*Linear, error) {
	d, err := dims(X)
	if err != nil {
		return nil, err
	}
	if len(y) != len(X) {
		return nil, fmt.Errorf("%w: %d targets for %d rows", ErrShapeMismatch, len(y), len(X))
	}
	yMean := stat.Mean(y, nil)
	if d == 0 {
		return &Linear{Intercept: yMean, Coef: []float64{}, Lambda: lambda}, nil
	}
	n := len(X)

	// Center columns so the intercept drops out of the normal equations.
	xc := mat.NewDense(n, d, nil)
	for i, row := range X {
		xc.SetRow(i, row)
	}
	xMean := make([]float64, d)
	col := make([]float64, n)
	for j := range d {
		mat.Col(col, j, xc)
		xMean[j] = stat.Mean(col, nil)
		floats.AddConst(-xMean[j], col)
		xc.SetCol(j, col)
	}
	yc := make([]float64, n)
	copy(yc, y)
	floats.AddConst(-yMean, yc)

	var gram mat.SymDense
	gram.SymOuterK(1, xc.T())
	var rhs mat.VecDense
	rhs.MulVec(xc.T(), mat.NewVecDense(n, yc))
	for j := range d {
		gram.SetSym(j, j, gram.At(j, j)+lambda)
	}

	coef, err := solveNormal(&gram, &rhs, maxCond)
	if err != nil && lambda == 0 {
		for j := range d {
			v := gram.At(j, j)
			gram.SetSym(j, j, v+jitter*(1+v))
		}
		coef, err = solveNormal(&gram, &rhs, mat.ConditionTolerance)
	}
	if err != nil {
		return nil, err
	}
	return &Linear{Intercept: yMean - floats.Dot(coef, xMean), Coef: coef, Lambda: lambda}, nil
}

// solveNormal solves the positive definite system a·x = b by Cholesky
// factorization.
func solveNormal(a *mat.SymDense, b *mat.VecDense, limit float64) ([]float64, error) {
	var chol mat.Cholesky
	if !chol.Factorize(a) {
		return nil, ErrSingular
	}
	if c := chol.Cond(); c > limit {
		return nil, fmt.Errorf("%w: condition number %g", ErrSingular, c)
	}
	var x mat.VecDense
	if err := chol.SolveVecTo(&x, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return mat.Col(nil, 0, &x), nil
}

func (l *Linear) Name() string {
	if l.Lambda > 0 {
		return KindRidge
	}
	return KindLinear
}

func (l *Linear) Dims() int { return len(l.Coef) }

func (l *Linear) Predict(x []float64) (float64, error) {
	if err := checkShape(len(l.Coef), x); err != nil {
		return 0, err
	}
	return finite(l.Intercept + floats.Dot(l.Coef, x))
}
