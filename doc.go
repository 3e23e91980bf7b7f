// Package polyreg provides single-feature polynomial regression for Go,
// built on gonum.
//
// The library keeps a scikit-learn-like shape: estimators have an explicit
// fitted state, errors are typed, and logging is structured.
//
// # Features
//
//   - Least-squares polynomial fitting with a fixed degree
//   - Polynomial feature expansion [X, X², …, X^P, 1]
//   - RMSE and sibling regression metrics (MSE, MAE, R²)
//   - Typed errors with stack traces and zerolog-backed warnings
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/polyreg/linear"
//	    "github.com/YuminosukeSato/polyreg/metrics"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    reg := linear.NewPolynomialRegression(2)
//
//	    // y = x² + 1
//	    w, err := reg.ComputeWeights([]float64{0, 1, 2, 3}, []float64{1, 2, 5, 10})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("weights (highest degree first):", w)
//
//	    pred, err := reg.Predict([]float64{4, 5})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    rmse, err := metrics.RMSEMatrix(mat.NewDense(2, 1, []float64{17, 26}), pred)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("rmse:", rmse)
//	}
//
// # Packages
//
//   - linear: PolynomialRegression (ComputeWeights, Predict, weight export)
//   - preprocessing: PolyFeatureTransform and the PolynomialFeatures transformer
//   - metrics: RMSE, MSE, MAE, R²
//   - core/model: estimator state, interfaces and the ModelWeights format
//   - core/parallel: row-chunked parallel execution
//   - pkg/errors: error types, warnings and panic recovery
//   - pkg/log: structured logging with zerolog and slog backends
//
// # Errors
//
// Every failure is a typed error that can be inspected with errors.As:
//
//	_, err := reg.Predict(x)
//	var nfe *errors.NotFittedError
//	if errors.As(err, &nfe) {
//	    // call ComputeWeights first
//	}
//
// Rank-deficient fits still succeed but emit a RankWarning through
// errors.Warn, which is routed to the zerolog logger when one is installed.
package polyreg
