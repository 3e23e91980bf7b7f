package linear

import "github.com/YuminosukeSato/polyreg/pkg/log"

// Option is a function that configures PolynomialRegression
type Option func(*PolynomialRegression)

// WithLogger sets the logger used for fit and predict events
func WithLogger(l log.Logger) Option {
	return func(p *PolynomialRegression) {
		p.logger = l
	}
}

// WithRcond sets the relative cutoff for small singular values when
// determining the rank of the Vandermonde matrix. Values <= 0 select the
// default, len(x) times the float64 machine epsilon.
func WithRcond(rcond float64) Option {
	return func(p *PolynomialRegression) {
		p.rcond = rcond
	}
}
