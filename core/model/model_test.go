package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/polyreg/pkg/errors"
)

func TestBaseEstimatorLifecycle(t *testing.T) {
	var e BaseEstimator

	assert.False(t, e.IsFitted())
	assert.Equal(t, NotFitted, e.State())
	assert.Equal(t, "not_fitted", e.State().String())

	e.SetFitted()
	assert.True(t, e.IsFitted())
	assert.Equal(t, "fitted", e.State().String())

	// 再学習しても Fitted のまま
	e.SetFitted()
	assert.True(t, e.IsFitted())

	e.Reset()
	assert.False(t, e.IsFitted())
}

func fittedWeights() *ModelWeights {
	return &ModelWeights{
		ModelType:       "PolynomialRegression",
		Version:         WeightsFormatVersion,
		Coefficients:    []float64{2, 0},
		Intercept:       0,
		Hyperparameters: map[string]interface{}{"degree": 1},
		Metadata:        map[string]interface{}{"n_samples": 4},
		IsFitted:        true,
	}
}

func TestModelWeightsJSONRoundTrip(t *testing.T) {
	w := fittedWeights()

	data, err := w.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"model_type": "PolynomialRegression"`)

	var decoded ModelWeights
	require.NoError(t, decoded.FromJSON(data))
	assert.True(t, w.Equal(&decoded, 1e-12))
	assert.Equal(t, 1.0, decoded.Hyperparameters["degree"])
}

func TestModelWeightsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(w *ModelWeights)
		param  string
	}{
		{"missing type", func(w *ModelWeights) { w.ModelType = "" }, "model_type"},
		{"bad version", func(w *ModelWeights) { w.Version = "0.1" }, "version"},
		{"fitted without coefficients", func(w *ModelWeights) { w.Coefficients = nil }, "coefficients"},
		{"unfitted with coefficients", func(w *ModelWeights) { w.IsFitted = false }, "coefficients"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := fittedWeights()
			tt.mutate(w)

			var ve *errors.ValidationError
			require.True(t, errors.As(w.Validate(), &ve))
			assert.Equal(t, tt.param, ve.ParamName)
		})
	}

	t.Run("non-finite coefficient", func(t *testing.T) {
		w := fittedWeights()
		w.Coefficients[0] = math.NaN()
		var nie *errors.NumericalInstabilityError
		assert.True(t, errors.As(w.Validate(), &nie))
	})

	assert.NoError(t, fittedWeights().Validate())
}

func TestModelWeightsFromJSONRejectsGarbage(t *testing.T) {
	var w ModelWeights
	assert.Error(t, w.FromJSON([]byte("{not json")))
}

func TestModelWeightsClone(t *testing.T) {
	w := fittedWeights()
	clone := w.Clone()

	clone.Coefficients[0] = 99
	clone.Hyperparameters["degree"] = 7

	assert.Equal(t, 2.0, w.Coefficients[0])
	assert.Equal(t, 1, w.Hyperparameters["degree"])
	assert.False(t, w.Equal(clone, 1e-9))
	assert.False(t, w.Equal(nil, 1e-9))
}
