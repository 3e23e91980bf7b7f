package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/polyreg/pkg/errors"
)

func TestRMSE(t *testing.T) {
	tests := []struct {
		name  string
		yTrue []float64
		yPred []float64
		want  float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0.0},
		{"unit offset", []float64{0, 0}, []float64{1, 1}, 1.0},
		{"mixed errors", []float64{10, 20, 30}, []float64{12, 18, 33}, math.Sqrt(17.0 / 3.0)},
		{"single element", []float64{-4}, []float64{-1}, 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RMSE(mat.NewVecDense(len(tt.yTrue), tt.yTrue), mat.NewVecDense(len(tt.yPred), tt.yPred))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)

			gotSlice, err := RMSESlice(tt.yTrue, tt.yPred)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, gotSlice, 1e-12)
		})
	}
}

func TestRMSESymmetricAndNonNegative(t *testing.T) {
	a := mat.NewVecDense(5, []float64{0.5, -1.25, 3, 8, -2})
	b := mat.NewVecDense(5, []float64{1, 1, 1, 1, 1})

	ab, err := RMSE(a, b)
	require.NoError(t, err)
	ba, err := RMSE(b, a)
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
	assert.GreaterOrEqual(t, ab, 0.0)

	self, err := RMSE(a, a)
	require.NoError(t, err)
	assert.Equal(t, 0.0, self)
}

func TestRMSEErrors(t *testing.T) {
	t.Run("length mismatch", func(t *testing.T) {
		_, err := RMSE(mat.NewVecDense(3, []float64{1, 2, 3}), mat.NewVecDense(2, []float64{1, 2}))
		var dimErr *errors.DimensionError
		require.True(t, errors.As(err, &dimErr))
		assert.Equal(t, 3, dimErr.Expected)
		assert.Equal(t, 2, dimErr.Got)

		_, err = RMSESlice([]float64{1, 2}, []float64{1, 2, 3})
		assert.True(t, errors.As(err, &dimErr))
	})

	t.Run("empty input", func(t *testing.T) {
		var ve *errors.ValueError

		_, err := RMSE(&mat.VecDense{}, &mat.VecDense{})
		assert.True(t, errors.As(err, &ve))

		_, err = RMSE(nil, nil)
		assert.True(t, errors.As(err, &ve))

		_, err = RMSESlice(nil, nil)
		assert.True(t, errors.As(err, &ve))
	})
}

func TestRMSEMatrix(t *testing.T) {
	yTrue := mat.NewDense(3, 1, []float64{1, 2, 3})
	yPred := mat.NewDense(3, 1, []float64{1, 2, 5})

	got, err := RMSEMatrix(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(4.0/3.0), got, 1e-12)

	t.Run("row mismatch", func(t *testing.T) {
		_, err := RMSEMatrix(yTrue, mat.NewDense(2, 1, []float64{1, 2}))
		var dimErr *errors.DimensionError
		assert.True(t, errors.As(err, &dimErr))
	})

	t.Run("not a column", func(t *testing.T) {
		_, err := RMSEMatrix(mat.NewDense(1, 2, []float64{1, 2}), mat.NewDense(1, 2, []float64{1, 2}))
		var ve *errors.ValueError
		assert.True(t, errors.As(err, &ve))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := RMSEMatrix(&mat.Dense{}, &mat.Dense{})
		var ve *errors.ValueError
		assert.True(t, errors.As(err, &ve))

		_, err = RMSEMatrix(nil, yPred)
		assert.True(t, errors.As(err, &ve))
	})
}

func TestR2ScoreZeroVarianceWarns(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	t.Cleanup(func() { errors.SetWarningHandler(nil) })

	yTrue := mat.NewVecDense(3, []float64{2, 2, 2})
	yPred := mat.NewVecDense(3, []float64{1, 2, 3})

	_, err := R2Score(yTrue, yPred)
	var ve *errors.ValueError
	require.True(t, errors.As(err, &ve))

	require.Len(t, warnings, 1)
	var umw *errors.UndefinedMetricWarning
	require.True(t, errors.As(warnings[0], &umw))
	assert.Equal(t, "R2Score", umw.Metric)

	// 分散がある場合は警告しない
	_, err = R2Score(mat.NewVecDense(3, []float64{1, 2, 3}), yPred)
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
}
