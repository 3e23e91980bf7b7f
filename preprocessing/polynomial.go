package preprocessing

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/polyreg/core/model"
	"github.com/YuminosukeSato/polyreg/core/parallel"
	"github.com/YuminosukeSato/polyreg/pkg/errors"
	"github.com/YuminosukeSato/polyreg/pkg/log"
)

// 並列処理の閾値（この値以下の行数では逐次処理を使用）
const parallelThreshold = 1000

// PolyFeatureTransform は特徴量行列 X (N×D) を多項式特徴量に展開する
//
// 出力は N×(D·order+1) の行列で、列の並びは
//
//	[X | X² | ... | X^order | 1]
//
// となる。べき乗は要素ごとに計算し、最後の列はバイアス（切片）項として全て 1。
// order = 1 の場合は X の右にバイアス列を付けただけの行列になる。X は変更しない。
//
// 使用例:
//
//	X := mat.NewDense(1, 1, []float64{2})
//	XPoly, err := preprocessing.PolyFeatureTransform(X, 2) // [[2 4 1]]
func PolyFeatureTransform(X mat.Matrix, order int) (*mat.Dense, error) {
	const op = "PolyFeatureTransform"

	if order < 1 {
		return nil, errors.NewValidationError("poly_order", "must be >= 1", order)
	}
	if X == nil || isEmpty(X) {
		log.GetLoggerWithName("preprocessing").Debug("transform rejected",
			log.OperationKey, log.OperationTransform,
			log.ErrorCodeKey, log.ErrorEmptyData,
		)
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	r, c := X.Dims()

	out := mat.NewDense(r, c*order+1, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			row := out.RawRowView(i)
			for j := 0; j < c; j++ {
				v := X.At(i, j)
				row[j] = v
				for k := 2; k <= order; k++ {
					row[(k-1)*c+j] = math.Pow(v, float64(k))
				}
			}
			row[c*order] = 1
		}
	})

	return out, nil
}

// PolyFeatureTransformRows は [][]float64 形式の入力を受け付ける PolyFeatureTransform
// 行の長さが揃っていない場合は DimensionError を返す
func PolyFeatureTransformRows(rows [][]float64, order int) (*mat.Dense, error) {
	const op = "PolyFeatureTransformRows"

	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	d := len(rows[0])
	data := make([]float64, 0, len(rows)*d)
	for _, row := range rows {
		if len(row) != d {
			return nil, errors.NewDimensionError(op, d, len(row), 1)
		}
		data = append(data, row...)
	}
	return PolyFeatureTransform(mat.NewDense(len(rows), d, data), order)
}

// PolynomialFeatures は PolyFeatureTransform の変換器版
// Fit で入力の特徴量数を記録し、Transform では同じ特徴量数の入力のみ受け付ける
type PolynomialFeatures struct {
	model.BaseEstimator

	// Order は多項式の次数 (>= 1)
	Order int

	// NFeatures は Fit 時の特徴量の数
	NFeatures int

	logger log.Logger
}

// FeaturesOption は PolynomialFeatures の設定を変更する
type FeaturesOption func(*PolynomialFeatures)

// WithTransformLogger は PolynomialFeatures が使うロガーを設定する
func WithTransformLogger(l log.Logger) FeaturesOption {
	return func(p *PolynomialFeatures) {
		p.logger = l
	}
}

// NewPolynomialFeatures は新しいPolynomialFeaturesを作成する
//
// パラメータ:
//   - order: 多項式の次数 (>= 1、Fit 時に検証)
//
// 使用例:
//
//	pf := preprocessing.NewPolynomialFeatures(3)
//	XPoly, err := pf.FitTransform(X)
func NewPolynomialFeatures(order int, opts ...FeaturesOption) *PolynomialFeatures {
	p := &PolynomialFeatures{Order: order}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.GetLoggerWithName("preprocessing")
	}
	p.logger = p.logger.With(log.ModelNameKey, "PolynomialFeatures")
	return p
}

// Fit は入力の特徴量数を記録する
func (p *PolynomialFeatures) Fit(X mat.Matrix) error {
	if p.Order < 1 {
		return errors.NewValidationError("poly_order", "must be >= 1", p.Order)
	}
	if X == nil {
		return errors.NewModelError("PolynomialFeatures.Fit", "empty data", errors.ErrEmptyData)
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("PolynomialFeatures.Fit", "empty data", errors.ErrEmptyData)
	}

	p.NFeatures = c
	p.SetFitted()

	p.logger.Debug("fit completed",
		log.OperationKey, log.OperationFit,
		log.FeaturesKey, c,
		log.DegreeKey, p.Order,
	)
	return nil
}

// Transform は学習済みの特徴量数を確認してから多項式特徴量に展開する
func (p *PolynomialFeatures) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("PolynomialFeatures", "Transform")
	}
	if X == nil {
		return nil, errors.NewModelError("PolynomialFeatures.Transform", "empty data", errors.ErrEmptyData)
	}
	if _, c := X.Dims(); c != p.NFeatures {
		p.logger.Debug("transform rejected",
			log.OperationKey, log.OperationTransform,
			log.FeaturesKey, c,
			log.ErrorCodeKey, log.ErrorDimensionMismatch,
		)
		return nil, errors.NewDimensionError("PolynomialFeatures.Transform", p.NFeatures, c, 1)
	}

	start := time.Now()
	out, err := PolyFeatureTransform(X, p.Order)
	if err != nil {
		p.logger.Error("transform failed", err, log.OperationKey, log.OperationTransform)
		return nil, err
	}

	r, c := out.Dims()
	p.logger.Debug("transform completed",
		log.OperationKey, log.OperationTransform,
		log.SamplesKey, r,
		log.OutputFeaturesKey, c,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return out, nil
}

// FitTransform はFitとTransformを同時に実行する
func (p *PolynomialFeatures) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := p.Fit(X); err != nil {
		return nil, err
	}
	return p.Transform(X)
}

// NOutputFeatures は変換後の列数 (NFeatures·Order + 1) を返す。未学習なら 0
func (p *PolynomialFeatures) NOutputFeatures() int {
	if !p.IsFitted() {
		return 0
	}
	return p.NFeatures*p.Order + 1
}

func isEmpty(X mat.Matrix) bool {
	r, c := X.Dims()
	return r == 0 || c == 0
}

var _ model.Transformer = (*PolynomialFeatures)(nil)
