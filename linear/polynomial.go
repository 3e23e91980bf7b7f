package linear

import (
	"context"
	"math"
	"time"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/polyreg/core/model"
	"github.com/YuminosukeSato/polyreg/metrics"
	"github.com/YuminosukeSato/polyreg/pkg/errors"
	"github.com/YuminosukeSato/polyreg/pkg/log"
)

const modelName = "PolynomialRegression"

// PolynomialRegression は1変数の多項式回帰モデル
//
// 次数は生成時に固定される。ComputeWeights で最小二乗法により係数を求め、
// Predict で Horner 法により評価する。係数は最高次から順に並び、最後が切片。
//
// 同じインスタンスに対する ComputeWeights と Predict の同時呼び出しは安全ではない。
// 並行して使う場合は呼び出し側で直列化すること。
type PolynomialRegression struct {
	model.BaseEstimator

	degree   int
	weights  []float64
	rank     int
	nSamples int
	rcond    float64
	logger   log.Logger
}

// NewPolynomialRegression は指定した次数の多項式回帰モデルを作成する
//
// パラメータ:
//   - degree: 多項式の次数 (>= 0、ComputeWeights 時に検証)
//   - opts: WithLogger, WithRcond などのオプション
//
// 使用例:
//
//	reg := linear.NewPolynomialRegression(2)
//	w, err := reg.ComputeWeights(x, y)
//	pred, err := reg.Predict([]float64{4, 5})
func NewPolynomialRegression(degree int, opts ...Option) *PolynomialRegression {
	p := &PolynomialRegression{degree: degree}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.GetLoggerWithName("linear")
	}
	p.logger = p.logger.With(log.ModelNameKey, modelName, log.DegreeKey, degree)
	return p
}

func (p *PolynomialRegression) getLogger() log.Logger {
	if p.logger == nil {
		p.logger = log.GetLoggerWithName("linear").With(log.ModelNameKey, modelName, log.DegreeKey, p.degree)
	}
	return p.logger
}

// ComputeWeights は x と y に最小二乗法で多項式を当てはめ、係数を保存して返す
//
// 戻り値の係数は最高次から順に並ぶ（index 0 が x^degree の係数、最後が切片）。
// 返されるスライスはコピーなので変更してもモデルには影響しない。
// 失敗した場合、以前に学習した係数と状態はそのまま残る。
//
// エラー:
//   - len(x) != len(y): DimensionError
//   - len(x) == 0: ErrEmptyData を包む ModelError
//   - len(x) <= degree: ErrUnderdetermined を包む ModelError
//   - NaN/Inf を含む入力: NumericalInstabilityError
func (p *PolynomialRegression) ComputeWeights(x, y []float64) (w []float64, err error) {
	const op = "PolynomialRegression.ComputeWeights"
	defer errors.Recover(&err, op)

	if p.degree < 0 {
		return nil, errors.NewValidationError("degree", "must be >= 0", p.degree)
	}

	n := len(x)
	if len(y) != n {
		p.debugFailure(log.ErrorDimensionMismatch, n)
		return nil, errors.NewDimensionError(op, n, len(y), 0)
	}
	if n == 0 {
		p.debugFailure(log.ErrorEmptyData, n)
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if n <= p.degree {
		p.debugFailure(log.ErrorUnderdetermined, n)
		return nil, errors.NewModelError(op, "underdetermined fit", errors.ErrUnderdetermined)
	}
	if err := errors.CheckNumericalStability(op+".x", x, 0); err != nil {
		return nil, err
	}
	if err := errors.CheckNumericalStability(op+".y", y, 0); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := polyfit(x, y, p.degree, p.rcond)
	if err != nil {
		if errors.Is(err, errors.ErrSingularMatrix) {
			p.debugFailure(log.ErrorSingularMatrix, n)
		}
		return nil, err
	}
	if err := errors.CheckNumericalStability(op, res.coef, 0); err != nil {
		return nil, err
	}
	if res.rank < p.degree+1 {
		errors.Warn(errors.NewRankWarning(op, res.rank, p.degree+1, res.rcond))
	}

	p.weights = res.coef
	p.rank = res.rank
	p.nSamples = n
	p.SetFitted()

	if logger := p.getLogger(); logger.Enabled(context.Background(), log.LevelDebug) {
		logger.Debug("fit completed",
			log.OperationKey, log.OperationFit,
			log.SamplesKey, n,
			log.RankKey, res.rank,
			log.LossKey, trainingRMSE(res.coef, x, y),
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	}

	return p.Weights(), nil
}

// debugFailure は返却するエラーと同じ内容を Debug で記録する
func (p *PolynomialRegression) debugFailure(code string, n int) {
	p.getLogger().Debug("fit rejected",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.ErrorCodeKey, code,
	)
}

// trainingRMSE は学習データ上の RMSE。計算できない場合は NaN
func trainingRMSE(coef, x, y []float64) float64 {
	pred := make([]float64, len(x))
	for i, xi := range x {
		pred[i] = EvaluatePolynomial(coef, xi)
	}
	rmse, err := metrics.RMSESlice(y, pred)
	if err != nil {
		return math.NaN()
	}
	return rmse
}

// Fit は n×1 の列ベクトル行列を受け付ける ComputeWeights
func (p *PolynomialRegression) Fit(X, y mat.Matrix) error {
	x, err := column("PolynomialRegression.Fit", X)
	if err != nil {
		return err
	}
	yy, err := column("PolynomialRegression.Fit", y)
	if err != nil {
		return err
	}
	_, err = p.ComputeWeights(x, yy)
	return err
}

// Predict は学習済みの多項式を各点で評価し、M×1 の行列として返す
func (p *PolynomialRegression) Predict(x []float64) (*mat.Dense, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError(modelName, "Predict")
	}
	if len(x) == 0 {
		return nil, errors.NewValueError("PolynomialRegression.Predict", "empty input")
	}

	out := make([]float64, len(x))
	for i, xi := range x {
		out[i] = EvaluatePolynomial(p.weights, xi)
	}

	p.getLogger().Debug("predict completed",
		log.OperationKey, log.OperationPredict,
		log.PredsKey, len(out),
	)
	return mat.NewDense(len(out), 1, out), nil
}

// PredictMatrix は M×1 の列ベクトル行列を受け付ける Predict
func (p *PolynomialRegression) PredictMatrix(X mat.Matrix) (mat.Matrix, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError(modelName, "PredictMatrix")
	}
	x, err := column("PolynomialRegression.PredictMatrix", X)
	if err != nil {
		return nil, err
	}
	return p.Predict(x)
}

// Score はモデルの決定係数（R²）を計算する
func (p *PolynomialRegression) Score(X, y mat.Matrix) (float64, error) {
	if !p.IsFitted() {
		return 0, errors.NewNotFittedError(modelName, "Score")
	}
	yPred, err := p.PredictMatrix(X)
	if err != nil {
		return 0, err
	}
	yTrue, err := column("PolynomialRegression.Score", y)
	if err != nil {
		return 0, err
	}
	pred := mat.Col(nil, 0, yPred)
	score, err := metrics.R2Score(mat.NewVecDense(len(yTrue), yTrue), mat.NewVecDense(len(pred), pred))
	if err != nil {
		return 0, err
	}
	p.getLogger().Debug("score computed", log.OperationKey, log.OperationScore, log.R2ScoreKey, score)
	return score, nil
}

// Degree は多項式の次数を返す
func (p *PolynomialRegression) Degree() int {
	return p.degree
}

// Weights は学習された係数（最高次から順）のコピーを返す。未学習なら nil
func (p *PolynomialRegression) Weights() []float64 {
	if !p.IsFitted() {
		return nil
	}
	w := make([]float64, len(p.weights))
	copy(w, p.weights)
	return w
}

// Intercept は学習された切片（定数項）を返す。未学習なら 0
func (p *PolynomialRegression) Intercept() float64 {
	if !p.IsFitted() {
		return 0
	}
	return p.weights[len(p.weights)-1]
}

// Rank は最後の学習での計画行列の数値ランクを返す
func (p *PolynomialRegression) Rank() int {
	return p.rank
}

// Reset は係数を破棄して未学習状態に戻す
func (p *PolynomialRegression) Reset() {
	p.BaseEstimator.Reset()
	p.weights = nil
	p.rank = 0
	p.nSamples = 0
}

// ExportWeights はモデルの重みをエクスポート
func (p *PolynomialRegression) ExportWeights() (*model.ModelWeights, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError(modelName, "ExportWeights")
	}
	return &model.ModelWeights{
		ModelType:       modelName,
		Version:         model.WeightsFormatVersion,
		Coefficients:    p.Weights(),
		Intercept:       p.Intercept(),
		Hyperparameters: map[string]interface{}{"degree": p.degree},
		Metadata: map[string]interface{}{
			"n_samples": p.nSamples,
			"rank":      p.rank,
		},
		IsFitted: true,
	}, nil
}

// ImportWeights はエクスポートされた重みを読み込み、学習済み状態にする
// 係数の数は degree+1 と一致しなければならない
func (p *PolynomialRegression) ImportWeights(w *model.ModelWeights) error {
	const op = "PolynomialRegression.ImportWeights"

	if w == nil {
		return errors.NewValueError(op, "nil weights")
	}
	if err := w.Validate(); err != nil {
		return err
	}
	if w.ModelType != modelName {
		return errors.NewValidationError("model_type", "expected "+modelName, w.ModelType)
	}
	if !w.IsFitted {
		return errors.NewValidationError("is_fitted", "weights are not fitted", false)
	}
	if len(w.Coefficients) != p.degree+1 {
		return errors.NewDimensionError(op, p.degree+1, len(w.Coefficients), 1)
	}

	p.weights = append([]float64(nil), w.Coefficients...)
	p.rank = metadataInt(w.Metadata, "rank", p.degree+1)
	p.nSamples = metadataInt(w.Metadata, "n_samples", 0)
	p.SetFitted()
	return nil
}

// MarshalJSON はモデルを ModelWeights 形式の JSON にする。未学習のモデルは次数のみを含む
func (p *PolynomialRegression) MarshalJSON() ([]byte, error) {
	if !p.IsFitted() {
		return json.Marshal(&model.ModelWeights{
			ModelType:       modelName,
			Version:         model.WeightsFormatVersion,
			Hyperparameters: map[string]interface{}{"degree": p.degree},
		})
	}
	w, err := p.ExportWeights()
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON は MarshalJSON の出力からモデルを復元する
// 検証に失敗した場合、モデルの状態とロガーは変更されない
func (p *PolynomialRegression) UnmarshalJSON(data []byte) error {
	var w model.ModelWeights
	if err := w.FromJSON(data); err != nil {
		return err
	}
	if w.ModelType != modelName {
		return errors.NewValidationError("model_type", "expected "+modelName, w.ModelType)
	}

	restored := PolynomialRegression{
		degree: metadataInt(w.Hyperparameters, "degree", len(w.Coefficients)-1),
		rcond:  p.rcond,
	}
	if w.IsFitted {
		if err := restored.ImportWeights(&w); err != nil {
			return err
		}
	}

	if p.logger != nil && restored.degree != p.degree {
		p.logger = p.logger.With(log.DegreeKey, restored.degree)
	}
	p.BaseEstimator = restored.BaseEstimator
	p.degree = restored.degree
	p.weights = restored.weights
	p.rank = restored.rank
	p.nSamples = restored.nSamples
	return nil
}

// metadataInt は JSON 経由で float64 になった整数値も受け付ける
func metadataInt(m map[string]interface{}, key string, def int) int {
	switch v := m[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return def
	}
}

// column は n×1 行列を検証してスライスに変換する
func column(op string, m mat.Matrix) ([]float64, error) {
	if m == nil {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if c != 1 {
		return nil, errors.NewDimensionError(op, 1, c, 1)
	}
	return mat.Col(nil, 0, m), nil
}

var (
	_ model.Fitter         = (*PolynomialRegression)(nil)
	_ model.Estimator      = (*PolynomialRegression)(nil)
	_ model.Scorer         = (*PolynomialRegression)(nil)
	_ model.WeightExporter = (*PolynomialRegression)(nil)
	_ json.Marshaler       = (*PolynomialRegression)(nil)
	_ json.Unmarshaler     = (*PolynomialRegression)(nil)
)
