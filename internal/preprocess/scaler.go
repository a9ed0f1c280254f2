package preprocess

import (
	"fmt"
	"github.com/packagewjx/flight-feature-prep/internal/utils"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
	"math"
)

type ScalerType string

const (
	Standard = ScalerType("standard")
	MinMax   = ScalerType("minmax")
	Robust   = ScalerType("robust")
	Power    = ScalerType("power")
)

var ScalerTypes = []ScalerType{Standard, MinMax, Robust, Power}

// Scaler 单列缩放。Fit时忽略NaN，Transform时NaN保持为NaN
type Scaler interface {
	Fit(x []float64) error
	Transform(x []float64) []float64
	// 拟合得到的参数，用于运行报告
	Params() map[string]float64
}

func NewScaler(scalerType ScalerType) (Scaler, error) {
	switch scalerType {
	case Standard:
		return &standardScaler{}, nil
	case MinMax:
		return &minMaxScaler{}, nil
	case Robust:
		return &robustScaler{}, nil
	case Power:
		return &powerScaler{}, nil
	default:
		return nil, fmt.Errorf("未知的缩放方式：%s", scalerType)
	}
}

func FitTransform(s Scaler, x []float64) ([]float64, error) {
	if err := s.Fit(x); err != nil {
		return nil, err
	}
	return s.Transform(x), nil
}

func present(x []float64) []float64 {
	result := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			result = append(result, v)
		}
	}
	return result
}

func affine(x []float64, center, scale float64) []float64 {
	result := make([]float64, len(x))
	for i, v := range x {
		result[i] = (v - center) / scale
	}
	return result
}

// 均值为0，方差为1
type standardScaler struct {
	mean float64
	std  float64
}

func (s *standardScaler) Fit(x []float64) error {
	values := present(x)
	s.mean, s.std = 0, 1
	if len(values) == 0 {
		return nil
	}
	s.mean, s.std = stat.PopMeanStdDev(values, nil)
	if s.std == 0 {
		s.std = 1
	}
	return nil
}

func (s *standardScaler) Transform(x []float64) []float64 {
	return affine(x, s.mean, s.std)
}

func (s *standardScaler) Params() map[string]float64 {
	return map[string]float64{"mean": s.mean, "std": s.std}
}

// 缩放到[0, 1]
type minMaxScaler struct {
	min float64
	max float64
}

func (m *minMaxScaler) Fit(x []float64) error {
	values := present(x)
	m.min, m.max = 0, 1
	if len(values) == 0 {
		return nil
	}
	m.min, m.max = floats.Min(values), floats.Max(values)
	return nil
}

func (m *minMaxScaler) Transform(x []float64) []float64 {
	scale := m.max - m.min
	if scale == 0 {
		scale = 1
	}
	return affine(x, m.min, scale)
}

func (m *minMaxScaler) Params() map[string]float64 {
	return map[string]float64{"min": m.min, "max": m.max}
}

// 减去中位数，除以四分位距
type robustScaler struct {
	median float64
	iqr    float64
}

func (r *robustScaler) Fit(x []float64) error {
	values := present(x)
	r.median, r.iqr = 0, 1
	if len(values) == 0 {
		return nil
	}
	r.median = utils.Percentile(values, 50)
	r.iqr = utils.Percentile(values, 75) - utils.Percentile(values, 25)
	if r.iqr == 0 {
		r.iqr = 1
	}
	return nil
}

func (r *robustScaler) Transform(x []float64) []float64 {
	return affine(x, r.median, r.iqr)
}

func (r *robustScaler) Params() map[string]float64 {
	return map[string]float64{"median": r.median, "iqr": r.iqr}
}

// lambda的搜索范围[-10, 10]，超出时目标函数返回+Inf。
// 样本很少时似然可能随lambda单调增加，此时lambda停在边界上。
// 变换后的值随即被标准化，数值列的量级（千以内）在边界处也不会溢出
const maxPowerLambda = 10

// Yeo-Johnson变换后再标准化。lambda取使对数似然最大的值
type powerScaler struct {
	lambda   float64
	standard standardScaler
}

func (p *powerScaler) Fit(x []float64) error {
	values := present(x)
	p.lambda = 1
	if len(values) == 0 {
		return p.standard.Fit(values)
	}

	if floats.Min(values) != floats.Max(values) {
		problem := optimize.Problem{
			Func: func(l []float64) float64 {
				return -yeoJohnsonLogLikelihood(values, l[0])
			},
		}
		result, err := optimize.Minimize(problem, []float64{1}, nil, &optimize.NelderMead{})
		if err != nil && result == nil {
			return errors.Wrap(err, "寻找Yeo-Johnson参数失败")
		}
		if !math.IsNaN(result.X[0]) {
			p.lambda = result.X[0]
		}
	}

	return p.standard.Fit(yeoJohnson(values, p.lambda))
}

func (p *powerScaler) Transform(x []float64) []float64 {
	return p.standard.Transform(yeoJohnson(x, p.lambda))
}

func (p *powerScaler) Params() map[string]float64 {
	return map[string]float64{"lambda": p.lambda, "mean": p.standard.mean, "std": p.standard.std}
}

func yeoJohnson(x []float64, lambda float64) []float64 {
	result := make([]float64, len(x))
	for i, v := range x {
		result[i] = yeoJohnsonValue(v, lambda)
	}
	return result
}

func yeoJohnsonValue(v, lambda float64) float64 {
	const eps = 1e-12
	switch {
	case math.IsNaN(v):
		return v
	case v >= 0 && math.Abs(lambda) < eps:
		return math.Log1p(v)
	case v >= 0:
		return (math.Pow(v+1, lambda) - 1) / lambda
	case math.Abs(lambda-2) < eps:
		return -math.Log1p(-v)
	default:
		return -(math.Pow(-v+1, 2-lambda) - 1) / (2 - lambda)
	}
}

func yeoJohnsonLogLikelihood(x []float64, lambda float64) float64 {
	if math.Abs(lambda) > maxPowerLambda {
		return math.Inf(-1)
	}
	transformed := yeoJohnson(x, lambda)
	_, variance := stat.PopMeanVariance(transformed, nil)
	if variance <= 0 || math.IsNaN(variance) || math.IsInf(variance, 0) {
		return math.Inf(-1)
	}

	n := float64(len(x))
	sum := 0.0
	for _, v := range x {
		sum += math.Copysign(math.Log1p(math.Abs(v)), v)
	}
	return -n/2*math.Log(variance) + (lambda-1)*sum
}
