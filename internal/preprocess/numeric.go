package preprocess

import (
	"fmt"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/packagewjx/flight-feature-prep/pkg/core"
	"github.com/pkg/errors"
	"math"
	"strconv"
	"strings"
)

// ScalerParams 一次运行中各数值列拟合得到的缩放参数
type ScalerParams struct {
	Type    ScalerType                    `yaml:"type"`
	Columns map[string]map[string]float64 `yaml:"columns"`
}

// ParseFloatColumn 解析数值列。缺失值为NaN，其他无法解析的值返回*core.ParseError
func ParseFloatColumn(df dataframe.DataFrame, column string) ([]float64, error) {
	if !hasColumn(df, column) {
		return nil, &core.ParseError{Column: column, Msg: "缺少列"}
	}
	records := df.Col(column).Records()
	result := make([]float64, len(records))
	for i, record := range records {
		record = strings.TrimSpace(record)
		if core.IsMissing(record) {
			result[i] = math.NaN()
			continue
		}
		f, err := strconv.ParseFloat(record, 64)
		if err != nil {
			return nil, &core.ParseError{Line: lineOf(df, i), Column: column,
				Msg: fmt.Sprintf("%q不是数字", record)}
		}
		result[i] = f
	}
	return result, nil
}

// ConvertTime 将HHMM形式的时刻转换为小时
func ConvertTime(hhmm float64, unit TimeUnit) float64 {
	if math.IsNaN(hhmm) {
		return hhmm
	}
	switch unit {
	case TimeUnitDecimal:
		return hhmm / 100
	case TimeUnitFractional:
		hour := math.Floor(hhmm / 100)
		return hour + (hhmm-hour*100)/60
	default:
		return math.Floor(hhmm / 100)
	}
}

// TransformNumeric 取出core.NumericColumns，时刻列转换为小时，然后拟合并缩放。
// 输出列名加core.ScaledSuffix后缀，并保留core.ColRow
func TransformNumeric(df dataframe.DataFrame, scalerType ScalerType, unit TimeUnit) (dataframe.DataFrame, *ScalerParams, error) {
	params := &ScalerParams{
		Type:    scalerType,
		Columns: make(map[string]map[string]float64, len(core.NumericColumns)),
	}
	seriesList := make([]series.Series, 0, len(core.NumericColumns)+1)

	for _, column := range core.NumericColumns {
		values, err := ParseFloatColumn(df, column)
		if err != nil {
			return dataframe.DataFrame{}, nil, err
		}
		if isTimeColumn(column) {
			for i, v := range values {
				values[i] = ConvertTime(v, unit)
			}
		}

		scaler, err := NewScaler(scalerType)
		if err != nil {
			return dataframe.DataFrame{}, nil, err
		}
		scaled, err := FitTransform(scaler, values)
		if err != nil {
			return dataframe.DataFrame{}, nil, errors.Wrap(err, fmt.Sprintf("缩放%s列失败", column))
		}
		params.Columns[column] = scaler.Params()
		seriesList = append(seriesList, series.New(scaled, series.Float, column+core.ScaledSuffix))
	}

	seriesList = append(seriesList, df.Col(core.ColRow).Copy())
	return dataframe.New(seriesList...), params, nil
}

// TransformTarget 标准化目标列，得到yFT，并按需生成y_sign（延误为正时为1）
func TransformTarget(df dataframe.DataFrame, sign bool) (dataframe.DataFrame, map[string]float64, error) {
	values, err := ParseFloatColumn(df, core.ColArrDelay)
	if err != nil {
		return dataframe.DataFrame{}, nil, err
	}

	scaler := &standardScaler{}
	scaled, err := FitTransform(scaler, values)
	if err != nil {
		return dataframe.DataFrame{}, nil, err
	}

	seriesList := []series.Series{series.New(scaled, series.Float, core.ColYFT)}
	if sign {
		signs := make([]float64, len(values))
		for i, v := range values {
			switch {
			case math.IsNaN(v):
				signs[i] = math.NaN()
			case v > 0:
				signs[i] = 1
			}
		}
		seriesList = append(seriesList, series.New(signs, series.Float, core.ColYSign))
	}
	seriesList = append(seriesList, df.Col(core.ColRow).Copy())

	return dataframe.New(seriesList...), scaler.Params(), nil
}

func isTimeColumn(column string) bool {
	for _, c := range core.TimeColumns {
		if c == column {
			return true
		}
	}
	return false
}

func hasColumn(df dataframe.DataFrame, column string) bool {
	for _, n := range df.Names() {
		if n == column {
			return true
		}
	}
	return false
}

// lineOf 第i行数据在输入文件中的行号，由Loader记录。未知时为0
func lineOf(df dataframe.DataFrame, i int) int {
	if !hasColumn(df, core.ColLine) {
		return 0
	}
	line, err := df.Col(core.ColLine).Elem(i).Int()
	if err != nil {
		return 0
	}
	return line
}
