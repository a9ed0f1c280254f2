package preprocess

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/packagewjx/flight-feature-prep/internal/lookup"
	"github.com/packagewjx/flight-feature-prep/internal/reference"
	"github.com/packagewjx/flight-feature-prep/pkg/core"
	"io/ioutil"
	"log"
)

// Preprocessor 表格的一个处理步骤。必须保持行的顺序
type Preprocessor interface {
	Preprocess(df dataframe.DataFrame) (dataframe.DataFrame, error)
}

// PreprocessFunc 将普通函数转换为Preprocessor
type PreprocessFunc func(df dataframe.DataFrame) (dataframe.DataFrame, error)

func (f PreprocessFunc) Preprocess(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	return f(df)
}

type chainPreprocess struct {
	chain []Preprocessor
}

func (c *chainPreprocess) Preprocess(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	var err error
	for _, processor := range c.chain {
		df, err = processor.Preprocess(df)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
	}
	return df, nil
}

func Chain(processors ...Preprocessor) Preprocessor {
	return &chainPreprocess{chain: processors}
}

// TimeUnit HHMM时刻转换为小时的方式，对出发与到达时刻一致使用
type TimeUnit string

const (
	// 整除100，只保留小时
	TimeUnitHour = TimeUnit("hour")
	// 除以100，如1530 -> 15.3
	TimeUnitDecimal = TimeUnit("decimal")
	// 小时加分钟/60，如1530 -> 15.5
	TimeUnitFractional = TimeUnit("fractional")
)

type Bounds struct {
	Lower float64
	Upper float64
}

func (b Bounds) Contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}

type Options struct {
	// 输入文件的分隔符，为0时使用制表符
	Delimiter rune
	Scaler    ScalerType
	OneHot    bool
	TimeUnit  TimeUnit
	Bounds    Bounds
	// 是否输出y_sign列
	Sign bool
	// 编码前删除的列
	Prune []string

	// 查表替换所用的表。为nil时使用内置表
	Carrier *lookup.Table
	Month   *lookup.Table
	// 机场平均延误表的来源，查表模式下必须设置
	Reference reference.Source

	Logger *log.Logger
}

func DefaultOptions() Options {
	return Options{
		Delimiter: core.Tab,
		Scaler:    Standard,
		OneHot:    true,
		TimeUnit:  TimeUnitHour,
		Bounds: Bounds{
			Lower: core.DefaultTargetLower,
			Upper: core.DefaultTargetUpper,
		},
		Sign:  true,
		Prune: core.DefaultPruneColumns,
	}
}

func (o *Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(ioutil.Discard, "", 0)
	}
	return o.Logger
}

// Stats 一次运行中各阶段的行数
type Stats struct {
	Read           int `yaml:"read"`
	Filtered       int `yaml:"filtered"`
	DroppedMissing int `yaml:"droppedMissing"`
	Output         int `yaml:"output"`
}
