package preprocess

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/packagewjx/flight-feature-prep/internal/datasource"
	"github.com/packagewjx/flight-feature-prep/internal/lookup"
	"github.com/packagewjx/flight-feature-prep/internal/reference"
	"github.com/packagewjx/flight-feature-prep/pkg/core"
	"github.com/pkg/errors"
	"log"
)

// Result 一次运行的输出
type Result struct {
	X dataframe.DataFrame
	Y dataframe.DataFrame
	// X、Y每一行在输入文件中的行号（从0开始，不含表头）
	Rows []int

	Params       *ScalerParams
	TargetParams map[string]float64
	Stats        Stats
}

// RunFile 读取fileName后执行Run
func RunFile(fileName string, opts Options) (*Result, error) {
	delimiter := opts.Delimiter
	if delimiter == 0 {
		delimiter = core.Tab
	}
	df, err := datasource.Load(fileName, delimiter)
	if err != nil {
		return nil, err
	}
	return Run(df, opts)
}

// Run 依次执行过滤、数值变换、类别变换、目标变换与拼接。各阶段均保持行的顺序
func Run(df dataframe.DataFrame, opts Options) (*Result, error) {
	logger := opts.logger()
	stats := Stats{Read: df.Nrow()}

	df = FilterTarget(df, core.ColArrDelay, opts.Bounds)
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "过滤目标值失败")
	}
	stats.Filtered = df.Nrow()
	logger.Printf("读取%d行，过滤后剩余%d行\n", stats.Read, stats.Filtered)

	numeric, params, err := TransformNumeric(df, opts.Scaler, opts.TimeUnit)
	if err != nil {
		return nil, errors.Wrap(err, "数值列变换失败")
	}

	encoder, err := newEncoder(&opts, logger)
	if err != nil {
		return nil, err
	}
	categorical, err := Chain(
		PreprocessFunc(func(df dataframe.DataFrame) (dataframe.DataFrame, error) {
			return SelectCategorical(df), nil
		}),
		PreprocessFunc(DeriveMonth),
		PreprocessFunc(func(df dataframe.DataFrame) (dataframe.DataFrame, error) {
			return Prune(df, opts.Prune), nil
		}),
		PreprocessFunc(encoder.Encode),
	).Preprocess(df)
	if err != nil {
		return nil, errors.Wrap(err, "类别列变换失败")
	}

	target, targetParams, err := TransformTarget(df, opts.Sign)
	if err != nil {
		return nil, errors.Wrap(err, "目标列变换失败")
	}

	assembled, err := Assemble(numeric, categorical, target)
	if err != nil {
		return nil, errors.Wrap(err, "拼接失败")
	}
	stats.DroppedMissing = assembled.Dropped
	stats.Output = assembled.X.Nrow()
	logger.Printf("删除含缺失值的%d行，输出%d行%d个特征\n", stats.DroppedMissing, stats.Output, assembled.X.Ncol())

	return &Result{
		X:            assembled.X,
		Y:            assembled.Y,
		Rows:         assembled.Rows,
		Params:       params,
		TargetParams: targetParams,
		Stats:        stats,
	}, nil
}

func newEncoder(opts *Options, logger *log.Logger) (Encoder, error) {
	if opts.OneHot {
		return NewOneHotEncoder(), nil
	}
	if opts.Reference == nil {
		return nil, errors.New("查表模式需要机场平均延误参考表")
	}

	carrier, month := opts.Carrier, opts.Month
	if carrier == nil {
		carrier = lookup.Carrier()
	}
	if month == nil {
		month = lookup.Month()
	}
	tables := map[string]*lookup.Table{
		core.ColOpUniqueCarrier: carrier,
		core.ColMonth:           month,
	}
	columns := map[reference.Kind]string{reference.Origin: core.ColOrigin, reference.Dest: core.ColDest}
	for _, kind := range reference.Kinds {
		table, err := opts.Reference.Load(kind)
		if err != nil {
			return nil, errors.Wrap(err, "读取参考表失败")
		}
		tables[columns[kind]] = table
	}
	return NewLookupEncoder(tables, logger), nil
}
