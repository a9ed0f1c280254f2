package preprocess

import (
	"fmt"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/packagewjx/flight-feature-prep/internal/lookup"
	"github.com/packagewjx/flight-feature-prep/pkg/core"
	"io/ioutil"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006-01-02 15:04:05",
}

// SelectCategorical 选出类别列：core.CategoricalColumns、需要重新视为类别的标识列，以及含有非数字值的列。
// 数值特征列、目标列不在其中。结果保留core.ColRow
func SelectCategorical(df dataframe.DataFrame) dataframe.DataFrame {
	excluded := map[string]struct{}{
		core.ColArrDelay: {},
		core.ColRow:      {},
		core.ColLine:     {},
	}
	for _, c := range core.NumericColumns {
		excluded[c] = struct{}{}
	}
	recast := make(map[string]struct{}, len(core.RecastColumns)+len(core.CategoricalColumns))
	for _, c := range core.RecastColumns {
		recast[c] = struct{}{}
	}
	// 过滤后没有行时，空列会被当作数字
	for _, c := range core.CategoricalColumns {
		recast[c] = struct{}{}
	}

	selected := make([]string, 0, df.Ncol())
	for _, name := range df.Names() {
		if _, ok := excluded[name]; ok {
			continue
		}
		if _, ok := recast[name]; ok || !isNumeric(df.Col(name).Records()) {
			selected = append(selected, name)
		}
	}
	selected = append(selected, core.ColRow)
	return df.Select(selected)
}

func isNumeric(records []string) bool {
	for _, r := range records {
		r = strings.TrimSpace(r)
		if core.IsMissing(r) {
			continue
		}
		if _, err := strconv.ParseFloat(r, 64); err != nil {
			return false
		}
	}
	return true
}

// DeriveMonth 由fl_date得到month列（1-12，无法解析时为NaN），并删除fl_date
func DeriveMonth(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if !hasColumn(df, core.ColFlDate) {
		return df, nil
	}
	dates := df.Col(core.ColFlDate).Records()
	months := make([]float64, len(dates))
	for i, d := range dates {
		months[i] = parseMonth(strings.TrimSpace(d))
	}

	df = df.Drop(core.ColFlDate).Mutate(series.New(months, series.Float, core.ColMonth))
	if df.Err != nil {
		return dataframe.DataFrame{}, df.Err
	}
	return df, nil
}

func parseMonth(date string) float64 {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return float64(t.Month())
		}
	}
	return math.NaN()
}

// Prune 删除names中存在的列，不存在的列忽略
func Prune(df dataframe.DataFrame, names []string) dataframe.DataFrame {
	existing := make([]string, 0, len(names))
	for _, name := range names {
		if hasColumn(df, name) && !containsString(existing, name) {
			existing = append(existing, name)
		}
	}
	if len(existing) == 0 {
		return df
	}
	return df.Drop(existing)
}

// Encoder 类别列的编码方式
type Encoder interface {
	Encode(df dataframe.DataFrame) (dataframe.DataFrame, error)
}

// NewOneHotEncoder 每列每个出现过的值生成一个0/1指示列，数值列（如month）原样保留
func NewOneHotEncoder() Encoder {
	return NewLookupEncoder(map[string]*lookup.Table{}, nil)
}

// NewLookupEncoder 按tables将列值替换为平均延误，不在表中的值为NaN，并通过logger给出警告。
// 没有对应表的类别列仍做独热编码。logger为nil时不输出
func NewLookupEncoder(tables map[string]*lookup.Table, logger *log.Logger) Encoder {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	return &lookupEncoder{tables: tables, logger: logger}
}

type lookupEncoder struct {
	tables map[string]*lookup.Table
	logger *log.Logger
}

// Encode 输出顺序：数值列与替换后的列在前，指示列在后，各自保持原列顺序
func (e *lookupEncoder) Encode(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	scalars := make([]series.Series, 0, df.Ncol())
	indicators := make([]series.Series, 0, df.Ncol())

	for _, name := range df.Names() {
		if name == core.ColRow || name == core.ColLine {
			continue
		}
		col := df.Col(name)

		if table, ok := e.tables[name]; ok && table != nil {
			keys := categoryKeys(col)
			if missing := table.Missing(keys); len(missing) > 0 {
				e.logger.Printf("警告：%s表中没有%d个取值%v，列%s中对应的行将被删除\n",
					table.Name(), len(missing), missing, name)
			}
			scalars = append(scalars, substitute(keys, table, name))
			continue
		}
		if col.Type() != series.String {
			scalars = append(scalars, col.Copy())
			continue
		}
		indicators = append(indicators, oneHot(col)...)
	}

	result := append(scalars, indicators...)
	result = append(result, df.Col(core.ColRow).Copy())
	encoded := dataframe.New(result...)
	if encoded.Err != nil {
		return dataframe.DataFrame{}, encoded.Err
	}
	return encoded, nil
}

func substitute(keys []string, table *lookup.Table, name string) series.Series {
	values := make([]float64, len(keys))
	for i, key := range keys {
		values[i] = table.Substitute(key)
	}
	return series.New(values, series.Float, name)
}

// categoryKeys 列值作为查表的键。数值列（如month）格式化为整数形式
func categoryKeys(col series.Series) []string {
	if col.Type() == series.String {
		keys := col.Records()
		for i, k := range keys {
			keys[i] = strings.TrimSpace(k)
		}
		return keys
	}

	values := col.Float()
	keys := make([]string, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			keys[i] = ""
			continue
		}
		keys[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return keys
}

func oneHot(col series.Series) []series.Series {
	keys := categoryKeys(col)
	distinct := make(map[string]struct{})
	for _, k := range keys {
		if core.IsMissing(k) {
			continue
		}
		distinct[k] = struct{}{}
	}
	categories := make([]string, 0, len(distinct))
	for k := range distinct {
		categories = append(categories, k)
	}
	sort.Strings(categories)

	result := make([]series.Series, len(categories))
	for ci, category := range categories {
		indicator := make([]int, len(keys))
		for i, k := range keys {
			if k == category {
				indicator[i] = 1
			}
		}
		result[ci] = series.New(indicator, series.Int, fmt.Sprintf("%s_%s", col.Name, category))
	}
	return result
}

func containsString(arr []string, s string) bool {
	for _, v := range arr {
		if v == s {
			return true
		}
	}
	return false
}
