package preprocess

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/packagewjx/flight-feature-prep/pkg/core"
	"strconv"
	"strings"
)

// FilterTarget 只保留column的值位于bounds闭区间内的行，区间外的行直接删除而不是截断。
// 值缺失或不是数字的行同样删除。column不存在时原样返回
func FilterTarget(df dataframe.DataFrame, column string, bounds Bounds) dataframe.DataFrame {
	if !hasColumn(df, column) {
		return df
	}
	return df.Filter(dataframe.F{
		Colname:    column,
		Comparator: series.CompFunc,
		Comparando: func(el series.Element) bool {
			s := strings.TrimSpace(el.String())
			if core.IsMissing(s) {
				return false
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return false
			}
			return bounds.Contains(v)
		},
	})
}
