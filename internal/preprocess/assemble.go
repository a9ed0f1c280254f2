package preprocess

import (
	"fmt"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/packagewjx/flight-feature-prep/pkg/core"
	"github.com/pkg/errors"
)

// Assembled 拼接并去除缺失值之后的结果
type Assembled struct {
	X dataframe.DataFrame
	Y dataframe.DataFrame
	// 保留下来的行在输入中的行号，顺序与X、Y一致
	Rows []int
	// 因含有缺失值而删除的行数
	Dropped int
}

// Assemble 按位置拼接数值表、类别表与目标表，删除任一列含NaN的行，再拆分为X与Y。
// 三张表的行数与core.ColRow必须逐行一致，否则返回*core.ShapeError
func Assemble(numeric, categorical, target dataframe.DataFrame) (*Assembled, error) {
	rows, err := checkAligned(numeric, categorical, target)
	if err != nil {
		return nil, err
	}

	parts := []dataframe.DataFrame{numeric, categorical, target}
	columns := make([]series.Series, 0, numeric.Ncol()+categorical.Ncol()+target.Ncol())
	featureNames := make([]string, 0, numeric.Ncol()+categorical.Ncol())
	targetNames := make([]string, 0, target.Ncol())
	for pi, part := range parts {
		for _, name := range part.Names() {
			if name == core.ColRow {
				continue
			}
			if containsString(featureNames, name) || containsString(targetNames, name) {
				return nil, &core.ShapeError{Op: "assemble", Msg: fmt.Sprintf("列%s重复", name)}
			}
			columns = append(columns, part.Col(name))
			if pi == len(parts)-1 {
				targetNames = append(targetNames, name)
			} else {
				featureNames = append(featureNames, name)
			}
		}
	}

	keep := make([]int, 0, len(rows))
	missing := make([]bool, len(rows))
	for _, col := range columns {
		for i, nan := range col.IsNaN() {
			if nan {
				missing[i] = true
			}
		}
	}
	for i, m := range missing {
		if !m {
			keep = append(keep, i)
		}
	}

	combined := dataframe.New(columns...)
	if combined.Err != nil {
		return nil, errors.Wrap(combined.Err, "拼接表格失败")
	}
	combined = combined.Subset(keep)
	if combined.Err != nil {
		return nil, errors.Wrap(combined.Err, "删除缺失值失败")
	}

	keptRows := make([]int, len(keep))
	for i, k := range keep {
		keptRows[i] = rows[k]
	}

	return &Assembled{
		X:       combined.Select(featureNames),
		Y:       combined.Select(targetNames),
		Rows:    keptRows,
		Dropped: len(rows) - len(keep),
	}, nil
}

func checkAligned(numeric, categorical, target dataframe.DataFrame) ([]int, error) {
	if numeric.Nrow() != categorical.Nrow() {
		return nil, &core.ShapeError{Op: "assemble", Left: numeric.Nrow(), Right: categorical.Nrow()}
	}
	if numeric.Nrow() != target.Nrow() {
		return nil, &core.ShapeError{Op: "assemble", Left: numeric.Nrow(), Right: target.Nrow()}
	}

	rows, err := rowIds(numeric)
	if err != nil {
		return nil, err
	}
	for _, other := range []dataframe.DataFrame{categorical, target} {
		otherRows, err := rowIds(other)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			if rows[i] != otherRows[i] {
				return nil, &core.ShapeError{Op: "assemble",
					Msg: fmt.Sprintf("第%d行的行号不一致：%d与%d", i, rows[i], otherRows[i])}
			}
		}
	}
	return rows, nil
}

func rowIds(df dataframe.DataFrame) ([]int, error) {
	if !hasColumn(df, core.ColRow) {
		return nil, &core.ShapeError{Op: "assemble", Msg: "缺少行号列"}
	}
	rows, err := df.Col(core.ColRow).Int()
	if err != nil {
		return nil, &core.ShapeError{Op: "assemble", Msg: "行号列无效：" + err.Error()}
	}
	return rows, nil
}
