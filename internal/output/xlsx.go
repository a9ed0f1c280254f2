package output

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
	"io"
	"math"
)

const sheetName = "Sheet1"

func writeXLSX(df dataframe.DataFrame, out io.Writer) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return errors.Wrap(err, "创建工作表失败")
	}

	names := df.Names()
	header := make([]interface{}, len(names))
	for i, name := range names {
		header[i] = name
	}
	if err = sw.SetRow("A1", header); err != nil {
		return errors.Wrap(err, "写出表头失败")
	}

	columns := make([][]interface{}, len(names))
	for ci, name := range names {
		columns[ci] = cellValues(df.Col(name))
	}
	for ri := 0; ri < df.Nrow(); ri++ {
		row := make([]interface{}, len(names))
		for ci := range columns {
			row[ci] = columns[ci][ri]
		}
		cell, err := excelize.CoordinatesToCellName(1, ri+2)
		if err != nil {
			return err
		}
		if err = sw.SetRow(cell, row); err != nil {
			return errors.Wrapf(err, "写出第%d行失败", ri+1)
		}
	}
	if err = sw.Flush(); err != nil {
		return errors.Wrap(err, "写出工作表失败")
	}

	return errors.Wrap(f.Write(out), "保存Excel文件失败")
}

func cellValues(s series.Series) []interface{} {
	result := make([]interface{}, s.Len())
	switch s.Type() {
	case series.Float:
		for i, v := range s.Float() {
			if math.IsNaN(v) {
				result[i] = nil
				continue
			}
			result[i] = v
		}
	case series.Int:
		values, err := s.Int()
		if err == nil {
			for i, v := range values {
				result[i] = v
			}
			return result
		}
		fallthrough
	default:
		for i, v := range s.Records() {
			result[i] = v
		}
	}
	return result
}
