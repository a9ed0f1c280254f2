package datasource

import (
	"encoding/csv"
	"fmt"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/packagewjx/flight-feature-prep/pkg/core"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"io"
	"os"
)

// Load 读取分隔符文件为表格。第一行为表头，其余每行一条记录。
// 所有列以字符串读入，数值解析由需要它的阶段完成。另附加记录序号列core.ColRow
// 与物理行号列core.ColLine
func Load(fileName string, delimiter rune) (dataframe.DataFrame, error) {
	fin, err := os.Open(fileName)
	if err != nil {
		return dataframe.DataFrame{}, &core.ParseError{File: fileName, Msg: "打开文件失败", Err: err}
	}
	defer func() {
		_ = fin.Close()
	}()

	df, err := Read(fin, delimiter)
	if err != nil {
		var pe *core.ParseError
		if errors.As(err, &pe) {
			pe.File = fileName
		}
		return dataframe.DataFrame{}, err
	}
	return df, nil
}

func Read(in io.Reader, delimiter rune) (dataframe.DataFrame, error) {
	// 去掉可能存在的UTF-8 BOM
	decoded := transform.NewReader(in, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.Comma = delimiter
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return dataframe.DataFrame{}, &core.ParseError{Msg: "文件为空"}
	}
	if err != nil {
		return dataframe.DataFrame{}, toParseError(err)
	}
	if err = checkHeader(header); err != nil {
		return dataframe.DataFrame{}, err
	}

	columns := make([][]string, len(header))
	for i := range columns {
		columns[i] = make([]string, 0, 1024)
	}

	// 空行会被跳过，带引号的字段可以跨行，因此行号取自reader而不是由序号推算
	lines := make([]int, 0, 1024)
	var record []string
	for record, err = reader.Read(); err == nil; record, err = reader.Read() {
		for i, field := range record {
			columns[i] = append(columns[i], field)
		}
		line, _ := reader.FieldPos(0)
		lines = append(lines, line)
	}
	if err != io.EOF {
		return dataframe.DataFrame{}, toParseError(err)
	}

	seriesList := make([]series.Series, 0, len(header)+2)
	for i, name := range header {
		seriesList = append(seriesList, series.New(columns[i], series.String, name))
	}
	rows := make([]int, len(columns[0]))
	for i := range rows {
		rows[i] = i
	}
	seriesList = append(seriesList, series.New(rows, series.Int, core.ColRow))
	seriesList = append(seriesList, series.New(lines, series.Int, core.ColLine))

	df := dataframe.New(seriesList...)
	if df.Err != nil {
		return dataframe.DataFrame{}, &core.ParseError{Msg: "构造表格失败", Err: df.Err}
	}
	return df, nil
}

func checkHeader(header []string) error {
	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		if name == "" {
			return &core.ParseError{Line: 1, Msg: fmt.Sprintf("第%d列没有列名", i+1)}
		}
		if name == core.ColRow || name == core.ColLine {
			return &core.ParseError{Line: 1, Column: name, Msg: "列名为保留字"}
		}
		if _, ok := seen[name]; ok {
			return &core.ParseError{Line: 1, Column: name, Msg: "列名重复"}
		}
		seen[name] = struct{}{}
	}
	return nil
}

func toParseError(err error) error {
	var ce *csv.ParseError
	if errors.As(err, &ce) {
		return &core.ParseError{Line: ce.Line, Msg: "记录格式错误", Err: ce.Err}
	}
	return &core.ParseError{Msg: "读取失败", Err: err}
}
