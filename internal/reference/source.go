package reference

import (
	"fmt"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/packagewjx/flight-feature-prep/internal/lookup"
	"github.com/packagewjx/flight-feature-prep/pkg/core"
	"github.com/pkg/errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Kind 参考表的种类
type Kind string

const (
	Origin = Kind("origin")
	Dest   = Kind("dest")
)

var Kinds = []Kind{Origin, Dest}

// FileName 参考表文件名，如origin_arr_delay.txt
func FileName(kind Kind) string {
	return string(kind) + "_arr_delay.txt"
}

// Source 机场平均延误参考表的来源
type Source interface {
	Load(kind Kind) (*lookup.Table, error)
}

func NewFileSource(dir string) Source {
	return &fileSource{dir: dir}
}

type fileSource struct {
	dir string
}

func (f *fileSource) Load(kind Kind) (*lookup.Table, error) {
	fileName := filepath.Join(f.dir, FileName(kind))
	fin, err := os.Open(fileName)
	if err != nil {
		return nil, &core.ParseError{File: fileName, Msg: "打开参考表失败", Err: err}
	}
	defer func() {
		_ = fin.Close()
	}()

	table, err := ReadTable(fin, string(kind))
	if err != nil {
		var pe *core.ParseError
		if errors.As(err, &pe) {
			pe.File = fileName
		}
		return nil, err
	}
	return table, nil
}

// ReadTable 读取两列、无表头、以制表符分隔的参考表：代码 平均延误
func ReadTable(in io.Reader, name string) (*lookup.Table, error) {
	df := dataframe.ReadCSV(in,
		dataframe.WithDelimiter(core.Tab),
		dataframe.HasHeader(false),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String))
	if df.Err != nil {
		return nil, &core.ParseError{Msg: "读取参考表失败", Err: df.Err}
	}
	if df.Ncol() < 2 {
		return nil, &core.ParseError{Msg: fmt.Sprintf("参考表应有两列，实际为%d列", df.Ncol())}
	}

	names := df.Names()
	codes := df.Col(names[0]).Records()
	delays := df.Col(names[1]).Records()
	values := make(map[string]float64, len(codes))
	for i, code := range codes {
		delay, err := strconv.ParseFloat(strings.TrimSpace(delays[i]), 64)
		if err != nil {
			return nil, &core.ParseError{Line: i + 1, Msg: "平均延误不是数字", Err: err}
		}
		values[strings.TrimSpace(code)] = delay
	}

	return lookup.New(name, values), nil
}
