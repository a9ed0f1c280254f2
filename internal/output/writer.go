package output

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"github.com/cespare/xxhash/v2"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/packagewjx/flight-feature-prep/internal/utils"
	"github.com/pkg/errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Write 将x与y分别写为opts.Dir下的X_<name>与y_<name>文件。opts.Write为false时什么也不做
func Write(x, y dataframe.DataFrame, opts Options) (*Result, error) {
	if !opts.Write {
		return &Result{}, nil
	}
	opts, err := normalize(opts)
	if err != nil {
		return nil, err
	}
	if err = os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, errors.Wrap(err, "创建输出目录失败")
	}

	result := &Result{}
	result.X, err = writeFile(x, filepath.Join(opts.Dir, FileName(FeaturePrefix, opts)), opts)
	if err != nil {
		return nil, errors.Wrap(err, "写出特征矩阵失败")
	}
	result.Y, err = writeFile(y, filepath.Join(opts.Dir, FileName(TargetPrefix, opts)), opts)
	if err != nil {
		return nil, errors.Wrap(err, "写出目标失败")
	}
	return result, nil
}

func normalize(opts Options) (Options, error) {
	if opts.Name == "" {
		return opts, errors.New("输出名称为空")
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Format == "" {
		opts.Format = CSV
	}
	if opts.Compression == "" {
		opts.Compression = None
	}

	validFormat := false
	for _, f := range Formats {
		validFormat = validFormat || f == opts.Format
	}
	if !validFormat {
		return opts, fmt.Errorf("未知的输出格式：%s", opts.Format)
	}
	validCompression := false
	for _, c := range Compressions {
		validCompression = validCompression || c == opts.Compression
	}
	if !validCompression {
		return opts, fmt.Errorf("未知的压缩方式：%s", opts.Compression)
	}
	return opts, nil
}

// FileName 输出文件名，如X_jan.csv.gz
func FileName(prefix string, opts Options) string {
	switch opts.Format {
	case Parquet:
		return prefix + opts.Name + ".parquet"
	case XLSX:
		return prefix + opts.Name + ".xlsx"
	}
	name := prefix + opts.Name + ".csv"
	switch opts.Compression {
	case Gzip:
		name += ".gz"
	case Zstd:
		name += ".zst"
	}
	return name
}

func writeFile(df dataframe.DataFrame, path string, opts Options) (File, error) {
	fout, err := os.Create(path)
	if err != nil {
		return File{}, errors.Wrap(err, "创建文件失败")
	}
	defer func() {
		_ = fout.Close()
	}()

	counter := &utils.WriterCounter{Writer: fout}
	digest := xxhash.New()
	switch opts.Format {
	case Parquet:
		err = writeParquet(df, io.MultiWriter(counter, digest), opts.Compression)
	case XLSX:
		err = writeXLSX(df, io.MultiWriter(counter, digest))
	default:
		err = writeCSV(df, counter, digest, opts.Compression)
	}
	if err != nil {
		return File{}, err
	}
	if err = fout.Sync(); err != nil {
		return File{}, errors.Wrap(err, "写入磁盘失败")
	}

	return File{
		Path:    path,
		Rows:    df.Nrow(),
		Columns: df.Ncol(),
		Bytes:   counter.Count,
		Digest:  fmt.Sprintf("%016x", digest.Sum64()),
	}, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}

// writeCSV 压缩后写入out，压缩前的内容同时写入digest
func writeCSV(df dataframe.DataFrame, out io.Writer, digest io.Writer, compression Compression) error {
	var compressed io.WriteCloser
	var err error
	switch compression {
	case Gzip:
		compressed = gzip.NewWriter(out)
	case Zstd:
		compressed, err = zstd.NewWriter(out)
		if err != nil {
			return errors.Wrap(err, "创建zstd压缩器失败")
		}
	default:
		compressed = nopCloser{out}
	}

	writer := bufio.NewWriter(io.MultiWriter(compressed, digest))
	if err = EncodeCSV(df, writer); err != nil {
		_ = compressed.Close()
		return err
	}
	if err = writer.Flush(); err != nil {
		_ = compressed.Close()
		return errors.Wrap(err, "输出文件错误")
	}
	return errors.Wrap(compressed.Close(), "压缩输出失败")
}

// EncodeCSV 以逗号分隔写出df，第一行为列名，不写行号。浮点数使用最短的精确表示
func EncodeCSV(df dataframe.DataFrame, out io.Writer) error {
	writer := csv.NewWriter(out)
	if err := writer.Write(df.Names()); err != nil {
		return errors.Wrap(err, "写出表头失败")
	}

	columns := make([][]string, df.Ncol())
	for ci, name := range df.Names() {
		columns[ci] = formatColumn(df.Col(name))
	}
	record := make([]string, df.Ncol())
	for ri := 0; ri < df.Nrow(); ri++ {
		for ci := range columns {
			record[ci] = columns[ci][ri]
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrap(err, fmt.Sprintf("写出第%d行失败", ri+1))
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatColumn(s series.Series) []string {
	switch s.Type() {
	case series.Float:
		values := s.Float()
		result := make([]string, len(values))
		for i, v := range values {
			result[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		return result
	case series.Int:
		values, err := s.Int()
		if err != nil {
			return s.Records()
		}
		result := make([]string, len(values))
		for i, v := range values {
			result[i] = strconv.Itoa(v)
		}
		return result
	default:
		return s.Records()
	}
}
