package output

import (
	"fmt"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/compress"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
	"io"
	"math"
)

const parquetRowGroupSize = 64 * 1024

func parquetCodec(compression Compression) compress.Compression {
	switch compression {
	case Gzip:
		return compress.Codecs.Gzip
	case Zstd:
		return compress.Codecs.Zstd
	default:
		return compress.Codecs.Snappy
	}
}

func writeParquet(df dataframe.DataFrame, out io.Writer, compression Compression) error {
	mem := memory.NewGoAllocator()
	table, err := toArrowTable(df, mem)
	if err != nil {
		return err
	}
	defer table.Release()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(parquetCodec(compression)),
		parquet.WithAllocator(mem),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(mem))

	writer, err := pqarrow.NewFileWriter(table.Schema(), out, props, arrowProps)
	if err != nil {
		return errors.Wrap(err, "创建parquet文件失败")
	}
	if err = writer.WriteTable(table, parquetRowGroupSize); err != nil {
		_ = writer.Close()
		return errors.Wrap(err, "写出parquet失败")
	}
	return errors.Wrap(writer.Close(), "关闭parquet文件失败")
}

// toArrowTable 浮点列为float64，整数列为int64，其余为string。NaN写为null
func toArrowTable(df dataframe.DataFrame, mem memory.Allocator) (arrow.Table, error) {
	fields := make([]arrow.Field, 0, df.Ncol())
	columns := make([]arrow.Column, 0, df.Ncol())
	defer func() {
		for i := range columns {
			columns[i].Release()
		}
	}()

	for _, name := range df.Names() {
		arr, err := toArrowArray(df.Col(name), mem)
		if err != nil {
			return nil, err
		}
		field := arrow.Field{Name: name, Type: arr.DataType(), Nullable: true}
		chunked := arrow.NewChunked(arr.DataType(), []arrow.Array{arr})
		arr.Release()
		columns = append(columns, *arrow.NewColumn(field, chunked))
		chunked.Release()
		fields = append(fields, field)
	}

	schema := arrow.NewSchema(fields, nil)
	return array.NewTable(schema, columns, int64(df.Nrow())), nil
}

func toArrowArray(s series.Series, mem memory.Allocator) (arrow.Array, error) {
	switch s.Type() {
	case series.Float:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		values := s.Float()
		valid := make([]bool, len(values))
		for i, v := range values {
			valid[i] = !math.IsNaN(v)
		}
		builder.AppendValues(values, valid)
		return builder.NewArray(), nil

	case series.Int:
		builder := array.NewInt64Builder(mem)
		defer builder.Release()
		values, err := s.Int()
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("列%s不是整数", s.Name))
		}
		for _, v := range values {
			builder.Append(int64(v))
		}
		return builder.NewArray(), nil

	default:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		builder.AppendValues(s.Records(), nil)
		return builder.NewArray(), nil
	}
}
