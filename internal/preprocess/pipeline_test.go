package preprocess

import (
	"bytes"
	"fmt"
	"github.com/go-gota/gota/dataframe"
	"github.com/packagewjx/flight-feature-prep/internal/datasource"
	"github.com/packagewjx/flight-feature-prep/internal/lookup"
	"github.com/packagewjx/flight-feature-prep/internal/reference"
	"github.com/packagewjx/flight-feature-prep/pkg/core"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io/ioutil"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testHeader = "fl_date,op_unique_carrier,op_carrier_fl_num,origin,dest,crs_dep_time,crs_arr_time,crs_elapsed_time,distance,arr_delay\n"

const testFlights = testHeader +
	"2019-01-05,AA,100,JFK,LAX,1530,1745,135,620,10\n" +
	"2019-02-10,DL,200,ATL,JFK,0800,1030,150,760,-5\n" +
	"2019-03-15,AA,300,LAX,JFK,2200,0610,320,2475,100\n" +
	"2019-01-20,ZZ,400,JFK,ATL,1200,1430,150,760,30\n" +
	"2019-02-01,DL,500,ATL,LAX,0900,1100,300,1946,-60\n"

func readTable(t *testing.T, content string) dataframe.DataFrame {
	df, err := datasource.Read(strings.NewReader(content), ',')
	require.NoError(t, err)
	return df
}

type mapSource map[reference.Kind]map[string]float64

func (m mapSource) Load(kind reference.Kind) (*lookup.Table, error) {
	values, ok := m[kind]
	if !ok {
		return nil, errors.New("no table")
	}
	return lookup.New(string(kind), values), nil
}

var testReference = mapSource{
	reference.Origin: {"JFK": 5.1, "ATL": 4.2, "LAX": 3.3},
	reference.Dest:   {"LAX": 6.6, "JFK": 7.7, "ATL": 2.2},
}

// 内置表只有AA与1月，其余取值由覆盖提供
func lookupOptions() Options {
	opts := DefaultOptions()
	opts.OneHot = false
	opts.Reference = testReference
	opts.Carrier = lookup.Carrier().WithOverrides(map[string]float64{"DL": 0.95})
	opts.Month = lookup.Month().WithOverrides(map[string]float64{"2": 6.75, "3": 2.62})
	return opts
}

func TestRunOneHot(t *testing.T) {
	result, err := Run(readTable(t, testFlights), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 3, result.X.Nrow())
	assert.Equal(t, result.X.Nrow(), result.Y.Nrow())
	assert.Equal(t, []int{0, 1, 3}, result.Rows)
	assert.Equal(t, Stats{Read: 5, Filtered: 3, DroppedMissing: 0, Output: 3}, result.Stats)

	// 4个数值列、month、承运人3个、出发地2个、目的地3个
	assert.Equal(t, 13, result.X.Ncol())
	names := result.X.Names()
	assert.Equal(t, []string{"crs_dep_timeFT", "crs_arr_timeFT", "crs_elapsed_timeFT", "distanceFT"}, names[:4])
	assert.Contains(t, names, core.ColMonth)
	assert.Contains(t, names, "op_unique_carrier_ZZ")
	assert.Contains(t, names, "dest_ATL")
	assert.NotContains(t, names, core.ColRow)
	assert.NotContains(t, names, core.ColArrDelay)
	assert.NotContains(t, names, core.ColOpCarrierFlNum)
	assert.NotContains(t, names, core.ColFlDate)

	assert.Equal(t, []string{core.ColYFT, core.ColYSign}, result.Y.Names())
	assert.Equal(t, []float64{1, 0, 1}, result.Y.Col(core.ColYSign).Float())
	assert.Equal(t, []float64{1, 2, 1}, result.X.Col(core.ColMonth).Float())

	aa, err := result.X.Col("op_unique_carrier_AA").Int()
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 0, 0}, aa)

	/*
		不输出y_sign
	*/
	opts := DefaultOptions()
	opts.Sign = false
	result, err = Run(readTable(t, testFlights), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{core.ColYFT}, result.Y.Names())
}

func TestRunLookup(t *testing.T) {
	var buf bytes.Buffer
	opts := lookupOptions()
	opts.Logger = log.New(&buf, "", 0)
	result, err := Run(readTable(t, testFlights), opts)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "[ZZ]")

	// ZZ不在承运人表中，该行被删除
	assert.Equal(t, []int{0, 1}, result.Rows)
	assert.Equal(t, 2, result.X.Nrow())
	assert.Equal(t, 2, result.Y.Nrow())
	assert.Equal(t, 1, result.Stats.DroppedMissing)
	assert.Equal(t, 8, result.X.Ncol())

	carrier := result.X.Col(core.ColOpUniqueCarrier).Float()
	assert.Equal(t, []float64{6.209127910387774, 0.95}, carrier)
	assert.Equal(t, []float64{3.9587876597858975, 6.75}, result.X.Col(core.ColMonth).Float())
	assert.Equal(t, []float64{5.1, 4.2}, result.X.Col(core.ColOrigin).Float())
	assert.Equal(t, []float64{6.6, 7.7}, result.X.Col(core.ColDest).Float())

	/*
		只用内置表时，DL与2月不在表中
	*/
	opts = lookupOptions()
	opts.Carrier, opts.Month = nil, nil
	result, err = Run(readTable(t, testFlights), opts)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, result.Rows)

	/*
		覆盖内置表
	*/
	opts = lookupOptions()
	opts.Carrier = opts.Carrier.WithOverrides(map[string]float64{"ZZ": 1.5})
	result, err = Run(readTable(t, testFlights), opts)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 3}, result.Rows)
	assert.Equal(t, 1.5, result.X.Col(core.ColOpUniqueCarrier).Float()[2])

	/*
		没有参考表
	*/
	opts = lookupOptions()
	opts.Reference = nil
	_, err = Run(readTable(t, testFlights), opts)
	assert.Error(t, err)

	opts.Reference = mapSource{}
	_, err = Run(readTable(t, testFlights), opts)
	assert.Error(t, err)
}

func TestRunSingleFlight(t *testing.T) {
	content := testHeader + "2019-01-05,AA,100,JFK,LAX,1530,1745,135,620,10\n"
	result, err := Run(readTable(t, content), lookupOptions())
	require.NoError(t, err)
	require.Equal(t, 1, result.X.Nrow())

	assert.Equal(t, 3.9587876597858975, result.X.Col(core.ColMonth).Float()[0])
	assert.Equal(t, 6.209127910387774, result.X.Col(core.ColOpUniqueCarrier).Float()[0])
	for _, c := range core.NumericColumns {
		assert.Equal(t, 0.0, result.X.Col(c + core.ScaledSuffix).Float()[0])
	}
	assert.Equal(t, 0.0, result.Y.Col(core.ColYFT).Float()[0])
	assert.Equal(t, 1.0, result.Y.Col(core.ColYSign).Float()[0])
	assert.Equal(t, 10.0, result.TargetParams["mean"])
}

func TestRunOutlierAbsent(t *testing.T) {
	for _, opts := range []Options{DefaultOptions(), lookupOptions()} {
		result, err := Run(readTable(t, testFlights), opts)
		require.NoError(t, err)
		assert.NotContains(t, result.Rows, 2)
		assert.NotContains(t, result.Rows, 4)
	}
}

func TestRunDeterministic(t *testing.T) {
	for _, scaler := range ScalerTypes {
		opts := DefaultOptions()
		opts.Scaler = scaler
		first, err := Run(readTable(t, testFlights), opts)
		require.NoError(t, err)
		second, err := Run(readTable(t, testFlights), opts)
		require.NoError(t, err)

		assert.Equal(t, first.X.Records(), second.X.Records(), string(scaler))
		assert.Equal(t, first.Y.Records(), second.Y.Records(), string(scaler))
		assert.Equal(t, first.Params, second.Params)
	}
}

func TestRunIndependentFit(t *testing.T) {
	other := testHeader +
		"2019-01-07,AA,100,JFK,LAX,0600,0900,180,1200,5\n" +
		"2019-01-08,DL,200,ATL,JFK,1900,2130,150,760,-20\n" +
		"2019-01-09,AA,300,LAX,JFK,1000,1830,330,2475,40\n" +
		"2019-01-10,DL,400,JFK,ATL,2300,0110,130,760,0\n"
	for _, scaler := range ScalerTypes {
		opts := DefaultOptions()
		opts.Scaler = scaler
		first, err := Run(readTable(t, testFlights), opts)
		require.NoError(t, err)
		second, err := Run(readTable(t, other), opts)
		require.NoError(t, err)

		// 每次运行在自己的输入上拟合
		for _, c := range core.NumericColumns {
			assert.NotEqual(t, first.Params.Columns[c], second.Params.Columns[c], "%s %s", scaler, c)
		}
		assert.NotEqual(t, first.TargetParams, second.TargetParams)

		// 之前的拟合不影响之后的运行
		again, err := Run(readTable(t, testFlights), opts)
		require.NoError(t, err)
		assert.Equal(t, first.X.Records(), again.X.Records(), string(scaler))
		assert.Equal(t, first.Y.Records(), again.Y.Records(), string(scaler))
		assert.Equal(t, first.Params, again.Params)
	}
}

func TestRunAllFiltered(t *testing.T) {
	content := testHeader + "2019-01-05,AA,100,JFK,LAX,1530,1745,135,620,100\n"

	result, err := Run(readTable(t, content), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, result.X.Nrow())
	assert.Equal(t, 0, result.Y.Nrow())
	assert.Equal(t, []string{"crs_dep_timeFT", "crs_arr_timeFT", "crs_elapsed_timeFT", "distanceFT", core.ColMonth},
		result.X.Names())

	/*
		查表模式下列与有数据时相同
	*/
	result, err = Run(readTable(t, content), lookupOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, result.X.Nrow())
	assert.Equal(t, []string{"crs_dep_timeFT", "crs_arr_timeFT", "crs_elapsed_timeFT", "distanceFT",
		core.ColOpUniqueCarrier, core.ColOrigin, core.ColDest, core.ColMonth}, result.X.Names())
}

func TestRunRowOrder(t *testing.T) {
	var builder strings.Builder
	builder.WriteString(testHeader)
	carriers := []string{"AA", "DL", "UA", "WN"}
	for i := 0; i < 40; i++ {
		delay := i*3 - 60
		builder.WriteString(fmt.Sprintf("2019-0%d-15,%s,1,JFK,LAX,1200,1400,120,500,%d\n",
			1+i%9, carriers[i%len(carriers)], delay))
	}
	result, err := Run(readTable(t, builder.String()), DefaultOptions())
	require.NoError(t, err)

	for i := 1; i < len(result.Rows); i++ {
		assert.Less(t, result.Rows[i-1], result.Rows[i])
	}

	// yFT必须与原始延误一一对应
	yft := result.Y.Col(core.ColYFT).Float()
	for i := 1; i < len(yft); i++ {
		assert.Less(t, yft[i-1], yft[i])
	}
	for i, r := range result.Rows {
		delay := float64(r*3 - 60)
		assert.True(t, DefaultOptions().Bounds.Contains(delay))
		assert.Equal(t, delay > 0, result.Y.Col(core.ColYSign).Float()[i] == 1)
	}
}

func TestRunParseError(t *testing.T) {
	content := testHeader +
		"2019-01-05,AA,100,JFK,LAX,1530,1745,135,620,10\n" +
		"2019-01-06,AA,100,JFK,LAX,1530,1745,135,far,10\n"
	_, err := Run(readTable(t, content), DefaultOptions())
	require.Error(t, err)

	var pe *core.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 3, pe.Line)
	assert.Equal(t, core.ColDistance, pe.Column)

	/*
		空行与跨行字段不影响报告的行号
	*/
	content = testHeader +
		"2019-01-05,AA,100,JFK,LAX,1530,1745,135,620,10\n" +
		"\n" +
		"2019-01-06,AA,100,\"JF\nK\",LAX,1530,1745,135,620,10\n" +
		"2019-01-07,AA,100,JFK,LAX,1530,1745,135,far,10\n"
	_, err = Run(readTable(t, content), DefaultOptions())
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 6, pe.Line)

	/*
		缺少数值列
	*/
	_, err = Run(readTable(t, "fl_date,arr_delay\n2019-01-05,10\n"), DefaultOptions())
	assert.True(t, errors.As(err, &pe))
}

func TestRunMissingValues(t *testing.T) {
	content := testHeader +
		"2019-01-05,AA,100,JFK,LAX,1530,1745,135,620,10\n" +
		"2019-01-06,AA,100,JFK,LAX,NA,1745,135,620,12\n" +
		"bad-date,AA,100,JFK,LAX,1530,1745,135,620,11\n" +
		"2019-01-08,DL,100,JFK,LAX,1530,1745,135,620,\n"
	result, err := Run(readTable(t, content), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []int{0}, result.Rows)
	assert.Equal(t, Stats{Read: 4, Filtered: 3, DroppedMissing: 2, Output: 1}, result.Stats)
	for _, col := range result.X.Names() {
		for _, v := range result.X.Col(col).Float() {
			assert.False(t, math.IsNaN(v), col)
		}
	}
}

func TestRunFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "flightprep")
	require.NoError(t, err)
	defer func() {
		_ = os.RemoveAll(dir)
	}()
	fileName := filepath.Join(dir, "flights.csv")
	require.NoError(t, ioutil.WriteFile(fileName, []byte(testFlights), 0644))

	opts := DefaultOptions()
	opts.Delimiter = ','
	result, err := RunFile(fileName, opts)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Stats.Output)

	/*
		默认以制表符分隔
	*/
	tsv := filepath.Join(dir, "flights.txt")
	require.NoError(t, ioutil.WriteFile(tsv, []byte(strings.ReplaceAll(testFlights, ",", "\t")), 0644))
	result, err = RunFile(tsv, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 3}, result.Rows)

	/*
		文件不存在
	*/
	_, err = RunFile(filepath.Join(dir, "none.csv"), DefaultOptions())
	var pe *core.ParseError
	assert.True(t, errors.As(err, &pe))
}
