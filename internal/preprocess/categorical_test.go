package preprocess

import (
	"bytes"
	"github.com/packagewjx/flight-feature-prep/internal/lookup"
	"github.com/packagewjx/flight-feature-prep/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"log"
	"math"
	"testing"
)

func TestSelectCategorical(t *testing.T) {
	df := readTable(t, testFlights)
	selected := SelectCategorical(df)
	assert.Equal(t, []string{core.ColFlDate, core.ColOpUniqueCarrier, core.ColOpCarrierFlNum,
		core.ColOrigin, core.ColDest, core.ColRow}, selected.Names())
	assert.Equal(t, df.Nrow(), selected.Nrow())

	/*
		全为数字的其他列不是类别列
	*/
	df = readTable(t, "taxi_out,origin,crs_dep_time\n12,JFK,1200\n8,LAX,0900\n")
	assert.Equal(t, []string{core.ColOrigin, core.ColRow}, SelectCategorical(df).Names())
}

func TestDeriveMonth(t *testing.T) {
	df := readTable(t, "fl_date,origin\n2019-01-05,JFK\n2019/12/31,LAX\n07/04/2019,ATL\n2019-03-01 00:00:00,SFO\n,BOS\n")
	df, err := DeriveMonth(df)
	require.NoError(t, err)

	assert.NotContains(t, df.Names(), core.ColFlDate)
	months := df.Col(core.ColMonth).Float()
	assert.Equal(t, []float64{1, 12, 7, 3}, months[:4])
	assert.True(t, math.IsNaN(months[4]))

	/*
		没有日期列
	*/
	df = readTable(t, "origin\nJFK\n")
	df, err = DeriveMonth(df)
	assert.NoError(t, err)
	assert.Equal(t, []string{core.ColOrigin, core.ColRow, core.ColLine}, df.Names())
}

func TestPrune(t *testing.T) {
	df := readTable(t, testFlights)
	pruned := Prune(df, []string{core.ColArrDelay, core.ColOpCarrierFlNum, "tail_num", core.ColArrDelay})
	assert.NotContains(t, pruned.Names(), core.ColArrDelay)
	assert.NotContains(t, pruned.Names(), core.ColOpCarrierFlNum)
	assert.Equal(t, df.Ncol()-2, pruned.Ncol())

	assert.Equal(t, df.Names(), Prune(df, []string{"dup"}).Names())
}

func TestOneHotEncoder(t *testing.T) {
	df := readTable(t, "origin,dest\nJFK,LAX\nATL,JFK\nJFK,\n")
	encoded, err := NewOneHotEncoder().Encode(df)
	require.NoError(t, err)

	assert.Equal(t, []string{"origin_ATL", "origin_JFK", "dest_JFK", "dest_LAX", core.ColRow}, encoded.Names())
	jfk, err := encoded.Col("origin_JFK").Int()
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 0, 1}, jfk)

	// 缺失值的所有指示列均为0
	lax, _ := encoded.Col("dest_LAX").Int()
	djfk, _ := encoded.Col("dest_JFK").Int()
	assert.Equal(t, 0, lax[2]+djfk[2])
}

func TestLookupEncoder(t *testing.T) {
	df := readTable(t, "op_unique_carrier,origin\nAA,JFK\nXX,JFK\nDL,ATL\n")
	var buf bytes.Buffer
	carriers := lookup.Carrier().WithOverrides(map[string]float64{"DL": 0.95})
	encoder := NewLookupEncoder(map[string]*lookup.Table{
		core.ColOpUniqueCarrier: carriers,
	}, log.New(&buf, "", 0))
	encoded, err := encoder.Encode(df)
	require.NoError(t, err)
	// 表中没有XX
	assert.Contains(t, buf.String(), "carrier")
	assert.Contains(t, buf.String(), "[XX]")

	// 没有表的列做独热编码
	assert.Equal(t, []string{core.ColOpUniqueCarrier, "origin_ATL", "origin_JFK", core.ColRow}, encoded.Names())
	carrier := encoded.Col(core.ColOpUniqueCarrier).Float()
	assert.Equal(t, 6.209127910387774, carrier[0])
	assert.True(t, math.IsNaN(carrier[1]))
	assert.Equal(t, 0.95, carrier[2])

	/*
		month为数值列
	*/
	df, err = DeriveMonth(readTable(t, "fl_date\n2019-01-05\n2019-11-30\n"))
	require.NoError(t, err)
	buf.Reset()
	months := lookup.Month().WithOverrides(map[string]float64{"11": 1.5})
	encoded, err = NewLookupEncoder(map[string]*lookup.Table{core.ColMonth: months}, log.New(&buf, "", 0)).Encode(df)
	require.NoError(t, err)
	assert.Equal(t, []float64{3.9587876597858975, 1.5}, encoded.Col(core.ColMonth).Float())
	assert.Empty(t, buf.String())

	/*
		内置月份表只有1月，其余月份替换为NaN
	*/
	encoded, err = NewLookupEncoder(map[string]*lookup.Table{core.ColMonth: lookup.Month()}, nil).Encode(df)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(encoded.Col(core.ColMonth).Float()[1]))
}
