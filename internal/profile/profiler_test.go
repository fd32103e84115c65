package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/starform/internal/table"
)

func col(name string, storage table.StorageType, values ...table.Value) *table.Column {
	return table.NewColumn(name, storage, values)
}

func TestProfileColumn_Counts(t *testing.T) {
	c := col("city", table.Text,
		table.String("berlin"), table.String("paris"),
		table.String("berlin"), table.Null())

	p := ProfileColumn(c, TypeString)

	assert.Equal(t, 4, p.TotalRows)
	assert.Equal(t, 3, p.NonNullCount)
	assert.Equal(t, 1, p.NullCount)
	assert.Equal(t, 25.0, p.NullPercentage)
	assert.Equal(t, 2, p.DistinctCount)
	assert.Equal(t, 50.0, p.DistinctPercentage)
}

func TestProfileColumn_EmptyColumn(t *testing.T) {
	p := ProfileColumn(col("empty", table.Text), TypeString)

	assert.Equal(t, 0, p.TotalRows)
	assert.Equal(t, 0.0, p.NullPercentage)
	assert.Equal(t, 0.0, p.DistinctPercentage)
}

func TestNumericStats(t *testing.T) {
	c := col("v", table.Integer,
		table.Int(1), table.Int(2), table.Int(3), table.Int(4), table.Int(5))

	p := ProfileColumn(c, TypeInteger)
	require.NotNil(t, p.Numeric)

	assert.Equal(t, 1.0, *p.Numeric.Min)
	assert.Equal(t, 5.0, *p.Numeric.Max)
	assert.Equal(t, 3.0, *p.Numeric.Mean)
	assert.Equal(t, 3.0, *p.Numeric.Median)
	require.NotNil(t, p.Numeric.StdDev)
	assert.InDelta(t, 1.5811, *p.Numeric.StdDev, 0.001)
	assert.Equal(t, 0, p.Numeric.OutlierCount)
}

func TestNumericStats_Outliers(t *testing.T) {
	values := []table.Value{
		table.Int(10), table.Int(11), table.Int(12), table.Int(13),
		table.Int(11), table.Int(12), table.Int(10), table.Int(13),
		table.Int(12), table.Int(1000),
	}
	p := ProfileColumn(col("v", table.Integer, values...), TypeInteger)

	require.NotNil(t, p.Numeric)
	assert.Equal(t, 1, p.Numeric.OutlierCount)
	assert.Equal(t, 10.0, p.Numeric.OutlierPercentage)
}

func TestNumericStats_AllNull(t *testing.T) {
	p := ProfileColumn(col("v", table.Integer, table.Null(), table.Null()), TypeInteger)

	require.NotNil(t, p.Numeric)
	assert.Nil(t, p.Numeric.Min)
	assert.Nil(t, p.Numeric.Max)
	assert.Nil(t, p.Numeric.Mean)
	assert.Nil(t, p.Numeric.StdDev)
}

func TestNumericStats_SingleValue(t *testing.T) {
	p := ProfileColumn(col("v", table.Integer, table.Int(42)), TypeInteger)

	require.NotNil(t, p.Numeric)
	assert.Equal(t, 42.0, *p.Numeric.Mean)
	// Sample stddev is undefined for a single value.
	assert.Nil(t, p.Numeric.StdDev)
}

func TestDateStats(t *testing.T) {
	c := col("d", table.Timestamp,
		table.String("2024-01-15"), table.String("2024-03-01"),
		table.String("bogus"), table.Null())

	p := ProfileColumn(c, TypeDate)
	require.NotNil(t, p.Date)

	assert.Equal(t, 2, p.Date.ValidCount)
	assert.Equal(t, 2, p.Date.InvalidCount)
	require.NotNil(t, p.Date.Min)
	assert.Equal(t, "2024-01-15", p.Date.Min.Format("2006-01-02"))
	assert.Equal(t, "2024-03-01", p.Date.Max.Format("2006-01-02"))
}

func TestStringStats(t *testing.T) {
	c := col("s", table.Text,
		table.String("aa"), table.String("aa"),
		table.String("bbbb"), table.Null())

	p := ProfileColumn(c, TypeString)
	require.NotNil(t, p.String)

	assert.Equal(t, 4, p.String.MaxLength)
	assert.InDelta(t, 2.67, p.String.AvgLength, 0.001)
	require.Len(t, p.String.TopValues, 2)
	assert.Equal(t, ValueCount{Value: "aa", Count: 2}, p.String.TopValues[0])
	assert.Equal(t, ValueCount{Value: "bbbb", Count: 1}, p.String.TopValues[1])
}

func TestTopValues_TieOrderAndLimit(t *testing.T) {
	values := make([]table.Value, 0, 24)
	// 12 distinct values, each appearing twice, interleaved.
	for i := 0; i < 2; i++ {
		for _, s := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
			values = append(values, table.String(s))
		}
	}

	p := ProfileColumn(col("s", table.Text, values...), TypeString)

	require.Len(t, p.String.TopValues, 10, "histogram capped at 10")
	// Equal counts keep first-encountered order.
	assert.Equal(t, "a", p.String.TopValues[0].Value)
	assert.Equal(t, "j", p.String.TopValues[9].Value)
}

func TestBooleanStats(t *testing.T) {
	c := col("b", table.Boolean,
		table.Bool(true), table.Bool(true), table.Bool(false))

	p := ProfileColumn(c, TypeBoolean)
	require.NotNil(t, p.Boolean)
	assert.Equal(t, []ValueCount{
		{Value: "true", Count: 2},
		{Value: "false", Count: 1},
	}, p.Boolean.Counts)
}
