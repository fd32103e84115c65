package split

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/starform/internal/model"
	"github.com/leapstack-labs/starform/internal/profile"
	"github.com/leapstack-labs/starform/internal/table"
	"github.com/leapstack-labs/starform/internal/testutil"
)

var testLoadTS = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// ordersSource has five transactions over three customers and three dates.
func ordersSource(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New(
		table.NewColumn("transaction_id", table.Integer, []table.Value{
			table.Int(1), table.Int(2), table.Int(3), table.Int(4), table.Int(5)}),
		table.NewColumn("customer_id", table.Integer, []table.Value{
			table.Int(100), table.Int(100), table.Int(200), table.Int(300), table.Int(200)}),
		table.NewColumn("order_date", table.Timestamp, []table.Value{
			table.String("2024-01-01"), table.String("2024-01-01"),
			table.String("2024-01-02"), table.String("2024-01-06"),
			table.String("2024-01-06")}),
		table.NewColumn("amount", table.Float, []table.Value{
			table.Floatv(10), table.Floatv(20), table.Floatv(30),
			table.Floatv(40), table.Floatv(50)}),
		table.NewColumn("customer_region", table.Text, []table.Value{
			table.String("north"), table.String("north"), table.String("south"),
			table.String("north"), table.String("south")}),
		table.NewColumn("customer_tier", table.Text, []table.Value{
			table.String("gold"), table.String("gold"), table.String("silver"),
			table.String("gold"), table.String("silver")}),
	)
	require.NoError(t, err)
	return tbl
}

func inferredModel(t *testing.T, tbl *table.Table) *model.DataModel {
	t.Helper()
	prof := profile.Analyze(tbl, profile.Options{Logger: testutil.NewTestLogger(t)})
	return model.Infer(tbl, prof, model.Options{Logger: testutil.NewTestLogger(t)})
}

func TestSplit_StarSchema(t *testing.T) {
	tbl := ordersSource(t)
	m := inferredModel(t, tbl)
	require.Equal(t, model.StrategyStarSchema, m.Strategy)

	eng := &Engine{Logger: testutil.NewTestLogger(t)}
	result := eng.Split(tbl, m, "orders.csv", testLoadTS)

	require.Empty(t, result.Errors)

	fact := result.Tables["FACT_MAIN"]
	require.NotNil(t, fact)
	assert.Equal(t, 5, fact.NumRows(), "facts keep every source row")

	dim := result.Tables["DIM_CUSTOMER"]
	require.NotNil(t, dim)
	assert.Equal(t, 3, dim.NumRows(), "dimension deduplicates by natural key")

	dates := result.Tables["DIM_DATE"]
	require.NotNil(t, dates)
	assert.Equal(t, 3, dates.NumRows(), "one date row per distinct calendar date")

	assert.Equal(t, 5, result.RowCounts["FACT_MAIN"])
	assert.Equal(t, 3, result.RowCounts["DIM_CUSTOMER"])
}

func TestSplit_ForeignKeysRoundTrip(t *testing.T) {
	tbl := ordersSource(t)
	m := inferredModel(t, tbl)

	eng := &Engine{}
	result := eng.Split(tbl, m, "orders.csv", testLoadTS)

	fact := result.Tables["FACT_MAIN"]
	dim := result.Tables["DIM_CUSTOMER"]
	require.NotNil(t, fact)
	require.NotNil(t, dim)

	// Collect the dimension's surrogate keys.
	skIdx := dim.ColumnIndex("DIM_CUSTOMER_SK")
	nkIdx := dim.ColumnIndex("customer_id_NK")
	require.GreaterOrEqual(t, skIdx, 0)
	require.GreaterOrEqual(t, nkIdx, 0)
	skByCustomer := make(map[string]string)
	for _, row := range dim.Rows {
		skByCustomer[row[nkIdx].Raw] = row[skIdx].Raw
	}

	fkIdx := fact.ColumnIndex("customer_id_FK")
	require.GreaterOrEqual(t, fkIdx, 0)
	customers := []string{"100", "100", "200", "300", "200"}
	for i, row := range fact.Rows {
		require.False(t, row[fkIdx].Null, "row %d FK should resolve", i)
		assert.Equal(t, skByCustomer[customers[i]], row[fkIdx].Raw, "row %d", i)
	}

	// The surrogate key is the hash of the natural key value.
	assert.Equal(t, SurrogateKey([]table.Value{table.String("100")}), skByCustomer["100"])
}

func TestSplit_DimensionFirstRowWins(t *testing.T) {
	// Customer 100 appears with conflicting regions; the first row is the
	// representative record.
	tbl, err := table.New(
		table.NewColumn("customer_id", table.Integer, []table.Value{
			table.Int(100), table.Int(100), table.Int(100), table.Int(100),
			table.Int(100), table.Int(100), table.Int(100), table.Int(100),
			table.Int(100), table.Int(200)}),
		table.NewColumn("customer_region", table.Text, []table.Value{
			table.String("north"), table.String("south"), table.String("north"),
			table.String("north"), table.String("north"), table.String("north"),
			table.String("north"), table.String("north"), table.String("north"),
			table.String("south")}),
		table.NewColumn("sales_amount", table.Float, []table.Value{
			table.Floatv(1), table.Floatv(2), table.Floatv(3), table.Floatv(4),
			table.Floatv(5), table.Floatv(6), table.Floatv(7), table.Floatv(8),
			table.Floatv(9), table.Floatv(10)}),
	)
	require.NoError(t, err)

	m := inferredModel(t, tbl)
	require.Equal(t, model.StrategyStarSchema, m.Strategy)

	result := (&Engine{}).Split(tbl, m, "s.csv", testLoadTS)
	dim := result.Tables["DIM_CUSTOMER"]
	require.NotNil(t, dim)
	require.Equal(t, 2, dim.NumRows())

	regionIdx := dim.ColumnIndex("customer_region")
	require.GreaterOrEqual(t, regionIdx, 0)
	assert.Equal(t, "north", dim.Rows[0][regionIdx].Raw, "first occurrence wins")
}

func TestSplit_OrphanForeignKeyIsNull(t *testing.T) {
	tbl, err := table.New(
		table.NewColumn("customer_id", table.Integer, []table.Value{table.Int(1)}),
		table.NewColumn("supplier_id", table.Integer, []table.Value{table.Int(99)}),
	)
	require.NoError(t, err)

	// Hand-built model: the fact references DIM_CUSTOMER through
	// supplier_id, whose value never appears in the dimension's mapping.
	m := &model.DataModel{Strategy: model.StrategyStarSchema}
	m.AddTable("DIM_CUSTOMER", model.KindDim, []model.Column{
		{Name: "DIM_CUSTOMER_SK", Type: model.TypeText, IsPK: true},
		{Name: "customer_id_NK", Type: model.TypeNumber},
	}, []string{"DIM_CUSTOMER_SK"}, "")
	m.AddTable("FACT_MAIN", model.KindFact, []model.Column{
		{Name: "FACT_SK", Type: model.TypeText, IsPK: true},
		{Name: "supplier_id_FK", Type: model.TypeText, Nullable: true, IsFK: true,
			References: "DIM_CUSTOMER", ReferencesColumn: "DIM_CUSTOMER_SK"},
	}, []string{"FACT_SK"}, "")

	result := (&Engine{}).Split(tbl, m, "s.csv", testLoadTS)
	fact := result.Tables["FACT_MAIN"]
	require.NotNil(t, fact)

	fkIdx := fact.ColumnIndex("supplier_id_FK")
	require.GreaterOrEqual(t, fkIdx, 0)
	assert.True(t, fact.Rows[0][fkIdx].Null, "unresolved FK must be null, not an error")
	assert.Empty(t, result.Errors)
}

func TestSplit_DateDimensionCalendar(t *testing.T) {
	tbl := ordersSource(t)
	m := inferredModel(t, tbl)

	result := (&Engine{}).Split(tbl, m, "orders.csv", testLoadTS)
	dates := result.Tables["DIM_DATE"]
	require.NotNil(t, dates)

	idx := func(name string) int {
		i := dates.ColumnIndex(name)
		require.GreaterOrEqual(t, i, 0, "missing column %s", name)
		return i
	}

	// First row is 2024-01-01, a Monday.
	row := dates.Rows[0]
	assert.Equal(t, "2024-01-01", row[idx("DATE_NK")].Raw)
	assert.Equal(t, "2024", row[idx("YEAR")].Raw)
	assert.Equal(t, "1", row[idx("QUARTER")].Raw)
	assert.Equal(t, "1", row[idx("MONTH")].Raw)
	assert.Equal(t, "1", row[idx("DAY")].Raw)
	assert.Equal(t, "1", row[idx("DAY_OF_WEEK")].Raw)
	assert.Equal(t, "Monday", row[idx("DAY_NAME")].Raw)
	assert.Equal(t, "January", row[idx("MONTH_NAME")].Raw)
	assert.Equal(t, "false", row[idx("IS_WEEKEND")].Raw)

	// 2024-01-06 is a Saturday.
	var saturday []table.Value
	for _, r := range dates.Rows {
		if r[idx("DATE_NK")].Raw == "2024-01-06" {
			saturday = r
			break
		}
	}
	require.NotNil(t, saturday)
	assert.Equal(t, "true", saturday[idx("IS_WEEKEND")].Raw)
	assert.Equal(t, "Saturday", saturday[idx("DAY_NAME")].Raw)

	// Date FKs on the fact resolve against the raw source values.
	fact := result.Tables["FACT_MAIN"]
	fkIdx := fact.ColumnIndex("order_date_FK")
	require.GreaterOrEqual(t, fkIdx, 0)
	want := SurrogateKey([]table.Value{table.String("2024-01-01")})
	assert.Equal(t, want, fact.Rows[0][fkIdx].Raw)
}

func TestSplit_MetadataColumns(t *testing.T) {
	tbl := ordersSource(t)
	m := inferredModel(t, tbl)

	result := (&Engine{}).Split(tbl, m, "orders.csv", testLoadTS)
	fact := result.Tables["FACT_MAIN"]
	require.NotNil(t, fact)

	idx := func(name string) int {
		i := fact.ColumnIndex(name)
		require.GreaterOrEqual(t, i, 0, "missing column %s", name)
		return i
	}

	row := fact.Rows[0]
	assert.Equal(t, "2024-06-01 12:00:00", row[idx("LOAD_TS")].Raw)
	assert.Equal(t, "orders.csv", row[idx("SOURCE_FILE_NAME")].Raw)
	assert.Equal(t, "orders.csv", row[idx("RECORD_SOURCE")].Raw)

	hashIdx := idx("ROW_HASH")
	assert.NotEmpty(t, row[hashIdx].Raw)
	assert.Len(t, row[hashIdx].Raw, 64)
	assert.NotEqual(t, fact.Rows[0][hashIdx].Raw, fact.Rows[1][hashIdx].Raw,
		"distinct rows carry distinct content hashes")
}

func TestSplit_Deterministic(t *testing.T) {
	tbl := ordersSource(t)
	m := inferredModel(t, tbl)

	a := (&Engine{}).Split(tbl, m, "orders.csv", testLoadTS)
	b := (&Engine{}).Split(tbl, m, "orders.csv", testLoadTS)

	for name, rsA := range a.Tables {
		rsB := b.Tables[name]
		require.NotNil(t, rsB, "missing table %s", name)
		assert.Equal(t, rsA.Rows, rsB.Rows, "table %s", name)
	}
}

func TestSplit_TableErrorIsAccumulated(t *testing.T) {
	tbl, err := table.New(
		table.NewColumn("v", table.Integer, []table.Value{table.Int(1)}),
	)
	require.NoError(t, err)

	// The dimension's columns resolve to nothing in the source; the fact
	// must still be produced.
	m := &model.DataModel{Strategy: model.StrategyStarSchema}
	m.AddTable("DIM_GHOST", model.KindDim, []model.Column{
		{Name: "DIM_GHOST_SK", Type: model.TypeText, IsPK: true},
		{Name: "ghost_attr", Type: model.TypeText, Nullable: true},
	}, []string{"DIM_GHOST_SK"}, "")
	m.AddTable("FACT_MAIN", model.KindFact, []model.Column{
		{Name: "FACT_SK", Type: model.TypeText, IsPK: true},
		{Name: "v", Type: model.TypeNumber},
	}, []string{"FACT_SK"}, "")

	result := (&Engine{Logger: testutil.NewTestLogger(t)}).Split(tbl, m, "s.csv", testLoadTS)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "DIM_GHOST")
	assert.Nil(t, result.Tables["DIM_GHOST"])
	require.NotNil(t, result.Tables["FACT_MAIN"])
	assert.Equal(t, 1, result.Tables["FACT_MAIN"].NumRows())
}
