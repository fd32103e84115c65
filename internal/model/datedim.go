package model

// addDateDimension appends the synthesized date dimension. Its schema is
// fixed: a hash surrogate key, the natural date value, calendar breakdown
// columns, and the standard metadata set.
func addDateDimension(m *DataModel) {
	columns := []Column{
		{Name: "DATE_SK", Type: TypeText, IsPK: true},
		{Name: "DATE_NK", Type: TypeDate},
		{Name: "YEAR", Type: TypeNumber},
		{Name: "QUARTER", Type: TypeNumber},
		{Name: "MONTH", Type: TypeNumber},
		{Name: "DAY", Type: TypeNumber},
		{Name: "DAY_OF_WEEK", Type: TypeNumber},
		{Name: "DAY_NAME", Type: TypeText},
		{Name: "MONTH_NAME", Type: TypeText},
		{Name: "IS_WEEKEND", Type: TypeBoolean},
	}
	columns = append(columns, metadataColumns()...)
	m.AddTable("DIM_DATE", KindDim, columns, []string{"DATE_SK"}, "")
}
