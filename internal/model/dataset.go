package model

// ColumnType is the inferred value type of a dataset column.
type ColumnType string

const (
	TypeInteger  ColumnType = "integer"
	TypeFloat    ColumnType = "float"
	TypeBoolean  ColumnType = "boolean"
	TypeDatetime ColumnType = "datetime"
	TypeString   ColumnType = "string"
)

// Column describes one column of a loaded dataset.
type Column struct {
	Name string
	Type ColumnType
	// Coerced is set when the column held mixed value types and the
	// dominant type was chosen.
	Coerced bool
}

// Dataset is an in-memory tabular dataset. Rows hold raw cell strings in
// column order; typed interpretation is left to consumers. A Dataset is
// read-only after load.
type Dataset struct {
	Columns  []Column
	Rows     [][]string
	ByteSize int64
}

// RowCount returns the number of data rows.
func (d *Dataset) RowCount() int {
	return len(d.Rows)
}

// ColumnNames returns the ordered column names.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}
