package dataset

import (
	"fmt"
	"strings"

	"data-analyst-agent/internal/model"
)

const (
	// DefaultSampleValues is how many sample values are kept per column.
	DefaultSampleValues = 3

	// sampleValueMaxLen truncates long sample values in the schema prompt.
	sampleValueMaxLen = 30
)

// ColumnSummary is the derived description of one column.
type ColumnSummary struct {
	Name    string           `json:"name"`
	Type    model.ColumnType `json:"type"`
	Coerced bool             `json:"coerced,omitempty"`
	NonNull int              `json:"non_null"`
	Samples []string         `json:"samples"`
}

// Summary is an immutable structural snapshot of a dataset. It is the only
// view of the data the planner ever sees.
type Summary struct {
	Columns  []ColumnSummary `json:"columns"`
	RowCount int             `json:"row_count"`
}

// Summarize derives a Summary from the dataset, keeping up to maxSamples
// non-empty sample values per column. Pure and deterministic: identical
// dataset content always yields an identical Summary.
func Summarize(ds *model.Dataset, maxSamples int) Summary {
	if maxSamples <= 0 {
		maxSamples = DefaultSampleValues
	}

	cols := make([]ColumnSummary, len(ds.Columns))
	for i, col := range ds.Columns {
		cs := ColumnSummary{
			Name:    col.Name,
			Type:    col.Type,
			Coerced: col.Coerced,
			Samples: []string{},
		}
		for _, row := range ds.Rows {
			if i >= len(row) {
				continue
			}
			val := strings.TrimSpace(row[i])
			if val == "" {
				continue
			}
			cs.NonNull++
			if len(cs.Samples) < maxSamples {
				cs.Samples = append(cs.Samples, truncateValue(val))
			}
		}
		cols[i] = cs
	}

	return Summary{Columns: cols, RowCount: ds.RowCount()}
}

// Has reports whether the summary contains a column with the given name.
// Matching is case-insensitive since plans come from a language model.
func (s Summary) Has(name string) bool {
	for _, c := range s.Columns {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// ColumnNames returns the ordered column names.
func (s Summary) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Prompt renders the schema block included in planner prompts.
func (s Summary) Prompt() string {
	var b strings.Builder
	b.WriteString("COLUMNS AND DATA TYPES:\n")
	for _, c := range s.Columns {
		flag := ""
		if c.Coerced {
			flag = ", mixed values coerced"
		}
		fmt.Fprintf(&b, "  - %s (%s%s): %d/%d non-null | Sample: [%s]\n",
			c.Name, c.Type, flag, c.NonNull, s.RowCount, strings.Join(c.Samples, ", "))
	}
	fmt.Fprintf(&b, "Total Rows: %d", s.RowCount)
	return b.String()
}

func truncateValue(val string) string {
	runes := []rune(val)
	if len(runes) <= sampleValueMaxLen {
		return val
	}
	return string(runes[:sampleValueMaxLen])
}
