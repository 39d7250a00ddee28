package dataset_test

import (
	"reflect"
	"strings"
	"testing"

	"data-analyst-agent/internal/dataset"
	"data-analyst-agent/internal/model"
)

func TestSummarize(t *testing.T) {
	ds, err := dataset.Load([]byte(salesCSV), "csv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	sum := dataset.Summarize(ds, 3)

	if sum.RowCount != 3 {
		t.Errorf("expected row count 3, got %d", sum.RowCount)
	}
	if len(sum.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(sum.Columns))
	}

	cat := sum.Columns[0]
	if cat.NonNull != 3 {
		t.Errorf("expected 3 non-null Category values, got %d", cat.NonNull)
	}
	if !reflect.DeepEqual(cat.Samples, []string{"Furniture", "Office", "Technology"}) {
		t.Errorf("unexpected samples: %v", cat.Samples)
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	ds, err := dataset.Load([]byte(salesCSV), "csv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	first := dataset.Summarize(ds, 3)
	second := dataset.Summarize(ds, 3)

	if !reflect.DeepEqual(first, second) {
		t.Error("Summarize must be deterministic for identical content")
	}
}

func TestSummarizeEmptyDataset(t *testing.T) {
	ds, err := dataset.Load([]byte("a,b\n"), "csv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	sum := dataset.Summarize(ds, 3)
	if len(sum.Columns) != 2 {
		t.Fatalf("empty dataset must keep column structure, got %d columns", len(sum.Columns))
	}
	for _, c := range sum.Columns {
		if len(c.Samples) != 0 {
			t.Errorf("column %s: expected empty samples, got %v", c.Name, c.Samples)
		}
		if c.NonNull != 0 {
			t.Errorf("column %s: expected 0 non-null, got %d", c.Name, c.NonNull)
		}
	}
}

func TestSummarizeCoercedColumn(t *testing.T) {
	csv := "mixed\n12\nhello\n13\n"
	ds, err := dataset.Load([]byte(csv), "csv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	sum := dataset.Summarize(ds, 3)
	col := sum.Columns[0]
	if col.Type != model.TypeInteger {
		t.Errorf("dominant type should be integer, got %s", col.Type)
	}
	if !col.Coerced {
		t.Error("mixed column must be flagged as coerced")
	}
	if !strings.Contains(sum.Prompt(), "coerced") {
		t.Error("prompt should mention coercion")
	}
}

func TestSummaryHas(t *testing.T) {
	ds, _ := dataset.Load([]byte(salesCSV), "csv")
	sum := dataset.Summarize(ds, 3)

	if !sum.Has("Profit") {
		t.Error("expected Has(Profit) to be true")
	}
	if !sum.Has("profit") {
		t.Error("column matching should be case-insensitive")
	}
	if sum.Has("Revenue") {
		t.Error("expected Has(Revenue) to be false")
	}
}

func TestSummaryColumnNames(t *testing.T) {
	ds, _ := dataset.Load([]byte(salesCSV), "csv")
	sum := dataset.Summarize(ds, 3)

	if got := sum.ColumnNames(); !reflect.DeepEqual(got, []string{"Category", "Sales", "Profit"}) {
		t.Errorf("unexpected column names: %v", got)
	}
}

func TestSummaryPrompt(t *testing.T) {
	ds, _ := dataset.Load([]byte(salesCSV), "csv")
	prompt := dataset.Summarize(ds, 3).Prompt()

	for _, want := range []string{"COLUMNS AND DATA TYPES:", "Category", "Sales", "Profit", "Total Rows: 3"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
