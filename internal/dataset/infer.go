package dataset

import (
	"strconv"
	"strings"
	"time"

	"data-analyst-agent/internal/model"
)

// inferSampleRows bounds how many rows are scanned for type inference.
const inferSampleRows = 50

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"01/02/2006",
}

// inferValueType guesses the type of a single non-empty cell value.
func inferValueType(val string) model.ColumnType {
	val = strings.TrimSpace(val)

	switch strings.ToLower(val) {
	case "true", "false":
		return model.TypeBoolean
	}
	if _, err := strconv.ParseInt(val, 10, 64); err == nil {
		return model.TypeInteger
	}
	if _, err := strconv.ParseFloat(val, 64); err == nil {
		return model.TypeFloat
	}
	for _, layout := range datetimeLayouts {
		if _, err := time.Parse(layout, val); err == nil {
			return model.TypeDatetime
		}
	}
	return model.TypeString
}

// inferColumn scans a bounded sample of rows and returns the dominant type
// for column idx plus whether mixed values had to be coerced. An
// integer/float mix promotes to float without counting as coercion.
func inferColumn(rows [][]string, idx int) (model.ColumnType, bool) {
	counts := make(map[model.ColumnType]int)

	limit := len(rows)
	if limit > inferSampleRows {
		limit = inferSampleRows
	}

	for r := 0; r < limit; r++ {
		if idx >= len(rows[r]) {
			continue
		}
		val := strings.TrimSpace(rows[r][idx])
		if val == "" {
			continue
		}
		counts[inferValueType(val)]++
	}

	if len(counts) == 0 {
		return model.TypeString, false
	}

	if len(counts) == 2 && counts[model.TypeInteger] > 0 && counts[model.TypeFloat] > 0 {
		return model.TypeFloat, false
	}

	var dominant model.ColumnType
	best := -1
	for _, t := range []model.ColumnType{
		model.TypeInteger, model.TypeFloat, model.TypeBoolean,
		model.TypeDatetime, model.TypeString,
	} {
		if counts[t] > best {
			dominant = t
			best = counts[t]
		}
	}

	return dominant, len(counts) > 1
}
