package compute

// ResultKind tags the shape of a step's output.
type ResultKind string

const (
	KindTable  ResultKind = "table"
	KindSeries ResultKind = "series"
	KindScalar ResultKind = "scalar"
)

// Valid reports whether k is a known result kind.
func (k ResultKind) Valid() bool {
	switch k {
	case KindTable, KindSeries, KindScalar:
		return true
	}
	return false
}

// Table is the wire representation of tabular data exchanged with the
// backend. Rows hold cell values in column order.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// StepRequest asks the backend to run one operation against the input.
type StepRequest struct {
	Operation string `json:"operation"`
	Input     Table  `json:"input"`
}

// StepResult is the backend's answer for a single step.
type StepResult struct {
	Kind    ResultKind `json:"kind"`
	Output  Table      `json:"output,omitempty"`
	Scalar  string     `json:"scalar,omitempty"`
	Summary string     `json:"summary,omitempty"`
}

// ChartRequest asks the backend to render a chart over the given data.
type ChartRequest struct {
	Kind   string   `json:"kind"`
	Fields []string `json:"fields"`
	Data   Table    `json:"data"`
}

// ChartResult references a rendered chart artifact on local storage.
type ChartResult struct {
	ArtifactRef string `json:"artifact_ref"`
}
