package agent

import (
	"fmt"
	"strings"
	"time"

	"data-analyst-agent/pkg/compute"
)

// ChartKind identifies the chart type of a plan's chart directive.
type ChartKind string

const (
	ChartBar           ChartKind = "bar"
	ChartHorizontalBar ChartKind = "horizontal_bar"
	ChartLine          ChartKind = "line"
	ChartPie           ChartKind = "pie"
	ChartScatter       ChartKind = "scatter"
	ChartHistogram     ChartKind = "histogram"
	ChartArea          ChartKind = "area"
)

// Valid reports whether k is a known chart kind.
func (k ChartKind) Valid() bool {
	switch k {
	case ChartBar, ChartHorizontalBar, ChartLine, ChartPie, ChartScatter, ChartHistogram, ChartArea:
		return true
	}
	return false
}

// PlanStep is one operation of an execution plan.
type PlanStep struct {
	// Operation is the natural-language operation description passed to
	// the compute backend.
	Operation string `json:"operation"`
	// Expect is the intermediate shape the step must produce.
	Expect compute.ResultKind `json:"expect"`
}

// ChartDirective asks the executor to render a chart after the final step.
type ChartDirective struct {
	Kind   ChartKind `json:"kind"`
	Fields []string  `json:"fields"`
}

// ExecutionPlan is the planner's structured output: an ordered data
// transformation pipeline plus an optional chart directive. Immutable once
// handed to the executor; scoped to a single turn.
type ExecutionPlan struct {
	Goal    string          `json:"goal"`
	Steps   []PlanStep      `json:"steps"`
	Columns []string        `json:"columns"`
	Chart   *ChartDirective `json:"chart,omitempty"`
	// Raw is the unparsed reasoning-service response, kept for display
	// and debugging.
	Raw string `json:"-"`
}

// Display formats the plan for presentation to the user.
func (p ExecutionPlan) Display() string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Goal:** %s\n\n**Execution Steps:**\n", p.Goal)
	for i, step := range p.Steps {
		fmt.Fprintf(&b, "   %d. %s\n", i+1, step.Operation)
	}
	if p.Chart != nil {
		fmt.Fprintf(&b, "\n**Visualization:** %s chart", p.Chart.Kind)
	}
	if len(p.Columns) > 0 {
		fmt.Fprintf(&b, "\n**Columns:** %s", strings.Join(p.Columns, ", "))
	}
	return b.String()
}

// Answer is the executor's final result for one turn.
type Answer struct {
	Text     string        `json:"text"`
	ChartRef string        `json:"chart_ref,omitempty"`
	Plan     ExecutionPlan `json:"plan"`
}

// Turn is one complete question→plan→answer exchange, the unit of memory
// storage. Immutable after creation.
type Turn struct {
	Question  string        `json:"question"`
	Plan      ExecutionPlan `json:"plan"`
	Answer    Answer        `json:"answer"`
	CreatedAt time.Time     `json:"created_at"`
}
