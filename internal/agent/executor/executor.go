package executor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"data-analyst-agent/internal/agent"
	"data-analyst-agent/internal/model"
	"data-analyst-agent/pkg/compute"
)

// Execute runs the plan's steps strictly in order: the first step receives
// the raw dataset, each later step receives the prior step's output. The
// first failing step aborts the whole execution; there is no partial
// answer.
func (e *Executor) Execute(ctx context.Context, plan agent.ExecutionPlan, ds *model.Dataset) (agent.Answer, error) {
	input := tableFromDataset(ds)

	var last compute.StepResult
	for i, step := range plan.Steps {
		e.l.Debugf(ctx, "executor: step %d/%d: %s", i+1, len(plan.Steps), step.Operation)

		res, err := e.backend.RunStep(ctx, compute.StepRequest{
			Operation: step.Operation,
			Input:     input,
		})
		if err != nil {
			return agent.Answer{}, &agent.StepExecutionError{Step: i, Operation: step.Operation, Err: err}
		}
		if res.Kind != step.Expect {
			return agent.Answer{}, &agent.StepExecutionError{
				Step:      i,
				Operation: step.Operation,
				Err:       fmt.Errorf("expected %s output, backend returned %s", step.Expect, res.Kind),
			}
		}

		last = res
		input = nextInput(res, input)
	}

	answer := agent.Answer{
		Text: answerText(last),
		Plan: plan,
	}

	if plan.Chart != nil {
		chart, err := e.backend.RenderChart(ctx, compute.ChartRequest{
			Kind:   string(plan.Chart.Kind),
			Fields: plan.Chart.Fields,
			Data:   input,
		})
		if err != nil {
			return agent.Answer{}, &agent.StepExecutionError{
				Step:      len(plan.Steps),
				Operation: fmt.Sprintf("render %s chart", plan.Chart.Kind),
				Err:       err,
			}
		}
		answer.ChartRef = chart.ArtifactRef
	}

	return answer, nil
}

// nextInput derives the following step's input from a step result. Scalar
// results are wrapped into a single-cell table so the pipeline shape stays
// uniform.
func nextInput(res compute.StepResult, prev compute.Table) compute.Table {
	switch res.Kind {
	case compute.KindScalar:
		return compute.Table{Columns: []string{"value"}, Rows: [][]any{{res.Scalar}}}
	default:
		if len(res.Output.Columns) == 0 {
			return prev
		}
		return res.Output
	}
}

// answerText builds the user-facing answer from the final step result.
func answerText(res compute.StepResult) string {
	if s := strings.TrimSpace(res.Summary); s != "" {
		return s
	}
	if res.Kind == compute.KindScalar {
		return res.Scalar
	}
	return fmt.Sprintf("Returned %d row(s) across %d column(s).", len(res.Output.Rows), len(res.Output.Columns))
}

// tableFromDataset converts the raw dataset into the backend wire shape,
// mapping cells to typed values where the column type allows it.
func tableFromDataset(ds *model.Dataset) compute.Table {
	rows := make([][]any, len(ds.Rows))
	for r, row := range ds.Rows {
		cells := make([]any, len(ds.Columns))
		for c := range ds.Columns {
			var val string
			if c < len(row) {
				val = row[c]
			}
			cells[c] = typedCell(val, ds.Columns[c].Type)
		}
		rows[r] = cells
	}
	return compute.Table{Columns: ds.ColumnNames(), Rows: rows}
}

func typedCell(val string, t model.ColumnType) any {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	switch t {
	case model.TypeInteger:
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
	case model.TypeFloat:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	case model.TypeBoolean:
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			return b
		}
	}
	return val
}
