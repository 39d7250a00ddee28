package agent

import (
	"errors"
	"fmt"
	"strings"
)

// Shared errors for the agent pipeline.
var (
	ErrInvalidInput       = errors.New("question is empty")
	ErrNoDatasetLoaded    = errors.New("no dataset loaded, please upload a data file first")
	ErrPlannerUnavailable = errors.New("reasoning service unavailable")
	ErrPlanParse          = errors.New("reasoning service returned an unparsable plan")
	ErrAskInProgress      = errors.New("another question is already being processed")
)

// PlanValidationError reports plan references to columns that do not exist
// in the current schema.
type PlanValidationError struct {
	Columns []string
}

func (e *PlanValidationError) Error() string {
	return fmt.Sprintf("plan references unknown columns: %s", strings.Join(e.Columns, ", "))
}

// StepExecutionError reports a failed plan step. Step is the zero-based
// index of the failing step; a chart rendering failure uses the index one
// past the last step.
type StepExecutionError struct {
	Step      int
	Operation string
	Err       error
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("step %d (%s) failed: %v", e.Step, e.Operation, e.Err)
}

func (e *StepExecutionError) Unwrap() error {
	return e.Err
}
