package compute

import "context"

// ICompute defines the interface for the data-analysis execution engine.
// Implementations are safe for concurrent use.
type ICompute interface {
	// RunStep executes a single analysis operation against the input table.
	RunStep(ctx context.Context, req StepRequest) (StepResult, error)

	// RenderChart renders a chart from the given data and returns a
	// reference to the stored artifact.
	RenderChart(ctx context.Context, req ChartRequest) (ChartResult, error)
}

// New creates a new compute backend client with the given configuration
func New(cfg Config) (ICompute, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newComputeImpl(cfg), nil
}
