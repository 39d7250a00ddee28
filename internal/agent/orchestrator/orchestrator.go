package orchestrator

import (
	"context"
	"fmt"
	"time"

	"data-analyst-agent/internal/agent"
	"data-analyst-agent/internal/dataset"
)

// LoadDataset parses raw bytes in the given format ("csv", "xlsx" or
// "xls") and makes the result the session's active dataset. A new load
// replaces the previous dataset and clears the conversation history.
// On any failure the previous dataset and history are left untouched.
func (o *Orchestrator) LoadDataset(ctx context.Context, raw []byte, format string) (dataset.Summary, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if int64(len(raw)) > o.cfg.MaxDatasetBytes {
		o.metrics.ObserveDatasetLoad(false)
		return dataset.Summary{}, fmt.Errorf("%w: %d bytes exceeds limit of %d",
			dataset.ErrSizeLimitExceeded, len(raw), o.cfg.MaxDatasetBytes)
	}

	ds, err := dataset.Load(raw, format)
	if err != nil {
		o.metrics.ObserveDatasetLoad(false)
		o.l.Warnf(ctx, "orchestrator.LoadDataset: %v", err)
		return dataset.Summary{}, err
	}

	o.ds = ds
	o.schema = dataset.Summarize(ds, o.cfg.SampleValues)
	o.mem.Clear()
	o.metrics.ObserveDatasetLoad(true)
	o.l.Infof(ctx, "orchestrator.LoadDataset: loaded %d rows, %d columns (%d bytes)",
		ds.RowCount(), len(ds.Columns), ds.ByteSize)
	return o.schema, nil
}

// Ask answers a natural-language question about the active dataset.
// It plans with the LLM, runs the plan against the computation
// backend, and records the turn in conversation memory. Memory is only
// appended to when the whole turn succeeds, so a failed ask leaves the
// conversation exactly as it was. A second Ask while one is in flight
// fails immediately with ErrAskInProgress.
func (o *Orchestrator) Ask(ctx context.Context, question string) (agent.Answer, error) {
	if !o.mu.TryLock() {
		return agent.Answer{}, agent.ErrAskInProgress
	}
	defer o.mu.Unlock()

	if o.ds == nil {
		return agent.Answer{}, agent.ErrNoDatasetLoaded
	}

	start := time.Now()
	answer, err := o.ask(ctx, question)
	o.metrics.ObserveTurn(err == nil, time.Since(start).Seconds())
	return answer, err
}

func (o *Orchestrator) ask(ctx context.Context, question string) (agent.Answer, error) {
	planCtx, cancel := context.WithTimeout(ctx, o.cfg.PlanTimeout)
	plan, err := o.planner.Plan(planCtx, question, o.schema, o.mem.PromptContext())
	cancel()
	if err != nil {
		o.metrics.ObserveCollaboratorError("reasoning")
		o.l.Warnf(ctx, "orchestrator.Ask: planning failed: %v", err)
		return agent.Answer{}, err
	}
	o.l.Debugf(ctx, "orchestrator.Ask: plan: %s", plan.Display())

	execCtx, cancel := context.WithTimeout(ctx, o.cfg.ExecTimeout)
	answer, err := o.exec.Execute(execCtx, plan, o.ds)
	cancel()
	if err != nil {
		o.metrics.ObserveCollaboratorError("compute")
		o.l.Warnf(ctx, "orchestrator.Ask: execution failed: %v", err)
		return agent.Answer{}, err
	}

	o.mem.Append(agent.Turn{
		Question:  question,
		Plan:      plan,
		Answer:    answer,
		CreatedAt: time.Now(),
	})
	return answer, nil
}

// Ready reports whether a dataset has been loaded.
func (o *Orchestrator) Ready() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ds != nil
}

// Schema returns the summary of the active dataset.
func (o *Orchestrator) Schema() (dataset.Summary, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ds == nil {
		return dataset.Summary{}, agent.ErrNoDatasetLoaded
	}
	return o.schema, nil
}

// Preview returns the column names and up to n leading rows of the
// active dataset.
func (o *Orchestrator) Preview(n int) ([]string, [][]string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ds == nil {
		return nil, nil, agent.ErrNoDatasetLoaded
	}
	if n < 0 {
		n = 0
	}
	if n > len(o.ds.Rows) {
		n = len(o.ds.Rows)
	}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		rows[i] = append([]string(nil), o.ds.Rows[i]...)
	}
	return o.schema.ColumnNames(), rows, nil
}

// History returns the retained conversation turns, oldest first.
func (o *Orchestrator) History() []agent.Turn {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mem.Context()
}

// ClearConversation drops the turn history but keeps the dataset.
func (o *Orchestrator) ClearConversation() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.mem.Clear()
}

// Reset drops both the dataset and the conversation history.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ds = nil
	o.schema = dataset.Summary{}
	o.mem.Clear()
}
