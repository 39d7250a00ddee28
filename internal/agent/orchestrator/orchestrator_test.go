package orchestrator_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"data-analyst-agent/internal/agent"
	"data-analyst-agent/internal/agent/executor"
	"data-analyst-agent/internal/agent/orchestrator"
	"data-analyst-agent/internal/agent/planner"
	"data-analyst-agent/internal/dataset"
	"data-analyst-agent/internal/observability"
	"data-analyst-agent/pkg/compute"
	"data-analyst-agent/pkg/llmprovider"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Debugf(ctx context.Context, template string, arg ...any)  {}
func (m *mockLogger) Info(ctx context.Context, arg ...any)                     {}
func (m *mockLogger) Infof(ctx context.Context, template string, arg ...any)   {}
func (m *mockLogger) Warn(ctx context.Context, arg ...any)                     {}
func (m *mockLogger) Warnf(ctx context.Context, template string, arg ...any)   {}
func (m *mockLogger) Error(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Errorf(ctx context.Context, template string, arg ...any)  {}
func (m *mockLogger) Fatal(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Fatalf(ctx context.Context, template string, arg ...any)  {}
func (m *mockLogger) DPanic(ctx context.Context, arg ...any)                   {}
func (m *mockLogger) DPanicf(ctx context.Context, template string, arg ...any) {}
func (m *mockLogger) Panic(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Panicf(ctx context.Context, template string, arg ...any)  {}

type stubProvider struct {
	text  string
	err   error
	calls int
}

func (s *stubProvider) GenerateContent(ctx context.Context, req *llmprovider.Request) (*llmprovider.Response, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &llmprovider.Response{
		Content: llmprovider.Message{Role: "model", Parts: []llmprovider.Part{{Text: s.text}}},
	}, nil
}

func (s *stubProvider) Name() string  { return "stub" }
func (s *stubProvider) Model() string { return "stub-model" }

type mockBackend struct {
	result  compute.StepResult
	err     error
	started chan struct{}
	release chan struct{}
}

func (b *mockBackend) RunStep(ctx context.Context, req compute.StepRequest) (compute.StepResult, error) {
	if b.started != nil {
		b.started <- struct{}{}
	}
	if b.release != nil {
		<-b.release
	}
	if b.err != nil {
		return compute.StepResult{}, b.err
	}
	return b.result, nil
}

func (b *mockBackend) RenderChart(ctx context.Context, req compute.ChartRequest) (compute.ChartResult, error) {
	return compute.ChartResult{ArtifactRef: "artifacts/chart.png"}, nil
}

const planJSON = `{
	"goal": "Count the rows",
	"steps": [{"operation": "count the rows", "output": "scalar"}],
	"needs_visualization": false,
	"columns_to_use": ["Sales"]
}`

func newOrchestrator(prov llmprovider.Provider, backend compute.ICompute, cfg orchestrator.Config) *orchestrator.Orchestrator {
	l := &mockLogger{}
	mgr := llmprovider.NewManager([]llmprovider.Provider{prov}, &llmprovider.Config{RetryAttempts: 1}, l)
	return orchestrator.New(l, planner.New(mgr, l), executor.New(backend, l), nil, cfg)
}

func scalarBackend() *mockBackend {
	return &mockBackend{result: compute.StepResult{
		Kind:    compute.KindScalar,
		Scalar:  "2",
		Summary: "There are 2 rows.",
	}}
}

const salesCSV = "Category,Sales\nFurniture,1200\nOffice,890\n"

func TestAskBeforeLoadFails(t *testing.T) {
	o := newOrchestrator(&stubProvider{text: planJSON}, scalarBackend(), orchestrator.Config{})
	_, err := o.Ask(context.Background(), "how many rows?")
	if !errors.Is(err, agent.ErrNoDatasetLoaded) {
		t.Fatalf("Ask() error = %v, want ErrNoDatasetLoaded", err)
	}
}

func TestLoadThenAskRecordsTurn(t *testing.T) {
	o := newOrchestrator(&stubProvider{text: planJSON}, scalarBackend(), orchestrator.Config{})

	summary, err := o.LoadDataset(context.Background(), []byte(salesCSV), "csv")
	if err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}
	if summary.RowCount != 2 || len(summary.Columns) != 2 {
		t.Fatalf("summary = %d rows, %d columns, want 2 and 2", summary.RowCount, len(summary.Columns))
	}
	if !o.Ready() {
		t.Fatal("Ready() = false after successful load")
	}

	ans, err := o.Ask(context.Background(), "how many rows?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if ans.Text != "There are 2 rows." {
		t.Errorf("answer text = %q", ans.Text)
	}

	turns := o.History()
	if len(turns) != 1 {
		t.Fatalf("history length = %d, want 1", len(turns))
	}
	if turns[0].Question != "how many rows?" {
		t.Errorf("recorded question = %q", turns[0].Question)
	}
}

func TestMemoryCapped(t *testing.T) {
	o := newOrchestrator(&stubProvider{text: planJSON}, scalarBackend(), orchestrator.Config{})
	if _, err := o.LoadDataset(context.Background(), []byte(salesCSV), "csv"); err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}

	for i := 0; i < 8; i++ {
		q := fmt.Sprintf("question %d", i)
		if _, err := o.Ask(context.Background(), q); err != nil {
			t.Fatalf("Ask(%q) error = %v", q, err)
		}
	}

	turns := o.History()
	if len(turns) != 5 {
		t.Fatalf("history length = %d, want 5", len(turns))
	}
	if turns[0].Question != "question 3" || turns[4].Question != "question 7" {
		t.Errorf("history window = [%q .. %q], want [question 3 .. question 7]",
			turns[0].Question, turns[4].Question)
	}
}

func TestFailedAskLeavesHistoryUnchanged(t *testing.T) {
	prov := &stubProvider{text: planJSON}
	backend := scalarBackend()
	o := newOrchestrator(prov, backend, orchestrator.Config{})
	if _, err := o.LoadDataset(context.Background(), []byte(salesCSV), "csv"); err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}
	if _, err := o.Ask(context.Background(), "first"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	t.Run("empty question", func(t *testing.T) {
		_, err := o.Ask(context.Background(), "   ")
		if !errors.Is(err, agent.ErrInvalidInput) {
			t.Fatalf("Ask() error = %v, want ErrInvalidInput", err)
		}
		if got := len(o.History()); got != 1 {
			t.Errorf("history length = %d, want 1", got)
		}
	})

	t.Run("planner failure", func(t *testing.T) {
		prov.err = errors.New("quota exhausted")
		defer func() { prov.err = nil }()
		_, err := o.Ask(context.Background(), "second")
		if !errors.Is(err, agent.ErrPlannerUnavailable) {
			t.Fatalf("Ask() error = %v, want ErrPlannerUnavailable", err)
		}
		if got := len(o.History()); got != 1 {
			t.Errorf("history length = %d, want 1", got)
		}
	})

	t.Run("execution failure", func(t *testing.T) {
		backend.err = errors.New("backend down")
		defer func() { backend.err = nil }()
		_, err := o.Ask(context.Background(), "third")
		var stepErr *agent.StepExecutionError
		if !errors.As(err, &stepErr) {
			t.Fatalf("Ask() error = %v, want StepExecutionError", err)
		}
		if got := len(o.History()); got != 1 {
			t.Errorf("history length = %d, want 1", got)
		}
	})
}

func TestFailedAskCountsCollaboratorErrors(t *testing.T) {
	prov := &stubProvider{text: planJSON}
	backend := scalarBackend()
	l := &mockLogger{}
	mgr := llmprovider.NewManager([]llmprovider.Provider{prov}, &llmprovider.Config{RetryAttempts: 1}, l)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	o := orchestrator.New(l, planner.New(mgr, l), executor.New(backend, l), metrics, orchestrator.Config{})
	if _, err := o.LoadDataset(context.Background(), []byte(salesCSV), "csv"); err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}

	prov.err = errors.New("quota exhausted")
	if _, err := o.Ask(context.Background(), "first"); err == nil {
		t.Fatal("Ask() succeeded with failing planner")
	}
	prov.err = nil
	if got := testutil.ToFloat64(metrics.BackendErrors.WithLabelValues("reasoning")); got != 1 {
		t.Errorf("reasoning errors = %v, want 1", got)
	}

	backend.err = errors.New("backend down")
	if _, err := o.Ask(context.Background(), "second"); err == nil {
		t.Fatal("Ask() succeeded with failing backend")
	}
	backend.err = nil
	if got := testutil.ToFloat64(metrics.BackendErrors.WithLabelValues("compute")); got != 1 {
		t.Errorf("compute errors = %v, want 1", got)
	}
}

func TestLoadClearsHistory(t *testing.T) {
	o := newOrchestrator(&stubProvider{text: planJSON}, scalarBackend(), orchestrator.Config{})
	if _, err := o.LoadDataset(context.Background(), []byte(salesCSV), "csv"); err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}
	if _, err := o.Ask(context.Background(), "how many rows?"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if _, err := o.LoadDataset(context.Background(), []byte(salesCSV), "csv"); err != nil {
		t.Fatalf("second LoadDataset() error = %v", err)
	}
	if got := len(o.History()); got != 0 {
		t.Errorf("history length after reload = %d, want 0", got)
	}
}

func TestOversizedLoadPreservesState(t *testing.T) {
	o := newOrchestrator(&stubProvider{text: planJSON}, scalarBackend(), orchestrator.Config{MaxDatasetBytes: 64})
	if _, err := o.LoadDataset(context.Background(), []byte(salesCSV), "csv"); err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}
	if _, err := o.Ask(context.Background(), "how many rows?"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	big := make([]byte, 65)
	_, err := o.LoadDataset(context.Background(), big, "csv")
	if !errors.Is(err, dataset.ErrSizeLimitExceeded) {
		t.Fatalf("LoadDataset() error = %v, want ErrSizeLimitExceeded", err)
	}

	if !o.Ready() {
		t.Error("Ready() = false, previous dataset should survive a failed load")
	}
	if got := len(o.History()); got != 1 {
		t.Errorf("history length = %d, want 1", got)
	}
	if _, _, err := o.Preview(1); err != nil {
		t.Errorf("Preview() error = %v, want previous dataset intact", err)
	}
}

func TestBadFormatPreservesState(t *testing.T) {
	o := newOrchestrator(&stubProvider{text: planJSON}, scalarBackend(), orchestrator.Config{})
	if _, err := o.LoadDataset(context.Background(), []byte(salesCSV), "csv"); err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}

	_, err := o.LoadDataset(context.Background(), []byte("x"), "parquet")
	if !errors.Is(err, dataset.ErrUnsupportedFormat) {
		t.Fatalf("LoadDataset() error = %v, want ErrUnsupportedFormat", err)
	}
	if !o.Ready() {
		t.Error("Ready() = false, previous dataset should survive a failed load")
	}
}

func TestConcurrentAskRejected(t *testing.T) {
	backend := scalarBackend()
	backend.started = make(chan struct{}, 1)
	backend.release = make(chan struct{})
	o := newOrchestrator(&stubProvider{text: planJSON}, backend, orchestrator.Config{})
	if _, err := o.LoadDataset(context.Background(), []byte(salesCSV), "csv"); err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := o.Ask(context.Background(), "slow question")
		done <- err
	}()

	<-backend.started
	if _, err := o.Ask(context.Background(), "impatient question"); !errors.Is(err, agent.ErrAskInProgress) {
		t.Errorf("overlapping Ask() error = %v, want ErrAskInProgress", err)
	}

	close(backend.release)
	if err := <-done; err != nil {
		t.Fatalf("first Ask() error = %v", err)
	}
	if got := len(o.History()); got != 1 {
		t.Errorf("history length = %d, want 1", got)
	}
}

func TestPreviewBounds(t *testing.T) {
	o := newOrchestrator(&stubProvider{text: planJSON}, scalarBackend(), orchestrator.Config{})
	if _, err := o.LoadDataset(context.Background(), []byte(salesCSV), "csv"); err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}

	cols, rows, err := o.Preview(10)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("Preview(10) = %d rows, want 2", len(rows))
	}
	if len(cols) != 2 || cols[0] != "Category" || cols[1] != "Sales" {
		t.Errorf("Preview(10) columns = %v, want [Category Sales]", cols)
	}

	_, rows, err = o.Preview(1)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if len(rows) != 1 || rows[0][0] != "Furniture" {
		t.Errorf("Preview(1) rows = %v, want the first data row", rows)
	}
}

func TestClearConversationKeepsDataset(t *testing.T) {
	o := newOrchestrator(&stubProvider{text: planJSON}, scalarBackend(), orchestrator.Config{})
	if _, err := o.LoadDataset(context.Background(), []byte(salesCSV), "csv"); err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}
	if _, err := o.Ask(context.Background(), "how many rows?"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	o.ClearConversation()
	if got := len(o.History()); got != 0 {
		t.Errorf("history length = %d, want 0", got)
	}
	if !o.Ready() {
		t.Error("Ready() = false, ClearConversation must keep the dataset")
	}

	o.Reset()
	if o.Ready() {
		t.Error("Ready() = true after Reset")
	}
}
