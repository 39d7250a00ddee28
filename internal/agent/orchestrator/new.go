package orchestrator

import (
	"sync"
	"time"

	"data-analyst-agent/internal/agent/executor"
	"data-analyst-agent/internal/agent/memory"
	"data-analyst-agent/internal/agent/planner"
	"data-analyst-agent/internal/dataset"
	"data-analyst-agent/internal/model"
	"data-analyst-agent/internal/observability"
	pkgLog "data-analyst-agent/pkg/log"
)

const (
	DefaultMaxDatasetBytes = 10 << 20 // 10 MB
	DefaultSampleValues    = 3
	DefaultPlanTimeout     = 30 * time.Second
	DefaultExecTimeout     = 2 * time.Minute
)

// Config tunes a single analysis session.
type Config struct {
	MaxDatasetBytes int64
	SampleValues    int
	MemoryCapacity  int
	PlanTimeout     time.Duration
	ExecTimeout     time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxDatasetBytes <= 0 {
		c.MaxDatasetBytes = DefaultMaxDatasetBytes
	}
	if c.SampleValues <= 0 {
		c.SampleValues = DefaultSampleValues
	}
	if c.MemoryCapacity <= 0 {
		c.MemoryCapacity = memory.DefaultCapacity
	}
	if c.PlanTimeout <= 0 {
		c.PlanTimeout = DefaultPlanTimeout
	}
	if c.ExecTimeout <= 0 {
		c.ExecTimeout = DefaultExecTimeout
	}
	return c
}

// Orchestrator owns one conversation: the loaded dataset, its schema,
// the recent turn history, and the planner/executor pair that answers
// questions about it. All methods are safe for concurrent use; Ask
// rejects overlapping calls instead of queueing them.
type Orchestrator struct {
	cfg     Config
	planner *planner.Planner
	exec    *executor.Executor
	metrics *observability.Metrics
	l       pkgLog.Logger

	mu     sync.Mutex
	ds     *model.Dataset
	schema dataset.Summary
	mem    *memory.Memory
}

func New(l pkgLog.Logger, p *planner.Planner, e *executor.Executor, m *observability.Metrics, cfg Config) *Orchestrator {
	cfg = cfg.withDefaults()
	return &Orchestrator{
		cfg:     cfg,
		planner: p,
		exec:    e,
		metrics: m,
		l:       l,
		mem:     memory.New(cfg.MemoryCapacity),
	}
}
