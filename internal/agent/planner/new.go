// Package planner turns a user question plus schema and conversation
// context into a validated execution plan, delegating the language
// reasoning to an external LLM.
package planner

import (
	"data-analyst-agent/pkg/llmprovider"
	pkgLog "data-analyst-agent/pkg/log"
)

const (
	// planTemperature keeps plan generation close to deterministic.
	planTemperature = 0.2

	// planMaxTokens bounds the structured plan response.
	planMaxTokens = 1024
)

type Planner struct {
	llm *llmprovider.Manager
	l   pkgLog.Logger
}

// New creates a new Planner backed by the given provider manager.
func New(llm *llmprovider.Manager, l pkgLog.Logger) *Planner {
	return &Planner{
		llm: llm,
		l:   l,
	}
}
