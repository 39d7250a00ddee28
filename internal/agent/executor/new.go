// Package executor carries out execution plans against the loaded dataset
// by dispatching each step to the external computation backend.
package executor

import (
	"data-analyst-agent/pkg/compute"
	pkgLog "data-analyst-agent/pkg/log"
)

type Executor struct {
	backend compute.ICompute
	l       pkgLog.Logger
}

// New creates a new Executor backed by the given compute client.
func New(backend compute.ICompute, l pkgLog.Logger) *Executor {
	return &Executor{
		backend: backend,
		l:       l,
	}
}
