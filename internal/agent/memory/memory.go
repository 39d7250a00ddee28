// Package memory holds the bounded conversational history of one session.
package memory

import (
	"fmt"
	"strings"

	"data-analyst-agent/internal/agent"
)

// DefaultCapacity is the number of turns retained per session.
const DefaultCapacity = 5

// Memory is a fixed-capacity FIFO window over conversation turns. The
// capacity bound is structural: Append evicts before the window can grow
// past it. Not safe for concurrent use; the orchestrator serializes access.
type Memory struct {
	capacity int
	turns    []agent.Turn
}

// New creates a Memory with the given capacity (DefaultCapacity if <= 0).
func New(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{
		capacity: capacity,
		turns:    make([]agent.Turn, 0, capacity),
	}
}

// Append adds a completed turn, evicting the oldest when at capacity.
func (m *Memory) Append(turn agent.Turn) {
	if len(m.turns) == m.capacity {
		copy(m.turns, m.turns[1:])
		m.turns = m.turns[:m.capacity-1]
	}
	m.turns = append(m.turns, turn)
}

// Context returns the retained turns oldest-first as an independent copy;
// later mutation of the memory does not affect returned snapshots.
func (m *Memory) Context() []agent.Turn {
	snapshot := make([]agent.Turn, len(m.turns))
	copy(snapshot, m.turns)
	return snapshot
}

// Len returns the number of retained turns.
func (m *Memory) Len() int {
	return len(m.turns)
}

// Clear resets the memory to empty.
func (m *Memory) Clear() {
	m.turns = m.turns[:0]
}

// PromptContext renders the retained turns for inclusion in planner
// prompts.
func (m *Memory) PromptContext() string {
	if len(m.turns) == 0 {
		return ""
	}

	var b strings.Builder
	for _, turn := range m.turns {
		fmt.Fprintf(&b, "User: %s\n", turn.Question)
		fmt.Fprintf(&b, "Assistant: %s\n", turn.Answer.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}
