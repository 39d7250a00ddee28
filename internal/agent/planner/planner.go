package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"data-analyst-agent/internal/agent"
	"data-analyst-agent/internal/dataset"
	"data-analyst-agent/pkg/compute"
	"data-analyst-agent/pkg/llmprovider"
)

// planResponse is the raw structured response from the reasoning service.
// It is untrusted input until validated against the schema.
type planResponse struct {
	Goal               string         `json:"goal"`
	Steps              []stepResponse `json:"steps"`
	NeedsVisualization bool           `json:"needs_visualization"`
	ChartType          string         `json:"chart_type"`
	ChartFields        []string       `json:"chart_fields"`
	ColumnsToUse       []string       `json:"columns_to_use"`
}

type stepResponse struct {
	Operation string `json:"operation"`
	Output    string `json:"output"`
}

// Plan translates the question into a validated execution plan.
func (p *Planner) Plan(ctx context.Context, question string, schema dataset.Summary, history string) (agent.ExecutionPlan, error) {
	if strings.TrimSpace(question) == "" {
		return agent.ExecutionPlan{}, agent.ErrInvalidInput
	}

	req := &llmprovider.Request{
		SystemInstruction: &llmprovider.Message{
			Parts: []llmprovider.Part{{Text: systemPrompt}},
		},
		Messages: []llmprovider.Message{
			{Role: "user", Parts: []llmprovider.Part{{Text: buildPrompt(question, schema, history)}}},
		},
		Temperature:      planTemperature,
		MaxTokens:        planMaxTokens,
		ResponseMIMEType: "application/json",
	}

	resp, err := p.llm.GenerateContent(ctx, req)
	if err != nil {
		return agent.ExecutionPlan{}, fmt.Errorf("%w: %v", agent.ErrPlannerUnavailable, err)
	}

	raw := stripCodeFences(resp.Text())
	if raw == "" {
		return agent.ExecutionPlan{}, fmt.Errorf("%w: empty response", agent.ErrPlanParse)
	}

	var parsed planResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		p.l.Warnf(ctx, "planner: unparsable response: %v", err)
		return agent.ExecutionPlan{}, fmt.Errorf("%w: %v", agent.ErrPlanParse, err)
	}

	plan, err := p.normalize(parsed, raw)
	if err != nil {
		return agent.ExecutionPlan{}, err
	}

	if err := validateColumns(plan, schema); err != nil {
		return agent.ExecutionPlan{}, err
	}

	p.l.Infof(ctx, "planner: %d step(s), chart=%v, goal=%q", len(plan.Steps), plan.Chart != nil, plan.Goal)
	return plan, nil
}

// normalize converts the raw response into the ExecutionPlan shape,
// rejecting malformed steps rather than coercing them.
func (p *Planner) normalize(parsed planResponse, raw string) (agent.ExecutionPlan, error) {
	if len(parsed.Steps) == 0 {
		return agent.ExecutionPlan{}, fmt.Errorf("%w: plan has no steps", agent.ErrPlanParse)
	}

	steps := make([]agent.PlanStep, len(parsed.Steps))
	for i, s := range parsed.Steps {
		if strings.TrimSpace(s.Operation) == "" {
			return agent.ExecutionPlan{}, fmt.Errorf("%w: step %d has no operation", agent.ErrPlanParse, i)
		}
		kind := compute.ResultKind(strings.ToLower(strings.TrimSpace(s.Output)))
		if kind == "" {
			kind = compute.KindTable
		}
		if !kind.Valid() {
			return agent.ExecutionPlan{}, fmt.Errorf("%w: step %d has unknown output kind %q", agent.ErrPlanParse, i, s.Output)
		}
		steps[i] = agent.PlanStep{Operation: s.Operation, Expect: kind}
	}

	goal := parsed.Goal
	if goal == "" {
		goal = "Analyze the data"
	}

	plan := agent.ExecutionPlan{
		Goal:    goal,
		Steps:   steps,
		Columns: parsed.ColumnsToUse,
		Raw:     raw,
	}

	if parsed.NeedsVisualization {
		kind := agent.ChartKind(strings.ToLower(strings.TrimSpace(parsed.ChartType)))
		// A visualization claim without a usable kind or fields is
		// dropped, not guessed at.
		if kind.Valid() && len(parsed.ChartFields) > 0 {
			plan.Chart = &agent.ChartDirective{Kind: kind, Fields: parsed.ChartFields}
		}
	}

	return plan, nil
}

// validateColumns enforces schema membership for every column the plan
// references. Plans naming unknown columns never reach the executor.
func validateColumns(plan agent.ExecutionPlan, schema dataset.Summary) error {
	var unknown []string

	seen := make(map[string]bool)
	check := func(col string) {
		if col == "" || seen[col] {
			return
		}
		seen[col] = true
		if !schema.Has(col) {
			unknown = append(unknown, col)
		}
	}

	for _, col := range plan.Columns {
		check(col)
	}
	if plan.Chart != nil {
		for _, col := range plan.Chart.Fields {
			check(col)
		}
	}

	if len(unknown) > 0 {
		return &agent.PlanValidationError{Columns: unknown}
	}
	return nil
}

// stripCodeFences removes markdown code fences some models wrap around
// JSON output.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}
