package http

import (
	"data-analyst-agent/internal/agent"
	"data-analyst-agent/internal/dataset"
)

type createSessionResp struct {
	SessionID string `json:"session_id"`
}

type uploadResp struct {
	Schema dataset.Summary `json:"schema"`
}

type previewResp struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type askReq struct {
	Question string `json:"question" binding:"required"`
}

type askResp struct {
	Answer   string `json:"answer"`
	ChartRef string `json:"chart_ref,omitempty"`
	Plan     string `json:"plan"`
}

type historyResp struct {
	Turns []turnResp `json:"turns"`
}

type turnResp struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	ChartRef  string `json:"chart_ref,omitempty"`
	CreatedAt string `json:"created_at"`
}

func newAskResp(ans agent.Answer) askResp {
	return askResp{
		Answer:   ans.Text,
		ChartRef: ans.ChartRef,
		Plan:     ans.Plan.Display(),
	}
}

func newHistoryResp(turns []agent.Turn) historyResp {
	resp := historyResp{Turns: make([]turnResp, len(turns))}
	for i, t := range turns {
		resp.Turns[i] = turnResp{
			Question:  t.Question,
			Answer:    t.Answer.Text,
			ChartRef:  t.Answer.ChartRef,
			CreatedAt: t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	return resp
}
