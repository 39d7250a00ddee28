package llmprovider

import (
	"context"

	"data-analyst-agent/pkg/qwen"
)

// QwenAdapter adapts pkg/qwen to llmprovider.Provider interface
type QwenAdapter struct {
	client qwen.IQwen
}

// NewQwenAdapter creates a new Qwen adapter
func NewQwenAdapter(client qwen.IQwen) *QwenAdapter {
	return &QwenAdapter{client: client}
}

// GenerateContent implements Provider interface
func (a *QwenAdapter) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	qwenReq := &qwen.Request{
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		JSONMode:    req.ResponseMIMEType == "application/json",
	}
	if req.SystemInstruction != nil {
		qwenReq.System = flattenParts(req.SystemInstruction.Parts)
	}
	for _, msg := range req.Messages {
		qwenReq.Messages = append(qwenReq.Messages, qwen.Message{
			Role:    chatRole(msg.Role),
			Content: flattenParts(msg.Parts),
		})
	}

	resp, err := a.client.GenerateContent(ctx, qwenReq)
	if err != nil {
		return nil, err
	}

	usage := &Usage{}
	if resp.Usage != nil {
		usage.InputTokens = resp.Usage.InputTokens
		usage.OutputTokens = resp.Usage.OutputTokens
		usage.TotalTokens = resp.Usage.TotalTokens
	}

	return &Response{
		Content:      Message{Role: "model", Parts: []Part{{Text: resp.Text()}}},
		ProviderName: "qwen",
		ModelName:    a.client.Model(),
		Usage:        usage,
	}, nil
}

// Name returns provider name
func (a *QwenAdapter) Name() string {
	return "qwen"
}

// Model returns model name
func (a *QwenAdapter) Model() string {
	return a.client.Model()
}
