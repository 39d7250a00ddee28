package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type deepseekImpl struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func newDeepSeekImpl(cfg Config) *deepseekImpl {
	return &deepseekImpl{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		client:  cfg.HTTPClient,
	}
}

func (d *deepseekImpl) Model() string {
	return d.model
}

// GenerateContent sends a chat completion request to the DeepSeek API.
func (d *deepseekImpl) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	wireReq := d.transformRequest(req)

	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+d.apiKey)

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err != nil || errResp.Error.Message == "" {
			return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, errResp.Error.Message)
	}

	var wireResp chatResponse
	if err := json.Unmarshal(respBody, &wireResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return transformResponse(&wireResp)
}

func (d *deepseekImpl) transformRequest(req *Request) *chatRequest {
	wire := &chatRequest{
		Model:       d.model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.System != "" {
		wire.Messages = append(wire.Messages, Message{Role: "system", Content: req.System})
	}
	wire.Messages = append(wire.Messages, req.Messages...)
	if req.JSONMode {
		wire.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	return wire
}

func transformResponse(wire *chatResponse) (*Response, error) {
	if len(wire.Choices) == 0 {
		return nil, fmt.Errorf("response has no choices")
	}
	resp := &Response{Content: wire.Choices[0].Message.Content}
	if wire.Usage != nil {
		resp.Usage = &Usage{
			InputTokens:  wire.Usage.PromptTokens,
			OutputTokens: wire.Usage.CompletionTokens,
			TotalTokens:  wire.Usage.TotalTokens,
		}
	}
	return resp, nil
}
