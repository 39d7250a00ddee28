package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type computeImpl struct {
	baseURL     string
	artifactDir string
	httpClient  *http.Client
}

func newComputeImpl(cfg Config) *computeImpl {
	return &computeImpl{
		baseURL:     cfg.BaseURL,
		artifactDir: cfg.ArtifactDir,
		httpClient:  cfg.HTTPClient,
	}
}

// RunStep executes a single analysis operation against the input table.
func (c *computeImpl) RunStep(ctx context.Context, req StepRequest) (StepResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return StepResult{}, fmt.Errorf("compute: failed to marshal step request: %w", err)
	}

	raw, err := c.post(ctx, "/v1/steps/run", body, "application/json")
	if err != nil {
		return StepResult{}, err
	}

	var result StepResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return StepResult{}, fmt.Errorf("compute: failed to decode step result: %w", err)
	}
	if !result.Kind.Valid() {
		return StepResult{}, fmt.Errorf("compute: backend returned unknown result kind %q", result.Kind)
	}

	return result, nil
}

// RenderChart renders a chart and stores the returned image under the
// artifact directory. The returned reference is the stored file's path.
func (c *computeImpl) RenderChart(ctx context.Context, req ChartRequest) (ChartResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return ChartResult{}, fmt.Errorf("compute: failed to marshal chart request: %w", err)
	}

	raw, err := c.post(ctx, "/v1/charts/render", body, "application/json")
	if err != nil {
		return ChartResult{}, err
	}

	if err := os.MkdirAll(c.artifactDir, 0o755); err != nil {
		return ChartResult{}, fmt.Errorf("compute: failed to create artifact dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s.png", req.Kind, uuid.New().String())
	path := filepath.Join(c.artifactDir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return ChartResult{}, fmt.Errorf("compute: failed to write chart artifact: %w", err)
	}

	return ChartResult{ArtifactRef: path}, nil
}

func (c *computeImpl) post(ctx context.Context, path string, body []byte, contentType string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("compute: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("compute: failed to call backend: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("compute: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("compute: backend error %d: %s", resp.StatusCode, string(raw))
	}

	return raw, nil
}
