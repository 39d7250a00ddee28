package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"data-analyst-agent/internal/agent/executor"
	"data-analyst-agent/internal/agent/orchestrator"
	"data-analyst-agent/internal/agent/planner"
	"data-analyst-agent/internal/session"
	"data-analyst-agent/pkg/compute"
	"data-analyst-agent/pkg/llmprovider"
	"data-analyst-agent/pkg/response"
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
	text string
	err  error
}

func (s *stubProvider) GenerateContent(ctx context.Context, req *llmprovider.Request) (*llmprovider.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llmprovider.Response{
		Content: llmprovider.Message{Role: "model", Parts: []llmprovider.Part{{Text: s.text}}},
	}, nil
}

func (s *stubProvider) Name() string  { return "stub" }
func (s *stubProvider) Model() string { return "stub-model" }

type stubBackend struct{}

func (stubBackend) RunStep(ctx context.Context, req compute.StepRequest) (compute.StepResult, error) {
	return compute.StepResult{Kind: compute.KindScalar, Scalar: "2", Summary: "There are 2 rows."}, nil
}

func (stubBackend) RenderChart(ctx context.Context, req compute.ChartRequest) (compute.ChartResult, error) {
	return compute.ChartResult{ArtifactRef: "artifacts/chart.png"}, nil
}

const planJSON = `{"goal":"Count the rows","steps":[{"operation":"count the rows","output":"scalar"}],"columns_to_use":["Sales"]}`

func newTestRouter(prov llmprovider.Provider) *gin.Engine {
	return newTestRouterWithLimit(prov, 0)
}

func newTestRouterWithLimit(prov llmprovider.Provider, maxBytes int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	l := &mockLogger{}
	factory := func() *orchestrator.Orchestrator {
		mgr := llmprovider.NewManager([]llmprovider.Provider{prov}, &llmprovider.Config{RetryAttempts: 1}, l)
		return orchestrator.New(l, planner.New(mgr, l), executor.New(stubBackend{}, l), nil,
			orchestrator.Config{MaxDatasetBytes: maxBytes})
	}
	sessions := session.New(l, nil, factory, session.Config{})
	h := New(l, sessions, maxBytes)

	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.POST("/sessions", h.CreateSession)
	v1.DELETE("/sessions/:session_id", h.DeleteSession)
	v1.POST("/sessions/:session_id/dataset", h.UploadDataset)
	v1.GET("/sessions/:session_id/schema", h.GetSchema)
	v1.GET("/sessions/:session_id/preview", h.Preview)
	v1.POST("/sessions/:session_id/ask", h.Ask)
	v1.GET("/sessions/:session_id/history", h.History)
	v1.DELETE("/sessions/:session_id/history", h.ClearConversation)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body *bytes.Buffer, contentType string) (*httptest.ResponseRecorder, response.Resp) {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp response.Resp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, w.Body.String())
	}
	return w, resp
}

func createSession(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w, resp := do(t, r, http.MethodPost, "/api/v1/sessions", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("create session status = %d", w.Code)
	}
	data, _ := resp.Data.(map[string]any)
	id, _ := data["session_id"].(string)
	if id == "" {
		t.Fatalf("create session returned no ID: %s", w.Body.String())
	}
	return id
}

func uploadCSV(t *testing.T, r *gin.Engine, id, csv string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "sales.csv")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write([]byte(csv)); err != nil {
		t.Fatalf("write form part: %v", err)
	}
	mw.Close()

	w, _ := do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/dataset", &buf, mw.FormDataContentType())
	return w
}

const salesCSV = "Category,Sales\nFurniture,1200\nOffice,890\n"

func TestSessionLifecycle(t *testing.T) {
	r := newTestRouter(&stubProvider{text: planJSON})
	id := createSession(t, r)

	w, _ := do(t, r, http.MethodDelete, "/api/v1/sessions/"+id, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}

	w, _ = do(t, r, http.MethodDelete, "/api/v1/sessions/"+id, nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", w.Code)
	}
}

func TestUploadAndAsk(t *testing.T) {
	r := newTestRouter(&stubProvider{text: planJSON})
	id := createSession(t, r)

	if w := uploadCSV(t, r, id, salesCSV); w.Code != http.StatusOK {
		t.Fatalf("upload status = %d: %s", w.Code, w.Body.String())
	}

	body := bytes.NewBufferString(`{"question":"how many rows?"}`)
	w, resp := do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/ask", body, "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("ask status = %d: %s", w.Code, w.Body.String())
	}
	data, _ := resp.Data.(map[string]any)
	if data["answer"] != "There are 2 rows." {
		t.Errorf("answer = %v", data["answer"])
	}

	w, resp = do(t, r, http.MethodGet, "/api/v1/sessions/"+id+"/history", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("history status = %d", w.Code)
	}
	hist, _ := resp.Data.(map[string]any)
	turns, _ := hist["turns"].([]any)
	if len(turns) != 1 {
		t.Errorf("history turns = %d, want 1", len(turns))
	}
}

func TestAskWithoutDataset(t *testing.T) {
	r := newTestRouter(&stubProvider{text: planJSON})
	id := createSession(t, r)

	body := bytes.NewBufferString(`{"question":"how many rows?"}`)
	w, resp := do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/ask", body, "application/json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("ask status = %d, want 400", w.Code)
	}
	if !strings.Contains(resp.Message, "upload a dataset") {
		t.Errorf("message = %q, want upload guidance", resp.Message)
	}
}

func TestUploadUnsupportedFormat(t *testing.T) {
	r := newTestRouter(&stubProvider{text: planJSON})
	id := createSession(t, r)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "data.parquet")
	part.Write([]byte("not tabular"))
	mw.Close()

	w, _ := do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/dataset", &buf, mw.FormDataContentType())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("upload status = %d, want 400", w.Code)
	}
}

func TestOversizedUploadRejected(t *testing.T) {
	r := newTestRouterWithLimit(&stubProvider{text: planJSON}, 64)
	id := createSession(t, r)

	if w := uploadCSV(t, r, id, salesCSV); w.Code != http.StatusOK {
		t.Fatalf("upload under limit status = %d: %s", w.Code, w.Body.String())
	}

	big := salesCSV + strings.Repeat("Technology,9999\n", 16)
	if w := uploadCSV(t, r, id, big); w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized upload status = %d, want 413", w.Code)
	}
}

func TestPlannerOutageMapsTo503(t *testing.T) {
	r := newTestRouter(&stubProvider{err: errors.New("quota exhausted")})
	id := createSession(t, r)
	if w := uploadCSV(t, r, id, salesCSV); w.Code != http.StatusOK {
		t.Fatalf("upload status = %d", w.Code)
	}

	body := bytes.NewBufferString(`{"question":"how many rows?"}`)
	w, resp := do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/ask", body, "application/json")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("ask status = %d, want 503", w.Code)
	}
	if !strings.Contains(resp.Message, "try again") {
		t.Errorf("message = %q, want retry guidance", resp.Message)
	}
}

func TestPreviewAndSchema(t *testing.T) {
	r := newTestRouter(&stubProvider{text: planJSON})
	id := createSession(t, r)
	if w := uploadCSV(t, r, id, salesCSV); w.Code != http.StatusOK {
		t.Fatalf("upload status = %d", w.Code)
	}

	w, resp := do(t, r, http.MethodGet, "/api/v1/sessions/"+id+"/preview?rows=1", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("preview status = %d", w.Code)
	}
	data, _ := resp.Data.(map[string]any)
	rows, _ := data["rows"].([]any)
	if len(rows) != 1 {
		t.Errorf("preview rows = %d, want 1", len(rows))
	}

	w, _ = do(t, r, http.MethodGet, "/api/v1/sessions/"+id+"/schema", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("schema status = %d", w.Code)
	}
}

func TestClearConversation(t *testing.T) {
	r := newTestRouter(&stubProvider{text: planJSON})
	id := createSession(t, r)
	if w := uploadCSV(t, r, id, salesCSV); w.Code != http.StatusOK {
		t.Fatalf("upload status = %d", w.Code)
	}
	body := bytes.NewBufferString(`{"question":"how many rows?"}`)
	if w, _ := do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/ask", body, "application/json"); w.Code != http.StatusOK {
		t.Fatalf("ask status = %d", w.Code)
	}

	if w, _ := do(t, r, http.MethodDelete, "/api/v1/sessions/"+id+"/history", nil, ""); w.Code != http.StatusOK {
		t.Fatalf("clear status = %d", w.Code)
	}

	_, resp := do(t, r, http.MethodGet, "/api/v1/sessions/"+id+"/history", nil, "")
	hist, _ := resp.Data.(map[string]any)
	turns, _ := hist["turns"].([]any)
	if len(turns) != 0 {
		t.Errorf("history turns after clear = %d, want 0", len(turns))
	}
}
