package compute_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"data-analyst-agent/pkg/compute"
)

func newTestClient(t *testing.T, url string) compute.ICompute {
	t.Helper()
	client, err := compute.New(compute.Config{BaseURL: url, ArtifactDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestConfigValidate(t *testing.T) {
	if _, err := compute.New(compute.Config{}); err == nil {
		t.Fatal("expected error for missing base url")
	}
}

func TestRunStep(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/steps/run" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req compute.StepRequest
		json.NewDecoder(r.Body).Decode(&req)

		switch {
		case strings.Contains(req.Operation, "fail"):
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`cannot aggregate text column`))
		case strings.Contains(req.Operation, "badkind"):
			json.NewEncoder(w).Encode(map[string]any{"kind": "blob"})
		default:
			json.NewEncoder(w).Encode(compute.StepResult{
				Kind:    compute.KindTable,
				Output:  compute.Table{Columns: req.Input.Columns, Rows: req.Input.Rows[:1]},
				Summary: "filtered to 1 row",
			})
		}
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL)
	input := compute.Table{Columns: []string{"a"}, Rows: [][]any{{1}, {2}}}

	t.Run("Success", func(t *testing.T) {
		res, err := client.RunStep(context.Background(), compute.StepRequest{
			Operation: "filter rows where a > 0",
			Input:     input,
		})
		if err != nil {
			t.Fatalf("RunStep: %v", err)
		}
		if res.Kind != compute.KindTable {
			t.Errorf("expected table kind, got %s", res.Kind)
		}
		if len(res.Output.Rows) != 1 {
			t.Errorf("expected 1 row, got %d", len(res.Output.Rows))
		}
	})

	t.Run("Backend Error", func(t *testing.T) {
		_, err := client.RunStep(context.Background(), compute.StepRequest{
			Operation: "fail here",
			Input:     input,
		})
		if err == nil || !strings.Contains(err.Error(), "backend error 422") {
			t.Errorf("expected backend error, got %v", err)
		}
	})

	t.Run("Unknown Result Kind", func(t *testing.T) {
		_, err := client.RunStep(context.Background(), compute.StepRequest{
			Operation: "badkind",
			Input:     input,
		})
		if err == nil || !strings.Contains(err.Error(), "unknown result kind") {
			t.Errorf("expected unknown kind error, got %v", err)
		}
	})
}

func TestRenderChart(t *testing.T) {
	png := []byte("\x89PNG fake image bytes")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/charts/render" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	}))
	defer ts.Close()

	dir := t.TempDir()
	client, err := compute.New(compute.Config{BaseURL: ts.URL, ArtifactDir: dir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := client.RenderChart(context.Background(), compute.ChartRequest{
		Kind:   "bar",
		Fields: []string{"Category", "Sales"},
		Data:   compute.Table{Columns: []string{"Category", "Sales"}},
	})
	if err != nil {
		t.Fatalf("RenderChart: %v", err)
	}

	if !strings.HasPrefix(res.ArtifactRef, dir) {
		t.Errorf("artifact not under configured dir: %s", res.ArtifactRef)
	}
	data, err := os.ReadFile(res.ArtifactRef)
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	if string(data) != string(png) {
		t.Error("artifact content mismatch")
	}
}
