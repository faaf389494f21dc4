package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ladderflow/ladderflow/pkg/analysis"
	"github.com/ladderflow/ladderflow/pkg/config"
	"github.com/ladderflow/ladderflow/pkg/container"
	"github.com/ladderflow/ladderflow/pkg/instr"
	"github.com/ladderflow/ladderflow/pkg/metrics"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	analyzer := analysis.New(analysis.Options{Workers: 2})
	store := analysis.NewStore(8)
	srv, err := NewServer(cfg, analyzer, store, Options{Registry: metrics.NewRegistry()})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return srv
}

func testArtifact(t *testing.T) []byte {
	t.Helper()
	records := []container.Record{
		{NetworkID: 1, Comment: "guard", Payload: instr.EncodeRecord([]instr.Instruction{
			instr.Inst(instr.OpLD, instr.Dev(instr.DeviceInput, 1)),
			instr.Inst(instr.OpCJ, instr.Label{Number: 7}),
		})},
		{NetworkID: 2, Payload: instr.EncodeRecord([]instr.Instruction{
			instr.Inst(instr.OpLD, instr.Dev(instr.DeviceInput, 2)),
			instr.Inst(instr.OpOUT, instr.Dev(instr.DeviceOutput, 1)),
		})},
		{NetworkID: 3, Payload: instr.EncodeRecord([]instr.Instruction{
			instr.Inst(instr.OpLBL, instr.Label{Number: 7}),
			instr.Inst(instr.OpEND),
		})},
	}
	return container.WriteBlob(records, true)
}

func analyzeFixture(t *testing.T, srv *Server) AnalyzeResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(testArtifact(t)))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from /analyze, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode analyze response: %v", err)
	}
	return resp
}

func TestHandleAnalyze(t *testing.T) {
	srv := testServer(t)
	resp := analyzeFixture(t, srv)

	if resp.PassID == "" {
		t.Error("Expected a pass id")
	}
	if resp.Networks != 3 {
		t.Errorf("Expected 3 networks, got %d", resp.Networks)
	}
	if resp.Nodes == 0 {
		t.Error("Expected a non-empty graph")
	}
}

func TestHandleAnalyze_BadArtifact(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader("not an artifact"))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", rec.Code)
	}
}

func TestHandleAnalyze_EmptyBody(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestHandleAnalyze_MethodNotAllowed(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/analyze", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

func TestHandleAnalyze_BodyTooLarge(t *testing.T) {
	srv := testServer(t)
	srv.cfg.Server.MaxUploadBytes = 16

	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(testArtifact(t)))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected 413, got %d", rec.Code)
	}
}

func TestHandleAnalysis_Diagram(t *testing.T) {
	srv := testServer(t)
	pass := analyzeFixture(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/analyses/"+pass.PassID+"/diagram", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp DiagramResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode diagram response: %v", err)
	}
	if !strings.HasPrefix(resp.Markup, "flowchart TD") {
		t.Errorf("Expected flowchart markup, got %q", resp.Markup)
	}
	if len(resp.Nodes) == 0 {
		t.Error("Expected node metadata")
	}
}

func TestHandleAnalysis_Devices(t *testing.T) {
	srv := testServer(t)
	pass := analyzeFixture(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/analyses/"+pass.PassID+"/devices/X002", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp DeviceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode device response: %v", err)
	}
	if len(resp.Networks) != 1 || resp.Networks[0] != 2 {
		t.Errorf("Expected X002 referenced by network 2, got %v", resp.Networks)
	}

	// Bad addresses are a client error.
	req = httptest.NewRequest(http.MethodGet, "/analyses/"+pass.PassID+"/devices/Q9", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid address, got %d", rec.Code)
	}
}

func TestHandleAnalysis_Diagnostics(t *testing.T) {
	srv := testServer(t)
	pass := analyzeFixture(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/analyses/"+pass.PassID+"/diagnostics?severity=error", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp DiagnosticsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode diagnostics response: %v", err)
	}
	if resp.Count != len(resp.Diagnostics) {
		t.Errorf("Expected count %d to match list, got %d", len(resp.Diagnostics), resp.Count)
	}

	req = httptest.NewRequest(http.MethodGet, "/analyses/"+pass.PassID+"/diagnostics?severity=fatal", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown severity, got %d", rec.Code)
	}
}

func TestHandleAnalysis_UnknownPass(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/analyses/00000000-0000-0000-0000-000000000000", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestHandleAnalyses_List(t *testing.T) {
	srv := testServer(t)
	first := analyzeFixture(t, srv)
	second := analyzeFixture(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/analyses", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp AnalysesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode analyses response: %v", err)
	}
	if resp.Count != 2 || resp.Passes[0] != first.PassID || resp.Passes[1] != second.PassID {
		t.Errorf("Expected [%s %s], got %v", first.PassID, second.PassID, resp.Passes)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("Expected healthy status, got %s", resp.Status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := testServer(t)
	analyzeFixture(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ladderflow_analysis_passes_total") {
		t.Error("Expected analysis pass counter in metrics exposition")
	}
}

func TestGraphQLEndpoint(t *testing.T) {
	srv := testServer(t)
	pass := analyzeFixture(t, srv)

	body, _ := json.Marshal(map[string]string{"query": `{ pass { id } }`})
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), pass.PassID) {
		t.Errorf("Expected graphql response to name the pass, got %s", rec.Body.String())
	}
}
