package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCompleteAnalysisWorkflow walks the full user journey: upload an
// artifact, then read back every derived view of the resulting pass.
func TestCompleteAnalysisWorkflow(t *testing.T) {
	srv := testServer(t)
	handler := srv.Router()

	// Step 1: upload and analyze.
	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(testArtifact(t)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, "Analyze should succeed: %s", rec.Body.String())

	var pass AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pass))
	require.NotEmpty(t, pass.PassID, "Pass should carry an id")
	assert.Equal(t, 3, pass.Networks, "All three networks should survive decode")

	// Step 2: the pass shows up in the listing.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analyses", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list AnalysesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Contains(t, list.Passes, pass.PassID, "New pass should be listed")

	// Step 3: diagram markup and node metadata agree.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analyses/"+pass.PassID+"/diagram", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var diagramResp DiagramResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &diagramResp))
	require.NotEmpty(t, diagramResp.Nodes, "Diagram should carry node metadata")
	for _, node := range diagramResp.Nodes {
		assert.Contains(t, diagramResp.Markup, node.ID, "Every node should appear in the markup")
	}

	// Step 4: the cross-reference resolves a device seen during upload.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analyses/"+pass.PassID+"/devices/X001", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var device DeviceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &device))
	assert.Equal(t, []int{1}, device.Networks, "X001 is only referenced by the guard network")

	// Step 5: diagnostics view is consistent with the pass summary.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analyses/"+pass.PassID+"/diagnostics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var diags DiagnosticsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &diags))
	assert.Equal(t, pass.Warnings+pass.Errors, diags.Count, "Summary counts should match the diagnostic list")

	// Step 6: graphql sees the same pass.
	body, _ := json.Marshal(map[string]string{
		"query": `{ pass(id: "` + pass.PassID + `") { id networks } }`,
	})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), pass.PassID, "GraphQL should resolve the pass by id")
}
