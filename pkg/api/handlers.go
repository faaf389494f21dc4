package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ladderflow/ladderflow/pkg/analysis"
	"github.com/ladderflow/ladderflow/pkg/container"
	"github.com/ladderflow/ladderflow/pkg/diag"
	"github.com/ladderflow/ladderflow/pkg/events"
	"github.com/ladderflow/ladderflow/pkg/flow"
	"github.com/ladderflow/ladderflow/pkg/logging"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   Version,
		Uptime:    time.Since(s.startTime).String(),
		Passes:    s.store.Len(),
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	s.graphqlHandler.ServeHTTP(w, r)
}

// handleAnalyze runs a full analysis pass over the uploaded artifact
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.respondError(w, http.StatusRequestEntityTooLarge, "Failed to read artifact")
		return
	}
	if len(data) == 0 {
		s.respondError(w, http.StatusBadRequest, "Empty artifact")
		return
	}

	start := time.Now()
	actx, err := s.analyzer.Run(r.Context(), data)
	if err != nil {
		s.metricsRegistry.RecordAnalysisPass("error", time.Since(start), 0, 0, len(data))
		s.publisher.Publish(events.TopicAnalysisFailed, events.AnalysisFailed{
			Reason:   err.Error(),
			FailedAt: time.Now(),
		})
		s.respondError(w, analyzeFailureStatus(err), err.Error())
		return
	}

	s.store.Put(actx)
	s.metricsRegistry.AnalysisContextsHeld.Set(float64(s.store.Len()))

	warnings := len(actx.DiagnosticsBySeverity(diag.Warning))
	errorCount := len(actx.DiagnosticsBySeverity(diag.Error))
	s.metricsRegistry.RecordAnalysisPass("success", time.Since(start),
		actx.NetworkCount(), len(actx.Graph().Nodes), len(data))
	s.metricsRegistry.RecordDiagnostics(warnings, errorCount)

	if s.snapshots != nil {
		if _, err := s.snapshots.Save(actx); err != nil {
			s.metricsRegistry.RecordSnapshotOperation("save", "error")
			s.logger.Warn("Snapshot save failed",
				logging.PassID(actx.PassID().String()), logging.Error(err))
		} else {
			s.metricsRegistry.RecordSnapshotOperation("save", "success")
		}
	}

	s.publisher.Publish(events.TopicAnalysisCompleted, events.AnalysisCompleted{
		PassID:      actx.PassID().String(),
		Networks:    actx.NetworkCount(),
		Nodes:       len(actx.Graph().Nodes),
		Diagnostics: warnings + errorCount,
		CompletedAt: time.Now(),
	})

	s.respondJSON(w, http.StatusOK, AnalyzeResponse{
		PassID:    actx.PassID().String(),
		CreatedAt: actx.CreatedAt(),
		Networks:  actx.NetworkCount(),
		Nodes:     len(actx.Graph().Nodes),
		Warnings:  warnings,
		Errors:    errorCount,
		Time:      time.Since(start).String(),
	})
}

// analyzeFailureStatus maps pass failures to HTTP statuses: malformed
// input is the client's fault, everything else is ours
func analyzeFailureStatus(err error) int {
	switch {
	case errors.Is(err, container.ErrUnsupportedContainer),
		errors.Is(err, container.ErrCorruptContainer),
		errors.Is(err, container.ErrEmptyProgram),
		errors.Is(err, analysis.ErrNothingDecoded),
		errors.Is(err, flow.ErrUnbalancedLoop):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleAnalyses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	ids := s.store.IDs()
	s.respondJSON(w, http.StatusOK, AnalysesResponse{Passes: ids, Count: len(ids)})
}

// handleAnalysis serves the per-pass subresources:
//
//	GET /analyses/{id}             pass summary
//	GET /analyses/{id}/diagram     markup plus node metadata
//	GET /analyses/{id}/nodes       node metadata only
//	GET /analyses/{id}/devices/{address}
//	GET /analyses/{id}/diagnostics[?severity=warning|error]
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/analyses/")
	parts := strings.SplitN(strings.Trim(rest, "/"), "/", 3)
	if parts[0] == "" {
		s.respondError(w, http.StatusBadRequest, "Missing pass id")
		return
	}

	actx, ok := s.store.Get(parts[0])
	if !ok {
		s.respondError(w, http.StatusNotFound, "Unknown pass "+parts[0])
		return
	}

	sub := ""
	if len(parts) > 1 {
		sub = parts[1]
	}

	switch sub {
	case "":
		s.respondJSON(w, http.StatusOK, AnalyzeResponse{
			PassID:    actx.PassID().String(),
			CreatedAt: actx.CreatedAt(),
			Networks:  actx.NetworkCount(),
			Nodes:     len(actx.Graph().Nodes),
			Warnings:  len(actx.DiagnosticsBySeverity(diag.Warning)),
			Errors:    len(actx.DiagnosticsBySeverity(diag.Error)),
		})

	case "diagram":
		s.respondJSON(w, http.StatusOK, DiagramResponse{
			PassID: actx.PassID().String(),
			Markup: actx.Diagram().Markup,
			Nodes:  actx.Diagram().Nodes,
		})

	case "nodes":
		nodes := actx.Diagram().Nodes
		s.respondJSON(w, http.StatusOK, NodesResponse{
			PassID: actx.PassID().String(),
			Nodes:  nodes,
			Count:  len(nodes),
		})

	case "devices":
		if len(parts) < 3 || parts[2] == "" {
			s.respondError(w, http.StatusBadRequest, "Missing device address")
			return
		}
		address := parts[2]
		ids, parsed := actx.DeviceNetworks(address)
		if !parsed {
			s.respondError(w, http.StatusBadRequest, "Invalid device address "+address)
			return
		}
		s.respondJSON(w, http.StatusOK, DeviceResponse{Address: address, Networks: ids})

	case "diagnostics":
		var list []diag.Diagnostic
		switch severity := r.URL.Query().Get("severity"); severity {
		case "":
			list = actx.Diagnostics()
		case "warning":
			list = actx.DiagnosticsBySeverity(diag.Warning)
		case "error":
			list = actx.DiagnosticsBySeverity(diag.Error)
		default:
			s.respondError(w, http.StatusBadRequest, "Unknown severity "+severity)
			return
		}
		s.respondJSON(w, http.StatusOK, DiagnosticsResponse{
			PassID:      actx.PassID().String(),
			Diagnostics: list,
			Count:       len(list),
		})

	default:
		s.respondError(w, http.StatusNotFound, "Unknown resource "+sub)
	}
}
