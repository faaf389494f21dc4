package api

import (
	"time"

	"github.com/ladderflow/ladderflow/pkg/diag"
	"github.com/ladderflow/ladderflow/pkg/diagram"
)

// API Request/Response Types

// AnalyzeResponse summarizes a completed analysis pass
type AnalyzeResponse struct {
	PassID      string    `json:"pass_id"`
	CreatedAt   time.Time `json:"created_at"`
	Networks    int       `json:"networks"`
	Nodes       int       `json:"nodes"`
	Warnings    int       `json:"warnings"`
	Errors      int       `json:"errors"`
	Time        string    `json:"time"`
}

// DiagramResponse carries the flowchart markup and node metadata
type DiagramResponse struct {
	PassID string             `json:"pass_id"`
	Markup string             `json:"markup"`
	Nodes  []diagram.NodeMeta `json:"nodes"`
}

// NodesResponse lists the node metadata of a pass
type NodesResponse struct {
	PassID string             `json:"pass_id"`
	Nodes  []diagram.NodeMeta `json:"nodes"`
	Count  int                `json:"count"`
}

// DeviceResponse is one device cross-reference entry
type DeviceResponse struct {
	Address  string `json:"address"`
	Networks []int  `json:"networks"`
}

// DiagnosticsResponse lists a pass's diagnostics
type DiagnosticsResponse struct {
	PassID      string            `json:"pass_id"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
	Count       int               `json:"count"`
}

// AnalysesResponse lists the held pass ids, oldest first
type AnalysesResponse struct {
	Passes []string `json:"passes"`
	Count  int      `json:"count"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	Passes    int       `json:"passes"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
