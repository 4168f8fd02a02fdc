package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route - live run progress streaming
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Jobs
	mux.HandleFunc("/api/jobs/trigger", s.app.JobHandler.TriggerHandler) // POST - accept and start a run

	// API routes - Scenarios
	mux.HandleFunc("/api/scenarios", s.app.JobHandler.ListScenariosHandler) // GET - scenario metadata

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	return mux
}
