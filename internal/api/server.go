// Package api provides the read-only HTTP API over a running colony.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/talgya/colony/internal/engine"
	"github.com/talgya/colony/internal/persistence"
	"github.com/talgya/colony/internal/world"
)

// Server serves colony state over HTTP.
type Server struct {
	Colony    *engine.Colony
	DB        *persistence.DB // Optional; directive history falls back to the last cycle
	Port      int
	RateLimit int // Requests per minute per client, 0 disables

	srv *http.Server
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/territories", s.handleTerritories)
	mux.HandleFunc("GET /api/v1/territory/{name}", s.handleTerritory)
	mux.HandleFunc("GET /api/v1/directives", s.handleDirectives)
	mux.HandleFunc("GET /api/v1/assignments", s.handleAssignments)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)

	if s.RateLimit > 0 {
		return RateLimitMiddleware(NewRateLimiter(s.RateLimit, time.Minute), mux)
	}
	return mux
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.srv = &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	slog.Info("HTTP API starting", "addr", addr, "rate_limit", s.RateLimit)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops the server started by Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sum := s.Colony.Summary()
	writeJSON(w, map[string]any{
		"cycle":       sum.Cycle,
		"territories": len(sum.Territories),
		"agents":      sum.Agents,
		"assignments": sum.Assignments,
		"builds":      sum.Builds,
	})
}

func (s *Server) handleTerritories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Colony.Summary().Territories)
}

func (s *Server) handleTerritory(w http.ResponseWriter, r *http.Request) {
	name := world.RoomName(r.PathValue("name"))
	agentList, ok := s.Colony.AgentsOf(name)
	if !ok {
		http.Error(w, "territory not found", http.StatusNotFound)
		return
	}

	var summary engine.TerritorySummary
	for _, t := range s.Colony.Summary().Territories {
		if t.Name == name {
			summary = t
		}
	}
	writeJSON(w, map[string]any{
		"summary": summary,
		"agents":  agentList,
	})
}

func (s *Server) handleDirectives(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeJSON(w, s.Colony.Summary().Builds)
		return
	}
	records, err := s.DB.RecentDirectives(limitParam(r, 50))
	if err != nil {
		slog.Error("directive history", "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []engine.BuildRecord{}
	}
	writeJSON(w, records)
}

func (s *Server) handleAssignments(w http.ResponseWriter, r *http.Request) {
	records := s.Colony.Assignments()
	if records == nil {
		records = []engine.AssignmentRecord{}
	}
	writeJSON(w, records)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events := s.Colony.Events(limitParam(r, 50))
	if events == nil {
		events = []engine.Event{}
	}

	// Optional territory filter.
	if name := r.URL.Query().Get("territory"); name != "" {
		filtered := []engine.Event{}
		for _, e := range events {
			if e.Territory == name {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}
	writeJSON(w, events)
}

// limitParam reads ?limit=, clamped to 1..500.
func limitParam(r *http.Request, def int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			return n
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
