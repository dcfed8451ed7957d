// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/trip-board/backend/internal/api/middleware"
	"github.com/trip-board/backend/internal/board"
)

// Pinger reports whether a backing database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected *bool  `json:"db_connected,omitempty"`
	BoardState  string `json:"board_state,omitempty"`
}

// HealthCheck returns a handler that checks the trip API database.
func HealthCheck(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.PingContext(r.Context()) == nil

		status := "healthy"
		code := http.StatusOK
		if !dbConnected {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		middleware.WriteJSON(w, code, HealthResponse{
			Status:      status,
			DBConnected: &dbConnected,
		})
	}
}

// BoardSource exposes the board to read-only handlers.
type BoardSource interface {
	State() board.State
	Snapshot() board.View
}

// BoardHealth returns a handler that reports degraded while the board could
// not load its data.
func BoardHealth(b BoardSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := b.State()

		status := "healthy"
		code := http.StatusOK
		if state == board.StateError {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		middleware.WriteJSON(w, code, HealthResponse{
			Status:     status,
			BoardState: string(state),
		})
	}
}

// ClientCounter reports connected websocket clients.
type ClientCounter interface {
	ClientCount() int
}

// NextRunner reports the next scheduled refresh.
type NextRunner interface {
	NextRun() *time.Time
}

// StatusResponse represents the board server status.
type StatusResponse struct {
	BoardState    string `json:"board_state"`
	Waypoints     int    `json:"waypoints"`
	Clients       int    `json:"clients"`
	NextRefreshAt string `json:"next_refresh_at,omitempty"`
}

// Status returns a handler that provides board server status information.
// refresh may be nil when periodic refresh is disabled.
func Status(b BoardSource, clients ClientCounter, refresh NextRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := b.Snapshot()

		response := StatusResponse{
			BoardState: string(view.State),
			Waypoints:  len(view.Items),
			Clients:    clients.ClientCount(),
		}
		if refresh != nil {
			if next := refresh.NextRun(); next != nil {
				response.NextRefreshAt = next.UTC().Format(time.RFC3339)
			}
		}

		middleware.WriteJSON(w, http.StatusOK, response)
	}
}
