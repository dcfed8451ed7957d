// Package api provides HTTP routing for the board server and the trip API.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/trip-board/backend/internal/api/handlers"
	"github.com/trip-board/backend/internal/api/middleware"
	"github.com/trip-board/backend/internal/board"
	"github.com/trip-board/backend/internal/storage"
	"github.com/trip-board/backend/internal/websocket"
)

// BoardDeps are the collaborators of the board server router.
type BoardDeps struct {
	Board      *board.Board
	Hub        *websocket.Hub
	Dispatcher *websocket.Dispatcher
	// Refresh is optional.
	Refresh   handlers.NextRunner
	Limits    handlers.Limits
	Origins   []string
	StaticDir string
	Logger    *zap.Logger
}

// NewBoardRouter creates the router of the board server: board snapshot,
// commands, websocket push and the static frontend.
func NewBoardRouter(deps BoardDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := mux.NewRouter()

	r.Use(middleware.Logging(logger))
	r.Use(middleware.ErrorRecovery(logger))

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", handlers.BoardHealth(deps.Board)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(deps.Board, deps.Hub, deps.Refresh)).Methods("GET")

	api.HandleFunc("/board", handlers.GetBoard(deps.Board)).Methods("GET")
	api.HandleFunc("/board/commands", handlers.PostCommand(deps.Board)).Methods("POST")

	api.HandleFunc("/ws", handlers.WebSocketUpgrade(deps.Hub, deps.Dispatcher, deps.Board, deps.Limits, deps.Origins, logger)).Methods("GET")

	if deps.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(deps.StaticDir)))
	}

	return middleware.CORS(deps.Origins)(r)
}

// TripAPIDeps are the collaborators of the trip API router.
type TripAPIDeps struct {
	DB *storage.DB
	// Secret enables bearer auth when non-empty.
	Secret  []byte
	Origins []string
	Logger  *zap.Logger
}

// NewTripAPIRouter creates the router of the trip API that the board loads
// its data from.
func NewTripAPIRouter(deps TripAPIDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	repos := handlers.NewTripRepos(deps.DB)

	r := mux.NewRouter()

	r.Use(middleware.Logging(logger))
	r.Use(middleware.ErrorRecovery(logger))

	base := r.PathPrefix("/api").Subrouter()
	base.HandleFunc("/health", handlers.HealthCheck(deps.DB)).Methods("GET")

	api := base.NewRoute().Subrouter()
	if len(deps.Secret) > 0 {
		api.Use(middleware.RequireToken(deps.Secret))
	}

	api.HandleFunc("/points", handlers.ListPoints(repos, logger)).Methods("GET")
	api.HandleFunc("/points", handlers.CreatePoint(repos, logger)).Methods("POST")
	api.HandleFunc("/points/{id}", handlers.UpdatePoint(repos, logger)).Methods("PUT")
	api.HandleFunc("/points/{id}", handlers.DeletePoint(repos, logger)).Methods("DELETE")

	api.HandleFunc("/destinations", handlers.ListDestinations(repos, logger)).Methods("GET")
	api.HandleFunc("/offers", handlers.ListOffers(repos, logger)).Methods("GET")

	return middleware.CORS(deps.Origins)(r)
}
