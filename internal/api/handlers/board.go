package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/trip-board/backend/internal/api/middleware"
	"github.com/trip-board/backend/internal/board"
	ws "github.com/trip-board/backend/internal/websocket"
)

// CommandHandler runs decoded board commands.
type CommandHandler interface {
	Handle(c board.Command) error
}

// codeStatus maps client error codes to HTTP statuses.
var codeStatus = map[string]int{
	ws.CodeBadRequest:     http.StatusBadRequest,
	ws.CodeUnknownCommand: http.StatusBadRequest,
	ws.CodeNotFound:       http.StatusNotFound,
	ws.CodeConflict:       http.StatusConflict,
	ws.CodeValidation:     http.StatusUnprocessableEntity,
}

// GetBoard returns a handler that serves the current board view.
func GetBoard(b BoardSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, b.Snapshot())
	}
}

// PostCommand returns a handler that runs one board command. The effects of
// an accepted command reach clients over the websocket.
func PostCommand(h CommandHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var env board.Envelope
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		cmd, err := board.Decode(env)
		if err == nil {
			err = h.Handle(cmd)
		}
		if err != nil {
			code := ws.ErrorCode(err)
			status, ok := codeStatus[code]
			if !ok {
				status = http.StatusInternalServerError
			}
			middleware.WriteError(w, status, code, err.Error())
			return
		}

		middleware.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	}
}
