package websocket

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/trip-board/backend/internal/board"
	"github.com/trip-board/backend/internal/filter"
	"github.com/trip-board/backend/internal/session"
	"github.com/trip-board/backend/internal/storage/models"
)

// Error codes sent to clients.
const (
	CodeBadRequest      = "bad_request"
	CodeUnknownCommand  = "unknown_command"
	CodeNotFound        = "not_found"
	CodeConflict        = "conflict"
	CodeValidation      = "validation_error"
	CodeTooManyRequests = "too_many_requests"
	CodeInternal        = "internal_error"
)

// CommandHandler runs decoded board commands.
type CommandHandler interface {
	Handle(c board.Command) error
}

// Dispatcher turns raw client messages into board commands.
type Dispatcher struct {
	handler CommandHandler
	logger  *zap.Logger
}

// NewDispatcher creates a dispatcher feeding handler.
func NewDispatcher(handler CommandHandler, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{handler: handler, logger: logger.Named("ws")}
}

// HandleMessage decodes and runs one client message. Failures are answered
// to the sending client only.
func (d *Dispatcher) HandleMessage(client *Client, raw []byte) {
	var env board.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		d.reply(client, "", CodeBadRequest, "malformed message")
		return
	}
	if !client.Allow() {
		d.reply(client, env.Type, CodeTooManyRequests, "slow down")
		return
	}

	cmd, err := board.Decode(env)
	if err == nil {
		err = d.handler.Handle(cmd)
	}
	if err != nil {
		d.logger.Debug("Client command failed",
			zap.String("client", client.ID),
			zap.String("type", string(env.Type)),
			zap.Error(err),
		)
		d.reply(client, env.Type, ErrorCode(err), err.Error())
	}
}

func (d *Dispatcher) reply(client *Client, original board.CommandType, code, message string) {
	data, err := NewMessage(TypeError, ErrorPayload{
		Code:         code,
		Message:      message,
		OriginalType: string(original),
	}).JSON()
	if err != nil {
		return
	}
	if !client.Enqueue(data) {
		d.logger.Warn("Could not deliver error to client", zap.String("client", client.ID))
	}
}

// ErrorCode maps a command error to a client error code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, board.ErrUnknownCommand):
		return CodeUnknownCommand
	case errors.Is(err, board.ErrInvalidCommand),
		errors.Is(err, filter.ErrUnknownFilter),
		errors.Is(err, models.ErrUnknownType),
		errors.Is(err, models.ErrForeignOffer),
		errors.Is(err, models.ErrDuplicateOffer):
		return CodeBadRequest
	case errors.Is(err, board.ErrNoSession):
		return CodeNotFound
	case errors.Is(err, session.ErrDraftInvalid):
		return CodeValidation
	case errors.Is(err, board.ErrNotReady),
		errors.Is(err, board.ErrOptionDisabled),
		errors.Is(err, session.ErrInvalidTransition):
		return CodeConflict
	default:
		return CodeInternal
	}
}
