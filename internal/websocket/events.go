package websocket

import (
	"go.uber.org/zap"

	"github.com/trip-board/backend/internal/board"
	"github.com/trip-board/backend/internal/session"
)

// EventBroadcaster renders the board by broadcasting render messages to
// every connected client.
type EventBroadcaster struct {
	hub    *Hub
	logger *zap.Logger
}

var _ board.Renderer = (*EventBroadcaster)(nil)

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub, logger: hub.logger}
}

// RenderBoard sends a board.rendered message with the full snapshot.
func (b *EventBroadcaster) RenderBoard(v board.View) {
	b.broadcast(NewMessage(TypeBoardRendered, v))
}

// RenderFilters sends a filters.rendered message.
func (b *EventBroadcaster) RenderFilters(opts []board.FilterOption) {
	b.broadcast(NewMessage(TypeFiltersRendered, opts))
}

// RenderItem sends an item.rendered message.
func (b *EventBroadcaster) RenderItem(v session.ItemView) {
	b.broadcast(NewMessage(TypeItemRendered, v))
}

// RenderNewWaypoint sends a new_waypoint.rendered message. A null payload
// removes the form.
func (b *EventBroadcaster) RenderNewWaypoint(v *session.FormView) {
	b.broadcast(NewMessage(TypeNewWaypointRendered, v))
}

// Shake sends a form.shake message.
func (b *EventBroadcaster) Shake(target string) {
	b.broadcast(NewMessage(TypeFormShake, ShakePayload{Target: target}))
}

// broadcast sends a message to all connected clients.
func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.sequenced().JSON()
	if err != nil {
		b.logger.Error("Error encoding WebSocket message", zap.String("type", string(msg.Type)), zap.Error(err))
		return
	}

	b.hub.Broadcast(data)
}
