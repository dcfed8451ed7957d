package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	ws "github.com/trip-board/backend/internal/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 65536
)

// Limits configures per-connection command throttling. A zero Rate
// disables throttling.
type Limits struct {
	Rate  rate.Limit
	Burst int
}

func (l Limits) limiter() *rate.Limiter {
	if l.Rate <= 0 {
		return nil
	}
	return rate.NewLimiter(l.Rate, l.Burst)
}

// WebSocketUpgrade returns a handler that upgrades HTTP connections to
// WebSocket. Each new client first receives the current board view.
func WebSocketUpgrade(hub *ws.Hub, dispatcher *ws.Dispatcher, b BoardSource, limits Limits, origins []string, logger *zap.Logger) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(origins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("WebSocket upgrade failed", zap.Error(err))
			return
		}

		client := ws.NewClient(hub, limits.limiter())
		// Not registered yet, so write straight into the fresh buffer.
		if data, err := ws.NewSnapshot(func() any { return b.Snapshot() }).JSON(); err == nil {
			client.Send() <- data
		}
		hub.Register(client)

		go writePump(conn, client)
		go readPump(conn, client, hub, dispatcher, logger)
	}
}

func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
func writePump(conn *websocket.Conn, client *ws.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump feeds client messages to the dispatcher.
func readPump(conn *websocket.Conn, client *ws.Client, hub *ws.Hub, dispatcher *ws.Dispatcher, logger *zap.Logger) {
	defer func() {
		hub.Unregister(client)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket read error", zap.String("client", client.ID), zap.Error(err))
			}
			break
		}

		dispatcher.HandleMessage(client, message)
	}
}
