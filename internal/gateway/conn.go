package gateway

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/udisondev/arena/internal/game/event"
)

// conn is one websocket client bound to one actor.
type conn struct {
	id      string // uuid
	actorID uint32
	ws      *websocket.Conn
	server  *Server
	sub     *event.Subscription
	send    chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func (c *conn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.server.remove(c)
		_ = c.ws.Close()
		slog.Info("client disconnected", "connection", c.id, "actor", c.actorID)
	})
}

// enqueue marshals and queues a message. A full queue drops it:
// the next ActorState snapshot supersedes whatever was lost.
func (c *conn) enqueue(typ string, payload any) {
	data, err := json.Marshal(outbound{Type: typ, Payload: payload})
	if err != nil {
		slog.Error("encoding message", "connection", c.id, "type", typ, "error", err)
		return
	}
	select {
	case c.send <- data:
	default:
		slog.Warn("client send queue full, message dropped", "connection", c.id, "actor", c.actorID)
	}
}

// readPump decodes requests and submits them for the bound actor.
func (c *conn) readPump() {
	defer c.close()

	pongWait := c.server.cfg.ReadTimeout
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read failed", "connection", c.id, "error", err)
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))

		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			slog.Debug("malformed request dropped", "connection", c.id, "error", err)
			continue
		}
		action, err := req.ToAction(c.actorID)
		if err != nil {
			slog.Debug("invalid request dropped", "connection", c.id, "error", err)
			continue
		}
		c.server.submit.Submit(action)
	}
}

// forwardPump moves bus events into the send queue.
func (c *conn) forwardPump() {
	for {
		select {
		case <-c.done:
			return
		case ev, ok := <-c.sub.C():
			if !ok {
				c.close()
				return
			}
			c.enqueue(MessageEvent, ev)
		}
	}
}

// writePump owns every write to the socket.
func (c *conn) writePump() {
	writeWait := c.server.cfg.WriteTimeout
	ticker := time.NewTicker(c.server.cfg.ReadTimeout * 9 / 10)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
