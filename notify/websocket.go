package notify

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// NewUpgrader accepts websocket upgrades from the given origins. An
// empty list or a "*" entry accepts any origin.
func NewUpgrader(origins []string) *websocket.Upgrader {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return len(allowed) == 0 || allowed["*"] || origin == "" || allowed[origin]
		},
	}
}

// ServeWS upgrades the request and pumps events to the client until it
// disconnects.
func (h *Hub) ServeWS(upgrader *websocket.Upgrader) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "error", err)
			return
		}

		cl := &wsClient{
			id:   uuid.NewString(),
			conn: conn,
			send: make(chan []byte, sendBuffer),
			hub:  h,
		}
		h.Register(cl)
		slog.Info("socket connected", "socket", cl.id)

		go cl.writePump()
		cl.readPump()
	}
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

func (c *wsClient) ID() string { return c.id }

func (c *wsClient) Deliver(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (c *wsClient) readPump() {
	defer func() {
		c.hub.Unregister(c)
		close(c.send)
		slog.Info("socket disconnected", "socket", c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inbound
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("socket read failed", "socket", c.id, "error", err)
			}
			return
		}

		switch msg.Event {
		case EventJoinGramSevak:
			var name string
			if err := json.Unmarshal(msg.Data, &name); err != nil {
				slog.Warn("bad join payload", "socket", c.id, "error", err)
				continue
			}
			room, err := c.hub.Join(c, name)
			if err != nil {
				slog.Warn("join rejected", "socket", c.id, "error", err)
				continue
			}
			slog.Info("socket joined room", "socket", c.id, "room", room)
		default:
			slog.Debug("ignoring client event", "socket", c.id, "event", msg.Event)
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
