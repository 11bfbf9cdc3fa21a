package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"multidle/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// syncFrame is the first frame on every stream.
type syncFrame struct {
	Kind     string           `json:"kind"`
	Snapshot session.Snapshot `json:"snapshot"`
}

// eventsHandler upgrades to a websocket and relays the session's events as
// JSON frames until the client goes away.
func (app *App) eventsHandler(c *gin.Context) {
	svc, ok := app.sessionFor(c)
	if !ok {
		return
	}
	snap, err := svc.Sync(c.Request.Context())
	if err != nil {
		logWarn("Sync failed: %v", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": ErrorUnavailable})
		return
	}
	first, err := json.Marshal(syncFrame{Kind: "sync", Snapshot: snap})
	if err != nil {
		logWarn("Failed to encode snapshot: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": ErrorUnavailable})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logWarn("WebSocket upgrade error: %v", err)
		return
	}

	send := make(chan []byte, sendBuffer)
	done := make(chan struct{})
	send <- first

	unsubscribe := svc.Subscribe(func(ev session.Event) {
		b, err := json.Marshal(ev)
		if err != nil {
			logWarn("Failed to encode %s event: %v", ev.Kind, err)
			return
		}
		select {
		case send <- b:
		case <-done:
		default:
			logWarn("Dropping %s event for slow client", ev.Kind)
		}
	})

	go writePump(conn, send, done)
	readPump(conn)

	unsubscribe()
	close(done)
}

// readPump discards client frames; it only watches for close and pongs.
func readPump(conn *websocket.Conn) {
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logWarn("WebSocket error: %v", err)
			}
			return
		}
	}
}

func writePump(conn *websocket.Conn, send <-chan []byte, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case <-done:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
