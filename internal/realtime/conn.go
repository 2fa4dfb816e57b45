package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin filtering happens at the CORS layer; the socket itself is open.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type conn struct {
	ws   *websocket.Conn
	send chan []byte

	conversation string
	personal     string
}

// controlFrame is the only client→server message: scoping the connection to
// a conversation, e.g. {"action":"setActiveConversation","conversationId":"project#<id>"}.
type controlFrame struct {
	Action         string `json:"action"`
	ConversationID string `json:"conversationId"`
}

// HandleWS upgrades the request and runs the connection until it closes.
func (h *Hub) HandleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[realtime] upgrade failed: %v", err)
		return
	}

	cn := &conn{ws: ws, send: make(chan []byte, sendBuffer)}
	if userID := c.Query("userId"); userID != "" {
		h.addPersonal(cn, UserConversation(userID))
	}

	go cn.writePump()
	h.readPump(cn)
}

func (h *Hub) readPump(c *conn) {
	defer func() {
		h.unregister(c)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(4096)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}

		var frame controlFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			// Malformed frames are logged and skipped; the socket stays open.
			log.Printf("[realtime] malformed control frame: %v", err)
			continue
		}

		switch frame.Action {
		case "setActiveConversation":
			h.subscribe(c, frame.ConversationID)
		default:
			log.Printf("[realtime] unknown action %q", frame.Action)
		}
	}
}

func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
