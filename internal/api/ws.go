package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"saha-map/internal/interaction"
	"saha-map/internal/logger"
	"saha-map/internal/session"
	"saha-map/internal/svgmap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	maxMessage = 4 << 10
)

// 客户端消息类型：指针事件之外的两种控制消息
const (
	wsBack  = "back"
	wsState = "state"
)

// wsRequest：指针事件或控制消息；ID 原样回传便于前端对应请求
type wsRequest struct {
	ID     string           `json:"id,omitempty"`
	Type   string           `json:"type"`
	Target svgmap.ElementID `json:"el"`
	Map    string           `json:"map,omitempty"`
}

type wsResponse struct {
	ID     string          `json:"id,omitempty"`
	Type   string          `json:"type"`
	Update *session.Update `json:"update,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// wsClient：一个 websocket 连接；读循环串行处理事件，写循环负责发送与保活
type wsClient struct {
	h    *Handler
	conn *websocket.Conn
	sess *session.Session
	send chan wsResponse
	log  *slog.Logger
}

// ws：升级为 websocket，会话 Cookie 在握手响应中下发
func (h *Handler) ws(w http.ResponseWriter, r *http.Request) {
	s, cookie := h.sessionFor(r)
	hdr := http.Header{}
	if cookie != nil {
		hdr.Add("Set-Cookie", cookie.String())
	}
	conn, err := h.upgrader.Upgrade(w, r, hdr)
	if err != nil {
		logger.L().Warn("ws_upgrade_fail", "err", err)
		return
	}
	c := &wsClient{h: h, conn: conn, sess: s, send: make(chan wsResponse, 64), log: logger.ForSession(s.ID)}
	c.log.Debug("ws_open")
	go c.writePump()
	c.readPump()
}

func (c *wsClient) readPump() {
	defer func() {
		close(c.send)
		c.log.Debug("ws_close")
	}()
	c.conn.SetReadLimit(maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var req wsRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("ws_read_fail", "err", err)
			}
			return
		}
		resp := c.handle(req)
		select {
		case c.send <- resp:
		default:
			// 写端积压说明对端不再读取
			c.log.Warn("ws_send_overflow")
			return
		}
	}
}

func (c *wsClient) handle(req wsRequest) wsResponse {
	var u session.Update
	switch req.Type {
	case wsBack:
		u = c.sess.Back()
	case wsState:
		u = c.sess.Current()
	default:
		var err error
		u, err = c.h.apply(c.sess, interaction.Event{Type: interaction.EventType(req.Type), Target: req.Target, Map: req.Map})
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				return wsResponse{ID: req.ID, Type: "error", Error: "session expired"}
			}
			return wsResponse{ID: req.ID, Type: "error", Error: err.Error()}
		}
	}
	return wsResponse{ID: req.ID, Type: "update", Update: &u}
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
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.log.Warn("ws_write_fail", "err", err)
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
