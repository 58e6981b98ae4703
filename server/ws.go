package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/chaos-io/maskedit/canvas"
	"github.com/chaos-io/maskedit/session"
)

const (
	PointerDown  = "down"
	PointerMove  = "move"
	PointerUp    = "up"
	PointerLeave = "leave"
)

// pointerMessage 一次指针事件，view 是绘制面在页面上的位置和显示尺寸
type pointerMessage struct {
	Type  string              `json:"type"`
	Event canvas.PointerEvent `json:"event"`
	View  canvas.Rect         `json:"view"`
}

type pointerReply struct {
	Handled        bool   `json:"handled"`
	PreventDefault bool   `json:"preventDefault"`
	Error          string `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func dispatchPointer(st *session.State, msg pointerMessage) (pointerReply, error) {
	switch msg.Type {
	case PointerDown:
		ok, err := st.PointerDown(msg.Event, msg.View)
		return pointerReply{Handled: ok, PreventDefault: ok}, err
	case PointerMove:
		ok, err := st.PointerMove(msg.Event, msg.View)
		return pointerReply{Handled: ok, PreventDefault: ok}, err
	case PointerUp:
		st.PointerUp()
		return pointerReply{Handled: true}, nil
	case PointerLeave:
		st.PointerLeave()
		return pointerReply{Handled: true}, nil
	default:
		return pointerReply{}, fmt.Errorf("%w: unknown pointer event %q", session.ErrInputMissing, msg.Type)
	}
}

// pointerStream 通过 WebSocket 逐条接收指针事件，每条回一个 pointerReply
//
// 连接断开视为指针离开，进行中的笔画结束。每条消息都刷新会话的访问时间，
// 会话被删除后关闭连接。
func (s *Server) pointerStream(c *gin.Context) {
	st, id := state(c), c.Param("id")
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "request_id", c.GetString("request_id"), "error", err)
		return
	}
	defer func() { _ = conn.Close() }()
	defer st.PointerLeave()

	for {
		var msg pointerMessage
		if err := conn.ReadJSON(&msg); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				slog.Debug("pointer stream closed", "error", err)
			}
			return
		}
		if !s.store.Touch(id) {
			closeMsg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "session expired")
			_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second))
			return
		}

		reply, err := dispatchPointer(st, msg)
		if err != nil {
			reply.Error = err.Error()
		}
		if err := conn.WriteJSON(reply); err != nil {
			slog.Debug("pointer stream write failed", "error", err)
			return
		}
	}
}
