// websocket.go - WebSocket transport for the zone editor
//
// Pointer events arrive at mousemove rate; a WebSocket keeps them off
// the HTTP request path and lets the server push state after each one.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/editor"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/logger"
)

// WebSocket message types for the editor protocol
const (
	// Client -> Server messages
	MsgTypePointer = "pointer"
	MsgTypeDraft   = "draft"
	MsgTypeClear   = "clear"
	MsgTypePing    = "ping"

	// Server -> Client messages
	MsgTypeState = "state"
	MsgTypeError = "error"
	MsgTypePong  = "pong"
)

// WSMessage is the envelope for editor socket traffic
type WSMessage struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

var editorUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Same-host console plus dev server
		return true
	},
	ReadBufferSize:  16 * 1024,
	WriteBufferSize: 16 * 1024,
}

// HandleEditorSocket upgrades the connection and speaks the editor
// protocol: pointer/draft/clear in, state out.
func (h *EditorHandlerImpl) HandleEditorSocket(c echo.Context) error {
	session, apiErr := h.session(c)
	if apiErr != nil {
		return apiErr
	}

	ws, err := editorUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	logger.Debug("Editor", "socket attached to session %s", session.ID)
	sendState(ws, session.State())

	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Debug("Editor", "socket error on session %s: %v", session.ID, err)
			}
			break
		}

		switch msg.Type {
		case MsgTypePing:
			session.Touch()
			sendMessage(ws, WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()})
		case MsgTypePointer:
			var ev editor.PointerEvent
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				sendError(ws, "invalid pointer payload: "+err.Error())
				continue
			}
			sendState(ws, session.Pointer(ev))
		case MsgTypeDraft:
			var draft editor.Draft
			if err := json.Unmarshal(msg.Payload, &draft); err != nil {
				sendError(ws, "invalid draft payload: "+err.Error())
				continue
			}
			sendState(ws, session.SetDraft(draft))
		case MsgTypeClear:
			sendState(ws, session.ClearPoints())
		default:
			sendError(ws, "unknown message type: "+msg.Type)
		}
	}

	logger.Debug("Editor", "socket detached from session %s", session.ID)
	return nil
}

func sendState(ws *websocket.Conn, state editor.State) {
	payload, err := json.Marshal(state)
	if err != nil {
		sendError(ws, "failed to encode state")
		return
	}
	sendMessage(ws, WSMessage{
		Type:      MsgTypeState,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	})
}

func sendError(ws *websocket.Conn, message string) {
	payload, _ := json.Marshal(map[string]string{"message": message})
	sendMessage(ws, WSMessage{
		Type:      MsgTypeError,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	})
}

func sendMessage(ws *websocket.Conn, msg WSMessage) {
	if err := ws.WriteJSON(msg); err != nil {
		logger.Debug("Editor", "socket write failed: %v", err)
	}
}
