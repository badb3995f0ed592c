package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/model"
	"github.com/stemsi/exstem-prep/internal/session"
	"github.com/stemsi/exstem-prep/internal/validator"
	ws "github.com/stemsi/exstem-prep/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams engine events and accepts session actions over one socket.
type WSHandler struct {
	engine   *session.Engine
	hub      *ws.Hub
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler. The hub must already be subscribed to
// the engine.
func NewWSHandler(engine *session.Engine, hub *ws.Hub, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		engine:   engine,
		hub:      hub,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/session/stream
// Pushes tick, alert, proctor, state and submitted events; accepts answer,
// flag, navigate, signal, submit and ping actions.
func (h *WSHandler) SessionStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	client := ws.NewClient()
	h.hub.Register(client)
	defer h.hub.Unregister(client)

	wsLog := h.log.With().Str("remote", conn.RemoteAddr().String()).Logger()
	wsLog.Info().Msg("Client connected")

	done := make(chan struct{})
	go h.writePump(conn, client, done, wsLog)
	defer func() { <-done }()

	ctx := context.Background()
	for {
		frame, err := ws.ReadFrame(conn)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			h.hub.Unregister(client)
			return
		}

		h.dispatch(ctx, client, frame, wsLog)
	}
}

// writePump is the only writer on conn.
func (h *WSHandler) writePump(conn *websocket.Conn, client *ws.Client, done chan<- struct{}, wsLog zerolog.Logger) {
	defer close(done)

	ping := time.NewTicker(ws.PingPeriod())
	defer ping.Stop()

	for {
		select {
		case frame, ok := <-client.Send():
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				return
			}
			if err := ws.WriteFrame(conn, frame); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed")
				conn.Close()
				h.hub.Unregister(client)
				return
			}
		case <-ping.C:
			if err := ws.WritePing(conn); err != nil {
				conn.Close()
				h.hub.Unregister(client)
				return
			}
		}
	}
}

func (h *WSHandler) dispatch(ctx context.Context, client *ws.Client, frame []byte, wsLog zerolog.Logger) {
	var env ws.RequestEnvelope
	if err := json.Unmarshal(frame, &env); err != nil {
		h.replyError(client, "invalid payload", nil)
		return
	}

	switch env.Action {
	case ws.ActionPing:
		h.hub.Reply(client, ws.PongResponse{Event: ws.EventPong})

	case ws.ActionAnswer:
		var req model.RecordAnswerRequest
		if !h.decode(client, frame, &req) || !h.requireActive(client) {
			return
		}
		h.engine.RecordAnswer(ctx, req.QuestionID, *req.OptionIndex)
		h.replyState(client)

	case ws.ActionFlag:
		var req model.ToggleFlagRequest
		if !h.decode(client, frame, &req) || !h.requireActive(client) {
			return
		}
		h.engine.ToggleFlag(ctx, req.QuestionID)
		h.replyState(client)

	case ws.ActionNavigate:
		var req model.NavigateRequest
		if !h.decode(client, frame, &req) || !h.requireActive(client) {
			return
		}
		h.engine.Navigate(ctx, *req.Index)
		h.replyState(client)

	case ws.ActionSignal:
		var req model.ReportSignalRequest
		if !h.decode(client, frame, &req) {
			return
		}
		obs, ok := h.engine.ReportSignal(ctx, req.Signal, req.Detail)
		if !ok {
			h.replyError(client, "no active session", nil)
			return
		}
		h.hub.Reply(client, ws.VerdictResponse{
			Event:   ws.EventVerdict,
			Signal:  req.Signal,
			Verdict: obs.Verdict,
			Entry:   obs.Entry,
		})

	case ws.ActionSubmit:
		if !h.requireActive(client) {
			return
		}
		// The hub delivers the submitted event to every client.
		h.engine.Submit(ctx)
		wsLog.Info().Msg("Submitted over WebSocket")

	case ws.ActionResume:
		// A successful resume reaches every client as a state event.
		if err := h.engine.Resume(ctx); err != nil {
			if errors.Is(err, session.ErrSessionInProgress) {
				h.replyError(client, "session already loaded", nil)
			} else {
				h.replyError(client, "no checkpoint to resume", nil)
			}
		}

	default:
		wsLog.Warn().Str("action", string(env.Action)).Msg("Unknown action")
		h.replyError(client, "unknown action: "+string(env.Action), nil)
	}
}

func (h *WSHandler) decode(client *ws.Client, frame []byte, dst interface{}) bool {
	if err := json.Unmarshal(frame, dst); err != nil {
		h.replyError(client, "invalid payload", nil)
		return false
	}
	if fields := validator.Struct(dst); fields != nil {
		h.replyError(client, "validation failed", fields)
		return false
	}
	return true
}

func (h *WSHandler) requireActive(client *ws.Client) bool {
	if h.engine.Status() != session.StatusActive {
		h.replyError(client, "no active session", nil)
		return false
	}
	return true
}

func (h *WSHandler) replyState(client *ws.Client) {
	h.hub.Reply(client, ws.StateResponse{Event: ws.EventState, State: h.engine.Snapshot()})
}

func (h *WSHandler) replyError(client *ws.Client, msg string, fields map[string]string) {
	h.hub.Reply(client, ws.ErrorResponse{Event: ws.EventError, Error: msg, Fields: fields})
}
