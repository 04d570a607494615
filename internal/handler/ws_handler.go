package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stratushr/stratus-backend/internal/middleware"
	"github.com/stratushr/stratus-backend/internal/model"
	"github.com/stratushr/stratus-backend/internal/service"
	"github.com/stratushr/stratus-backend/internal/session"
	ws "github.com/stratushr/stratus-backend/internal/websocket"
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

// WSHandler handles the live exam WebSocket stream. Each connection is
// backed by a session controller that owns the countdown, autosave, and
// proctoring for one attempt.
type WSHandler struct {
	manager        *session.Manager
	attemptService *service.AttemptService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(manager *session.Manager, attemptService *service.AttemptService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		manager:        manager,
		attemptService: attemptService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// ExamStream godoc
// WS /ws/v1/employee/exams/:exam_id/stream
// Upgrades to WebSocket and attaches a session controller for the attempt.
// A reconnect supersedes any controller left over from the previous socket.
func (h *WSHandler) ExamStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exam ID"})
		return
	}

	employeeID := claims.UserID

	// Validate the employee has an active attempt before upgrading.
	if err := h.attemptService.VerifyActiveAttempt(c.Request.Context(), examID, employeeID); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no active attempt for this exam"})
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.NewConn(raw)
	defer conn.Close()

	wsLog := h.log.With().
		Int("employee_id", employeeID).
		Str("exam_id", examID.String()).
		Logger()

	// The controller outlives this request's context: its countdown keeps
	// running until submission even if the socket drops.
	ctrl, err := h.manager.Attach(c.Request.Context(), employeeID, examID)
	if err != nil {
		wsLog.Error().Err(err).Msg("Session attach failed")
		conn.WriteError("could not start exam session")
		return
	}
	defer h.manager.Release(employeeID, examID, ctrl)

	wsLog.Info().Int("remaining", ctrl.Remaining()).Msg("Candidate connected")

	// Event pump: forwards controller events. The read loop writes its own
	// replies, so both sides go through the conn's write lock.
	writerDone := make(chan struct{})
	go h.pumpEvents(conn, ctrl, writerDone)

	h.readLoop(c, conn, ctrl, wsLog)

	<-writerDone
	wsLog.Debug().Msg("Candidate disconnected")
}

// pumpEvents forwards controller events to the socket until the controller
// finishes or the events channel closes with it.
func (h *WSHandler) pumpEvents(conn *ws.Conn, ctrl *session.Controller, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case ev := <-ctrl.Events():
			if err := conn.WriteTyped(ev); err != nil {
				// Writing failed; the read loop will notice the dead
				// socket and return on its own.
				return
			}
		case <-ctrl.Done():
			// Drain anything emitted just before close, then stop.
			for {
				select {
				case ev := <-ctrl.Events():
					if err := conn.WriteTyped(ev); err != nil {
						return
					}
				default:
					conn.CloseNormal("attempt closed")
					return
				}
			}
		}
	}
}

// readLoop dispatches client actions until the socket closes or the
// controller finishes.
func (h *WSHandler) readLoop(c *gin.Context, conn *ws.Conn, ctrl *session.Controller, wsLog zerolog.Logger) {
	for {
		messageType, raw, err := conn.Read()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var envelope ws.RequestEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			conn.WriteError("malformed message")
			continue
		}

		switch envelope.Action {
		case ws.ActionAnswer:
			h.handleAnswer(c, conn, ctrl, raw)
		case ws.ActionFrame:
			h.handleFrame(conn, ctrl, raw)
		case ws.ActionViolation:
			h.handleViolation(c, conn, ctrl, raw)
		case ws.ActionSubmit:
			h.handleSubmit(c, ctrl, wsLog)
		case ws.ActionPing:
			conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(envelope.Action)).Msg("Unknown action")
			conn.WriteError("unknown action: " + string(envelope.Action))
		}

		select {
		case <-ctrl.Done():
			return
		default:
		}
	}
}

// handleAnswer records a single answer through the controller. The saved
// acknowledgment is emitted by the controller itself.
func (h *WSHandler) handleAnswer(c *gin.Context, conn *ws.Conn, ctrl *session.Controller, raw []byte) {
	var req ws.AnswerRequest
	if err := json.Unmarshal(raw, &req); err != nil || req.QuestionID == "" {
		conn.WriteError("question_id and option_index are required")
		return
	}

	// Question IDs are UUIDs; reject anything else before it reaches Redis.
	if _, err := uuid.Parse(req.QuestionID); err != nil {
		conn.WriteError("invalid question_id format")
		return
	}
	if req.OptionIndex < 0 {
		conn.WriteError("option_index must not be negative")
		return
	}

	if err := ctrl.SetAnswer(c.Request.Context(), req.QuestionID, req.OptionIndex); err != nil {
		conn.WriteError("save failed")
	}
}

// handleFrame hands the latest webcam frame to the controller. Analysis
// happens on the proctoring tick, not per message.
func (h *WSHandler) handleFrame(conn *ws.Conn, ctrl *session.Controller, raw []byte) {
	var req ws.FrameRequest
	if err := json.Unmarshal(raw, &req); err != nil || req.Frame == "" {
		conn.WriteError("frame is required")
		return
	}
	ctrl.SubmitFrame(req.Frame)
}

// handleViolation records a client-detected integrity breach.
func (h *WSHandler) handleViolation(c *gin.Context, conn *ws.Conn, ctrl *session.Controller, raw []byte) {
	var req ws.ViolationRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		conn.WriteError("malformed violation")
		return
	}

	kind := model.ViolationKind(req.Kind)
	switch kind {
	case model.ViolationTabSwitch, model.ViolationFullscreenExit, model.ViolationWindowHidden:
	default:
		conn.WriteError("unknown violation kind: " + req.Kind)
		return
	}

	ctrl.ReportViolation(c.Request.Context(), kind, req.Reason)
}

// handleSubmit triggers a user-initiated submission. The graded (or error)
// event reaches the client through the event pump.
func (h *WSHandler) handleSubmit(c *gin.Context, ctrl *session.Controller, wsLog zerolog.Logger) {
	if err := ctrl.Submit(c.Request.Context()); err != nil {
		wsLog.Error().Err(err).Msg("Submission failed")
		return
	}
	wsLog.Info().Msg("Attempt submitted")
}
