package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stratushr/stratus-backend/internal/middleware"
	"github.com/stratushr/stratus-backend/internal/response"
	"github.com/stratushr/stratus-backend/internal/service"
	"github.com/stratushr/stratus-backend/internal/validator"
)

// AssistantHandler streams HR assistant answers over SSE.
type AssistantHandler struct {
	assistantService *service.AssistantService
	log              zerolog.Logger
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(assistantService *service.AssistantService, log zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{
		assistantService: assistantService,
		log:              log.With().Str("component", "assistant_handler").Logger(),
	}
}

type askRequest struct {
	Question string `json:"question" binding:"required,min=1,max=2000"`
}

// Ask godoc
// POST /api/v1/employee/assistant/ask
// Streams the assistant's reply as SSE deltas, terminated by [DONE].
func (h *AssistantHandler) Ask(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req askRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	streamed := false
	onDelta := func(delta string) error {
		streamed = true
		payload, err := json.Marshal(gin.H{"delta": delta})
		if err != nil {
			return err
		}
		c.Writer.Write([]byte("data: "))
		c.Writer.Write(payload)
		c.Writer.Write([]byte("\n\n"))
		c.Writer.Flush()
		return nil
	}

	if _, err := h.assistantService.Ask(c.Request.Context(), claims.UserID, req.Question, onDelta); err != nil {
		h.log.Error().Err(err).Int("employee_id", claims.UserID).Msg("Assistant request failed")
		if !streamed {
			// Nothing sent yet, so a plain JSON error is still possible.
			c.Writer.Header().Set("Content-Type", "application/json")
			response.Fail(c, http.StatusBadGateway, response.ErrAssistantUnavailable)
			return
		}
		payload, _ := json.Marshal(gin.H{"error": "assistant unavailable"})
		c.Writer.Write([]byte("data: "))
		c.Writer.Write(payload)
		c.Writer.Write([]byte("\n\n"))
		c.Writer.Flush()
		return
	}

	c.Writer.Write([]byte("data: [DONE]\n\n"))
	c.Writer.Flush()
}
