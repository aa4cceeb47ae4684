package chat

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-explore/internal/app/models"
)

const sessionKey = "chat_session_id"

type Handler struct {
	service Service
	log     *zap.Logger
}

func NewHandler(service Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// sessionID returns the caller's transcript key, issuing one on first use.
// The cookie is saved before any body is written.
func (h *Handler) sessionID(c *gin.Context) string {
	session := sessions.Default(c)
	if id, ok := session.Get(sessionKey).(string); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	session.Set(sessionKey, id)
	if err := session.Save(); err != nil {
		h.log.Warn("Failed to save chat session", zap.Error(err))
	}
	return id
}

// Chat godoc
// @Summary Send a trip-planning message
// @Tags chat
// @Accept json
// @Produce json,application/pdf
// @Param body body models.ChatRequest true "Message"
// @Success 200 {object} models.ChatReply
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /api/chat [post]
func (h *Handler) Chat(c *gin.Context) {
	id := h.sessionID(c)

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.service.Send(c.Request.Context(), id, req.Message)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "backend error"})
		return
	}

	if result.IsPDF() {
		writePDF(c, result.PDF)
		return
	}
	c.JSON(http.StatusOK, result.Reply)
}

// PDF re-downloads the last generated itinerary from the backend.
func (h *Handler) PDF(c *gin.Context) {
	pdf, err := h.service.PDF(c.Request.Context())
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No itinerary PDF available"})
			return
		}
		h.log.Error("Failed to fetch itinerary pdf", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "backend error"})
		return
	}
	writePDF(c, pdf)
}

func (h *Handler) History(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"messages": h.service.History(h.sessionID(c))})
}

func writePDF(c *gin.Context, pdf []byte) {
	c.Header("Content-Disposition", `inline; filename="itinerary.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
