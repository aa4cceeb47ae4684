package monuments

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-explore/internal/app/models"
)

type Handler struct {
	service Service
	log     *zap.Logger
}

func NewHandler(service Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func descriptionErrorMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return "Monument not found"
	case errors.Is(err, models.ErrBadRequest):
		return "Monument name is required"
	default:
		return "Failed to fetch monument description"
	}
}

func descriptionStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Description godoc
// @Summary Monument description
// @Tags monuments
// @Produce json
// @Param name path string true "Monument name"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/monuments/{name}/monumentDescription [get]
func (h *Handler) Description(c *gin.Context) {
	name := c.Param("name")
	desc, err := h.service.Description(c.Request.Context(), name)
	if err != nil {
		status := descriptionStatus(err)
		if status == http.StatusInternalServerError {
			h.log.Error("Failed to fetch monument description", zap.String("monument", name), zap.Error(err))
		}
		c.JSON(status, gin.H{"error": descriptionErrorMessage(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": desc})
}

// Overview returns the description plus the recent visit log.
func (h *Handler) Overview(c *gin.Context) {
	overview, err := h.service.Overview(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(descriptionStatus(err), gin.H{"error": descriptionErrorMessage(err)})
		return
	}
	c.JSON(http.StatusOK, overview)
}
