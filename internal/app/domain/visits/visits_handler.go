package visits

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
	return &Handler{
		service: service,
		log:     log,
	}
}

// RecordVisit godoc
// @Summary Record a monument visit
// @Description Logs the first visit to a monument; repeat visits are reported but not stored
// @Tags monuments
// @Accept json
// @Produce json
// @Param body body models.RecordVisitRequest true "Monument name"
// @Success 200 {object} models.RecordVisitResponse
// @Failure 400 {object} models.RecordVisitResponse
// @Failure 500 {object} models.RecordVisitResponse
// @Router /api/monuments/record-visit [post]
func (h *Handler) RecordVisit(c *gin.Context) {
	var req models.RecordVisitRequest
	// a malformed body is treated like a missing name
	_ = c.ShouldBindJSON(&req)

	res, err := h.service.RecordVisit(c.Request.Context(), req.MonumentName)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			c.JSON(http.StatusBadRequest, models.RecordVisitResponse{
				Success: false,
				Message: "Monument name is required",
			})
			return
		}
		h.log.Error("Failed to record monument visit", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.RecordVisitResponse{
			Success: false,
			Message: "Failed to record monument visit",
		})
		return
	}

	if !res.IsNewVisit {
		c.JSON(http.StatusOK, models.RecordVisitResponse{
			Success:    true,
			Message:    "Monument already visited previously",
			IsNewVisit: false,
		})
		return
	}

	c.JSON(http.StatusOK, models.RecordVisitResponse{
		Success:    true,
		Message:    "Visit recorded successfully",
		InsertedID: res.InsertedID,
		IsNewVisit: true,
	})
}

// ListVisits godoc
// @Summary Recent monument visits
// @Description Returns up to 20 visits, newest first
// @Tags monuments
// @Produce json
// @Success 200 {object} models.VisitsResponse
// @Failure 500 {object} models.VisitsResponse
// @Router /api/monuments/visited [get]
func (h *Handler) ListVisits(c *gin.Context) {
	visits, err := h.service.RecentVisits(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to fetch visited monuments", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.VisitsResponse{
			Success: false,
			Message: "Failed to fetch visited monuments",
			Visits:  []models.VisitRecord{},
		})
		return
	}

	c.JSON(http.StatusOK, models.VisitsResponse{
		Success: true,
		Visits:  visits,
	})
}
