package explore

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-explore/internal/app/domain/landmarks"
	"github.com/FACorreiaa/loci-explore/internal/app/domain/proximity"
	"github.com/FACorreiaa/loci-explore/internal/app/observability/metrics"
	"github.com/FACorreiaa/loci-explore/internal/pkg/geo"
)

var errBadCoordinates = errors.New("lat and lng must be valid coordinates")

type Handler struct {
	catalog  *landmarks.Catalog
	cfg      Config
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewHandler(catalog *landmarks.Catalog, cfg Config, log *zap.Logger) *Handler {
	return &Handler{
		catalog: catalog,
		cfg:     cfg,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || cfg.AllowedOrigins.Allows(origin)
			},
		},
	}
}

// Nearby godoc
// @Summary Landmarks near a position
// @Tags explore
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Success 200 {object} models.NearbyResponse
// @Failure 400 {object} map[string]string
// @Router /api/explore/nearby [get]
func (h *Handler) Nearby(c *gin.Context) {
	pos, err := parsePosition(c.Query("lat"), c.Query("lng"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, proximity.NearbyResponse(pos, h.catalog.All()))
}

func (h *Handler) Landmarks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"landmarks": h.catalog.Markers()})
}

// Track upgrades to a websocket and runs a tracking session on it.
func (h *Handler) Track(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade to WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	metrics.Get().TrackingSessions.Add(ctx, 1)
	defer metrics.Get().TrackingSessions.Add(ctx, -1)

	l := h.log.With(zap.String("remote", c.ClientIP()))
	l.Info("Tracking session started")

	err = NewSession(conn, h.catalog, h.cfg, l).Run(ctx)
	if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
		l.Warn("Tracking session ended", zap.Error(err))
		return
	}
	l.Info("Tracking session closed")
}

func parsePosition(lat, lng string) (geo.Coordinates, error) {
	if lat == "" || lng == "" {
		return geo.Coordinates{}, errBadCoordinates
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return geo.Coordinates{}, errBadCoordinates
	}
	lo, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return geo.Coordinates{}, errBadCoordinates
	}
	pos := geo.Coordinates{Latitude: la, Longitude: lo}
	if !geo.Valid(pos) {
		return geo.Coordinates{}, errBadCoordinates
	}
	return pos, nil
}
