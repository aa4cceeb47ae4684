package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PingTimeout bounds a single store ping.
const PingTimeout = 2 * time.Second

// Pinger reports whether the backing store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	store  Pinger
	driver string
	log    *zap.Logger
}

func NewHandler(store Pinger, driver string, log *zap.Logger) *Handler {
	return &Handler{store: store, driver: driver, log: log}
}

// DBStatus always answers 200; an unreachable store reports connected=false.
func (h *Handler) DBStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), PingTimeout)
	defer cancel()

	connected := true
	if h.store == nil {
		connected = false
	} else if err := h.store.Ping(ctx); err != nil {
		h.log.Warn("Store ping failed", zap.String("driver", h.driver), zap.Error(err))
		connected = false
	}

	c.JSON(http.StatusOK, gin.H{"connected": connected})
}
