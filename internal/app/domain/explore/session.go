package explore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/loci-explore/internal/app/domain/landmarks"
	"github.com/FACorreiaa/loci-explore/internal/app/domain/proximity"
	"github.com/FACorreiaa/loci-explore/internal/app/middleware"
	"github.com/FACorreiaa/loci-explore/internal/app/models"
	"github.com/FACorreiaa/loci-explore/internal/app/observability/metrics"
	"github.com/FACorreiaa/loci-explore/internal/pkg/geo"
)

const (
	writeTimeout = 10 * time.Second

	errRateLimited   = "Too many requests. Please slow down."
	errInvalidCoords = "Invalid coordinates"
	errUnknownType   = "Unknown message type"
	errMalformed     = "Malformed message"
)

// Config tunes a tracking session.
type Config struct {
	PollInterval time.Duration
	AlertTTL     time.Duration
	MaxMessages  int
	RateWindow   time.Duration

	// AllowedOrigins gates browser upgrades; clients that send no Origin are not browsers.
	AllowedOrigins middleware.AllowedOrigins
}

func DefaultConfig() Config {
	return Config{
		PollInterval: 10 * time.Second,
		AlertTTL:     proximity.AlertTTL,
		MaxMessages:  30,
		RateWindow:   time.Minute,
	}
}

// Conn is the part of *websocket.Conn a session uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// inbound is a decoded client frame; err is set for frames that failed to parse.
type inbound struct {
	msg models.ClientMessage
	err error
}

// Session is one live tracking socket. All state below is owned by the loop
// goroutine started in Run; the reader only forwards frames to it.
type Session struct {
	conn    Conn
	catalog *landmarks.Catalog
	cfg     Config
	logger  *zap.Logger
	now     func() time.Time

	tracker  *proximity.AlertTracker
	trail    *proximity.Trail
	limiter  *messageLimiter
	position *geo.Coordinates
	tracking bool
	locErr   string

	poll *time.Ticker
}

func NewSession(conn Conn, catalog *landmarks.Catalog, cfg Config, logger *zap.Logger) *Session {
	return &Session{
		conn:     conn,
		catalog:  catalog,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		tracker:  proximity.NewAlertTrackerWithTTL(cfg.AlertTTL),
		trail:    proximity.NewTrail(),
		limiter:  newMessageLimiter(cfg.MaxMessages, cfg.RateWindow),
		tracking: true,
	}
}

// Run serves the socket until the client disconnects, a write fails or ctx is
// cancelled. It closes the connection before returning.
func (s *Session) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	incoming := make(chan inbound)

	g.Go(func() error {
		defer close(incoming)
		for {
			_, data, err := s.conn.ReadMessage()
			if err != nil {
				return err
			}
			var in inbound
			if err := json.Unmarshal(data, &in.msg); err != nil {
				in.err = err
			}
			select {
			case incoming <- in:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})
	g.Go(func() error {
		<-ctx.Done()
		_ = s.conn.Close()
		return nil
	})
	g.Go(func() error {
		return s.loop(ctx, incoming)
	})

	return g.Wait()
}

func (s *Session) loop(ctx context.Context, incoming <-chan inbound) error {
	expiry := time.NewTimer(time.Hour)
	expiry.Stop()
	defer expiry.Stop()
	defer s.setPolling(false)

	if err := s.startTracking(); err != nil {
		return err
	}

	for {
		var tick <-chan time.Time
		if s.poll != nil {
			tick = s.poll.C
		}

		var next func() error
		select {
		case <-ctx.Done():
			return nil
		case in, ok := <-incoming:
			if !ok {
				return nil
			}
			next = func() error { return s.handle(in) }
		case <-tick:
			next = s.onTick
		case <-expiry.C:
		}

		// expired alerts must be announced before anything else can prune them
		if err := s.expireAlerts(); err != nil {
			return err
		}
		if next != nil {
			if err := next(); err != nil {
				return err
			}
		}

		expiry.Stop()
		if next, ok := s.tracker.NextExpiry(); ok {
			expiry.Reset(max(next.Sub(s.now()), 0))
		}
	}
}

func (s *Session) handle(in inbound) error {
	if !s.limiter.allow(s.now()) {
		s.logger.Warn("Message rate limit exceeded")
		return s.sendError(errRateLimited)
	}
	if in.err != nil {
		return s.sendError(errMalformed)
	}

	msg := in.msg
	switch msg.Type {
	case models.ClientPosition:
		if msg.Latitude == nil || msg.Longitude == nil {
			return s.sendError(errInvalidCoords)
		}
		pos := geo.Coordinates{Latitude: *msg.Latitude, Longitude: *msg.Longitude}
		if !geo.Valid(pos) {
			return s.sendError(errInvalidCoords)
		}
		return s.onPosition(pos)

	case models.ClientPositionError:
		s.locErr = "Error getting location: " + msg.Message
		return s.sendSnapshot()

	case models.ClientTracking:
		if msg.Enabled == nil {
			return s.sendError("tracking requires enabled")
		}
		if *msg.Enabled && !s.tracking {
			return s.startTracking()
		}
		if !*msg.Enabled {
			s.tracking = false
			s.setPolling(false)
		}
		return s.sendSnapshot()

	case models.ClientDismiss:
		if s.tracker.Dismiss(msg.AlertID) {
			return s.send(models.ServerMessage{Type: models.ServerAlertDismissed, AlertID: msg.AlertID})
		}
		return nil

	case models.ClientClearTrail:
		s.trail.Clear()
		return s.sendSnapshot()

	case models.ClientCenter:
		return s.sendSnapshot()

	default:
		return s.sendError(errUnknownType)
	}
}

// startTracking turns tracking on, asks the client for an immediate fix and
// starts the periodic poll.
func (s *Session) startTracking() error {
	s.tracking = true
	s.setPolling(true)
	if err := s.send(models.ServerMessage{Type: models.ServerLocate}); err != nil {
		return err
	}
	return s.sendSnapshot()
}

func (s *Session) setPolling(on bool) {
	if !on {
		if s.poll != nil {
			s.poll.Stop()
			s.poll = nil
		}
		return
	}
	if s.poll == nil && s.cfg.PollInterval > 0 {
		s.poll = time.NewTicker(s.cfg.PollInterval)
	}
}

func (s *Session) onPosition(pos geo.Coordinates) error {
	s.position = &pos
	s.locErr = ""
	s.trail.Record(pos, s.now())

	if s.tracking {
		if err := s.checkProximity(pos); err != nil {
			return err
		}
	}
	return s.sendSnapshot()
}

// onTick runs the periodic poll: request a fresh fix and re-check the last one.
func (s *Session) onTick() error {
	if err := s.send(models.ServerMessage{Type: models.ServerLocate}); err != nil {
		return err
	}
	if s.position == nil {
		return nil
	}
	return s.checkProximity(*s.position)
}

func (s *Session) checkProximity(pos geo.Coordinates) error {
	changes := s.tracker.Observe(proximity.Evaluate(pos, s.catalog.All()), s.now())
	for i := range changes.Raised {
		a := changes.Raised[i]
		metrics.Get().AlertsEmittedTotal.Add(context.Background(), 1,
			metric.WithAttributes(attribute.String("landmark.id", a.LandmarkID)))
		s.logger.Info("Proximity alert", zap.String("landmark", a.LandmarkID), zap.String("alert", a.ID))
		if err := s.send(models.ServerMessage{Type: models.ServerAlert, Alert: &a}); err != nil {
			return err
		}
	}
	for _, a := range changes.Cleared {
		if err := s.send(models.ServerMessage{Type: models.ServerAlertDismissed, AlertID: a.ID}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) expireAlerts() error {
	for _, a := range s.tracker.Expire(s.now()) {
		if err := s.send(models.ServerMessage{Type: models.ServerAlertDismissed, AlertID: a.ID}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) snapshot() *models.Snapshot {
	snap := &models.Snapshot{
		Nearby:    []models.NearbyPOI{},
		VeryClose: []models.NearbyPOI{},
		Alerts:    s.tracker.Active(s.now()),
		Trail:     s.trail.Points(),
		Tracking:  s.tracking,
		Error:     s.locErr,
	}
	if s.position != nil {
		pos := *s.position
		resp := proximity.NearbyResponse(pos, s.catalog.All())
		snap.Position = &pos
		snap.Nearby = resp.Nearby
		snap.VeryClose = resp.VeryClose
	}
	return snap
}

func (s *Session) sendSnapshot() error {
	return s.send(models.ServerMessage{Type: models.ServerSnapshot, Snapshot: s.snapshot()})
}

func (s *Session) sendError(msg string) error {
	return s.send(models.ServerMessage{Type: models.ServerError, Message: msg})
}

func (s *Session) send(msg models.ServerMessage) error {
	if err := s.conn.SetWriteDeadline(s.now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("setting write deadline: %w", err)
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("writing %s: %w", msg.Type, err)
	}
	return nil
}
