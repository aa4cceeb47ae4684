package explore

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-explore/internal/app/domain/landmarks"
	"github.com/FACorreiaa/loci-explore/internal/app/middleware"
	"github.com/FACorreiaa/loci-explore/internal/app/models"
)

// ~37m from Monument One, ~1.08km from Monument Two
const nearLat, nearLng = 13.0140, 77.5445

func testConfig() Config {
	return Config{
		PollInterval: time.Hour,
		AlertTTL:     time.Hour,
		MaxMessages:  30,
		RateWindow:   time.Minute,
	}
}

func newRouter(cfg Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(landmarks.Default(), cfg, zap.NewNop())
	r.GET("/api/explore/nearby", h.Nearby)
	r.GET("/api/landmarks", h.Landmarks)
	r.GET("/ws/explore", h.Track)
	return r
}

func dial(t *testing.T, cfg Config) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(newRouter(cfg))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/explore"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// every session opens with a locate request and the empty view
	assert.Equal(t, models.ServerLocate, read(t, conn).Type)
	snap := read(t, conn)
	require.Equal(t, models.ServerSnapshot, snap.Type)
	assert.True(t, snap.Snapshot.Tracking)
	assert.Nil(t, snap.Snapshot.Position)
	return conn
}

func read(t *testing.T, conn *websocket.Conn) models.ServerMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var msg models.ServerMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func send(t *testing.T, conn *websocket.Conn, msg map[string]any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

func position(lat, lng float64) map[string]any {
	return map[string]any{"type": models.ClientPosition, "latitude": lat, "longitude": lng}
}

func TestTrack_PositionRaisesAlertOnce(t *testing.T) {
	conn := dial(t, testConfig())

	send(t, conn, position(nearLat, nearLng))
	alert := read(t, conn)
	require.Equal(t, models.ServerAlert, alert.Type)
	require.NotNil(t, alert.Alert)
	assert.Equal(t, "monument-1", alert.Alert.LandmarkID)
	assert.Contains(t, alert.Alert.Message, `You are within 1km of "Monument One"!`)

	snap := read(t, conn)
	require.Equal(t, models.ServerSnapshot, snap.Type)
	s := snap.Snapshot
	require.NotNil(t, s.Position)
	assert.Equal(t, nearLat, s.Position.Latitude)
	require.Len(t, s.Nearby, 2)
	assert.Equal(t, "monument-1", s.Nearby[0].ID)
	require.Len(t, s.VeryClose, 1)
	assert.Len(t, s.Alerts, 1)
	assert.Len(t, s.Trail, 1)

	// same spot again: edge triggered, so only a snapshot comes back
	send(t, conn, position(nearLat, nearLng))
	again := read(t, conn)
	assert.Equal(t, models.ServerSnapshot, again.Type)
	assert.Len(t, again.Snapshot.Trail, 1)
}

func TestTrack_AlertExpires(t *testing.T) {
	cfg := testConfig()
	cfg.AlertTTL = 100 * time.Millisecond
	conn := dial(t, cfg)

	send(t, conn, position(nearLat, nearLng))
	alert := read(t, conn)
	require.Equal(t, models.ServerAlert, alert.Type)
	require.Equal(t, models.ServerSnapshot, read(t, conn).Type)

	dismissed := read(t, conn)
	assert.Equal(t, models.ServerAlertDismissed, dismissed.Type)
	assert.Equal(t, alert.Alert.ID, dismissed.AlertID)
}

func TestTrack_DismissAlert(t *testing.T) {
	conn := dial(t, testConfig())

	send(t, conn, position(nearLat, nearLng))
	alert := read(t, conn)
	require.Equal(t, models.ServerAlert, alert.Type)
	read(t, conn)

	send(t, conn, map[string]any{"type": models.ClientDismiss, "alertId": alert.Alert.ID})
	dismissed := read(t, conn)
	assert.Equal(t, models.ServerAlertDismissed, dismissed.Type)
	assert.Equal(t, alert.Alert.ID, dismissed.AlertID)

	send(t, conn, map[string]any{"type": models.ClientCenter})
	assert.Empty(t, read(t, conn).Snapshot.Alerts)
}

func TestTrack_TrackingOffSkipsAlerts(t *testing.T) {
	conn := dial(t, testConfig())

	send(t, conn, map[string]any{"type": models.ClientTracking, "enabled": false})
	off := read(t, conn)
	require.Equal(t, models.ServerSnapshot, off.Type)
	assert.False(t, off.Snapshot.Tracking)

	send(t, conn, position(nearLat, nearLng))
	snap := read(t, conn)
	require.Equal(t, models.ServerSnapshot, snap.Type)
	assert.Len(t, snap.Snapshot.Nearby, 2)
	assert.Empty(t, snap.Snapshot.Alerts)

	send(t, conn, map[string]any{"type": models.ClientTracking, "enabled": true})
	assert.Equal(t, models.ServerLocate, read(t, conn).Type)
	on := read(t, conn)
	require.Equal(t, models.ServerSnapshot, on.Type)
	assert.True(t, on.Snapshot.Tracking)
}

func TestTrack_PollRequestsFreshFix(t *testing.T) {
	cfg := testConfig()
	cfg.PollInterval = 50 * time.Millisecond
	conn := dial(t, cfg)

	assert.Equal(t, models.ServerLocate, read(t, conn).Type)

	send(t, conn, position(nearLat, nearLng))
	var kinds []string
	for len(kinds) < 10 {
		msg := read(t, conn)
		kinds = append(kinds, msg.Type)
		if msg.Type == models.ServerSnapshot {
			break
		}
	}
	assert.Contains(t, kinds, models.ServerAlert)

	// later polls re-check the same position without re-alerting
	for i := 0; i < 2; i++ {
		msg := read(t, conn)
		assert.Equal(t, models.ServerLocate, msg.Type)
	}
}

func TestTrack_PositionErrorPersistsUntilFix(t *testing.T) {
	conn := dial(t, testConfig())

	send(t, conn, map[string]any{"type": models.ClientPositionError, "message": "User denied Geolocation"})
	snap := read(t, conn)
	assert.Equal(t, "Error getting location: User denied Geolocation", snap.Snapshot.Error)

	send(t, conn, map[string]any{"type": models.ClientCenter})
	assert.NotEmpty(t, read(t, conn).Snapshot.Error)

	send(t, conn, position(nearLat+0.5, nearLng))
	assert.Empty(t, read(t, conn).Snapshot.Error)
}

func TestTrack_ClearTrail(t *testing.T) {
	conn := dial(t, testConfig())

	send(t, conn, position(nearLat+0.5, nearLng))
	send(t, conn, position(nearLat+0.6, nearLng))
	read(t, conn)
	assert.Len(t, read(t, conn).Snapshot.Trail, 2)

	send(t, conn, map[string]any{"type": models.ClientClearTrail})
	assert.Empty(t, read(t, conn).Snapshot.Trail)
}

func TestTrack_BadMessages(t *testing.T) {
	conn := dial(t, testConfig())

	send(t, conn, map[string]any{"type": models.ClientPosition, "latitude": 95.0, "longitude": 0.0})
	assert.Equal(t, models.ServerMessage{Type: models.ServerError, Message: errInvalidCoords}, read(t, conn))

	send(t, conn, map[string]any{"type": models.ClientPosition})
	assert.Equal(t, errInvalidCoords, read(t, conn).Message)

	send(t, conn, map[string]any{"type": "teleport"})
	assert.Equal(t, errUnknownType, read(t, conn).Message)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	assert.Equal(t, errMalformed, read(t, conn).Message)
}

func TestTrack_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxMessages = 2
	conn := dial(t, cfg)

	for i := 0; i < 2; i++ {
		send(t, conn, map[string]any{"type": models.ClientCenter})
		assert.Equal(t, models.ServerSnapshot, read(t, conn).Type)
	}
	send(t, conn, map[string]any{"type": models.ClientCenter})
	limited := read(t, conn)
	assert.Equal(t, models.ServerError, limited.Type)
	assert.Equal(t, errRateLimited, limited.Message)
}

func TestTrack_OriginCheck(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedOrigins = middleware.AllowedOrigins{"http://localhost:3000"}
	srv := httptest.NewServer(newRouter(cfg))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/explore"

	t.Run("listed origin upgrades", func(t *testing.T) {
		conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://localhost:3000"}})
		require.NoError(t, err)
		defer conn.Close()
		assert.Equal(t, models.ServerLocate, read(t, conn).Type)
	})

	t.Run("unlisted origin is refused", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
		require.ErrorIs(t, err, websocket.ErrBadHandshake)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestNearbyEndpoint(t *testing.T) {
	r := newRouter(testConfig())

	t.Run("valid position", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/explore/nearby?lat=13.0140&lng=77.5445", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp models.NearbyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Nearby, 2)
		assert.Equal(t, "Monument One", resp.Nearby[0].Name)
		assert.Less(t, resp.Nearby[0].Distance, resp.Nearby[1].Distance)
		assert.Equal(t, "#0ea5e9", resp.Nearby[0].Color)
		assert.Contains(t, resp.Nearby[0].DirectionsURL, "travelmode=driving")
		require.Len(t, resp.VeryClose, 1)
	})

	for _, q := range []string{"", "?lat=13", "?lat=abc&lng=77", "?lat=91&lng=0", "?lat=0&lng=181"} {
		t.Run("invalid "+q, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/explore/nearby"+q, nil))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	t.Run("far away is empty", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/explore/nearby?lat=38.72&lng=-9.14", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"nearby":[]`)
	})
}

func TestLandmarksEndpoint(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(testConfig()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/landmarks", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Landmarks []models.LandmarkMarker `json:"landmarks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Landmarks, 2)
	assert.Equal(t, "#f59e0b", resp.Landmarks[1].Color)
	assert.Equal(t, "Museum", resp.Landmarks[1].Label)
}

func TestMessageLimiter(t *testing.T) {
	l := newMessageLimiter(2, time.Minute)
	start := time.Now()

	assert.True(t, l.allow(start))
	assert.True(t, l.allow(start.Add(time.Second)))
	assert.False(t, l.allow(start.Add(2*time.Second)))
	assert.True(t, l.allow(start.Add(time.Minute+500*time.Millisecond)))
}

func TestMessageLimiter_RejectedFramesDoNotExtendTheBlock(t *testing.T) {
	l := newMessageLimiter(2, time.Minute)
	start := time.Now()

	require.True(t, l.allow(start))
	require.True(t, l.allow(start.Add(time.Second)))
	for i := 2; i < 30; i++ {
		assert.False(t, l.allow(start.Add(time.Duration(i)*time.Second)))
	}
	// only the two accepted frames were counted, so the first slot frees up on time
	assert.True(t, l.allow(start.Add(time.Minute+500*time.Millisecond)))
}
