package models

import "github.com/FACorreiaa/loci-explore/internal/pkg/geo"

// Tracking socket message types sent by the client.
const (
	ClientPosition      = "position"
	ClientPositionError = "position_error"
	ClientTracking      = "tracking"
	ClientDismiss       = "dismiss"
	ClientClearTrail    = "clear_trail"
	ClientCenter        = "center"
)

// Tracking socket message types sent by the server.
const (
	ServerSnapshot       = "snapshot"
	ServerAlert          = "alert"
	ServerAlertDismissed = "alert_dismissed"
	ServerLocate         = "locate"
	ServerError          = "error"
)

// ClientMessage is a tracking socket frame from the browser. Fields are
// populated according to Type.
type ClientMessage struct {
	Type      string   `json:"type"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Message   string   `json:"message,omitempty"`
	Enabled   *bool    `json:"enabled,omitempty"`
	AlertID   string   `json:"alertId,omitempty"`
}

// Snapshot is the full explore view state of one tracking session.
type Snapshot struct {
	Position  *geo.Coordinates `json:"position"`
	Nearby    []NearbyPOI      `json:"nearby"`
	VeryClose []NearbyPOI      `json:"veryClose"`
	Alerts    []Alert          `json:"alerts"`
	Trail     []TrailPoint     `json:"trail"`
	Tracking  bool             `json:"tracking"`
	Error     string           `json:"error,omitempty"`
}

// ServerMessage is a tracking socket frame pushed to the browser.
type ServerMessage struct {
	Type     string    `json:"type"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
	Alert    *Alert    `json:"alert,omitempty"`
	AlertID  string    `json:"alertId,omitempty"`
	Message  string    `json:"message,omitempty"`
}
