package models

import (
	"time"

	"github.com/FACorreiaa/loci-explore/internal/pkg/geo"
)

// TrailPoint is one significant position change recorded during a tracking session.
type TrailPoint struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Coordinates geo.Coordinates `json:"coordinates"`
	Timestamp   time.Time       `json:"timestamp"`
}

// Alert is an ephemeral proximity notification for a landmark.
type Alert struct {
	ID         string    `json:"id"`
	LandmarkID string    `json:"landmarkId"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Expired reports whether the alert's time-to-live has elapsed at now.
func (a Alert) Expired(now time.Time) bool {
	return !now.Before(a.ExpiresAt)
}
