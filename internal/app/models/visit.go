package models

import "time"

// VisitRecord marks the first time a given monument was viewed.
type VisitRecord struct {
	ID           string    `json:"_id" bson:"_id,omitempty"`
	MonumentName string    `json:"monumentName" bson:"monumentName"`
	Timestamp    time.Time `json:"timestamp" bson:"timestamp"`
	FirstVisit   bool      `json:"firstVisit" bson:"firstVisit"`
}

// VisitResult reports the outcome of recording a visit.
type VisitResult struct {
	IsNewVisit bool
	InsertedID string
}

// MonumentDescription is the stored description document of a monument.
type MonumentDescription struct {
	MonumentName        string `json:"monumentName" bson:"monumentName"`
	MonumentDescription string `json:"monumentDescription" bson:"monumentDescription"`
}

// RecordVisitRequest is the body of POST /api/monuments/record-visit.
type RecordVisitRequest struct {
	MonumentName string `json:"monumentName"`
}

// RecordVisitResponse is returned by POST /api/monuments/record-visit.
type RecordVisitResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	InsertedID string `json:"insertedId,omitempty"`
	IsNewVisit bool   `json:"isNewVisit"`
}

// VisitsResponse is returned by GET /api/monuments/visited.
type VisitsResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Visits  []VisitRecord `json:"visits"`
}

// MonumentOverview combines a monument's description with the recent visit log.
type MonumentOverview struct {
	MonumentName     string        `json:"monumentName"`
	Description      string        `json:"description,omitempty"`
	DescriptionError string        `json:"descriptionError,omitempty"`
	Visits           []VisitRecord `json:"visits"`
	VisitsError      string        `json:"visitsError,omitempty"`
}
