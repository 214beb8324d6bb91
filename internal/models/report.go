package models

import "time"

type Status string

const (
	// StatusPending is the legacy default for records inserted directly
	// into the store, bypassing the citizen pipeline.
	StatusPending             Status = "Pending"
	StatusUnderReview         Status = "Under Review"
	StatusPendingVerification Status = "Pending News Verification"
	StatusVerified            Status = "Verified"
	StatusUnverified          Status = "Unverified - No News Match"
	StatusVerificationFailed  Status = "Verification Failed"
	StatusMisclassified       Status = "Misclassified - Needs Review"
)

// ValidStatus reports whether s is one of the recognized report statuses.
// Automated logic never writes anything outside this set; the manual
// override endpoint rejects anything outside it.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusPendingVerification,
		StatusVerified, StatusUnverified, StatusVerificationFailed,
		StatusMisclassified:
		return true
	}
	return false
}

const (
	SourceGoogleNews = "Google News"
	SourceUserUpload = "User Upload"
)

// TypeUnknown is the sentinel meaning no disaster type could be determined.
// It is distinct from an empty field: "Unknown" is an affirmative answer
// from the classifier, not a missing value.
const TypeUnknown = "Unknown"

type Report struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	Title        string    `json:"title"`
	Text         string    `json:"text"`
	Summary      string    `json:"summary,omitempty"`
	Link         string    `json:"link,omitempty"`
	Location     string    `json:"location"`
	DisasterType string    `json:"disaster_type"`
	Status       Status    `json:"status"`
	ImagePath    string    `json:"image_path,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// NGO is a passive registry record consumed by the stats endpoint. It has
// no lifecycle beyond create/read.
type NGO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Location       string `json:"location"`
	Specialization string `json:"specialization"`
	Contact        string `json:"contact"`
}
