// Package session holds the minimal therapy-session record kept by the
// revision engine. Sessions are produced upstream (recording, transcription
// and analysis happen elsewhere); this service only tracks their lifecycle
// so an approved suggestion can mark its source session processed.
package session

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a therapy session.
type SessionStatus string

const (
	StatusUploaded    SessionStatus = "uploaded"
	StatusTranscribed SessionStatus = "transcribed"
	StatusAnalyzed    SessionStatus = "analyzed"
	StatusProcessed   SessionStatus = "processed"
)

var validStatuses = map[SessionStatus]bool{
	StatusUploaded:    true,
	StatusTranscribed: true,
	StatusAnalyzed:    true,
	StatusProcessed:   true,
}

// ValidStatus reports whether s is a known session status.
func ValidStatus(s SessionStatus) bool { return validStatuses[s] }

// Session maps to the session table.
type Session struct {
	ID        uuid.UUID     `db:"id" json:"id"`
	PatientID uuid.UUID     `db:"patient_id" json:"patient_id"`
	Status    SessionStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}
