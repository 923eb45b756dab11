package common

import (
	"github.com/google/uuid"
)

// NewDocumentID generates a unique document ID with the "doc_" prefix
// Format: doc_<uuid>
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}

// NewSessionID generates a unique chat session ID with the "sess_" prefix
// Format: sess_<uuid>
func NewSessionID() string {
	return "sess_" + uuid.New().String()
}

// NewTurnID generates a unique conversation turn ID with the "turn_" prefix
// Format: turn_<uuid>
func NewTurnID() string {
	return "turn_" + uuid.New().String()
}
