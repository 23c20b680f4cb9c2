package common

import (
	"github.com/google/uuid"
)

// NewTurnID generates a unique conversation turn ID with the "turn_" prefix
func NewTurnID() string {
	return "turn_" + uuid.New().String()
}

// NewSessionID generates a unique session ID with the "session_" prefix
func NewSessionID() string {
	return "session_" + uuid.New().String()
}
