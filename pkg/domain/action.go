package domain

import (
	"time"
)

// Action is an immutable command consumed by the reducer pipeline.
type Action struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Standard action types.
const (
	// ActionInit is dispatched once by the store to let reducers build their initial slice.
	ActionInit = "@@synapse/INIT"

	// ActionRecordInteraction appends one outcome to the session history.
	// Payload: ActionRecord
	ActionRecordInteraction = "interaction/RECORD"

	// ActionCognitiveChange commits a cognitive state transition.
	// Payload: CognitiveTransition
	ActionCognitiveChange = "cognitive/STATE_CHANGE"

	// ActionNavigate is the interpreted navigation command.
	// Payload: string (target)
	ActionNavigate = "navigation/NAVIGATE"
)

// ActionRecord is one interaction outcome kept by the session history.
type ActionRecord struct {
	ID        string        `json:"id" yaml:"id"`
	Timestamp time.Time     `json:"timestamp" yaml:"timestamp"`
	Type      string        `json:"type" yaml:"type"`
	Success   bool          `json:"success" yaml:"success"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}
