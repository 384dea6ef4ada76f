package domain

import "time"

// PluginState is the lifecycle position of a registered plugin.
type PluginState string

const (
	PluginRegistered   PluginState = "registered"
	PluginInitializing PluginState = "initializing"
	PluginInitialized  PluginState = "initialized"
	PluginStarting     PluginState = "starting"
	PluginStarted      PluginState = "started"
	PluginStopping     PluginState = "stopping"
	PluginStopped      PluginState = "stopped"
	PluginDestroying   PluginState = "destroying"
	PluginDestroyed    PluginState = "destroyed"
	PluginFailed       PluginState = "failed" // Reachable from any hook
)

// CognitiveState is a coarse behavioral classification of recent interactions.
type CognitiveState string

const (
	CognitiveNeutral      CognitiveState = "neutral"
	CognitiveFrustrated   CognitiveState = "frustrated"
	CognitiveConcentrated CognitiveState = "concentrated"
	CognitiveExploring    CognitiveState = "exploring"
	CognitiveLearning     CognitiveState = "learning"
)

// CognitiveStates lists every state in tie-break order (highest priority first).
var CognitiveStates = []CognitiveState{
	CognitiveFrustrated,
	CognitiveConcentrated,
	CognitiveLearning,
	CognitiveExploring,
	CognitiveNeutral,
}

// CognitiveTransition is the payload of a cognitive/STATE_CHANGE action.
type CognitiveTransition struct {
	From       CognitiveState `json:"from"`
	To         CognitiveState `json:"to"`
	Confidence float64        `json:"confidence"`
	At         time.Time      `json:"at"`
}
