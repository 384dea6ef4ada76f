package domain

import "time"

// Defaults shared by the configuration layer and the components.
const (
	DefaultMaxCallDepth      = 100
	DefaultMaxChainLength    = 50
	DefaultMaxInFlight       = 200
	DefaultEventHistorySize  = 100
	DefaultCriticalPriority  = 100
	DefaultPluginPriority    = 50
	DefaultInitTimeout       = 5 * time.Second
	DefaultHistoryCapacity   = 100
	DefaultDebounceTicks     = 3
	DefaultRecoveryCooldown  = 100
	DefaultActionHistorySize = 50
	DefaultAnalysisTickEvery = 1
)
