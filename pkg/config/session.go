package config

import "time"

type SessionConfig struct {
	NLMode           bool
	HistoryLimit     int
	ContextFetch     bool
	ContextThreshold float64
	ContextTimeout   time.Duration
}

func loadSessionConfig() SessionConfig {
	return SessionConfig{
		NLMode:           getEnvBool("NL_MODE", true),
		HistoryLimit:     getEnvInt("HISTORY_LIMIT", 20),
		ContextFetch:     getEnvBool("CONTEXT_FETCH", true),
		ContextThreshold: getEnvFloat("CONTEXT_THRESHOLD", 0.5),
		ContextTimeout:   getEnvDuration("CONTEXT_TIMEOUT", 2*time.Second),
	}
}
