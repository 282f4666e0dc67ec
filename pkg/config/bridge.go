package config

type BridgeConfig struct {
	Port        int
	CORSOrigins []string
	MaxSessions int
	Token       string
}

func loadBridgeConfig() BridgeConfig {
	return BridgeConfig{
		Port:        getEnvInt("BRIDGE_PORT", 7777),
		CORSOrigins: getEnvStringSlice("BRIDGE_CORS_ORIGINS", []string{"*"}),
		MaxSessions: getEnvInt("BRIDGE_MAX_SESSIONS", 100),
		Token:       getEnv("BRIDGE_TOKEN", ""),
	}
}
