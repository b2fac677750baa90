package config

import "github.com/kelseyhightower/envconfig"

type Config struct {
	Addr string `envconfig:"ADDR" default:":8080"`

	WriteWaitMS     int `envconfig:"WRITE_WAIT_MS" default:"5000"`
	PongWaitMS      int `envconfig:"PONG_WAIT_MS" default:"60000"`
	PingPeriodMS    int `envconfig:"PING_PERIOD_MS" default:"50000"`
	MaxMessageBytes int `envconfig:"MAX_MESSAGE_BYTES" default:"2048"`
	SendBuffer      int `envconfig:"SEND_BUFFER" default:"128"`

	JWTSecret string `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`

	// ServiceToken guards the collaborator-facing /publish endpoint.
	// Empty disables the check (local development only).
	ServiceToken string `envconfig:"SERVICE_TOKEN" default:""`

	RedisAddr              string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword          string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB                int    `envconfig:"REDIS_DB" default:"0"`
	PresenceWorkers        int    `envconfig:"PRESENCE_WORKERS" default:"4"`
	PresenceQueueSize      int    `envconfig:"PRESENCE_QUEUE_SIZE" default:"10000"`
	PresenceTTLSeconds     int    `envconfig:"PRESENCE_TTL_SECONDS" default:"120"`
	PresenceCleanupSeconds int    `envconfig:"PRESENCE_CLEANUP_SECONDS" default:"10"`
}

func Load() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
