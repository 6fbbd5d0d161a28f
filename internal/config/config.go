package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken  string `envconfig:"BOT_TOKEN" required:"true"`
	DBPath    string `envconfig:"DB_PATH" default:"./data/activebreak.db"`
	DefaultTZ string `envconfig:"DEFAULT_TZ" default:"UTC"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr  string `envconfig:"HTTP_ADDR" default:":8080"`

	// TickInterval is the host cadence driving the engine. Real platform
	// schedulers deliver 1–15 minute best-effort ticks; the engine is built
	// to tolerate whatever this ends up being.
	TickInterval time.Duration `envconfig:"TICK_INTERVAL" default:"1m"`

	// Sink selects the delivery channel: telegram|webpush|log.
	Sink string `envconfig:"SINK" default:"telegram"`

	// Web Push (VAPID) credentials; required only when Sink=webpush.
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	VAPIDSubscriber string `envconfig:"VAPID_SUBSCRIBER"`

	Engine EngineConfig
}

// EngineConfig exposes the decision-engine tunables. The defaults mirror the
// values the engine ships with; deployments override them per environment.
type EngineConfig struct {
	ToleranceMinutes       int           `envconfig:"TOLERANCE_MINUTES" default:"3"`
	CooldownRatio          float64       `envconfig:"COOLDOWN_RATIO" default:"0.8"`
	ShortCooldownRatio     float64       `envconfig:"SHORT_COOLDOWN_RATIO" default:"0.5"`
	ShortCadenceMaxMinutes int           `envconfig:"SHORT_CADENCE_MAX_MINUTES" default:"5"`
	CooldownFloor          time.Duration `envconfig:"COOLDOWN_FLOOR" default:"30s"`
	CompletionFailOpen     bool          `envconfig:"COMPLETION_FAIL_OPEN" default:"true"`
	DuplicateFailOpen      bool          `envconfig:"DUPLICATE_FAIL_OPEN" default:"true"`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
