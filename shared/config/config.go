// shared/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Round timing defaults. The round duration is the one named constant the
// rest of the code resets countdowns from; events running 25-minute rounds
// override it via ARENA_ROUND_DURATION.
const (
	DefaultRoundDuration = 20 * time.Minute
	DefaultTickInterval  = 1 * time.Second
)

// Config holds all configuration for the arena service, loaded from
// environment variables.
type Config struct {
	ListenAddr string `env:"ARENA_LISTEN_ADDR" envDefault:":5001"`

	MongoDBConnStr  string `env:"MONGODB_CONN_STR" envDefault:"mongodb://localhost:27017"`
	MongoDBDatabase string `env:"MONGODB_DATABASE" envDefault:"ctf_arena"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// RoundDuration is the countdown every new round starts from.
	RoundDuration time.Duration `env:"ARENA_ROUND_DURATION" envDefault:"20m"`
	// TickInterval is the countdown driver period. One second in production;
	// configurable so local runs can be sped up.
	TickInterval time.Duration `env:"ARENA_TICK_INTERVAL" envDefault:"1s"`
	// SessionTTL is how long a round's portal session key stays valid.
	SessionTTL time.Duration `env:"ARENA_SESSION_TTL" envDefault:"30m"`

	JWTSecret   string        `env:"ARENA_JWT_SECRET" envDefault:"change-me-before-the-event"`
	JWTValidity time.Duration `env:"ARENA_JWT_VALIDITY" envDefault:"100h"`

	// AutoAssignGroups enables batch grouping of queued players into full
	// teams whenever a new player registers. Disabled for manual grouping.
	AutoAssignGroups bool `env:"ARENA_AUTO_ASSIGN_GROUPS" envDefault:"false"`
}

// Load parses the service configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment config: %w", err)
	}
	if cfg.RoundDuration <= 0 {
		return nil, fmt.Errorf("ARENA_ROUND_DURATION must be positive (got %v)", cfg.RoundDuration)
	}
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("ARENA_TICK_INTERVAL must be positive (got %v)", cfg.TickInterval)
	}
	return cfg, nil
}
