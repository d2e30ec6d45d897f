package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// ProfileCacheTTL aplica a los perfiles de personalidad cacheados en Redis.
	ProfileCacheTTL time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"10m"`

	MatchTopN              int     `env:"MATCH_TOP_N" envDefault:"50"`
	MatchWorkers           int     `env:"MATCH_WORKERS" envDefault:"8"`
	MatchFieldWeight       float64 `env:"MATCH_FIELD_WEIGHT" envDefault:"0.7"`
	MatchPersonalityWeight float64 `env:"MATCH_PERSONALITY_WEIGHT" envDefault:"0.3"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
