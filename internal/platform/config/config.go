package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config agrupa toda la configuración del servicio, cargada desde env.
type Config struct {
	AppName string `env:"APP_NAME" envDefault:"pup-hangouts"`
	Port    string `env:"PORT" envDefault:"8080"`

	// Si DB_DSN viene vacío, el router usa repos in-memory (modo dev).
	DBDSN string `env:"DB_DSN"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Transporte de notificaciones (colaborador externo).
	NotifyBaseURL  string        `env:"NOTIFY_BASE_URL"`
	NotifyAPIKey   string        `env:"NOTIFY_API_KEY"`
	NotifyEnabled  bool          `env:"NOTIFY_ENABLED" envDefault:"false"`
	NotifyThrottle time.Duration `env:"NOTIFY_THROTTLE" envDefault:"250ms"`
}

// Load parsea la configuración desde variables de entorno.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
