package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port              string   `mapstructure:"PORT" validate:"required,numeric"`
	Env               string   `mapstructure:"APP_ENV" validate:"oneof=development production"`
	DatabaseURL       string   `mapstructure:"DATABASE_URL"`
	JWTSecret         string   `mapstructure:"JWT_SECRET" validate:"required"`
	JWTIssuer         string   `mapstructure:"JWT_ISSUER" validate:"required"`
	JWTTTLMinutes     int      `mapstructure:"JWT_TTL_MINUTES" validate:"min=0"`
	CORSOrigins       []string `mapstructure:"-"`
	SeedFile          string   `mapstructure:"SEED_FILE"`
	CredentialHashing string   `mapstructure:"CREDENTIAL_HASHING" validate:"oneof=bcrypt plain"`
	BcryptCost        int      `mapstructure:"BCRYPT_COST" validate:"min=4,max=31"`
	LoginRatePerSec   float64  `mapstructure:"LOGIN_RATE_PER_SECOND" validate:"gt=0"`
	LoginBurst        int      `mapstructure:"LOGIN_BURST" validate:"min=1"`
}

var defaults = map[string]any{
	"PORT":                  "8080",
	"APP_ENV":               "development",
	"DATABASE_URL":          "",
	"JWT_SECRET":            "",
	"JWT_ISSUER":            "bunny-bank",
	"JWT_TTL_MINUTES":       0,
	"CORS_ALLOWED_ORIGINS":  "*",
	"SEED_FILE":             "",
	"CREDENTIAL_HASHING":    "bcrypt",
	"BCRYPT_COST":           10,
	"LOGIN_RATE_PER_SECOND": 5.0,
	"LOGIN_BURST":           10,
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Port = strings.TrimSpace(cfg.Port)
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.CORSOrigins = parseCSV(v.GetString("CORS_ALLOWED_ORIGINS"))

	if err := validator.New().Struct(&cfg); err != nil {
		return Config{}, formatErrors(err)
	}
	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// JWTTTL is the session token lifetime; zero means tokens never expire.
func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

func formatErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %q", envName(fe.StructField()), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func envName(field string) string {
	switch field {
	case "Port":
		return "PORT"
	case "Env":
		return "APP_ENV"
	case "JWTSecret":
		return "JWT_SECRET"
	case "JWTIssuer":
		return "JWT_ISSUER"
	case "JWTTTLMinutes":
		return "JWT_TTL_MINUTES"
	case "CredentialHashing":
		return "CREDENTIAL_HASHING"
	case "BcryptCost":
		return "BCRYPT_COST"
	case "LoginRatePerSec":
		return "LOGIN_RATE_PER_SECOND"
	case "LoginBurst":
		return "LOGIN_BURST"
	}
	return field
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
