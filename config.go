package paybridge

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Mode selects which PayBridge environment the client talks to.
type Mode string

const (
	ModeSandbox    Mode = "sandbox"
	ModeProduction Mode = "production"
)

// Config is the immutable client configuration. It is captured at
// construction time and never mutated afterwards; there is no
// process-wide state.
type Config struct {
	// Credentials populate the X-API-Authentication header on every call.
	ClientID     string       `envconfig:"PAYBRIDGE_CLIENT_ID" validate:"required"`
	ClientSecret SecretString `envconfig:"PAYBRIDGE_CLIENT_SECRET" validate:"required"`

	// Mode selects the sandbox or production host.
	Mode Mode `envconfig:"PAYBRIDGE_MODE" default:"sandbox" validate:"required,oneof=sandbox production"`

	// WebhookSecret is shared out-of-band with PayBridge and used only for
	// webhook signature verification. It is never transmitted.
	WebhookSecret SecretString `envconfig:"PAYBRIDGE_WEBHOOK_SECRET"`

	UserAgent string `envconfig:"PAYBRIDGE_USER_AGENT"`

	// Overrides for testing; default hosts are selected by Mode.
	BaseURL    string `envconfig:"PAYBRIDGE_BASE_URL" validate:"omitempty,url"`
	ConnectURL string `envconfig:"PAYBRIDGE_CONNECT_URL" validate:"omitempty,url"`

	// Programmatic-only fields.
	HTTPClient *http.Client `ignored:"true"`
	Logger     *slog.Logger `ignored:"true"`
	Retry      *RetryPolicy `ignored:"true"`
}

// ConfigError is a diagnostic error returned when configuration cannot be
// loaded or fails validation.
type ConfigError struct {
	Stage   string // "process", "validate", "check"
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("paybridge config [%s]: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("paybridge config [%s]: %s", e.Stage, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// FromEnv loads a Config from the environment:
//  1. Load a .env file if present (non-fatal when missing).
//  2. Process PAYBRIDGE_* variables via envconfig struct tags.
//  3. Validate the result with go-playground/validator.
func FromEnv() (Config, error) {
	var cfg Config

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, &ConfigError{
			Stage:   "process",
			Message: "failed to process environment variables",
			Err:     err,
		}
	}

	// envconfig applies defaults only to unset variables; a PAYBRIDGE_MODE
	// that is set but empty still means the default environment, matching
	// how New treats an empty Config.Mode.
	if cfg.Mode == "" {
		cfg.Mode = ModeSandbox
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, &ConfigError{
			Stage:   "validate",
			Message: "configuration failed validation",
			Err:     err,
		}
	}

	return cfg, nil
}

// check enforces the constructor invariants for programmatically built
// configs, which bypass FromEnv's validator pass.
func (c Config) check() error {
	if c.ClientID == "" {
		return &ConfigError{Stage: "check", Message: "ClientID is required"}
	}
	if c.ClientSecret == "" {
		return &ConfigError{Stage: "check", Message: "ClientSecret is required"}
	}
	if c.Mode != "" && c.Mode != ModeSandbox && c.Mode != ModeProduction {
		return &ConfigError{Stage: "check", Message: fmt.Sprintf("unknown mode %q", c.Mode)}
	}
	return nil
}
