// Package config loads plugincheck settings from defaults, an optional file and
// PLUGINCHECK_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	domainerrors "github.com/plugincheck/plugincheck/domain/errors"
)

// EnvPrefix is prepended to every environment override, e.g. PLUGINCHECK_RETRY_MAX_ATTEMPTS.
const EnvPrefix = "PLUGINCHECK"

// Config is the full runtime configuration.
type Config struct {
	HTTP  HTTPConfig  `json:"http" validate:"required"`
	Retry RetryConfig `json:"retry" validate:"required"`
	Log   LogConfig   `json:"log" validate:"required"`
}

// HTTPConfig configures outbound requests.
type HTTPConfig struct {
	TimeoutMs      int   `json:"timeout_ms" validate:"min=1"`
	MaxRedirects   int   `json:"max_redirects" validate:"min=0,max=50"`
	MaxBodyBytes   int64 `json:"max_body_bytes" validate:"min=1024"`
	SSRFProtection bool  `json:"ssrf_protection"`
	AllowPrivate   bool  `json:"allow_private"`

	// Allowlist and Blocklist take hostnames, *.suffix wildcards, IPs or CIDRs.
	// They only apply with SSRFProtection; the blocklist wins over the allowlist.
	Allowlist []string `json:"allowlist" validate:"dive,required,max=253"`
	Blocklist []string `json:"blocklist" validate:"dive,required,max=253"`
}

// Timeout returns TimeoutMs as a duration.
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// RetryConfig configures the fetch retry loop.
type RetryConfig struct {
	MaxAttempts       int     `json:"max_attempts" validate:"min=1,max=10"`
	InitialIntervalMs int     `json:"initial_interval_ms" validate:"min=0"`
	MaxIntervalMs     int     `json:"max_interval_ms" validate:"gtefield=InitialIntervalMs"`
	Multiplier        float64 `json:"multiplier" validate:"gte=1"`
	Jitter            float64 `json:"jitter" validate:"gte=0,lte=1"`
}

// InitialInterval returns InitialIntervalMs as a duration.
func (c RetryConfig) InitialInterval() time.Duration {
	return time.Duration(c.InitialIntervalMs) * time.Millisecond
}

// MaxInterval returns MaxIntervalMs as a duration.
func (c RetryConfig) MaxInterval() time.Duration {
	return time.Duration(c.MaxIntervalMs) * time.Millisecond
}

// LogConfig configures logging.
type LogConfig struct {
	Level   string `json:"level" validate:"oneof=debug info warn warning error"`
	Format  string `json:"format" validate:"oneof=text json"`
	Backend string `json:"backend" validate:"oneof=slog zap"`
}

// Defaults mirrors the values Load starts from.
func Defaults() map[string]any {
	return map[string]any{
		"http.timeout_ms":           30000,
		"http.max_redirects":        10,
		"http.max_body_bytes":       10 * 1024 * 1024,
		"http.ssrf_protection":      false,
		"http.allow_private":        false,
		"http.allowlist":            []string{},
		"http.blocklist":            []string{},
		"retry.max_attempts":        3,
		"retry.initial_interval_ms": 200,
		"retry.max_interval_ms":     5000,
		"retry.multiplier":          2.0,
		"retry.jitter":              0.5,
		"log.level":                 "info",
		"log.format":                "text",
		"log.backend":               "slog",
	}
}

// Load reads configuration. path may be empty, in which case only defaults and
// environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, &domainerrors.ConfigError{Err: fmt.Errorf("reading %s: %w", path, err)}
		}
	}

	var cfg Config
	if err := ValidateConfig(typedSettings(v), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// typedSettings reads every known key with the type of its default, so that
// string values from the environment become numbers, booleans and
// whitespace-separated lists.
func typedSettings(v *viper.Viper) map[string]any {
	settings := map[string]any{}
	for key, def := range Defaults() {
		var val any
		switch def.(type) {
		case int:
			val = v.GetInt(key)
		case float64:
			val = v.GetFloat64(key)
		case bool:
			val = v.GetBool(key)
		case []string:
			val = v.GetStringSlice(key)
		default:
			val = v.GetString(key)
		}

		section, field, _ := strings.Cut(key, ".")
		m, ok := settings[section].(map[string]any)
		if !ok {
			m = map[string]any{}
			settings[section] = m
		}
		m[field] = val
	}
	return settings
}

// validate is a package-level singleton; building a validator is expensive.
var validate = validator.New()

// ValidateConfig decodes a settings map into targetStruct through JSON and runs
// the struct's validate tags. Failures are *errors.ConfigError naming the first
// offending field.
func ValidateConfig(settings map[string]any, targetStruct any) error {
	jsonBytes, err := json.Marshal(settings)
	if err != nil {
		return &domainerrors.ConfigError{Err: fmt.Errorf("failed to marshal config map: %w", err)}
	}

	if err := json.Unmarshal(jsonBytes, targetStruct); err != nil {
		return &domainerrors.ConfigError{Err: fmt.Errorf("failed to unmarshal config into struct: %w", err)}
	}

	if err := validate.Struct(targetStruct); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &domainerrors.ConfigError{Field: fieldPath(verrs[0].Namespace()), Err: err}
		}
		return &domainerrors.ConfigError{Err: err}
	}

	return nil
}

// fieldPath turns "Config.Retry.MaxAttempts" into "Retry.MaxAttempts".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
