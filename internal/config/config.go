// Package config loads giveaibreak settings from defaults, a YAML file, a .env
// file and GIVEAIBREAK_* environment variables, in increasing precedence.
package config

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix prefixes every environment variable.
	EnvPrefix = "GIVEAIBREAK_"
	// DefaultFile is read when present and no file is given.
	DefaultFile = "giveaibreak.yaml"
	// DefaultEnvFile is read when present and no env file is given.
	DefaultEnvFile = ".env"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config is the full application configuration.
type Config struct {
	ServerURL      string        `mapstructure:"server_url" yaml:"server_url"`
	Offline        bool          `mapstructure:"offline" yaml:"offline"`
	FallbackSlug   string        `mapstructure:"fallback_slug" yaml:"fallback_slug"`
	ShareURL       string        `mapstructure:"share_url" yaml:"share_url"`
	ResetOnAgain   bool          `mapstructure:"reset_on_again" yaml:"reset_on_again"`
	MinLoading     time.Duration `mapstructure:"min_loading" yaml:"min_loading"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`

	Typing TypingConfig `mapstructure:"typing" yaml:"typing"`
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Serve  ServeConfig  `mapstructure:"serve" yaml:"serve"`
}

// TypingConfig tunes the typewriter.
type TypingConfig struct {
	Speed      time.Duration `mapstructure:"speed" yaml:"speed"`
	Pause      time.Duration `mapstructure:"pause" yaml:"pause"`
	StartDelay time.Duration `mapstructure:"start_delay" yaml:"start_delay"`
}

// StoreConfig selects where sessions are persisted.
type StoreConfig struct {
	Driver        string        `mapstructure:"driver" yaml:"driver"`
	Path          string        `mapstructure:"path" yaml:"path"`
	RedisAddr     string        `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db" yaml:"redis_db"`
	Prefix        string        `mapstructure:"prefix" yaml:"prefix"`
	TTL           time.Duration `mapstructure:"ttl" yaml:"ttl"`

	// EncryptionKey is a 32-byte key, hex or base64 encoded. Empty disables encryption.
	EncryptionKey string   `mapstructure:"encryption_key" yaml:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys" yaml:"fallback_keys"`

	// Redact masks emails and phone numbers in stored responses.
	Redact         bool     `mapstructure:"redact" yaml:"redact"`
	RedactPatterns []string `mapstructure:"redact_patterns" yaml:"redact_patterns"`
}

// LogConfig configures internal/logging.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file"`
}

// ServeConfig configures the stub scoring service.
type ServeConfig struct {
	Addr          string `mapstructure:"addr" yaml:"addr"`
	CatalogDir    string `mapstructure:"catalog_dir" yaml:"catalog_dir"`
	Seed          uint64 `mapstructure:"seed" yaml:"seed"`
	ScorerFile    string `mapstructure:"scorer_file" yaml:"scorer_file"`
	OpenAIAPIKey  string `mapstructure:"openai_api_key" yaml:"openai_api_key"`
	OpenAIModel   string `mapstructure:"openai_model" yaml:"openai_model"`
	OpenAIBaseURL string `mapstructure:"openai_base_url" yaml:"openai_base_url"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ServerURL:      "http://localhost:8080",
		FallbackSlug:   "friendly-email",
		ShareURL:       "http://giveaiabreak.com",
		ResetOnAgain:   true,
		MinLoading:     2 * time.Second,
		RequestTimeout: 30 * time.Second,
		Typing: TypingConfig{
			Speed: 25 * time.Millisecond,
			Pause: 500 * time.Millisecond,
		},
		Store: StoreConfig{
			Driver: DriverFile,
			Path:   ".giveaibreak/sessions",
			Prefix: "giveaibreak:session:",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Serve: ServeConfig{
			Addr:        ":8080",
			OpenAIModel: "gpt-4o-mini",
		},
	}
}

// LoadOptions say where to read from. Empty paths fall back to the defaults
// when those files exist; explicit paths must exist.
type LoadOptions struct {
	File    string
	EnvFile string
	// Environ replaces os.Environ, for tests.
	Environ []string
}

// Load builds and validates the configuration.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	file, required := opts.File, true
	if file == "" {
		file, required = DefaultFile, false
	}
	if err := loadYAML(file, required, &cfg); err != nil {
		return Config{}, err
	}

	env, err := environment(opts)
	if err != nil {
		return Config{}, err
	}
	if err := decode(fromEnv(env), &cfg, false); err != nil {
		return Config{}, fmt.Errorf("environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadYAML(path string, required bool, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if err := decode(raw, cfg, true); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// environment merges the .env file under the real environment.
func environment(opts LoadOptions) (map[string]string, error) {
	env := map[string]string{}

	envFile, required := opts.EnvFile, true
	if envFile == "" {
		envFile, required = DefaultEnvFile, false
	}
	dotenv, err := godotenv.Read(envFile)
	switch {
	case err == nil:
		for k, v := range dotenv {
			env[k] = v
		}
	case errors.Is(err, os.ErrNotExist) && !required:
	default:
		return nil, fmt.Errorf("read env file: %w", err)
	}

	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env, nil
}

// fromEnv maps GIVEAIBREAK_TYPING_SPEED onto {"typing": {"speed": ...}}.
func fromEnv(env map[string]string) map[string]any {
	out := map[string]any{}
	for _, path := range Keys() {
		name := EnvVar(path)
		v, ok := env[name]
		if !ok {
			continue
		}
		parts := strings.Split(path, ".")
		m := out
		for _, p := range parts[:len(parts)-1] {
			sub, ok := m[p].(map[string]any)
			if !ok {
				sub = map[string]any{}
				m[p] = sub
			}
			m = sub
		}
		m[parts[len(parts)-1]] = v
	}
	return out
}

// EnvVar returns the environment variable for a dotted key.
func EnvVar(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Keys lists every dotted configuration key, e.g. "typing.speed".
func Keys() []string {
	return keysOf(reflect.TypeOf(Config{}), "")
}

func keysOf(t reflect.Type, prefix string) []string {
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		if f.Type.Kind() == reflect.Struct && f.Type != reflect.TypeOf(time.Duration(0)) {
			keys = append(keys, keysOf(f.Type, prefix+tag+".")...)
			continue
		}
		keys = append(keys, prefix+tag)
	}
	return keys
}

func decode(input map[string]any, cfg *Config, strict bool) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      strict,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	var errs []error
	if !c.Offline {
		if u, err := url.Parse(c.ServerURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("server_url %q is not an absolute URL", c.ServerURL))
		}
	}
	if c.MinLoading < 0 {
		errs = append(errs, errors.New("min_loading cannot be negative"))
	}
	if c.Typing.Speed < 0 || c.Typing.Pause < 0 || c.Typing.StartDelay < 0 {
		errs = append(errs, errors.New("typing durations cannot be negative"))
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverFile, DriverSQLite:
		if c.Store.Path == "" {
			errs = append(errs, fmt.Errorf("store.path is required for the %s driver", c.Store.Driver))
		}
	case DriverRedis:
		if c.Store.RedisAddr == "" {
			errs = append(errs, errors.New("store.redis_addr is required for the redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.driver %q", c.Store.Driver))
	}
	if c.Store.EncryptionKey != "" {
		if _, err := DecodeKey(c.Store.EncryptionKey); err != nil {
			errs = append(errs, fmt.Errorf("store.encryption_key: %w", err))
		}
	}
	for _, k := range c.Store.FallbackKeys {
		if _, err := DecodeKey(k); err != nil {
			errs = append(errs, fmt.Errorf("store.fallback_keys: %w", err))
		}
	}
	return errors.Join(errs...)
}

// DecodeKey decodes a 32-byte key given as hex or standard base64.
func DecodeKey(s string) ([]byte, error) {
	if b, err := hex.DecodeString(s); err == nil && len(b) == 32 {
		return b, nil
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil && len(b) == 32 {
		return b, nil
	}
	return nil, errors.New("key must be 32 bytes, hex or base64 encoded")
}
