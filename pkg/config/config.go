// Package config loads the settings used to bridge bound inputs to their
// native widgets.
//
// Settings come from an optional nativebind.yaml file, then from NATIVEBIND_*
// environment variables (an optional .env file is loaded first), and finally
// from built-in defaults for anything left empty.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up by Load.
const FileName = "nativebind.yaml"

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "NATIVEBIND_"

// Defaults applied by Resolve.
const (
	DefaultChannel           = "nativebind/interop"
	DefaultRegisterMethod    = "registerHandler"
	DefaultReleaseMethod     = "releaseHandler"
	DefaultSetPropertyMethod = "setProperty"
	DefaultEventName         = "change"
	DefaultCallbackName      = "HandleChange"
	DefaultRegisterTimeout   = 5 * time.Second
)

var (
	// ErrParsingConfig is returned when the file or environment cannot be parsed.
	ErrParsingConfig = errors.New("failed to parse nativebind config")

	// ErrInvalidConfig is returned when a resolved value is unusable.
	ErrInvalidConfig = errors.New("invalid nativebind config")
)

// Config represents the optional nativebind.yaml configuration.
type Config struct {
	Interop Interop `yaml:"interop"`
}

// Interop controls how inputs register with the native side.
type Interop struct {
	// Channel is the method channel shared with the native bridge.
	Channel string `yaml:"channel,omitempty" env:"CHANNEL"`
	// RegisterMethod subscribes a Go handler to a widget event.
	RegisterMethod string `yaml:"register_method,omitempty" env:"REGISTER_METHOD"`
	// ReleaseMethod drops a previous subscription.
	ReleaseMethod string `yaml:"release_method,omitempty" env:"RELEASE_METHOD"`
	// SetPropertyMethod writes a value back to a widget.
	SetPropertyMethod string `yaml:"set_property_method,omitempty" env:"SET_PROPERTY_METHOD"`
	// EventName is the widget event inputs subscribe to by default.
	EventName string `yaml:"event,omitempty" env:"EVENT"`
	// CallbackName is the Go callback the native side invokes.
	CallbackName string `yaml:"callback,omitempty" env:"CALLBACK"`
	// RegisterTimeout bounds a single registration round trip.
	RegisterTimeout time.Duration `yaml:"register_timeout,omitempty" env:"REGISTER_TIMEOUT"`
}

var dotenvOnce sync.Once

// LoadOptional reads nativebind.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParsingConfig, FileName, err)
	}
	return &cfg, nil
}

// Load reads nativebind.yaml (if present), applies NATIVEBIND_* environment
// overrides and resolves defaults.
func Load(dir string) (*Interop, error) {
	dotenvOnce.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})

	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	if err := env.ParseWithOptions(&cfg.Interop, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, errors.Join(ErrParsingConfig, err)
	}

	return Resolve(cfg.Interop)
}

// Resolve fills defaults for empty fields and validates the result.
func Resolve(in Interop) (*Interop, error) {
	out := in
	out.Channel = orDefault(out.Channel, DefaultChannel)
	out.RegisterMethod = orDefault(out.RegisterMethod, DefaultRegisterMethod)
	out.ReleaseMethod = orDefault(out.ReleaseMethod, DefaultReleaseMethod)
	out.SetPropertyMethod = orDefault(out.SetPropertyMethod, DefaultSetPropertyMethod)
	out.EventName = orDefault(out.EventName, DefaultEventName)
	out.CallbackName = orDefault(out.CallbackName, DefaultCallbackName)
	if out.RegisterTimeout == 0 {
		out.RegisterTimeout = DefaultRegisterTimeout
	}

	if out.RegisterTimeout < 0 {
		return nil, fmt.Errorf("%w: register_timeout must be positive (got %s)", ErrInvalidConfig, out.RegisterTimeout)
	}
	if strings.ContainsAny(out.Channel, " \t\n") {
		return nil, fmt.Errorf("%w: channel cannot contain whitespace (%q)", ErrInvalidConfig, out.Channel)
	}
	return &out, nil
}

// Default returns the resolved built-in configuration.
func Default() Interop {
	cfg, _ := Resolve(Interop{})
	return *cfg
}

func orDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}
