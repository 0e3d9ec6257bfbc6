// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/depotkit/depot/pkg/transit"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	redacted = "********"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidTimeout is returned when cache.timeout is not a non-negative duration.
	ErrInvalidTimeout = errors.New("invalid timeout")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidTimeoutError is returned when cache.timeout cannot be parsed.
	InvalidTimeoutError struct {
		Value string
		Err   error
	}

	// InvalidConfigError aggregates field validation failures.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Library is the library.cue describing the resource graph.
		Library string `json:"library,omitempty" yaml:"library,omitempty" toml:"library,omitempty" mapstructure:"library"`
		// Cache configures the artifact cache.
		Cache CacheConfig `json:"cache" yaml:"cache" toml:"cache" mapstructure:"cache"`
		// Layouts declares pattern layouts in addition to classic and eclipse.
		Layouts []transit.LayoutDirective `json:"layouts,omitempty" yaml:"layouts,omitempty" toml:"layouts,omitempty" mapstructure:"layouts"`
		// Hosts lists the remote hosts consulted on a cache miss.
		Hosts []transit.HostDirective `json:"hosts,omitempty" yaml:"hosts,omitempty" toml:"hosts,omitempty" mapstructure:"hosts"`
		// Content binds artifact types to content handlers.
		Content []transit.ContentDirective `json:"content,omitempty" yaml:"content,omitempty" toml:"content,omitempty" mapstructure:"content"`
		// Proxy is the optional HTTP proxy for remote hosts.
		Proxy *transit.ProxyDirective `json:"proxy,omitempty" yaml:"proxy,omitempty" toml:"proxy,omitempty" mapstructure:"proxy"`
		// UI configures terminal output.
		UI UIConfig `json:"ui" yaml:"ui" toml:"ui" mapstructure:"ui"`
	}

	// CacheConfig configures the cache directories and fetch behavior.
	CacheConfig struct {
		// Dir is the cache root. Empty means the user cache directory.
		Dir string `json:"dir,omitempty" yaml:"dir,omitempty" toml:"dir,omitempty" mapstructure:"dir"`
		// Local is a local repository consulted before the cache.
		Local string `json:"local,omitempty" yaml:"local,omitempty" toml:"local,omitempty" mapstructure:"local"`
		// Layout is the default layout id.
		Layout string `json:"layout,omitempty" yaml:"layout,omitempty" toml:"layout,omitempty" mapstructure:"layout"`
		// Timeout bounds each remote fetch, as a Go duration string.
		Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout,omitempty" mapstructure:"timeout"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" yaml:"color_scheme" toml:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" yaml:"verbose" toml:"verbose" mapstructure:"verbose"`
	}
)

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidTimeoutError.
func (e *InvalidTimeoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid timeout %q: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("invalid timeout %q: must not be negative", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidTimeoutError) Unwrap() error {
	return ErrInvalidTimeout
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns the sentinel and the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// TimeoutDuration parses Timeout. An empty value means no limit.
func (c CacheConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, &InvalidTimeoutError{Value: c.Timeout, Err: err}
	}
	if d < 0 {
		return 0, &InvalidTimeoutError{Value: c.Timeout}
	}
	return d, nil
}

// IsValid validates the UI settings.
func (c UIConfig) IsValid() (bool, []error) {
	return c.ColorScheme.IsValid()
}

// IsValid validates the configuration and the cache directive derived from it.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if _, err := c.CacheDirective(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// CacheDirective converts the configuration into a validated cache directive.
// An empty cache directory falls back to transit.DefaultCacheDir.
func (c *Config) CacheDirective() (transit.CacheDirective, error) {
	timeout, err := c.Cache.TimeoutDuration()
	if err != nil {
		return transit.CacheDirective{}, err
	}

	d := transit.CacheDirective{
		Cache:   c.Cache.Dir,
		Local:   c.Cache.Local,
		Layout:  c.Cache.Layout,
		Timeout: timeout,
		Layouts: slices.Clone(c.Layouts),
		Hosts:   slices.Clone(c.Hosts),
		Content: slices.Clone(c.Content),
	}
	if c.Proxy != nil && c.Proxy.Host != "" {
		d = d.WithProxy(c.Proxy)
	}
	if d.Cache == "" {
		dir, err := transit.DefaultCacheDir()
		if err != nil {
			return transit.CacheDirective{}, err
		}
		d.Cache = dir
	}

	if err := d.Validate(); err != nil {
		return transit.CacheDirective{}, err
	}
	return d, nil
}

// Redacted returns a copy with host and proxy passwords masked.
func (c *Config) Redacted() *Config {
	out := *c
	out.Hosts = slices.Clone(c.Hosts)
	for i := range out.Hosts {
		if out.Hosts[i].Password != "" {
			out.Hosts[i].Password = redacted
		}
	}
	if c.Proxy != nil {
		p := *c.Proxy
		if p.Password != "" {
			p.Password = redacted
		}
		out.Proxy = &p
	}
	return &out
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Layout: transit.ClassicLayoutID,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
