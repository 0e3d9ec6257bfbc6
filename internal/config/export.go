// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// FormatCUE renders the configuration as a config.cue document.
	FormatCUE Format = "cue"
	// FormatYAML renders the configuration as YAML.
	FormatYAML Format = "yaml"
	// FormatTOML renders the configuration as TOML.
	FormatTOML Format = "toml"
)

// ErrInvalidFormat is returned when an export format is not recognized.
var ErrInvalidFormat = errors.New("invalid export format")

type (
	// Format is a configuration export format.
	Format string

	// InvalidFormatError is returned when an export format is not recognized.
	InvalidFormatError struct {
		Value Format
	}
)

// Error implements the error interface for InvalidFormatError.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid export format %q (valid: cue, yaml, toml)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidFormatError) Unwrap() error {
	return ErrInvalidFormat
}

// Export renders cfg in the given format.
func Export(cfg *Config, format Format) ([]byte, error) {
	switch format {
	case FormatCUE, "":
		return []byte(GenerateCUE(cfg)), nil
	case FormatYAML:
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode config as yaml: %w", err)
		}
		return out, nil
	case FormatTOML:
		out, err := toml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode config as toml: %w", err)
		}
		return out, nil
	default:
		return nil, &InvalidFormatError{Value: format}
	}
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// depot configuration file\n\n")

	if cfg.Library != "" {
		fmt.Fprintf(&sb, "library: %q\n\n", cfg.Library)
	}

	sb.WriteString("cache: {\n")
	writeString(&sb, 1, "dir", cfg.Cache.Dir)
	writeString(&sb, 1, "local", cfg.Cache.Local)
	writeString(&sb, 1, "layout", cfg.Cache.Layout)
	writeString(&sb, 1, "timeout", cfg.Cache.Timeout)
	sb.WriteString("}\n")

	if len(cfg.Layouts) > 0 {
		sb.WriteString("\nlayouts: [\n")
		for _, l := range cfg.Layouts {
			sb.WriteString("\t{\n")
			fmt.Fprintf(&sb, "\t\tid: %q\n", l.ID)
			writeString(&sb, 2, "title", l.Title)
			fmt.Fprintf(&sb, "\t\tbase: %q\n", l.Base)
			fmt.Fprintf(&sb, "\t\tfilename: %q\n", l.Filename)
			sb.WriteString("\t},\n")
		}
		sb.WriteString("]\n")
	}

	if len(cfg.Hosts) > 0 {
		sb.WriteString("\nhosts: [\n")
		for _, h := range cfg.Hosts {
			sb.WriteString("\t{\n")
			fmt.Fprintf(&sb, "\t\tid: %q\n", h.ID)
			fmt.Fprintf(&sb, "\t\tpriority: %d\n", h.Priority)
			fmt.Fprintf(&sb, "\t\thost: %q\n", h.Host)
			writeString(&sb, 2, "index", h.Index)
			writeString(&sb, 2, "username", h.Username)
			writeString(&sb, 2, "password", h.Password)
			fmt.Fprintf(&sb, "\t\tenabled: %v\n", h.Enabled)
			fmt.Fprintf(&sb, "\t\ttrusted: %v\n", h.Trusted)
			writeString(&sb, 2, "layout", h.Layout)
			writeString(&sb, 2, "scheme", h.Scheme)
			writeString(&sb, 2, "prompt", h.Prompt)
			if h.RateLimit > 0 {
				fmt.Fprintf(&sb, "\t\trate_limit: %v\n", h.RateLimit)
			}
			writeString(&sb, 2, "endpoint", h.Endpoint)
			writeString(&sb, 2, "region", h.Region)
			sb.WriteString("\t},\n")
		}
		sb.WriteString("]\n")
	}

	if len(cfg.Content) > 0 {
		sb.WriteString("\ncontent: [\n")
		for _, c := range cfg.Content {
			sb.WriteString("\t{\n")
			fmt.Fprintf(&sb, "\t\tid: %q\n", c.ID)
			writeString(&sb, 2, "title", c.Title)
			fmt.Fprintf(&sb, "\t\tcodebase: %q\n", c.Codebase)
			if len(c.Parameters) > 0 {
				sb.WriteString("\t\tparameters: [\n")
				for _, p := range c.Parameters {
					fmt.Fprintf(&sb, "\t\t\t{key: %q, value: %q},\n", p.Key, p.Value)
				}
				sb.WriteString("\t\t]\n")
			}
			sb.WriteString("\t},\n")
		}
		sb.WriteString("]\n")
	}

	if cfg.Proxy != nil && cfg.Proxy.Host != "" {
		sb.WriteString("\nproxy: {\n")
		fmt.Fprintf(&sb, "\thost: %q\n", cfg.Proxy.Host)
		if len(cfg.Proxy.Excludes) > 0 {
			quoted := make([]string, len(cfg.Proxy.Excludes))
			for i, e := range cfg.Proxy.Excludes {
				quoted[i] = fmt.Sprintf("%q", e)
			}
			fmt.Fprintf(&sb, "\texcludes: [%s]\n", strings.Join(quoted, ", "))
		}
		writeString(&sb, 1, "username", cfg.Proxy.Username)
		writeString(&sb, 1, "password", cfg.Proxy.Password)
		sb.WriteString("}\n")
	}

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

// writeString writes an indented `key: "value"` line when value is set.
func writeString(sb *strings.Builder, indent int, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "%s%s: %q\n", strings.Repeat("\t", indent), key, value)
}
