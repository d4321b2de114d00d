// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkgdep/pkgdep/pkg/exportdecl"
)

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidBundlePlugin is returned when a BundlePlugin is not "groupId:artifactId".
	ErrInvalidBundlePlugin = errors.New("invalid bundle plugin")
	// ErrInvalidManifestName is returned for empty names or names containing a path separator.
	ErrInvalidManifestName = errors.New("invalid manifest name")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level of log messages written to stderr.
	LogLevel string

	// BundlePlugin identifies the build plugin whose configuration holds
	// Export-Package instructions, as "groupId:artifactId".
	BundlePlugin string

	// InvalidValueError reports a field value that is not allowed.
	InvalidValueError struct {
		Field string
		Value string
		Err   error
	}

	// InvalidConfigError collects field-level validation errors.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		Repository RepositoryConfig `json:"repository" mapstructure:"repository"`
		LogLevel   LogLevel         `json:"log_level" mapstructure:"log_level"`
		UI         UIConfig         `json:"ui" mapstructure:"ui"`
		Export     ExportConfig     `json:"export" mapstructure:"export"`
	}

	// RepositoryConfig locates the package repository.
	RepositoryConfig struct {
		// Root is the repository directory. Empty selects ~/.pkgdep/repository.
		Root string `json:"root" mapstructure:"root"`
	}

	UIConfig struct {
		// Verbose prints error chains and catalog help for failures.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// ExportConfig holds the defaults of 'pkgdep export'.
	ExportConfig struct {
		ManifestName string       `json:"manifest_name" mapstructure:"manifest_name"`
		BundlePlugin BundlePlugin `json:"bundle_plugin" mapstructure:"bundle_plugin"`
	}
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Repository: RepositoryConfig{Root: ""},
		LogLevel:   LogLevelInfo,
		UI:         UIConfig{Verbose: false},
		Export: ExportConfig{
			ManifestName: exportdecl.DefaultManifestName,
			BundlePlugin: BundlePlugin(exportdecl.DefaultBundlePluginGroup + ":" + exportdecl.DefaultBundlePluginArtifact),
		},
	}
}

// IsValid reports whether l is one of the known levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidValueError{Field: "log_level", Value: string(l), Err: ErrInvalidLogLevel}}
	}
}

// Split returns the plugin's groupId and artifactId.
func (p BundlePlugin) Split() (group, artifact string, err error) {
	group, artifact, ok := strings.Cut(string(p), ":")
	if !ok || group == "" || artifact == "" || strings.Contains(artifact, ":") {
		return "", "", &InvalidValueError{Field: "export.bundle_plugin", Value: string(p), Err: ErrInvalidBundlePlugin}
	}
	return group, artifact, nil
}

func (p BundlePlugin) IsValid() (bool, []error) {
	if _, _, err := p.Split(); err != nil {
		return false, []error{err}
	}
	return true, nil
}

// IsValid checks the fields CUE cannot check once environment overrides
// have been applied.
func (c ExportConfig) IsValid() (bool, []error) {
	var errs []error
	if c.ManifestName == "" || strings.ContainsAny(c.ManifestName, `/\`) {
		errs = append(errs, &InvalidValueError{Field: "export.manifest_name", Value: c.ManifestName, Err: ErrInvalidManifestName})
	}
	if valid, fieldErrs := c.BundlePlugin.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	return len(errs) == 0, errs
}

// IsValid returns whether every field of the Config is valid.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.LogLevel.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Export.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("%s: %v %q", e.Field, e.Err, e.Value)
}

func (e *InvalidValueError) Unwrap() error { return e.Err }

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig and the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
