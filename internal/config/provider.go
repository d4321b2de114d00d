// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	ConfigFilePath string
	// ConfigDirPath overrides the config directory lookup when set.
	ConfigDirPath string
	// WorkDir is searched for config.cue when the config directory has none.
	// Defaults to the current directory.
	WorkDir string
}

// Provider loads configuration from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
	// LoadWithPath also reports which config file was read.
	LoadWithPath(ctx context.Context, opts LoadOptions) (*Loaded, error)
}

// Loaded is a configuration together with the file it came from.
type Loaded struct {
	Config *Config
	// Path is empty when only defaults and environment were used.
	Path string
}

type fileProvider struct{}

// NewProvider creates a configuration provider reading CUE files.
func NewProvider() Provider {
	return &fileProvider{}
}

func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	l, err := p.LoadWithPath(ctx, opts)
	if err != nil {
		return nil, err
	}
	return l.Config, nil
}

func (p *fileProvider) LoadWithPath(ctx context.Context, opts LoadOptions) (*Loaded, error) {
	return LoadWithPath(ctx, opts)
}

// LoadWithPath loads the configuration and reports which file was used.
func LoadWithPath(ctx context.Context, opts LoadOptions) (*Loaded, error) {
	cfg, path, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Loaded{Config: cfg, Path: path}, nil
}
