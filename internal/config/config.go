// Package config reads the action's inputs and the runner environment.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/reillywatson/firebase-deploy/internal/deploy"
)

// Config holds the step inputs and runner environment for one run.
type Config struct {
	ProjectID              string `mapstructure:"projectid"`
	Context                string `mapstructure:"context"`
	ChannelID              string `mapstructure:"channelid"`
	Expires                string `mapstructure:"expires"`
	EntryPoint             string `mapstructure:"entrypoint"`
	Target                 string `mapstructure:"target"`
	FirebaseToolsVersion   string `mapstructure:"firebasetoolsversion"`
	FirebaseServiceAccount string `mapstructure:"firebaseserviceaccount"`
	RepoToken              string `mapstructure:"repotoken"`
	DisableComment         bool   `mapstructure:"disablecomment"`
	CloudLogging           bool   `mapstructure:"cloudlogging"`

	GitHub GitHubEnv `mapstructure:",squash"`
}

// GitHubEnv is the subset of the runner environment the action reads.
type GitHubEnv struct {
	Repository string `mapstructure:"github_repository"`
	EventName  string `mapstructure:"github_event_name"`
	EventPath  string `mapstructure:"github_event_path"`
	SHA        string `mapstructure:"github_sha"`
	Token      string `mapstructure:"github_token"`
	Debug      bool   `mapstructure:"runner_debug"`
}

// Mode is the deploy mode selected by ChannelID.
func (c *Config) Mode() deploy.Mode {
	return deploy.ModeFor(c.ChannelID)
}

// Load reads inputs from INPUT_* variables (the Actions convention for step
// inputs) plus the runner environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("projectid", "")
	v.SetDefault("context", "hosting")
	v.SetDefault("channelid", "")
	v.SetDefault("expires", "")
	v.SetDefault("entrypoint", ".")
	v.SetDefault("target", "")
	v.SetDefault("firebasetoolsversion", "latest")
	v.SetDefault("firebaseserviceaccount", "")
	v.SetDefault("repotoken", "")
	v.SetDefault("disablecomment", false)
	v.SetDefault("cloudlogging", false)

	v.SetEnvPrefix("INPUT")
	v.AutomaticEnv()

	for _, key := range []string{"github_repository", "github_event_name", "github_event_path", "github_sha", "github_token", "runner_debug"} {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	// GITHUB_TOKEN wins over the repoToken input.
	if cfg.GitHub.Token != "" {
		cfg.RepoToken = cfg.GitHub.Token
	}
	if cfg.EntryPoint == "" {
		cfg.EntryPoint = "."
	}
	if cfg.Context == "" {
		cfg.Context = "hosting"
	}

	return &cfg, nil
}

// Validate checks the inputs that have no usable default.
func (c *Config) Validate() error {
	if c.FirebaseServiceAccount == "" {
		return deploy.Errorf(deploy.KindConfiguration, "load config", "firebaseServiceAccount input is required")
	}
	return nil
}
