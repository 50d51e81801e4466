// Package config contains the loader and typed model for the stackctl
// configuration file and its environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	envconf "github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/devgpu/stackctl/internal/env"
)

// Config describes how stackctl reaches the control plane and which stack
// it manages. Values come from defaults, then the YAML file, then
// environment variables; command-line flags override all of them.
type Config struct {
	// StackName is the reserved name of the managed stack.
	StackName string `yaml:"stackName" env:"STACKCTL_STACK_NAME"`
	// Region is the AWS region the stack lives in.
	Region string `yaml:"region" env:"STACKCTL_REGION"`
	// Profile selects a shared AWS config profile.
	Profile string `yaml:"profile" env:"STACKCTL_PROFILE"`
	// Template is the path to the infrastructure template file.
	Template string `yaml:"template" env:"STACKCTL_TEMPLATE"`
	// SSHUser is the login user in the derived SSH command.
	SSHUser string `yaml:"sshUser" env:"STACKCTL_SSH_USER"`
	// PollInterval is the string-form delay between status polls (e.g. "15s").
	PollInterval string `yaml:"pollInterval" env:"STACKCTL_POLL_INTERVAL"`
	// WaitTimeout is the string-form wait budget for blocking actions (e.g. "40m").
	WaitTimeout string `yaml:"waitTimeout" env:"STACKCTL_WAIT_TIMEOUT"`
	// ShowEvents streams stack events during waits.
	ShowEvents bool `yaml:"showEvents" env:"STACKCTL_SHOW_EVENTS"`
	// EnvFiles lists .env files loaded before environment overrides apply.
	EnvFiles []string `yaml:"envFiles,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		StackName:    "t4-dev-environment",
		Region:       "us-east-1",
		Template:     "deploy/cloudformation.yaml",
		SSHUser:      "ec2-user",
		PollInterval: "15s",
		WaitTimeout:  "40m",
	}
}

// Load reads the config file at path, layers .env files and environment
// variables on top of the defaults, and returns the result. A missing file
// at the default location is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	baseDir := "."
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %q: %w", path, err)
			}
			baseDir = filepath.Dir(path)
		case errors.Is(err, os.ErrNotExist):
			// Defaults apply.
		default:
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	envFileVars, err := env.LoadEnvFiles(baseDir, cfg.EnvFiles)
	if err != nil {
		return nil, err
	}
	merged := env.Merge(env.FromOS(), envFileVars)

	if err := envconf.ParseWithOptions(&cfg, envconf.Options{Environment: merged}); err != nil {
		return nil, fmt.Errorf("apply environment overrides: %w", err)
	}

	return &cfg, nil
}

// ReadTemplate loads the infrastructure template body from the configured
// path.
func (c *Config) ReadTemplate() (string, error) {
	data, err := os.ReadFile(c.Template)
	if err != nil {
		return "", fmt.Errorf("read template %q: %w", c.Template, err)
	}
	return string(data), nil
}
