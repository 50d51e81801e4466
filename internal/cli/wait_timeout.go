package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/devgpu/stackctl/internal/config"
)

const (
	defaultPollInterval = 15 * time.Second
	defaultWaitTimeout  = 40 * time.Minute
)

// resolvePollInterval chooses the effective poll interval: explicit flag,
// then config, then the built-in default.
func resolvePollInterval(cfg *config.Config, explicit string, explicitSet bool) (time.Duration, error) {
	return resolveDuration("poll interval", explicit, explicitSet, cfg.PollInterval, defaultPollInterval)
}

// resolveWaitTimeout chooses the effective wait budget: explicit flag, then
// config, then the built-in default.
func resolveWaitTimeout(cfg *config.Config, explicit string, explicitSet bool) (time.Duration, error) {
	return resolveDuration("timeout", explicit, explicitSet, cfg.WaitTimeout, defaultWaitTimeout)
}

func resolveDuration(name, explicit string, explicitSet bool, configured string, fallback time.Duration) (time.Duration, error) {
	value := ""
	if explicitSet && strings.TrimSpace(explicit) != "" {
		value = strings.TrimSpace(explicit)
	} else if strings.TrimSpace(configured) != "" {
		value = strings.TrimSpace(configured)
	}

	if value == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", name, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %q", name, value)
	}
	return d, nil
}
