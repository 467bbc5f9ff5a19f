// Package config defines the wager engine's configuration and validation.
package config

import (
	"fmt"
	"strings"

	"github.com/youwont/wagers/internal/calculator"
)

// Config is the root configuration. Fields come from a TOML file and may be
// overridden by WAGERS_* environment variables.
type Config struct {
	LogLevel   string           `toml:"log_level"`
	Settlement SettlementConfig `toml:"settlement"`
	Users      UsersConfig      `toml:"users"`
	Fixtures   FixturesConfig   `toml:"fixtures"`
}

// SettlementConfig selects how resolved pools are paid out.
type SettlementConfig struct {
	// Policy is "parimutuel" (pay by stake) or "even-split" (equal shares).
	Policy string `toml:"policy"`
}

// UsersConfig holds defaults for newly created users.
type UsersConfig struct {
	StartingPoints int64 `toml:"starting_points"`
}

// FixturesConfig controls the sample community.
type FixturesConfig struct {
	LoadSample bool `toml:"load_sample"`
}

// Defaults returns a Config populated with the default values.
func Defaults() Config {
	return Config{
		LogLevel: "info",
		Settlement: SettlementConfig{
			Policy: calculator.PolicyParimutuel,
		},
		Users: UsersConfig{
			StartingPoints: 1000,
		},
		Fixtures: FixturesConfig{
			LoadSample: true,
		},
	}
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks c for invalid values and returns a combined error
// describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if _, err := calculator.PolicyByName(c.Settlement.Policy); err != nil {
		errs = append(errs, fmt.Sprintf("settlement: unknown policy %q (valid: %s, %s)",
			c.Settlement.Policy, calculator.PolicyParimutuel, calculator.PolicyEvenSplit))
	}

	if c.Users.StartingPoints < 0 {
		errs = append(errs, "users: starting_points must be >= 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// SettlementPolicy returns the configured settlement policy.
func (c *Config) SettlementPolicy() (calculator.SettlementPolicy, error) {
	return calculator.PolicyByName(c.Settlement.Policy)
}
