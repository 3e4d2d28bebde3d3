// Package config reads the settings of the fa command from the environment
// and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/etnz/folio"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds the settings shared by every command.
type Config struct {
	Database string // sqlite file
	Currency string // default reporting currency
	Options  folio.Options
	Groups   map[string][]string // account groups declared besides the stored ones
	Schedule string              // cron spec of the refresh command
}

// Load reads the .env files, if any, then the environment.
//
//	FOLIO_DB        sqlite file, default "folio.db"
//	FOLIO_CURRENCY  reporting currency, default "EUR"
//	FOLIO_MAX_IRR   ceiling of relevant money weighted returns, default 2
//	FOLIO_FX_NOISE  fx residual ignored in performance records, default 0.01
//	FOLIO_GROUPS    account groups as "name=A1,A2;other=A3"
//	FOLIO_SCHEDULE  refresh schedule, default "@daily"
func Load(files ...string) (*Config, error) {
	// missing .env files are fine
	_ = godotenv.Load(files...)

	cfg := &Config{
		Database: getEnv("FOLIO_DB", "folio.db"),
		Currency: strings.ToUpper(getEnv("FOLIO_CURRENCY", "EUR")),
		Options:  folio.DefaultOptions(),
		Schedule: getEnv("FOLIO_SCHEDULE", "@daily"),
	}
	if err := folio.ValidCurrency(cfg.Currency); err != nil {
		return nil, fmt.Errorf("FOLIO_CURRENCY: %w", err)
	}
	var err error
	if cfg.Options.MaxIRR, err = getDecimal("FOLIO_MAX_IRR", cfg.Options.MaxIRR); err != nil {
		return nil, err
	}
	if cfg.Options.FXNoise, err = getDecimal("FOLIO_FX_NOISE", cfg.Options.FXNoise); err != nil {
		return nil, err
	}
	if cfg.Groups, err = ParseGroups(os.Getenv("FOLIO_GROUPS")); err != nil {
		return nil, fmt.Errorf("FOLIO_GROUPS: %w", err)
	}
	return cfg, nil
}

// ParseGroups reads groups written as "name=A1,A2;other=A3".
func ParseGroups(s string) (map[string][]string, error) {
	groups := make(map[string][]string)
	for _, def := range strings.Split(s, ";") {
		def = strings.TrimSpace(def)
		if def == "" {
			continue
		}
		name, list, ok := strings.Cut(def, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid group %q, want name=account,account", def)
		}
		var accounts []string
		for _, id := range strings.Split(list, ",") {
			if id = strings.TrimSpace(id); id != "" {
				accounts = append(accounts, id)
			}
		}
		if len(accounts) == 0 {
			return nil, fmt.Errorf("group %q has no account", name)
		}
		groups[name] = append(groups[name], accounts...)
	}
	return groups, nil
}

// Apply declares the groups in b.
func (c *Config) Apply(b *folio.Book) error {
	for name, accounts := range c.Groups {
		if err := b.AddGroup(name, accounts...); err != nil {
			return err
		}
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDecimal(key string, defaultValue decimal.Decimal) (decimal.Decimal, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
