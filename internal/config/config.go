// Package config loads application configuration from environment
// variables and defines the persisted ledger settings surface.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds process-level configuration. Ledger settings (currency,
// category sets, notifications) are persisted with the ledger itself;
// this struct covers wiring only.
type Config struct {
	// HTTP server
	Port string `koanf:"TALLY_PORT"`

	// Backend selection: memory, sqlite or postgres
	Backend string `koanf:"TALLY_BACKEND"`

	// SQLite
	SQLitePath string `koanf:"TALLY_SQLITE_PATH"`

	// Postgres
	PostgresDSN string `koanf:"TALLY_POSTGRES_DSN"`

	// AMQP advisory transport
	AMQPURL      string `koanf:"TALLY_AMQP_URL"`
	AMQPExchange string `koanf:"TALLY_AMQP_EXCHANGE"`
	AMQPQueue    string `koanf:"TALLY_AMQP_QUEUE"`

	// Google Sheets export sink (optional)
	SheetsSpreadsheetID string `koanf:"TALLY_SHEETS_SPREADSHEET_ID"`
	SheetsSheetName     string `koanf:"TALLY_SHEETS_SHEET_NAME"`

	// Worker
	ReminderTickInterval time.Duration `koanf:"TALLY_REMINDER_TICK"`
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                 "8081",
		Backend:              "memory",
		SQLitePath:           "./data/tally.db",
		AMQPExchange:         "tally",
		AMQPQueue:            "advisories",
		SheetsSheetName:      "Transactions",
		ReminderTickInterval: time.Minute,
	}

	k := koanf.New(".")
	if err := k.Load(env.Provider("TALLY_", ".", nil), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.Backend {
	case "memory", "sqlite", "postgres":
	default:
		problems = append(problems, fmt.Sprintf("invalid backend %q: must be memory, sqlite or postgres", c.Backend))
	}

	if c.Backend == "sqlite" {
		if c.SQLitePath == "" {
			problems = append(problems, "SQLite path cannot be empty when using the sqlite backend")
		} else if dir := filepath.Dir(c.SQLitePath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					problems = append(problems, fmt.Sprintf("cannot create SQLite directory %q: %v", dir, err))
				}
			}
		}
	}

	if c.Backend == "postgres" && c.PostgresDSN == "" {
		problems = append(problems, "TALLY_POSTGRES_DSN is required when using the postgres backend")
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL %q: %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme %q: must be amqp or amqps", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange cannot be empty when an AMQP URL is set")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue cannot be empty when an AMQP URL is set")
		}
	}

	if c.ReminderTickInterval < time.Second {
		problems = append(problems, fmt.Sprintf("invalid reminder tick %v: must be at least 1 second", c.ReminderTickInterval))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}
