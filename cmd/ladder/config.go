package main

import (
	"fmt"
	"github.com/joho/godotenv"
	"github.com/lukasz-zimnoch/ladder"
	"github.com/lukasz-zimnoch/ladder/bybit"
	"github.com/sherifabdlnaby/configuro"
	"os"
	"time"
)

// Config values can be set using either environment variables with `CONFIG_`
// prefix or config.yml file placed in working directory. A `.env` file in
// the working directory is loaded into the environment first.
// See https://github.com/sherifabdlnaby/configuro.
type Config struct {
	Logging  Logging
	Bybit    Bybit
	Schedule Schedule
	Database Database
	Mail     Mail
	PubSub   PubSub
}

type Logging struct {
	Level  string
	Format string
}

type Bybit struct {
	ApiKey          string `validate:"required"`
	SecretKey       string `validate:"required"`
	RecvWindow      string
	KlineURL        string `validate:"required"`
	BatchOrderURL   string `validate:"required"`
	BatchCancelURL  string `validate:"required"`
	InstrumentsURL  string
	SyncInstruments bool
	Symbols         []string `validate:"required,min=1"`
}

type Schedule struct {
	HoldingPeriod string
	Cooldown      string
}

func (s *Schedule) durations() (time.Duration, time.Duration, error) {
	holdingPeriod, err := time.ParseDuration(s.HoldingPeriod)
	if err != nil {
		return 0, 0, fmt.Errorf("could not parse holding period: [%v]", err)
	}

	cooldown, err := time.ParseDuration(s.Cooldown)
	if err != nil {
		return 0, 0, fmt.Errorf("could not parse cooldown: [%v]", err)
	}

	return holdingPeriod, cooldown, nil
}

// Database is optional; the order journal stays in memory when Address
// is empty.
type Database struct {
	Address      string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MigrationDir string
}

type Mail struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Recipient string
}

type PubSub struct {
	ProjectID            string
	NotificationsTopicID string
}

// envAliases keeps the plain variable names working alongside the
// CONFIG_-prefixed ones.
var envAliases = map[string]func(config *Config) *string{
	"API_KEY":          func(config *Config) *string { return &config.Bybit.ApiKey },
	"API_SECRET":       func(config *Config) *string { return &config.Bybit.SecretKey },
	"KLINE_URL":        func(config *Config) *string { return &config.Bybit.KlineURL },
	"BATCH_ORDER_URL":  func(config *Config) *string { return &config.Bybit.BatchOrderURL },
	"BATCH_CANCEL_URL": func(config *Config) *string { return &config.Bybit.BatchCancelURL },
}

func readConfig() (*Config, error) {
	// Missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	loader, err := configuro.NewConfig()
	if err != nil {
		return nil, err
	}

	// Default config values.
	config := &Config{
		Logging: Logging{
			Level: "info",
		},
		Bybit: Bybit{
			RecvWindow:     bybit.DefaultRecvWindow,
			InstrumentsURL: bybit.DefaultInstrumentsURL,
			Symbols:        []string{"BEAMUSDT", "SEIUSDT", "AGIXUSDT"},
		},
		Schedule: Schedule{
			HoldingPeriod: "24h",
			Cooldown:      "60s",
		},
		Database: Database{
			SSLMode:      "disable",
			MigrationDir: "database/migrations",
		},
		Mail: Mail{
			Port: 587,
		},
	}

	err = loader.Load(config)
	if err != nil {
		return nil, err
	}

	applyEnvAliases(config, os.LookupEnv)

	err = loader.Validate(config)
	if err != nil {
		return nil, ladder.NewError(ladder.KindConfigMissing, "read config", err)
	}

	if _, _, err := config.Schedule.durations(); err != nil {
		return nil, ladder.NewError(ladder.KindConfigMissing, "read config", err)
	}

	return config, nil
}

func applyEnvAliases(
	config *Config,
	lookupEnv func(key string) (string, bool),
) {
	for name, target := range envAliases {
		value, ok := lookupEnv(name)
		if !ok || len(value) == 0 {
			continue
		}

		if field := target(config); len(*field) == 0 {
			*field = value
		}
	}
}
