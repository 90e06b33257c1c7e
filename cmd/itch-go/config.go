package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marketfeeds/itch-go"
)

// Config is the decode pipeline's tunables: ticker universe, book
// depth, sink backend and batching capacity, and the calendar date
// stamped onto every persisted record. Bound from an optional config
// file via viper, with pflag-registered command-line overrides taking
// precedence, matching the root/subcommand flag layering cobra and
// viper are built for.
type Config struct {
	Tickers  []string
	Depth    int
	Capacity int
	Format   string
	OutDir   string
	Date     string
	Version  string
}

func loadConfig(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	v.SetConfigName("itch-go")
	v.AddConfigPath(".")
	v.SetEnvPrefix("ITCH_GO")
	v.AutomaticEnv()

	v.SetDefault("depth", 10)
	v.SetDefault("capacity", 1000)
	v.SetDefault("format", "csv")
	v.SetDefault("out", ".")
	v.SetDefault("version", "5.0")
	v.SetDefault("tickers", []string{itch.EveryTicker})

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	cfg := &Config{
		Tickers:  v.GetStringSlice("tickers"),
		Depth:    v.GetInt("depth"),
		Capacity: v.GetInt("capacity"),
		Format:   v.GetString("format"),
		OutDir:   v.GetString("out"),
		Date:     v.GetString("date"),
		Version:  v.GetString("version"),
	}
	if cfg.Date == "" {
		return nil, fmt.Errorf("--date is required (the calendar date the input file covers)")
	}
	if len(cfg.Tickers) == 0 {
		cfg.Tickers = []string{itch.EveryTicker}
	}
	return cfg, nil
}

func (c *Config) protocolVersion() (itch.Version, error) {
	switch c.Version {
	case "4.1":
		return itch.V41, nil
	case "5.0":
		return itch.V50, nil
	default:
		return 0, fmt.Errorf("unknown protocol version %q (want 4.1 or 5.0)", c.Version)
	}
}
