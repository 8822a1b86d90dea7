package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"rosterwatch/lib/configuration"
	configlibsql "rosterwatch/lib/configuration/libsql"
	"rosterwatch/lib/osutil"
	"rosterwatch/lib/telemetry"
	"rosterwatch/services/roster"

	"github.com/spf13/cobra"
)

type Config struct {
	BaseUrl    string `json:"base_url"`
	CachePath  string `json:"cache_path"`
	ReportPath string `json:"report_path"`
	LogPath    string `json:"log_path"`
	Debug      bool   `json:"debug"`
	// TimeoutSeconds bounds each individual http request attempt.
	TimeoutSeconds int `json:"timeout_seconds"`
	MaxConcurrent  int `json:"max_concurrent"`
	// FlushEvery is the cache persistence cadence in upserts.
	FlushEvery int                 `json:"flush_every"`
	Database   configlibsql.Struct `json:"database"`
	Smtp       roster.SmtpConfig   `json:"smtp"`
	Recipients []string            `json:"recipients"`
}

func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return time.Second * 30
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

var config Config

var rootCmd = &cobra.Command{
	Use:   "rosterwatch",
	Short: "rosterwatch crawls the serverchichi player roster into a local cache and html report.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg, err := configuration.ReadConfig[Config]("config.json5")
		if err != nil {
			osutil.Fatal("failed to read config", err)
		}
		if cfg.CachePath == "" {
			cfg.CachePath = "player_data.json"
		}
		if cfg.ReportPath == "" {
			cfg.ReportPath = "players_report.html"
		}
		config = cfg

		telemetry.InitSlog(telemetry.SlogOptions{
			Debug: config.Debug,
			File:  config.LogPath,
		})
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
