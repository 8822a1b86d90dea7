package commands

import (
	"log/slog"

	"rosterwatch/lib/osutil"
	"rosterwatch/lib/scrapers/chichi"
	"rosterwatch/services/roster"

	"github.com/spf13/cobra"
)

var (
	reportCache  *string
	reportOutput *string
)

func init() {
	reportCache = reportCmd.Flags().String("cache", "", "Override the cache file path from the config.")
	reportOutput = reportCmd.Flags().String("output", "", "Override the report output path from the config.")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report [--cache <path>] [--output <path>]",
	Short: "Re-renders the html report from the existing cache without fetching anything.",
	Run: func(cmd *cobra.Command, args []string) {
		cachePath := config.CachePath
		if *reportCache != "" {
			cachePath = *reportCache
		}
		outputPath := config.ReportPath
		if *reportOutput != "" {
			outputPath = *reportOutput
		}

		cache, err := roster.LoadCache(cachePath, config.FlushEvery)
		if err != nil {
			osutil.Fatal("failed to load cache", err)
		}

		baseUrl := config.BaseUrl
		if baseUrl == "" {
			baseUrl = chichi.DefaultBaseUrl
		}

		snapshot := cache.Snapshot()
		err = roster.WriteReport(outputPath, snapshot, snapshot, baseUrl)
		if err != nil {
			osutil.Fatal("failed to write report", err)
		}
		slog.Info("wrote report", "path", outputPath, "players", cache.Len())
	},
}
