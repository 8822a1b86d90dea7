package commands

import (
	"context"
	"log/slog"
	"os"
	"time"

	"rosterwatch/lib/osutil"
	"rosterwatch/lib/scrapers/chichi"
	"rosterwatch/lib/timezone"
	"rosterwatch/services/roster"
	"rosterwatch/services/roster/db"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/spf13/cobra"
)

var (
	scrapeOffset       *int
	scrapeMaxOffset    *int
	scrapeCache        *string
	scrapeRebuild      *bool
	scrapeForceRefresh *bool
)

func init() {
	scrapeOffset = scrapeCmd.Flags().Int("offset", 0, "The listing offset to start pagination from.")
	scrapeMaxOffset = scrapeCmd.Flags().Int("max-offset", -1, "Stop pagination once the cursor passes this offset (-1 for no limit).")
	scrapeCache = scrapeCmd.Flags().String("cache", "", "Override the cache file path from the config.")
	scrapeRebuild = scrapeCmd.Flags().Bool("rebuild", false, "Ignore the existing cache and fetch every profile from scratch.")
	scrapeForceRefresh = scrapeCmd.Flags().Bool("force-refresh", false, "Re-fetch profiles that are already complete or permanently failed.")
	rootCmd.AddCommand(scrapeCmd)
}

func credentials() (string, string) {
	username := os.Getenv("ROSTERWATCH_USERNAME")
	password := os.Getenv("ROSTERWATCH_PASSWORD")
	if username == "" || password == "" {
		slog.Error("ROSTERWATCH_USERNAME and ROSTERWATCH_PASSWORD must be set")
		os.Exit(1)
	}
	return username, password
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--offset <n>] [--max-offset <n>] [--rebuild] [--force-refresh]",
	Short: "Crawls the player roster, fetches profiles and writes the cache and html report.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		username, password := credentials()

		cachePath := config.CachePath
		if *scrapeCache != "" {
			cachePath = *scrapeCache
		}

		var cache *roster.Cache
		var err error
		if *scrapeRebuild {
			cache = roster.NewCache(cachePath, config.FlushEvery)
		} else {
			cache, err = roster.LoadCache(cachePath, config.FlushEvery)
			if err != nil {
				osutil.Fatal("failed to load cache", err)
			}
		}
		// the pre-run snapshot is what the report diffs against
		previous := cache.Snapshot()

		client, err := chichi.NewClient(chichi.ClientOptions{
			BaseUrl: config.BaseUrl,
			Timeout: config.Timeout(),
		})
		if err != nil {
			osutil.Fatal("failed to initialize client", err)
		}
		err = client.Login(ctx, username, password)
		if err != nil {
			osutil.Fatal("failed to login", err)
		}

		pw := progress.NewWriter()
		pw.SetAutoStop(false)
		pw.SetMessageWidth(32)
		go pw.Render()
		tracker := &progress.Tracker{Message: "fetching profiles"}
		pw.AppendTracker(tracker)

		stats := roster.NewStatistics()
		runner := roster.NewRunner(roster.RunnerOptions{
			Source:        client,
			Cache:         cache,
			Stats:         stats,
			MaxConcurrent: config.MaxConcurrent,
			ForceRefresh:  *scrapeForceRefresh,
			Observer: func(nickname string, status roster.Status) {
				tracker.Increment(1)
			},
		})

		startedAt := timezone.Now()
		cursor := client.ListPlayers(*scrapeOffset)
		var source roster.RosterSource = cursor
		if *scrapeMaxOffset >= 0 {
			source = roster.CapOffset(cursor, *scrapeMaxOffset)
		}

		runErr := runner.Run(ctx, source)
		tracker.MarkAsDone()
		pw.Stop()

		err = cache.Flush()
		if err != nil {
			osutil.Fatal("failed to persist cache", err)
		}

		totals := stats.Totals()
		if runErr != nil {
			slog.Warn("pagination did not finish", "offset", cursor.Offset(), "err", runErr)
			if totals.PlayersProcessed == 0 {
				osutil.Fatal("no progress was made", runErr)
			}
		}

		err = roster.WriteReport(config.ReportPath, cache.Snapshot(), previous, client.BaseUrl.String())
		if err != nil {
			osutil.Fatal("failed to write report", err)
		}
		slog.Info("wrote report", "path", config.ReportPath, "players", cache.Len())

		recordRun(ctx, startedAt, *scrapeOffset, totals, runErr != nil)
		mailReport(ctx, totals)

		os.Stdout.WriteString(stats.Report() + "\n")
	},
}

func recordRun(ctx context.Context, startedAt time.Time, startOffset int, totals roster.Totals, aborted bool) {
	if config.Database.File == "" && config.Database.Url == "" {
		return
	}
	database, err := config.Database.OpenDB(db.Schema)
	if err != nil {
		slog.Warn("failed to open run history database", "err", err)
		return
	}
	defer database.Close()

	id, err := roster.NewRunStore(database).Record(ctx, startedAt, startOffset, totals, aborted)
	if err != nil {
		slog.Warn("failed to record run", "err", err)
		return
	}
	slog.Info("recorded run", "id", id)
}

func mailReport(ctx context.Context, totals roster.Totals) {
	if !config.Smtp.Enabled() || len(config.Recipients) == 0 {
		return
	}
	contents, err := os.ReadFile(config.ReportPath)
	if err != nil {
		slog.Warn("failed to read report for mailing", "err", err)
		return
	}
	err = roster.MailReport(ctx, config.Smtp, config.Recipients, string(contents), totals)
	if err != nil {
		slog.Warn("failed to mail report", "err", err)
		return
	}
	slog.Info("mailed report", "recipients", len(config.Recipients))
}
