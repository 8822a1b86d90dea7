package commands

import (
	"os"
	"time"

	"rosterwatch/lib/osutil"
	"rosterwatch/services/roster"
	"rosterwatch/services/roster/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var runsLimit *int

func init() {
	runsLimit = runsCmd.Flags().Int("limit", 20, "The maximum number of runs to show.")
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs [--limit <n>]",
	Short: "Lists the most recent scrape runs recorded in the run history database.",
	Run: func(cmd *cobra.Command, args []string) {
		database, err := config.Database.OpenDB(db.Schema)
		if err != nil {
			osutil.Fatal("failed to open run history database", err)
		}
		defer database.Close()

		runs, err := roster.NewRunStore(database).List(cmd.Context(), *runsLimit)
		if err != nil {
			osutil.Fatal("failed to list runs", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{
			"id", "started", "duration", "offset",
			"players", "requests", "retries", "successes", "failures", "aborted",
		})
		for _, run := range runs {
			t.AppendRow(table.Row{
				run.ID,
				run.StartedAt.Format(time.DateTime),
				run.FinishedAt.Sub(run.StartedAt).Round(time.Second),
				run.StartOffset,
				run.PlayersProcessed,
				run.RequestsMade,
				run.Retries,
				run.Successes,
				run.Failures,
				run.Aborted,
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
