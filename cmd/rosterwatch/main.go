package main

import (
	"context"

	"rosterwatch/cmd/rosterwatch/commands"
	"rosterwatch/lib/osutil"
	"rosterwatch/lib/telemetry"
)

func main() {
	ctx := osutil.SignalContext()

	t, err := telemetry.SetupFromEnv(ctx, "rosterwatch")
	if err != nil {
		osutil.Fatal("failed to setup telemetry", err)
	}
	defer t.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx)

	commands.ExecuteContext(ctx)
}
