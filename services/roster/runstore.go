package roster

import (
	"context"
	"database/sql"
	"time"

	"rosterwatch/services/roster/db"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Run is one recorded scrape run.
type Run struct {
	ID               string
	StartedAt        time.Time
	FinishedAt       time.Time
	StartOffset      int
	PlayersProcessed int
	RequestsMade     int
	Retries          int
	Successes        int
	Failures         int
	Aborted          bool
}

// RunStore persists per-run summaries so past runs can be inspected
// without digging through logs.
type RunStore struct {
	qry *db.Queries
}

func NewRunStore(database *sql.DB) RunStore {
	return RunStore{qry: db.New(database)}
}

// Record saves the outcome of a finished run and returns its id.
func (s RunStore) Record(ctx context.Context, startedAt time.Time, startOffset int, totals Totals, aborted bool) (string, error) {
	ctx, span := tracer.Start(ctx, "RunStore:Record")
	defer span.End()

	id, err := random.String(8)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to generate run id")
		return "", err
	}
	span.SetAttributes(attribute.String("run_id", id))

	failed := 0
	for _, n := range totals.Failures {
		failed += n
	}
	aborting := int64(0)
	if aborted {
		aborting = 1
	}

	err = s.qry.CreateRun(ctx, db.CreateRunParams{
		ID:               id,
		Startedat:        startedAt.Unix(),
		Finishedat:       startedAt.Add(totals.Duration).Unix(),
		Startoffset:      int64(startOffset),
		Playersprocessed: int64(totals.PlayersProcessed),
		Requestsmade:     int64(totals.RequestsMade),
		Retries:          int64(totals.Retries),
		Successes:        int64(totals.Successes),
		Failures:         int64(failed),
		Aborted:          aborting,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to insert run row")
		return "", err
	}
	return id, nil
}

// List returns the most recent runs, newest first.
func (s RunStore) List(ctx context.Context, limit int) ([]Run, error) {
	ctx, span := tracer.Start(ctx, "RunStore:List")
	defer span.End()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.qry.ListRuns(ctx, int64(limit))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list runs")
		return nil, err
	}

	runs := make([]Run, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, Run{
			ID:               row.ID,
			StartedAt:        time.Unix(row.Startedat, 0),
			FinishedAt:       time.Unix(row.Finishedat, 0),
			StartOffset:      int(row.Startoffset),
			PlayersProcessed: int(row.Playersprocessed),
			RequestsMade:     int(row.Requestsmade),
			Retries:          int(row.Retries),
			Successes:        int(row.Successes),
			Failures:         int(row.Failures),
			Aborted:          row.Aborted != 0,
		})
	}
	return runs, nil
}
