package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Run struct {
	ID               string
	Startedat        int64
	Finishedat       int64
	Startoffset      int64
	Playersprocessed int64
	Requestsmade     int64
	Retries          int64
	Successes        int64
	Failures         int64
	Aborted          int64
}

const createRun = `
insert into runs (
    id, startedat, finishedat, startoffset,
    playersprocessed, requestsmade, retries,
    successes, failures, aborted
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateRunParams struct {
	ID               string
	Startedat        int64
	Finishedat       int64
	Startoffset      int64
	Playersprocessed int64
	Requestsmade     int64
	Retries          int64
	Successes        int64
	Failures         int64
	Aborted          int64
}

func (q *Queries) CreateRun(ctx context.Context, arg CreateRunParams) error {
	_, err := q.db.ExecContext(ctx, createRun,
		arg.ID,
		arg.Startedat,
		arg.Finishedat,
		arg.Startoffset,
		arg.Playersprocessed,
		arg.Requestsmade,
		arg.Retries,
		arg.Successes,
		arg.Failures,
		arg.Aborted,
	)
	return err
}

const listRuns = `
select id, startedat, finishedat, startoffset,
    playersprocessed, requestsmade, retries,
    successes, failures, aborted
from runs
order by startedat desc
limit ?
`

func (q *Queries) ListRuns(ctx context.Context, limit int64) ([]Run, error) {
	rows, err := q.db.QueryContext(ctx, listRuns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Run
	for rows.Next() {
		var i Run
		err := rows.Scan(
			&i.ID,
			&i.Startedat,
			&i.Finishedat,
			&i.Startoffset,
			&i.Playersprocessed,
			&i.Requestsmade,
			&i.Retries,
			&i.Successes,
			&i.Failures,
			&i.Aborted,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getRun = `
select id, startedat, finishedat, startoffset,
    playersprocessed, requestsmade, retries,
    successes, failures, aborted
from runs
where id = ?
`

func (q *Queries) GetRun(ctx context.Context, id string) (Run, error) {
	row := q.db.QueryRowContext(ctx, getRun, id)
	var i Run
	err := row.Scan(
		&i.ID,
		&i.Startedat,
		&i.Finishedat,
		&i.Startoffset,
		&i.Playersprocessed,
		&i.Requestsmade,
		&i.Retries,
		&i.Successes,
		&i.Failures,
		&i.Aborted,
	)
	return i, err
}
