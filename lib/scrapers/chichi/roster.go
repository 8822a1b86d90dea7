package chichi

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
)

// PageSize is the number of entries the search endpoint returns per
// offset step.
const PageSize = 50

// ListingEntry is one row of the roster listing: the stable player
// identifier plus the minimal metadata the listing shows.
type ListingEntry struct {
	Nickname    string
	DisplayName string
	// Offset of the page this entry came from, for resumption logging.
	Offset int
}

type searchRow struct {
	MinecraftNickname string `json:"minecraft_nickname"`
	DisplayName       string `json:"display_name"`
}

// RosterCursor pages through the player listing in ascending offset
// order. It is owned by the single task driving pagination and must
// not be shared.
type RosterCursor struct {
	client *Client
	offset int
	done   bool
}

// ListPlayers returns a cursor over the roster starting at the given
// offset. The cursor is restartable: constructing it with a prior
// run's offset resumes pagination from that point.
func (c *Client) ListPlayers(startOffset int) *RosterCursor {
	return &RosterCursor{client: c, offset: startOffset}
}

// Offset reports the offset the next page will be fetched from.
func (rc *RosterCursor) Offset() int {
	return rc.offset
}

func (rc *RosterCursor) Done() bool {
	return rc.done
}

// Next fetches one roster page. It returns a nil slice once the
// listing is exhausted. A failed page fetch returns a *ListingError
// and leaves already-yielded entries valid; calling Next again retries
// the same offset.
func (rc *RosterCursor) Next(ctx context.Context) ([]ListingEntry, error) {
	if rc.done {
		return nil, nil
	}

	res, err := rc.client.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"nickname":      "",
			"sort":          "",
			"filter_role":   "{}",
			"filter_status": "{}",
			"offset":        strconv.Itoa(rc.offset),
		}).
		Post("/players/search")
	if err != nil {
		return nil, &ListingError{Offset: rc.offset, Err: err}
	}
	if res.IsError() {
		return nil, &ListingError{Offset: rc.offset, Err: &StatusError{
			Code: res.StatusCode(),
			Url:  res.Request.URL,
		}}
	}

	var rows []searchRow
	err = json.Unmarshal(res.Body(), &rows)
	if err != nil {
		return nil, &ListingError{Offset: rc.offset, Err: err}
	}

	if len(rows) == 0 {
		rc.done = true
		return nil, nil
	}

	entries := make([]ListingEntry, 0, len(rows))
	for _, row := range rows {
		if row.MinecraftNickname == "" {
			slog.WarnContext(ctx, "roster row without nickname, skipping", "offset", rc.offset)
			continue
		}
		entries = append(entries, ListingEntry{
			Nickname:    row.MinecraftNickname,
			DisplayName: row.DisplayName,
			Offset:      rc.offset,
		})
	}

	slog.DebugContext(ctx, "fetched roster page", "offset", rc.offset, "entries", len(entries))
	rc.offset += PageSize
	return entries, nil
}
