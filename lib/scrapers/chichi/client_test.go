package chichi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client, err := NewClient(ClientOptions{
		BaseUrl: ts.URL,
		Timeout: time.Second * 5,
	})
	require.NoError(t, err)
	return client, ts
}

func TestLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/account/auth", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.FormValue("username") == "steve" && r.FormValue("password") == "hunter2" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	})
	client, _ := testClient(t, mux)

	err := client.Login(context.Background(), "steve", "hunter2")
	require.NoError(t, err)

	err = client.Login(context.Background(), "steve", "wrong")
	require.ErrorIs(t, err, ErrLoginFailed)
}

func TestListPlayersPagination(t *testing.T) {
	// three pages of 2/2/0 entries
	pages := map[string][]map[string]string{
		"0": {
			{"minecraft_nickname": "alpha", "display_name": "Alpha"},
			{"minecraft_nickname": "bravo", "display_name": "Bravo"},
		},
		"50": {
			{"minecraft_nickname": "charlie", "display_name": "Charlie"},
			{"minecraft_nickname": "delta", "display_name": "Delta"},
		},
		"100": {},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/players/search", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		rows, ok := pages[r.FormValue("offset")]
		require.True(t, ok, "unexpected offset %s", r.FormValue("offset"))
		require.NoError(t, json.NewEncoder(w).Encode(rows))
	})
	client, _ := testClient(t, mux)

	cursor := client.ListPlayers(0)
	var all []ListingEntry
	for !cursor.Done() {
		entries, err := cursor.Next(context.Background())
		require.NoError(t, err)
		all = append(all, entries...)
	}

	require.Len(t, all, 4)
	require.Equal(t, "alpha", all[0].Nickname)
	require.Equal(t, "delta", all[3].Nickname)
	require.Equal(t, 0, all[1].Offset)
	require.Equal(t, 50, all[2].Offset)
	require.True(t, cursor.Done())

	// exhausted cursors stay exhausted
	entries, err := cursor.Next(context.Background())
	require.NoError(t, err)
	require.Nil(t, entries)
}

func TestListPlayersResumesFromOffset(t *testing.T) {
	var requestedOffsets []string
	mux := http.NewServeMux()
	mux.HandleFunc("/players/search", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		requestedOffsets = append(requestedOffsets, r.FormValue("offset"))
		fmt.Fprint(w, "[]")
	})
	client, _ := testClient(t, mux)

	cursor := client.ListPlayers(150)
	_, err := cursor.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"150"}, requestedOffsets)
}

func TestListPlayersError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/players/search", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	client, _ := testClient(t, mux)

	cursor := client.ListPlayers(0)
	_, err := cursor.Next(context.Background())

	var listingErr *ListingError
	require.ErrorAs(t, err, &listingErr)
	require.Equal(t, 0, listingErr.Offset)
	require.False(t, cursor.Done())
	// the cursor did not advance, the same offset can be retried
	require.Equal(t, 0, cursor.Offset())
}

func TestFetchProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/player/steve", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, fullProfile)
	})
	mux.HandleFunc("/player/flaky", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client, _ := testClient(t, mux)

	doc, err := client.FetchProfile(context.Background(), "steve")
	require.NoError(t, err)
	require.Contains(t, doc, "status-main")

	_, err = client.FetchProfile(context.Background(), "missing")
	require.ErrorIs(t, err, ErrPlayerNotFound)
	require.False(t, IsTransient(err))

	_, err = client.FetchProfile(context.Background(), "flaky")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.True(t, IsTransient(err))
}
