package chichi

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const fullProfile = `
<html><body>
<div class="playerOnline active"></div>
<p class="status-main">Играет на сервере</p>
<p class="clan-name">Лесные</p>
<div class="player-plus-content"><p>СЧ+ до 2026-01-01</p></div>
<div class="socials">
  <a class="social telegram" href="https://t.me/steve">Telegram</a>
  <a class="social discord" href="https://discord.gg/abc">Discord</a>
</div>
<div class="stats">
  <p><span class="material-symbols-rounded">schedule</span>Наиграно: <b>120</b> часов</p>
  <p>Убийств: 42</p>
</div>
<div class="rp-container">
  <div class="rp-card"><h3>Травник</h3><p>Собирает <b>травы</b></p></div>
</div>
<div class="roles">
  <span>Житель</span>
  <span></span>
  <span>Модератор</span>
</div>
</body></html>
`

const partialProfile = `
<html><body>
<div class="playerOnline"></div>
<p class="status-main">Оффлайн уже неделю</p>
<div class="stats">
  <p>Наиграно: 3 часа</p>
</div>
</body></html>
`

func TestParseFullProfile(t *testing.T) {
	record, err := ParseProfile(fullProfile)
	require.NoError(t, err)

	require.True(t, record.Complete())
	require.Empty(t, record.MissingFields())

	require.NotNil(t, record.Status)
	require.Equal(t, StatusOnline, *record.Status)
	require.NotNil(t, record.StatusMain)
	require.Equal(t, "Играет на сервере", *record.StatusMain)
	require.NotNil(t, record.Clan)
	require.Equal(t, "Лесные", *record.Clan)
	require.NotNil(t, record.PlayerPlus)
	require.Equal(t, "СЧ+ до 2026-01-01", *record.PlayerPlus)
	require.NotNil(t, record.Telegram)
	require.Equal(t, "https://t.me/steve", *record.Telegram)

	require.Equal(t, []Social{
		{Name: "Telegram", Url: "https://t.me/steve"},
		{Name: "Discord", Url: "https://discord.gg/abc"},
	}, record.Socials)
	require.Equal(t, []string{"Наиграно: 120 часов", "Убийств: 42"}, record.Stats)
	require.Equal(t, []RPCard{
		{Title: "Травник", Body: "Собирает травы"},
	}, record.RPCards)
	require.Equal(t, []string{"Житель", "Модератор"}, record.Roles)
}

func TestParsePartialProfile(t *testing.T) {
	record, err := ParseProfile(partialProfile)
	require.NoError(t, err)

	require.False(t, record.Complete())
	require.Equal(t, []string{"clan"}, record.MissingFields())

	require.NotNil(t, record.Status)
	require.Equal(t, StatusOffline, *record.Status)
	require.NotNil(t, record.StatusMain)
	require.NotNil(t, record.Stats)
	require.Nil(t, record.Clan)
	require.Nil(t, record.Socials)
	require.Nil(t, record.Roles)
	require.Nil(t, record.Telegram)
}

func TestParseProfileIdempotent(t *testing.T) {
	first, err := ParseProfile(fullProfile)
	require.NoError(t, err)
	second, err := ParseProfile(fullProfile)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("extraction is not idempotent (-first +second):\n%s", diff)
	}
}

func TestParseUnparseable(t *testing.T) {
	_, err := ParseProfile("<html><body><h1>502 Bad Gateway</h1></body></html>")
	require.ErrorIs(t, err, ErrUnparseable)

	_, err = ParseProfile("")
	require.ErrorIs(t, err, ErrUnparseable)
}
