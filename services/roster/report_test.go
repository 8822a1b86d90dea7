package roster

import (
	"strings"
	"testing"
	"time"

	"rosterwatch/lib/scrapers/chichi"

	"github.com/stretchr/testify/require"
)

func reportEntry(record chichi.ProfileRecord) CacheEntry {
	return CacheEntry{
		Record:    record,
		Complete:  record.Complete(),
		Status:    StatusSuccess,
		Attempts:  1,
		FetchedAt: time.Now(),
	}
}

func renderToString(t *testing.T, current, previous map[string]CacheEntry) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, RenderReport(&sb, current, previous, "https://serverchichi.online"))
	return sb.String()
}

func TestReportRendersProfileFields(t *testing.T) {
	online := chichi.StatusOnline
	current := map[string]CacheEntry{
		"Steve": reportEntry(chichi.ProfileRecord{
			Status:     &online,
			StatusMain: strptr("строитель"),
			Clan:       strptr("TestClan"),
			Telegram:   strptr("https://t.me/steve"),
			Socials:    []chichi.Social{{Name: "YouTube", Url: "https://youtube.com/@steve"}},
			Stats:      []string{"Наиграно: 10 ч."},
			RPCards:    []chichi.RPCard{{Title: "Персонаж", Body: "Строитель из деревни"}},
			Roles:      []string{"Игрок"},
		}),
	}

	html := renderToString(t, current, current)
	require.Contains(t, html, "https://serverchichi.online/player/Steve")
	require.Contains(t, html, "строитель")
	require.Contains(t, html, "TestClan")
	require.Contains(t, html, "https://t.me/steve")
	require.Contains(t, html, "Наиграно: 10 ч.")
	require.Contains(t, html, "Строитель из деревни")
	require.NotContains(t, html, `class="card new"`)
	require.NotContains(t, html, `class="card changed"`)
}

func TestReportMissingFieldsRenderNA(t *testing.T) {
	current := map[string]CacheEntry{
		"Alex": reportEntry(chichi.ProfileRecord{
			StatusMain: strptr("фермер"),
		}),
	}

	html := renderToString(t, current, current)
	require.Contains(t, html, "N/A")
}

func TestReportFlagsNewPlayers(t *testing.T) {
	previous := map[string]CacheEntry{
		"Steve": reportEntry(chichi.ProfileRecord{StatusMain: strptr("строитель")}),
	}
	current := map[string]CacheEntry{
		"Steve": previous["Steve"],
		"Alex":  reportEntry(chichi.ProfileRecord{StatusMain: strptr("фермер")}),
	}

	html := renderToString(t, current, previous)
	require.Contains(t, html, `class="card new"`)
	require.Contains(t, html, "новый")
}

func TestReportFlagsChangedPlayers(t *testing.T) {
	previous := map[string]CacheEntry{
		"Steve": reportEntry(chichi.ProfileRecord{
			StatusMain: strptr("строитель"),
			Stats:      []string{"Наиграно: 10 ч."},
		}),
	}
	current := map[string]CacheEntry{
		"Steve": reportEntry(chichi.ProfileRecord{
			StatusMain: strptr("строитель"),
			Stats:      []string{"Наиграно: 20 ч."},
		}),
	}

	html := renderToString(t, current, previous)
	require.Contains(t, html, `class="card changed"`)
	require.Contains(t, html, "изменен")
}

func TestReportSuggestsRenames(t *testing.T) {
	previous := map[string]CacheEntry{
		"Herobrine": reportEntry(chichi.ProfileRecord{StatusMain: strptr("легенда")}),
	}
	current := map[string]CacheEntry{
		"Herobrine1": reportEntry(chichi.ProfileRecord{StatusMain: strptr("легенда")}),
	}

	html := renderToString(t, current, previous)
	require.Contains(t, html, "ранее известен как Herobrine")
}

func TestReportRenameHintIgnoresCase(t *testing.T) {
	previous := map[string]CacheEntry{
		"HeroBrine": reportEntry(chichi.ProfileRecord{StatusMain: strptr("легенда")}),
	}
	current := map[string]CacheEntry{
		"herobrine_": reportEntry(chichi.ProfileRecord{StatusMain: strptr("легенда")}),
	}

	html := renderToString(t, current, previous)
	require.Contains(t, html, "ранее известен как HeroBrine")
}

func TestReportUnrelatedNewPlayerHasNoRenameHint(t *testing.T) {
	previous := map[string]CacheEntry{
		"Herobrine": reportEntry(chichi.ProfileRecord{StatusMain: strptr("легенда")}),
	}
	current := map[string]CacheEntry{
		"xX_Dragon_Xx": reportEntry(chichi.ProfileRecord{StatusMain: strptr("воин")}),
	}

	html := renderToString(t, current, previous)
	require.NotContains(t, html, "ранее известен как")
}
