package roster

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"

	"rosterwatch/lib/scrapers/chichi"
	"rosterwatch/lib/textutil"
	"rosterwatch/lib/timezone"

	_ "embed"

	"github.com/antzucaro/matchr"
)

//go:embed report.html.tmpl
var reportTemplateSource string

var reportTemplate = template.Must(template.New("report").Parse(reportTemplateSource))

// renameSimilarity is the Jaro-Winkler score above which a nickname
// that vanished from the cache is suggested as the previous identity
// of a newly appeared one.
const renameSimilarity = 0.92

type reportCard struct {
	Nickname    string
	ProfileUrl  string
	CardClasses string
	Status      string
	StatusMain  string
	PlayerPlus  string
	Clan        string
	Telegram    string
	Socials     []chichi.Social
	Stats       []string
	RPCards     []chichi.RPCard
	Roles       []string
	RenameHint  string
}

type reportData struct {
	GeneratedAt string
	Cards       []reportCard
}

// WriteReport renders the searchable HTML report for the current cache
// snapshot, highlighting players that are new or changed relative to
// the previous snapshot.
func WriteReport(path string, current, previous map[string]CacheEntry, baseUrl string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return RenderReport(f, current, previous, baseUrl)
}

func RenderReport(w io.Writer, current, previous map[string]CacheEntry, baseUrl string) error {
	nicknames := make([]string, 0, len(current))
	for nickname := range current {
		nicknames = append(nicknames, nickname)
	}
	sort.Strings(nicknames)

	// nicknames that were cached before but are gone now only occur
	// after a rebuild; they feed the rename suggestions below
	var vanished []string
	for nickname := range previous {
		if _, ok := current[nickname]; !ok {
			vanished = append(vanished, nickname)
		}
	}
	sort.Strings(vanished)

	data := reportData{
		GeneratedAt: timezone.Now().Format("2006-01-02 15:04:05"),
	}
	for _, nickname := range nicknames {
		entry := current[nickname]
		card := buildCard(nickname, entry, baseUrl)

		prev, existed := previous[nickname]
		if !existed {
			card.CardClasses = "new"
			card.RenameHint = renameHint(nickname, vanished)
		} else if recordChanged(prev.Record, entry.Record) {
			card.CardClasses = "changed"
		}

		data.Cards = append(data.Cards, card)
	}

	return reportTemplate.Execute(w, data)
}

func buildCard(nickname string, entry CacheEntry, baseUrl string) reportCard {
	record := entry.Record
	card := reportCard{
		Nickname:   nickname,
		ProfileUrl: strings.TrimSuffix(baseUrl, "/") + "/player/" + nickname,
		Status:     "N/A",
		Socials:    record.Socials,
		Stats:      record.Stats,
		RPCards:    record.RPCards,
		Roles:      record.Roles,
	}
	if record.Status != nil {
		card.Status = *record.Status
	}
	if record.StatusMain != nil {
		card.StatusMain = *record.StatusMain
	}
	if record.PlayerPlus != nil {
		card.PlayerPlus = *record.PlayerPlus
	}
	if record.Clan != nil {
		card.Clan = *record.Clan
	}
	if record.Telegram != nil {
		card.Telegram = *record.Telegram
	}
	return card
}

// recordChanged mirrors the fields the report highlights: visible
// profile content, not fetch bookkeeping.
func recordChanged(prev, cur chichi.ProfileRecord) bool {
	return !reflect.DeepEqual(prev.StatusMain, cur.StatusMain) ||
		!reflect.DeepEqual(prev.Stats, cur.Stats) ||
		!reflect.DeepEqual(prev.Roles, cur.Roles) ||
		!reflect.DeepEqual(prev.PlayerPlus, cur.PlayerPlus) ||
		!reflect.DeepEqual(prev.Clan, cur.Clan)
}

// renameHint compares normalized nicknames so case and spacing
// differences don't mask an otherwise obvious rename.
func renameHint(nickname string, vanished []string) string {
	best := ""
	var bestScore float64
	for _, candidate := range vanished {
		score := matchr.JaroWinkler(
			textutil.NormalizeName(nickname),
			textutil.NormalizeName(candidate),
			false,
		)
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	if bestScore >= renameSimilarity {
		return fmt.Sprintf("возможно, ранее известен как %s", best)
	}
	return ""
}
