package chichi

import (
	"errors"
	"strings"

	"rosterwatch/lib/htmlutil"
	"rosterwatch/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// ErrUnparseable is reported when a document is structurally unusable
// as a profile page. Missing individual fields never cause it; those
// produce a partial record instead.
var ErrUnparseable = errors.New("document is not a player profile")

type Social struct {
	Name string `json:"name"`
	Url  string `json:"url"`
}

type RPCard struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ProfileRecord carries every recognized profile field. A nil field
// means the profile page did not contain it; the record is still kept.
type ProfileRecord struct {
	Status     *string  `json:"status"`
	StatusMain *string  `json:"status_main"`
	PlayerPlus *string  `json:"player_plus"`
	Clan       *string  `json:"clan"`
	Telegram   *string  `json:"telegram"`
	Socials    []Social `json:"socials"`
	Stats      []string `json:"stats"`
	RPCards    []RPCard `json:"rp_cards"`
	Roles      []string `json:"roles"`
}

const (
	StatusOnline  = "онлайн"
	StatusOffline = "оффлайн"
)

// MissingFields lists the required fields absent from the record.
func (r ProfileRecord) MissingFields() []string {
	var missing []string
	if r.StatusMain == nil {
		missing = append(missing, "status_main")
	}
	if r.Stats == nil {
		missing = append(missing, "stats")
	}
	if r.Clan == nil {
		missing = append(missing, "clan")
	}
	return missing
}

func (r ProfileRecord) Complete() bool {
	return len(r.MissingFields()) == 0
}

// ParseProfile extracts a ProfileRecord from a raw profile document.
// It is a pure function: the same document always yields the same
// record. Fields the document lacks are left nil rather than failing
// the whole extraction.
func ParseProfile(html string) (ProfileRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ProfileRecord{}, errors.Join(ErrUnparseable, err)
	}
	if doc.Find("div.playerOnline, p.status-main, div.stats, div.roles").Length() == 0 {
		return ProfileRecord{}, ErrUnparseable
	}

	var record ProfileRecord

	online := doc.Find("div.playerOnline")
	if online.Length() > 0 {
		status := StatusOffline
		if online.HasClass("active") {
			status = StatusOnline
		}
		record.Status = &status
	}

	statusMain := doc.Find("p.status-main")
	if statusMain.Length() > 0 {
		text := strings.TrimSpace(statusMain.First().Text())
		record.StatusMain = &text
	}

	playerPlus := doc.Find("div.player-plus-content p")
	if playerPlus.Length() > 0 {
		text := strings.TrimSpace(playerPlus.First().Text())
		record.PlayerPlus = &text
	}

	clan := doc.Find("p.clan-name")
	if clan.Length() > 0 {
		text := strings.TrimSpace(clan.First().Text())
		record.Clan = &text
	}

	socials := doc.Find("div.socials")
	if socials.Length() > 0 {
		record.Socials = []Social{}
		for _, anchor := range htmlutil.GetAnchors(socials.Find("a")) {
			record.Socials = append(record.Socials, Social{
				Name: anchor.Name,
				Url:  anchor.Href,
			})
		}
	}

	stats := doc.Find("div.stats")
	if stats.Length() > 0 {
		record.Stats = []string{}
		stats.Find("p").Each(func(_ int, p *goquery.Selection) {
			fragment, err := goquery.OuterHtml(p)
			if err != nil {
				return
			}
			record.Stats = append(record.Stats, textutil.CleanFragment(fragment))
		})
	}

	rpContainer := doc.Find("div.rp-container")
	if rpContainer.Length() > 0 {
		record.RPCards = []RPCard{}
		rpContainer.Find("div.rp-card").Each(func(_ int, card *goquery.Selection) {
			title, _ := goquery.OuterHtml(card.Find("h3").First())
			body, _ := goquery.OuterHtml(card.Find("p").First())
			record.RPCards = append(record.RPCards, RPCard{
				Title: textutil.CleanFragment(title),
				Body:  textutil.CleanFragment(body),
			})
		})
	}

	roles := doc.Find("div.roles")
	if roles.Length() > 0 {
		var parsed []string
		roles.Find("span").Each(func(_ int, role *goquery.Selection) {
			text := textutil.CleanFragment(role.Text())
			if text != "" {
				parsed = append(parsed, text)
			}
		})
		record.Roles = parsed
	}

	telegram := doc.Find("a.social.telegram")
	if href, ok := telegram.Attr("href"); ok {
		record.Telegram = &href
	}

	return record, nil
}
