// Package rss renders normalized catalog entities as RSS 2.0 documents.
package rss

import (
	"encoding/xml"
	"fmt"
	"time"

	"drtvrss/models"
)

// channelTTL is the <ttl> advertised to feed readers, in minutes. It is
// deliberately shorter than the catalog cache TTL so readers poll at
// least as often as the cache can go stale.
const channelTTL = 60

// Entry is one feed item. Nil optional fields are omitted from the
// document entirely; an empty tag is never emitted for a missing value.
type Entry struct {
	Title       string
	Description *string
	Link        *string
	PubDate     *time.Time
}

type xmlItem struct {
	Title       string  `xml:"title"`
	Description *string `xml:"description,omitempty"`
	Link        *string `xml:"link,omitempty"`
	PubDate     *string `xml:"pubDate,omitempty"`
}

type xmlChannel struct {
	Title       string    `xml:"title"`
	TTL         int       `xml:"ttl"`
	Description *string   `xml:"description,omitempty"`
	Link        *string   `xml:"link,omitempty"`
	Items       []xmlItem `xml:"item"`
}

type xmlRSS struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel xmlChannel `xml:"channel"`
}

// Feed serializes a flat entry list into an RSS 2.0 document.
func Feed(title string, description, link *string, entries []Entry) (string, error) {
	items := make([]xmlItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, toItem(e))
	}
	return render(xmlChannel{
		Title:       title,
		TTL:         channelTTL,
		Description: description,
		Link:        link,
		Items:       items,
	})
}

// ShowFeed serializes a show into an RSS 2.0 document with one item per
// episode, seasons concatenated in upstream order.
func ShowFeed(show *models.Show) (string, error) {
	var items []xmlItem
	for _, season := range show.Seasons {
		for _, ep := range season.Episodes {
			items = append(items, toItem(episodeEntry(show, ep)))
		}
	}
	return render(xmlChannel{
		Title:       show.Title,
		TTL:         channelTTL,
		Description: optional(show.Description),
		Link:        optional(show.URL),
		Items:       items,
	})
}

// ProgramFeed serializes a standalone program as a single-item feed.
func ProgramFeed(program *models.Program) (string, error) {
	return Feed(program.Title, optional(program.ShortDescription), optional(program.Path), []Entry{{
		Title:       program.Title,
		Description: optional(program.ShortDescription),
		Link:        optional(program.Path),
	}})
}

// episodeEntry builds a feed entry from an episode. The item link joins
// the show's canonical slug with the episode's derived link segment and
// is only present when both sides are known.
func episodeEntry(show *models.Show, ep models.Episode) Entry {
	entry := Entry{Title: ep.Title}
	if desc := episodeDescription(ep); desc != "" {
		entry.Description = &desc
	}
	if show.URL != "" && ep.Path != "" {
		link := "/" + show.URL + "/" + ep.EpLink
		entry.Link = &link
	}
	if !ep.PubDate.IsZero() {
		pubDate := ep.PubDate
		entry.PubDate = &pubDate
	}
	return entry
}

func episodeDescription(ep models.Episode) string {
	if ep.Description != "" {
		return ep.Description
	}
	return ep.ShortDescription
}

func render(channel xmlChannel) (string, error) {
	doc := xmlRSS{Version: "2.0", Channel: channel}
	out, err := xml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("render feed: %w", err)
	}
	return xml.Header + string(out), nil
}

func toItem(e Entry) xmlItem {
	item := xmlItem{Title: e.Title, Description: e.Description, Link: e.Link}
	if e.PubDate != nil {
		formatted := e.PubDate.Format("Mon, 02 Jan 2006 15:04:05 -0700")
		item.PubDate = &formatted
	}
	return item
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
