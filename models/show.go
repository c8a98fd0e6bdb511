package models

import (
	"strings"
	"time"
)

// Episode is a single watchable entry within a season.
type Episode struct {
	Title            string     `json:"title"`
	ShortDescription string     `json:"shortDescription,omitempty"`
	Description      string     `json:"description,omitempty"`
	Path             string     `json:"path"`
	PubDate          time.Time  `json:"pubDate"`
	Wallpaper        string     `json:"wallpaper,omitempty"`
	DurationMinutes  *int       `json:"durationMinutes,omitempty"`
	GeoRestricted    bool       `json:"geoRestricted"`

	// EpLink is the last segment of Path, computed once at construction
	// and used for feed link building without re-parsing the full path.
	EpLink string `json:"epLink"`
}

// Season is an ordered list of episodes. Episode order matches the
// upstream listing order and is never re-sorted.
type Season struct {
	Title    string    `json:"title"`
	Episodes []Episode `json:"episodes"`
}

// AddEpisode appends an episode, preserving source order.
func (s *Season) AddEpisode(e Episode) {
	s.Episodes = append(s.Episodes, e)
}

// Show is a series with its seasons in upstream listing order.
type Show struct {
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	URL           string     `json:"url"`
	Seasons       []Season   `json:"seasons"`
	Wallpaper     string     `json:"wallpaper,omitempty"`
	GeoRestricted bool       `json:"geoRestricted"`
	NextEpisode   *time.Time `json:"nextEpisode,omitempty"`

	// FeedPath is "/<URL>.xml", computed once at construction.
	FeedPath string `json:"feedPath"`

	// FetchedAt drives TTL staleness decisions in the catalog cache.
	FetchedAt time.Time `json:"fetchedAt"`
}

// AddSeason appends a season, preserving source order.
func (s *Show) AddSeason(season Season) {
	s.Seasons = append(s.Seasons, season)
}

// Program is a standalone video not organized into seasons.
type Program struct {
	Title            string    `json:"title"`
	ShortDescription string    `json:"shortDescription,omitempty"`
	Path             string    `json:"path"`
	FetchedAt        time.Time `json:"fetchedAt"`
}

// LastSegment returns the portion of a catalog path after the final
// slash, or the whole path when it contains none.
func LastSegment(path string) string {
	path = strings.TrimRight(path, "/")
	if idx := strings.LastIndex(path, "/"); idx != -1 {
		return path[idx+1:]
	}
	return path
}
