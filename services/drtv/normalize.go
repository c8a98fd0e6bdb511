package drtv

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"drtvrss/models"
)

// Custom field keys observed in catalog records. Keeping them as
// constants avoids typos across the fallback strategies.
const (
	fieldGeoRestricted = "IsGeoRestricted"
	fieldExtraDetails  = "ExtraDetails"
	fieldAvailableFrom = "AvailableFrom"
)

// catalogZone is the catalog's local time zone, used when a record only
// carries a zoneless broadcast date.
var catalogZone = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Copenhagen")
	if err != nil {
		return time.UTC
	}
	return loc
}()

// danishMonths maps the month abbreviations used in ExtraDetails
// strings. English abbreviations appear on some localized pages, so
// both spellings are accepted.
var danishMonths = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "maj": time.May, "may": time.May,
	"jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "okt": time.October, "oct": time.October,
	"nov": time.November, "dec": time.December,
}

// pubdateStrategy attempts to resolve an episode's publish timestamp
// from one source. Strategies report failure instead of erroring so the
// chain can silently fall through to the next source.
type pubdateStrategy func(record) (time.Time, bool)

// pubdateChain is the documented priority order for publish timestamps:
// a structured availability timestamp beats the human-readable details
// string, which beats a bare release year.
var pubdateChain = []pubdateStrategy{
	pubdateFromAvailableFrom,
	pubdateFromExtraDetails,
	pubdateFromReleaseYear,
}

// resolvePubdate walks the fallback chain. When every source is absent
// or unparseable the episode is stamped with the current wall-clock
// time; re-dating such episodes on every refresh is a known limitation
// of the upstream data, not of this resolver.
func resolvePubdate(rec record) time.Time {
	for _, strategy := range pubdateChain {
		if t, ok := strategy(rec); ok {
			return t
		}
	}
	return time.Now().In(catalogZone)
}

func pubdateFromAvailableFrom(rec record) (time.Time, bool) {
	s, ok := rec.customField(fieldAvailableFrom)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func pubdateFromExtraDetails(rec record) (time.Time, bool) {
	s, ok := rec.customField(fieldExtraDetails)
	if !ok {
		return time.Time{}, false
	}
	datePart, _, found := strings.Cut(s, " | ")
	if !found {
		datePart = s
	}
	return parseBroadcastDate(datePart)
}

func pubdateFromReleaseYear(rec record) (time.Time, bool) {
	year, ok := rec.num("releaseYear")
	// The upstream sometimes sets releaseYear to literal zero; that
	// means "no year data", not year zero.
	if !ok || year <= 0 {
		return time.Time{}, false
	}
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), true
}

// parseBroadcastDate parses the "<day>. <month-abbrev> <year>" date
// form used in ExtraDetails, e.g. "2. maj 2023", in the catalog's
// local time zone.
func parseBroadcastDate(s string) (time.Time, bool) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 3 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(strings.TrimSuffix(fields[0], "."))
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	month, ok := danishMonths[strings.ToLower(strings.TrimSuffix(fields[1], "."))]
	if !ok {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(fields[2])
	if err != nil || year < 1 {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, catalogZone), true
}

// parseDuration converts the length portion of an ExtraDetails string
// to minutes. An hour component is marked with a trailing "T"
// ("1T 30M" is 90 minutes); without one the whole trimmed string is a
// minute count with an "M" suffix.
func parseDuration(s string) (int, bool) {
	minutes := 0
	if hours, rest, found := strings.Cut(s, "T"); found {
		h, err := strconv.Atoi(strings.TrimSpace(hours))
		if err != nil {
			return 0, false
		}
		minutes += h * 60
		s = rest
	}
	s = strings.TrimLeft(s, " ")
	if !strings.HasSuffix(s, "M") {
		if minutes > 0 && s == "" {
			return minutes, true
		}
		return 0, false
	}
	m, err := strconv.Atoi(strings.TrimSuffix(s, "M"))
	if err != nil {
		return 0, false
	}
	return minutes + m, true
}

// resolveDuration extracts the episode length in minutes from the
// ExtraDetails string, when present.
func resolveDuration(rec record) *int {
	s, ok := rec.customField(fieldExtraDetails)
	if !ok {
		return nil
	}
	_, lenPart, found := strings.Cut(s, " | ")
	if !found {
		return nil
	}
	minutes, ok := parseDuration(lenPart)
	if !ok {
		return nil
	}
	return &minutes
}

// resolveTitle prefers the contextual title ("Bamse 1:3") over the
// plain title, and falls back to the record's opaque ID so an episode
// is never nameless.
func resolveTitle(rec record) (string, bool) {
	if t, ok := rec.str("contextualTitle"); ok && t != "" {
		return t, true
	}
	if t, ok := rec.str("title"); ok && t != "" {
		return t, true
	}
	if id, ok := rec.id(); ok && id != "" {
		return id, true
	}
	return "", false
}

// resolveGeoRestricted reads the nested geo-restriction flag. Only the
// case-insensitive string literal "true" restricts; anything else,
// including an absent customFields map, means unrestricted.
func resolveGeoRestricted(rec record) bool {
	v, ok := rec.customField(fieldGeoRestricted)
	return ok && strings.EqualFold(v, "true")
}

// seasonTitle resolves a season's display title. Single-season shows
// reuse the show title for their only season; in that case a
// synthesized "Sæson <N>" label or the release year is clearer in a
// feed reader.
func seasonTitle(rec record, showTitle string) string {
	title, _ := rec.str("title")
	if title != showTitle {
		return title
	}
	if n, ok := rec.num("seasonNumber"); ok {
		return "Sæson " + strconv.Itoa(n)
	}
	if year, ok := rec.num("releaseYear"); ok && year > 0 {
		return strconv.Itoa(year)
	}
	return title
}

// normalizeEpisode maps a raw episode record into the data model.
// Optional fields degrade silently per their fallback chains; a missing
// path is the only hard failure.
func normalizeEpisode(rec record) (models.Episode, error) {
	path, ok := rec.str("path")
	if !ok || path == "" {
		return models.Episode{}, fmt.Errorf("%w: episode path", ErrMalformedRecord)
	}
	title, ok := resolveTitle(rec)
	if !ok {
		return models.Episode{}, fmt.Errorf("%w: episode title", ErrMalformedRecord)
	}
	short, _ := rec.str("shortDescription")
	return models.Episode{
		Title:            title,
		ShortDescription: short,
		Path:             path,
		PubDate:          resolvePubdate(rec),
		Wallpaper:        rec.wallpaper(),
		DurationMinutes:  resolveDuration(rec),
		GeoRestricted:    resolveGeoRestricted(rec),
		EpLink:           models.LastSegment(path),
	}, nil
}

// normalizeSeason builds a Season from a season page item, preserving
// upstream episode order.
func normalizeSeason(item record, stub record, showTitle string) (models.Season, error) {
	season := models.Season{Title: seasonTitle(stub, showTitle)}
	episodes, ok := item.items("episodes")
	if !ok {
		return season, fmt.Errorf("%w: season episodes", ErrMalformedRecord)
	}
	for _, rec := range episodes {
		ep, err := normalizeEpisode(rec)
		if err != nil {
			return season, err
		}
		season.AddEpisode(ep)
	}
	return season, nil
}

// seasonStub is one entry of a show's season list: enough to build the
// season's sub-page URL and to resolve its title later.
type seasonStub struct {
	path string
	rec  record
}

// normalizeShow builds the Show shell plus the ordered list of season
// sub-page references from a series detail item. Season pages are
// fetched separately.
func normalizeShow(item record) (*models.Show, []seasonStub, error) {
	show, ok := item.rec("show")
	if !ok {
		return nil, nil, fmt.Errorf("%w: detail item has no show", ErrMalformedRecord)
	}
	title, ok := show.str("title")
	if !ok || title == "" {
		return nil, nil, fmt.Errorf("%w: show title", ErrMalformedRecord)
	}
	path, ok := show.str("path")
	if !ok || path == "" {
		return nil, nil, fmt.Errorf("%w: show path", ErrMalformedRecord)
	}
	description, _ := show.str("description")

	url := models.LastSegment(path)
	result := &models.Show{
		Title:         title,
		Description:   description,
		URL:           url,
		Wallpaper:     item.wallpaper(),
		GeoRestricted: resolveGeoRestricted(item),
		FeedPath:      "/" + url + ".xml",
		FetchedAt:     time.Now(),
	}

	if next, ok := show.rec("nextEpisode"); ok {
		if ts, ok := availableUTC(next); ok {
			result.NextEpisode = &ts
		}
	}

	stubs := []seasonStub{}
	if seasons, ok := show.items("seasons"); ok {
		for _, rec := range seasons {
			p, ok := rec.str("path")
			if !ok || p == "" {
				continue
			}
			stubs = append(stubs, seasonStub{path: p, rec: rec})
		}
	}
	return result, stubs, nil
}

// availableUTC reads a unix availability timestamp that upstream
// serializes sometimes as a number and sometimes as a string.
func availableUTC(rec record) (time.Time, bool) {
	if n, ok := rec.num("availableUTC"); ok {
		return time.Unix(int64(n), 0), true
	}
	if s, ok := rec.str("availableUTC"); ok {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Unix(n, 0), true
		}
	}
	return time.Time{}, false
}

// normalizeProgram maps a program page item into the standalone
// Program model.
func normalizeProgram(item record) (*models.Program, error) {
	title, ok := item.str("title")
	if !ok || title == "" {
		return nil, fmt.Errorf("%w: program title", ErrMalformedRecord)
	}
	path, ok := item.str("path")
	if !ok || path == "" {
		return nil, fmt.Errorf("%w: program path", ErrMalformedRecord)
	}
	short, _ := item.str("shortDescription")
	return &models.Program{
		Title:            title,
		ShortDescription: short,
		Path:             path,
		FetchedAt:        time.Now(),
	}, nil
}
