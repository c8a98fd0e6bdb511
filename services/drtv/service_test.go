package drtv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"drtvrss/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func htmlResponse(body string) *http.Response {
	page := `<html><head><script>window.__data = ` + body + `;</script><script src="/app.js"></script></head></html>`
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(page)), Header: make(http.Header)}
}

func statusResponse(code int) *http.Response {
	return &http.Response{StatusCode: code, Body: io.NopCloser(strings.NewReader("")), Header: make(http.Header)}
}

func testSettings() *config.Settings {
	return &config.Settings{
		SiteURL:     "https://catalog.test",
		SearchURL:   "https://search.test/api/search?group=true",
		AuthURL:     "https://auth.test",
		LivePageURL: "https://catalog.test/drtv/kanal/dr1_20875",
		CatalogTTL:  time.Hour,
		LiveTTL:     24 * time.Hour,
		CacheSize:   16,
	}
}

func newTestService(t *testing.T, cfg *config.Settings, rt roundTripFunc) *Service {
	t.Helper()
	svc, err := NewService(cfg, &http.Client{Transport: rt})
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

const showBlob = `{
	"cache": {
		"itemDetail": {
			"req-1": {
				"item": {
					"images": {"wallpaper": "https://img/show.jpg"},
					"customFields": {},
					"show": {
						"title": "Bamse",
						"description": "Klassikeren.",
						"path": "/serie/bamse_123",
						"seasons": {"items": [
							{"title": "Bamse", "seasonNumber": 1, "path": "/saeson/bamse-1_456"},
							{"title": "Bamse", "seasonNumber": 2, "path": "/saeson/bamse-2_457"}
						]}
					}
				}
			}
		}
	}
}`

func seasonBlob(path, episodesJSON string) string {
	return fmt.Sprintf(`{"cache":{"page":{"%s":{"item":{"episodes":{"items":%s}}}}}}`, path, episodesJSON)
}

const seasonOneEpisodes = `[
	{"contextualTitle": "Bamse 1:1", "shortDescription": "a", "path": "/episode/bamse-1-1_1", "releaseYear": 2019}
]`

const seasonTwoEpisodes = `[
	{"contextualTitle": "Bamse 2:1", "shortDescription": "b", "path": "/episode/bamse-2-1_2",
	 "customFields": {"ExtraDetails": "2. maj 2023 | 45M"}}
]`

// showTransport serves the show fixture with optional per-season delays
// and counts series page fetches.
func showTransport(seriesFetches *atomic.Int32, delays map[string]time.Duration) roundTripFunc {
	return func(req *http.Request) (*http.Response, error) {
		path := req.URL.Path
		switch {
		case strings.HasPrefix(path, "/drtv/serie/"):
			if seriesFetches != nil {
				seriesFetches.Add(1)
			}
			return htmlResponse(showBlob), nil
		case strings.HasPrefix(path, "/drtv/saeson/"):
			season := strings.TrimPrefix(path, "/drtv")
			if d, ok := delays[season]; ok {
				time.Sleep(d)
			}
			episodes := seasonOneEpisodes
			if season == "/saeson/bamse-2_457" {
				episodes = seasonTwoEpisodes
			}
			return htmlResponse(seasonBlob(season, episodes)), nil
		}
		return statusResponse(http.StatusNotFound), nil
	}
}

func TestGetShowEndToEnd(t *testing.T) {
	svc := newTestService(t, testSettings(), showTransport(nil, nil))

	show, err := svc.GetShow(context.Background(), "bamse_123")
	if err != nil {
		t.Fatalf("GetShow: %v", err)
	}
	if show.Title != "Bamse" {
		t.Errorf("Title = %q", show.Title)
	}
	if len(show.Seasons) != 2 {
		t.Fatalf("seasons = %d, want 2", len(show.Seasons))
	}
	if show.Seasons[0].Title != "Sæson 1" || show.Seasons[1].Title != "Sæson 2" {
		t.Errorf("season titles = %q, %q", show.Seasons[0].Title, show.Seasons[1].Title)
	}
	if got := show.Seasons[0].Episodes[0].Title; got != "Bamse 1:1" {
		t.Errorf("first episode = %q", got)
	}
	wantDate := time.Date(2023, time.May, 2, 0, 0, 0, 0, catalogZone)
	if got := show.Seasons[1].Episodes[0].PubDate; !got.Equal(wantDate) {
		t.Errorf("season 2 pubdate = %v, want %v", got, wantDate)
	}
}

func TestGetShowSeasonOrderInvariant(t *testing.T) {
	// Season one answers far slower than season two; the assembled
	// order must still follow the upstream listing.
	delays := map[string]time.Duration{
		"/saeson/bamse-1_456": 50 * time.Millisecond,
	}
	svc := newTestService(t, testSettings(), showTransport(nil, delays))

	show, err := svc.GetShow(context.Background(), "bamse_123")
	if err != nil {
		t.Fatalf("GetShow: %v", err)
	}
	if show.Seasons[0].Episodes[0].Title != "Bamse 1:1" || show.Seasons[1].Episodes[0].Title != "Bamse 2:1" {
		t.Errorf("season order changed by completion order: %q, %q",
			show.Seasons[0].Episodes[0].Title, show.Seasons[1].Episodes[0].Title)
	}
}

func TestGetShowCachedWithinTTL(t *testing.T) {
	var fetches atomic.Int32
	svc := newTestService(t, testSettings(), showTransport(&fetches, nil))

	for i := 0; i < 3; i++ {
		if _, err := svc.GetShow(context.Background(), "bamse_123"); err != nil {
			t.Fatal(err)
		}
	}
	if got := fetches.Load(); got != 1 {
		t.Errorf("series fetches = %d, want 1", got)
	}
}

func TestGetShowRefreshAfterTTL(t *testing.T) {
	var fetches atomic.Int32
	cfg := testSettings()
	cfg.CatalogTTL = 20 * time.Millisecond
	svc := newTestService(t, cfg, showTransport(&fetches, nil))

	if _, err := svc.GetShow(context.Background(), "bamse_123"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(40 * time.Millisecond)
	if _, err := svc.GetShow(context.Background(), "bamse_123"); err != nil {
		t.Fatal(err)
	}
	if got := fetches.Load(); got != 2 {
		t.Errorf("series fetches = %d, want 2", got)
	}
}

func TestGetShowConcurrentRequestsSingleFetch(t *testing.T) {
	var fetches atomic.Int32
	delays := map[string]time.Duration{
		"/saeson/bamse-1_456": 20 * time.Millisecond,
		"/saeson/bamse-2_457": 20 * time.Millisecond,
	}
	svc := newTestService(t, testSettings(), showTransport(&fetches, delays))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.GetShow(context.Background(), "slug_bamse_123"); err != nil {
				t.Errorf("GetShow: %v", err)
			}
		}()
	}
	wg.Wait()
	if got := fetches.Load(); got != 1 {
		t.Errorf("series fetches = %d, want 1", got)
	}
}

func TestGetShowPrefixedIdentifierSharesCacheKey(t *testing.T) {
	var fetches atomic.Int32
	svc := newTestService(t, testSettings(), showTransport(&fetches, nil))

	if _, err := svc.GetShow(context.Background(), "bamse_123"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetShow(context.Background(), "anden-slug_123"); err != nil {
		t.Fatal(err)
	}
	if got := fetches.Load(); got != 1 {
		t.Errorf("series fetches = %d, want 1 (same canonical ID)", got)
	}
}

func TestGetShowBrokenSeasonAbortsRefresh(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		path := req.URL.Path
		switch {
		case strings.HasPrefix(path, "/drtv/serie/"):
			return htmlResponse(showBlob), nil
		case strings.HasSuffix(path, "/saeson/bamse-1_456"):
			season := "/saeson/bamse-1_456"
			return htmlResponse(seasonBlob(season, seasonOneEpisodes)), nil
		}
		return statusResponse(http.StatusBadGateway), nil
	})
	svc := newTestService(t, testSettings(), rt)

	_, err := svc.GetShow(context.Background(), "bamse_123")
	if !errors.Is(err, ErrUpstreamStatus) {
		t.Fatalf("err = %v, want ErrUpstreamStatus", err)
	}
	if got := len(svc.CachedShows()); got != 0 {
		t.Errorf("cached shows = %d, want none after aborted refresh", got)
	}
}

func TestGetShowUpstream404(t *testing.T) {
	svc := newTestService(t, testSettings(), roundTripFunc(func(*http.Request) (*http.Response, error) {
		return statusResponse(http.StatusNotFound), nil
	}))
	_, err := svc.GetShow(context.Background(), "findes-ikke_0")
	if !errors.Is(err, ErrUpstreamStatus) {
		t.Errorf("err = %v, want ErrUpstreamStatus", err)
	}
}

func TestGetProgram(t *testing.T) {
	var fetches atomic.Int32
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if strings.HasPrefix(req.URL.Path, "/drtv/program/") {
			fetches.Add(1)
			return htmlResponse(`{"cache":{"page":{"/program/doku_999":{"item":{
				"title":"Dokumentaren","shortDescription":"kort","path":"/program/doku_999"}}}}}`), nil
		}
		return statusResponse(http.StatusNotFound), nil
	})
	svc := newTestService(t, testSettings(), rt)

	program, err := svc.GetProgram(context.Background(), "doku_999")
	if err != nil {
		t.Fatalf("GetProgram: %v", err)
	}
	if program.Title != "Dokumentaren" {
		t.Errorf("Title = %q", program.Title)
	}
	if _, err := svc.GetProgram(context.Background(), "doku_999"); err != nil {
		t.Fatal(err)
	}
	if got := fetches.Load(); got != 1 {
		t.Errorf("program fetches = %d, want 1", got)
	}
}

func TestEnrichDescription(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return htmlResponse(`{"cache":{"page":{"/episode/x_1":{"item":{"description":"Den lange beskrivelse."}}}}}`), nil
	})
	svc := newTestService(t, testSettings(), rt)

	ep, err := normalizeEpisode(mustRecord(t, `{"title":"E","path":"/episode/x_1"}`))
	if err != nil {
		t.Fatal(err)
	}
	svc.EnrichDescription(context.Background(), &ep)
	if ep.Description != "Den lange beskrivelse." {
		t.Errorf("Description = %q", ep.Description)
	}
}

func TestEnrichDescriptionFallsBackOnError(t *testing.T) {
	svc := newTestService(t, testSettings(), roundTripFunc(func(*http.Request) (*http.Response, error) {
		return statusResponse(http.StatusBadGateway), nil
	}))

	ep, err := normalizeEpisode(mustRecord(t, `{"title":"E","shortDescription":"kort","path":"/episode/x_1"}`))
	if err != nil {
		t.Fatal(err)
	}
	svc.EnrichDescription(context.Background(), &ep)
	if ep.Description != "kort" {
		t.Errorf("Description = %q, want short-description fallback", ep.Description)
	}
}

func TestEnrichDescriptionSkipsFilled(t *testing.T) {
	var fetches atomic.Int32
	svc := newTestService(t, testSettings(), roundTripFunc(func(*http.Request) (*http.Response, error) {
		fetches.Add(1)
		return statusResponse(http.StatusOK), nil
	}))

	ep, err := normalizeEpisode(mustRecord(t, `{"title":"E","path":"/episode/x_1"}`))
	if err != nil {
		t.Fatal(err)
	}
	ep.Description = "allerede sat"
	svc.EnrichDescription(context.Background(), &ep)
	if fetches.Load() != 0 {
		t.Error("detail page fetched for an already-described episode")
	}
}

func TestLiveChannels(t *testing.T) {
	var fetches atomic.Int32
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		fetches.Add(1)
		return htmlResponse(`{"cache":{"list":{"l1":{"list":{"items":[
			{"channelShortCode":"dr1","title":"DR1","customFields":{"hlsURL":"https://stream/dr1.m3u8"}},
			{"channelShortCode":"dr2","title":"DR2","customFields":{"hlsURL":"https://stream/dr2.m3u8"}}
		]}}}}}`), nil
	})
	svc := newTestService(t, testSettings(), rt)

	channels, err := svc.LiveChannels(context.Background())
	if err != nil {
		t.Fatalf("LiveChannels: %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("channels = %d, want 2", len(channels))
	}
	if channels["dr1"].StreamURL != "https://stream/dr1.m3u8" {
		t.Errorf("dr1 = %+v", channels["dr1"])
	}

	if _, err := svc.LiveChannels(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := fetches.Load(); got != 1 {
		t.Errorf("live fetches = %d, want 1 (cached)", got)
	}
}
