package drtv

import (
	"context"
	"log"
	"net/http"

	"drtvrss/config"
	"drtvrss/models"
)

const liveCacheKey = "live"

// Service owns the catalog ingestion pipeline: it fetches catalog
// pages, normalizes them into the data model and serves them out of
// TTL caches. One Service is shared by all handlers.
type Service struct {
	client   *upstreamClient
	tokens   *tokenManager
	shows    *catalogCache[*models.Show]
	programs *catalogCache[*models.Program]
	channels *catalogCache[map[string]models.LiveChannel]

	searchURL   string
	livePageURL string
}

// NewService creates the catalog service from configuration.
func NewService(cfg *config.Settings, httpClient *http.Client) (*Service, error) {
	shows, err := newCatalogCache[*models.Show](cfg.CacheSize, cfg.CatalogTTL)
	if err != nil {
		return nil, err
	}
	programs, err := newCatalogCache[*models.Program](cfg.CacheSize, cfg.CatalogTTL)
	if err != nil {
		return nil, err
	}
	channels, err := newCatalogCache[map[string]models.LiveChannel](1, cfg.LiveTTL)
	if err != nil {
		return nil, err
	}
	return &Service{
		client:      newUpstreamClient(cfg.SiteURL, httpClient),
		tokens:      newTokenManager(cfg.AuthURL, httpClient),
		shows:       shows,
		programs:    programs,
		channels:    channels,
		searchURL:   cfg.SearchURL,
		livePageURL: cfg.LivePageURL,
	}, nil
}

// GetShow returns the show for a catalog identifier, refreshing it from
// upstream when the cached copy is absent or older than the TTL.
func (s *Service) GetShow(ctx context.Context, identifier string) (*models.Show, error) {
	id, err := models.CanonicalID(identifier)
	if err != nil {
		return nil, err
	}
	// The refresh outlives a caller that disconnects mid-fetch so the
	// completed show still lands in the cache for the next request.
	refreshCtx := context.WithoutCancel(ctx)
	return s.shows.getOrRefresh(id, func() (*models.Show, error) {
		return s.refreshShow(refreshCtx, id)
	})
}

func (s *Service) refreshShow(ctx context.Context, id string) (*models.Show, error) {
	blob, err := s.client.fetchBlob(ctx, s.client.seriesURL(id))
	if err != nil {
		return nil, err
	}
	item, ok := detailItem(blob)
	if !ok {
		return nil, ErrMalformedPage
	}
	show, stubs, err := normalizeShow(item)
	if err != nil {
		return nil, err
	}
	seasons, err := s.fetchSeasons(ctx, show.Title, stubs)
	if err != nil {
		return nil, err
	}
	for _, season := range seasons {
		show.AddSeason(season)
	}
	log.Printf("[drtv] refreshed show %s (%d seasons)", id, len(show.Seasons))
	return show, nil
}

// GetProgram returns the standalone program for a catalog identifier,
// refreshing on the same TTL rules as shows.
func (s *Service) GetProgram(ctx context.Context, identifier string) (*models.Program, error) {
	id, err := models.CanonicalID(identifier)
	if err != nil {
		return nil, err
	}
	refreshCtx := context.WithoutCancel(ctx)
	return s.programs.getOrRefresh(id, func() (*models.Program, error) {
		blob, err := s.client.fetchBlob(refreshCtx, s.client.programURL(id))
		if err != nil {
			return nil, err
		}
		item, ok := pageItem(blob, "")
		if !ok {
			return nil, ErrMalformedPage
		}
		program, err := normalizeProgram(item)
		if err != nil {
			return nil, err
		}
		log.Printf("[drtv] refreshed program %s", id)
		return program, nil
	})
}

// CachedShows lists every show currently in the cache, fresh or stale,
// for the index page.
func (s *Service) CachedShows() []*models.Show {
	return s.shows.values()
}

// Prewarm refreshes a configured set of identifiers at startup so their
// first feed request is served from cache.
func (s *Service) Prewarm(ctx context.Context, identifiers []string) {
	for _, identifier := range identifiers {
		if _, err := s.GetShow(ctx, identifier); err != nil {
			log.Printf("[drtv] prewarm %s failed: %v", identifier, err)
		}
	}
}
