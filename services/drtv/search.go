package drtv

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"drtvrss/models"
)

// Search queries the catalog search API. Results split into series and
// movies; the API's own "movies" group is always empty, so movies are
// read from "playable" with episode entries filtered out.
func (s *Service) Search(ctx context.Context, query string) (*models.SearchResult, error) {
	token, err := s.tokens.bearer(ctx)
	if err != nil {
		return nil, err
	}

	u := s.searchURL + "&term=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Authorization", "Bearer "+token)

	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamStatus, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: search returned %d", ErrUpstreamStatus, resp.StatusCode)
	}

	var body record
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	result := &models.SearchResult{
		Series: []models.SearchResultItem{},
		Movies: []models.SearchResultItem{},
	}
	if series, ok := body.items("series"); ok {
		for _, rec := range series {
			item, ok := searchItem(rec)
			if !ok {
				continue
			}
			// Series link by slug only, the way feed URLs are addressed.
			item.URL = "/" + models.LastSegment(item.URL) + "/"
			result.Series = append(result.Series, item)
		}
	}
	if playable, ok := body.items("playable"); ok {
		for _, rec := range playable {
			item, ok := searchItem(rec)
			if !ok || strings.Contains(item.URL, "episode") {
				continue
			}
			result.Movies = append(result.Movies, item)
		}
	}
	return result, nil
}

func searchItem(rec record) (models.SearchResultItem, bool) {
	id, ok := rec.id()
	if !ok {
		return models.SearchResultItem{}, false
	}
	title, ok := resolveTitle(rec)
	if !ok {
		return models.SearchResultItem{}, false
	}
	path, _ := rec.str("path")
	short, _ := rec.str("shortDescription")
	return models.SearchResultItem{
		ID:            id,
		Title:         title,
		Wallpaper:     rec.wallpaper(),
		Description:   short,
		GeoRestricted: resolveGeoRestricted(rec),
		URL:           path,
	}, true
}
