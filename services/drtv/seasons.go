package drtv

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"drtvrss/models"
)

// fetchSeasons fetches every season sub-page concurrently and
// reassembles the normalized seasons in the given stub order, no matter
// which fetch completes first. Seasons live on separate pages upstream;
// fetching them serially would multiply latency by season count.
//
// Any single failure aborts the whole refresh: a show with one broken
// season is never published with a partial season list.
func (s *Service) fetchSeasons(ctx context.Context, showTitle string, stubs []seasonStub) ([]models.Season, error) {
	seasons := make([]models.Season, len(stubs))

	p := pool.New().WithContext(ctx).WithCancelOnError()
	for i, stub := range stubs {
		i, stub := i, stub
		p.Go(func(ctx context.Context) error {
			blob, err := s.client.fetchBlob(ctx, s.client.pathURL(stub.path))
			if err != nil {
				return fmt.Errorf("season %s: %w", stub.path, err)
			}
			item, ok := pageItem(blob, stub.path)
			if !ok {
				return fmt.Errorf("season %s: %w", stub.path, ErrMalformedRecord)
			}
			season, err := normalizeSeason(item, stub.rec, showTitle)
			if err != nil {
				return fmt.Errorf("season %s: %w", stub.path, err)
			}
			seasons[i] = season
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return seasons, nil
}
