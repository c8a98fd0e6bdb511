package drtv

import (
	"context"
	"fmt"

	"drtvrss/models"
)

// LiveChannels returns the live channel listing keyed by channel short
// code, cached on its own long TTL since channels rarely change.
func (s *Service) LiveChannels(ctx context.Context) (map[string]models.LiveChannel, error) {
	refreshCtx := context.WithoutCancel(ctx)
	return s.channels.getOrRefresh(liveCacheKey, func() (map[string]models.LiveChannel, error) {
		blob, err := s.client.fetchBlob(refreshCtx, s.livePageURL)
		if err != nil {
			return nil, err
		}
		items, ok := listItems(blob)
		if !ok {
			return nil, fmt.Errorf("%w: channel list", ErrMalformedRecord)
		}
		channels := make(map[string]models.LiveChannel, len(items))
		for _, rec := range items {
			code, ok := rec.str("channelShortCode")
			if !ok || code == "" {
				continue
			}
			title, _ := rec.str("title")
			stream, _ := rec.customField("hlsURL")
			channels[code] = models.LiveChannel{Title: title, StreamURL: stream}
		}
		return channels, nil
	})
}
