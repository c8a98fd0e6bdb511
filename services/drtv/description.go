package drtv

import (
	"context"

	"drtvrss/models"
)

// EnrichDescription fills an episode's long description from its detail
// page. This is the one post-construction mutation in the model, and it
// is best-effort: any failure falls back to the already-known short
// description instead of propagating.
func (s *Service) EnrichDescription(ctx context.Context, ep *models.Episode) {
	if ep.Description != "" {
		return
	}
	blob, err := s.client.fetchBlob(ctx, s.client.pathURL(ep.Path))
	if err != nil {
		ep.Description = ep.ShortDescription
		return
	}
	item, ok := pageItem(blob, "")
	if !ok {
		ep.Description = ep.ShortDescription
		return
	}
	desc, ok := item.str("description")
	if !ok || desc == "" {
		ep.Description = ep.ShortDescription
		return
	}
	ep.Description = desc
}
