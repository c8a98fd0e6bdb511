package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"drtvrss/models"
	drtvpkg "drtvrss/services/drtv"
	"drtvrss/services/rss"
)

// catalogService is the slice of the drtv service the handlers consume.
type catalogService interface {
	GetShow(context.Context, string) (*models.Show, error)
	GetProgram(context.Context, string) (*models.Program, error)
	Search(context.Context, string) (*models.SearchResult, error)
	LiveChannels(context.Context) (map[string]models.LiveChannel, error)
	CachedShows() []*models.Show
}

var _ catalogService = (*drtvpkg.Service)(nil)

type FeedHandler struct {
	Service catalogService
}

func NewFeedHandler(s catalogService) *FeedHandler {
	return &FeedHandler{Service: s}
}

// ShowFeed serves /{show}.xml: the show's episodes as an RSS document.
func (h *FeedHandler) ShowFeed(w http.ResponseWriter, r *http.Request) {
	identifier := mux.Vars(r)["show"]

	show, err := h.Service.GetShow(r.Context(), identifier)
	if err != nil {
		notFound(w, r, identifier, err)
		return
	}
	feed, err := rss.ShowFeed(show)
	if err != nil {
		log.Printf("[feeds] render show %s: %v", identifier, err)
		http.Error(w, "feed rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml")
	fmt.Fprint(w, feed)
}

// ProgramFeed serves /program/{prog}.xml for standalone programs.
func (h *FeedHandler) ProgramFeed(w http.ResponseWriter, r *http.Request) {
	identifier := mux.Vars(r)["prog"]

	program, err := h.Service.GetProgram(r.Context(), identifier)
	if err != nil {
		notFound(w, r, identifier, err)
		return
	}
	feed, err := rss.ProgramFeed(program)
	if err != nil {
		log.Printf("[feeds] render program %s: %v", identifier, err)
		http.Error(w, "feed rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml")
	fmt.Fprint(w, feed)
}

// Search serves /search?q= as JSON.
func (h *FeedHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "q parameter required"})
		return
	}

	result, err := h.Service.Search(r.Context(), query)
	if err != nil {
		log.Printf("[feeds] search %q: %v", query, err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// Live serves /live: the channel listing as JSON.
func (h *FeedHandler) Live(w http.ResponseWriter, r *http.Request) {
	channels, err := h.Service.LiveChannels(r.Context())
	if err != nil {
		log.Printf("[feeds] live channels: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(channels)
}

// Index lists the currently cached shows with links to their feeds.
func (h *FeedHandler) Index(w http.ResponseWriter, r *http.Request) {
	var b strings.Builder
	b.WriteString("Tilgængelig er blandt andet de følgende RSS feeds: <ul>")
	for _, show := range h.Service.CachedShows() {
		fmt.Fprintf(&b, "<li><a href='%s'>%s</a></li>",
			html.EscapeString(show.FeedPath), html.EscapeString(show.Title))
	}
	b.WriteString("</ul>Andre serier kan sagtens findes, bare manipuler URLsene lidt.")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, b.String())
}

// notFound maps pipeline failures to 404, matching how the upstream
// site's own errors should look to a feed reader. Unexpected errors
// still log before degrading to the same response.
func notFound(w http.ResponseWriter, r *http.Request, identifier string, err error) {
	switch {
	case errors.Is(err, models.ErrBadIdentifier),
		errors.Is(err, drtvpkg.ErrUpstreamStatus),
		errors.Is(err, drtvpkg.ErrMalformedPage),
		errors.Is(err, drtvpkg.ErrMalformedRecord):
		log.Printf("[feeds] %s unavailable: %v", identifier, err)
	default:
		log.Printf("[feeds] %s unexpected error: %v", identifier, err)
	}
	http.NotFound(w, r)
}
