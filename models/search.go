package models

// SearchResultItem is one hit from the catalog search API.
type SearchResultItem struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Wallpaper     string `json:"wallpaper,omitempty"`
	Description   string `json:"description,omitempty"`
	GeoRestricted bool   `json:"geoRestricted"`
	URL           string `json:"url"`
}

// SearchResult groups search hits by kind. The upstream response has a
// "movies" key but it is always empty; movies actually arrive under
// "playable".
type SearchResult struct {
	Series []SearchResultItem `json:"series"`
	Movies []SearchResultItem `json:"movies"`
}

// LiveChannel is a live TV channel with its HLS stream address.
type LiveChannel struct {
	Title     string `json:"title"`
	StreamURL string `json:"streamUrl"`
}
