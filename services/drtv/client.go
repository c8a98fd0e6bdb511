package drtv

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const fetchTimeout = 5 * time.Second

// upstreamClient performs page fetches against the catalog site. A
// fetch either succeeds with the page's embedded JSON blob or fails
// immediately; there are no retries.
type upstreamClient struct {
	httpClient *http.Client

	// siteURL is the catalog site root, e.g. https://www.dr.dk.
	siteURL string
}

func newUpstreamClient(siteURL string, httpClient *http.Client) *upstreamClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: fetchTimeout}
	}
	return &upstreamClient{httpClient: httpClient, siteURL: strings.TrimRight(siteURL, "/")}
}

// fetchPage GETs a catalog page and returns its body. Non-2xx statuses
// are reported as ErrUpstreamStatus so callers can map them to
// not-found without inspecting the response.
func (c *upstreamClient) fetchPage(ctx context.Context, url string) (string, error) {
	log.Printf("[drtv] fetching page %s", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamStatus, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s returned %d", ErrUpstreamStatus, url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamStatus, err)
	}
	return string(body), nil
}

// fetchBlob fetches a page and extracts its embedded JSON blob.
func (c *upstreamClient) fetchBlob(ctx context.Context, url string) (record, error) {
	page, err := c.fetchPage(ctx, url)
	if err != nil {
		return nil, err
	}
	return extractBlob(page)
}

// seriesURL builds the show detail page URL for a canonical ID.
func (c *upstreamClient) seriesURL(id string) string {
	return c.siteURL + "/drtv/serie/" + id
}

// programURL builds the program detail page URL for a canonical ID.
func (c *upstreamClient) programURL(id string) string {
	return c.siteURL + "/drtv/program/" + id
}

// pathURL builds a page URL from a catalog-relative path such as a
// season sub-page or episode detail path.
func (c *upstreamClient) pathURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.siteURL + "/drtv" + path
}
