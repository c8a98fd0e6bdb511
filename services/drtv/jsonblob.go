package drtv

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// blobMarker precedes the client-state object the catalog site embeds
// in every server-rendered page.
const blobMarker = "window.__data = "

// extractBlob locates and parses the embedded JSON object in a page.
//
// The object has no closing sentinel; it is immediately followed by an
// unrelated <script> trailer. The parse is therefore optimistic: try
// the full remainder first, and when that fails use the syntax error's
// byte offset as a length oracle. The offset of the first invalid byte
// after a complete top-level value is exactly the end of the embedded
// object, so a single re-parse of that prefix recovers it.
func extractBlob(page string) (record, error) {
	idx := strings.Index(page, blobMarker)
	if idx == -1 {
		return nil, fmt.Errorf("%w: marker not found", ErrMalformedPage)
	}
	rest := page[idx+len(blobMarker):]

	var blob record
	err := json.Unmarshal([]byte(rest), &blob)
	if err == nil {
		return blob, nil
	}
	var syn *json.SyntaxError
	if !errors.As(err, &syn) {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}
	end := int(syn.Offset) - 1
	if end <= 0 || end > len(rest) {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}
	if err := json.Unmarshal([]byte(rest[:end]), &blob); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}
	return blob, nil
}

// detailItem digs the series detail record out of cache.itemDetail.
// The entry key is a request hash that varies per page, so the entries
// are scanned in sorted key order and the last one carrying an "item"
// wins.
func detailItem(blob record) (record, bool) {
	cache, ok := blob.rec("cache")
	if !ok {
		return nil, false
	}
	detail, ok := cache.rec("itemDetail")
	if !ok {
		return nil, false
	}
	var found record
	for _, key := range sortedKeys(detail) {
		entry, ok := detail.rec(key)
		if !ok {
			continue
		}
		if item, ok := entry.rec("item"); ok {
			found = item
		}
	}
	return found, found != nil
}

// pageItem returns cache.page[path].item. With an empty path the
// entries are scanned in sorted key order and the first one carrying an
// "item" wins, which is how program and episode detail pages are read.
func pageItem(blob record, path string) (record, bool) {
	cache, ok := blob.rec("cache")
	if !ok {
		return nil, false
	}
	page, ok := cache.rec("page")
	if !ok {
		return nil, false
	}
	if path != "" {
		entry, ok := page.rec(path)
		if !ok {
			return nil, false
		}
		return entry.rec("item")
	}
	for _, key := range sortedKeys(page) {
		entry, ok := page.rec(key)
		if !ok {
			continue
		}
		if item, ok := entry.rec("item"); ok {
			return item, true
		}
	}
	return nil, false
}

// listItems returns the items of the first entry under cache.list, the
// shape used by the live channel overview page.
func listItems(blob record) ([]record, bool) {
	cache, ok := blob.rec("cache")
	if !ok {
		return nil, false
	}
	list, ok := cache.rec("list")
	if !ok {
		return nil, false
	}
	for _, key := range sortedKeys(list) {
		entry, ok := list.rec(key)
		if !ok {
			continue
		}
		if items, ok := entry.items("list"); ok {
			return items, true
		}
	}
	return nil, false
}

func sortedKeys(r record) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
