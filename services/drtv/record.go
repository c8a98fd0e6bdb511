package drtv

import "encoding/json"

// record is a catalog object decoded field-by-field. The upstream
// schema drifts, so every accessor tolerates an absent or
// differently-shaped field by reporting absence instead of failing the
// whole record.
type record map[string]json.RawMessage

func (r record) str(key string) (string, bool) {
	raw, ok := r[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func (r record) num(key string) (int, bool) {
	raw, ok := r[key]
	if !ok {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

// id returns the record's opaque identifier as a string, whether the
// upstream serialized it as a number or a string.
func (r record) id() (string, bool) {
	raw, ok := r["id"]
	if !ok {
		return "", false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return "", false
}

func (r record) rec(key string) (record, bool) {
	raw, ok := r[key]
	if !ok {
		return nil, false
	}
	var sub record
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, false
	}
	return sub, true
}

// items returns key's "items" array, the upstream's standard list shape.
func (r record) items(key string) ([]record, bool) {
	sub, ok := r.rec(key)
	if !ok {
		return nil, false
	}
	raw, ok := sub["items"]
	if !ok {
		return nil, false
	}
	var list []record
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false
	}
	return list, true
}

// customField looks up a string value in the record's customFields map.
func (r record) customField(key string) (string, bool) {
	cf, ok := r.rec("customFields")
	if !ok {
		return "", false
	}
	return cf.str(key)
}

// wallpaper returns the record's wallpaper image reference, if any.
func (r record) wallpaper() string {
	images, ok := r.rec("images")
	if !ok {
		return ""
	}
	w, _ := images.str("wallpaper")
	return w
}
