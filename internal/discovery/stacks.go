package discovery

import (
	"encoding/json"
	"strconv"
)

// Casing variants seen in the wild for the stack listing fields. The
// first-listed variant wins when both appear on the same entry.
var (
	endpointFields = []string{"EndpointId", "EndpointID"}
	idFields       = []string{"Id", "ID"}
	nameFields     = []string{"Name", "name"}
)

// MatchStack scans a /api/stacks listing for the first entry whose name and
// endpoint id both match, and returns its stack id. Matching is exact; the
// input order decides ties.
func MatchStack(body []byte, name string, endpointID int) (string, bool) {
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		return "", false
	}

	for _, entry := range entries {
		n, ok := stringField(entry, nameFields)
		if !ok || n != name {
			continue
		}
		ep, ok := intField(entry, endpointFields)
		if !ok || ep != endpointID {
			continue
		}
		if id, ok := anyField(entry, idFields); ok {
			return id, true
		}
	}
	return "", false
}

// stringField reads the first present casing variant as a string.
func stringField(entry map[string]json.RawMessage, keys []string) (string, bool) {
	for _, k := range keys {
		raw, ok := entry[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s, true
		}
	}
	return "", false
}

// intField reads the first present casing variant as an integer.
func intField(entry map[string]json.RawMessage, keys []string) (int, bool) {
	for _, k := range keys {
		raw, ok := entry[k]
		if !ok {
			continue
		}
		var n int
		if err := json.Unmarshal(raw, &n); err == nil {
			return n, true
		}
	}
	return 0, false
}

// anyField reads the first present casing variant, rendering numbers and
// strings alike as text.
func anyField(entry map[string]json.RawMessage, keys []string) (string, bool) {
	for _, k := range keys {
		raw, ok := entry[k]
		if !ok {
			continue
		}
		var n int64
		if err := json.Unmarshal(raw, &n); err == nil {
			return strconv.FormatInt(n, 10), true
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s, true
		}
	}
	return "", false
}
