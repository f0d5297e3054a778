// Package discovery probes a Portainer server to learn which routes it
// exposes: the status endpoint, the API documentation, and the stack
// listing. Nothing here assumes a response schema beyond the fields it
// explicitly reads.
package discovery

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
)

// DocCandidates lists the documentation routes to try, in order. The JSON
// variant is first: it is the only one this tool parses.
var DocCandidates = []string{
	"/swagger.json",
	"/swagger.yaml",
	"/swagger.yml",
}

// stackPathPattern matches a "stacks" path segment at a segment boundary,
// optionally followed by a sub-path or query.
var stackPathPattern = regexp.MustCompile(`(?i)(^|/)stacks([/?]|$)`)

// actionKeywords flag paths likely involved in stack create/update.
var actionKeywords = regexp.MustCompile(`(?i)create|update|standalone|compose|swarm|git`)

// PathEntry is one documented route and its supported methods.
type PathEntry struct {
	Path    string
	Methods []string
}

// Doc is the subset of an OpenAPI document this tool reads.
type Doc struct {
	paths      map[string]json.RawMessage
	hasSchemas bool
}

// ParseDoc decodes just enough of a swagger/OpenAPI JSON body: the .paths
// map and the presence of .components.schemas.
func ParseDoc(body []byte) (*Doc, error) {
	var raw struct {
		Paths      map[string]json.RawMessage `json:"paths"`
		Components struct {
			Schemas json.RawMessage `json:"schemas"`
		} `json:"components"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	return &Doc{
		paths:      raw.Paths,
		hasSchemas: len(raw.Components.Schemas) > 0,
	}, nil
}

// HasSchemas reports whether the document carries .components.schemas.
func (d *Doc) HasSchemas() bool {
	return d.hasSchemas
}

// StackPaths returns every documented route whose path names the stacks
// resource, with its supported HTTP methods, sorted by path.
func (d *Doc) StackPaths() []PathEntry {
	entries := make([]PathEntry, 0)
	for path, spec := range d.paths {
		if !stackPathPattern.MatchString(path) {
			continue
		}
		entries = append(entries, PathEntry{Path: path, Methods: methodsOf(spec)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries
}

// ActionPaths filters path entries down to those whose text matches any of
// the create/update action keywords.
func ActionPaths(entries []PathEntry) []PathEntry {
	out := make([]PathEntry, 0)
	for _, e := range entries {
		if actionKeywords.MatchString(e.Path) {
			out = append(out, e)
		}
	}
	return out
}

// methodsOf extracts the HTTP methods documented for one path. Unknown
// keys (parameters, summaries) are ignored.
func methodsOf(spec json.RawMessage) []string {
	var ops map[string]json.RawMessage
	if err := json.Unmarshal(spec, &ops); err != nil {
		return nil
	}

	known := map[string]bool{
		"get": true, "post": true, "put": true, "delete": true,
		"patch": true, "head": true, "options": true,
	}

	methods := make([]string, 0, len(ops))
	for k := range ops {
		if known[strings.ToLower(k)] {
			methods = append(methods, strings.ToUpper(k))
		}
	}
	sort.Strings(methods)
	return methods
}
