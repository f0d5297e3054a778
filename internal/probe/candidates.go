package probe

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Casing tags the payload key convention a candidate is exercised with.
// Portainer changed its stack payload keys between versions: the legacy
// create route took capitalized keys, newer routes take lower camel case.
type Casing int

const (
	// CasingLegacy is the capitalized convention (Name, StackFileContent).
	CasingLegacy Casing = iota
	// CasingLower is the lower camel convention (name, stackFileContent).
	CasingLower
)

// String returns the tag used in probe labels.
func (c Casing) String() string {
	if c == CasingLegacy {
		return "capitalized keys"
	}
	return "lowercase keys"
}

// Casings lists both conventions in probe order.
var Casings = []Casing{CasingLegacy, CasingLower}

// Candidate is one route shape to probe. Routes are templates under /api;
// {id} is replaced with the stack id and {endpointId} with the endpoint id.
type Candidate struct {
	Name   string
	Method string
	Route  string
}

// CreateCandidates enumerates the stack-create route shapes Portainer has
// shipped across versions. The list is fixed at build time; discovered
// swagger routes are intentionally not fed back in here.
var CreateCandidates = []Candidate{
	{
		Name:   "legacy typed query",
		Method: "POST",
		Route:  "/stacks?type=2&method=string&endpointId={endpointId}",
	},
	{
		Name:   "plain stacks",
		Method: "POST",
		Route:  "/stacks?endpointId={endpointId}",
	},
	{
		Name:   "standalone string",
		Method: "POST",
		Route:  "/stacks/create/standalone/string?endpointId={endpointId}",
	},
	{
		Name:   "swarm string",
		Method: "POST",
		Route:  "/stacks/create/swarm/string?endpointId={endpointId}",
	},
}

// UpdateCandidates enumerates the stack-update route shapes.
var UpdateCandidates = []Candidate{
	{
		Name:   "update with endpoint query",
		Method: "PUT",
		Route:  "/stacks/{id}?endpointId={endpointId}",
	},
	{
		Name:   "update without query",
		Method: "PUT",
		Route:  "/stacks/{id}",
	},
}

// Expand substitutes the id and endpoint id into the route template and
// prefixes the normalized base URL.
func (c Candidate) Expand(baseURL, stackID string, endpointID int) string {
	route := strings.ReplaceAll(c.Route, "{id}", stackID)
	route = strings.ReplaceAll(route, "{endpointId}", fmt.Sprintf("%d", endpointID))
	return baseURL + "/api" + route
}

// Label builds the human-readable probe label for a candidate × casing pair.
func (c Candidate) Label(casing Casing) string {
	return fmt.Sprintf("%s (%s)", c.Name, casing)
}

// Field order in the payload structs mirrors the historical examples; it
// only matters for readable output, not for the server.

type legacyCreateBody struct {
	Name             string `json:"Name"`
	StackFileContent string `json:"StackFileContent"`
	EndpointId       int    `json:"EndpointId"`
}

type lowerCreateBody struct {
	Name             string `json:"name"`
	StackFileContent string `json:"stackFileContent"`
	EndpointId       int    `json:"endpointId"`
}

type legacyUpdateBody struct {
	StackFileContent string `json:"StackFileContent"`
	Prune            bool   `json:"Prune"`
}

type lowerUpdateBody struct {
	StackFileContent string `json:"stackFileContent"`
	Prune            bool   `json:"prune"`
}

// CreatePayload builds a create body in the given casing.
func CreatePayload(casing Casing, name, content string, endpointID int) []byte {
	var body any
	if casing == CasingLegacy {
		body = legacyCreateBody{Name: name, StackFileContent: content, EndpointId: endpointID}
	} else {
		body = lowerCreateBody{Name: name, StackFileContent: content, EndpointId: endpointID}
	}
	data, _ := json.Marshal(body)
	return data
}

// UpdatePayload builds an update body in the given casing.
func UpdatePayload(casing Casing, content string, prune bool) []byte {
	var body any
	if casing == CasingLegacy {
		body = legacyUpdateBody{StackFileContent: content, Prune: prune}
	} else {
		body = lowerUpdateBody{StackFileContent: content, Prune: prune}
	}
	data, _ := json.Marshal(body)
	return data
}
