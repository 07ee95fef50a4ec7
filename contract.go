package contract

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Params holds named parameter values for path interpolation or query
// string construction. Values are stringified with fmt.Sprint when they
// reach the wire.
type Params map[string]any

// Input carries the caller-supplied slots for a single call. Which slots
// matter is determined by the endpoint's contract: a slot the contract does
// not declare a schema for is passed through unvalidated.
type Input struct {
	// PathParams supplies values for the :name placeholders in the
	// endpoint's path template.
	PathParams Params

	// SearchParams becomes the query string, one key per entry. Slice
	// values ([]string or []any) expand into repeated keys.
	SearchParams Params

	// Payload is the request body, JSON-encoded for HTTP endpoints.
	Payload any

	// Extra is opaque to the call pipeline. It is visible to call hooks
	// and resolver functions, and introspectable when an extra schema
	// was supplied.
	Extra any
}

// Resolver replaces the HTTP transport for an endpoint. When an Endpoint
// sets Resolve, the call pipeline still validates inputs and publishes
// call hooks, but the network request is replaced by this function. The
// returned value is the candidate DTO and goes through DTO validation
// like a response body would.
type Resolver func(ctx context.Context, in Input) (any, error)

// Schemas holds the optional validation slots of an endpoint. A nil slot
// means pass-through: the value is accepted as-is and the slot is absent
// from Client.Schema introspection. That is observably different from a
// schema that always succeeds.
type Schemas struct {
	// Payload validates the request body before the call.
	Payload Schema

	// DTO validates (and may transform) the response after the call.
	DTO Schema

	// Error validates error values built with Client.ContractError. It is
	// never invoked automatically during the call lifecycle; server-side
	// failures go through Client.Normalize instead.
	Error Schema

	// PathParams validates the path parameters before interpolation.
	PathParams Schema

	// SearchParams validates the query parameters before encoding.
	SearchParams Schema

	// Extra validates nothing automatically; it exists so tooling can
	// introspect the extra slot's shape.
	Extra Schema
}

// each visits the supplied slots in pipeline order.
func (s *Schemas) each(fn func(slot Slot, schema Schema)) {
	for _, e := range []struct {
		slot   Slot
		schema Schema
	}{
		{SlotPathParams, s.PathParams},
		{SlotSearchParams, s.SearchParams},
		{SlotPayload, s.Payload},
		{SlotDTO, s.DTO},
		{SlotError, s.Error},
		{SlotExtra, s.Extra},
	} {
		if e.schema != nil {
			fn(e.slot, e.schema)
		}
	}
}

// Endpoint describes one remote operation: an HTTP method plus a path
// template, or a Resolver, with zero or more validation schemas.
//
// Path templates use :name placeholders, each occupying a whole path
// segment:
//
//	{Method: http.MethodGet, Path: "/users/:id"}
//
// Placeholder values are percent-encoded with url.PathEscape during
// interpolation, so a parameter containing "/" cannot smuggle extra
// path segments into the URL.
type Endpoint struct {
	// Method is the HTTP method. Mandatory unless Resolve is set.
	Method string

	// Path is the path template. It must start with "/". Mandatory
	// unless Resolve is set, in which case it may be empty.
	Path string

	// Schemas are the optional validation slots.
	Schemas Schemas

	// Resolve, when non-nil, replaces the HTTP transport for this
	// endpoint.
	Resolve Resolver
}

// Contract maps endpoint names to their descriptors. It is read once by
// New; the client keeps its own copy, so later mutation of the map by the
// caller has no effect.
type Contract map[string]Endpoint

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// endpoint is the compiled form of an Endpoint held by the client.
type endpoint struct {
	Endpoint
	name         string
	placeholders []string
}

// compile validates a descriptor at registration time so that contract
// mistakes surface before any call is made.
func compile(name string, e Endpoint) (*endpoint, error) {
	if e.Resolve == nil {
		if !allowedMethods[e.Method] {
			return nil, fmt.Errorf("method %q is not one of GET, POST, PUT, PATCH, DELETE", e.Method)
		}
		if e.Path == "" {
			return nil, fmt.Errorf("path template is required")
		}
	}
	if e.Path != "" && !strings.HasPrefix(e.Path, "/") {
		return nil, fmt.Errorf("path template %q must start with /", e.Path)
	}

	placeholders, err := parsePlaceholders(e.Path)
	if err != nil {
		return nil, err
	}

	if len(placeholders) > 0 && e.Schemas.PathParams == nil {
		return nil, fmt.Errorf("path template %q has placeholders but no pathParams schema", e.Path)
	}
	// Resolver endpoints without a path template use the pathParams
	// schema for plain input validation; there is nothing to match.
	if e.Path != "" {
		if err := checkPlaceholderKeys(e.Path, placeholders, e.Schemas.PathParams); err != nil {
			return nil, err
		}
	}

	return &endpoint{Endpoint: e, name: name, placeholders: placeholders}, nil
}

// checkPlaceholderKeys enforces the exact-match invariant between the
// template's placeholder set and the pathParams schema's key set. The
// check only applies when the schema can enumerate its keys; opaque
// schemas (predicates) are trusted.
func checkPlaceholderKeys(path string, placeholders []string, schema Schema) error {
	if schema == nil {
		return nil
	}
	namer, ok := schema.(FieldNamer)
	if !ok {
		return nil
	}

	want := make(map[string]bool, len(placeholders))
	for _, p := range placeholders {
		want[p] = true
	}
	got := namer.FieldNames()
	for _, k := range got {
		if !want[k] {
			return fmt.Errorf("pathParams schema declares %q but path template %q has no :%s placeholder", k, path, k)
		}
		delete(want, k)
	}
	for k := range want {
		return fmt.Errorf("path template %q placeholder :%s is missing from the pathParams schema", path, k)
	}
	return nil
}
