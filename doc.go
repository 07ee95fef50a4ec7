// Package contract provides a contract-driven remote-call engine: a
// declarative map of named endpoints is compiled into a client that
// validates inputs before sending, validates outputs after receiving,
// and normalizes every possible failure into a single tagged error
// shape the caller can switch on.
//
// # Quick Start
//
// Declare a contract and build a client:
//
//	var api = contract.MustNew(contract.Contract{
//	    "getUser": {
//	        Method: http.MethodGet,
//	        Path:   "/users/:id",
//	        Schemas: contract.Schemas{
//	            PathParams: contract.Object(
//	                contract.Field{Name: "id", Rules: []validation.Rule{validation.Required}},
//	            ),
//	        },
//	    },
//	    "createUser": {
//	        Method: http.MethodPost,
//	        Path:   "/users",
//	        Schemas: contract.Schemas{
//	            Payload: contract.Validatable(),
//	        },
//	    },
//	}, contract.WithBaseURL("https://api.example.com"))
//
// Call endpoints by name:
//
//	user, err := contract.Call[User](ctx, api, "getUser", contract.Input{
//	    PathParams: contract.Params{"id": 7},
//	})
//
// Or use the non-throwing form and switch on the normalized variant:
//
//	res := contract.SafeCall[User](ctx, api, "getUser", in)
//	if !res.OK {
//	    switch res.Err.Type {
//	    case contract.TypeNoInternet, contract.TypeNoServerResponse:
//	        // connectivity trouble; res.Err.Status is -2 or -3
//	    case contract.TypeAborted:
//	        // the caller's context was canceled
//	    default:
//	        // a server-declared error: Type is the reason phrase,
//	        // Status the HTTP status, Message what the server said
//	    }
//	}
//
// # Design Philosophy
//
// The package separates concerns into three layers:
//
//   - Contract: the immutable endpoint map, checked at construction
//   - Pipeline: validation around the network call, in a fixed order
//   - Normalizer: one total classification of every possible failure
//
// Contract mistakes fail fast: New rejects templates without a leading
// slash and placeholder sets that do not exactly match the pathParams
// schema's keys, so a typo surfaces at startup, not on the first call
// in production.
//
// # Validation Pipeline
//
// For each call, the supplied schemas run in a fixed order — pathParams,
// searchParams, payload before the request; dto after the response. A
// slot without a schema is pass-through. A failing schema raises
// *ValidationError carrying the full issue list, and the request never
// reaches the network. Schemas built with Object and Values wrap
// ozzo-validation rules and flatten its nested error format into the
// uniform {path, message} issues.
//
// # Error Normalization
//
// SafeCall collapses every failure into *Error. Negative statuses are
// reserved for client/transport origins: client_exception (-1),
// no_internet (-2), no_server_response (-3), configuration_issue (-4),
// unsupported_server_response (-5), and aborted (0). Non-negative
// statuses are server-reported, with the response's reason phrase as
// the variant tag and the body's message field as the message. The
// classification is total and deterministic; see Client.Normalize.
//
// # Call Hooks
//
// OnCall subscribes an observer to one endpoint. Hooks receive the
// call's resolved input (and the client's ambient configuration, when
// it has one) before the request executes, fire in registration order,
// and never fire for other endpoints. The subscriber list is scoped to
// the client instance, so independent clients stay independent.
//
// # Resolver Endpoints
//
// An Endpoint may set Resolve instead of Method/Path. The resolver
// replaces the HTTP transport for that endpoint while the validation
// pipeline and hook bus still apply — useful for local computation,
// test doubles, or transports this package does not speak.
package contract
