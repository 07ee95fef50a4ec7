package contract

import (
	"context"
	"encoding/json"
	"fmt"
)

// Call invokes a named endpoint and returns the decoded DTO.
//
// The stages run in a fixed order: pathParams, searchParams, and payload
// are validated (in that order) before anything touches the network; the
// path template is interpolated; call hooks fire; the executor performs
// the request (or the endpoint's Resolver runs); and finally the DTO
// schema validates the result. A failure at any stage propagates to the
// caller as-is — *ValidationError for schema failures, wrapped transport
// errors otherwise. Use SafeCall for the normalized, non-throwing form.
//
// This is a package-level function (not a method) due to Go generics
// limitations: methods cannot have type parameters independent of the
// receiver.
//
// Example:
//
//	user, err := contract.Call[User](ctx, client, "getUser", contract.Input{
//	    PathParams: contract.Params{"id": 7},
//	})
func Call[T any](ctx context.Context, c *Client, name string, in Input) (T, error) {
	var zero T
	ep := c.lookup(name)

	validated, err := c.validateInput(ep, in)
	if err != nil {
		return zero, err
	}

	concretePath := ""
	if ep.Path != "" {
		concretePath, err = interpolate(ep.Path, validated.PathParams)
		if err != nil {
			return zero, err
		}
	}

	c.hooks.publish(CallInfo{
		Endpoint:     name,
		PathParams:   validated.PathParams,
		SearchParams: validated.SearchParams,
		Payload:      validated.Payload,
		Extra:        validated.Extra,
		Config:       c.cfg.clone(),
	})

	if ep.Resolve != nil {
		out, err := ep.Resolve(ctx, validated)
		if err != nil {
			return zero, err
		}
		if ep.Schemas.DTO != nil {
			out, err = ep.Schemas.DTO.Parse(out)
			if err != nil {
				return zero, err
			}
		}
		return convert[T](out)
	}

	body, err := c.execute(ctx, ep, concretePath, encodeQuery(validated.SearchParams), validated.Payload)
	if err != nil {
		return zero, err
	}
	return decodeDTO[T](ep, body)
}

// Result is SafeCall's ordered ok/error pair: OK reports success, DTO is
// the decoded value when OK, and Err is the normalized error when not.
// OK and a non-nil Err are mutually exclusive.
type Result[T any] struct {
	OK  bool
	DTO T
	Err *Error
}

// SafeCall is the non-throwing calling convention: it wraps Call and
// routes every failure through Normalize, so the caller can always
// switch on Result.Err.Type without inspecting error classes.
//
// Example:
//
//	res := contract.SafeCall[User](ctx, client, "getUser", in)
//	if !res.OK {
//	    switch res.Err.Type {
//	    case contract.TypeNoInternet:
//	        // offline banner
//	    case "Not Found":
//	        // contract error from the server
//	    }
//	}
func SafeCall[T any](ctx context.Context, c *Client, name string, in Input) Result[T] {
	dto, err := Call[T](ctx, c, name, in)
	if err != nil {
		return Result[T]{Err: c.Normalize(err)}
	}
	return Result[T]{OK: true, DTO: dto}
}

// validateInput runs the pre-call validation stages in contract order
// and returns the input with any schema transforms applied. Slots
// without a schema pass through untouched.
func (c *Client) validateInput(ep *endpoint, in Input) (Input, error) {
	if ep.Schemas.PathParams != nil {
		v, err := ep.Schemas.PathParams.Parse(in.PathParams)
		if err != nil {
			return in, err
		}
		in.PathParams = asParams(v, in.PathParams)
	}
	if ep.Schemas.SearchParams != nil {
		v, err := ep.Schemas.SearchParams.Parse(in.SearchParams)
		if err != nil {
			return in, err
		}
		in.SearchParams = asParams(v, in.SearchParams)
	}
	if ep.Schemas.Payload != nil {
		v, err := ep.Schemas.Payload.Parse(in.Payload)
		if err != nil {
			return in, err
		}
		in.Payload = v
	}
	return in, nil
}

func asParams(v any, fallback Params) Params {
	switch p := v.(type) {
	case Params:
		return p
	case map[string]any:
		return Params(p)
	default:
		return fallback
	}
}

// decodeDTO turns the raw response body into the caller's type. With a
// DTO schema the body is decoded generically first so the schema sees
// (and may transform) the structural value; without one the body is
// decoded straight into T.
func decodeDTO[T any](ep *endpoint, body []byte) (T, error) {
	var zero T
	if ep.Schemas.DTO == nil {
		if len(body) == 0 {
			return zero, nil
		}
		var out T
		if err := json.Unmarshal(body, &out); err != nil {
			return zero, fmt.Errorf("contract: decode response: %w", err)
		}
		return out, nil
	}

	var doc any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &doc); err != nil {
			return zero, fmt.Errorf("contract: decode response: %w", err)
		}
	}
	validated, err := ep.Schemas.DTO.Parse(doc)
	if err != nil {
		return zero, err
	}
	return convert[T](validated)
}

// convert shapes a schema's output into T: a direct type assertion when
// possible, otherwise a JSON round-trip.
func convert[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	if t, ok := v.(T); ok {
		return t, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return zero, fmt.Errorf("contract: convert dto: %w", err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("contract: convert dto: %w", err)
	}
	return out, nil
}
