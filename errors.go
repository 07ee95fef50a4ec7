package contract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Variant tags produced by Normalize for client- and transport-origin
// failures. Server-declared contract errors use the response's reason
// phrase as their tag instead.
const (
	TypeAborted                   = "aborted"
	TypeClientException           = "client_exception"
	TypeNoInternet                = "no_internet"
	TypeNoServerResponse          = "no_server_response"
	TypeConfigurationIssue        = "configuration_issue"
	TypeUnsupportedServerResponse = "unsupported_server_response"
)

// Reserved status codes for the client/transport-origin variants.
// Non-negative statuses are always server-reported HTTP statuses.
const (
	StatusAborted                   = 0
	StatusClientException           = -1
	StatusNoInternet                = -2
	StatusNoServerResponse          = -3
	StatusConfigurationIssue        = -4
	StatusUnsupportedServerResponse = -5
)

// Error is the normalized error variant: every failure a call can
// produce — server-reported, transport-level, or client-side — collapses
// into this one shape, so callers can switch on Type without any
// error-class checks.
type Error struct {
	// Type discriminates the variant: one of the Type* constants, or
	// the server's reason phrase for contract errors.
	Type string `json:"type"`

	// Status is the HTTP status for server-reported errors and one of
	// the reserved negative Status* codes (or 0 for aborted) otherwise.
	Status int `json:"status"`

	// Message is human-readable.
	Message string `json:"message"`

	// Meta carries variant-specific detail. Present only when the
	// variant declares it.
	Meta map[string]any `json:"meta,omitempty"`

	// RawError preserves the original failure for diagnostics.
	RawError error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Type, e.Status, e.Message)
}

// Unwrap exposes the original failure to errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.RawError }

// Normalize classifies an arbitrary call failure into exactly one Error
// variant. The precedence is fixed:
//
//  1. cancellation                         -> aborted (0)
//  2. server responded, body has message   -> contract error (HTTP status)
//     server responded, no message field   -> unsupported_server_response (-5)
//  3. request sent, nothing came back      -> no_internet (-2) when the
//     offline probe reports offline, else no_server_response (-3)
//  4. request never left the client        -> configuration_issue (-4)
//  5. anything else (validation included)  -> client_exception (-1)
//
// Already-normalized errors pass through unchanged. Normalize(nil) is nil.
func (c *Client) Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	var already *Error
	if errors.As(err, &already) {
		return already
	}
	if errors.Is(err, context.Canceled) {
		return &Error{
			Type:     TypeAborted,
			Status:   StatusAborted,
			Message:  "request aborted",
			RawError: err,
		}
	}
	var status *statusError
	if errors.As(err, &status) {
		return serverError(status, err)
	}
	var transport *transportError
	if errors.As(err, &transport) {
		if c.offline != nil && c.offline() {
			return &Error{
				Type:     TypeNoInternet,
				Status:   StatusNoInternet,
				Message:  "no internet connection",
				RawError: err,
			}
		}
		return &Error{
			Type:     TypeNoServerResponse,
			Status:   StatusNoServerResponse,
			Message:  "no response received from server",
			RawError: err,
		}
	}
	var setup *setupError
	if errors.As(err, &setup) {
		return &Error{
			Type:     TypeConfigurationIssue,
			Status:   StatusConfigurationIssue,
			Message:  "request could not be constructed: " + setup.err.Error(),
			RawError: err,
		}
	}
	return &Error{
		Type:     TypeClientException,
		Status:   StatusClientException,
		Message:  err.Error(),
		RawError: err,
	}
}

// serverError shapes a >= 400 response into either the contract's error
// variant or unsupported_server_response when the body does not carry
// the expected message field.
func serverError(status *statusError, raw error) *Error {
	message := gjson.GetBytes(status.Body, "message")
	if !message.Exists() || message.Type != gjson.String {
		return &Error{
			Type:    TypeUnsupportedServerResponse,
			Status:  StatusUnsupportedServerResponse,
			Message: "server response has no message field",
			Meta: map[string]any{
				"originalStatus":   status.StatusCode,
				"originalResponse": string(status.Body),
			},
			RawError: raw,
		}
	}
	e := &Error{
		Type:     status.Reason,
		Status:   status.StatusCode,
		Message:  message.String(),
		RawError: raw,
	}
	if meta := gjson.GetBytes(status.Body, "meta"); meta.IsObject() {
		if m, ok := meta.Value().(map[string]any); ok {
			e.Meta = m
		}
	}
	return e
}

// ContractError builds a contract-declared error value for an endpoint:
// the value is run through the endpoint's error schema (when supplied)
// and shaped into an *Error. This is the only place the error schema is
// invoked; server failures during a call go through Normalize instead.
func (c *Client) ContractError(name string, value any) (*Error, error) {
	ep := c.lookup(name)
	v := value
	if ep.Schemas.Error != nil {
		parsed, err := ep.Schemas.Error.Parse(value)
		if err != nil {
			return nil, err
		}
		v = parsed
	}
	if e, ok := v.(*Error); ok {
		return e, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("contract: encode error value: %w", err)
	}
	var e Error
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("contract: decode error value: %w", err)
	}
	return &e, nil
}
