package contract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func plainClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	return MustNew(Contract{"ping": {Method: http.MethodGet, Path: "/ping"}}, opts...)
}

func TestNormalize_Exhaustive(t *testing.T) {
	online := plainClient(t)
	offline := plainClient(t, WithOfflineProbe(func() bool { return true }))

	tests := []struct {
		name       string
		client     *Client
		err        error
		wantType   string
		wantStatus int
	}{
		{
			name:       "server response with message",
			client:     online,
			err:        &statusError{StatusCode: 404, Reason: "Not Found", Body: []byte(`{"message": "user not found"}`)},
			wantType:   "Not Found",
			wantStatus: 404,
		},
		{
			name:       "server response without message",
			client:     online,
			err:        &statusError{StatusCode: 500, Reason: "Internal Server Error", Body: []byte(`<html>oops</html>`)},
			wantType:   TypeUnsupportedServerResponse,
			wantStatus: StatusUnsupportedServerResponse,
		},
		{
			name:       "server response with non-string message",
			client:     online,
			err:        &statusError{StatusCode: 400, Reason: "Bad Request", Body: []byte(`{"message": 42}`)},
			wantType:   TypeUnsupportedServerResponse,
			wantStatus: StatusUnsupportedServerResponse,
		},
		{
			name:       "request made, no response, online",
			client:     online,
			err:        &transportError{&url.Error{Op: "Get", URL: "http://x", Err: errors.New("connection refused")}},
			wantType:   TypeNoServerResponse,
			wantStatus: StatusNoServerResponse,
		},
		{
			name:       "request made, no response, offline",
			client:     offline,
			err:        &transportError{&url.Error{Op: "Get", URL: "http://x", Err: errors.New("connection refused")}},
			wantType:   TypeNoInternet,
			wantStatus: StatusNoInternet,
		},
		{
			name:       "request never constructed",
			client:     online,
			err:        &setupError{errors.New("no base URL configured")},
			wantType:   TypeConfigurationIssue,
			wantStatus: StatusConfigurationIssue,
		},
		{
			name:       "cancellation",
			client:     online,
			err:        &transportError{&url.Error{Op: "Get", URL: "http://x", Err: context.Canceled}},
			wantType:   TypeAborted,
			wantStatus: StatusAborted,
		},
		{
			name:       "arbitrary error",
			client:     online,
			err:        errors.New("something odd"),
			wantType:   TypeClientException,
			wantStatus: StatusClientException,
		},
		{
			name:       "validation error",
			client:     online,
			err:        &ValidationError{Issues: []Issue{{Message: "bad"}}},
			wantType:   TypeClientException,
			wantStatus: StatusClientException,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.client.Normalize(tt.err)
			if got.Type != tt.wantType || got.Status != tt.wantStatus {
				t.Fatalf("got {%s %d}, want {%s %d}", got.Type, got.Status, tt.wantType, tt.wantStatus)
			}
			if got.RawError == nil {
				t.Fatal("raw error not preserved")
			}
		})
	}

	t.Run("nil is nil", func(t *testing.T) {
		if got := online.Normalize(nil); got != nil {
			t.Fatalf("got %v", got)
		}
	})

	t.Run("already normalized passes through unchanged", func(t *testing.T) {
		e := &Error{Type: TypeAborted, Status: StatusAborted, Message: "x"}
		if got := online.Normalize(e); got != e {
			t.Fatalf("got %v", got)
		}
	})
}

func TestNormalize_ServerErrorDetails(t *testing.T) {
	c := plainClient(t)

	t.Run("contract error carries message and meta", func(t *testing.T) {
		got := c.Normalize(&statusError{
			StatusCode: 404,
			Reason:     "Not Found",
			Body:       []byte(`{"message": "user not found", "meta": {"id": 7}}`),
		})
		if got.Message != "user not found" {
			t.Fatalf("got message %q", got.Message)
		}
		if got.Meta["id"] != float64(7) {
			t.Fatalf("got meta %v", got.Meta)
		}
	})

	t.Run("unsupported response keeps the original for diagnostics", func(t *testing.T) {
		got := c.Normalize(&statusError{
			StatusCode: 502,
			Reason:     "Bad Gateway",
			Body:       []byte(`upstream exploded`),
		})
		if got.Meta["originalStatus"] != 502 {
			t.Fatalf("got meta %v", got.Meta)
		}
		if got.Meta["originalResponse"] != "upstream exploded" {
			t.Fatalf("got meta %v", got.Meta)
		}
	})
}

func TestSafeCall_NormalizesTransportFailures(t *testing.T) {
	t.Run("server-declared error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message": "user not found", "meta": {"id": 7}}`)
		}))
		t.Cleanup(srv.Close)

		c := plainClient(t, WithBaseURL(srv.URL))
		res := SafeCall[any](context.Background(), c, "ping", Input{})
		if res.OK {
			t.Fatal("expected failure")
		}
		if res.Err.Type != "Not Found" || res.Err.Status != http.StatusNotFound {
			t.Fatalf("got %+v", res.Err)
		}
		if res.Err.Message != "user not found" {
			t.Fatalf("got %q", res.Err.Message)
		}
	})

	t.Run("canceled context aborts", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		t.Cleanup(srv.Close)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := plainClient(t, WithBaseURL(srv.URL))
		res := SafeCall[any](ctx, c, "ping", Input{})
		if res.OK || res.Err.Type != TypeAborted || res.Err.Status != StatusAborted {
			t.Fatalf("got %+v", res.Err)
		}
	})

	t.Run("unreachable server", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		addr := srv.URL
		srv.Close()

		c := plainClient(t, WithBaseURL(addr))
		res := SafeCall[any](context.Background(), c, "ping", Input{})
		if res.OK || res.Err.Type != TypeNoServerResponse {
			t.Fatalf("got %+v", res.Err)
		}
	})

	t.Run("missing base URL is a configuration issue", func(t *testing.T) {
		c := plainClient(t)
		res := SafeCall[any](context.Background(), c, "ping", Input{})
		if res.OK || res.Err.Type != TypeConfigurationIssue || res.Err.Status != StatusConfigurationIssue {
			t.Fatalf("got %+v", res.Err)
		}
	})
}

func TestContractError(t *testing.T) {
	c := MustNew(Contract{"getUser": {
		Method:  http.MethodGet,
		Path:    "/users",
		Schemas: Schemas{Error: Object(
			Field{Name: "type", Rules: []validation.Rule{validation.Required}},
			Field{Name: "status", Rules: []validation.Rule{validation.Required}},
			Field{Name: "message", Rules: []validation.Rule{validation.Required}},
			Field{Name: "meta", Optional: true},
		)},
	}})

	t.Run("shapes a valid value into Error", func(t *testing.T) {
		e, err := c.ContractError("getUser", map[string]any{
			"type":    "user_not_found",
			"status":  404,
			"message": "no such user",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e.Type != "user_not_found" || e.Status != 404 || e.Message != "no such user" {
			t.Fatalf("got %+v", e)
		}
	})

	t.Run("rejects values failing the error schema", func(t *testing.T) {
		_, err := c.ContractError("getUser", map[string]any{"type": "x"})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("got %T: %v", err, err)
		}
	})

	t.Run("passes through an existing Error", func(t *testing.T) {
		c := MustNew(Contract{"op": {Method: http.MethodGet, Path: "/op"}})
		in := &Error{Type: "weird", Status: 418, Message: "teapot"}
		out, err := c.ContractError("op", in)
		if err != nil || out != in {
			t.Fatalf("got %v, %v", out, err)
		}
	})
}
