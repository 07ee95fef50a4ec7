package contract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// setupError wraps failures that happen before a request is sent: bad
// base URL, unmarshalable payload, request construction. The normalizer
// maps it to configuration_issue.
type setupError struct {
	err error
}

func (e *setupError) Error() string { return "contract: request setup: " + e.err.Error() }
func (e *setupError) Unwrap() error { return e.err }

// transportError wraps failures where the request went out but no
// response came back. The normalizer maps it to no_internet or
// no_server_response, or to aborted when the cause is cancellation.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return "contract: transport: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// statusError wraps a server response with a non-2xx status, carrying
// what the normalizer needs to classify it.
type statusError struct {
	StatusCode int
	Reason     string
	Body       []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("contract: http request failed: %d", e.StatusCode)
}

// execute performs the HTTP request for an endpoint and returns the raw
// response body as the candidate DTO. Cancellation arrives through ctx
// and aborts the in-flight request.
func (c *Client) execute(ctx context.Context, ep *endpoint, concretePath string, query url.Values, payload any) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.newRequest(ctx, ep, concretePath, query, payload)
	if err != nil {
		return nil, &setupError{err}
	}

	resp, err := c.transport.Do(req)
	if err != nil {
		return nil, &transportError{err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return nil, &transportError{err}
	}
	c.logger.Debugf("contract: %s: response body length: %d", ep.name, len(body))

	// Anything outside 2xx is classified by the normalizer rather than
	// fed to DTO decoding. Redirects are normally followed by the
	// transport, so a surfaced 3xx (304, or ErrUseLastResponse) lands
	// here too instead of decoding an empty or HTML body.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{
			StatusCode: resp.StatusCode,
			Reason:     reasonPhrase(resp),
			Body:       body,
		}
	}

	if ct := resp.Header.Get("Content-Type"); len(body) > 0 && !isJSONContentType(ct) {
		c.logger.Warnf("contract: %s: unexpected content-type: %s", ep.name, ct)
		// fallthrough: decoding may still succeed
	}
	return body, nil
}

// newRequest builds the concrete HTTP request from the client's ambient
// configuration and the call's interpolated path, query, and payload.
func (c *Client) newRequest(ctx context.Context, ep *endpoint, concretePath string, query url.Values, payload any) (*http.Request, error) {
	if c.cfg == nil || c.cfg.BaseURL == "" {
		return nil, fmt.Errorf("no base URL configured")
	}
	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", c.cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q needs a scheme and host", c.cfg.BaseURL)
	}

	// concretePath is already percent-encoded; splice it in textually so
	// url.Parse keeps the escaping intact via RawPath.
	full := strings.TrimSuffix(c.cfg.BaseURL, "/") + concretePath
	if len(query) > 0 {
		full += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		c.logger.Debugf("contract: %s: request body length: %d", ep.name, len(raw))
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, ep.Method, full, reqBody)
	if err != nil {
		return nil, err
	}
	if c.cfg.Headers != nil {
		for key, values := range c.cfg.Headers {
			for _, v := range values {
				req.Header.Add(key, v)
			}
		}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	return req, nil
}

// reasonPhrase extracts the reason phrase from a response status line,
// falling back to the standard text when the server sent none.
func reasonPhrase(resp *http.Response) string {
	phrase := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if phrase == "" {
		phrase = http.StatusText(resp.StatusCode)
	}
	return phrase
}

func isJSONContentType(ct string) bool {
	ct = strings.TrimSpace(strings.ToLower(ct))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct == "application/json" || strings.HasSuffix(ct, "+json")
}
