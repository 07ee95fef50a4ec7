package contract

import (
	"fmt"
	"net/http"
	"sort"
	"time"
)

// Logger receives diagnostic output from the client. The interface is
// satisfied by github.com/apex/log loggers; the default discards
// everything.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

type discardLogger struct{}

func (discardLogger) Debugf(string, ...any) {}
func (discardLogger) Warnf(string, ...any)  {}

// Doer performs HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config is the ambient per-client configuration applied to every HTTP
// request. It exists only when at least one of WithBaseURL, WithHeader,
// or WithUserAgent was used; call hooks receive it (a copy) in that case
// and a nil Config otherwise.
type Config struct {
	// BaseURL is prepended to every interpolated path. Mandatory for
	// HTTP endpoints; resolver endpoints do not use it.
	BaseURL string

	// Headers are set on every request.
	Headers http.Header

	// UserAgent sets the User-Agent header when non-empty.
	UserAgent string
}

func (c *Config) clone() *Config {
	if c == nil {
		return nil
	}
	out := &Config{BaseURL: c.BaseURL, UserAgent: c.UserAgent}
	if c.Headers != nil {
		out.Headers = c.Headers.Clone()
	}
	return out
}

// DefaultMaxBodySize caps how much of a response body is read.
const DefaultMaxBodySize = 1 << 22

// DefaultCallTimeout applies to calls whose context carries no deadline.
const DefaultCallTimeout = 60 * time.Second

// Client dispatches calls against an immutable contract. Build one with
// New at application start; it is safe for concurrent use.
type Client struct {
	endpoints map[string]*endpoint
	cfg       *Config
	transport Doer
	logger    Logger
	offline   func() bool
	maxBody   int64
	timeout   time.Duration
	hooks     hookBus
}

// Option configures a Client.
type Option func(*Client)

func (c *Client) ensureConfig() *Config {
	if c.cfg == nil {
		c.cfg = &Config{}
	}
	return c.cfg
}

// WithBaseURL sets the base URL prepended to every interpolated path.
// Required for contracts with HTTP endpoints.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.ensureConfig().BaseURL = u
	}
}

// WithHeader adds a default header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		cfg := c.ensureConfig()
		if cfg.Headers == nil {
			cfg.Headers = make(http.Header)
		}
		cfg.Headers.Add(key, value)
	}
}

// WithUserAgent sets the User-Agent header for every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.ensureConfig().UserAgent = ua
	}
}

// WithHTTPClient replaces the transport. Use it to install timeouts,
// proxies, or a test double.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		c.transport = d
	}
}

// WithLogger installs a logger for request/response diagnostics.
//
// Example:
//
//	contract.WithLogger(log.Log) // github.com/apex/log
func WithLogger(l Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithOfflineProbe supplies the connectivity check consulted when a
// request was sent but no response came back: probe() == true yields the
// no_internet variant instead of no_server_response. The default probe
// always reports online.
func WithOfflineProbe(probe func() bool) Option {
	return func(c *Client) {
		c.offline = probe
	}
}

// WithMaxBodySize caps how many response bytes are read. Defaults to
// DefaultMaxBodySize.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		c.maxBody = n
	}
}

// WithCallTimeout sets the per-call timeout applied when the caller's
// context has no deadline. Zero disables the default timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New compiles the contract into a Client. Every descriptor is checked
// up front — method, leading slash, placeholder syntax, and the exact
// match between placeholders and the pathParams schema's keys — so a
// malformed contract fails at startup rather than on first call.
func New(contract Contract, opts ...Option) (*Client, error) {
	c := &Client{
		endpoints: make(map[string]*endpoint, len(contract)),
		transport: http.DefaultClient,
		logger:    discardLogger{},
		offline:   func() bool { return false },
		maxBody:   DefaultMaxBodySize,
		timeout:   DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	names := make([]string, 0, len(contract))
	for name := range contract {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ep, err := compile(name, contract[name])
		if err != nil {
			return nil, fmt.Errorf("contract: endpoint %q: %w", name, err)
		}
		c.endpoints[name] = ep
	}
	return c, nil
}

// MustNew is like New but panics on a malformed contract. Use it for
// static contracts declared at package level.
func MustNew(contract Contract, opts ...Option) *Client {
	c, err := New(contract, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// lookup resolves an endpoint by name. Calling an endpoint that the
// contract does not declare is a programming error, not a runtime
// condition, so it panics.
func (c *Client) lookup(name string) *endpoint {
	ep, ok := c.endpoints[name]
	if !ok {
		panic(fmt.Sprintf("contract: unknown endpoint %q", name))
	}
	return ep
}
