package upstream

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// AuthScheme selects how outbound requests to an upstream are credentialed.
type AuthScheme string

const (
	// AuthNone sends no credential.
	AuthNone AuthScheme = "none"

	// AuthBearerPassthrough relays the inbound Authorization header
	// unmodified. The token is opaque to the gateway: never inspected,
	// never persisted.
	AuthBearerPassthrough AuthScheme = "bearer_passthrough"

	// AuthHeaderKey sends a static API key in a provider-specific header.
	// The header name varies by provider generation ("key", "x-api-key",
	// "api-key") and is part of each provider's documented contract.
	AuthHeaderKey AuthScheme = "header_key"
)

// Well-known upstream names used by the default endpoint set. Reshape hooks
// and default timeouts key off these.
const (
	NameBackend    = "backend"
	NameShippingV1 = "shipping_v1" // "key" header, form-urlencoded cost bodies
	NameShippingV2 = "shipping_v2" // "x-api-key" header, JSON bodies
	NamePayment    = "payment"
	NameMessaging  = "messaging"
	NameWebinar    = "webinar"
)

// Definition describes one upstream service the gateway forwards to.
type Definition struct {
	// Name identifies the upstream in descriptors, logs, and metrics.
	Name string

	// BaseURL is the root the upstream path template is joined onto.
	BaseURL string

	// Scheme selects the credential convention.
	Scheme AuthScheme

	// HeaderName is the API key header for AuthHeaderKey upstreams.
	HeaderName string

	// APIKey is the static credential for AuthHeaderKey upstreams.
	APIKey string

	// HMACSecret, when set, enables request signing: each outbound call
	// carries X-API-Timestamp and X-API-Hash headers computed from the
	// current time and this secret.
	HMACSecret string

	// Timeout bounds each outbound call. Zero means the registry default.
	Timeout time.Duration

	// MaxIdleConns and MaxIdleConnsPerHost tune the pooled transport.
	MaxIdleConns        int
	MaxIdleConnsPerHost int
}

// Validate checks that the definition is complete enough to call.
// An incomplete definition must fail fast before any network attempt.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return &ConfigError{Upstream: "?", Field: "name", Message: "upstream name is required"}
	}
	if d.BaseURL == "" {
		return &ConfigError{Upstream: d.Name, Field: "base_url", Message: "base URL is required"}
	}
	if !strings.HasPrefix(d.BaseURL, "http://") && !strings.HasPrefix(d.BaseURL, "https://") {
		return &ConfigError{Upstream: d.Name, Field: "base_url", Message: "base URL must be http(s)"}
	}
	if d.Scheme == AuthHeaderKey {
		if d.HeaderName == "" {
			return &ConfigError{Upstream: d.Name, Field: "header_name", Message: "API key header name is required"}
		}
		if d.APIKey == "" {
			return &ConfigError{Upstream: d.Name, Field: "api_key", Message: "API key is required"}
		}
	}
	return nil
}

// URL joins the base URL with an already-expanded path.
func (d *Definition) URL(path string) string {
	base := strings.TrimRight(d.BaseURL, "/")
	if path == "" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// Registry holds the configured upstreams and one pooled caller per
// upstream. It is built once at startup and read-only afterwards.
type Registry struct {
	defs    map[string]*Definition
	clients map[string]*Client

	// defaultTimeout applies to definitions that leave Timeout unset.
	defaultTimeout time.Duration
}

// NewRegistry builds a registry from validated definitions.
func NewRegistry(defs []*Definition, defaultTimeout time.Duration) (*Registry, error) {
	if defaultTimeout <= 0 {
		defaultTimeout = 15 * time.Second
	}

	r := &Registry{
		defs:           make(map[string]*Definition, len(defs)),
		clients:        make(map[string]*Client, len(defs)),
		defaultTimeout: defaultTimeout,
	}

	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.defs[d.Name]; dup {
			return nil, fmt.Errorf("duplicate upstream %q", d.Name)
		}
		if d.Timeout <= 0 {
			d.Timeout = defaultTimeout
		}
		r.defs[d.Name] = d
		r.clients[d.Name] = NewClient(d)
	}

	return r, nil
}

// Resolve returns the definition and caller for the named upstream.
func (r *Registry) Resolve(name string) (*Definition, *Client, error) {
	d, ok := r.defs[name]
	if !ok {
		return nil, nil, &ConfigError{Upstream: name, Field: "name", Message: "unknown upstream"}
	}
	return d, r.clients[name], nil
}

// Names returns the configured upstream names, for diagnostics.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	return names
}

// Close releases idle connections held by all callers.
func (r *Registry) Close() {
	for _, c := range r.clients {
		c.Close()
	}
}

// ApplyAuth sets the credential headers on an outbound request according to
// the definition's scheme. inboundAuth is the raw inbound Authorization
// header value, relayed verbatim for bearer-passthrough upstreams.
func (d *Definition) ApplyAuth(req *http.Request, inboundAuth string) {
	switch d.Scheme {
	case AuthBearerPassthrough:
		if inboundAuth != "" {
			req.Header.Set("Authorization", inboundAuth)
		}
	case AuthHeaderKey:
		req.Header.Set(d.HeaderName, d.APIKey)
	}
}
