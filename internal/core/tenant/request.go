package tenant

import (
	"net/http"
	"sync"
	"time"

	"contalink/internal/core/host"
)

// DefaultOverrideCookie is the cookie holding the dev subdomain override.
const DefaultOverrideCookie = "dev-subdomain"

// QueryOverrideParam is the query parameter that overrides the tenant key.
const QueryOverrideParam = "subdomain"

// OverrideStore persists a tenant key override across requests.
type OverrideStore interface {
	Get() string
	Set(key string)
}

// RequestContext is what key resolution reads from a request.
type RequestContext interface {
	// Host returns the host the client addressed.
	Host() string
	// Query returns a query parameter, or "" when the context has none.
	Query(name string) string
	// Overrides returns the override store, or nil.
	Overrides() OverrideStore
}

// HeaderContext reads the host from proxy headers. It carries no query
// override and no store.
type HeaderContext struct {
	req *http.Request
}

var _ RequestContext = (*HeaderContext)(nil)

// NewHeaderContext wraps an incoming server request.
func NewHeaderContext(r *http.Request) *HeaderContext {
	return &HeaderContext{req: r}
}

// Host returns X-Forwarded-Host, falling back to the Host header.
func (c *HeaderContext) Host() string {
	if fwd := host.FirstForwarded(c.req.Header.Get("X-Forwarded-Host")); fwd != "" {
		return host.Normalize(fwd)
	}
	return host.Normalize(c.req.Host)
}

func (c *HeaderContext) Query(string) string { return "" }

func (c *HeaderContext) Overrides() OverrideStore { return nil }

// LocationContext reads the host the client sees, honours the ?subdomain=
// override and persists overrides in a cookie. Used in development.
type LocationContext struct {
	req   *http.Request
	store OverrideStore
}

var _ RequestContext = (*LocationContext)(nil)

// NewLocationContext wraps a request and its response writer.
func NewLocationContext(w http.ResponseWriter, r *http.Request, cookieName string) *LocationContext {
	return &LocationContext{
		req:   r,
		store: NewCookieOverrideStore(w, r, cookieName),
	}
}

func (c *LocationContext) Host() string {
	if c.req.URL != nil && c.req.URL.Host != "" {
		return host.Normalize(c.req.URL.Host)
	}
	return host.Normalize(c.req.Host)
}

func (c *LocationContext) Query(name string) string {
	if c.req.URL == nil {
		return ""
	}
	return c.req.URL.Query().Get(name)
}

func (c *LocationContext) Overrides() OverrideStore { return c.store }

// StaticContext is a fixed RequestContext for the CLI and tests.
type StaticContext struct {
	HostName string
	Params   map[string]string
	Store    OverrideStore
}

var _ RequestContext = StaticContext{}

func (c StaticContext) Host() string { return c.HostName }

func (c StaticContext) Query(name string) string { return c.Params[name] }

func (c StaticContext) Overrides() OverrideStore { return c.Store }

// ContextFactory builds the RequestContext for a request. It is chosen once
// at startup.
type ContextFactory func(w http.ResponseWriter, r *http.Request) RequestContext

// NewContextFactory returns LocationContext when dev overrides are enabled
// and HeaderContext otherwise.
func NewContextFactory(devOverrides bool, cookieName string) ContextFactory {
	if cookieName == "" {
		cookieName = DefaultOverrideCookie
	}
	if devOverrides {
		return func(w http.ResponseWriter, r *http.Request) RequestContext {
			return NewLocationContext(w, r, cookieName)
		}
	}
	return func(_ http.ResponseWriter, r *http.Request) RequestContext {
		return NewHeaderContext(r)
	}
}

// --- Override stores ---

// overrideCookieMaxAge keeps the dev override for thirty days.
const overrideCookieMaxAge = 30 * 24 * time.Hour

// CookieOverrideStore keeps the override in a cookie. A value set during
// the request is visible to later Gets on the same store.
type CookieOverrideStore struct {
	w    http.ResponseWriter
	r    *http.Request
	name string

	mu      sync.Mutex
	pending *string
}

var _ OverrideStore = (*CookieOverrideStore)(nil)

// NewCookieOverrideStore creates a cookie store for one request.
func NewCookieOverrideStore(w http.ResponseWriter, r *http.Request, name string) *CookieOverrideStore {
	return &CookieOverrideStore{w: w, r: r, name: name}
}

func (s *CookieOverrideStore) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		return *s.pending
	}
	cookie, err := s.r.Cookie(s.name)
	if err != nil {
		return ""
	}
	return normalizeKey(cookie.Value)
}

func (s *CookieOverrideStore) Set(key string) {
	key = normalizeKey(key)

	s.mu.Lock()
	s.pending = &key
	s.mu.Unlock()

	if s.w == nil {
		return
	}
	cookie := &http.Cookie{
		Name:     s.name,
		Value:    key,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(overrideCookieMaxAge.Seconds()),
	}
	if key == "" {
		cookie.MaxAge = -1
	}
	http.SetCookie(s.w, cookie)
}

// MemoryOverrideStore is an in-process OverrideStore.
type MemoryOverrideStore struct {
	mu    sync.Mutex
	value string
}

var _ OverrideStore = (*MemoryOverrideStore)(nil)

func (s *MemoryOverrideStore) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

func (s *MemoryOverrideStore) Set(key string) {
	s.mu.Lock()
	s.value = normalizeKey(key)
	s.mu.Unlock()
}
