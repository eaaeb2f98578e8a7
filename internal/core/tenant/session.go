package tenant

import (
	"context"
	"sync"
)

// Session is the tenant state of one request or client session. It owns
// the committed company; callers read it through the accessors.
type Session struct {
	resolver *Resolver
	rc       RequestContext

	mu         sync.Mutex
	explicit   string
	company    *CompanyInfo
	companyKey string
	loading    int
}

// NewSession creates a session over rc. explicit, when not empty, takes
// precedence over every other key source.
func NewSession(resolver *Resolver, rc RequestContext, explicit string) *Session {
	return &Session{
		resolver: resolver,
		rc:       rc,
		explicit: normalizeKey(explicit),
	}
}

// TenantKey resolves the current tenant key.
func (s *Session) TenantKey() Key {
	s.mu.Lock()
	explicit := s.explicit
	s.mu.Unlock()
	return s.resolver.ResolveKey(s.rc, explicit)
}

// LoadTenant loads and commits the company for the current key. Without
// force a company already committed for that key is returned as is.
// A result whose key was superseded while loading is not committed; the
// currently committed company is returned instead.
func (s *Session) LoadTenant(ctx context.Context, force bool) (*CompanyInfo, error) {
	key := s.TenantKey()

	s.mu.Lock()
	if !force && s.company != nil && s.companyKey == key.String() {
		c := s.company
		s.mu.Unlock()
		return c, nil
	}
	s.loading++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading--
		s.mu.Unlock()
	}()

	c, err := s.resolver.Load(ctx, key, force)
	if err != nil {
		return nil, err
	}

	current := s.TenantKey()

	s.mu.Lock()
	defer s.mu.Unlock()

	if current.String() != key.String() {
		s.resolver.log.WithContext(ctx).Debugw("discarding company for superseded key",
			"loaded_key", key.String(),
			"current_key", current.String(),
		)
		return s.company, nil
	}

	if !force && s.company != nil && s.companyKey == key.String() {
		// A concurrent load committed first.
		return s.company, nil
	}

	s.company = c
	s.companyKey = key.String()
	return c, nil
}

// Company returns the committed company, or nil.
func (s *Session) Company() *CompanyInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.company
}

// Loading reports whether a load is in progress.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading > 0
}

// SetOverride switches the session to key and persists it to the override
// store when the request context has one. An empty key clears the
// override. The committed company is dropped when the key changes.
func (s *Session) SetOverride(key string) Key {
	key = normalizeKey(key)
	if store := s.rc.Overrides(); store != nil {
		store.Set(key)
	}

	s.mu.Lock()
	s.explicit = key
	s.mu.Unlock()

	next := s.TenantKey()

	s.mu.Lock()
	if s.companyKey != next.String() {
		s.company = nil
		s.companyKey = ""
	}
	s.mu.Unlock()
	return next
}
