// Package tenant resolves the company behind a request host.
//
// A request host is parsed into a tenant Key (subdomain and registrable
// domain, with dev overrides), and the Key is resolved to a CompanyInfo
// through a Directory, a Cache and a built-in fallback table.
package tenant

import "strings"

// Mode selects the UI a company is routed to.
type Mode string

const (
	ModeEcommerce Mode = "ecommerce"
	ModePOS       Mode = "pos"
	ModePro       Mode = "pro"
	ModeAutopago  Mode = "autopago"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeEcommerce, ModePOS, ModePro, ModeAutopago:
		return true
	}
	return false
}

// HomePath returns the portal route for m. Unknown modes route to ecommerce.
func (m Mode) HomePath() string {
	switch m {
	case ModePro:
		return "/subdomain/pro"
	case ModePOS:
		return "/subdomain/restaurant"
	case ModeAutopago:
		return "/subdomain/retail"
	default:
		return "/subdomain/ecommerce"
	}
}

// CompanyInfo is a tenant record as served by the company directory.
// Records handed out by a Resolver, its caches or a Session are shared
// between requests and must be treated as read-only; Clone before changing.
type CompanyInfo struct {
	ID             int64  `json:"id" db:"id"`
	Name           string `json:"name" db:"name"`
	Subdomain      string `json:"subdomain" db:"subdomain"`
	CustomDomain   string `json:"custom_domain,omitempty" db:"custom_domain"`
	Mode           Mode   `json:"mode" db:"mode"`
	ImageURL       string `json:"imageUrl,omitempty" db:"image_url"`
	IsActive       bool   `json:"is_active" db:"is_active"`
	PrimaryColor   string `json:"primary_color,omitempty" db:"primary_color"`
	SecondaryColor string `json:"secondary_color,omitempty" db:"secondary_color"`
	FontFamily     string `json:"font_family,omitempty" db:"font_family"`
	Tagline        string `json:"tagline,omitempty" db:"tagline"`

	// BackendID identifies the company's legacy database server on the records API.
	BackendID int64 `json:"empresa_servidor_id,omitempty" db:"empresa_servidor_id"`

	// Synthetic marks companies built from the fallback table.
	Synthetic bool `json:"-" db:"-"`
}

// Clone returns a copy of c, or nil.
func (c *CompanyInfo) Clone() *CompanyInfo {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Valid reports whether c is a usable directory record.
func (c *CompanyInfo) Valid() bool {
	return c != nil && c.ID != 0
}

// EffectiveMode returns the company mode, ecommerce when unset or unknown.
func (c *CompanyInfo) EffectiveMode() Mode {
	if c == nil || !c.Mode.Valid() {
		return ModeEcommerce
	}
	return c.Mode
}

// Theme defaults applied when a company leaves a preference empty.
const (
	DefaultPrimaryColor   = "#2563EB"
	DefaultSecondaryColor = "#1D4ED8"
	DefaultFontFamily     = "Inter, sans-serif"
	DefaultTagline        = "Portal empresarial"
)

// Preferences is the presentation data derived from a company.
type Preferences struct {
	Mode           Mode   `json:"mode"`
	HomePath       string `json:"homePath"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	FontFamily     string `json:"fontFamily"`
	Tagline        string `json:"tagline"`
}

// Preferences returns the company theme with defaults filled in.
func (c *CompanyInfo) Preferences() Preferences {
	mode := c.EffectiveMode()
	p := Preferences{
		Mode:           mode,
		HomePath:       mode.HomePath(),
		PrimaryColor:   DefaultPrimaryColor,
		SecondaryColor: DefaultSecondaryColor,
		FontFamily:     DefaultFontFamily,
		Tagline:        DefaultTagline,
	}
	if c == nil {
		return p
	}
	if c.PrimaryColor != "" {
		p.PrimaryColor = c.PrimaryColor
	}
	if c.SecondaryColor != "" {
		p.SecondaryColor = c.SecondaryColor
	}
	if c.FontFamily != "" {
		p.FontFamily = c.FontFamily
	}
	if c.Tagline != "" {
		p.Tagline = c.Tagline
	}
	return p
}

// KeySource records which rule produced a Key.
type KeySource string

const (
	SourceNone     KeySource = ""
	SourceExplicit KeySource = "explicit"
	SourceHost     KeySource = "host"
	SourceQuery    KeySource = "query"
	SourceStored   KeySource = "stored"
	SourceDomain   KeySource = "domain"
)

// Key identifies a tenant. Domain is the registrable domain of the request
// host and is kept even when Subdomain came from an override.
type Key struct {
	Subdomain string    `json:"subdomain,omitempty"`
	Domain    string    `json:"domain,omitempty"`
	Source    KeySource `json:"source,omitempty"`
}

// String returns the canonical tenant key: the subdomain, else the domain.
func (k Key) String() string {
	if k.Subdomain != "" {
		return k.Subdomain
	}
	return k.Domain
}

// IsZero reports whether k identifies nothing.
func (k Key) IsZero() bool {
	return k.Subdomain == "" && k.Domain == ""
}

// normalizeKey trims and lowercases an override value.
func normalizeKey(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
