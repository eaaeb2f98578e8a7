// Package host splits request hosts into registrable domain and subdomain.
package host

import (
	"net"
	"strings"
)

// LoopbackLabel is the dev host label that accepts any number of subdomain labels.
const LoopbackLabel = "localhost"

// Parsed is the result of Parse. An empty Subdomain means the host has none.
type Parsed struct {
	Domain    string `json:"domain"`
	Subdomain string `json:"subdomain,omitempty"`
}

// HasSubdomain reports whether a subdomain was found.
func (p Parsed) HasSubdomain() bool {
	return p.Subdomain != ""
}

// Parse splits host into its registrable domain and subdomain.
// It never fails: input it cannot make sense of comes back as the domain
// with no subdomain. A trailing port is ignored.
func Parse(raw string) Parsed {
	h := Normalize(raw)
	if h == "" {
		return Parsed{}
	}

	if net.ParseIP(h) != nil {
		return Parsed{Domain: h}
	}

	segments := splitLabels(h)
	n := len(segments)
	if n < 2 {
		return Parsed{Domain: h}
	}

	if segments[n-1] == LoopbackLabel {
		return Parsed{
			Domain:    LoopbackLabel,
			Subdomain: strings.Join(segments[:n-1], "."),
		}
	}

	if IsCompoundSuffix(segments[n-2] + "." + segments[n-1]) {
		if n <= 3 {
			return Parsed{Domain: strings.Join(segments, ".")}
		}
		return Parsed{
			Domain:    strings.Join(segments[n-3:], "."),
			Subdomain: strings.Join(segments[:n-3], "."),
		}
	}

	return Parsed{
		Domain:    strings.Join(segments[n-2:], "."),
		Subdomain: strings.Join(segments[:n-2], "."),
	}
}

// Normalize trims, lowercases and drops any port from a host value.
func Normalize(raw string) string {
	return StripPort(strings.ToLower(strings.TrimSpace(raw)))
}

// StripPort removes a trailing ":port" from hostport. Bracketed IPv6
// literals lose their brackets.
func StripPort(hostport string) string {
	if hostport == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		return h
	}
	if strings.HasPrefix(hostport, "[") && strings.HasSuffix(hostport, "]") {
		return hostport[1 : len(hostport)-1]
	}
	return hostport
}

// FirstForwarded returns the first entry of a comma separated forwarded
// header value (X-Forwarded-Host may carry one entry per proxy hop).
func FirstForwarded(value string) string {
	if i := strings.IndexByte(value, ','); i >= 0 {
		value = value[:i]
	}
	return strings.TrimSpace(value)
}

func splitLabels(h string) []string {
	parts := strings.Split(h, ".")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
