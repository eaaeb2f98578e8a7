package host

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Parsed
	}{
		{"empty", "", Parsed{}},
		{"blank", "   ", Parsed{}},
		{"single label", "intranet", Parsed{Domain: "intranet"}},
		{"bare localhost", "localhost", Parsed{Domain: "localhost"}},
		{"dev localhost", "dev.localhost", Parsed{Domain: "localhost", Subdomain: "dev"}},
		{"nested localhost", "a.b.localhost", Parsed{Domain: "localhost", Subdomain: "a.b"}},
		{"localhost with port", "pepito.localhost:3000", Parsed{Domain: "localhost", Subdomain: "pepito"}},
		{"simple domain", "acme.com", Parsed{Domain: "acme.com"}},
		{"simple subdomain", "shop.acme.com", Parsed{Domain: "acme.com", Subdomain: "shop"}},
		{"deep subdomain", "a.b.acme.com", Parsed{Domain: "acme.com", Subdomain: "a.b"}},
		{"compound suffix no subdomain", "acme.com.co", Parsed{Domain: "acme.com.co"}},
		{"compound suffix subdomain", "shop.acme.com.co", Parsed{Domain: "acme.com.co", Subdomain: "shop"}},
		{"compound suffix deep", "x.shop.acme.co.uk", Parsed{Domain: "acme.co.uk", Subdomain: "x.shop"}},
		{"bare compound suffix", "com.co", Parsed{Domain: "com.co"}},
		{"upper case and spaces", "  SHOP.Acme.COM ", Parsed{Domain: "acme.com", Subdomain: "shop"}},
		{"empty labels dropped", "shop..acme.com.", Parsed{Domain: "acme.com", Subdomain: "shop"}},
		{"ipv4", "192.168.1.10", Parsed{Domain: "192.168.1.10"}},
		{"ipv4 with port", "10.0.0.1:8080", Parsed{Domain: "10.0.0.1"}},
		{"ipv6", "[::1]:8080", Parsed{Domain: "::1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestParseCompoundSuffixProperties(t *testing.T) {
	for suffix := range compoundSuffixes {
		three := "acme." + suffix
		assert.False(t, Parse(three).HasSubdomain(), three)
		assert.Equal(t, three, Parse(three).Domain)

		deep := "a.b.acme." + suffix
		got := Parse(deep)
		assert.Equal(t, "a.b", got.Subdomain, deep)
		assert.Equal(t, three, got.Domain)
		assert.Equal(t, 3, strings.Count(got.Domain, ".")+1)
	}
}

func TestStripPort(t *testing.T) {
	assert.Equal(t, "", StripPort(""))
	assert.Equal(t, "acme.com", StripPort("acme.com"))
	assert.Equal(t, "acme.com", StripPort("acme.com:443"))
	assert.Equal(t, "::1", StripPort("[::1]"))
	assert.Equal(t, "::1", StripPort("::1"))
}

func TestFirstForwarded(t *testing.T) {
	assert.Equal(t, "shop.acme.com", FirstForwarded("shop.acme.com, proxy.internal"))
	assert.Equal(t, "shop.acme.com", FirstForwarded(" shop.acme.com "))
	assert.Equal(t, "", FirstForwarded(""))
}
