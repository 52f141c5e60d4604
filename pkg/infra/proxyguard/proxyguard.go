package proxyguard

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

var (
	ErrSchemeNotAllowed = errors.New("url scheme not allowed")
	ErrHostNotAllowed   = errors.New("host not allowed")
)

// metadataHostnames are cloud metadata endpoints reachable by name.
var metadataHostnames = map[string]struct{}{
	"metadata.google.internal":       {},
	"metadata.goog":                  {},
	"metadata":                       {},
	"instance-data":                  {},
	"instance-data.ec2.internal":     {},
	"metadata.azure.internal":        {},
	"metadata.platformequinix.com":   {},
	"metadata.packet.net":            {},
	"metadata.oraclecloud.com":       {},
	"metadata.internal":              {},
	"metadata.digitalocean.internal": {},
}

// Guard validates outbound proxy targets so the image and drive proxies
// cannot be turned into an internal network scanner.
type Guard struct {
	lookup func(host string) ([]net.IP, error)
}

func New() *Guard {
	return &Guard{lookup: net.LookupIP}
}

// NewWithLookup injects the resolver. Tests use it to avoid real DNS.
func NewWithLookup(lookup func(host string) ([]net.IP, error)) *Guard {
	return &Guard{lookup: lookup}
}

// ValidateURL parses and checks a full proxy target. The hostname is
// resolved and every resulting address must be publicly routable, which
// also defeats decimal, hex and octal renderings of internal addresses:
// whatever notation the attacker used, the resolver reduces it to the IP
// actually dialed.
func (g *Guard) ValidateURL(rawURL string) (*url.URL, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, ErrSchemeNotAllowed
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return nil, ErrHostNotAllowed
	}
	if _, denied := metadataHostnames[host]; denied {
		return nil, ErrHostNotAllowed
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return nil, ErrHostNotAllowed
	}
	if strings.HasSuffix(host, ".internal") || strings.HasSuffix(host, ".local") {
		return nil, ErrHostNotAllowed
	}

	if ip := net.ParseIP(strings.Trim(host, "[]")); ip != nil {
		if !publiclyRoutable(ip) {
			return nil, ErrHostNotAllowed
		}
		return parsed, nil
	}

	ips, err := g.lookup(host)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", host, err)
	}
	if len(ips) == 0 {
		return nil, ErrHostNotAllowed
	}
	for _, ip := range ips {
		if !publiclyRoutable(ip) {
			return nil, ErrHostNotAllowed
		}
	}
	return parsed, nil
}

func publiclyRoutable(ip net.IP) bool {
	switch {
	case ip.IsLoopback(),
		ip.IsPrivate(),
		ip.IsLinkLocalUnicast(),
		ip.IsLinkLocalMulticast(),
		ip.IsUnspecified(),
		ip.IsMulticast():
		return false
	}
	// carrier-grade NAT range
	if v4 := ip.To4(); v4 != nil && v4[0] == 100 && v4[1] >= 64 && v4[1] <= 127 {
		return false
	}
	return true
}
