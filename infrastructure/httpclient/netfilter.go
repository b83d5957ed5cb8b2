package httpclient

import (
	"context"
	"net"
	"strings"
)

// FilterResult is the verdict on an outbound address.
type FilterResult struct {
	// Reason explains a rejection.
	Reason string `json:"reason,omitempty"`

	// ResolvedIP is the address to dial when the host was allowed.
	ResolvedIP string `json:"resolved_ip,omitempty"`

	Allowed bool `json:"allowed"`
}

// FilterOption configures ValidateAddress.
type FilterOption func(*filterConfig)

type filterConfig struct {
	allowlist      []string // hostnames, *.suffix wildcards, IPs or CIDRs
	blocklist      []string
	blockPrivate   bool
	blockLocalhost bool
	blockLinkLocal bool
	blockMulticast bool
	resolver       *net.Resolver
}

func defaultFilterConfig() filterConfig {
	return filterConfig{
		blockPrivate:   true,
		blockLocalhost: true,
		blockLinkLocal: true,
		blockMulticast: true,
		resolver:       net.DefaultResolver,
	}
}

// WithAllowlist sets hosts that skip the restricted-range checks. The
// blocklist still applies to them.
func WithAllowlist(patterns ...string) FilterOption {
	return func(c *filterConfig) {
		c.allowlist = patterns
	}
}

// WithBlocklist sets hosts that are always rejected.
func WithBlocklist(patterns ...string) FilterOption {
	return func(c *filterConfig) {
		c.blocklist = patterns
	}
}

// WithBlockPrivate enables/disables blocking of RFC 1918 private addresses.
func WithBlockPrivate(block bool) FilterOption {
	return func(c *filterConfig) {
		c.blockPrivate = block
	}
}

// WithBlockLocalhost enables/disables blocking of loopback addresses.
func WithBlockLocalhost(block bool) FilterOption {
	return func(c *filterConfig) {
		c.blockLocalhost = block
	}
}

// ValidateAddress decides whether host may be dialed, resolving it when it is
// not an IP literal. The first resolved address is the one checked and returned.
// Checks run blocklist first, then allowlist, then restricted ranges; host and
// resolved IP are both matched against the lists.
func ValidateAddress(ctx context.Context, host string, opts ...FilterOption) FilterResult {
	cfg := defaultFilterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	host = strings.Trim(host, "[]")
	if host == "" {
		return FilterResult{Reason: "empty host"}
	}

	// Hostname rules are checked before resolving so blocked names never hit DNS.
	if matchesAny(cfg.blocklist, host, nil) {
		return FilterResult{Reason: "address in blocklist"}
	}

	ip := net.ParseIP(host)
	if ip == nil {
		addrs, err := cfg.resolver.LookupIP(ctx, "ip", host)
		if err != nil {
			return FilterResult{Reason: "DNS resolution failed: " + err.Error()}
		}
		if len(addrs) == 0 {
			return FilterResult{Reason: "DNS resolution returned no addresses"}
		}
		ip = addrs[0]
	}

	if matchesAny(cfg.blocklist, host, ip) {
		return FilterResult{Reason: "address in blocklist"}
	}
	if matchesAny(cfg.allowlist, host, ip) {
		return FilterResult{Allowed: true, ResolvedIP: ip.String()}
	}

	if reason := restrictedReason(ip, cfg); reason != "" {
		return FilterResult{Reason: reason}
	}
	return FilterResult{Allowed: true, ResolvedIP: ip.String()}
}

func matchesAny(patterns []string, host string, ip net.IP) bool {
	for _, p := range patterns {
		if matchesPattern(host, p) || (ip != nil && matchesPattern(ip.String(), p)) {
			return true
		}
	}
	return false
}

func restrictedReason(ip net.IP, cfg filterConfig) string {
	switch {
	case cfg.blockLocalhost && ip.IsLoopback():
		return "localhost/loopback addresses blocked"
	case cfg.blockPrivate && ip.IsPrivate():
		return "private addresses blocked (RFC 1918)"
	case cfg.blockLinkLocal && (ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()):
		return "link-local addresses blocked"
	case cfg.blockMulticast && ip.IsMulticast():
		return "multicast addresses blocked"
	case ip.IsUnspecified():
		return "unspecified address blocked"
	}
	return ""
}

// matchesPattern checks a host against a hostname, *.suffix wildcard, IP or CIDR.
func matchesPattern(host, pattern string) bool {
	if host == pattern {
		return true
	}
	if strings.HasPrefix(pattern, "*.") && strings.HasSuffix(host, pattern[1:]) {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		if _, cidr, err := net.ParseCIDR(pattern); err == nil && cidr.Contains(ip) {
			return true
		}
	}
	return false
}
