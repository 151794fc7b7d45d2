// Package metadata resolves the client address and user agent of a request
// into requestcontext.Client for audit attribution and access logs.
package metadata

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/mssola/useragent"

	"veriledger/pkg/requestcontext"
)

// MaxForwardedHeaderLength bounds X-Forwarded-For and X-Real-IP.
const MaxForwardedHeaderLength = 500

// Middleware extracts client metadata. Forwarding headers are honored only
// when the direct peer is inside one of the trusted proxy prefixes.
type Middleware struct {
	trusted []netip.Prefix
}

// New parses trustedProxies as CIDR prefixes. A bare address is treated as
// a single-host prefix.
func New(trustedProxies []string) (*Middleware, error) {
	m := &Middleware{}
	for _, raw := range trustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			addr, err := netip.ParseAddr(raw)
			if err != nil {
				return nil, err
			}
			m.trusted = append(m.trusted, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			return nil, err
		}
		m.trusted = append(m.trusted, prefix.Masked())
	}
	return m, nil
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := Describe(r.Header.Get("User-Agent"))
		client.IP = m.clientIP(r)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithClient(r.Context(), client)))
	})
}

// Describe parses a User-Agent header. Unknown agents are reported as such.
func Describe(userAgent string) requestcontext.Client {
	client := requestcontext.Client{Browser: "unknown", OS: "unknown"}
	if strings.TrimSpace(userAgent) == "" {
		return client
	}
	ua := useragent.New(userAgent)
	if name, _ := ua.Browser(); name != "" {
		client.Browser = name
	}
	if ua.Bot() {
		client.Browser = "bot"
	}
	if os := ua.OS(); os != "" {
		client.OS = os
	}
	return client
}

func (m *Middleware) clientIP(r *http.Request) string {
	peer, ok := parsePeer(r.RemoteAddr)
	if !ok {
		return "unknown"
	}
	if !m.isTrusted(peer) {
		return peer.String()
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if len(xff) > MaxForwardedHeaderLength {
			return peer.String()
		}
		first, _, _ := strings.Cut(xff, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String()
		}
		return peer.String()
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" && len(xri) <= MaxForwardedHeaderLength {
		if addr, err := netip.ParseAddr(strings.TrimSpace(xri)); err == nil {
			return addr.String()
		}
	}
	return peer.String()
}

func (m *Middleware) isTrusted(addr netip.Addr) bool {
	for _, prefix := range m.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func parsePeer(remoteAddr string) (netip.Addr, bool) {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	addr, err := netip.ParseAddr(strings.Trim(host, "[]"))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}
