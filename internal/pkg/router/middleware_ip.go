package router

import (
	"fmt"
	"net/http"
	"net/netip"
	"strings"

	"github.com/samber/lo"
)

// ParseTrustedProxies parses proxy addresses given as CIDR prefixes or bare IPs.
func ParseTrustedProxies(values []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(values))
	for _, v := range lo.Compact(lo.Map(values, func(s string, _ int) string { return strings.TrimSpace(s) })) {
		if strings.Contains(v, "/") {
			p, err := netip.ParsePrefix(v)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", v, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}

		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", v, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}

	return prefixes, nil
}

// middlewareIP rewrites RemoteAddr to the bare client address. Forwarding
// headers are only believed when the direct peer is a trusted proxy, since
// throttling keys on this value.
func middlewareIP(trusted []netip.Prefix) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := clientIP(r, trusted); ip.IsValid() {
				r.RemoteAddr = ip.String()
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request, trusted []netip.Prefix) netip.Addr {
	peer := parsePeer(r.RemoteAddr)
	if !peer.IsValid() || !isTrusted(trusted, peer) {
		return peer
	}

	// Walk X-Forwarded-For right to left; the first untrusted hop is the client.
	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		client := peer
		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			client = hop.Unmap()
			if !isTrusted(trusted, client) {
				break
			}
		}
		return client
	}

	if xrip, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return xrip.Unmap()
	}

	return peer
}

func parsePeer(remoteAddr string) netip.Addr {
	if ap, err := netip.ParseAddrPort(remoteAddr); err == nil {
		return ap.Addr().Unmap()
	}
	if addr, err := netip.ParseAddr(remoteAddr); err == nil {
		return addr.Unmap()
	}
	return netip.Addr{}
}

func isTrusted(trusted []netip.Prefix, addr netip.Addr) bool {
	return lo.SomeBy(trusted, func(p netip.Prefix) bool { return p.Contains(addr) })
}
