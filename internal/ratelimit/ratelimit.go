// Package ratelimit allows one generation request per client per window.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// UnknownClient is the key used when no client address can be determined.
const UnknownClient = "unknown"

// Limiter decides whether a client may make another request now.
type Limiter interface {
	// Allow records a request for key and reports whether it is permitted.
	Allow(ctx context.Context, key string) (bool, error)
}

// ClientKey identifies the caller of r: the first valid address in
// X-Forwarded-For, else the host part of RemoteAddr.
func ClientKey(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return UnknownClient
}
