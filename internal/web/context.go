package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/cardex/internal/core"
)

// clientIP returns the request's address without the port. RemoteAddr has
// already been rewritten by TrustedRealIP when a trusted proxy forwarded it.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// withRequestMetadata adds the client address to ctx for import logging.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithClientIP(ctx, clientIP(r))
}
