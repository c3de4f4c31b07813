package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/csvtree/internal/core"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx so the
// importer can tag its log lines with them.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, r.RemoteAddr) // already rewritten by TrustedRealIP
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
