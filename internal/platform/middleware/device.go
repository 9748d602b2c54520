package middleware

import (
	"fmt"
	"net/http"

	"github.com/mssola/useragent"

	"zorvixe/pkg/requestcontext"
)

// Device records the caller's IP and a parsed User-Agent summary in context.
// Completion records persist the summary so an operator reviewing a payment
// or upload can see what submitted it.
func Device(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientIP(r.Context(), clientIP(r))

		raw := r.Header.Get("User-Agent")
		ctx = requestcontext.WithUserAgent(ctx, raw)
		if raw != "" {
			ctx = requestcontext.WithDevice(ctx, summarize(raw))
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func summarize(raw string) string {
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		return raw
	}
	os := ua.OS()
	if os == "" {
		os = "unknown"
	}
	return fmt.Sprintf("%s %s / %s", name, version, os)
}
