// Package headers handles the extra request headers given with --header.
package headers

import (
	"net/http"
	"strings"
)

// ParseHeaders converts "Key: Value" strings into a map keyed by canonical
// header name. Malformed entries are dropped and later duplicates win.
func ParseHeaders(h []string) map[string]string {
	m := make(map[string]string)
	for _, hdr := range h {
		key, value, ok := strings.Cut(hdr, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" || strings.ContainsAny(key, " \t") {
			continue
		}
		m[http.CanonicalHeaderKey(key)] = strings.TrimSpace(value)
	}
	return m
}

// Apply sets extra on req. User-Agent is never overridden so every request of
// a run carries the same identity that robots.txt was evaluated for.
func Apply(req *http.Request, extra map[string]string) {
	for key, value := range extra {
		if http.CanonicalHeaderKey(key) == "User-Agent" {
			continue
		}
		req.Header.Set(key, value)
	}
}
