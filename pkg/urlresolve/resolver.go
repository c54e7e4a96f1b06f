// Package urlresolve maps logical API and asset paths onto transport URLs.
// Only this package knows about the dev-proxy versus production-base-URL
// split, and about signed storage URLs that must never be rewritten.
package urlresolve

import (
	"net/url"
	"strings"
)

// Mode selects the resolution strategy.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// Resolver is a pure value; both methods are idempotent.
type Resolver struct {
	Mode    Mode
	BaseURL string
}

// APIURL maps a logical endpoint path to a transport URL. In development the
// path is returned unchanged and the local proxy rewrites /api to /api/v1;
// in production the /api prefix is stripped and the configured base plus
// /api/v1 is prepended, so both modes reach the same backend path.
func (r Resolver) APIURL(path string) string {
	if r.Mode != ModeProduction {
		return path
	}
	trimmed := strings.TrimPrefix(path, "/api")
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return strings.TrimRight(r.BaseURL, "/") + "/api/v1" + trimmed
}

// AssetURL resolves an uploaded-file or logo reference. It returns false when
// path is empty (no asset). Pre-signed object-storage URLs and URLs already
// pointing at the API host pass through untouched; absolute URLs on a stale
// host are reduced to their path and re-resolved. Unparseable input is
// returned as-is rather than failing.
func (r Resolver) AssetURL(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		parsed, err := url.Parse(path)
		if err != nil || parsed.Host == "" {
			return path, true
		}
		host := parsed.Host
		if strings.Contains(host, "amazonaws.com") || strings.Contains(host, "s3.") {
			return path, true
		}
		if host == r.apiHost() || parsed.Hostname() == "localhost" {
			return path, true
		}
		return r.resolveRelative(parsed.Path), true
	}
	return r.resolveRelative(path), true
}

// ScriptURL resolves the hosted verification widget's script reference,
// following the same rules as AssetURL. An empty reference resolves to "".
func (r Resolver) ScriptURL(path string) string {
	resolved, ok := r.AssetURL(path)
	if !ok {
		return ""
	}
	return resolved
}

// VerifyFlowURL resolves the verification-flow entry point. Absolute URLs
// pass through; relative paths stay relative in development and are anchored
// to the API base in production.
func (r Resolver) VerifyFlowURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return r.resolveRelative(path)
}

func (r Resolver) apiHost() string {
	parsed, err := url.Parse(r.BaseURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}

func (r Resolver) resolveRelative(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if r.Mode != ModeProduction {
		return path
	}
	return strings.TrimRight(r.BaseURL, "/") + path
}
