package shot

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

const keyPrefix = "shots"

// CacheKey derives a deterministic, collision-resistant storage key from
// the descriptor. Free-text fields are percent-encoded before joining so
// that distinct (url, js, css) triples can never collapse into the same
// encoded string. Format: shots/<host-slug>/<sha256-hex>. The host slug
// keeps the object namespace browsable per target site.
func (d *Descriptor) CacheKey() string {
	encoded := strings.Join([]string{
		url.QueryEscape(d.TargetURL),
		url.QueryEscape(d.Version),
		d.Width,
		d.Height,
		url.QueryEscape(d.JS),
		url.QueryEscape(d.CSS),
	}, "|")

	sum := sha256.Sum256([]byte(encoded))

	return keyPrefix + "/" + hostSlug(d.TargetURL) + "/" + hex.EncodeToString(sum[:])
}

// hostSlug converts the target host to a directory-safe format.
// Lowercase, strip www prefix, replace dots with dashes.
func hostSlug(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "unknown"
	}
	h := strings.ToLower(parsed.Hostname())
	h = strings.TrimPrefix(h, "www.")
	h = strings.ReplaceAll(h, ".", "-")
	return h
}
