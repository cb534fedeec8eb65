// Package shot holds the screenshot request model: parameter parsing and
// validation, the canonical message that gets signed, and deterministic
// cache key derivation.
package shot

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Viewport bounds and defaults.
const (
	MinWidth      = 100
	MaxWidth      = 3840
	MinHeight     = 100
	MaxHeight     = 2160
	DefaultWidth  = "1200"
	DefaultHeight = "800"

	// HeightFull requests a full-page capture instead of a fixed viewport.
	HeightFull = "full"
)

// Descriptor is a validated screenshot request. Built once per inbound
// request and immutable afterwards. Width and Height hold the effective
// (post-default) string values; Height is either a decimal integer or
// the "full" sentinel.
type Descriptor struct {
	TargetURL string
	Version   string
	Width     string
	Height    string
	JS        string
	CSS       string
}

// ParseDescriptor validates raw query parameters and builds a Descriptor.
// Pure function of its input: no side effects, no clock, no randomness.
func ParseDescriptor(params url.Values) (*Descriptor, error) {
	target := params.Get("url")
	if target == "" {
		return nil, missingParameter("url")
	}
	version := params.Get("version")
	if version == "" {
		return nil, missingParameter("version")
	}

	parsed, err := url.Parse(target)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return nil, &ValidationError{
			Reason:  ReasonInvalidURL,
			Message: fmt.Sprintf("url must be an absolute URI: %q", target),
		}
	}

	width := params.Get("w")
	if width == "" {
		width = DefaultWidth
	}
	if w, err := strconv.Atoi(width); err != nil || w < MinWidth || w > MaxWidth {
		return nil, &ValidationError{
			Reason:  ReasonInvalidWidth,
			Message: fmt.Sprintf("w must be an integer between %d and %d", MinWidth, MaxWidth),
		}
	}

	height := params.Get("h")
	if height == "" {
		height = DefaultHeight
	}
	if height != HeightFull {
		if h, err := strconv.Atoi(height); err != nil || h < MinHeight || h > MaxHeight {
			return nil, &ValidationError{
				Reason:  ReasonInvalidHeight,
				Message: fmt.Sprintf("h must be %q or an integer between %d and %d", HeightFull, MinHeight, MaxHeight),
			}
		}
	}

	return &Descriptor{
		TargetURL: target,
		Version:   version,
		Width:     width,
		Height:    height,
		JS:        params.Get("js"),
		CSS:       params.Get("css"),
	}, nil
}

// WidthPixels returns the viewport width as an integer.
func (d *Descriptor) WidthPixels() int {
	w, _ := strconv.Atoi(d.Width)
	return w
}

// FullPage reports whether the request asked for a full-page capture.
func (d *Descriptor) FullPage() bool {
	return d.Height == HeightFull
}

// HeightPixels returns the initial viewport height. Full-page captures
// still need a concrete viewport, so the sentinel falls back to the
// default height.
func (d *Descriptor) HeightPixels() int {
	if d.FullPage() {
		h, _ := strconv.Atoi(DefaultHeight)
		return h
	}
	h, _ := strconv.Atoi(d.Height)
	return h
}

// CanonicalMessage returns the pipe-delimited string that is signed by
// the caller and re-derived by the verifier. Field order is fixed; the
// effective (post-default) width and height values are used, so a
// signature always authorizes the parameters actually applied.
func (d *Descriptor) CanonicalMessage() string {
	return strings.Join([]string{
		d.TargetURL,
		d.Version,
		d.Width,
		d.Height,
		d.JS,
		d.CSS,
	}, "|")
}
