package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"

	"github.com/simonw/screenshot-worker/internal/shot"
	"github.com/simonw/screenshot-worker/internal/signing"
	"github.com/simonw/screenshot-worker/internal/store"
	"github.com/simonw/screenshot-worker/internal/upstream"
)

// CacheControl applied to every rendered artifact. Cache keys encode the
// full request, so artifacts never need revalidation.
const CacheControl = "public, max-age=31536000, immutable"

const cacheWriteTimeout = 30 * time.Second

// ScreenshotHandler authenticates screenshot requests and runs the
// cache-aside flow: lookup, render on miss, respond, populate the store
// off the critical path.
type ScreenshotHandler struct {
	signer   *signing.Signer
	store    store.Store
	renderer upstream.Renderer
	logger   *slog.Logger
	stats    *Stats

	// flight collapses concurrent misses for the same key into one
	// upstream call.
	flight singleflight.Group

	// writes tracks in-flight cache population so shutdown can drain
	// them instead of abandoning them.
	writes sync.WaitGroup
}

func NewScreenshotHandler(signer *signing.Signer, artifacts store.Store, renderer upstream.Renderer, stats *Stats, logger *slog.Logger) *ScreenshotHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScreenshotHandler{
		signer:   signer,
		store:    artifacts,
		renderer: renderer,
		stats:    stats,
		logger:   logger,
	}
}

// Handle serves GET /. A request with no url parameter at all gets the
// signing console; everything else goes through validation, signature
// verification and the cache-aside flow.
func (h *ScreenshotHandler) Handle(c *gin.Context) {
	query := c.Request.URL.Query()

	if !query.Has("url") {
		h.serveConsole(c)
		return
	}

	desc, err := shot.ParseDescriptor(query)
	if err != nil {
		var verr *shot.ValidationError
		if errors.As(err, &verr) {
			c.String(http.StatusBadRequest, verr.Message)
			return
		}
		c.String(http.StatusBadRequest, "invalid request")
		return
	}

	sig := query.Get("sig")
	if sig == "" {
		c.String(http.StatusBadRequest, "missing required parameter: sig")
		return
	}

	// One rejection for malformed and wrong signatures alike.
	if !h.signer.Verify(desc.CanonicalMessage(), sig) {
		c.String(http.StatusForbidden, "invalid signature")
		return
	}

	key := desc.CacheKey()
	logger := h.logger.With(
		"target_url", desc.TargetURL,
		"version", desc.Version,
		"cache_key", key,
	)

	artifact, hit, err := h.lookupOrRender(c.Request.Context(), key, desc, logger)
	if err != nil {
		var statusErr *upstream.StatusError
		if errors.As(err, &statusErr) {
			logger.Error("upstream render failed",
				"status", statusErr.StatusCode,
				"body", statusErr.Body,
			)
		} else {
			logger.Error("upstream render failed", "error", err)
		}
		c.String(http.StatusBadGateway, "upstream render failed")
		return
	}

	h.respond(c, artifact, hit)
}

type lookupResult struct {
	artifact *store.Artifact
	hit      bool
}

// lookupOrRender checks the store and falls through to the renderer on a
// miss. Concurrent callers for the same key share one execution.
func (h *ScreenshotHandler) lookupOrRender(ctx context.Context, key string, desc *shot.Descriptor, logger *slog.Logger) (*store.Artifact, bool, error) {
	v, err, _ := h.flight.Do(key, func() (any, error) {
		artifact, found, err := h.store.Get(ctx, key)
		if err != nil {
			// A broken lookup is a miss, not a request failure.
			logger.Warn("cache lookup failed", "error", err)
		} else if found {
			h.stats.RecordHit()
			logger.Info("serving from cache",
				"content_type", artifact.ContentType,
				"size", len(artifact.Data),
			)
			return lookupResult{artifact: artifact, hit: true}, nil
		}

		h.stats.RecordMiss()
		logger.Info("cache miss, rendering upstream")

		result, err := h.renderer.Render(ctx, desc)
		if err != nil {
			return nil, err
		}

		rendered := &store.Artifact{
			Data:         result.Data,
			ContentType:  result.ContentType,
			CacheControl: CacheControl,
			TargetURL:    desc.TargetURL,
			Version:      desc.Version,
			Width:        desc.Width,
			Height:       desc.Height,
			GeneratedAt:  time.Now().UTC(),
		}
		h.scheduleWrite(key, rendered, logger)

		return lookupResult{artifact: rendered, hit: false}, nil
	})
	if err != nil {
		return nil, false, err
	}

	result := v.(lookupResult)
	return result.artifact, result.hit, nil
}

// scheduleWrite populates the store off the response's critical path.
// The write runs on a background context so it survives the request, and
// is tracked so Drain can wait for it. Failures are logged only.
func (h *ScreenshotHandler) scheduleWrite(key string, artifact *store.Artifact, logger *slog.Logger) {
	h.writes.Add(1)
	go func() {
		defer h.writes.Done()

		ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
		defer cancel()

		if err := h.store.Put(ctx, key, artifact); err != nil {
			logger.Error("cache write failed", "error", err)
			return
		}
		logger.Info("cache populated", "size", len(artifact.Data))
	}()
}

func (h *ScreenshotHandler) respond(c *gin.Context, artifact *store.Artifact, hit bool) {
	cacheControl := artifact.CacheControl
	if cacheControl == "" {
		cacheControl = CacheControl
	}

	c.Header("Cache-Control", cacheControl)
	c.Header("X-Screenshot-Url", artifact.TargetURL)
	c.Header("X-Screenshot-Version", artifact.Version)
	c.Header("X-Screenshot-Width", artifact.Width)
	c.Header("X-Screenshot-Height", artifact.Height)
	c.Header("X-Screenshot-Generated-At", artifact.GeneratedAt.UTC().Format(time.RFC3339))
	if hit {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}

	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}

// Drain blocks until all scheduled cache writes finish or ctx expires.
// Called by the server during graceful shutdown.
func (h *ScreenshotHandler) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.writes.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
