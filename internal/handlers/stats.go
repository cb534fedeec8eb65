package handlers

import (
	"net/http"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gin-gonic/gin"
)

// Stats counts cache outcomes. Counters feed both the /stats JSON
// endpoint and the Prometheus-format /metrics endpoint.
type Stats struct {
	hits   uint64
	misses uint64

	hitCounter  *metrics.Counter
	missCounter *metrics.Counter
}

func NewStats() *Stats {
	return &Stats{
		hitCounter:  metrics.GetOrCreateCounter("screenshot_cache_hits_total"),
		missCounter: metrics.GetOrCreateCounter("screenshot_cache_misses_total"),
	}
}

func (s *Stats) RecordHit() {
	atomic.AddUint64(&s.hits, 1)
	s.hitCounter.Inc()
}

func (s *Stats) RecordMiss() {
	atomic.AddUint64(&s.misses, 1)
	s.missCounter.Inc()
}

// Handle serves GET /stats.
func (s *Stats) Handle(c *gin.Context) {
	hits := atomic.LoadUint64(&s.hits)
	misses := atomic.LoadUint64(&s.misses)
	total := hits + misses

	var hitRatio float64
	if total > 0 {
		hitRatio = float64(hits) / float64(total) * 100
	}

	c.JSON(http.StatusOK, gin.H{
		"hits":            hits,
		"misses":          misses,
		"total_requests":  total,
		"cache_hit_ratio": hitRatio,
	})
}
