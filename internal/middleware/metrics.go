package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gin-gonic/gin"
)

type MetricsMiddleware struct {
	requestCounter     *metrics.Counter
	responseTimeHist   *metrics.Histogram
	responseSizeHist   *metrics.Histogram
	statusCodeCounters map[int]*metrics.Counter
}

func NewMetricsMiddleware() *MetricsMiddleware {
	m := &MetricsMiddleware{
		requestCounter:     metrics.NewCounter("http_requests_total"),
		responseTimeHist:   metrics.NewHistogram("http_response_time_seconds"),
		responseSizeHist:   metrics.NewHistogram("http_response_size_bytes"),
		statusCodeCounters: make(map[int]*metrics.Counter),
	}

	for _, code := range []int{200, 400, 403, 429, 500, 502} {
		m.statusCodeCounters[code] = metrics.NewCounter(
			"http_response_status_total{code=\"" + strconv.Itoa(code) + "\"}",
		)
	}

	return m
}

func (m *MetricsMiddleware) WithMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.requestCounter.Inc()

		c.Next()

		m.responseTimeHist.Update(time.Since(start).Seconds())
		m.responseSizeHist.Update(float64(c.Writer.Size()))
		if counter, exists := m.statusCodeCounters[c.Writer.Status()]; exists {
			counter.Inc()
		}
	}
}

// Handle serves GET /metrics in Prometheus text format.
func (m *MetricsMiddleware) Handle(c *gin.Context) {
	c.Status(http.StatusOK)
	metrics.WritePrometheus(c.Writer, true)
}
