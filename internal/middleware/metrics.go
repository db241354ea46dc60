package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 요청 총 수
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTP 요청 처리 시간 (히스토그램)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// 현재 처리 중인 HTTP 요청 수
	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// 동기화 배치 결과 (success, invalid, transient)
	syncBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_batches_total",
			Help: "Total number of pushed sync batches by outcome",
		},
		[]string{"status"},
	)

	// 레코드 단위 병합 결과 (applied, discarded)
	syncRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_records_total",
			Help: "Total number of pushed records by merge outcome",
		},
		[]string{"outcome"},
	)

	// 응답에 포함된 레코드 수
	syncPulledRecords = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_pulled_records",
			Help:    "Number of records returned by a pull",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// Gemini 호출 수
	geminiCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gemini_calls_total",
			Help: "Total number of Gemini proxy calls",
		},
		[]string{"status", "cache_hit"},
	)

	// Gemini 응답 시간
	geminiDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gemini_duration_seconds",
			Help:    "Gemini call duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)
)

// MetricsMiddleware는 HTTP 요청에 대한 Prometheus 메트릭을 수집합니다.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		c.Next()

		httpRequestsInFlight.Dec()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
	}
}

// RecordSyncBatch는 푸시된 배치의 병합 결과를 기록합니다.
func RecordSyncBatch(status string, applied, discarded int) {
	syncBatchesTotal.WithLabelValues(status).Inc()
	if applied > 0 {
		syncRecordsTotal.WithLabelValues("applied").Add(float64(applied))
	}
	if discarded > 0 {
		syncRecordsTotal.WithLabelValues("discarded").Add(float64(discarded))
	}
}

// RecordPull은 풀 응답 크기를 기록합니다.
func RecordPull(records int) {
	syncPulledRecords.Observe(float64(records))
}

// RecordGeminiCall은 Gemini 호출 메트릭을 기록합니다.
func RecordGeminiCall(success, cacheHit bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	geminiCallsTotal.WithLabelValues(status, strconv.FormatBool(cacheHit)).Inc()
	if !cacheHit {
		geminiDuration.Observe(duration.Seconds())
	}
}
