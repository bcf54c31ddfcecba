package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const responseTimeSamples = 1000

// Metrics holds in-process application counters
type Metrics struct {
	RequestCount        int64
	ErrorCount          int64
	CacheHits           int64
	CacheMisses         int64
	AverageResponseTime int64 // in nanoseconds
	StartTime           time.Time

	// Domain counters
	Evaluations         int64
	ValidationFailures  int64
	CertificatesIssued  int64
	RenderFailures      int64
	VerificationLookups int64

	// Posture distribution of successful evaluations
	PostureCounts map[string]int64
	PostureMutex  sync.RWMutex

	// Response times for percentiles, last responseTimeSamples requests
	ResponseTimes      []time.Duration
	ResponseTimesMutex sync.RWMutex

	// Status code tracking
	RequestCountByStatus map[int]int64
	StatusMutex          sync.RWMutex

	// Rate limit metrics
	RateLimitIPBlocks       int64
	RateLimitRedisErrors    int64
	RateLimitFallbackCount  int64
	RateLimitEndpointBlocks map[string]int64
	RateLimitMutex          sync.RWMutex

	prom *PrometheusCollector
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:               time.Now(),
		PostureCounts:           make(map[string]int64),
		ResponseTimes:           make([]time.Duration, 0, responseTimeSamples),
		RequestCountByStatus:    make(map[int]int64),
		RateLimitEndpointBlocks: make(map[string]int64),
	}
}

// AttachPrometheus mirrors every recorded event into c
func (m *Metrics) AttachPrometheus(c *PrometheusCollector) {
	m.prom = c
}

// IncrementRequest increments the request count
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// IncrementCacheHit increments cache hit count
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
	if m.prom != nil {
		m.prom.cacheLookups.WithLabelValues("hit").Inc()
	}
}

// IncrementCacheMiss increments cache miss count
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
	if m.prom != nil {
		m.prom.cacheLookups.WithLabelValues("miss").Inc()
	}
}

// RecordEvaluation counts a successful evaluation by posture
func (m *Metrics) RecordEvaluation(posture string, score float64) {
	atomic.AddInt64(&m.Evaluations, 1)

	m.PostureMutex.Lock()
	m.PostureCounts[posture]++
	m.PostureMutex.Unlock()

	if m.prom != nil {
		m.prom.evaluations.WithLabelValues(posture).Inc()
		m.prom.riskScores.Observe(score)
	}
}

// IncrementValidationFailure counts rejected profiles
func (m *Metrics) IncrementValidationFailure() {
	atomic.AddInt64(&m.ValidationFailures, 1)
	if m.prom != nil {
		m.prom.validationFailures.Inc()
	}
}

// RecordCertificate counts an issued certificate and its document size
func (m *Metrics) RecordCertificate(sizeBytes int) {
	atomic.AddInt64(&m.CertificatesIssued, 1)
	if m.prom != nil {
		m.prom.certificates.Inc()
		m.prom.certificateBytes.Observe(float64(sizeBytes))
	}
}

// IncrementRenderFailure counts document-generation failures
func (m *Metrics) IncrementRenderFailure() {
	atomic.AddInt64(&m.RenderFailures, 1)
	if m.prom != nil {
		m.prom.renderFailures.Inc()
	}
}

// IncrementVerificationLookup counts verify endpoint hits
func (m *Metrics) IncrementVerificationLookup() {
	atomic.AddInt64(&m.VerificationLookups, 1)
}

// RecordResponseTime records response time for averaging and percentiles
func (m *Metrics) RecordResponseTime(duration time.Duration) {
	current := atomic.LoadInt64(&m.AverageResponseTime)
	newAverage := (current + duration.Nanoseconds()) / 2
	atomic.StoreInt64(&m.AverageResponseTime, newAverage)

	m.ResponseTimesMutex.Lock()
	m.ResponseTimes = append(m.ResponseTimes, duration)
	if len(m.ResponseTimes) > responseTimeSamples {
		m.ResponseTimes = m.ResponseTimes[1:]
	}
	m.ResponseTimesMutex.Unlock()
}

// RecordRequest records one finished request for prometheus
func (m *Metrics) RecordRequest(method, route string, statusCode int, duration time.Duration) {
	if m.prom != nil {
		m.prom.observeRequest(method, route, statusCode, duration)
	}
}

// RecordRequestByStatus records request count by HTTP status code
func (m *Metrics) RecordRequestByStatus(statusCode int) {
	m.StatusMutex.Lock()
	defer m.StatusMutex.Unlock()
	m.RequestCountByStatus[statusCode]++
}

// GetPercentileResponseTime calculates percentile response time
func (m *Metrics) GetPercentileResponseTime(percentile float64) time.Duration {
	m.ResponseTimesMutex.RLock()
	defer m.ResponseTimesMutex.RUnlock()

	if len(m.ResponseTimes) == 0 {
		return 0
	}

	times := make([]time.Duration, len(m.ResponseTimes))
	copy(times, m.ResponseTimes)

	sort.Slice(times, func(i, j int) bool {
		return times[i] < times[j]
	})

	index := int(float64(len(times)-1) * percentile / 100.0)
	if index >= len(times) {
		index = len(times) - 1
	}

	return times[index]
}

// GetStatusCodeDistribution returns request count by status code
func (m *Metrics) GetStatusCodeDistribution() map[int]int64 {
	m.StatusMutex.RLock()
	defer m.StatusMutex.RUnlock()

	distribution := make(map[int]int64)
	for code, count := range m.RequestCountByStatus {
		distribution[code] = count
	}
	return distribution
}

// GetPostureDistribution returns evaluation count by posture
func (m *Metrics) GetPostureDistribution() map[string]int64 {
	m.PostureMutex.RLock()
	defer m.PostureMutex.RUnlock()

	distribution := make(map[string]int64, len(m.PostureCounts))
	for posture, count := range m.PostureCounts {
		distribution[posture] = count
	}
	return distribution
}

// GetStats returns current metrics statistics
func (m *Metrics) GetStats() map[string]interface{} {
	requests := atomic.LoadInt64(&m.RequestCount)
	errors := atomic.LoadInt64(&m.ErrorCount)
	cacheHits := atomic.LoadInt64(&m.CacheHits)
	cacheMisses := atomic.LoadInt64(&m.CacheMisses)
	avgResponseTime := atomic.LoadInt64(&m.AverageResponseTime)

	errorRate := float64(0)
	if requests > 0 {
		errorRate = float64(errors) / float64(requests) * 100
	}

	cacheHitRate := float64(0)
	totalCacheRequests := cacheHits + cacheMisses
	if totalCacheRequests > 0 {
		cacheHitRate = float64(cacheHits) / float64(totalCacheRequests) * 100
	}

	return map[string]interface{}{
		"uptime_seconds":         time.Since(m.StartTime).Seconds(),
		"total_requests":         requests,
		"error_count":            errors,
		"error_rate_percent":     errorRate,
		"cache_hits":             cacheHits,
		"cache_misses":           cacheMisses,
		"cache_hit_rate_percent": cacheHitRate,
		"avg_response_time_ms":   float64(avgResponseTime) / 1000000,
		"start_time":             m.StartTime.Format(time.RFC3339),

		"p50_response_time_ms":     float64(m.GetPercentileResponseTime(50)) / 1000000,
		"p95_response_time_ms":     float64(m.GetPercentileResponseTime(95)) / 1000000,
		"p99_response_time_ms":     float64(m.GetPercentileResponseTime(99)) / 1000000,
		"status_code_distribution": m.GetStatusCodeDistribution(),

		"evaluations":          atomic.LoadInt64(&m.Evaluations),
		"validation_failures":  atomic.LoadInt64(&m.ValidationFailures),
		"certificates_issued":  atomic.LoadInt64(&m.CertificatesIssued),
		"render_failures":      atomic.LoadInt64(&m.RenderFailures),
		"verification_lookups": atomic.LoadInt64(&m.VerificationLookups),
		"posture_distribution": m.GetPostureDistribution(),
		"rate_limit":           m.GetRateLimitStats(),
	}
}

// Reset resets all metrics (useful for testing)
func (m *Metrics) Reset() {
	for _, counter := range []*int64{
		&m.RequestCount, &m.ErrorCount, &m.CacheHits, &m.CacheMisses, &m.AverageResponseTime,
		&m.Evaluations, &m.ValidationFailures, &m.CertificatesIssued, &m.RenderFailures,
		&m.VerificationLookups, &m.RateLimitIPBlocks, &m.RateLimitRedisErrors, &m.RateLimitFallbackCount,
	} {
		atomic.StoreInt64(counter, 0)
	}

	m.ResponseTimesMutex.Lock()
	m.ResponseTimes = m.ResponseTimes[:0]
	m.ResponseTimesMutex.Unlock()

	m.StatusMutex.Lock()
	m.RequestCountByStatus = make(map[int]int64)
	m.StatusMutex.Unlock()

	m.PostureMutex.Lock()
	m.PostureCounts = make(map[string]int64)
	m.PostureMutex.Unlock()

	m.RateLimitMutex.Lock()
	m.RateLimitEndpointBlocks = make(map[string]int64)
	m.RateLimitMutex.Unlock()

	m.StartTime = time.Now()
}

// IncrementRateLimitIPBlock increments IP-based rate limit blocks
func (m *Metrics) IncrementRateLimitIPBlock() {
	atomic.AddInt64(&m.RateLimitIPBlocks, 1)
	if m.prom != nil {
		m.prom.rateLimitBlocks.Inc()
	}
}

// IncrementRateLimitRedisError increments Redis error count for rate limiting
func (m *Metrics) IncrementRateLimitRedisError() {
	atomic.AddInt64(&m.RateLimitRedisErrors, 1)
}

// IncrementRateLimitFallback increments fallback rate limiter usage count
func (m *Metrics) IncrementRateLimitFallback() {
	atomic.AddInt64(&m.RateLimitFallbackCount, 1)
}

// IncrementRateLimitEndpoint increments rate limit blocks for a specific endpoint
func (m *Metrics) IncrementRateLimitEndpoint(endpoint string) {
	m.RateLimitMutex.Lock()
	defer m.RateLimitMutex.Unlock()
	m.RateLimitEndpointBlocks[endpoint]++
}

// GetRateLimitStats returns rate limiting statistics
func (m *Metrics) GetRateLimitStats() map[string]interface{} {
	m.RateLimitMutex.RLock()
	endpointBlocksCopy := make(map[string]int64, len(m.RateLimitEndpointBlocks))
	for k, v := range m.RateLimitEndpointBlocks {
		endpointBlocksCopy[k] = v
	}
	m.RateLimitMutex.RUnlock()

	return map[string]interface{}{
		"ip_blocks":       atomic.LoadInt64(&m.RateLimitIPBlocks),
		"redis_errors":    atomic.LoadInt64(&m.RateLimitRedisErrors),
		"fallback_count":  atomic.LoadInt64(&m.RateLimitFallbackCount),
		"endpoint_blocks": endpointBlocksCopy,
	}
}
