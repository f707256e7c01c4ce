package middleware

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthStatus struct {
	Status      string    `json:"status"`
	LastChecked time.Time `json:"last_checked"`
	Uptime      string    `json:"uptime"`
	Version     string    `json:"version"`
}

var (
	healthStatus = HealthStatus{
		Status:      "ok",
		LastChecked: time.Now(),
		Uptime:      "0s",
		Version:     "1.0.0",
	}
	healthMutex      sync.RWMutex
	startTime        = time.Now()
	lastResponse     []byte
	lastResponseTime time.Time
	cacheDuration    = 5 * time.Second
)

// HealthCheckMiddleware serves the health endpoint, caching the
// response briefly to keep probes cheap.
func HealthCheckMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		healthMutex.RLock()
		if time.Since(lastResponseTime) < cacheDuration && lastResponse != nil {
			cached := lastResponse
			healthMutex.RUnlock()
			c.Data(http.StatusOK, "application/json", cached)
			return
		}
		healthMutex.RUnlock()

		// Rebuilding the cached response mutates shared state, so take
		// the write lock.
		healthMutex.Lock()
		healthStatus.Uptime = time.Since(startTime).String()
		healthStatus.LastChecked = time.Now()

		response, _ := json.Marshal(healthStatus)
		lastResponse = response
		lastResponseTime = time.Now()
		healthMutex.Unlock()

		c.Data(http.StatusOK, "application/json", response)
	}
}

// UpdateHealthStatus flips the reported status, e.g. when the store
// becomes unreachable. An unchanged status keeps the cached response.
func UpdateHealthStatus(status string) {
	healthMutex.Lock()
	defer healthMutex.Unlock()

	if healthStatus.Status == status {
		return
	}

	healthStatus.Status = status
	healthStatus.LastChecked = time.Now()
	lastResponse = nil
}

// SetVersion sets the version reported by the health endpoint.
func SetVersion(version string) {
	healthMutex.Lock()
	defer healthMutex.Unlock()

	healthStatus.Version = version
	lastResponse = nil
}
