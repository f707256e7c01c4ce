package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func resetHealthState(t *testing.T) {
	t.Helper()
	healthMutex.Lock()
	healthStatus.Status = "ok"
	lastResponse = nil
	lastResponseTime = time.Time{}
	healthMutex.Unlock()
}

func probeHealth(t *testing.T) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheckMiddleware()(c)
	return w
}

func TestHealthCheckServesAndCaches(t *testing.T) {
	resetHealthState(t)

	first := probeHealth(t)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Body.String(), `"status":"ok"`)

	// A probe inside the cache window gets the identical body.
	second := probeHealth(t)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestUpdateHealthStatusInvalidatesCache(t *testing.T) {
	resetHealthState(t)

	assert.Contains(t, probeHealth(t).Body.String(), `"status":"ok"`)

	UpdateHealthStatus("degraded")
	assert.Contains(t, probeHealth(t).Body.String(), `"status":"degraded"`)

	UpdateHealthStatus("ok")
	assert.Contains(t, probeHealth(t).Body.String(), `"status":"ok"`)
}

func TestHealthCheckConcurrentProbes(t *testing.T) {
	resetHealthState(t)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, http.StatusOK, probeHealth(t).Code)
		}()
	}
	wg.Wait()
}
