package utils

import (
	"sync"
	"time"
)

// Health is the current service health state reported by /service.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Uptime  int64  `json:"uptime_seconds"`
}

var (
	healthMu      sync.RWMutex
	healthStatus  = "STARTING"
	healthMessage = "Service is starting"
	startedAt     = time.Now()
)

// SetHealthStatus updates the health status of the service.
func SetHealthStatus(status string, message string) {
	healthMu.Lock()
	healthStatus = status
	healthMessage = message
	healthMu.Unlock()
}

// GetHealth returns the current health status of the service.
func GetHealth() Health {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return Health{
		Status:  healthStatus,
		Message: healthMessage,
		Uptime:  int64(time.Since(startedAt).Seconds()),
	}
}
