package endpoints

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/familychurch/eventbot/utils"
)

// ServiceReport is the payload of the /service status endpoint.
type ServiceReport struct {
	Version utils.Version `json:"version"`
	Health  utils.Health  `json:"health"`
}

// ServiceHandler provides a status report for health checks.
func ServiceHandler(w http.ResponseWriter, r *http.Request) {
	report := ServiceReport{
		Version: utils.GetVersion(),
		Health:  utils.GetHealth(),
	}

	w.Header().Set("Content-Type", "application/json")
	if report.Health.Status == "OK" {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if err := json.NewEncoder(w).Encode(report); err != nil {
		log.Printf("Failed to encode service report: %v", err)
	}
}
