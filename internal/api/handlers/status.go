package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/grabarr/internal/models"
)

// StatusHandler handles status requests
type StatusHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *models.Database, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		db:     db,
		logger: logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	TotalJobs   int   `json:"total_jobs"`
	Running     int   `json:"running"`
	Completed   int   `json:"completed"`
	Failed      int   `json:"failed"`
	Reclaimed   int   `json:"reclaimed"`
	BytesServed int64 `json:"bytes_served"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobs, err := h.db.GetAllJobs()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get jobs")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := StatusResponse{
		TotalJobs: len(jobs),
	}

	for _, job := range jobs {
		switch job.Status {
		case models.JobStatusRunning:
			response.Running++
		case models.JobStatusCompleted:
			response.Completed++
		case models.JobStatusFailed:
			response.Failed++
		case models.JobStatusReclaimed:
			response.Reclaimed++
		}
		response.BytesServed += job.SizeBytes
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
