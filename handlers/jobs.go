package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"iap-backoffice/models"
	"iap-backoffice/queue"
	"iap-backoffice/utils"
)

type JobRetrier interface {
	RetryJob(ctx context.Context, jobID string) error
}

type JobHandler struct {
	jobs   JobRetrier
	logger *zap.SugaredLogger
}

func NewJobHandler(jobs JobRetrier, logger *zap.SugaredLogger) *JobHandler {
	return &JobHandler{jobs: jobs, logger: logger}
}

// RetryJob puts a job that ran out of retries back on the queue.
func (h *JobHandler) RetryJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.jobs.RetryJob(r.Context(), id); err != nil {
		if errors.Is(err, queue.ErrJobNotFound) {
			utils.SendErrorResponse(w, http.StatusNotFound, "Job not found in failed queue")
			return
		}
		h.logger.Errorf("Error retrying job %s: %v", id, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to retry job")
		return
	}
	utils.SendSuccessResponse(w, models.APIResponse{
		Message: "Job requeued",
		Data:    map[string]string{"job_id": id},
	})
}
