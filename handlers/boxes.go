package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"iap-backoffice/models"
	"iap-backoffice/utils"
)

type BoxStore interface {
	ListBoxes(ctx context.Context) ([]models.Box, error)
}

type BoxHandler struct {
	store  BoxStore
	logger *zap.SugaredLogger
}

func NewBoxHandler(store BoxStore, logger *zap.SugaredLogger) *BoxHandler {
	return &BoxHandler{store: store, logger: logger}
}

func (h *BoxHandler) ListBoxes(w http.ResponseWriter, r *http.Request) {
	boxes, err := h.store.ListBoxes(r.Context())
	if err != nil {
		h.logger.Errorf("Error listing boxes: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to list boxes")
		return
	}

	views := make([]models.BoxView, 0, len(boxes))
	for _, box := range boxes {
		views = append(views, models.NewBoxView(box))
	}
	utils.SendSuccessResponse(w, models.APIResponse{Data: views})
}
