package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"iap-backoffice/database"
	"iap-backoffice/models"
	"iap-backoffice/queue"
	"iap-backoffice/utils"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
	maxPage        = 100000
)

type ReceiptStore interface {
	ListReceipts(ctx context.Context, filter models.ReceiptFilter) ([]models.Receipt, int, error)
	GetReceipt(ctx context.Context, uuid string) (*models.Receipt, error)
	ReceiptSummary(ctx context.Context) (*models.ReceiptSummary, error)
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, jobType queue.JobType, data map[string]interface{}) (*queue.Job, error)
}

type ReceiptHandler struct {
	store  ReceiptStore
	jobs   JobEnqueuer
	logger *zap.SugaredLogger
}

func NewReceiptHandler(store ReceiptStore, jobs JobEnqueuer, logger *zap.SugaredLogger) *ReceiptHandler {
	return &ReceiptHandler{store: store, jobs: jobs, logger: logger}
}

func (h *ReceiptHandler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseReceiptFilter(r)
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	receipts, total, err := h.store.ListReceipts(r.Context(), filter)
	if err != nil {
		h.logger.Errorf("Error listing receipts: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to list receipts")
		return
	}

	page := models.ReceiptPage{
		Items:   make([]models.ReceiptView, 0, len(receipts)),
		Page:    filter.Page,
		PerPage: filter.PerPage,
		Total:   total,
	}
	for _, receipt := range receipts {
		page.Items = append(page.Items, models.NewReceiptView(receipt))
	}
	utils.SendSuccessResponse(w, models.APIResponse{Data: page})
}

func (h *ReceiptHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := receiptUUID(w, r)
	if !ok {
		return
	}

	receipt, err := h.store.GetReceipt(r.Context(), id)
	if err != nil {
		h.sendStoreError(w, id, err)
		return
	}
	utils.SendSuccessResponse(w, models.APIResponse{Data: models.NewReceiptView(*receipt)})
}

func (h *ReceiptHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.store.ReceiptSummary(r.Context())
	if err != nil {
		h.logger.Errorf("Error building receipt summary: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to build summary")
		return
	}
	utils.SendSuccessResponse(w, models.APIResponse{Data: summary})
}

// TrackReceipt queues a tracking job for the receipt's transaction.
func (h *ReceiptHandler) TrackReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := receiptUUID(w, r)
	if !ok {
		return
	}

	receipt, err := h.store.GetReceipt(r.Context(), id)
	if err != nil {
		h.sendStoreError(w, id, err)
		return
	}
	if receipt.TxID == nil || *receipt.TxID == "" {
		utils.SendErrorResponse(w, http.StatusConflict, "Receipt has no transaction to track")
		return
	}

	job, err := h.jobs.Enqueue(r.Context(), queue.JobTypeTrackTx, map[string]interface{}{"receipt_uuid": receipt.UUID})
	if err != nil {
		h.logger.Errorf("Error queueing track job for receipt %s: %v", id, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to queue tracking job")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Message: "Tracking job queued",
		Data:    models.TrackResponse{ReceiptUUID: receipt.UUID, JobID: job.ID},
	})
}

func (h *ReceiptHandler) sendStoreError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, database.ErrNotFound) {
		utils.SendErrorResponse(w, http.StatusNotFound, "Receipt not found")
		return
	}
	h.logger.Errorf("Error getting receipt %s: %v", id, err)
	utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to get receipt")
}

func receiptUUID(w http.ResponseWriter, r *http.Request) (string, bool) {
	parsed, err := uuid.Parse(mux.Vars(r)["uuid"])
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid receipt uuid")
		return "", false
	}
	return parsed.String(), true
}

func parseReceiptFilter(r *http.Request) (models.ReceiptFilter, error) {
	q := r.URL.Query()
	filter := models.ReceiptFilter{Page: 1, PerPage: defaultPerPage}

	if raw := q.Get("status"); raw != "" {
		code, err := strconv.Atoi(raw)
		if err != nil || !models.ReceiptStatus(code).IsValid() {
			return filter, fmt.Errorf("unknown receipt status: %s", raw)
		}
		status := models.ReceiptStatus(code)
		filter.Status = &status
	}
	if raw := q.Get("store"); raw != "" {
		code, err := strconv.Atoi(raw)
		if err != nil || !models.Store(code).IsValid() {
			return filter, fmt.Errorf("unknown store: %s", raw)
		}
		store := models.Store(code)
		filter.Store = &store
	}
	if raw := q.Get("tx_status"); raw != "" {
		code, err := strconv.Atoi(raw)
		if err != nil || !models.TxStatus(code).IsValid() {
			return filter, fmt.Errorf("unknown tx status: %s", raw)
		}
		status := models.TxStatus(code)
		filter.TxStatus = &status
	}
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 || page > maxPage {
			return filter, fmt.Errorf("invalid page: %s", raw)
		}
		filter.Page = page
	}
	if raw := q.Get("per_page"); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err != nil || perPage < 1 {
			return filter, fmt.Errorf("invalid per_page: %s", raw)
		}
		if perPage > maxPerPage {
			perPage = maxPerPage
		}
		filter.PerPage = perPage
	}
	return filter, nil
}
