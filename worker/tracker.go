package worker

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"iap-backoffice/models"
	"iap-backoffice/services/headless"
)

// Untracked groups receipts whose chain status could not be resolved.
const Untracked = "UNTRACKED"

type TrackerStore interface {
	ListTrackable(ctx context.Context, limit int) ([]models.Receipt, error)
	GetReceipt(ctx context.Context, uuid string) (*models.Receipt, error)
	UpdateTxResult(ctx context.Context, id int64, status *models.TxStatus, msg string) error
}

type TxResolver interface {
	TxResult(ctx context.Context, planetID, txID string) (*headless.TxResult, error)
}

type Tracker struct {
	store    TrackerStore
	resolver TxResolver
	limit    int
	logger   *zap.SugaredLogger
}

func NewTracker(store TrackerStore, resolver TxResolver, limit int, logger *zap.SugaredLogger) *Tracker {
	return &Tracker{store: store, resolver: resolver, limit: limit, logger: logger}
}

func (t *Tracker) Name() string { return "track_tx" }

// TrackResult maps a tx status name (or Untracked) to the tx ids that ended there.
type TrackResult map[string][]string

func (r TrackResult) Total() int {
	n := 0
	for _, ids := range r {
		n += len(ids)
	}
	return n
}

// Run tracks one batch of staged or invalid transactions.
func (t *Tracker) Run(ctx context.Context) error {
	_, err := t.TrackPending(ctx)
	return err
}

func (t *Tracker) TrackPending(ctx context.Context) (TrackResult, error) {
	receipts, err := t.store.ListTrackable(ctx, t.limit)
	if err != nil {
		return nil, err
	}
	t.logger.Infof("%d transactions are found to track status", len(receipts))

	result := make(TrackResult)
	for i := range receipts {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		status, err := t.track(ctx, &receipts[i])
		if err != nil {
			t.logger.Errorf("Failed to store tx result for receipt %s: %v", receipts[i].UUID, err)
		}
		key := Untracked
		if status != nil {
			key = status.String()
		}
		result[key] = append(result[key], derefString(receipts[i].TxID))
	}

	t.logResult(result)
	return result, nil
}

// TrackReceipt tracks the tx of a single receipt.
func (t *Tracker) TrackReceipt(ctx context.Context, uuid string) (*models.TxStatus, error) {
	receipt, err := t.store.GetReceipt(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if receipt.TxID == nil || *receipt.TxID == "" {
		return nil, fmt.Errorf("receipt %s has no tx to track", uuid)
	}
	status, err := t.track(ctx, receipt)
	if err != nil {
		return nil, err
	}
	return status, nil
}

// track resolves one tx and stores the outcome. An unresolved status leaves
// the receipt's tx_status as it was and records why in msg.
func (t *Tracker) track(ctx context.Context, receipt *models.Receipt) (*models.TxStatus, error) {
	txID := derefString(receipt.TxID)
	res, err := t.resolver.TxResult(ctx, receipt.PlanetID, txID)

	var (
		status *models.TxStatus
		msg    string
	)
	switch {
	case err == nil:
		status = &res.Status
		msg = res.Message()
	case errors.Is(err, headless.ErrUnknownTxStatus) && res != nil:
		msg = joinNonEmpty(err.Error(), res.Message())
	default:
		msg = err.Error()
	}

	label := Untracked
	if status != nil {
		label = status.String()
	}
	txTracked.WithLabelValues(label).Inc()

	if err := t.store.UpdateTxResult(ctx, receipt.ID, status, msg); err != nil {
		return status, err
	}
	return status, nil
}

func (t *Tracker) logResult(result TrackResult) {
	names := make([]string, 0, len(result))
	for name := range result {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		txs := result[name]
		switch name {
		case Untracked:
			t.logger.Errorf("%d transactions are not able to track: %v", len(txs), txs)
		case models.TxStatusStaged.String():
			t.logger.Infof("%d transactions are still staged.", len(txs))
		default:
			t.logger.Infof("%d transactions are changed to %s", len(txs), name)
		}
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += p
	}
	return out
}
