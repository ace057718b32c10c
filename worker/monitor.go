package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"iap-backoffice/models"
	"iap-backoffice/services/notify"
)

const (
	nonValidAfter = time.Minute
	haltedAfter   = 5 * time.Minute
	noTxAfter     = 3 * time.Minute
)

type MonitorStore interface {
	ListNonValidSince(ctx context.Context, cutoff time.Time) ([]models.Receipt, error)
	ListTxFailed(ctx context.Context) ([]models.Receipt, error)
	ListHaltedTx(ctx context.Context, cutoff time.Time) ([]models.Receipt, error)
	ListValidWithoutTx(ctx context.Context, cutoff time.Time) ([]models.Receipt, error)
}

// Monitor reports receipts that are stuck somewhere between validation and delivery.
type Monitor struct {
	store  MonitorStore
	sender notify.Sender
	title  string
	now    func() time.Time
	logger *zap.SugaredLogger
}

func NewMonitor(store MonitorStore, sender notify.Sender, stage string, logger *zap.SugaredLogger) *Monitor {
	return &Monitor{
		store:  store,
		sender: sender,
		title:  fmt.Sprintf("[IAP %s] Receipt Status Report", stage),
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

func (m *Monitor) Name() string { return "status_report" }

func (m *Monitor) Run(ctx context.Context) error {
	report, err := m.BuildReport(ctx)
	if err != nil {
		return err
	}
	if report.IsEmpty() {
		m.logger.Infof("%s :: nothing to report", report.Title)
		return nil
	}
	if err := m.sender.SendReport(ctx, report); err != nil {
		return fmt.Errorf("failed to send status report: %w", err)
	}
	m.logger.Infof("%s :: sent %d sections", report.Title, len(report.Sections))
	return nil
}

func (m *Monitor) BuildReport(ctx context.Context) (notify.Report, error) {
	now := m.now()
	report := notify.Report{Title: m.title}

	nonValid, err := m.store.ListNonValidSince(ctx, now.Add(-nonValidAfter))
	if err != nil {
		return report, err
	}
	reportSections.WithLabelValues("non_valid").Set(float64(len(nonValid)))
	if len(nonValid) > 0 {
		lines := make([]string, 0, len(nonValid))
		for _, r := range nonValid {
			lines = append(lines, fmt.Sprintf("ID %d :: %s :: %s", r.ID, r.UUID, r.Status))
		}
		report.Add(fmt.Sprintf("Non-Valid Receipt Report :: %d", len(nonValid)), lines...)
	}

	failed, err := m.store.ListTxFailed(ctx)
	if err != nil {
		return report, err
	}
	reportSections.WithLabelValues("tx_failed").Set(float64(len(failed)))
	if len(failed) > 0 {
		lines := make([]string, 0, len(failed))
		for _, r := range failed {
			lines = append(lines, fmt.Sprintf("ID %d :: %s :: %s\nTx. ID: %s",
				r.ID, r.UUID, txStatusName(r.TxStatus), derefString(r.TxID)))
		}
		report.Add(fmt.Sprintf("Tx. Failed Receipt Report :: %d", len(failed)), lines...)
	}

	halted, err := m.store.ListHaltedTx(ctx, now.Add(-haltedAfter))
	if err != nil {
		return report, err
	}
	reportSections.WithLabelValues("tx_halted").Set(float64(len(halted)))
	if len(halted) > 0 {
		lines := make([]string, 0, len(halted))
		for _, r := range halted {
			lines = append(lines, fmt.Sprintf("ID %d :: %s\n%s", r.ID, r.UUID, derefString(r.TxID)))
		}
		report.Add(fmt.Sprintf("Tx. Invalid Receipt Report :: %d", len(halted)), lines...)
	}

	noTx, err := m.store.ListValidWithoutTx(ctx, now.Add(-noTxAfter))
	if err != nil {
		return report, err
	}
	reportSections.WithLabelValues("no_tx").Set(float64(len(noTx)))
	if len(noTx) > 0 {
		lines := make([]string, 0, len(noTx))
		for _, r := range noTx {
			lines = append(lines, fmt.Sprintf("ID %d :: %s :: Product %s\n%s :: %s",
				r.ID, r.UUID, productLabel(r.ProductID), r.AgentAddr, r.AvatarAddr))
		}
		report.Add(fmt.Sprintf("No Tx. Create Receipt Report :: %d", len(noTx)), lines...)
	}

	return report, nil
}

func txStatusName(s *models.TxStatus) string {
	if s == nil {
		return "-"
	}
	return s.String()
}

func productLabel(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *id)
}
