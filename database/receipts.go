package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"iap-backoffice/models"
)

const receiptColumns = `
	id, uuid, store, receipt_id, status, tx_id, tx_status, product_id,
	agent_addr, avatar_addr, planet_id, msg, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReceipt(row rowScanner) (*models.Receipt, error) {
	var (
		r         models.Receipt
		txID      sql.NullString
		txStatus  sql.NullInt64
		productID sql.NullInt64
		msg       sql.NullString
	)
	err := row.Scan(
		&r.ID,
		&r.UUID,
		&r.Store,
		&r.ReceiptID,
		&r.Status,
		&txID,
		&txStatus,
		&productID,
		&r.AgentAddr,
		&r.AvatarAddr,
		&r.PlanetID,
		&msg,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if txID.Valid {
		r.TxID = &txID.String
	}
	if txStatus.Valid {
		status := models.TxStatus(txStatus.Int64)
		r.TxStatus = &status
	}
	if productID.Valid {
		r.ProductID = &productID.Int64
	}
	r.Msg = msg.String
	return &r, nil
}

// receiptWhere renders the WHERE clause for a listing filter.
func receiptWhere(filter models.ReceiptFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, int(*filter.Status))
	}
	if filter.Store != nil {
		conds = append(conds, "store = ?")
		args = append(args, int(*filter.Store))
	}
	if filter.TxStatus != nil {
		conds = append(conds, "tx_status = ?")
		args = append(args, int(*filter.TxStatus))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func (c *Connection) ListReceipts(ctx context.Context, filter models.ReceiptFilter) ([]models.Receipt, int, error) {
	where, args := receiptWhere(filter)

	var total int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM receipt"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting receipts: %w", err)
	}

	query := "SELECT" + receiptColumns + " FROM receipt" + where + " ORDER BY id DESC LIMIT ? OFFSET ?"
	rows, err := c.db.QueryContext(ctx, query, append(args, filter.PerPage, filter.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing receipts: %w", err)
	}
	defer rows.Close()

	receipts, err := collectReceipts(rows)
	if err != nil {
		return nil, 0, err
	}
	return receipts, total, nil
}

func (c *Connection) GetReceipt(ctx context.Context, uuid string) (*models.Receipt, error) {
	row := c.db.QueryRowContext(ctx, "SELECT"+receiptColumns+" FROM receipt WHERE uuid = ?", uuid)
	receipt, err := scanReceipt(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting receipt %s: %w", uuid, err)
	}
	return receipt, nil
}

// ReceiptSummary counts receipts per validation status and per tx status.
func (c *Connection) ReceiptSummary(ctx context.Context) (*models.ReceiptSummary, error) {
	byStatus, err := c.countBy(ctx, "status")
	if err != nil {
		return nil, err
	}
	byTx, err := c.countBy(ctx, "tx_status")
	if err != nil {
		return nil, err
	}

	summary := &models.ReceiptSummary{}
	for _, sc := range byStatus {
		sc.Name = models.ReceiptStatus(sc.Code).String()
		summary.ByStatus = append(summary.ByStatus, sc)
	}
	for _, sc := range byTx {
		sc.Name = models.TxStatus(sc.Code).String()
		summary.ByTxStatus = append(summary.ByTxStatus, sc)
	}
	return summary, nil
}

func (c *Connection) countBy(ctx context.Context, column string) ([]models.StatusCount, error) {
	query := fmt.Sprintf(
		"SELECT %[1]s, COUNT(*) FROM receipt WHERE %[1]s IS NOT NULL GROUP BY %[1]s ORDER BY %[1]s", column)
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error counting receipts by %s: %w", column, err)
	}
	defer rows.Close()

	var counts []models.StatusCount
	for rows.Next() {
		var sc models.StatusCount
		if err := rows.Scan(&sc.Code, &sc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, sc)
	}
	return counts, rows.Err()
}

// ListTrackable returns valid receipts whose tx is still staged or invalid, oldest first.
func (c *Connection) ListTrackable(ctx context.Context, limit int) ([]models.Receipt, error) {
	query := "SELECT" + receiptColumns + " FROM receipt WHERE status = ? AND tx_status IN (" +
		placeholders(len(models.TrackableTxStatuses)) + ") ORDER BY id LIMIT ?"

	args := []interface{}{int(models.ReceiptStatusValid)}
	for _, s := range models.TrackableTxStatuses {
		args = append(args, int(s))
	}
	args = append(args, limit)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing trackable receipts: %w", err)
	}
	defer rows.Close()
	return collectReceipts(rows)
}

// UpdateTxResult stores a tracking outcome. A nil status keeps the current tx_status.
func (c *Connection) UpdateTxResult(ctx context.Context, id int64, status *models.TxStatus, msg string) error {
	var statusArg interface{}
	if status != nil {
		statusArg = int(*status)
	}
	result, err := c.db.ExecContext(ctx, `
		UPDATE receipt
		SET tx_status = COALESCE(?, tx_status),
		    msg = CASE WHEN ? = '' THEN msg ELSE CONCAT_WS('\n', msg, ?) END,
		    updated_at = UTC_TIMESTAMP()
		WHERE id = ?
	`, statusArg, msg, msg, id)
	if err != nil {
		return fmt.Errorf("error updating tx result for receipt %d: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListNonValidSince lists receipts created before cutoff that never became valid.
func (c *Connection) ListNonValidSince(ctx context.Context, cutoff time.Time) ([]models.Receipt, error) {
	query := "SELECT" + receiptColumns + " FROM receipt WHERE created_at <= ? AND status IN (" +
		placeholders(len(models.NonValidReceiptStatuses)) + ") ORDER BY id"
	args := []interface{}{cutoff}
	for _, s := range models.NonValidReceiptStatuses {
		args = append(args, int(s))
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing non-valid receipts: %w", err)
	}
	defer rows.Close()
	return collectReceipts(rows)
}

func (c *Connection) ListTxFailed(ctx context.Context) ([]models.Receipt, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT"+receiptColumns+" FROM receipt WHERE tx_status = ? ORDER BY id",
		int(models.TxStatusFailure))
	if err != nil {
		return nil, fmt.Errorf("error listing failed tx receipts: %w", err)
	}
	defer rows.Close()
	return collectReceipts(rows)
}

// ListHaltedTx lists receipts created before cutoff whose tx is still staged or invalid.
func (c *Connection) ListHaltedTx(ctx context.Context, cutoff time.Time) ([]models.Receipt, error) {
	query := "SELECT" + receiptColumns + " FROM receipt WHERE created_at <= ? AND tx_status IN (" +
		placeholders(len(models.TrackableTxStatuses)) + ") ORDER BY id"
	args := []interface{}{cutoff}
	for _, s := range models.TrackableTxStatuses {
		args = append(args, int(s))
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing halted tx receipts: %w", err)
	}
	defer rows.Close()
	return collectReceipts(rows)
}

// ListValidWithoutTx lists valid receipts created before cutoff that have no tx yet.
func (c *Connection) ListValidWithoutTx(ctx context.Context, cutoff time.Time) ([]models.Receipt, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT"+receiptColumns+" FROM receipt WHERE status = ? AND tx_id IS NULL AND created_at <= ? ORDER BY id",
		int(models.ReceiptStatusValid), cutoff)
	if err != nil {
		return nil, fmt.Errorf("error listing receipts without tx: %w", err)
	}
	defer rows.Close()
	return collectReceipts(rows)
}

func collectReceipts(rows *sql.Rows) ([]models.Receipt, error) {
	var receipts []models.Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning receipt: %w", err)
		}
		receipts = append(receipts, *r)
	}
	return receipts, rows.Err()
}
