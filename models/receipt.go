package models

import "time"

type Receipt struct {
	ID         int64         `json:"id"`
	UUID       string        `json:"uuid"`
	Store      Store         `json:"store"`
	ReceiptID  string        `json:"receipt_id"`
	Status     ReceiptStatus `json:"status"`
	TxID       *string       `json:"tx_id,omitempty"`
	TxStatus   *TxStatus     `json:"tx_status,omitempty"`
	ProductID  *int64        `json:"product_id,omitempty"`
	AgentAddr  string        `json:"agent_addr"`
	AvatarAddr string        `json:"avatar_addr"`
	PlanetID   string        `json:"planet_id"`
	Msg        string        `json:"msg,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// ReceiptView is a receipt with every code resolved to its display label.
type ReceiptView struct {
	Receipt
	StoreName    string `json:"store_name"`
	StatusName   string `json:"status_name"`
	StatusDesc   string `json:"status_desc"`
	TxStatusName string `json:"tx_status_name,omitempty"`
}

func NewReceiptView(r Receipt) ReceiptView {
	view := ReceiptView{
		Receipt:    r,
		StoreName:  r.Store.String(),
		StatusName: r.Status.String(),
		StatusDesc: r.Status.Desc(),
	}
	if r.TxStatus != nil {
		view.TxStatusName = r.TxStatus.String()
	}
	return view
}

// ReceiptFilter narrows a receipt listing. Nil fields are not applied.
type ReceiptFilter struct {
	Status   *ReceiptStatus
	Store    *Store
	TxStatus *TxStatus
	Page     int
	PerPage  int
}

func (f ReceiptFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PerPage
}

type ReceiptPage struct {
	Items   []ReceiptView `json:"items"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
	Total   int           `json:"total"`
}

// StatusCount is one row of the receipt summary.
type StatusCount struct {
	Code  int    `json:"code"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type ReceiptSummary struct {
	ByStatus   []StatusCount `json:"by_status"`
	ByTxStatus []StatusCount `json:"by_tx_status"`
}
