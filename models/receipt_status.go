package models

import "maps"

// ReceiptStatus is the validation state of a purchase receipt.
type ReceiptStatus int

const (
	ReceiptStatusInit                ReceiptStatus = 0
	ReceiptStatusValidationRequest   ReceiptStatus = 1
	ReceiptStatusValid               ReceiptStatus = 10
	ReceiptStatusRefundByAdmin       ReceiptStatus = 20
	ReceiptStatusInvalid             ReceiptStatus = 91
	ReceiptStatusRefundByBuyer       ReceiptStatus = 92
	ReceiptStatusPurchaseLimitExceed ReceiptStatus = 93
	ReceiptStatusTimeLimit           ReceiptStatus = 94
	ReceiptStatusRequiredLevel       ReceiptStatus = 95
	ReceiptStatusUnknown             ReceiptStatus = 99
)

// ReceiptStatusInfo keeps the Name/Desc keys the frontend reads.
type ReceiptStatusInfo struct {
	Name string `json:"Name"`
	Desc string `json:"Desc"`
}

var receiptStatuses = map[int]ReceiptStatusInfo{
	0:  {Name: "INIT", Desc: ""},
	1:  {Name: "VALIDATION_REQUEST", Desc: ""},
	10: {Name: "VALID", Desc: ""},
	20: {Name: "REFUND_BY_ADMIN", Desc: ""},
	91: {Name: "INVALID", Desc: ""},
	92: {Name: "REFUND_BY_BUYER", Desc: ""},
	99: {Name: "UNKNOWN", Desc: ""},
}

// backendReceiptStatuses labels every code the backend stores, including the
// purchase-policy rejections the frontend table does not list.
var backendReceiptStatuses = map[int]ReceiptStatusInfo{
	0:  {Name: "INIT", Desc: "Receipt saved, validation not requested yet."},
	1:  {Name: "VALIDATION_REQUEST", Desc: "Waiting for the store to answer the validation request."},
	10: {Name: "VALID", Desc: "Receipt validated. Check the transaction status for delivery."},
	20: {Name: "REFUND_BY_ADMIN", Desc: "Refunded by an administrator. No penalty to the buyer."},
	91: {Name: "INVALID", Desc: "Validation failed. No transaction is created."},
	92: {Name: "REFUND_BY_BUYER", Desc: "Refunded by the buyer."},
	93: {Name: "PURCHASE_LIMIT_EXCEED", Desc: "Daily or weekly purchase limit reached for this product."},
	94: {Name: "TIME_LIMIT", Desc: "Purchased outside the product's open/close window. Refund manually."},
	95: {Name: "REQUIRED_LEVEL", Desc: "Buyer does not meet the required level for this product."},
	99: {Name: "UNKNOWN", Desc: "Unhandled error. Contact an administrator."},
}

// ReceiptStatusMap returns a copy of the frontend status table.
func ReceiptStatusMap() map[int]ReceiptStatusInfo {
	return maps.Clone(receiptStatuses)
}

func LookupReceiptStatus(code int) (ReceiptStatusInfo, bool) {
	info, ok := receiptStatuses[code]
	return info, ok
}

// BackendReceiptStatusMap returns a copy of the labels for every stored code.
func BackendReceiptStatusMap() map[int]ReceiptStatusInfo {
	return maps.Clone(backendReceiptStatuses)
}

func (rs ReceiptStatus) String() string {
	if info, ok := receiptStatuses[int(rs)]; ok {
		return info.Name
	}
	if info, ok := backendReceiptStatuses[int(rs)]; ok {
		return info.Name
	}
	return "UNKNOWN"
}

func (rs ReceiptStatus) Desc() string {
	return backendReceiptStatuses[int(rs)].Desc
}

// IsValid reports whether the backend can store the code.
func (rs ReceiptStatus) IsValid() bool {
	_, ok := backendReceiptStatuses[int(rs)]
	return ok
}

// NonValidReceiptStatuses are the states the status monitor reports as not yet valid.
var NonValidReceiptStatuses = []ReceiptStatus{
	ReceiptStatusInit,
	ReceiptStatusValidationRequest,
	ReceiptStatusInvalid,
}
