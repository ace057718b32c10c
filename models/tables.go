package models

// Tables is every lookup table in one payload, keyed the way the frontend const module is.
type Tables struct {
	BoxStatusColor map[int]string            `json:"BoxStatusColorMap"`
	BoxStatusName  map[int]string            `json:"BoxStatusNameMap"`
	Store          map[int]string            `json:"STORE_MAP"`
	ReceiptStatus  map[int]ReceiptStatusInfo `json:"RECEIPT_STATUS_MAP"`
	TxStatus       map[int]string            `json:"TxStatus"`
	Stage          string                    `json:"STAGE"`
}

func AllTables(stage string) Tables {
	return Tables{
		BoxStatusColor: BoxStatusColorMap(),
		BoxStatusName:  BoxStatusNameMap(),
		Store:          StoreMap(),
		ReceiptStatus:  ReceiptStatusMap(),
		TxStatus:       TxStatusMap(),
		Stage:          stage,
	}
}

// TableByName resolves the route names used by the tables endpoint.
func TableByName(name string) (interface{}, bool) {
	switch name {
	case "box-status":
		return struct {
			Color map[int]string `json:"color"`
			Name  map[int]string `json:"name"`
		}{BoxStatusColorMap(), BoxStatusNameMap()}, true
	case "store":
		return StoreMap(), true
	case "receipt-status":
		return ReceiptStatusMap(), true
	case "tx-status":
		return TxStatusMap(), true
	default:
		return nil, false
	}
}
