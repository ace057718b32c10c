package models

import "maps"

// TxStatus is the state of the chain transaction that delivers purchased items.
type TxStatus int

const (
	TxStatusCreated      TxStatus = 1
	TxStatusStaged       TxStatus = 2
	TxStatusSuccess      TxStatus = 10
	TxStatusFailure      TxStatus = 91
	TxStatusInvalid      TxStatus = 92
	TxStatusNotFound     TxStatus = 93
	TxStatusFailToCreate TxStatus = 94
	TxStatusUnknown      TxStatus = 99
)

var txStatusNames = map[int]string{
	1:  "CREATED",
	2:  "STAGED",
	10: "SUCCESS",
	91: "FAILURE",
	92: "INVALID",
	93: "NOT_FOUND",
	94: "FAIL_TO_CREATE",
	99: "UNKNOWN",
}

var txStatusByName = func() map[string]TxStatus {
	byName := make(map[string]TxStatus, len(txStatusNames))
	for code, name := range txStatusNames {
		byName[name] = TxStatus(code)
	}
	return byName
}()

// TxStatusMap returns a copy of the tx status code -> name table.
func TxStatusMap() map[int]string {
	return maps.Clone(txStatusNames)
}

func LookupTxStatus(code int) (string, bool) {
	name, ok := txStatusNames[code]
	return name, ok
}

// ParseTxStatus maps a status name as reported by the chain node.
func ParseTxStatus(name string) (TxStatus, bool) {
	status, ok := txStatusByName[name]
	return status, ok
}

func (ts TxStatus) String() string {
	if name, ok := txStatusNames[int(ts)]; ok {
		return name
	}
	return "UNKNOWN"
}

func (ts TxStatus) IsValid() bool {
	_, ok := txStatusNames[int(ts)]
	return ok
}

// TrackableTxStatuses are the states the tracker polls the chain for.
var TrackableTxStatuses = []TxStatus{TxStatusStaged, TxStatusInvalid}
