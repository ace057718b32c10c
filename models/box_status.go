package models

import "maps"

// BoxStatus is the lifecycle of a packed box as it moves through the queue and the chain.
type BoxStatus int

const (
	BoxStatusCreated     BoxStatus = 1
	BoxStatusMessageSent BoxStatus = 2
	BoxStatusTxCreated   BoxStatus = 3
	BoxStatusTxStaged    BoxStatus = 4
	BoxStatusSuccess     BoxStatus = 10
	BoxStatusFail        BoxStatus = 90
	BoxStatusError       BoxStatus = 99
)

var boxStatusColors = map[int]string{
	1:  "gray",
	2:  "blue",
	3:  "indigo",
	4:  "purple",
	10: "green",
	90: "red",
	99: "red",
}

var boxStatusNames = map[int]string{
	1:  "Created",
	2:  "Message Sent to Queue",
	3:  "Tx Created",
	4:  "Tx Staged",
	10: "Tx Success",
	90: "Tx Failed",
	99: "ERROR",
}

// BoxStatusColorMap returns a copy of the code -> badge color table.
func BoxStatusColorMap() map[int]string {
	return maps.Clone(boxStatusColors)
}

// BoxStatusNameMap returns a copy of the code -> label table.
func BoxStatusNameMap() map[int]string {
	return maps.Clone(boxStatusNames)
}

func LookupBoxStatusColor(code int) (string, bool) {
	color, ok := boxStatusColors[code]
	return color, ok
}

func LookupBoxStatusName(code int) (string, bool) {
	name, ok := boxStatusNames[code]
	return name, ok
}

func (bs BoxStatus) String() string {
	if name, ok := boxStatusNames[int(bs)]; ok {
		return name
	}
	return "unknown"
}

// Color falls back to gray for codes the table does not know.
func (bs BoxStatus) Color() string {
	if color, ok := boxStatusColors[int(bs)]; ok {
		return color
	}
	return "gray"
}

func (bs BoxStatus) IsValid() bool {
	_, ok := boxStatusNames[int(bs)]
	return ok
}
