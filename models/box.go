package models

type BoxItem struct {
	ItemID int64  `json:"item_id"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

type Box struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Price    float64   `json:"price"`
	Status   BoxStatus `json:"status"`
	ItemList []BoxItem `json:"item_list"`
}

type BoxView struct {
	Box
	StatusName  string `json:"status_name"`
	StatusColor string `json:"status_color"`
}

func NewBoxView(b Box) BoxView {
	return BoxView{
		Box:         b,
		StatusName:  b.Status.String(),
		StatusColor: b.Status.Color(),
	}
}
