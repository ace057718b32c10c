package database

import (
	"context"
	"fmt"

	"iap-backoffice/models"
)

// ListBoxes loads every box with its packed items.
func (c *Connection) ListBoxes(ctx context.Context) ([]models.Box, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT b.id, b.name, b.price, b.status, bi.item_id, i.name, bi.count
		FROM box b
		LEFT JOIN box_item bi ON bi.box_id = b.id
		LEFT JOIN item i ON i.id = bi.item_id
		ORDER BY b.id, bi.item_id
	`)
	if err != nil {
		return nil, fmt.Errorf("error listing boxes: %w", err)
	}
	defer rows.Close()

	var (
		boxes []models.Box
		index = make(map[int64]int)
	)
	for rows.Next() {
		var (
			box      models.Box
			itemID   *int64
			itemName *string
			count    *int
		)
		if err := rows.Scan(&box.ID, &box.Name, &box.Price, &box.Status, &itemID, &itemName, &count); err != nil {
			return nil, fmt.Errorf("error scanning box: %w", err)
		}

		pos, seen := index[box.ID]
		if !seen {
			box.ItemList = []models.BoxItem{}
			boxes = append(boxes, box)
			pos = len(boxes) - 1
			index[box.ID] = pos
		}
		if itemID != nil {
			item := models.BoxItem{ItemID: *itemID}
			if itemName != nil {
				item.Name = *itemName
			}
			if count != nil {
				item.Count = *count
			}
			boxes[pos].ItemList = append(boxes[pos].ItemList, item)
		}
	}
	return boxes, rows.Err()
}
