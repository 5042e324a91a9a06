// Package product defines the finished goods the shop can print: a sku, a
// bill of materials in grams, and the fixed time and cost it takes to
// produce one unit.
package product

import "time"

// Product is an entity. A printable item identified by its sku.
type Product struct {
	ID             int64           `json:"id"`
	Sku            string          `json:"sku"`
	Name           string          `json:"name"`
	PrintTimeHours float64         `json:"printTimeHours"`
	FixedCost      float64         `json:"fixedCost"`
	Materials      []MaterialUsage `json:"materials"`
	Created        time.Time       `json:"created"`
}

// MaterialUsage is a value object. Grams of one material consumed per unit
// produced.
type MaterialUsage struct {
	MaterialID int64   `json:"materialId"`
	Grams      float64 `json:"grams"`
}
