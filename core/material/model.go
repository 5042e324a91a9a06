// Package material models raw filament spools tracked by quantity on hand
// and a weighted-average cost per kilogram. Stock only ever changes through
// purchases, reservations and releases.
package material

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Material is an entity. One filament definition, unique per
// color/brand/composition.
type Material struct {
	ID          int64     `json:"id"`
	Color       string    `json:"color"`
	Brand       string    `json:"brand"`
	Composition string    `json:"composition"`
	OnHandKg    float64   `json:"onHandKg"`
	AvgCostKg   float64   `json:"avgCostKg"`
	ThresholdKg *float64  `json:"thresholdKg,omitempty"`
	Created     time.Time `json:"created"`
}

// applyPurchase folds a purchase into the weighted-average cost. The average
// is only ever recomputed here; reservations and releases touch quantity
// alone.
func (m *Material) applyPurchase(quantityKg, costPerKg float64) {
	totalValue := m.OnHandKg*m.AvgCostKg + quantityKg*costPerKg
	newQuantity := m.OnHandKg + quantityKg
	if newQuantity > 0 {
		m.AvgCostKg = totalValue / newQuantity
	}
	m.OnHandKg = newQuantity
}

// Purchase is an entity. A restock of a single material. Immutable once
// created; deleting one decrements stock but never rewinds the average cost.
type Purchase struct {
	ID          int64     `json:"id"`
	MaterialID  int64     `json:"materialId"`
	QuantityKg  float64   `json:"quantityKg"`
	CostPerKg   float64   `json:"costPerKg"`
	PurchasedAt time.Time `json:"purchasedAt"`
	Channel     string    `json:"channel,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// PurchaseRequest is a value object carrying a restock request.
type PurchaseRequest struct {
	MaterialID  int64     `json:"materialId"`
	QuantityKg  float64   `json:"quantityKg"`
	CostPerKg   float64   `json:"costPerKg"`
	PurchasedAt time.Time `json:"purchasedAt"`
	Channel     string    `json:"channel"`
	Notes       string    `json:"notes"`
}

// Demand maps material id to the total grams a batch needs of it.
type Demand map[int64]float64

func (d Demand) Add(materialID int64, grams float64) {
	d[materialID] += grams
}

// MaterialIDs returns the ids in ascending order so callers lock rows in a
// stable order.
func (d Demand) MaterialIDs() []int64 {
	ids := make([]int64, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Shortage describes one material that cannot cover its share of a demand.
type Shortage struct {
	MaterialID  int64   `json:"materialId"`
	Name        string  `json:"name"`
	RequiredKg  float64 `json:"requiredKg"`
	AvailableKg float64 `json:"availableKg"`
}

// StockShortageError carries every shortfall found while checking a demand,
// not just the first, so a caller can restock everything in one pass.
type StockShortageError struct {
	Shortages []Shortage
}

func (e *StockShortageError) Error() string {
	msgs := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		msgs = append(msgs, fmt.Sprintf("%s: need %.3fkg, have %.3fkg", s.Name, s.RequiredKg, s.AvailableKg))
	}
	return "insufficient stock: " + strings.Join(msgs, "; ")
}

// DisplayName is the identity string used in logs and shortage messages.
func (m Material) DisplayName() string {
	return fmt.Sprintf("%s %s %s", m.Brand, m.Color, m.Composition)
}
