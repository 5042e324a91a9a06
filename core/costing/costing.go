// Package costing holds the pure arithmetic that prices production: unit
// cost from a bill of materials, and whole-batch cost from line items,
// printer depreciation and packaging. Nothing here touches storage; callers
// pass in current material costs so the numbers always reflect the latest
// weighted averages.
package costing

import (
	"github.com/shopspring/decimal"
	"github.com/sksmith/print-factory/core/product"
)

// Line pairs a product with the quantity of it a batch will print.
type Line struct {
	Product  product.Product
	Quantity int64
}

// Economics is the snapshot of a printer's price and expected life taken
// when it was assigned to a batch. Later edits to the printer must not
// reprice batches that already captured their snapshot.
type Economics struct {
	Price     float64 `json:"price"`
	LifeHours float64 `json:"lifeHours"`
}

// DepreciationRate is the cost of one hour of wear. Zero life means the
// rate is zero rather than an error.
func (e Economics) DepreciationRate() float64 {
	if e.LifeHours == 0 {
		return 0
	}
	return e.Price / e.LifeHours
}

// Assignment is a printer assignment as the costing engine sees it. A nil
// Snapshot contributes nothing to equipment cost; it means no printer
// profile existed at assignment time, which is not an error.
type Assignment struct {
	UnitsQty int64
	Snapshot *Economics
}

// CostOf looks up the current weighted-average cost per kg of a material.
type CostOf func(materialID int64) float64

// UnitCost prices one unit of a product off the current material averages:
// grams are converted to kg, multiplied by the average cost, and the
// product's fixed cost is added. Rounded to cents.
func UnitCost(p product.Product, costOf CostOf) float64 {
	return Round2(rawUnitCost(p, costOf))
}

func rawUnitCost(p product.Product, costOf CostOf) float64 {
	total := p.FixedCost
	for _, u := range p.Materials {
		total += u.Grams / 1000 * costOf(u.MaterialID)
	}
	return total
}

// TotalPrintHours sums the print time of every unit across all lines.
func TotalPrintHours(lines []Line) float64 {
	var hours float64
	for _, l := range lines {
		hours += l.Product.PrintTimeHours * float64(l.Quantity)
	}
	return hours
}

// BatchTotal prices an entire batch: material and fixed cost per line,
// depreciation of every assigned printer over the batch's total print
// hours, and a flat packaging fee. Rounding happens once at the end so
// per-unit cents are not lost across large quantities.
func BatchTotal(lines []Line, assignments []Assignment, packagingFee float64, costOf CostOf) float64 {
	var productCost float64
	for _, l := range lines {
		productCost += rawUnitCost(l.Product, costOf) * float64(l.Quantity)
	}

	printHours := TotalPrintHours(lines)

	var equipmentCost float64
	for _, a := range assignments {
		if a.Snapshot == nil {
			continue
		}
		equipmentCost += a.Snapshot.DepreciationRate() * printHours * float64(a.UnitsQty)
	}

	return Round2(productCost + equipmentCost + packagingFee)
}

// Round2 rounds to two decimals, half away from zero.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
