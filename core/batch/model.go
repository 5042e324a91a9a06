// Package batch is the production run aggregate. A batch groups quantities
// of products with printer assignments, reserves filament for the whole run
// up front, and carries a cached total cost derived by the costing engine.
package batch

import (
	"fmt"
	"time"

	"github.com/sksmith/print-factory/core/costing"
)

type Status string

const (
	Pending   Status = "pending"
	Printing  Status = "printing"
	Completed Status = "completed"
	Failed    Status = "failed"
)

func ParseStatus(v string) (Status, error) {
	switch Status(v) {
	case Pending, Printing, Completed, Failed:
		return Status(v), nil
	default:
		return "", fmt.Errorf("invalid batch status %q", v)
	}
}

// LineItem is a value object. A quantity of one product in the run.
type LineItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// Assignment is a value object. One printer, or a printer type standing in
// for a unit not yet chosen, committed to the run. Economics are
// snapshotted at assignment time so later printer edits cannot reprice the
// batch; type-only assignments carry no snapshot and cost nothing.
type Assignment struct {
	PrinterID     *int64             `json:"printerId,omitempty"`
	PrinterTypeID *int64             `json:"printerTypeId,omitempty"`
	UnitsQty      int64              `json:"unitsQty"`
	HoursPerUnit  float64            `json:"hoursPerUnit"`
	Snapshot      *costing.Economics `json:"snapshot,omitempty"`
}

// Batch is the aggregate root. It exclusively owns its line items and
// assignments; materials and printers are shared resources referenced by
// id.
type Batch struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Status          Status       `json:"status"`
	PackagingFee    float64      `json:"packagingFee"`
	TotalCost       *float64     `json:"totalCost,omitempty"`
	StartedAt       *time.Time   `json:"startedAt,omitempty"`
	EstCompletionAt *time.Time   `json:"estCompletionAt,omitempty"`
	LineItems       []LineItem   `json:"lineItems"`
	Assignments     []Assignment `json:"assignments"`
	Created         time.Time    `json:"created"`
}

// CreateBatchRequest is a value object carrying everything needed to open a
// new run.
type CreateBatchRequest struct {
	Name         string              `json:"name"`
	PackagingFee float64             `json:"packagingFee"`
	LineItems    []LineItem          `json:"lineItems"`
	Assignments  []AssignmentRequest `json:"assignments"`
}

// AssignmentRequest names a printer or a printer type; the service captures
// the economics snapshot itself.
type AssignmentRequest struct {
	PrinterID     *int64  `json:"printerId,omitempty"`
	PrinterTypeID *int64  `json:"printerTypeId,omitempty"`
	UnitsQty      int64   `json:"unitsQty"`
	HoursPerUnit  float64 `json:"hoursPerUnit"`
}

// EditBatchRequest carries a partial update; nil fields are left alone.
type EditBatchRequest struct {
	Name         *string              `json:"name,omitempty"`
	PackagingFee *float64             `json:"packagingFee,omitempty"`
	LineItems    *[]LineItem          `json:"lineItems,omitempty"`
	Assignments  *[]AssignmentRequest `json:"assignments,omitempty"`
}

// UnknownEntityError reports a referenced material, product or printer that
// does not exist. Always raised before anything is persisted.
type UnknownEntityError struct {
	Kind string
	ID   string
}

func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("unknown %s %s", e.Kind, e.ID)
}

// PrinterConflictError reports a printer already running another batch.
type PrinterConflictError struct {
	PrinterID     int64
	HolderBatchID string
}

func (e *PrinterConflictError) Error() string {
	return fmt.Sprintf("printer %d is already printing batch %s", e.PrinterID, e.HolderBatchID)
}

// InvalidStateError reports an operation applied to a batch whose status
// does not allow it.
type InvalidStateError struct {
	BatchID string
	Status  Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("batch %s is %s", e.BatchID, e.Status)
}
