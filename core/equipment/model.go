// Package equipment tracks the shop's printers: their acquisition cost,
// expected service life, accumulated wear, and whether they are currently
// running a batch.
package equipment

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// PrinterType is an entity. A brand/model pairing with an expected service
// life used to derive depreciation.
type PrinterType struct {
	ID        int64   `json:"id"`
	Brand     string  `json:"brand"`
	Model     string  `json:"model"`
	LifeHours float64 `json:"lifeHours"`
}

type Status string

const (
	Idle        Status = "idle"
	Printing    Status = "printing"
	Maintenance Status = "maintenance"
	Offline     Status = "offline"
)

func ParseStatus(v string) (Status, error) {
	switch Status(v) {
	case Idle, Printing, Maintenance, Offline:
		return Status(v), nil
	default:
		return "", errors.New("invalid printer status")
	}
}

// Printer is an entity. One physical machine of a given type. Names are
// unique after case and whitespace normalization.
type Printer struct {
	ID         int64     `json:"id"`
	TypeID     int64     `json:"typeId"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	UsageHours float64   `json:"usageHours"`
	Status     Status    `json:"status"`
	Created    time.Time `json:"created"`
}

// NormalizeName collapses the case and whitespace differences that would
// otherwise let "Ender  3" and "ender 3" coexist.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// RemainingLifeHours reports how much of the type's expected life the
// printer has left. Wear never goes negative.
func (p Printer) RemainingLifeHours(t PrinterType) float64 {
	remaining := t.LifeHours - p.UsageHours
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (p Printer) RemainingLifePct(t PrinterType) float64 {
	if t.LifeHours == 0 {
		return 0
	}
	return p.RemainingLifeHours(t) / t.LifeHours * 100
}

// UsageRecord is an entity. An append-only record of hours a printer ran
// for one batch, written once when the batch starts. It is never mutated
// and only removed when its batch is deleted.
type UsageRecord struct {
	ID        int64     `json:"id"`
	PrinterID int64     `json:"printerId"`
	BatchID   string    `json:"batchId"`
	Hours     float64   `json:"hours"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Created   time.Time `json:"created"`
}
