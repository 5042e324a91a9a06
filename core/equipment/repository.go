package equipment

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/sksmith/print-factory/core"
)

func rollback(ctx context.Context, tx core.Transaction, err error) {
	if tx == nil {
		return
	}
	e := tx.Rollback(ctx)
	if e != nil {
		log.Warn().Err(err).Msg("failed to rollback")
	}
}

type Repository interface {
	PrinterTypeRepository
	PrinterRepository
	UsageRepository
}

type PrinterTypeRepository interface {
	BeginTransaction(ctx context.Context) (core.Transaction, error)

	GetPrinterType(ctx context.Context, id int64, options ...core.QueryOptions) (PrinterType, error)
	GetPrinterTypeByModel(ctx context.Context, brand, model string, options ...core.QueryOptions) (PrinterType, error)
	GetAllPrinterTypes(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]PrinterType, error)

	SavePrinterType(ctx context.Context, t *PrinterType, options ...core.UpdateOptions) error
}

type PrinterRepository interface {
	BeginTransaction(ctx context.Context) (core.Transaction, error)

	GetPrinter(ctx context.Context, id int64, options ...core.QueryOptions) (Printer, error)
	GetPrinterByName(ctx context.Context, normalizedName string, options ...core.QueryOptions) (Printer, error)
	GetAllPrinters(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]Printer, error)

	SavePrinter(ctx context.Context, p *Printer, options ...core.UpdateOptions) error
	DeletePrinter(ctx context.Context, id int64, options ...core.UpdateOptions) error
}

type UsageRepository interface {
	BeginTransaction(ctx context.Context) (core.Transaction, error)

	GetUsageRecords(ctx context.Context, printerID int64, limit, offset int, options ...core.QueryOptions) ([]UsageRecord, error)

	SaveUsageRecord(ctx context.Context, r *UsageRecord, options ...core.UpdateOptions) error
	DeleteUsageRecordsForBatch(ctx context.Context, batchID string, options ...core.UpdateOptions) error
}
