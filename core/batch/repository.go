package batch

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/sksmith/print-factory/core"
	"github.com/sksmith/print-factory/core/material"
	"github.com/sksmith/print-factory/core/product"
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
	BeginTransaction(ctx context.Context) (core.Transaction, error)

	GetBatch(ctx context.Context, id string, options ...core.QueryOptions) (Batch, error)
	GetAllBatches(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]Batch, error)
	GetLineItems(ctx context.Context, batchID string, options ...core.QueryOptions) ([]LineItem, error)
	GetAssignments(ctx context.Context, batchID string, options ...core.QueryOptions) ([]Assignment, error)

	// GetPrintingHolder returns the id of another batch that is currently
	// printing and holds the given printer, or core.ErrNotFound.
	GetPrintingHolder(ctx context.Context, printerID int64, excludeBatchID string, options ...core.QueryOptions) (string, error)

	SaveBatch(ctx context.Context, b *Batch, options ...core.UpdateOptions) error
	SaveLineItems(ctx context.Context, batchID string, lines []LineItem, options ...core.UpdateOptions) error
	SaveAssignments(ctx context.Context, batchID string, assignments []Assignment, options ...core.UpdateOptions) error
	DeleteBatch(ctx context.Context, id string, options ...core.UpdateOptions) error
}

// MaterialService is the slice of the material service the batch lifecycle
// depends on. Reserve, Release and Reconcile accept the batch operation's
// transaction so stock movements commit or roll back with the batch; the
// materials they return are handed to PublishStockUpdates only after that
// transaction commits.
type MaterialService interface {
	GetMaterial(ctx context.Context, id int64) (material.Material, error)
	Reserve(ctx context.Context, demand material.Demand, options ...core.UpdateOptions) ([]material.Material, error)
	Release(ctx context.Context, demand material.Demand, options ...core.UpdateOptions) ([]material.Material, error)
	Reconcile(ctx context.Context, old, new material.Demand, options ...core.UpdateOptions) ([]material.Material, error)
	PublishStockUpdates(ctx context.Context, updates []material.Material) error
}

// ProductRepository is the read side of the product catalog the batch
// service validates line items against.
type ProductRepository interface {
	GetProductByID(ctx context.Context, id int64, options ...core.QueryOptions) (product.Product, error)
}

type Queue interface {
	PublishBatch(ctx context.Context, b Batch) error
}
