package product

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
	BeginTransaction(ctx context.Context) (core.Transaction, error)

	GetProduct(ctx context.Context, sku string, options ...core.QueryOptions) (Product, error)
	GetProductByID(ctx context.Context, id int64, options ...core.QueryOptions) (Product, error)
	GetAllProducts(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]Product, error)
	ProductInUse(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error)

	SaveProduct(ctx context.Context, product *Product, options ...core.UpdateOptions) error
	DeleteProduct(ctx context.Context, id int64, options ...core.UpdateOptions) error
}
