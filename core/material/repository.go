package material

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

type Transactional interface {
	BeginTransaction(ctx context.Context) (core.Transaction, error)
}

type Repository interface {
	MaterialRepository
	PurchaseRepository
}

type MaterialRepository interface {
	Transactional
	GetMaterial(ctx context.Context, id int64, options ...core.QueryOptions) (Material, error)
	GetMaterialByAttrs(ctx context.Context, color, brand, composition string, options ...core.QueryOptions) (Material, error)
	GetAllMaterials(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]Material, error)
	MaterialInUse(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error)

	SaveMaterial(ctx context.Context, material *Material, options ...core.UpdateOptions) error
	DeleteMaterial(ctx context.Context, id int64, options ...core.UpdateOptions) error
}

type PurchaseRepository interface {
	Transactional
	GetPurchase(ctx context.Context, id int64, options ...core.QueryOptions) (Purchase, error)
	GetPurchases(ctx context.Context, materialID int64, limit, offset int, options ...core.QueryOptions) ([]Purchase, error)

	SavePurchase(ctx context.Context, purchase *Purchase, options ...core.UpdateOptions) error
	DeletePurchase(ctx context.Context, id int64, options ...core.UpdateOptions) error
}

type Queue interface {
	PublishStock(ctx context.Context, material Material) error
}
