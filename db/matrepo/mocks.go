package matrepo

import (
	"context"

	"github.com/sksmith/print-factory/core"
	"github.com/sksmith/print-factory/core/material"
	"github.com/sksmith/print-factory/db"
	"github.com/sksmith/print-factory/test"
)

type MockRepo struct {
	GetMaterialFunc        func(ctx context.Context, id int64, options ...core.QueryOptions) (material.Material, error)
	GetMaterialByAttrsFunc func(ctx context.Context, color, brand, composition string, options ...core.QueryOptions) (material.Material, error)
	GetAllMaterialsFunc    func(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]material.Material, error)
	MaterialInUseFunc      func(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error)
	SaveMaterialFunc       func(ctx context.Context, m *material.Material, options ...core.UpdateOptions) error
	DeleteMaterialFunc     func(ctx context.Context, id int64, options ...core.UpdateOptions) error

	GetPurchaseFunc    func(ctx context.Context, id int64, options ...core.QueryOptions) (material.Purchase, error)
	GetPurchasesFunc   func(ctx context.Context, materialID int64, limit, offset int, options ...core.QueryOptions) ([]material.Purchase, error)
	SavePurchaseFunc   func(ctx context.Context, p *material.Purchase, options ...core.UpdateOptions) error
	DeletePurchaseFunc func(ctx context.Context, id int64, options ...core.UpdateOptions) error

	BeginTransactionFunc func(ctx context.Context) (core.Transaction, error)

	*test.CallWatcher
}

func NewMockRepo() *MockRepo {
	return &MockRepo{
		GetMaterialFunc: func(ctx context.Context, id int64, options ...core.QueryOptions) (material.Material, error) {
			return material.Material{}, nil
		},
		GetMaterialByAttrsFunc: func(ctx context.Context, color, brand, composition string, options ...core.QueryOptions) (material.Material, error) {
			return material.Material{}, core.ErrNotFound
		},
		GetAllMaterialsFunc: func(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]material.Material, error) {
			return []material.Material{}, nil
		},
		MaterialInUseFunc: func(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error) {
			return false, nil
		},
		SaveMaterialFunc:   func(ctx context.Context, m *material.Material, options ...core.UpdateOptions) error { return nil },
		DeleteMaterialFunc: func(ctx context.Context, id int64, options ...core.UpdateOptions) error { return nil },
		GetPurchaseFunc: func(ctx context.Context, id int64, options ...core.QueryOptions) (material.Purchase, error) {
			return material.Purchase{}, nil
		},
		GetPurchasesFunc: func(ctx context.Context, materialID int64, limit, offset int, options ...core.QueryOptions) ([]material.Purchase, error) {
			return []material.Purchase{}, nil
		},
		SavePurchaseFunc:   func(ctx context.Context, p *material.Purchase, options ...core.UpdateOptions) error { return nil },
		DeletePurchaseFunc: func(ctx context.Context, id int64, options ...core.UpdateOptions) error { return nil },
		BeginTransactionFunc: func(ctx context.Context) (core.Transaction, error) {
			return db.NewMockTransaction(), nil
		},
		CallWatcher: test.NewCallWatcher(),
	}
}

func (r *MockRepo) GetMaterial(ctx context.Context, id int64, options ...core.QueryOptions) (material.Material, error) {
	r.AddCall(ctx, id, options)
	return r.GetMaterialFunc(ctx, id, options...)
}

func (r *MockRepo) GetMaterialByAttrs(ctx context.Context, color, brand, composition string, options ...core.QueryOptions) (material.Material, error) {
	r.AddCall(ctx, color, brand, composition, options)
	return r.GetMaterialByAttrsFunc(ctx, color, brand, composition, options...)
}

func (r *MockRepo) GetAllMaterials(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]material.Material, error) {
	r.AddCall(ctx, limit, offset, options)
	return r.GetAllMaterialsFunc(ctx, limit, offset, options...)
}

func (r *MockRepo) MaterialInUse(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error) {
	r.AddCall(ctx, id, options)
	return r.MaterialInUseFunc(ctx, id, options...)
}

func (r *MockRepo) SaveMaterial(ctx context.Context, m *material.Material, options ...core.UpdateOptions) error {
	r.AddCall(ctx, m, options)
	return r.SaveMaterialFunc(ctx, m, options...)
}

func (r *MockRepo) DeleteMaterial(ctx context.Context, id int64, options ...core.UpdateOptions) error {
	r.AddCall(ctx, id, options)
	return r.DeleteMaterialFunc(ctx, id, options...)
}

func (r *MockRepo) GetPurchase(ctx context.Context, id int64, options ...core.QueryOptions) (material.Purchase, error) {
	r.AddCall(ctx, id, options)
	return r.GetPurchaseFunc(ctx, id, options...)
}

func (r *MockRepo) GetPurchases(ctx context.Context, materialID int64, limit, offset int, options ...core.QueryOptions) ([]material.Purchase, error) {
	r.AddCall(ctx, materialID, limit, offset, options)
	return r.GetPurchasesFunc(ctx, materialID, limit, offset, options...)
}

func (r *MockRepo) SavePurchase(ctx context.Context, p *material.Purchase, options ...core.UpdateOptions) error {
	r.AddCall(ctx, p, options)
	return r.SavePurchaseFunc(ctx, p, options...)
}

func (r *MockRepo) DeletePurchase(ctx context.Context, id int64, options ...core.UpdateOptions) error {
	r.AddCall(ctx, id, options)
	return r.DeletePurchaseFunc(ctx, id, options...)
}

func (r *MockRepo) BeginTransaction(ctx context.Context) (core.Transaction, error) {
	r.AddCall(ctx)
	return r.BeginTransactionFunc(ctx)
}
