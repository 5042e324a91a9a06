package prodrepo

import (
	"context"

	"github.com/sksmith/print-factory/core"
	"github.com/sksmith/print-factory/core/product"
	"github.com/sksmith/print-factory/db"
	"github.com/sksmith/print-factory/test"
)

type MockRepo struct {
	SaveProductFunc    func(ctx context.Context, p *product.Product, options ...core.UpdateOptions) error
	GetProductFunc     func(ctx context.Context, sku string, options ...core.QueryOptions) (product.Product, error)
	GetProductByIDFunc func(ctx context.Context, id int64, options ...core.QueryOptions) (product.Product, error)
	GetAllProductsFunc func(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]product.Product, error)
	ProductInUseFunc   func(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error)
	DeleteProductFunc  func(ctx context.Context, id int64, options ...core.UpdateOptions) error

	*test.CallWatcher
}

func NewMockRepo() MockRepo {
	return MockRepo{
		SaveProductFunc: func(ctx context.Context, p *product.Product, options ...core.UpdateOptions) error {
			return nil
		},
		GetProductFunc: func(ctx context.Context, sku string, options ...core.QueryOptions) (product.Product, error) {
			return product.Product{}, core.ErrNotFound
		},
		GetProductByIDFunc: func(ctx context.Context, id int64, options ...core.QueryOptions) (product.Product, error) {
			return product.Product{}, core.ErrNotFound
		},
		GetAllProductsFunc: func(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]product.Product, error) {
			return []product.Product{}, nil
		},
		ProductInUseFunc: func(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error) {
			return false, nil
		},
		DeleteProductFunc: func(ctx context.Context, id int64, options ...core.UpdateOptions) error {
			return nil
		},
		CallWatcher: test.NewCallWatcher(),
	}
}

func (r *MockRepo) SaveProduct(ctx context.Context, p *product.Product, options ...core.UpdateOptions) error {
	r.AddCall(ctx, p, options)
	return r.SaveProductFunc(ctx, p, options...)
}

func (r *MockRepo) GetProduct(ctx context.Context, sku string, options ...core.QueryOptions) (product.Product, error) {
	r.AddCall(ctx, sku, options)
	return r.GetProductFunc(ctx, sku, options...)
}

func (r *MockRepo) GetProductByID(ctx context.Context, id int64, options ...core.QueryOptions) (product.Product, error) {
	r.AddCall(ctx, id, options)
	return r.GetProductByIDFunc(ctx, id, options...)
}

func (r *MockRepo) GetAllProducts(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]product.Product, error) {
	r.AddCall(ctx, limit, offset, options)
	return r.GetAllProductsFunc(ctx, limit, offset, options...)
}

func (r *MockRepo) ProductInUse(ctx context.Context, id int64, options ...core.QueryOptions) (bool, error) {
	r.AddCall(ctx, id, options)
	return r.ProductInUseFunc(ctx, id, options...)
}

func (r *MockRepo) DeleteProduct(ctx context.Context, id int64, options ...core.UpdateOptions) error {
	r.AddCall(ctx, id, options)
	return r.DeleteProductFunc(ctx, id, options...)
}

func (r *MockRepo) BeginTransaction(ctx context.Context) (core.Transaction, error) {
	r.AddCall(ctx)
	return db.NewMockTransaction(), nil
}
