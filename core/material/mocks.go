package material

import (
	"context"

	"github.com/sksmith/print-factory/core"
)

type MockMaterialService struct {
	CreateMaterialFunc  func(ctx context.Context, m Material) (Material, error)
	GetMaterialFunc     func(ctx context.Context, id int64) (Material, error)
	GetAllMaterialsFunc func(ctx context.Context, limit, offset int) ([]Material, error)
	DeleteMaterialFunc  func(ctx context.Context, id int64) error

	RecordPurchaseFunc func(ctx context.Context, pr PurchaseRequest) (Material, error)
	GetPurchasesFunc   func(ctx context.Context, materialID int64, limit, offset int) ([]Purchase, error)
	DeletePurchaseFunc func(ctx context.Context, id int64) error

	ReserveFunc             func(ctx context.Context, demand Demand, options ...core.UpdateOptions) ([]Material, error)
	ReleaseFunc             func(ctx context.Context, demand Demand, options ...core.UpdateOptions) ([]Material, error)
	ReconcileFunc           func(ctx context.Context, old, new Demand, options ...core.UpdateOptions) ([]Material, error)
	PublishStockUpdatesFunc func(ctx context.Context, updates []Material) error

	SubscribeStockFunc   func(ch chan<- Material) (id StockSubID)
	UnsubscribeStockFunc func(id StockSubID)
}

func NewMockMaterialService() MockMaterialService {
	return MockMaterialService{
		CreateMaterialFunc: func(ctx context.Context, m Material) (Material, error) { return m, nil },
		GetMaterialFunc:    func(ctx context.Context, id int64) (Material, error) { return Material{}, nil },
		GetAllMaterialsFunc: func(ctx context.Context, limit, offset int) ([]Material, error) {
			return []Material{}, nil
		},
		DeleteMaterialFunc: func(ctx context.Context, id int64) error { return nil },
		RecordPurchaseFunc: func(ctx context.Context, pr PurchaseRequest) (Material, error) { return Material{}, nil },
		GetPurchasesFunc: func(ctx context.Context, materialID int64, limit, offset int) ([]Purchase, error) {
			return []Purchase{}, nil
		},
		DeletePurchaseFunc: func(ctx context.Context, id int64) error { return nil },
		ReserveFunc: func(ctx context.Context, demand Demand, options ...core.UpdateOptions) ([]Material, error) {
			return []Material{}, nil
		},
		ReleaseFunc: func(ctx context.Context, demand Demand, options ...core.UpdateOptions) ([]Material, error) {
			return []Material{}, nil
		},
		ReconcileFunc: func(ctx context.Context, old, new Demand, options ...core.UpdateOptions) ([]Material, error) {
			return []Material{}, nil
		},
		PublishStockUpdatesFunc: func(ctx context.Context, updates []Material) error { return nil },
		SubscribeStockFunc:   func(ch chan<- Material) (id StockSubID) { return "" },
		UnsubscribeStockFunc: func(id StockSubID) {},
	}
}

func (s *MockMaterialService) CreateMaterial(ctx context.Context, m Material) (Material, error) {
	return s.CreateMaterialFunc(ctx, m)
}

func (s *MockMaterialService) GetMaterial(ctx context.Context, id int64) (Material, error) {
	return s.GetMaterialFunc(ctx, id)
}

func (s *MockMaterialService) GetAllMaterials(ctx context.Context, limit, offset int) ([]Material, error) {
	return s.GetAllMaterialsFunc(ctx, limit, offset)
}

func (s *MockMaterialService) DeleteMaterial(ctx context.Context, id int64) error {
	return s.DeleteMaterialFunc(ctx, id)
}

func (s *MockMaterialService) RecordPurchase(ctx context.Context, pr PurchaseRequest) (Material, error) {
	return s.RecordPurchaseFunc(ctx, pr)
}

func (s *MockMaterialService) GetPurchases(ctx context.Context, materialID int64, limit, offset int) ([]Purchase, error) {
	return s.GetPurchasesFunc(ctx, materialID, limit, offset)
}

func (s *MockMaterialService) DeletePurchase(ctx context.Context, id int64) error {
	return s.DeletePurchaseFunc(ctx, id)
}

func (s *MockMaterialService) Reserve(ctx context.Context, demand Demand, options ...core.UpdateOptions) ([]Material, error) {
	return s.ReserveFunc(ctx, demand, options...)
}

func (s *MockMaterialService) Release(ctx context.Context, demand Demand, options ...core.UpdateOptions) ([]Material, error) {
	return s.ReleaseFunc(ctx, demand, options...)
}

func (s *MockMaterialService) Reconcile(ctx context.Context, old, new Demand, options ...core.UpdateOptions) ([]Material, error) {
	return s.ReconcileFunc(ctx, old, new, options...)
}

func (s *MockMaterialService) PublishStockUpdates(ctx context.Context, updates []Material) error {
	return s.PublishStockUpdatesFunc(ctx, updates)
}

func (s *MockMaterialService) SubscribeStock(ch chan<- Material) (id StockSubID) {
	return s.SubscribeStockFunc(ch)
}

func (s *MockMaterialService) UnsubscribeStock(id StockSubID) {
	s.UnsubscribeStockFunc(id)
}
