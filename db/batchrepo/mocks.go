package batchrepo

import (
	"context"

	"github.com/sksmith/print-factory/core"
	"github.com/sksmith/print-factory/core/batch"
	"github.com/sksmith/print-factory/db"
	"github.com/sksmith/print-factory/test"
)

type MockRepo struct {
	BeginTransactionFunc  func(ctx context.Context) (core.Transaction, error)
	GetBatchFunc          func(ctx context.Context, id string, options ...core.QueryOptions) (batch.Batch, error)
	GetAllBatchesFunc     func(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]batch.Batch, error)
	GetLineItemsFunc      func(ctx context.Context, batchID string, options ...core.QueryOptions) ([]batch.LineItem, error)
	GetAssignmentsFunc    func(ctx context.Context, batchID string, options ...core.QueryOptions) ([]batch.Assignment, error)
	GetPrintingHolderFunc func(ctx context.Context, printerID int64, excludeBatchID string, options ...core.QueryOptions) (string, error)
	SaveBatchFunc         func(ctx context.Context, b *batch.Batch, options ...core.UpdateOptions) error
	SaveLineItemsFunc     func(ctx context.Context, batchID string, lines []batch.LineItem, options ...core.UpdateOptions) error
	SaveAssignmentsFunc   func(ctx context.Context, batchID string, assignments []batch.Assignment, options ...core.UpdateOptions) error
	DeleteBatchFunc       func(ctx context.Context, id string, options ...core.UpdateOptions) error

	*test.CallWatcher
}

func NewMockRepo() MockRepo {
	return MockRepo{
		BeginTransactionFunc: func(ctx context.Context) (core.Transaction, error) {
			return db.NewMockTransaction(), nil
		},
		GetBatchFunc: func(ctx context.Context, id string, options ...core.QueryOptions) (batch.Batch, error) {
			return batch.Batch{}, core.ErrNotFound
		},
		GetAllBatchesFunc: func(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]batch.Batch, error) {
			return []batch.Batch{}, nil
		},
		GetLineItemsFunc: func(ctx context.Context, batchID string, options ...core.QueryOptions) ([]batch.LineItem, error) {
			return []batch.LineItem{}, nil
		},
		GetAssignmentsFunc: func(ctx context.Context, batchID string, options ...core.QueryOptions) ([]batch.Assignment, error) {
			return []batch.Assignment{}, nil
		},
		GetPrintingHolderFunc: func(ctx context.Context, printerID int64, excludeBatchID string, options ...core.QueryOptions) (string, error) {
			return "", core.ErrNotFound
		},
		SaveBatchFunc: func(ctx context.Context, b *batch.Batch, options ...core.UpdateOptions) error {
			return nil
		},
		SaveLineItemsFunc: func(ctx context.Context, batchID string, lines []batch.LineItem, options ...core.UpdateOptions) error {
			return nil
		},
		SaveAssignmentsFunc: func(ctx context.Context, batchID string, assignments []batch.Assignment, options ...core.UpdateOptions) error {
			return nil
		},
		DeleteBatchFunc: func(ctx context.Context, id string, options ...core.UpdateOptions) error {
			return nil
		},
		CallWatcher: test.NewCallWatcher(),
	}
}

func (r *MockRepo) BeginTransaction(ctx context.Context) (core.Transaction, error) {
	r.AddCall(ctx)
	return r.BeginTransactionFunc(ctx)
}

func (r *MockRepo) GetBatch(ctx context.Context, id string, options ...core.QueryOptions) (batch.Batch, error) {
	r.AddCall(ctx, id, options)
	return r.GetBatchFunc(ctx, id, options...)
}

func (r *MockRepo) GetAllBatches(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]batch.Batch, error) {
	r.AddCall(ctx, limit, offset, options)
	return r.GetAllBatchesFunc(ctx, limit, offset, options...)
}

func (r *MockRepo) GetLineItems(ctx context.Context, batchID string, options ...core.QueryOptions) ([]batch.LineItem, error) {
	r.AddCall(ctx, batchID, options)
	return r.GetLineItemsFunc(ctx, batchID, options...)
}

func (r *MockRepo) GetAssignments(ctx context.Context, batchID string, options ...core.QueryOptions) ([]batch.Assignment, error) {
	r.AddCall(ctx, batchID, options)
	return r.GetAssignmentsFunc(ctx, batchID, options...)
}

func (r *MockRepo) GetPrintingHolder(ctx context.Context, printerID int64, excludeBatchID string, options ...core.QueryOptions) (string, error) {
	r.AddCall(ctx, printerID, excludeBatchID, options)
	return r.GetPrintingHolderFunc(ctx, printerID, excludeBatchID, options...)
}

func (r *MockRepo) SaveBatch(ctx context.Context, b *batch.Batch, options ...core.UpdateOptions) error {
	r.AddCall(ctx, b, options)
	return r.SaveBatchFunc(ctx, b, options...)
}

func (r *MockRepo) SaveLineItems(ctx context.Context, batchID string, lines []batch.LineItem, options ...core.UpdateOptions) error {
	r.AddCall(ctx, batchID, lines, options)
	return r.SaveLineItemsFunc(ctx, batchID, lines, options...)
}

func (r *MockRepo) SaveAssignments(ctx context.Context, batchID string, assignments []batch.Assignment, options ...core.UpdateOptions) error {
	r.AddCall(ctx, batchID, assignments, options)
	return r.SaveAssignmentsFunc(ctx, batchID, assignments, options...)
}

func (r *MockRepo) DeleteBatch(ctx context.Context, id string, options ...core.UpdateOptions) error {
	r.AddCall(ctx, id, options)
	return r.DeleteBatchFunc(ctx, id, options...)
}
