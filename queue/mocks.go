package queue

import (
	"context"

	"github.com/sksmith/print-factory/core/batch"
	"github.com/sksmith/print-factory/core/material"
	"github.com/sksmith/print-factory/test"
)

type MockQueue struct {
	PublishStockFunc func(ctx context.Context, m material.Material) error
	PublishBatchFunc func(ctx context.Context, b batch.Batch) error

	*test.CallWatcher
}

func NewMockQueue() MockQueue {
	return MockQueue{
		PublishStockFunc: func(ctx context.Context, m material.Material) error { return nil },
		PublishBatchFunc: func(ctx context.Context, b batch.Batch) error { return nil },
		CallWatcher:      test.NewCallWatcher(),
	}
}

func (q *MockQueue) PublishStock(ctx context.Context, m material.Material) error {
	q.AddCall(ctx, m)
	return q.PublishStockFunc(ctx, m)
}

func (q *MockQueue) PublishBatch(ctx context.Context, b batch.Batch) error {
	q.AddCall(ctx, b)
	return q.PublishBatchFunc(ctx, b)
}
