package material_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/sksmith/print-factory/core"
	"github.com/sksmith/print-factory/core/material"
	"github.com/sksmith/print-factory/db"
	"github.com/sksmith/print-factory/db/matrepo"
	"github.com/sksmith/print-factory/queue"
)

// stockFixture wires a mock repo over an in-memory set of materials so
// reservations read and write real state.
func stockFixture(onHandKg map[int64]float64) (*matrepo.MockRepo, map[int64]material.Material) {
	stock := make(map[int64]material.Material)
	for id, kg := range onHandKg {
		stock[id] = material.Material{ID: id, OnHandKg: kg}
	}

	mockRepo := matrepo.NewMockRepo()
	mockRepo.GetMaterialFunc = func(ctx context.Context, id int64, options ...core.QueryOptions) (material.Material, error) {
		m, ok := stock[id]
		if !ok {
			return material.Material{}, core.ErrNotFound
		}
		return m, nil
	}
	mockRepo.SaveMaterialFunc = func(ctx context.Context, m *material.Material, options ...core.UpdateOptions) error {
		stock[m.ID] = *m
		return nil
	}

	return mockRepo, stock
}

func TestReserve(t *testing.T) {
	tests := []struct {
		name string

		onHandKg map[int64]float64
		demand   material.Demand

		wantOnHandKg    map[int64]float64
		wantShortages   int
		wantRepoCallCnt map[string]int
	}{
		{
			name:     "sufficient stock deducts every material",
			onHandKg: map[int64]float64{1: 1.0, 2: 0.5},
			demand:   material.Demand{1: 400, 2: 232},

			wantOnHandKg:    map[int64]float64{1: 0.6, 2: 0.268},
			wantRepoCallCnt: map[string]int{"SaveMaterial": 2},
		},
		{
			name:     "one short material fails the whole demand",
			onHandKg: map[int64]float64{1: 1.0, 2: 0.1},
			demand:   material.Demand{1: 400, 2: 232},

			wantOnHandKg:    map[int64]float64{1: 1.0, 2: 0.1},
			wantShortages:   1,
			wantRepoCallCnt: map[string]int{"SaveMaterial": 0},
		},
		{
			name:     "every shortfall is reported, not just the first",
			onHandKg: map[int64]float64{1: 0.1, 2: 0.1},
			demand:   material.Demand{1: 400, 2: 232},

			wantOnHandKg:    map[int64]float64{1: 0.1, 2: 0.1},
			wantShortages:   2,
			wantRepoCallCnt: map[string]int{"SaveMaterial": 0},
		},
	}

	for _, tt := range tests {
		mockRepo, stock := stockFixture(tt.onHandKg)
		mockTx := db.NewMockTransaction()
		mockRepo.BeginTransactionFunc = func(ctx context.Context) (core.Transaction, error) {
			return mockTx, nil
		}

		mockQueue := queue.NewMockQueue()
		service := material.NewService(mockRepo, &mockQueue)

		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Reserve(context.Background(), tt.demand)

			if tt.wantShortages > 0 {
				var shortErr *material.StockShortageError
				if !errors.As(err, &shortErr) {
					t.Fatalf("want StockShortageError, got=%v", err)
				}
				if len(shortErr.Shortages) != tt.wantShortages {
					t.Errorf("shortages got=%d want=%d", len(shortErr.Shortages), tt.wantShortages)
				}
				mockTx.VerifyCount("Commit", 0, t)
				mockTx.VerifyCount("Rollback", 1, t)
				mockQueue.VerifyCount("PublishStock", 0, t)
			} else {
				if err != nil {
					t.Fatalf("reserving: %v", err)
				}
				mockTx.VerifyCount("Commit", 1, t)
				mockQueue.VerifyCount("PublishStock", len(tt.demand), t)
			}

			for id, kg := range tt.wantOnHandKg {
				if stock[id].OnHandKg != kg {
					t.Errorf("material %d on hand got=%f want=%f", id, stock[id].OnHandKg, kg)
				}
			}
			for f, c := range tt.wantRepoCallCnt {
				mockRepo.VerifyCount(f, c, t)
			}
		})
	}
}

func TestReserveWithCallerTransaction(t *testing.T) {
	mockRepo, _ := stockFixture(map[int64]float64{1: 1.0})
	mockQueue := queue.NewMockQueue()
	service := material.NewService(mockRepo, &mockQueue)

	mockTx := db.NewMockTransaction()
	updates, err := service.Reserve(context.Background(), material.Demand{1: 400}, core.UpdateOptions{Tx: mockTx})
	if err != nil {
		t.Fatalf("reserving: %v", err)
	}

	// The caller owns the transaction. Reserve must neither open its own
	// nor commit the caller's, and nothing goes out to consumers until the
	// caller has committed: a deduction the caller rolls back must never
	// have been published.
	mockRepo.VerifyCount("BeginTransaction", 0, t)
	mockTx.VerifyCount("Commit", 0, t)
	mockQueue.VerifyCount("PublishStock", 0, t)

	if len(updates) != 1 || updates[0].OnHandKg != 0.6 {
		t.Errorf("updates got=%+v, want one material with 0.6kg on hand", updates)
	}
}

func TestReserveDoesNotPublishWhenCommitFails(t *testing.T) {
	mockRepo, _ := stockFixture(map[int64]float64{1: 1.0})
	mockTx := db.NewMockTransaction()
	mockTx.CommitFunc = func(ctx context.Context) error { return errors.New("connection lost") }
	mockRepo.BeginTransactionFunc = func(ctx context.Context) (core.Transaction, error) {
		return mockTx, nil
	}

	mockQueue := queue.NewMockQueue()
	service := material.NewService(mockRepo, &mockQueue)

	if _, err := service.Reserve(context.Background(), material.Demand{1: 400}); err == nil {
		t.Fatal("expected commit error, got none")
	}

	mockQueue.VerifyCount("PublishStock", 0, t)
}

func TestReleaseRestoresStock(t *testing.T) {
	mockRepo, stock := stockFixture(map[int64]float64{1: 1.0})
	mockQueue := queue.NewMockQueue()
	service := material.NewService(mockRepo, &mockQueue)

	demand := material.Demand{1: 400}

	if _, err := service.Reserve(context.Background(), demand); err != nil {
		t.Fatalf("reserving: %v", err)
	}
	if stock[1].OnHandKg != 0.6 {
		t.Fatalf("after reserve got=%f want=%f", stock[1].OnHandKg, 0.6)
	}

	if _, err := service.Release(context.Background(), demand); err != nil {
		t.Fatalf("releasing: %v", err)
	}
	if stock[1].OnHandKg != 1.0 {
		t.Errorf("after release got=%f want=%f", stock[1].OnHandKg, 1.0)
	}
}

func TestReconcile(t *testing.T) {
	t.Run("refused without a caller transaction", func(t *testing.T) {
		mockRepo, _ := stockFixture(map[int64]float64{1: 1.0})
		mockQueue := queue.NewMockQueue()
		service := material.NewService(mockRepo, &mockQueue)

		_, err := service.Reconcile(context.Background(), material.Demand{1: 400}, material.Demand{1: 100})
		if err == nil {
			t.Fatal("expected error, got none")
		}
	})

	t.Run("swaps old demand for new", func(t *testing.T) {
		// 0.6kg on hand with 0.4kg already reserved; shrinking the
		// reservation to 0.1kg gives 0.3kg back.
		mockRepo, stock := stockFixture(map[int64]float64{1: 0.6})
		mockQueue := queue.NewMockQueue()
		service := material.NewService(mockRepo, &mockQueue)

		mockTx := db.NewMockTransaction()
		updates, err := service.Reconcile(context.Background(), material.Demand{1: 400}, material.Demand{1: 100}, core.UpdateOptions{Tx: mockTx})
		if err != nil {
			t.Fatalf("reconciling: %v", err)
		}
		if stock[1].OnHandKg != 0.9 {
			t.Errorf("on hand got=%f want=%f", stock[1].OnHandKg, 0.9)
		}

		// Publication waits for the caller's commit; the one touched
		// material reports its final quantity exactly once.
		mockQueue.VerifyCount("PublishStock", 0, t)
		if len(updates) != 1 || updates[0].OnHandKg != 0.9 {
			t.Errorf("updates got=%+v, want one material with 0.9kg on hand", updates)
		}
	})

	t.Run("shortfall in the new demand surfaces", func(t *testing.T) {
		mockRepo, _ := stockFixture(map[int64]float64{1: 0.1})
		mockQueue := queue.NewMockQueue()
		service := material.NewService(mockRepo, &mockQueue)

		mockTx := db.NewMockTransaction()
		_, err := service.Reconcile(context.Background(), material.Demand{1: 100}, material.Demand{1: 900}, core.UpdateOptions{Tx: mockTx})

		var shortErr *material.StockShortageError
		if !errors.As(err, &shortErr) {
			t.Fatalf("want StockShortageError, got=%v", err)
		}
	})
}
