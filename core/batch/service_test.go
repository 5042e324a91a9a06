package batch_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sksmith/print-factory/core"
	"github.com/sksmith/print-factory/core/batch"
	"github.com/sksmith/print-factory/core/costing"
	"github.com/sksmith/print-factory/core/equipment"
	"github.com/sksmith/print-factory/core/material"
	"github.com/sksmith/print-factory/core/product"
	"github.com/sksmith/print-factory/db"
	"github.com/sksmith/print-factory/db/batchrepo"
	"github.com/sksmith/print-factory/db/equiprepo"
	"github.com/sksmith/print-factory/db/prodrepo"
	"github.com/sksmith/print-factory/queue"
	"github.com/sksmith/print-factory/test"
)

func TestMain(m *testing.M) {
	test.ConfigLogging()
	os.Exit(m.Run())
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testTime = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

// fixture holds every collaborator wired around one batch service.
type fixture struct {
	repo      *batchrepo.MockRepo
	materials *material.MockMaterialService
	products  *prodrepo.MockRepo
	printers  *equiprepo.MockRepo
	queue     *queue.MockQueue
	tx        *db.MockTransaction

	service batch.Service
}

func newFixture() *fixture {
	repo := batchrepo.NewMockRepo()
	materials := material.NewMockMaterialService()
	products := prodrepo.NewMockRepo()
	printers := equiprepo.NewMockRepo()
	q := queue.NewMockQueue()

	tx := db.NewMockTransaction()
	repo.BeginTransactionFunc = func(ctx context.Context) (core.Transaction, error) {
		return tx, nil
	}

	// A keychain: 45.5g of material 1, 23.2g of material 2, 2.5h a print.
	products.GetProductByIDFunc = func(ctx context.Context, id int64, options ...core.QueryOptions) (product.Product, error) {
		if id != 1 {
			return product.Product{}, core.ErrNotFound
		}
		return product.Product{
			ID:             1,
			Sku:            "keychain",
			PrintTimeHours: 2.5,
			Materials: []product.MaterialUsage{
				{MaterialID: 1, Grams: 45.5},
				{MaterialID: 2, Grams: 23.2},
			},
		}, nil
	}

	materials.GetMaterialFunc = func(ctx context.Context, id int64) (material.Material, error) {
		costs := map[int64]float64{1: 25.50, 2: 32.00}
		cost, ok := costs[id]
		if !ok {
			return material.Material{}, core.ErrNotFound
		}
		return material.Material{ID: id, OnHandKg: 10, AvgCostKg: cost}, nil
	}

	printers.GetPrinterFunc = func(ctx context.Context, id int64, options ...core.QueryOptions) (equipment.Printer, error) {
		if id != 7 {
			return equipment.Printer{}, core.ErrNotFound
		}
		return equipment.Printer{ID: 7, TypeID: 3, Name: "prusa mk4", Price: 750, UsageHours: 100, Status: equipment.Idle}, nil
	}
	printers.GetPrinterTypeFunc = func(ctx context.Context, id int64, options ...core.QueryOptions) (equipment.PrinterType, error) {
		if id != 3 {
			return equipment.PrinterType{}, core.ErrNotFound
		}
		return equipment.PrinterType{ID: 3, Brand: "prusa", Model: "mk4", LifeHours: 26280}, nil
	}

	return &fixture{
		repo:      &repo,
		materials: &materials,
		products:  &products,
		printers:  &printers,
		queue:     &q,
		tx:        tx,
		service:   batch.NewService(&repo, &materials, &products, &printers, &q, fixedClock{testTime}),
	}
}

func printerID(id int64) *int64 { return &id }

func createRequest() batch.CreateBatchRequest {
	return batch.CreateBatchRequest{
		Name:         "march keychains",
		PackagingFee: 5.00,
		LineItems:    []batch.LineItem{{ProductID: 1, Quantity: 10}},
		Assignments:  []batch.AssignmentRequest{{PrinterID: printerID(7), UnitsQty: 1}},
	}
}

func TestCreateBatch(t *testing.T) {
	f := newFixture()

	var reserved material.Demand
	f.materials.ReserveFunc = func(ctx context.Context, demand material.Demand, options ...core.UpdateOptions) ([]material.Material, error) {
		reserved = demand
		return []material.Material{{ID: 1, OnHandKg: 0.545}, {ID: 2, OnHandKg: 0.268}}, nil
	}

	publishedStock := 0
	committedFirst := false
	f.materials.PublishStockUpdatesFunc = func(ctx context.Context, updates []material.Material) error {
		publishedStock = len(updates)
		committedFirst = f.tx.GetCallCount("Commit") == 1
		return nil
	}

	b, err := f.service.CreateBatch(context.Background(), createRequest())
	if err != nil {
		t.Fatalf("creating batch: %v", err)
	}

	if b.Status != batch.Pending {
		t.Errorf("status got=%s want=%s", b.Status, batch.Pending)
	}
	if b.ID == "" {
		t.Error("expected a generated batch id")
	}

	// 10 units consume 455g of material 1 and 232g of material 2.
	if reserved[1] != 455 || reserved[2] != 232 {
		t.Errorf("reserved demand got=%v want 455g and 232g", reserved)
	}

	if b.TotalCost == nil {
		t.Fatal("expected a cached total cost")
	}
	if *b.TotalCost != 24.74 {
		t.Errorf("total cost got=%f want=%f", *b.TotalCost, 24.74)
	}

	if len(b.Assignments) != 1 || b.Assignments[0].Snapshot == nil {
		t.Fatal("expected one assignment carrying an economics snapshot")
	}
	snap := b.Assignments[0].Snapshot
	if snap.Price != 750 || snap.LifeHours != 26280 {
		t.Errorf("snapshot got=%+v want price=750 lifeHours=26280", snap)
	}

	f.repo.VerifyCount("SaveLineItems", 1, t)
	f.repo.VerifyCount("SaveAssignments", 1, t)
	f.tx.VerifyCount("Commit", 1, t)
	f.tx.VerifyCount("Rollback", 0, t)
	f.queue.VerifyCount("PublishBatch", 1, t)

	// Stock events for the reserved materials go out after the commit,
	// never from inside the open transaction.
	if publishedStock != 2 {
		t.Errorf("stock updates published got=%d want=%d", publishedStock, 2)
	}
	if !committedFirst {
		t.Error("stock updates must be published after the transaction commits")
	}
}

func TestCreateBatchShortageRollsBack(t *testing.T) {
	f := newFixture()

	f.materials.ReserveFunc = func(ctx context.Context, demand material.Demand, options ...core.UpdateOptions) ([]material.Material, error) {
		return nil, &material.StockShortageError{Shortages: []material.Shortage{
			{MaterialID: 1, RequiredKg: 0.455, AvailableKg: 0.1},
		}}
	}

	stockPublished := false
	f.materials.PublishStockUpdatesFunc = func(ctx context.Context, updates []material.Material) error {
		stockPublished = true
		return nil
	}

	_, err := f.service.CreateBatch(context.Background(), createRequest())

	var shortErr *material.StockShortageError
	if !errors.As(err, &shortErr) {
		t.Fatalf("want StockShortageError, got=%v", err)
	}

	f.repo.VerifyCount("SaveBatch", 0, t)
	f.repo.VerifyCount("SaveLineItems", 0, t)
	f.tx.VerifyCount("Commit", 0, t)
	f.tx.VerifyCount("Rollback", 1, t)
	f.queue.VerifyCount("PublishBatch", 0, t)
	if stockPublished {
		t.Error("no stock updates may be published for a rolled back reservation")
	}
}

func TestCreateBatchUnknownProduct(t *testing.T) {
	f := newFixture()

	req := createRequest()
	req.LineItems = []batch.LineItem{{ProductID: 99, Quantity: 1}}

	_, err := f.service.CreateBatch(context.Background(), req)

	var unknownErr *batch.UnknownEntityError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("want UnknownEntityError, got=%v", err)
	}
	if unknownErr.Kind != "product" {
		t.Errorf("kind got=%s want=product", unknownErr.Kind)
	}

	f.repo.VerifyCount("SaveBatch", 0, t)
	f.tx.VerifyCount("Commit", 0, t)
}

func TestCreateBatchValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(req *batch.CreateBatchRequest)
		wantErr bool
	}{
		{name: "valid request", mutate: func(req *batch.CreateBatchRequest) {}},
		{name: "missing name", mutate: func(req *batch.CreateBatchRequest) { req.Name = "" }, wantErr: true},
		{name: "no line items", mutate: func(req *batch.CreateBatchRequest) { req.LineItems = nil }, wantErr: true},
		{
			name:    "zero quantity line item",
			mutate:  func(req *batch.CreateBatchRequest) { req.LineItems[0].Quantity = 0 },
			wantErr: true,
		},
		{
			name:    "negative packaging fee",
			mutate:  func(req *batch.CreateBatchRequest) { req.PackagingFee = -1 },
			wantErr: true,
		},
		{
			name: "assignment without printer or type",
			mutate: func(req *batch.CreateBatchRequest) {
				req.Assignments = []batch.AssignmentRequest{{UnitsQty: 1}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := createRequest()
			tt.mutate(&req)

			_, err := f.service.CreateBatch(context.Background(), req)
			if tt.wantErr && err == nil {
				t.Error("expected error, got none")
			} else if !tt.wantErr && err != nil {
				t.Errorf("did not want error, got=%v", err)
			}
		})
	}
}

func storedBatch(status batch.Status) batch.Batch {
	return batch.Batch{
		ID:           "batch-1",
		Name:         "march keychains",
		Status:       status,
		PackagingFee: 5.00,
		LineItems:    []batch.LineItem{{ProductID: 1, Quantity: 10}},
		Assignments: []batch.Assignment{
			{PrinterID: printerID(7), UnitsQty: 1, Snapshot: &costing.Economics{Price: 750, LifeHours: 26280}},
		},
	}
}

// givenBatch wires the repo mocks so the fixture holds one stored batch
// whose line items track SaveLineItems calls.
func (f *fixture) givenBatch(b batch.Batch) *batch.Batch {
	stored := b
	f.repo.GetBatchFunc = func(ctx context.Context, id string, options ...core.QueryOptions) (batch.Batch, error) {
		if id != stored.ID {
			return batch.Batch{}, core.ErrNotFound
		}
		return stored, nil
	}
	f.repo.GetLineItemsFunc = func(ctx context.Context, batchID string, options ...core.QueryOptions) ([]batch.LineItem, error) {
		return stored.LineItems, nil
	}
	f.repo.SaveLineItemsFunc = func(ctx context.Context, batchID string, lines []batch.LineItem, options ...core.UpdateOptions) error {
		stored.LineItems = lines
		return nil
	}
	f.repo.SaveBatchFunc = func(ctx context.Context, b *batch.Batch, options ...core.UpdateOptions) error {
		stored = *b
		return nil
	}
	return &stored
}

func TestEditBatchIdempotent(t *testing.T) {
	f := newFixture()
	f.givenBatch(storedBatch(batch.Pending))

	lines := []batch.LineItem{{ProductID: 1, Quantity: 4}}
	req := batch.EditBatchRequest{LineItems: &lines}

	first, err := f.service.EditBatch(context.Background(), "batch-1", req)
	if err != nil {
		t.Fatalf("first edit: %v", err)
	}
	second, err := f.service.EditBatch(context.Background(), "batch-1", req)
	if err != nil {
		t.Fatalf("second edit: %v", err)
	}

	if first.TotalCost == nil || second.TotalCost == nil {
		t.Fatal("expected cached total cost on both edits")
	}
	if *first.TotalCost != *second.TotalCost {
		t.Errorf("editing to the same quantities twice changed the cost: %f then %f", *first.TotalCost, *second.TotalCost)
	}
}

func TestEditBatchReconcilesDemand(t *testing.T) {
	f := newFixture()
	f.givenBatch(storedBatch(batch.Pending))

	var oldDemand, newDemand material.Demand
	f.materials.ReconcileFunc = func(ctx context.Context, old, new material.Demand, options ...core.UpdateOptions) ([]material.Material, error) {
		oldDemand, newDemand = old, new
		return []material.Material{{ID: 1, OnHandKg: 0.09}}, nil
	}

	publishedStock := 0
	f.materials.PublishStockUpdatesFunc = func(ctx context.Context, updates []material.Material) error {
		publishedStock = len(updates)
		return nil
	}

	lines := []batch.LineItem{{ProductID: 1, Quantity: 20}}
	if _, err := f.service.EditBatch(context.Background(), "batch-1", batch.EditBatchRequest{LineItems: &lines}); err != nil {
		t.Fatalf("editing batch: %v", err)
	}

	if oldDemand[1] != 455 || newDemand[1] != 910 {
		t.Errorf("reconcile got old=%v new=%v, want 455g released and 910g reserved for material 1", oldDemand, newDemand)
	}
	f.tx.VerifyCount("Commit", 1, t)
	if publishedStock != 1 {
		t.Errorf("stock updates published got=%d want=%d", publishedStock, 1)
	}
}

func TestEditBatchShortageLeavesBatchAlone(t *testing.T) {
	f := newFixture()
	f.givenBatch(storedBatch(batch.Pending))

	f.materials.ReconcileFunc = func(ctx context.Context, old, new material.Demand, options ...core.UpdateOptions) ([]material.Material, error) {
		return nil, &material.StockShortageError{Shortages: []material.Shortage{{MaterialID: 1}}}
	}

	lines := []batch.LineItem{{ProductID: 1, Quantity: 1000}}
	_, err := f.service.EditBatch(context.Background(), "batch-1", batch.EditBatchRequest{LineItems: &lines})

	var shortErr *material.StockShortageError
	if !errors.As(err, &shortErr) {
		t.Fatalf("want StockShortageError, got=%v", err)
	}
	f.tx.VerifyCount("Commit", 0, t)
	f.tx.VerifyCount("Rollback", 1, t)
}

func TestEditBatchInvalidState(t *testing.T) {
	for _, status := range []batch.Status{batch.Completed, batch.Failed} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture()
			f.givenBatch(storedBatch(status))

			name := "renamed"
			_, err := f.service.EditBatch(context.Background(), "batch-1", batch.EditBatchRequest{Name: &name})

			var stateErr *batch.InvalidStateError
			if !errors.As(err, &stateErr) {
				t.Fatalf("want InvalidStateError, got=%v", err)
			}
			f.tx.VerifyCount("Commit", 0, t)
		})
	}
}

func TestStartBatch(t *testing.T) {
	f := newFixture()
	stored := f.givenBatch(storedBatch(batch.Pending))

	var savedPrinter *equipment.Printer
	f.printers.SavePrinterFunc = func(ctx context.Context, p *equipment.Printer, options ...core.UpdateOptions) error {
		savedPrinter = p
		return nil
	}
	var savedRecord *equipment.UsageRecord
	f.printers.SaveUsageRecordFunc = func(ctx context.Context, r *equipment.UsageRecord, options ...core.UpdateOptions) error {
		savedRecord = r
		return nil
	}

	b, err := f.service.StartBatch(context.Background(), "batch-1")
	if err != nil {
		t.Fatalf("starting batch: %v", err)
	}

	if b.Status != batch.Printing {
		t.Errorf("status got=%s want=%s", b.Status, batch.Printing)
	}
	if b.StartedAt == nil || !b.StartedAt.Equal(testTime) {
		t.Errorf("startedAt got=%v want=%v", b.StartedAt, testTime)
	}
	// 10 keychains at 2.5h each.
	wantEst := testTime.Add(25 * time.Hour)
	if b.EstCompletionAt == nil || !b.EstCompletionAt.Equal(wantEst) {
		t.Errorf("estCompletionAt got=%v want=%v", b.EstCompletionAt, wantEst)
	}

	if savedPrinter == nil {
		t.Fatal("expected the assigned printer to be saved")
	}
	if savedPrinter.UsageHours != 125 {
		t.Errorf("printer usage hours got=%f want=%f", savedPrinter.UsageHours, 125.0)
	}
	if savedPrinter.Status != equipment.Printing {
		t.Errorf("printer status got=%s want=%s", savedPrinter.Status, equipment.Printing)
	}

	if savedRecord == nil {
		t.Fatal("expected a usage record")
	}
	if savedRecord.Hours != 25 || savedRecord.BatchID != "batch-1" || savedRecord.PrinterID != 7 {
		t.Errorf("usage record got=%+v want 25h on printer 7 for batch-1", savedRecord)
	}

	if stored.Status != batch.Printing {
		t.Errorf("persisted status got=%s want=%s", stored.Status, batch.Printing)
	}
	f.tx.VerifyCount("Commit", 1, t)
}

func TestStartBatchPrinterConflict(t *testing.T) {
	f := newFixture()
	f.givenBatch(storedBatch(batch.Pending))

	f.repo.GetPrintingHolderFunc = func(ctx context.Context, printerID int64, excludeBatchID string, options ...core.QueryOptions) (string, error) {
		return "batch-2", nil
	}

	_, err := f.service.StartBatch(context.Background(), "batch-1")

	var conflictErr *batch.PrinterConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("want PrinterConflictError, got=%v", err)
	}
	if conflictErr.PrinterID != 7 || conflictErr.HolderBatchID != "batch-2" {
		t.Errorf("conflict got=%+v want printer 7 held by batch-2", conflictErr)
	}

	f.printers.VerifyCount("SavePrinter", 0, t)
	f.tx.VerifyCount("Commit", 0, t)
	f.tx.VerifyCount("Rollback", 1, t)
}

func TestStartBatchAfterHolderCompletes(t *testing.T) {
	f := newFixture()
	f.givenBatch(storedBatch(batch.Pending))

	// The holder released the printer when it completed.
	holder := "batch-2"
	f.repo.GetPrintingHolderFunc = func(ctx context.Context, printerID int64, excludeBatchID string, options ...core.QueryOptions) (string, error) {
		if holder != "" {
			return holder, nil
		}
		return "", core.ErrNotFound
	}

	if _, err := f.service.StartBatch(context.Background(), "batch-1"); err == nil {
		t.Fatal("expected conflict while holder is printing")
	}

	holder = ""
	if _, err := f.service.StartBatch(context.Background(), "batch-1"); err != nil {
		t.Fatalf("starting after holder completed: %v", err)
	}
}

func TestStartBatchInvalidState(t *testing.T) {
	for _, status := range []batch.Status{batch.Printing, batch.Completed, batch.Failed} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture()
			f.givenBatch(storedBatch(status))

			_, err := f.service.StartBatch(context.Background(), "batch-1")

			var stateErr *batch.InvalidStateError
			if !errors.As(err, &stateErr) {
				t.Fatalf("want InvalidStateError, got=%v", err)
			}
		})
	}
}

func TestSetBatchStatus(t *testing.T) {
	tests := []struct {
		name string

		from batch.Status
		to   batch.Status

		wantStateErr bool
		wantErr      bool
	}{
		{name: "printing to completed", from: batch.Printing, to: batch.Completed},
		{name: "printing to failed", from: batch.Printing, to: batch.Failed},
		{name: "pending cannot complete", from: batch.Pending, to: batch.Completed, wantStateErr: true},
		{name: "completed is final", from: batch.Completed, to: batch.Failed, wantStateErr: true},
		{name: "printing is not a target", from: batch.Printing, to: batch.Printing, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			stored := f.givenBatch(storedBatch(tt.from))

			var savedPrinter *equipment.Printer
			f.printers.SavePrinterFunc = func(ctx context.Context, p *equipment.Printer, options ...core.UpdateOptions) error {
				savedPrinter = p
				return nil
			}

			_, err := f.service.SetBatchStatus(context.Background(), "batch-1", tt.to)

			if tt.wantStateErr {
				var stateErr *batch.InvalidStateError
				if !errors.As(err, &stateErr) {
					t.Fatalf("want InvalidStateError, got=%v", err)
				}
				return
			}
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("setting status: %v", err)
			}

			if stored.Status != tt.to {
				t.Errorf("status got=%s want=%s", stored.Status, tt.to)
			}
			if savedPrinter == nil {
				t.Fatal("expected the assigned printer to be idled")
			}
			if savedPrinter.Status != equipment.Idle {
				t.Errorf("printer status got=%s want=%s", savedPrinter.Status, equipment.Idle)
			}
			// Hours already run are wear taken; closing the batch must not
			// rewind them.
			if savedPrinter.UsageHours != 100 {
				t.Errorf("printer usage hours got=%f want=%f", savedPrinter.UsageHours, 100.0)
			}
			f.tx.VerifyCount("Commit", 1, t)
		})
	}
}

func TestDeleteBatch(t *testing.T) {
	for _, status := range []batch.Status{batch.Pending, batch.Printing, batch.Completed, batch.Failed} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture()
			f.givenBatch(storedBatch(status))

			var released material.Demand
			f.materials.ReleaseFunc = func(ctx context.Context, demand material.Demand, options ...core.UpdateOptions) ([]material.Material, error) {
				released = demand
				return []material.Material{{ID: 1, OnHandKg: 1.0}, {ID: 2, OnHandKg: 0.5}}, nil
			}

			if err := f.service.DeleteBatch(context.Background(), "batch-1"); err != nil {
				t.Fatalf("deleting batch: %v", err)
			}

			if released[1] != 455 || released[2] != 232 {
				t.Errorf("released demand got=%v want 455g and 232g", released)
			}

			f.printers.VerifyCount("DeleteUsageRecordsForBatch", 1, t)
			f.repo.VerifyCount("DeleteBatch", 1, t)
			f.tx.VerifyCount("Commit", 1, t)

			wantIdled := 0
			if status == batch.Printing {
				wantIdled = 1
			}
			f.printers.VerifyCount("SavePrinter", wantIdled, t)
		})
	}
}

