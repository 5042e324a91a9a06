package equiprepo

import (
	"context"

	"github.com/sksmith/print-factory/core"
	"github.com/sksmith/print-factory/core/equipment"
	"github.com/sksmith/print-factory/db"
	"github.com/sksmith/print-factory/test"
)

type MockRepo struct {
	GetPrinterTypeFunc             func(ctx context.Context, id int64, options ...core.QueryOptions) (equipment.PrinterType, error)
	GetPrinterTypeByModelFunc      func(ctx context.Context, brand, model string, options ...core.QueryOptions) (equipment.PrinterType, error)
	GetAllPrinterTypesFunc         func(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]equipment.PrinterType, error)
	SavePrinterTypeFunc            func(ctx context.Context, t *equipment.PrinterType, options ...core.UpdateOptions) error
	GetPrinterFunc                 func(ctx context.Context, id int64, options ...core.QueryOptions) (equipment.Printer, error)
	GetPrinterByNameFunc           func(ctx context.Context, normalizedName string, options ...core.QueryOptions) (equipment.Printer, error)
	GetAllPrintersFunc             func(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]equipment.Printer, error)
	SavePrinterFunc                func(ctx context.Context, p *equipment.Printer, options ...core.UpdateOptions) error
	DeletePrinterFunc              func(ctx context.Context, id int64, options ...core.UpdateOptions) error
	GetUsageRecordsFunc            func(ctx context.Context, printerID int64, limit, offset int, options ...core.QueryOptions) ([]equipment.UsageRecord, error)
	SaveUsageRecordFunc            func(ctx context.Context, r *equipment.UsageRecord, options ...core.UpdateOptions) error
	DeleteUsageRecordsForBatchFunc func(ctx context.Context, batchID string, options ...core.UpdateOptions) error

	*test.CallWatcher
}

func NewMockRepo() MockRepo {
	return MockRepo{
		GetPrinterTypeFunc: func(ctx context.Context, id int64, options ...core.QueryOptions) (equipment.PrinterType, error) {
			return equipment.PrinterType{}, core.ErrNotFound
		},
		GetPrinterTypeByModelFunc: func(ctx context.Context, brand, model string, options ...core.QueryOptions) (equipment.PrinterType, error) {
			return equipment.PrinterType{}, core.ErrNotFound
		},
		GetAllPrinterTypesFunc: func(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]equipment.PrinterType, error) {
			return []equipment.PrinterType{}, nil
		},
		SavePrinterTypeFunc: func(ctx context.Context, t *equipment.PrinterType, options ...core.UpdateOptions) error {
			return nil
		},
		GetPrinterFunc: func(ctx context.Context, id int64, options ...core.QueryOptions) (equipment.Printer, error) {
			return equipment.Printer{}, core.ErrNotFound
		},
		GetPrinterByNameFunc: func(ctx context.Context, normalizedName string, options ...core.QueryOptions) (equipment.Printer, error) {
			return equipment.Printer{}, core.ErrNotFound
		},
		GetAllPrintersFunc: func(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]equipment.Printer, error) {
			return []equipment.Printer{}, nil
		},
		SavePrinterFunc: func(ctx context.Context, p *equipment.Printer, options ...core.UpdateOptions) error {
			return nil
		},
		DeletePrinterFunc: func(ctx context.Context, id int64, options ...core.UpdateOptions) error {
			return nil
		},
		GetUsageRecordsFunc: func(ctx context.Context, printerID int64, limit, offset int, options ...core.QueryOptions) ([]equipment.UsageRecord, error) {
			return []equipment.UsageRecord{}, nil
		},
		SaveUsageRecordFunc: func(ctx context.Context, r *equipment.UsageRecord, options ...core.UpdateOptions) error {
			return nil
		},
		DeleteUsageRecordsForBatchFunc: func(ctx context.Context, batchID string, options ...core.UpdateOptions) error {
			return nil
		},
		CallWatcher: test.NewCallWatcher(),
	}
}

func (r *MockRepo) GetPrinterType(ctx context.Context, id int64, options ...core.QueryOptions) (equipment.PrinterType, error) {
	r.AddCall(ctx, id, options)
	return r.GetPrinterTypeFunc(ctx, id, options...)
}

func (r *MockRepo) GetPrinterTypeByModel(ctx context.Context, brand, model string, options ...core.QueryOptions) (equipment.PrinterType, error) {
	r.AddCall(ctx, brand, model, options)
	return r.GetPrinterTypeByModelFunc(ctx, brand, model, options...)
}

func (r *MockRepo) GetAllPrinterTypes(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]equipment.PrinterType, error) {
	r.AddCall(ctx, limit, offset, options)
	return r.GetAllPrinterTypesFunc(ctx, limit, offset, options...)
}

func (r *MockRepo) SavePrinterType(ctx context.Context, t *equipment.PrinterType, options ...core.UpdateOptions) error {
	r.AddCall(ctx, t, options)
	return r.SavePrinterTypeFunc(ctx, t, options...)
}

func (r *MockRepo) GetPrinter(ctx context.Context, id int64, options ...core.QueryOptions) (equipment.Printer, error) {
	r.AddCall(ctx, id, options)
	return r.GetPrinterFunc(ctx, id, options...)
}

func (r *MockRepo) GetPrinterByName(ctx context.Context, normalizedName string, options ...core.QueryOptions) (equipment.Printer, error) {
	r.AddCall(ctx, normalizedName, options)
	return r.GetPrinterByNameFunc(ctx, normalizedName, options...)
}

func (r *MockRepo) GetAllPrinters(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]equipment.Printer, error) {
	r.AddCall(ctx, limit, offset, options)
	return r.GetAllPrintersFunc(ctx, limit, offset, options...)
}

func (r *MockRepo) SavePrinter(ctx context.Context, p *equipment.Printer, options ...core.UpdateOptions) error {
	r.AddCall(ctx, p, options)
	return r.SavePrinterFunc(ctx, p, options...)
}

func (r *MockRepo) DeletePrinter(ctx context.Context, id int64, options ...core.UpdateOptions) error {
	r.AddCall(ctx, id, options)
	return r.DeletePrinterFunc(ctx, id, options...)
}

func (r *MockRepo) GetUsageRecords(ctx context.Context, printerID int64, limit, offset int, options ...core.QueryOptions) ([]equipment.UsageRecord, error) {
	r.AddCall(ctx, printerID, limit, offset, options)
	return r.GetUsageRecordsFunc(ctx, printerID, limit, offset, options...)
}

func (r *MockRepo) SaveUsageRecord(ctx context.Context, rec *equipment.UsageRecord, options ...core.UpdateOptions) error {
	r.AddCall(ctx, rec, options)
	return r.SaveUsageRecordFunc(ctx, rec, options...)
}

func (r *MockRepo) DeleteUsageRecordsForBatch(ctx context.Context, batchID string, options ...core.UpdateOptions) error {
	r.AddCall(ctx, batchID, options)
	return r.DeleteUsageRecordsForBatchFunc(ctx, batchID, options...)
}

func (r *MockRepo) BeginTransaction(ctx context.Context) (core.Transaction, error) {
	r.AddCall(ctx)
	return db.NewMockTransaction(), nil
}
