package equipment

import "context"

type MockEquipmentService struct {
	CreatePrinterTypeFunc  func(ctx context.Context, t PrinterType) (PrinterType, error)
	GetPrinterTypeFunc     func(ctx context.Context, id int64) (PrinterType, error)
	GetAllPrinterTypesFunc func(ctx context.Context, limit, offset int) ([]PrinterType, error)

	CreatePrinterFunc       func(ctx context.Context, p Printer) (Printer, error)
	GetPrinterFunc          func(ctx context.Context, id int64) (Printer, error)
	GetAllPrintersFunc      func(ctx context.Context, limit, offset int) ([]Printer, error)
	UpdatePrinterStatusFunc func(ctx context.Context, id int64, status Status) (Printer, error)
	DeletePrinterFunc       func(ctx context.Context, id int64) error

	GetUsageRecordsFunc func(ctx context.Context, printerID int64, limit, offset int) ([]UsageRecord, error)
}

func NewMockEquipmentService() MockEquipmentService {
	return MockEquipmentService{
		CreatePrinterTypeFunc: func(ctx context.Context, t PrinterType) (PrinterType, error) { return t, nil },
		GetPrinterTypeFunc:    func(ctx context.Context, id int64) (PrinterType, error) { return PrinterType{}, nil },
		GetAllPrinterTypesFunc: func(ctx context.Context, limit, offset int) ([]PrinterType, error) {
			return []PrinterType{}, nil
		},
		CreatePrinterFunc: func(ctx context.Context, p Printer) (Printer, error) { return p, nil },
		GetPrinterFunc:    func(ctx context.Context, id int64) (Printer, error) { return Printer{}, nil },
		GetAllPrintersFunc: func(ctx context.Context, limit, offset int) ([]Printer, error) {
			return []Printer{}, nil
		},
		UpdatePrinterStatusFunc: func(ctx context.Context, id int64, status Status) (Printer, error) {
			return Printer{}, nil
		},
		DeletePrinterFunc: func(ctx context.Context, id int64) error { return nil },
		GetUsageRecordsFunc: func(ctx context.Context, printerID int64, limit, offset int) ([]UsageRecord, error) {
			return []UsageRecord{}, nil
		},
	}
}

func (s *MockEquipmentService) CreatePrinterType(ctx context.Context, t PrinterType) (PrinterType, error) {
	return s.CreatePrinterTypeFunc(ctx, t)
}

func (s *MockEquipmentService) GetPrinterType(ctx context.Context, id int64) (PrinterType, error) {
	return s.GetPrinterTypeFunc(ctx, id)
}

func (s *MockEquipmentService) GetAllPrinterTypes(ctx context.Context, limit, offset int) ([]PrinterType, error) {
	return s.GetAllPrinterTypesFunc(ctx, limit, offset)
}

func (s *MockEquipmentService) CreatePrinter(ctx context.Context, p Printer) (Printer, error) {
	return s.CreatePrinterFunc(ctx, p)
}

func (s *MockEquipmentService) GetPrinter(ctx context.Context, id int64) (Printer, error) {
	return s.GetPrinterFunc(ctx, id)
}

func (s *MockEquipmentService) GetAllPrinters(ctx context.Context, limit, offset int) ([]Printer, error) {
	return s.GetAllPrintersFunc(ctx, limit, offset)
}

func (s *MockEquipmentService) UpdatePrinterStatus(ctx context.Context, id int64, status Status) (Printer, error) {
	return s.UpdatePrinterStatusFunc(ctx, id, status)
}

func (s *MockEquipmentService) DeletePrinter(ctx context.Context, id int64) error {
	return s.DeletePrinterFunc(ctx, id)
}

func (s *MockEquipmentService) GetUsageRecords(ctx context.Context, printerID int64, limit, offset int) ([]UsageRecord, error) {
	return s.GetUsageRecordsFunc(ctx, printerID, limit, offset)
}
