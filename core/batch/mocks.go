package batch

import "context"

type MockBatchService struct {
	CreateBatchFunc    func(ctx context.Context, req CreateBatchRequest) (Batch, error)
	EditBatchFunc      func(ctx context.Context, id string, req EditBatchRequest) (Batch, error)
	StartBatchFunc     func(ctx context.Context, id string) (Batch, error)
	SetBatchStatusFunc func(ctx context.Context, id string, status Status) (Batch, error)
	DeleteBatchFunc    func(ctx context.Context, id string) error
	GetBatchFunc       func(ctx context.Context, id string) (Batch, error)
	GetAllBatchesFunc  func(ctx context.Context, limit, offset int) ([]Batch, error)
}

func NewMockBatchService() MockBatchService {
	return MockBatchService{
		CreateBatchFunc:    func(ctx context.Context, req CreateBatchRequest) (Batch, error) { return Batch{}, nil },
		EditBatchFunc:      func(ctx context.Context, id string, req EditBatchRequest) (Batch, error) { return Batch{}, nil },
		StartBatchFunc:     func(ctx context.Context, id string) (Batch, error) { return Batch{}, nil },
		SetBatchStatusFunc: func(ctx context.Context, id string, status Status) (Batch, error) { return Batch{}, nil },
		DeleteBatchFunc:    func(ctx context.Context, id string) error { return nil },
		GetBatchFunc:       func(ctx context.Context, id string) (Batch, error) { return Batch{}, nil },
		GetAllBatchesFunc:  func(ctx context.Context, limit, offset int) ([]Batch, error) { return []Batch{}, nil },
	}
}

func (s *MockBatchService) CreateBatch(ctx context.Context, req CreateBatchRequest) (Batch, error) {
	return s.CreateBatchFunc(ctx, req)
}

func (s *MockBatchService) EditBatch(ctx context.Context, id string, req EditBatchRequest) (Batch, error) {
	return s.EditBatchFunc(ctx, id, req)
}

func (s *MockBatchService) StartBatch(ctx context.Context, id string) (Batch, error) {
	return s.StartBatchFunc(ctx, id)
}

func (s *MockBatchService) SetBatchStatus(ctx context.Context, id string, status Status) (Batch, error) {
	return s.SetBatchStatusFunc(ctx, id, status)
}

func (s *MockBatchService) DeleteBatch(ctx context.Context, id string) error {
	return s.DeleteBatchFunc(ctx, id)
}

func (s *MockBatchService) GetBatch(ctx context.Context, id string) (Batch, error) {
	return s.GetBatchFunc(ctx, id)
}

func (s *MockBatchService) GetAllBatches(ctx context.Context, limit, offset int) ([]Batch, error) {
	return s.GetAllBatchesFunc(ctx, limit, offset)
}
