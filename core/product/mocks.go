package product

import "context"

type MockProductService struct {
	CreateProductFunc  func(ctx context.Context, product Product) (Product, error)
	GetProductFunc     func(ctx context.Context, sku string) (Product, error)
	GetAllProductsFunc func(ctx context.Context, limit, offset int) ([]Product, error)
	UpdateProductFunc  func(ctx context.Context, product Product) (Product, error)
	DeleteProductFunc  func(ctx context.Context, sku string) error
}

func NewMockProductService() MockProductService {
	return MockProductService{
		CreateProductFunc: func(ctx context.Context, product Product) (Product, error) { return product, nil },
		GetProductFunc:    func(ctx context.Context, sku string) (Product, error) { return Product{}, nil },
		GetAllProductsFunc: func(ctx context.Context, limit, offset int) ([]Product, error) {
			return []Product{}, nil
		},
		UpdateProductFunc: func(ctx context.Context, product Product) (Product, error) { return product, nil },
		DeleteProductFunc: func(ctx context.Context, sku string) error { return nil },
	}
}

func (s *MockProductService) CreateProduct(ctx context.Context, product Product) (Product, error) {
	return s.CreateProductFunc(ctx, product)
}

func (s *MockProductService) GetProduct(ctx context.Context, sku string) (Product, error) {
	return s.GetProductFunc(ctx, sku)
}

func (s *MockProductService) GetAllProducts(ctx context.Context, limit, offset int) ([]Product, error) {
	return s.GetAllProductsFunc(ctx, limit, offset)
}

func (s *MockProductService) UpdateProduct(ctx context.Context, product Product) (Product, error) {
	return s.UpdateProductFunc(ctx, product)
}

func (s *MockProductService) DeleteProduct(ctx context.Context, sku string) error {
	return s.DeleteProductFunc(ctx, sku)
}
