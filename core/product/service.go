package product

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/print-factory/core"
)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

type Service interface {
	CreateProduct(ctx context.Context, product Product) (Product, error)
	GetProduct(ctx context.Context, sku string) (Product, error)
	GetAllProducts(ctx context.Context, limit, offset int) ([]Product, error)
	UpdateProduct(ctx context.Context, product Product) (Product, error)
	DeleteProduct(ctx context.Context, sku string) error
}

// ErrProductInUse is returned when deleting a product that a batch line
// item still references.
var ErrProductInUse = errors.New("product is referenced by a batch")

type service struct {
	repo Repository
}

func (s *service) CreateProduct(ctx context.Context, p Product) (Product, error) {
	const funcName = "CreateProduct"

	existing, err := s.repo.GetProduct(ctx, p.Sku)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return Product{}, errors.WithStack(err)
	}

	if existing.Sku != "" {
		log.Debug().
			Str("func", funcName).
			Str("sku", existing.Sku).
			Msg("product already exists")
		return existing, nil
	}

	if err = validate(p); err != nil {
		return Product{}, err
	}

	log.Info().
		Str("func", funcName).
		Str("sku", p.Sku).
		Str("name", p.Name).
		Msg("creating product")

	p.Created = time.Now()

	if err = s.repo.SaveProduct(ctx, &p); err != nil {
		return Product{}, errors.WithStack(err)
	}

	return p, nil
}

func (s *service) GetProduct(ctx context.Context, sku string) (Product, error) {
	p, err := s.repo.GetProduct(ctx, sku)
	if err != nil {
		return p, errors.WithStack(err)
	}
	return p, nil
}

func (s *service) GetAllProducts(ctx context.Context, limit, offset int) ([]Product, error) {
	return s.repo.GetAllProducts(ctx, limit, offset)
}

func (s *service) UpdateProduct(ctx context.Context, p Product) (Product, error) {
	const funcName = "UpdateProduct"

	existing, err := s.repo.GetProduct(ctx, p.Sku)
	if err != nil {
		return Product{}, errors.WithStack(err)
	}

	if err = validate(p); err != nil {
		return Product{}, err
	}

	log.Info().
		Str("func", funcName).
		Str("sku", p.Sku).
		Msg("updating product")

	p.ID = existing.ID
	p.Created = existing.Created

	if err = s.repo.SaveProduct(ctx, &p); err != nil {
		return Product{}, errors.WithStack(err)
	}

	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, sku string) error {
	const funcName = "DeleteProduct"

	p, err := s.repo.GetProduct(ctx, sku)
	if err != nil {
		return errors.WithStack(err)
	}

	inUse, err := s.repo.ProductInUse(ctx, p.ID)
	if err != nil {
		return errors.WithStack(err)
	}
	if inUse {
		return errors.WithStack(ErrProductInUse)
	}

	log.Info().
		Str("func", funcName).
		Str("sku", sku).
		Msg("deleting product")

	return s.repo.DeleteProduct(ctx, p.ID)
}

func validate(p Product) error {
	if p.PrintTimeHours < 0 {
		return errors.New("print time cannot be negative")
	}
	if p.FixedCost < 0 {
		return errors.New("fixed cost cannot be negative")
	}
	for _, u := range p.Materials {
		if u.Grams <= 0 {
			return errors.New("material usage must be greater than zero grams")
		}
	}
	return nil
}
