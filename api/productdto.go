package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/sksmith/print-factory/core/product"
)

type ProductResponse struct {
	product.Product
}

func NewProductResponse(p product.Product) *ProductResponse {
	return &ProductResponse{Product: p}
}

func (rd *ProductResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

func NewProductListResponse(products []product.Product) []render.Renderer {
	list := make([]render.Renderer, 0)
	for _, p := range products {
		list = append(list, NewProductResponse(p))
	}
	return list
}

type CreateProductRequest struct {
	product.Product

	ProtectedID      int64  `json:"id"`
	ProtectedCreated string `json:"created"`
}

func (p *CreateProductRequest) Bind(_ *http.Request) error {
	if p.Sku == "" || p.Name == "" {
		return errors.New("missing required field(s)")
	}
	if len(p.Materials) == 0 {
		return errors.New("at least one material usage is required")
	}
	for _, u := range p.Materials {
		if u.Grams <= 0 {
			return errors.New("material grams must be greater than zero")
		}
	}

	return nil
}
