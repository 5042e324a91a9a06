package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/print-factory/core"
	"github.com/sksmith/print-factory/core/product"
)

type ProductService interface {
	CreateProduct(ctx context.Context, p product.Product) (product.Product, error)
	GetProduct(ctx context.Context, sku string) (product.Product, error)
	GetAllProducts(ctx context.Context, limit, offset int) ([]product.Product, error)
	UpdateProduct(ctx context.Context, p product.Product) (product.Product, error)
	DeleteProduct(ctx context.Context, sku string) error
}

type ProductApi struct {
	service ProductService
}

func NewProductApi(service ProductService) *ProductApi {
	return &ProductApi{service: service}
}

const (
	CtxKeyProduct CtxKey = "product"
)

func (a *ProductApi) ConfigureRouter(r chi.Router) {
	r.With(Paginate).Get("/", a.List)
	r.Put("/", a.Create)

	r.Route("/{sku}", func(r chi.Router) {
		r.Use(a.ProductCtx)
		r.Get("/", a.Get)
		r.Put("/", a.Update)
		r.Delete("/", a.Delete)
	})
}

func (a *ProductApi) List(w http.ResponseWriter, r *http.Request) {
	limit := r.Context().Value(CtxKeyLimit).(int)
	offset := r.Context().Value(CtxKeyOffset).(int)

	products, err := a.service.GetAllProducts(r.Context(), limit, offset)
	if err != nil {
		RenderError(w, r, err)
		return
	}

	RenderList(w, r, NewProductListResponse(products))
}

func (a *ProductApi) Create(w http.ResponseWriter, r *http.Request) {
	data := &CreateProductRequest{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	p, err := a.service.CreateProduct(r.Context(), data.Product)
	if err != nil {
		RenderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	Render(w, r, NewProductResponse(p))
}

func (a *ProductApi) ProductCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sku := chi.URLParam(r, "sku")
		if sku == "" {
			Render(w, r, ErrInvalidRequest(errors.New("sku is required")))
			return
		}

		p, err := a.service.GetProduct(r.Context(), sku)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				Render(w, r, ErrNotFound)
			} else {
				log.Error().Err(err).Str("sku", sku).Msg("error acquiring product")
				Render(w, r, ErrInternalServer)
			}
			return
		}

		ctx := context.WithValue(r.Context(), CtxKeyProduct, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *ProductApi) Get(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(CtxKeyProduct).(product.Product)
	Render(w, r, NewProductResponse(p))
}

func (a *ProductApi) Update(w http.ResponseWriter, r *http.Request) {
	existing := r.Context().Value(CtxKeyProduct).(product.Product)

	data := &CreateProductRequest{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	data.Product.ID = existing.ID
	data.Product.Sku = existing.Sku

	p, err := a.service.UpdateProduct(r.Context(), data.Product)
	if err != nil {
		RenderError(w, r, err)
		return
	}

	Render(w, r, NewProductResponse(p))
}

func (a *ProductApi) Delete(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(CtxKeyProduct).(product.Product)

	if err := a.service.DeleteProduct(r.Context(), p.Sku); err != nil {
		RenderError(w, r, err)
		return
	}

	render.Status(r, http.StatusNoContent)
	render.NoContent(w, r)
}
