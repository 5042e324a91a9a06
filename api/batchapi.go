package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/print-factory/core"
	"github.com/sksmith/print-factory/core/batch"
)

type BatchService interface {
	CreateBatch(ctx context.Context, req batch.CreateBatchRequest) (batch.Batch, error)
	EditBatch(ctx context.Context, id string, req batch.EditBatchRequest) (batch.Batch, error)
	StartBatch(ctx context.Context, id string) (batch.Batch, error)
	SetBatchStatus(ctx context.Context, id string, status batch.Status) (batch.Batch, error)
	DeleteBatch(ctx context.Context, id string) error

	GetBatch(ctx context.Context, id string) (batch.Batch, error)
	GetAllBatches(ctx context.Context, limit, offset int) ([]batch.Batch, error)
}

type BatchApi struct {
	service BatchService
}

func NewBatchApi(service BatchService) *BatchApi {
	return &BatchApi{service: service}
}

const (
	CtxKeyBatch CtxKey = "batch"
)

func (a *BatchApi) ConfigureRouter(r chi.Router) {
	r.With(Paginate).Get("/", a.List)
	r.Put("/", a.Create)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(a.BatchCtx)
		r.Get("/", a.Get)
		r.Put("/", a.Edit)
		r.Delete("/", a.Delete)
		r.Post("/start", a.Start)
		r.Put("/status", a.SetStatus)
	})
}

func (a *BatchApi) List(w http.ResponseWriter, r *http.Request) {
	limit := r.Context().Value(CtxKeyLimit).(int)
	offset := r.Context().Value(CtxKeyOffset).(int)

	batches, err := a.service.GetAllBatches(r.Context(), limit, offset)
	if err != nil {
		RenderError(w, r, err)
		return
	}

	RenderList(w, r, NewBatchListResponse(batches))
}

func (a *BatchApi) Create(w http.ResponseWriter, r *http.Request) {
	data := &CreateBatchRequestDto{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	b, err := a.service.CreateBatch(r.Context(), *data.CreateBatchRequest)
	if err != nil {
		RenderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	Render(w, r, NewBatchResponse(b))
}

func (a *BatchApi) BatchCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			Render(w, r, ErrInvalidRequest(errors.New("batch id is required")))
			return
		}

		b, err := a.service.GetBatch(r.Context(), id)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				Render(w, r, ErrNotFound)
			} else {
				log.Error().Err(err).Str("id", id).Msg("error acquiring batch")
				Render(w, r, ErrInternalServer)
			}
			return
		}

		ctx := context.WithValue(r.Context(), CtxKeyBatch, b)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *BatchApi) Get(w http.ResponseWriter, r *http.Request) {
	b := r.Context().Value(CtxKeyBatch).(batch.Batch)
	Render(w, r, NewBatchResponse(b))
}

func (a *BatchApi) Edit(w http.ResponseWriter, r *http.Request) {
	b := r.Context().Value(CtxKeyBatch).(batch.Batch)

	data := &EditBatchRequestDto{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	updated, err := a.service.EditBatch(r.Context(), b.ID, *data.EditBatchRequest)
	if err != nil {
		RenderError(w, r, err)
		return
	}

	Render(w, r, NewBatchResponse(updated))
}

func (a *BatchApi) Start(w http.ResponseWriter, r *http.Request) {
	b := r.Context().Value(CtxKeyBatch).(batch.Batch)

	started, err := a.service.StartBatch(r.Context(), b.ID)
	if err != nil {
		RenderError(w, r, err)
		return
	}

	Render(w, r, NewBatchResponse(started))
}

func (a *BatchApi) SetStatus(w http.ResponseWriter, r *http.Request) {
	b := r.Context().Value(CtxKeyBatch).(batch.Batch)

	data := &SetBatchStatusRequest{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	updated, err := a.service.SetBatchStatus(r.Context(), b.ID, data.status)
	if err != nil {
		RenderError(w, r, err)
		return
	}

	Render(w, r, NewBatchResponse(updated))
}

func (a *BatchApi) Delete(w http.ResponseWriter, r *http.Request) {
	b := r.Context().Value(CtxKeyBatch).(batch.Batch)

	if err := a.service.DeleteBatch(r.Context(), b.ID); err != nil {
		RenderError(w, r, err)
		return
	}

	render.Status(r, http.StatusNoContent)
	render.NoContent(w, r)
}
