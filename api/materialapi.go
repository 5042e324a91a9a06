package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/print-factory/core"
	"github.com/sksmith/print-factory/core/material"
)

type MaterialService interface {
	CreateMaterial(ctx context.Context, m material.Material) (material.Material, error)
	GetMaterial(ctx context.Context, id int64) (material.Material, error)
	GetAllMaterials(ctx context.Context, limit, offset int) ([]material.Material, error)
	DeleteMaterial(ctx context.Context, id int64) error

	RecordPurchase(ctx context.Context, pr material.PurchaseRequest) (material.Material, error)
	GetPurchases(ctx context.Context, materialID int64, limit, offset int) ([]material.Purchase, error)
	DeletePurchase(ctx context.Context, id int64) error

	SubscribeStock(ch chan<- material.Material) (id material.StockSubID)
	UnsubscribeStock(id material.StockSubID)
}

type MaterialApi struct {
	service MaterialService
}

func NewMaterialApi(service MaterialService) *MaterialApi {
	return &MaterialApi{service: service}
}

const (
	CtxKeyMaterial CtxKey = "material"
)

func (a *MaterialApi) ConfigureRouter(r chi.Router) {
	r.HandleFunc("/subscribe", a.Subscribe)

	r.Route("/", func(r chi.Router) {
		r.With(Paginate).Get("/", a.List)
		r.Put("/", a.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Use(a.MaterialCtx)
			r.Get("/", a.Get)
			r.Delete("/", a.Delete)

			r.Put("/purchase", a.RecordPurchase)
			r.With(Paginate).Get("/purchase", a.ListPurchases)
			r.Delete("/purchase/{purchaseId}", a.DeletePurchase)
		})
	})
}

// Subscribe streams stock level changes to the client over a websocket
// connection. Updates only cover changes made through this instance.
func (a *MaterialApi) Subscribe(w http.ResponseWriter, r *http.Request) {
	log.Info().Msg("client requesting stock subscription")

	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		log.Err(err).Msg("failed to establish stock subscription connection")
		Render(w, r, ErrInternalServer)
		return
	}
	go func() {
		defer conn.Close()

		ch := make(chan material.Material, 1)

		id := a.service.SubscribeStock(ch)
		defer func() {
			a.service.UnsubscribeStock(id)
		}()

		for m := range ch {
			resp := &MaterialResponse{Material: m}
			body, err := json.Marshal(resp)
			if err != nil {
				log.Err(err).Interface("clientId", id).Msg("failed to marshal material response")
				continue
			}

			log.Debug().Interface("clientId", id).Interface("materialResponse", resp).Msg("sending stock update to client")
			err = wsutil.WriteServerText(conn, body)
			if err != nil {
				log.Err(err).Interface("clientId", id).Msg("failed to write server message, disconnecting client")
				return
			}
		}
	}()
}

func (a *MaterialApi) List(w http.ResponseWriter, r *http.Request) {
	limit := r.Context().Value(CtxKeyLimit).(int)
	offset := r.Context().Value(CtxKeyOffset).(int)

	materials, err := a.service.GetAllMaterials(r.Context(), limit, offset)
	if err != nil {
		RenderError(w, r, err)
		return
	}

	RenderList(w, r, NewMaterialListResponse(materials))
}

func (a *MaterialApi) Create(w http.ResponseWriter, r *http.Request) {
	data := &CreateMaterialRequest{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	m, err := a.service.CreateMaterial(r.Context(), data.Material)
	if err != nil {
		RenderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	Render(w, r, NewMaterialResponse(m))
}

func (a *MaterialApi) MaterialCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idStr := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			Render(w, r, ErrInvalidRequest(errors.New("material id must be numeric")))
			return
		}

		m, err := a.service.GetMaterial(r.Context(), id)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				Render(w, r, ErrNotFound)
			} else {
				log.Error().Err(err).Int64("id", id).Msg("error acquiring material")
				Render(w, r, ErrInternalServer)
			}
			return
		}

		ctx := context.WithValue(r.Context(), CtxKeyMaterial, m)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *MaterialApi) Get(w http.ResponseWriter, r *http.Request) {
	m := r.Context().Value(CtxKeyMaterial).(material.Material)
	Render(w, r, NewMaterialResponse(m))
}

func (a *MaterialApi) Delete(w http.ResponseWriter, r *http.Request) {
	m := r.Context().Value(CtxKeyMaterial).(material.Material)

	if err := a.service.DeleteMaterial(r.Context(), m.ID); err != nil {
		RenderError(w, r, err)
		return
	}

	render.Status(r, http.StatusNoContent)
	render.NoContent(w, r)
}

func (a *MaterialApi) RecordPurchase(w http.ResponseWriter, r *http.Request) {
	m := r.Context().Value(CtxKeyMaterial).(material.Material)

	data := &RecordPurchaseRequest{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}
	data.MaterialID = m.ID

	updated, err := a.service.RecordPurchase(r.Context(), *data.PurchaseRequest)
	if err != nil {
		RenderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	Render(w, r, NewMaterialResponse(updated))
}

func (a *MaterialApi) ListPurchases(w http.ResponseWriter, r *http.Request) {
	m := r.Context().Value(CtxKeyMaterial).(material.Material)
	limit := r.Context().Value(CtxKeyLimit).(int)
	offset := r.Context().Value(CtxKeyOffset).(int)

	purchases, err := a.service.GetPurchases(r.Context(), m.ID, limit, offset)
	if err != nil {
		RenderError(w, r, err)
		return
	}

	RenderList(w, r, NewPurchaseListResponse(purchases))
}

func (a *MaterialApi) DeletePurchase(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "purchaseId")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		Render(w, r, ErrInvalidRequest(errors.New("purchase id must be numeric")))
		return
	}

	if err := a.service.DeletePurchase(r.Context(), id); err != nil {
		RenderError(w, r, err)
		return
	}

	render.Status(r, http.StatusNoContent)
	render.NoContent(w, r)
}
