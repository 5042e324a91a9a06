package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/print-factory/core"
	"github.com/sksmith/print-factory/core/equipment"
)

type EquipmentService interface {
	CreatePrinterType(ctx context.Context, t equipment.PrinterType) (equipment.PrinterType, error)
	GetPrinterType(ctx context.Context, id int64) (equipment.PrinterType, error)
	GetAllPrinterTypes(ctx context.Context, limit, offset int) ([]equipment.PrinterType, error)

	CreatePrinter(ctx context.Context, p equipment.Printer) (equipment.Printer, error)
	GetPrinter(ctx context.Context, id int64) (equipment.Printer, error)
	GetAllPrinters(ctx context.Context, limit, offset int) ([]equipment.Printer, error)
	UpdatePrinterStatus(ctx context.Context, id int64, status equipment.Status) (equipment.Printer, error)
	DeletePrinter(ctx context.Context, id int64) error

	GetUsageRecords(ctx context.Context, printerID int64, limit, offset int) ([]equipment.UsageRecord, error)
}

const (
	CtxKeyPrinter CtxKey = "printer"
)

type PrinterTypeApi struct {
	service EquipmentService
}

func NewPrinterTypeApi(service EquipmentService) *PrinterTypeApi {
	return &PrinterTypeApi{service: service}
}

func (a *PrinterTypeApi) ConfigureRouter(r chi.Router) {
	r.With(Paginate).Get("/", a.List)
	r.Put("/", a.Create)
}

func (a *PrinterTypeApi) List(w http.ResponseWriter, r *http.Request) {
	limit := r.Context().Value(CtxKeyLimit).(int)
	offset := r.Context().Value(CtxKeyOffset).(int)

	types, err := a.service.GetAllPrinterTypes(r.Context(), limit, offset)
	if err != nil {
		RenderError(w, r, err)
		return
	}

	RenderList(w, r, NewPrinterTypeListResponse(types))
}

func (a *PrinterTypeApi) Create(w http.ResponseWriter, r *http.Request) {
	data := &CreatePrinterTypeRequest{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	t, err := a.service.CreatePrinterType(r.Context(), data.PrinterType)
	if err != nil {
		RenderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	Render(w, r, NewPrinterTypeResponse(t))
}

type PrinterApi struct {
	service EquipmentService
}

func NewPrinterApi(service EquipmentService) *PrinterApi {
	return &PrinterApi{service: service}
}

func (a *PrinterApi) ConfigureRouter(r chi.Router) {
	r.With(Paginate).Get("/", a.List)
	r.Put("/", a.Create)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(a.PrinterCtx)
		r.Get("/", a.Get)
		r.Delete("/", a.Delete)
		r.Put("/status", a.UpdateStatus)
		r.With(Paginate).Get("/usage", a.ListUsage)
	})
}

func (a *PrinterApi) List(w http.ResponseWriter, r *http.Request) {
	limit := r.Context().Value(CtxKeyLimit).(int)
	offset := r.Context().Value(CtxKeyOffset).(int)

	printers, err := a.service.GetAllPrinters(r.Context(), limit, offset)
	if err != nil {
		RenderError(w, r, err)
		return
	}

	RenderList(w, r, NewPrinterListResponse(printers))
}

func (a *PrinterApi) Create(w http.ResponseWriter, r *http.Request) {
	data := &CreatePrinterRequest{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	p, err := a.service.CreatePrinter(r.Context(), data.Printer)
	if err != nil {
		RenderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	Render(w, r, NewPrinterResponse(p))
}

func (a *PrinterApi) PrinterCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idStr := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			Render(w, r, ErrInvalidRequest(errors.New("printer id must be numeric")))
			return
		}

		p, err := a.service.GetPrinter(r.Context(), id)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				Render(w, r, ErrNotFound)
			} else {
				log.Error().Err(err).Int64("id", id).Msg("error acquiring printer")
				Render(w, r, ErrInternalServer)
			}
			return
		}

		ctx := context.WithValue(r.Context(), CtxKeyPrinter, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *PrinterApi) Get(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(CtxKeyPrinter).(equipment.Printer)
	Render(w, r, NewPrinterResponse(p))
}

func (a *PrinterApi) Delete(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(CtxKeyPrinter).(equipment.Printer)

	if err := a.service.DeletePrinter(r.Context(), p.ID); err != nil {
		RenderError(w, r, err)
		return
	}

	render.Status(r, http.StatusNoContent)
	render.NoContent(w, r)
}

func (a *PrinterApi) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(CtxKeyPrinter).(equipment.Printer)

	data := &UpdatePrinterStatusRequest{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	updated, err := a.service.UpdatePrinterStatus(r.Context(), p.ID, data.status)
	if err != nil {
		RenderError(w, r, err)
		return
	}

	Render(w, r, NewPrinterResponse(updated))
}

func (a *PrinterApi) ListUsage(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(CtxKeyPrinter).(equipment.Printer)
	limit := r.Context().Value(CtxKeyLimit).(int)
	offset := r.Context().Value(CtxKeyOffset).(int)

	records, err := a.service.GetUsageRecords(r.Context(), p.ID, limit, offset)
	if err != nil {
		RenderError(w, r, err)
		return
	}

	RenderList(w, r, NewUsageRecordListResponse(records))
}
