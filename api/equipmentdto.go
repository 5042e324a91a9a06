package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/sksmith/print-factory/core/equipment"
)

type PrinterTypeResponse struct {
	equipment.PrinterType
}

func NewPrinterTypeResponse(t equipment.PrinterType) *PrinterTypeResponse {
	return &PrinterTypeResponse{PrinterType: t}
}

func (rd *PrinterTypeResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

func NewPrinterTypeListResponse(types []equipment.PrinterType) []render.Renderer {
	list := make([]render.Renderer, 0)
	for _, t := range types {
		list = append(list, NewPrinterTypeResponse(t))
	}
	return list
}

type CreatePrinterTypeRequest struct {
	equipment.PrinterType

	ProtectedID int64 `json:"id"`
}

func (p *CreatePrinterTypeRequest) Bind(_ *http.Request) error {
	if p.Brand == "" || p.Model == "" {
		return errors.New("missing required field(s)")
	}
	if p.LifeHours <= 0 {
		return errors.New("lifeHours must be greater than zero")
	}

	return nil
}

type PrinterResponse struct {
	equipment.Printer
}

func NewPrinterResponse(p equipment.Printer) *PrinterResponse {
	return &PrinterResponse{Printer: p}
}

func (rd *PrinterResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

func NewPrinterListResponse(printers []equipment.Printer) []render.Renderer {
	list := make([]render.Renderer, 0)
	for _, p := range printers {
		list = append(list, NewPrinterResponse(p))
	}
	return list
}

type CreatePrinterRequest struct {
	equipment.Printer

	ProtectedID      int64   `json:"id"`
	ProtectedUsage   float64 `json:"usageHours"`
	ProtectedStatus  string  `json:"status"`
	ProtectedCreated string  `json:"created"`
}

func (p *CreatePrinterRequest) Bind(_ *http.Request) error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.TypeID == 0 {
		return errors.New("typeId is required")
	}
	if p.Price < 0 {
		return errors.New("price cannot be negative")
	}

	return nil
}

type UpdatePrinterStatusRequest struct {
	Status string `json:"status"`

	status equipment.Status
}

func (p *UpdatePrinterStatusRequest) Bind(_ *http.Request) error {
	s, err := equipment.ParseStatus(p.Status)
	if err != nil {
		return err
	}
	p.status = s

	return nil
}

type UsageRecordResponse struct {
	equipment.UsageRecord
}

func (rd *UsageRecordResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

func NewUsageRecordListResponse(records []equipment.UsageRecord) []render.Renderer {
	list := make([]render.Renderer, 0)
	for _, rec := range records {
		list = append(list, &UsageRecordResponse{UsageRecord: rec})
	}
	return list
}
