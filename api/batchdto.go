package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/sksmith/print-factory/core/batch"
)

type BatchResponse struct {
	batch.Batch
}

func NewBatchResponse(b batch.Batch) *BatchResponse {
	return &BatchResponse{Batch: b}
}

func (rd *BatchResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

func NewBatchListResponse(batches []batch.Batch) []render.Renderer {
	list := make([]render.Renderer, 0)
	for _, b := range batches {
		list = append(list, NewBatchResponse(b))
	}
	return list
}

type CreateBatchRequestDto struct {
	*batch.CreateBatchRequest
}

func (p *CreateBatchRequestDto) Bind(_ *http.Request) error {
	if p.CreateBatchRequest == nil {
		return errors.New("missing required batch fields")
	}
	if p.Name == "" {
		return errors.New("name is required")
	}
	if len(p.LineItems) == 0 {
		return errors.New("at least one line item is required")
	}
	for _, l := range p.LineItems {
		if l.Quantity < 1 {
			return errors.New("line item quantity must be greater than zero")
		}
	}
	if p.PackagingFee < 0 {
		return errors.New("packagingFee cannot be negative")
	}
	for _, a := range p.Assignments {
		if a.PrinterID == nil && a.PrinterTypeID == nil {
			return errors.New("assignments require a printerId or printerTypeId")
		}
		if a.UnitsQty < 1 {
			return errors.New("assignment unitsQty must be greater than zero")
		}
	}

	return nil
}

type EditBatchRequestDto struct {
	*batch.EditBatchRequest
}

func (p *EditBatchRequestDto) Bind(_ *http.Request) error {
	if p.EditBatchRequest == nil {
		return errors.New("missing required batch fields")
	}
	if p.Name != nil && *p.Name == "" {
		return errors.New("name cannot be blank")
	}
	if p.PackagingFee != nil && *p.PackagingFee < 0 {
		return errors.New("packagingFee cannot be negative")
	}
	if p.LineItems != nil {
		if len(*p.LineItems) == 0 {
			return errors.New("at least one line item is required")
		}
		for _, l := range *p.LineItems {
			if l.Quantity < 1 {
				return errors.New("line item quantity must be greater than zero")
			}
		}
	}
	if p.Assignments != nil {
		for _, a := range *p.Assignments {
			if a.PrinterID == nil && a.PrinterTypeID == nil {
				return errors.New("assignments require a printerId or printerTypeId")
			}
			if a.UnitsQty < 1 {
				return errors.New("assignment unitsQty must be greater than zero")
			}
		}
	}

	return nil
}

type SetBatchStatusRequest struct {
	Status string `json:"status"`

	status batch.Status
}

func (p *SetBatchStatusRequest) Bind(_ *http.Request) error {
	s, err := batch.ParseStatus(p.Status)
	if err != nil {
		return err
	}
	p.status = s

	return nil
}
