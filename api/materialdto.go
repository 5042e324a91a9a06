package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/sksmith/print-factory/core/material"
)

type MaterialResponse struct {
	material.Material
}

func NewMaterialResponse(m material.Material) *MaterialResponse {
	return &MaterialResponse{Material: m}
}

func (rd *MaterialResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

func NewMaterialListResponse(materials []material.Material) []render.Renderer {
	list := make([]render.Renderer, 0)
	for _, m := range materials {
		list = append(list, NewMaterialResponse(m))
	}
	return list
}

type CreateMaterialRequest struct {
	material.Material

	ProtectedID        int64   `json:"id"`
	ProtectedOnHand    float64 `json:"onHandKg"`
	ProtectedAvgCost   float64 `json:"avgCostKg"`
	ProtectedCreatedAt string  `json:"created"`
}

func (p *CreateMaterialRequest) Bind(_ *http.Request) error {
	if p.Color == "" || p.Brand == "" || p.Composition == "" {
		return errors.New("missing required field(s)")
	}
	if p.ThresholdKg != nil && *p.ThresholdKg < 0 {
		return errors.New("threshold cannot be negative")
	}

	// Stock and cost only move through purchases and reservations.
	p.Material.ID = 0
	p.Material.OnHandKg = 0
	p.Material.AvgCostKg = 0

	return nil
}

type RecordPurchaseRequest struct {
	*material.PurchaseRequest
}

func (p *RecordPurchaseRequest) Bind(_ *http.Request) error {
	if p.PurchaseRequest == nil {
		return errors.New("missing required purchase fields")
	}
	if p.QuantityKg <= 0 {
		return errors.New("quantityKg must be greater than zero")
	}
	if p.CostPerKg < 0 {
		return errors.New("costPerKg cannot be negative")
	}
	if p.PurchasedAt.IsZero() {
		p.PurchasedAt = time.Now()
	}

	return nil
}

type PurchaseResponse struct {
	material.Purchase
}

func (rd *PurchaseResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

func NewPurchaseListResponse(purchases []material.Purchase) []render.Renderer {
	list := make([]render.Renderer, 0)
	for _, p := range purchases {
		list = append(list, &PurchaseResponse{Purchase: p})
	}
	return list
}
