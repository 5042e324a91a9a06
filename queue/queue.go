// Package queue publishes stock and batch lifecycle events to RabbitMQ so
// downstream consumers (alerting, reporting) can react without polling.
package queue

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/bunnyq"
	"github.com/sksmith/print-factory/core/batch"
	"github.com/sksmith/print-factory/core/material"
	"github.com/sksmith/print-factory/core/product"
	"github.com/streadway/amqp"
)

type stockQueue struct {
	queue         *bunnyq.BunnyQ
	stockExchange string
}

func NewStockQueue(bq *bunnyq.BunnyQ, stockExchange string) material.Queue {
	return &stockQueue{queue: bq, stockExchange: stockExchange}
}

func (q *stockQueue) PublishStock(ctx context.Context, m material.Material) error {
	body, err := json.Marshal(m)
	if err != nil {
		return errors.WithMessage(err, "failed to serialize stock message for queue")
	}
	if err = q.queue.Publish(ctx, q.stockExchange, body); err != nil {
		return errors.WithMessage(err, "failed to send stock update to queue")
	}
	return nil
}

type batchQueue struct {
	queue         *bunnyq.BunnyQ
	batchExchange string
}

func NewBatchQueue(bq *bunnyq.BunnyQ, batchExchange string) batch.Queue {
	return &batchQueue{queue: bq, batchExchange: batchExchange}
}

func (q *batchQueue) PublishBatch(ctx context.Context, b batch.Batch) error {
	body, err := json.Marshal(b)
	if err != nil {
		return errors.WithMessage(err, "failed to serialize batch message for queue")
	}
	if err = q.queue.Publish(ctx, q.batchExchange, body); err != nil {
		return errors.WithMessage(err, "failed to send batch event to queue")
	}
	return nil
}

// ProductQueue listens for catalog entries pushed by an upstream product
// management system. Messages that cannot be parsed or stored are written
// to a dead letter topic for later inspection.
type ProductQueue struct {
	queue           *bunnyq.BunnyQ
	catalogQueue    string
	catalogDltExchg string
}

func NewProductQueue(bq *bunnyq.BunnyQ, catalogQueue, catalogDltExchange string) *ProductQueue {
	return &ProductQueue{queue: bq, catalogQueue: catalogQueue, catalogDltExchg: catalogDltExchange}
}

type ProductHandler interface {
	CreateProduct(ctx context.Context, p product.Product) (product.Product, error)
}

func (p *ProductQueue) ConsumeProducts(ctx context.Context, handler ProductHandler) {
	p.queue.Stream(ctx, p.catalogQueue, func(delivery amqp.Delivery) {
		prod := product.Product{}
		err := json.Unmarshal(delivery.Body, &prod)
		if err != nil {
			log.Error().Err(err).Msg("error unmarshalling product, writing to dlt")
			p.sendToDlt(ctx, delivery.Body)
			return
		}

		if _, err = handler.CreateProduct(ctx, prod); err != nil {
			log.Error().Err(err).Str("sku", prod.Sku).Msg("error handling product, writing to dlt")
			p.sendToDlt(ctx, delivery.Body)
		}
	}, bunnyq.StreamOpAutoAck)
}

func (p *ProductQueue) sendToDlt(ctx context.Context, data []byte) {
	err := p.queue.Publish(ctx, p.catalogDltExchg, data)
	if err != nil {
		log.Error().Err(err).Msg("error writing to dlt")
	}
}
