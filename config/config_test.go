package config_test

import (
	"testing"

	"github.com/sksmith/print-factory/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg := config.LoadDefaults()

	if cfg.Port != "8080" {
		t.Errorf("port got=%s want=%s", cfg.Port, "8080")
	}
	if cfg.Db.Pool.MaxSize != 4 {
		t.Errorf("pool max got=%d want=%d", cfg.Db.Pool.MaxSize, 4)
	}
	if cfg.RabbitMQ.Stock.Exchange != "stock.exchange" {
		t.Errorf("stock exchange got=%s want=%s", cfg.RabbitMQ.Stock.Exchange, "stock.exchange")
	}
	if cfg.RabbitMQ.Product.Queue != "product.queue" {
		t.Errorf("product queue got=%s want=%s", cfg.RabbitMQ.Product.Queue, "product.queue")
	}
	if cfg.AppName != config.AppName {
		t.Errorf("app name got=%s want=%s", cfg.AppName, config.AppName)
	}
}
