package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/bunnyq"
	"github.com/sksmith/print-factory/api"
	"github.com/sksmith/print-factory/config"
	"github.com/sksmith/print-factory/core/batch"
	"github.com/sksmith/print-factory/core/equipment"
	"github.com/sksmith/print-factory/core/material"
	"github.com/sksmith/print-factory/core/product"
	"github.com/sksmith/print-factory/core/user"
	"github.com/sksmith/print-factory/db"
	"github.com/sksmith/print-factory/db/batchrepo"
	"github.com/sksmith/print-factory/db/equiprepo"
	"github.com/sksmith/print-factory/db/matrepo"
	"github.com/sksmith/print-factory/db/prodrepo"
	"github.com/sksmith/print-factory/db/usrrepo"
	"github.com/sksmith/print-factory/queue"

	"github.com/common-nighthawk/go-figure"
)

func main() {
	flag.Parse()
	ctx := context.Background()

	cfg := config.Load()

	configLogging(cfg)
	printLogHeader(cfg)
	cfg.Print()

	dbPool := configDatabase(ctx, cfg)

	log.Info().Msg("creating material service...")
	mr := matrepo.NewPostgresRepo(dbPool)
	materialService := material.NewService(mr, configStockQueue(cfg))

	log.Info().Msg("creating product service...")
	pr := prodrepo.NewPostgresRepo(dbPool)
	productService := product.NewService(pr)

	if !cfg.RabbitMQ.Mock {
		log.Info().Msg("listening for product catalog updates...")
		prodQueue := queue.NewProductQueue(rabbit(cfg), cfg.RabbitMQ.Product.Queue, cfg.RabbitMQ.Product.Dlt.Exchange)
		go prodQueue.ConsumeProducts(context.Background(), productService)
	}

	log.Info().Msg("creating equipment service...")
	er := equiprepo.NewPostgresRepo(dbPool)
	equipmentService := equipment.NewService(er)

	log.Info().Msg("creating batch service...")
	br := batchrepo.NewPostgresRepo(dbPool)
	batchService := batch.NewService(br, materialService, pr, er, configBatchQueue(cfg), batch.SystemClock{})

	log.Info().Msg("creating user service...")
	ur := usrrepo.NewPostgresRepo(dbPool)
	userService := user.NewService(ur)

	log.Info().Msg("configuring metrics...")
	api.ConfigureMetrics()

	log.Info().Msg("configuring router...")
	r := api.ConfigureRouter(cfg, materialService, productService, equipmentService, batchService, userService)

	log.Info().Str("port", cfg.Port).Msg("listening")
	log.Fatal().Err(http.ListenAndServe(":"+cfg.Port, r)).Send()
}

func configStockQueue(cfg *config.Config) material.Queue {
	if cfg.RabbitMQ.Mock {
		log.Info().Msg("using mock stock queue...")
		q := queue.NewMockQueue()
		return &q
	}
	return queue.NewStockQueue(rabbit(cfg), cfg.RabbitMQ.Stock.Exchange)
}

func configBatchQueue(cfg *config.Config) batch.Queue {
	if cfg.RabbitMQ.Mock {
		log.Info().Msg("using mock batch queue...")
		q := queue.NewMockQueue()
		return &q
	}
	return queue.NewBatchQueue(rabbit(cfg), cfg.RabbitMQ.Batch.Exchange)
}

var bq *bunnyq.BunnyQ

func rabbit(cfg *config.Config) *bunnyq.BunnyQ {
	if bq != nil {
		return bq
	}

	log.Info().Msg("connecting to rabbitmq...")

	osChannel := make(chan os.Signal, 1)
	signal.Notify(osChannel, syscall.SIGTERM)

	bq = bunnyq.New(context.Background(),
		bunnyq.Address{
			User: cfg.RabbitMQ.User,
			Pass: cfg.RabbitMQ.Pass,
			Host: cfg.RabbitMQ.Host,
			Port: cfg.RabbitMQ.Port,
		},
		osChannel,
		bunnyq.LogHandler(logger{}),
	)

	return bq
}

type logger struct {
}

func (l logger) Log(_ context.Context, level bunnyq.LogLevel, msg string, data map[string]interface{}) {
	var evt *zerolog.Event
	switch level {
	case bunnyq.LogLevelTrace:
		evt = log.Trace()
	case bunnyq.LogLevelDebug:
		evt = log.Debug()
	case bunnyq.LogLevelInfo:
		evt = log.Info()
	case bunnyq.LogLevelWarn:
		evt = log.Warn()
	case bunnyq.LogLevelError:
		evt = log.Error()
	case bunnyq.LogLevelNone:
		evt = log.Info()
	default:
		evt = log.Info()
	}

	for k, v := range data {
		evt.Interface(k, v)
	}

	evt.Msg(msg)
}

func printLogHeader(cfg *config.Config) {
	if cfg.Log.Structured {
		log.Info().Str("application", cfg.AppName).
			Str("revision", cfg.Revision).
			Str("version", cfg.AppVersion).
			Str("sha1ver", cfg.Sha1Version).
			Str("build-time", cfg.BuildTime).
			Str("profile", cfg.Profile).
			Str("config-source", cfg.Config.Source).
			Str("config-branch", cfg.Config.Spring.Branch).
			Send()
	} else {
		f := figure.NewFigure(cfg.AppName, "", true)
		f.Print()

		log.Info().Msg("=============================================")
		log.Info().Msg(fmt.Sprintf("       Revision: %s", cfg.Revision))
		log.Info().Msg(fmt.Sprintf("        Profile: %s", cfg.Profile))
		log.Info().Msg(fmt.Sprintf("  Config Server: %s - %s", cfg.Config.Source, cfg.Config.Spring.Branch))
		log.Info().Msg(fmt.Sprintf("    Tag Version: %s", cfg.AppVersion))
		log.Info().Msg(fmt.Sprintf("   Sha1 Version: %s", cfg.Sha1Version))
		log.Info().Msg(fmt.Sprintf("     Build Time: %s", cfg.BuildTime))
		log.Info().Msg("=============================================")
	}
}

func configDatabase(ctx context.Context, cfg *config.Config) *pgxpool.Pool {
	dbPool, err := db.ConnectDb(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to the database")
	}
	return dbPool
}

func configLogging(cfg *config.Config) {
	log.Info().Msg("configuring logging...")

	if !cfg.Log.Structured {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warn().Str("loglevel", cfg.Log.Level).Err(err).Msg("defaulting to info")
		level = zerolog.InfoLevel
	}
	log.Info().Str("loglevel", level.String()).Msg("setting log level")
	zerolog.SetGlobalLevel(level)
}
