package main

import (
	"context"
	"net/http"
	"time"

	"pricelist/internal/api"
	"pricelist/internal/cache"
	"pricelist/internal/config"
	"pricelist/internal/db"
	"pricelist/internal/logging"
	"pricelist/internal/observability"
	"pricelist/internal/pipeline"
	"pricelist/internal/repository"
	"pricelist/internal/supplier"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	observability.Start(cfg.MetricsPort, log)

	srv := &api.Server{
		Pipeline: pipeline.New(supplier.DefaultRegistry(log), log, cfg.WorkerCount),
		Log:      log,
	}

	if cfg.RedisURL != "" {
		srv.Runs = cache.NewRunStore(cache.NewClient(cfg.RedisURL), cfg.RunCacheTTL)
	} else {
		log.Warn("REDIS_URL não definido, uploads não serão acumulados entre requisições")
	}

	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Erro ao conectar no Postgres (pgxpool): %v", err)
		}
		defer pool.Close()

		conn, err := db.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Erro ao conectar no Postgres: %v", err)
		}
		defer conn.Close()

		repo := repository.NewProductRepository(conn, repository.SaveOptions{
			RatePerSecond: cfg.SaveRatePerSecond,
			MaxRetries:    cfg.SaveMaxRetries,
		}, log)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("Erro ao criar tabelas: %v", err)
		}
		srv.Saver = repo
		srv.Products = &repository.ComparisonRepository{DB: pool, Log: log}
	} else {
		log.Warn("DATABASE_URL não definido, persistência desabilitada")
	}

	log.Infof("API de comparação de preços rodando em %s", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, srv.Routes()); err != nil {
		log.Fatalf("Erro no servidor HTTP: %v", err)
	}
}
