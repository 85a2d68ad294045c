package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"pricelist/internal/config"
	"pricelist/internal/db"
	"pricelist/internal/document"
	"pricelist/internal/logging"
	"pricelist/internal/model"
	"pricelist/internal/pipeline"
	"pricelist/internal/repository"
	"pricelist/internal/supplier"
)

// go run ./cmd/compare lista_jc.txt lista_zn.txt
// go run ./cmd/compare -json -save https://exemplo.com/lista.html
func main() {
	asJSON := flag.Bool("json", false, "Imprime o resultado em JSON")
	save := flag.Bool("save", false, "Persiste os produtos no Postgres (DATABASE_URL)")
	workers := flag.Int("workers", 0, "Documentos processados em paralelo (padrão WORKER_COUNT)")
	flag.Parse()

	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "uso: compare [-json] [-save] [-workers N] arquivos-ou-urls...")
		os.Exit(2)
	}
	if *workers <= 0 {
		*workers = cfg.WorkerCount
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	docs := loadDocuments(log, flag.Args())
	if len(docs) == 0 {
		log.Fatal("nenhum documento legível")
	}

	p := pipeline.New(supplier.DefaultRegistry(log), log, *workers)
	batch, err := p.ProcessBatch(ctx, docs)
	if err != nil {
		log.WithError(err).Warn("processamento interrompido, exibindo resultados parciais")
	}

	if *save {
		persist(ctx, log, cfg, batch.Products)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{"results": batch.Results, "reports": batch.Reports}); err != nil {
			log.WithError(err).Fatal("erro ao gerar JSON")
		}
		return
	}
	printReports(batch.Reports)
	printTable(batch.Results)
}

func loadDocuments(log logrus.FieldLogger, args []string) []document.Document {
	var docs []document.Document
	for _, arg := range args {
		var doc document.Document
		var err error
		if document.IsURL(arg) {
			doc, err = document.Fetch(arg)
		} else {
			doc, err = document.Load(arg)
		}
		if err != nil {
			log.WithField("source", arg).WithError(err).Error("erro ao carregar documento")
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

func persist(ctx context.Context, log logrus.FieldLogger, cfg *config.Config, products []model.RawProduct) {
	conn, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Error("persistência ignorada")
		return
	}
	defer conn.Close()

	repo := repository.NewProductRepository(conn, repository.SaveOptions{
		RatePerSecond: cfg.SaveRatePerSecond,
		MaxRetries:    cfg.SaveMaxRetries,
	}, log)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.WithError(err).Error("erro ao criar tabelas")
		return
	}
	summary, err := repo.SaveProducts(ctx, products)
	if err != nil {
		log.WithError(err).Error("persistência interrompida")
	}
	log.Infof("%d produtos salvos, %d sem alteração, %d com erro", summary.Saved, summary.Unchanged, summary.Failed)
}

func printReports(reports []pipeline.Report) {
	for _, r := range reports {
		line := fmt.Sprintf("%s: %d produtos", r.Source, r.Products)
		if r.Processor != "" {
			line += " (" + r.Processor + ")"
		}
		if r.Dropped > 0 {
			line += fmt.Sprintf(", %d descartados", r.Dropped)
		}
		if r.Error != "" {
			line += ", erro: " + r.Error
		}
		fmt.Fprintln(os.Stderr, line)
	}
}

func printTable(results []model.ComparisonResult) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CÓDIGO\tDESCRIÇÃO\tMELHOR PREÇO\tFORNECEDOR\tOUTROS")
	for _, r := range results {
		var others []string
		for _, p := range r.AllPrices[1:] {
			others = append(others, fmt.Sprintf("%s %.2f", p.Source, p.Price))
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\n", r.Code, r.Description, r.BestPrice, r.BestSource, strings.Join(others, "; "))
	}
	tw.Flush()
}
