package api

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"pricelist/internal/aggregate"
	"pricelist/internal/document"
	"pricelist/internal/model"
	"pricelist/internal/pipeline"
	"pricelist/internal/repository"
)

const defaultMaxUpload = 32 << 20

type Batcher interface {
	MergeBatch(ctx context.Context, existing map[string]*model.ComparisonResult, docs []document.Document) (pipeline.Batch, error)
}

type RunCache interface {
	Save(ctx context.Context, runID string, results []model.ComparisonResult) error
	Load(ctx context.Context, runID string) ([]model.ComparisonResult, error)
}

type ProductLister interface {
	List(ctx context.Context, filter string) ([]model.ComparisonResult, error)
}

type ProductSaver interface {
	SaveProducts(ctx context.Context, products []model.RawProduct) (repository.SaveSummary, error)
}

// Server serves uploads and stored comparisons. Runs, Products and Saver
// are optional; a nil one disables the feature behind it.
type Server struct {
	Pipeline Batcher
	Runs     RunCache
	Products ProductLister
	Saver    ProductSaver
	Log      logrus.FieldLogger

	MaxUploadBytes int64
}

type UploadResponse struct {
	Run     string                   `json:"run"`
	Results []model.ComparisonResult `json:"results"`
	Reports []pipeline.Report        `json:"reports"`
	Saved   *repository.SaveSummary  `json:"saved,omitempty"`
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /products", s.handleProducts)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	return c.Handler(mux)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	limit := s.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUpload
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		http.Error(w, "formulário inválido: "+err.Error(), http.StatusBadRequest)
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		http.Error(w, "nenhum arquivo enviado no campo files", http.StatusBadRequest)
		return
	}

	var docs []document.Document
	var rejected []pipeline.Report
	for _, fh := range files {
		doc, err := readUpload(fh)
		if err != nil {
			s.Log.WithField("source", fh.Filename).WithError(err).Warn("arquivo rejeitado")
			rejected = append(rejected, pipeline.Report{Source: fh.Filename, Error: err.Error()})
			continue
		}
		docs = append(docs, doc)
	}

	ctx := r.Context()
	run := strings.TrimSpace(r.FormValue("run"))
	var existing map[string]*model.ComparisonResult
	switch {
	case run != "" && s.Runs == nil:
		s.Log.WithField("run", run).Warn("cache de execuções desabilitado, emitindo nova execução")
		run = uuid.NewString()
	case run == "":
		run = uuid.NewString()
	default:
		previous, err := s.Runs.Load(ctx, run)
		if err != nil {
			s.Log.WithField("run", run).WithError(err).Warn("falha ao carregar execução anterior")
		}
		existing = aggregate.FromList(previous)
	}

	batch, err := s.Pipeline.MergeBatch(ctx, existing, docs)
	if err != nil {
		http.Error(w, "processamento interrompido: "+err.Error(), http.StatusServiceUnavailable)
		return
	}

	if s.Runs != nil {
		if err := s.Runs.Save(ctx, run, batch.Results); err != nil {
			s.Log.WithField("run", run).WithError(err).Warn("falha ao salvar execução")
		}
	}

	resp := UploadResponse{
		Run:     run,
		Results: batch.Results,
		Reports: append(rejected, batch.Reports...),
	}
	if s.Saver != nil && len(batch.Products) > 0 {
		summary, err := s.Saver.SaveProducts(ctx, batch.Products)
		if err != nil {
			s.Log.WithError(err).Error("erro ao persistir produtos")
		} else {
			resp.Saved = &summary
		}
	}
	if resp.Results == nil {
		resp.Results = []model.ComparisonResult{}
	}

	s.Log.WithFields(logrus.Fields{
		"run":       run,
		"documents": len(files),
		"results":   len(resp.Results),
	}).Info("upload processado")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	if s.Products == nil {
		http.Error(w, "persistência desabilitada", http.StatusServiceUnavailable)
		return
	}
	results, err := s.Products.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.Log.WithError(err).Error("erro ao listar produtos")
		http.Error(w, "erro ao listar produtos", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []model.ComparisonResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func readUpload(fh *multipart.FileHeader) (document.Document, error) {
	f, err := fh.Open()
	if err != nil {
		return document.Document{}, err
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return document.Document{}, err
	}
	return document.FromBytes(fh.Filename, b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
