package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"legis-ingest/artifacts"
	"legis-ingest/citation"
	"legis-ingest/config"
	"legis-ingest/database"
	"legis-ingest/ingest"
	"legis-ingest/origin"
)

func main() {
	pdfPath := flag.String("pdf", "", "path to the source PDF file")
	documentID := flag.String("document-id", "", "caller-supplied document identifier (normalized before use)")
	documentType := flag.String("type", "", "document type: LAW, DECREE, IN, LC, RULING, SUMMARY")
	number := flag.String("number", "", "document number")
	year := flag.Int("year", 0, "document year")
	validateArticles := flag.Bool("validate-articles", false, "run the optional article-coverage validator")
	expectedFirst := flag.Int("expected-first-article", 0, "expected first article number (requires -validate-articles)")
	expectedLast := flag.Int("expected-last-article", 0, "expected last article number (requires -validate-articles)")
	dbURL := flag.String("database-url", "", "optional Postgres connection string for the idempotency/audit store")
	artifactsDir := flag.String("artifacts-dir", "", "optional directory to write canonical.md and offsets.json into")
	flag.Parse()

	logger, err := config.InitLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	cfg := config.Load(logger)

	if cfg.CanonicalNormsPath != "" {
		if err := citation.LoadRegistry(cfg.CanonicalNormsPath); err != nil {
			logger.Fatal("failed to load canonical norms registry", zap.Error(err))
		}
		if err := origin.LoadNorms(cfg.CanonicalNormsPath); err != nil {
			logger.Fatal("failed to load canonical norms registry", zap.Error(err))
		}
	}

	if *pdfPath == "" || *documentType == "" {
		logger.Fatal("missing required flags", zap.String("usage", "-pdf path/to/file.pdf -document-id \"LEI 14133/2021\" -type LAW -number 14133 -year 2021"))
	}

	pdfBytes, err := os.ReadFile(*pdfPath)
	if err != nil {
		logger.Fatal("failed to read pdf", zap.String("path", *pdfPath), zap.Error(err))
	}

	ctx := context.Background()

	connStr := *dbURL
	if connStr == "" {
		connStr = cfg.DatabaseURL
	}
	var store *database.IngestionStore
	if connStr != "" {
		pg, err := database.NewPostgresStore(connStr)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal("failed to ensure database schema", zap.Error(err))
		}
		store = database.NewIngestionStore(pg)
	}

	req := ingest.Request{
		PDFBytes:       pdfBytes,
		DocumentID:     *documentID,
		DocumentType:   ingest.DocumentType(*documentType),
		Number:         *number,
		Year:           *year,
		ExtractionMode: ingest.NativeRegex,
	}
	if *validateArticles {
		req.ValidateArticles = true
		req.ExpectedFirstArticle = expectedFirst
		req.ExpectedLastArticle = expectedLast
	}

	result := ingest.Ingest(ctx, logger, cfg, req)

	if *artifactsDir != "" && result.Status == ingest.StatusCompleted {
		if err := artifacts.Write(*artifactsDir, result.CanonicalText, result.Chunks, string(ingest.NativeRegex)); err != nil {
			logger.Warn("failed to write artifacts", zap.Error(err))
		}
	}

	if store != nil && result.CanonicalHash != "" {
		if prior, err := store.FindByHash(ctx, result.CanonicalHash); err == nil {
			logger.Info("document was already ingested",
				zap.String("document_id", prior.DocumentID),
				zap.Time("first_ingested_at", prior.CreatedAt))
		} else if !errors.Is(err, database.ErrNoPriorRun) {
			logger.Warn("failed to look up prior ingestion run", zap.Error(err))
		}
		if err := store.RecordResult(ctx, result); err != nil {
			logger.Warn("failed to record ingestion run", zap.Error(err))
		}
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Fatal("failed to marshal ingest result", zap.Error(err))
	}
	fmt.Println(string(out))

	if result.Status == ingest.StatusFailed {
		os.Exit(1)
	}
}
