package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"datastudio/internal/cleaning"
	"datastudio/internal/cloud"
	"datastudio/internal/config"
	"datastudio/internal/eda"
	apierrors "datastudio/internal/errors"
	"datastudio/internal/exporter"
	"datastudio/internal/infrastructure"
	"datastudio/internal/ingest"
	"datastudio/internal/report"
	"datastudio/internal/validation"
)

// options carries the parsed command line.
type options struct {
	inPath   string
	outDir   string
	noCharts bool
	bucket   string
	prefix   string
	region   string
	creds    cloud.Credentials
}

func main() {
	inPath := flag.String("in", "", "input dataset file (csv, xlsx, xls, json, parquet, pdf, txt, tsv)")
	outDir := flag.String("out", ".", "output directory for the cleaned CSV, report, and charts")
	noCharts := flag.Bool("no-charts", false, "skip writing the charts HTML page")
	s3Bucket := flag.String("s3-bucket", "", "optional S3 bucket to export outputs to")
	s3Prefix := flag.String("s3-prefix", "", "S3 key prefix (defaults to the configured export prefix)")
	s3Region := flag.String("s3-region", "", "AWS region (defaults to the configured export region)")
	s3Key := flag.String("s3-key", "", "AWS access key id")
	s3Secret := flag.String("s3-secret", "", "AWS secret access key")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -in <dataset> [-out <dir>] [-s3-bucket <bucket> -s3-key <id> -s3-secret <secret>]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	opts := options{
		inPath:   *inPath,
		outDir:   *outDir,
		noCharts: *noCharts,
		bucket:   *s3Bucket,
		prefix:   *s3Prefix,
		region:   *s3Region,
		creds: cloud.Credentials{
			AccessKeyID:     *s3Key,
			SecretAccessKey: *s3Secret,
		},
	}

	ctx := infrastructure.EnsureTraceID(context.Background())
	if err := run(ctx, logger, cfg, opts); err != nil {
		logger.Error("Analysis failed",
			slog.String("input", opts.inPath),
			slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		os.Exit(1)
	}
}

// run executes the full pipeline once: ingest, clean, summarize, report,
// write outputs, and optionally push them to S3.
func run(ctx context.Context, logger *slog.Logger, cfg *config.Config, opts options) error {
	raw, err := os.ReadFile(opts.inPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	filename := filepath.Base(opts.inPath)

	validator := validation.NewUploadValidator(logger, cfg.Analysis.MaxUploadBytes)
	if err := validator.ValidateUpload(filename, int64(len(raw))); err != nil {
		return err
	}

	logger.Info("Reading input file",
		slog.String("filename", filename),
		slog.Int("bytes", len(raw)))

	reader := ingest.NewReader(logger)
	result, err := reader.Read(ctx, filename, raw)
	if err != nil {
		return err
	}
	if result.Table.RowCount() == 0 {
		return apierrors.NewEmptyResultError(filename)
	}

	pipeline := cleaning.NewPipeline(logger, cleaning.DefaultPipelineConfig())
	cleaned, cleaningReport := pipeline.Clean(ctx, result.Table)

	analyzer := eda.NewAnalyzer(logger)
	summaries := analyzer.Summarize(ctx, cleaned)

	generatedAt := time.Now().UTC()
	builder := report.NewBuilder(logger)
	reportMD := builder.Build(ctx, report.Input{
		GeneratedAt:     generatedAt,
		Format:          result.Format,
		RawRows:         result.Table.RowCount(),
		RawColumns:      result.Table.ColumnCount(),
		CleanedRows:     cleaned.RowCount(),
		CleanedColumns:  cleaned.ColumnCount(),
		Columns:         cleaned.ColumnNames(),
		IngestionNotes:  result.Notes,
		Transformations: cleaningReport.Transformations,
		Summaries:       summaries,
	})

	fmt.Printf("Ingested %d rows, cleaned down to %d (dropped %d duplicates, imputed %d cells)\n",
		result.Table.RowCount(), cleaned.RowCount(),
		cleaningReport.DroppedDuplicates, cleaningReport.ImputedCells)

	if err := os.MkdirAll(opts.outDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	stem := validation.Stem(filename)
	csvWriter := exporter.NewCSVWriter(logger)

	csvPath := filepath.Join(opts.outDir, exporter.CleanedDataName(stem))
	if err := csvWriter.WriteFile(ctx, csvPath, cleaned); err != nil {
		return err
	}
	fmt.Printf("Cleaned data written: %s\n", csvPath)

	reportPath := filepath.Join(opts.outDir, exporter.ReportName(generatedAt))
	if err := os.WriteFile(reportPath, []byte(reportMD), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Printf("Analysis report written: %s\n", reportPath)

	if !opts.noCharts {
		chartsPath := filepath.Join(opts.outDir, "charts.html")
		f, err := os.Create(chartsPath)
		if err != nil {
			return fmt.Errorf("create charts file: %w", err)
		}
		if err := analyzer.Dashboard(ctx, cleaned).Render(f); err != nil {
			f.Close()
			return fmt.Errorf("render charts: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close charts file: %w", err)
		}
		fmt.Printf("Charts written: %s\n", chartsPath)
	}

	if opts.bucket != "" {
		region := opts.region
		if region == "" {
			region = cfg.Export.DefaultRegion
		}
		prefix := opts.prefix
		if prefix == "" {
			prefix = cfg.Export.DefaultPrefix
		}

		csvBytes, err := csvWriter.Bytes(ctx, cleaned)
		if err != nil {
			return fmt.Errorf("encode cleaned CSV: %w", err)
		}

		uploadCtx := ctx
		if cfg.Export.UploadTimeout > 0 {
			var cancel context.CancelFunc
			uploadCtx, cancel = context.WithTimeout(ctx, cfg.Export.UploadTimeout)
			defer cancel()
		}

		locators, err := cloud.NewExporter(logger).Export(uploadCtx, cloud.ExportInput{
			Bucket:      opts.bucket,
			Region:      region,
			Credentials: opts.creds,
			Objects: []cloud.Object{
				{
					Key:         cloud.ObjectKey(prefix, exporter.CleanedDataName(stem)),
					Body:        csvBytes,
					ContentType: exporter.CSVContentType,
				},
				{
					Key:         cloud.ObjectKey(prefix, exporter.ReportObjectName(generatedAt)),
					Body:        []byte(reportMD),
					ContentType: exporter.MarkdownContentType,
				},
			},
		})
		if err != nil {
			return err
		}
		fmt.Println("Uploaded successfully:")
		for _, locator := range locators {
			fmt.Printf("- %s\n", locator)
		}
	}

	logger.Info("Analysis complete",
		slog.String("filename", filename),
		slog.String("format", string(result.Format)),
		slog.Int("cleaned_rows", cleaned.RowCount()))

	return nil
}
