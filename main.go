package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/insightdelivered/txn-ingest/internal/api"
	"github.com/insightdelivered/txn-ingest/internal/category"
	"github.com/insightdelivered/txn-ingest/internal/config"
	"github.com/insightdelivered/txn-ingest/internal/extractor"
	"github.com/insightdelivered/txn-ingest/internal/ingest"
	"github.com/insightdelivered/txn-ingest/internal/logger"
	"github.com/insightdelivered/txn-ingest/internal/models"
	"github.com/insightdelivered/txn-ingest/internal/normalize"
	"github.com/insightdelivered/txn-ingest/internal/remote"
	"github.com/insightdelivered/txn-ingest/internal/writer"
)

const version = "1.0.0"

// maxParallelFiles bounds how many inputs are read and parsed at once.
const maxParallelFiles = 4

type options struct {
	format      string
	output      string
	today       time.Time
	useModel    bool
	currency    string
	entriesOnly bool
	includeRaw  bool
}

// fileResult is one parsed input, kept in argument order.
type fileResult struct {
	path   string
	result *models.ParseResult
}

func main() {
	configFlag := flag.String("config", "ingest.yaml", "YAML config file (INGEST_CONFIG may hold it inline)")
	formatFlag := flag.String("format", "json", "Output format: json or csv")
	outputFlag := flag.String("output", "", "Output file path (defaults to stdout)")
	entriesOnlyFlag := flag.Bool("entries-only", false, "JSON: write one bare array of entries instead of a document per input")
	rawFlag := flag.Bool("raw", false, "CSV: add a column with the source line of each entry")
	todayFlag := flag.String("today", "", "Date used for undated input, YYYY-MM-DD (defaults to today)")
	serveFlag := flag.Bool("serve", false, "Run the HTTP API instead of parsing files")
	addrFlag := flag.String("addr", "", "Listen address for -serve (overrides config)")
	remoteFlag := flag.Bool("remote", false, "Classify with the online model instead of the local engine")
	currencyFlag := flag.String("currency", "", "Currency hint for the online model (overrides config)")
	taxonomyFlag := flag.String("taxonomy", "", "YAML taxonomy file (overrides config)")
	logLevelFlag := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Financial statement ingest
by Insight Delivered (QEA AutoLens)

Turns bank CSV exports, PDF statements and bank SMS alerts into
classified expense, income, transfer and account entries.

Usage:
  txn-ingest [flags] <input> [input2 ...]
  txn-ingest [flags] -          (read standard input)
  txn-ingest -serve [-addr :8080]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Parse a CSV export to JSON
  txn-ingest statement.csv

  # Parse several statements into one CSV file
  txn-ingest -format=csv -output=entries.csv jan.pdf feb.pdf mar.csv

  # One JSON array of every entry, the shape the online model returns
  txn-ingest -entries-only jan.csv feb.csv

  # Parse pasted SMS alerts, dating undated ones
  pbpaste | txn-ingest -today=2025-02-01 -

  # Serve the HTTP API
  txn-ingest -serve -addr=:9090
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("txn-ingest v%s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fatalf("Failed to load config: %v\n", err)
	}
	if *addrFlag != "" {
		cfg.ListenAddr = *addrFlag
	}
	if *currencyFlag != "" {
		cfg.Currency = *currencyFlag
	}
	if *taxonomyFlag != "" {
		cfg.TaxonomyFile = *taxonomyFlag
	}
	if *logLevelFlag != "" {
		cfg.LogLevel = *logLevelFlag
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	taxonomy, err := config.LoadTaxonomy(cfg.TaxonomyFile)
	if err != nil {
		fatalf("Failed to load taxonomy: %v\n", err)
	}
	engine := ingest.New(
		ingest.WithResolver(category.New(taxonomy)),
		ingest.WithLogger(log),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	var queue *remote.Queue
	if cfg.Remote.Enabled() {
		gen, err := remote.NewGeminiGenerator(ctx, cfg.Remote.APIKey, cfg.Remote.Model)
		if err != nil {
			fatalf("Failed to create Gemini client: %v\n", err)
		}
		client := remote.NewClient(gen, remote.WithTaxonomy(taxonomy), remote.WithClientLogger(log))
		queue = remote.NewQueue(client, remote.QueueConfig{
			Workers: cfg.Remote.Workers,
			Size:    cfg.Remote.QueueSize,
			RPS:     cfg.Remote.RPS,
		}, log)
		defer queue.Close()
	}

	if *serveFlag {
		if err := serve(ctx, cfg, engine, queue, log); err != nil {
			fatalf("Server error: %v\n", err)
		}
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	opts := options{
		format:      strings.ToLower(*formatFlag),
		output:      *outputFlag,
		useModel:    *remoteFlag,
		currency:    cfg.Currency,
		entriesOnly: *entriesOnlyFlag,
		includeRaw:  *rawFlag,
	}
	if opts.format != "json" && opts.format != "csv" {
		fatalf("Unknown format %q. Supported: json, csv\n", *formatFlag)
	}
	if opts.useModel && queue == nil {
		fatalf("-remote needs INGEST_GEMINI_API_KEY or remote.apiKey in the config\n")
	}
	opts.today = time.Now()
	if *todayFlag != "" {
		opts.today, err = time.Parse(normalize.Layout, *todayFlag)
		if err != nil {
			fatalf("Invalid -today %q, expected YYYY-MM-DD\n", *todayFlag)
		}
	}

	results, err := processFiles(ctx, flag.Args(), engine, queue, opts)
	if err != nil {
		fatalf("Error: %v\n", err)
	}
	if err := writeResults(results, opts); err != nil {
		fatalf("Error writing output: %v\n", err)
	}
}

// processFiles parses every input concurrently and returns the results in
// argument order. The first failure cancels the rest.
func processFiles(ctx context.Context, paths []string, engine *ingest.Engine, queue *remote.Queue, opts options) ([]fileResult, error) {
	results := make([]fileResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for i, path := range paths {
		g.Go(func() error {
			res, err := processFile(ctx, path, engine, queue, opts)
			if err != nil {
				return fmt.Errorf("processing %s: %w", path, err)
			}
			results[i] = fileResult{path: path, result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func processFile(ctx context.Context, path string, engine *ingest.Engine, queue *remote.Queue, opts options) (*models.ParseResult, error) {
	log := logger.WithFields(logger.FromContext(ctx), map[string]interface{}{"file": path})

	text, err := extractor.ReadFile(path)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("bytes", len(text)).Msg("input read")

	var res *models.ParseResult
	if opts.useModel {
		ticket, err := queue.Submit(ctx, text, opts.currency)
		if err != nil {
			return nil, err
		}
		entries, err := ticket.Wait(ctx)
		if err != nil {
			return nil, err
		}
		res = &models.ParseResult{Mode: models.ModeText, Entries: entries}
	} else {
		res = engine.Parse(text, opts.today)
	}

	log.Info().
		Str("mode", string(res.Mode)).
		Int("entries", len(res.Entries)).
		Int("skipped", len(res.Skipped)).
		Msg("parsed")
	if len(res.Entries) == 0 {
		log.Warn().Msg("no entries found; the input may not be a statement or alert")
	}
	return res, nil
}

func writeResults(results []fileResult, opts options) error {
	var all []models.Entry
	for _, r := range results {
		all = append(all, r.result.Entries...)
	}

	if opts.format == "csv" {
		w := &writer.CSVWriter{IncludeHeader: true, IncludeRaw: opts.includeRaw}
		if opts.output != "" {
			return w.WriteToFile(opts.output, all)
		}
		return w.Write(os.Stdout, all)
	}

	var out io.Writer = os.Stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("failed to create output file %q: %w", opts.output, err)
		}
		defer f.Close()
		out = f
	}

	w := &writer.JSONWriter{EntriesOnly: opts.entriesOnly}
	if opts.entriesOnly {
		return w.Write(out, "", &models.ParseResult{Entries: all})
	}
	for _, r := range results {
		if err := w.Write(out, filepath.Base(r.path), r.result); err != nil {
			return err
		}
	}
	return nil
}

func serve(ctx context.Context, cfg *config.Config, engine *ingest.Engine, queue *remote.Queue, log zerolog.Logger) error {
	h := &api.Handler{
		Engine:   engine,
		Currency: cfg.Currency,
		Version:  version,
		Log:      log,
	}
	if queue != nil {
		h.Remote = queue
	}
	app := api.NewApp(h)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Bool("remote", queue != nil).Msg("starting HTTP server")
		errCh <- app.Listen(cfg.ListenAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return nil
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
