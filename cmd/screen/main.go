package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"factor-screen/internal/domain"
	"factor-screen/internal/marketdata"
	"factor-screen/internal/reporting"
	"factor-screen/internal/returns"
	"factor-screen/internal/screening"
	"factor-screen/internal/storage"
	chstore "factor-screen/internal/storage/clickhouse"
	"factor-screen/internal/storage/migrations"
	pgstore "factor-screen/internal/storage/postgres"
	"factor-screen/internal/universe"
)

func main() {
	// Universe
	tickerList := flag.String("tickers", "", "Comma-separated tickers to screen (default: sampled from the index)")
	universeSize := flag.Int("universe-size", 10, "Number of tickers to sample when -tickers is empty")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Seed for universe sampling")

	// Data
	factorDir := flag.String("factor-dir", "", "Directory of factor CSV files (required)")
	start := flag.String("start", "", "History start date YYYY-MM-DD (default: 5 years back)")
	end := flag.String("end", "", "History end date YYYY-MM-DD (default: today)")
	interval := flag.String("interval", "d", "Sampling interval: d, w, m")

	// Run parameters
	signifLevel := flag.Float64("signif-level", domain.DefaultSignifLevel, "p-value cutoff for factor elimination")
	r2Threshold := flag.Float64("r2-threshold", domain.DefaultR2Threshold, "Minimum adjusted R² to accept a model")
	splitRatio := flag.Float64("split-ratio", domain.DefaultSplitRatio, "Train/test split ratio")
	alpha := flag.Float64("alpha", domain.DefaultRegularizationAlpha, "Elastic-net shrinkage for the regularized evaluation")

	// Output
	outputDir := flag.String("output-dir", "output", "Directory for reports")
	writeXLSX := flag.Bool("xlsx", true, "Write prediction workbooks")
	verbose := flag.Bool("verbose", false, "Per-security progress logging")

	// Persistence
	runID := flag.String("run-id", "", "Run identifier for persisted results (default: timestamp)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string for models/portfolio")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string for predictions")

	flag.Parse()

	logger := log.New(os.Stderr, "[screen] ", log.LstdFlags)

	if *factorDir == "" {
		logger.Fatal("--factor-dir is required")
	}
	startDate, endDate, err := parseRange(*start, *end)
	if err != nil {
		logger.Fatalf("Invalid date range: %v", err)
	}
	if *runID == "" {
		*runID = time.Now().UTC().Format("20060102T150405Z")
	}

	cfg := domain.RunConfig{
		SignifLevel:         *signifLevel,
		R2Threshold:         *r2Threshold,
		SplitRatio:          *splitRatio,
		RegularizationAlpha: *alpha,
	}
	runner, err := screening.NewRunner(cfg)
	if err != nil {
		logger.Fatalf("Configuration: %v", err)
	}
	runner = runner.WithVerbose(*verbose)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Println("Shutdown signal received")
		cancel()
	}()

	tickers, err := resolveUniverse(ctx, *tickerList, *universeSize, *seed, logger)
	if err != nil {
		logger.Fatalf("Resolve universe: %v", err)
	}
	logger.Printf("Screening %d tickers: %s", len(tickers), strings.Join(tickers, ", "))

	rawSecurities := fetchSecurities(ctx, tickers, startDate, endDate, marketdata.Interval(*interval), logger)
	if len(rawSecurities) == 0 {
		logger.Fatal("No security has usable history")
	}

	factors, err := marketdata.LoadFactorDirectory(*factorDir)
	if err != nil {
		logger.Fatalf("Load factors: %v", err)
	}

	securities, alignedFactors, skipped, err := screening.PrepareInputs(rawSecurities, factors)
	if err != nil {
		logger.Fatalf("Prepare inputs: %v", err)
	}
	for _, id := range skipped {
		logger.Printf("Could not align %s, skipping", id)
	}

	result, err := runner.Run(ctx, securities, alignedFactors)
	if err != nil {
		logger.Fatalf("Run: %v", err)
	}

	fmt.Print(reporting.RenderSummary(result.Portfolio))
	fmt.Print(reporting.RenderMSEComparison(result.Accepted))

	if err := writeReports(*outputDir, *writeXLSX, result); err != nil {
		logger.Fatalf("Write reports: %v", err)
	}
	logger.Printf("Reports written to %s", *outputDir)

	if *postgresDSN != "" || *clickhouseDSN != "" {
		if err := persist(ctx, *runID, *postgresDSN, *clickhouseDSN, result); err != nil {
			logger.Fatalf("Persist run %s: %v", *runID, err)
		}
		logger.Printf("Run %s persisted", *runID)
	}
}

// resolveUniverse returns the explicit ticker list, or samples the index.
func resolveUniverse(ctx context.Context, tickerList string, n int, seed int64, logger *log.Logger) ([]string, error) {
	if tickerList != "" {
		var out []string
		for _, t := range strings.Split(tickerList, ",") {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
		return out, nil
	}

	logger.Printf("Sampling %d tickers from the index constituents", n)
	all, err := universe.NewScraper().Tickers(ctx)
	if err != nil {
		return nil, err
	}
	return universe.SampleN(all, n, seed), nil
}

// fetchSecurities downloads and differences each ticker's history. A
// ticker that cannot be fetched is logged and skipped; it never reaches
// the screening core.
func fetchSecurities(ctx context.Context, tickers []string, start, end time.Time, interval marketdata.Interval, logger *log.Logger) []domain.SecurityReturns {
	client := marketdata.NewClient()
	var out []domain.SecurityReturns
	for _, ticker := range tickers {
		prices, err := client.ClosePrices(ctx, ticker, start, end, interval)
		if err != nil {
			logger.Printf("Could not add %s: %v", ticker, err)
			continue
		}
		series := returns.FromClosePrices(prices)
		if len(series) == 0 {
			logger.Printf("Could not add %s: insufficient history", ticker)
			continue
		}
		out = append(out, domain.SecurityReturns{ID: ticker, Series: series})
	}
	return out
}

func writeReports(dir string, writeXLSX bool, result *screening.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	files := map[string]string{
		"portfolio.csv": reporting.RenderPortfolioCSV(result.Portfolio),
		"results.csv":   reporting.RenderResultsCSV(result.Accepted),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	if !writeXLSX || len(result.Accepted) == 0 {
		return nil
	}
	var plain, regularized []*domain.PredictionArtifact
	for i := range result.Accepted {
		plain = append(plain, result.Accepted[i].Plain)
		regularized = append(regularized, result.Accepted[i].Regularized)
	}
	if err := reporting.WritePredictionWorkbook(filepath.Join(dir, "prediction_output.xlsx"), plain); err != nil {
		return err
	}
	return reporting.WritePredictionWorkbook(filepath.Join(dir, "regularized_prediction_output.xlsx"), regularized)
}

// persist stores run results: models and memberships to Postgres,
// prediction artifacts to ClickHouse. Either backend may be absent.
func persist(ctx context.Context, runID, postgresDSN, clickhouseDSN string, result *screening.Result) error {
	now := time.Now().UTC()

	if postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return err
		}

		var modelStore storage.ModelStore = pgstore.NewModelStore(pool)
		for i := range result.Accepted {
			r := &result.Accepted[i]
			rec := &domain.ModelRecord{
				RunID:      runID,
				Security:   r.Security,
				Factors:    r.Model.Factors(),
				AdjR2:      r.Model.AdjRSquared,
				MSE:        r.PlainMSE,
				MSERegular: r.RegularizedMSE,
				AcceptedAt: now,
			}
			if err := modelStore.Insert(ctx, rec); err != nil {
				return fmt.Errorf("persist model %s: %w", r.Security, err)
			}
		}

		var portfolioStore storage.PortfolioStore = pgstore.NewPortfolioStore(pool)
		if err := portfolioStore.InsertBulk(ctx, result.Portfolio.Memberships(runID)); err != nil {
			return fmt.Errorf("persist portfolio: %w", err)
		}
	}

	if clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			return err
		}
		defer conn.Close()

		var predictionStore storage.PredictionStore = chstore.NewPredictionStore(conn)
		for i := range result.Accepted {
			r := &result.Accepted[i]
			if err := predictionStore.InsertArtifact(ctx, runID, r.Plain); err != nil {
				return fmt.Errorf("persist predictions %s: %w", r.Security, err)
			}
			if err := predictionStore.InsertArtifact(ctx, runID, r.Regularized); err != nil {
				return fmt.Errorf("persist regularized predictions %s: %w", r.Security, err)
			}
		}
	}

	return nil
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	endDate := time.Now().UTC()
	startDate := endDate.AddDate(-5, 0, 0)
	var err error
	if start != "" {
		startDate, err = time.Parse(domain.DateLayout, start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse start: %w", err)
		}
	}
	if end != "" {
		endDate, err = time.Parse(domain.DateLayout, end)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse end: %w", err)
		}
	}
	if !startDate.Before(endDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("start %s not before end %s", start, end)
	}
	return startDate, endDate, nil
}
