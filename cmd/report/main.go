package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"factor-screen/internal/domain"
	"factor-screen/internal/portfolio"
	"factor-screen/internal/reporting"
	chstore "factor-screen/internal/storage/clickhouse"
	pgstore "factor-screen/internal/storage/postgres"
)

func main() {
	runID := flag.String("run-id", "", "Run identifier to report on (required)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string for models/portfolio")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string for predictions")
	security := flag.String("security", "", "Render the prediction artifact for one security")
	kind := flag.String("kind", domain.ModelKindPlain, "Artifact kind: plain or regularized")
	flag.Parse()

	logger := log.New(os.Stderr, "[report] ", log.LstdFlags)

	if *runID == "" {
		logger.Fatal("--run-id is required")
	}
	if *postgresDSN == "" && *clickhouseDSN == "" {
		logger.Fatal("at least one of --postgres-dsn, --clickhouse-dsn is required")
	}

	ctx := context.Background()

	if *postgresDSN != "" {
		if err := reportPortfolio(ctx, *postgresDSN, *runID); err != nil {
			logger.Fatalf("Portfolio report: %v", err)
		}
	}

	if *clickhouseDSN != "" && *security != "" {
		if err := reportArtifact(ctx, *clickhouseDSN, *runID, *security, *kind); err != nil {
			logger.Fatalf("Artifact report: %v", err)
		}
	}
}

// reportPortfolio rebuilds the factor→securities mapping from the stored
// memberships and prints the summary plus the per-model table.
func reportPortfolio(ctx context.Context, dsn, runID string) error {
	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	memberships, err := pgstore.NewPortfolioStore(pool).GetByRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("load portfolio: %w", err)
	}
	mapping := portfolio.NewMapping()
	for _, m := range memberships {
		mapping.Record(m.Factor, m.Security)
	}
	fmt.Print(reporting.RenderSummary(mapping))

	records, err := pgstore.NewModelStore(pool).GetByRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("load models: %w", err)
	}
	for _, rec := range records {
		fmt.Printf("%s: adj R² %.4f, mse %.6g, regularized mse %.6g\n",
			rec.Security, rec.AdjR2, rec.MSE, rec.MSERegular)
	}
	return nil
}

func reportArtifact(ctx context.Context, dsn, runID, security, kind string) error {
	conn, err := chstore.NewConn(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close()

	artifact, err := chstore.NewPredictionStore(conn).GetArtifact(ctx, runID, security, kind)
	if err != nil {
		return fmt.Errorf("load artifact %s/%s: %w", security, kind, err)
	}
	fmt.Print(reporting.RenderArtifactCSV(artifact))
	return nil
}
