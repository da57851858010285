package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"factor-screen/internal/domain"
	"factor-screen/internal/marketdata"
	"factor-screen/internal/storage"
	chstore "factor-screen/internal/storage/clickhouse"
	"factor-screen/internal/storage/migrations"
)

func main() {
	tickerList := flag.String("tickers", "", "Comma-separated tickers to ingest (required)")
	start := flag.String("start", "", "History start date YYYY-MM-DD (default: 5 years back)")
	end := flag.String("end", "", "History end date YYYY-MM-DD (default: today)")
	interval := flag.String("interval", "d", "Sampling interval: d, w, m")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (required)")
	flag.Parse()

	logger := log.New(os.Stderr, "[ingest] ", log.LstdFlags)

	if *tickerList == "" {
		logger.Fatal("--tickers is required")
	}
	if *clickhouseDSN == "" {
		logger.Fatal("--clickhouse-dsn is required")
	}
	startDate, endDate, err := parseRange(*start, *end)
	if err != nil {
		logger.Fatalf("Invalid date range: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Println("Shutdown signal received")
		cancel()
	}()

	conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
	if err != nil {
		logger.Fatalf("Migrations: %v", err)
	}
	defer conn.Close()

	var store storage.ClosePriceStore = chstore.NewClosePriceStore(conn)
	client := marketdata.NewClient()

	var ingested, failed int
	for _, ticker := range strings.Split(*tickerList, ",") {
		ticker = strings.TrimSpace(ticker)
		if ticker == "" {
			continue
		}
		prices, err := client.ClosePrices(ctx, ticker, startDate, endDate, marketdata.Interval(*interval))
		if err != nil {
			logger.Printf("Fetch %s: %v", ticker, err)
			failed++
			continue
		}
		if err := store.InsertBulk(ctx, prices); err != nil {
			logger.Printf("Store %s: %v", ticker, err)
			failed++
			continue
		}
		logger.Printf("Ingested %s: %d rows", ticker, len(prices))
		ingested++
	}
	logger.Printf("Done: %d ingested, %d failed", ingested, failed)
	if failed > 0 && ingested == 0 {
		os.Exit(1)
	}
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	endDate := time.Now().UTC()
	startDate := endDate.AddDate(-5, 0, 0)
	var err error
	if start != "" {
		startDate, err = time.Parse(domain.DateLayout, start)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if end != "" {
		endDate, err = time.Parse(domain.DateLayout, end)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return startDate, endDate, nil
}
