// Package marketdata retrieves historical close prices over HTTP and loads
// factor level series from CSV files. Failures here are a per-instrument
// boundary concern: callers log and skip, nothing reaches the screening
// core.
package marketdata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"factor-screen/internal/domain"
)

// ErrNoData is returned when a symbol has no usable history in the
// requested range.
var ErrNoData = errors.New("no data for symbol")

// Interval selects the sampling frequency of fetched closes.
type Interval string

// Supported intervals.
const (
	IntervalDaily   Interval = "d"
	IntervalWeekly  Interval = "w"
	IntervalMonthly Interval = "m"
)

// DefaultBaseURL serves historical quotes as CSV.
const DefaultBaseURL = "https://stooq.com/q/d/l/"

// Client fetches daily close histories.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client against the default quote endpoint.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
	}
}

// WithBaseURL overrides the quote endpoint, for tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// ClosePrices fetches the close history of one symbol within [start, end].
// Returns ErrNoData when the endpoint has nothing for the symbol.
func (c *Client) ClosePrices(ctx context.Context, symbol string, start, end time.Time, interval Interval) ([]domain.ClosePrice, error) {
	q := url.Values{}
	q.Set("s", symbol)
	q.Set("d1", start.UTC().Format("20060102"))
	q.Set("d2", end.UTC().Format("20060102"))
	q.Set("i", string(interval))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", symbol, resp.StatusCode)
	}

	prices, err := parseCloseCSV(resp.Body, symbol)
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}
	return prices, nil
}

// parseCloseCSV reads a Date,...,Close,... CSV body into ordered close
// prices. Rows without a parseable date or close are skipped.
func parseCloseCSV(r io.Reader, symbol string) ([]domain.ClosePrice, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	dateIdx, closeIdx := -1, -1
	for i, name := range header {
		switch name {
		case "Date":
			dateIdx = i
		case "Close":
			closeIdx = i
		}
	}
	if dateIdx < 0 || closeIdx < 0 {
		return nil, fmt.Errorf("%w: %s: csv lacks Date/Close columns", ErrNoData, symbol)
	}

	var prices []domain.ClosePrice
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if len(record) <= dateIdx || len(record) <= closeIdx {
			continue
		}
		date, err := time.Parse(domain.DateLayout, record[dateIdx])
		if err != nil {
			continue
		}
		closeValue, err := strconv.ParseFloat(record[closeIdx], 64)
		if err != nil {
			continue
		}
		prices = append(prices, domain.ClosePrice{Symbol: symbol, Date: date.UTC(), Close: closeValue})
	}

	sort.Slice(prices, func(i, j int) bool { return prices[i].Date.Before(prices[j].Date) })
	return prices, nil
}
