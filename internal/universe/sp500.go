// Package universe selects the securities a screening run analyzes.
package universe

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ConstituentsURL lists the current S&P 500 members.
const ConstituentsURL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"

// Scraper fetches index constituent tickers.
type Scraper struct {
	httpClient *http.Client
	url        string
}

// NewScraper creates a scraper against the default constituents page.
func NewScraper() *Scraper {
	return &Scraper{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		url:        ConstituentsURL,
	}
}

// WithURL overrides the constituents page, for tests and mirrors.
func (s *Scraper) WithURL(url string) *Scraper {
	s.url = url
	return s
}

// Tickers fetches and parses the constituents table into a ticker list, in
// page order.
func (s *Scraper) Tickers(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch constituents: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("constituents page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse constituents page: %w", err)
	}
	return ParseConstituents(doc)
}

// ParseConstituents extracts tickers from the first sortable wikitable:
// one row per company, ticker in the first cell.
func ParseConstituents(doc *goquery.Document) ([]string, error) {
	table := doc.Find("table.wikitable.sortable").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no constituents table found")
	}

	var tickers []string
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header row
		}
		ticker := strings.TrimSpace(row.Find("td").First().Text())
		if ticker != "" {
			tickers = append(tickers, ticker)
		}
	})
	if len(tickers) == 0 {
		return nil, fmt.Errorf("constituents table has no ticker rows")
	}
	return tickers, nil
}

// SampleN returns n tickers drawn without replacement using the seeded
// source, so a run is reproducible. n larger than the list returns the
// whole list shuffled.
func SampleN(tickers []string, n int, seed int64) []string {
	shuffled := make([]string, len(tickers))
	copy(shuffled, tickers)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
