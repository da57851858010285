package marketdata

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"factor-screen/internal/domain"
	"factor-screen/internal/returns"
)

// LoadFactorDirectory reads every CSV file in a directory as one factor
// level series (Date and Close columns), converts each to returns, and
// left-joins them into a single factor return table on the first file's
// calendar. The factor name is the file name without extension. Files are
// visited in lexical order so the column order is deterministic.
func LoadFactorDirectory(dir string) (*domain.ReturnTable, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read factor directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no csv files in %s", ErrNoData, dir)
	}

	var combined *domain.ReturnTable
	for _, file := range files {
		name := strings.TrimSuffix(file, filepath.Ext(file))
		series, err := loadFactorFile(filepath.Join(dir, file), name)
		if err != nil {
			return nil, err
		}
		table, err := returns.TableFromSeries(name, series)
		if err != nil {
			return nil, fmt.Errorf("factor %s: %w", name, err)
		}
		if combined == nil {
			combined = table
			continue
		}
		combined, err = returns.Align(combined, table)
		if err != nil {
			return nil, fmt.Errorf("join factor %s: %w", name, err)
		}
	}
	return combined, nil
}

// loadFactorFile reads one factor CSV into a return series.
func loadFactorFile(path, name string) ([]domain.ReturnPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open factor file: %w", err)
	}
	defer f.Close()

	prices, err := parseCloseCSV(f, name)
	if err != nil {
		return nil, err
	}
	return returns.FromClosePrices(prices), nil
}
