package reporting

import (
	"fmt"
	"strings"

	"factor-screen/internal/domain"
	"factor-screen/internal/portfolio"
	"factor-screen/internal/screening"
)

// RenderPortfolioCSV renders the portfolio mapping as CSV, one row per
// (factor, security) pair.
func RenderPortfolioCSV(mapping *portfolio.Mapping) string {
	var sb strings.Builder
	sb.WriteString("factor,security\n")
	for _, factor := range mapping.Factors() {
		for _, security := range mapping.Securities(factor) {
			sb.WriteString(fmt.Sprintf("%s,%s\n", factor, security))
		}
	}
	return sb.String()
}

// RenderResultsCSV renders the per-security acceptance table: surviving
// factors, adjusted R² and both out-of-sample errors.
func RenderResultsCSV(results []screening.SecurityResult) string {
	var sb strings.Builder
	sb.WriteString("security,factors,adj_r2,mse,mse_regularized\n")
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("%s,%s,%.6f,%.6f,%.6f\n",
			r.Security,
			strings.Join(r.Model.Factors(), ";"),
			r.Model.AdjRSquared,
			r.PlainMSE,
			r.RegularizedMSE,
		))
	}
	return sb.String()
}

// RenderArtifactCSV renders one prediction artifact as CSV.
func RenderArtifactCSV(artifact *domain.PredictionArtifact) string {
	var sb strings.Builder
	sb.WriteString("date,predicted,actual,squared_error\n")
	for _, row := range artifact.Rows {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.6f,%.6f\n",
			domain.DateKey(row.Date), row.Predicted, row.Actual, row.SquaredError))
	}
	return sb.String()
}
