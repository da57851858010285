// Package reporting renders run results: text summary, CSV tables and
// per-ticker xlsx prediction workbooks.
package reporting

import (
	"fmt"
	"strings"

	"factor-screen/internal/portfolio"
	"factor-screen/internal/screening"
)

// RenderSummary produces the human-readable correlation summary for a
// completed run.
func RenderSummary(mapping *portfolio.Mapping) string {
	var sb strings.Builder

	if mapping.Len() == 0 {
		sb.WriteString("No security cleared the significance and fit thresholds.\n")
		return sb.String()
	}

	sb.WriteString("The returns of the following securities are correlated with an economic factor to a statistically significant degree:\n")
	for factor, securities := range mapping.Summarize() {
		verb := "is"
		if len(securities) > 1 {
			verb = "are"
		}
		sb.WriteString(fmt.Sprintf("\t%s %s correlated with the %s factor\n",
			strings.Join(securities, ", "), verb, factor))
	}
	return sb.String()
}

// RenderMSEComparison renders per-security out-of-sample errors for the
// plain and regularized models.
func RenderMSEComparison(results []screening.SecurityResult) string {
	var sb strings.Builder
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("%s: %d factors, mse %.6g, regularized mse %.6g\n",
			r.Security, len(r.Model.Factors()), r.PlainMSE, r.RegularizedMSE))
	}
	return sb.String()
}
