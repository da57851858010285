package reporting

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"factor-screen/internal/domain"
)

// WritePredictionWorkbook writes prediction artifacts to an xlsx file, one
// sheet per security. Plain and regularized artifacts go to separate
// workbooks, so callers filter by kind before writing.
func WritePredictionWorkbook(path string, artifacts []*domain.PredictionArtifact) error {
	if len(artifacts) == 0 {
		return fmt.Errorf("no artifacts to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, artifact := range artifacts {
		sheet := artifact.Security
		if i == 0 {
			// The workbook opens with one default sheet; claim it.
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("rename default sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("create sheet %s: %w", sheet, err)
			}
		}

		header := []interface{}{"Date", "Prediction", "Actual", "SquaredError"}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("write header on %s: %w", sheet, err)
		}
		for rowIdx, row := range artifact.Rows {
			cell, err := excelize.CoordinatesToCellName(1, rowIdx+2)
			if err != nil {
				return fmt.Errorf("cell name: %w", err)
			}
			values := []interface{}{
				domain.DateKey(row.Date), row.Predicted, row.Actual, row.SquaredError,
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return fmt.Errorf("write row on %s: %w", sheet, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

// FilterArtifacts selects artifacts of one model kind, preserving order.
func FilterArtifacts(artifacts []*domain.PredictionArtifact, kind string) []*domain.PredictionArtifact {
	var out []*domain.PredictionArtifact
	for _, a := range artifacts {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}
