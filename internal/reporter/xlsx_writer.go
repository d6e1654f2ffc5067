package reporter

import (
	"fmt"
	"io"

	"github.com/aleister1102/canonguard/internal/common/errorwrapper"
	"github.com/aleister1102/canonguard/internal/models"
	"github.com/xuri/excelize/v2"
)

type xlsxWriter struct{}

func (xlsxWriter) Extension() string { return "xlsx" }

// Write renders the workbook. Issues and Matches sheets are only added when non-empty.
func (xlsxWriter) Write(w io.Writer, report *Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errorwrapper.WrapError(err, "failed to create header style")
	}

	if err := f.SetSheetName("Sheet1", SheetAllResults); err != nil {
		return errorwrapper.WrapError(err, "failed to rename default sheet")
	}
	if err := writeRecordSheet(f, SheetAllResults, report.Records, headerStyle); err != nil {
		return err
	}

	if err := addSheet(f, SheetSummary); err != nil {
		return err
	}
	if err := writeSummarySheet(f, Summarize(report.Records), headerStyle); err != nil {
		return err
	}

	if issues := Issues(report.Records); len(issues) > 0 {
		if err := addSheet(f, SheetIssues); err != nil {
			return err
		}
		if err := writeRecordSheet(f, SheetIssues, issues, headerStyle); err != nil {
			return err
		}
	}

	if matches := Matches(report.Records); len(matches) > 0 {
		if err := addSheet(f, SheetMatches); err != nil {
			return err
		}
		if err := writeRecordSheet(f, SheetMatches, matches, headerStyle); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return errorwrapper.WrapError(err, "failed to write workbook")
	}
	return nil
}

func addSheet(f *excelize.File, name string) error {
	if _, err := f.NewSheet(name); err != nil {
		return errorwrapper.WrapError(err, fmt.Sprintf("failed to add sheet '%s'", name))
	}
	return nil
}

func writeRecordSheet(f *excelize.File, sheet string, records []models.PageRecord, headerStyle int) error {
	header := make([]interface{}, len(models.PageRecordColumns))
	for i, col := range models.PageRecordColumns {
		header[i] = col
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "G1", headerStyle); err != nil {
		return errorwrapper.WrapError(err, "failed to style header row")
	}

	for i, r := range records {
		if err := setRow(f, sheet, i+2, recordCells(r)); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(sheet, "A", "C", 60)
	_ = f.SetColWidth(sheet, "E", "E", 40)
	return nil
}

// recordCells keeps numeric columns numeric so spreadsheets can aggregate them
func recordCells(r models.PageRecord) []interface{} {
	cells := []interface{}{
		r.URL,
		models.StringValue(r.FinalURL),
		models.StringValue(r.CanonicalURL),
		string(r.Status),
		models.StringValue(r.ErrorDetail),
		nil,
		nil,
	}
	if r.ResponseTimeSeconds != nil {
		cells[5] = *r.ResponseTimeSeconds
	}
	if r.HTTPStatus != nil {
		cells[6] = *r.HTTPStatus
	}
	return cells
}

func writeSummarySheet(f *excelize.File, summary Summary, headerStyle int) error {
	rows := [][]interface{}{{"Status", "Count", "Percentage"}}
	for _, sc := range summary.StatusBreakdown {
		rows = append(rows, []interface{}{sc.Label, sc.Count, fmt.Sprintf("%.1f%%", sc.Percentage)})
	}
	rows = append(rows, []interface{}{TotalRowLabel, summary.TotalURLs, "100.0%"})
	if summary.ResponseTimes != nil {
		rows = append(rows, []interface{}{AvgResponseTimeLabel, fmt.Sprintf("%.2fs", summary.ResponseTimes.Average), ""})
	}
	for _, sc := range summary.HTTPBreakdown {
		rows = append(rows, []interface{}{sc.Label, sc.Count, fmt.Sprintf("%.1f%%", sc.Percentage)})
	}

	for i, row := range rows {
		if err := setRow(f, SheetSummary, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SheetSummary, "A1", "C1", headerStyle); err != nil {
		return errorwrapper.WrapError(err, "failed to style summary header")
	}
	_ = f.SetColWidth(SheetSummary, "A", "A", 20)
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errorwrapper.WrapError(err, "invalid cell coordinates")
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return errorwrapper.WrapError(err, fmt.Sprintf("failed to write row %d of sheet '%s'", row, sheet))
	}
	return nil
}
