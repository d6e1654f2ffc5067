package reporter

import (
	"encoding/csv"
	"io"

	"github.com/aleister1102/canonguard/internal/common/errorwrapper"
	"github.com/aleister1102/canonguard/internal/models"
)

type csvWriter struct{}

func (csvWriter) Extension() string { return "csv" }

func (csvWriter) Write(w io.Writer, report *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.PageRecordColumns); err != nil {
		return errorwrapper.WrapError(err, "failed to write CSV header")
	}
	for _, record := range report.Records {
		if err := cw.Write(record.Row()); err != nil {
			return errorwrapper.WrapError(err, "failed to write CSV row")
		}
	}
	cw.Flush()
	return cw.Error()
}
