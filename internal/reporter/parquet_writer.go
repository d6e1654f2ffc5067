package reporter

import (
	"io"

	"github.com/aleister1102/canonguard/internal/common/errorwrapper"
	"github.com/aleister1102/canonguard/internal/models"
	"github.com/parquet-go/parquet-go"
)

type parquetWriter struct{}

func (parquetWriter) Extension() string { return "parquet" }

// Write stores the records as zstd-compressed Parquet rows
func (parquetWriter) Write(w io.Writer, report *Report) error {
	auditTimestamp := report.GeneratedAt.UnixMilli()
	rows := make([]models.ParquetPageRecord, 0, len(report.Records))
	for _, r := range report.Records {
		rows = append(rows, r.ToParquet(report.RunID, auditTimestamp))
	}

	pw := parquet.NewGenericWriter[models.ParquetPageRecord](w, parquet.Compression(&parquet.Zstd))
	if len(rows) > 0 {
		if _, err := pw.Write(rows); err != nil {
			_ = pw.Close()
			return errorwrapper.WrapError(err, "failed to write parquet rows")
		}
	}
	if err := pw.Close(); err != nil {
		return errorwrapper.WrapError(err, "failed to close parquet writer")
	}
	return nil
}
