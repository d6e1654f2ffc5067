package models

// ParquetPageRecord defines the schema for storing page records using parquet-go/parquet-go.
// Optional fields use pointers and the ',optional' tag.
type ParquetPageRecord struct {
	RunID               string   `parquet:"run_id"`
	URL                 string   `parquet:"url"`
	FinalURL            *string  `parquet:"final_url,optional"`
	CanonicalURL        *string  `parquet:"canonical_url,optional"`
	Status              string   `parquet:"status"`
	ErrorDetail         *string  `parquet:"error,optional"`
	ResponseTimeSeconds *float64 `parquet:"response_time_seconds,optional"`
	HTTPStatus          *int32   `parquet:"http_status,optional"`
	AuditTimestamp      int64    `parquet:"audit_timestamp"` // Unix milliseconds
}

// ToParquet converts a record to its Parquet row
func (r PageRecord) ToParquet(runID string, auditTimestampMillis int64) ParquetPageRecord {
	row := ParquetPageRecord{
		RunID:               runID,
		URL:                 r.URL,
		FinalURL:            r.FinalURL,
		CanonicalURL:        r.CanonicalURL,
		Status:              string(r.Status),
		ErrorDetail:         r.ErrorDetail,
		ResponseTimeSeconds: r.ResponseTimeSeconds,
		AuditTimestamp:      auditTimestampMillis,
	}
	if r.HTTPStatus != nil {
		code := int32(*r.HTTPStatus)
		row.HTTPStatus = &code
	}
	return row
}
