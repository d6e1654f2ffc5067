package models

import "strconv"

// PageStatus is the classification of one audited page
type PageStatus string

const (
	StatusMatch    PageStatus = "Match"
	StatusMismatch PageStatus = "Mismatch"
	StatusMissing  PageStatus = "Missing"
	StatusMultiple PageStatus = "Multiple"
	StatusEmpty    PageStatus = "Empty"
	StatusError    PageStatus = "Error"
)

// AllPageStatuses lists every status in report order
var AllPageStatuses = []PageStatus{
	StatusMatch,
	StatusMismatch,
	StatusMissing,
	StatusMultiple,
	StatusEmpty,
	StatusError,
}

// IsIssue reports whether the status belongs in the issues subset of reports
func (s PageStatus) IsIssue() bool {
	switch s {
	case StatusMismatch, StatusError, StatusMultiple, StatusEmpty:
		return true
	default:
		return false
	}
}

// PageRecordColumns is the export column contract, in order
var PageRecordColumns = []string{
	"URL",
	"Final URL",
	"Canonical URL",
	"Status",
	"Error",
	"Response Time",
	"HTTP Status",
}

// PageRecord is the outcome of auditing one URL. One record exists per input URL
// and it is not modified after creation.
type PageRecord struct {
	URL                 string     `json:"URL"`
	FinalURL            *string    `json:"Final URL"`
	CanonicalURL        *string    `json:"Canonical URL"`
	Status              PageStatus `json:"Status"`
	ErrorDetail         *string    `json:"Error"`
	ResponseTimeSeconds *float64   `json:"Response Time"`
	HTTPStatus          *int       `json:"HTTP Status"`
}

// Row renders the record in PageRecordColumns order. Absent values are empty strings.
func (r PageRecord) Row() []string {
	return []string{
		r.URL,
		StringValue(r.FinalURL),
		StringValue(r.CanonicalURL),
		string(r.Status),
		StringValue(r.ErrorDetail),
		formatFloat(r.ResponseTimeSeconds),
		formatInt(r.HTTPStatus),
	}
}

// ResponseTime returns the response time or 0 when absent
func (r PageRecord) ResponseTime() float64 {
	if r.ResponseTimeSeconds == nil {
		return 0
	}
	return *r.ResponseTimeSeconds
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string { return &s }

// IntPtr returns a pointer to i
func IntPtr(i int) *int { return &i }

// Float64Ptr returns a pointer to f
func Float64Ptr(f float64) *float64 { return &f }

// StringValue dereferences s, returning "" for nil
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', 3, 64)
}

func formatInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}
