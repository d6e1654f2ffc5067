package reporter

const (
	// File permissions
	DirPermissions  = 0755
	FilePermissions = 0644

	// Workbook sheet names
	SheetAllResults = "All Results"
	SheetSummary    = "Summary"
	SheetIssues     = "Issues"
	SheetMatches    = "Matches"

	// Summary row labels
	TotalRowLabel        = "TOTAL"
	AvgResponseTimeLabel = "Avg Response Time"

	analysisDateLayout    = "2006-01-02 15:04:05"
	exportTimestampLayout = "2006-01-02T15:04:05.000000"
)
