package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/aleister1102/canonguard/internal/common/errorwrapper"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type textWriter struct{}

func (textWriter) Extension() string { return "txt" }

// Write renders the detailed plain-text report
func (textWriter) Write(w io.Writer, report *Report) error {
	p := message.NewPrinter(language.English)
	summary := Summarize(report.Records)

	lines := []string{
		"SEO CANONICAL TAG VALIDATION REPORT",
		strings.Repeat("=", 50),
		"",
		"Analysis Date: " + report.GeneratedAt.Format(analysisDateLayout),
		p.Sprintf("Total URLs Analyzed: %d", summary.TotalURLs),
	}

	if len(report.Sitemaps) > 0 {
		lines = append(lines, "", "DISCOVERED SITEMAPS:", strings.Repeat("-", 20))
		for _, c := range report.Sitemaps {
			count := "?"
			if c.URLCount != nil {
				count = p.Sprintf("%d", *c.URLCount)
			}
			lines = append(lines, fmt.Sprintf("%-18s [%s] %s (%s URLs)", c.Format.Label(), c.Status(), c.URL, count))
		}
	}

	lines = append(lines, "", "SUMMARY BY STATUS:", strings.Repeat("-", 20))
	for _, sc := range summary.StatusBreakdown {
		lines = append(lines, fmt.Sprintf("%-15s : %6s (%5.1f%%)", sc.Label, p.Sprintf("%d", sc.Count), sc.Percentage))
	}

	issues := Issues(report.Records)
	if len(issues) > 0 {
		lines = append(lines, "", "DETAILED ISSUES:", strings.Repeat("-", 15), "")
		for _, r := range issues {
			lines = append(lines, "URL: "+r.URL, "Status: "+string(r.Status))
			if r.CanonicalURL != nil {
				lines = append(lines, "Canonical: "+*r.CanonicalURL)
			}
			if r.ErrorDetail != nil {
				lines = append(lines, "Error: "+*r.ErrorDetail)
			}
			lines = append(lines, "")
		}
	}

	if rt := summary.ResponseTimes; rt != nil {
		lines = append(lines,
			"",
			"PERFORMANCE METRICS:",
			strings.Repeat("-", 19),
			p.Sprintf("Average Response Time: %.2fs", rt.Average),
			p.Sprintf("Median Response Time: %.2fs", rt.Median),
			p.Sprintf("Fastest Response: %.2fs", rt.Min),
			p.Sprintf("Slowest Response: %.2fs", rt.Max),
		)
	}

	if _, err := io.WriteString(w, strings.Join(lines, "\n")+"\n"); err != nil {
		return errorwrapper.WrapError(err, "failed to write text report")
	}
	return nil
}
