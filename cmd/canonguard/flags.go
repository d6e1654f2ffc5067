package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/aleister1102/canonguard/internal/common/errorwrapper"
	"github.com/aleister1102/canonguard/internal/config"
	"github.com/aleister1102/canonguard/internal/models"
	"github.com/aleister1102/canonguard/internal/reporter"
)

// AppFlags holds the parsed command line
type AppFlags struct {
	Domain           string
	Sitemaps         []string
	URLFile          string
	Pages            []string
	InfoURLs         []string
	GlobalConfigFile string
	OutputDir        string
	Formats          []string
	Statuses         []models.PageStatus
	DiscoverOnly     bool
	History          bool
}

// ParseFlags parses args (without the program name). Long flags win over their aliases.
func ParseFlags(args []string, output io.Writer) (AppFlags, error) {
	fs := flag.NewFlagSet("canonguard", flag.ContinueOnError)
	fs.SetOutput(output)

	domain := fs.String("domain", "", "Domain to discover sitemaps for (robots.txt, then well-known paths)")
	domainAlias := fs.String("d", "", "Alias for -domain")

	sitemaps := fs.String("sitemaps", "", "Comma-separated sitemap URLs to expand. Defaults to every discovered sitemap.")
	sitemapsAlias := fs.String("s", "", "Alias for -sitemaps")

	urlFile := fs.String("urls", "", "Path to a text file of page URLs, one per line")
	urlFileAlias := fs.String("u", "", "Alias for -urls")

	pages := fs.String("pages", "", "Comma-separated page URLs to analyze alongside any other input")
	info := fs.String("info", "", "Comma-separated page URLs to inspect with a HEAD request, then exit")

	globalConfigFile := fs.String("config", "", "Path to the YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := fs.String("c", "", "Alias for -config")

	outputDir := fs.String("output", "", "Report output directory (overrides config)")
	outputDirAlias := fs.String("o", "", "Alias for -output")

	formats := fs.String("format", "", "Comma-separated report formats: "+strings.Join(config.SupportedReportFormats, ", "))
	formatsAlias := fs.String("f", "", "Alias for -format")

	filter := fs.String("filter", "", "Comma-separated statuses to export (Match, Mismatch, Missing, Multiple, Empty, Error or the shorthands 'mismatches' and 'issues')")
	discoverOnly := fs.Bool("discover-only", false, "Stop after listing discovered sitemaps")
	history := fs.Bool("history", false, "Record the run in the history database (overrides config)")

	if err := fs.Parse(args); err != nil {
		return AppFlags{}, err
	}

	flags := AppFlags{
		Domain:           firstNonEmpty(*domain, *domainAlias),
		Sitemaps:         splitList(firstNonEmpty(*sitemaps, *sitemapsAlias)),
		URLFile:          firstNonEmpty(*urlFile, *urlFileAlias),
		Pages:            splitList(*pages),
		InfoURLs:         splitList(*info),
		GlobalConfigFile: firstNonEmpty(*globalConfigFile, *globalConfigFileAlias),
		OutputDir:        firstNonEmpty(*outputDir, *outputDirAlias),
		Formats:          splitList(strings.ToLower(firstNonEmpty(*formats, *formatsAlias))),
		DiscoverOnly:     *discoverOnly,
		History:          *history,
	}

	if *filter != "" {
		statuses, err := reporter.ParseStatuses(*filter)
		if err != nil {
			return AppFlags{}, fmt.Errorf("%w: invalid -filter: %v", errorwrapper.ErrInvalidInput, err)
		}
		flags.Statuses = statuses
	}

	if len(flags.InfoURLs) > 0 {
		return flags, nil
	}
	if flags.Domain == "" && flags.URLFile == "" && len(flags.Sitemaps) == 0 && len(flags.Pages) == 0 {
		return AppFlags{}, fmt.Errorf("%w: one of -domain, -sitemaps, -urls, -pages or -info is required", errorwrapper.ErrInvalidInput)
	}
	if flags.DiscoverOnly && flags.Domain == "" {
		return AppFlags{}, fmt.Errorf("%w: -discover-only requires -domain", errorwrapper.ErrInvalidInput)
	}

	return flags, nil
}

// Apply overrides config values with the flags that were set
func (f AppFlags) Apply(cfg *config.GlobalConfig) {
	if f.OutputDir != "" {
		cfg.ReporterConfig.OutputDir = f.OutputDir
	}
	if len(f.Formats) > 0 {
		cfg.ReporterConfig.Formats = f.Formats
	}
	if f.History {
		cfg.StorageConfig.Enabled = true
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
