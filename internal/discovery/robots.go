package discovery

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/aleister1102/canonguard/internal/urlhandler"
	"github.com/temoto/robotstxt"
)

var sitemapDirectiveRegex = regexp.MustCompile(`(?im)^sitemap:\s*(.+)$`)

// extractSitemapDirectives returns the Sitemap: values of a robots.txt body, resolved
// against base, in file order. Duplicates are kept; callers de-duplicate.
func extractSitemapDirectives(content string, base *url.URL) []string {
	var out []string
	for _, match := range sitemapDirectiveRegex.FindAllStringSubmatch(content, -1) {
		value := strings.TrimSpace(match[1])
		if value == "" {
			continue
		}
		if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			resolved, err := urlhandler.ResolveURL(value, base)
			if err != nil {
				continue
			}
			value = resolved
		}
		out = append(out, value)
	}
	return out
}

// RobotsRules wraps the parsed robots.txt of the audited host
type RobotsRules struct {
	data *robotstxt.RobotsData
}

func parseRobots(statusCode int, body []byte) *RobotsRules {
	data, err := robotstxt.FromStatusAndBytes(statusCode, body)
	if err != nil {
		return nil
	}
	return &RobotsRules{data: data}
}

// Allowed reports whether agent may fetch pageURL. Unparseable URLs are reported as allowed.
func (r *RobotsRules) Allowed(pageURL, agent string) bool {
	if r == nil || r.data == nil {
		return true
	}
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return true
	}
	return r.data.TestAgent(parsed.RequestURI(), agent)
}

// CountDisallowed returns how many of urls robots.txt disallows for agent
func (r *RobotsRules) CountDisallowed(urls []string, agent string) int {
	if r == nil {
		return 0
	}
	count := 0
	for _, u := range urls {
		if !r.Allowed(u, agent) {
			count++
		}
	}
	return count
}
