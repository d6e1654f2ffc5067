package sitemap

import (
	"bytes"
	"strings"
)

// contentKind is the tagged result of format sniffing
type contentKind int

const (
	kindXML contentKind = iota
	kindText
	kindJSON
	kindAuto
)

func (k contentKind) String() string {
	switch k {
	case kindXML:
		return "xml"
	case kindText:
		return "text"
	case kindJSON:
		return "json"
	default:
		return "auto"
	}
}

type sniffRule struct {
	kind  contentKind
	match func(body []byte, contentType string) bool
}

// sniffRules are evaluated in order; kindAuto is the fallback
var sniffRules = []sniffRule{
	{kind: kindXML, match: looksLikeXML},
	{kind: kindText, match: func(_ []byte, ct string) bool { return strings.Contains(ct, "text/plain") }},
	{kind: kindJSON, match: func(_ []byte, ct string) bool { return strings.Contains(ct, "json") }},
}

func looksLikeXML(body []byte, contentType string) bool {
	if strings.Contains(contentType, "xml") || bytes.HasPrefix(body, []byte("<?xml")) {
		return true
	}
	head := prefix(body, 200)
	return bytes.Contains(head, []byte("<urlset")) || bytes.Contains(head, []byte("<sitemapindex"))
}

// sniff picks how to parse body. contentType must be lower-cased.
func sniff(body []byte, contentType string) contentKind {
	for _, rule := range sniffRules {
		if rule.match(body, contentType) {
			return rule.kind
		}
	}
	return kindAuto
}

func prefix(body []byte, n int) []byte {
	if len(body) < n {
		return body
	}
	return body[:n]
}
