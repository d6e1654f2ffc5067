package sitemap

import (
	"bytes"
	"errors"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/tidwall/gjson"
)

var errInvalidJSON = errors.New("invalid JSON document")

// sitemapDocument is a parsed sitemap resource. Children holds sitemap-index entries,
// URLs holds urlset entries; only one of them is filled.
type sitemapDocument struct {
	IsIndex  bool
	Children []string
	URLs     []string
}

func parseXML(body []byte) (*sitemapDocument, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	root := rootElement(doc)
	if root == nil {
		return nil, errors.New("document has no root element")
	}

	result := &sitemapDocument{}
	if root.Data == "sitemapindex" {
		result.IsIndex = true
		result.Children = collectLocs(root, "sitemap")
	} else {
		result.URLs = collectLocs(root, "url")
	}
	return result, nil
}

func rootElement(doc *xmlquery.Node) *xmlquery.Node {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}

// collectLocs returns the trimmed <loc> text of every <entry> descendant, in document order.
// Namespace prefixes are ignored.
func collectLocs(root *xmlquery.Node, entry string) []string {
	var locs []string
	expr := "//*[local-name()='" + entry + "']/*[local-name()='loc']"
	for _, node := range xmlquery.Find(root, expr) {
		if loc := strings.TrimSpace(node.InnerText()); loc != "" {
			locs = append(locs, loc)
		}
	}
	return locs
}

// parseText keeps lines that are absolute http(s) URLs
func parseText(body []byte) []string {
	var urls []string
	for _, line := range strings.Split(strings.ToValidUTF8(string(body), ""), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
			urls = append(urls, line)
		}
	}
	return urls
}

// parseJSON accepts an array of strings or {"loc": ...} objects, or an object
// whose "urls" member is such an array.
func parseJSON(body []byte) ([]string, error) {
	if !gjson.ValidBytes(body) {
		return nil, errInvalidJSON
	}

	doc := gjson.ParseBytes(body)
	if doc.IsObject() {
		doc = doc.Get("urls")
	}
	if !doc.IsArray() {
		return nil, nil
	}

	var urls []string
	doc.ForEach(func(_, item gjson.Result) bool {
		switch {
		case item.Type == gjson.String:
			urls = append(urls, item.String())
		case item.IsObject():
			if loc := item.Get("loc"); loc.Exists() {
				urls = append(urls, loc.String())
			}
		}
		return true
	})
	return urls, nil
}
