package analyzer

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aleister1102/canonguard/internal/config"
	"github.com/aleister1102/canonguard/internal/models"
	"github.com/aleister1102/canonguard/internal/urlhandler"
	"golang.org/x/net/html/charset"
)

const canonicalSelector = `link[rel~="canonical"]`

const (
	detailMissing  = "No canonical tag found"
	detailEmpty    = "Canonical tag is empty"
	detailMismatch = "Canonical URL does not match page URL"
)

// ExtractCanonicalHrefs returns the href of every canonical link element, in document order.
// A missing href attribute is reported as "".
func ExtractCanonicalHrefs(body []byte, contentType string) ([]string, error) {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, err
	}

	var hrefs []string
	doc.Find(canonicalSelector).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		hrefs = append(hrefs, href)
	})
	return hrefs, nil
}

// Classification is the canonical verdict for one page
type Classification struct {
	Status       models.PageStatus
	CanonicalURL *string
	Detail       *string
}

// Classify compares the canonical hrefs of a page against its final URL.
func Classify(finalURL string, hrefs []string, cfg config.NormalizationConfig) (Classification, error) {
	switch {
	case len(hrefs) == 0:
		return Classification{Status: models.StatusMissing, Detail: models.StringPtr(detailMissing)}, nil
	case len(hrefs) > 1:
		// Diagnostic only; the joined string is never normalized or compared
		return Classification{
			Status:       models.StatusMultiple,
			CanonicalURL: models.StringPtr(strings.Join(hrefs, ", ")),
			Detail:       models.StringPtr(multipleDetail(len(hrefs))),
		}, nil
	}

	href := strings.TrimSpace(hrefs[0])
	if href == "" {
		return Classification{Status: models.StatusEmpty, Detail: models.StringPtr(detailEmpty)}, nil
	}

	base, err := url.Parse(finalURL)
	if err != nil {
		return Classification{}, err
	}
	canonical, err := urlhandler.ResolveURL(href, base)
	if err != nil {
		return Classification{}, err
	}

	if urlhandler.Normalize(finalURL, cfg) == urlhandler.Normalize(canonical, cfg) {
		return Classification{Status: models.StatusMatch, CanonicalURL: &canonical}, nil
	}
	return Classification{
		Status:       models.StatusMismatch,
		CanonicalURL: &canonical,
		Detail:       models.StringPtr(detailMismatch),
	}, nil
}

func multipleDetail(n int) string {
	return fmt.Sprintf("Multiple canonical tags found: %d", n)
}
