package urlhandler

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/aleister1102/canonguard/internal/config"
	"github.com/go-playground/validator/v10"
)

// Regex for cleaning filenames
var (
	unsafeFilenameCharsRegex = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)
	multipleUnderscoresRegex = regexp.MustCompile(`_+`)
)

var urlValidator = validator.New()

// Normalize rewrites rawURL for canonical comparison. The fragment is always
// dropped and the host lower-cased; the rest depends on cfg. Path and query
// case are preserved. Inputs that fail to parse are returned unchanged.
func Normalize(rawURL string, cfg config.NormalizationConfig) string {
	if rawURL == "" {
		return rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	parsed.Fragment = ""
	parsed.RawFragment = ""

	if cfg.ForceHTTPS && strings.EqualFold(parsed.Scheme, "http") {
		parsed.Scheme = "https"
	}

	// Trim on the escaped form so an encoded %2F is not mistaken for a separator
	if escaped := parsed.EscapedPath(); cfg.RemoveTrailingSlash && escaped != "/" && strings.HasSuffix(escaped, "/") {
		trimmed := strings.TrimRight(escaped, "/")
		if unescaped, err := url.PathUnescape(trimmed); err == nil {
			parsed.Path = unescaped
			parsed.RawPath = trimmed
		}
	}

	if cfg.IgnoreQueryParams {
		parsed.RawQuery = ""
	}
	if parsed.RawQuery == "" {
		parsed.ForceQuery = false
	}

	parsed.Host = strings.ToLower(parsed.Host)

	return parsed.String()
}

// EnsureScheme prepends https:// to a bare domain
func EnsureScheme(domain string) string {
	trimmed := strings.TrimSpace(domain)
	if trimmed == "" {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	if strings.Contains(trimmed, "://") {
		return trimmed
	}
	return "https://" + strings.TrimPrefix(trimmed, "//")
}

// BaseURL returns "<scheme>://<host>" for a domain or URL, adding https when no scheme is given.
func BaseURL(domainOrURL string) (*url.URL, error) {
	withScheme := EnsureScheme(domainOrURL)
	if withScheme == "" {
		return nil, errors.New("domain is empty")
	}

	parsed, err := url.Parse(withScheme)
	if err != nil {
		return nil, fmt.Errorf("could not parse domain '%s': %w", domainOrURL, err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("domain '%s' lacks a valid hostname", domainOrURL)
	}

	return &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}, nil
}

// ResolveURL resolves a (possibly relative) URL string against a base URL.
func ResolveURL(href string, base *url.URL) (string, error) {
	trimmedHref := strings.TrimSpace(href)
	if trimmedHref == "" {
		return "", fmt.Errorf("href is empty")
	}

	if base == nil {
		parsedHref, parseErr := url.Parse(trimmedHref)
		if parseErr != nil {
			return "", fmt.Errorf("error parsing base-less href '%s': %w", trimmedHref, parseErr)
		}
		if !parsedHref.IsAbs() {
			return "", fmt.Errorf("cannot process relative URL '%s' without a base URL", trimmedHref)
		}
		return parsedHref.String(), nil
	}

	resolved, resolveErr := base.Parse(trimmedHref)
	if resolveErr != nil {
		return "", fmt.Errorf("error resolving href '%s' with base '%s': %w", trimmedHref, base.String(), resolveErr)
	}
	return resolved.String(), nil
}

// ValidateURLFormat checks that rawURL is an absolute http(s) URL with a host
func ValidateURLFormat(rawURL string) error {
	trimmedURL := strings.TrimSpace(rawURL)
	if trimmedURL == "" {
		return fmt.Errorf("URL is empty")
	}

	if err := urlValidator.Var(trimmedURL, "http_url"); err != nil {
		return fmt.Errorf("invalid URL format '%s': must be an absolute http(s) URL", trimmedURL)
	}

	return nil
}

// SanitizeFilename creates a safe filename string from a URL or any input string.
// It removes the protocol, replaces unsafe characters with underscores, and cleans up underscores.
func SanitizeFilename(input string) string {
	name := input
	if i := strings.Index(name, "://"); i != -1 {
		name = name[i+3:]
	}

	name = unsafeFilenameCharsRegex.ReplaceAllString(name, "_")
	name = multipleUnderscoresRegex.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if name == "" {
		return "sanitized_empty_input"
	}

	return name
}
