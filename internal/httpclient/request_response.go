package httpclient

import (
	"context"
	"net/http"
	"strconv"
)

// HTTPRequest represents an HTTP request
type HTTPRequest struct {
	URL     string
	Method  string
	Headers map[string]string
	Context context.Context
}

// HTTPResponse represents a fully read HTTP response.
// Body is already decoded according to Content-Encoding.
type HTTPResponse struct {
	StatusCode    int
	Headers       map[string]string
	Body          []byte
	FinalURL      string
	ContentLength int64
}

// Header returns the first value of the named header, case-insensitively
func (r *HTTPResponse) Header(name string) string {
	if r == nil || r.Headers == nil {
		return ""
	}
	return r.Headers[http.CanonicalHeaderKey(name)]
}

// ContentType returns the Content-Type header
func (r *HTTPResponse) ContentType() string {
	return r.Header("Content-Type")
}

// Size returns the declared body size, or nil when the server did not send one
func (r *HTTPResponse) Size() *int64 {
	if r.ContentLength >= 0 {
		size := r.ContentLength
		return &size
	}
	if raw := r.Header("Content-Length"); raw != "" {
		if size, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return &size
		}
	}
	return nil
}
