package models

// URLInfo is the result of a HEAD request against a single page
type URLInfo struct {
	URL           string  `json:"url"`
	FinalURL      string  `json:"final_url,omitempty"`
	StatusCode    int     `json:"status_code,omitempty"`
	ContentType   string  `json:"content_type,omitempty"`
	ContentLength string  `json:"content_length,omitempty"`
	LastModified  string  `json:"last_modified,omitempty"`
	ResponseTime  float64 `json:"response_time,omitempty"`
	Redirected    bool    `json:"redirected"`
	Error         string  `json:"error,omitempty"`
}
