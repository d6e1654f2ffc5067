package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"

	"github.com/aleister1102/canonguard/internal/common/errorwrapper"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

// HTTPClient is the connection-pooling client shared by discovery, expansion and page analysis.
// It is safe for concurrent use.
type HTTPClient struct {
	client     *http.Client
	config     HTTPClientConfig
	logger     zerolog.Logger
	bufferPool sync.Pool
}

// NewHTTPClient creates a new HTTP client with the given configuration using net/http
func NewHTTPClient(config HTTPClientConfig, logger zerolog.Logger) (*HTTPClient, error) {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		MaxConnsPerHost:       config.MaxConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ExpectContinueTimeout: config.ExpectContinueTimeout,
		DialContext: (&net.Dialer{
			Timeout:   config.DialTimeout,
			KeepAlive: config.KeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.InsecureSkipVerify,
		},
	}

	if config.EnableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn().Err(err).Msg("Failed to configure HTTP/2, falling back to HTTP/1.1")
		}
	}

	if config.Proxy != "" {
		proxyURL, err := url.Parse(config.Proxy)
		if err != nil {
			return nil, errorwrapper.WrapError(err, "failed to parse proxy URL")
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		logger.Info().Str("proxy", config.Proxy).Msg("HTTP client configured with proxy")
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
	}

	if !config.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	} else if config.MaxRedirects > 0 {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= config.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", config.MaxRedirects)
			}
			return nil
		}
	}

	logger.Debug().
		Dur("timeout", config.Timeout).
		Bool("insecure_skip_verify", config.InsecureSkipVerify).
		Bool("follow_redirects", config.FollowRedirects).
		Int("max_redirects", config.MaxRedirects).
		Bool("http2_enabled", config.EnableHTTP2).
		Msg("HTTP client created")

	return &HTTPClient{
		client: client,
		config: config,
		logger: logger.With().Str("component", "HTTPClient").Logger(),
		bufferPool: sync.Pool{
			New: func() interface{} {
				b := make([]byte, 32*1024)
				return &b
			},
		},
	}, nil
}

// Config returns a copy of the client's configuration
func (c *HTTPClient) Config() HTTPClientConfig {
	return c.config
}

// Do performs a single HTTP attempt. A non-2xx status is not an error; only
// transport failures (dial, TLS, timeout, body read) are returned as errors.
func (c *HTTPClient) Do(req *HTTPRequest) (*HTTPResponse, error) {
	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, nil)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create HTTP request")
	}

	for key, value := range c.config.CustomHeaders {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if c.config.UserAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "*/*")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	httpResp := &HTTPResponse{
		StatusCode:    resp.StatusCode,
		Headers:       make(map[string]string, len(resp.Header)),
		FinalURL:      resp.Request.URL.String(),
		ContentLength: resp.ContentLength,
	}
	for key, values := range resp.Header {
		if len(values) > 0 {
			httpResp.Headers[key] = values[0]
		}
	}

	if method == http.MethodHead {
		return httpResp, nil
	}

	body, err := c.readBody(resp.Body)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to read response body")
	}

	// The transport only decodes gzip transparently when it set Accept-Encoding itself
	if !resp.Uncompressed {
		if encoding := resp.Header.Get("Content-Encoding"); encoding != "" {
			decoded, decErr := DecodeBody(body, encoding)
			if decErr != nil {
				return nil, errorwrapper.WrapError(decErr, fmt.Sprintf("failed to decode %s body", encoding))
			}
			body = decoded
		}
	}
	httpResp.Body = body

	return httpResp, nil
}

func (c *HTTPClient) readBody(body io.Reader) ([]byte, error) {
	bufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(bufPtr)
	buf := bytes.NewBuffer((*bufPtr)[:0])

	if c.config.MaxContentSize > 0 {
		body = io.LimitReader(body, int64(c.config.MaxContentSize))
	}
	if _, err := io.Copy(buf, body); err != nil {
		return nil, err
	}

	// Copy out so the pooled buffer can be reused
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// Get performs a single GET attempt
func (c *HTTPClient) Get(ctx context.Context, rawURL string, headers map[string]string) (*HTTPResponse, error) {
	return c.Do(&HTTPRequest{URL: rawURL, Method: http.MethodGet, Headers: headers, Context: ctx})
}

// Head performs a single HEAD attempt
func (c *HTTPClient) Head(ctx context.Context, rawURL string) (*HTTPResponse, error) {
	return c.Do(&HTTPRequest{URL: rawURL, Method: http.MethodHead, Context: ctx})
}
