package adapters

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brettbedarf/collectionfs"
	"github.com/brettbedarf/collectionfs/internal/util"
	"github.com/pkg/errors"
)

type HTTPMethod = string

const (
	HTTPMethodGet  HTTPMethod = "GET"
	HTTPMethodPost HTTPMethod = "POST"
)

// HTTPClient is the subset of *http.Client used by HTTP sources
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPSource contains http-specific source fields. HTTP sources are read-only.
type HTTPSource struct {
	URL     string            `json:"url"`
	Method  *HTTPMethod       `json:"method,omitempty"` // Default is GET
	Headers map[string]string `json:"headers,omitempty"`

	client HTTPClient
}

// NewHTTPSource validates rawURL and returns a source fetching it with client.
// A nil client means http.DefaultClient.
func NewHTTPSource(client HTTPClient, rawURL string) (*HTTPSource, error) {
	s := &HTTPSource{URL: rawURL}
	if err := s.init(client); err != nil {
		return nil, err
	}
	return s, nil
}

func RegisterHTTP(r *Registry, client HTTPClient) {
	r.Register(HTTPSourceType, func(raw []byte) (collectionfs.Source, error) {
		var s HTTPSource
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, errors.Wrap(err, "decode http source")
		}
		if err := s.init(client); err != nil {
			return nil, err
		}
		return &s, nil
	})
}

func (h *HTTPSource) init(client HTTPClient) error {
	h.URL = strings.TrimSpace(h.URL)
	u, err := url.Parse(h.URL)
	if err != nil {
		return errors.Wrapf(err, "invalid url %q", h.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("url %q must use http or https", h.URL)
	}
	if u.Host == "" {
		return errors.Errorf("url %q has no host", h.URL)
	}
	if u.User != nil {
		return errors.Errorf("url %q must not embed credentials; use headers", h.URL)
	}
	if client == nil {
		client = http.DefaultClient
	}
	h.client = client
	return nil
}

// Entry implements [collectionfs.Source]
func (h *HTTPSource) Entry() collectionfs.FileEntry {
	return collectionfs.FileEntry{
		OpenRead: h.Open,
		Size:     h.Size,
		Mtime:    h.Mtime,
	}
}

func (h *HTTPSource) newRequest(ctx context.Context, method HTTPMethod) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, h.URL, nil)
	if err != nil {
		return nil, err
	}

	// Add custom headers
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

func (h *HTTPSource) do(method HTTPMethod) (*http.Response, error) {
	req, err := h.newRequest(context.Background(), method)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s %s", method, h.URL)
	}

	logger := util.GetLogger("HTTPSource")
	logger.Trace().Str("method", method).Str("url", h.URL).Msg("Sending request")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, h.URL)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, errors.Errorf("%s %s: unexpected status %s", method, h.URL, resp.Status)
	}
	return resp, nil
}

// Open streams the response body of the configured method
func (h *HTTPSource) Open() (io.ReadCloser, error) {
	resp, err := h.do(h.getMethod())
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Size reports the Content-Length of a HEAD response
func (h *HTTPSource) Size() (int64, error) {
	resp, err := h.do(http.MethodHead)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.ContentLength < 0 {
		return 0, errors.Errorf("HEAD %s: no Content-Length", h.URL)
	}
	return resp.ContentLength, nil
}

// Mtime reports the Last-Modified header of a HEAD response
func (h *HTTPSource) Mtime() (time.Time, error) {
	resp, err := h.do(http.MethodHead)
	if err != nil {
		return time.Time{}, err
	}
	defer resp.Body.Close()

	lm := resp.Header.Get("Last-Modified")
	if lm == "" {
		return time.Time{}, errors.Errorf("HEAD %s: no Last-Modified", h.URL)
	}
	t, err := http.ParseTime(lm)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "HEAD %s: bad Last-Modified", h.URL)
	}
	return t, nil
}

func (h *HTTPSource) getMethod() HTTPMethod {
	if h.Method != nil {
		return *h.Method
	}
	return HTTPMethodGet
}
