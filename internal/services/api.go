// HTTP core shared by every backend call
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	defaultBaseURL      = "http://localhost:8000/api"
	defaultTimeout      = 120 * time.Second
	defaultImageTimeout = 300 * time.Second
)

// APIService performs JSON, multipart and raw requests against the backend base URL.
type APIService struct {
	baseURL      string
	httpClient   *http.Client
	timeout      time.Duration
	imageTimeout time.Duration
}

// NewAPIService creates a new API service instance for the backend at baseURL.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   client,
		timeout:      defaultTimeout,
		imageTimeout: defaultImageTimeout,
	}
}

// WithTimeouts sets the per-call timeouts. Zero keeps the current value.
func (a *APIService) WithTimeouts(general, image time.Duration) *APIService {
	if general > 0 {
		a.timeout = general
	}
	if image > 0 {
		a.imageTimeout = image
	}
	return a
}

// BaseURL returns the API root, e.g. http://localhost:8000/api.
func (a *APIService) BaseURL() string { return a.baseURL }

// URL joins path onto the API root.
func (a *APIService) URL(path string) string { return a.baseURL + path }

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Request describes one backend call. At most one of Body, Raw and Form is set.
type Request struct {
	Method string
	Path   string
	Body   any            // encoded as JSON
	Raw    []byte         // sent as-is with a JSON content type
	Form   *MultipartForm // sent as multipart/form-data
	Long   bool           // use the image timeout instead of the general one
}

// MultipartForm is a file upload with optional extra fields.
type MultipartForm struct {
	FileField string // defaults to "file"
	FilePath  string
	FileName  string // defaults to the base name of FilePath
	Fields    map[string]string
}

// Do sends r and decodes a 2xx JSON body into result (which may be nil).
func (a *APIService) Do(ctx context.Context, r Request, result any) error {
	resp, err := a.send(ctx, r)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return serverError(resp.StatusCode, resp.Body)
	}
	if result == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, result); err != nil {
		return clientError("failed to decode response", err)
	}
	return nil
}

// Download performs a GET and returns the raw 2xx body.
func (a *APIService) Download(ctx context.Context, path string) ([]byte, error) {
	resp, err := a.send(ctx, Request{Method: http.MethodGet, Path: path, Long: true})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, serverError(resp.StatusCode, resp.Body)
	}
	return resp.Body, nil
}

// Get performs a GET request to the specified path and returns the raw response regardless of status.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.send(ctx, Request{Method: http.MethodGet, Path: path})
}

// Post performs a POST request with the given JSON data and returns the raw response regardless of status.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.send(ctx, Request{Method: http.MethodPost, Path: path, Raw: data})
}

func (a *APIService) send(ctx context.Context, r Request) (*APIResponse, error) {
	timeout := a.timeout
	if r.Long {
		timeout = a.imageTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	body, contentType, err := encodeBody(r)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, a.baseURL+r.Path, body)
	if err != nil {
		return nil, clientError("failed to create request", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &APIError{Kind: KindTimeout, Op: "request timed out", Err: err}
		}
		return nil, &APIError{Kind: KindNetwork, Op: "failed to read response", Err: err}
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

func encodeBody(r Request) (io.Reader, string, error) {
	switch {
	case r.Form != nil:
		buf, contentType, err := r.Form.encode()
		if err != nil {
			return nil, "", clientError("failed to build upload", err)
		}
		return buf, contentType, nil
	case r.Raw != nil:
		return bytes.NewReader(r.Raw), "application/json", nil
	case r.Body != nil:
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, "", clientError("failed to encode request", err)
		}
		return bytes.NewReader(data), "application/json", nil
	default:
		return nil, "", nil
	}
}

func (f *MultipartForm) encode() (*bytes.Buffer, string, error) {
	file, err := os.Open(f.FilePath)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	field := f.FileField
	if field == "" {
		field = "file"
	}
	name := f.FileName
	if name == "" {
		name = filepath.Base(f.FilePath)
	}

	part, err := w.CreateFormFile(field, name)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("copy %s: %w", f.FilePath, err)
	}

	keys := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, f.Fields[k]); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
