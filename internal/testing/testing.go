// package testing contains shared testing utilities
package testing

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/postx/internal/models"
)

// SampleState returns a project with a processed article, two bullet points and matching slides.
func SampleState() models.ProjectState {
	s := models.NewProjectState()
	s.ArticleData = models.ArticleData{ID: 7, URL: "https://example.com/post", Title: "Sample", Summary: "A summary"}
	s.BulletPoints = []models.BulletPoint{
		{ID: "1", Text: "First point", ImagePath: "point_01.jpg", Keywords: []string{"alpha"}},
		{ID: "2", Text: "Second point"},
	}
	s.Slides = []models.SlideItem{
		{ID: "slide-1", BulletPointID: "1", Text: "First point", Image: "http://localhost:8000/static/img/point_01.jpg", Duration: models.DefaultSlideDuration},
		{ID: "slide-2", BulletPointID: "2", Text: "Second point", Image: "https://picsum.photos/seed/1/800/450", Duration: models.DefaultSlideDuration},
	}
	s.CurrentStep = models.StepSlidePreview
	return s
}

// Call is one request seen by a [Router].
type Call struct {
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

// Router is an httptest server that answers canned JSON per "METHOD /path" and records calls.
type Router struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]route
	calls  []Call
}

type route struct {
	status int
	body   any
}

// NewRouter starts a [Router]; it is closed when the test ends.
func NewRouter(t *testing.T) *Router {
	t.Helper()
	r := &Router{routes: make(map[string]route)}
	r.Server = httptest.NewServer(http.HandlerFunc(r.serve))
	t.Cleanup(r.Close)
	return r
}

// Handle registers a response. Body is JSON encoded unless it is a []byte.
func (r *Router) Handle(method, path string, status int, body any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[method+" "+path] = route{status: status, body: body}
}

// Calls returns the recorded requests in arrival order.
func (r *Router) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Last returns the most recent request.
func (r *Router) Last() Call {
	calls := r.Calls()
	if len(calls) == 0 {
		return Call{}
	}
	return calls[len(calls)-1]
}

func (r *Router) serve(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)

	r.mu.Lock()
	r.calls = append(r.calls, Call{Method: req.Method, Path: req.URL.Path, ContentType: req.Header.Get("Content-Type"), Body: body})
	rt, ok := r.routes[req.Method+" "+req.URL.Path]
	r.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Not Found"}`))
		return
	}

	if raw, isRaw := rt.body.([]byte); isRaw {
		w.WriteHeader(rt.status)
		w.Write(raw)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rt.status)
	if rt.body != nil {
		json.NewEncoder(w).Encode(rt.body)
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// MustWriteFile writes content to name inside a temp dir and returns the path.
func MustWriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := t.TempDir() + string(os.PathSeparator) + name
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}
