package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/postx/internal/shared"
	tu "github.com/desertthunder/postx/internal/testing"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com/api/", customClient)

			if srv.baseURL != "http://example.com/api" {
				t.Errorf("expected trailing slash trimmed, got %s", srv.baseURL)
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := NewAPIService("", nil)

			if srv.baseURL != "http://localhost:8000/api" {
				t.Errorf("expected default baseURL 'http://localhost:8000/api', got %s", srv.baseURL)
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})

		t.Run("WithTimeouts Keeps Zero Values", func(t *testing.T) {
			srv := NewAPIService("", nil).WithTimeouts(0, time.Minute)

			if srv.timeout != defaultTimeout {
				t.Errorf("expected general timeout unchanged, got %v", srv.timeout)
			}
			if srv.imageTimeout != time.Minute {
				t.Errorf("expected image timeout 1m, got %v", srv.imageTimeout)
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("Successful Request With JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.URL.Path != "/api/test" {
					t.Errorf("expected path '/api/test', got %s", r.URL.Path)
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{"status": "success"})
			}))
			defer server.Close()

			srv := NewAPIService(server.URL+"/api", nil)
			resp, err := srv.Get(context.Background(), "/test")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Errorf("expected status 200, got %d", resp.StatusCode)
			}
			if !resp.IsJSON || resp.JSONData == nil {
				t.Error("expected response to be JSON")
			}
		})

		t.Run("Successful Request With Non-JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				w.Write([]byte("plain text response"))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			resp, err := srv.Get(context.Background(), "/test")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON {
				t.Error("expected response to not be JSON")
			}
			if string(resp.Body) != "plain text response" {
				t.Errorf("expected body 'plain text response', got %s", string(resp.Body))
			}
		})

		t.Run("Non-2xx Is Returned As A Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTeapot)
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Get(context.Background(), "/test")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.StatusCode != http.StatusTeapot {
				t.Errorf("expected status 418, got %d", resp.StatusCode)
			}
		})

		t.Run("Failed Request Creation", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil)
			_, err := srv.Get(context.Background(), "/test\x00invalid")

			if err == nil {
				t.Fatal("expected error for invalid URL")
			}
			if !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected 'failed to create request' error, got %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}

			srv := NewAPIService("http://example.com", client)
			_, err := srv.Get(context.Background(), "/test")

			if err == nil {
				t.Fatal("expected error for failed request")
			}
			if !strings.Contains(err.Error(), "request failed") {
				t.Errorf("expected 'request failed' error, got %v", err)
			}
			if !errors.Is(err, shared.ErrNoResponse) {
				t.Errorf("expected ErrNoResponse, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			srv := NewAPIService("http://example.com", client)
			_, err := srv.Get(context.Background(), "/test")

			if err == nil {
				t.Fatal("expected error for failed body read")
			}
			if !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := NewAPIService(server.URL, nil).Get(ctx, "/test")

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Kind != KindCanceled {
				t.Errorf("expected canceled kind, got %v", apiErr.Kind)
			}
		})

		t.Run("Timeout", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(time.Second):
				}
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil).WithTimeouts(20*time.Millisecond, 0)
			_, err := srv.Get(context.Background(), "/slow")

			if !errors.Is(err, shared.ErrTimeout) {
				t.Fatalf("expected timeout, got %v", err)
			}
			if Describe(err) != "Request timed out. Please try again." {
				t.Errorf("unexpected description %q", Describe(err))
			}
		})
	})

	t.Run("Post", func(t *testing.T) {
		t.Run("Sends Raw JSON", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST method, got %s", r.Method)
				}
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("expected Content-Type 'application/json', got %s", r.Header.Get("Content-Type"))
				}

				body, _ := io.ReadAll(r.Body)
				var data map[string]string
				if err := json.Unmarshal(body, &data); err != nil {
					t.Errorf("failed to unmarshal request body: %v", err)
				}
				if data["test"] != "data" {
					t.Errorf("expected request data 'test:data', got %v", data)
				}

				w.WriteHeader(http.StatusCreated)
				json.NewEncoder(w).Encode(map[string]string{"id": "123"})
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			requestData, _ := json.Marshal(map[string]string{"test": "data"})
			resp, err := srv.Post(context.Background(), "/test", requestData)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.StatusCode != http.StatusCreated {
				t.Errorf("expected status 201, got %d", resp.StatusCode)
			}
		})

		t.Run("Empty Request Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				if len(body) != 0 {
					t.Errorf("expected empty body, got %d bytes", len(body))
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			if _, err := NewAPIService(server.URL, nil).Post(context.Background(), "/test", []byte{}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	})

	t.Run("Do", func(t *testing.T) {
		t.Run("Decodes Success Body", func(t *testing.T) {
			r := tu.NewRouter(t)
			r.Handle(http.MethodPut, "/items/1/", http.StatusOK, map[string]any{"name": "updated"})

			var out struct {
				Name string `json:"name"`
			}
			err := NewAPIService(r.URL, nil).Do(context.Background(), Request{Method: http.MethodPut, Path: "/items/1/", Body: map[string]string{"name": "x"}}, &out)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if out.Name != "updated" {
				t.Errorf("expected 'updated', got %q", out.Name)
			}
			if got := r.Last().ContentType; got != "application/json" {
				t.Errorf("expected JSON content type, got %s", got)
			}
		})

		t.Run("Server Error Carries Detail", func(t *testing.T) {
			r := tu.NewRouter(t)
			r.Handle(http.MethodPost, "/articles/process/", http.StatusUnprocessableEntity, map[string]any{"detail": "Could not fetch article"})

			err := NewAPIService(r.URL, nil).Do(context.Background(), Request{Method: http.MethodPost, Path: "/articles/process/"}, nil)

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Kind != KindServer || apiErr.Status != http.StatusUnprocessableEntity {
				t.Errorf("unexpected error %+v", apiErr)
			}
			if Describe(err) != "Could not fetch article" {
				t.Errorf("expected server message, got %q", Describe(err))
			}
		})

		t.Run("Not Found Matches Sentinel", func(t *testing.T) {
			r := tu.NewRouter(t)
			err := NewAPIService(r.URL, nil).Do(context.Background(), Request{Method: http.MethodGet, Path: "/missing/"}, nil)

			if !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})

		t.Run("Undecodable Body", func(t *testing.T) {
			r := tu.NewRouter(t)
			r.Handle(http.MethodGet, "/bad/", http.StatusOK, []byte("not json"))

			var out map[string]any
			err := NewAPIService(r.URL, nil).Do(context.Background(), Request{Method: http.MethodGet, Path: "/bad/"}, &out)
			if err == nil || !strings.Contains(err.Error(), "failed to decode response") {
				t.Errorf("expected decode error, got %v", err)
			}
		})

		t.Run("Multipart Upload", func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "logo.png")
			if err := os.WriteFile(path, []byte("png-bytes"), 0o644); err != nil {
				t.Fatal(err)
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := r.ParseMultipartForm(1 << 20); err != nil {
					t.Errorf("failed to parse multipart: %v", err)
					return
				}
				if r.FormValue("purpose") != "logo" {
					t.Errorf("expected purpose=logo, got %q", r.FormValue("purpose"))
				}
				f, hdr, err := r.FormFile("file")
				if err != nil {
					t.Errorf("expected file part: %v", err)
					return
				}
				defer f.Close()
				data, _ := io.ReadAll(f)
				if hdr.Filename != "logo.png" || string(data) != "png-bytes" {
					t.Errorf("unexpected file %s %q", hdr.Filename, data)
				}
				w.Write([]byte(`{"file_url":"/static/uploads/logo.png"}`))
			}))
			defer server.Close()

			var res UploadResult
			form := &MultipartForm{FilePath: path, Fields: map[string]string{"purpose": "logo"}}
			if err := NewAPIService(server.URL, nil).Do(context.Background(), Request{Method: http.MethodPost, Path: "/uploads/image/", Form: form}, &res); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if res.FileURL != "/static/uploads/logo.png" {
				t.Errorf("unexpected file url %q", res.FileURL)
			}
		})

		t.Run("Missing Upload File Is A Client Error", func(t *testing.T) {
			err := NewAPIService("http://example.com", nil).Do(context.Background(), Request{
				Method: http.MethodPost,
				Path:   "/uploads/image/",
				Form:   &MultipartForm{FilePath: filepath.Join(t.TempDir(), "missing.png")},
			}, nil)

			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected client error, got %v", err)
			}
		})
	})

	t.Run("Download", func(t *testing.T) {
		r := tu.NewRouter(t)
		r.Handle(http.MethodGet, "/social-posts/3/download/instagram/", http.StatusOK, []byte{0xFF, 0xD8})

		data, err := NewAPIService(r.URL, nil).Download(context.Background(), "/social-posts/3/download/instagram/")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(data) != 2 || data[0] != 0xFF {
			t.Errorf("unexpected body %v", data)
		}

		if _, err := NewAPIService(r.URL, nil).Download(context.Background(), "/nope/"); err == nil {
			t.Error("expected error for 404 download")
		}
	})
}
