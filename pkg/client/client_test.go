package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/observability"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/template"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL, Backoff: time.Millisecond, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewValidatesBaseURL(t *testing.T) {
	if _, err := New(Options{BaseURL: "ftp://example.com"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("New(ftp) err = %v, want INVALID_INPUT", err)
	}
	c, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if c.BaseURL() != DefaultBaseURL+"/" {
		t.Errorf("BaseURL = %q", c.BaseURL())
	}
}

func TestCompile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/templates/preview" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var req CompileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Error(err)
			return
		}
		if req.TypstCode != "#text(size: 12pt)[{{.Name}}]" || req.Variables["Name"] != "Ada" {
			t.Errorf("body = %+v", req)
		}
		w.Header().Set("Content-Type", "application/pdf")
		io.WriteString(w, "%PDF-1.7")
	})

	pdf, err := c.Compiler().Compile(context.Background(), "#text(size: 12pt)[{{.Name}}]", map[string]string{"Name": "Ada"})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if string(pdf) != "%PDF-1.7" {
		t.Errorf("pdf = %q", pdf)
	}
}

func TestCompileSendsEmptyVariableObject(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&raw)
		if string(raw["variables"]) != "{}" {
			t.Errorf("variables = %s, want {}", raw["variables"])
		}
	})
	if _, err := c.Compiler().Compile(context.Background(), "x", nil); err != nil {
		t.Fatal(err)
	}
}

func TestCompileErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
		want        string
	}{
		{"json error", "application/json", `{"error":"unknown variable"}`, http.StatusBadRequest, "unknown variable"},
		{"json without error", "application/json", `{"detail":"x"}`, http.StatusBadRequest, "Compilation failed: 400 Bad Request"},
		{"plain text", "text/plain; charset=utf-8", "error: expected expression\n", http.StatusBadRequest, "error: expected expression"},
		{"empty body", "text/plain", "", http.StatusUnprocessableEntity, "Compilation failed: 422 Unprocessable Entity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			_, err := c.Compiler().Compile(context.Background(), "x", nil)
			if !errors.Is(err, errors.ErrCodeCompileFailed) {
				t.Fatalf("err = %v, want COMPILE_FAILED", err)
			}
			if got := errors.UserMessage(err); got != tt.want {
				t.Errorf("message = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, "ok")
	})

	out, err := c.Compiler().Compile(context.Background(), "x", nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if string(out) != "ok" || calls.Load() != 3 {
		t.Errorf("out = %q after %d calls", out, calls.Load())
	}
}

type statusRecorder struct {
	observability.NoopAPIHooks
	paths    []string
	statuses []int
}

func (r *statusRecorder) OnStatus(_ context.Context, e observability.Endpoint, status int, _ time.Duration) {
	r.paths = append(r.paths, e.Method+" "+e.Path)
	r.statuses = append(r.statuses, status)
}

func TestAPIHooksSeeEveryAttempt(t *testing.T) {
	rec := &statusRecorder{}
	observability.SetAPIHooks(rec)
	t.Cleanup(observability.Reset)

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, "ok")
	})

	if _, err := c.Compiler().Compile(context.Background(), "x", nil); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(rec.statuses) != 2 || rec.statuses[0] != http.StatusBadGateway || rec.statuses[1] != http.StatusOK {
		t.Fatalf("statuses = %v, want [502 200]", rec.statuses)
	}
	if rec.paths[0] != rec.paths[1] {
		t.Errorf("attempts hit different endpoints: %v", rec.paths)
	}
}

func TestDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.Templates().Get(context.Background(), "missing")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestRateLimitGivesUp(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Templates().List(context.Background())
	if !errors.Is(err, errors.ErrCodeRateLimited) {
		t.Errorf("err = %v, want RATE_LIMITED", err)
	}
	if calls.Load() != DefaultAttempts {
		t.Errorf("calls = %d, want %d", calls.Load(), DefaultAttempts)
	}
}

func TestCancelledContextIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		cancel()
		<-r.Context().Done()
	})

	_, err := c.Compiler().Compile(ctx, "x", nil)
	if err == nil {
		t.Fatal("Compile succeeded after cancel")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestTemplatesCRUD(t *testing.T) {
	created := template.Template{ID: "t1", Name: "Invoice", Content: template.DefaultContent()}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method + " " + r.URL.Path {
		case "GET /api/templates":
			json.NewEncoder(w).Encode(map[string]any{"templates": []template.Template{created}})
		case "POST /api/templates":
			var d template.Draft
			if err := json.NewDecoder(r.Body).Decode(&d); err != nil || d.Name != "Invoice" {
				t.Errorf("create body = %+v, %v", d, err)
			}
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{"template": created})
		case "GET /api/templates/t1":
			json.NewEncoder(w).Encode(map[string]any{"template": created})
		case "PUT /api/templates/t1":
			var raw map[string]json.RawMessage
			_ = json.NewDecoder(r.Body).Decode(&raw)
			if _, ok := raw["content"]; ok || string(raw["name"]) != `"Receipt"` {
				t.Errorf("patch body = %v", raw)
			}
			updated := created
			updated.Name = "Receipt"
			json.NewEncoder(w).Encode(map[string]any{"template": updated})
		case "DELETE /api/templates/t1":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	})

	ctx := context.Background()
	api := c.Templates()

	list, err := api.List(ctx)
	if err != nil || len(list) != 1 || list[0].ID != "t1" {
		t.Fatalf("List = %v, %v", list, err)
	}
	got, err := api.Create(ctx, template.Draft{Name: "Invoice", Content: template.DefaultContent()})
	if err != nil || got.ID != "t1" {
		t.Fatalf("Create = %v, %v", got, err)
	}
	if _, err := api.Get(ctx, "t1"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	name := "Receipt"
	got, err = api.Update(ctx, "t1", template.Patch{Name: &name})
	if err != nil || got.Name != "Receipt" {
		t.Fatalf("Update = %v, %v", got, err)
	}
	if err := api.Archive(ctx, "t1"); err != nil {
		t.Fatalf("Archive: %v", err)
	}
}

func TestCreateValidatesName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request sent for invalid name")
	})
	if _, err := c.Templates().Create(context.Background(), template.Draft{Name: "  "}); !errors.Is(err, errors.ErrCodeInvalidName) {
		t.Errorf("err = %v, want INVALID_NAME", err)
	}
}

func TestStorageErrorMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"message":"name is required"}`)
	})
	_, err := c.Templates().List(context.Background())
	if got := errors.UserMessage(err); got != "name is required" {
		t.Errorf("message = %q", got)
	}
}
