package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	errs "github.com/matzehuels/modkit/pkg/errors"
	"github.com/matzehuels/modkit/pkg/observability"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := WriteJSON(rec, http.StatusCreated, map[string]any{"b": 1, "a": []string{"x", "y"}}); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	want := "{\n  \"a\": [ \"x\", \"y\" ],\n  \"b\": 1\n}\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errs.New(errs.ErrCodeModNotFound, "unknown mod %q", "x"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	want := "{\n  \"error\": \"unknown mod \\\"x\\\"\",\n  \"code\": \"MOD_NOT_FOUND\"\n}\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestWriteErrorUncoded(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("boom"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if got := rec.Body.String(); strings.Contains(got, "code") {
		t.Errorf("body = %q, want no code member", got)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errs.Code
		want int
	}{
		{errs.ErrCodeModNotFound, http.StatusNotFound},
		{errs.ErrCodeFileNotFound, http.StatusNotFound},
		{errs.ErrCodeInvalidModID, http.StatusBadRequest},
		{errs.ErrCodeSyntax, http.StatusBadRequest},
		{errs.ErrCodePolicy, http.StatusBadRequest},
		{errs.ErrCodeGraph, http.StatusUnprocessableEntity},
		{errs.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", errs.New(tt.code, "x"))
			if got := StatusFor(err); got != tt.want {
				t.Errorf("StatusFor(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestReadBodyLimit(t *testing.T) {
	body := strings.NewReader(strings.Repeat("x", MaxBodySize+1))
	req := httptest.NewRequest(http.MethodPost, "/", body)
	if _, err := ReadBody(httptest.NewRecorder(), req); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("ReadBody() error = %v, want %s", err, errs.ErrCodeInvalidInput)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`["a"]`))
	data, err := ReadBody(httptest.NewRecorder(), req)
	if err != nil || string(data) != `["a"]` {
		t.Errorf("ReadBody() = %q, %v", data, err)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(seen) != 36 {
		t.Errorf("generated id = %q, want a UUID", seen)
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("response id = %q, want %q", got, seen)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "abc" {
		t.Errorf("id = %q, want client id abc", seen)
	}

	if got := RequestIDFrom(context.Background()); got != "" {
		t.Errorf("RequestIDFrom(empty) = %q, want empty", got)
	}
}

type recordingHooks struct {
	observability.NoopServerHooks
	requests  []string
	responses []int
}

func (h *recordingHooks) OnRequest(_ context.Context, id, method, path string) {
	h.requests = append(h.requests, method+" "+path)
}

func (h *recordingHooks) OnResponse(_ context.Context, id, method, path string, status int, _ time.Duration) {
	h.responses = append(h.responses, status)
}

func TestObserve(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetServerHooks(hooks)
	t.Cleanup(observability.Reset)

	h := RequestID(Observe(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("ok"))
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/mods", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	if want := []string{"GET /mods", "GET /missing"}; strings.Join(hooks.requests, ",") != strings.Join(want, ",") {
		t.Errorf("requests = %v, want %v", hooks.requests, want)
	}
	if len(hooks.responses) != 2 || hooks.responses[0] != 200 || hooks.responses[1] != 404 {
		t.Errorf("responses = %v, want [200 404]", hooks.responses)
	}
}
