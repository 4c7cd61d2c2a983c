package cli

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/modkit/pkg/cache"
	"github.com/matzehuels/modkit/pkg/httputil"
	"github.com/matzehuels/modkit/pkg/json"
	"github.com/matzehuels/modkit/pkg/modinfo"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	s := &modinfo.Scanner{Cache: cache.NewNullCache()}
	srv := httptest.NewServer(newAPI(s, testResult()).routes())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, *json.Reader) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if resp.Header.Get(httputil.RequestIDHeader) == "" {
		t.Errorf("%s %s: missing request id", method, path)
	}
	r, err := json.NewReaderFrom(resp.Body, json.WithPath(path))
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, r
}

func TestAPIHealth(t *testing.T) {
	srv := newTestAPI(t)
	status, r := do(t, srv, http.MethodGet, "/healthz", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	o, err := r.GetObject()
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := o.GetInt("mods"); n != 4 {
		t.Errorf("mods = %d, want 4", n)
	}
}

func TestAPIListMods(t *testing.T) {
	srv := newTestAPI(t)
	status, r := do(t, srv, http.MethodGet, "/mods", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	a, err := r.GetArray()
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, v := range a.Values() {
		o, err := v.GetObject()
		if err != nil {
			t.Fatal(err)
		}
		id, _ := o.GetString("id")
		ids = append(ids, id)
	}
	if want := []string{"dda", "aftershock", "nodrops", "broken"}; !slices.Equal(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestAPIGetMod(t *testing.T) {
	srv := newTestAPI(t)

	tests := []struct {
		id        string
		available bool
		errors    []string
		deps      []string
	}{
		{"aftershock", true, nil, []string{"dda"}},
		{"broken", false, []string{"Missing Dependency(ies): [missing]"}, []string{"missing"}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			status, r := do(t, srv, http.MethodGet, "/mods/"+tt.id, "")
			if status != http.StatusOK {
				t.Fatalf("status = %d, want 200", status)
			}
			o, err := r.GetObject()
			if err != nil {
				t.Fatal(err)
			}
			if got, _ := o.GetBool("available"); got != tt.available {
				t.Errorf("available = %v, want %v", got, tt.available)
			}
			if got, _ := o.GetStringArray("errors"); !slices.Equal(got, tt.errors) {
				t.Errorf("errors = %v, want %v", got, tt.errors)
			}
			if got, _ := o.GetStringArray("dependencies"); !slices.Equal(got, tt.deps) {
				t.Errorf("dependencies = %v, want %v", got, tt.deps)
			}
			if !o.Has("dependents") {
				t.Error("detailed view has no dependents")
			}
		})
	}
}

func TestAPIRelated(t *testing.T) {
	srv := newTestAPI(t)

	tests := []struct {
		path string
		want []string
	}{
		{"/mods/aftershock/dependencies", []string{"dda"}},
		{"/mods/dda/dependents", []string{"aftershock"}},
		{"/mods/dda/dependencies", nil},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, r := do(t, srv, http.MethodGet, tt.path, "")
			if status != http.StatusOK {
				t.Fatalf("status = %d, want 200", status)
			}
			var got []string
			if err := r.Read(&got); err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("GET %s = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestAPIOrder(t *testing.T) {
	srv := newTestAPI(t)

	for _, body := range []string{`["aftershock"]`, `{"mods": ["aftershock", "dda"]}`} {
		status, r := do(t, srv, http.MethodPost, "/order", body)
		if status != http.StatusOK {
			t.Fatalf("POST /order %s: status = %d, want 200", body, status)
		}
		o, err := r.GetObject()
		if err != nil {
			t.Fatal(err)
		}
		if got, _ := o.GetStringArray("order"); !slices.Equal(got, []string{"dda", "aftershock"}) {
			t.Errorf("POST /order %s = %v, want [dda aftershock]", body, got)
		}
	}
}

func TestAPIErrors(t *testing.T) {
	srv := newTestAPI(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"unknown mod", http.MethodGet, "/mods/nope", "", http.StatusNotFound, "MOD_NOT_FOUND"},
		{"unknown route", http.MethodGet, "/nope", "", http.StatusNotFound, "NOT_FOUND"},
		{"unavailable", http.MethodPost, "/order", `["broken"]`, http.StatusUnprocessableEntity, "GRAPH"},
		{"not installed", http.MethodPost, "/order", `["ghost"]`, http.StatusNotFound, "MOD_NOT_FOUND"},
		{"empty selection", http.MethodPost, "/order", `[]`, http.StatusBadRequest, "INVALID_INPUT"},
		{"scalar body", http.MethodPost, "/order", `"dda"`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad id", http.MethodPost, "/order", `["a b"]`, http.StatusBadRequest, "INVALID_MOD_ID"},
		{"syntax", http.MethodPost, "/order", `["dda"`, http.StatusBadRequest, "SYNTAX"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, r := do(t, srv, tt.method, tt.path, tt.body)
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			o, err := r.GetObject()
			if err != nil {
				t.Fatal(err)
			}
			if got, _ := o.GetString("code"); got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestDecodeSelectionStrict(t *testing.T) {
	if _, err := decodeSelection([]byte(`{"mods": ["dda"], "extra": 1}`)); err == nil {
		t.Error("decodeSelection() accepted an unknown member")
	}
}
