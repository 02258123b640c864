package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/etnz/devtrack"
	"github.com/etnz/devtrack/storage"
)

func newTestServer(t *testing.T, doc string) (*httptest.Server, *storage.Memory) {
	t.Helper()
	var m *storage.Memory
	if doc == "" {
		m = storage.NewMemory(nil)
	} else {
		m = storage.NewMemory([]byte(doc))
	}
	srv := httptest.NewServer(New(devtrack.NewStore(m, "")))
	t.Cleanup(srv.Close)
	return srv, m
}

func do(t *testing.T, method, url, body string, header map[string]string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(data)
}

const tower = `{"development_data":{"gdv":1000,"gdc":600,"status":"Construction"},"sales_progress":{"total_units":10,"units_sold":4}}`

func TestProjectLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, "")

	code, body := do(t, http.MethodPut, srv.URL+"/projects/Tower%20A", tower, nil)
	if code != http.StatusOK {
		t.Fatalf("PUT = %d %s, want 200", code, body)
	}
	var stored devtrack.Record
	if err := json.Unmarshal([]byte(body), &stored); err != nil {
		t.Fatal(err)
	}
	if stored.Version != 1 || stored.Timestamp.IsZero() {
		t.Errorf("PUT returned %+v, want version 1 and a timestamp", stored)
	}

	code, body = do(t, http.MethodGet, srv.URL+"/projects/Tower%20A", "", nil)
	if code != http.StatusOK || !strings.Contains(body, `"units_sold":4`) {
		t.Errorf("GET = %d %s", code, body)
	}

	code, body = do(t, http.MethodGet, srv.URL+"/projects", "", nil)
	var all map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &all); err != nil || code != http.StatusOK {
		t.Fatalf("GET /projects = %d %s", code, body)
	}
	if _, ok := all["Tower A"]; !ok || len(all) != 1 {
		t.Errorf("GET /projects = %s", body)
	}

	code, body = do(t, http.MethodGet, srv.URL+"/metrics/portfolio", "", nil)
	want := `{"total_gdv":1000,"total_gdc":600,"total_gpm":400,"gpm_percentage":40,"status_counts":{"Construction":1}}`
	if code != http.StatusOK || strings.TrimSpace(body) != want {
		t.Errorf("GET /metrics/portfolio = %d %s, want %s", code, body, want)
	}

	if code, body = do(t, http.MethodDelete, srv.URL+"/projects/Tower%20A", "", nil); code != http.StatusNoContent {
		t.Errorf("DELETE = %d %s, want 204", code, body)
	}
	if code, _ = do(t, http.MethodGet, srv.URL+"/projects/Tower%20A", "", nil); code != http.StatusNotFound {
		t.Errorf("GET after DELETE = %d, want 404", code)
	}
}

func TestErrorStatus(t *testing.T) {
	srv, m := newTestServer(t, `{"A":`+tower+`}`)
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		header map[string]string
		want   int
	}{
		{"unknown project", http.MethodGet, "/projects/B", "", nil, http.StatusNotFound},
		{"delete unknown project", http.MethodDelete, "/projects/B", "", nil, http.StatusNotFound},
		{"invalid json", http.MethodPut, "/projects/B", `{"development_data":`, nil, http.StatusBadRequest},
		{"units sold above total", http.MethodPut, "/projects/B", `{"sales_progress":{"total_units":1,"units_sold":2}}`, nil, http.StatusBadRequest},
		{"blank name", http.MethodPut, "/projects/%20", tower, nil, http.StatusBadRequest},
		{"stale version", http.MethodPut, "/projects/A", tower, map[string]string{"If-Match": `"7"`}, http.StatusConflict},
		{"bad version", http.MethodPut, "/projects/A", tower, map[string]string{"If-Match": "seven"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, tt.method, srv.URL+tt.path, tt.body, tt.header)
			if code != tt.want {
				t.Errorf("%s %s = %d %s, want %d", tt.method, tt.path, code, body, tt.want)
			}
			if !strings.Contains(body, `"error"`) {
				t.Errorf("body = %s, want an error message", body)
			}
		})
	}
	if m.Writes() != 0 {
		t.Errorf("a failed request wrote the document")
	}
}

func TestConditionalPut(t *testing.T) {
	srv, _ := newTestServer(t, "")
	code, _ := do(t, http.MethodPut, srv.URL+"/projects/A", tower, map[string]string{"If-Match": "0"})
	if code != http.StatusOK {
		t.Fatalf("PUT If-Match 0 on a new project = %d, want 200", code)
	}
	code, _ = do(t, http.MethodPut, srv.URL+"/projects/A", tower, map[string]string{"If-Match": `"1"`})
	if code != http.StatusOK {
		t.Errorf("PUT If-Match 1 = %d, want 200", code)
	}
	code, _ = do(t, http.MethodPut, srv.URL+"/projects/A", tower, map[string]string{"If-Match": `"1"`})
	if code != http.StatusConflict {
		t.Errorf("PUT with a stale If-Match = %d, want 409", code)
	}
}

func TestWriteFailure(t *testing.T) {
	srv, m := newTestServer(t, "")
	m.WriteErr = errors.New("disk full")
	if code, body := do(t, http.MethodPut, srv.URL+"/projects/A", tower, nil); code != http.StatusInternalServerError {
		t.Errorf("PUT = %d %s, want 500", code, body)
	}
}

func TestStatusOf(t *testing.T) {
	tests := map[error]int{
		devtrack.ErrValidation:      http.StatusBadRequest,
		devtrack.ErrNotFound:        http.StatusNotFound,
		devtrack.ErrConflict:        http.StatusConflict,
		devtrack.ErrIO:              http.StatusInternalServerError,
		errors.New("anything else"): http.StatusInternalServerError,
	}
	for err, want := range tests {
		if got := statusOf(err); got != want {
			t.Errorf("statusOf(%v) = %d, want %d", err, got, want)
		}
	}
}
