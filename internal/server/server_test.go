package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"

	"github.com/five82/iqama/internal/prayer"
	"github.com/five82/iqama/internal/remote"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_SelectRequiresFilter(t *testing.T) {
	r := NewRouter(NewMemoryBackend(), "")

	tests := []struct {
		name   string
		target string
	}{
		{"missing", "/rest/v1/prayer_times"},
		{"wrong operator", "/rest/v1/prayer_times?id=neq.x"},
		{"empty value", "/rest/v1/prayer_times?id=eq."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, r, http.MethodGet, tt.target, "", nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestRouter_SelectMissingRowIsEmptyArray(t *testing.T) {
	r := NewRouter(NewMemoryBackend(), "")
	rec := serve(t, r, http.MethodGet, "/rest/v1/prayer_times?id=eq.nope&select=data", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("body = %q, want []", got)
	}
}

func TestRouter_UpsertThenSelect(t *testing.T) {
	r := NewRouter(NewMemoryBackend(), "")
	merge := map[string]string{"Prefer": "resolution=merge-duplicates,return=minimal"}

	rec := serve(t, r, http.MethodPost, "/rest/v1/prayer_times?on_conflict=id",
		`[{"id":"rec","data":{"sunrise":"06:01"}}]`, merge)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first upsert status = %d body=%s", rec.Code, rec.Body.String())
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("return=minimal body = %q", rec.Body.String())
	}

	rec = serve(t, r, http.MethodPost, "/rest/v1/prayer_times?on_conflict=id",
		`{"id":"rec","data":{"sunrise":"06:02"}}`, merge)
	if rec.Code != http.StatusCreated {
		t.Fatalf("second upsert status = %d", rec.Code)
	}

	rec = serve(t, r, http.MethodGet, "/rest/v1/prayer_times?id=eq.rec&select=data", "", nil)
	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v (%s)", err, rec.Body.String())
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if _, ok := rows[0]["id"]; ok {
		t.Fatalf("select=data should omit id: %s", rec.Body.String())
	}
	if got := string(rows[0]["data"]); got != `{"sunrise":"06:02"}` {
		t.Fatalf("data = %s", got)
	}
}

func TestRouter_InsertConflictWithoutMerge(t *testing.T) {
	r := NewRouter(NewMemoryBackend(), "")
	body := `[{"id":"rec","data":{}}]`

	if rec := serve(t, r, http.MethodPost, "/rest/v1/t", body, nil); rec.Code != http.StatusCreated {
		t.Fatalf("insert status = %d", rec.Code)
	}
	if rec := serve(t, r, http.MethodPost, "/rest/v1/t", body, nil); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate insert status = %d, want 409", rec.Code)
	}
}

func TestRouter_UpsertRejectsBadBodies(t *testing.T) {
	r := NewRouter(NewMemoryBackend(), "")
	tests := []struct {
		name   string
		target string
		body   string
	}{
		{"not json", "/rest/v1/t", "nope"},
		{"empty array", "/rest/v1/t", "[]"},
		{"missing id", "/rest/v1/t", `[{"data":{}}]`},
		{"numeric id", "/rest/v1/t", `[{"id":7,"data":{}}]`},
		{"unsupported conflict column", "/rest/v1/t?on_conflict=name", `[{"id":"a","data":{}}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, r, http.MethodPost, tt.target, tt.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestRouter_ReturnRepresentation(t *testing.T) {
	r := NewRouter(NewMemoryBackend(), "")
	rec := serve(t, r, http.MethodPost, "/rest/v1/t", `{"id":"a","data":[1]}`,
		map[string]string{"Prefer": "return=representation"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `[{"id":"a","data":[1]}]` {
		t.Fatalf("body = %s", got)
	}
}

func TestRouter_APIKey(t *testing.T) {
	r := NewRouter(NewMemoryBackend(), "secret")
	target := "/rest/v1/t?id=eq.a"

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"none", nil, http.StatusUnauthorized},
		{"wrong", map[string]string{"apikey": "nope"}, http.StatusUnauthorized},
		{"apikey header", map[string]string{"apikey": "secret"}, http.StatusOK},
		{"bearer", map[string]string{"Authorization": "Bearer secret"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := serve(t, r, http.MethodGet, target, "", tt.headers); rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	if rec := serve(t, r, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200 without key", rec.Code)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := NewRouter(NewMemoryBackend(), "secret")
	rec := serve(t, r, http.MethodOptions, "/rest/v1/t", "", map[string]string{
		"Origin":                         "http://localhost:5173",
		"Access-Control-Request-Method":  "POST",
		"Access-Control-Request-Headers": "apikey,prefer,content-type",
	})
	if rec.Code >= 300 {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("Allow-Origin = %q", got)
	}
}

func TestRouter_RemoteClientRoundTrip(t *testing.T) {
	srv := httptest.NewServer(NewRouter(NewMemoryBackend(), "k"))
	defer srv.Close()

	client, err := remote.NewClient(remote.Options{URL: srv.URL, APIKey: "k", HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	ctx := context.Background()

	if _, found, err := client.Fetch(ctx); err != nil || found {
		t.Fatalf("Fetch(empty) = found %v, err %v", found, err)
	}

	want := prayer.Defaults()
	want.Masjids[0].Prayers[prayer.Fajr] = "04:59"
	want.Sunrise = "06:10"
	if err := client.Push(ctx, want); err != nil {
		t.Fatalf("Push: %v", err)
	}
	// Second push exercises the upsert path.
	want.Masjids[1].Name = "Al Noor"
	if err := client.Push(ctx, want); err != nil {
		t.Fatalf("Push again: %v", err)
	}

	got, found, err := client.Fetch(ctx)
	if err != nil || !found {
		t.Fatalf("Fetch = found %v, err %v", found, err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRedisBackend(t *testing.T) {
	addr := os.Getenv("IQAMA_TEST_REDIS")
	if addr == "" {
		t.Skip("IQAMA_TEST_REDIS not set")
	}
	ctx := context.Background()
	b, err := NewRedisBackend(ctx, addr, "")
	if err != nil {
		t.Fatalf("NewRedisBackend: %v", err)
	}
	defer b.Close()

	table := "test_" + strings.ReplaceAll(t.Name(), "/", "_")
	if _, ok, err := b.Get(ctx, table, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = %v, %v", ok, err)
	}
	if err := b.Put(ctx, table, "a", json.RawMessage(`{"x":1}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	data, ok, err := b.Get(ctx, table, "a")
	if err != nil || !ok || string(data) != `{"x":1}` {
		t.Fatalf("Get = %s, %v, %v", data, ok, err)
	}
}

func TestMemoryBackend_CopiesData(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()
	in := json.RawMessage(`{"a":1}`)
	if err := b.Put(ctx, "t", "id", in); err != nil {
		t.Fatal(err)
	}
	in[2] = 'X'
	got, _, _ := b.Get(ctx, "t", "id")
	if string(got) != `{"a":1}` {
		t.Fatalf("stored data aliased caller slice: %s", got)
	}
}
