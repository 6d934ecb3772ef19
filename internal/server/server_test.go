package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/genposter/pkg/cache"
	"github.com/matzehuels/genposter/pkg/observability"
	"github.com/matzehuels/genposter/pkg/pipeline"
	"github.com/matzehuels/genposter/pkg/poster"
)

const smallQuery = "width=120&height=160&layers=4&palette_size=8&resolution=40"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(c, nil, logger)
	ts := httptest.NewServer(New(runner, logger).Handler())
	t.Cleanup(func() {
		ts.Close()
		runner.Close()
	})
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestVersion(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts, "/api/v1/version")
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["version"] == "" {
		t.Errorf("version missing: %v", body)
	}
}

func TestStyles(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts, "/api/v1/styles")
	var body stylesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.PaletteStyles) != 9 {
		t.Errorf("palette styles = %v", body.PaletteStyles)
	}
	if len(body.ShapeKinds) != 3 {
		t.Errorf("shape kinds = %v", body.ShapeKinds)
	}
	if len(body.Presets) == 0 || len(body.Formats) != 2 || len(body.AlphaModes) != 2 {
		t.Errorf("styles = %+v", body)
	}
}

func TestPreset(t *testing.T) {
	ts := newTestServer(t)

	resp := get(t, ts, "/api/v1/presets/neon-night")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body presetResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Params.PaletteStyle != "neon" {
		t.Errorf("palette_style = %q", body.Params.PaletteStyle)
	}

	if resp := get(t, ts, "/api/v1/presets/nope"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown preset status = %d, want 404", resp.StatusCode)
	}
	// Paths must never reach the file loader.
	if resp := get(t, ts, "/api/v1/presets/x.toml"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("file preset status = %d, want 404", resp.StatusCode)
	}
}

func TestPosterPNG(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts, "/poster.png?seed=42&"+smallQuery)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, readBody(t, resp))
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get(headerRenderID) == "" {
		t.Error("missing render id")
	}
	if got := resp.Header.Get(headerSeed); got != "42" {
		t.Errorf("seed header = %q", got)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 160 {
		t.Errorf("size = %v", b)
	}
}

func TestPosterDeterministicAndCached(t *testing.T) {
	ts := newTestServer(t)
	path := "/poster.png?seed=9&" + smallQuery

	first := get(t, ts, path)
	a := readBody(t, first)
	second := get(t, ts, path)
	b := readBody(t, second)

	if !bytes.Equal(a, b) {
		t.Error("same seed produced different bytes")
	}
	if got := first.Header.Get(headerCache); got != "miss" {
		t.Errorf("first X-Cache = %q, want miss", got)
	}
	if got := second.Header.Get(headerCache); got != "hit" {
		t.Errorf("second X-Cache = %q, want hit", got)
	}
}

func TestPosterUnseeded(t *testing.T) {
	ts := newTestServer(t)
	for _, seed := range []string{"", "seed=0&"} {
		resp := get(t, ts, "/poster.png?"+seed+smallQuery)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		if got := resp.Header.Get("Cache-Control"); got != "no-store" {
			t.Errorf("Cache-Control = %q, want no-store", got)
		}
		if resp.Header.Get(headerSeed) == "" {
			t.Error("drawn seed should be reported")
		}
	}
}

func TestPosterDownload(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts, "/poster.png?download=1&seed=3&"+smallQuery)
	want := `attachment; filename="generative_poster.png"`
	if got := resp.Header.Get("Content-Disposition"); got != want {
		t.Errorf("Content-Disposition = %q, want %q", got, want)
	}

	resp = get(t, ts, "/poster.jpg?download=1&seed=3&"+smallQuery)
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := resp.Header.Get("Content-Disposition"); !strings.Contains(got, "generative_poster.jpg") {
		t.Errorf("Content-Disposition = %q", got)
	}
}

func TestPosterErrors(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		path string
		code int
		err  string
	}{
		{"/poster.gif?" + smallQuery, http.StatusBadRequest, "INVALID_FORMAT"},
		{"/poster.png?width=0", http.StatusBadRequest, "INVALID_PARAMETER"},
		{"/poster.png?layers=abc", http.StatusBadRequest, "INVALID_PARAMETER"},
		{"/poster.png?background=%23zzzzzz", http.StatusBadRequest, "INVALID_COLOR"},
		{"/poster.png?alpha_min=0.9&alpha_max=0.1", http.StatusBadRequest, "INVALID_PARAMETER"},
		{"/poster.png?preset=missing", http.StatusNotFound, "NOT_FOUND"},
		{"/poster.png?quality=x", http.StatusBadRequest, "INVALID_PARAMETER"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := get(t, ts, tt.path)
			if resp.StatusCode != tt.code {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.code)
			}
			var body apiError
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Error != tt.err {
				t.Errorf("error = %q, want %q (%s)", body.Error, tt.err, body.Message)
			}
		})
	}
}

func TestPosterUnknownStyleWarns(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts, "/poster.png?seed=1&palette_style=plaid&"+smallQuery)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get(headerWarnings) == "" {
		t.Error("expected a warning header for an unknown style")
	}
}

func TestRenderAPI(t *testing.T) {
	ts := newTestServer(t)
	body := `{"seed": 5, "width": 100, "height": 140, "layers": 3, "shape_kind": "polygon", "format": "jpeg"}`
	resp, err := http.Post(ts.URL+"/api/v1/render", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, readBody(t, resp))
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get(headerRenderID) == "" {
		t.Error("missing X-Render-ID")
	}
}

func TestRenderAPIErrors(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name, body string
		code       int
		field      string
	}{
		{"unknown key", `{"colour": "red"}`, http.StatusBadRequest, ""},
		{"bad json", `{`, http.StatusBadRequest, ""},
		{"bad value", `{"layers": -1}`, http.StatusBadRequest, "layers"},
		{"huge blur", `{"blur_strength": 1e9}`, http.StatusBadRequest, "blur_strength"},
		{"huge wobble", `{"wobble": 1e8}`, http.StatusBadRequest, "wobble"},
		{"bad color", `{"background": "#nope"}`, http.StatusBadRequest, "background"},
		{"bad format", `{"format": "bmp"}`, http.StatusBadRequest, ""},
		{"unknown preset", `{"preset": "none"}`, http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/v1/render", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.code {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.code)
			}
			var body apiError
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Field != tt.field {
				t.Errorf("field = %q, want %q (message %q)", body.Field, tt.field, body.Message)
			}
		})
	}
}

func TestDecodeRenderRequest(t *testing.T) {
	req, err := decodeRenderRequest([]byte(`{"preset": "monochrome-study", "layers": 7, "seed": 0}`))
	if err != nil {
		t.Fatal(err)
	}
	if req.PaletteStyle != "monochrome" {
		t.Errorf("preset not applied: palette_style = %q", req.PaletteStyle)
	}
	if req.Layers != 7 {
		t.Errorf("override not applied: layers = %d", req.Layers)
	}
	if req.Seed != nil {
		t.Error("seed 0 should mean random")
	}

	req, err = decodeRenderRequest(nil)
	if err != nil {
		t.Fatal(err)
	}
	if req.Layers != poster.DefaultLayers {
		t.Errorf("empty body should use defaults, layers = %d", req.Layers)
	}
}

func TestParamsQueryRoundTrip(t *testing.T) {
	p := poster.DefaultParams().WithSeed(77)
	p.Layers = 11
	p.InfoLine = false
	p.Title = "Hello & goodbye"

	got, err := paramsFromQuery(queryFromParams(p))
	if err != nil {
		t.Fatal(err)
	}
	if got.Layers != 11 || got.InfoLine || got.Title != p.Title || got.Seed == nil || *got.Seed != 77 {
		t.Errorf("round trip = %+v", got)
	}
}

func TestParamsFromQueryCheckbox(t *testing.T) {
	q := url.Values{"info_line": {"false", "true"}, "enforce_contrast": {"false"}}
	p, err := paramsFromQuery(q)
	if err != nil {
		t.Fatal(err)
	}
	if !p.InfoLine {
		t.Error("checked box should win over the hidden default")
	}
	if p.EnforceContrast {
		t.Error("unchecked box should be false")
	}
}

func TestIndex(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts, "/?seed=12&palette_style=ocean")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	html := string(readBody(t, resp))
	for _, want := range []string{
		`name="palette_style"`,
		`name="shape_kind"`,
		`name="blur_strength"`,
		`name="enforce_contrast"`,
		`value="ocean" selected`,
		`/poster.png?`,
		`download=1`,
		`neon-night`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("index missing %q", want)
		}
	}
}

func TestIndexShowsErrors(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts, "/?width=-5")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	html := string(readBody(t, resp))
	if !strings.Contains(html, `class="error"`) {
		t.Error("index should show the validation error")
	}
	if strings.Contains(html, "<img") {
		t.Error("no poster should be shown for invalid input")
	}
}

type recordingHooks struct {
	observability.NoopHTTPHooks
	mu     sync.Mutex
	routes []string
}

func (h *recordingHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, method+" "+route)
}

func TestObserveReportsRoutePattern(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t)
	get(t, ts, "/api/v1/presets/classic")

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.routes) != 1 || hooks.routes[0] != "GET /api/v1/presets/{name}" {
		t.Errorf("routes = %v", hooks.routes)
	}
}

func TestServeShutsDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(pipeline.NewRunner(nil, nil, logger), logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	addr := "http://" + ln.Addr().String() + "/healthz"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		if resp, err = http.Get(addr); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never answered: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestRenderWaitsForSlot(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(pipeline.NewRunner(nil, nil, logger), logger)
	s.SetMaxRenders(1)

	// Hold the only slot so the next render has to wait.
	if err := s.renders.Acquire(context.Background(), 1); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/poster.png?seed=3&"+smallQuery, nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status while busy = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	s.renders.Release(1)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/poster.png?seed=3&"+smallQuery, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status after release = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestExecuteDropsCanceledRender(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(pipeline.NewRunner(nil, nil, logger), logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := poster.DefaultParams()
	p.Width, p.Height, p.Layers = 80, 100, 2
	if _, err := s.execute(ctx, pipeline.Options{Params: p.WithSeed(1)}); err == nil {
		t.Error("a canceled request should not produce a poster")
	}
	// The slot is free again.
	if !s.renders.TryAcquire(int64(1)) {
		t.Error("render slot leaked")
	}
}
