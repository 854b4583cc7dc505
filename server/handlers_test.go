package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"k2age/core/estimate"
	"k2age/core/grid"
	"k2age/core/track"
	"k2age/model"
	"k2age/repository"
)

type memRuns struct {
	mu   sync.Mutex
	runs map[string]*model.BinaryRun
	seq  int
}

func newMemRuns() *memRuns { return &memRuns{runs: map[string]*model.BinaryRun{}} }

func (m *memRuns) Create(_ context.Context, run *model.BinaryRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	run.ID = fmt.Sprintf("run-%d", m.seq)
	m.runs[run.ID] = run
	return nil
}

func (m *memRuns) GetByID(_ context.Context, id string) (*model.BinaryRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs[id], nil
}

func (m *memRuns) List(_ context.Context, limit, offset int) ([]*model.BinaryRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.BinaryRun
	for _, r := range m.runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRuns) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.runs, id)
	return nil
}

func writeModel(t *testing.T, root string, c grid.Catalog, mass, feh, k2At6, slope float64) {
	t.Helper()
	loc, err := c.Locator(mass, feh)
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	for x := 5.9; x < 10.15; x += 0.037 {
		fmt.Fprintf(&b, "%.8e 0 0 0 0 0 0 0 0 0 0 0 %.10f\n", math.Pow(10, x), k2At6-slope*(x-6))
	}
	p := filepath.Join(root, filepath.FromSlash(loc))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestRouter(t *testing.T, runs *memRuns) http.Handler {
	t.Helper()
	c := grid.NewDSEP()
	root := t.TempDir()
	writeModel(t, root, c, 0.55, 0.0, -1.50, 0.20)
	writeModel(t, root, c, 0.25, 0.0, -1.20, 0.10)
	in := track.NewInterpolator(c, track.NewLoader(track.NewDirSource(root), nil))

	var repo repository.RunRepository
	if runs != nil {
		repo = runs
	}
	return NewRouter(NewAPIHandler(estimate.New(in, nil), in, repo, nil))
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const binaryBody = `{"primaryMass":0.55,"secondaryMass":0.25,"primaryRadius":0.62,"secondaryRadius":0.41,"metallicity":0.0,"eccentricity":0.2,"semiMajorAxis":3.0}`

func TestGridHandler(t *testing.T) {
	rec := do(t, newTestRouter(t, nil), http.MethodGet, "/api/grid", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got gridResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got.Masses) != 31 || len(got.Metallicities) != 8 || len(got.LogAges) != 81 {
		t.Errorf("grid sizes = %d/%d/%d", len(got.Masses), len(got.Metallicities), len(got.LogAges))
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestTrackHandler(t *testing.T) {
	h := newTestRouter(t, nil)
	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"on grid", "/api/track?mass=0.55&feh=0.0", http.StatusOK},
		{"missing feh", "/api/track?mass=0.55", http.StatusBadRequest},
		{"not a number", "/api/track?mass=abc&feh=0", http.StatusBadRequest},
		{"out of range", "/api/track?mass=0.95&feh=0", http.StatusUnprocessableEntity},
		{"no model file", "/api/track?mass=0.35&feh=0", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target, "")
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
			if tt.want != http.StatusOK {
				return
			}
			var got trackResponse
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatal(err)
			}
			if len(got.K2) != 81 || len(got.Ages) != 81 {
				t.Errorf("track length = %d/%d", len(got.K2), len(got.Ages))
			}
		})
	}
}

func TestBinaryHandler_StoresRun(t *testing.T) {
	runs := newMemRuns()
	h := newTestRouter(t, runs)

	rec := do(t, h, http.MethodPost, "/api/binary", binaryBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var got binaryResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.ID != "run-1" || len(got.Result.Track) != 81 {
		t.Fatalf("response = id %q, %d points", got.ID, len(got.Result.Track))
	}

	rec = do(t, h, http.MethodGet, "/api/runs/run-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get run status = %d", rec.Code)
	}
	var run model.BinaryRun
	if err := json.NewDecoder(rec.Body).Decode(&run); err != nil {
		t.Fatal(err)
	}
	if len(run.Points) != 81 || run.Rotation1 != "pseudo-synchronous" {
		t.Errorf("stored run = %d points, rotation %q", len(run.Points), run.Rotation1)
	}

	if rec := do(t, h, http.MethodGet, "/api/runs?limit=5", ""); rec.Code != http.StatusOK {
		t.Errorf("list status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/runs?limit=-1", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, "/api/runs/run-1", ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/runs/run-1", ""); rec.Code != http.StatusNotFound {
		t.Errorf("get deleted run status = %d", rec.Code)
	}
}

func TestBinaryHandler_Errors(t *testing.T) {
	h := newTestRouter(t, nil)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"primaryMass":`, http.StatusBadRequest},
		{"unknown field", `{"mass":1}`, http.StatusBadRequest},
		{"missing fields", `{"primaryMass":0.55}`, http.StatusBadRequest},
		{"circular limit", strings.Replace(binaryBody, `"eccentricity":0.2`, `"eccentricity":1.0`, 1), http.StatusBadRequest},
		{"unreachable k2", strings.Replace(binaryBody, `}`, `,"observedK2":5}`, 1), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/binary", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestRunsWithoutStore(t *testing.T) {
	rec := do(t, newTestRouter(t, nil), http.MethodGet, "/api/runs/abc", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
