package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"buzzwatch/internal/platform/config"
	phttp "buzzwatch/internal/platform/net/http"
	metahttp "buzzwatch/internal/services/api/meta/http"
)

func mountMeta() phttp.Router {
	r := phttp.NewServer(config.New()).Router()
	metahttp.Register(r, metahttp.Deps{
		ServiceName: "buzzwatch-api",
		StartedAt:   time.Now().Add(-3 * time.Second),
	})
	return r
}

func getJSON(t *testing.T, r phttp.Router, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.Mux().ServeHTTP(rec, req)

	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal envelope: %v (%s)", err, rec.Body.String())
	}
	data, _ := env.Data.(map[string]any)
	return rec, data
}

func TestMeta_Health(t *testing.T) {
	rec, data := getJSON(t, mountMeta(), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if data["ok"] != true || data["service"] != "buzzwatch-api" {
		t.Fatalf("health = %#v", data)
	}
}

func TestMeta_ReadySkipsAbsentStores(t *testing.T) {
	rec, data := getJSON(t, mountMeta(), "/ready")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if data["status"] != "degraded" {
		t.Fatalf("overall = %v, want degraded with no stores wired", data["status"])
	}
	checks, _ := data["checks"].([]any)
	if len(checks) != 2 {
		t.Fatalf("checks = %#v", data["checks"])
	}
	for _, c := range checks {
		m, _ := c.(map[string]any)
		if m["status"] != "skipped" {
			t.Fatalf("check = %#v, want skipped", m)
		}
	}
}

func TestMeta_Version(t *testing.T) {
	rec, data := getJSON(t, mountMeta(), "/version")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if data["service"] != "buzzwatch-api" || data["version"] == "" {
		t.Fatalf("version = %#v", data)
	}
}

func TestMeta_WordbagReportsEmbeddedShape(t *testing.T) {
	rec, data := getJSON(t, mountMeta(), "/wordbag")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if data["source"] != "embedded" {
		t.Fatalf("source = %v", data["source"])
	}
	pairs, _ := data["pairs"].(float64)
	if pairs <= 0 {
		t.Fatalf("pairs = %v", data["pairs"])
	}
	cats, _ := data["categories"].([]any)
	if len(cats) == 0 {
		t.Fatal("no categories reported")
	}
	var prev string
	for _, c := range cats {
		m, _ := c.(map[string]any)
		name, _ := m["category"].(string)
		kws, _ := m["keywords"].(float64)
		if name == "" || kws <= 0 {
			t.Fatalf("category entry = %#v", m)
		}
		if prev != "" && name < prev {
			t.Fatalf("categories not sorted: %q after %q", name, prev)
		}
		prev = name
	}
}
