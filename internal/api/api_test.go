package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SuhaniChatterjee/medstock-wise/internal/auth"
	"github.com/SuhaniChatterjee/medstock-wise/internal/cache"
	"github.com/SuhaniChatterjee/medstock-wise/internal/config"
	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/SuhaniChatterjee/medstock-wise/internal/forecast"
	"github.com/SuhaniChatterjee/medstock-wise/internal/service"
	"github.com/SuhaniChatterjee/medstock-wise/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "router-test-secret"

type testServer struct {
	router *gin.Engine
	mem    *memStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := auth.NewJWTVerifier(config.AuthConfig{JWTSecret: testSecret, Audience: "authenticated"})
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}

	mem := newMemStore()
	store := mem.store()
	dashCache := cache.NewNoopDashboardCache()
	predictions := service.NewPredictionService(store, dashCache, forecast.DefaultAlertThresholds())
	optimizations := service.NewOptimizationService(store, forecast.DefaultCostParams())

	router := NewRouter(&Services{
		Predictions:   predictions,
		Optimizations: optimizations,
		Seed:          service.NewSeedService(store, dashCache),
		Inventory:     service.NewInventoryService(store, dashCache, storage.NewNoopStorage()),
		Alerts:        service.NewAlertService(store.Alerts, dashCache),
		Dashboard:     service.NewDashboardService(store, dashCache, 10),
		Identity:      verifier,
	}, RouterConfig{AllowedOrigins: []string{"*"}, MaxUploadBytes: 1 << 20})

	return &testServer{router: router, mem: mem}
}

func token(t *testing.T, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":       uuid.NewString(),
		"aud":       "authenticated",
		"exp":       time.Now().Add(time.Hour).Unix(),
		"email":     role + "@example.org",
		"role":      "authenticated",
		"user_role": role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + signed
}

func (s *testServer) do(t *testing.T, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestPreflightIsAnsweredWithWildcardOrigin(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/functions/v1/run-predictions", nil)
	req.Header.Set("Origin", "https://dashboard.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization, content-type")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: got %d want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin: got %q want *", got)
	}
}

func TestOptionsWithoutOriginIsAnswered(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{
		"/functions/v1/run-predictions",
		"/functions/v1/calculate-cost-optimization",
		"/functions/v1/seed-sample-data",
	} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("%s: status got %d want %d", path, rec.Code, http.StatusNoContent)
		}
	}
}

func TestFunctionsRequireBearer(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{
		"/functions/v1/run-predictions",
		"/functions/v1/calculate-cost-optimization",
		"/functions/v1/seed-sample-data",
	} {
		rec := s.do(t, http.MethodPost, path, "", map[string]bool{"run_all": true})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s without token: got %d", path, rec.Code)
		}
		rec = s.do(t, http.MethodPost, path, "Bearer nonsense", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s with bad token: got %d", path, rec.Code)
		}
	}
}

func TestRunPredictionsWithoutModel(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/functions/v1/run-predictions", token(t, "staff"), map[string]bool{"run_all": true})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if !strings.Contains(body["error"], "no active model") {
		t.Errorf("error: got %q", body["error"])
	}
}

func TestSeedThenRunFunctions(t *testing.T) {
	s := newTestServer(t)
	bearer := token(t, "manager")

	rec := s.do(t, http.MethodPost, "/functions/v1/seed-sample-data", bearer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("seed: %d %s", rec.Code, rec.Body.String())
	}
	var seed domain.SeedResult
	decode(t, rec, &seed)
	if !seed.Success || seed.Stats.InventoryItems != 8 || seed.Stats.Predictions != 8 {
		t.Errorf("unexpected seed result: %+v", seed)
	}

	rec = s.do(t, http.MethodPost, "/functions/v1/run-predictions", bearer, map[string]bool{"run_all": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("run predictions: %d %s", rec.Code, rec.Body.String())
	}
	var run domain.RunPredictionsResult
	decode(t, rec, &run)
	if !run.Success || len(run.Predictions) != 8 || run.ModelVersion != service.SampleModelVersion {
		t.Errorf("unexpected run: %+v", run)
	}
	// IV Infusion Set (5%) is critical, N95 masks (24%) no alert, Ventilator (60%) no alert
	if run.AlertsGenerated != 1 {
		t.Errorf("alerts generated: got %d want 1", run.AlertsGenerated)
	}

	rec = s.do(t, http.MethodPost, "/functions/v1/calculate-cost-optimization", bearer, map[string]bool{"run_all": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("optimize: %d %s", rec.Code, rec.Body.String())
	}
	var opt domain.RunOptimizationResult
	decode(t, rec, &opt)
	if !opt.Success || opt.TotalItems != 8 {
		t.Errorf("unexpected optimization: %+v", opt)
	}
	for _, o := range opt.Optimizations {
		if o.EOQ < 0 || o.ReorderPoint < 0 {
			t.Errorf("negative outputs for %s: %+v", o.ItemName, o)
		}
	}
}

func TestRunPredictionsDemoMode(t *testing.T) {
	s := newTestServer(t)
	bearer := token(t, "staff")
	s.do(t, http.MethodPost, "/functions/v1/seed-sample-data", bearer, nil)

	before := len(s.mem.history)
	rec := s.do(t, http.MethodPost, "/functions/v1/run-predictions", bearer, map[string]interface{}{
		"single_prediction": map[string]interface{}{
			"item_name":         "Ad hoc",
			"item_type":         "Consumable",
			"current_stock":     2487,
			"min_required":      656,
			"max_capacity":      5000,
			"avg_usage_per_day": 55,
			"restock_lead_time": 12,
			"unit_cost":         1.5,
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("demo: %d %s", rec.Code, rec.Body.String())
	}
	var demo domain.DemoPredictionResult
	decode(t, rec, &demo)
	if demo.EstimatedDemand != 660 || demo.InventoryShortfall != 0 || demo.ReplenishmentNeeds != 0 {
		t.Errorf("unexpected demo: %+v", demo)
	}
	if len(s.mem.history) != before {
		t.Error("demo mode wrote history")
	}

	rec = s.do(t, http.MethodPost, "/functions/v1/run-predictions", bearer, map[string]interface{}{
		"single_prediction": map[string]interface{}{
			"item_name":         "Ad hoc",
			"item_type":         "Consumable",
			"current_stock":     100,
			"min_required":      -10,
			"max_capacity":      500,
			"avg_usage_per_day": -5,
			"restock_lead_time": 3,
			"unit_cost":         1.5,
		},
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("negative demo input: got %d %s", rec.Code, rec.Body.String())
	}
	var body map[string]interface{}
	decode(t, rec, &body)
	if msg, _ := body["error"].(string); !strings.Contains(msg, "must not be negative") {
		t.Errorf("error body: got %v", body)
	}
	if _, ok := body["estimated_demand"]; ok {
		t.Errorf("rejected demo returned an estimate: %v", body)
	}
}

func TestCalculateCostOptimizationWithoutSelection(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/functions/v1/calculate-cost-optimization", token(t, "staff"), nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestInventoryEndpoints(t *testing.T) {
	s := newTestServer(t)
	item := map[string]interface{}{
		"item_name":         "Face Shields",
		"item_type":         "PPE",
		"current_stock":     40,
		"min_required":      100,
		"max_capacity":      400,
		"avg_usage_per_day": 12,
		"restock_lead_time": 5,
		"unit_cost":         "3.20",
	}

	if rec := s.do(t, http.MethodPost, "/api/v1/inventory", token(t, "staff"), item); rec.Code != http.StatusForbidden {
		t.Fatalf("staff create: got %d", rec.Code)
	}

	rec := s.do(t, http.MethodPost, "/api/v1/inventory", token(t, "manager"), item)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var created domain.InventoryItem
	decode(t, rec, &created)
	if created.ItemType != domain.ItemTypeConsumable {
		t.Errorf("item type: got %s", created.ItemType)
	}

	bad := map[string]interface{}{"item_name": "Chair", "item_type": "Furniture"}
	if rec := s.do(t, http.MethodPost, "/api/v1/inventory", token(t, "manager"), bad); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid type: got %d", rec.Code)
	}

	if rec := s.do(t, http.MethodGet, "/api/v1/inventory/not-a-uuid", token(t, "staff"), nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/api/v1/inventory/"+uuid.NewString(), token(t, "staff"), nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: got %d", rec.Code)
	}

	rec = s.do(t, http.MethodPost, "/api/v1/inventory/"+created.ID.String()+"/restock", token(t, "manager"), map[string]int{"quantity": 1000})
	if rec.Code != http.StatusOK {
		t.Fatalf("restock: %d %s", rec.Code, rec.Body.String())
	}
	var restocked domain.InventoryItem
	decode(t, rec, &restocked)
	if restocked.CurrentStock != 400 {
		t.Errorf("restock should cap at capacity: got %d", restocked.CurrentStock)
	}

	rec = s.do(t, http.MethodGet, "/api/v1/inventory?low_stock=true", token(t, "staff"), nil)
	var low []domain.InventoryItem
	decode(t, rec, &low)
	if len(low) != 0 {
		t.Errorf("low stock after restock: got %d", len(low))
	}

	if rec := s.do(t, http.MethodDelete, "/api/v1/inventory/"+created.ID.String(), token(t, "manager"), nil); rec.Code != http.StatusForbidden {
		t.Errorf("manager delete: got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodDelete, "/api/v1/inventory/"+created.ID.String(), token(t, "admin"), nil); rec.Code != http.StatusNoContent {
		t.Errorf("admin delete: got %d", rec.Code)
	}
}

func TestInventoryImportEndpoint(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "stock.csv")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = fw.Write([]byte("Item Name,Category,Current Stock,Min Required\nGloves,PPE,10,50\nBed,Furniture,1,1\n"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", token(t, "manager"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("import: %d %s", rec.Code, rec.Body.String())
	}
	var res domain.ImportResult
	decode(t, rec, &res)
	if res.Imported != 1 || res.Skipped != 1 || len(res.Errors) != 1 || res.Errors[0].Row != 3 {
		t.Errorf("unexpected import result: %+v", res)
	}
}

func TestAlertEndpoints(t *testing.T) {
	s := newTestServer(t)
	bearer := token(t, "staff")
	s.do(t, http.MethodPost, "/functions/v1/seed-sample-data", bearer, nil)

	rec := s.do(t, http.MethodGet, "/api/v1/alerts?unread=true&severity=critical", bearer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d", rec.Code)
	}
	var alerts []domain.AlertHistory
	decode(t, rec, &alerts)
	if len(alerts) != 1 {
		t.Fatalf("critical alerts: got %d want 1", len(alerts))
	}

	if rec := s.do(t, http.MethodGet, "/api/v1/alerts?severity=urgent", bearer, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad severity: got %d", rec.Code)
	}

	path := "/api/v1/alerts/" + alerts[0].ID.String() + "/resolve"
	if rec := s.do(t, http.MethodPatch, path, bearer, map[string]string{"resolution_notes": "ordered"}); rec.Code != http.StatusNoContent {
		t.Fatalf("resolve: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/api/v1/dashboard/summary", bearer, nil)
	var summary domain.DashboardSummary
	decode(t, rec, &summary)
	if summary.TotalItems != 8 || summary.UnreadAlerts != 3 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	if rec := s.do(t, http.MethodGet, "/health", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("health: got %d", rec.Code)
	}
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, all := normalizeAllowedOrigins([]string{"https://a.example, https://b.example", " "})
	if all || len(origins) != 2 {
		t.Errorf("got %v %v", origins, all)
	}
	if _, all := normalizeAllowedOrigins([]string{"*"}); !all {
		t.Error("expected wildcard")
	}
	if cfg := corsConfig(nil); !cfg.AllowAllOrigins {
		t.Error("no configured origins should allow all")
	}
}
