package routes_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"FundChain/config"
	"FundChain/internal/domain/campaign"
	"FundChain/internal/domain/pledge"
	"FundChain/internal/domain/settlement"
	"FundChain/internal/infrastructure"
	"FundChain/internal/middleware"
	"FundChain/internal/routes"

	"github.com/gin-gonic/gin"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type server struct {
	t      *testing.T
	router *gin.Engine
	clock  *fakeClock
	jwt    *middleware.JwtService
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := infrastructure.NewMemoryCampaignRepository()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}

	jwtSvc, err := middleware.NewJwtService(config.JWTConfig{Secret: "test-secret", Issuer: "fundchain", TTL: time.Hour})
	if err != nil {
		t.Fatalf("jwt service: %v", err)
	}
	limiter := middleware.NewRateLimiter(10_000, time.Minute)
	t.Cleanup(limiter.Stop)

	handler := &routes.Handler{
		CampaignService:   campaign.NewService(repo, clock, nil),
		PledgeService:     pledge.NewService(repo, clock, nil),
		SettlementService: settlement.NewService(repo, clock, nil),
		StorageDriver:     config.StorageDriverMemory,
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	routes.Register(router, handler, jwtSvc, limiter)

	return &server{t: t, router: router, clock: clock, jwt: jwtSvc}
}

func (s *server) do(method, path, account string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if account != "" {
		token, _, err := s.jwt.GenerateToken(account)
		if err != nil {
			s.t.Fatalf("token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	payload := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			s.t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, payload
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func expectErrorCode(t *testing.T, payload map[string]interface{}, want string) {
	t.Helper()
	if payload["error"] != want {
		t.Fatalf("expected error %s, got %v", want, payload["error"])
	}
}

func nested(payload map[string]interface{}, key string) map[string]interface{} {
	v, _ := payload[key].(map[string]interface{})
	return v
}

func TestCampaignLifecycleOverHTTP(t *testing.T) {
	s := newServer(t)

	rec, payload := s.do(http.MethodPost, "/api/campaigns", "alice", map[string]int64{"goal": 1000, "duration_days": 1})
	expectStatus(t, rec, http.StatusCreated)
	created := nested(payload, "campaign")
	if created["id"] != float64(0) || created["creator"] != "alice" {
		t.Fatalf("unexpected campaign: %v", created)
	}

	rec, _ = s.do(http.MethodPost, "/api/campaigns/0/pledges", "bob", map[string]int64{"amount": 400})
	expectStatus(t, rec, http.StatusOK)
	rec, payload = s.do(http.MethodPost, "/api/campaigns/0/pledges", "bob", map[string]int64{"amount": 700})
	expectStatus(t, rec, http.StatusOK)
	if nested(payload, "contribution")["amount"] != float64(1100) {
		t.Fatalf("unexpected contribution: %v", payload)
	}

	rec, payload = s.do(http.MethodGet, "/api/campaigns/0", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if nested(payload, "campaign")["pledged"] != float64(1100) {
		t.Fatalf("expected pledged 1100, got %v", payload)
	}

	rec, payload = s.do(http.MethodPost, "/api/campaigns/0/claim", "alice", nil)
	expectStatus(t, rec, http.StatusConflict)
	expectErrorCode(t, payload, "CAMPAIGN_NOT_SUCCEEDED")

	s.clock.Advance(24 * time.Hour)

	rec, payload = s.do(http.MethodGet, "/api/campaigns/0/status", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if nested(payload, "status")["outcome"] != "SUCCEEDED" {
		t.Fatalf("expected SUCCEEDED, got %v", payload)
	}

	rec, payload = s.do(http.MethodPost, "/api/campaigns/0/pledges", "carol", map[string]int64{"amount": 100})
	expectStatus(t, rec, http.StatusConflict)
	expectErrorCode(t, payload, "CAMPAIGN_EXPIRED")

	rec, payload = s.do(http.MethodPost, "/api/campaigns/0/claim", "bob", nil)
	expectStatus(t, rec, http.StatusForbidden)
	expectErrorCode(t, payload, "NOT_CAMPAIGN_CREATOR")

	rec, payload = s.do(http.MethodPost, "/api/campaigns/0/claim", "alice", nil)
	expectStatus(t, rec, http.StatusOK)
	if nested(payload, "payout")["amount"] != float64(1100) {
		t.Fatalf("unexpected payout: %v", payload)
	}

	rec, payload = s.do(http.MethodPost, "/api/campaigns/0/claim", "alice", nil)
	expectStatus(t, rec, http.StatusConflict)
	expectErrorCode(t, payload, "ALREADY_CLAIMED")

	rec, payload = s.do(http.MethodGet, "/api/accounts/me/balance", "alice", nil)
	expectStatus(t, rec, http.StatusOK)
	if nested(payload, "balance")["amount"] != float64(1100) {
		t.Fatalf("expected balance 1100, got %v", payload)
	}

	rec, payload = s.do(http.MethodGet, "/api/campaigns/0/payouts", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if payload["total"] != float64(1) {
		t.Fatalf("expected one payout, got %v", payload)
	}
}

func TestRefundOverHTTP(t *testing.T) {
	s := newServer(t)

	s.do(http.MethodPost, "/api/campaigns", "alice", map[string]int64{"goal": 1000, "duration_days": 1})
	s.do(http.MethodPost, "/api/campaigns/0/pledges", "bob", map[string]int64{"amount": 200})

	rec, payload := s.do(http.MethodPost, "/api/campaigns/0/refund", "bob", nil)
	expectStatus(t, rec, http.StatusConflict)
	expectErrorCode(t, payload, "CAMPAIGN_NOT_FAILED")

	s.clock.Advance(25 * time.Hour)

	rec, _ = s.do(http.MethodPost, "/api/campaigns/0/refund", "bob", nil)
	expectStatus(t, rec, http.StatusOK)

	rec, payload = s.do(http.MethodPost, "/api/campaigns/0/refund", "bob", nil)
	expectStatus(t, rec, http.StatusConflict)
	expectErrorCode(t, payload, "ALREADY_REFUNDED")

	rec, payload = s.do(http.MethodPost, "/api/campaigns/0/refund", "carol", nil)
	expectStatus(t, rec, http.StatusNotFound)
	expectErrorCode(t, payload, "CONTRIBUTION_NOT_FOUND")

	rec, payload = s.do(http.MethodGet, "/api/campaigns/0/contributions/me", "bob", nil)
	expectStatus(t, rec, http.StatusOK)
	if nested(payload, "contribution")["refunded"] != true {
		t.Fatalf("expected refunded contribution, got %v", payload)
	}
}

func TestRequestValidation(t *testing.T) {
	s := newServer(t)
	s.do(http.MethodPost, "/api/campaigns", "alice", map[string]int64{"goal": 10, "duration_days": 1})

	tests := []struct {
		name    string
		method  string
		path    string
		account string
		body    interface{}
		status  int
		code    string
	}{
		{name: "zero goal", method: http.MethodPost, path: "/api/campaigns", account: "alice", body: map[string]int64{"goal": 0, "duration_days": 1}, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "missing duration", method: http.MethodPost, path: "/api/campaigns", account: "alice", body: map[string]int64{"goal": 10}, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "no token", method: http.MethodPost, path: "/api/campaigns", body: map[string]int64{"goal": 10, "duration_days": 1}, status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{name: "zero pledge", method: http.MethodPost, path: "/api/campaigns/0/pledges", account: "bob", body: map[string]int64{"amount": 0}, status: http.StatusBadRequest, code: "INVALID_AMOUNT"},
		{name: "negative pledge", method: http.MethodPost, path: "/api/campaigns/0/pledges", account: "bob", body: map[string]int64{"amount": -3}, status: http.StatusBadRequest, code: "INVALID_AMOUNT"},
		{name: "missing amount", method: http.MethodPost, path: "/api/campaigns/0/pledges", account: "bob", body: map[string]int64{}, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "pledge unknown campaign", method: http.MethodPost, path: "/api/campaigns/8/pledges", account: "bob", body: map[string]int64{"amount": 5}, status: http.StatusNotFound, code: "CAMPAIGN_NOT_FOUND"},
		{name: "malformed id", method: http.MethodGet, path: "/api/campaigns/abc", status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "signed id", method: http.MethodGet, path: "/api/campaigns/-1", status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "unknown campaign", method: http.MethodGet, path: "/api/campaigns/99", status: http.StatusNotFound, code: "CAMPAIGN_NOT_FOUND"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec, payload := s.do(tt.method, tt.path, tt.account, tt.body)
			expectStatus(t, rec, tt.status)
			expectErrorCode(t, payload, tt.code)
		})
	}

	rec, payload := s.do(http.MethodGet, "/api/campaigns/count", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if payload["count"] != float64(1) {
		t.Fatalf("failed requests must not create campaigns, count=%v", payload["count"])
	}
}

func TestListCampaignsOverHTTP(t *testing.T) {
	s := newServer(t)
	for i := 0; i < 3; i++ {
		s.do(http.MethodPost, "/api/campaigns", "alice", map[string]int64{"goal": 10, "duration_days": 1})
	}

	rec, payload := s.do(http.MethodGet, "/api/campaigns?page=1&limit=2", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if payload["total"] != float64(3) || payload["totalPages"] != float64(2) {
		t.Fatalf("unexpected pagination: %v", payload)
	}
	data, _ := payload["data"].([]interface{})
	if len(data) != 2 {
		t.Fatalf("expected 2 items, got %d", len(data))
	}
	first, _ := data[0].(map[string]interface{})
	if first["id"] != float64(2) {
		t.Fatalf("expected newest first, got %v", first["id"])
	}
}

func TestHealth(t *testing.T) {
	s := newServer(t)

	rec, payload := s.do(http.MethodGet, "/health", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if payload["status"] != "ok" || !strings.EqualFold(payload["storage"].(string), config.StorageDriverMemory) {
		t.Fatalf("unexpected health payload: %v", payload)
	}
}
