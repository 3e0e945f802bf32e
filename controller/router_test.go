package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/Taolee-crypto/timelink-backend/dao"
	"github.com/Taolee-crypto/timelink-backend/logic"
	"github.com/Taolee-crypto/timelink-backend/pkg"
	"github.com/Taolee-crypto/timelink-backend/testutil"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type api struct {
	t      *testing.T
	router http.Handler
	store  *dao.Store
}

func newAPI(t *testing.T) *api {
	st := testutil.Store(t)
	cfg := testutil.Config()
	cfg.Auth.AdminEmails = []string{"admin@timelink.test"}
	svc := logic.NewServices(st, cfg, pkg.StaticMedia{}, testutil.Logger())
	return &api{t: t, router: NewRouter(svc, testutil.Logger()), store: st}
}

func (a *api) do(method, path, token string, body any, headers ...string) (int, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			a.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, out
}

func (a *api) register(name string) (token string, id uint64) {
	a.t.Helper()
	code, out := a.do("POST", "/auth/register", "", gin.H{
		"email": name + "@timelink.test", "username": name, "password": "correct horse",
	})
	if code != http.StatusCreated {
		a.t.Fatalf("register %s: %d %v", name, code, out)
	}
	user := out["user"].(map[string]any)
	return out["token"].(string), uint64(user["id"].(float64))
}

func TestHealthz(t *testing.T) {
	a := newAPI(t)
	if code, out := a.do("GET", "/healthz", "", nil); code != http.StatusOK || out["status"] != "ok" {
		t.Fatalf("healthz = %d %v", code, out)
	}
}

func TestAuthRequired(t *testing.T) {
	a := newAPI(t)
	if code, _ := a.do("GET", "/users/me", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", code)
	}
	if code, _ := a.do("GET", "/users/me", "garbage", nil); code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", code)
	}
	token, _ := a.register("plain")
	if code, _ := a.do("POST", "/contents/1/approve", token, gin.H{"approved": true}); code != http.StatusForbidden {
		t.Fatalf("non-admin approve: %d", code)
	}
}

func TestLogin(t *testing.T) {
	a := newAPI(t)
	a.register("dana")
	code, out := a.do("POST", "/auth/login", "", gin.H{"email": "dana@timelink.test", "password": "correct horse"})
	if code != http.StatusOK || out["token"] == "" {
		t.Fatalf("login = %d %v", code, out)
	}
	code, out = a.do("POST", "/auth/login", "", gin.H{"email": "dana@timelink.test", "password": "nope nope"})
	if code != http.StatusUnauthorized || out["code"] != "invalid_credentials" {
		t.Fatalf("bad login = %d %v", code, out)
	}
	if code, _ := a.do("POST", "/auth/login", "", gin.H{"email": "dana@timelink.test"}); code != http.StatusBadRequest {
		t.Fatalf("missing password = %d", code)
	}
}

func TestEconomyFlow(t *testing.T) {
	a := newAPI(t)
	ownerTok, _ := a.register("owner")
	playerTok, _ := a.register("player")
	adminTok, _ := a.register("admin")

	code, out := a.do("POST", "/contents", ownerTok, gin.H{
		"title": "Night Drive", "media_url": "https://cdn.example.com/nd.mp3", "pool": 100,
	})
	if code != http.StatusCreated {
		t.Fatalf("upload = %d %v", code, out)
	}
	contentID := uint64(out["id"].(float64))
	path := func(suffix string) string { return "/contents/" + itoa(contentID) + suffix }

	if code, out := a.do("POST", path("/play"), playerTok, gin.H{"duration": 5}); code != http.StatusUnprocessableEntity || out["code"] != "content_unavailable" {
		t.Fatalf("play unverified = %d %v", code, out)
	}
	if code, out := a.do("POST", path("/approve"), adminTok, gin.H{"approved": true}); code != http.StatusUnprocessableEntity || out["code"] != "no_auth_request" {
		t.Fatalf("approve without request = %d %v", code, out)
	}
	code, out = a.do("POST", path("/auth-request"), ownerTok, gin.H{"source_url": "https://suno.com/song/nd", "creation_month": "2025-04"})
	if code != http.StatusCreated || out["status"] != "pending" {
		t.Fatalf("auth request = %d %v", code, out)
	}
	if code, out := a.do("POST", path("/auth-request"), ownerTok, gin.H{"source_url": "https://suno.com/song/nd"}); code != http.StatusConflict || out["code"] != "auth_request_pending" {
		t.Fatalf("second auth request = %d %v", code, out)
	}
	if code, out := a.do("GET", path("/auth-requests"), adminTok, nil); code != http.StatusOK || len(out["auth_requests"].([]any)) != 1 {
		t.Fatalf("auth requests = %d %v", code, out)
	}
	if code, out := a.do("POST", path("/approve"), adminTok, gin.H{"approved": true}); code != http.StatusOK {
		t.Fatalf("approve = %d %v", code, out)
	}
	if code, out := a.do("PATCH", path("/share"), ownerTok, gin.H{"shared": true}); code != http.StatusOK {
		t.Fatalf("share = %d %v", code, out)
	}

	code, out = a.do("POST", path("/play"), playerTok, gin.H{"duration": 10, "boosted": true}, "Idempotency-Key", "k1")
	if code != http.StatusOK || out["revenue"] != "14" || out["item_balance"] != "90" {
		t.Fatalf("play = %d %v", code, out)
	}
	code, out = a.do("POST", path("/play"), playerTok, gin.H{"duration": 10, "boosted": true}, "Idempotency-Key", "k1")
	if code != http.StatusOK || out["replayed"] != true {
		t.Fatalf("replay = %d %v", code, out)
	}

	code, out = a.do("GET", "/users/me/wallet", ownerTok, nil)
	if code != http.StatusOK || out["available_balance"] != "914" || out["exchangeable"] != "0" {
		t.Fatalf("owner wallet = %d %v", code, out)
	}
	code, out = a.do("GET", "/users/me/wallet", playerTok, nil)
	if code != http.StatusOK || out["total_spent"] != "10" || out["exchangeable"] != "5" {
		t.Fatalf("player wallet = %d %v", code, out)
	}

	if code, out := a.do("GET", path("/status"), "", nil); code != http.StatusOK || out["playable"] != true {
		t.Fatalf("status = %d %v", code, out)
	}

	// Dispute, then reject it.
	code, out = a.do("POST", "/disputes", playerTok, gin.H{
		"content_id": contentID, "category": "copyright", "reason": "this is my own recording, released in 2019 under my label",
	})
	if code != http.StatusCreated {
		t.Fatalf("file = %d %v", code, out)
	}
	disputeID := uint64(out["id"].(float64))

	if code, out := a.do("POST", path("/play"), playerTok, gin.H{"duration": 1}); code != http.StatusUnprocessableEntity || out["code"] != "content_disputed" {
		t.Fatalf("play disputed = %d %v", code, out)
	}
	if code, out := a.do("POST", path("/charge"), ownerTok, gin.H{"amount": 10}); code != http.StatusUnprocessableEntity || out["code"] != "balance_suspended" {
		t.Fatalf("charge while locked = %d %v", code, out)
	}
	if code, _ := a.do("GET", "/disputes/"+itoa(disputeID), ownerTok, nil); code != http.StatusNotFound {
		t.Fatalf("owner reading dispute = %d", code)
	}
	if code, _ := a.do("POST", "/disputes/"+itoa(disputeID)+"/resolve", playerTok, gin.H{"upheld": false}); code != http.StatusForbidden {
		t.Fatalf("non-admin resolve = %d", code)
	}

	code, out = a.do("POST", "/disputes/"+itoa(disputeID)+"/resolve", adminTok, gin.H{"upheld": false, "note": "no evidence"})
	if code != http.StatusOK || out["owner_unlocked"] != true {
		t.Fatalf("resolve = %d %v", code, out)
	}
	if code, out := a.do("POST", "/disputes/"+itoa(disputeID)+"/resolve", adminTok, gin.H{"upheld": true}); code != http.StatusConflict || out["code"] != "already_resolved" {
		t.Fatalf("second resolve = %d %v", code, out)
	}

	code, out = a.do("GET", "/users/me", playerTok, nil)
	if code != http.StatusOK || out["false_dispute_strikes"].(float64) != 1 || out["poc_index"].(float64) != -1 {
		t.Fatalf("player = %d %v", code, out)
	}
	code, out = a.do("GET", "/users/me/poc-history", playerTok, nil)
	if code != http.StatusOK || len(out["events"].([]any)) != 1 {
		t.Fatalf("poc history = %d %v", code, out)
	}
	code, out = a.do("GET", "/users/me/transactions?limit=1", ownerTok, nil)
	if code != http.StatusOK || len(out["transactions"].([]any)) != 1 {
		t.Fatalf("transactions = %d %v", code, out)
	}
	code, out = a.do("GET", "/disputes/my", playerTok, nil)
	if code != http.StatusOK || len(out["disputes"].([]any)) != 1 {
		t.Fatalf("my disputes = %d %v", code, out)
	}
	code, out = a.do("GET", "/contents/my", ownerTok, nil)
	if code != http.StatusOK || len(out["contents"].([]any)) != 1 {
		t.Fatalf("my contents = %d %v", code, out)
	}
}

func TestAdminProvisioning(t *testing.T) {
	a := newAPI(t)
	adminTok, _ := a.register("admin")
	userTok, userID := a.register("mallory")

	code, out := a.do("GET", "/users/me", adminTok, nil)
	if code != http.StatusOK || out["role"] != "admin" {
		t.Fatalf("admin profile = %d %v", code, out)
	}
	if code, _ := a.do("PATCH", "/admin/users/"+itoa(userID)+"/active", userTok, gin.H{"active": false}); code != http.StatusForbidden {
		t.Fatalf("non-admin deactivate = %d", code)
	}
	code, out = a.do("PATCH", "/admin/users/"+itoa(userID)+"/active", adminTok, gin.H{"active": false})
	if code != http.StatusOK || out["active"] != false {
		t.Fatalf("deactivate = %d %v", code, out)
	}
	if code, out := a.do("GET", "/users/me", userTok, nil); code != http.StatusUnauthorized || out["code"] != "account_disabled" {
		t.Fatalf("disabled token = %d %v", code, out)
	}
	if code, _ := a.do("PATCH", "/admin/users/4242/active", adminTok, gin.H{"active": true}); code != http.StatusNotFound {
		t.Fatalf("missing user = %d", code)
	}
}

func TestBadIDs(t *testing.T) {
	a := newAPI(t)
	if code, _ := a.do("GET", "/contents/abc", "", nil); code != http.StatusBadRequest {
		t.Fatalf("non-numeric id = %d", code)
	}
	if code, out := a.do("GET", "/contents/42", "", nil); code != http.StatusNotFound || out["code"] != "not_found" {
		t.Fatalf("missing content = %d %v", code, out)
	}
}

func itoa(n uint64) string {
	return strconv.FormatUint(n, 10)
}
