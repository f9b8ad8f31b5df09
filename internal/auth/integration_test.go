package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/journal/internal/config"
	"github.com/mrlokans/journal/internal/database/users"
)

type recordedAuthEvent struct {
	userID  uint
	action  string
	success bool
}

type eventRecorder struct {
	events []recordedAuthEvent
}

func (r *eventRecorder) LogAuth(userID uint, action string, _ string, success bool) {
	r.events = append(r.events, recordedAuthEvent{userID: userID, action: action, success: success})
}

func (r *eventRecorder) has(action string, success bool) bool {
	for _, e := range r.events {
		if e.action == action && e.success == success {
			return true
		}
	}
	return false
}

func setupTestRouter(t *testing.T) (*gin.Engine, *Service, *eventRecorder) {
	t.Helper()

	db := setupTestDB(t)
	sqlDB, err := db.DB.DB()
	if err != nil {
		t.Fatalf("failed to get SQL DB: %v", err)
	}

	cfg := config.Auth{
		Mode:             config.AuthModeLocal,
		SessionLifetime:  24 * time.Hour,
		BcryptCost:       4,
		SecureCookies:    false, // For testing
		MaxLoginAttempts: 3,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  time.Minute,
	}

	svc := NewService(users.NewRepository(db.DB), cfg)

	sm, err := NewSessionManager(sqlDB, cfg)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}

	recorder := &eventRecorder{}
	controller := NewAuthController(svc, sm, recorder, cfg)
	t.Cleanup(controller.Stop)

	router := gin.New()
	router.Use(sm.GinMiddleware())
	router.Use(NewMiddleware(svc, sm, cfg).Handler())
	controller.RegisterRoutes(router)

	router.GET("/api/entries", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})

	return router, svc, recorder
}

func doJSON(router http.Handler, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == SessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatalf("Expected a session cookie, got headers %v", rr.Header())
	return nil
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON body %q: %v", rr.Body.String(), err)
	}
	return body
}

func TestIntegration_NoAuthMode(t *testing.T) {
	cfg := config.Auth{
		Mode: config.AuthModeNone,
	}

	middleware := NewMiddleware(nil, nil, cfg)

	router := gin.New()
	router.Use(middleware.Handler())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})

	rr := doJSON(router, http.MethodGet, "/test", "", nil)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"user_id":0`) {
		t.Errorf("Expected user_id:0, got %s", rr.Body.String())
	}
}

func TestIntegration_StatusBeforeSetup(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	rr := doJSON(router, http.MethodGet, "/api/auth/status", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	body := decodeBody(t, rr)
	if body["has_users"] != false {
		t.Errorf("Expected has_users false, got %v", body["has_users"])
	}
	if body["mode"] != string(config.AuthModeLocal) {
		t.Errorf("Expected mode local, got %v", body["mode"])
	}
	if body["authenticated"] != false {
		t.Errorf("Expected authenticated false, got %v", body["authenticated"])
	}
}

func TestIntegration_SetupFlow(t *testing.T) {
	router, svc, recorder := setupTestRouter(t)

	rr := doJSON(router, http.MethodPost, "/api/auth/setup", `{"username":"writer","password":"password12345"}`, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	cookie := sessionCookie(t, rr)

	hasUsers, err := svc.HasUsers()
	if err != nil || !hasUsers {
		t.Fatalf("Expected the first user to exist, err=%v", err)
	}
	if !recorder.has("setup", true) {
		t.Error("Expected setup to be audited")
	}

	// The new session is usable straight away
	rr = doJSON(router, http.MethodGet, "/api/entries", "", cookie)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200 with setup session, got %d", rr.Code)
	}

	// Setup is one-shot
	rr = doJSON(router, http.MethodPost, "/api/auth/setup", `{"username":"intruder","password":"password12345"}`, nil)
	if rr.Code != http.StatusConflict {
		t.Errorf("Expected 409 for second setup, got %d", rr.Code)
	}
}

func TestIntegration_SetupValidation(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed body", `{`, http.StatusBadRequest},
		{"short password", `{"username":"writer","password":"short"}`, http.StatusBadRequest},
		{"invalid username", `{"username":"a b","password":"password12345"}`, http.StatusBadRequest},
		{"invalid pin", `{"username":"writer","password":"password12345","pin":"12ab"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(router, http.MethodPost, "/api/auth/setup", tt.body, nil)
			if rr.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestIntegration_ProtectedRoutesReturn401(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	for _, path := range []string{"/api/entries", "/api/auth/me"} {
		rr := doJSON(router, http.MethodGet, path, "", nil)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401 for %s, got %d", path, rr.Code)
		}
	}
}

func TestIntegration_SessionLoginLogoutFlow(t *testing.T) {
	router, svc, recorder := setupTestRouter(t)

	if _, err := svc.CreateUser("writer", "password12345", nil); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	// Wrong password
	rr := doJSON(router, http.MethodPost, "/api/auth/login", `{"username":"writer","password":"wrongpassword1"}`, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for wrong password, got %d", rr.Code)
	}
	if !recorder.has("login_failed", false) {
		t.Error("Expected failed login to be audited")
	}

	// Missing fields
	rr = doJSON(router, http.MethodPost, "/api/auth/login", `{"username":"writer"}`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing password, got %d", rr.Code)
	}

	// Correct credentials
	rr = doJSON(router, http.MethodPost, "/api/auth/login", `{"username":"writer","password":"password12345"}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 for login, got %d: %s", rr.Code, rr.Body.String())
	}
	cookie := sessionCookie(t, rr)

	rr = doJSON(router, http.MethodGet, "/api/auth/me", "", cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 for /me, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["username"] != "writer" {
		t.Errorf("Expected username writer, got %v", body["username"])
	}
	if body["has_pin"] != false {
		t.Errorf("Expected has_pin false, got %v", body["has_pin"])
	}

	rr = doJSON(router, http.MethodPost, "/api/auth/logout", "", cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 for logout, got %d", rr.Code)
	}

	// The old cookie no longer authenticates
	rr = doJSON(router, http.MethodGet, "/api/auth/me", "", cookie)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 after logout, got %d", rr.Code)
	}
}

func TestIntegration_LoginWithPin(t *testing.T) {
	router, svc, _ := setupTestRouter(t)

	if _, err := svc.CreateUser("writer", "password12345", strPtr("2468")); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	rr := doJSON(router, http.MethodPost, "/api/auth/login", `{"username":"writer","password":"password12345"}`, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without PIN, got %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["code"] != "PIN_REQUIRED" {
		t.Errorf("Expected PIN_REQUIRED, got %v", body)
	}

	rr = doJSON(router, http.MethodPost, "/api/auth/login", `{"username":"writer","password":"password12345","pin":"1357"}`, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for wrong PIN, got %d", rr.Code)
	}

	rr = doJSON(router, http.MethodPost, "/api/auth/login", `{"username":"writer","password":"password12345","pin":"2468"}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 with PIN, got %d", rr.Code)
	}
	cookie := sessionCookie(t, rr)

	rr = doJSON(router, http.MethodPost, "/api/auth/pin/verify", `{"pin":"2468"}`, cookie)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200 for correct PIN, got %d", rr.Code)
	}

	rr = doJSON(router, http.MethodPost, "/api/auth/pin/verify", `{"pin":"0000"}`, cookie)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for wrong PIN, got %d", rr.Code)
	}
}

func TestIntegration_SetAndClearPin(t *testing.T) {
	router, svc, recorder := setupTestRouter(t)

	if _, err := svc.CreateUser("writer", "password12345", nil); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	rr := doJSON(router, http.MethodPost, "/api/auth/login", `{"username":"writer","password":"password12345"}`, nil)
	cookie := sessionCookie(t, rr)

	rr = doJSON(router, http.MethodPut, "/api/auth/pin", `{"pin":"12"}`, cookie)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for short PIN, got %d", rr.Code)
	}

	rr = doJSON(router, http.MethodPut, "/api/auth/pin", `{"pin":"4321"}`, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 for PIN update, got %d", rr.Code)
	}
	if !recorder.has("pin_set", true) {
		t.Error("Expected PIN change to be audited")
	}

	user, err := svc.GetUserByUsername("writer")
	if err != nil {
		t.Fatalf("Failed to load user: %v", err)
	}
	if !svc.VerifyPin(user, "4321") {
		t.Error("Expected new PIN to verify")
	}

	rr = doJSON(router, http.MethodPut, "/api/auth/pin", `{"pin":""}`, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 for PIN removal, got %d", rr.Code)
	}
	user, _ = svc.GetUserByUsername("writer")
	if user.HasPin() {
		t.Error("Expected PIN to be cleared")
	}
}

func TestIntegration_LoginLockout(t *testing.T) {
	router, svc, _ := setupTestRouter(t)

	if _, err := svc.CreateUser("writer", "password12345", nil); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	var rr *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		rr = doJSON(router, http.MethodPost, "/api/auth/login", `{"username":"writer","password":"wrongpassword1"}`, nil)
	}
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 on the failure that triggers lockout, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}

	// Even the right password is refused while locked out
	rr = doJSON(router, http.MethodPost, "/api/auth/login", `{"username":"writer","password":"password12345"}`, nil)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 while locked out, got %d", rr.Code)
	}
}
