package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"counsel/internal/auth"
	"counsel/internal/config"
)

func setupSessions() *auth.SessionStore {
	// Dummy client; the tests below never reach a Redis call.
	return auth.NewSessionStore(redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15}))
}

func TestLoginHandler_NeedSetup(t *testing.T) {
	setupTestDB(t)
	resetTables(t)
	cfg := &config.Config{}
	cfg.Server.JWTSecret = "secret"
	sessions := setupSessions()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", LoginHandler(cfg, sessions))
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", bytes.NewReader([]byte(`{"username":"a","password":"b"}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 Forbidden for initial setup required, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginHandler_InvalidUser(t *testing.T) {
	setupTestDB(t)
	resetTables(t)
	seedUser(t, "someone", "user")
	cfg := &config.Config{}
	cfg.Server.JWTSecret = "secret"
	sessions := setupSessions()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", LoginHandler(cfg, sessions))
	payload := map[string]string{"username": "nobody", "password": "wrongpw"}
	b, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 Unauthorized for bad user, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginHandler_InvalidPassword(t *testing.T) {
	setupTestDB(t)
	resetTables(t)
	u := seedUser(t, "loginuser", "user")
	cfg := &config.Config{}
	cfg.Server.JWTSecret = "secret"
	sessions := setupSessions()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", LoginHandler(cfg, sessions))
	payload := map[string]string{"username": u.Username, "password": "wrongpw"}
	b, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 Unauthorized for bad password, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMeHandler(t *testing.T) {
	setupTestDB(t)
	resetTables(t)
	u := seedUser(t, "meuser", "user")
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", u.ID)
		c.Next()
	})
	r.GET("/auth/me", MeHandler())
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/auth/me", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if body["username"] != "meuser" {
		t.Errorf("unexpected body: %+v", body)
	}
}
