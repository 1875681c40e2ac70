package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/yohanvishvajith/paddyricetracker/middlewares"
	"github.com/yohanvishvajith/paddyricetracker/models"
)

func seedLoginParty(t *testing.T, d *Deps, id string, role models.Role, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	p := seedParty(t, d.DB, id, role)
	if err := d.DB.Model(p).Update("password_hash", string(hash)).Error; err != nil {
		t.Fatalf("set password: %v", err)
	}
}

func TestLoginIssuesUsableToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	d := newTestDeps(t, nil)
	seedLoginParty(t, d, "COL1", models.RoleCollector, "secret1")

	router := gin.New()
	router.POST("/login", d.Login)
	router.GET("/me", middlewares.Auth(), d.Me)

	w := postJSON(t, router, "/login", `{"party_id":"COL1","password":"secret1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Token == "" {
		t.Fatal("empty token")
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Data.Token)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	if w2.Code != http.StatusOK {
		t.Fatalf("me status = %d: %s", w2.Code, w2.Body.String())
	}
}

func TestLoginWrongPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	d := newTestDeps(t, nil)
	seedLoginParty(t, d, "COL1", models.RoleCollector, "secret1")

	router := gin.New()
	router.POST("/login", d.Login)

	w := postJSON(t, router, "/login", `{"party_id":"COL1","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	w = postJSON(t, router, "/login", `{"party_id":"NOBODY","password":"secret1"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown party status = %d, want 401", w.Code)
	}
}

func TestLoginInactiveAccountRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	d := newTestDeps(t, nil)
	seedLoginParty(t, d, "COL1", models.RoleCollector, "secret1")
	if err := d.DB.Model(&models.Party{}).Where("id = ?", "COL1").Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	router := gin.New()
	router.POST("/login", d.Login)

	w := postJSON(t, router, "/login", `{"party_id":"COL1","password":"secret1"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequireRoleBlocksNonAdmins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	d := newTestDeps(t, nil)
	seedLoginParty(t, d, "COL1", models.RoleCollector, "secret1")

	router := gin.New()
	router.POST("/login", d.Login)
	router.POST("/parties", middlewares.Auth(), middlewares.RequireRole("Admin"), d.CreateParty)

	w := postJSON(t, router, "/login", `{"party_id":"COL1","password":"secret1"}`)
	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/parties", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Data.Token)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	if w2.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w2.Code)
	}
}
