package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/jsquiz/internal/rbac"
)

func TestIssueAndParse(t *testing.T) {
	a := NewAuthService("test-secret")
	tok, err := a.IssueJWT("user-1", RoleGuest)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	c, err := a.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Sub != "user-1" || c.Role != RoleGuest {
		t.Fatalf("claims = %+v", c)
	}

	if _, err := NewAuthService("other").Parse(tok); err == nil {
		t.Fatalf("token accepted with the wrong key")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	a := NewAuthService("test-secret")
	a.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	tok, err := a.IssueJWT("user-1", RoleGuest)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := a.Parse(tok); err == nil {
		t.Fatalf("expired token accepted")
	}
}

func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(SubjectFromContext(r.Context()) + "|" + rbac.RoleFromContext(r.Context())))
	})
}

func TestJWTMiddleware(t *testing.T) {
	a := NewAuthService("test-secret")
	h := JWTMiddleware(a)(echoIdentity())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", rec.Code)
	}

	tok, _ := a.IssueJWT("admin", RoleAdmin)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "admin|admin" {
		t.Fatalf("valid token: %d %q", rec.Code, rec.Body.String())
	}
}

func TestOptionalJWT(t *testing.T) {
	a := NewAuthService("test-secret")
	h := OptionalJWT(a)(echoIdentity())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "|" {
		t.Fatalf("anonymous: %d %q", rec.Code, rec.Body.String())
	}

	tok, _ := a.IssueJWT("u-9", RoleGuest)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: GuestCookie, Value: tok})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Body.String() != "u-9|guest" {
		t.Fatalf("cookie token: %q", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), `"message"`) {
		t.Fatalf("bad token: %d %s", rec.Code, rec.Body.String())
	}
}

func TestLoginHandler(t *testing.T) {
	a := NewAuthService("test-secret")
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h := LoginHandler(a, "admin", string(hash))

	cases := []struct {
		body string
		want int
	}{
		{`{"username":"admin","password":"s3cret"}`, http.StatusOK},
		{`{"username":"admin","password":"nope"}`, http.StatusUnauthorized},
		{`{"username":"root","password":"s3cret"}`, http.StatusUnauthorized},
		{`{`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tc.body)))
		if rec.Code != tc.want {
			t.Fatalf("%s: status %d, want %d", tc.body, rec.Code, tc.want)
		}
		if tc.want == http.StatusOK && !strings.Contains(rec.Body.String(), "accessToken") {
			t.Fatalf("no token in %s", rec.Body.String())
		}
	}

	disabled := LoginHandler(a, "admin", "")
	rec := httptest.NewRecorder()
	disabled.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"admin","password":""}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login without a configured hash: %d", rec.Code)
	}
}
