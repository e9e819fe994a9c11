package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	authmw "github.com/mind-engage/jsquiz/internal/auth/middleware"
)

func TestIssueGuestSetsCookie(t *testing.T) {
	a := authmw.NewAuthService("test-secret")
	rec := httptest.NewRecorder()

	tok, err := IssueGuest(rec, a, "user-42", false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := a.Parse(tok)
	if err != nil || claims.Sub != "user-42" || claims.Role != authmw.RoleGuest {
		t.Fatalf("claims = %+v, %v", claims, err)
	}

	res := rec.Result()
	var found *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == authmw.GuestCookie {
			found = c
		}
	}
	if found == nil || found.Value != tok || !found.HttpOnly {
		t.Fatalf("cookie = %+v", found)
	}
}
