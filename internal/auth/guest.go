package auth

import (
	"net/http"
	"time"

	authmw "github.com/mind-engage/jsquiz/internal/auth/middleware"
)

const guestCookieTTL = 24 * time.Hour

// IssueGuest signs a guest token for the anonymous user behind a new quiz
// session and persists it in a cookie for this browser. secure is false only
// for plain-http local development.
func IssueGuest(w http.ResponseWriter, a *authmw.AuthService, userID string, secure bool) (string, error) {
	tok, err := a.IssueJWT(userID, authmw.RoleGuest)
	if err != nil {
		return "", err
	}
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     authmw.GuestCookie,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  time.Now().Add(guestCookieTTL),
	})
	return tok, nil
}
