package http

import (
	"math"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/jsquiz/internal/auth"
	authmw "github.com/mind-engage/jsquiz/internal/auth/middleware"
	"github.com/mind-engage/jsquiz/internal/quiz"
)

type startResponse struct {
	SessionToken string `json:"sessionToken"`
	SessionID    string `json:"sessionId"`
	AccessToken  string `json:"accessToken,omitempty"`
}

// POST /api/quiz/start
// The access token identifies the anonymous user behind the session; the
// client only needs it for "mine" dashboard queries.
func StartQuizHandler(svc *quiz.Service, authSvc *authmw.AuthService, secureCookies bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := svc.StartSession(r.Context(), requestMeta(r))
		if err != nil {
			writeServiceError(w, r, err, "Failed to start quiz")
			return
		}
		out := startResponse{SessionToken: sess.SessionToken, SessionID: sess.ID}
		if authSvc != nil {
			tok, err := auth.IssueGuest(w, authSvc, sess.UserID, secureCookies)
			if err != nil {
				writeServiceError(w, r, err, "Failed to start quiz")
				return
			}
			out.AccessToken = tok
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// requestMeta reads the caller context once, at the edge. RemoteAddr has
// already been rewritten by middleware.RealIP when a proxy header was sent.
func requestMeta(r *http.Request) quiz.RequestMeta {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return quiz.RequestMeta{UserAgent: r.UserAgent(), IPAddress: ip}
}

// seconds accepts fractional client timings and rounds them.
func seconds(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}

// POST /api/quiz/answer  { sessionToken, questionId, optionId, timeSpent }
func SubmitAnswerHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SessionToken string  `json:"sessionToken"`
			QuestionID   string  `json:"questionId"`
			OptionID     string  `json:"optionId"`
			TimeSpent    float64 `json:"timeSpent"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		res, err := svc.SubmitAnswer(r.Context(), quiz.AnswerInput{
			SessionToken: req.SessionToken,
			QuestionID:   req.QuestionID,
			OptionID:     req.OptionID,
			TimeSpent:    seconds(req.TimeSpent),
		})
		if err != nil {
			writeServiceError(w, r, err, "Failed to submit answer")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// POST /api/quiz/complete  { sessionToken, timeSpent }
func CompleteQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SessionToken string  `json:"sessionToken"`
			TimeSpent    float64 `json:"timeSpent"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		sess, err := svc.CompleteSession(r.Context(), req.SessionToken, seconds(req.TimeSpent))
		if err != nil {
			writeServiceError(w, r, err, "Failed to complete quiz")
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

// GET /api/quiz/results/{sessionToken}
func ResultsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.ComputeResults(r.Context(), chi.URLParam(r, "sessionToken"))
		if err != nil {
			writeServiceError(w, r, err, "Failed to fetch results")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// GET /api/quiz/dashboard?limit=N&mine=1
// mine=1 restricts the list to the caller's own sessions and needs a guest token.
func DashboardHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := parseIntDefault(strings.TrimSpace(r.URL.Query().Get("limit")), quiz.DefaultDashboardLimit)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		q := quiz.DashboardQuery{Limit: limit}
		if mine := r.URL.Query().Get("mine"); mine == "1" || mine == "true" {
			sub := authmw.SubjectFromContext(r.Context())
			if sub == "" {
				writeError(w, http.StatusUnauthorized, "token required for mine=1")
				return
			}
			q.UserID = sub
		}
		list, err := svc.Dashboard(r.Context(), q)
		if err != nil {
			writeServiceError(w, r, err, "Failed to fetch dashboard")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
