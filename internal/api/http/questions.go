package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/jsquiz/internal/quiz"
)

// GET /api/questions?count=N&categoryId=ID
// Options go out without correctness flags; explanations are withheld until
// the question is answered.
func ListQuestionsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := parseIntDefault(strings.TrimSpace(r.URL.Query().Get("count")), quiz.DefaultQuestionsPerSession)
		if err != nil {
			writeError(w, http.StatusBadRequest, "count must be an integer")
			return
		}
		qs, err := svc.FetchQuestions(r.Context(), count, r.URL.Query().Get("categoryId"))
		if err != nil {
			writeServiceError(w, r, err, "Failed to fetch questions")
			return
		}
		writeJSON(w, http.StatusOK, quiz.PublicQuestions(qs))
	}
}

func GetQuestionHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := svc.Question(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, r, err, "Failed to fetch question")
			return
		}
		writeJSON(w, http.StatusOK, q.Public())
	}
}

func QuestionStatsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.QuestionStats(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, r, err, "Failed to fetch question stats")
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}
