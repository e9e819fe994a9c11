package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/jsquiz/internal/quiz"
)

func ListCategoriesHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cats, err := svc.Categories(r.Context())
		if err != nil {
			writeServiceError(w, r, err, "Failed to fetch categories")
			return
		}
		writeJSON(w, http.StatusOK, cats)
	}
}

func GetCategoryHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.CategoryBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			writeServiceError(w, r, err, "Failed to fetch category")
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func ListDifficultiesHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, err := svc.Difficulties(r.Context())
		if err != nil {
			writeServiceError(w, r, err, "Failed to fetch difficulties")
			return
		}
		writeJSON(w, http.StatusOK, ds)
	}
}

// ---------- authoring (admin) ----------

func CreateCategoryHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in quiz.CategoryInput
		if !decodeJSON(w, r, &in) {
			return
		}
		c, err := svc.CreateCategory(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, err, "Failed to create category")
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func CreateDifficultyHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in quiz.DifficultyInput
		if !decodeJSON(w, r, &in) {
			return
		}
		d, err := svc.CreateDifficulty(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, err, "Failed to create difficulty")
			return
		}
		writeJSON(w, http.StatusCreated, d)
	}
}

// CreateQuestionHandler answers with the full question, correctness included,
// since only admins reach it.
func CreateQuestionHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in quiz.QuestionInput
		if !decodeJSON(w, r, &in) {
			return
		}
		q, err := svc.CreateQuestion(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, err, "Failed to create question")
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}
