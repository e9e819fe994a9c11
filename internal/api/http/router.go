package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authmw "github.com/mind-engage/jsquiz/internal/auth/middleware"
	"github.com/mind-engage/jsquiz/internal/quiz"
	"github.com/mind-engage/jsquiz/internal/rbac"
)

// Pinger reports storage reachability for /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	Service *quiz.Service
	Auth    *authmw.AuthService
	DB      Pinger

	CORSOrigins    []string
	RequestTimeout time.Duration
	SecureCookies  bool

	// Admin login; the route is not mounted when LocalAuth is false.
	LocalAuth     bool
	AdminUser     string
	AdminPassHash string
}

func NewRouter(cfg RouterConfig) chi.Router {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	svc := cfg.Service

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", ReadyHandler(cfg.DB))

	r.Route("/api", func(ar chi.Router) {
		ar.Get("/questions", ListQuestionsHandler(svc))
		ar.Get("/questions/{id}", GetQuestionHandler(svc))
		ar.Get("/questions/{id}/stats", QuestionStatsHandler(svc))
		ar.Get("/categories", ListCategoriesHandler(svc))
		ar.Get("/categories/{slug}", GetCategoryHandler(svc))
		ar.Get("/difficulties", ListDifficultiesHandler(svc))

		ar.Route("/quiz", func(qr chi.Router) {
			qr.Post("/start", StartQuizHandler(svc, cfg.Auth, cfg.SecureCookies))
			qr.Post("/answer", SubmitAnswerHandler(svc))
			qr.Post("/complete", CompleteQuizHandler(svc))
			qr.Get("/results/{sessionToken}", ResultsHandler(svc))
			if cfg.Auth != nil {
				qr.With(authmw.OptionalJWT(cfg.Auth)).Get("/dashboard", DashboardHandler(svc))
			} else {
				qr.Get("/dashboard", DashboardHandler(svc))
			}
		})

		if cfg.Auth == nil {
			return
		}
		if cfg.LocalAuth {
			ar.Post("/auth/login", authmw.LoginHandler(cfg.Auth, cfg.AdminUser, cfg.AdminPassHash))
		}

		// Authoring (JWT -> role in context -> RBAC)
		ar.Group(func(pr chi.Router) {
			pr.Use(authmw.JWTMiddleware(cfg.Auth))
			pr.With(rbac.Require("question:create")).
				Post("/admin/questions", CreateQuestionHandler(svc))
			pr.With(rbac.Require("catalog:write")).
				Post("/admin/categories", CreateCategoryHandler(svc))
			pr.With(rbac.Require("catalog:write")).
				Post("/admin/difficulties", CreateDifficultyHandler(svc))
		})
	})
	return r
}

func ReadyHandler(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p == nil {
			w.WriteHeader(http.StatusOK)
			return
		}
		if err := p.Ping(r.Context()); err != nil {
			log.Printf("[%s] readyz: %v", middleware.GetReqID(r.Context()), err)
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
