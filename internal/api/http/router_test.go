package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	authmw "github.com/mind-engage/jsquiz/internal/auth/middleware"
	"github.com/mind-engage/jsquiz/internal/cache"
	"github.com/mind-engage/jsquiz/internal/db"
	"github.com/mind-engage/jsquiz/internal/quiz"
)

type testServer struct {
	srv       *httptest.Server
	svc       *quiz.Service
	auth      *authmw.AuthService
	questions []quiz.Question
}

func newTestServer(t *testing.T, bank int) *testServer {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Open(ctx, db.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	store := quiz.NewSQLStore(conn, db.DriverSQLite)
	svc := quiz.NewService(store, quiz.WithCache(cache.NewMemory(), 0))

	cat, err := svc.CreateCategory(ctx, quiz.CategoryInput{Name: "Basics", Slug: "basics"})
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	easy, err := svc.CreateDifficulty(ctx, quiz.DifficultyInput{Name: "easy", Label: "Easy", Order: 1})
	if err != nil {
		t.Fatalf("difficulty: %v", err)
	}
	var qs []quiz.Question
	for i := 0; i < bank; i++ {
		q, err := svc.CreateQuestion(ctx, quiz.QuestionInput{
			Title: fmt.Sprintf("q%d", i), Question: "What is printed?", Explanation: "hoisting",
			CategoryID: cat.ID, DifficultyID: easy.ID,
			Options: []quiz.OptionInput{{Text: "undefined", IsCorrect: true}, {Text: "ReferenceError"}},
		})
		if err != nil {
			t.Fatalf("question: %v", err)
		}
		qs = append(qs, q)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	a := authmw.NewAuthService("test-secret")
	r := NewRouter(RouterConfig{
		Service: svc, Auth: a, DB: store,
		CORSOrigins: []string{"http://localhost:5173"},
		LocalAuth:   true, AdminUser: "admin", AdminPassHash: string(hash),
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, svc: svc, auth: a, questions: qs}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, token string, out any) int {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(buf)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, rd)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Linux; Android 14) Mobile")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := ts.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return res.StatusCode
}

func TestQuestionsAreRedacted(t *testing.T) {
	ts := newTestServer(t, 3)
	var raw []map[string]any
	if code := ts.do(t, http.MethodGet, "/api/questions?count=5", nil, "", &raw); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if len(raw) != 3 {
		t.Fatalf("len = %d", len(raw))
	}
	for _, q := range raw {
		if _, ok := q["explanation"]; ok {
			t.Fatalf("explanation leaked")
		}
		for _, o := range q["options"].([]any) {
			if _, ok := o.(map[string]any)["isCorrect"]; ok {
				t.Fatalf("isCorrect leaked: %v", o)
			}
		}
	}

	var one map[string]any
	if code := ts.do(t, http.MethodGet, "/api/questions/"+ts.questions[0].ID, nil, "", &one); code != http.StatusOK {
		t.Fatalf("single question: %d", code)
	}
	if _, ok := one["explanation"]; ok {
		t.Fatalf("explanation leaked on single question")
	}
}

func TestQuestionsCountValidation(t *testing.T) {
	ts := newTestServer(t, 1)
	for _, q := range []string{"count=0", "count=51", "count=abc", "count=-2"} {
		var e map[string]string
		if code := ts.do(t, http.MethodGet, "/api/questions?"+q, nil, "", &e); code != http.StatusBadRequest {
			t.Fatalf("%s: status %d", q, code)
		}
		if e["message"] == "" {
			t.Fatalf("%s: no message", q)
		}
	}
}

func TestCatalogEndpoints(t *testing.T) {
	ts := newTestServer(t, 1)
	var cats []quiz.Category
	if code := ts.do(t, http.MethodGet, "/api/categories", nil, "", &cats); code != http.StatusOK || len(cats) != 1 {
		t.Fatalf("categories: %d %+v", code, cats)
	}
	var c quiz.Category
	if code := ts.do(t, http.MethodGet, "/api/categories/basics", nil, "", &c); code != http.StatusOK || c.Name != "Basics" {
		t.Fatalf("category by slug: %d %+v", code, c)
	}
	if code := ts.do(t, http.MethodGet, "/api/categories/nope", nil, "", nil); code != http.StatusNotFound {
		t.Fatalf("unknown slug: %d", code)
	}
	var ds []quiz.Difficulty
	if code := ts.do(t, http.MethodGet, "/api/difficulties", nil, "", &ds); code != http.StatusOK || len(ds) != 1 {
		t.Fatalf("difficulties: %d %+v", code, ds)
	}
}

func TestQuizFlow(t *testing.T) {
	ts := newTestServer(t, 10)

	var start startResponse
	if code := ts.do(t, http.MethodPost, "/api/quiz/start", nil, "", &start); code != http.StatusOK {
		t.Fatalf("start: %d", code)
	}
	if start.SessionToken == "" || start.SessionID == "" || start.AccessToken == "" {
		t.Fatalf("start response = %+v", start)
	}

	var qs []quiz.PublicQuestion
	if code := ts.do(t, http.MethodGet, "/api/questions?count=10", nil, "", &qs); code != http.StatusOK || len(qs) != 10 {
		t.Fatalf("questions: %d %d", code, len(qs))
	}
	byID := map[string]quiz.Question{}
	for _, q := range ts.questions {
		byID[q.ID] = q
	}
	for _, pq := range qs {
		q := byID[pq.ID]
		var res quiz.AnswerResult
		code := ts.do(t, http.MethodPost, "/api/quiz/answer", map[string]any{
			"sessionToken": start.SessionToken, "questionId": q.ID,
			"optionId": q.CorrectOption().ID, "timeSpent": 5,
		}, "", &res)
		if code != http.StatusOK || !res.IsCorrect || res.Explanation != "hoisting" {
			t.Fatalf("answer: %d %+v", code, res)
		}
	}

	var done quiz.Session
	code := ts.do(t, http.MethodPost, "/api/quiz/complete", map[string]any{"sessionToken": start.SessionToken, "timeSpent": 50}, "", &done)
	if code != http.StatusOK || !done.IsCompleted || done.Score != 100 || len(done.Answers) != 10 {
		t.Fatalf("complete: %d %+v", code, done)
	}
	if done.DeviceType != quiz.DeviceMobile {
		t.Fatalf("device = %s", done.DeviceType)
	}

	var res quiz.Results
	if code := ts.do(t, http.MethodGet, "/api/quiz/results/"+start.SessionToken, nil, "", &res); code != http.StatusOK {
		t.Fatalf("results: %d", code)
	}
	if res.PerformanceLevel != quiz.LevelAdvanced || res.AverageTime != 5 || res.CategoryBreakdown["Basics"].Percentage != 100 {
		t.Fatalf("results = %+v", res)
	}

	var mine []quiz.Session
	if code := ts.do(t, http.MethodGet, "/api/quiz/dashboard?mine=1", nil, start.AccessToken, &mine); code != http.StatusOK || len(mine) != 1 {
		t.Fatalf("dashboard mine: %d %d", code, len(mine))
	}
	if code := ts.do(t, http.MethodGet, "/api/quiz/dashboard?mine=1", nil, "", nil); code != http.StatusUnauthorized {
		t.Fatalf("mine without token: %d", code)
	}

	var stats quiz.QuestionStats
	if code := ts.do(t, http.MethodGet, "/api/questions/"+qs[0].ID+"/stats", nil, "", &stats); code != http.StatusOK || stats.TotalAnswers != 1 {
		t.Fatalf("stats: %d %+v", code, stats)
	}
}

func TestQuizErrors(t *testing.T) {
	ts := newTestServer(t, 2)
	var start startResponse
	ts.do(t, http.MethodPost, "/api/quiz/start", nil, "", &start)
	q0, q1 := ts.questions[0], ts.questions[1]

	cases := []struct {
		name string
		path string
		body any
		want int
	}{
		{"answer missing fields", "/api/quiz/answer", map[string]any{"sessionToken": start.SessionToken}, http.StatusBadRequest},
		{"answer unknown session", "/api/quiz/answer", map[string]any{"sessionToken": "x", "questionId": q0.ID, "optionId": q0.Options[0].ID}, http.StatusNotFound},
		{"answer unknown question", "/api/quiz/answer", map[string]any{"sessionToken": start.SessionToken, "questionId": "x", "optionId": q0.Options[0].ID}, http.StatusNotFound},
		{"answer foreign option", "/api/quiz/answer", map[string]any{"sessionToken": start.SessionToken, "questionId": q0.ID, "optionId": q1.Options[0].ID}, http.StatusBadRequest},
		{"complete unknown", "/api/quiz/complete", map[string]any{"sessionToken": "x"}, http.StatusNotFound},
		{"complete missing token", "/api/quiz/complete", map[string]any{}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var e map[string]string
			if code := ts.do(t, http.MethodPost, tc.path, tc.body, "", &e); code != tc.want {
				t.Fatalf("status %d, want %d (%v)", code, tc.want, e)
			}
			if e["message"] == "" {
				t.Fatalf("missing message")
			}
		})
	}

	req, _ := http.NewRequest(http.MethodPost, ts.srv.URL+"/api/quiz/answer", strings.NewReader("{"))
	res, err := ts.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed JSON: %d", res.StatusCode)
	}
	if code := ts.do(t, http.MethodGet, "/api/quiz/results/unknown", nil, "", nil); code != http.StatusNotFound {
		t.Fatalf("results unknown: %d", code)
	}
}

func TestAdminAuthoring(t *testing.T) {
	ts := newTestServer(t, 1)
	body := map[string]any{
		"title": "closures", "question": "?", "explanation": "scope",
		"categoryId": ts.questions[0].CategoryID, "difficultyId": ts.questions[0].DifficultyID,
		"options": []map[string]any{{"text": "a", "isCorrect": true}, {"text": "b"}},
	}

	if code := ts.do(t, http.MethodPost, "/api/admin/questions", body, "", nil); code != http.StatusUnauthorized {
		t.Fatalf("anonymous: %d", code)
	}
	var start startResponse
	ts.do(t, http.MethodPost, "/api/quiz/start", nil, "", &start)
	if code := ts.do(t, http.MethodPost, "/api/admin/questions", body, start.AccessToken, nil); code != http.StatusForbidden {
		t.Fatalf("guest: %d", code)
	}

	var login map[string]string
	if code := ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "pw"}, "", &login); code != http.StatusOK {
		t.Fatalf("login: %d", code)
	}
	admin := login["accessToken"]

	var q quiz.Question
	if code := ts.do(t, http.MethodPost, "/api/admin/questions", body, admin, &q); code != http.StatusCreated || len(q.Options) != 2 {
		t.Fatalf("create question: %d %+v", code, q)
	}

	body["options"] = []map[string]any{{"text": "a"}, {"text": "b"}}
	if code := ts.do(t, http.MethodPost, "/api/admin/questions", body, admin, nil); code != http.StatusBadRequest {
		t.Fatalf("question without correct option: %d", code)
	}

	if code := ts.do(t, http.MethodPost, "/api/admin/categories", map[string]string{"name": "Async", "slug": "async"}, admin, nil); code != http.StatusCreated {
		t.Fatalf("create category: %d", code)
	}
	var cats []quiz.Category
	ts.do(t, http.MethodGet, "/api/categories", nil, "", &cats)
	if len(cats) != 2 {
		t.Fatalf("category list not refreshed: %+v", cats)
	}
	if code := ts.do(t, http.MethodPost, "/api/admin/difficulties", map[string]any{"name": "hard", "label": "Hard", "order": 3, "points": 3}, admin, nil); code != http.StatusCreated {
		t.Fatalf("create difficulty: %d", code)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, 0)
	for _, p := range []string{"/healthz", "/readyz"} {
		if code := ts.do(t, http.MethodGet, p, nil, "", nil); code != http.StatusOK {
			t.Fatalf("%s: %d", p, code)
		}
	}
}

type downDB struct{}

func (downDB) Ping(context.Context) error { return errors.New("connection refused") }

func TestReadyReportsDownDatabase(t *testing.T) {
	rec := httptest.NewRecorder()
	ReadyHandler(downDB{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestWriteServiceErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: password authentication failed"), "Failed to fetch questions")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") || !strings.Contains(rec.Body.String(), "Failed to fetch questions") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}
