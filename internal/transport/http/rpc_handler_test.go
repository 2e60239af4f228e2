package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quizcamp-service/internal/app"
	"quizcamp-service/internal/auth"
	"quizcamp-service/internal/domain"
	"quizcamp-service/internal/infra/memory"
	"quizcamp-service/internal/validate"
)

const testBaseURL = "http://localhost:3000"

type rpcFixture struct {
	server   *httptest.Server
	service  *app.QuizService
	verifier *auth.Verifier
}

func newRPCFixture(t *testing.T) *rpcFixture {
	t.Helper()
	store := memory.NewStore()
	cache := memory.NewQuestionCache(storeLoader{store}, time.Minute)
	service := app.NewQuizService(store, cache, nil)
	verifier := auth.NewVerifier("test-secret", time.Hour)

	mux := http.NewServeMux()
	NewRPCHandler(service, verifier, testBaseURL, nil).Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &rpcFixture{server: server, service: service, verifier: verifier}
}

type storeLoader struct {
	store app.Store
}

func (l storeLoader) Questions(ctx context.Context, quizPublicID string) ([]domain.Question, error) {
	return l.store.Questions(ctx, quizPublicID)
}

func (f *rpcFixture) call(t *testing.T, proc, token string, body any) (*http.Response, []byte) {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req, _ := http.NewRequest(http.MethodPost, f.server.URL+"/api/"+proc, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("call %s: %v", proc, err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}

func (f *rpcFixture) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := f.verifier.Issue(userID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestQuizCreateAndFetch(t *testing.T) {
	f := newRPCFixture(t)
	token := f.token(t, "user-1")

	resp, body := f.call(t, "quiz.create", token, map[string]any{
		"name":       "Sample",
		"visibility": "PUBLIC",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create status %d: %s", resp.StatusCode, body)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(body, &quiz); err != nil {
		t.Fatalf("decode quiz: %v", err)
	}
	if quiz.PublicID == "" || quiz.AuthorID != "user-1" {
		t.Fatalf("unexpected quiz: %+v", quiz)
	}

	resp, body = f.call(t, "quiz.byId", "", map[string]any{"quizId": quiz.PublicID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("byId status %d: %s", resp.StatusCode, body)
	}
}

func TestQuizCreateValidation(t *testing.T) {
	f := newRPCFixture(t)
	token := f.token(t, "user-1")

	resp, body := f.call(t, "quiz.create", token, map[string]any{
		"name":       "x",
		"visibility": "PUBLIC",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, body)
	}
	var eb errorBody
	json.Unmarshal(body, &eb)
	if len(eb.Fields) == 0 {
		t.Fatalf("expected field errors, got %s", body)
	}
}

func TestAnonymousGetsSigninRedirect(t *testing.T) {
	f := newRPCFixture(t)

	resp, body := f.call(t, "quiz.create", "", map[string]any{
		"name":       "Sample",
		"visibility": "PUBLIC",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", resp.StatusCode, body)
	}
	var eb errorBody
	json.Unmarshal(body, &eb)
	if !strings.HasPrefix(eb.Signin, "/api/auth/signin?callbackUrl="+testBaseURL) {
		t.Fatalf("expected signin callback, got %q", eb.Signin)
	}
}

func TestAuthenticatedNonAuthorGetsNoSigninRedirect(t *testing.T) {
	f := newRPCFixture(t)
	ctx := context.Background()

	quiz, _ := f.service.CreateQuiz(ctx, domain.User("owner"), validate.NewQuiz{
		Name:       "Secret",
		Visibility: domain.VisibilityPrivate,
	})

	resp, body := f.call(t, "quiz.byId", f.token(t, "other"), map[string]any{"quizId": quiz.PublicID})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", resp.StatusCode, body)
	}
	var eb errorBody
	json.Unmarshal(body, &eb)
	if eb.Signin != "" {
		t.Fatalf("signed-in caller must not be redirected to sign in, got %q", eb.Signin)
	}
}

func TestMissingQuizIs404(t *testing.T) {
	f := newRPCFixture(t)

	resp, body := f.call(t, "quiz.byId", "", map[string]any{"quizId": "missing"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", resp.StatusCode, body)
	}
}

func TestQuestionLifecycleOverRPC(t *testing.T) {
	f := newRPCFixture(t)
	token := f.token(t, "user-1")

	_, body := f.call(t, "quiz.create", token, map[string]any{
		"name":       "Sample",
		"visibility": "PUBLIC",
	})
	var quiz domain.Quiz
	json.Unmarshal(body, &quiz)

	resp, body := f.call(t, "question.create", token, map[string]any{
		"quizId": quiz.PublicID,
		"data": map[string]any{
			"question": "Pick one",
			"answers": []map[string]any{
				{"answer": "A", "isCorrect": false},
				{"answer": "B", "isCorrect": true},
			},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("question.create status %d: %s", resp.StatusCode, body)
	}
	var question domain.Question
	json.Unmarshal(body, &question)

	resp, body = f.call(t, "question.update", token, map[string]any{
		"id": question.ID,
		"data": map[string]any{
			"question": "Pick one (edited)",
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("question.update status %d: %s", resp.StatusCode, body)
	}

	resp, body = f.call(t, "question.getAll", "", map[string]any{"quizId": quiz.PublicID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("question.getAll status %d: %s", resp.StatusCode, body)
	}
	var questions []domain.Question
	json.Unmarshal(body, &questions)
	if len(questions) != 1 || questions[0].Question != "Pick one (edited)" {
		t.Fatalf("unexpected questions: %+v", questions)
	}

	resp, body = f.call(t, "question.delete", token, map[string]any{"questionId": question.ID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("question.delete status %d: %s", resp.StatusCode, body)
	}
}

func TestMalformedBodyIs400(t *testing.T) {
	f := newRPCFixture(t)

	req, _ := http.NewRequest(http.MethodPost, f.server.URL+"/api/quiz.byId", strings.NewReader("{broken"))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestProceduresArePostOnly(t *testing.T) {
	f := newRPCFixture(t)

	resp, err := http.Get(f.server.URL + "/api/quiz.byId")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}
