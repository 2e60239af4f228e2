// Package http exposes the typed RPC surface over plain JSON POST procedures
// and the interactive editor/learn websocket endpoints.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"quizcamp-service/internal/app"
	"quizcamp-service/internal/auth"
	"quizcamp-service/internal/domain"
	"quizcamp-service/internal/validate"
)

// RPCHandler serves the quiz.* and question.* procedures.
type RPCHandler struct {
	service  *app.QuizService
	verifier *auth.Verifier
	baseURL  string
	logger   *zap.Logger
}

func NewRPCHandler(service *app.QuizService, verifier *auth.Verifier, baseURL string, logger *zap.Logger) *RPCHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RPCHandler{service: service, verifier: verifier, baseURL: baseURL, logger: logger}
}

// Register wires the procedure routes into a mux.
func (h *RPCHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/quiz.create", h.proc(h.quizCreate))
	mux.HandleFunc("/api/quiz.byId", h.proc(h.quizByID))
	mux.HandleFunc("/api/question.getAll", h.proc(h.questionGetAll))
	mux.HandleFunc("/api/question.create", h.proc(h.questionCreate))
	mux.HandleFunc("/api/question.update", h.proc(h.questionUpdate))
	mux.HandleFunc("/api/question.delete", h.proc(h.questionDelete))
}

type procFunc func(w http.ResponseWriter, r *http.Request) (any, error)

func (h *RPCHandler) proc(fn procFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		result, err := fn(w, r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

type quizCreateRequest struct {
	Name       string            `json:"name"`
	Visibility domain.Visibility `json:"visibility"`
}

func (h *RPCHandler) quizCreate(w http.ResponseWriter, r *http.Request) (any, error) {
	var req quizCreateRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	principal := h.verifier.FromRequest(r)
	return h.service.CreateQuiz(r.Context(), principal, validate.NewQuiz{
		Name:       req.Name,
		Visibility: req.Visibility,
	})
}

type quizIDRequest struct {
	QuizID string `json:"quizId"`
}

func (h *RPCHandler) quizByID(w http.ResponseWriter, r *http.Request) (any, error) {
	var req quizIDRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	principal := h.verifier.FromRequest(r)
	return h.service.QuizByID(r.Context(), principal, req.QuizID)
}

func (h *RPCHandler) questionGetAll(w http.ResponseWriter, r *http.Request) (any, error) {
	var req quizIDRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return h.service.Questions(r.Context(), req.QuizID)
}

type questionCreateRequest struct {
	QuizID string                 `json:"quizId"`
	Data   validate.QuestionDraft `json:"data"`
}

func (h *RPCHandler) questionCreate(w http.ResponseWriter, r *http.Request) (any, error) {
	var req questionCreateRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	principal := h.verifier.FromRequest(r)
	return h.service.CreateQuestion(r.Context(), principal, req.QuizID, req.Data)
}

type questionUpdateRequest struct {
	ID   string                 `json:"id"`
	Data validate.QuestionPatch `json:"data"`
}

func (h *RPCHandler) questionUpdate(w http.ResponseWriter, r *http.Request) (any, error) {
	var req questionUpdateRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	principal := h.verifier.FromRequest(r)
	if err := h.service.UpdateQuestion(r.Context(), principal, req.ID, req.Data); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}

type questionDeleteRequest struct {
	QuestionID string `json:"questionId"`
}

func (h *RPCHandler) questionDelete(w http.ResponseWriter, r *http.Request) (any, error) {
	var req questionDeleteRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	principal := h.verifier.FromRequest(r)
	return h.service.DeleteQuestion(r.Context(), principal, req.QuestionID)
}

type errorBody struct {
	Error  string                `json:"error"`
	Fields []validate.FieldError `json:"fields,omitempty"`
	Signin string                `json:"signin,omitempty"`
}

func (h *RPCHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrQuestionNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		body := errorBody{Error: err.Error()}
		if !h.verifier.FromRequest(r).Authenticated {
			body.Signin = auth.SigninCallback(h.baseURL, r.URL.Path)
		}
		writeJSON(w, http.StatusUnauthorized, body)
	case errors.Is(err, domain.ErrQuizUnresolved):
		h.logger.Error("internal inconsistency", zap.String("proc", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	default:
		h.logger.Error("procedure failed", zap.String("proc", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &validate.Error{Fields: []validate.FieldError{{Field: "body", Message: "malformed JSON"}}}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
