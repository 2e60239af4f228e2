package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quizcamp-service/internal/app"
	"quizcamp-service/internal/domain"
	"quizcamp-service/internal/editor"
	"quizcamp-service/internal/learn"
	"quizcamp-service/internal/validate"
)

// WSHandler serves the interactive editor and learn sessions over websockets.
// Each connection owns one session; the session is driven synchronously by
// the read loop, so a second mutation can never start before the previous one
// has settled.
type WSHandler struct {
	service  *app.QuizService
	verifier principalSource
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

type principalSource interface {
	FromRequest(r *http.Request) domain.Principal
}

func NewWSHandler(service *app.QuizService, verifier principalSource, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service:  service,
		verifier: verifier,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string                `json:"message"`
	Fields  []validate.FieldError `json:"fields,omitempty"`
}

type indexPayload struct {
	Index int `json:"index"`
}

type textPayload struct {
	Text string `json:"text"`
}

type answerEditPayload struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type correctPayload struct {
	Index   int  `json:"index"`
	Correct bool `json:"correct"`
}

// ServeEdit runs a question edit session over a websocket. The quiz author
// pages through questions, edits in place, and the one-past-the-end slot
// composes a new question.
func (h *WSHandler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}
	principal := h.verifier.FromRequest(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	session, err := editor.New(r.Context(), h.service, principal, quizID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errPayload(err)})
		return
	}

	if err := conn.WriteJSON(outboundMessage[editor.State]{Type: "state", Payload: session.State()}); err != nil {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		if err := h.applyEdit(r, session, inbound); err != nil {
			if err := conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errPayload(err)}); err != nil {
				return
			}
		}
		if err := conn.WriteJSON(outboundMessage[editor.State]{Type: "state", Payload: session.State()}); err != nil {
			return
		}
	}
}

func (h *WSHandler) applyEdit(r *http.Request, session *editor.Session, inbound inboundMessage) error {
	switch inbound.Type {
	case "editQuestion":
		var p textPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return errInvalidPayload
		}
		session.EditQuestionText(p.Text)
		return nil
	case "editAnswer":
		var p answerEditPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return errInvalidPayload
		}
		return session.EditAnswerText(p.Index, p.Text)
	case "setCorrect":
		var p correctPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return errInvalidPayload
		}
		return session.SetAnswerCorrect(p.Index, p.Correct)
	case "moveUp":
		var p indexPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return errInvalidPayload
		}
		return session.MoveUp(p.Index)
	case "moveDown":
		var p indexPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return errInvalidPayload
		}
		return session.MoveDown(p.Index)
	case "deleteAnswer":
		var p indexPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return errInvalidPayload
		}
		return session.DeleteAnswer(p.Index)
	case "appendAnswer":
		session.AppendAnswer()
		return nil
	case "insertAnswer":
		var p indexPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return errInvalidPayload
		}
		return session.InsertAnswerAfter(p.Index)
	case "focusAnswer":
		var p indexPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return errInvalidPayload
		}
		session.FocusAnswer(p.Index)
		return nil
	case "forward":
		return session.Forward(r.Context())
	case "backward":
		return session.Backward(r.Context())
	case "reload":
		return session.Reload(r.Context())
	default:
		return errUnsupportedType
	}
}

// ServeLearn runs a learn-mode session over a websocket: read-only paging,
// local checked state, and deferred verification.
func (h *WSHandler) ServeLearn(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	session, err := learn.New(r.Context(), h.service, quizID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errPayload(err)})
		return
	}

	if err := conn.WriteJSON(outboundMessage[learn.State]{Type: "state", Payload: session.State()}); err != nil {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "toggle":
			var p indexPayload
			if err := json.Unmarshal(inbound.Payload, &p); err != nil {
				_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errPayload(errInvalidPayload)})
				continue
			}
			session.Toggle(p.Index)
		case "verify":
			session.Verify()
		case "forward":
			session.Forward()
		case "backward":
			session.Backward()
		default:
			if err := conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errPayload(errUnsupportedType)}); err != nil {
				return
			}
			continue
		}
		if err := conn.WriteJSON(outboundMessage[learn.State]{Type: "state", Payload: session.State()}); err != nil {
			return
		}
	}
}

var (
	errInvalidPayload  = errors.New("invalid payload")
	errUnsupportedType = errors.New("unsupported message type")
)

func errPayload(err error) errorPayload {
	var verr *validate.Error
	if errors.As(err, &verr) {
		return errorPayload{Message: "validation failed", Fields: verr.Fields}
	}
	return errorPayload{Message: err.Error()}
}
