package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/auth"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/logger"
)

type WSHandler struct {
	service  *app.QuizService
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, log *logger.Logger) *WSHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &WSHandler{
		service: service,
		log:     log,
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

type answerPayload struct {
	Option *int `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type questionPayload struct {
	Remaining int                 `json:"remaining"`
	Question  domain.QuestionView `json:"question"`
}

type feedbackPayload struct {
	Remaining int                 `json:"remaining"`
	Feedback  domain.Feedback     `json:"feedback"`
	Question  domain.QuestionView `json:"question"`
}

type tickPayload struct {
	Remaining int    `json:"remaining"`
	Clock     string `json:"clock"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request, starts a session for the caller and streams its events.
// Closing the socket before the session finishes abandons it.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFrom(r.Context())
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing quizId"})
		return
	}
	budget := 0
	if raw := r.URL.Query().Get("budget"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "budget must be a positive integer"})
			return
		}
		budget = n
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Entry().WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	session, err := h.service.Start(r.Context(), quizID, userID, budget)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	sessionID := session.ID()
	entry := h.log.WithSession(sessionID, quizID, userID)

	updates, cancel, err := h.service.Subscribe(r.Context(), sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()
	defer h.service.Abandon(r.Context(), sessionID)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer: gorilla connections allow one concurrent writer
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				entry.WithError(err).Debug("ws write error")
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "started", Payload: session.View()}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case ev, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- eventMessage(ev):
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Option == nil {
				send <- errorMessage("invalid answer payload")
				continue
			}
			// feedback reaches the client through the subscription
			if _, err := h.service.SelectAnswer(r.Context(), sessionID, *payload.Option); err != nil {
				send <- errorMessage(err.Error())
			}
		case "skip":
			if err := h.service.Skip(r.Context(), sessionID); err != nil {
				send <- errorMessage(err.Error())
			}
		default:
			send <- errorMessage("unsupported message type")
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func eventMessage(ev app.SessionEvent) outboundMessage[any] {
	switch ev.Type {
	case app.EventQuestion:
		return outboundMessage[any]{Type: "question", Payload: questionPayload{Remaining: ev.Remaining, Question: *ev.View}}
	case app.EventFeedback:
		return outboundMessage[any]{Type: "feedback", Payload: feedbackPayload{Remaining: ev.Remaining, Feedback: *ev.Feedback, Question: *ev.View}}
	case app.EventFinished:
		return outboundMessage[any]{Type: "finished", Payload: domain.Summarize(*ev.Result)}
	default:
		return outboundMessage[any]{Type: "tick", Payload: tickPayload{Remaining: ev.Remaining, Clock: domain.FormatClock(ev.Remaining)}}
	}
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
