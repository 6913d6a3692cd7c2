package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/auth"
	"timed-quiz-service/internal/logger"
	"timed-quiz-service/internal/metrics"
)

// Container holds the dependencies the router needs.
type Container struct {
	Service *app.QuizService
	Auth    *auth.Authenticator
	Metrics *metrics.Metrics
	Log     *logger.Logger
}

// NewRouter wires the REST endpoints, the websocket endpoint and the operational endpoints.
func NewRouter(c Container) http.Handler {
	if c.Log == nil {
		c.Log = logger.Discard()
	}
	if c.Auth == nil {
		c.Auth = auth.NewAuthenticator("", 0)
	}

	r := mux.NewRouter()
	r.Use(requestLogger(c.Log))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods("GET")
	if c.Metrics != nil {
		r.Handle("/metrics", c.Metrics.Handler()).Methods("GET")
	}

	sessions := NewSessionHandler(c.Service)
	ws := NewWSHandler(c.Service, c.Log)

	api := r.NewRoute().Subrouter()
	api.Use(requireUser(c.Auth))
	api.HandleFunc("/quizzes/{quizID}/sessions", sessions.Start).Methods("POST")
	api.HandleFunc("/sessions/{sessionID}", sessions.Get).Methods("GET")
	api.HandleFunc("/sessions/{sessionID}/answer", sessions.Answer).Methods("POST")
	api.HandleFunc("/sessions/{sessionID}/skip", sessions.Skip).Methods("POST")
	api.HandleFunc("/sessions/{sessionID}/result", sessions.Result).Methods("GET")
	api.HandleFunc("/me/attempts", sessions.Attempts).Methods("GET")
	api.HandleFunc("/ws", ws.ServeWS).Methods("GET")

	return r
}

func requireUser(a *auth.Authenticator) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := a.Authenticate(r)
			if err != nil {
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), userID)))
		})
	}
}

func requestLogger(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			next.ServeHTTP(w, r)
			log.Entry().WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(started).String(),
			}).Debug("http request")
		})
	}
}
