package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/clock"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/infra/memory"
)

func TestWebSocketAnswerFlow(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	store := memory.NewSessionStore()
	service := newTestService(store, fake)

	server := httptest.NewServer(NewRouter(Container{Service: service}))
	defer server.Close()

	conn := dial(t, server, "/ws?quizId=quiz-1&userId=u1&budget=30")
	defer conn.Close()

	_, started := readNext(conn, t, "started")
	if started["state"] != "answering" || started["remainingSeconds"].(float64) != 30 {
		t.Fatalf("unexpected started payload %v", started)
	}
	_, question := readNext(conn, t, "question")
	if question["question"].(map[string]any)["prompt"] != "What is 2 + 2?" {
		t.Fatalf("unexpected question payload %v", question)
	}

	if err := conn.WriteJSON(map[string]any{"type": "answer", "payload": map[string]any{"option": 1}}); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	_, feedback := readNext(conn, t, "feedback")
	if fb := feedback["feedback"].(map[string]any); fb["correct"] != true || fb["awarded"].(float64) != 1 {
		t.Fatalf("unexpected feedback %v", feedback)
	}

	// second answer during the reveal window is rejected
	if err := conn.WriteJSON(map[string]any{"type": "answer", "payload": map[string]any{"option": 0}}); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	readNext(conn, t, "error")

	fake.Advance(3 * time.Second)

	var finished map[string]any
	for i := 0; i < 5 && finished == nil; i++ {
		typ, payload := readNext(conn, t, "")
		switch typ {
		case "tick":
		case "finished":
			finished = payload
		default:
			t.Fatalf("unexpected message %s", typ)
		}
	}
	if finished == nil {
		t.Fatalf("expected finished message")
	}
	if finished["score"].(float64) != 1 || finished["percentage"].(float64) != 100 || finished["reason"] != "completed" {
		t.Fatalf("unexpected result %v", finished)
	}
}

func TestWebSocketSkipAndUnsupported(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	service := newTestService(memory.NewSessionStore(), fake)
	server := httptest.NewServer(NewRouter(Container{Service: service}))
	defer server.Close()

	conn := dial(t, server, "/ws?quizId=quiz-1&userId=u1")
	defer conn.Close()
	readNext(conn, t, "started")
	readNext(conn, t, "question")

	if err := conn.WriteJSON(map[string]any{"type": "shout"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	readNext(conn, t, "error")

	if err := conn.WriteJSON(map[string]any{"type": "skip"}); err != nil {
		t.Fatalf("write skip: %v", err)
	}
	_, finished := readNext(conn, t, "finished")
	if finished["score"].(float64) != 0 || finished["performance"] != "Needs Improvement" {
		t.Fatalf("unexpected result %v", finished)
	}
}

func TestWebSocketDisconnectAbandons(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	store := memory.NewSessionStore()
	service := newTestService(store, fake)
	server := httptest.NewServer(NewRouter(Container{Service: service}))
	defer server.Close()

	conn := dial(t, server, "/ws?quizId=quiz-1&userId=u1")
	readNext(conn, t, "started")
	if store.Len() != 1 {
		t.Fatalf("expected live session, got %d", store.Len())
	}
	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for store.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("session was not abandoned after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if fake.Pending() != 0 {
		t.Fatalf("expected timers cancelled, %d pending", fake.Pending())
	}
}

func TestWebSocketRejectsMissingQuiz(t *testing.T) {
	service := newTestService(memory.NewSessionStore(), clock.NewFake(time.Unix(0, 0)))
	server := httptest.NewServer(NewRouter(Container{Service: service}))
	defer server.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server, "/ws?userId=u1"), nil)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", resp)
	}

	conn := dial(t, server, "/ws?quizId=unknown&userId=u1")
	defer conn.Close()
	_, payload := readNext(conn, t, "error")
	if payload["message"] != domain.ErrQuizNotFound.Error() {
		t.Fatalf("unexpected error %v", payload)
	}
}

func newTestService(store app.SessionRepository, c clock.Clock) *app.QuizService {
	quizRepo := memory.NewQuizRepository(memory.NewStaticQuizLoader(sampleQuiz()), time.Minute)
	return app.NewQuizService(store, quizRepo,
		app.WithClock(c),
		app.WithResults(memory.NewResultStore()),
		app.WithAttempts(memory.NewAttemptRepository()),
	)
}

func dial(t *testing.T, server *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, path), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func wsURL(server *httptest.Server, path string) string {
	return "ws" + server.URL[len("http"):] + path
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s (%v)", expect, msg.Type, msg.Payload)
	}
	return msg.Type, msg.Payload
}

func sampleQuiz() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID: "quiz-1",
			Questions: []domain.Question{
				{
					ID:           "q1",
					Prompt:       "What is 2 + 2?",
					Options:      []string{"3", "4", "5"},
					CorrectIndex: 1,
					Points:       1,
				},
			},
		},
		"quiz-2": {
			ID:               "quiz-2",
			TimeLimitSeconds: 120,
			Questions: []domain.Question{
				{ID: "q1", Prompt: "Capital of France?", Options: []string{"Berlin", "Paris"}, CorrectIndex: 1},
				{ID: "q2", Prompt: "Largest planet?", Options: []string{"Jupiter", "Mars"}, CorrectIndex: 0},
			},
		},
	}
}
