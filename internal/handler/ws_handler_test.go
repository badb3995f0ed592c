package handler_test

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/catalog"
	"github.com/stemsi/exstem-prep/internal/handler"
	"github.com/stemsi/exstem-prep/internal/repository"
	"github.com/stemsi/exstem-prep/internal/session"
	"github.com/stemsi/exstem-prep/internal/validator"
	ws "github.com/stemsi/exstem-prep/internal/websocket"
)

type wsFixture struct {
	conn    *websocket.Conn
	engine  *session.Engine
	catalog *catalog.Catalog
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Setup()

	log := zerolog.New(io.Discard)
	cat := catalog.Synthesize(catalog.Options{Seeded: true, Seed: 11})
	engine := session.NewEngine(cat, repository.NewMemoryStore(), session.Config{Duration: 60}, log)
	t.Cleanup(engine.Close)

	hub := ws.NewHub(engine, log)
	engine.Subscribe(hub)

	r := gin.New()
	r.GET("/ws", handler.NewWSHandler(engine, hub, log, nil).SessionStream)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return &wsFixture{conn: conn, engine: engine, catalog: cat}
}

func (f *wsFixture) send(t *testing.T, v interface{}) {
	t.Helper()
	if err := f.conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// readUntil returns the first frame whose event matches want.
func (f *wsFixture) readUntil(t *testing.T, want ws.Event) map[string]interface{} {
	t.Helper()
	f.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var m map[string]interface{}
		if err := f.conn.ReadJSON(&m); err != nil {
			t.Fatalf("waiting for %s: %v", want, err)
		}
		if m["event"] == string(want) {
			return m
		}
	}
}

func TestSessionStream_InitialStateAndPing(t *testing.T) {
	f := newWSFixture(t)

	m := f.readUntil(t, ws.EventState)
	state := m["state"].(map[string]interface{})
	if state["status"] != string(session.StatusNoSession) {
		t.Fatalf("initial status = %v", state["status"])
	}

	f.send(t, map[string]string{"action": "ping"})
	f.readUntil(t, ws.EventPong)
}

func TestSessionStream_ActionsRequireActiveSession(t *testing.T) {
	f := newWSFixture(t)
	f.readUntil(t, ws.EventState)

	f.send(t, map[string]interface{}{"action": "answer", "question_id": "x", "option_index": 1})
	m := f.readUntil(t, ws.EventError)
	if m["error"] != "no active session" {
		t.Fatalf("error = %v", m["error"])
	}

	f.send(t, map[string]string{"action": "teleport"})
	m = f.readUntil(t, ws.EventError)
	if !strings.Contains(m["error"].(string), "unknown action") {
		t.Fatalf("error = %v", m["error"])
	}
}

func TestSessionStream_FullAttempt(t *testing.T) {
	f := newWSFixture(t)
	f.readUntil(t, ws.EventState)

	mod, _ := f.catalog.Get("mod-05")
	if err := f.engine.Start(context.Background(), mod.ID); err != nil {
		t.Fatal(err)
	}
	m := f.readUntil(t, ws.EventState)
	if m["state"].(map[string]interface{})["status"] != string(session.StatusActive) {
		t.Fatalf("state after start = %v", m["state"])
	}

	q := mod.Questions[0]
	f.send(t, map[string]interface{}{"action": "answer", "question_id": q.ID, "option_index": q.CorrectOption})
	m = f.readUntil(t, ws.EventState)
	answers := m["state"].(map[string]interface{})["answers"].(map[string]interface{})
	if answers[q.ID] != float64(q.CorrectOption) {
		t.Fatalf("answers = %v", answers)
	}

	f.send(t, map[string]interface{}{"action": "answer", "question_id": q.ID})
	m = f.readUntil(t, ws.EventError)
	if m["fields"] == nil {
		t.Fatalf("missing option should report fields: %v", m)
	}

	f.send(t, map[string]interface{}{"action": "signal", "signal": "context_menu"})
	f.readUntil(t, ws.EventProctor)
	f.readUntil(t, ws.EventAlert)
	m = f.readUntil(t, ws.EventVerdict)
	verdict := m["verdict"].(map[string]interface{})
	if verdict["severity"] != "warning" || verdict["cancel"] != true {
		t.Fatalf("verdict = %v", verdict)
	}

	f.send(t, map[string]string{"action": "submit"})
	m = f.readUntil(t, ws.EventSubmitted)
	result := m["result"].(map[string]interface{})
	if result["score"] != float64(1) || result["total"] != float64(len(mod.Questions)) {
		t.Fatalf("result = %v", result)
	}

	f.send(t, map[string]string{"action": "submit"})
	m = f.readUntil(t, ws.EventError)
	if m["error"] != "no active session" {
		t.Fatalf("second submit = %v", m)
	}
}

func TestSessionStream_TicksAreBroadcast(t *testing.T) {
	f := newWSFixture(t)
	f.readUntil(t, ws.EventState)

	if err := f.engine.Start(context.Background(), "mod-01"); err != nil {
		t.Fatal(err)
	}
	f.engine.Tick(context.Background())

	m := f.readUntil(t, ws.EventTick)
	if m["remaining_seconds"] != float64(59) {
		t.Fatalf("remaining = %v", m["remaining_seconds"])
	}
}

func TestSessionStream_ResumeAfterExit(t *testing.T) {
	f := newWSFixture(t)
	f.readUntil(t, ws.EventState)

	f.send(t, map[string]string{"action": "resume"})
	m := f.readUntil(t, ws.EventError)
	if m["error"] != "no checkpoint to resume" {
		t.Fatalf("resume with empty slot = %v", m)
	}

	ctx := context.Background()
	mod, _ := f.catalog.Get("mod-02")
	if err := f.engine.Start(ctx, mod.ID); err != nil {
		t.Fatal(err)
	}
	f.engine.RecordAnswer(ctx, mod.Questions[2].ID, 1)
	f.engine.ExitToCatalog(ctx)

	f.send(t, map[string]string{"action": "resume"})
	for {
		m = f.readUntil(t, ws.EventState)
		if m["state"].(map[string]interface{})["status"] == string(session.StatusActive) {
			break
		}
	}
	answers := m["state"].(map[string]interface{})["answers"].(map[string]interface{})
	if answers[mod.Questions[2].ID] != float64(1) {
		t.Fatalf("answers after resume = %v", answers)
	}

	f.send(t, map[string]string{"action": "resume"})
	m = f.readUntil(t, ws.EventError)
	if m["error"] != "session already loaded" {
		t.Fatalf("second resume = %v", m)
	}
}
