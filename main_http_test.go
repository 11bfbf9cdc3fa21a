package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"multidle/internal/game"
	"multidle/internal/store"
	"multidle/internal/words"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

// fixedWords serves the same solutions every day.
type fixedWords struct{}

func (fixedWords) DayWords(int) (game.DayWords, error) {
	return game.DayWords{
		game.ModeTwo:   {"wheat", "sweat"},
		game.ModeThree: {"crane", "pilot", "mound"},
		game.ModeFour:  {"apple", "alley", "plumb", "treat"},
	}, nil
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	list, err := words.Load("")
	if err != nil {
		t.Fatalf("words.Load() = %v", err)
	}
	app := newApp(false, store.NewMemory(), fixedWords{}, words.NewSet(list))
	app.Clock = func() time.Time { return testNow }
	app.StartTime = testNow.Add(-90 * time.Second)
	app.ClearDelay = time.Hour
	t.Cleanup(app.closeSessions)
	return app
}

// setupTestRouter creates a test router with all routes
func setupTestRouter(t *testing.T) (*App, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	app := newTestApp(t)
	return app, app.setupRouter()
}

type stateBody struct {
	Mode              string `json:"mode"`
	PuzzleNumber      int    `json:"puzzleNumber"`
	HasInvalidEntries bool   `json:"hasInvalidEntries"`
	SolvedCount       int    `json:"solvedCount"`
}

// client carries the session cookie between requests.
type client struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
}

func (cl *client) do(method, path, body string) *httptest.ResponseRecorder {
	cl.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.cookie != nil {
		req.AddCookie(cl.cookie)
	}
	w := httptest.NewRecorder()
	cl.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			cl.cookie = c
		}
	}
	return w
}

func (cl *client) state(w *httptest.ResponseRecorder) stateBody {
	cl.t.Helper()
	if w.Code != http.StatusOK {
		cl.t.Fatalf("status %d, want 200: %s", w.Code, w.Body.String())
	}
	var sb stateBody
	if err := json.Unmarshal(w.Body.Bytes(), &sb); err != nil {
		cl.t.Fatalf("decode state: %v", err)
	}
	return sb
}

func (cl *client) typeWord(word string) stateBody {
	cl.t.Helper()
	for _, r := range word {
		cl.do(http.MethodPost, RouteKey, `{"key":"`+string(r)+`"}`)
	}
	return cl.state(cl.do(http.MethodPost, RouteKey, `{"key":"Enter"}`))
}

func TestHealthzHandler(t *testing.T) {
	_, router := setupTestRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, RouteHealthz, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /healthz returned status %d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["uptime"] != "1 minute, 30 seconds" {
		t.Errorf("uptime = %v", body["uptime"])
	}
	if n, _ := body["words_loaded"].(float64); n == 0 {
		t.Error("words_loaded should be positive")
	}
}

func TestStateHandlerSetsCookie(t *testing.T) {
	_, router := setupTestRouter(t)
	cl := &client{t: t, router: router}
	sb := cl.state(cl.do(http.MethodGet, RouteState, ""))
	if cl.cookie == nil || !isValidSessionID(cl.cookie.Value) {
		t.Fatalf("expected a session cookie, got %v", cl.cookie)
	}
	if sb.Mode != "four" {
		t.Errorf("default mode = %q, want four", sb.Mode)
	}
	if sb.PuzzleNumber != 70 {
		t.Errorf("puzzle number = %d, want 70", sb.PuzzleNumber)
	}
}

func TestStateHandlerNoStore(t *testing.T) {
	_, router := setupTestRouter(t)
	cl := &client{t: t, router: router}
	w := cl.do(http.MethodGet, RouteState, "")
	if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "no-store") {
		t.Errorf("Cache-Control = %q, want no-store", cc)
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Error("missing X-Request-Id")
	}
}

func TestKeyFlowSolvesBoard(t *testing.T) {
	_, router := setupTestRouter(t)
	cl := &client{t: t, router: router}

	if got := cl.state(cl.do(http.MethodPost, RouteMode, `{"mode":"two"}`)); got.Mode != "two" {
		t.Fatalf("mode = %q, want two", got.Mode)
	}
	sb := cl.typeWord("sweat")
	if sb.Mode != "two" {
		t.Errorf("key response mode = %q, want two", sb.Mode)
	}
	if sb.SolvedCount != 1 {
		t.Errorf("solved = %d, want 1", sb.SolvedCount)
	}
	sb = cl.typeWord("wheat")
	if sb.SolvedCount != 2 {
		t.Errorf("solved = %d, want 2", sb.SolvedCount)
	}

	w := cl.do(http.MethodGet, RouteResults, "")
	var results map[string]struct {
		IsSolved bool  `json:"isSolved"`
		Trials   []int `json:"trials"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatal(err)
	}
	two := results["two"]
	if !two.IsSolved || len(two.Trials) != 2 || two.Trials[0] != 2 || two.Trials[1] != 1 {
		t.Errorf("two result = %+v", two)
	}

	w = cl.do(http.MethodGet, RouteStreak, "")
	var st struct {
		Streak struct {
			CurrentStreak int `json:"currentStreak"`
			LastPuzzle    int `json:"lastPuzzle"`
		} `json:"streak"`
		ModesRemaining []string `json:"modesRemaining"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.Streak.CurrentStreak != 1 || st.Streak.LastPuzzle != 70 {
		t.Errorf("streak = %+v", st.Streak)
	}
	if len(st.ModesRemaining) != 2 || st.ModesRemaining[0] != "four" || st.ModesRemaining[1] != "three" {
		t.Errorf("modes remaining = %v", st.ModesRemaining)
	}
}

func TestInvalidEntryAndClear(t *testing.T) {
	_, router := setupTestRouter(t)
	cl := &client{t: t, router: router}

	cl.state(cl.do(http.MethodPost, RouteMode, `{"mode":"three"}`))
	sb := cl.typeWord("zzzzz")
	if !sb.HasInvalidEntries {
		t.Fatal("expected an invalid entry")
	}
	sb = cl.state(cl.do(http.MethodPost, RouteClearInvalid, ""))
	if sb.HasInvalidEntries {
		t.Error("invalid entry should be cleared")
	}
	if sb.Mode != "three" {
		t.Errorf("clear response mode = %q, want three", sb.Mode)
	}
}

func TestKeyFormEncoded(t *testing.T) {
	_, router := setupTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, RouteKey, strings.NewReader(url.Values{"key": {"A"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("form key returned %d: %s", w.Code, w.Body.String())
	}
}

func TestBadRequests(t *testing.T) {
	_, router := setupTestRouter(t)
	cases := []struct {
		path, body string
		wantErr    string
	}{
		{RouteKey, `{"key":"F5"}`, ErrorUnknownKey},
		{RouteKey, `{"key":""}`, ErrorUnknownKey},
		{RouteKey, `not json`, ErrorUnknownKey},
		{RouteMode, `{"mode":"five"}`, ErrorUnknownMode},
		{RouteMode, `{}`, ErrorUnknownMode},
	}
	for _, c := range cases {
		cl := &client{t: t, router: router}
		w := cl.do(http.MethodPost, c.path, c.body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("POST %s %s returned %d, want 400", c.path, c.body, w.Code)
			continue
		}
		if !strings.Contains(w.Body.String(), c.wantErr) {
			t.Errorf("POST %s %s body = %s, want %q", c.path, c.body, w.Body.String(), c.wantErr)
		}
	}
}

func TestRateLimit(t *testing.T) {
	app, _ := setupTestRouter(t)
	app.RateLimitRPS = 1
	app.RateLimitBurst = 1
	router := app.setupRouter()
	cl := &client{t: t, router: router}

	if w := cl.do(http.MethodPost, RouteKey, `{"key":"a"}`); w.Code != http.StatusOK {
		t.Fatalf("first request returned %d", w.Code)
	}
	if w := cl.do(http.MethodPost, RouteKey, `{"key":"b"}`); w.Code != http.StatusTooManyRequests {
		t.Errorf("second request returned %d, want 429", w.Code)
	}
}

func TestGzip(t *testing.T) {
	_, router := setupTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, RouteHealthz, nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Errorf("Content-Encoding = %q, want gzip", w.Header().Get("Content-Encoding"))
	}
}

func TestEventsStream(t *testing.T) {
	_, router := setupTestRouter(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + RouteState)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("no session cookie")
	}

	header := http.Header{}
	header.Set("Cookie", SessionCookieName+"="+cookie.Value)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + RouteEvents
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first struct {
		Kind     string `json:"kind"`
		Snapshot struct {
			Mode    string            `json:"mode"`
			Changes []json.RawMessage `json:"changes"`
		} `json:"snapshot"`
	}
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read sync: %v", err)
	}
	if first.Kind != "sync" || first.Snapshot.Mode != "four" || len(first.Snapshot.Changes) == 0 {
		t.Fatalf("sync frame = %+v", first)
	}

	req, _ := http.NewRequest(http.MethodPost, srv.URL+RouteKey, strings.NewReader(`{"key":"q"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	var ev struct {
		Kind string `json:"kind"`
		Key  string `json:"key"`
	}
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Kind != "key-applied" || ev.Key != "q" {
		t.Errorf("event = %+v, want key-applied q", ev)
	}
}
