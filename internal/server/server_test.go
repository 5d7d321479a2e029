package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/discardbot/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingAgent raises the minimum and counts what it sees.
type recordingAgent struct {
	mu       sync.Mutex
	acts     []sdk.Request
	observed []sdk.Request
}

func (a *recordingAgent) Act(_ context.Context, req sdk.Request) sdk.Decision {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acts = append(a.acts, req)
	return sdk.NewRaiseDecision(req.Observation.MinRaise, "test")
}

func (a *recordingAgent) Observe(_ context.Context, req sdk.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observed = append(a.observed, req)
}

func (a *recordingAgent) Stats() sdk.MatchStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return sdk.MatchStats{HandsPlayed: len(a.observed)}
}

func (a *recordingAgent) counts() (int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.acts), len(a.observed)
}

const requestJSON = `{
  "observation": {
    "street": 1,
    "acting_agent": 0,
    "my_cards": [8, 17],
    "community_cards": [0, 1, 2, -1, -1],
    "my_bet": 4,
    "opp_bet": 8,
    "opp_last_action": "RAISE",
    "opp_discarded_card": 5,
    "opp_drawn_card": -1,
    "my_discarded_card": -1,
    "my_drawn_card": -1,
    "min_raise": 6,
    "max_raise": 92,
    "valid_actions": [1, 1, 0, 1, 0]
  },
  "reward": 0,
  "terminated": false,
  "truncated": false,
  "info": {"hand_number": 3}
}`

func newTestServer(t *testing.T) (*recordingAgent, *httptest.Server) {
	t.Helper()
	a := &recordingAgent{}
	srv := httptest.NewServer(New(a, log.NewWithOptions(io.Discard, log.Options{})).Handler())
	t.Cleanup(srv.Close)
	return a, srv
}

func TestGetAction(t *testing.T) {
	t.Parallel()
	a, srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/get_action", "application/json", strings.NewReader(requestJSON))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, map[string]any{"action": 1.0, "raise_amount": 6.0, "card_to_discard": -1.0}, body)

	require.Len(t, a.acts, 1)
	obs := a.acts[0].Observation
	assert.Equal(t, sdk.Flop, obs.Street)
	assert.Equal(t, []int{8, 17}, obs.MyCards)
	assert.Equal(t, 5, obs.OppDiscardedCard)
	assert.Equal(t, sdk.Legal(sdk.ActionFold, sdk.ActionRaise, sdk.ActionCall), obs.ValidActions)
	assert.Equal(t, 3, a.acts[0].Info.HandNumber)
}

func TestObserveAndStats(t *testing.T) {
	t.Parallel()
	a, srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/observe", "application/json", strings.NewReader(requestJSON))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(body))

	_, observed := a.counts()
	assert.Equal(t, 1, observed)

	resp, err = http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	var stats sdk.MatchStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	resp.Body.Close()
	assert.Equal(t, 1, stats.HandsPlayed)

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.JSONEq(t, `{"status":"ok","hands_played":1}`, string(body))
}

func TestMalformedBodiesAreRejected(t *testing.T) {
	t.Parallel()
	a, srv := newTestServer(t)

	for _, body := range []string{
		"",
		"not json",
		"null",
		"[1,2]",
		`{"observation": {"valid_actions": [1, 1, 1, 1, 1, 1]}}`,
		`{"observation": {"my_bet": "lots"}}`,
		requestJSON + requestJSON,
	} {
		for _, path := range []string{"/get_action", "/observe"} {
			resp, err := http.Post(srv.URL+path, "application/json", bytes.NewBufferString(body))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "%s %q", path, body)
		}
	}

	acts, observed := a.counts()
	assert.Zero(t, acts)
	assert.Zero(t, observed)
}

func TestRoutesRejectWrongMethods(t *testing.T) {
	t.Parallel()
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/get_action")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestWebSocketRoundTrip(t *testing.T) {
	t.Parallel()
	a, srv := newTestServer(t)
	conn := dialWS(t, srv)

	require.NoError(t, conn.WriteJSON(Message{Type: MessageTypeAct, Data: json.RawMessage(requestJSON), RequestID: "r1"}))
	var reply Message
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, MessageTypeDecision, reply.Type)
	assert.Equal(t, "r1", reply.RequestID)

	var d sdk.Decision
	require.NoError(t, json.Unmarshal(reply.Data, &d))
	assert.Equal(t, sdk.ActionRaise, d.Action)
	assert.Equal(t, 6, d.RaiseAmount)

	require.NoError(t, conn.WriteJSON(Message{Type: MessageTypeObserve, Data: json.RawMessage(requestJSON), RequestID: "r2"}))
	var ackReply Message
	require.NoError(t, conn.ReadJSON(&ackReply))
	assert.Equal(t, Message{Type: MessageTypeAck, RequestID: "r2"}, ackReply)

	acts, observed := a.counts()
	assert.Equal(t, 1, acts)
	assert.Equal(t, 1, observed)
}

func TestWebSocketErrors(t *testing.T) {
	t.Parallel()
	a, srv := newTestServer(t)
	conn := dialWS(t, srv)

	frames := []string{
		`not json`,
		`{"type":"dance"}`,
		`{"type":"act","data":"oops"}`,
		`{"type":"observe"}`,
	}
	for _, frame := range frames {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
		var reply Message
		require.NoError(t, conn.ReadJSON(&reply))
		assert.Equal(t, MessageTypeError, reply.Type, frame)
		assert.NotEmpty(t, reply.Error)
	}

	acts, observed := a.counts()
	assert.Zero(t, acts)
	assert.Zero(t, observed)
}

func TestListenAndServeStopsWithContext(t *testing.T) {
	t.Parallel()
	s := New(&recordingAgent{}, log.NewWithOptions(io.Discard, log.Options{}))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
