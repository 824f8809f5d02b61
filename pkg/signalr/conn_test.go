package signalr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 3 * time.Second

// hubServer plays the service side of the hub protocol.
type hubServer struct {
	t        *testing.T
	srv      *httptest.Server
	upgrader websocket.Upgrader

	negotiations    atomic.Int32
	negotiateStatus atomic.Int32
	handshakeReply  string
	wantToken       string

	mu         sync.Mutex
	authHeader []string
	conns      chan *websocket.Conn
}

func newHubServer(t *testing.T) *hubServer {
	t.Helper()
	h := &hubServer{
		t:              t,
		handshakeReply: "{}",
		conns:          make(chan *websocket.Conn, 8),
	}
	h.negotiateStatus.Store(http.StatusOK)

	mux := http.NewServeMux()
	mux.HandleFunc("/client/negotiate", h.negotiate)
	mux.HandleFunc("/client/", h.socket)
	h.srv = httptest.NewServer(mux)
	t.Cleanup(h.srv.Close)
	return h
}

func (h *hubServer) hubURL() string {
	return h.srv.URL + "/client/?hub=alerts"
}

func (h *hubServer) negotiate(w http.ResponseWriter, r *http.Request) {
	h.negotiations.Add(1)
	assert.Equal(h.t, http.MethodPost, r.Method)
	assert.Equal(h.t, "1", r.URL.Query().Get("negotiateVersion"))
	assert.Equal(h.t, "alerts", r.URL.Query().Get("hub"))
	h.mu.Lock()
	h.authHeader = append(h.authHeader, r.Header.Get("Authorization"))
	h.mu.Unlock()

	status := int(h.negotiateStatus.Load())
	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"connectionId":     "cid",
		"connectionToken":  "ctoken",
		"negotiateVersion": 1,
		"availableTransports": []map[string]any{
			{"transport": "WebSockets", "transferFormats": []string{"Text", "Binary"}},
		},
	})
}

func (h *hubServer) socket(w http.ResponseWriter, r *http.Request) {
	assert.Equal(h.t, "ctoken", r.URL.Query().Get("id"))
	if h.wantToken != "" {
		assert.Equal(h.t, "Bearer "+h.wantToken, r.Header.Get("Authorization"))
	}
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	_, data, err := ws.ReadMessage()
	if err != nil {
		_ = ws.Close()
		return
	}
	assert.Equal(h.t, `{"protocol":"json","version":1}`+"\x1e", string(data))
	_ = ws.WriteMessage(websocket.TextMessage, []byte(h.handshakeReply+"\x1e"))
	h.conns <- ws
}

func (h *hubServer) nextConn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case ws := <-h.conns:
		t.Cleanup(func() { _ = ws.Close() })
		return ws
	case <-time.After(waitFor):
		t.Fatal("no websocket connection")
		return nil
	}
}

func send(t *testing.T, ws *websocket.Conn, records ...string) {
	t.Helper()
	var b strings.Builder
	for _, r := range records {
		b.WriteString(r)
		b.WriteByte(recordSeparator)
	}
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(b.String())))
}

func testOptions() Options {
	return Options{
		AccessToken:      "access-1",
		HandshakeTimeout: time.Second,
		ReconnectDelays:  []time.Duration{0, 10 * time.Millisecond},
	}
}

func TestConn_StartDeliversInvocations(t *testing.T) {
	hub := newHubServer(t)
	hub.wantToken = "access-1"
	c := New(hub.hubURL(), testOptions())

	got := make(chan []json.RawMessage, 4)
	c.On("newStreamAlert", func(args []json.RawMessage) { got <- args })

	require.NoError(t, c.Start(context.Background()))
	defer c.Stop(context.Background())
	assert.Equal(t, StateConnected, c.State())

	ws := hub.nextConn(t)
	send(t, ws,
		`{"type":6}`,
		`{"type":1,"target":"NEWSTREAMALERT","arguments":["<div class='sa-label'>Got $5.00 from Alice!</div>",null]}`,
	)

	select {
	case args := <-got:
		require.Len(t, args, 2)
		var html string
		require.NoError(t, json.Unmarshal(args[0], &html))
		assert.Contains(t, html, "Alice")
		assert.Equal(t, "null", string(args[1]))
	case <-time.After(waitFor):
		t.Fatal("invocation not delivered")
	}

	hub.mu.Lock()
	assert.Equal(t, []string{"Bearer access-1"}, hub.authHeader)
	hub.mu.Unlock()
}

func TestConn_SplitRecordsAcrossMessages(t *testing.T) {
	hub := newHubServer(t)
	c := New(hub.hubURL(), testOptions())

	got := make(chan string, 4)
	c.On("updateGoalOverlay", func(args []json.RawMessage) { got <- string(args[0]) })

	require.NoError(t, c.Start(context.Background()))
	defer c.Stop(context.Background())

	ws := hub.nextConn(t)
	record := `{"type":1,"target":"updateGoalOverlay","arguments":["{}"]}`
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(record[:20])))
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(record[20:]+"\x1e")))

	select {
	case s := <-got:
		assert.Equal(t, `"{}"`, s)
	case <-time.After(waitFor):
		t.Fatal("split record not delivered")
	}
}

func TestConn_HandshakeRejected(t *testing.T) {
	hub := newHubServer(t)
	hub.handshakeReply = `{"error":"protocol not supported"}`
	c := New(hub.hubURL(), testOptions())

	err := c.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHandshakeRejected)
	assert.Contains(t, err.Error(), "protocol not supported")
	assert.Equal(t, StateDisconnected, c.State())
}

func TestConn_NegotiateFailure(t *testing.T) {
	hub := newHubServer(t)
	hub.negotiateStatus.Store(http.StatusUnauthorized)
	c := New(hub.hubURL(), testOptions())

	err := c.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.NotContains(t, err.Error(), "access-1")
	assert.Equal(t, StateDisconnected, c.State())
}

func TestConn_NegotiateRedirect(t *testing.T) {
	hub := newHubServer(t)
	hub.wantToken = "redirected-token"

	front := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"url":         hub.hubURL(),
			"accessToken": "redirected-token",
		})
	}))
	defer front.Close()

	c := New(front.URL+"/client/?hub=alerts", testOptions())
	require.NoError(t, c.Start(context.Background()))
	defer c.Stop(context.Background())
	hub.nextConn(t)

	hub.mu.Lock()
	assert.Equal(t, []string{"Bearer redirected-token"}, hub.authHeader)
	hub.mu.Unlock()
}

func TestConn_TooManyRedirects(t *testing.T) {
	var self string
	loop := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"url": self})
	}))
	defer loop.Close()
	self = loop.URL + "/client/"

	err := New(self, testOptions()).Start(context.Background())
	assert.ErrorIs(t, err, ErrTooManyRedirects)
}

func TestConn_NegotiateErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"hub disabled"}`))
	}))
	defer srv.Close()

	err := New(srv.URL, testOptions()).Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hub disabled")
}

func TestConn_NoTextWebSockets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"connectionToken":"x","negotiateVersion":1,"availableTransports":[{"transport":"LongPolling","transferFormats":["Text"]}]}`))
	}))
	defer srv.Close()

	err := New(srv.URL, testOptions()).Start(context.Background())
	assert.ErrorIs(t, err, ErrNoWebSockets)
}

func TestConn_StartTwice(t *testing.T) {
	hub := newHubServer(t)
	c := New(hub.hubURL(), testOptions())

	require.NoError(t, c.Start(context.Background()))
	defer c.Stop(context.Background())
	hub.nextConn(t)

	assert.ErrorIs(t, c.Start(context.Background()), ErrAlreadyStarted)
}

func TestConn_StopClosesWithNilError(t *testing.T) {
	hub := newHubServer(t)
	c := New(hub.hubURL(), testOptions())

	closed := make(chan error, 2)
	c.OnClose(func(err error) { closed <- err })

	require.NoError(t, c.Start(context.Background()))
	hub.nextConn(t)

	require.NoError(t, c.Stop(context.Background()))
	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("close callback not called")
	}
	assert.Equal(t, StateDisconnected, c.State())

	require.NoError(t, c.Stop(context.Background()))
	assert.Len(t, closed, 0)
}

func TestConn_StopBeforeStart(t *testing.T) {
	c := New("http://127.0.0.1:1/client/", testOptions())
	assert.NoError(t, c.Stop(context.Background()))
}

func TestConn_ServerCloseWithoutReconnect(t *testing.T) {
	hub := newHubServer(t)
	c := New(hub.hubURL(), testOptions())

	closed := make(chan error, 1)
	c.OnClose(func(err error) { closed <- err })
	reconnecting := make(chan error, 1)
	c.OnReconnecting(func(err error) { reconnecting <- err })

	require.NoError(t, c.Start(context.Background()))
	ws := hub.nextConn(t)
	send(t, ws, `{"type":7,"error":"Connection closed with an error.","allowReconnect":false}`)

	select {
	case err := <-closed:
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrServerClosed)
		assert.Contains(t, err.Error(), "Connection closed with an error.")
	case <-time.After(waitFor):
		t.Fatal("close callback not called")
	}
	assert.Len(t, reconnecting, 0)
	assert.Equal(t, StateDisconnected, c.State())
}

func TestConn_ReconnectsAfterLoss(t *testing.T) {
	hub := newHubServer(t)
	c := New(hub.hubURL(), testOptions())

	got := make(chan string, 4)
	c.On("updateAlertActivity", func(args []json.RawMessage) { got <- string(args[0]) })
	reconnecting := make(chan error, 1)
	c.OnReconnecting(func(err error) { reconnecting <- err })
	reconnected := make(chan struct{}, 1)
	c.OnReconnected(func() { reconnected <- struct{}{} })

	require.NoError(t, c.Start(context.Background()))
	defer c.Stop(context.Background())

	first := hub.nextConn(t)
	require.NoError(t, first.Close())

	select {
	case err := <-reconnecting:
		assert.Error(t, err)
	case <-time.After(waitFor):
		t.Fatal("reconnecting callback not called")
	}

	second := hub.nextConn(t)
	select {
	case <-reconnected:
	case <-time.After(waitFor):
		t.Fatal("reconnected callback not called")
	}
	assert.Equal(t, StateConnected, c.State())
	assert.Equal(t, int32(2), hub.negotiations.Load())

	send(t, second, `{"type":1,"target":"updateAlertActivity","arguments":["after"]}`)
	select {
	case s := <-got:
		assert.Equal(t, `"after"`, s)
	case <-time.After(waitFor):
		t.Fatal("invocation after reconnect not delivered")
	}
}

func TestConn_ServerRequestedReconnect(t *testing.T) {
	hub := newHubServer(t)
	c := New(hub.hubURL(), testOptions())

	reconnected := make(chan struct{}, 1)
	c.OnReconnected(func() { reconnected <- struct{}{} })

	require.NoError(t, c.Start(context.Background()))
	defer c.Stop(context.Background())

	send(t, hub.nextConn(t), `{"type":7,"allowReconnect":true}`)
	hub.nextConn(t)

	select {
	case <-reconnected:
	case <-time.After(waitFor):
		t.Fatal("reconnected callback not called")
	}
}

func TestConn_ReconnectExhausted(t *testing.T) {
	hub := newHubServer(t)
	c := New(hub.hubURL(), testOptions())

	closed := make(chan error, 1)
	c.OnClose(func(err error) { closed <- err })

	require.NoError(t, c.Start(context.Background()))
	ws := hub.nextConn(t)

	hub.negotiateStatus.Store(http.StatusServiceUnavailable)
	require.NoError(t, ws.Close())

	select {
	case err := <-closed:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reconnect failed after 2 attempts")
		assert.Contains(t, err.Error(), "503")
	case <-time.After(waitFor):
		t.Fatal("close callback not called")
	}
	assert.Equal(t, int32(3), hub.negotiations.Load())
	assert.Equal(t, StateDisconnected, c.State())
}

func TestConn_ReconnectDisabled(t *testing.T) {
	hub := newHubServer(t)
	opts := testOptions()
	opts.ReconnectDelays = []time.Duration{}
	c := New(hub.hubURL(), opts)

	closed := make(chan error, 1)
	c.OnClose(func(err error) { closed <- err })

	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, hub.nextConn(t).Close())

	select {
	case err := <-closed:
		assert.Error(t, err)
	case <-time.After(waitFor):
		t.Fatal("close callback not called")
	}
	assert.Equal(t, int32(1), hub.negotiations.Load())
}

func TestConn_SendsKeepAlivePings(t *testing.T) {
	hub := newHubServer(t)
	opts := testOptions()
	opts.KeepAliveInterval = 20 * time.Millisecond
	c := New(hub.hubURL(), opts)

	require.NoError(t, c.Start(context.Background()))
	defer c.Stop(context.Background())

	ws := hub.nextConn(t)
	_ = ws.SetReadDeadline(time.Now().Add(waitFor))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, `{"type":6}`+"\x1e", string(data))
}

func TestConn_HandlerPanicDoesNotKillConnection(t *testing.T) {
	hub := newHubServer(t)
	c := New(hub.hubURL(), testOptions())

	got := make(chan struct{}, 1)
	c.On("boom", func([]json.RawMessage) { panic("boom") })
	c.On("ok", func([]json.RawMessage) { got <- struct{}{} })

	require.NoError(t, c.Start(context.Background()))
	defer c.Stop(context.Background())

	send(t, hub.nextConn(t),
		`{"type":1,"target":"boom","arguments":[]}`,
		`not json`,
		`{"type":1,"target":"missing","arguments":[]}`,
		`{"type":1,"target":"ok","arguments":[]}`,
	)

	select {
	case <-got:
	case <-time.After(waitFor):
		t.Fatal("handler after panic not delivered")
	}
	assert.Equal(t, StateConnected, c.State())
}

func TestURLHelpers(t *testing.T) {
	n, err := toNegotiateURL("https://hub.example/client/?hub=alerts")
	require.NoError(t, err)
	assert.Equal(t, "https://hub.example/client/negotiate?hub=alerts&negotiateVersion=1", n)

	n, err = toNegotiateURL("http://hub.example/alerts")
	require.NoError(t, err)
	assert.Equal(t, "http://hub.example/alerts/negotiate?negotiateVersion=1", n)

	s, err := toSocketURL("https://hub.example/client/?hub=alerts", "tok")
	require.NoError(t, err)
	assert.Equal(t, "wss://hub.example/client/?hub=alerts&id=tok", s)

	_, err = toSocketURL("ftp://hub.example/", "tok")
	assert.Error(t, err)
}

func TestSplitRecords(t *testing.T) {
	records, rest := splitRecords([]byte("{\"a\":1}\x1e\x1e{\"b\":2}\x1e{\"c\""))
	require.Len(t, records, 2)
	assert.Equal(t, `{"a":1}`, string(records[0]))
	assert.Equal(t, `{"b":2}`, string(records[1]))
	assert.Equal(t, `{"c"`, string(rest))
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{
		StateDisconnected: "disconnected",
		StateConnecting:   "connecting",
		StateConnected:    "connected",
		StateReconnecting: "reconnecting",
		State(42):         "unknown",
	} {
		assert.Equal(t, want, s.String(), fmt.Sprint(int(s)))
	}
}
