package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/stagefx/internal/render"
	"github.com/coreman2200/stagefx/internal/zone"
)

type fakeController struct {
	got []Control
}

func (f *fakeController) Control(c Control) (any, error) {
	f.got = append(f.got, c)
	if c.Op == "explode" {
		return nil, errors.New("unknown op")
	}
	return map[string]string{"transport": "playing"}, nil
}

func (f *fakeController) Status() any { return "ok" }

func newServer(t *testing.T, s *State) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/diag", s.HandleDiagWS)
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/health", s.HandleHealth)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestControlRoundTrip(t *testing.T) {
	ctl := &fakeController{}
	s := NewState(60)
	s.Controller = ctl
	srv := newServer(t, s)
	c := dial(t, srv, "/control")

	require.NoError(t, c.WriteJSON(Control{Op: "seek", Ms: 1500}))
	var rep Reply
	require.NoError(t, c.ReadJSON(&rep))
	assert.True(t, rep.OK)
	assert.Equal(t, "seek", rep.Op)
	require.Len(t, ctl.got, 1)
	assert.Equal(t, 1500.0, ctl.got[0].Ms)

	require.NoError(t, c.WriteJSON(Control{Op: "explode"}))
	require.NoError(t, c.ReadJSON(&rep))
	assert.False(t, rep.OK)
	assert.Equal(t, "unknown op", rep.Error)
}

func TestFramesBroadcast(t *testing.T) {
	s := NewState(60)
	s.SetClock(func() float64 { return 42 })
	srv := newServer(t, s)
	c := dial(t, srv, "/ws")

	// wait for the server to register the client
	require.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return len(s.clients) == 1
	}, time.Second, 5*time.Millisecond)

	f := render.Neutral()
	f[zone.Center].Dimmer = 1
	require.NoError(t, s.Write(f))

	c.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := c.ReadMessage()
	require.NoError(t, err)
	var wf render.WireFrame
	require.NoError(t, json.Unmarshal(data, &wf))
	assert.Equal(t, uint64(1), wf.FrameID)
	assert.Equal(t, 42.0, wf.TMs)
	assert.Equal(t, 1.0, wf.Zones[zone.Center].Dimmer)
}

func TestHealth(t *testing.T) {
	s := NewState(30)
	s.Controller = &fakeController{}
	srv := newServer(t, s)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 30.0, body["fps"])
	assert.Equal(t, "ok", body["show"])
}
