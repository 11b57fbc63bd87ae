package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	diag "github.com/coreman2200/stagefx/internal/diagnostics"
	"github.com/coreman2200/stagefx/internal/effect"
	"github.com/coreman2200/stagefx/internal/render"
)

// Control is one message on the /control socket.
type Control struct {
	Op string `json:"op"` // play|pause|stop|seek|rate|loop|clear_loop|load|trigger|release|abort|musical|test|grand_master|ambient

	Ms    float64 `json:"ms,omitempty"`
	Rate  float64 `json:"rate,omitempty"`
	Start float64 `json:"start,omitempty"`
	End   float64 `json:"end,omitempty"`
	Level float64 `json:"level,omitempty"`

	Project string `json:"project,omitempty"` // path for load
	Test    string `json:"test,omitempty"`
	Preset  string `json:"preset,omitempty"` // ambient preset

	Effect    string                 `json:"effect,omitempty"`
	ID        string                 `json:"id,omitempty"`
	Intensity float64                `json:"intensity,omitempty"`
	Zones     []string               `json:"zones,omitempty"`
	Params    map[string]any         `json:"params,omitempty"`
	Seed      *uint32                `json:"seed,omitempty"`
	Musical   *effect.MusicalContext `json:"musical,omitempty"`
}

// Reply answers every control message.
type Reply struct {
	OK    bool   `json:"ok"`
	Op    string `json:"op"`
	Error string `json:"error,omitempty"`
	State any    `json:"state,omitempty"`
}

// Controller applies control messages; the show conductor implements it.
type Controller interface {
	Control(c Control) (any, error)
	Status() any
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// State fans frames and diagnostics out to websocket clients and routes
// control messages to the Controller. It is a render.Sink.
type State struct {
	mu  sync.RWMutex
	wmu sync.Mutex // serialises writes to client conns

	FPS        int
	Controller Controller

	frameID     uint64
	clock       func() float64
	startTime   time.Time
	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool
}

func NewState(fps int) *State {
	return &State{
		FPS:         fps,
		startTime:   time.Now(),
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
	}
}

// SetClock supplies the show time stamped on broadcast frames.
func (s *State) SetClock(fn func() float64) {
	s.mu.Lock()
	s.clock = fn
	s.mu.Unlock()
}

func (s *State) Write(f render.Frame) error {
	s.mu.Lock()
	s.frameID++
	id := s.frameID
	clock := s.clock
	s.mu.Unlock()

	var tMs float64
	if clock != nil {
		tMs = clock()
	}
	b, err := json.Marshal(render.Wire(id, tMs, f))
	if err != nil {
		return err
	}
	s.broadcast(s.clients, b)
	return nil
}

func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.Close()
	}
	for c := range s.diagClients {
		c.Close()
	}
	return nil
}

func (s *State) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.track(s.clients, conn)
}

func (s *State) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.track(s.diagClients, conn)
}

// track registers conn in set and drops it once the peer goes away.
func (s *State) track(set map[*websocket.Conn]bool, conn *websocket.Conn) {
	s.mu.Lock()
	set[conn] = true
	s.mu.Unlock()
	go func() {
		defer func() {
			s.mu.Lock()
			delete(set, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *State) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Control
		var rep Reply
		if err := json.Unmarshal(data, &msg); err != nil {
			rep = Reply{Error: "bad message: " + err.Error()}
		} else {
			rep = s.apply(msg)
		}
		b, _ := json.Marshal(rep)
		s.wmu.Lock()
		err = conn.WriteMessage(websocket.TextMessage, b)
		s.wmu.Unlock()
		if err != nil {
			return
		}
	}
}

func (s *State) apply(msg Control) Reply {
	rep := Reply{Op: msg.Op}
	if s.Controller == nil {
		rep.Error = "no controller"
		return rep
	}
	st, err := s.Controller.Control(msg)
	if err != nil {
		rep.Error = err.Error()
		s.PushDiag(diag.Diagnostic{
			Severity: diag.Warn, Code: "CONTROL.REJECTED", Summary: "Control message rejected",
			Detail: err.Error(), Evidence: map[string]any{"op": msg.Op},
		})
		return rep
	}
	rep.OK, rep.State = true, st
	return rep
}

func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	resp := map[string]any{
		"frame_id": s.frameID,
		"uptime_s": time.Since(s.startTime).Seconds(),
		"fps":      s.FPS,
		"clients":  len(s.clients),
	}
	ctl := s.Controller
	s.mu.RUnlock()
	if ctl != nil {
		resp["show"] = ctl.Status()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// PushDiag sends d to every /diag client.
func (s *State) PushDiag(d diag.Diagnostic) {
	b, _ := json.Marshal(d)
	s.broadcast(s.diagClients, b)
}

func (s *State) broadcast(set map[*websocket.Conn]bool, b []byte) {
	s.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	s.mu.RUnlock()

	s.wmu.Lock()
	defer s.wmu.Unlock()
	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write frame")
		}
	}
}
