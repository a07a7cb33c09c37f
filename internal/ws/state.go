package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	diag "github.com/coreman2200/trafficsignal/internal/diagnostics"
	"github.com/coreman2200/trafficsignal/internal/traffic"
)

// diagBacklog is how many diagnostics a newly connected client is replayed.
const diagBacklog = 16

// Status is the snapshot sent to /ws clients and served on /health.
type Status struct {
	Driver  string         `json:"driver"`
	Lit     *traffic.Light `json:"lit,omitempty"`
	Seq     uint64         `json:"seq"`
	Cycles  uint64         `json:"cycles"`
	Faulted bool           `json:"faulted"`
	T       int64          `json:"t"`
	UptimeS float64        `json:"uptime_s"`
}

// State mirrors the signal for websocket clients. Publish and CycleDone are
// called from the controller goroutine; the handlers from net/http.
type State struct {
	mu sync.Mutex

	driver    string
	lit       *traffic.Light
	seq       uint64
	cycles    uint64
	faulted   bool
	startTime time.Time

	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool
	diags       []diag.Diagnostic
}

func NewState(driver string) *State {
	return &State{
		driver:      driver,
		startTime:   time.Now(),
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
	}
}

// Publish records the lamp just lit and broadcasts it.
func (s *State) Publish(l traffic.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lit = &l
	s.seq++
	s.broadcast(s.clients, s.status())
}

// CycleDone counts a completed pattern.
func (s *State) CycleDone() {
	s.mu.Lock()
	s.cycles++
	s.mu.Unlock()
}

// Faulted marks the signal halted and tells every client.
func (s *State) Faulted(d diag.Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faulted = true
	s.lit = nil
	s.broadcast(s.clients, s.status())
	s.pushDiag(d)
}

// PushDiag broadcasts a diagnostic and keeps it for late joiners.
func (s *State) PushDiag(d diag.Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushDiag(d)
}

// Snapshot returns the current status.
func (s *State) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status()
}

func (s *State) HandleStatusWS(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, s.clients, func(conn *websocket.Conn) {
		s.write(conn, s.status())
	})
}

func (s *State) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, s.diagClients, func(conn *websocket.Conn) {
		for _, d := range s.diags {
			s.write(conn, d)
		}
	})
}

func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	if st.Faulted {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(st)
}

// serve upgrades the request, greets the client under the lock so its first
// message cannot interleave with a broadcast, then drains reads until close.
func (s *State) serve(w http.ResponseWriter, r *http.Request, set map[*websocket.Conn]bool, greet func(*websocket.Conn)) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("ws upgrade")
		return
	}
	s.mu.Lock()
	greet(conn)
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

func (s *State) status() Status {
	return Status{
		Driver:  s.driver,
		Lit:     s.lit,
		Seq:     s.seq,
		Cycles:  s.cycles,
		Faulted: s.faulted,
		T:       time.Now().UnixNano(),
		UptimeS: time.Since(s.startTime).Seconds(),
	}
}

func (s *State) pushDiag(d diag.Diagnostic) {
	s.diags = append(s.diags, d)
	if len(s.diags) > diagBacklog {
		s.diags = s.diags[len(s.diags)-diagBacklog:]
	}
	s.broadcast(s.diagClients, d)
}

func (s *State) broadcast(set map[*websocket.Conn]bool, v any) {
	for c := range set {
		s.write(c, v)
	}
}

func (s *State) write(c *websocket.Conn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("encode ws message")
		return
	}
	c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
	if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
		log.Debug().Err(err).Msg("write ws message")
	}
}
