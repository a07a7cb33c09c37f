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

	diag "github.com/coreman2200/trafficsignal/internal/diagnostics"
	"github.com/coreman2200/trafficsignal/internal/traffic"
)

func newServer(t *testing.T, s *State) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleStatusWS)
	mux.HandleFunc("/diag", s.HandleDiagWS)
	mux.HandleFunc("/health", s.HandleHealth)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, v))
}

func TestStatusFeed(t *testing.T) {
	s := NewState("sim")
	srv := newServer(t, s)
	conn := dial(t, srv, "/ws")

	var hello Status
	read(t, conn, &hello)
	assert.Equal(t, "sim", hello.Driver)
	assert.Nil(t, hello.Lit)

	s.Publish(traffic.Light{Color: traffic.Yellow, Sec: 2})

	var st Status
	read(t, conn, &st)
	require.NotNil(t, st.Lit)
	assert.Equal(t, traffic.Light{Color: traffic.Yellow, Sec: 2}, *st.Lit)
	assert.Equal(t, uint64(1), st.Seq)
}

func TestDiagReplay(t *testing.T) {
	s := NewState("sim")
	s.PushDiag(diag.DriverFallback("gpio", errors.New("no gpiomem")))
	srv := newServer(t, s)
	conn := dial(t, srv, "/diag")

	var d diag.Diagnostic
	read(t, conn, &d)
	assert.Equal(t, "DRIVER.FALLBACK", d.Code)
}

func TestDiagBacklogIsBounded(t *testing.T) {
	s := NewState("sim")
	for i := 0; i < diagBacklog+5; i++ {
		s.PushDiag(diag.Diagnostic{Code: "X"})
	}
	assert.Len(t, s.diags, diagBacklog)
}

func TestHealth(t *testing.T) {
	s := NewState("gpio")
	srv := newServer(t, s)
	s.Publish(traffic.Light{Color: traffic.Green, Sec: 5})
	s.CycleDone()

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var st Status
	require.NoError(t, json.NewDecoder(res.Body).Decode(&st))
	assert.Equal(t, uint64(1), st.Cycles)
	assert.Equal(t, traffic.Green, st.Lit.Color)
}

func TestHealthAfterFault(t *testing.T) {
	s := NewState("gpio")
	srv := newServer(t, s)
	s.Faulted(diag.Fault(errors.New("stuck")))

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	assert.True(t, s.Snapshot().Faulted)
	assert.Nil(t, s.Snapshot().Lit)
}
