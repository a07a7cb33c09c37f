package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/trafficsignal/internal/traffic"
)

func TestObserve(t *testing.T) {
	m := New()
	for _, l := range traffic.DefaultPattern() {
		m.ObserveLight(l)
	}
	m.ObserveLight(traffic.Light{Color: traffic.Red, Sec: 1})
	m.ObserveCycle()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycles))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.activations.WithLabelValues("red")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.holdSeconds.WithLabelValues("red")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lit.WithLabelValues("red")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.lit.WithLabelValues("green")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.faults))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveFault()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "trafficsignal_faults_total 1"), body)
	assert.Contains(t, body, `trafficsignal_lamp_lit{color="yellow"} 0`)
}
