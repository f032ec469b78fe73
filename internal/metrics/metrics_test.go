package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gather returns the metric family called name.
func gather(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric %s not found", name)
	return nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, l := range m.GetLabel() {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}

func TestNewCollector_ReturnsNonNil(t *testing.T) {
	assert.NotNil(t, NewCollector(prometheus.NewRegistry()))
}

func TestRecordResolve(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordResolve(OutcomeOK, true, time.Millisecond)
	c.RecordResolve(OutcomeOK, false, time.Millisecond)
	c.RecordResolve(OutcomeOK, true, time.Millisecond)
	c.RecordResolve(OutcomeNotFound, false, time.Millisecond)

	byOutcome := map[string]float64{}
	for _, m := range gather(t, reg, "gomanse_resolve_total").GetMetric() {
		byOutcome[labelValue(m, "outcome")] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{OutcomeOK: 3, OutcomeNotFound: 1}, byOutcome)

	byPresence := map[string]float64{}
	for _, m := range gather(t, reg, "gomanse_hour_pillar_total").GetMetric() {
		byPresence[labelValue(m, "present")] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"true": 2, "false": 1}, byPresence)

	hist := gather(t, reg, "gomanse_resolve_latency_seconds").GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(4), hist.GetSampleCount())
}

func TestRecordHTTPStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(http.StatusOK)
	c.RecordHTTPStatus(http.StatusOK)
	c.RecordHTTPStatus(http.StatusTooManyRequests)

	got := map[string]float64{}
	for _, m := range gather(t, reg, "gomanse_http_status_total").GetMetric() {
		got[labelValue(m, "status_code")] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"200": 2, "429": 1}, got)
}

func TestRecordCountersAndGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRateLimited()
	c.RecordFeedback()
	c.RecordFeedback()
	c.RecordCalendarEvents(9)
	c.RecordCalendarEvents(3)

	assert.Equal(t, 1.0, gather(t, reg, "gomanse_rate_limited_total").GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 2.0, gather(t, reg, "gomanse_feedback_submitted_total").GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 3.0, gather(t, reg, "gomanse_calendar_events").GetMetric()[0].GetGauge().GetValue())
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordResolve(OutcomeInvalidDate, false, time.Microsecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `gomanse_resolve_total{outcome="invalid_date"} 1`))
}

func TestNop_ImplementsRecorder(t *testing.T) {
	var r Recorder = Nop{}
	r.RecordResolve(OutcomeOK, true, time.Second)
	r.RecordHTTPStatus(200)
	r.RecordRateLimited()
	r.RecordCalendarEvents(1)
	r.RecordFeedback()

	var _ Recorder = (*Collector)(nil)
}
