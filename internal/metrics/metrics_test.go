package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestObserveUpstream(t *testing.T) {
	okBefore := counterValue(t, UpstreamRequests.WithLabelValues("200"))
	errBefore := counterValue(t, UpstreamRequests.WithLabelValues("error"))

	ObserveUpstream(200, time.Now())
	ObserveUpstream(0, time.Now().Add(-time.Second))

	assert.Equal(t, okBefore+1, counterValue(t, UpstreamRequests.WithLabelValues("200")))
	assert.Equal(t, errBefore+1, counterValue(t, UpstreamRequests.WithLabelValues("error")))
}

func TestResponsesCounter(t *testing.T) {
	before := counterValue(t, Responses.WithLabelValues("empty"))
	Responses.WithLabelValues("empty").Inc()
	assert.Equal(t, before+1, counterValue(t, Responses.WithLabelValues("empty")))
}

func TestCollectorsRegistered(t *testing.T) {
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["challenge_upstream_request_duration_seconds"])
	assert.True(t, names["challenge_characters_returned"])
}
