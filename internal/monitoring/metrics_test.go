package monitoring

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.SessionsCreated.Inc()
	m.MessagesSent.Inc()
	m.MessagesSent.Inc()
	m.ChatFailures.WithLabelValues(FailureTransport).Inc()
	m.SessionActive.Set(1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.MessagesSent))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChatFailures.WithLabelValues(FailureTransport)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ChatFailures.WithLabelValues(FailureServer)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionActive))
}

func TestSeparateRegistries(t *testing.T) {
	// Two collectors registered against distinct registries must not
	// collide.
	a := NewMetrics(prometheus.NewRegistry())
	b := NewMetrics(prometheus.NewRegistry())

	a.SessionsCreated.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.SessionsCreated))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.SessionsCreated))
}
