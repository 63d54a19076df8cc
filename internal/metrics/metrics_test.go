package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jrsteele09/ecolink/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := metrics.New()

	m.LoginResult(nil)
	m.LoginResult(errors.New("boom"))
	m.LoginResult(errors.New("boom"))

	require.Equal(t, 1.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues("success")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues("failure")))
}

func TestObserveAPICall(t *testing.T) {
	m := metrics.New()

	m.ObserveAPICall("login", 200, 10*time.Millisecond)
	m.ObserveAPICall("login", 0, time.Millisecond)

	require.Equal(t, 2, testutil.CollectAndCount(m.APIRequestDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	require.NotPanics(t, func() {
		m.LoginResult(nil)
		m.ObserveAPICall("login", 500, time.Second)
	})
}
