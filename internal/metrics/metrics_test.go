package metrics_test

import (
	"testing"

	"auctions/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollectorsRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.New(reg)

	c.BidsAccepted.Inc()
	c.BidsRejected.WithLabelValues("bid_too_low").Inc()
	c.AuctionsResolved.WithLabelValues("sold").Inc()

	require.Equal(t, 1.0, testutil.ToFloat64(c.BidsAccepted))
	require.Equal(t, 1.0, testutil.ToFloat64(c.BidsRejected.WithLabelValues("bid_too_low")))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}
