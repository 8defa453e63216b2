package eircode

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCountOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	okSrv, _ := newTestServer(t, http.StatusOK, postcodeBody)
	badSrv, _ := newTestServer(t, http.StatusOK, `{"errors":[{"message":"Bad key","type":{"code":7}}]}`)
	ctx := context.Background()

	okClient := newTestClient(t, okSrv.URL, WithMetrics(metrics))
	badClient := newTestClient(t, badSrv.URL, WithMetrics(metrics))

	_, err := okClient.PostcodeLookup(ctx, "X33 2KPH")
	require.NoError(t, err)
	_, err = okClient.PostcodeLookup(ctx, "X33 2KPH")
	require.NoError(t, err)
	_, err = badClient.PostcodeLookup(ctx, "X33 2KPH")
	require.Error(t, err)
	_, err = okClient.GetEcadData(ctx, "")
	require.Error(t, err)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := counterValue(mfs, "eircode_requests_total", OpPostcodeLookup, string(OutcomeSuccess))
	require.NoError(t, err)
	assert.Equal(t, float64(2), got)

	got, err = counterValue(mfs, "eircode_requests_total", OpPostcodeLookup, string(OutcomeAPIError))
	require.NoError(t, err)
	assert.Equal(t, float64(1), got)

	got, err = counterValue(mfs, "eircode_requests_total", OpGetEcadData, string(OutcomeInvalidRequest))
	require.NoError(t, err)
	assert.Equal(t, float64(1), got)

	mf := findMetricFamily(mfs, "eircode_request_duration_seconds")
	require.NotNil(t, mf)
	assert.NotEmpty(t, mf.GetMetric())
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.observe(OpFindAddress, OutcomeSuccess, 0) })
	assert.NotPanics(t, func() { NewMetrics(nil).observe(OpFindAddress, OutcomeSuccess, 0) })
}

func counterValue(mfs []*dto.MetricFamily, name, operation, outcome string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if hasLabel(metric.GetLabel(), "operation", operation) && hasLabel(metric.GetLabel(), "outcome", outcome) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing operation=%s outcome=%s", name, operation, outcome)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func hasLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
