package distance

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in   string
		want Metric
	}{
		{"Euclidean", Euclidean},
		{"euclidean", Euclidean},
		{"Geodesics", Geodesic},
		{"geodesic", Geodesic},
		{"HYBRID", Hybrid},
		{"0", Euclidean},
		{"1", Geodesic},
		{" 2 ", Hybrid},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMetric(tt.in)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMetric_Invalid(t *testing.T) {
	for _, in := range []string{"", "manhattan", "3", "-1"} {
		_, err := ParseMetric(in)
		assert.True(t, errors.Is(err, ErrUnknownMetric), "input %q: %v", in, err)
		assert.True(t, errors.Is(err, ErrPrecondition), "input %q: %v", in, err)
	}
}

func TestMetricCacheFile(t *testing.T) {
	assert.Equal(t, "eucMatrix.mtx", Euclidean.CacheFile())
	assert.Equal(t, "geoMatrix.mtx", Geodesic.CacheFile())
	assert.Equal(t, "hybMatrix.mtx", Hybrid.CacheFile())
	assert.Equal(t, "", Metric(7).CacheFile())
	assert.False(t, Metric(7).Valid())
	assert.Equal(t, "Unknown(7)", Metric(7).String())
}
