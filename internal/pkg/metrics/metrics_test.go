package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveFetch(t *testing.T) {
	before := testutil.ToFloat64(PageFetchesTotal.WithLabelValues("503"))

	ObserveFetch(503, 120*time.Millisecond)
	ObserveFetch(503, 80*time.Millisecond)

	assert.Equal(t, before+2, testutil.ToFloat64(PageFetchesTotal.WithLabelValues("503")))
}

func TestObserveFetch_TransportError(t *testing.T) {
	before := testutil.ToFloat64(PageFetchesTotal.WithLabelValues("0"))

	ObserveFetch(0, time.Second)

	assert.Equal(t, before+1, testutil.ToFloat64(PageFetchesTotal.WithLabelValues("0")))
}
