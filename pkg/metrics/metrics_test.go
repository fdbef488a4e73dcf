package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRequest(t *testing.T) {
	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("personality", "ok"))
	RecordRequest("personality", "ok", 3*time.Millisecond)
	after := testutil.ToFloat64(RequestsTotal.WithLabelValues("personality", "ok"))
	assert.Equal(t, before+1, after)
}

func TestRecordNode(t *testing.T) {
	before := testutil.ToFloat64(NodeErrorsTotal.WithLabelValues("recall.content"))
	RecordNode("recall.content", "recall", time.Millisecond, nil)
	RecordNode("recall.content", "recall", time.Millisecond, errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(NodeErrorsTotal.WithLabelValues("recall.content")))
}

func TestRecordSkipped(t *testing.T) {
	before := testutil.ToFloat64(SkippedItemsTotal.WithLabelValues("KEY_NOT_FOUND"))
	RecordSkipped("KEY_NOT_FOUND", 2)
	RecordSkipped("KEY_NOT_FOUND", 0)
	assert.Equal(t, before+2, testutil.ToFloat64(SkippedItemsTotal.WithLabelValues("KEY_NOT_FOUND")))
}

func TestCacheMetrics(t *testing.T) {
	hits := testutil.ToFloat64(CacheHitsTotal)
	misses := testutil.ToFloat64(CacheMissesTotal)
	RecordCacheHit()
	RecordCacheMiss()
	RecordCacheMiss()
	assert.Equal(t, hits+1, testutil.ToFloat64(CacheHitsTotal))
	assert.Equal(t, misses+2, testutil.ToFloat64(CacheMissesTotal))

	SetBreakerState(2)
	assert.Equal(t, 2.0, testutil.ToFloat64(CacheBreakerState))
	SetBreakerState(0)

	SetReferenceRows("songs", 42)
	assert.Equal(t, 42.0, testutil.ToFloat64(ReferenceRows.WithLabelValues("songs")))
}
