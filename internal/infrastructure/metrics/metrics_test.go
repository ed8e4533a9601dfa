package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retaguarda/internal/core/apperror"
	"retaguarda/internal/domain"
	memcache "retaguarda/internal/infrastructure/cache"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", Outcome(nil))
	assert.Equal(t, "not_found", Outcome(apperror.NewNotFound("empresa", "x")))
	assert.Equal(t, "conflict", Outcome(apperror.NewConflict("dup")))
	assert.Equal(t, "system", Outcome(errors.New("boom")))
}

func TestLifecycleObserver(t *testing.T) {
	observe := LifecycleObserver()
	counter := lifecycleOperationsTotal.WithLabelValues("filial", string(domain.OpCreate), "conflict")
	before := testutil.ToFloat64(counter)

	observe(context.Background(), "filial", domain.OpCreate, apperror.NewConflict("matriz"))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestInstrumentCache(t *testing.T) {
	ctx := context.Background()
	c := InstrumentCache(memcache.NewMemoryCache(), "test_cache")

	hits := cacheHitsTotal.WithLabelValues("test_cache")
	misses := cacheMissesTotal.WithLabelValues("test_cache")
	hitsBefore, missesBefore := testutil.ToFloat64(hits), testutil.ToFloat64(misses)

	_, _ = c.Get(ctx, "k")
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, err := c.Get(ctx, "k")
	require.NoError(t, err)

	assert.Equal(t, hitsBefore+1, testutil.ToFloat64(hits))
	assert.Equal(t, missesBefore+1, testutil.ToFloat64(misses))
}

func TestInstrumentCache_Nil(t *testing.T) {
	assert.Nil(t, InstrumentCache(nil, "x"))
}
