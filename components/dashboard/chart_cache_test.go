package dashboard

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartCacheStoresEntry(t *testing.T) {
	cache := NewChartCache(time.Minute)
	calls := 0
	render := func() (string, error) {
		calls++
		return "html", nil
	}

	val1, err := cache.GetOrRender("pib_real", "v1", render)
	require.NoError(t, err)
	val2, err := cache.GetOrRender("pib_real", "v1", render)
	require.NoError(t, err)

	assert.Equal(t, "html", val1)
	assert.Equal(t, val1, val2)
	assert.Equal(t, 1, calls)
}

func TestChartCacheExpires(t *testing.T) {
	cache := NewChartCache(2 * time.Millisecond)
	calls := 0
	render := func() (string, error) {
		calls++
		return "fresh", nil
	}

	_, err := cache.GetOrRender("pib_real", "v1", render)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = cache.GetOrRender("pib_real", "v1", render)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestChartCachePurge(t *testing.T) {
	cache := NewChartCache(time.Minute)
	calls := 0
	render := func() (string, error) {
		calls++
		return "html", nil
	}

	_, _ = cache.GetOrRender("pib_real", "v1", render)
	cache.Purge()
	_, _ = cache.GetOrRender("pib_real", "v1", render)

	assert.Equal(t, 2, calls)
}

func TestChartCacheKeepsOneEntryPerTable(t *testing.T) {
	cache := NewChartCache(time.Minute)
	calls := 0
	render := func() (string, error) {
		calls++
		return "html", nil
	}

	_, _ = cache.GetOrRender("pib_real", "v1", render)
	_, _ = cache.GetOrRender("pib_real", "v2", render)
	_, _ = cache.GetOrRender("pib_real", "v2", render)
	assert.Equal(t, 2, calls, "a new fingerprint renders once")
	assert.Equal(t, 1, cache.Len(), "stale renders are replaced")

	_, _ = cache.GetOrRender("deuda_externa", "v1", render)
	assert.Equal(t, 2, cache.Len())
	cache.Forget("pib_real")
	assert.Equal(t, 1, cache.Len())
}

func TestChartCacheDisabled(t *testing.T) {
	cache := NewChartCache(0)
	calls := 0
	render := func() (string, error) {
		calls++
		return "html", nil
	}
	_, _ = cache.GetOrRender("pib_real", "v1", render)
	_, _ = cache.GetOrRender("pib_real", "v1", render)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, cache.Len())
}

func TestDatasetHashTracksValues(t *testing.T) {
	ds := &Dataset{
		Name:        "pib_real",
		LabelColumn: "anio",
		Columns:     []string{"pib"},
		Rows: []DatasetRow{
			{Label: "2000", Values: []decimal.NullDecimal{decimal.NewNullDecimal(decimal.NewFromInt(10))}},
		},
	}
	first := datasetHash(ds)
	assert.Equal(t, first, datasetHash(ds))

	ds.Rows[0].Values[0] = decimal.NewNullDecimal(decimal.NewFromInt(11))
	assert.NotEqual(t, first, datasetHash(ds))
	assert.Equal(t, "empty", datasetHash(nil))
}
