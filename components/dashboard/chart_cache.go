package dashboard

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// RenderCache memoizes rendered chart HTML per table. An entry is reused only
// while the dataset fingerprint it was rendered from still matches.
type RenderCache interface {
	GetOrRender(table, fingerprint string, render func() (string, error)) (string, error)
	Purge()
}

// ChartCache is an in-memory TTL cache holding one rendered chart per table.
type ChartCache struct {
	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]cachedChart
}

type cachedChart struct {
	fingerprint string
	html        string
	expires     time.Time
}

// NewChartCache builds a cache with the provided TTL. A non-positive TTL
// disables caching.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		ttl:     ttl,
		entries: make(map[string]cachedChart),
	}
}

// GetOrRender returns the chart cached for table when it was rendered from
// the same fingerprint and has not expired. Otherwise it renders and replaces
// the table's entry, so stale renders of a table never accumulate.
func (c *ChartCache) GetOrRender(table, fingerprint string, render func() (string, error)) (string, error) {
	if c == nil || c.ttl <= 0 {
		return render()
	}
	now := time.Now()
	c.mu.Lock()
	entry, ok := c.entries[table]
	if ok && entry.fingerprint == fingerprint && now.Before(entry.expires) {
		c.mu.Unlock()
		return entry.html, nil
	}
	if ok {
		delete(c.entries, table)
	}
	c.mu.Unlock()

	html, err := render()
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.entries[table] = cachedChart{
		fingerprint: fingerprint,
		html:        html,
		expires:     time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
	return html, nil
}

// Forget drops the chart cached for table.
func (c *ChartCache) Forget(table string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, table)
	c.mu.Unlock()
}

// Purge drops every cached chart.
func (c *ChartCache) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]cachedChart)
	c.mu.Unlock()
}

// Len reports how many tables hold a cached chart.
func (c *ChartCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// datasetHash fingerprints a dataset's shape and values for cache keys.
func datasetHash(ds *Dataset) string {
	if ds == nil {
		return "empty"
	}
	h := sha1.New()
	fmt.Fprintf(h, "%s|%s|%v\n", ds.Name, ds.LabelColumn, ds.Columns)
	for _, row := range ds.Rows {
		fmt.Fprint(h, row.Label)
		for _, value := range row.Values {
			fmt.Fprintf(h, "|%s", FormatValue(value))
		}
		fmt.Fprintln(h)
	}
	return hex.EncodeToString(h.Sum(nil))
}
