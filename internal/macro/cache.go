package macro

import (
	"container/list"
	"fmt"
	"time"

	"alphapulse/internal/timeseries"
)

// seriesCache is a bounded LRU over fetched macro series, keyed by
// source, series id and date range. It avoids refetching the same window
// within a process lifetime while keeping memory bounded.
type seriesCache struct {
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

type cacheEntry struct {
	key    string
	points []timeseries.Point
}

func newSeriesCache(capacity int) *seriesCache {
	if capacity <= 0 {
		capacity = 128
	}
	return &seriesCache{
		capacity: capacity,
		order:    list.New(),
		entries:  map[string]*list.Element{},
	}
}

func cacheKey(source, seriesID string, start, end time.Time) string {
	return fmt.Sprintf("%s|%s|%s|%s", source, seriesID, start.Format(time.DateOnly), end.Format(time.DateOnly))
}

func (c *seriesCache) get(key string) ([]timeseries.Point, bool) {
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).points, true
}

func (c *seriesCache) put(key string, points []timeseries.Point) {
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		el.Value.(*cacheEntry).points = points
		return
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, points: points})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}
