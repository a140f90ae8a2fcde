package fuzzy

import "container/list"

// lru maps queries to results, evicting the least recently used entry.
// Callers synchronize.
type lru struct {
	max   int
	order *list.List
	items map[string]*list.Element
}

type lruEntry struct {
	query   string
	results []Result
}

func newLRU(max int) *lru {
	return &lru{max: max, order: list.New(), items: make(map[string]*list.Element)}
}

func (c *lru) get(query string) ([]Result, bool) {
	el, ok := c.items[query]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry).results, true
}

func (c *lru) put(query string, results []Result) {
	if el, ok := c.items[query]; ok {
		el.Value.(*lruEntry).results = results
		c.order.MoveToFront(el)
		return
	}
	c.items[query] = c.order.PushFront(&lruEntry{query: query, results: results})
	for c.order.Len() > c.max {
		last := c.order.Back()
		c.order.Remove(last)
		delete(c.items, last.Value.(*lruEntry).query)
	}
}

func (c *lru) len() int { return c.order.Len() }
