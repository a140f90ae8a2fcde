package fuzzy

import (
	"sort"
	"strings"
	"sync"
)

// Item is a searchable entry.
type Item struct {
	Text string
	// Data travels with the item into results.
	Data any
}

// Strings wraps plain strings as items.
func Strings(texts []string) []Item {
	items := make([]Item, len(texts))
	for i, t := range texts {
		items[i] = Item{Text: t}
	}
	return items
}

// Result is a scored match.
type Result struct {
	Item  Item
	Score int
	// Matches holds the rune indices of matched characters.
	Matches []int
}

// Options configures a Matcher.
type Options struct {
	// MinScore drops weaker matches.
	MinScore int
	// CaseSensitive disables case folding.
	CaseSensitive bool
	// CacheSize bounds the per-query result cache; 0 disables it.
	CacheSize int
	Weights   Weights
}

// DefaultOptions returns case-insensitive matching with a small cache.
func DefaultOptions() Options {
	return Options{CacheSize: 64, Weights: DefaultWeights()}
}

// Matcher ranks items. It is safe for concurrent use.
type Matcher struct {
	opts Options

	mu    sync.Mutex
	cache *lru
}

// NewMatcher creates a matcher.
func NewMatcher(opts Options) *Matcher {
	m := &Matcher{opts: opts}
	if opts.CacheSize > 0 {
		m.cache = newLRU(opts.CacheSize)
	}
	return m
}

// Match returns the items matching query, best first, ties broken by
// text. An empty query returns the items in order. limit <= 0 means no
// limit. Cached results are keyed by query only, so callers that vary
// items should call Reset.
func (m *Matcher) Match(query string, items []Item, limit int) []Result {
	query = strings.TrimSpace(query)
	if !m.opts.CaseSensitive {
		query = strings.ToLower(query)
	}
	if query == "" {
		out := make([]Result, 0, len(items))
		for _, it := range items {
			out = append(out, Result{Item: it})
		}
		return truncate(out, limit)
	}

	if m.cache != nil {
		m.mu.Lock()
		cached, ok := m.cache.get(query)
		m.mu.Unlock()
		if ok {
			return truncate(cached, limit)
		}
	}

	q := []rune(query)
	var out []Result
	for _, it := range items {
		score, idx := m.score(q, it.Text)
		if idx != nil && score > m.opts.MinScore {
			out = append(out, Result{Item: it, Score: score, Matches: idx})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Item.Text < out[j].Item.Text
	})

	if m.cache != nil {
		m.mu.Lock()
		m.cache.put(query, out)
		m.mu.Unlock()
	}
	return truncate(out, limit)
}

// Reset empties the cache.
func (m *Matcher) Reset() {
	if m.cache == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = newLRU(m.opts.CacheSize)
}

func (m *Matcher) score(q []rune, text string) (int, []int) {
	orig := []rune(text)
	folded := orig
	if !m.opts.CaseSensitive {
		folded = []rune(strings.ToLower(text))
	}
	idx := subsequence(q, folded)
	if idx == nil {
		return 0, nil
	}
	return m.opts.Weights.Score(q, orig, folded, idx), idx
}

// subsequence finds q in text left to right, preferring for each rune
// the earliest position, and returns the matched indices.
func subsequence(q, text []rune) []int {
	if len(q) == 0 || len(q) > len(text) {
		return nil
	}
	idx := make([]int, 0, len(q))
	j := 0
	for i := 0; i < len(text) && j < len(q); i++ {
		if text[i] == q[j] {
			idx = append(idx, i)
			j++
		}
	}
	if j < len(q) {
		return nil
	}
	return idx
}

func truncate(rs []Result, limit int) []Result {
	if limit > 0 && len(rs) > limit {
		rs = rs[:limit]
	}
	out := make([]Result, len(rs))
	copy(out, rs)
	return out
}

// Suggest returns up to limit candidates closest to query. It is meant
// for "did you mean" hints after a failed lookup.
func Suggest(query string, candidates []string, limit int) []string {
	m := NewMatcher(Options{Weights: DefaultWeights()})
	var out []string
	for _, r := range m.Match(query, Strings(candidates), limit) {
		out = append(out, r.Item.Text)
	}
	if len(out) > 0 {
		return out
	}
	// Fall back to candidates sharing the longest prefix, closest first.
	q := strings.ToLower(query)
	best := 0
	for _, c := range candidates {
		n := commonPrefix(q, strings.ToLower(c))
		switch {
		case n > best:
			best, out = n, []string{c}
		case n == best && n > 0:
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return distance(q, strings.ToLower(out[i])) < distance(q, strings.ToLower(out[j]))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func commonPrefix(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// distance is the Levenshtein distance between a and b in runes.
func distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
