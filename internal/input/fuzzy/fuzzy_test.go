package fuzzy

import (
	"reflect"
	"testing"
)

var commandNames = []string{
	"toggleStrong", "toggleEm", "toggleCode", "setHeading1", "setHeading2",
	"setParagraph", "splitListItem", "liftListItem", "sinkListItem", "undo", "redo",
}

func texts(rs []Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Item.Text
	}
	return out
}

func TestMatchRanking(t *testing.T) {
	m := NewMatcher(DefaultOptions())
	tests := []struct {
		query string
		first string
	}{
		{"strong", "toggleStrong"},
		{"tgs", "toggleStrong"},
		{"h2", "setHeading2"},
		{"sink", "sinkListItem"},
		{"UNDO", "undo"},
	}
	for _, tt := range tests {
		rs := m.Match(tt.query, Strings(commandNames), 0)
		if len(rs) == 0 || rs[0].Item.Text != tt.first {
			t.Errorf("Match(%q) = %v, want %s first", tt.query, texts(rs), tt.first)
		}
	}
}

func TestMatchIndices(t *testing.T) {
	m := NewMatcher(Options{Weights: DefaultWeights()})
	rs := m.Match("tE", []Item{{Text: "toggleEm", Data: 7}}, 0)
	if len(rs) != 1 {
		t.Fatalf("expected one result, got %d", len(rs))
	}
	if !reflect.DeepEqual(rs[0].Matches, []int{0, 5}) {
		t.Errorf("Matches = %v", rs[0].Matches)
	}
	if rs[0].Item.Data != 7 {
		t.Error("item data lost")
	}
}

func TestMatchOptions(t *testing.T) {
	items := Strings(commandNames)
	m := NewMatcher(Options{CaseSensitive: true, Weights: DefaultWeights()})
	if rs := m.Match("STRONG", items, 0); len(rs) != 0 {
		t.Errorf("case-sensitive match returned %v", texts(rs))
	}
	if rs := NewMatcher(DefaultOptions()).Match("", items, 3); !reflect.DeepEqual(texts(rs), commandNames[:3]) {
		t.Errorf("empty query = %v", texts(rs))
	}
	if rs := NewMatcher(DefaultOptions()).Match("e", items, 2); len(rs) != 2 {
		t.Errorf("limit ignored: %d results", len(rs))
	}
	strict := NewMatcher(Options{MinScore: 1000, Weights: DefaultWeights()})
	if rs := strict.Match("undo", items, 0); len(rs) != 0 {
		t.Errorf("MinScore ignored: %v", texts(rs))
	}
}

func TestCache(t *testing.T) {
	m := NewMatcher(Options{CacheSize: 2, Weights: DefaultWeights()})
	items := Strings(commandNames)
	first := m.Match("lift", items, 0)
	// A cached query ignores the new item list until Reset.
	if got := m.Match("lift", Strings([]string{"liftEmptyBlock"}), 0); !reflect.DeepEqual(texts(got), texts(first)) {
		t.Errorf("cache miss: %v", texts(got))
	}
	m.Match("a", items, 0)
	m.Match("b", items, 0)
	if m.cache.len() != 2 {
		t.Errorf("cache holds %d entries", m.cache.len())
	}
	if _, ok := m.cache.get("lift"); ok {
		t.Error("oldest entry should have been evicted")
	}
	m.Reset()
	if got := m.Match("lift", Strings([]string{"liftEmptyBlock"}), 0); len(got) != 1 || got[0].Item.Text != "liftEmptyBlock" {
		t.Errorf("after Reset: %v", texts(got))
	}
}

func TestBoundary(t *testing.T) {
	runes := []rune("set-heading2 toggleEm")
	for i, want := range map[int]bool{0: true, 4: true, 11: true, 13: true, 19: true, 2: false, 20: false} {
		if got := boundary(runes, i); got != want {
			t.Errorf("boundary(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestSuggest(t *testing.T) {
	if got := Suggest("setHeadng2", commandNames, 1); !reflect.DeepEqual(got, []string{"setHeading2"}) {
		t.Errorf("Suggest typo = %v", got)
	}
	if got := Suggest("toggleX", commandNames, 0); len(got) != 3 {
		t.Errorf("Suggest prefix fallback = %v", got)
	}
	if got := Suggest("toggleStrnog", []string{"toggleEm", "toggleStrike", "toggleStrong"}, 2); !reflect.DeepEqual(got, []string{"toggleStrong", "toggleStrike"}) {
		t.Errorf("Suggest should rank prefix ties by edit distance, got %v", got)
	}
	if got := distance("toggleStrnog", "toggleStrong"); got != 2 {
		t.Errorf("distance = %d, want 2", got)
	}
	if got := Suggest("zzz", commandNames, 3); len(got) != 0 {
		t.Errorf("Suggest unrelated = %v", got)
	}
}
