package topic

import "testing"

func TestMatches(t *testing.T) {
	tests := []struct {
		topic   Topic
		pattern Topic
		want    bool
	}{
		{StateChanged, "state.changed", true},
		{StateChanged, "state.*", true},
		{StateChanged, "*.changed", true},
		{StateChanged, "**", true},
		{StateChanged, "state.**", true},
		{"state", "state.**", true},
		{StateChanged, "state", false},
		{StateChanged, "*", false},
		{StateChanged, "history.*", false},
		{"a.b.c", "a.**.c", true},
		{"a.c", "a.**.c", true},
		{"a.b.c", "a.*", false},
	}
	for _, tt := range tests {
		if got := tt.topic.Matches(tt.pattern); got != tt.want {
			t.Errorf("%q.Matches(%q) = %v, want %v", tt.topic, tt.pattern, got, tt.want)
		}
	}
}

func TestValidity(t *testing.T) {
	tests := []struct {
		topic Topic
		want  bool
	}{
		{"state.changed", true},
		{"state", true},
		{"", false},
		{".state", false},
		{"state.", false},
		{"state..changed", false},
	}
	for _, tt := range tests {
		if got := tt.topic.IsValid(); got != tt.want {
			t.Errorf("%q.IsValid() = %v, want %v", tt.topic, got, tt.want)
		}
	}
}

func TestKnown(t *testing.T) {
	for _, p := range []Topic{"state.changed", "history.*", "**", "*.loaded"} {
		if !Known(p) {
			t.Errorf("Known(%q) = false", p)
		}
	}
	for _, p := range []Topic{"state", "buffer.*", "state.changed.more"} {
		if Known(p) {
			t.Errorf("Known(%q) = true", p)
		}
	}
	if !Topic("state.*").IsWildcard() || StateChanged.IsWildcard() {
		t.Error("IsWildcard mismatch")
	}
}
