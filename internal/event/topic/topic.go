package topic

import "strings"

// Topic is a dot-separated notification name or subscription pattern.
// In a pattern "*" matches one segment and "**" any number of segments.
type Topic string

// Pattern syntax.
const (
	WildcardSingle = "*"
	WildcardMulti  = "**"
	Separator      = "."
)

// Topics published by the editor and its collaborators.
const (
	// StateChanged follows every state swap.
	StateChanged Topic = "state.changed"
	// TransactionRejected reports a transaction that failed to apply.
	TransactionRejected Topic = "state.rejected"
	// HistoryChanged follows an undo, a redo or a new undo step.
	HistoryChanged Topic = "history.changed"
	// InputRuleApplied reports a fired input rule.
	InputRuleApplied Topic = "inputrule.applied"
	// ConfigReloaded follows a configuration file reload.
	ConfigReloaded Topic = "config.reloaded"
	// ScriptLoaded reports a script that registered commands or rules.
	ScriptLoaded Topic = "script.loaded"
)

// All lists every topic folio publishes.
func All() []Topic {
	return []Topic{StateChanged, TransactionRejected, HistoryChanged, InputRuleApplied, ConfigReloaded, ScriptLoaded}
}

// Known reports whether pattern matches at least one published topic.
func Known(pattern Topic) bool {
	for _, t := range All() {
		if t.Matches(pattern) {
			return true
		}
	}
	return false
}

func (t Topic) String() string { return string(t) }

// IsWildcard reports whether the topic is a pattern.
func (t Topic) IsWildcard() bool {
	return strings.Contains(string(t), WildcardSingle)
}

// IsValid reports whether the topic is non-empty with no empty segments.
func (t Topic) IsValid() bool {
	return t != "" && !strings.Contains(Separator+string(t)+Separator, Separator+Separator)
}

// Matches reports whether t matches pattern.
func (t Topic) Matches(pattern Topic) bool {
	return match(strings.Split(string(t), Separator), strings.Split(string(pattern), Separator))
}

func match(topic, pattern []string) bool {
	for len(pattern) > 0 {
		head := pattern[0]
		pattern = pattern[1:]
		if head == WildcardMulti {
			for skip := 0; skip <= len(topic); skip++ {
				if match(topic[skip:], pattern) {
					return true
				}
			}
			return false
		}
		if len(topic) == 0 || (head != WildcardSingle && head != topic[0]) {
			return false
		}
		topic = topic[1:]
	}
	return len(topic) == 0
}
