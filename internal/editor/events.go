package editor

import (
	"github.com/dshills/folio/internal/state"
)

// StateChange is the payload of topic.StateChanged and the argument of
// listeners.
type StateChange struct {
	Old         *state.State
	New         *state.State
	Transaction *state.Transaction
}

// DocChanged reports whether the transaction changed the document.
func (c StateChange) DocChanged() bool {
	return c.Transaction.DocChanged()
}

// Rejection is the payload of topic.TransactionRejected.
type Rejection struct {
	Transaction *state.Transaction
	Err         error
}

// HistoryStatus is the payload of topic.HistoryChanged.
type HistoryStatus struct {
	UndoDepth int
	RedoDepth int
}

// RuleApplied is the payload of topic.InputRuleApplied.
type RuleApplied struct {
	Rule string
	Text string
}

// Listener is called after every state swap.
type Listener func(StateChange)
