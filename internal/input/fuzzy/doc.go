// Package fuzzy ranks strings against a typed query. It backs command
// search and "did you mean" suggestions for command and rule names.
//
// A query matches a text when its runes appear in the text in order.
// Matches are ranked by Weights: contiguous runs, runs starting at word
// boundaries (including camelCase humps) and early matches score
// higher; gaps and leading skips cost.
//
//	m := fuzzy.NewMatcher(fuzzy.DefaultOptions())
//	for _, r := range m.Match("tgstr", fuzzy.Strings(names), 5) {
//	    fmt.Println(r.Item.Text, r.Score)
//	}
package fuzzy
