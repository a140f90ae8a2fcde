package inputrules

import (
	"fmt"
	"strconv"

	"github.com/dshills/folio/internal/model"
	"github.com/dshills/folio/internal/state"
)

// Names of the built-in rules.
const (
	OpenDoubleQuote  = "openDoubleQuote"
	CloseDoubleQuote = "closeDoubleQuote"
	OpenSingleQuote  = "openSingleQuote"
	CloseSingleQuote = "closeSingleQuote"
	Ellipsis         = "ellipsis"
	EmDash           = "emDash"
	Blockquote       = "blockquote"
	OrderedList      = "orderedList"
	BulletList       = "bulletList"
	CodeBlock        = "codeBlock"
	Heading          = "heading"
	StrongEm         = "strongEm"
	StrongStars      = "strongStars"
	StrongUnderscore = "strongUnderscores"
	EmUnderscore     = "emUnderscore"
	EmStar           = "emStar"
	Code             = "code"
	Strike           = "strike"
	Underline        = "underline"
)

// blank matches whitespace other than a line break, so block rules never
// reach back across a hard break.
const blank = `[^\S\n]`

const quoteOpeners = `(?:^|[\s{\[(<'"\x{2018}\x{201C}])`

// SmartQuotes returns the typographic quote rules.
func SmartQuotes() []*Rule {
	return []*Rule{
		StringRule(OpenDoubleQuote, quoteOpeners+`(")$`, "“"),
		StringRule(CloseDoubleQuote, `"$`, "”"),
		StringRule(OpenSingleQuote, quoteOpeners+`(')$`, "‘"),
		StringRule(CloseSingleQuote, `'$`, "’"),
	}
}

// Builtin returns the default rule set for schema in priority order.
// Rules whose node or mark type the schema lacks are left out.
// maxHeading bounds the heading rule's level.
func Builtin(schema *model.Schema, maxHeading int) []*Rule {
	if maxHeading < 1 || maxHeading > 6 {
		maxHeading = 6
	}
	rules := SmartQuotes()
	rules = append(rules,
		StringRule(Ellipsis, `\.\.\.$`, "…"),
		StringRule(EmDash, `--$`, "—"),
	)

	if t := schema.NodeType("blockquote"); t != nil {
		rules = append(rules, WrappingRule(Blockquote, `^`+blank+`*>`+blank+`$`, t, nil, nil))
	}
	if t := schema.NodeType("ordered_list"); t != nil {
		rules = append(rules, WrappingRule(OrderedList, `^(\d+)\.`+blank+`$`, t,
			func(m *Match) model.Attrs {
				n, _ := strconv.Atoi(m.Group(1))
				return model.Attrs{"order": n}
			},
			func(m *Match, list *model.Node) bool {
				n, _ := strconv.Atoi(m.Group(1))
				return list.ChildCount()+list.Attrs.Int("order") == n
			}))
	}
	if t := schema.NodeType("bullet_list"); t != nil {
		rules = append(rules, WrappingRule(BulletList, `^`+blank+`*([-+*])`+blank+`$`, t, nil, nil))
	}
	if t := schema.NodeType("code_block"); t != nil {
		rule := TextblockTypeRule(CodeBlock, "^```$", t, nil)
		retype := rule.Handler
		rule.Handler = func(tr *state.Transaction, m *Match) bool {
			// Only an otherwise empty textblock becomes a code block.
			if rm := tr.Doc.MustResolve(m.From); rm.Parent().Content.Size() != m.To-m.From {
				return false
			}
			return retype(tr, m)
		}
		rules = append(rules, rule)
	}
	if t := schema.NodeType("heading"); t != nil {
		rules = append(rules, TextblockTypeRule(Heading, fmt.Sprintf(`^(#{1,%d})`+blank+`$`, maxHeading), t,
			func(m *Match) model.Attrs { return model.Attrs{"level": len(m.Group(1))} }))
	}

	strong, em := schema.MarkType("strong"), schema.MarkType("em")
	marking := []struct {
		name    string
		pattern string
		types   []*model.MarkType
	}{
		{StrongEm, `(?:^|[^*\n])(\*\*\*([^*\n]+)\*\*\*)$`, []*model.MarkType{strong, em}},
		{StrongStars, `(?:^|[^*\n])(\*\*([^*\n]+)\*\*)$`, []*model.MarkType{strong}},
		{StrongUnderscore, `(?:^|[^_\n])(__([^_\n]+)__)$`, []*model.MarkType{strong}},
		{EmUnderscore, `(?:^|[^_\n])(_([^_\n]+)_)$`, []*model.MarkType{em}},
		{EmStar, `(?:^|[^*\n])(\*([^*\n]+)\*)$`, []*model.MarkType{em}},
		{Code, "(`([^`\\n]+)`)$", []*model.MarkType{schema.MarkType("code")}},
		{Strike, `(~~([^~\n]+)~~)$`, []*model.MarkType{schema.MarkType("strike")}},
		{Underline, `(\+\+([^+\n]+)\+\+)$`, []*model.MarkType{schema.MarkType("underline")}},
	}
	for _, mr := range marking {
		if hasNil(mr.types) {
			continue
		}
		rules = append(rules, MarkingRule(mr.name, mr.pattern, mr.types...))
	}
	return rules
}

func hasNil(types []*model.MarkType) bool {
	for _, t := range types {
		if t == nil {
			return true
		}
	}
	return false
}
