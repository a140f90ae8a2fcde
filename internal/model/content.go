package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// ContentMatch is a state in the automaton compiled from a content
// expression. It is immutable once the schema is built.
type ContentMatch struct {
	// ValidEnd reports whether content may stop in this state.
	ValidEnd bool

	next []matchEdge
}

type matchEdge struct {
	typ  *NodeType
	next *ContentMatch
}

// EmptyMatch accepts only empty content.
var EmptyMatch = &ContentMatch{ValidEnd: true}

// MatchType returns the state after a node of type t, or nil.
func (m *ContentMatch) MatchType(t *NodeType) *ContentMatch {
	for _, e := range m.next {
		if e.typ == t {
			return e.next
		}
	}
	return nil
}

// MatchFragment runs frag's children in [start, end) through the
// automaton. It returns nil when some child does not fit.
func (m *ContentMatch) MatchFragment(frag *Fragment, start, end int) *ContentMatch {
	cur := m
	for i := start; cur != nil && i < end; i++ {
		cur = cur.MatchType(frag.Child(i).Type)
	}
	return cur
}

// InlineContent reports whether the first allowed type is inline.
func (m *ContentMatch) InlineContent() bool {
	return len(m.next) > 0 && m.next[0].typ.IsInline()
}

// DefaultType returns the first type that can be generated here: not
// text and without required attributes.
func (m *ContentMatch) DefaultType() *NodeType {
	for _, e := range m.next {
		if !(e.typ.IsText() || e.typ.HasRequiredAttrs()) {
			return e.typ
		}
	}
	return nil
}

// Compatible reports whether both states accept some common type.
func (m *ContentMatch) Compatible(other *ContentMatch) bool {
	for _, a := range m.next {
		for _, b := range other.next {
			if a.typ == b.typ {
				return true
			}
		}
	}
	return false
}

// EdgeCount returns the number of outgoing edges.
func (m *ContentMatch) EdgeCount() int { return len(m.next) }

// Edge returns the type and target of the i-th outgoing edge.
func (m *ContentMatch) Edge(i int) (*NodeType, *ContentMatch) {
	e := m.next[i]
	return e.typ, e.next
}

// FillBefore finds nodes that, placed before after[startIndex:], make the
// content valid. With toEnd the result must also reach a valid end. The
// second result is false when no fill exists.
func (m *ContentMatch) FillBefore(after *Fragment, toEnd bool, startIndex int) (*Fragment, bool) {
	frag, err := m.fillBefore(after, toEnd, startIndex, 0)
	if err != nil || frag == nil {
		return nil, false
	}
	return frag, true
}

func (m *ContentMatch) fillBefore(after *Fragment, toEnd bool, startIndex, depth int) (*Fragment, error) {
	seen := []*ContentMatch{m}
	var search func(match *ContentMatch, types []*NodeType) (*Fragment, error)
	search = func(match *ContentMatch, types []*NodeType) (*Fragment, error) {
		finished := match.MatchFragment(after, startIndex, after.ChildCount())
		if finished != nil && (!toEnd || finished.ValidEnd) {
			nodes := make([]*Node, 0, len(types))
			for _, tp := range types {
				n, err := tp.createAndFill(nil, nil, nil, depth+1)
				if err != nil {
					return nil, err
				}
				if n == nil {
					return nil, nil
				}
				nodes = append(nodes, n)
			}
			return FragmentFrom(nodes...), nil
		}
		for _, e := range match.next {
			if e.typ.IsText() || e.typ.HasRequiredAttrs() || containsMatch(seen, e.next) {
				continue
			}
			seen = append(seen, e.next)
			found, err := search(e.next, append(types[:len(types):len(types)], e.typ))
			if err != nil {
				return nil, err
			}
			if found != nil {
				return found, nil
			}
		}
		return nil, nil
	}
	return search(m, nil)
}

func containsMatch(list []*ContentMatch, m *ContentMatch) bool {
	for _, x := range list {
		if x == m {
			return true
		}
	}
	return false
}

// FindWrapping returns the shortest list of wrapper types that lets a
// node of type target appear here, or nil when none exists. An empty,
// non-nil result means target fits directly.
func (m *ContentMatch) FindWrapping(target *NodeType) []*NodeType {
	type active struct {
		match *ContentMatch
		typ   *NodeType
		via   *active
	}
	seen := map[*NodeType]bool{}
	queue := []*active{{match: m}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.match.MatchType(target) != nil {
			result := []*NodeType{}
			for obj := cur; obj.typ != nil; obj = obj.via {
				result = append(result, obj.typ)
			}
			for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
				result[i], result[j] = result[j], result[i]
			}
			return result
		}
		for _, e := range cur.match.next {
			if !e.typ.IsLeaf() && !e.typ.HasRequiredAttrs() && !seen[e.typ] &&
				(cur.typ == nil || e.next.ValidEnd) {
				queue = append(queue, &active{match: e.typ.contentMatch, typ: e.typ, via: cur})
				seen[e.typ] = true
			}
		}
	}
	return nil
}

// String renders the automaton reachable from m, one state per line.
func (m *ContentMatch) String() string {
	var seen []*ContentMatch
	var scan func(*ContentMatch)
	scan = func(s *ContentMatch) {
		seen = append(seen, s)
		for _, e := range s.next {
			if !containsMatch(seen, e.next) {
				scan(e.next)
			}
		}
	}
	scan(m)
	index := func(s *ContentMatch) int {
		for i, x := range seen {
			if x == s {
				return i
			}
		}
		return -1
	}
	var b strings.Builder
	for i, s := range seen {
		b.WriteString(strconv.Itoa(i))
		if s.ValidEnd {
			b.WriteByte('*')
		}
		b.WriteByte(' ')
		for j, e := range s.next {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(e.typ.Name + "->" + strconv.Itoa(index(e.next)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Expression parsing.

type exprKind int

const (
	exprChoice exprKind = iota
	exprSeq
	exprPlus
	exprStar
	exprOpt
	exprRange
	exprName
)

type contentExpr struct {
	kind     exprKind
	exprs    []*contentExpr
	expr     *contentExpr
	min, max int // max < 0 means unbounded
	typ      *NodeType
}

type tokenStream struct {
	schema *Schema
	owner  string
	source string
	tokens []string
	pos    int
	inline *bool
	err    error
}

func tokenize(src string) []string {
	var tokens []string
	runes := []rune(src)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			j := i
			for j < len(runes) && (runes[j] == '_' || unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j])) {
				j++
			}
			tokens = append(tokens, string(runes[i:j]))
			i = j
		default:
			tokens = append(tokens, string(r))
			i++
		}
	}
	return tokens
}

func (s *tokenStream) next() string {
	if s.pos < len(s.tokens) {
		return s.tokens[s.pos]
	}
	return ""
}

func (s *tokenStream) eat(tok string) bool {
	if s.next() == tok {
		s.pos++
		return true
	}
	return false
}

func (s *tokenStream) fail(format string, args ...any) {
	if s.err == nil {
		s.err = schemaErrorf(s.owner, "%s (in content expression '%s')", fmt.Sprintf(format, args...), s.source)
	}
}

func parseContentMatch(schema *Schema, nt *NodeType) (*ContentMatch, error) {
	src := nt.Spec.Content
	if strings.TrimSpace(src) == "" {
		return EmptyMatch, nil
	}
	stream := &tokenStream{schema: schema, owner: nt.Name, source: src, tokens: tokenize(src)}
	expr := parseExpr(stream)
	if stream.err == nil && stream.next() != "" {
		stream.fail("unexpected trailing text %q", stream.next())
	}
	if stream.err != nil {
		return nil, stream.err
	}
	match := buildDFA(compileNFA(expr))
	if err := checkForDeadEnds(nt.Name, src, match); err != nil {
		return nil, err
	}
	return match, nil
}

func parseExpr(s *tokenStream) *contentExpr {
	var exprs []*contentExpr
	for {
		exprs = append(exprs, parseExprSeq(s))
		if s.err != nil || !s.eat("|") {
			break
		}
	}
	if len(exprs) == 1 {
		return exprs[0]
	}
	return &contentExpr{kind: exprChoice, exprs: exprs}
}

func parseExprSeq(s *tokenStream) *contentExpr {
	var exprs []*contentExpr
	for s.err == nil {
		exprs = append(exprs, parseExprSubscript(s))
		if tok := s.next(); tok == "" || tok == ")" || tok == "|" {
			break
		}
	}
	if len(exprs) == 1 {
		return exprs[0]
	}
	return &contentExpr{kind: exprSeq, exprs: exprs}
}

func parseExprSubscript(s *tokenStream) *contentExpr {
	expr := parseExprAtom(s)
	for s.err == nil {
		switch {
		case s.eat("+"):
			expr = &contentExpr{kind: exprPlus, expr: expr}
		case s.eat("*"):
			expr = &contentExpr{kind: exprStar, expr: expr}
		case s.eat("?"):
			expr = &contentExpr{kind: exprOpt, expr: expr}
		case s.eat("{"):
			expr = parseExprRange(s, expr)
		default:
			return expr
		}
	}
	return expr
}

func parseNum(s *tokenStream) int {
	tok := s.next()
	n, err := strconv.Atoi(tok)
	if err != nil {
		s.fail("expected number, got %q", tok)
		return 0
	}
	s.pos++
	return n
}

func parseExprRange(s *tokenStream, expr *contentExpr) *contentExpr {
	min := parseNum(s)
	max := min
	if s.eat(",") {
		if s.next() != "}" {
			max = parseNum(s)
		} else {
			max = -1
		}
	}
	if !s.eat("}") {
		s.fail("unclosed braced range")
	}
	if max >= 0 && max < min {
		s.fail("range maximum below minimum")
	}
	return &contentExpr{kind: exprRange, min: min, max: max, expr: expr}
}

func resolveName(s *tokenStream, name string) []*NodeType {
	if t := s.schema.nodes[name]; t != nil {
		return []*NodeType{t}
	}
	var result []*NodeType
	for _, member := range s.schema.groups[name] {
		result = append(result, s.schema.nodes[member])
	}
	if len(result) == 0 {
		s.fail("no node type or group %q found", name)
	}
	return result
}

func parseExprAtom(s *tokenStream) *contentExpr {
	if s.eat("(") {
		expr := parseExpr(s)
		if !s.eat(")") {
			s.fail("missing closing paren")
		}
		return expr
	}
	tok := s.next()
	if tok == "" || !(tok[0] == '_' || unicode.IsLetter(rune(tok[0])) || unicode.IsDigit(rune(tok[0]))) {
		s.fail("unexpected token %q", tok)
		return &contentExpr{kind: exprSeq}
	}
	types := resolveName(s, tok)
	s.pos++
	exprs := make([]*contentExpr, 0, len(types))
	for _, t := range types {
		if s.inline == nil {
			inline := t.IsInline()
			s.inline = &inline
		} else if *s.inline != t.IsInline() {
			s.fail("mixing inline and block content")
		}
		exprs = append(exprs, &contentExpr{kind: exprName, typ: t})
	}
	if len(exprs) == 1 {
		return exprs[0]
	}
	return &contentExpr{kind: exprChoice, exprs: exprs}
}

// NFA construction. Edges with a nil term are epsilon transitions.

type nfaEdge struct {
	term *NodeType
	to   int
}

type nfaBuilder struct {
	nfa [][]*nfaEdge
}

func (b *nfaBuilder) node() int {
	b.nfa = append(b.nfa, nil)
	return len(b.nfa) - 1
}

func (b *nfaBuilder) edge(from, to int, term *NodeType) *nfaEdge {
	e := &nfaEdge{term: term, to: to}
	b.nfa[from] = append(b.nfa[from], e)
	return e
}

func connect(edges []*nfaEdge, to int) {
	for _, e := range edges {
		e.to = to
	}
}

func (b *nfaBuilder) compile(expr *contentExpr, from int) []*nfaEdge {
	switch expr.kind {
	case exprChoice:
		var out []*nfaEdge
		for _, e := range expr.exprs {
			out = append(out, b.compile(e, from)...)
		}
		return out
	case exprSeq:
		if len(expr.exprs) == 0 {
			return []*nfaEdge{b.edge(from, -1, nil)}
		}
		for i := 0; ; i++ {
			next := b.compile(expr.exprs[i], from)
			if i == len(expr.exprs)-1 {
				return next
			}
			from = b.node()
			connect(next, from)
		}
	case exprStar:
		loop := b.node()
		b.edge(from, loop, nil)
		connect(b.compile(expr.expr, loop), loop)
		return []*nfaEdge{b.edge(loop, -1, nil)}
	case exprPlus:
		loop := b.node()
		connect(b.compile(expr.expr, from), loop)
		connect(b.compile(expr.expr, loop), loop)
		return []*nfaEdge{b.edge(loop, -1, nil)}
	case exprOpt:
		return append([]*nfaEdge{b.edge(from, -1, nil)}, b.compile(expr.expr, from)...)
	case exprRange:
		cur := from
		for i := 0; i < expr.min; i++ {
			next := b.node()
			connect(b.compile(expr.expr, cur), next)
			cur = next
		}
		if expr.max < 0 {
			connect(b.compile(expr.expr, cur), cur)
		} else {
			for i := expr.min; i < expr.max; i++ {
				next := b.node()
				b.edge(cur, next, nil)
				connect(b.compile(expr.expr, cur), next)
				cur = next
			}
		}
		return []*nfaEdge{b.edge(cur, -1, nil)}
	default:
		return []*nfaEdge{b.edge(from, -1, expr.typ)}
	}
}

func compileNFA(expr *contentExpr) [][]*nfaEdge {
	b := &nfaBuilder{}
	start := b.node()
	connect(b.compile(expr, start), b.node())
	return b.nfa
}

func nullFrom(nfa [][]*nfaEdge, node int) []int {
	var result []int
	var scan func(int)
	scan = func(n int) {
		edges := nfa[n]
		if len(edges) == 1 && edges[0].term == nil {
			scan(edges[0].to)
			return
		}
		result = append(result, n)
		for _, e := range edges {
			if e.term == nil && !containsInt(result, e.to) {
				scan(e.to)
			}
		}
	}
	scan(node)
	sort.Ints(result)
	return result
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func stateKey(states []int) string {
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ",")
}

func buildDFA(nfa [][]*nfaEdge) *ContentMatch {
	labeled := map[string]*ContentMatch{}
	final := len(nfa) - 1
	var explore func(states []int) *ContentMatch
	explore = func(states []int) *ContentMatch {
		type target struct {
			term *NodeType
			set  []int
		}
		var out []*target
		for _, node := range states {
			for _, e := range nfa[node] {
				if e.term == nil {
					continue
				}
				var set *target
				for _, t := range out {
					if t.term == e.term {
						set = t
					}
				}
				for _, n := range nullFrom(nfa, e.to) {
					if set == nil {
						set = &target{term: e.term}
						out = append(out, set)
					}
					if !containsInt(set.set, n) {
						set.set = append(set.set, n)
					}
				}
			}
		}
		state := &ContentMatch{ValidEnd: containsInt(states, final)}
		labeled[stateKey(states)] = state
		for _, t := range out {
			sort.Ints(t.set)
			next := labeled[stateKey(t.set)]
			if next == nil {
				next = explore(t.set)
			}
			state.next = append(state.next, matchEdge{typ: t.term, next: next})
		}
		return state
	}
	return explore(nullFrom(nfa, 0))
}

// checkForDeadEnds rejects automatons with a required position that only
// text or nodes with required attributes can fill.
func checkForDeadEnds(owner, source string, start *ContentMatch) error {
	work := []*ContentMatch{start}
	for i := 0; i < len(work); i++ {
		state := work[i]
		dead := !state.ValidEnd
		var nodes []string
		for _, e := range state.next {
			nodes = append(nodes, e.typ.Name)
			if dead && !(e.typ.IsText() || e.typ.HasRequiredAttrs()) {
				dead = false
			}
			if !containsMatch(work, e.next) {
				work = append(work, e.next)
			}
		}
		if dead {
			return schemaErrorf(owner, "only non-generatable nodes (%s) in a required position (in content expression '%s')",
				strings.Join(nodes, ", "), source)
		}
	}
	return nil
}
