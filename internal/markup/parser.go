package markup

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"

	"github.com/dshills/folio/internal/model"
)

// Tags parsed through when no rule matches. Block containers also end
// any paragraph opened implicitly for loose inline content.
var (
	defaultBlockContainers = []string{
		"address", "article", "aside", "body", "dd", "dl", "div", "dt", "fieldset",
		"figcaption", "figure", "footer", "form", "header", "hgroup", "html", "main",
		"nav", "section", "table", "tbody", "td", "tfoot", "th", "thead", "tr",
	}
	defaultInlineContainers = []string{
		"abbr", "bdi", "bdo", "big", "cite", "data", "dfn", "font", "kbd", "label",
		"mark", "q", "samp", "small", "span", "sub", "sup", "time", "var",
	}
	defaultIgnored = []string{
		"head", "iframe", "link", "meta", "noscript", "object", "script", "style",
		"template", "title",
	}
)

var (
	wsRun     = regexp.MustCompile(`[ \t\r\n\f]+`)
	wsOnly    = regexp.MustCompile(`^[ \t\r\n\f]*$`)
	wsTrail   = regexp.MustCompile(`[ \t\r\n\f]+$`)
	crlf      = regexp.MustCompile(`\r\n?`)
	bodyScope = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
)

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithTransparent adds tags whose content is parsed in place when no
// rule matches them.
func WithTransparent(tags ...string) ParserOption {
	return func(p *Parser) {
		for _, t := range tags {
			p.inline[strings.ToLower(t)] = true
		}
	}
}

// WithIgnored adds tags that are dropped with their content when no rule
// matches them.
func WithIgnored(tags ...string) ParserOption {
	return func(p *Parser) {
		for _, t := range tags {
			p.ignored[strings.ToLower(t)] = true
		}
	}
}

// Parser builds documents from HTML using a schema's parse rules.
// A Parser holds no per-parse state and is safe for concurrent use.
type Parser struct {
	schema     *model.Schema
	tagRules   []*model.BoundRule
	wildcards  []*model.BoundRule
	styleRules []*model.BoundRule
	blocks     map[string]bool
	inline     map[string]bool
	ignored    map[string]bool
}

// NewParser returns a parser for schema.
func NewParser(schema *model.Schema, opts ...ParserOption) *Parser {
	p := &Parser{
		schema:     schema,
		styleRules: schema.StyleRules(),
		blocks:     toSet(defaultBlockContainers),
		inline:     toSet(defaultInlineContainers),
		ignored:    toSet(defaultIgnored),
	}
	for _, r := range schema.TagRules() {
		if r.IsWildcard() {
			p.wildcards = append(p.wildcards, r)
		} else {
			p.tagRules = append(p.tagRules, r)
		}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// Parse reads an HTML fragment into a document of the schema's top node
// type. The result is checked against the schema.
func (p *Parser) Parse(src string) (*model.Node, error) {
	return p.ParseReader(strings.NewReader(src))
}

// ParseReader is Parse reading from r.
func (p *Parser) ParseReader(r io.Reader) (*model.Node, error) {
	b, err := p.build(r)
	if err != nil {
		return nil, err
	}
	doc, err := b.finishRoot(true)
	if err != nil {
		return nil, err
	}
	if err := doc.Check(); err != nil {
		return nil, &model.DeserializationError{Message: "parsed document is invalid", Err: err}
	}
	return doc, nil
}

// ParseSlice reads an HTML fragment into a slice opened as far as its
// first and last nodes allow, suitable for pasting.
func (p *Parser) ParseSlice(src string) (*model.Slice, error) {
	b, err := p.build(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	doc, err := b.finishRoot(false)
	if err != nil {
		return nil, err
	}
	return model.MaxOpen(doc.Content, false), nil
}

func (p *Parser) build(r io.Reader) (*builder, error) {
	nodes, err := html.ParseFragment(r, bodyScope)
	if err != nil {
		return nil, &model.DeserializationError{Message: "malformed markup", Err: err}
	}
	top := p.schema.TopNodeType
	b := &builder{p: p}
	b.stack = []*parseContext{{typ: top, match: top.ContentMatch(), solid: true}}
	for _, n := range nodes {
		if err := b.addDOM(n, model.NoMarks); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// parseContext is a node under construction.
type parseContext struct {
	typ     *model.NodeType
	attrs   model.Attrs
	content []*model.Node
	match   *model.ContentMatch

	// solid contexts come from a rule; the others were opened to wrap
	// content and may be closed to place a sibling.
	solid bool
	pre   bool
}

func (cx *parseContext) finish(fill bool) (*model.Node, error) {
	if !cx.pre && len(cx.content) > 0 {
		last := cx.content[len(cx.content)-1]
		if last.IsText() {
			if loc := wsTrail.FindStringIndex(last.Text()); loc != nil {
				if loc[0] == 0 {
					cx.content = cx.content[:len(cx.content)-1]
				} else {
					cx.content[len(cx.content)-1] = last.WithText(last.Text()[:loc[0]])
				}
			}
		}
	}
	frag := model.FragmentFrom(cx.content...)
	if fill {
		if after, ok := cx.match.FillBefore(model.EmptyFragment, true, 0); ok {
			frag = frag.Append(after)
		}
	}
	return cx.typ.Create(cx.attrs, frag, nil)
}

type builder struct {
	p     *Parser
	stack []*parseContext
	path  []string
}

func (b *builder) top() *parseContext { return b.stack[len(b.stack)-1] }

func (b *builder) errorf(format string, args ...any) error {
	return &model.DeserializationError{Path: strings.Join(b.path, " > "), Message: fmt.Sprintf(format, args...)}
}

func (b *builder) wrapErr(err error) error {
	return &model.DeserializationError{Path: strings.Join(b.path, " > "), Message: "invalid element", Err: err}
}

func (b *builder) addChildren(n *html.Node, marks model.MarkSet) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := b.addDOM(c, marks); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) addDOM(n *html.Node, marks model.MarkSet) error {
	switch n.Type {
	case html.TextNode:
		b.addText(n, marks)
	case html.ElementNode:
		return b.addElement(n, marks)
	}
	return nil
}

func (b *builder) addText(n *html.Node, marks model.MarkSet) {
	value := norm.NFC.String(n.Data)
	top := b.top()
	if top.pre {
		value = crlf.ReplaceAllString(value, "\n")
	} else {
		if wsOnly.MatchString(value) && !top.typ.InlineContent() {
			return
		}
		value = wsRun.ReplaceAllString(value, " ")
	}
	if value == "" || !b.findPlace(b.p.schema.NodeType("text")) {
		return
	}
	top = b.top()
	if !top.pre && strings.HasPrefix(value, " ") {
		prevBreak := n.PrevSibling != nil && n.PrevSibling.Type == html.ElementNode && n.PrevSibling.DataAtom == atom.Br
		if len(top.content) == 0 || prevBreak || endsWithSpace(top.content[len(top.content)-1]) {
			value = value[1:]
		}
	}
	if value == "" {
		return
	}
	b.append(b.p.schema.Text(value, top.typ.AllowedMarks(marks)...))
}

func endsWithSpace(n *model.Node) bool {
	return n.IsText() && strings.HasSuffix(n.Text(), " ")
}

func (b *builder) addElement(n *html.Node, marks model.MarkSet) error {
	el := newElement(n)
	tag := el.Tag()
	b.path = append(b.path, tag)
	defer func() { b.path = b.path[:len(b.path)-1] }()

	marks, ignore := b.styleMarks(el, marks)
	if ignore {
		return nil
	}
	rule, attrs := b.matchTag(el, b.p.tagRules)
	if rule == nil {
		switch {
		case b.p.ignored[tag]:
			return nil
		case b.p.blocks[tag]:
			b.closeImplicit()
			if err := b.addChildren(n, marks); err != nil {
				return err
			}
			b.closeImplicit()
			return nil
		case b.p.inline[tag]:
			return b.addChildren(n, marks)
		}
		rule, attrs = b.matchTag(el, b.p.wildcards)
	}
	if rule == nil {
		return b.errorf("no parse rule for <%s>", tag)
	}
	return b.addByRule(n, rule, attrs, marks)
}

func (b *builder) matchTag(el *element, rules []*model.BoundRule) (*model.BoundRule, model.Attrs) {
	parent := b.top().typ
	for _, r := range rules {
		if !r.MatchesContext(parent) {
			continue
		}
		if attrs, ok := r.MatchElement(el); ok {
			return r, attrs
		}
	}
	return nil, nil
}

// styleMarks adds the marks of matching style rules. The second result
// is true when a rule says to ignore the element.
func (b *builder) styleMarks(el *element, marks model.MarkSet) (model.MarkSet, bool) {
	decls := el.styles()
	if len(decls) == 0 || len(b.p.styleRules) == 0 {
		return marks, false
	}
	parent := b.top().typ
	for _, d := range decls {
		for _, r := range b.p.styleRules {
			if !r.MatchesContext(parent) {
				continue
			}
			attrs, ok := r.MatchStyle(d.prop, d.value, el)
			if !ok {
				continue
			}
			if r.Rule.Ignore {
				return nil, true
			}
			if r.Mark != nil {
				if m, err := r.Mark.Create(attrs); err == nil {
					marks = m.AddToSet(marks)
				}
			}
			break
		}
	}
	return marks, false
}

func (b *builder) addByRule(n *html.Node, rule *model.BoundRule, attrs model.Attrs, marks model.MarkSet) error {
	switch {
	case rule.Rule.Ignore:
		return nil
	case rule.Rule.Skip:
		return b.addChildren(n, marks)
	case rule.Mark != nil:
		m, err := rule.Mark.Create(attrs)
		if err != nil {
			return b.wrapErr(err)
		}
		return b.addChildren(n, m.AddToSet(marks))
	}

	t := rule.Node
	if t.IsLeaf() {
		leaf, err := t.Create(attrs, nil, nil)
		if err != nil {
			return b.wrapErr(err)
		}
		b.addLeaf(leaf, marks)
		return nil
	}

	if !b.findPlace(t) {
		return b.addChildren(n, marks)
	}
	pre := rule.Rule.PreserveWhitespace || t.Spec.Whitespace == "pre"
	if _, err := t.ComputeAttrs(attrs); err != nil {
		return b.wrapErr(err)
	}
	b.open(t, attrs, true, pre)
	depth := len(b.stack) - 1
	if err := b.addChildren(n, marks); err != nil {
		return err
	}
	return b.closeTo(depth)
}

func (b *builder) addLeaf(leaf *model.Node, marks model.MarkSet) {
	if b.findPlace(leaf.Type) {
		if leaf.IsInline() {
			leaf = leaf.WithMarks(b.top().typ.AllowedMarks(marks))
		}
		b.append(leaf)
		return
	}
	// A leaf that cannot go here, such as a line break inside code,
	// becomes its text.
	text := leaf.Type.Spec.LeafText
	if text != "" && b.top().match.MatchType(b.p.schema.NodeType("text")) != nil {
		b.append(b.p.schema.Text(text, b.top().typ.AllowedMarks(marks)...))
	}
}

// findPlace makes the top context one that accepts a node of type t,
// closing implicit contexts and opening wrappers as needed.
func (b *builder) findPlace(t *model.NodeType) bool {
	var route []*model.NodeType
	sync := -1
	for d := len(b.stack) - 1; d >= 0; d-- {
		cx := b.stack[d]
		if found := cx.match.FindWrapping(t); found != nil && (sync < 0 || len(found) < len(route)) {
			route, sync = found, d
			if len(found) == 0 {
				break
			}
		}
		if cx.solid {
			break
		}
	}
	if sync < 0 {
		return false
	}
	if err := b.closeTo(sync + 1); err != nil {
		return false
	}
	pre := b.top().pre
	for _, w := range route {
		b.open(w, nil, false, pre)
	}
	return true
}

func (b *builder) open(t *model.NodeType, attrs model.Attrs, solid, pre bool) {
	b.stack = append(b.stack, &parseContext{
		typ:   t,
		attrs: attrs,
		match: t.ContentMatch(),
		solid: solid,
		pre:   pre,
	})
}

func (b *builder) append(n *model.Node) {
	top := b.top()
	top.content = append(top.content, n)
	if next := top.match.MatchType(n.Type); next != nil {
		top.match = next
	}
}

// closeTo finishes every context at depth and above.
func (b *builder) closeTo(depth int) error {
	for len(b.stack) > depth && len(b.stack) > 1 {
		cx := b.top()
		b.stack = b.stack[:len(b.stack)-1]
		n, err := cx.finish(true)
		if err != nil {
			return b.wrapErr(err)
		}
		b.append(n)
	}
	return nil
}

// closeImplicit finishes the wrappers opened above the innermost rule
// context.
func (b *builder) closeImplicit() {
	depth := len(b.stack)
	for depth > 1 && !b.stack[depth-1].solid {
		depth--
	}
	_ = b.closeTo(depth)
}

func (b *builder) finishRoot(fill bool) (*model.Node, error) {
	if err := b.closeTo(1); err != nil {
		return nil, err
	}
	n, err := b.stack[0].finish(fill)
	if err != nil {
		return nil, b.wrapErr(err)
	}
	return n, nil
}
