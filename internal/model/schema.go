package model

import (
	"strings"
)

// MaxFillDepth bounds default-instance resolution. A schema whose default
// content would nest deeper than this is rejected at construction.
const MaxFillDepth = 32

// NodeSpec declares a node type.
type NodeSpec struct {
	// Name is the type name. "doc" and "text" are required in every schema.
	Name string

	// Content is the content expression, e.g. "block+", "inline*",
	// "paragraph block*". Empty means the node is a leaf.
	Content string

	// Group lists the groups (space separated) this type belongs to.
	Group string

	// Inline marks the type as inline. The text type is always inline.
	Inline bool

	// Atom marks a non-leaf node that is edited as a unit.
	Atom bool

	// Attrs declares the attributes.
	Attrs map[string]AttributeSpec

	// Marks restricts the marks allowed on content: nil means the default
	// (all marks for inline content), "_" all marks, "" none, otherwise a
	// space separated list of mark names and mark groups.
	Marks *string

	// Code marks the node as holding code. Input rules do not fire inside it.
	Code bool

	// Defining nodes keep their type when their whole content is replaced.
	Defining bool

	// Isolating nodes are not crossed by lift, split or join.
	Isolating bool

	// Whitespace is "pre" to keep whitespace verbatim when parsing markup.
	Whitespace string

	// LeafText is the text this leaf contributes to TextBetween.
	LeafText string

	// ParseDOM are the rules for reading the node from markup.
	ParseDOM []ParseRule

	// ToDOM renders the node. Render is used when ToDOM is nil.
	ToDOM  func(n *Node) DOMSpec
	Render *DOMTemplate
}

// MarkSpec declares a mark type.
type MarkSpec struct {
	Name  string
	Attrs map[string]AttributeSpec

	// Inclusive controls whether the mark extends to text typed at its end.
	// Nil means true.
	Inclusive *bool

	// Excludes lists mark names and groups that cannot coexist with this
	// mark. Nil means the mark excludes only itself; "" excludes nothing;
	// "_" excludes all marks.
	Excludes *string

	// Group lists the groups (space separated) this mark belongs to.
	Group string

	// Spanning marks render as one element across adjacent nodes. Nil means true.
	Spanning *bool

	// Code marks code fonts. Input rules do not fire inside them.
	Code bool

	ParseDOM []ParseRule
	ToDOM    func(m *Mark, inline bool) DOMSpec
	Render   *DOMTemplate
}

// SchemaSpec is the declarative input to NewSchema. Declaration order
// matters: it decides group member order, mark rank and parse priority
// ties.
type SchemaSpec struct {
	Nodes []*NodeSpec
	Marks []*MarkSpec

	// TopNode names the root type. Defaults to "doc".
	TopNode string
}

// Schema is a validated, immutable set of node and mark types.
type Schema struct {
	Spec *SchemaSpec

	// TopNodeType is the root type of documents in this schema.
	TopNodeType *NodeType

	nodes      map[string]*NodeType
	nodeOrder  []*NodeType
	marks      map[string]*MarkType
	markOrder  []*MarkType
	groups     map[string][]string
	markGroups map[string][]string
}

// NodeType is a compiled node declaration.
type NodeType struct {
	Name   string
	Schema *Schema
	Spec   *NodeSpec
	Groups []string

	attrs         attrSet
	defaultAttrs  Attrs
	contentMatch  *ContentMatch
	inlineContent bool
	markSet       []*MarkType // nil allows every mark
	isBlock       bool
	isText        bool
	parseRules    []*compiledRule
}

// NewSchema validates spec and builds the schema. Failures are
// *SchemaError values wrapping ErrSchema.
func NewSchema(spec *SchemaSpec) (*Schema, error) {
	if spec == nil {
		return nil, schemaErrorf("", "nil spec")
	}
	s := &Schema{
		Spec:       spec,
		nodes:      make(map[string]*NodeType),
		marks:      make(map[string]*MarkType),
		groups:     make(map[string][]string),
		markGroups: make(map[string][]string),
	}

	for _, ns := range spec.Nodes {
		if ns == nil || ns.Name == "" {
			return nil, schemaErrorf("", "node spec without a name")
		}
		if _, dup := s.nodes[ns.Name]; dup {
			return nil, schemaErrorf(ns.Name, "declared twice")
		}
		attrs, err := newAttrSet(ns.Name, ns.Attrs)
		if err != nil {
			return nil, err
		}
		nt := &NodeType{
			Name:         ns.Name,
			Schema:       s,
			Spec:         ns,
			Groups:       strings.Fields(ns.Group),
			attrs:        attrs,
			defaultAttrs: attrs.defaults(),
			isText:       ns.Name == "text",
		}
		nt.isBlock = !(ns.Inline || nt.isText)
		s.nodes[ns.Name] = nt
		s.nodeOrder = append(s.nodeOrder, nt)
		for _, g := range nt.Groups {
			s.groups[g] = append(s.groups[g], nt.Name)
		}
	}

	top := spec.TopNode
	if top == "" {
		top = "doc"
	}
	s.TopNodeType = s.nodes[top]
	if s.TopNodeType == nil {
		return nil, schemaErrorf(top, "the top node type is not declared")
	}
	if s.nodes["text"] == nil {
		return nil, schemaErrorf("text", "every schema needs a text type")
	}
	if s.nodes["text"].Spec.Content != "" || len(s.nodes["text"].Spec.Attrs) > 0 {
		return nil, schemaErrorf("text", "the text type may not have content or attributes")
	}

	for i, ms := range spec.Marks {
		if ms == nil || ms.Name == "" {
			return nil, schemaErrorf("", "mark spec without a name")
		}
		if _, dup := s.marks[ms.Name]; dup {
			return nil, schemaErrorf(ms.Name, "declared twice")
		}
		attrs, err := newAttrSet(ms.Name, ms.Attrs)
		if err != nil {
			return nil, err
		}
		mt := &MarkType{
			Name:   ms.Name,
			Schema: s,
			Spec:   ms,
			Groups: strings.Fields(ms.Group),
			rank:   i,
			attrs:  attrs,
		}
		s.marks[ms.Name] = mt
		s.markOrder = append(s.markOrder, mt)
		for _, g := range mt.Groups {
			s.markGroups[g] = append(s.markGroups[g], mt.Name)
		}
	}

	for _, nt := range s.nodeOrder {
		match, err := parseContentMatch(s, nt)
		if err != nil {
			return nil, err
		}
		nt.contentMatch = match
		nt.inlineContent = match.InlineContent()
		if nt.isText && len(match.next) > 0 {
			return nil, schemaErrorf(nt.Name, "text nodes cannot have content")
		}
		set, err := s.resolveNodeMarks(nt)
		if err != nil {
			return nil, err
		}
		nt.markSet = set
	}

	for _, mt := range s.markOrder {
		if err := s.resolveExcludes(mt); err != nil {
			return nil, err
		}
	}

	if err := s.compileParseRules(); err != nil {
		return nil, err
	}

	for _, nt := range s.nodeOrder {
		if nt.IsLeaf() || nt.HasRequiredAttrs() || nt.contentMatch.ValidEnd {
			continue
		}
		if _, err := nt.createAndFill(nil, nil, nil, 0); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Schema) resolveNodeMarks(nt *NodeType) ([]*MarkType, error) {
	expr := nt.Spec.Marks
	if expr == nil {
		if nt.inlineContent {
			return nil, nil
		}
		return []*MarkType{}, nil
	}
	if *expr == "_" {
		return nil, nil
	}
	set, err := s.gatherMarks(nt.Name, strings.Fields(*expr))
	if err != nil {
		return nil, err
	}
	if set == nil {
		set = []*MarkType{}
	}
	return set, nil
}

func (s *Schema) resolveExcludes(mt *MarkType) error {
	expr := mt.Spec.Excludes
	if expr == nil {
		mt.excluded = []*MarkType{mt}
		return nil
	}
	if *expr == "_" {
		mt.excluded = append([]*MarkType(nil), s.markOrder...)
		return nil
	}
	set, err := s.gatherMarks(mt.Name, strings.Fields(*expr))
	if err != nil {
		return err
	}
	mt.excluded = set
	return nil
}

func (s *Schema) gatherMarks(owner string, names []string) ([]*MarkType, error) {
	var found []*MarkType
	for _, name := range names {
		if mt, ok := s.marks[name]; ok {
			found = append(found, mt)
			continue
		}
		members, ok := s.markGroups[name]
		if !ok {
			return nil, schemaErrorf(owner, "unknown mark type or group %q", name)
		}
		for _, m := range members {
			found = append(found, s.marks[m])
		}
	}
	return found, nil
}

// NodeType returns the node type with the given name, or nil.
func (s *Schema) NodeType(name string) *NodeType {
	return s.nodes[name]
}

// MarkType returns the mark type with the given name, or nil.
func (s *Schema) MarkType(name string) *MarkType {
	return s.marks[name]
}

// NodeTypes returns the node types in declaration order.
func (s *Schema) NodeTypes() []*NodeType {
	return append([]*NodeType(nil), s.nodeOrder...)
}

// MarkTypes returns the mark types in rank order.
func (s *Schema) MarkTypes() []*MarkType {
	return append([]*MarkType(nil), s.markOrder...)
}

// GroupMembers returns the names of the node types in group, in
// declaration order.
func (s *Schema) GroupMembers(group string) []string {
	return append([]string(nil), s.groups[group]...)
}

// Node creates a node of the named type with checked content.
func (s *Schema) Node(typeName string, attrs Attrs, content ...*Node) (*Node, error) {
	nt := s.nodes[typeName]
	if nt == nil {
		return nil, violationf("unknown node type %q", typeName)
	}
	return nt.CreateChecked(attrs, FragmentFrom(content...), nil)
}

// Text creates a text node. It returns nil for empty text, which the
// fragment constructors skip.
func (s *Schema) Text(text string, marks ...*Mark) *Node {
	if text == "" {
		return nil
	}
	return newTextNode(s.nodes["text"], text, MarkSetFrom(marks...))
}

// Mark creates a mark of the named type.
func (s *Schema) Mark(typeName string, attrs Attrs) (*Mark, error) {
	mt := s.marks[typeName]
	if mt == nil {
		return nil, violationf("unknown mark type %q", typeName)
	}
	return mt.Create(attrs)
}

// LinebreakReplacement returns the inline leaf type standing in for a
// newline outside code (the first leaf whose LeafText is "\n"), or nil.
func (s *Schema) LinebreakReplacement() *NodeType {
	for _, nt := range s.nodeOrder {
		if !nt.isBlock && !nt.isText && nt.IsLeaf() && nt.Spec.LeafText == "\n" {
			return nt
		}
	}
	return nil
}

// TopNodeDefault creates the minimal valid document.
func (s *Schema) TopNodeDefault() (*Node, error) {
	return s.TopNodeType.CreateAndFill(nil, nil, nil)
}

// IsBlock reports whether the type is a block type.
func (t *NodeType) IsBlock() bool { return t.isBlock }

// IsInline reports whether the type is inline.
func (t *NodeType) IsInline() bool { return !t.isBlock }

// IsText reports whether this is the text type.
func (t *NodeType) IsText() bool { return t.isText }

// IsTextblock reports whether the type is a block with inline content.
func (t *NodeType) IsTextblock() bool { return t.isBlock && t.inlineContent }

// InlineContent reports whether the type holds inline content.
func (t *NodeType) InlineContent() bool { return t.inlineContent }

// IsLeaf reports whether the type has no content.
func (t *NodeType) IsLeaf() bool { return t.contentMatch == nil || len(t.contentMatch.next) == 0 }

// IsAtom reports whether the type is a leaf or declared atomic.
func (t *NodeType) IsAtom() bool { return t.IsLeaf() || t.Spec.Atom }

// IsCode reports whether the type holds code.
func (t *NodeType) IsCode() bool { return t.Spec.Code }

// ContentMatch returns the automaton start state for the content expression.
func (t *NodeType) ContentMatch() *ContentMatch { return t.contentMatch }

// HasRequiredAttrs reports whether some attribute lacks a default.
func (t *NodeType) HasRequiredAttrs() bool { return t.attrs.hasRequired() }

// AttrSpec returns the declaration of the named attribute.
func (t *NodeType) AttrSpec(name string) (AttributeSpec, bool) {
	spec, ok := t.attrs.specs[name]
	return spec, ok
}

// ComputeAttrs fills defaults in and validates attrs.
func (t *NodeType) ComputeAttrs(attrs Attrs) (Attrs, error) {
	if attrs == nil && t.defaultAttrs != nil {
		return t.defaultAttrs, nil
	}
	return t.attrs.compute(t.Name, attrs)
}

// CompatibleContent reports whether nodes of both types can share content.
func (t *NodeType) CompatibleContent(other *NodeType) bool {
	return t == other || t.contentMatch.Compatible(other.contentMatch)
}

// ValidContent reports whether content satisfies the content expression
// and mark restrictions.
func (t *NodeType) ValidContent(content *Fragment) bool {
	result := t.contentMatch.MatchFragment(content, 0, content.ChildCount())
	if result == nil || !result.ValidEnd {
		return false
	}
	for _, child := range content.content {
		if !t.AllowsMarks(child.Marks) {
			return false
		}
	}
	return true
}

// CheckContent returns a SchemaViolation error when content is invalid.
func (t *NodeType) CheckContent(content *Fragment) error {
	if !t.ValidContent(content) {
		return violationf("invalid content for node %s: %s", t.Name, content.String())
	}
	return nil
}

// AllowsMarkType reports whether the type's content may carry marks of mt.
func (t *NodeType) AllowsMarkType(mt *MarkType) bool {
	if t.markSet == nil {
		return true
	}
	for _, m := range t.markSet {
		if m == mt {
			return true
		}
	}
	return false
}

// AllowsMarks reports whether every mark in marks is allowed.
func (t *NodeType) AllowsMarks(marks MarkSet) bool {
	if t.markSet == nil {
		return true
	}
	for _, m := range marks {
		if !t.AllowsMarkType(m.Type) {
			return false
		}
	}
	return true
}

// AllowedMarks filters marks down to the allowed ones.
func (t *NodeType) AllowedMarks(marks MarkSet) MarkSet {
	if t.markSet == nil {
		return marks
	}
	var out MarkSet
	for i, m := range marks {
		if !t.AllowsMarkType(m.Type) {
			if out == nil {
				out = append(MarkSet{}, marks[:i]...)
			}
		} else if out != nil {
			out = append(out, m)
		}
	}
	if out == nil {
		return marks
	}
	return out
}

// Create makes a node without checking its content.
func (t *NodeType) Create(attrs Attrs, content *Fragment, marks MarkSet) (*Node, error) {
	if t.isText {
		return nil, violationf("text nodes are created with Schema.Text")
	}
	computed, err := t.ComputeAttrs(attrs)
	if err != nil {
		return nil, err
	}
	return newNode(t, computed, content, MarkSetFrom(marks...)), nil
}

// CreateChecked makes a node and validates its content.
func (t *NodeType) CreateChecked(attrs Attrs, content *Fragment, marks MarkSet) (*Node, error) {
	if content == nil {
		content = EmptyFragment
	}
	if err := t.CheckContent(content); err != nil {
		return nil, err
	}
	return t.Create(attrs, content, marks)
}

// CreateAndFill makes a node, adding default instances of required
// content before and after the given content.
func (t *NodeType) CreateAndFill(attrs Attrs, content *Fragment, marks MarkSet) (*Node, error) {
	n, err := t.createAndFill(attrs, content, marks, 0)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, violationf("cannot create %s with valid content", t.Name)
	}
	return n, nil
}

func (t *NodeType) createAndFill(attrs Attrs, content *Fragment, marks MarkSet, depth int) (*Node, error) {
	if depth > MaxFillDepth {
		return nil, schemaErrorf(t.Name, "default content nests deeper than %d levels; "+
			"the first alternative of a required group recurses into itself", MaxFillDepth)
	}
	computed, err := t.ComputeAttrs(attrs)
	if err != nil {
		return nil, err
	}
	if content == nil {
		content = EmptyFragment
	}
	if content.Size() > 0 {
		before, err := t.contentMatch.fillBefore(content, false, 0, depth)
		if err != nil || before == nil {
			return nil, err
		}
		content = before.Append(content)
	}
	matched := t.contentMatch.MatchFragment(content, 0, content.ChildCount())
	if matched == nil {
		return nil, nil
	}
	after, err := matched.fillBefore(EmptyFragment, true, 0, depth)
	if err != nil || after == nil {
		return nil, err
	}
	return newNode(t, computed, content.Append(after), MarkSetFrom(marks...)), nil
}

// String returns the type name.
func (t *NodeType) String() string { return t.Name }
