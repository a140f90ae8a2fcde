package model

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// DOMElement is the read-only view of a markup element that parse rules
// inspect.
type DOMElement interface {
	// Tag returns the lower-case element name.
	Tag() string
	// Attr returns an attribute value.
	Attr(name string) (string, bool)
	// Style returns an inline style property value.
	Style(property string) (string, bool)
}

// ParseRule describes how a markup element or inline style maps to a node
// or mark.
type ParseRule struct {
	// Tag selects elements: "p", "img[src]" (attribute required) or "*".
	Tag string

	// Style selects inline styles: "font-weight", or
	// "text-decoration=underline" to require a value.
	Style string

	// StylePattern, when set, must match the style value.
	StylePattern string

	// Priority orders rules; higher first. Ties keep declaration order
	// with node rules ahead of mark rules.
	Priority int

	// Attrs are static attributes for the created node or mark.
	Attrs Attrs

	// AttrsFrom maps attribute names to element attributes to copy.
	AttrsFrom map[string]string

	// GetAttrs computes attributes; returning false rejects the match.
	GetAttrs func(el DOMElement) (Attrs, bool)

	// PreserveWhitespace keeps whitespace in the element's content.
	PreserveWhitespace bool

	// Context restricts the rule to the listed parent node types
	// (separated by "|").
	Context string

	// Ignore drops the element and its content.
	Ignore bool

	// Skip parses the element's content in place without creating
	// anything for the element itself.
	Skip bool
}

// BoundRule is a parse rule compiled against the type it creates.
type BoundRule struct {
	Rule ParseRule
	Node *NodeType
	Mark *MarkType

	tag           string
	requiredAttrs []string
	styleProp     string
	styleValue    string
	stylePattern  *regexp.Regexp
	context       []string
	order         int
}

type compiledRule = BoundRule

var tagSelector = regexp.MustCompile(`^([a-zA-Z0-9*-]+)((?:\[[a-zA-Z0-9_-]+\])*)$`)

func compileRule(rule ParseRule, owner string) (*BoundRule, error) {
	br := &BoundRule{Rule: rule}
	switch {
	case rule.Tag != "" && rule.Style != "":
		return nil, schemaErrorf(owner, "malformed parse rule: both tag and style given")
	case rule.Tag != "":
		m := tagSelector.FindStringSubmatch(rule.Tag)
		if m == nil {
			return nil, schemaErrorf(owner, "malformed parse rule: bad tag selector %q", rule.Tag)
		}
		br.tag = strings.ToLower(m[1])
		for _, part := range strings.Split(strings.Trim(m[2], "[]"), "][") {
			if part != "" {
				br.requiredAttrs = append(br.requiredAttrs, part)
			}
		}
	case rule.Style != "":
		prop, value, _ := strings.Cut(rule.Style, "=")
		br.styleProp = strings.ToLower(strings.TrimSpace(prop))
		br.styleValue = strings.TrimSpace(value)
	default:
		return nil, schemaErrorf(owner, "malformed parse rule: needs a tag or a style")
	}
	if rule.StylePattern != "" {
		re, err := regexp.Compile(rule.StylePattern)
		if err != nil {
			return nil, schemaErrorf(owner, "malformed parse rule: style pattern: %v", err)
		}
		br.stylePattern = re
	}
	for _, c := range strings.Split(rule.Context, "|") {
		if c = strings.TrimSpace(c); c != "" {
			br.context = append(br.context, c)
		}
	}
	return br, nil
}

func (s *Schema) compileParseRules() error {
	order := 0
	for _, nt := range s.nodeOrder {
		for _, rule := range nt.Spec.ParseDOM {
			br, err := compileRule(rule, nt.Name)
			if err != nil {
				return err
			}
			if err := s.checkRuleContext(br, nt.Name, false); err != nil {
				return err
			}
			br.Node = nt
			br.order = order
			order++
			nt.parseRules = append(nt.parseRules, br)
		}
	}
	for _, mt := range s.markOrder {
		for _, rule := range mt.Spec.ParseDOM {
			br, err := compileRule(rule, mt.Name)
			if err != nil {
				return err
			}
			if err := s.checkRuleContext(br, mt.Name, true); err != nil {
				return err
			}
			br.Mark = mt
			br.order = order
			order++
			mt.parseRules = append(mt.parseRules, br)
		}
	}
	return nil
}

func (s *Schema) checkRuleContext(br *BoundRule, owner string, isMark bool) error {
	for _, name := range br.context {
		nt := s.nodes[name]
		if nt == nil {
			return schemaErrorf(owner, "malformed parse rule: unknown context node %q", name)
		}
		if isMark && nt.markSet != nil && len(nt.markSet) == 0 {
			return schemaErrorf(owner, "malformed parse rule: context node %q allows no marks", name)
		}
		if isMark && !nt.AllowsMarkType(s.marks[owner]) {
			return schemaErrorf(owner, "malformed parse rule: context node %q does not allow this mark", name)
		}
	}
	return nil
}

// TagRules returns the element rules in match order.
func (s *Schema) TagRules() []*BoundRule {
	return s.sortedRules(func(br *BoundRule) bool { return br.tag != "" })
}

// StyleRules returns the inline style rules in match order.
func (s *Schema) StyleRules() []*BoundRule {
	return s.sortedRules(func(br *BoundRule) bool { return br.styleProp != "" })
}

func (s *Schema) sortedRules(keep func(*BoundRule) bool) []*BoundRule {
	var rules []*BoundRule
	for _, nt := range s.nodeOrder {
		for _, br := range nt.parseRules {
			if keep(br) {
				rules = append(rules, br)
			}
		}
	}
	for _, mt := range s.markOrder {
		for _, br := range mt.parseRules {
			if keep(br) {
				rules = append(rules, br)
			}
		}
	}
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Rule.Priority != rules[j].Rule.Priority {
			return rules[i].Rule.Priority > rules[j].Rule.Priority
		}
		return rules[i].order < rules[j].order
	})
	return rules
}

// IsWildcard reports whether the rule matches any element.
func (br *BoundRule) IsWildcard() bool { return br.tag == "*" }

// StyleProperty returns the style property the rule inspects.
func (br *BoundRule) StyleProperty() string { return br.styleProp }

// MatchesContext reports whether the rule applies inside parent.
func (br *BoundRule) MatchesContext(parent *NodeType) bool {
	if len(br.context) == 0 {
		return true
	}
	for _, c := range br.context {
		if parent != nil && parent.Name == c {
			return true
		}
	}
	return false
}

// MatchElement returns the attributes for el when the rule's tag
// selector matches it.
func (br *BoundRule) MatchElement(el DOMElement) (Attrs, bool) {
	if br.tag == "" || (br.tag != "*" && br.tag != el.Tag()) {
		return nil, false
	}
	for _, name := range br.requiredAttrs {
		if _, ok := el.Attr(name); !ok {
			return nil, false
		}
	}
	return br.attrsFor(el)
}

// MatchStyle returns the attributes when the rule matches the inline
// style property with value.
func (br *BoundRule) MatchStyle(prop, value string, el DOMElement) (Attrs, bool) {
	if br.styleProp == "" || br.styleProp != prop {
		return nil, false
	}
	value = strings.TrimSpace(value)
	if br.styleValue != "" && !strings.EqualFold(br.styleValue, value) {
		return nil, false
	}
	if br.stylePattern != nil && !br.stylePattern.MatchString(value) {
		return nil, false
	}
	return br.attrsFor(el)
}

func (br *BoundRule) attrsFor(el DOMElement) (Attrs, bool) {
	if br.Rule.GetAttrs != nil {
		return br.Rule.GetAttrs(el)
	}
	attrs := br.Rule.Attrs.Clone()
	for name, from := range br.Rule.AttrsFrom {
		raw, ok := el.Attr(from)
		if !ok {
			continue
		}
		var spec AttributeSpec
		var found bool
		if br.Node != nil {
			spec, found = br.Node.AttrSpec(name)
		} else {
			spec, found = br.Mark.AttrSpec(name)
		}
		if !found {
			continue
		}
		v, err := spec.CoerceString(raw)
		if err != nil {
			continue
		}
		if attrs == nil {
			attrs = Attrs{}
		}
		attrs[name] = v
	}
	return attrs, true
}

// DOMSpec is the rendered form of a node or mark: an element with
// attributes and children. A spec with Hole set marks where content goes.
type DOMSpec struct {
	Tag      string
	Attrs    map[string]string
	Children []DOMSpec
	Hole     bool
}

// HoleSpec is the content placeholder.
var HoleSpec = DOMSpec{Hole: true}

// DOMTemplate is a declarative renderer. Tag and attribute values may
// reference node attributes as "{name}".
type DOMTemplate struct {
	Tag   string            `yaml:"tag"`
	Attrs map[string]string `yaml:"attrs"`

	// Inner names an element nested inside Tag that holds the content.
	Inner string `yaml:"inner"`

	// Leaf renders no content hole.
	Leaf bool `yaml:"leaf"`

	// OmitDefault lists attributes left out when they hold their default.
	OmitDefault []string `yaml:"omit_default"`
}

var templateRef = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// Expand renders the template for attrs. defaults reports declared
// default values.
func (t *DOMTemplate) Expand(attrs Attrs, defaults func(name string) (any, bool)) DOMSpec {
	spec := DOMSpec{Tag: expandTemplate(t.Tag, attrs)}
	for name, tmpl := range t.Attrs {
		if m := templateRef.FindStringSubmatch(tmpl); m != nil && m[0] == tmpl {
			v := attrs.Get(m[1])
			if v == nil {
				continue
			}
			if omitted(t.OmitDefault, m[1]) && defaults != nil {
				if d, ok := defaults(m[1]); ok && attrValueEq(d, v) {
					continue
				}
			}
		}
		if spec.Attrs == nil {
			spec.Attrs = map[string]string{}
		}
		spec.Attrs[name] = expandTemplate(tmpl, attrs)
	}
	var inner []DOMSpec
	if !t.Leaf {
		inner = []DOMSpec{HoleSpec}
	}
	if t.Inner != "" {
		spec.Children = []DOMSpec{{Tag: expandTemplate(t.Inner, attrs), Children: inner}}
	} else {
		spec.Children = inner
	}
	return spec
}

func omitted(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}

func expandTemplate(tmpl string, attrs Attrs) string {
	return templateRef.ReplaceAllStringFunc(tmpl, func(ref string) string {
		v := attrs.Get(ref[1 : len(ref)-1])
		if v == nil {
			return ""
		}
		return fmt.Sprint(v)
	})
}

// DOM renders n with the type's ToDOM function or template. The second
// result is false when the type has no renderer.
func (t *NodeType) DOM(n *Node) (DOMSpec, bool) {
	switch {
	case t.Spec.ToDOM != nil:
		return t.Spec.ToDOM(n), true
	case t.Spec.Render != nil:
		return t.Spec.Render.Expand(n.Attrs, t.attrDefault), true
	}
	return DOMSpec{}, false
}

func (t *NodeType) attrDefault(name string) (any, bool) {
	spec, ok := t.attrs.specs[name]
	if !ok || !spec.HasDefault {
		return nil, false
	}
	return spec.Default, true
}

// DOM renders m. inline reports whether the mark wraps inline content.
func (t *MarkType) DOM(m *Mark, inline bool) (DOMSpec, bool) {
	switch {
	case t.Spec.ToDOM != nil:
		return t.Spec.ToDOM(m, inline), true
	case t.Spec.Render != nil:
		return t.Spec.Render.Expand(m.Attrs, func(name string) (any, bool) {
			spec, ok := t.attrs.specs[name]
			if !ok || !spec.HasDefault {
				return nil, false
			}
			return spec.Default, true
		}), true
	}
	return DOMSpec{}, false
}
