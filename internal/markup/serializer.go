package markup

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/folio/internal/model"
)

// Serializer renders documents to HTML with the render specs of the
// schema's types.
type Serializer struct {
	schema *model.Schema
}

// NewSerializer returns a serializer for schema.
func NewSerializer(schema *model.Schema) *Serializer {
	return &Serializer{schema: schema}
}

// NodeHTML renders n. A node of the top type renders as its content.
func (s *Serializer) NodeHTML(n *model.Node) (string, error) {
	if n.Type == s.schema.TopNodeType {
		return s.FragmentHTML(n.Content)
	}
	return s.FragmentHTML(model.FragmentFrom(n))
}

// FragmentHTML renders frag to a string.
func (s *Serializer) FragmentHTML(frag *model.Fragment) (string, error) {
	var buf bytes.Buffer
	if err := s.WriteFragment(&buf, frag); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteFragment renders frag to w.
func (s *Serializer) WriteFragment(w io.Writer, frag *model.Fragment) error {
	nodes, err := s.RenderFragment(frag)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		if err := html.Render(w, n); err != nil {
			return err
		}
	}
	return nil
}

// RenderFragment builds the HTML node trees for frag.
func (s *Serializer) RenderFragment(frag *model.Fragment) ([]*html.Node, error) {
	root := &html.Node{Type: html.DocumentNode}
	if err := s.renderInto(root, frag); err != nil {
		return nil, err
	}
	var out []*html.Node
	for c := root.FirstChild; c != nil; {
		next := c.NextSibling
		root.RemoveChild(c)
		out = append(out, c)
		c = next
	}
	return out, nil
}

type openMark struct {
	mark *model.Mark
	hole *html.Node
}

// renderInto appends frag to parent, opening and closing mark elements
// so that a mark shared by adjacent inline nodes wraps them once.
func (s *Serializer) renderInto(parent *html.Node, frag *model.Fragment) error {
	var active []openMark
	for i := 0; i < frag.ChildCount(); i++ {
		child := frag.Child(i)
		marks := child.Marks
		keep := 0
		for keep < len(active) && keep < len(marks) {
			next := marks[keep]
			if !next.Eq(active[keep].mark) || !next.Type.Spanning() {
				break
			}
			keep++
		}
		active = active[:keep]
		target := parent
		if keep > 0 {
			target = active[keep-1].hole
		}
		for _, m := range marks[keep:] {
			spec, ok := m.Type.DOM(m, true)
			if !ok {
				return fmt.Errorf("%w: mark %s", ErrNoRenderer, m.Type.Name)
			}
			outer, hole := buildSpec(spec)
			if hole == nil {
				return fmt.Errorf("%w: mark %s", ErrNoContentHole, m.Type.Name)
			}
			target.AppendChild(outer)
			target = hole
			active = append(active, openMark{mark: m, hole: hole})
		}
		if err := s.renderNode(target, child); err != nil {
			return err
		}
	}
	return nil
}

func (s *Serializer) renderNode(parent *html.Node, n *model.Node) error {
	if n.IsText() {
		parent.AppendChild(&html.Node{Type: html.TextNode, Data: n.Text()})
		return nil
	}
	spec, ok := n.Type.DOM(n)
	if !ok {
		return fmt.Errorf("%w: node %s", ErrNoRenderer, n.Type.Name)
	}
	outer, hole := buildSpec(spec)
	if outer == nil {
		return fmt.Errorf("%w: node %s renders nothing", ErrNoRenderer, n.Type.Name)
	}
	parent.AppendChild(outer)
	if n.ChildCount() == 0 {
		return nil
	}
	if hole == nil {
		return fmt.Errorf("%w: node %s", ErrNoContentHole, n.Type.Name)
	}
	return s.renderInto(hole, n.Content)
}

// buildSpec creates the element tree for spec and returns it with the
// element that receives content, if any.
func buildSpec(spec model.DOMSpec) (*html.Node, *html.Node) {
	if spec.Hole || spec.Tag == "" {
		return nil, nil
	}
	el := &html.Node{Type: html.ElementNode, Data: spec.Tag, DataAtom: atom.Lookup([]byte(spec.Tag))}
	keys := make([]string, 0, len(spec.Attrs))
	for k := range spec.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		el.Attr = append(el.Attr, html.Attribute{Key: k, Val: spec.Attrs[k]})
	}
	var hole *html.Node
	for _, child := range spec.Children {
		if child.Hole {
			hole = el
			continue
		}
		c, h := buildSpec(child)
		if c == nil {
			continue
		}
		el.AppendChild(c)
		if h != nil {
			hole = h
		}
	}
	return el, hole
}
