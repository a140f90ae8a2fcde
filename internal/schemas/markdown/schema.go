// Package markdown provides the default document schema: the node and mark
// types of a CommonMark document, with markup parse and render rules.
package markdown

import (
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/dshills/folio/internal/model"
)

var (
	once   sync.Once
	schema *model.Schema
)

// Schema returns the shared default schema. It panics if the built-in
// declaration is invalid, which the package tests rule out.
func Schema() *model.Schema {
	once.Do(func() {
		s, err := model.NewSchema(Spec())
		if err != nil {
			panic(err)
		}
		schema = s
	})
	return schema
}

func ptr[T any](v T) *T { return &v }

func hole(tag string) func(*model.Node) model.DOMSpec {
	return func(*model.Node) model.DOMSpec {
		return model.DOMSpec{Tag: tag, Children: []model.DOMSpec{model.HoleSpec}}
	}
}

func markTag(tag string) func(*model.Mark, bool) model.DOMSpec {
	return func(*model.Mark, bool) model.DOMSpec {
		return model.DOMSpec{Tag: tag, Children: []model.DOMSpec{model.HoleSpec}}
	}
}

func stringAttrs(attrs model.Attrs, names ...string) map[string]string {
	out := map[string]string{}
	for _, name := range names {
		if v, ok := attrs.Get(name).(string); ok {
			out[name] = v
		}
	}
	return out
}

func hasClass(class string) func(model.DOMElement) (model.Attrs, bool) {
	return func(el model.DOMElement) (model.Attrs, bool) {
		classes, _ := el.Attr("class")
		return nil, slices.Contains(strings.Fields(classes), class)
	}
}

// Spec returns a fresh copy of the default schema declaration. Paragraph
// precedes blockquote in the block group so that default block content
// resolves to a paragraph.
func Spec() *model.SchemaSpec {
	return &model.SchemaSpec{
		Nodes: []*model.NodeSpec{
			{Name: "doc", Content: "block+"},
			{
				Name:     "paragraph",
				Content:  "inline*",
				Group:    "block",
				ParseDOM: []model.ParseRule{{Tag: "p"}},
				ToDOM:    hole("p"),
			},
			{
				Name:     "blockquote",
				Content:  "block+",
				Group:    "block",
				Defining: true,
				ParseDOM: []model.ParseRule{{Tag: "blockquote"}},
				ToDOM:    hole("blockquote"),
			},
			{
				Name:     "horizontal_rule",
				Group:    "block",
				ParseDOM: []model.ParseRule{{Tag: "hr"}},
				ToDOM: func(*model.Node) model.DOMSpec {
					return model.DOMSpec{Tag: "div", Children: []model.DOMSpec{{Tag: "hr"}}}
				},
			},
			{
				Name:     "heading",
				Attrs:    map[string]model.AttributeSpec{"level": model.Default(1).Validated(model.IntBetween(1, 6))},
				Content:  "(text | image)*",
				Group:    "block",
				Defining: true,
				ParseDOM: []model.ParseRule{
					{Tag: "h1", Attrs: model.Attrs{"level": 1}},
					{Tag: "h2", Attrs: model.Attrs{"level": 2}},
					{Tag: "h3", Attrs: model.Attrs{"level": 3}},
					{Tag: "h4", Attrs: model.Attrs{"level": 4}},
					{Tag: "h5", Attrs: model.Attrs{"level": 5}},
					{Tag: "h6", Attrs: model.Attrs{"level": 6}},
				},
				ToDOM: func(n *model.Node) model.DOMSpec {
					return model.DOMSpec{
						Tag:      "h" + strconv.Itoa(n.Attrs.Int("level")),
						Children: []model.DOMSpec{model.HoleSpec},
					}
				},
			},
			{
				Name:       "code_block",
				Content:    "text*",
				Group:      "block",
				Code:       true,
				Defining:   true,
				Marks:      ptr(""),
				Whitespace: "pre",
				ParseDOM:   []model.ParseRule{{Tag: "pre", PreserveWhitespace: true}},
				ToDOM: func(*model.Node) model.DOMSpec {
					return model.DOMSpec{Tag: "pre", Children: []model.DOMSpec{
						{Tag: "code", Children: []model.DOMSpec{model.HoleSpec}},
					}}
				},
			},
			{
				Name:    "ordered_list",
				Attrs:   map[string]model.AttributeSpec{"order": model.Default(1)},
				Content: "list_item+",
				Group:   "block",
				ParseDOM: []model.ParseRule{{
					Tag: "ol",
					GetAttrs: func(el model.DOMElement) (model.Attrs, bool) {
						order := 1
						if start, ok := el.Attr("start"); ok {
							if n, err := strconv.Atoi(start); err == nil {
								order = n
							}
						}
						return model.Attrs{"order": order}, true
					},
				}},
				ToDOM: func(n *model.Node) model.DOMSpec {
					spec := model.DOMSpec{Tag: "ol", Children: []model.DOMSpec{model.HoleSpec}}
					if order := n.Attrs.Int("order"); order != 1 {
						spec.Attrs = map[string]string{"start": strconv.Itoa(order)}
					}
					return spec
				},
			},
			{
				Name:     "bullet_list",
				Content:  "list_item+",
				Group:    "block",
				ParseDOM: []model.ParseRule{{Tag: "ul"}},
				ToDOM:    hole("ul"),
			},
			{
				Name:     "list_item",
				Content:  "paragraph block*",
				Defining: true,
				ParseDOM: []model.ParseRule{{Tag: "li"}},
				ToDOM:    hole("li"),
			},
			{Name: "text", Group: "inline"},
			{
				Name:   "image",
				Inline: true,
				Attrs: map[string]model.AttributeSpec{
					"src":   model.Required(model.AttrString),
					"alt":   model.DefaultOf(model.AttrString, nil),
					"title": model.DefaultOf(model.AttrString, nil),
				},
				Group: "inline",
				ParseDOM: []model.ParseRule{{
					Tag:       "img[src]",
					AttrsFrom: map[string]string{"src": "src", "alt": "alt", "title": "title"},
				}},
				ToDOM: func(n *model.Node) model.DOMSpec {
					return model.DOMSpec{Tag: "img", Attrs: stringAttrs(n.Attrs, "src", "alt", "title")}
				},
			},
			{
				Name:     "hard_break",
				Inline:   true,
				Group:    "inline",
				LeafText: "\n",
				ParseDOM: []model.ParseRule{{Tag: "br"}},
				ToDOM: func(*model.Node) model.DOMSpec {
					return model.DOMSpec{Tag: "br"}
				},
			},
		},
		Marks: []*model.MarkSpec{
			{
				Name: "em",
				ParseDOM: []model.ParseRule{
					{Tag: "i"},
					{Tag: "em"},
					{Style: "font-style=italic"},
				},
				ToDOM: markTag("em"),
			},
			{
				Name: "strong",
				ParseDOM: []model.ParseRule{
					{Tag: "b"},
					{Tag: "strong"},
					{Style: "font-weight", StylePattern: `^(bold(er)?|[5-9]\d{2,})$`},
				},
				ToDOM: markTag("strong"),
			},
			{
				Name: "underline",
				ParseDOM: []model.ParseRule{
					{Tag: "u"},
					{Tag: "ins"},
					{Tag: "span", GetAttrs: hasClass("prosemirror-underline")},
					{Style: "text-decoration=underline"},
				},
				ToDOM: func(*model.Mark, bool) model.DOMSpec {
					return model.DOMSpec{
						Tag:      "span",
						Attrs:    map[string]string{"class": "prosemirror-underline"},
						Children: []model.DOMSpec{model.HoleSpec},
					}
				},
			},
			{
				Name:     "strike",
				ParseDOM: []model.ParseRule{{Tag: "s"}},
				ToDOM:    markTag("s"),
			},
			{
				Name:     "code",
				Code:     true,
				ParseDOM: []model.ParseRule{{Tag: "code"}},
				ToDOM:    markTag("code"),
			},
			{
				Name: "link",
				Attrs: map[string]model.AttributeSpec{
					"href":   model.Required(model.AttrString),
					"title":  model.DefaultOf(model.AttrString, nil),
					"target": model.Default("_blank"),
				},
				Inclusive: ptr(false),
				ParseDOM: []model.ParseRule{{
					Tag:       "a[href]",
					AttrsFrom: map[string]string{"href": "href", "title": "title"},
				}},
				ToDOM: func(m *model.Mark, _ bool) model.DOMSpec {
					return model.DOMSpec{
						Tag:      "a",
						Attrs:    stringAttrs(m.Attrs, "href", "title", "target"),
						Children: []model.DOMSpec{model.HoleSpec},
					}
				},
			},
		},
	}
}
