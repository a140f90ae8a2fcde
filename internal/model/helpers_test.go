package model_test

import (
	"github.com/dshills/folio/internal/model"
	"github.com/dshills/folio/internal/schemas/markdown"
)

var schema = markdown.Schema()

func node(name string, attrs model.Attrs, children ...*model.Node) *model.Node {
	n, err := schema.Node(name, attrs, children...)
	if err != nil {
		panic(err)
	}
	return n
}

func doc(children ...*model.Node) *model.Node { return node("doc", nil, children...) }
func p(children ...*model.Node) *model.Node   { return node("paragraph", nil, children...) }
func bq(children ...*model.Node) *model.Node  { return node("blockquote", nil, children...) }
func li(children ...*model.Node) *model.Node  { return node("list_item", nil, children...) }
func ul(children ...*model.Node) *model.Node  { return node("bullet_list", nil, children...) }
func h(level int, children ...*model.Node) *model.Node {
	return node("heading", model.Attrs{"level": level}, children...)
}
func br() *model.Node { return node("hard_break", nil) }

func txt(s string, marks ...*model.Mark) *model.Node { return schema.Text(s, marks...) }

func mark(name string, attrs model.Attrs) *model.Mark {
	m, err := schema.Mark(name, attrs)
	if err != nil {
		panic(err)
	}
	return m
}
