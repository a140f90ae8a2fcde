package state_test

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
func hr() *model.Node                         { return node("horizontal_rule", nil) }

func txt(s string, marks ...*model.Mark) *model.Node { return schema.Text(s, marks...) }

func mark(name string) *model.Mark {
	m, err := schema.Mark(name, nil)
	if err != nil {
		panic(err)
	}
	return m
}
