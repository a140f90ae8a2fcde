package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// element adapts an html.Node to model.DOMElement.
type element struct {
	node   *html.Node
	decls  []styleDecl
	parsed bool
}

type styleDecl struct {
	prop  string
	value string
}

func newElement(n *html.Node) *element {
	return &element{node: n}
}

func (e *element) Tag() string {
	return strings.ToLower(e.node.Data)
}

func (e *element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

func (e *element) Style(property string) (string, bool) {
	property = strings.ToLower(property)
	for _, d := range e.styles() {
		if d.prop == property {
			return d.value, true
		}
	}
	return "", false
}

// styles returns the inline style declarations in source order.
func (e *element) styles() []styleDecl {
	if e.parsed {
		return e.decls
	}
	e.parsed = true
	raw, ok := e.Attr("style")
	if !ok {
		return nil
	}
	for _, part := range strings.Split(raw, ";") {
		prop, value, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important"))
		if prop == "" {
			continue
		}
		e.decls = append(e.decls, styleDecl{prop: prop, value: value})
	}
	return e.decls
}
