package markup_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/folio/internal/markup"
	"github.com/dshills/folio/internal/model"
	"github.com/dshills/folio/internal/schemas/markdown"
)

func TestSerialize(t *testing.T) {
	strong := mark("strong", nil)
	em := mark("em", nil)
	link := mark("link", model.Attrs{"href": "u"})
	tests := []struct {
		name string
		doc  *model.Node
		want string
	}{
		{"marks", doc(p(txt("a "), txt("b", strong), txt("c", em))),
			`<p>a <strong>b</strong><em>c</em></p>`},
		{"shared mark stays open", doc(p(txt("a", em), txt("b", em, strong), txt("c"))),
			`<p><em>a<strong>b</strong></em>c</p>`},
		{"link attributes", doc(p(txt("l", link))),
			`<p><a href="u" target="_blank">l</a></p>`},
		{"heading and rule", doc(h(2, txt("t")), hr()),
			`<h2>t</h2><div><hr/></div>`},
		{"ordered list start", doc(ol(3, li(p(txt("a"))))),
			`<ol start="3"><li><p>a</p></li></ol>`},
		{"default order omitted", doc(ol(1, li(p(txt("a"))))),
			`<ol><li><p>a</p></li></ol>`},
		{"code block", doc(code(txt("a\nb"))),
			"<pre><code>a\nb</code></pre>"},
		{"break and image", doc(p(txt("a"), br(), img("x.png", "y"))),
			`<p>a<br/><img alt="y" src="x.png"/></p>`},
		{"escapes text", doc(p(txt("a < b & c"))),
			`<p>a &lt; b &amp; c</p>`},
		{"empty paragraph", doc(p()),
			`<p></p>`},
	}
	s := markup.NewSerializer(schema)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.NodeHTML(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSerializeSingleNode(t *testing.T) {
	got, err := markup.NewSerializer(schema).NodeHTML(bq(p(txt("q"))))
	require.NoError(t, err)
	assert.Equal(t, `<blockquote><p>q</p></blockquote>`, got)

	var buf bytes.Buffer
	require.NoError(t, markup.NewSerializer(schema).WriteFragment(&buf, doc(p(txt("a")), p(txt("b"))).Content))
	assert.Equal(t, `<p>a</p><p>b</p>`, buf.String())
}

func TestSerializeWithoutRenderer(t *testing.T) {
	s := customSchema(t, func(spec *model.SchemaSpec) {
		for _, n := range spec.Nodes {
			if n.Name == "blockquote" {
				n.ToDOM = nil
			}
		}
	})
	para, err := s.Node("paragraph", nil, s.Text("q"))
	require.NoError(t, err)
	quote, err := s.Node("blockquote", nil, para)
	require.NoError(t, err)
	_, err = markup.NewSerializer(s).NodeHTML(quote)
	assert.True(t, errors.Is(err, markup.ErrNoRenderer))
}

func TestRoundTrip(t *testing.T) {
	docs := []*model.Node{
		markdown.InitialDoc(),
		doc(
			h(1, txt("Title")),
			p(txt("plain "), txt("bold", mark("strong", nil)), txt(" "), txt("under", mark("underline", nil)),
				txt(" "), txt("gone", mark("strike", nil)), br(), txt("x", mark("code", nil))),
			bq(p(txt("quoted"))),
			ul(li(p(txt("one")), ul(li(p(txt("nested")))))),
			ol(2, li(p(txt("two")))),
			code(txt("func main() {\n\treturn\n}")),
			hr(),
			p(img("a.png", "alt"), txt("link", mark("link", model.Attrs{"href": "https://example.com", "title": "t"}))),
		),
	}
	s := markup.NewSerializer(schema)
	parser := markup.NewParser(schema)
	for _, d := range docs {
		out, err := s.NodeHTML(d)
		require.NoError(t, err)
		back, err := parser.Parse(out)
		require.NoError(t, err, out)
		requireDoc(t, d, back)
	}
}
