package markdown_test

import (
	"fmt"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/folio/internal/markup"
	"github.com/dshills/folio/internal/model"
	"github.com/dshills/folio/internal/schemas/markdown"
)

func TestSchemaShape(t *testing.T) {
	s := markdown.Schema()
	assert.Same(t, s, markdown.Schema(), "schema is built once")

	for _, name := range []string{"doc", "paragraph", "blockquote", "horizontal_rule", "heading",
		"code_block", "ordered_list", "bullet_list", "list_item", "text", "image", "hard_break"} {
		assert.NotNil(t, s.NodeType(name), name)
	}
	for _, name := range []string{"em", "strong", "underline", "strike", "code", "link"} {
		assert.NotNil(t, s.MarkType(name), name)
	}

	code := s.NodeType("code_block")
	assert.True(t, code.IsCode())
	assert.False(t, code.AllowsMarkType(s.MarkType("strong")))
	assert.True(t, s.NodeType("paragraph").AllowsMarkType(s.MarkType("link")))

	def, err := s.TopNodeDefault()
	require.NoError(t, err)
	assert.Equal(t, "paragraph", def.FirstChild().Type.Name, "paragraph is the default block")
}

func TestSpecIsFresh(t *testing.T) {
	a, b := markdown.Spec(), markdown.Spec()
	a.Nodes = a.Nodes[:1]
	assert.Greater(t, len(b.Nodes), 1)
}

func TestInitialDoc(t *testing.T) {
	doc := markdown.InitialDoc()
	require.NoError(t, doc.Check())
	require.Equal(t, 3, doc.ChildCount())
	assert.Equal(t, "This is a text editor built with Folio.", doc.Child(0).TextContent())

	bold := doc.Child(1).FirstChild()
	assert.NotNil(t, markdown.Schema().MarkType("strong").IsInSet(bold.Marks), spew.Sdump(bold.Marks))
	assert.Equal(t, 0, doc.Child(2).ChildCount())
}

func TestHTMLRoundTrip(t *testing.T) {
	s := markdown.Schema()
	parser, render := markup.NewParser(s), markup.NewSerializer(s)

	tests := []struct{ in, want string }{
		{`<h3>Title</h3>`, `<h3>Title</h3>`},
		{`<blockquote><p>quoted</p></blockquote>`, `<blockquote><p>quoted</p></blockquote>`},
		{`<hr><p>after</p>`, `<div><hr/></div><p>after</p>`},
		{"<pre><code>a  b</code></pre>", "<pre><code>a  b</code></pre>"},
		{`<ol start="3"><li><p>three</p></li></ol>`, `<ol start="3"><li><p>three</p></li></ol>`},
		{`<ul><li><p>one</p><ul><li><p>nested</p></li></ul></li></ul>`,
			`<ul><li><p>one</p><ul><li><p>nested</p></li></ul></li></ul>`},
		{`<p><em>i</em> <strong>b</strong> <s>x</s> <code>c</code></p>`,
			`<p><em>i</em> <strong>b</strong> <s>x</s> <code>c</code></p>`},
		{`<p><u>u</u></p>`, `<p><span class="prosemirror-underline">u</span></p>`},
		{`<p>line<br>break</p>`, `<p>line<br/>break</p>`},
	}
	for _, tt := range tests {
		doc, err := parser.Parse(tt.in)
		require.NoError(t, err, tt.in)
		require.NoError(t, doc.Check(), tt.in)
		out, err := render.NodeHTML(doc)
		require.NoError(t, err)
		assert.Equal(t, tt.want, out, spew.Sdump(doc.ToRecord()))
	}
}

func TestParseRules(t *testing.T) {
	s := markdown.Schema()
	parser := markup.NewParser(s)

	doc, err := parser.Parse(`<p><span style="font-weight: 700">w</span> <b>b</b> <i>i</i> <u>u</u></p>`)
	require.NoError(t, err)
	p := doc.FirstChild()
	want := map[string]string{"w": "strong", "b": "strong", "i": "em", "u": "underline"}
	seen := 0
	for i := 0; i < p.ChildCount(); i++ {
		child := p.Child(i)
		mark, ok := want[child.TextContent()]
		if !ok {
			continue
		}
		seen++
		assert.NotNil(t, s.MarkType(mark).IsInSet(child.Marks), "%q should carry %s", child.TextContent(), mark)
	}
	assert.Equal(t, len(want), seen, spew.Sdump(doc.ToRecord()))

	doc, err = parser.Parse(`<p><a href="https://example.com" title="ex">link</a><img src="a.png" alt="A"></p>`)
	require.NoError(t, err)
	p = doc.FirstChild()
	link := s.MarkType("link").IsInSet(p.FirstChild().Marks)
	require.NotNil(t, link)
	assert.Equal(t, "https://example.com", link.Attrs.String("href"))
	assert.Equal(t, "_blank", link.Attrs.String("target"))
	img := p.Child(1)
	assert.Equal(t, "image", img.Type.Name)
	assert.Equal(t, "a.png", img.Attrs.String("src"))
	assert.Equal(t, "A", img.Attrs.String("alt"))

	doc, err = parser.Parse(`<h2>Two</h2><ol><li><p>x</p></li></ol>`)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.FirstChild().Attrs.Int("level"))
	assert.Equal(t, 1, doc.Child(1).Attrs.Int("order"))
}

func TestLinkIsNotInclusive(t *testing.T) {
	s := markdown.Schema()
	link, err := s.Mark("link", model.Attrs{"href": "x"})
	require.NoError(t, err)
	assert.False(t, link.Type.Inclusive())
	assert.True(t, s.MarkType("strong").Inclusive())
}

func TestHeadingLevelRange(t *testing.T) {
	s := markdown.Schema()
	for _, level := range []int{0, 7, 9} {
		_, err := s.NodeFromJSON([]byte(fmt.Sprintf(`{"type":"doc","content":[{"type":"heading","attrs":{"level":%d}}]}`, level)))
		assert.ErrorIs(t, err, model.ErrDeserialization, "level %d", level)
	}
	d, err := s.NodeFromJSON([]byte(`{"type":"doc","content":[{"type":"heading","attrs":{"level":6}}]}`))
	require.NoError(t, err)
	assert.Equal(t, 6, d.Child(0).Attrs.Int("level"))

	_, err = s.Node("heading", model.Attrs{"level": 9})
	assert.ErrorIs(t, err, model.ErrSchemaViolation)
}
