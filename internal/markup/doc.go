// Package markup converts between documents and HTML.
//
// A Parser reads HTML with golang.org/x/net/html and builds a document
// using the parse rules declared on the schema's node and mark types.
// Rules are tried in priority order; inline style rules add marks;
// whitespace outside preformatted nodes is collapsed the way a browser
// would render it. Elements without a rule are handled by tag:
// structural containers such as div are parsed through, metadata such
// as script is dropped, and anything else falls back to the schema's
// "*" rules or fails with a model.DeserializationError.
//
// A Serializer renders fragments back to HTML with each type's render
// spec, keeping marks shared by adjacent inline nodes in one element.
//
//	p := markup.NewParser(schema)
//	doc, err := p.Parse(`<p>Hello <b>world</b></p>`)
//
//	s := markup.NewSerializer(schema)
//	out, err := s.NodeHTML(doc)
package markup
