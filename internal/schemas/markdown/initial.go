package markdown

import "github.com/dshills/folio/internal/model"

// InitialDocRecord is the starter document shown in a new editor.
func InitialDocRecord() model.Record {
	return model.Record{
		Type: "doc",
		Content: []model.Record{
			{Type: "paragraph", Content: []model.Record{
				{Type: "text", Text: "This is a text editor built with Folio."},
			}},
			{Type: "paragraph", Content: []model.Record{
				{
					Type:  "text",
					Text:  "Press CMD + A then BACKSPACE to start from a blank document.",
					Marks: []model.MarkRecord{{Type: "strong"}},
				},
			}},
			{Type: "paragraph"},
		},
	}
}

// InitialDoc builds the starter document in the default schema.
func InitialDoc() *model.Node {
	doc, err := Schema().NodeFromRecord(InitialDocRecord())
	if err != nil {
		panic(err)
	}
	return doc
}
