// Package model provides the document model for Folio.
//
// A document is an immutable tree of Nodes validated against a Schema.
// Every edit produces a new tree; unchanged subtrees are shared between
// versions, so old documents stay valid for as long as they are
// referenced.
//
// # Schema
//
// A Schema is built from a SchemaSpec listing node and mark types in
// declaration order. Each node type has a content expression such as
// "block+" or "paragraph block*" which is compiled into a ContentMatch
// automaton. NewSchema rejects schemas whose default content cannot be
// generated within MaxFillDepth levels.
//
//	schema, err := model.NewSchema(&model.SchemaSpec{
//		Nodes: []*model.NodeSpec{
//			{Name: "doc", Content: "paragraph+"},
//			{Name: "paragraph", Content: "text*", Group: "block"},
//			{Name: "text", Group: "inline"},
//		},
//	})
//
// # Positions
//
// Positions count tokens: a non-leaf node contributes one position for
// its start and one for its end, a leaf node one position, and a text
// node one position per code point. Resolve turns an integer position
// into a ResolvedPos carrying the ancestors that contain it.
//
// # Interchange
//
// Nodes convert to and from nested Records, which encode to JSON.
// Markup parse rules and render templates are declared on the types and
// used by the markup package.
package model
