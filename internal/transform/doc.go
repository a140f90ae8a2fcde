// Package transform implements document changes as steps.
//
// A Step is an atomic, invertible change: replacing a range with a
// slice, replacing around a kept gap (wrapping, lifting and retyping
// nodes), adding or removing a mark over a range, or setting a node
// attribute. Applying a step returns a new document; the old one is
// left untouched.
//
// Each step has a StepMap describing how it moves positions. A Mapping
// composes the maps of several steps so positions can be carried from
// the first document to the last:
//
//	tr := transform.New(doc)
//	if err := tr.Insert(3, schema.Text("hi")); err != nil {
//		return err
//	}
//	pos := tr.Mapping().Map(oldPos, 1)
//
// Transform also provides the structural helpers editing commands are
// built from: ReplaceRange fits pasted content into its surroundings,
// DeleteRange widens deletions to whole nodes, and Wrap, Lift,
// SetBlockType, Split and Join change block structure.
//
// Steps encode to JSON (MarshalStep) and decode against a schema
// (StepFromJSON).
package transform
