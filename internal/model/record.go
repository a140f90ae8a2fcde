package model

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Record is the nested interchange form of a node.
type Record struct {
	Type    string       `json:"type"`
	Attrs   Attrs        `json:"attrs,omitempty"`
	Content []Record     `json:"content,omitempty"`
	Text    string       `json:"text,omitempty"`
	Marks   []MarkRecord `json:"marks,omitempty"`
}

// MarkRecord is the interchange form of a mark.
type MarkRecord struct {
	Type  string `json:"type"`
	Attrs Attrs  `json:"attrs,omitempty"`
}

// SliceRecord is the interchange form of a slice.
type SliceRecord struct {
	Content   []Record `json:"content,omitempty"`
	OpenStart int      `json:"openStart,omitempty"`
	OpenEnd   int      `json:"openEnd,omitempty"`
}

// ToRecord returns the interchange form of the node.
func (n *Node) ToRecord() Record {
	rec := Record{Type: n.Type.Name}
	if len(n.Attrs) > 0 {
		rec.Attrs = n.Attrs.Clone()
	}
	if n.IsText() {
		rec.Text = n.text
	}
	if n.Content.Size() > 0 {
		rec.Content = FragmentToRecords(n.Content)
	}
	for _, m := range n.Marks {
		rec.Marks = append(rec.Marks, m.ToRecord())
	}
	return rec
}

// MarshalJSON encodes the node as its record.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.ToRecord())
}

// FragmentToRecords returns the records of the fragment's children.
func FragmentToRecords(f *Fragment) []Record {
	if f.ChildCount() == 0 {
		return nil
	}
	out := make([]Record, 0, f.ChildCount())
	for _, child := range f.content {
		out = append(out, child.ToRecord())
	}
	return out
}

// ToRecord returns the interchange form of the slice.
func (s *Slice) ToRecord() SliceRecord {
	return SliceRecord{Content: FragmentToRecords(s.Content), OpenStart: s.OpenStart, OpenEnd: s.OpenEnd}
}

// NodeFromRecord builds and validates a node from its record. All
// failures are *DeserializationError.
func (s *Schema) NodeFromRecord(rec Record) (*Node, error) {
	return s.nodeFromRecord(rec, "")
}

// NodeFromJSON decodes and builds a node.
func (s *Schema) NodeFromJSON(data []byte) (*Node, error) {
	rec, err := ParseRecordJSON(data)
	if err != nil {
		return nil, err
	}
	return s.NodeFromRecord(rec)
}

// FragmentFromRecords builds a fragment from child records.
func (s *Schema) FragmentFromRecords(recs []Record) (*Fragment, error) {
	return s.fragmentFromRecords(recs, "")
}

// SliceFromRecord builds a slice from its record.
func (s *Schema) SliceFromRecord(rec SliceRecord) (*Slice, error) {
	content, err := s.fragmentFromRecords(rec.Content, "")
	if err != nil {
		return nil, err
	}
	if rec.OpenStart < 0 || rec.OpenEnd < 0 {
		return nil, &DeserializationError{Message: "invalid open depths for slice"}
	}
	return NewSlice(content, rec.OpenStart, rec.OpenEnd), nil
}

// MarkFromRecord builds a mark from its record.
func (s *Schema) MarkFromRecord(rec MarkRecord) (*Mark, error) {
	return s.markFromRecord(rec, "")
}

func (s *Schema) markFromRecord(rec MarkRecord, path string) (*Mark, error) {
	mt := s.marks[rec.Type]
	if mt == nil {
		return nil, &DeserializationError{Path: path, Message: fmt.Sprintf("there is no mark type %q in this schema", rec.Type)}
	}
	m, err := mt.Create(rec.Attrs)
	if err != nil {
		return nil, &DeserializationError{Path: path, Message: "invalid mark attributes", Err: err}
	}
	return m, nil
}

func (s *Schema) fragmentFromRecords(recs []Record, path string) (*Fragment, error) {
	nodes := make([]*Node, 0, len(recs))
	for i, child := range recs {
		n, err := s.nodeFromRecord(child, fmt.Sprintf("%scontent[%d]", prefix(path), i))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return FragmentFrom(nodes...), nil
}

func prefix(path string) string {
	if path == "" {
		return ""
	}
	return path + "."
}

func (s *Schema) nodeFromRecord(rec Record, path string) (*Node, error) {
	nt := s.nodes[rec.Type]
	if nt == nil {
		return nil, &DeserializationError{Path: path, Message: fmt.Sprintf("unknown node type %q", rec.Type)}
	}
	var marks MarkSet
	for i, mr := range rec.Marks {
		m, err := s.markFromRecord(mr, fmt.Sprintf("%smarks[%d]", prefix(path), i))
		if err != nil {
			return nil, err
		}
		marks = append(marks, m)
	}
	set := MarkSetFrom(marks...)
	if len(set) != len(marks) {
		return nil, &DeserializationError{Path: path, Message: "mark set contains conflicting marks"}
	}
	if nt.IsText() {
		if rec.Text == "" {
			return nil, &DeserializationError{Path: path, Message: "empty text nodes are not allowed"}
		}
		if len(rec.Attrs) > 0 || len(rec.Content) > 0 {
			return nil, &DeserializationError{Path: path, Message: "text nodes cannot have attributes or content"}
		}
		return newTextNode(nt, rec.Text, set), nil
	}
	if rec.Text != "" {
		return nil, &DeserializationError{Path: path, Message: fmt.Sprintf("%s nodes cannot hold text", nt.Name)}
	}
	content, err := s.fragmentFromRecords(rec.Content, path)
	if err != nil {
		return nil, err
	}
	attrs, err := nt.ComputeAttrs(rec.Attrs)
	if err != nil {
		return nil, &DeserializationError{Path: path, Message: "invalid attributes", Err: err}
	}
	if err := nt.CheckContent(content); err != nil {
		return nil, &DeserializationError{Path: path, Message: "invalid content", Err: err}
	}
	return newNode(nt, attrs, content, set), nil
}

// ParseRecordJSON decodes a node record. Numbers in attributes arrive as
// float64 and are coerced by the attribute kind when the node is built.
func ParseRecordJSON(data []byte) (Record, error) {
	if !gjson.ValidBytes(data) {
		return Record{}, &DeserializationError{Message: "malformed JSON"}
	}
	return RecordFromResult(gjson.ParseBytes(data), "")
}

// RecordFromResult decodes a node record from an already parsed JSON value.
func RecordFromResult(res gjson.Result, path string) (Record, error) {
	if !res.IsObject() {
		return Record{}, &DeserializationError{Path: path, Message: "node record must be an object"}
	}
	typ := res.Get("type")
	if typ.Type != gjson.String {
		return Record{}, &DeserializationError{Path: path, Message: "node record needs a string type"}
	}
	rec := Record{Type: typ.String()}
	attrs, err := attrsFromResult(res.Get("attrs"), path)
	if err != nil {
		return Record{}, err
	}
	rec.Attrs = attrs
	if text := res.Get("text"); text.Exists() {
		if text.Type != gjson.String {
			return Record{}, &DeserializationError{Path: path, Message: "text must be a string"}
		}
		rec.Text = text.String()
	}
	if content := res.Get("content"); content.Exists() {
		if !content.IsArray() {
			return Record{}, &DeserializationError{Path: path, Message: "content must be an array"}
		}
		for i, child := range content.Array() {
			cr, err := RecordFromResult(child, fmt.Sprintf("%scontent[%d]", prefix(path), i))
			if err != nil {
				return Record{}, err
			}
			rec.Content = append(rec.Content, cr)
		}
	}
	if marks := res.Get("marks"); marks.Exists() {
		if !marks.IsArray() {
			return Record{}, &DeserializationError{Path: path, Message: "marks must be an array"}
		}
		for i, m := range marks.Array() {
			mr, err := MarkRecordFromResult(m, fmt.Sprintf("%smarks[%d]", prefix(path), i))
			if err != nil {
				return Record{}, err
			}
			rec.Marks = append(rec.Marks, mr)
		}
	}
	return rec, nil
}

// MarkRecordFromResult decodes a mark record.
func MarkRecordFromResult(res gjson.Result, path string) (MarkRecord, error) {
	if !res.IsObject() {
		return MarkRecord{}, &DeserializationError{Path: path, Message: "mark record must be an object"}
	}
	typ := res.Get("type")
	if typ.Type != gjson.String {
		return MarkRecord{}, &DeserializationError{Path: path, Message: "mark record needs a string type"}
	}
	attrs, err := attrsFromResult(res.Get("attrs"), path)
	if err != nil {
		return MarkRecord{}, err
	}
	return MarkRecord{Type: typ.String(), Attrs: attrs}, nil
}

// SliceRecordFromResult decodes a slice record.
func SliceRecordFromResult(res gjson.Result, path string) (SliceRecord, error) {
	var rec SliceRecord
	if !res.Exists() || res.Type == gjson.Null {
		return rec, nil
	}
	if !res.IsObject() {
		return rec, &DeserializationError{Path: path, Message: "slice record must be an object"}
	}
	for i, child := range res.Get("content").Array() {
		cr, err := RecordFromResult(child, fmt.Sprintf("%scontent[%d]", prefix(path), i))
		if err != nil {
			return rec, err
		}
		rec.Content = append(rec.Content, cr)
	}
	rec.OpenStart = int(res.Get("openStart").Int())
	rec.OpenEnd = int(res.Get("openEnd").Int())
	return rec, nil
}

func attrsFromResult(res gjson.Result, path string) (Attrs, error) {
	if !res.Exists() || res.Type == gjson.Null {
		return nil, nil
	}
	if !res.IsObject() {
		return nil, &DeserializationError{Path: path, Message: "attrs must be an object"}
	}
	attrs := Attrs{}
	res.ForEach(func(key, value gjson.Result) bool {
		attrs[key.String()] = value.Value()
		return true
	})
	return attrs, nil
}
