package model

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Schema files declare node and mark types in YAML. Parse and render
// behaviour is limited to the declarative forms (ParseRule without
// GetAttrs, DOMTemplate).

type yamlSchema struct {
	TopNode string     `yaml:"top_node"`
	Nodes   []yamlNode `yaml:"nodes"`
	Marks   []yamlMark `yaml:"marks"`
}

type yamlAttr struct {
	Default  any    `yaml:"default"`
	Kind     string `yaml:"kind"`
	Required bool   `yaml:"required"`
}

type yamlRule struct {
	Tag                string            `yaml:"tag"`
	Style              string            `yaml:"style"`
	StylePattern       string            `yaml:"style_pattern"`
	Priority           int               `yaml:"priority"`
	Attrs              map[string]any    `yaml:"attrs"`
	AttrsFrom          map[string]string `yaml:"attrs_from"`
	PreserveWhitespace bool              `yaml:"preserve_whitespace"`
	Context            string            `yaml:"context"`
	Ignore             bool              `yaml:"ignore"`
	Skip               bool              `yaml:"skip"`
}

type yamlNode struct {
	Name       string              `yaml:"name"`
	Content    string              `yaml:"content"`
	Group      string              `yaml:"group"`
	Inline     bool                `yaml:"inline"`
	Atom       bool                `yaml:"atom"`
	Attrs      map[string]yamlAttr `yaml:"attrs"`
	Marks      *string             `yaml:"marks"`
	Code       bool                `yaml:"code"`
	Defining   bool                `yaml:"defining"`
	Isolating  bool                `yaml:"isolating"`
	Whitespace string              `yaml:"whitespace"`
	LeafText   string              `yaml:"leaf_text"`
	Parse      []yamlRule          `yaml:"parse"`
	Render     *DOMTemplate        `yaml:"render"`
}

type yamlMark struct {
	Name      string              `yaml:"name"`
	Attrs     map[string]yamlAttr `yaml:"attrs"`
	Inclusive *bool               `yaml:"inclusive"`
	Excludes  *string             `yaml:"excludes"`
	Group     string              `yaml:"group"`
	Spanning  *bool               `yaml:"spanning"`
	Code      bool                `yaml:"code"`
	Parse     []yamlRule          `yaml:"parse"`
	Render    *DOMTemplate        `yaml:"render"`
}

// LoadSchemaSpecYAML decodes a schema declaration. The result still has
// to go through NewSchema.
func LoadSchemaSpecYAML(data []byte) (*SchemaSpec, error) {
	var doc yamlSchema
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, schemaErrorf("", "decoding schema file: %v", err)
	}
	spec := &SchemaSpec{TopNode: doc.TopNode}
	for _, yn := range doc.Nodes {
		attrs, err := convertAttrs(yn.Name, yn.Attrs)
		if err != nil {
			return nil, err
		}
		spec.Nodes = append(spec.Nodes, &NodeSpec{
			Name:       yn.Name,
			Content:    yn.Content,
			Group:      yn.Group,
			Inline:     yn.Inline,
			Atom:       yn.Atom,
			Attrs:      attrs,
			Marks:      yn.Marks,
			Code:       yn.Code,
			Defining:   yn.Defining,
			Isolating:  yn.Isolating,
			Whitespace: yn.Whitespace,
			LeafText:   yn.LeafText,
			ParseDOM:   convertRules(yn.Parse),
			Render:     yn.Render,
		})
	}
	for _, ym := range doc.Marks {
		attrs, err := convertAttrs(ym.Name, ym.Attrs)
		if err != nil {
			return nil, err
		}
		spec.Marks = append(spec.Marks, &MarkSpec{
			Name:      ym.Name,
			Attrs:     attrs,
			Inclusive: ym.Inclusive,
			Excludes:  ym.Excludes,
			Group:     ym.Group,
			Spanning:  ym.Spanning,
			Code:      ym.Code,
			ParseDOM:  convertRules(ym.Parse),
			Render:    ym.Render,
		})
	}
	return spec, nil
}

// LoadSchemaYAML decodes and builds a schema.
func LoadSchemaYAML(data []byte) (*Schema, error) {
	spec, err := LoadSchemaSpecYAML(data)
	if err != nil {
		return nil, err
	}
	return NewSchema(spec)
}

func convertAttrs(owner string, in map[string]yamlAttr) (map[string]AttributeSpec, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]AttributeSpec, len(in))
	for name, ya := range in {
		kind := ParseAttrKind(ya.Kind)
		if ya.Kind != "" && kind == AttrAny && ya.Kind != "any" {
			return nil, schemaErrorf(owner, "attribute %q: unknown kind %q", name, ya.Kind)
		}
		switch {
		case ya.Required:
			out[name] = Required(kind)
		case ya.Kind == "":
			out[name] = Default(ya.Default)
		default:
			out[name] = DefaultOf(kind, ya.Default)
		}
	}
	return out, nil
}

func convertRules(in []yamlRule) []ParseRule {
	out := make([]ParseRule, 0, len(in))
	for _, yr := range in {
		var attrs Attrs
		if yr.Attrs != nil {
			attrs = Attrs(yr.Attrs)
		}
		out = append(out, ParseRule{
			Tag:                yr.Tag,
			Style:              yr.Style,
			StylePattern:       yr.StylePattern,
			Priority:           yr.Priority,
			Attrs:              attrs,
			AttrsFrom:          yr.AttrsFrom,
			PreserveWhitespace: yr.PreserveWhitespace,
			Context:            yr.Context,
			Ignore:             yr.Ignore,
			Skip:               yr.Skip,
		})
	}
	return out
}

// String summarises the schema.
func (s *Schema) String() string {
	return fmt.Sprintf("schema(%d nodes, %d marks, top %s)", len(s.nodeOrder), len(s.markOrder), s.TopNodeType.Name)
}
