package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/folio/internal/model"
	"github.com/dshills/folio/internal/schemas/markdown"
)

func TestRecordRoundTrip(t *testing.T) {
	d := markdown.InitialDoc()
	data, err := json.Marshal(d)
	require.NoError(t, err)

	back, err := schema.NodeFromJSON(data)
	require.NoError(t, err)
	assert.True(t, back.Eq(d), back.String())

	again, err := json.Marshal(back)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestRecordAttrsCoerced(t *testing.T) {
	data := []byte(`{"type":"doc","content":[
		{"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Hi"}]},
		{"type":"paragraph","content":[
			{"type":"image","attrs":{"src":"a.png","alt":null}},
			{"type":"text","text":"link","marks":[{"type":"link","attrs":{"href":"https://example.com"}}]}
		]}
	]}`)
	d, err := schema.NodeFromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Child(0).Attrs["level"])
	img := d.Child(1).Child(0)
	assert.Equal(t, "a.png", img.Attrs.String("src"))
	assert.Nil(t, img.Attrs["title"])
	link := d.Child(1).Child(1).Marks[0]
	assert.Equal(t, "_blank", link.Attrs.String("target"))

	rec := d.ToRecord()
	assert.Equal(t, "heading", rec.Content[0].Type)
	assert.Equal(t, "Hi", rec.Content[0].Content[0].Text)
}

func TestRecordErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
		path string
	}{
		{"unknown node type", `{"type":"doc","content":[{"type":"figure"}]}`, "content[0]"},
		{"unknown mark type", `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"x","marks":[{"type":"sparkle"}]}]}]}`, "content[0].content[0].marks[0]"},
		{"unknown attribute", `{"type":"doc","content":[{"type":"paragraph","attrs":{"align":"left"}}]}`, "content[0]"},
		{"wrong attribute kind", `{"type":"doc","content":[{"type":"heading","attrs":{"level":"two"}}]}`, "content[0]"},
		{"invalid content", `{"type":"doc","content":[{"type":"bullet_list"}]}`, "content[0]"},
		{"mark not allowed", `{"type":"doc","content":[{"type":"code_block","content":[{"type":"text","text":"x","marks":[{"type":"em"}]}]}]}`, "content[0]"},
		{"empty text", `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":""}]}]}`, "content[0].content[0]"},
		{"missing type", `{"content":[]}`, ""},
		{"malformed", `{"type":`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.NodeFromJSON([]byte(tt.json))
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrDeserialization), "got %v", err)
			var de *model.DeserializationError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.path, de.Path)
		})
	}
}

func TestSliceRecord(t *testing.T) {
	d := doc(p(txt("hello")), p(txt("world")))
	slice, err := d.Slice(3, 10, false)
	require.NoError(t, err)
	back, err := schema.SliceFromRecord(slice.ToRecord())
	require.NoError(t, err)
	assert.True(t, back.Eq(slice))
}
