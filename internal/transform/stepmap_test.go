package transform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/folio/internal/transform"
)

func TestStepMapMap(t *testing.T) {
	// replaces 3 tokens at 2 with 1
	m := transform.NewStepMap(2, 3, 1)

	tests := []struct {
		pos, assoc, want int
	}{
		{0, 1, 0},
		{2, 1, 2},
		{2, -1, 2},
		{3, -1, 2},
		{3, 1, 3},
		{5, 1, 3},
		{6, 1, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Map(tt.pos, tt.assoc), "pos %d assoc %d", tt.pos, tt.assoc)
	}

	r := m.MapResult(3, 1)
	assert.True(t, r.Deleted())
	assert.True(t, r.DeletedAcross())

	r = m.MapResult(2, -1)
	assert.False(t, r.Deleted())
	assert.True(t, r.DeletedAfter())
	assert.False(t, r.DeletedBefore())

	r = m.MapResult(0, 1)
	assert.False(t, r.Deleted())
	assert.False(t, r.DeletedAcross())
}

func TestStepMapInvert(t *testing.T) {
	m := transform.NewStepMap(2, 0, 4)
	assert.Equal(t, 7, m.Map(3, 1))
	inv := m.Invert()
	assert.Equal(t, 3, inv.Map(7, 1))
	assert.Equal(t, 2, inv.Map(4, -1))
}

func TestMappingComposes(t *testing.T) {
	mapping := transform.NewMapping(transform.NewStepMap(0, 0, 2), transform.NewStepMap(5, 1, 0))
	assert.Equal(t, 5, mapping.Map(3, 1))
	assert.Equal(t, 11, mapping.Map(10, 1))
	assert.Equal(t, 3, mapping.Slice(1, 2).Map(3, 1))

	inv := mapping.Invert()
	assert.Equal(t, 10, inv.Map(11, 1))
}

func TestMappingMirror(t *testing.T) {
	del := transform.NewStepMap(2, 3, 0)
	mapping := transform.NewMapping()
	mapping.AppendMap(del, -1)
	mapping.AppendMap(del.Invert(), 0)

	// A position inside content that was deleted and restored comes
	// back where it was.
	assert.Equal(t, 3, mapping.Map(3, 1))
	assert.Equal(t, 7, mapping.Map(7, 1))

	plain := transform.NewMapping(del, del.Invert())
	assert.Equal(t, 5, plain.Map(3, 1))
}

func TestOffsetMap(t *testing.T) {
	assert.Equal(t, 7, transform.OffsetMap(4).Map(3, 1))
	assert.Equal(t, 1, transform.OffsetMap(-2).Map(3, 1))
	assert.Equal(t, 3, transform.OffsetMap(0).Map(3, 1))
}
