package board

import (
	"testing"

	"github.com/drawnet/drawboard/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestParseShapePayload(t *testing.T) {
	t.Run("rect", func(t *testing.T) {
		shape, err := ParseShapePayload(`{"shape":{"id":"s1","type":"rect","x":10,"y":20,"width":30,"height":40}}`)
		assert.NoError(t, err, "expected no error parsing rect payload")
		assert.Equal(t, "s1", shape.Id, "expected shape id to match")
		assert.Equal(t, types.ShapeRect, shape.Type, "expected shape type to match")
		assert.Equal(t, 10.0, shape.X, "expected x to match")
		assert.Equal(t, 40.0, shape.Height, "expected height to match")
	})

	t.Run("pencil with points", func(t *testing.T) {
		shape, err := ParseShapePayload(`{"shape":{"id":"s2","type":"pencil","points":[{"x":1,"y":2},{"x":3,"y":4}]}}`)
		assert.NoError(t, err, "expected no error parsing pencil payload")
		assert.Equal(t, types.ShapePencil, shape.Type, "expected shape type to match")
		assert.Len(t, shape.Points, 2, "expected both points to be decoded")
	})

	t.Run("plain text chat is not a shape", func(t *testing.T) {
		_, err := ParseShapePayload("hello there")
		assert.Error(t, err, "expected plain text to be rejected")
	})

	t.Run("shape without an id is rejected", func(t *testing.T) {
		_, err := ParseShapePayload(`{"shape":{"type":"rect"}}`)
		assert.Error(t, err, "expected shape without id to be rejected")
	})

	t.Run("json without a shape key is rejected", func(t *testing.T) {
		_, err := ParseShapePayload(`{"text":"hi"}`)
		assert.Error(t, err, "expected non-shape json to be rejected")
	})
}

func TestEncodeShapePayload(t *testing.T) {
	shape := types.Shape{Id: "s1", Type: types.ShapeCircle, CenterX: 5, CenterY: 6, Radius: 7}

	encoded, err := EncodeShapePayload(shape)
	assert.NoError(t, err, "expected no error encoding shape")

	decoded, err := ParseShapePayload(encoded)
	assert.NoError(t, err, "expected encoded payload to parse")
	assert.Equal(t, shape, decoded, "expected decoded shape to match the original")
}

func TestExtractShapeId(t *testing.T) {
	assert.Equal(t, "s1", ExtractShapeId(`{"shape":{"id":"s1","type":"rect"}}`),
		"expected shape id to be extracted")
	assert.Equal(t, "", ExtractShapeId("just a chat message"),
		"expected empty id for plain chat")
}

func TestBoard_Seed(t *testing.T) {
	b := NewBoard()
	b.Seed([]string{
		`{"shape":{"id":"s1","type":"rect","x":1,"y":1,"width":2,"height":2}}`,
		"nice drawing!",
		`{"shape":{"id":"s2","type":"line","x":0,"y":0,"endX":5,"endY":5}}`,
	})

	assert.Equal(t, 2, b.Len(), "expected plain chat to be skipped during seeding")
	assert.True(t, b.Contains("s1"), "expected s1 on the board")
	assert.True(t, b.Contains("s2"), "expected s2 on the board")
}

func TestBoard_ApplyCreate(t *testing.T) {
	b := NewBoard()
	b.ApplyCreate(types.Shape{Id: "s1", Type: types.ShapeRect, Width: 10})
	b.ApplyCreate(types.Shape{Id: "s2", Type: types.ShapeText, Content: "hi"})
	assert.Equal(t, 2, b.Len(), "expected 2 shapes after creates")

	// a duplicate create replaces in place
	b.ApplyCreate(types.Shape{Id: "s1", Type: types.ShapeRect, Width: 99})
	assert.Equal(t, 2, b.Len(), "expected duplicate create to not grow the board")

	shapes := b.Shapes()
	assert.Equal(t, "s1", shapes[0].Id, "expected draw order to be preserved")
	assert.Equal(t, 99.0, shapes[0].Width, "expected duplicate create to replace the shape")
}

func TestBoard_ApplyUpdate(t *testing.T) {
	b := NewBoard()
	b.ApplyCreate(types.Shape{Id: "s1", Type: types.ShapeRect, Width: 10})
	b.ApplyCreate(types.Shape{Id: "s2", Type: types.ShapeRect, Width: 20})

	b.ApplyUpdate(types.Shape{Id: "s1", Type: types.ShapeRect, Width: 15})
	shapes := b.Shapes()
	assert.Equal(t, 15.0, shapes[0].Width, "expected s1 to be replaced in place")
	assert.Equal(t, 20.0, shapes[1].Width, "expected s2 to be untouched")

	// update for an unknown id is a no-op
	b.ApplyUpdate(types.Shape{Id: "missing", Type: types.ShapeRect})
	assert.Equal(t, 2, b.Len(), "expected unknown update to not add a shape")
}

func TestBoard_ApplyDelete(t *testing.T) {
	b := NewBoard()
	b.ApplyCreate(types.Shape{Id: "s1", Type: types.ShapeRect})
	b.ApplyCreate(types.Shape{Id: "s2", Type: types.ShapeCircle})

	b.ApplyDelete("s1")
	assert.Equal(t, 1, b.Len(), "expected one shape after delete")
	assert.False(t, b.Contains("s1"), "expected s1 to be removed")
	assert.True(t, b.Contains("s2"), "expected s2 to remain")

	// delete for an unknown id is a no-op
	b.ApplyDelete("missing")
	assert.Equal(t, 1, b.Len(), "expected unknown delete to be a no-op")
}

func TestBoard_seedReflectsInPlaceUpdates(t *testing.T) {
	// history for a shape updated in place holds only the latest payload
	b := NewBoard()
	b.Seed([]string{
		`{"shape":{"id":"s1","type":"rect","width":50}}`,
		`{"shape":{"id":"s2","type":"rect","width":10}}`,
		`{"shape":{"id":"s1","type":"rect","width":75}}`,
	})

	assert.Equal(t, 2, b.Len(), "expected one entry per shape id")
	shapes := b.Shapes()
	assert.Equal(t, 75.0, shapes[0].Width, "expected latest payload for s1")
}

func TestBoard_ShapesReturnsCopy(t *testing.T) {
	b := NewBoard()
	b.ApplyCreate(types.Shape{Id: "s1", Type: types.ShapeRect, Width: 10})

	shapes := b.Shapes()
	shapes[0].Width = 99

	assert.Equal(t, 10.0, b.Shapes()[0].Width, "expected board state to be unaffected by mutations of the returned slice")
}
