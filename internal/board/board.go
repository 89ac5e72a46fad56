// Package board implements the client-side shape reconciliation contract:
// an ordered collection of shapes seeded from room history and kept in sync
// by applying broadcast create/update/delete events. Renderers repaint the
// full collection after every mutation.
package board

import (
	"encoding/json"
	"fmt"

	"github.com/drawnet/drawboard/internal/types"
)

// shapePayload is the envelope embedded as a JSON string in chat messages
// that carry a drawing primitive rather than plain text.
type shapePayload struct {
	Shape *types.Shape `json:"shape"`
}

// ParseShapePayload decodes a chat message of the form {"shape":{...}}.
func ParseShapePayload(message string) (types.Shape, error) {
	var payload shapePayload
	if err := json.Unmarshal([]byte(message), &payload); err != nil {
		return types.Shape{}, fmt.Errorf("parse shape payload: %w", err)
	}
	if payload.Shape == nil || payload.Shape.Id == "" {
		return types.Shape{}, fmt.Errorf("message does not contain a shape")
	}
	return *payload.Shape, nil
}

// EncodeShapePayload wraps a shape in the wire envelope used by chat and
// update_shape messages.
func EncodeShapePayload(shape types.Shape) (string, error) {
	b, err := json.Marshal(shapePayload{Shape: &shape})
	if err != nil {
		return "", fmt.Errorf("encode shape payload: %w", err)
	}
	return string(b), nil
}

// ExtractShapeId returns the shape id embedded in a chat message, or the
// empty string for plain text chat. Used by the persistence layer to index
// records by shape id at write time.
func ExtractShapeId(message string) string {
	shape, err := ParseShapePayload(message)
	if err != nil {
		return ""
	}
	return shape.Id
}

// Board holds the reconciled shape collection for a single room. It is not
// safe for concurrent use; callers apply events from a single goroutine, the
// same ordering the relay guarantees per room.
type Board struct {
	shapes []types.Shape
}

func NewBoard() *Board {
	return &Board{}
}

// Seed initializes the collection from persisted room history. Messages that
// do not parse as shape payloads (plain chat) are skipped. Applying history
// in order means a record updated in place yields its latest payload.
func (b *Board) Seed(messages []string) {
	for _, msg := range messages {
		shape, err := ParseShapePayload(msg)
		if err != nil {
			continue
		}
		b.ApplyCreate(shape)
	}
}

// ApplyCreate appends the shape. A second create with an existing id is
// treated as an idempotent upsert, replacing the earlier shape in place.
func (b *Board) ApplyCreate(shape types.Shape) {
	if i := b.indexOf(shape.Id); i >= 0 {
		b.shapes[i] = shape
		return
	}
	b.shapes = append(b.shapes, shape)
}

// ApplyUpdate replaces the shape with a matching id in place. Updates for
// unknown ids are a no-op, not an error.
func (b *Board) ApplyUpdate(shape types.Shape) {
	if i := b.indexOf(shape.Id); i >= 0 {
		b.shapes[i] = shape
	}
}

// ApplyDelete removes the shape with the given id. Unknown ids are a no-op.
func (b *Board) ApplyDelete(id string) {
	if i := b.indexOf(id); i >= 0 {
		b.shapes = append(b.shapes[:i], b.shapes[i+1:]...)
	}
}

// Shapes returns a copy of the reconciled collection in draw order.
func (b *Board) Shapes() []types.Shape {
	shapes := make([]types.Shape, len(b.shapes))
	copy(shapes, b.shapes)
	return shapes
}

// Contains reports whether a shape with the given id is on the board.
func (b *Board) Contains(id string) bool {
	return b.indexOf(id) >= 0
}

func (b *Board) Len() int {
	return len(b.shapes)
}

func (b *Board) indexOf(id string) int {
	for i, s := range b.shapes {
		if s.Id == id {
			return i
		}
	}
	return -1
}
