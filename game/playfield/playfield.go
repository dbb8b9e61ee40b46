// Package playfield keeps a tile-bucketed index of character positions so
// proximity queries cost O(nearby) instead of O(all characters).
package playfield

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/oomph-ac/teesim/assert"
	"github.com/oomph-ac/teesim/game/types"
	"github.com/oomph-ac/teesim/omath"
)

const tileSize = 32

// Playfield maps tile indices to the ordered set of character ids standing
// in that tile. Bucket membership is insertion ordered so radius queries
// iterate deterministically.
type Playfield struct {
	width   int32
	height  int32
	buckets map[int32]*orderedmap.OrderedMap[types.EntityID, struct{}]
}

// New creates a playfield for a width*height tile map.
func New(width, height int32) *Playfield {
	return &Playfield{
		width:   width,
		height:  height,
		buckets: map[int32]*orderedmap.OrderedMap[types.EntityID, struct{}]{},
	}
}

// Width returns the playfield width in tiles.
func (f *Playfield) Width() int32 { return f.width }

// Height returns the playfield height in tiles.
func (f *Playfield) Height() int32 { return f.height }

func clamp32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (f *Playfield) tileIndex(pos mgl32.Vec2) int32 {
	tx := clamp32(omath.Round32(pos.X())/tileSize, 0, f.width-1)
	ty := clamp32(omath.Round32(pos.Y())/tileSize, 0, f.height-1)
	return ty*f.width + tx
}

func (f *Playfield) add(index int32, id types.EntityID) {
	bucket, ok := f.buckets[index]
	if !ok {
		bucket = orderedmap.NewOrderedMap[types.EntityID, struct{}]()
		f.buckets[index] = bucket
	}
	bucket.Set(id, struct{}{})
}

func (f *Playfield) remove(index int32, id types.EntityID) {
	if bucket, ok := f.buckets[index]; ok {
		bucket.Delete(id)
		if bucket.Len() == 0 {
			delete(f.buckets, index)
		}
	}
}

// Enter registers a character at pos and hands out the position handle the
// character mutates for the rest of its lifetime.
func (f *Playfield) Enter(id types.EntityID, pos mgl32.Vec2) *CharacterPos {
	p := &CharacterPos{field: f, id: id, pos: pos, index: f.tileIndex(pos)}
	f.add(p.index, id)
	return p
}

// ByRadius appends the ids of all characters whose tile intersects the
// circle around pos to out, in row-major bucket order.
func (f *Playfield) ByRadius(pos mgl32.Vec2, radius float32, out *[]types.EntityID) {
	minX := clamp32(omath.Round32(pos.X()-radius)/tileSize, 0, f.width-1)
	maxX := clamp32(omath.Round32(pos.X()+radius)/tileSize, 0, f.width-1)
	minY := clamp32(omath.Round32(pos.Y()-radius)/tileSize, 0, f.height-1)
	maxY := clamp32(omath.Round32(pos.Y()+radius)/tileSize, 0, f.height-1)

	for ty := minY; ty <= maxY; ty++ {
		for tx := minX; tx <= maxX; tx++ {
			bucket, ok := f.buckets[ty*f.width+tx]
			if !ok {
				continue
			}
			for el := bucket.Front(); el != nil; el = el.Next() {
				*out = append(*out, el.Key)
			}
		}
	}
}

// CharacterPos is a character's live handle into the playfield. Moving
// through it keeps the index synchronized with the character position.
type CharacterPos struct {
	field *Playfield
	id    types.EntityID
	pos   mgl32.Vec2
	index int32
	left  bool
}

// Pos returns the current position.
func (p *CharacterPos) Pos() mgl32.Vec2 { return p.pos }

// ID returns the owning character id.
func (p *CharacterPos) ID() types.EntityID { return p.id }

// Move updates the position and rebuckets the character if it crossed a
// tile boundary. Must be called for every position change, including
// quantization, so queries always see post-move positions.
func (p *CharacterPos) Move(pos mgl32.Vec2) {
	assert.IsTrue(!p.left, "character %d moved after leaving the playfield", p.id)
	p.pos = pos
	index := p.field.tileIndex(pos)
	if index == p.index {
		return
	}
	p.field.remove(p.index, p.id)
	p.field.add(index, p.id)
	p.index = index
}

// Leave removes the character from the index. The handle is dead after.
func (p *CharacterPos) Leave() {
	if p.left {
		return
	}
	p.field.remove(p.index, p.id)
	p.left = true
}
