package playfield

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/oomph-ac/teesim/game/types"
)

func queryIDs(f *Playfield, pos mgl32.Vec2, radius float32) []types.EntityID {
	var out []types.EntityID
	f.ByRadius(pos, radius, &out)
	return out
}

func TestEnterAndQuery(t *testing.T) {
	f := New(10, 10)
	p := f.Enter(1, mgl32.Vec2{40, 40})

	got := queryIDs(f, mgl32.Vec2{40, 40}, 10)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("ByRadius = %v, want [1]", got)
	}
	if p.Pos() != (mgl32.Vec2{40, 40}) {
		t.Fatalf("Pos = %v", p.Pos())
	}

	// far away query misses
	if got := queryIDs(f, mgl32.Vec2{300, 300}, 10); len(got) != 0 {
		t.Fatalf("distant query found %v", got)
	}
}

func TestMoveRebuckets(t *testing.T) {
	f := New(10, 10)
	p := f.Enter(1, mgl32.Vec2{40, 40})

	p.Move(mgl32.Vec2{200, 40})
	if got := queryIDs(f, mgl32.Vec2{40, 40}, 10); len(got) != 0 {
		t.Fatalf("old bucket still holds %v", got)
	}
	if got := queryIDs(f, mgl32.Vec2{200, 40}, 10); len(got) != 1 || got[0] != 1 {
		t.Fatalf("new bucket query = %v, want [1]", got)
	}

	// movement within the same tile keeps the bucket
	p.Move(mgl32.Vec2{201, 41})
	if got := queryIDs(f, mgl32.Vec2{200, 40}, 10); len(got) != 1 {
		t.Fatalf("same-tile move lost the character: %v", got)
	}
}

func TestQueryOrderIsInsertionOrder(t *testing.T) {
	f := New(10, 10)
	f.Enter(3, mgl32.Vec2{40, 40})
	f.Enter(1, mgl32.Vec2{41, 41})
	f.Enter(2, mgl32.Vec2{42, 42})

	got := queryIDs(f, mgl32.Vec2{40, 40}, 5)
	want := []types.EntityID{3, 1, 2}
	if len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Fatalf("ByRadius order = %v, want %v", got, want)
	}
}

func TestLeave(t *testing.T) {
	f := New(10, 10)
	p := f.Enter(1, mgl32.Vec2{40, 40})
	p.Leave()
	if got := queryIDs(f, mgl32.Vec2{40, 40}, 10); len(got) != 0 {
		t.Fatalf("left character still indexed: %v", got)
	}
	// second leave is a no-op
	p.Leave()
}
