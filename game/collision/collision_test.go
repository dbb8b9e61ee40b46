package collision

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

var testRows = []string{
	"############",
	"#          #",
	"#          #",
	"#   d      #",
	"#          #",
	"############",
}

func TestParseTiles(t *testing.T) {
	w, h, tiles := ParseTiles(testRows)
	if w != 12 || h != 6 {
		t.Fatalf("parsed %dx%d, want 12x6", w, h)
	}
	if tiles[0] != TileSolid {
		t.Fatalf("corner tile = %d, want solid", tiles[0])
	}
	if tiles[1*w+1] != TileAir {
		t.Fatalf("interior tile = %d, want air", tiles[1*w+1])
	}
	if tiles[3*w+4] != TileDeath {
		t.Fatalf("death tile = %d, want death", tiles[3*w+4])
	}
}

func TestEntityTilesFilteredFromPhysics(t *testing.T) {
	c := NewFromRows([]string{
		"    ",
		" h  ",
		"####",
	})
	if c.EntityTile(1, 1) != EntityHealth {
		t.Fatalf("EntityTile(1,1) = %d, want health entity", c.EntityTile(1, 1))
	}
	// entity tiles never block movement
	if c.IsSolid(1*32+16, 1*32+16) {
		t.Fatalf("entity tile reported solid")
	}
}

func TestSolidityQueries(t *testing.T) {
	c := NewFromRows(testRows)
	if !c.IsSolid(16, 16) {
		t.Fatalf("border tile not solid")
	}
	if c.IsSolid(48, 48) {
		t.Fatalf("interior tile solid")
	}
	if !c.IsDeath(4*32+16, 3*32+16) {
		t.Fatalf("death tile not reported")
	}
	if c.IsDeath(48, 48) {
		t.Fatalf("air tile reported as death")
	}
}

func TestMoveBoxStopsOnFloor(t *testing.T) {
	c := NewFromRows(testRows)

	pos := mgl32.Vec2{48, 100}
	vel := mgl32.Vec2{0, 50}
	c.MoveBox(&pos, &vel, 28, 28, 0)

	if vel.Y() != 0 {
		t.Fatalf("vertical velocity kept after floor hit: %v", vel)
	}
	// the box rests with its lower edge just above the floor row at y=160
	if pos.Y() < 140 || pos.Y() > 146 {
		t.Fatalf("box rests at %v, want just above the floor", pos)
	}
	if pos.X() != 48 {
		t.Fatalf("x drifted to %v", pos.X())
	}
}

func TestIntersectLine(t *testing.T) {
	c := NewFromRows(testRows)

	var col, before mgl32.Vec2
	tile := c.IntersectLine(mgl32.Vec2{48, 48}, mgl32.Vec2{48, 400}, &col, &before)
	if tile != TileSolid {
		t.Fatalf("hit tile = %d, want solid", tile)
	}
	if col.Y() < 155 || col.Y() > 165 {
		t.Fatalf("hit position %v, want near the floor at y=160", col)
	}
	if before.Y() >= col.Y() {
		t.Fatalf("before position %v not in front of hit %v", before, col)
	}

	tile = c.IntersectLine(mgl32.Vec2{48, 48}, mgl32.Vec2{100, 48}, &col, &before)
	if tile != TileAir {
		t.Fatalf("free segment reported hit %d", tile)
	}
	if col != (mgl32.Vec2{100, 48}) {
		t.Fatalf("free segment end = %v", col)
	}
}

func TestMovePointBounce(t *testing.T) {
	c := NewFromRows(testRows)

	pos := mgl32.Vec2{48, 150}
	vel := mgl32.Vec2{0, 20}
	bounces := 0
	c.MovePoint(&pos, &vel, 1.0, &bounces)

	if bounces != 1 {
		t.Fatalf("bounces = %d, want 1", bounces)
	}
	if vel.Y() != -20 {
		t.Fatalf("velocity after bounce = %v, want inverted", vel)
	}
	if pos != (mgl32.Vec2{48, 150}) {
		t.Fatalf("position moved into the wall: %v", pos)
	}
}

func TestIntersectLineTeleHook(t *testing.T) {
	c := NewFromRows(testRows)
	c.SetTeleHook(5, 3, 1, mgl32.Vec2{100, 100})

	var col, before mgl32.Vec2
	var teleNr int32
	tile := c.IntersectLineTeleHook(mgl32.Vec2{5*32 + 16, 40}, mgl32.Vec2{5*32 + 16, 150}, &col, &before, &teleNr)
	if tile != TileTeleInHook {
		t.Fatalf("hit = %d, want tele-in hook", tile)
	}
	if teleNr != 1 {
		t.Fatalf("tele number = %d, want 1", teleNr)
	}
	out, ok := c.TeleHookOut(teleNr)
	if !ok || out != (mgl32.Vec2{100, 100}) {
		t.Fatalf("tele out = %v ok=%v", out, ok)
	}
}

func TestOutsidePlayfield(t *testing.T) {
	c := NewFromRows(testRows)
	if c.OutsidePlayfield(mgl32.Vec2{48, 48}) {
		t.Fatalf("interior position outside playfield")
	}
	if !c.OutsidePlayfield(mgl32.Vec2{-300, 48}) {
		t.Fatalf("far left position not outside playfield")
	}
	if !c.OutsidePlayfield(mgl32.Vec2{48, float32(6*32) + 300}) {
		t.Fatalf("far below position not outside playfield")
	}
}
