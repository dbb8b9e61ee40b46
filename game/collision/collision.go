// Package collision implements the tile-grid queries the physics core is
// built on: point/box solidity tests, swept box movement and line sweeps,
// plus per-position tuning lookup through tune zones.
package collision

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/oomph-ac/teesim/game/tuning"
	"github.com/oomph-ac/teesim/omath"
)

// Tile is a game-layer tile index. Values up to TileNoLaser affect physics;
// the entity range (EntitySpawn and up) only matters at world init.
type Tile uint8

const (
	TileAir     Tile = 0
	TileSolid   Tile = 1
	TileDeath   Tile = 2
	TileNoHook  Tile = 3
	TileNoLaser Tile = 4

	// TileTeleInHook never appears in the grid itself; it is the hit code
	// IntersectLineTeleHook reports when the sweep crosses a hook teleport.
	TileTeleInHook Tile = 10
)

// Entity tile indices of the game layer, scanned once at world init.
const (
	entityOffset Tile = 191

	EntitySpawn         = entityOffset + 1
	EntitySpawnRed      = entityOffset + 2
	EntitySpawnBlue     = entityOffset + 3
	EntityFlagStandRed  = entityOffset + 4
	EntityFlagStandBlue = entityOffset + 5
	EntityArmor         = entityOffset + 6
	EntityHealth        = entityOffset + 7
	EntityWeaponShotgun = entityOffset + 8
	EntityWeaponGrenade = entityOffset + 9
	EntityPowerupNinja  = entityOffset + 10
	EntityWeaponLaser   = entityOffset + 11
)

const tileSize = 32

// Collision owns the physics tile grid of one map.
type Collision struct {
	tiles     []Tile
	tuneTiles []uint8
	width     int32
	height    int32

	tuneZones []tuning.Tunings

	// hook teleports: tile index -> tele number, tele number -> out pos
	teleHookNumbers map[int32]int32
	teleHookOuts    map[int32]mgl32.Vec2
}

// New builds a Collision over a w*h tile slice. tuneTiles may be nil; when
// given it must have the same length as tiles and index into tuneZones.
func New(width, height int32, tiles []Tile, tuneTiles []uint8, tuneZones []tuning.Tunings) *Collision {
	if len(tuneZones) == 0 {
		tuneZones = []tuning.Tunings{tuning.Default()}
	}
	if tuneTiles == nil {
		tuneTiles = make([]uint8, len(tiles))
	}
	return &Collision{
		tiles:           tiles,
		tuneTiles:       tuneTiles,
		width:           width,
		height:          height,
		tuneZones:       tuneZones,
		teleHookNumbers: map[int32]int32{},
		teleHookOuts:    map[int32]mgl32.Vec2{},
	}
}

// ParseTiles builds a tile grid from an ASCII map description, one string
// per row. Legend: ' ' and '.' air, '#' solid, 'd' death, 'n' no-hook,
// 's' spawn, 'r'/'b' sided spawns, 'R'/'B' flag stands, 'h' heart,
// 'a' armor, 'S' shotgun, 'G' grenade, 'L' laser, 'J' ninja.
func ParseTiles(rows []string) (width, height int32, tiles []Tile) {
	height = int32(len(rows))
	for _, row := range rows {
		if int32(len(row)) > width {
			width = int32(len(row))
		}
	}
	tiles = make([]Tile, width*height)
	for y, row := range rows {
		for x, c := range []byte(row) {
			var t Tile
			switch c {
			case '#':
				t = TileSolid
			case 'd':
				t = TileDeath
			case 'n':
				t = TileNoHook
			case 's':
				t = EntitySpawn
			case 'r':
				t = EntitySpawnRed
			case 'b':
				t = EntitySpawnBlue
			case 'R':
				t = EntityFlagStandRed
			case 'B':
				t = EntityFlagStandBlue
			case 'h':
				t = EntityHealth
			case 'a':
				t = EntityArmor
			case 'S':
				t = EntityWeaponShotgun
			case 'G':
				t = EntityWeaponGrenade
			case 'L':
				t = EntityWeaponLaser
			case 'J':
				t = EntityPowerupNinja
			}
			tiles[int32(y)*width+int32(x)] = t
		}
	}
	return width, height, tiles
}

// NewFromRows builds a Collision from an ASCII map description with default
// tunings.
func NewFromRows(rows []string) *Collision {
	w, h, tiles := ParseTiles(rows)
	return New(w, h, tiles, nil, nil)
}

// SetTeleHook registers a hook teleport at the given tile coordinate with
// its out position in world units.
func (c *Collision) SetTeleHook(tx, ty int32, number int32, out mgl32.Vec2) {
	c.teleHookNumbers[ty*c.width+tx] = number
	c.teleHookOuts[number] = out
}

// TeleHookOut resolves a tele number to its out position.
func (c *Collision) TeleHookOut(number int32) (mgl32.Vec2, bool) {
	out, ok := c.teleHookOuts[number]
	return out, ok
}

// Width returns the playfield width in tiles.
func (c *Collision) Width() int32 { return c.width }

// Height returns the playfield height in tiles.
func (c *Collision) Height() int32 { return c.height }

func clamp32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// GetTile returns the physics tile at the world position x,y, or TileAir
// for anything outside the physics range.
func (c *Collision) GetTile(x, y int32) Tile {
	nx := clamp32(x/tileSize, 0, c.width-1)
	ny := clamp32(y/tileSize, 0, c.height-1)
	t := c.tiles[ny*c.width+nx]
	if t >= TileSolid && t <= TileNoLaser {
		return t
	}
	return TileAir
}

// IsSolid reports whether the world position x,y blocks movement.
func (c *Collision) IsSolid(x, y int32) bool {
	t := c.GetTile(x, y)
	return t == TileSolid || t == TileNoHook
}

// IsDeath reports whether the world position lies in a death tile.
func (c *Collision) IsDeath(x, y float32) bool {
	return c.GetTile(omath.Round32(x), omath.Round32(y)) == TileDeath
}

// CheckPoint reports solidity at integer world coordinates.
func (c *Collision) CheckPoint(x, y int32) bool {
	return c.IsSolid(x, y)
}

// CheckPointF reports solidity at float world coordinates, rounded the same
// way the quantized physics rounds.
func (c *Collision) CheckPointF(x, y float32) bool {
	return c.IsSolid(omath.Round32(x), omath.Round32(y))
}

// TestBox reports whether any corner of the box centered at x,y collides.
func (c *Collision) TestBox(x, y, sizeX, sizeY int32) bool {
	sx := sizeX / 2
	sy := sizeY / 2
	return c.CheckPoint(x-sx, y-sy) ||
		c.CheckPoint(x+sx, y-sy) ||
		c.CheckPoint(x-sx, y+sy) ||
		c.CheckPoint(x+sx, y+sy)
}

// MovePoint advances pos by vel, bouncing off solid tiles with the given
// elasticity. bounces receives the number of axes that bounced.
func (c *Collision) MovePoint(pos, vel *mgl32.Vec2, elasticity float32, bounces *int) {
	*bounces = 0

	p := *pos
	v := *vel
	pv := p.Add(v)
	if c.CheckPointF(pv.X(), pv.Y()) {
		affected := 0
		if c.CheckPointF(p.X()+v.X(), p.Y()) {
			vel[0] *= -elasticity
			*bounces++
			affected += 2
		}
		if c.CheckPointF(p.X(), p.Y()+v.Y()) {
			vel[1] *= -elasticity
			*bounces++
			affected++
		}
		if affected == 0 {
			vel[0] *= -elasticity
			vel[1] *= -elasticity
		}
	} else {
		*pos = pv
	}
}

// MoveBox sweeps a box of the given size along vel, resolving tile
// collisions axis by axis in whole-unit steps. pos and vel are mutated in
// place; vel keeps only the elasticity-scaled remainder on blocked axes.
func (c *Collision) MoveBox(pos, vel *mgl32.Vec2, sizeX, sizeY int32, elasticity float32) {
	p := *pos
	v := *vel

	dist := omath.Length(v)
	maxSteps := int32(dist)

	if dist > 0.00001 {
		lastPosX := omath.Round32(p.X())
		lastPosY := omath.Round32(p.Y())
		fraction := 1.0 / float32(maxSteps+1)
		for i := int32(0); i <= maxSteps; i++ {
			// Obstacles already hit may have zeroed the speed; no
			// point sweeping the remaining distance.
			if v == (mgl32.Vec2{}) {
				break
			}

			newPos := p.Add(v.Mul(fraction))

			// The fraction can be small enough that the addition is
			// a no-op in float32.
			if newPos == p {
				break
			}

			newPosX := omath.Round32(newPos.X())
			newPosY := omath.Round32(newPos.Y())

			if c.TestBox(newPosX, newPosY, sizeX, sizeY) {
				hits := 0

				if c.TestBox(lastPosX, newPosY, sizeX, sizeY) {
					newPos[1] = p.Y()
					newPosY = lastPosY
					v[1] *= -elasticity
					hits++
				}

				if c.TestBox(newPosX, lastPosY, sizeX, sizeY) {
					newPos[0] = p.X()
					newPosX = lastPosX
					v[0] *= -elasticity
					hits++
				}

				// neither axis test hit: a literal corner case
				if hits == 0 {
					newPos[1] = p.Y()
					v[1] *= -elasticity
					newPos[0] = p.X()
					v[0] *= -elasticity
				}
			}

			lastPosX = newPosX
			lastPosY = newPosY
			p = newPos
		}
	}

	*pos = p
	*vel = v
}

func (c *Collision) pureMapIndex(x, y float32) int32 {
	nx := clamp32(omath.Round32(x)/tileSize, 0, c.width-1)
	ny := clamp32(omath.Round32(y)/tileSize, 0, c.height-1)
	return ny*c.width + nx
}

func (c *Collision) isTeleportHook(index int32) int32 {
	return c.teleHookNumbers[index]
}

func (c *Collision) collisionAt(x, y float32) Tile {
	return c.GetTile(omath.Round32(x), omath.Round32(y))
}

// IntersectLine walks the segment p0..p1 in unit steps and reports the
// first solid tile hit, filling the hit position and the last free position
// before it. Returns TileAir when the segment is free.
func (c *Collision) IntersectLine(p0, p1 mgl32.Vec2, outCollision, outBefore *mgl32.Vec2) Tile {
	d := omath.Distance(p0, p1)
	end := int32(d + 1)
	last := p0
	for i := int32(0); i <= end; i++ {
		a := float32(i) / float32(end)
		pos := omath.Mix(p0, p1, a)
		ix := omath.Round32(pos.X())
		iy := omath.Round32(pos.Y())

		if c.CheckPointF(float32(ix), float32(iy)) {
			*outCollision = pos
			*outBefore = last
			return c.collisionAt(float32(ix), float32(iy))
		}

		last = pos
	}
	*outCollision = p1
	*outBefore = p1
	return TileAir
}

// IntersectLineTeleHook is the hook sweep: like IntersectLine but it also
// stops on hook-teleport tiles, reporting TileTeleInHook and the tele
// number.
func (c *Collision) IntersectLineTeleHook(p0, p1 mgl32.Vec2, outCollision, outBefore *mgl32.Vec2, teleNr *int32) Tile {
	d := omath.Distance(p0, p1)
	end := int32(d + 1)
	last := p0
	for i := int32(0); i <= end; i++ {
		a := float32(i) / float32(end)
		pos := omath.Mix(p0, p1, a)
		ix := omath.Round32(pos.X())
		iy := omath.Round32(pos.Y())

		index := c.pureMapIndex(pos.X(), pos.Y())
		*teleNr = c.isTeleportHook(index)
		if *teleNr > 0 {
			*outCollision = pos
			*outBefore = last
			return TileTeleInHook
		}

		if c.CheckPointF(float32(ix), float32(iy)) {
			*outCollision = pos
			*outBefore = last
			return c.collisionAt(float32(ix), float32(iy))
		}

		last = pos
	}
	*outCollision = p1
	*outBefore = p1
	return TileAir
}

// IntersectLineTeleWeapon is the projectile sweep. Weapon teleports are not
// populated yet, so this currently reduces to the plain line sweep with the
// same stepping.
func (c *Collision) IntersectLineTeleWeapon(p0, p1 mgl32.Vec2, outCollision, outBefore *mgl32.Vec2, teleNr *int32) Tile {
	*teleNr = 0
	return c.IntersectLine(p0, p1, outCollision, outBefore)
}

// EntityTile returns the raw game-layer tile at a tile coordinate, including
// the entity range GetTile filters out. Used once at world init to place
// spawns, pickups and flag stands.
func (c *Collision) EntityTile(tx, ty int32) Tile {
	if tx < 0 || tx >= c.width || ty < 0 || ty >= c.height {
		return TileAir
	}
	return c.tiles[ty*c.width+tx]
}

// OutsidePlayfield reports whether pos is far enough beyond the map bounds
// that an entity there should be destroyed.
func (c *Collision) OutsidePlayfield(pos mgl32.Vec2) bool {
	const margin = 200.0
	return pos.X() < -margin || pos.X() > float32(c.width*tileSize)+margin ||
		pos.Y() < -margin || pos.Y() > float32(c.height*tileSize)+margin
}

// GetTuneAt returns the tuning constants in effect at a world position.
func (c *Collision) GetTuneAt(pos mgl32.Vec2) *tuning.Tunings {
	n := c.tuneTiles[c.pureMapIndex(pos.X(), pos.Y())]
	if int(n) >= len(c.tuneZones) {
		n = 0
	}
	return &c.tuneZones[n]
}
