// Package state owns the top level game simulation: all stages, the player
// bookkeeping around characters, the authoritative tick loop and the
// prediction tick, plus snapshot build and reconciliation.
package state

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/oomph-ac/teesim/game/character"
	"github.com/oomph-ac/teesim/game/collision"
	"github.com/oomph-ac/teesim/game/events"
	"github.com/oomph-ac/teesim/game/stage"
	"github.com/oomph-ac/teesim/game/types"
	"github.com/oomph-ac/teesim/utils"
)

// MonotonicTickOffset is added on top of the game tick for the monotonic
// tick a snapshot carries. A full day of ticks of headroom means a freshly
// started client can never produce a monotonic tick that trips the
// staleness guard of a long-running server.
const MonotonicTickOffset types.TickType = types.TicksPerSecond * 60 * 60 * 24

// NoCharKind classifies a player that has no character right now.
type NoCharKind uint8

const (
	NoCharSpectator NoCharKind = iota
	// NoCharDead counts down to the respawn.
	NoCharDead
	// NoCharUnknown is a locally known player the last snapshot did not
	// mention; the next snapshot sorts it into a real bucket.
	NoCharUnknown
)

// Player is a player that owns a live character. The character id equals
// the player id.
type Player struct {
	ID      types.EntityID
	StageID types.EntityID
}

// NoCharPlayer is a player without a character.
type NoCharPlayer struct {
	ID          types.EntityID
	Kind        NoCharKind
	RespawnIn   types.TickCooldown
	LastStageID types.EntityID
	Score       int64
}

// GameState is the root simulation object.
type GameState struct {
	log *logrus.Entry

	Collision *collision.Collision
	IDGen     types.IDGenerator

	Stages   *orderedmap.OrderedMap[types.EntityID, *stage.Stage]
	Stage0ID types.EntityID

	Players       *orderedmap.OrderedMap[types.EntityID, *Player]
	NoCharPlayers *orderedmap.OrderedMap[types.EntityID, *NoCharPlayer]

	GameTick types.TickType
	Sided    bool

	lastSnapMonotonic types.TickType
	events            []events.StageEvent
}

// New creates a game state with stage 0 already set up over the given map.
func New(log *logrus.Logger, coll *collision.Collision, sided bool) *GameState {
	gs := &GameState{
		log:           logrus.NewEntry(log),
		Collision:     coll,
		Stages:        orderedmap.NewOrderedMap[types.EntityID, *stage.Stage](),
		Players:       orderedmap.NewOrderedMap[types.EntityID, *Player](),
		NoCharPlayers: orderedmap.NewOrderedMap[types.EntityID, *NoCharPlayer](),
		Sided:         sided,
	}
	gs.Stage0ID = gs.AddStage("", [3]uint8{})
	return gs
}

// MonotonicTick returns the offset tick carried by snapshots.
func (gs *GameState) MonotonicTick() types.TickType {
	return MonotonicTickOffset + gs.GameTick
}

// AddStage creates a new stage and returns its id.
func (gs *GameState) AddStage(name string, color [3]uint8) types.EntityID {
	id := gs.IDGen.NextID()
	st := stage.New(gs.log, id, name, color, gs.Collision, &gs.IDGen, gs.Sided)
	gs.Stages.Set(id, st)
	gs.log.WithField("stage", id).Info("stage created")
	return id
}

// GetStage resolves a stage id.
func (gs *GameState) GetStage(id types.EntityID) (*stage.Stage, bool) {
	st, ok := gs.Stages.Get(id)
	return st, ok
}

// evalSide picks the side with fewer characters in the stage.
func evalSide(st *stage.Stage) types.MatchSide {
	var red, blue int
	for el := st.World.Characters.Front(); el != nil; el = el.Next() {
		if !el.Value.HasSide {
			continue
		}
		if el.Value.Side == types.SideRed {
			red++
		} else {
			blue++
		}
	}
	if blue < red {
		return types.SideBlue
	}
	return types.SideRed
}

// AddCharToStage spawns a character for playerID in the given stage,
// falling back to stage 0 if the stage is gone. Sided matches auto-assign
// the emptier side when none is given.
func (gs *GameState) AddCharToStage(playerID, stageID types.EntityID, hasSide bool, side types.MatchSide, score int64) *character.Character {
	st, ok := gs.Stages.Get(stageID)
	if !ok {
		stageID = gs.Stage0ID
		st, ok = gs.Stages.Get(stageID)
		if !ok {
			return nil
		}
	}

	if gs.Sided && !hasSide {
		hasSide = true
		side = evalSide(st)
	}

	pos := st.World.GetSpawnPos(hasSide, side)
	ch := st.World.AddCharacter(playerID, pos)
	ch.HasSide = hasSide
	ch.Side = side
	ch.Score = score
	if hasSide {
		gs.log.WithField("player", playerID).WithField("side", side).Debug("character joined side")
	}

	gs.NoCharPlayers.Delete(playerID)
	gs.Players.Set(playerID, &Player{ID: playerID, StageID: stageID})
	return ch
}

// PlayerJoin mints a player id and spawns its character in stage 0.
func (gs *GameState) PlayerJoin() (types.EntityID, *character.Character) {
	id := gs.IDGen.NextID()
	ch := gs.AddCharToStage(id, gs.Stage0ID, false, types.SideRed, 0)
	return id, ch
}

// PlayerDrop removes a player and its character entirely.
func (gs *GameState) PlayerDrop(id types.EntityID) {
	if p, ok := gs.Players.Get(id); ok {
		if st, ok := gs.Stages.Get(p.StageID); ok {
			st.World.RemoveCharacter(id)
		}
		gs.Players.Delete(id)
	}
	gs.NoCharPlayers.Delete(id)
}

// PlayerSpectate kills the player's character and parks the player in the
// spectator bucket.
func (gs *GameState) PlayerSpectate(id types.EntityID) {
	p, ok := gs.Players.Get(id)
	if !ok {
		return
	}
	var score int64
	if st, ok := gs.Stages.Get(p.StageID); ok {
		if ch, alive := st.World.GetChar(id); alive {
			score = ch.Score
		}
		st.World.RemoveCharacter(id)
	}
	gs.Players.Delete(id)
	gs.NoCharPlayers.Set(id, &NoCharPlayer{
		ID:          id,
		Kind:        NoCharSpectator,
		LastStageID: p.StageID,
		Score:       score,
	})
}

// SetPlayerInput installs a new input for the player's character.
func (gs *GameState) SetPlayerInput(id types.EntityID, inp types.CharacterInput, diff types.ConsumableInput) bool {
	p, ok := gs.Players.Get(id)
	if !ok {
		return false
	}
	st, ok := gs.Stages.Get(p.StageID)
	if !ok {
		return false
	}
	ch, ok := st.World.GetChar(id)
	if !ok {
		return false
	}
	ch.SetInput(inp, diff)
	return true
}

// Tick advances the authoritative simulation by one step.
func (gs *GameState) Tick() {
	gs.GameTick++
	for el := gs.Stages.Front(); el != nil; el = el.Next() {
		el.Value.Tick(gs.GameTick, false)
	}

	mark := len(gs.events)
	for el := gs.Stages.Front(); el != nil; el = el.Next() {
		el.Value.DrainEvents(&gs.events)
	}
	gs.handleEvents(gs.events[mark:])

	gs.playersTick()
}

// PredTick simulates the next tick without committing it: no events, no
// removals, no tick advance. Reconciling against the next snapshot undoes
// everything a prediction got wrong.
func (gs *GameState) PredTick() {
	for el := gs.Stages.Front(); el != nil; el = el.Next() {
		el.Value.Tick(gs.GameTick+1, true)
	}
}

// handleEvents moves despawned players into the dead bucket.
func (gs *GameState) handleEvents(evs []events.StageEvent) {
	for _, ev := range evs {
		despawn, ok := ev.Ev.(events.CharacterDespawn)
		if !ok {
			continue
		}
		p, isPlayer := gs.Players.Get(ev.Owner)
		if !isPlayer {
			continue
		}
		gs.Players.Delete(ev.Owner)
		gs.NoCharPlayers.Set(ev.Owner, &NoCharPlayer{
			ID:          ev.Owner,
			Kind:        NoCharDead,
			RespawnIn:   types.TickCooldown(character.RespawnDelay()),
			LastStageID: p.StageID,
			Score:       despawn.Score,
		})
	}
}

// playersTick counts down dead players and respawns the expired ones.
func (gs *GameState) playersTick() {
	respawn := utils.GetIDList()
	for el := gs.NoCharPlayers.Front(); el != nil; el = el.Next() {
		ncp := el.Value
		if ncp.Kind != NoCharDead {
			continue
		}
		if ncp.RespawnIn.Tick() {
			*respawn = append(*respawn, el.Key)
		}
	}
	for _, id := range *respawn {
		ncp, ok := gs.NoCharPlayers.Get(id)
		if !ok {
			continue
		}
		gs.AddCharToStage(id, ncp.LastStageID, false, types.SideRed, ncp.Score)
	}
	utils.PutIDList(respawn)
}

// DrainEvents moves this tick's accumulated stage events into out.
func (gs *GameState) DrainEvents(out *[]events.StageEvent) {
	*out = append(*out, gs.events...)
	gs.events = gs.events[:0]
}

// CharacterRenderInfo is the per-character data a renderer needs for one
// frame, extrapolated into the current tick by intraTick in [0,1).
type CharacterRenderInfo struct {
	ID      types.EntityID
	StageID types.EntityID

	Pos mgl32.Vec2
	Vel mgl32.Vec2

	HasHook bool
	HookPos mgl32.Vec2

	HasAirJump bool

	Health       int32
	Armor        int32
	ActiveWeapon types.WeaponType
	Score        int64
}

// CollectCharactersRenderInfo appends render info for every character in
// every stage. Hook positions of player hooks follow the hooked character.
func (gs *GameState) CollectCharactersRenderInfo(intraTick float32, out *[]CharacterRenderInfo) {
	for sel := gs.Stages.Front(); sel != nil; sel = sel.Next() {
		st := sel.Value
		for el := st.World.Characters.Front(); el != nil; el = el.Next() {
			ch := el.Value
			info := CharacterRenderInfo{
				ID:           ch.ID,
				StageID:      st.ID,
				Pos:          ch.Pos.Pos().Add(ch.Core.Vel.Mul(intraTick)),
				Vel:          ch.Core.Vel,
				HasAirJump:   ch.Core.Jumped&2 == 0,
				Health:       ch.Health,
				Armor:        ch.Armor,
				ActiveWeapon: ch.ActiveWeapon,
				Score:        ch.Score,
			}
			if ch.Hook.IsActive() {
				info.HasHook = true
				info.HookPos = ch.Hook.Pos
				if hooked, ok := st.World.Hooked.GetHooked(ch.ID); ok {
					if other, alive := st.World.GetChar(hooked); alive {
						info.HookPos = other.Pos.Pos().Add(other.Core.Vel.Mul(intraTick))
					}
				}
			}
			*out = append(*out, info)
		}
	}
}
