package state

import (
	"sync"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/oomph-ac/teesim/game/character"
	"github.com/oomph-ac/teesim/game/stage"
	"github.com/oomph-ac/teesim/game/types"
	"github.com/oomph-ac/teesim/game/world"
	"github.com/oomph-ac/teesim/oerror"
	"github.com/oomph-ac/teesim/snapshot"
	"github.com/oomph-ac/teesim/utils"
	"github.com/oomph-ac/teesim/worker"
)

// BuildSnapshot serializes the full game state. Stages are independent
// worlds, so each one is mirrored on the worker pool in parallel.
func (gs *GameState) BuildSnapshot() *snapshot.Snapshot {
	snap := &snapshot.Snapshot{
		GameTick:      uint64(gs.GameTick),
		MonotonicTick: uint64(gs.MonotonicTick()),
		Stages:        make([]snapshot.Stage, gs.Stages.Len()),
	}

	var wg sync.WaitGroup
	idx := 0
	for el := gs.Stages.Front(); el != nil; el = el.Next() {
		st := el.Value
		out := &snap.Stages[idx]
		idx++
		wg.Add(1)
		worker.Submit(func() {
			defer wg.Done()
			buildStageSnapshot(st, out)
		})
	}
	wg.Wait()

	for el := gs.Players.Front(); el != nil; el = el.Next() {
		snap.Players = append(snap.Players, snapshot.Player{
			ID:      uint64(el.Key),
			StageID: uint64(el.Value.StageID),
		})
	}
	for el := gs.NoCharPlayers.Front(); el != nil; el = el.Next() {
		ncp := el.Value
		snap.NoCharPlayers = append(snap.NoCharPlayers, snapshot.NoCharPlayer{
			ID:          uint64(el.Key),
			Kind:        uint8(ncp.Kind),
			RespawnIn:   uint64(ncp.RespawnIn),
			LastStageID: uint64(ncp.LastStageID),
			Score:       ncp.Score,
		})
	}
	return snap
}

// BuildFor builds a snapshot addressed to one client, marking the player
// ids that client owns as local.
func (gs *GameState) BuildFor(recipient types.EntityID) *snapshot.Snapshot {
	snap := gs.BuildSnapshot()
	if _, ok := gs.Players.Get(recipient); ok {
		snap.LocalPlayers = append(snap.LocalPlayers, uint64(recipient))
	} else if _, ok := gs.NoCharPlayers.Get(recipient); ok {
		snap.LocalPlayers = append(snap.LocalPlayers, uint64(recipient))
	}
	return snap
}

func buildStageSnapshot(st *stage.Stage, out *snapshot.Stage) {
	w := st.World

	out.ID = uint64(st.ID)
	out.Name = st.Name
	out.Color = st.Color
	out.Match = snapshot.Match{
		Sided:        st.Match.Sided,
		State:        uint8(st.Match.State),
		WinnerIsSide: st.Match.Winner.IsSide,
		WinnerSide:   uint8(st.Match.Winner.Side),
		WinnerPlayer: uint64(st.Match.Winner.Player),
		GameOverTick: uint64(st.Match.GameOverTick),
		SideScores:   st.Match.SideScores,
		ScoreLimit:   st.Match.ScoreLimit,
	}

	for el := w.Characters.Front(); el != nil; el = el.Next() {
		ch := el.Value
		sc := snapshot.Character{
			ID:              uint64(ch.ID),
			Health:          ch.Health,
			Armor:           ch.Armor,
			ActiveWeapon:    uint8(ch.ActiveWeapon),
			InputDir:        ch.Input.State.Dir,
			InputCursor:     ch.Input.Cursor,
			InputJump:       ch.Input.State.Jump,
			InputHook:       ch.Input.State.Hook,
			InputFire:       ch.Input.State.Fire,
			AttackRecoil:    uint64(ch.AttackRecoil),
			RecoilStartTick: uint64(ch.RecoilStartTick),
			Score:           ch.Score,
			Side:            uint8(ch.Side),
			HasSide:         ch.HasSide,
			Emote:           ch.Emote,
			EmoteStop:       uint64(ch.EmoteStopTick),
		}
		character.PhysicsWrite(ch.Pos.Pos(), &ch.Core, &ch.Hook, &sc.Core)
		for wel := ch.ReusableCore.Weapons.Front(); wel != nil; wel = wel.Next() {
			sc.Weapons = append(sc.Weapons, snapshot.Weapon{
				Ty:        uint8(wel.Key),
				HasAmmo:   wel.Value.HasAmmo,
				Ammo:      wel.Value.Ammo,
				RegenTick: uint64(wel.Value.NextRegenTick),
			})
		}
		if hooked, ok := w.Hooked.GetHooked(ch.ID); ok {
			sc.HookedChar = uint64(hooked)
			sc.HasHookedChar = true
		}
		out.Characters = append(out.Characters, sc)
	}

	for el := w.Projectiles.Front(); el != nil; el = el.Next() {
		p := el.Value
		out.Projectiles = append(out.Projectiles, snapshot.Projectile{
			ID:        uint64(p.ID),
			Owner:     uint64(p.Owner),
			StartPos:  p.StartPos,
			Direction: p.Direction,
			StartTick: uint64(p.StartTick),
			LifeSpan:  p.LifeSpan,
			Weapon:    uint8(p.Weapon),
		})
	}
	for el := w.Lasers.Front(); el != nil; el = el.Next() {
		l := el.Value
		out.Lasers = append(out.Lasers, snapshot.Laser{
			ID:       uint64(l.ID),
			Owner:    uint64(l.Owner),
			From:     l.From,
			Pos:      l.Pos,
			Dir:      l.Dir,
			Energy:   l.Energy,
			Bounces:  l.Bounces,
			EvalTick: uint64(l.EvalTick),
		})
	}
	for el := w.Pickups.Front(); el != nil; el = el.Next() {
		p := el.Value
		out.Pickups = append(out.Pickups, snapshot.Pickup{
			ID:     uint64(p.ID),
			Pos:    p.Pos,
			Ty:     uint8(p.Ty),
			Weapon: uint8(p.Weapon),
		})
	}
	for el := w.Flags.Front(); el != nil; el = el.Next() {
		f := el.Value
		out.Flags = append(out.Flags, snapshot.Flag{
			ID:         uint64(f.ID),
			Ty:         uint8(f.Ty),
			Pos:        f.Pos,
			StandPos:   f.StandPos,
			Carrier:    uint64(f.CarrierID),
			HasCarrier: f.HasCarrier,
		})
	}
	for _, obj := range w.InactiveObjects() {
		out.InactiveObjects = append(out.InactiveObjects, snapshot.InactiveObject{
			Pos:       obj.Pos,
			Ty:        uint8(obj.Ty),
			Weapon:    uint8(obj.Weapon),
			RespawnIn: uint64(obj.RespawnIn),
		})
	}
}

// ApplySnapshot reconciles the local state to match snap exactly: entities
// missing locally are created, entities the snapshot does not mention are
// dropped, everything else is overwritten in place and reordered to the
// snapshot's collection order. Applying the same snapshot twice is a no-op;
// snapshots older than the last applied one are rejected.
func (gs *GameState) ApplySnapshot(snap *snapshot.Snapshot) error {
	if types.TickType(snap.MonotonicTick) < gs.lastSnapMonotonic {
		gs.log.WithField("monotonic_tick", snap.MonotonicTick).Warn("rejected stale snapshot")
		return oerror.New("stale snapshot: monotonic tick %d behind %d", snap.MonotonicTick, gs.lastSnapMonotonic)
	}
	gs.lastSnapMonotonic = types.TickType(snap.MonotonicTick)
	gs.GameTick = types.TickType(snap.GameTick)

	member := map[types.EntityID]struct{}{}
	for i := range snap.Stages {
		ss := &snap.Stages[i]
		id := types.EntityID(ss.ID)
		gs.IDGen.Observe(id)
		member[id] = struct{}{}

		st, ok := gs.Stages.Get(id)
		if !ok {
			st = stage.New(gs.log, id, ss.Name, ss.Color, gs.Collision, &gs.IDGen, ss.Match.Sided)
		}
		gs.applyStage(st, ss)

		gs.Stages.Delete(id)
		gs.Stages.Set(id, st)
	}

	gone := utils.GetIDList()
	for el := gs.Stages.Front(); el != nil; el = el.Next() {
		if _, ok := member[el.Key]; !ok {
			*gone = append(*gone, el.Key)
		}
	}
	for _, id := range *gone {
		gs.Stages.Delete(id)
	}
	utils.PutIDList(gone)

	if _, ok := gs.Stages.Get(gs.Stage0ID); !ok && gs.Stages.Len() > 0 {
		gs.Stage0ID = gs.Stages.Front().Key
	}

	gs.applyPlayers(snap)
	return nil
}

func (gs *GameState) applyStage(st *stage.Stage, ss *snapshot.Stage) {
	st.Name = ss.Name
	st.Color = ss.Color
	st.Match.Sided = ss.Match.Sided
	st.Match.State = stage.MatchState(ss.Match.State)
	st.Match.Winner = stage.MatchWinner{
		IsSide: ss.Match.WinnerIsSide,
		Side:   types.MatchSide(ss.Match.WinnerSide),
		Player: types.EntityID(ss.Match.WinnerPlayer),
	}
	st.Match.GameOverTick = types.TickType(ss.Match.GameOverTick)
	st.Match.SideScores = ss.Match.SideScores
	st.Match.ScoreLimit = ss.Match.ScoreLimit

	w := st.World
	gs.applyCharacters(w, ss)
	gs.applyProjectiles(w, ss)
	gs.applyLasers(w, ss)
	gs.applyPickups(w, ss)
	gs.applyFlags(w, ss)

	objs := make([]world.InactiveObject, 0, len(ss.InactiveObjects))
	for _, so := range ss.InactiveObjects {
		objs = append(objs, world.InactiveObject{
			Pos:       so.Pos,
			Ty:        types.PickupType(so.Ty),
			Weapon:    types.WeaponType(so.Weapon),
			RespawnIn: types.TickCooldown(so.RespawnIn),
		})
	}
	w.SetInactiveObjects(objs)
}

func (gs *GameState) applyCharacters(w *world.World, ss *snapshot.Stage) {
	member := map[types.EntityID]struct{}{}
	for i := range ss.Characters {
		sc := &ss.Characters[i]
		id := types.EntityID(sc.ID)
		gs.IDGen.Observe(id)
		member[id] = struct{}{}

		ch, ok := w.GetChar(id)
		if !ok {
			ch = w.AddCharacter(id, mgl32.Vec2{float32(sc.Core.PosX), float32(sc.Core.PosY)})
		}

		var pos mgl32.Vec2
		character.PhysicsRead(&sc.Core, &pos, &ch.Core, &ch.Hook)
		ch.Pos.Move(pos)

		ch.Health = sc.Health
		ch.Armor = sc.Armor
		ch.ActiveWeapon = types.WeaponType(sc.ActiveWeapon)
		ch.ReusableCore.Reset()
		for _, sw := range sc.Weapons {
			ch.ReusableCore.Weapons.Set(types.WeaponType(sw.Ty), character.Weapon{
				HasAmmo:       sw.HasAmmo,
				Ammo:          sw.Ammo,
				NextRegenTick: types.TickCooldown(sw.RegenTick),
			})
		}
		ch.Input.State = types.InputState{
			Dir:  sc.InputDir,
			Jump: sc.InputJump,
			Hook: sc.InputHook,
			Fire: sc.InputFire,
		}
		ch.Input.Cursor = sc.InputCursor
		ch.AttackRecoil = types.TickCooldown(sc.AttackRecoil)
		ch.RecoilStartTick = types.TickType(sc.RecoilStartTick)
		ch.Score = sc.Score
		ch.Side = types.MatchSide(sc.Side)
		ch.HasSide = sc.HasSide
		ch.Emote = sc.Emote
		ch.EmoteStopTick = types.TickType(sc.EmoteStop)
		ch.Dead = false
		ch.Events = ch.Events[:0]

		w.Characters.Delete(id)
		w.Characters.Set(id, ch)
	}

	gone := utils.GetIDList()
	for el := w.Characters.Front(); el != nil; el = el.Next() {
		if _, ok := member[el.Key]; !ok {
			*gone = append(*gone, el.Key)
		}
	}
	for _, id := range *gone {
		w.RemoveCharacter(id)
	}
	utils.PutIDList(gone)

	w.Hooked.Clear()
	for i := range ss.Characters {
		sc := &ss.Characters[i]
		if sc.HasHookedChar {
			w.Hooked.AddOrSet(types.EntityID(sc.ID), types.EntityID(sc.HookedChar))
		}
	}
}

func (gs *GameState) applyProjectiles(w *world.World, ss *snapshot.Stage) {
	member := map[types.EntityID]struct{}{}
	for i := range ss.Projectiles {
		sp := &ss.Projectiles[i]
		id := types.EntityID(sp.ID)
		gs.IDGen.Observe(id)
		member[id] = struct{}{}

		p, ok := w.Projectiles.Get(id)
		if !ok {
			p = world.AcquireProjectile()
			p.ID = id
		}
		p.Owner = types.EntityID(sp.Owner)
		p.StartPos = sp.StartPos
		p.Direction = sp.Direction
		p.StartTick = types.TickType(sp.StartTick)
		p.LifeSpan = sp.LifeSpan
		p.Weapon = types.WeaponType(sp.Weapon)
		p.Destroyed = false
		p.Events = p.Events[:0]

		w.Projectiles.Delete(id)
		w.Projectiles.Set(id, p)
	}
	dropMissing(w.Projectiles, member)
}

func (gs *GameState) applyLasers(w *world.World, ss *snapshot.Stage) {
	member := map[types.EntityID]struct{}{}
	for i := range ss.Lasers {
		sl := &ss.Lasers[i]
		id := types.EntityID(sl.ID)
		gs.IDGen.Observe(id)
		member[id] = struct{}{}

		l, ok := w.Lasers.Get(id)
		if !ok {
			l = world.AcquireLaser()
			l.ID = id
		}
		l.Owner = types.EntityID(sl.Owner)
		l.From = sl.From
		l.Pos = sl.Pos
		l.Dir = sl.Dir
		l.Energy = sl.Energy
		l.Bounces = sl.Bounces
		l.EvalTick = types.TickType(sl.EvalTick)
		l.Destroyed = false
		l.Events = l.Events[:0]

		w.Lasers.Delete(id)
		w.Lasers.Set(id, l)
	}
	dropMissing(w.Lasers, member)
}

func (gs *GameState) applyPickups(w *world.World, ss *snapshot.Stage) {
	member := map[types.EntityID]struct{}{}
	for i := range ss.Pickups {
		sp := &ss.Pickups[i]
		id := types.EntityID(sp.ID)
		gs.IDGen.Observe(id)
		member[id] = struct{}{}

		p, ok := w.Pickups.Get(id)
		if !ok {
			p = world.AcquirePickup()
			p.ID = id
		}
		p.Pos = sp.Pos
		p.Ty = types.PickupType(sp.Ty)
		p.Weapon = types.WeaponType(sp.Weapon)
		p.Destroyed = false
		p.Events = p.Events[:0]

		w.Pickups.Delete(id)
		w.Pickups.Set(id, p)
	}
	dropMissing(w.Pickups, member)
}

func (gs *GameState) applyFlags(w *world.World, ss *snapshot.Stage) {
	member := map[types.EntityID]struct{}{}
	for i := range ss.Flags {
		sf := &ss.Flags[i]
		id := types.EntityID(sf.ID)
		gs.IDGen.Observe(id)
		member[id] = struct{}{}

		f, ok := w.Flags.Get(id)
		if !ok {
			f = &world.Flag{ID: id}
		}
		f.Ty = types.FlagType(sf.Ty)
		f.Pos = sf.Pos
		f.StandPos = sf.StandPos
		f.CarrierID = types.EntityID(sf.Carrier)
		f.HasCarrier = sf.HasCarrier
		f.Events = f.Events[:0]

		w.Flags.Delete(id)
		w.Flags.Set(id, f)
	}
	dropMissing(w.Flags, member)
}

// dropMissing removes every entry whose key is not in member.
func dropMissing[V any](m *orderedmap.OrderedMap[types.EntityID, V], member map[types.EntityID]struct{}) {
	gone := utils.GetIDList()
	for el := m.Front(); el != nil; el = el.Next() {
		if _, ok := member[el.Key]; !ok {
			*gone = append(*gone, el.Key)
		}
	}
	for _, id := range *gone {
		m.Delete(id)
	}
	utils.PutIDList(gone)
}

// applyPlayers rebuilds the player buckets from the snapshot. Locally known
// players the snapshot does not mention stay around as unknown players
// until a later snapshot classifies them.
func (gs *GameState) applyPlayers(snap *snapshot.Snapshot) {
	known := map[types.EntityID]struct{}{}
	leftovers := utils.GetIDList()
	for el := gs.Players.Front(); el != nil; el = el.Next() {
		*leftovers = append(*leftovers, el.Key)
	}
	for el := gs.NoCharPlayers.Front(); el != nil; el = el.Next() {
		*leftovers = append(*leftovers, el.Key)
	}

	newPlayers := orderedmap.NewOrderedMap[types.EntityID, *Player]()
	for _, sp := range snap.Players {
		id := types.EntityID(sp.ID)
		gs.IDGen.Observe(id)
		known[id] = struct{}{}
		newPlayers.Set(id, &Player{ID: id, StageID: types.EntityID(sp.StageID)})
	}

	newNoChar := orderedmap.NewOrderedMap[types.EntityID, *NoCharPlayer]()
	for _, sn := range snap.NoCharPlayers {
		id := types.EntityID(sn.ID)
		gs.IDGen.Observe(id)
		known[id] = struct{}{}
		newNoChar.Set(id, &NoCharPlayer{
			ID:          id,
			Kind:        NoCharKind(sn.Kind),
			RespawnIn:   types.TickCooldown(sn.RespawnIn),
			LastStageID: types.EntityID(sn.LastStageID),
			Score:       sn.Score,
		})
	}

	for _, id := range *leftovers {
		if _, ok := known[id]; ok {
			continue
		}
		newNoChar.Set(id, &NoCharPlayer{ID: id, Kind: NoCharUnknown})
	}
	utils.PutIDList(leftovers)

	gs.Players = newPlayers
	gs.NoCharPlayers = newNoChar
}
