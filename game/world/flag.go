package world

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/oomph-ac/teesim/game/character"
	"github.com/oomph-ac/teesim/game/events"
	"github.com/oomph-ac/teesim/game/types"
	"github.com/oomph-ac/teesim/omath"
)

const flagGrabRadius float32 = 44.0

// Flag is a capture-the-flag flag. While carried it follows its carrier;
// when the carrier dies or leaves it returns straight to its stand.
type Flag struct {
	ID types.EntityID
	Ty types.FlagType

	Pos      mgl32.Vec2
	StandPos mgl32.Vec2

	CarrierID  types.EntityID
	HasCarrier bool

	Events []events.FlagEvent
}

func (f *Flag) pushEvent(ev events.FlagEvent) {
	f.Events = append(f.Events, ev)
}

// IsAtStand reports whether the flag sits untouched on its stand.
func (f *Flag) IsAtStand() bool {
	return !f.HasCarrier && f.Pos == f.StandPos
}

func (f *Flag) reset() {
	f.HasCarrier = false
	f.CarrierID = 0
	f.Pos = f.StandPos
}

func flagSide(ty types.FlagType) types.MatchSide {
	if ty == types.FlagRed {
		return types.SideRed
	}
	return types.SideBlue
}

// Tick follows the carrier, hands the flag to an enemy character standing
// on it, and detects captures against the own-side flag at its stand.
func (f *Flag) Tick(w *World, _ types.TickType) {
	if f.HasCarrier {
		carrier, ok := w.GetChar(f.CarrierID)
		if !ok || carrier.Dead {
			f.reset()
			f.pushEvent(events.FlagSound{Pos: f.Pos, Sound: events.SoundWeaponSpawn})
			return
		}
		f.Pos = carrier.Pos.Pos()

		// capture: the carrier reaches their own flag while it is home
		if home, ok := w.flagOfSide(carrier.Side); ok && home != f && home.IsAtStand() &&
			omath.Distance(f.Pos, home.Pos) < flagGrabRadius {
			f.pushEvent(events.FlagCapture{Pos: f.Pos, Ty: f.Ty, By: f.CarrierID})
			f.reset()
		}
		return
	}

	ids := w.charsByRadius(f.Pos, flagGrabRadius+character.PhysicalSize)
	for _, id := range *ids {
		ch, ok := w.GetChar(id)
		if !ok || ch.Dead || !ch.HasSide || ch.Side == flagSide(f.Ty) {
			continue
		}
		if omath.Distance(ch.Pos.Pos(), f.Pos) >= flagGrabRadius {
			continue
		}
		f.CarrierID = id
		f.HasCarrier = true
		f.pushEvent(events.FlagSound{Pos: f.Pos, Sound: events.SoundWeaponSpawn})
		break
	}
	w.putCharList(ids)
}
