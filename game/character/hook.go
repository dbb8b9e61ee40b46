package character

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/oomph-ac/teesim/game/types"
	"github.com/oomph-ac/teesim/omath"
)

// HookKind is the top level of the hook state: no hook out, a hook in
// flight or attached, or a spent hook waiting for the key release.
type HookKind uint8

const (
	HookNone HookKind = iota
	HookActive
	HookWaitsForRelease
)

// HookState is the inner state while the hook is active. Retracting steps
// through RetractStart..RetractEnd one state per tick.
type HookState uint8

const (
	RetractStart HookState = iota
	retractMid
	RetractEnd
	HookFlying
	HookGrabbed
)

// Hook is a character's grappling hook. Pos/Dir/TeleBase/Tick/State are
// only meaningful while Kind == HookActive. The hooked character is a weak
// link by id, re-resolved every tick through the owning collection.
type Hook struct {
	Kind HookKind

	Pos      mgl32.Vec2
	Dir      mgl32.Vec2
	TeleBase mgl32.Vec2
	Tick     types.TickType
	State    HookState

	// NewHook marks a hook re-launched out of a hook teleport; its range
	// is then measured from TeleBase instead of the character position.
	NewHook bool
}

// IsActive reports whether a hook is out (flying, grabbed or retracting).
func (h *Hook) IsActive() bool { return h.Kind == HookActive }

// Quantize rounds the hook fields through the network encoding resolution:
// positions to whole units, the direction to 1/256 steps.
func (h *Hook) Quantize() {
	if h.Kind != HookActive {
		return
	}
	h.Pos = omath.RoundVec(h.Pos)
	h.TeleBase = omath.RoundVec(h.TeleBase)
	h.Dir = mgl32.Vec2{
		float32(omath.Round32(h.Dir.X()*256.0)) / 256.0,
		float32(omath.Round32(h.Dir.Y()*256.0)) / 256.0,
	}
}

// HookedCharacters tracks which character holds which other character on
// its hook, with a back reference table so a despawning character can
// release every hook attached to it in one pass.
type HookedCharacters struct {
	hooks    map[types.EntityID]types.EntityID
	hookedBy map[types.EntityID]*orderedmap.OrderedMap[types.EntityID, struct{}]
}

// NewHookedCharacters creates an empty relation.
func NewHookedCharacters() *HookedCharacters {
	return &HookedCharacters{
		hooks:    map[types.EntityID]types.EntityID{},
		hookedBy: map[types.EntityID]*orderedmap.OrderedMap[types.EntityID, struct{}]{},
	}
}

// AddOrSet records that hooker now holds hooked, replacing any previous
// target.
func (h *HookedCharacters) AddOrSet(hooker, hooked types.EntityID) {
	h.Remove(hooker)
	h.hooks[hooker] = hooked
	set, ok := h.hookedBy[hooked]
	if !ok {
		set = orderedmap.NewOrderedMap[types.EntityID, struct{}]()
		h.hookedBy[hooked] = set
	}
	set.Set(hooker, struct{}{})
}

// Remove drops hooker's hold, if any.
func (h *HookedCharacters) Remove(hooker types.EntityID) {
	hooked, ok := h.hooks[hooker]
	if !ok {
		return
	}
	delete(h.hooks, hooker)
	if set, ok := h.hookedBy[hooked]; ok {
		set.Delete(hooker)
		if set.Len() == 0 {
			delete(h.hookedBy, hooked)
		}
	}
}

// Clear drops every hold; used when rebuilding the relation from a
// snapshot.
func (h *HookedCharacters) Clear() {
	for k := range h.hooks {
		delete(h.hooks, k)
	}
	for k := range h.hookedBy {
		delete(h.hookedBy, k)
	}
}

// GetHooked returns the id hooker currently holds.
func (h *HookedCharacters) GetHooked(hooker types.EntityID) (types.EntityID, bool) {
	id, ok := h.hooks[hooker]
	return id, ok
}

// HookersOf appends every character currently holding hooked to out, in
// attach order.
func (h *HookedCharacters) HookersOf(hooked types.EntityID, out *[]types.EntityID) {
	set, ok := h.hookedBy[hooked]
	if !ok {
		return
	}
	for el := set.Front(); el != nil; el = el.Next() {
		*out = append(*out, el.Key)
	}
}

// ReleaseTarget drops every hold on hooked and returns the hookers that
// lost their grip.
func (h *HookedCharacters) ReleaseTarget(hooked types.EntityID, out *[]types.EntityID) {
	h.HookersOf(hooked, out)
	for _, hooker := range *out {
		delete(h.hooks, hooker)
	}
	delete(h.hookedBy, hooked)
}
