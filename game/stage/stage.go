// Package stage groups one world with its match bookkeeping. A game state
// can run several stages side by side; each ticks independently.
package stage

import (
	"github.com/sirupsen/logrus"

	"github.com/oomph-ac/teesim/game/collision"
	"github.com/oomph-ac/teesim/game/events"
	"github.com/oomph-ac/teesim/game/types"
	"github.com/oomph-ac/teesim/game/world"
)

// Stage is one concurrently running game world plus its match state.
type Stage struct {
	ID    types.EntityID
	Name  string
	Color [3]uint8

	World *world.World
	Match *Match

	events []events.StageEvent
}

// New creates a stage over the given map.
func New(log *logrus.Entry, id types.EntityID, name string, color [3]uint8, coll *collision.Collision, idGen *types.IDGenerator, sided bool) *Stage {
	slog := log.WithField("stage", name)
	return &Stage{
		ID:    id,
		Name:  name,
		Color: color,
		World: world.New(slog, coll, idGen),
		Match: NewMatch(slog, sided),
	}
}

// Tick advances the stage by one step. Paused stages do not simulate.
// Authoritative ticks feed kill events into the match and run the round
// reset once the game-over screen expires.
func (s *Stage) Tick(curTick types.TickType, isPrediction bool) {
	if s.Match.State == MatchPaused {
		return
	}

	s.World.Tick(curTick, isPrediction)
	if isPrediction {
		return
	}

	worldEvents := make([]events.WorldEvent, 0, 8)
	s.World.DrainEvents(&worldEvents)
	for _, wev := range worldEvents {
		if despawn, ok := wev.Ev.(events.CharacterDespawn); ok {
			if despawn.HasKiller && despawn.KillerID != wev.Owner {
				if killer, alive := s.World.GetChar(despawn.KillerID); alive {
					s.Match.HandleKill(killer, curTick)
				}
			}
		}
		s.events = append(s.events, events.StageEvent{StageID: s.ID, WorldEvent: wev})
	}

	if s.Match.roundResetDue(curTick) {
		s.resetRound()
	}
}

// resetRound kills every character so the embedding state respawns the
// players into a fresh round. Scores are zeroed before the kill so the
// respawn does not carry them over.
func (s *Stage) resetRound() {
	for el := s.World.Characters.Front(); el != nil; el = el.Next() {
		el.Value.Score = 0
		el.Value.Die(0, false, el.Value.ActiveWeapon)
	}
	s.Match.resetRound()
}

// DrainEvents moves the stage's accumulated events into out.
func (s *Stage) DrainEvents(out *[]events.StageEvent) {
	*out = append(*out, s.events...)
	s.events = s.events[:0]
}
