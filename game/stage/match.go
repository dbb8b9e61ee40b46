package stage

import (
	"github.com/sirupsen/logrus"

	"github.com/oomph-ac/teesim/game/character"
	"github.com/oomph-ac/teesim/game/types"
)

// DefaultScoreLimit ends a round once a player or side reaches it.
const DefaultScoreLimit int64 = 5

// gameOverTicks is how long the game-over screen lasts before the round
// resets.
const gameOverTicks = types.TicksPerSecond * 4

// MatchState is the round state machine.
type MatchState uint8

const (
	MatchRunning MatchState = iota
	MatchPaused
	MatchGameOver
)

// MatchWinner names who took the round: a side in sided match types, a
// single player otherwise.
type MatchWinner struct {
	IsSide bool
	Side   types.MatchSide
	Player types.EntityID
}

// Match tracks scoring and the round lifecycle of one stage.
type Match struct {
	Sided      bool
	ScoreLimit int64

	State        MatchState
	Winner       MatchWinner
	GameOverTick types.TickType

	SideScores [2]int64

	log *logrus.Entry
}

// NewMatch creates a running match.
func NewMatch(log *logrus.Entry, sided bool) *Match {
	return &Match{
		Sided:      sided,
		ScoreLimit: DefaultScoreLimit,
		State:      MatchRunning,
		log:        log,
	}
}

// Pause freezes the stage; Resume unfreezes it. Both are no-ops during
// game over.
func (m *Match) Pause() {
	if m.State == MatchRunning {
		m.State = MatchPaused
	}
}

// Resume continues a paused match.
func (m *Match) Resume() {
	if m.State == MatchPaused {
		m.State = MatchRunning
	}
}

// HandleKill credits a kill to the killer and runs the win check.
func (m *Match) HandleKill(killer *character.Character, curTick types.TickType) {
	if m.State != MatchRunning {
		return
	}
	killer.Score++
	if m.Sided && killer.HasSide {
		m.SideScores[killer.Side]++
	}
	m.winCheck(killer, curTick)
}

func (m *Match) winCheck(ch *character.Character, curTick types.TickType) {
	if m.Sided && ch.HasSide {
		if m.SideScores[ch.Side] >= m.ScoreLimit {
			m.gameOver(MatchWinner{IsSide: true, Side: ch.Side}, curTick)
		}
		return
	}
	if ch.Score >= m.ScoreLimit {
		m.gameOver(MatchWinner{Player: ch.ID}, curTick)
	}
}

func (m *Match) gameOver(winner MatchWinner, curTick types.TickType) {
	m.State = MatchGameOver
	m.Winner = winner
	m.GameOverTick = curTick
	if winner.IsSide {
		m.log.WithField("side", winner.Side).Info("round over")
	} else {
		m.log.WithField("player", winner.Player).Info("round over")
	}
}

// roundResetDue reports whether the game-over screen has run its course.
func (m *Match) roundResetDue(curTick types.TickType) bool {
	return m.State == MatchGameOver && curTick >= m.GameOverTick+gameOverTicks
}

// resetRound clears all scoring and returns the match to running.
func (m *Match) resetRound() {
	m.State = MatchRunning
	m.Winner = MatchWinner{}
	m.GameOverTick = 0
	m.SideScores = [2]int64{}
}
