package stage

import (
	"io"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/oomph-ac/teesim/game/character"
	"github.com/oomph-ac/teesim/game/playfield"
	"github.com/oomph-ac/teesim/game/types"
)

func matchLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func matchChar(id types.EntityID) *character.Character {
	f := playfield.New(4, 4)
	return character.New(id, f, mgl32.Vec2{48, 48})
}

func TestMatchPauseResume(t *testing.T) {
	m := NewMatch(matchLog(), false)
	if m.State != MatchRunning {
		t.Fatalf("fresh match state = %d", m.State)
	}
	m.Pause()
	if m.State != MatchPaused {
		t.Fatalf("pause ignored")
	}
	// kills during the pause do not count
	ch := matchChar(1)
	m.HandleKill(ch, 10)
	if ch.Score != 0 {
		t.Fatalf("paused match credited a kill")
	}
	m.Resume()
	if m.State != MatchRunning {
		t.Fatalf("resume ignored")
	}
}

func TestMatchScoreLimitEndsRound(t *testing.T) {
	m := NewMatch(matchLog(), false)
	ch := matchChar(1)
	for i := 0; i < int(DefaultScoreLimit); i++ {
		m.HandleKill(ch, types.TickType(i+1))
	}
	if m.State != MatchGameOver {
		t.Fatalf("match state = %d after reaching the limit", m.State)
	}
	if m.Winner.IsSide || m.Winner.Player != 1 {
		t.Fatalf("winner = %+v, want player 1", m.Winner)
	}
	// further kills during game over are not credited
	m.HandleKill(ch, 100)
	if ch.Score != DefaultScoreLimit {
		t.Fatalf("score = %d, want %d", ch.Score, DefaultScoreLimit)
	}
	// pausing during game over is a no-op
	m.Pause()
	if m.State != MatchGameOver {
		t.Fatalf("pause interrupted game over")
	}
}

func TestMatchSidedScoring(t *testing.T) {
	m := NewMatch(matchLog(), true)
	red := matchChar(1)
	red.HasSide = true
	red.Side = types.SideRed
	blue := matchChar(2)
	blue.HasSide = true
	blue.Side = types.SideBlue

	m.HandleKill(red, 1)
	m.HandleKill(red, 2)
	m.HandleKill(blue, 3)
	if m.SideScores[types.SideRed] != 2 || m.SideScores[types.SideBlue] != 1 {
		t.Fatalf("side scores = %v", m.SideScores)
	}

	for i := 0; i < 3; i++ {
		m.HandleKill(red, types.TickType(4+i))
	}
	if m.State != MatchGameOver || !m.Winner.IsSide || m.Winner.Side != types.SideRed {
		t.Fatalf("sided win not detected: state=%d winner=%+v", m.State, m.Winner)
	}
}

func TestRoundResetTiming(t *testing.T) {
	m := NewMatch(matchLog(), false)
	ch := matchChar(1)
	for i := 0; i < int(DefaultScoreLimit); i++ {
		m.HandleKill(ch, 50)
	}
	if m.roundResetDue(51) {
		t.Fatalf("round reset due immediately after game over")
	}
	if !m.roundResetDue(50 + gameOverTicks) {
		t.Fatalf("round reset not due after the game-over screen")
	}
	m.resetRound()
	if m.State != MatchRunning || m.SideScores != [2]int64{} {
		t.Fatalf("reset incomplete: state=%d scores=%v", m.State, m.SideScores)
	}
	if m.Winner != (MatchWinner{}) {
		t.Fatalf("winner survived the reset: %+v", m.Winner)
	}
}
