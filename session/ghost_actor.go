// File: session/ghost_actor.go
package session

import (
	"time"

	"github.com/lguibr/pacarcade/board"
	"github.com/lguibr/pacarcade/mover"
)

// runGhostActor implements spec.md §4.8: one dedicated goroutine per
// ghost, pacing itself by the ghost's own step modifier and deferring to
// the ghost's scripted move list when it has one.
func runGhostActor(b *board.Board, index int, mv mover.Mover, minTempo time.Duration, done chan<- struct{}) {
	defer close(done)

	for {
		g := b.Ghosts[index]
		time.Sleep(tempoFor(b, g.Passo, minTempo))

		b.Lock()
		if b.Stop || b.GameOver || b.Victory {
			b.Unlock()
			return
		}

		cmd := board.CommandNone
		if g.NMoves() > 0 {
			cmd = g.NextScriptedMove()
		}

		if mv.MoveGhost(b, index, cmd) == board.DeadPacman {
			b.GameOver = true
			b.Stop = true
		}
		b.Unlock()
	}
}
