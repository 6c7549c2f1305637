// File: session/pacman_actor.go
package session

import (
	"time"

	"github.com/lguibr/pacarcade/board"
	"github.com/lguibr/pacarcade/mover"
)

// runPacmanActor implements spec.md §4.7: it loops until the board is
// stopped, each iteration choosing either the next scripted move or the
// pending command posted by the dispatch loop, and interprets the
// mover's verdict into the board's victory/game_over/stop flags.
func runPacmanActor(b *board.Board, index int, slot *commandSlot, mv mover.Mover, minTempo time.Duration, done chan<- struct{}) {
	defer close(done)

	for {
		p := b.Pacmans[index]
		time.Sleep(tempoFor(b, p.Passo, minTempo))

		b.Lock()
		if b.Stop || b.GameOver || b.Victory || !p.Alive {
			b.Unlock()
			return
		}

		var cmd board.Command
		if p.NMoves() > 0 {
			cmd = p.NextScriptedMove()
		} else {
			raw := slot.Take()
			if raw == 0 {
				b.Unlock()
				continue
			}
			if board.Command(raw) == board.CommandQuit {
				b.GameOver = true
				b.Stop = true
				b.Unlock()
				return
			}
			cmd = board.Command(raw)
		}

		switch mv.MovePacman(b, index, cmd) {
		case board.ReachedPortal:
			b.Victory = true
			b.Stop = true
		case board.DeadPacman:
			b.GameOver = true
			b.Stop = true
		default:
			if !b.Victory && !b.GameOver && !b.AnyDotsRemain() {
				b.Victory = true
				b.Stop = true
			}
		}
		b.Unlock()
	}
}

// tempoFor computes tempo*(1+passo), floored at minTempo so a
// misconfigured or zero level tempo can't spin an actor hot.
func tempoFor(b *board.Board, passo int, minTempo time.Duration) time.Duration {
	d := time.Duration(b.TempoMS) * time.Millisecond * time.Duration(1+passo)
	if d < minTempo {
		return minTempo
	}
	return d
}
