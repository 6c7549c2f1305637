// File: mover/mover.go
//
// Package mover defines the movement-rule contract the spec treats as an
// external collaborator (spec.md §1: "move_pacman, move_ghost ... out of
// scope") and ships one concrete, deterministic implementation of it so
// the simulation is runnable end to end.
package mover

import "github.com/lguibr/pacarcade/board"

// Mover is the contract the pacman and ghost actors drive every tick.
// Implementations must be safe to call with the board's write lock
// already held by the caller (actors acquire it before invoking Mover).
type Mover interface {
	// MovePacman applies one command to the pacman at index and reports
	// the resulting transition.
	MovePacman(b *board.Board, index int, cmd board.Command) board.MoveResult
	// MoveGhost advances the ghost at index by one step and reports the
	// resulting transition (only DeadPacman or MoveContinue are
	// meaningful for a ghost). cmd is the ghost's next scripted move, or
	// CommandNone when the ghost carries no move list and the
	// implementation must compute one itself.
	MoveGhost(b *board.Board, index int, cmd board.Command) board.MoveResult
}
