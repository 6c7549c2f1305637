// File: board/board.go
//
// Package board implements the shared mutable game board described by
// spec.md §3/§4.3: a reader/writer-locked grid of cells plus pacman and
// ghost actor state, serialized to the wire in one framed write.
package board

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/lguibr/pacarcade/protocol"
)

// Command is a single-byte instruction consumed by the movement engine:
// an uppercased directional key, 'Q' to quit, or 0 for "no command".
type Command byte

const (
	CommandNone  Command = 0
	CommandUp    Command = 'W'
	CommandLeft  Command = 'A'
	CommandDown  Command = 'S'
	CommandRight Command = 'D'
	CommandQuit  Command = 'Q'
)

// MoveResult is the outcome of one movement-engine invocation, mirroring
// the original C server's integer return codes.
type MoveResult int

const (
	MoveContinue MoveResult = iota
	ReachedPortal
	DeadPacman
)

// Position is an integer grid coordinate.
type Position struct {
	X, Y int
}

// Pacman is one pacman actor on the board. The spec allows at most one
// in practice, but the contract (and this type) does not assume it.
type Pacman struct {
	Pos         Position
	Alive       bool
	Passo       int // step modifier: effective period is tempo*(1+Passo)
	Moves       []Command
	CurrentMove int
}

// NMoves reports the length of a pre-recorded move script, 0 if none.
func (p *Pacman) NMoves() int { return len(p.Moves) }

// NextScriptedMove returns the next move in the script and advances the
// cursor. Callers must only call this when NMoves() > 0.
func (p *Pacman) NextScriptedMove() Command {
	cmd := p.Moves[p.CurrentMove%len(p.Moves)]
	p.CurrentMove++
	return cmd
}

// Ghost is one ghost actor on the board.
type Ghost struct {
	Pos         Position
	Origin      Position // respawn point when eaten
	Charged     bool
	Passo       int
	Moves       []Command
	CurrentMove int
}

func (g *Ghost) NMoves() int { return len(g.Moves) }

func (g *Ghost) NextScriptedMove() Command {
	cmd := g.Moves[g.CurrentMove%len(g.Moves)]
	g.CurrentMove++
	return cmd
}

// Board is the full mutable state of one level in progress, guarded by
// an embedded reader/writer lock per spec.md §3's "state_lock" contract:
// every coherent multi-field read takes RLock, every mutation takes Lock.
type Board struct {
	sync.RWMutex

	Width, Height int
	TempoMS       int
	LevelName     string // bookkeeping only; never serialized to the wire

	Cells   []Cell // flat, row-major, length Width*Height
	Pacmans []*Pacman
	Ghosts  []*Ghost

	AccumulatedPoints int
	Victory           bool
	GameOver          bool
	Stop              bool // cooperative cancellation, tested by actors under this same lock
}

// New builds an empty board of the given dimensions with every cell
// defaulted to TileEmpty. Callers (the level loader) populate Cells,
// Pacmans, and Ghosts before handing the board to a session.
func New(width, height, tempoMS int) *Board {
	cells := make([]Cell, width*height)
	for i := range cells {
		cells[i] = NewCell(TileEmpty)
	}
	return &Board{
		Width:   width,
		Height:  height,
		TempoMS: tempoMS,
		Cells:   cells,
	}
}

// InBounds reports whether (x, y) is a valid cell coordinate.
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Height
}

func (b *Board) index(x, y int) int { return y*b.Width + x }

// CellAt returns a pointer to the cell at (x, y). Callers must hold at
// least the read lock; mutating the returned cell requires the write
// lock. Panics if (x, y) is out of bounds — callers are expected to
// check InBounds first, mirroring the original's unchecked array access.
func (b *Board) CellAt(x, y int) *Cell {
	if !b.InBounds(x, y) {
		panic(fmt.Sprintf("board: cell (%d,%d) out of bounds for %dx%d board", x, y, b.Width, b.Height))
	}
	return &b.Cells[b.index(x, y)]
}

// AnyDotsRemain reports whether any cell still carries a dot. Callers
// must hold at least the read lock.
func (b *Board) AnyDotsRemain() bool {
	for i := range b.Cells {
		if b.Cells[i].HasDot {
			return true
		}
	}
	return false
}

// GhostAt returns the index of a ghost occupying (x, y), or -1.
// Callers must hold at least the read lock.
func (b *Board) GhostAt(x, y int) int {
	for i, g := range b.Ghosts {
		if g.Pos.X == x && g.Pos.Y == y {
			return i
		}
	}
	return -1
}

// PacmanAt returns the index of a live pacman occupying (x, y), or -1.
// Callers must hold at least the read lock.
func (b *Board) PacmanAt(x, y int) int {
	for i, p := range b.Pacmans {
		if p.Alive && p.Pos.X == x && p.Pos.Y == y {
			return i
		}
	}
	return -1
}

// renderCell applies the fixed priority order of spec.md §4.1: charged
// ghost, then non-charged ghost, then live pacman, then the static tile.
func (b *Board) renderCell(x, y int) byte {
	if gi := b.GhostAt(x, y); gi != -1 {
		if b.Ghosts[gi].Charged {
			return 'G'
		}
		return 'M'
	}
	if b.PacmanAt(x, y) != -1 {
		return 'C'
	}
	cell := b.CellAt(x, y)
	if cell.Content == TileDot && !cell.HasDot {
		return byte(TileEmpty)
	}
	return byte(cell.Content)
}

// Snapshot captures the fields a tick's observers need after the board
// lock is released: the values the dispatch loop relays to the
// scoreboard and uses to decide whether to keep ticking.
type Snapshot struct {
	AccumulatedPoints int
	Victory           bool
	GameOver          bool
}

// Serialize renders the full board update message (opcode, header, cell
// grid) and writes it to w in a single call, per spec.md §4.3. It holds
// the read lock across the read, the encode and the write, matching the
// contract that every field the serializer touches is observed under
// the lock. A write failure is returned unclassified; callers test it
// with IsBrokenPipe to implement the broken-pipe termination contract.
func (b *Board) Serialize(w io.Writer) (Snapshot, error) {
	b.RLock()
	defer b.RUnlock()

	cells := make([]byte, b.Width*b.Height)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			cells[b.index(x, y)] = b.renderCell(x, y)
		}
	}

	snap := Snapshot{
		AccumulatedPoints: b.AccumulatedPoints,
		Victory:           b.Victory,
		GameOver:          b.GameOver,
	}

	header := protocol.BoardHeader{
		Width:             int32(b.Width),
		Height:            int32(b.Height),
		Tempo:             int32(b.TempoMS),
		Victory:           boolToInt32(b.Victory),
		GameOver:          boolToInt32(b.GameOver),
		AccumulatedPoints: int32(b.AccumulatedPoints),
	}

	frame := protocol.EncodeBoard(header, cells)
	n, err := w.Write(frame)
	if err == nil && n != len(frame) {
		err = io.ErrShortWrite
	}
	return snap, err
}

// FinalSerialize writes one last board update with GameOver forced to
// the given value, used by the session runtime at level/session
// termination (spec.md §4.6 step 6) independent of the board's own
// GameOver flag (victory-with-more-levels sends GameOver=0 as a
// transition signal even though the board itself never set it).
func (b *Board) FinalSerialize(w io.Writer, gameOver bool) error {
	b.RLock()
	cells := make([]byte, b.Width*b.Height)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			cells[b.index(x, y)] = b.renderCell(x, y)
		}
	}
	header := protocol.BoardHeader{
		Width:             int32(b.Width),
		Height:            int32(b.Height),
		Tempo:             int32(b.TempoMS),
		Victory:           boolToInt32(b.Victory),
		GameOver:          boolToInt32(gameOver),
		AccumulatedPoints: int32(b.AccumulatedPoints),
	}
	b.RUnlock()

	frame := protocol.EncodeBoard(header, cells)
	n, err := w.Write(frame)
	if err == nil && n != len(frame) {
		err = io.ErrShortWrite
	}
	return err
}

func boolToInt32(v bool) int32 {
	if v {
		return 1
	}
	return 0
}

// RenderString returns a human-readable dump of the board, used by
// debug logging and tests; never sent on the wire.
func (b *Board) RenderString() string {
	b.RLock()
	defer b.RUnlock()
	var buf bytes.Buffer
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			buf.WriteByte(b.renderCell(x, y))
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}
