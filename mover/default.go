// File: mover/default.go
package mover

import "github.com/lguibr/pacarcade/board"

// PointsPerDot is awarded for consuming a dot.
const PointsPerDot = 10

// PointsPerGhostEaten is awarded for eating a charged ghost.
const PointsPerGhostEaten = 200

// Default is the reference Mover: four-directional pacman movement, a
// simple chase/flee ghost step, dot consumption, and portal/ghost
// collision handling. It is the mover every session runs unless a test
// substitutes a scripted one.
type Default struct{}

// NewDefault constructs the reference movement engine.
func NewDefault() *Default { return &Default{} }

func delta(cmd board.Command) (dx, dy int) {
	switch cmd {
	case board.CommandUp:
		return 0, -1
	case board.CommandDown:
		return 0, 1
	case board.CommandLeft:
		return -1, 0
	case board.CommandRight:
		return 1, 0
	default:
		return 0, 0
	}
}

// MovePacman implements Mover. Caller holds the board write lock.
func (d *Default) MovePacman(b *board.Board, index int, cmd board.Command) board.MoveResult {
	p := b.Pacmans[index]
	if !p.Alive {
		return board.MoveContinue
	}

	dx, dy := delta(cmd)
	nx, ny := p.Pos.X+dx, p.Pos.Y+dy
	if !b.InBounds(nx, ny) || b.CellAt(nx, ny).Content == board.TileWall {
		return board.MoveContinue
	}

	if gi := b.GhostAt(nx, ny); gi != -1 {
		ghost := b.Ghosts[gi]
		if ghost.Charged {
			b.AccumulatedPoints += PointsPerGhostEaten
			ghost.Pos = ghost.Origin
			ghost.Charged = false
		} else {
			p.Alive = false
			return board.DeadPacman
		}
	}

	p.Pos.X, p.Pos.Y = nx, ny

	cell := b.CellAt(nx, ny)
	if cell.HasDot {
		cell.HasDot = false
		b.AccumulatedPoints += PointsPerDot
	}
	if cell.HasPortal {
		return board.ReachedPortal
	}
	if !b.AnyDotsRemain() {
		return board.ReachedPortal
	}
	return board.MoveContinue
}

// MoveGhost implements Mover. Caller holds the board write lock.
func (d *Default) MoveGhost(b *board.Board, index int, cmd board.Command) board.MoveResult {
	g := b.Ghosts[index]

	dx, dy := 0, 0
	if cmd != board.CommandNone {
		dx, dy = delta(cmd)
	} else if len(b.Pacmans) > 0 {
		dx, dy = chaseOrFleeStep(g.Pos, b.Pacmans[0].Pos, g.Charged)
	}

	nx, ny := g.Pos.X+dx, g.Pos.Y+dy
	if !b.InBounds(nx, ny) || b.CellAt(nx, ny).Content == board.TileWall {
		return board.MoveContinue
	}
	g.Pos.X, g.Pos.Y = nx, ny

	if pi := b.PacmanAt(nx, ny); pi != -1 && !g.Charged {
		b.Pacmans[pi].Alive = false
		return board.DeadPacman
	}
	return board.MoveContinue
}

// chaseOrFleeStep picks a single-axis step toward (chase) or away from
// (flee) the target along the axis with the larger gap, choosing the x
// axis when both gaps are equal.
func chaseOrFleeStep(from, target board.Position, flee bool) (dx, dy int) {
	ddx, ddy := target.X-from.X, target.Y-from.Y
	sign := func(v int) int {
		if v > 0 {
			return 1
		}
		if v < 0 {
			return -1
		}
		return 0
	}
	if abs(ddx) >= abs(ddy) {
		dx = sign(ddx)
	} else {
		dy = sign(ddy)
	}
	if flee {
		dx, dy = -dx, -dy
	}
	return dx, dy
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
