// File: level/default.go
package level

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lguibr/pacarcade/board"
)

// TextLoader parses the .lvl format: a header line "WIDTH HEIGHT
// TEMPO_MS", a second line "N_GHOSTS", then HEIGHT rows of WIDTH
// characters drawn from the on-wire tile alphabet plus two spawn
// markers ('P' for the pacman, '1'-'9' for ghost N's spawn point).
type TextLoader struct{}

// NewTextLoader constructs the default .lvl parser.
func NewTextLoader() *TextLoader { return &TextLoader{} }

// Load implements LevelLoader.
func (l *TextLoader) Load(path string, carryPoints int) (*board.Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("level: open %s: %w", path, err)
	}
	defer f.Close()

	return parse(f, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), carryPoints)
}

// Unload implements LevelLoader. The text loader holds no per-board
// resources, so this is a no-op.
func (l *TextLoader) Unload(b *board.Board) {}

func parse(r io.Reader, name string, carryPoints int) (*board.Board, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		return nil, fmt.Errorf("level: missing header line")
	}
	var width, height, tempoMS int
	if _, err := fmt.Sscanf(scanner.Text(), "%d %d %d", &width, &height, &tempoMS); err != nil {
		return nil, fmt.Errorf("level: bad header %q: %w", scanner.Text(), err)
	}
	if width <= 0 || height <= 0 || tempoMS <= 0 {
		return nil, fmt.Errorf("level: header fields must be positive, got %dx%d tempo=%d", width, height, tempoMS)
	}

	if !scanner.Scan() {
		return nil, fmt.Errorf("level: missing ghost-count line")
	}
	nGhosts, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || nGhosts < 0 {
		return nil, fmt.Errorf("level: bad ghost count %q", scanner.Text())
	}

	b := board.New(width, height, tempoMS)
	b.LevelName = name
	b.AccumulatedPoints = carryPoints
	b.Ghosts = make([]*board.Ghost, nGhosts)
	for i := range b.Ghosts {
		b.Ghosts[i] = &board.Ghost{}
	}

	pacmanPlaced := false
	for y := 0; y < height; y++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("level: expected %d rows, got %d", height, y)
		}
		row := scanner.Text()
		if len(row) < width {
			return nil, fmt.Errorf("level: row %d shorter than width %d: %q", y, width, row)
		}
		for x := 0; x < width; x++ {
			ch := row[x]
			switch {
			case ch == 'P':
				b.Pacmans = append(b.Pacmans, &board.Pacman{Pos: board.Position{X: x, Y: y}, Alive: true})
				pacmanPlaced = true
				*b.CellAt(x, y) = board.NewCell(board.TileEmpty)
			case ch >= '1' && ch <= '9':
				idx := int(ch-'1') + 1
				if idx > len(b.Ghosts) {
					return nil, fmt.Errorf("level: ghost spawn %c exceeds declared count %d", ch, nGhosts)
				}
				pos := board.Position{X: x, Y: y}
				b.Ghosts[idx-1].Pos = pos
				b.Ghosts[idx-1].Origin = pos
				*b.CellAt(x, y) = board.NewCell(board.TileEmpty)
			default:
				*b.CellAt(x, y) = board.NewCell(board.Tile(ch))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("level: reading rows: %w", err)
	}
	if !pacmanPlaced {
		return nil, fmt.Errorf("level: no pacman spawn ('P') found")
	}

	return b, nil
}
