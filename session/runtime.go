// File: session/runtime.go
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lguibr/pacarcade/board"
	"github.com/lguibr/pacarcade/level"
	"github.com/lguibr/pacarcade/mover"
	"github.com/lguibr/pacarcade/pipeio"
	"github.com/lguibr/pacarcade/protocol"
	"github.com/lguibr/pacarcade/scoreboard"
	"github.com/lguibr/pacarcade/utils"
	"go.uber.org/zap"
)

// Runtime drives one admitted session through every level in its levels
// directory, implementing the 8-step algorithm of spec.md §4.6.
type Runtime struct {
	cfg        utils.Config
	loader     level.LevelLoader
	mover      mover.Mover
	scoreboard *scoreboard.Scoreboard
	log        *zap.Logger
}

// NewRuntime wires a Runtime to its collaborators.
func NewRuntime(cfg utils.Config, loader level.LevelLoader, mv mover.Mover, sb *scoreboard.Scoreboard, log *zap.Logger) *Runtime {
	return &Runtime{cfg: cfg, loader: loader, mover: mv, scoreboard: sb, log: log}
}

// levelOutcome carries what the level loop needs to decide whether to
// continue to the next file.
type levelOutcome struct {
	carryPoints int
	advance     bool
}

// Run plays every level file in sc.LevelsDir in order, then tears down
// the session's pipes and scoreboard entry. Called by a worker pool
// goroutine; never returns an error because by this point there is no
// one left to report one to except the log.
func (rt *Runtime) Run(sc *Context) {
	defer sc.Close()
	defer rt.scoreboard.Remove(sc.ClientID)

	levels, err := listLevels(sc.LevelsDir, rt.cfg.MaxLevels)
	if err != nil || len(levels) == 0 {
		rt.log.Warn("session: no levels to play", zap.Int("client_id", sc.ClientID), zap.Error(err), zap.String("op", "session"))
		return
	}

	carry := 0
	for i, path := range levels {
		moreLevels := i < len(levels)-1
		outcome, err := rt.runLevel(sc, path, carry, moreLevels)
		if err != nil {
			rt.log.Warn("session: level aborted", zap.Int("client_id", sc.ClientID), zap.String("level", path), zap.Error(err), zap.String("op", "session"))
			return
		}
		carry = outcome.carryPoints
		if !outcome.advance {
			return
		}
	}
}

// runLevel implements spec.md §4.6 steps 1-8 for a single level file.
func (rt *Runtime) runLevel(sc *Context, path string, carryPoints int, moreLevels bool) (levelOutcome, error) {
	b, err := rt.loader.Load(path, carryPoints)
	if err != nil {
		return levelOutcome{}, fmt.Errorf("load level: %w", err)
	}
	defer rt.loader.Unload(b)

	slot := &commandSlot{}

	var done []chan struct{}
	for i := range b.Pacmans {
		ch := make(chan struct{})
		done = append(done, ch)
		go runPacmanActor(b, i, slot, rt.mover, rt.cfg.MinTempo, ch)
	}
	for i := range b.Ghosts {
		ch := make(chan struct{})
		done = append(done, ch)
		go runGhostActor(b, i, rt.mover, rt.cfg.MinTempo, ch)
	}

	rt.dispatchLoop(sc, b, slot)

	b.Lock()
	b.Stop = true
	b.Unlock()
	for _, ch := range done {
		<-ch
	}

	b.RLock()
	victory, gameOver, accPoints := b.Victory, b.GameOver, b.AccumulatedPoints
	b.RUnlock()

	switch {
	case gameOver || !moreLevels:
		if err := b.FinalSerialize(sc.NotifFile, true); err != nil && !pipeio.IsBrokenPipe(err) {
			rt.log.Warn("session: final serialize failed", zap.Int("client_id", sc.ClientID), zap.Error(err), zap.String("op", "session"))
		}
	case victory && moreLevels:
		if err := b.FinalSerialize(sc.NotifFile, false); err != nil && !pipeio.IsBrokenPipe(err) {
			rt.log.Warn("session: final serialize failed", zap.Int("client_id", sc.ClientID), zap.Error(err), zap.String("op", "session"))
		}
	}

	return levelOutcome{carryPoints: accPoints, advance: victory && moreLevels}, nil
}

// dispatchLoop implements spec.md §4.6 step 4: read input, serialize
// board, update scoreboard, check termination, pace by tempo.
func (rt *Runtime) dispatchLoop(sc *Context, b *board.Board, slot *commandSlot) {
	buf := make([]byte, rt.cfg.DispatchReadChunk)

	for {
		b.RLock()
		stopped := b.Stop
		b.RUnlock()
		if stopped {
			return
		}

		rt.readInput(sc, b, slot, buf)

		snap, werr := b.Serialize(sc.NotifFile)
		if werr != nil {
			if !pipeio.IsBrokenPipe(werr) {
				rt.log.Warn("session: board write failed", zap.Int("client_id", sc.ClientID), zap.Error(werr), zap.String("op", "session"))
			}
			b.Lock()
			b.Stop = true
			b.Unlock()
			return
		}

		rt.scoreboard.Update(sc.ClientID, snap.AccumulatedPoints)

		if snap.Victory || snap.GameOver {
			b.Lock()
			b.Stop = true
			b.Unlock()
		}

		time.Sleep(tempoFor(b, 0, rt.cfg.MinTempo))
	}
}

// readInput implements step 4a: a single non-blocking read, pair-walked
// into play/disconnect records.
func (rt *Runtime) readInput(sc *Context, b *board.Board, slot *commandSlot, buf []byte) {
	n, err := sc.RequestFile.Read(buf)
	if err != nil {
		if pipeio.IsWouldBlock(err) {
			return
		}
		// Any other read error (including EOF from the client closing its
		// write end) is treated as the client having gone away.
		b.Lock()
		b.GameOver = true
		b.Stop = true
		b.Unlock()
		return
	}
	if n == 0 {
		b.Lock()
		b.GameOver = true
		b.Stop = true
		b.Unlock()
		return
	}

	for _, rec := range protocol.DecodeInputBatch(buf[:n]) {
		switch rec.Opcode {
		case protocol.OpPlay:
			slot.Set(toUpper(rec.Command))
		case protocol.OpDisconnect:
			b.Lock()
			b.GameOver = true
			b.Stop = true
			b.Unlock()
		}
	}
}

func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

// listLevels returns the paths (dir joined with the file name) of every
// *.lvl file directly under dir, in ascending lexicographic order by filename, capped at
// maxLevels (spec.md §6).
func listLevels(dir string, maxLevels int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("session: read levels dir %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".lvl") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) > maxLevels {
		names = names[:maxLevels]
	}

	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return paths, nil
}
