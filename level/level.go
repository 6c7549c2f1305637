// File: level/level.go
//
// Package level implements the "out of scope" level-loading collaborator
// spec.md leaves external, per SPEC_FULL.md §4.12: a LevelLoader contract
// plus one concrete parser for a line-oriented .lvl text format.
package level

import "github.com/lguibr/pacarcade/board"

// LevelLoader builds a playable Board from a level file on disk.
type LevelLoader interface {
	// Load parses path into a fresh Board, seeding AccumulatedPoints with
	// carryPoints so points survive a level-to-level transition.
	Load(path string, carryPoints int) (*board.Board, error)
	// Unload releases any resources Load acquired for b. The default
	// loader holds none; Unload exists so future loaders (e.g. ones that
	// cache parsed grids or sprite data) have a teardown hook.
	Unload(b *board.Board)
}
