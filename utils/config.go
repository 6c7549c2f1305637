// File: utils/config.go
package utils

import "time"

// Config holds every tunable constant of the server.
type Config struct {
	// Admission & sessions
	MaxGames   int // concurrent sessions cap, supplied on the CLI
	MaxClients int // hard cap on active scoreboard records

	// Session queue
	BufferSize int // ring buffer capacity between registrar and workers

	// Protocol
	MaxPipePathLength  int // longest accepted FIFO path, NUL-padded on the wire
	ConnectMessageSize int // exact byte size of a connect request
	DispatchReadChunk  int // bytes read per non-blocking request-pipe poll

	// Levels
	LevelsDir string
	MaxLevels int // hard cap on levels loaded from LevelsDir

	// Filesystem
	RegistrationFIFOPath string
	ScoresLogPath        string

	// Timing floor used when a level's tempo is zero or unset.
	MinTempo time.Duration
}

// DefaultConfig returns the constants named throughout the spec.
func DefaultConfig() Config {
	return Config{
		MaxClients:         25,
		BufferSize:         25,
		MaxPipePathLength:  40,
		ConnectMessageSize: 81,
		DispatchReadChunk:  32,
		MaxLevels:          64,
		ScoresLogPath:      "scores.log",
		MinTempo:           10 * time.Millisecond,
	}
}

// FastConfig returns a config tuned for integration tests: the same
// protocol constants, but a server that runs end to end in milliseconds.
func FastConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxLevels = 4
	cfg.MinTempo = time.Millisecond
	return cfg
}
