// File: leaderboard/leaderboard.go
//
// Package leaderboard wires the external "dump" signal of spec.md §4.9
// to the scoreboard. Go has no per-thread signal mask, so the isolation
// the original gets from blocking SIGUSR1 everywhere except one thread
// is reproduced here by having exactly one goroutine call signal.Notify
// and nothing else in the process ever touch that channel: every other
// goroutine (registrar, workers, actors) is already structurally unable
// to observe the signal.
package leaderboard

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/lguibr/pacarcade/scoreboard"
	"go.uber.org/zap"
)

// Handler owns the dedicated signal-handling goroutine.
type Handler struct {
	scoreboard *scoreboard.Scoreboard
	log        *zap.Logger
	sigCh      chan os.Signal
}

// NewHandler builds a Handler that dumps sb to disk on SIGUSR1.
func NewHandler(sb *scoreboard.Scoreboard, log *zap.Logger) *Handler {
	return &Handler{
		scoreboard: sb,
		log:        log,
		sigCh:      make(chan os.Signal, 1),
	}
}

// Start registers for SIGUSR1 and launches the dedicated goroutine.
// Returns a stop function that unregisters the signal.
func (h *Handler) Start() (stop func()) {
	signal.Notify(h.sigCh, syscall.SIGUSR1)
	go h.loop()
	return func() { signal.Stop(h.sigCh) }
}

func (h *Handler) loop() {
	for range h.sigCh {
		if err := h.scoreboard.Dump(); err != nil {
			h.log.Error("leaderboard: dump failed", zap.Error(err), zap.String("op", "dump"))
		}
	}
}
