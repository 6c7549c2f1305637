// File: cmd/pacserver/main.go
//
// pacserver is the process entrypoint: it parses the three positional
// arguments of spec.md §6, wires every package into one running server,
// and blocks forever. There is no graceful shutdown (spec.md §1
// Non-goals) — the process runs until killed.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/lguibr/pacarcade/leaderboard"
	"github.com/lguibr/pacarcade/level"
	"github.com/lguibr/pacarcade/mover"
	"github.com/lguibr/pacarcade/pipeio"
	"github.com/lguibr/pacarcade/queue"
	"github.com/lguibr/pacarcade/scoreboard"
	"github.com/lguibr/pacarcade/session"
	"github.com/lguibr/pacarcade/utils"
	"go.uber.org/zap"
)

const usage = "usage: pacserver <levels_dir> <max_games> <fifo_registo>"

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 3 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	levelsDir := flag.Arg(0)
	maxGames, err := strconv.Atoi(flag.Arg(1))
	if err != nil || maxGames <= 0 {
		fmt.Fprintf(os.Stderr, "pacserver: max_games must be a positive integer, got %q\n", flag.Arg(1))
		os.Exit(1)
	}
	fifoPath := flag.Arg(2)

	log := utils.NewLogger(false)
	defer log.Sync()

	cfg := utils.DefaultConfig()
	cfg.LevelsDir = levelsDir
	cfg.MaxGames = maxGames
	cfg.RegistrationFIFOPath = fifoPath

	if err := pipeio.CreateFIFO(cfg.RegistrationFIFOPath); err != nil {
		log.Fatal("pacserver: create rendezvous fifo", zap.Error(err), zap.String("op", "startup"))
	}
	defer pipeio.Unlink(cfg.RegistrationFIFOPath)

	sb := scoreboard.New(cfg.ScoresLogPath, log, cfg.MaxClients)
	q := queue.New(cfg.BufferSize)
	adm := session.NewAdmission(cfg.MaxGames)
	loader := level.NewTextLoader()
	mv := mover.NewDefault()

	rt := session.NewRuntime(cfg, loader, mv, sb, log)
	pool := session.NewWorkerPool(cfg.MaxGames, q, adm, rt, log)
	pool.Start()

	lb := leaderboard.NewHandler(sb, log)
	defer lb.Start()()

	reg := session.NewRegistrar(cfg, sb, q, adm, log)
	log.Info("pacserver listening", zap.String("fifo", cfg.RegistrationFIFOPath), zap.Int("max_games", cfg.MaxGames), zap.String("levels_dir", cfg.LevelsDir), zap.String("op", "startup"))
	if err := reg.Run(); err != nil {
		log.Fatal("pacserver: registrar stopped", zap.Error(err), zap.String("op", "startup"))
	}
}
