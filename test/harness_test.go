// File: test/harness_test.go
//
// Package test drives a real server through its public filesystem
// interface (real FIFOs, real goroutines) end to end, the way the
// teacher's test package drives a real websocket server rather than
// calling handlers directly.
package test

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lguibr/pacarcade/leaderboard"
	"github.com/lguibr/pacarcade/level"
	"github.com/lguibr/pacarcade/mover"
	"github.com/lguibr/pacarcade/pipeio"
	"github.com/lguibr/pacarcade/protocol"
	"github.com/lguibr/pacarcade/queue"
	"github.com/lguibr/pacarcade/scoreboard"
	"github.com/lguibr/pacarcade/session"
	"github.com/lguibr/pacarcade/utils"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// harness wires one full server instance against a temp-dir rendezvous
// FIFO and levels directory, and tears it down when the test ends.
type harness struct {
	cfg       utils.Config
	sb        *scoreboard.Scoreboard
	clientDir string
}

func startServer(t *testing.T, levelsDir string, maxGames int) *harness {
	t.Helper()
	return startServerCapped(t, levelsDir, maxGames, utils.FastConfig().MaxClients)
}

// startServerCapped is startServer with an explicit scoreboard capacity,
// for exercising the MaxClients rejection path without 25 real clients.
func startServerCapped(t *testing.T, levelsDir string, maxGames, maxClients int) *harness {
	t.Helper()

	dir := t.TempDir()
	cfg := utils.FastConfig()
	cfg.LevelsDir = levelsDir
	cfg.MaxGames = maxGames
	cfg.MaxClients = maxClients
	cfg.RegistrationFIFOPath = filepath.Join(dir, "registo")
	cfg.ScoresLogPath = filepath.Join(dir, "scores.log")

	require.NoError(t, pipeio.CreateFIFO(cfg.RegistrationFIFOPath))
	t.Cleanup(func() { pipeio.Unlink(cfg.RegistrationFIFOPath) })

	log := utils.NewTestLogger()
	sb := scoreboard.New(cfg.ScoresLogPath, log, cfg.MaxClients)
	q := queue.New(cfg.BufferSize)
	adm := session.NewAdmission(cfg.MaxGames)
	loader := level.NewTextLoader()
	mv := mover.NewDefault()

	rt := session.NewRuntime(cfg, loader, mv, sb, log)
	pool := session.NewWorkerPool(cfg.MaxGames, q, adm, rt, log)
	pool.Start()

	lb := leaderboard.NewHandler(sb, log)
	t.Cleanup(lb.Start())

	reg := session.NewRegistrar(cfg, sb, q, adm, log)
	go reg.Run()

	return &harness{cfg: cfg, sb: sb, clientDir: filepath.Join(dir, "clients")}
}

// writeLevel writes one .lvl fixture under dir/name.
func writeLevel(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
}

// testClient drives the client half of the connect/play/disconnect
// protocol against a running harness, grounded on the original client's
// pacman_connect/pacman_play/pacman_disconnect sequence.
type testClient struct {
	t         *testing.T
	id        int
	reqPath   string
	notifPath string
	req       *os.File
	notif     *os.File
}

// connectClient performs the full rendezvous handshake and blocks until
// the server has accepted the connection, matching S2's "open() blocks
// no longer than 50ms on the rendezvous pipe itself" by never holding
// the rendezvous pipe open past the single write.
func connectClient(t *testing.T, h *harness, id int) *testClient {
	t.Helper()
	c, err := tryConnectClient(t, h, id)
	require.NoError(t, err)
	t.Cleanup(c.close)
	return c
}

// tryConnectClient performs the handshake without ever calling t.Fatal
// itself, so it can run inside a background goroutine (e.g. to prove a
// connect blocks) while the calling test goroutine reports the result.
func tryConnectClient(t *testing.T, h *harness, id int) (*testClient, error) {
	t.Helper()
	if err := os.MkdirAll(h.clientDir, 0755); err != nil {
		return nil, err
	}

	reqPath := filepath.Join(h.clientDir, fmt.Sprintf("%d_request", id))
	notifPath := filepath.Join(h.clientDir, fmt.Sprintf("%d_notif", id))
	if err := pipeio.CreateFIFO(reqPath); err != nil {
		return nil, err
	}
	if err := pipeio.CreateFIFO(notifPath); err != nil {
		return nil, err
	}

	serverFd, err := openNonblockingWithRetry(h.cfg.RegistrationFIFOPath, 2*time.Second)
	if err != nil {
		return nil, err
	}
	serverFile := os.NewFile(uintptr(serverFd), h.cfg.RegistrationFIFOPath)

	msg, err := protocol.EncodeConnectRequest(protocol.ConnectRequest{RequestPipePath: reqPath, NotifPipePath: notifPath})
	if err != nil {
		return nil, err
	}
	if _, err := serverFile.Write(msg); err != nil {
		return nil, err
	}
	if err := serverFile.Close(); err != nil {
		return nil, err
	}

	notif, err := os.OpenFile(notifPath, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}

	resp := make([]byte, 2)
	if _, err := io.ReadFull(notif, resp); err != nil {
		return nil, err
	}
	status, err := protocol.DecodeConnectResponse(resp)
	if err != nil {
		return nil, err
	}
	if status != 0 {
		return nil, fmt.Errorf("connect refused: status %d", status)
	}

	req, err := os.OpenFile(reqPath, os.O_WRONLY, 0)
	if err != nil {
		return nil, err
	}

	return &testClient{t: t, id: id, reqPath: reqPath, notifPath: notifPath, req: req, notif: notif}, nil
}

// openNonblockingWithRetry mirrors pacman_connect's retry loop: it retries
// every failed open (ENXIO/ENOENT while the server has not yet opened its
// read end, or any other error) every millisecond until timeout elapses.
func openNonblockingWithRetry(path string, timeout time.Duration) (int, error) {
	deadline := time.Now().Add(timeout)
	for {
		fd, err := unix.Open(path, unix.O_WRONLY|unix.O_NONBLOCK, 0)
		if err == nil {
			return fd, nil
		}
		if time.Now().After(deadline) {
			return 0, fmt.Errorf("timed out opening rendezvous pipe %s: %w", path, err)
		}
		time.Sleep(time.Millisecond)
	}
}

func (c *testClient) play(cmd byte) {
	c.t.Helper()
	_, err := c.req.Write(protocol.EncodePlay(cmd))
	require.NoError(c.t, err)
}

func (c *testClient) disconnect() {
	c.t.Helper()
	c.req.Write(protocol.EncodeDisconnect())
	c.req.Close()
}

// readBoard reads one full OP_CODE_BOARD frame, failing the test if none
// arrives within timeout.
func (c *testClient) readBoard(timeout time.Duration) protocol.BoardHeader {
	c.t.Helper()
	header := make([]byte, protocol.BoardHeaderSize)
	done := make(chan error, 1)
	go func() {
		_, err := io.ReadFull(c.notif, header)
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(c.t, err)
	case <-time.After(timeout):
		c.t.Fatalf("client %d: timed out waiting for a board update", c.id)
	}

	h, err := protocol.DecodeBoardHeader(header)
	require.NoError(c.t, err)

	cells := make([]byte, h.Width*h.Height)
	_, err = io.ReadFull(c.notif, cells)
	require.NoError(c.t, err)
	return h
}

// waitForGameOver drains boards until one reports game_over, or fails
// the test once deadline elapses.
func (c *testClient) waitForGameOver(deadline time.Duration) protocol.BoardHeader {
	c.t.Helper()
	end := time.Now().Add(deadline)
	for time.Now().Before(end) {
		h := c.readBoard(deadline)
		if h.GameOver != 0 {
			return h
		}
	}
	c.t.Fatalf("client %d: never observed game_over within %v", c.id, deadline)
	return protocol.BoardHeader{}
}

func (c *testClient) close() {
	c.req.Close()
	c.notif.Close()
	pipeio.Unlink(c.reqPath)
	pipeio.Unlink(c.notifPath)
}
