// File: session/registrar.go
package session

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/lguibr/pacarcade/pipeio"
	"github.com/lguibr/pacarcade/protocol"
	"github.com/lguibr/pacarcade/queue"
	"github.com/lguibr/pacarcade/scoreboard"
	"github.com/lguibr/pacarcade/utils"
	"go.uber.org/zap"
)

// clientIDPattern extracts the numeric id from a request-pipe path of
// the form ".../<id>_request", per spec.md §3.
var clientIDPattern = regexp.MustCompile(`(\d+)_request$`)

// Registrar implements the 9-step algorithm of spec.md §4.5: it owns the
// rendezvous pipe and is the sole producer into the session queue.
type Registrar struct {
	cfg        utils.Config
	scoreboard *scoreboard.Scoreboard
	queue      *queue.Queue
	admission  *Admission
	log        *zap.Logger
}

// NewRegistrar builds a Registrar wired to its collaborators.
func NewRegistrar(cfg utils.Config, sb *scoreboard.Scoreboard, q *queue.Queue, adm *Admission, log *zap.Logger) *Registrar {
	return &Registrar{cfg: cfg, scoreboard: sb, queue: q, admission: adm, log: log}
}

// Run opens the rendezvous FIFO and loops forever admitting sessions.
// It returns only if the rendezvous pipe cannot be opened at all.
func (r *Registrar) Run() error {
	rendezvous, err := pipeio.OpenRendezvous(r.cfg.RegistrationFIFOPath)
	if err != nil {
		return fmt.Errorf("session: open rendezvous: %w", err)
	}
	defer rendezvous.Close()

	buf := make([]byte, r.cfg.ConnectMessageSize)
	for {
		n, err := rendezvous.Read(buf)
		if err != nil || n <= 0 {
			r.log.Debug("registrar: short or failed read", zap.Error(err), zap.Int("n", n), zap.String("op", "register"))
			continue
		}

		req, err := protocol.DecodeConnectRequest(buf[:n])
		if err != nil {
			r.log.Debug("registrar: discarding malformed connect", zap.Error(err), zap.String("op", "register"))
			continue
		}

		clientID, err := parseClientID(req.RequestPipePath)
		if err != nil {
			r.log.Debug("registrar: cannot parse client id", zap.String("path", req.RequestPipePath), zap.String("op", "register"))
			continue
		}

		r.admission.Wait()

		sc, err := r.open(req, clientID)
		if err != nil {
			r.log.Warn("registrar: failed to open session pipes", zap.Int("client_id", clientID), zap.Error(err), zap.String("op", "register"))
			continue
		}

		if !r.scoreboard.Add(clientID) {
			r.log.Warn("registrar: rejecting connect, scoreboard at capacity", zap.Int("client_id", clientID), zap.String("op", "register"))
			sc.NotifFile.Write(protocol.EncodeConnectResponse(protocol.StatusScoreboardFull))
			sc.Close()
			continue
		}

		if _, err := sc.NotifFile.Write(protocol.EncodeConnectResponse(protocol.StatusAccepted)); err != nil {
			r.log.Warn("registrar: failed to send connect response", zap.Int("client_id", clientID), zap.Error(err), zap.String("op", "register"))
			sc.Close()
			r.scoreboard.Remove(clientID)
			continue
		}

		r.log.Info("client registered", zap.Int("client_id", clientID), zap.String("op", "register"))
		r.queue.Enqueue(sc)
	}
}

// open performs step 6 of the registrar algorithm: notif-for-write
// before request-for-read, with either failure rolling back the other.
func (r *Registrar) open(req protocol.ConnectRequest, clientID int) (*Context, error) {
	notif, err := pipeio.OpenNotifForWrite(req.NotifPipePath)
	if err != nil {
		return nil, fmt.Errorf("open notif pipe: %w", err)
	}

	request, err := pipeio.OpenRequestForRead(req.RequestPipePath)
	if err != nil {
		notif.Close()
		return nil, fmt.Errorf("open request pipe: %w", err)
	}

	return &Context{
		ClientID:        clientID,
		RequestFile:     request,
		NotifFile:       notif,
		RequestPipePath: req.RequestPipePath,
		NotifPipePath:   req.NotifPipePath,
		LevelsDir:       r.cfg.LevelsDir,
	}, nil
}

func parseClientID(path string) (int, error) {
	m := clientIDPattern.FindStringSubmatch(path)
	if m == nil {
		return 0, fmt.Errorf("session: path %q does not match <id>_request", path)
	}
	return strconv.Atoi(m[1])
}
