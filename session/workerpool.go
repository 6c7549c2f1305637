// File: session/workerpool.go
package session

import (
	"github.com/lguibr/pacarcade/queue"
	"go.uber.org/zap"
)

// WorkerPool is the fixed pool of spec.md §4.6: one goroutine per slot,
// each pulling sessions off the shared queue and running them to
// completion before going back for another.
type WorkerPool struct {
	size      int
	queue     *queue.Queue
	admission *Admission
	runtime   *Runtime
	log       *zap.Logger
}

// NewWorkerPool builds a pool of size workers sharing q, adm, and rt.
func NewWorkerPool(size int, q *queue.Queue, adm *Admission, rt *Runtime, log *zap.Logger) *WorkerPool {
	return &WorkerPool{size: size, queue: q, admission: adm, runtime: rt, log: log}
}

// Start launches every worker goroutine. It returns immediately; workers
// run until the process exits (spec.md §1 Non-goals: no graceful shutdown).
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.size; i++ {
		go wp.work(i)
	}
}

func (wp *WorkerPool) work(id int) {
	for {
		sc := wp.queue.Dequeue().(*Context)
		wp.admission.Claim()
		wp.log.Info("worker picked up session", zap.Int("worker_id", id), zap.Int("client_id", sc.ClientID), zap.String("op", "worker"))
		wp.runtime.Run(sc)
		wp.admission.Release()
	}
}
