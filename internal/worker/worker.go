// Package worker runs jobs one at a time, in submission order, on a single
// goroutine.
package worker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrStopped is returned when submitting to a stopped worker.
var ErrStopped = errors.New("worker stopped")

const queueSize = 64

// Ticket identifies a submitted job. Done is closed when it finishes.
type Ticket struct {
	ID   string
	Name string
	Done <-chan struct{}
}

type job struct {
	id   string
	name string
	fn   func()
	done chan struct{}
}

// Worker is a single-goroutine FIFO job runner. A job that is running is
// never interrupted; later submissions wait behind it.
type Worker struct {
	log     zerolog.Logger
	jobs    chan job
	exited  chan struct{}
	mu      sync.Mutex
	stopped bool
	senders sync.WaitGroup
}

// New starts a worker. Job lifecycle is logged at debug level to log.
func New(log zerolog.Logger) *Worker {
	w := &Worker{
		log:    log.With().Str("module", "worker").Logger(),
		jobs:   make(chan job, queueSize),
		exited: make(chan struct{}),
	}
	go w.loop()
	return w
}

// Submit queues fn and returns once it is queued. With a full queue it
// waits for room.
func (w *Worker) Submit(name string, fn func()) (Ticket, error) {
	j := job{
		id:   uuid.NewString(),
		name: name,
		fn:   fn,
		done: make(chan struct{}),
	}

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return Ticket{}, fmt.Errorf("submit %s: %w", name, ErrStopped)
	}
	w.senders.Add(1)
	w.mu.Unlock()

	// The send may wait on a full queue; Stop closes jobs only after it.
	w.jobs <- j
	w.senders.Done()
	w.log.Debug().Str("job", j.id).Str("name", name).Msg("queued")
	return Ticket{ID: j.id, Name: name, Done: j.done}, nil
}

// Run queues fn and waits for it to finish.
func (w *Worker) Run(name string, fn func()) error {
	t, err := w.Submit(name, fn)
	if err != nil {
		return err
	}
	<-t.Done
	return nil
}

// Stop refuses new jobs, waits for queued ones to finish and ends the
// goroutine. It is safe to call more than once.
func (w *Worker) Stop() {
	w.mu.Lock()
	first := !w.stopped
	w.stopped = true
	w.mu.Unlock()
	if first {
		w.senders.Wait()
		close(w.jobs)
	}
	<-w.exited
}

func (w *Worker) loop() {
	defer close(w.exited)
	for j := range w.jobs {
		w.run(j)
	}
}

func (w *Worker) run(j job) {
	start := time.Now()
	defer close(j.done)
	defer func() {
		if r := recover(); r != nil {
			w.log.Error().Str("job", j.id).Str("name", j.name).Interface("panic", r).Msg("job panicked")
		}
	}()
	w.log.Debug().Str("job", j.id).Str("name", j.name).Msg("started")
	j.fn()
	w.log.Debug().Str("job", j.id).Str("name", j.name).Dur("took", time.Since(start)).Msg("finished")
}
