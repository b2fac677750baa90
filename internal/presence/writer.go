package presence

import (
	"log"
	"sync/atomic"
	"time"
)

type sampleStore interface {
	SavePresence(Sample) error
}

// Writer decouples the connection path from Redis: samples go through a
// bounded queue drained by a small worker pool, and are dropped rather
// than ever blocking a handshake or disconnect.
type Writer struct {
	store sampleStore

	queue   chan Sample
	workers int
	stopCh  chan struct{}

	enqueued atomic.Uint64
	dropped  atomic.Uint64
	written  atomic.Uint64
	errors   atomic.Uint64
}

type WriterConfig struct {
	QueueSize int
	Workers   int
}

func NewWriter(store sampleStore, cfg WriterConfig) *Writer {
	w := &Writer{
		store:   store,
		queue:   make(chan Sample, cfg.QueueSize),
		workers: cfg.Workers,
		stopCh:  make(chan struct{}),
	}

	for i := 0; i < w.workers; i++ {
		go w.workerLoop(i)
	}

	return w
}

func (w *Writer) Enqueue(sample Sample) {
	select {
	case w.queue <- sample:
		w.enqueued.Add(1)
	default:
		w.dropped.Add(1)
	}
}

func (w *Writer) workerLoop(workerID int) {
	for {
		select {
		case sample := <-w.queue:
			if err := w.store.SavePresence(sample); err != nil {
				w.errors.Add(1)
				log.Printf("[presence-worker-%d] save error: %v", workerID, err)
				time.Sleep(20 * time.Millisecond)
				continue
			}
			w.written.Add(1)

		case <-w.stopCh:
			return
		}
	}
}

func (w *Writer) Shutdown() {
	close(w.stopCh)
}

func (w *Writer) Stats() (enqueued, dropped, written, errors uint64) {
	return w.enqueued.Load(), w.dropped.Load(), w.written.Load(), w.errors.Load()
}
