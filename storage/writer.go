package storage

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// saveTimeout bounds one database write so a dead connection cannot wedge
// the drain.
const saveTimeout = 5 * time.Second

// RecordSink accepts retirement records. *Leaderboard is the production sink.
type RecordSink interface {
	SaveRetired(ctx context.Context, name string, playTimeMs float64, score int) error
}

// retirement is one queued record.
type retirement struct {
	name       string
	playTimeMs float64
	score      int
}

// RetirementWriter decouples the game tick from database latency: retirements
// are queued and written by a single background worker. Write failures are
// logged and never reach game clients.
type RetirementWriter struct {
	sink  RecordSink
	queue chan retirement
	done  chan struct{}
	log   zerolog.Logger
}

// NewRetirementWriter creates a writer with a buffer of queueSize records.
func NewRetirementWriter(sink RecordSink, queueSize int, log zerolog.Logger) *RetirementWriter {
	return &RetirementWriter{
		sink:  sink,
		queue: make(chan retirement, queueSize),
		done:  make(chan struct{}),
		log:   log,
	}
}

// Run consumes the queue until Close is called and the queue drains. Saves
// are detached from ctx's cancellation: records still queued when the server
// context dies must reach the database, not fail with context.Canceled.
func (w *RetirementWriter) Run(ctx context.Context) {
	defer close(w.done)
	for rec := range w.queue {
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
		err := w.sink.SaveRetired(saveCtx, rec.name, rec.playTimeMs, rec.score)
		cancel()
		if err != nil {
			w.log.Error().
				Err(err).
				Str("player", rec.name).
				Int("score", rec.score).
				Msg("failed to persist retirement record")
		}
	}
}

// Enqueue hands a record to the worker without blocking the game tick. When
// the queue is full the record is dropped and logged.
func (w *RetirementWriter) Enqueue(name string, playTimeMs float64, score int) {
	select {
	case w.queue <- retirement{name: name, playTimeMs: playTimeMs, score: score}:
	default:
		w.log.Error().
			Str("player", name).
			Msg("retirement queue full, dropping record")
	}
}

// Close stops accepting records and waits for the queued ones to be written.
func (w *RetirementWriter) Close() {
	close(w.queue)
	<-w.done
}
