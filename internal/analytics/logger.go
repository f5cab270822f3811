// Package analytics implements the retrieval event log and the derived
// content-gap and health-score signals. Logging is asynchronous and
// best-effort; analysis reads a trailing window of the durable log.
package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ypacademy/answer_engine/obs"
	"github.com/ypacademy/answer_engine/store"
)

// EventWriter is the append-only half of the event log.
type EventWriter interface {
	InsertRetrieval(ctx context.Context, rec store.RetrievalRecord) error
	InsertSearch(ctx context.Context, rec store.SearchRecord) error
}

type event struct {
	retrieval *store.RetrievalRecord
	search    *store.SearchRecord
}

// Logger appends retrieval and search events without blocking the caller.
// Writes that fail or overflow the queue are dropped and reported to the
// operational log, never to the caller.
type Logger struct {
	writer  EventWriter
	log     *slog.Logger
	queue   chan event
	closing chan struct{}
	done    chan struct{}
	once    sync.Once

	writeTimeout time.Duration
	now          func() time.Time
}

// NewLogger starts the background writer. buffer bounds the number of
// pending events; beyond it events are dropped.
func NewLogger(writer EventWriter, buffer int, log *slog.Logger) *Logger {
	if buffer <= 0 {
		buffer = 256
	}
	if log == nil {
		log = slog.Default()
	}
	l := &Logger{
		writer:       writer,
		log:          log,
		queue:        make(chan event, buffer),
		closing:      make(chan struct{}),
		done:         make(chan struct{}),
		writeTimeout: 5 * time.Second,
		now:          time.Now,
	}
	go l.run()
	return l
}

// LogRetrieval enqueues one retrieval event.
func (l *Logger) LogRetrieval(rec store.RetrievalRecord) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = l.now()
	}
	l.enqueue(event{retrieval: &rec})
}

// LogSearch enqueues one site-search event.
func (l *Logger) LogSearch(query string, resultsCount int, source, sessionID string) {
	l.enqueue(event{search: &store.SearchRecord{
		Query:        query,
		ResultsCount: resultsCount,
		Source:       source,
		SessionID:    sessionID,
		CreatedAt:    l.now(),
	}})
}

// LogClick enqueues one click event. Clicks are stored as search records
// with a zero results count and the clicked entity populated.
func (l *Logger) LogClick(query, entityID, entityType, sessionID string) {
	l.enqueue(event{search: &store.SearchRecord{
		Query:             query,
		ClickedEntityID:   entityID,
		ClickedEntityType: entityType,
		SessionID:         sessionID,
		CreatedAt:         l.now(),
	}})
}

func (l *Logger) enqueue(evt event) {
	select {
	case <-l.closing:
		return
	default:
	}

	select {
	case l.queue <- evt:
	default:
		obs.RecordLogFailure("queue_full")
		l.log.Warn("event log queue full, dropping event")
	}
}

// Close stops accepting events, flushes the queue, and waits for the writer
// to finish. The queue channel is never closed so a racing enqueue can at
// worst drop its event, not panic.
func (l *Logger) Close() {
	l.once.Do(func() {
		close(l.closing)
	})
	<-l.done
}

func (l *Logger) run() {
	defer close(l.done)
	for {
		select {
		case evt := <-l.queue:
			l.write(evt)
		case <-l.closing:
			for {
				select {
				case evt := <-l.queue:
					l.write(evt)
				default:
					return
				}
			}
		}
	}
}

func (l *Logger) write(evt event) {
	ctx, cancel := context.WithTimeout(context.Background(), l.writeTimeout)
	defer cancel()

	var err error
	switch {
	case evt.retrieval != nil:
		err = l.writer.InsertRetrieval(ctx, *evt.retrieval)
	case evt.search != nil:
		err = l.writer.InsertSearch(ctx, *evt.search)
	}
	if err != nil {
		obs.RecordLogFailure("write_error")
		l.log.Error("event log write failed", "error", err)
	}
}
