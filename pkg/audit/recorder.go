package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"lentera-hq/gateway/pkg/gateway"
)

// Sink is the storage destination for audit entries.
type Sink interface {
	Insert(ctx context.Context, entry *gateway.AuditEntry) error
}

// RecorderConfig contains configuration for the async recorder.
type RecorderConfig struct {
	// BufferSize is the size of the async write channel buffer.
	// Default: 1024
	BufferSize int

	// WriteTimeout is the timeout for a single storage write.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		BufferSize:   1024,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder writes audit entries to a Sink asynchronously. Record never
// blocks: when the buffer is full the entry is dropped and counted,
// since holding up request handling for the audit trail would invert
// the gateway's priorities.
type Recorder struct {
	sink      Sink
	config    *RecorderConfig
	entries   chan gateway.AuditEntry
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Int64
	closeOnce sync.Once
	logger    *slog.Logger
}

// NewRecorder creates a recorder and starts its background worker.
func NewRecorder(sink Sink, config *RecorderConfig) *Recorder {
	if config == nil {
		config = DefaultRecorderConfig()
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 1024
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}

	r := &Recorder{
		sink:    sink,
		config:  config,
		entries: make(chan gateway.AuditEntry, config.BufferSize),
		done:    make(chan struct{}),
		logger:  slog.Default().With("component", "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	return r
}

// Record enqueues an entry for async writing. It never blocks; entries
// that do not fit in the buffer are dropped and counted.
func (r *Recorder) Record(entry gateway.AuditEntry) {
	select {
	case r.entries <- entry:
	default:
		if r.dropped.Add(1)%100 == 1 {
			r.logger.Warn("audit buffer full, dropping entries",
				"dropped_total", r.dropped.Load(),
				"buffer_size", r.config.BufferSize,
			)
		}
	}
}

// Dropped returns the number of entries dropped because the buffer was full.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close drains the buffer and stops the worker. Safe to call multiple times.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case entry := <-r.entries:
			r.writeEntry(&entry)

		case <-r.done:
			for {
				select {
				case entry := <-r.entries:
					r.writeEntry(&entry)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) writeEntry(entry *gateway.AuditEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.sink.Insert(ctx, entry); err != nil {
		r.logger.Error("failed to store audit entry",
			"error", err,
			"request_id", entry.RequestID,
			"endpoint", entry.Endpoint,
		)
	}
}
