package cookiejwt

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/MrEthical07/cookiejwt/token"
)

const (
	auditEventRejected       = "session_rejected"
	auditEventCommitted      = "session_committed"
	auditEventCommitOversize = "session_commit_oversize"
	auditEventDestroyed      = "session_destroyed"
)

// AuditErrorCode is the coarse failure reason recorded in [AuditEvent.Error].
type AuditErrorCode string

const (
	auditErrInvalidToken   AuditErrorCode = "invalid_token"
	auditErrExpiredToken   AuditErrorCode = "expired_token"
	auditErrCookieTooLarge AuditErrorCode = "cookie_too_large"
	auditErrInternal       AuditErrorCode = "internal_error"
)

func (s *JWTCookieStorage) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	sessionID string,
	err error,
	metadata map[string]string,
) {
	if s == nil || s.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp:  s.now().UTC(),
		EventType:  eventType,
		CookieName: s.config.Cookie.Name,
		Mode:       s.codec.Mode().Name(),
		SessionID:  sessionID,
		IP:         clientIPFromContext(ctx),
		Success:    success,
		Metadata:   metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	s.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrCookieTooLarge):
		return auditErrCookieTooLarge
	case token.IsExpired(err):
		return auditErrExpiredToken
	case errors.Is(err, token.ErrInvalidToken):
		return auditErrInvalidToken
	default:
		return auditErrInternal
	}
}

// auditDispatcher hands events to the sink on a single worker goroutine so
// sink latency never sits on the request path.
type auditDispatcher struct {
	sink       AuditSink
	dropIfFull bool
	ch         chan AuditEvent
	wg         sync.WaitGroup
	dropped    atomic.Uint64

	// mu orders sends against close(ch).
	mu     sync.RWMutex
	closed bool
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &auditDispatcher{
		sink:       sink,
		dropIfFull: cfg.DropIfFull,
		ch:         make(chan AuditEvent, cfg.BufferSize),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *auditDispatcher) run() {
	defer d.wg.Done()
	for event := range d.ch {
		d.sink.Emit(context.Background(), event)
	}
}

// Emit queues event for the sink. With DropIfFull a full buffer drops the
// event and counts it; otherwise Emit waits for room until ctx ends.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	if d.dropIfFull {
		select {
		case d.ch <- event:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.ch <- event:
	case <-ctx.Done():
		d.dropped.Add(1)
	}
}

// Close delivers queued events and stops the worker. It is idempotent.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.ch)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
