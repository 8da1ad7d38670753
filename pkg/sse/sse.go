// Package sse writes Server-Sent Events to one client.
//
//	stream, err := sse.New(w, r)
//	if err != nil { ... }
//	stream.Send("special_price", sp)
package sse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUnsupported is returned when the writer chain cannot flush.
var ErrUnsupported = errors.New("sse: streaming not supported")

type closingKey struct{}

// WithClosing attaches a channel that, once closed, ends every stream whose
// request context derives from ctx. Servers use it as their BaseContext so
// long-lived streams do not hold up a graceful shutdown.
func WithClosing(ctx context.Context, closing <-chan struct{}) context.Context {
	return context.WithValue(ctx, closingKey{}, closing)
}

// Stream is an open event stream.
type Stream struct {
	w       http.ResponseWriter
	r       *http.Request
	rc      *http.ResponseController
	closing <-chan struct{}
}

// New sets the event-stream headers, lifts the server write deadline and
// flushes so the client sees the stream open immediately.
func New(w http.ResponseWriter, r *http.Request) (*Stream, error) {
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering
	w.WriteHeader(http.StatusOK)

	if err := rc.Flush(); err != nil {
		return nil, ErrUnsupported
	}
	// Not every writer supports deadlines; httptest's recorder does not.
	_ = rc.SetWriteDeadline(time.Time{})

	closing, _ := r.Context().Value(closingKey{}).(<-chan struct{})
	return &Stream{w: w, r: r, rc: rc, closing: closing}, nil
}

// Send writes a named event with a JSON data payload.
func (s *Stream) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Comment writes an SSE comment, used as a keepalive.
func (s *Stream) Comment(msg string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", msg); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Done is closed when the client goes away.
func (s *Stream) Done() <-chan struct{} {
	return s.r.Context().Done()
}

// Closing is closed when the server starts shutting down. It is nil, and so
// never ready, when no WithClosing channel was attached.
func (s *Stream) Closing() <-chan struct{} {
	return s.closing
}
