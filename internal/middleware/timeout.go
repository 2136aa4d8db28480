package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medrex/clinical-api/internal/handler"
)

// timeoutWriter buffers the handler's headers and body so a fired deadline
// can write the 504 without racing the handler goroutine on the underlying
// writer. Output arriving after the deadline is discarded; output buffered
// before a normal finish is flushed through in one step.
type timeoutWriter struct {
	gin.ResponseWriter

	mu       sync.Mutex
	header   http.Header
	body     bytes.Buffer
	status   int
	timedOut bool
	flushed  bool
}

func newTimeoutWriter(w gin.ResponseWriter) *timeoutWriter {
	return &timeoutWriter{ResponseWriter: w, header: http.Header{}}
}

func (w *timeoutWriter) Header() http.Header {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.flushed {
		return w.ResponseWriter.Header()
	}
	return w.header
}

func (w *timeoutWriter) WriteHeader(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return
	}
	if w.flushed {
		w.ResponseWriter.WriteHeader(code)
		return
	}
	if w.status == 0 {
		w.status = code
	}
}

func (w *timeoutWriter) WriteHeaderNow() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.flushed {
		w.ResponseWriter.WriteHeaderNow()
	}
}

func (w *timeoutWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return len(b), nil
	}
	if w.flushed {
		return w.ResponseWriter.Write(b)
	}
	return w.body.Write(b)
}

func (w *timeoutWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *timeoutWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status != 0 {
		return w.status
	}
	return w.ResponseWriter.Status()
}

func (w *timeoutWriter) Size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.flushed || w.timedOut {
		return w.ResponseWriter.Size()
	}
	return w.body.Len()
}

func (w *timeoutWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.timedOut || w.flushed || w.status != 0 || w.body.Len() > 0
}

// flush copies the buffered response onto the underlying writer. Only called
// after the handler goroutine has finished; later writes pass straight
// through.
func (w *timeoutWriter) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut || w.flushed {
		return
	}
	w.flushed = true
	dst := w.ResponseWriter.Header()
	for k, v := range w.header {
		dst[k] = v
	}
	if w.status != 0 {
		w.ResponseWriter.WriteHeader(w.status)
	}
	if w.body.Len() > 0 {
		w.ResponseWriter.Write(w.body.Bytes())
	}
}

// expire marks the response timed out so everything the handler writes from
// here on is dropped.
func (w *timeoutWriter) expire() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timedOut = true
	w.status = http.StatusGatewayTimeout
}

// Timeout bounds each request's context. Slow persistence calls observe the
// deadline through ctx; on a fired deadline the client gets a 504 and the
// still-running handler's output is discarded.
func Timeout(duration time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), duration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		w := newTimeoutWriter(c.Writer)
		c.Writer = w

		done := make(chan struct{})
		go func() {
			defer close(done)
			c.Next()
		}()

		select {
		case <-done:
			w.flush()
		case <-ctx.Done():
			if ctx.Err() != context.DeadlineExceeded {
				return
			}
			w.expire()
			real := w.ResponseWriter
			real.Header().Set("Content-Type", "application/json; charset=utf-8")
			real.WriteHeader(http.StatusGatewayTimeout)
			if body, err := json.Marshal(handler.NewErrorResponse("request timeout")); err == nil {
				real.Write(body)
			}
		}
	}
}
