// Package runner coordinates the lifecycle of background workers and HTTP
// servers: everything starts together, the first error wins, and servers
// get a bounded graceful shutdown when the context is cancelled.
package runner

import (
	"context"
	"net/http"
	"sync"
	"time"
)

const shutdownTimeout = 5 * time.Second

// Worker is a long-running task tied to a context.
type Worker interface {
	Start(ctx context.Context) error
}

// HTTPServer is the subset of *http.Server the runner needs.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// Runner runs a set of workers and servers until the first error or until
// the context is cancelled.
type Runner struct {
	mu      sync.Mutex
	workers []Worker
	servers []HTTPServer
	wg      sync.WaitGroup
	errCh   chan error
}

// NewRunner creates an empty Runner.
func NewRunner() *Runner {
	return &Runner{
		errCh: make(chan error, 1),
	}
}

// AddWorker registers a Worker to be started by Run.
func (r *Runner) AddWorker(worker Worker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workers = append(r.workers, worker)
}

// AddHTTPServer registers an HTTPServer to be started by Run.
func (r *Runner) AddHTTPServer(srv HTTPServer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.servers = append(r.servers, srv)
}

// Run starts everything registered so far and blocks until the context is
// cancelled, a worker or server fails, or everything finishes on its own.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	workers := append([]Worker(nil), r.workers...)
	servers := append([]HTTPServer(nil), r.servers...)
	r.mu.Unlock()

	for _, w := range workers {
		r.runWorker(ctx, w)
	}
	for _, srv := range servers {
		r.runHTTPServer(ctx, srv)
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-r.errCh:
		return err
	case <-done:
		return nil
	}
}

func (r *Runner) runWorker(ctx context.Context, worker Worker) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := worker.Start(ctx); err != nil {
			r.sendError(err)
		}
	}()
}

func (r *Runner) runHTTPServer(ctx context.Context, srv HTTPServer) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		serverErrCh := make(chan error, 1)
		go func() {
			serverErrCh <- srv.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				r.sendError(err)
			}
		case err := <-serverErrCh:
			if err != nil && err != http.ErrServerClosed {
				r.sendError(err)
			}
		}
	}()
}

// sendError keeps the first error only.
func (r *Runner) sendError(err error) {
	select {
	case r.errCh <- err:
	default:
	}
}
