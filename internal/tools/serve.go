package tools

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"
)

// ErrServerRunning is returned when Start is called while a server is up.
var ErrServerRunning = errors.New("a server is already running")

// StaticServer is the session's background process handle: at most one
// in-process HTTP file server. If the server exits on its own (listener
// failure), the handle reports not-running on the next inspection.
type StaticServer struct {
	mu     sync.Mutex
	srv    *http.Server
	done   chan struct{}
	folder string
	port   int
}

// Start serves folder on the given port. Port 0 picks a free port; the
// actual port is reflected in the returned address.
func (s *StaticServer) Start(folder string, port int) (addr string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runningLocked() {
		return "", ErrServerRunning
	}

	folder = unquote(folder)
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("folder not found: %s", folder)
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return "", fmt.Errorf("listen on port %d: %w", port, err)
	}

	srv := &http.Server{Handler: http.FileServer(http.Dir(folder))}
	done := make(chan struct{})
	go func() {
		_ = srv.Serve(ln)
		close(done)
	}()

	s.srv = srv
	s.done = done
	s.folder = folder
	s.port = ln.Addr().(*net.TCPAddr).Port

	return fmt.Sprintf("http://localhost:%d", s.port), nil
}

// Stop shuts the server down. Returns false when none is running.
func (s *StaticServer) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.runningLocked() {
		s.srv = nil
		s.done = nil
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		_ = s.srv.Close()
	}
	<-s.done

	s.srv = nil
	s.done = nil
	return true
}

// Running reports whether a server is currently serving.
func (s *StaticServer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runningLocked()
}

// Folder returns the folder being served (valid while running).
func (s *StaticServer) Folder() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.folder
}

// Port returns the bound port (valid while running).
func (s *StaticServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

func (s *StaticServer) runningLocked() bool {
	if s.srv == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}
