package broker

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/fork-the-planet/kraft-broker/logging"
	"github.com/fork-the-planet/kraft-broker/metrics"
	"github.com/fork-the-planet/kraft-broker/protocol"
)

// Server owns a net.Listener and the one-task-per-accepted-connection
// lifecycle around a Dispatcher, per SPEC_FULL.md §4A.7/§5.
type Server struct {
	listener   net.Listener
	dispatcher *Dispatcher
	log        logging.Logger
	metrics    *metrics.Registry

	shutdownTimeout time.Duration

	sem     *semaphore.Weighted
	backlog *connBacklog

	mu          sync.Mutex
	activeConns map[net.Conn]struct{}

	eg     *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer wraps listener with the accept loop. maxConnections<=0 means
// unbounded concurrent connections, matching the distilled spec's default.
func NewServer(listener net.Listener, dispatcher *Dispatcher, log logging.Logger, reg *metrics.Registry, maxConnections int64, shutdownTimeout time.Duration) *Server {
	if log == nil {
		log = logging.Discard
	}
	ctx, cancel := context.WithCancel(context.Background())
	eg, egCtx := errgroup.WithContext(ctx)

	var sem *semaphore.Weighted
	if maxConnections > 0 {
		sem = semaphore.NewWeighted(maxConnections)
	}

	return &Server{
		listener:        listener,
		dispatcher:      dispatcher,
		log:             log,
		metrics:         reg,
		shutdownTimeout: shutdownTimeout,
		sem:             sem,
		backlog:         newConnBacklog(),
		activeConns:     make(map[net.Conn]struct{}),
		eg:              eg,
		ctx:             egCtx,
		cancel:          cancel,
	}
}

// Serve accepts connections until the listener closes (via Shutdown) or
// returns a non-recoverable error. Accepted connections are queued in the
// backlog; a dispatch loop pulls from it and acquires a semaphore slot
// before handing each off to its own goroutine, so the accept loop itself
// never blocks on a full connection pool.
func (s *Server) Serve() error {
	go s.dispatchLoop()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return nil
			default:
				return err
			}
		}
		s.log.Infof("accepted connection from %s", conn.RemoteAddr())
		if s.metrics != nil {
			s.metrics.ConnectionOpened()
		}
		s.backlog.push(conn)
	}
}

func (s *Server) dispatchLoop() {
	for {
		conn := s.backlog.pop()
		if conn == nil {
			select {
			case <-s.ctx.Done():
				return
			case <-s.backlog.notify:
				continue
			}
		}

		if s.sem != nil {
			if err := s.sem.Acquire(s.ctx, 1); err != nil {
				// Shutdown cancelled the context while this connection
				// waited for a slot.
				conn.Close()
				if s.metrics != nil {
					s.metrics.ConnectionClosed()
				}
				continue
			}
		}

		s.trackConn(conn)
		s.eg.Go(func() error {
			defer s.untrackConn(conn)
			if s.sem != nil {
				defer s.sem.Release(1)
			}
			s.handleConn(conn)
			if s.metrics != nil {
				s.metrics.ConnectionClosed()
			}
			return nil
		})
	}
}

func (s *Server) trackConn(c net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeConns[c] = struct{}{}
}

func (s *Server) untrackConn(c net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.activeConns, c)
}

// handleConn reads and dispatches one framed request after another until
// the client disconnects or sends a malformed frame, per §4.2/§7.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	for {
		frame, err := protocol.ReadFrame(conn)
		if err != nil {
			return
		}

		resp, err := s.dispatcher.Handle(frame)
		if err != nil {
			// A structural decode failure terminates the connection per
			// §7: there is no correlation id to frame an error response
			// with once header decoding itself has failed.
			return
		}

		if _, err := conn.Write(resp); err != nil {
			return
		}

		// Once Shutdown has been called, stop after the request just
		// answered instead of waiting for another frame.
		select {
		case <-s.ctx.Done():
			return
		default:
		}
	}
}

// Shutdown closes the listener, stops the dispatch loop, and waits (bounded
// by shutdownTimeout) for in-flight connections to finish their current
// request. Connections still in the backlog when Shutdown is called are
// closed without being served. Any connections that didn't finish within
// the timeout are closed forcibly; errors returned by those Close calls are
// combined into the returned error.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	closeErr := s.listener.Close()

	drained := s.backlog.drain()
	if drained > 0 {
		s.log.Warnf("shutdown: dropped %d queued connection(s) awaiting a free slot", drained)
	}

	done := make(chan error, 1)
	go func() { done <- s.eg.Wait() }()

	deadline := s.shutdownTimeout
	if deadline <= 0 {
		deadline = 5 * time.Second
	}
	timer := time.NewTimer(deadline)
	defer timer.Stop()

	var result *multierror.Error
	if closeErr != nil {
		result = multierror.Append(result, closeErr)
	}

	select {
	case err := <-done:
		if err != nil {
			result = multierror.Append(result, err)
		}
	case <-timer.C:
		result = multierror.Append(result, s.forceCloseRemaining())
	case <-ctx.Done():
		result = multierror.Append(result, s.forceCloseRemaining())
		result = multierror.Append(result, ctx.Err())
	}

	return result.ErrorOrNil()
}

func (s *Server) forceCloseRemaining() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result *multierror.Error
	for conn := range s.activeConns {
		if err := conn.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
