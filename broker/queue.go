package broker

import (
	"net"
	"sync"

	"github.com/eapache/queue"
)

// connBacklog holds accepted connections waiting for a free semaphore slot,
// built on the same ring buffer sarama uses for its async producer's input
// queue. Server.Shutdown drains (and logs) whatever is still queued instead
// of silently dropping it.
type connBacklog struct {
	mu     sync.Mutex
	q      *queue.Queue
	notify chan struct{}
}

func newConnBacklog() *connBacklog {
	return &connBacklog{q: queue.New(), notify: make(chan struct{}, 1)}
}

func (b *connBacklog) push(c net.Conn) {
	b.mu.Lock()
	b.q.Add(c)
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// pop removes and returns the oldest queued connection, or nil if empty.
func (b *connBacklog) pop() net.Conn {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.q.Length() == 0 {
		return nil
	}
	return b.q.Remove().(net.Conn)
}

func (b *connBacklog) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.q.Length()
}

// drain closes every connection still queued, returning how many it
// closed, for Server.Shutdown to report.
func (b *connBacklog) drain() int {
	n := 0
	for {
		c := b.pop()
		if c == nil {
			return n
		}
		c.Close()
		n++
	}
}
