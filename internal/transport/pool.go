// Package transport manages the pooled TCP connections the admin client
// keeps open to each node's admin port: dialing, a per-destination bound
// on concurrently open sockets, and the checkout/checkin discipline RPC
// callers use to borrow and return them.
package transport

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config bounds how the pool dials and sizes sockets.
type Config struct {
	MaxConnectionsPerNode int
	ConnectTimeout        time.Duration
	SocketTimeout         time.Duration
	SocketBufferSize      int
	SocketKeepAlive       bool
}

// Conn is one pooled socket: the raw net.Conn plus buffered reader/writer
// sized by Config.SocketBufferSize. MarkDiscard flags a connection that must
// not be returned to the idle set on Checkin, because the caller observed
// a protocol or I/O error on it.
type Conn struct {
	net.Conn
	Reader *bufio.Reader
	Writer *bufio.Writer

	dest     Destination
	discard  bool
}

// MarkDiscard flags this connection so the next Checkin closes it instead
// of returning it to the pool. Call this as soon as a read or write on the
// connection fails; a socket that faulted mid-message cannot be reused.
func (c *Conn) MarkDiscard() {
	c.discard = true
}

type destState struct {
	tokens chan struct{}
	mu     sync.Mutex
	idle   []*Conn
}

// Pool is a per-destination bounded set of pooled connections.
type Pool struct {
	cfg    Config
	logger *zap.Logger

	mu    sync.Mutex
	dests map[Destination]*destState
}

// NewPool builds a Pool. cfg.MaxConnectionsPerNode must be positive.
func NewPool(cfg Config, logger *zap.Logger) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		cfg:    cfg,
		logger: logger,
		dests:  make(map[Destination]*destState),
	}
}

func (p *Pool) stateFor(dest Destination) *destState {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.dests[dest]
	if !ok {
		st = &destState{tokens: make(chan struct{}, p.cfg.MaxConnectionsPerNode)}
		for i := 0; i < p.cfg.MaxConnectionsPerNode; i++ {
			st.tokens <- struct{}{}
		}
		p.dests[dest] = st
	}
	return st
}

// Checkout borrows a connection to dest, blocking until one is idle or a
// new one can be dialed within the per-node bound. The caller must pass
// the returned connection to Checkin exactly once, calling MarkDiscard
// first if an I/O or protocol error was observed on it.
func (p *Pool) Checkout(ctx context.Context, dest Destination) (*Conn, error) {
	st := p.stateFor(dest)

	select {
	case <-st.tokens:
	case <-ctx.Done():
		return nil, fmt.Errorf("transport: checkout %s: %w", dest, ctx.Err())
	}

	st.mu.Lock()
	if n := len(st.idle); n > 0 {
		conn := st.idle[n-1]
		st.idle = st.idle[:n-1]
		st.mu.Unlock()
		return conn, nil
	}
	st.mu.Unlock()

	conn, err := p.dial(ctx, dest)
	if err != nil {
		st.tokens <- struct{}{}
		return nil, err
	}
	return conn, nil
}

// Checkin returns a previously checked-out connection. A connection
// marked via MarkDiscard is closed instead of pooled.
func (p *Pool) Checkin(conn *Conn) {
	st := p.stateFor(conn.dest)

	if conn.discard {
		if err := conn.Conn.Close(); err != nil {
			p.logger.Warn("transport: error closing discarded connection",
				zap.Stringer("destination", conn.dest), zap.Error(err))
		}
		st.tokens <- struct{}{}
		return
	}

	st.mu.Lock()
	st.idle = append(st.idle, conn)
	st.mu.Unlock()
	st.tokens <- struct{}{}
}

func (p *Pool) dial(ctx context.Context, dest Destination) (*Conn, error) {
	dialer := net.Dialer{
		Timeout:   p.cfg.ConnectTimeout,
		KeepAlive: -1,
	}
	if p.cfg.SocketKeepAlive {
		dialer.KeepAlive = 30 * time.Second
	}

	addr := fmt.Sprintf("%s:%d", dest.Host, dest.Port)
	raw, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", dest, err)
	}

	if tc, ok := raw.(*net.TCPConn); ok {
		if err := tc.SetNoDelay(true); err != nil {
			p.logger.Warn("transport: failed to set TCP_NODELAY", zap.Error(err))
		}
	}

	bufSize := p.cfg.SocketBufferSize
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}

	p.logger.Debug("transport: dialed new connection", zap.Stringer("destination", dest))

	return &Conn{
		Conn:   raw,
		Reader: bufio.NewReaderSize(raw, bufSize),
		Writer: bufio.NewWriterSize(raw, bufSize),
		dest:   dest,
	}, nil
}

// Close closes every idle connection in the pool. Connections currently
// checked out are left for their holder to finish with.
func (p *Pool) Close() error {
	p.mu.Lock()
	dests := p.dests
	p.dests = make(map[Destination]*destState)
	p.mu.Unlock()

	var firstErr error
	for dest, st := range dests {
		st.mu.Lock()
		idle := st.idle
		st.idle = nil
		st.mu.Unlock()

		for _, conn := range idle {
			if err := conn.Conn.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("transport: close %s: %w", dest, err)
			}
		}
	}
	return firstErr
}

// IdleCount reports how many connections to dest are currently idle,
// for tests and health snapshots.
func (p *Pool) IdleCount(dest Destination) int {
	st := p.stateFor(dest)
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.idle)
}

// TotalIdleCount reports how many connections are currently idle across
// every destination the pool has dialed, for metrics and health snapshots.
func (p *Pool) TotalIdleCount() int {
	p.mu.Lock()
	dests := make([]*destState, 0, len(p.dests))
	for _, st := range p.dests {
		dests = append(dests, st)
	}
	p.mu.Unlock()

	total := 0
	for _, st := range dests {
		st.mu.Lock()
		total += len(st.idle)
		st.mu.Unlock()
	}
	return total
}

// Destinations reports every destination the pool has ever dialed to, for
// health snapshots that want a per-node breakdown.
func (p *Pool) Destinations() []Destination {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Destination, 0, len(p.dests))
	for dest := range p.dests {
		out = append(out, dest)
	}
	return out
}
