package admin

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/devrev/pairdb/admin-client/internal/adminerrors"
	"github.com/devrev/pairdb/admin-client/internal/adminpb"
	"github.com/devrev/pairdb/admin-client/internal/cluster"
	"github.com/devrev/pairdb/admin-client/internal/config"
	"github.com/devrev/pairdb/admin-client/internal/health"
	"github.com/devrev/pairdb/admin-client/internal/metrics"
	"github.com/devrev/pairdb/admin-client/internal/transport"
	"github.com/devrev/pairdb/admin-client/internal/wire"
	"go.uber.org/zap"
)

// Client is the admin protocol client: pooled RPCs against every node's
// admin port, plus the streaming, async, and metadata operations built on
// top of sendAndReceive.
type Client struct {
	pool       *transport.Pool
	cfg        config.Config
	codeTable  adminerrors.CodeTable
	logger     *zap.Logger
	metrics    *metrics.Metrics
	descriptor atomic.Pointer[cluster.Descriptor]
}

// Option customizes a Client beyond its required constructor arguments.
type Option func(*Client)

// WithLogger overrides the client's logger. The default is zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithCodeTable overrides the server-error-code-to-local-Code mapping.
// The default is adminerrors.DefaultCodeTable.
func WithCodeTable(table adminerrors.CodeTable) Option {
	return func(c *Client) { c.codeTable = table }
}

// WithMetrics attaches Prometheus instrumentation. The default is no
// metrics collection.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient builds a Client against a caller-supplied cluster descriptor.
func NewClient(descriptor cluster.Descriptor, cfg config.Config, opts ...Option) *Client {
	c := &Client{
		cfg:       cfg,
		codeTable: adminerrors.DefaultCodeTable,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.pool = transport.NewPool(transport.Config{
		MaxConnectionsPerNode: cfg.Pool.MaxConnectionsPerNode,
		ConnectTimeout:        cfg.Pool.ConnectTimeout,
		SocketTimeout:         cfg.Pool.SocketTimeout,
		SocketBufferSize:      cfg.Pool.SocketBufferSize,
		SocketKeepAlive:       cfg.Pool.SocketKeepAlive,
	}, c.logger)
	c.descriptor.Store(&descriptor)
	return c
}

// NewClientFromBootstrap resolves an initial cluster descriptor via
// fetcher before building the Client, using a transient call that is
// discarded once the descriptor is in hand.
func NewClientFromBootstrap(ctx context.Context, bootstrapURL string, cfg config.Config, fetcher cluster.Fetcher, opts ...Option) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Bootstrap.Timeout)
	defer cancel()

	descriptor, err := fetcher.FetchCluster(ctx, bootstrapURL)
	if err != nil {
		return nil, fmt.Errorf("admin: bootstrap cluster fetch: %w", err)
	}
	return NewClient(descriptor, cfg, opts...), nil
}

// SetCluster atomically replaces the cluster descriptor the client
// dispatches against. Concurrent readers observe either the old or the
// new descriptor, never a torn one.
func (c *Client) SetCluster(descriptor cluster.Descriptor) {
	c.descriptor.Store(&descriptor)
}

// GetCluster returns the current cluster descriptor.
func (c *Client) GetCluster() cluster.Descriptor {
	return *c.descriptor.Load()
}

// Close closes every idle pooled connection. In-flight streams backed by
// checked-out connections must complete or be explicitly abandoned first.
func (c *Client) Close() error {
	return c.pool.Close()
}

// ReportPoolStats pushes the pool's current idle connection count into the
// client's metrics, if any are attached. Callers typically invoke this
// from a periodic ticker alongside health snapshots.
func (c *Client) ReportPoolStats() {
	if c.metrics != nil {
		c.metrics.SetIdleConns(c.pool.TotalIdleCount())
	}
}

// PoolDestinations returns every admin-port destination the client has
// dialed so far, for health snapshots that want a per-node breakdown.
func (c *Client) PoolDestinations() []transport.Destination {
	return c.pool.Destinations()
}

// HealthView adapts the client's current cluster descriptor into the
// view a health.Checker probes against.
func (c *Client) HealthView() health.ClusterView {
	return clusterHealthView{client: c}
}

type clusterHealthView struct {
	client *Client
}

func (v clusterHealthView) Nodes() []health.NodeView {
	nodes := v.client.GetCluster().Nodes()
	out := make([]health.NodeView, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, health.NodeView{ID: n.ID, Host: n.Host, Port: n.AdminPort})
	}
	return out
}

func (c *Client) destinationFor(nodeID int32) (transport.Destination, error) {
	node, err := c.GetCluster().MustNodeByID(nodeID)
	if err != nil {
		return transport.Destination{}, err
	}
	return transport.Destination{Host: node.Host, Port: node.AdminPort, Protocol: transport.AdminProtocolTag}, nil
}

// checkout borrows a connection to nodeID's admin port and applies the
// configured socket timeout as a read/write deadline for this operation.
func (c *Client) checkout(ctx context.Context, nodeID int32) (*transport.Conn, error) {
	dest, err := c.destinationFor(nodeID)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	conn, err := c.pool.Checkout(ctx, dest)
	if c.metrics != nil {
		c.metrics.RecordCheckout(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, adminerrors.Transport(err)
	}
	if c.cfg.Pool.SocketTimeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(c.cfg.Pool.SocketTimeout)); err != nil {
			c.discard(conn)
			return nil, adminerrors.Transport(err)
		}
	}
	return conn, nil
}

// discard marks conn for discard-on-checkin and records that decision,
// keeping the discard-vs-reuse bookkeeping in one place.
func (c *Client) discard(conn *transport.Conn) {
	conn.MarkDiscard()
	c.pool.Checkin(conn)
	if c.metrics != nil {
		c.metrics.RecordDiscard()
	}
}

// sendAndReceive writes one envelope, flushes, and reads exactly one
// framed response, balancing the pool on every path.
func (c *Client) sendAndReceive(ctx context.Context, nodeID int32, req *adminpb.AdminRequest) ([]byte, error) {
	conn, err := c.checkout(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := c.writeAndRead(conn, req)
	if err != nil {
		c.discard(conn)
		if c.metrics != nil {
			c.metrics.RecordRequestError(req.Type.String(), errCodeLabel(err))
		}
		return nil, err
	}
	c.pool.Checkin(conn)
	if c.metrics != nil {
		c.metrics.RecordRequest(req.Type.String(), time.Since(start).Seconds())
	}
	return data, nil
}

func errCodeLabel(err error) string {
	if e, ok := err.(*adminerrors.Error); ok {
		return fmt.Sprintf("%d", e.Code)
	}
	return "unknown"
}

func (c *Client) writeAndRead(conn *transport.Conn, req *adminpb.AdminRequest) ([]byte, error) {
	payload, err := req.Marshal()
	if err != nil {
		return nil, adminerrors.Encoding(err)
	}
	if err := wire.WriteMessage(conn.Writer, payload); err != nil {
		return nil, adminerrors.Transport(err)
	}
	if err := conn.Writer.Flush(); err != nil {
		return nil, adminerrors.Transport(err)
	}
	data, eof, err := wire.ReadMessage(conn.Reader)
	if err != nil {
		return nil, adminerrors.Transport(err)
	}
	if eof {
		return nil, adminerrors.New(adminerrors.CodeProtocol, "admin client: unexpected end-of-stream reading single response")
	}
	return data, nil
}

func (c *Client) mapProtocolError(wireCode uint32, message string) *adminerrors.Error {
	return c.codeTable.Map(wireCode, message)
}
