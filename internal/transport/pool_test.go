package transport_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/devrev/pairdb/admin-client/internal/transport"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startEchoListener(t *testing.T) net.Addr {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				buf := make([]byte, 256)
				for {
					n, err := c.Read(buf)
					if err != nil {
						return
					}
					if _, err := c.Write(buf[:n]); err != nil {
						return
					}
				}
			}(conn)
		}
	}()
	return ln.Addr()
}

func newTestPool(max int) *transport.Pool {
	return transport.NewPool(transport.Config{
		MaxConnectionsPerNode: max,
		ConnectTimeout:        time.Second,
		SocketTimeout:         time.Second,
		SocketBufferSize:      4096,
		SocketKeepAlive:       false,
	}, zap.NewNop())
}

func destFromAddr(t *testing.T, addr net.Addr) transport.Destination {
	t.Helper()
	tcpAddr, ok := addr.(*net.TCPAddr)
	require.True(t, ok)
	return transport.Destination{Host: "127.0.0.1", Port: int32(tcpAddr.Port)}
}

func TestCheckoutDialsAndCheckinReuses(t *testing.T) {
	addr := startEchoListener(t)
	pool := newTestPool(2)
	defer pool.Close()
	dest := destFromAddr(t, addr)

	ctx := context.Background()
	conn, err := pool.Checkout(ctx, dest)
	require.NoError(t, err)
	require.Equal(t, 0, pool.IdleCount(dest))

	pool.Checkin(conn)
	require.Equal(t, 1, pool.IdleCount(dest))

	conn2, err := pool.Checkout(ctx, dest)
	require.NoError(t, err)
	require.Equal(t, 0, pool.IdleCount(dest))
	require.Same(t, conn, conn2)

	pool.Checkin(conn2)
}

func TestCheckoutBlocksAtPoolBound(t *testing.T) {
	addr := startEchoListener(t)
	pool := newTestPool(1)
	defer pool.Close()
	dest := destFromAddr(t, addr)

	ctx := context.Background()
	conn, err := pool.Checkout(ctx, dest)
	require.NoError(t, err)

	ctx2, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = pool.Checkout(ctx2, dest)
	require.Error(t, err)

	pool.Checkin(conn)
}

func TestDiscardedConnectionIsNotReused(t *testing.T) {
	addr := startEchoListener(t)
	pool := newTestPool(1)
	defer pool.Close()
	dest := destFromAddr(t, addr)

	ctx := context.Background()
	conn, err := pool.Checkout(ctx, dest)
	require.NoError(t, err)
	conn.MarkDiscard()
	pool.Checkin(conn)

	require.Equal(t, 0, pool.IdleCount(dest))

	conn2, err := pool.Checkout(ctx, dest)
	require.NoError(t, err)
	require.NotSame(t, conn, conn2)
	pool.Checkin(conn2)
}
