package admin_test

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/devrev/pairdb/admin-client/internal/cluster"
	"github.com/devrev/pairdb/admin-client/internal/config"
	"github.com/stretchr/testify/require"
)

// fakeNodeConn is the bufio-wrapped view of one accepted connection a test
// server handler gets to drive, mirroring what internal/transport hands
// the real client.
type fakeNodeConn struct {
	net.Conn
	Reader *bufio.Reader
	Writer *bufio.Writer
}

// startFakeNode runs handle once per accepted connection on a loopback
// listener and returns a cluster.Descriptor naming it node 1.
func startFakeNode(t *testing.T, handle func(t *testing.T, conn *fakeNodeConn)) cluster.Descriptor {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			raw, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer raw.Close()
				handle(t, &fakeNodeConn{
					Conn:   raw,
					Reader: bufio.NewReader(raw),
					Writer: bufio.NewWriter(raw),
				})
			}()
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return cluster.NewDescriptor([]cluster.Node{
		{ID: 1, Host: "127.0.0.1", AdminPort: int32(addr.Port), ClientPort: int32(addr.Port)},
	})
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Pool.ConnectTimeout = time.Second
	cfg.Pool.SocketTimeout = 2 * time.Second
	return cfg
}
