package health_test

import (
	"context"
	"net"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devrev/pairdb/admin-client/internal/health"
	"github.com/stretchr/testify/require"
)

type fakeView struct {
	nodes []health.NodeView
}

func (v fakeView) Nodes() []health.NodeView { return v.nodes }

func startEcho(t *testing.T) (host string, port int32) {
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
			conn.Close()
		}
	}()
	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", int32(addr.Port)
}

func TestCheckerReportsHealthyWhenAllNodesReachable(t *testing.T) {
	host, port := startEcho(t)
	view := fakeView{nodes: []health.NodeView{{ID: 1, Host: host, Port: port}}}
	checker := health.NewChecker(health.Config{View: view, DialTimeout: time.Second}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go checker.Start(ctx, 50*time.Millisecond)
	<-ctx.Done()

	require.True(t, checker.IsLive())
	require.True(t, checker.IsReady())
}

func TestCheckerReportsCriticalWhenNoNodes(t *testing.T) {
	view := fakeView{}
	checker := health.NewChecker(health.Config{View: view}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	go checker.Start(ctx, 50*time.Millisecond)
	<-ctx.Done()

	require.True(t, checker.IsLive())
	require.False(t, checker.IsReady())
}

func TestCheckerReportsCriticalWhenNodeUnreachable(t *testing.T) {
	view := fakeView{nodes: []health.NodeView{{ID: 1, Host: "127.0.0.1", Port: 1}}}
	checker := health.NewChecker(health.Config{View: view, DialTimeout: 50 * time.Millisecond}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	go checker.Start(ctx, 50*time.Millisecond)
	<-ctx.Done()

	require.False(t, checker.IsReady())
}

func TestRunOnceReturnsResultsForEveryNode(t *testing.T) {
	host, port := startEcho(t)
	view := fakeView{nodes: []health.NodeView{{ID: 1, Host: host, Port: port}}}
	checker := health.NewChecker(health.Config{View: view, DialTimeout: time.Second}, nil)

	results := checker.RunOnce(context.Background())
	require.Contains(t, results, "descriptor_nonempty")
	require.Contains(t, results, "node_1_reachable")
	require.Equal(t, health.StatusHealthy, results["node_1_reachable"].Status)
	require.True(t, checker.IsReady())
}

func TestHandlersReportCurrentStatus(t *testing.T) {
	host, port := startEcho(t)
	view := fakeView{nodes: []health.NodeView{{ID: 1, Host: host, Port: port}}}
	checker := health.NewChecker(health.Config{View: view, DialTimeout: time.Second}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go checker.Start(ctx, 50*time.Millisecond)
	<-ctx.Done()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health/ready", nil)
	checker.ReadinessHandler(rec, req)
	require.Equal(t, 200, rec.Code)
}
