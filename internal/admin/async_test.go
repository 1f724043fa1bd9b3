package admin_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/devrev/pairdb/admin-client/internal/admin"
	"github.com/devrev/pairdb/admin-client/internal/adminerrors"
	"github.com/devrev/pairdb/admin-client/internal/adminpb"
	"github.com/devrev/pairdb/admin-client/internal/wire"
	"github.com/stretchr/testify/require"
)

func TestMigratePartitionsContactsOnlyStealer(t *testing.T) {
	descriptor := startFakeNode(t, func(t *testing.T, conn *fakeNodeConn) {
		data, _, err := wire.ReadMessage(conn.Reader)
		require.NoError(t, err)
		req, err := adminpb.UnmarshalAdminRequest(data)
		require.NoError(t, err)
		require.Equal(t, adminpb.InitiateFetchAndUpdate, req.Type)
		require.Equal(t, int32(2), req.InitiateFetchAndUpdate.NodeID)
		require.Equal(t, []int32{0, 1, 2}, req.InitiateFetchAndUpdate.Partitions)
		require.Equal(t, "s", req.InitiateFetchAndUpdate.Store)

		resp := &adminpb.AsyncOperationStatusResponse{RequestID: 42}
		payload, err := resp.Marshal()
		require.NoError(t, err)
		require.NoError(t, wire.WriteMessage(conn.Writer, payload))
		require.NoError(t, conn.Writer.Flush())
	})

	client := admin.NewClient(descriptor, testConfig())
	defer client.Close()

	// The single-node descriptor names only node 1, the stealer. Donor 2 is
	// absent from it, so any attempt to dial the donor would fail the call.
	requestID, err := client.MigratePartitions(context.Background(), 2, 1, "s", []int32{0, 1, 2}, nil)
	require.NoError(t, err)
	require.Equal(t, int64(42), requestID)
}

func TestGetAsyncRequestStatusRoundTrip(t *testing.T) {
	descriptor := startFakeNode(t, func(t *testing.T, conn *fakeNodeConn) {
		data, _, err := wire.ReadMessage(conn.Reader)
		require.NoError(t, err)
		req, err := adminpb.UnmarshalAdminRequest(data)
		require.NoError(t, err)
		require.Equal(t, adminpb.AsyncOperationStatus, req.Type)
		require.Equal(t, int32(42), req.AsyncOperationStatus.RequestID)

		resp := &adminpb.AsyncOperationStatusResponse{
			RequestID:   42,
			Description: "migrating partition 0",
			Status:      "running",
			Complete:    false,
		}
		payload, err := resp.Marshal()
		require.NoError(t, err)
		require.NoError(t, wire.WriteMessage(conn.Writer, payload))
		require.NoError(t, conn.Writer.Flush())
	})

	client := admin.NewClient(descriptor, testConfig())
	defer client.Close()

	status, err := client.GetAsyncRequestStatus(context.Background(), 1, 42)
	require.NoError(t, err)
	require.Equal(t, int64(42), status.RequestID)
	require.False(t, status.Complete)
	require.Equal(t, "running", status.Status)
}

func TestWaitForCompletionTimesOutAfterExpectedBackoffSchedule(t *testing.T) {
	var polls atomic.Int32

	descriptor := startFakeNode(t, func(t *testing.T, conn *fakeNodeConn) {
		for {
			data, eof, err := wire.ReadMessage(conn.Reader)
			if eof || err != nil {
				return
			}
			_, err = adminpb.UnmarshalAdminRequest(data)
			require.NoError(t, err)
			polls.Add(1)

			resp := &adminpb.AsyncOperationStatusResponse{RequestID: 7, Complete: false}
			payload, err := resp.Marshal()
			require.NoError(t, err)
			if err := wire.WriteMessage(conn.Writer, payload); err != nil {
				return
			}
			if err := conn.Writer.Flush(); err != nil {
				return
			}
		}
	})

	cfg := testConfig()
	cfg.Async.InitialDelay = 25 * time.Millisecond
	cfg.Async.BackoffFactor = 4
	cfg.Async.MaxDelay = 6 * time.Second

	client := admin.NewClient(descriptor, cfg)
	defer client.Close()

	// Sleep sequence is 25/100/400ms; a 500ms maxWait elapses after the
	// third sleep, before a fourth poll is attempted.
	start := time.Now()
	err := client.WaitForCompletion(context.Background(), 1, 7, 500*time.Millisecond)
	elapsed := time.Since(start)

	require.Error(t, err)
	var timeoutErr *adminerrors.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	require.Equal(t, int64(7), timeoutErr.RequestID)

	require.Equal(t, int32(3), polls.Load())
	require.GreaterOrEqual(t, elapsed, 525*time.Millisecond)
}

func TestWaitForCompletionReturnsOnceComplete(t *testing.T) {
	var polls atomic.Int32

	descriptor := startFakeNode(t, func(t *testing.T, conn *fakeNodeConn) {
		for {
			data, eof, err := wire.ReadMessage(conn.Reader)
			if eof || err != nil {
				return
			}
			_, err = adminpb.UnmarshalAdminRequest(data)
			require.NoError(t, err)
			n := polls.Add(1)

			resp := &adminpb.AsyncOperationStatusResponse{RequestID: 7, Complete: n >= 2}
			payload, err := resp.Marshal()
			require.NoError(t, err)
			if err := wire.WriteMessage(conn.Writer, payload); err != nil {
				return
			}
			if err := conn.Writer.Flush(); err != nil {
				return
			}
		}
	})

	cfg := testConfig()
	cfg.Async.InitialDelay = 10 * time.Millisecond
	cfg.Async.BackoffFactor = 4
	cfg.Async.MaxDelay = time.Second

	client := admin.NewClient(descriptor, cfg)
	defer client.Close()

	err := client.WaitForCompletion(context.Background(), 1, 7, 5*time.Second)
	require.NoError(t, err)
	require.Equal(t, int32(2), polls.Load())
}

func TestDeletePartitionsReturnsCount(t *testing.T) {
	descriptor := startFakeNode(t, func(t *testing.T, conn *fakeNodeConn) {
		data, _, err := wire.ReadMessage(conn.Reader)
		require.NoError(t, err)
		req, err := adminpb.UnmarshalAdminRequest(data)
		require.NoError(t, err)
		require.Equal(t, adminpb.DeletePartitionEntries, req.Type)
		require.Equal(t, "s", req.DeletePartitionEntries.Store)

		resp := &adminpb.DeletePartitionEntriesResponse{Count: 17}
		payload, err := resp.Marshal()
		require.NoError(t, err)
		require.NoError(t, wire.WriteMessage(conn.Writer, payload))
		require.NoError(t, conn.Writer.Flush())
	})

	client := admin.NewClient(descriptor, testConfig())
	defer client.Close()

	count, err := client.DeletePartitions(context.Background(), 1, "s", []int32{0, 1}, nil)
	require.NoError(t, err)
	require.Equal(t, 17, count)
}
